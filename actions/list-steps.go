package actions

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/steps"
)

type ListStepsConfig struct {
	CommonConfig
	Output string // "text" or "yaml"
	Writer io.Writer
}

// RunListSteps prints the pipeline steps in execution order.
func RunListSteps(c *ListStepsConfig) error {
	if c == nil {
		return errors.New("nil pointer to list config supplied")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	p, err := loadPipeline(cfg)
	if err != nil {
		return err
	}
	w := c.Writer
	if w == nil {
		w = os.Stdout
	}
	switch c.Output {
	case "yaml":
		b, err := p.Yaml()
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "", "text":
		return writeStepTable(w, p.Steps())
	default:
		return fmt.Errorf("unsupported output format %q", c.Output)
	}
}

func writeStepTable(w io.Writer, s []steps.Step) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STEP\tSOURCE\tVALIDATION\tON FAIL")
	for _, step := range s {
		query, onFail := "-", "-"
		if step.Validation != nil {
			query = step.Validation.Query
			onFail = step.Validation.OnFail
			if onFail == "" {
				onFail = steps.OnFailError
			}
		}
		_, _ = fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", step.Name, step.Source, query, onFail)
	}
	return tw.Flush()
}

type ShowConfigConfig struct {
	CommonConfig
	Writer io.Writer
}

// RunShowConfig prints the effective configuration with secrets hidden.
func RunShowConfig(c *ShowConfigConfig) error {
	if c == nil {
		return errors.New("nil pointer to config supplied")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := cfg.Yaml()
	if err != nil {
		return err
	}
	w := c.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err = w.Write(b)
	return err
}
