package actions

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/config"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"github.com/relloyd/sqlsteps/steps"
)

type RunStepsConfig struct {
	CommonConfig
	Step   string // step name or "all"
	DryRun bool
}

// PipelineRun is the outcome of one invocation of the step runner.
type PipelineRun struct {
	RunId    string                  `json:"runId"`
	Step     string                  `json:"step"`
	DryRun   bool                    `json:"dryRun"`
	Expected int                     `json:"expected"`
	Results  []steps.ExecutionResult `json:"results"`
}

// Succeeded is true when every selected step ran successfully.
func (p *PipelineRun) Succeeded() bool {
	return steps.Succeeded(p.Results, p.Expected)
}

// Err returns the error of the first failed step, or nil if the run succeeded.
func (p *PipelineRun) Err() error {
	if p.Succeeded() {
		return nil
	}
	if r, ok := steps.FirstFailure(p.Results); ok && r.Err != nil {
		return r.Err
	}
	return fmt.Errorf("pipeline run %v did not complete", p.RunId)
}

// RunSteps executes the requested step, or the whole pipeline, and returns an error if any step failed.
// Configuration problems are reported before a connection is attempted.
func RunSteps(c *RunStepsConfig) error {
	if c == nil {
		return errors.New("nil pointer to run config supplied")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log, closer, err := setupLogger(cfg, c.StackDumpOnPanic)
	if err != nil {
		return err
	}
	defer func() {
		_ = closer.Close()
	}()
	p, err := loadPipeline(cfg)
	if err != nil {
		return err
	}
	run, err := executePipeline(log, cfg, p, c.Step, c.DryRun)
	if err != nil {
		return err
	}
	logRunSummary(log, run)
	return run.Err()
}

// loadPipeline returns the pipeline named in cfg or the built-in default.
func loadPipeline(cfg config.Config) (*steps.Pipeline, error) {
	if cfg.PipelineFile == "" {
		return steps.DefaultPipeline(), nil
	}
	return steps.LoadPipeline(cfg.PipelineFile)
}

// executePipeline selects the steps of p for stepName and runs them on a new connection.
// Dry runs need no connection so the connection settings are not validated.
func executePipeline(log logger.Logger, cfg config.Config, p *steps.Pipeline, stepName string, dryRun bool) (*PipelineRun, error) {
	if stepName == "" {
		stepName = constants.StepNameAll
	}
	selected, err := p.Select(stepName)
	if err != nil {
		return nil, err
	}
	var db shared.Connector
	if !dryRun {
		if err = cfg.ValidateConnection(); err != nil {
			return nil, err
		}
		db, err = openConnection(log, cfg.ConnectionDetails())
		if err != nil {
			return nil, errors.Wrap(err, "unable to connect")
		}
		defer db.Close()
	}
	r := steps.NewRunner(log, db, steps.DirSource{Dir: cfg.SqlDir}, cfg.Variables)
	log.Info(fmt.Sprintf("Run %v: executing %q from %v", r.RunId, stepName, cfg.SqlDir))
	return &PipelineRun{
		RunId:    r.RunId,
		Step:     stepName,
		DryRun:   dryRun,
		Expected: len(selected),
		Results:  r.RunPipeline(selected, dryRun),
	}, nil
}

func logRunSummary(log logger.Logger, run *PipelineRun) {
	for _, r := range run.Results {
		if r.Success {
			log.Info(r.String())
		} else {
			log.Error(r.String())
		}
	}
	if run.Succeeded() {
		log.Info(fmt.Sprintf("All %v step(s) completed successfully", run.Expected))
	} else {
		log.Error(fmt.Sprintf("Run failed after %v of %v step(s)", len(run.Results), run.Expected))
	}
}
