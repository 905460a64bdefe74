package cmd

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relloyd/sqlsteps/steps"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTestConfig(t *testing.T, dir string) string {
	f := filepath.Join(dir, "config.yaml")
	if err := ioutil.WriteFile(f, []byte("logLevel: error\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestVersionCommand(t *testing.T) {
	out, err := executeRoot(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version) {
		t.Fatalf("expected version %v in output: %v", version, out)
	}
}

func TestStepsCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := executeRoot(t, "steps", "--config", writeTestConfig(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range steps.DefaultPipeline().Names() {
		if !strings.Contains(out, name) {
			t.Fatalf("expected step %v in output: %v", name, out)
		}
	}
}

func TestRunCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	for _, s := range steps.DefaultPipeline().Steps() {
		if err := ioutil.WriteFile(filepath.Join(dir, s.Source), []byte("select 1;"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	cfgFile := writeTestConfig(t, dir)
	if _, err := executeRoot(t, "run", "--config", cfgFile, "--sql-dir", dir, "--dry-run"); err != nil {
		t.Fatalf("expected dry run of all steps to succeed: %v", err)
	}
	_, err := executeRoot(t, "run", "--config", cfgFile, "--sql-dir", dir, "--step", "bogus", "--dry-run")
	if err == nil {
		t.Fatal("expected unknown step to fail")
	}
	runCfg.DryRun = false
	runCfg.Step = "all"
}
