package steps

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SourceReader obtains the SQL text for a step.
type SourceReader interface {
	ReadStep(step Step) (string, error)
}

// DirSource reads step SQL from files in Dir named by Step.Source.
type DirSource struct {
	Dir string
}

func (d DirSource) ReadStep(step Step) (string, error) {
	if step.Source == "" {
		return "", errors.Errorf("step %q has no SQL source file", step.Name)
	}
	fileName := filepath.Join(d.Dir, step.Source)
	if _, err := os.Stat(fileName); err != nil {
		return "", errors.Wrapf(err, "SQL file not found for step %q", step.Name)
	}
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read SQL file for step %q", step.Name)
	}
	return string(b), nil
}

// MapSource serves step SQL from memory, keyed by step name.
type MapSource map[string]string

func (m MapSource) ReadStep(step Step) (string, error) {
	s, ok := m[step.Name]
	if !ok {
		return "", errors.Errorf("no SQL found for step %q", step.Name)
	}
	return s, nil
}
