package steps

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource(t *testing.T) {
	dir, err := ioutil.TempDir("", "sqlsteps")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.sql"), []byte("select 1;"), 0600))
	src := DirSource{Dir: dir}
	txt, err := src.ReadStep(Step{Name: "a", Source: "a.sql"})
	require.NoError(t, err)
	assert.Equal(t, "select 1;", txt)
	_, err = src.ReadStep(Step{Name: "b", Source: "b.sql"})
	assert.Error(t, err)
	_, err = src.ReadStep(Step{Name: "c"})
	assert.Error(t, err)
}

func TestMapSource(t *testing.T) {
	src := MapSource{"a": "select 1"}
	txt, err := src.ReadStep(Step{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "select 1", txt)
	_, err = src.ReadStep(Step{Name: "missing"})
	assert.Error(t, err)
}
