package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
)

var configHomeDir string

// mustGetConfigHomeDir returns the full path to the home directory that stores config files.
func mustGetConfigHomeDir() string {
	if configHomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		configHomeDir = path.Join(home, MainDir)
	}
	return configHomeDir
}
