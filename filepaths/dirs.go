package filepaths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/wirvsvirus/landingzone/constants"
)

// EnsureDir ensures the directory exists and returns it
func EnsureDir(dir string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return "", fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}
	return dir, nil
}

// DataDir returns the expanded default root of the file system landing zone
func DataDir() (string, error) {
	dir, err := homedir.Expand(constants.DefaultDataDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}
