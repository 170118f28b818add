package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

func Must(err error) {
	if err != nil {
		panic(fmt.Sprintf("process %d - %v", os.Getpid(), err))
	}
}

// Returns the directory of the currently running executable
func GetExecutableDir() string {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	return filepath.Dir(ex)
}
