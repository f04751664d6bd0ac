package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	path := os.Getenv("GUARDIAN_RUNTIME_PATH")
	if path == "" {
		path = ".guardian"
	}
	return expandRuntimePath(path)
}

// expandRuntimePath resolves relative runtime paths against the home
// directory so `.guardian` means `~/.guardian` regardless of cwd.
func expandRuntimePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, path)
}
