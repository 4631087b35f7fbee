package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	path := os.Getenv("TUSKCHAT_RUNTIME_PATH")
	if path == "" {
		path = ".tuskchat"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

// LogPath is where interactive commands write their log.
func LogPath(runtimePath string) string {
	return filepath.Join(runtimePath, "tuskchat.log")
}

func EnvPath(runtimePath string) string {
	return filepath.Join(runtimePath, ".env")
}
