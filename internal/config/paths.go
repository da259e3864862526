package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user data directory.
const AppName = "music-downloader"

// ConfigFileName is the settings file looked up in the data directory.
const ConfigFileName = "config.toml"

// DefaultDataDir returns the per-user data directory for the current OS:
//
//	linux:   $XDG_DATA_HOME/music-downloader or ~/.local/share/music-downloader
//	darwin:  ~/Library/Application Support/music-downloader
//	windows: %AppData%/music-downloader
func DefaultDataDir() string {
	return dataDir(runtime.GOOS, os.Getenv)
}

// DefaultConfigPath returns the settings file inside DefaultDataDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), ConfigFileName)
}

func dataDir(goos string, getenv func(string) string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	switch goos {
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Roaming", AppName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName)
	default:
		if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		return filepath.Join(home, ".local", "share", AppName)
	}
}
