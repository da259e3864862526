// Package config provides configuration management for music-downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values and per-OS data directories
//   - Spotify credentials from the file, the environment or a .env file
//   - Conversion to download.Options for the orchestrator
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to <data dir>/downloads as mp3, best quality
//	// One worker per logical CPU, 3 retries per tool call
//	// ID3 tagging enabled
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultConfigPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	settings.ApplyEnv()
//
// # Configuration File
//
//	downloads_path = "/home/me/Music"
//	group = "%artist%/%album%"
//	format = "mp3"
//	quality = "320k"
//	create_playlist = true
//
//	[spotify]
//	client_id = "..."
//	client_secret = "..."
package config
