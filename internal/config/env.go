package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Credential variables, most specific first. The SPOTIPY_ names are kept
// for setups written for older tools.
var (
	clientIDVars     = []string{"SPOTIFY_CLIENT_ID", "SPOTIPY_CLIENT_ID"}
	clientSecretVars = []string{"SPOTIFY_CLIENT_SECRET", "SPOTIPY_CLIENT_SECRET"}
)

// LoadEnv loads .env files into the process environment. Without
// arguments ./.env is used. Missing files are ignored and variables that
// are already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides the Spotify credentials with environment variables.
func (s *Settings) ApplyEnv() {
	s.applyEnv(os.Getenv)
}

func (s *Settings) applyEnv(getenv func(string) string) {
	if v := firstSet(getenv, clientIDVars); v != "" {
		s.Spotify.ClientID = v
	}
	if v := firstSet(getenv, clientSecretVars); v != "" {
		s.Spotify.ClientSecret = v
	}
}

func firstSet(getenv func(string) string, names []string) string {
	for _, name := range names {
		if v := getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// HasCredentials reports whether Spotify credentials are configured.
func (s *Settings) HasCredentials() bool {
	return s.Spotify.ClientID != "" && s.Spotify.ClientSecret != ""
}
