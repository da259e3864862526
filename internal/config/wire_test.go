package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSettings_HTTPClientUserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{name: "default", userAgent: "", want: "music-downloader"},
		{name: "configured", userAgent: "Mozilla/5.0 test", want: "Mozilla/5.0 test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("User-Agent")
			}))
			defer srv.Close()

			s := DefaultSettings()
			s.UserAgent = tt.userAgent
			if _, err := s.httpClient().Get(context.Background(), srv.URL); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("User-Agent = %q, want %q", got, tt.want)
			}
		})
	}
}
