package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	bchttp "github.com/handiism/music-downloader/internal/http"
	"github.com/handiism/music-downloader/internal/model"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, ok := routes[strings.TrimPrefix(r.URL.Path, "/v1")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, strings.ReplaceAll(body, "{{server}}", srv.URL))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return New(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      srv.URL + "/v1",
		TokenURL:     srv.URL + "/token",
		RateLimit:    1000,
	})
}

const albumJSON = `{
	"id": "alb1",
	"name": "Discovery",
	"artists": [{"id": "a1", "name": "Daft Punk"}],
	"release_date": "2001-03-12",
	"total_tracks": 3,
	"images": [{"url": "https://img/small.jpg", "width": 64}, {"url": "https://img/large.jpg", "width": 640}],
	"tracks": {
		"items": [
			{"id": "t1", "name": "One More Time", "artists": [{"name": "Daft Punk"}], "track_number": 1, "disc_number": 1, "duration_ms": 320000},
			{"id": "t2", "name": "Aerodynamic", "artists": [{"name": "Daft Punk"}], "track_number": 2, "disc_number": 1}
		],
		"next": "{{server}}/v1/albums/alb1/tracks-page-2"
	}
}`

const albumPage2JSON = `{
	"items": [{"id": "t3", "name": "Digital Love", "artists": [{"name": "Daft Punk"}], "track_number": 3, "disc_number": 1}],
	"next": null
}`

func TestParseLink(t *testing.T) {
	tests := []struct {
		link     string
		wantKind model.QueryType
		wantID   string
		wantOK   bool
	}{
		{"https://open.spotify.com/track/abc123", model.QueryTrack, "abc123", true},
		{"https://open.spotify.com/intl-de/album/xyz?si=foo", model.QueryAlbum, "xyz", true},
		{"spotify:playlist:p1", model.QueryPlaylist, "p1", true},
		{"spotify:show:s1", model.QueryShow, "s1", true},
		{"https://open.spotify.com/user/someone", "", "", false},
		{"https://example.com/track/abc", "", "", false},
		{"spotify:track", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			kind, id, ok := ParseLink(tt.link)
			if ok != tt.wantOK || kind != tt.wantKind || id != tt.wantID {
				t.Errorf("ParseLink() = (%q, %q, %v), want (%q, %q, %v)", kind, id, ok, tt.wantKind, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	c := New(Config{ClientID: "id"})
	_, err := c.Search(context.Background(), "anything", model.QueryTrack, false)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Search() error = %v, want ErrMissingCredentials", err)
	}
}

func TestClient_Matches(t *testing.T) {
	c := New(Config{})
	for raw, want := range map[string]bool{
		"spotify:track:abc":                 true,
		"https://open.spotify.com/track/x":  true,
		"https://artist.bandcamp.com/music": false,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", raw, err)
		}
		if got := c.Matches(u); got != want {
			t.Errorf("Matches(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestResolve_AlbumFollowsPaging(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/albums/alb1":               albumJSON,
		"/albums/alb1/tracks-page-2": albumPage2JSON,
	})
	c := newTestClient(t, srv)

	tracks, err := c.Resolve(context.Background(), "https://open.spotify.com/album/alb1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}

	first := tracks[0]
	if first.Album != "Discovery" || first.PrimaryArtist() != "Daft Punk" {
		t.Errorf("album fields = %q / %q", first.Album, first.PrimaryArtist())
	}
	if first.ArtworkURL != "https://img/large.jpg" {
		t.Errorf("ArtworkURL = %q, want the widest image", first.ArtworkURL)
	}
	if first.ReleaseDate != "2001-03-12" || first.TrackCount != 3 {
		t.Errorf("ReleaseDate = %q, TrackCount = %d", first.ReleaseDate, first.TrackCount)
	}
	if first.ExternalURL != "https://open.spotify.com/track/t1" {
		t.Errorf("ExternalURL = %q", first.ExternalURL)
	}
	if first.Duration != 320 {
		t.Errorf("Duration = %v, want 320", first.Duration)
	}
	if tracks[2].Name != "Digital Love" || tracks[2].Album != "Discovery" {
		t.Errorf("paged track = %q on %q", tracks[2].Name, tracks[2].Album)
	}
}

func TestResolve_PlaylistSkipsNullItems(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/playlists/p1": `{
			"id": "p1",
			"name": "Road Trip",
			"tracks": {"items": [
				{"track": {"id": "t1", "name": "Song", "artists": [{"name": "Band"}], "album": {"name": "Record", "release_date": "1999"}}},
				{"track": null},
				{"track": {"id": "e1", "type": "episode", "name": "Pod", "album": {"name": "Show"}}}
			], "next": null}
		}`,
	})
	c := newTestClient(t, srv)

	tracks, err := c.Resolve(context.Background(), "spotify:playlist:p1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	for _, tr := range tracks {
		if tr.Playlist != "Road Trip" {
			t.Errorf("Playlist = %q, want Road Trip", tr.Playlist)
		}
	}
	if tracks[1].Kind != model.KindEpisode {
		t.Errorf("Kind = %v, want episode", tracks[1].Kind)
	}
	if tracks[0].Album != "Record" {
		t.Errorf("Album = %q", tracks[0].Album)
	}
}

func TestResolve_ArtistModes(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/artists/a1/top-tracks": `{"tracks": [{"id": "t9", "name": "Hit", "artists": [{"name": "Daft Punk"}], "album": {"name": "Hits"}}]}`,
		"/artists/a1/albums":     `{"items": [{"id": "alb1", "name": "Discovery"}], "next": null}`,
		"/albums/alb1":           strings.Replace(albumJSON, `"{{server}}/v1/albums/alb1/tracks-page-2"`, "null", 1),
	})
	c := newTestClient(t, srv)

	top, err := c.Resolve(context.Background(), "https://open.spotify.com/artist/a1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(top) != 1 || top[0].Name != "Hit" {
		t.Errorf("top tracks = %v", top)
	}

	all, err := c.Resolve(context.Background(), "https://open.spotify.com/artist/a1", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d album tracks, want 2", len(all))
	}
}

func TestResolve_ShowAndEpisode(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/shows/s1": `{
			"id": "s1", "name": "The Show", "publisher": "Network",
			"images": [{"url": "https://img/show.jpg", "width": 300}],
			"episodes": {"items": [{"id": "e1", "name": "Pilot", "release_date": "2020-01-01",
				"external_urls": {"spotify": "https://open.spotify.com/episode/e1"}}], "next": null}
		}`,
		"/episodes/e2": `{"id": "e2", "name": "Finale", "show": {"name": "The Show", "publisher": "Network"}}`,
	})
	c := newTestClient(t, srv)

	episodes, err := c.Resolve(context.Background(), "spotify:show:s1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("got %d episodes, want 1", len(episodes))
	}
	e := episodes[0]
	if e.Kind != model.KindEpisode || e.Album != "The Show" || e.PrimaryArtist() != "Network" {
		t.Errorf("episode = %+v", e)
	}
	if e.ArtworkURL != "https://img/show.jpg" {
		t.Errorf("ArtworkURL = %q, want the show image", e.ArtworkURL)
	}
	if e.Query() != "https://open.spotify.com/episode/e1" {
		t.Errorf("Query() = %q", e.Query())
	}

	single, err := c.Resolve(context.Background(), "https://open.spotify.com/episode/e2", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(single) != 1 || single[0].Name != "Finale" {
		t.Errorf("episode = %v", single)
	}
}

func TestResolve_NotFoundIsEmpty(t *testing.T) {
	srv := newTestServer(t, nil)
	c := newTestClient(t, srv)

	tracks, err := c.Resolve(context.Background(), "https://open.spotify.com/track/missing", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("got %d tracks, want 0", len(tracks))
	}
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/search": `{"tracks": {"items": [{"id": "t1", "name": "One More Time", "artists": [{"name": "Daft Punk"}], "album": {"name": "Discovery"}}]}}`,
	})
	c := newTestClient(t, srv)

	tracks, err := c.Search(context.Background(), "one more time", model.QueryTrack, false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].String() != "Daft Punk - One More Time" {
		t.Errorf("Search() = %v", tracks)
	}

	// The canned response has no albums section.
	albums, err := c.Search(context.Background(), "discovery", model.QueryAlbum, false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(albums) != 0 {
		t.Errorf("got %d tracks, want 0", len(albums))
	}
}

func TestErrors(t *testing.T) {
	t.Run("rejected credentials", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.Resolve(context.Background(), "spotify:track:t1", false)
		if !errors.Is(err, ErrAuthentication) {
			t.Errorf("error = %v, want ErrAuthentication", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		c := newTestClient(t, srv)
		srv.Close()

		_, err := c.Search(context.Background(), "anything", model.QueryTrack, false)
		if !errors.Is(err, bchttp.ErrConnectivity) {
			t.Errorf("error = %v, want ErrConnectivity", err)
		}
	})
}
