package spotify

import "github.com/handiism/music-downloader/internal/model"

// Response types follow https://developer.spotify.com/documentation/web-api/reference/

type image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []image  `json:"images"`
}

type fullAlbum struct {
	album
	Tracks page[track] `json:"tracks"`
}

// track covers both full and simplified track objects. Playlist items may
// also hold episodes, in which case Type is "episode" and Album carries the
// show.
type track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Artists      []artist     `json:"artists"`
	Album        *album       `json:"album"`
	TrackNumber  int          `json:"track_number"`
	DiscNumber   int          `json:"disc_number"`
	DurationMS   int          `json:"duration_ms"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type playlistItem struct {
	Track *track `json:"track"`
}

type playlist struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Tracks page[playlistItem] `json:"tracks"`
}

type show struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Publisher string  `json:"publisher"`
	Images    []image `json:"images"`
}

type fullShow struct {
	show
	Episodes page[episode] `json:"episodes"`
}

type episode struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ReleaseDate  string       `json:"release_date"`
	DurationMS   int          `json:"duration_ms"`
	Images       []image      `json:"images"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
	Show         *show        `json:"show"`
}

// page is the paging object wrapping every list. Next is the absolute URL
// of the following page, or nil on the last one.
type page[T any] struct {
	Items []*T    `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}

type searchResponse struct {
	Tracks    *page[track]    `json:"tracks"`
	Albums    *page[album]    `json:"albums"`
	Playlists *page[playlist] `json:"playlists"`
	Artists   *page[artist]   `json:"artists"`
	Episodes  *page[episode]  `json:"episodes"`
	Shows     *page[show]     `json:"shows"`
}

type topTracksResponse struct {
	Tracks []*track `json:"tracks"`
}

// largest returns the URL of the widest image. Spotify lists images widest
// first but does not guarantee it.
func largest(images []image) string {
	best := -1
	for i, img := range images {
		if best == -1 || img.Width > images[best].Width {
			best = i
		}
	}
	if best == -1 {
		return ""
	}
	return images[best].URL
}

func names(artists []artist) []string {
	out := make([]string, 0, len(artists))
	for _, a := range artists {
		out = append(out, a.Name)
	}
	return out
}

// toTrack converts a track object. parent replaces a missing album, which
// is the case for the simplified tracks of an album response.
func (t *track) toTrack(parent *album, playlistName string) *model.Track {
	a := t.Album
	if a == nil {
		a = parent
	}

	in := model.TrackInput{
		ID:          t.ID,
		Name:        t.Name,
		Artists:     names(t.Artists),
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.DiscNumber,
		Playlist:    playlistName,
		Kind:        model.KindTrack,
		Platform:    model.PlatformSpotify,
		ExternalURL: t.ExternalURLs.Spotify,
		URI:         t.URI,
		Duration:    float64(t.DurationMS) / 1000,
	}
	if t.Type == "episode" {
		in.Kind = model.KindEpisode
	}
	if a != nil {
		in.Album = a.Name
		in.ReleaseDate = a.ReleaseDate
		in.TrackCount = a.TotalTracks
		in.ArtworkURL = largest(a.Images)
		if len(in.Artists) == 0 {
			in.Artists = names(a.Artists)
		}
	}

	return model.NewTrack(in)
}

// toTrack converts an episode. parent replaces a missing show, which is the
// case for the episodes listed in a show response.
func (e *episode) toTrack(parent *show, playlistName string) *model.Track {
	s := e.Show
	if s == nil {
		s = parent
	}

	in := model.TrackInput{
		ID:          e.ID,
		Name:        e.Name,
		ReleaseDate: e.ReleaseDate,
		Playlist:    playlistName,
		Kind:        model.KindEpisode,
		Platform:    model.PlatformSpotify,
		ExternalURL: e.ExternalURLs.Spotify,
		URI:         e.URI,
		Duration:    float64(e.DurationMS) / 1000,
		ArtworkURL:  largest(e.Images),
	}
	if s != nil {
		in.Artists = []string{s.Publisher}
		in.Album = s.Name
		if in.ArtworkURL == "" {
			in.ArtworkURL = largest(s.Images)
		}
	}

	return model.NewTrack(in)
}
