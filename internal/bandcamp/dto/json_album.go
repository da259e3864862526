package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/handiism/music-downloader/internal/model"
)

const (
	artworkURLStart = "https://f4.bcbits.com/img/a"
	artworkURLEnd   = "_0.jpg"
)

// BandcampTime is a custom time type that handles Bandcamp's date format.
type BandcampTime struct {
	time.Time
}

// UnmarshalJSON parses Bandcamp's date format: "01 Jan 2023 00:00:00 GMT"
func (bt *BandcampTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		bt.Time = time.Time{}
		return nil
	}

	formats := []string{
		"02 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 MST",
		time.RFC3339,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			bt.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", s)
}

// JSONAlbum represents the deserialized album data from Bandcamp's HTML.
type JSONAlbum struct {
	ID          *int64         `json:"id"`
	AlbumData   *JSONAlbumData `json:"current"`
	ArtID       *int64         `json:"art_id"`
	Artist      string         `json:"artist"`
	URL         string         `json:"url"`
	ReleaseDate *BandcampTime  `json:"album_release_date"`
	Tracks      []JSONTrack    `json:"trackinfo"`
}

// JSONAlbumData contains album metadata.
type JSONAlbumData struct {
	AlbumTitle  string        `json:"title"`
	ReleaseDate *BandcampTime `json:"release_date"`
	PublishDate *BandcampTime `json:"publish_date"`
}

// ArtworkURL builds the full size cover URL from art_id.
func (ja *JSONAlbum) ArtworkURL() string {
	if ja.ArtID == nil {
		return ""
	}
	return fmt.Sprintf("%s%010d%s", artworkURLStart, *ja.ArtID, artworkURLEnd)
}

// releaseDate picks the first known date: album release, release, publish.
func (ja *JSONAlbum) releaseDate() string {
	candidates := []*BandcampTime{ja.ReleaseDate}
	if ja.AlbumData != nil {
		candidates = append(candidates, ja.AlbumData.ReleaseDate, ja.AlbumData.PublishDate)
	}
	for _, c := range candidates {
		if c != nil && !c.IsZero() {
			return c.Format(time.DateOnly)
		}
	}
	return ""
}

// ToTrackInputs converts the album to track descriptors, skipping tracks
// that have no streamable file. pageURL resolves relative track links.
func (ja *JSONAlbum) ToTrackInputs(pageURL string) []model.TrackInput {
	title := ""
	if ja.AlbumData != nil {
		title = ja.AlbumData.AlbumTitle
	}

	base := siteRoot(pageURL)
	if base == "" {
		base = siteRoot(ja.URL)
	}

	var playable []JSONTrack
	for _, jt := range ja.Tracks {
		if jt.File != nil && jt.File.URL != "" {
			playable = append(playable, jt)
		}
	}

	inputs := make([]model.TrackInput, 0, len(playable))
	for _, jt := range playable {
		in := jt.ToTrackInput(base)
		in.Artists = []string{ja.Artist}
		in.Album = title
		in.ReleaseDate = ja.releaseDate()
		in.ArtworkURL = ja.ArtworkURL()
		in.TrackCount = len(ja.Tracks)
		if in.ExternalURL == "" {
			in.ExternalURL = pageURL
		}
		inputs = append(inputs, in)
	}

	return inputs
}

// siteRoot returns "scheme://host" of u, or "" if u is not absolute.
func siteRoot(u string) string {
	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host
}
