package model

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/shared"
)

// Fallback values used when the catalog leaves a field empty.
const (
	UnknownTrack   = "Unknown Track"
	UnknownEpisode = "Unknown Episode"
	UnknownArtist  = "Unknown Artist"
	UnknownShow    = "Unknown Show"
	UnknownAlbum   = "Unknown Album"
	UnknownDate    = "0000"

	// PlaceholderArtworkURL is fetched when a track has no artwork of its own.
	PlaceholderArtworkURL = "https://via.placeholder.com/640.jpg"
)

// Track represents a single song or podcast episode to acquire.
//
// Track is produced by a catalog resolver and is treated as immutable by the
// download pipeline. Use NewTrack to build one: it fills every field with a
// deterministic default so the pipeline never has to deal with missing data.
type Track struct {
	// ID is the catalog identifier. A random UUID when the source has none.
	ID string

	// Name is the track or episode title.
	Name string

	// Artists lists the performing artists in catalog order. Never empty.
	Artists []string

	// Album is the album (or show, for episodes) title.
	Album string

	// ReleaseDate is the release date as reported by the catalog (YYYY, YYYY-MM or YYYY-MM-DD).
	ReleaseDate string

	// TrackNumber is the 1-indexed position on the disc.
	TrackNumber int

	// DiscNumber is the 1-indexed disc.
	DiscNumber int

	// TrackCount is the number of tracks on the album.
	TrackCount int

	// Playlist is the container the track was resolved from, if any.
	// It is the grouping hint for %playlist% and the playlist file title.
	Playlist string

	// ArtworkURL is the remote cover image.
	ArtworkURL string

	// Kind tells songs and episodes apart.
	Kind Kind

	// Platform is the catalog the track was resolved from.
	Platform Platform

	// ExternalURL is the public page of the track in its catalog.
	ExternalURL string

	// URI is the catalog URI (e.g. spotify:track:<id>).
	URI string

	// SourceURL is a direct audio location, when the catalog exposes one.
	SourceURL string

	// Duration is the track length in seconds, zero if unknown.
	Duration float64

	// Lyrics are unsynchronized lyrics, when the catalog provides them.
	Lyrics string
}

// TrackInput carries raw, possibly incomplete catalog data for NewTrack.
// Zero values mean "missing".
type TrackInput struct {
	ID          string
	Name        string
	Artists     []string
	Album       string
	ReleaseDate string
	TrackNumber int
	DiscNumber  int
	TrackCount  int
	Playlist    string
	ArtworkURL  string
	Kind        Kind
	Platform    Platform
	ExternalURL string
	URI         string
	SourceURL   string
	Duration    float64
	Lyrics      string
}

// NewTrack builds a Track from catalog data, applying a default to every
// missing field. It never fails.
func NewTrack(in TrackInput) *Track {
	t := &Track{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Album:       strings.TrimSpace(in.Album),
		ReleaseDate: strings.TrimSpace(in.ReleaseDate),
		TrackNumber: in.TrackNumber,
		DiscNumber:  in.DiscNumber,
		TrackCount:  in.TrackCount,
		Playlist:    strings.TrimSpace(in.Playlist),
		ArtworkURL:  strings.TrimSpace(in.ArtworkURL),
		Kind:        in.Kind,
		Platform:    in.Platform,
		ExternalURL: strings.TrimSpace(in.ExternalURL),
		URI:         strings.TrimSpace(in.URI),
		SourceURL:   strings.TrimSpace(in.SourceURL),
		Duration:    in.Duration,
		Lyrics:      strings.TrimSpace(in.Lyrics),
	}

	for _, artist := range in.Artists {
		if artist = strings.TrimSpace(artist); artist != "" {
			t.Artists = append(t.Artists, artist)
		}
	}

	t.applyDefaults()
	return t
}

func (t *Track) applyDefaults() {
	if t.ID == "" {
		t.ID = shared.GenerateID()
	}
	if t.Platform == "" {
		t.Platform = PlatformUnknown
	}

	if t.Name == "" {
		t.Name = UnknownTrack
		if t.Kind == KindEpisode {
			t.Name = UnknownEpisode
		}
	}
	if len(t.Artists) == 0 {
		t.Artists = []string{UnknownArtist}
		if t.Kind == KindEpisode {
			t.Artists = []string{UnknownShow}
		}
	}
	if t.Album == "" {
		t.Album = UnknownAlbum
		if t.Kind == KindEpisode {
			t.Album = UnknownShow
		}
	}
	if t.ReleaseDate == "" {
		t.ReleaseDate = UnknownDate
	}

	if t.TrackNumber < 1 {
		t.TrackNumber = 1
	}
	if t.DiscNumber < 1 {
		t.DiscNumber = 1
	}
	if t.TrackCount < t.TrackNumber {
		t.TrackCount = t.TrackNumber
	}
	if t.Duration < 0 {
		t.Duration = 0
	}

	if t.ArtworkURL == "" {
		t.ArtworkURL = PlaceholderArtworkURL
	}
	if t.URI == "" {
		t.URI = fmt.Sprintf("%s:%s:%s", t.Platform, t.Kind, t.ID)
	}
	if t.ExternalURL == "" {
		t.ExternalURL = t.defaultExternalURL()
	}
}

func (t *Track) defaultExternalURL() string {
	if t.Platform == PlatformSpotify {
		return fmt.Sprintf("https://open.spotify.com/%s/%s", t.Kind, t.ID)
	}
	return t.URI
}

// PrimaryArtist returns the first listed artist.
func (t *Track) PrimaryArtist() string {
	return t.Artists[0]
}

// JoinedArtists returns all artists joined with sep.
func (t *Track) JoinedArtists(sep string) string {
	return strings.Join(t.Artists, sep)
}

// String renders the track as "Artist - Name".
func (t *Track) String() string {
	return t.PrimaryArtist() + " - " + t.Name
}

// FileName returns the sanitized output file name for the given format.
func (t *Track) FileName(format Format) string {
	return ioutils.SanitizeFileName(t.String()) + format.Extension()
}

// Destination computes the final output path of the track below root,
// using the grouping template to choose the subfolder.
func (t *Track) Destination(root, group string, format Format) string {
	return filepath.Join(root, filepath.FromSlash(ResolveGroup(group, t)), t.FileName(format))
}

// Query returns what the extraction tool should look for.
//
// Episodes are fetched from their public page, tracks with a direct source
// from that source, everything else through a search for "Artist - Name audio".
func (t *Track) Query() string {
	if t.Kind == KindEpisode && strings.HasPrefix(t.ExternalURL, "http") {
		return t.ExternalURL
	}
	if t.SourceURL != "" {
		return t.SourceURL
	}
	return fmt.Sprintf("ytsearch:%s audio", t.String())
}

// Tag is a single metadata key/value written into the output file.
type Tag struct {
	Key   string
	Value string
}

// Tags returns the standard metadata written during transcoding, in order.
func (t *Track) Tags() []Tag {
	return []Tag{
		{Key: "title", Value: t.Name},
		{Key: "album", Value: t.Album},
		{Key: "date", Value: t.ReleaseDate},
		{Key: "artist", Value: t.JoinedArtists("/")},
		{Key: "disc", Value: fmt.Sprintf("%d", t.DiscNumber)},
		{Key: "track", Value: fmt.Sprintf("%d/%d", t.TrackNumber, t.TrackCount)},
	}
}

// CoverKey identifies the artwork shared by tracks of the same album.
type CoverKey struct {
	Album  string
	Artist string
}

// CoverKey returns the cover art cache key of the track, built from the
// sanitized album and primary artist.
func (t *Track) CoverKey() CoverKey {
	return CoverKey{
		Album:  ioutils.SanitizeFileName(t.Album),
		Artist: ioutils.SanitizeFileName(t.PrimaryArtist()),
	}
}

// String renders the key as "Album - Artist".
func (k CoverKey) String() string {
	return k.Album + " - " + k.Artist
}
