package model

import (
	"strings"

	ioutils "github.com/handiism/music-downloader/internal/io"
)

// Grouping placeholders recognized by ResolveGroup.
const (
	PlaceholderArtist   = "%artist%"
	PlaceholderAlbum    = "%album%"
	PlaceholderPlaylist = "%playlist%"
)

// ResolveGroup expands a grouping template into a relative directory for t.
//
// Each placeholder is replaced with the sanitized field value. An empty field
// yields an empty path segment, which disappears once the result is joined
// onto the download root. An empty template resolves to the root itself.
func ResolveGroup(template string, t *Track) string {
	if template == "" {
		return ""
	}

	r := strings.NewReplacer(
		PlaceholderArtist, ioutils.SanitizeFileName(t.PrimaryArtist()),
		PlaceholderAlbum, ioutils.SanitizeFileName(t.Album),
		PlaceholderPlaylist, ioutils.SanitizeFileName(t.Playlist),
	)
	return r.Replace(template)
}
