package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/music-downloader/internal/model"
)

// Entry is one finished track listed in a playlist.
type Entry struct {
	// Index is the track's position in the original request queue.
	Index int

	// Track is the descriptor the file was produced from.
	Track *model.Track

	// Path is the file location relative to the playlist's directory.
	Path string
}

// PlaylistCreator generates playlist files in various formats.
//
// Entries are written in the order given. Paths are expected to be
// relative to the directory the playlist is saved in and are always
// written with forward slashes.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U)
//	content := creator.CreatePlaylist("Road Trip", entries)
//	os.WriteFile("/music/Road Trip.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #PLAYLIST:Road Trip
//	// #EXTINF:0,Artist - Song Title
//	// Artist/Album/Artist - Song Title.mp3
type PlaylistCreator struct {
	format model.PlaylistFormat
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format model.PlaylistFormat) *PlaylistCreator {
	return &PlaylistCreator{format: format}
}

// Format returns the playlist format produced by the creator.
func (p *PlaylistCreator) Format() model.PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []Entry) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(entries)
	case model.PlaylistFormatWPL:
		return p.createWPL(title, entries)
	case model.PlaylistFormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(title, entries)
	}
}

// createM3U generates an extended M3U playlist:
//
//	#EXTM3U
//	#PLAYLIST:Title
//	#EXTINF:0,Artist - Title
//	Artist/Album/Artist - Title.mp3
func (p *PlaylistCreator) createM3U(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	sb.WriteString("#PLAYLIST:" + title + "\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", e.Index, e.Track))
		sb.WriteString(filepath.ToSlash(e.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Artist - Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, filepath.ToSlash(e.Path)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, e.Track))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, plsLength(e.Track)))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(entries)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// plsLength returns the length in seconds, or -1 when unknown.
func plsLength(t *model.Track) int {
	if t.Duration <= 0 {
		return -1
	}
	return int(t.Duration)
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(filepath.ToSlash(e.Path))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist.
//
// ZPL is similar to WPL but carries per-entry album, artist and duration.
func (p *PlaylistCreator) createZPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"music-downloader\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		duration := time.Duration(e.Track.Duration * float64(time.Second))
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.ToSlash(e.Path)),
			escapeXML(e.Track.Album),
			escapeXML(e.Track.PrimaryArtist()),
			escapeXML(e.Track.Name),
			escapeXML(e.Track.JoinedArtists(", ")),
			duration.Milliseconds()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
