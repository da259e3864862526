package audio

import (
	"strings"
	"testing"

	"github.com/handiism/music-downloader/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	entries := createTestEntries()
	creator := NewPlaylistCreator(model.PlaylistFormatM3U)

	content := creator.CreatePlaylist("Test Playlist", entries)
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	if lines[0] != "#EXTM3U" {
		t.Errorf("first line = %q, want #EXTM3U", lines[0])
	}
	if lines[1] != "#PLAYLIST:Test Playlist" {
		t.Errorf("second line = %q, want #PLAYLIST:Test Playlist", lines[1])
	}

	var paths []string
	for _, line := range lines[2:] {
		if !strings.HasPrefix(line, "#") {
			paths = append(paths, line)
		}
	}
	if len(paths) != len(entries) {
		t.Fatalf("got %d path lines, want %d", len(paths), len(entries))
	}
	if paths[0] != "Test Artist/Test Album/Test Artist - track1.mp3" {
		t.Errorf("first path = %q", paths[0])
	}
	if !strings.Contains(content, "#EXTINF:2,Test Artist - track3\n") {
		t.Error("EXTINF should carry the queue index and display name")
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatPLS)

	content := creator.CreatePlaylist("ignored", createTestEntries())

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=3") {
		t.Error("PLS should contain NumberOfEntries=3")
	}
	if !strings.Contains(content, "Length3=-1") {
		t.Error("PLS should use -1 for unknown durations")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatWPL)

	content := creator.CreatePlaylist("Test Playlist", createTestEntries())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if strings.Count(content, "<media src=") != 3 {
		t.Error("WPL should contain three media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatZPL)

	content := creator.CreatePlaylist("Test Playlist", createTestEntries())

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, "albumTitle=\"Test Album\"") {
		t.Error("ZPL should contain albumTitle attribute")
	}
	if !strings.Contains(content, "duration=\"180000\"") {
		t.Error("ZPL should contain durations in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	track := model.NewTrack(model.TrackInput{
		Name:    "Track & \"Quote\"",
		Artists: []string{"Artist & Co"},
		Album:   "Album <Special>",
	})
	entries := []Entry{{Index: 0, Track: track, Path: "x.mp3"}}

	content := NewPlaylistCreator(model.PlaylistFormatZPL).CreatePlaylist("A & B", entries)

	if !strings.Contains(content, "A &amp; B") {
		t.Error("ZPL should escape & as &amp;")
	}
	if strings.Contains(content, "<Special>") {
		t.Error("ZPL should escape < and >")
	}
}

func TestPlaylistCreator_Empty(t *testing.T) {
	content := NewPlaylistCreator(model.PlaylistFormatM3U).CreatePlaylist("Empty", nil)
	if content != "#EXTM3U\n#PLAYLIST:Empty\n" {
		t.Errorf("empty playlist = %q", content)
	}
}

func createTestEntries() []Entry {
	var entries []Entry
	durations := []float64{180, 200, 0}
	for i, name := range []string{"track1", "track2", "track3"} {
		track := model.NewTrack(model.TrackInput{
			Name:     name,
			Artists:  []string{"Test Artist"},
			Album:    "Test Album",
			Duration: durations[i],
		})
		entries = append(entries, Entry{
			Index: i,
			Track: track,
			Path:  "Test Artist/Test Album/" + track.FileName(model.FormatMP3),
		})
	}
	return entries
}
