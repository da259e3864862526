// Package audio provides audio file services: ID3 annotation of finished
// MP3 files and playlist generation.
//
// # ID3 Annotation
//
// Use the Tagger to add album artist, source link and catalog id frames:
//
//	tagger := audio.NewTagger()
//	err := tagger.Annotate("/music/Artist - Song.mp3", track)
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U)
//	content := creator.CreatePlaylist("Road Trip", entries)
//	os.WriteFile("Road Trip.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (extended, with a #PLAYLIST title line)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
