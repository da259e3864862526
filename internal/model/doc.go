// Package model defines the core data structures used throughout
// the music-downloader application.
//
// # Track
//
// Track is the normalized descriptor of one song or podcast episode. Every
// field carries an explicit default, so constructing a track never fails:
//
//	track := model.NewTrack(model.TrackInput{
//	    Name:    "Come Together",
//	    Artists: []string{"The Beatles"},
//	    Album:   "Abbey Road",
//	})
//	fmt.Println(track)                  // "The Beatles - Come Together"
//	fmt.Println(track.FileName(model.FormatMP3)) // "The Beatles - Come Together.mp3"
//
// # Grouping
//
// ResolveGroup expands a directory template per track. Available
// placeholders: %artist%, %album%, %playlist%.
//
//	model.ResolveGroup("%artist%/%album%", track) // "The Beatles/Abbey Road"
//
// # Formats and Qualities
//
// Format selects the output container/codec and Quality the transcode
// bitrate. Both parse from the strings accepted on the command line.
package model
