// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Idempotent directory creation
//   - Moving files between directories and devices
//   - Purging the temp staging area
//   - Cover art resizing and format conversion
//
// # Filename Sanitization
//
// SanitizeFileName keeps letters, digits and a fixed punctuation set and
// replaces everything else with a placeholder glyph:
//
//	safe := ioutils.SanitizeFileName("AC/DC: Live") // "AC□DC□ Live"
//
// # File Operations
//
//	// Create a group folder (safe to call from many workers at once)
//	err := ioutils.EnsureDir("/music/Artist/Album")
//
//	// Move a transcoded file into place, copying across devices if needed
//	err = ioutils.MoveFile("/tmp/staging/abc.mp3", "/music/Artist/Album/Artist - Song.mp3")
//
//	// Remove everything below the staging directory
//	err = ioutils.CleanDir("/tmp/staging")
//
// # Image Processing
//
// The ImageService normalizes cover art before it is muxed into audio files:
//
//	svc := ioutils.NewImageService()
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
//	resized, _ := svc.ResizeImage(ctx, jpeg, 1000, 1000)
package ioutils
