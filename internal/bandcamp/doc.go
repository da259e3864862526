// Package bandcamp resolves Bandcamp pages into track descriptors.
//
// The package handles two main use cases:
//
//  1. Parsing album/track pages to extract metadata and MP3 stream URLs
//  2. Walking artist discography pages to discover all releases
//
// # Resolving Links
//
//	source := bandcamp.NewSource(http.NewClient())
//	tracks, err := source.Resolve(ctx, "https://artist.bandcamp.com/album/name", false)
//
// Tracks carry their MP3 stream as SourceURL, so the download pipeline
// fetches them directly instead of searching.
//
// # Album Page Parsing
//
//	parser := bandcamp.NewParser()
//	tracks, err := parser.ParseAlbumPage(htmlContent, pageURL)
//
// # Discography Extraction
//
// Any link that is not an album or track page resolves to the artist's
// /music page. Every release listed there is fetched and parsed in page
// order. A release that disappeared in the meantime contributes nothing.
//
// # Bandcamp Data Format
//
// Bandcamp embeds album data as JSON in the HTML page within a
// `data-tralbum` attribute. This package extracts and parses that JSON,
// handling Bandcamp's non-standard date format and fixing malformed JSON.
package bandcamp
