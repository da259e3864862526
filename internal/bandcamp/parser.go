package bandcamp

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/handiism/music-downloader/internal/bandcamp/dto"
	"github.com/handiism/music-downloader/internal/model"
)

// ErrNoAlbumData is returned when a page carries no data-tralbum attribute.
var ErrNoAlbumData = errors.New("could not find album data in HTML")

var (
	urlConcatRegex = regexp.MustCompile(`(url: ".+)" \+ "(.+",)`)
	tagRegex       = regexp.MustCompile(`<[^>]*>`)
)

// Parser extracts track information from Bandcamp HTML pages.
//
// Bandcamp embeds album data as JSON within the HTML page in a data-tralbum
// attribute. The Parser extracts this JSON, fixes any malformed content,
// and converts it into track descriptors that point at the streamable MP3.
//
// Example usage:
//
//	parser := NewParser()
//	tracks, err := parser.ParseAlbumPage(html, "https://artist.bandcamp.com/album/name")
//	for _, track := range tracks {
//	    fmt.Printf("  %d. %s\n", track.TrackNumber, track.Name)
//	}
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseAlbumPage extracts the tracks of a Bandcamp album or track page.
//
// pageURL is the address the HTML was fetched from; it is used to build
// absolute track links.
func (p *Parser) ParseAlbumPage(htmlContent, pageURL string) ([]*model.Track, error) {
	albumData, err := extractAlbumData(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve album data: %w", err)
	}

	albumData = fixJSON(albumData)

	var jsonAlbum dto.JSONAlbum
	if err := json.Unmarshal([]byte(albumData), &jsonAlbum); err != nil {
		return nil, fmt.Errorf("failed to parse album JSON: %w", err)
	}

	inputs := jsonAlbum.ToTrackInputs(pageURL)
	tracks := make([]*model.Track, 0, len(inputs))
	for _, in := range inputs {
		if in.Lyrics == "" {
			in.Lyrics = extractLyrics(htmlContent, in.TrackNumber)
		}
		tracks = append(tracks, model.NewTrack(in))
	}

	return tracks, nil
}

// extractAlbumData extracts the data-tralbum JSON string from HTML.
//
// Bandcamp embeds album data in the HTML like this:
//
//	<script ... data-tralbum="{...JSON...}">
//
// The attribute value is HTML-unescaped before it is returned.
func extractAlbumData(htmlContent string) (string, error) {
	const startString = `data-tralbum="{`
	const stopString = `}"`

	startIndex := strings.Index(htmlContent, startString)
	if startIndex == -1 {
		return "", ErrNoAlbumData
	}

	startIndex += len(startString) - 1 // Include the opening brace
	remaining := htmlContent[startIndex:]

	endIndex := strings.Index(remaining, stopString)
	if endIndex == -1 {
		return "", fmt.Errorf("could not find end of album data")
	}

	return html.UnescapeString(remaining[:endIndex+1]), nil
}

// fixJSON fixes malformed JSON from Bandcamp pages.
//
// Some Bandcamp pages have JavaScript-style URL concatenation in the JSON:
//
//	url: "http://example.bandcamp.com" + "/album/name",
func fixJSON(albumData string) string {
	return urlConcatRegex.ReplaceAllString(albumData, "${1}${2}")
}

// extractLyrics returns the lyrics Bandcamp renders in the element with id
// "lyrics_row_<number>", stripped of markup.
func extractLyrics(htmlContent string, number int) string {
	lyricsID := fmt.Sprintf(`id="lyrics_row_%d"`, number)
	startIdx := strings.Index(htmlContent, lyricsID)
	if startIdx == -1 {
		return ""
	}

	remaining := htmlContent[startIdx:]
	contentStart := strings.Index(remaining, ">")
	if contentStart == -1 {
		return ""
	}

	contentEnd := strings.Index(remaining[contentStart:], "</div>")
	if contentEnd == -1 {
		return ""
	}

	lyricsHTML := remaining[contentStart+1 : contentStart+contentEnd]
	return strings.TrimSpace(html.UnescapeString(tagRegex.ReplaceAllString(lyricsHTML, "")))
}
