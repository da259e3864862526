package bandcamp

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Grid entries link as href="/album/x" or inside escaped JSON as
	// /album/x&quot;, both terminated before any query string.
	releaseLinkRegex = regexp.MustCompile(`/(?:album|track)/[^"&?#<>\s]+`)
	albumHrefRegex   = regexp.MustCompile(`href="(/album/[^"?#]+)`)
)

// ErrNoAlbumFound is returned when an artist page lists no releases.
var ErrNoAlbumFound = errors.New("no album found on page")

// discographyLinks returns the absolute release links listed on the music
// page of the artist site at root, in page order and without duplicates.
//
// Artists with a single release get redirected from /music to that album
// page. It is recognized by its discography sidebar, and only album links
// count there: track links on an album page point at its own tracks.
func discographyLinks(root *url.URL, page string) ([]string, error) {
	var paths []string
	if strings.Contains(page, `div id="discography"`) {
		for _, m := range albumHrefRegex.FindAllStringSubmatch(page, -1) {
			paths = append(paths, m[1])
		}
	} else {
		paths = releaseLinkRegex.FindAllString(page, -1)
	}

	seen := make(map[string]struct{}, len(paths))
	var links []string
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		links = append(links, root.ResolveReference(&url.URL{Path: p}).String())
	}

	if len(links) == 0 {
		return nil, ErrNoAlbumFound
	}
	return links, nil
}
