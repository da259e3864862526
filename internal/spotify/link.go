package spotify

import (
	"net/url"
	"strings"

	"github.com/handiism/music-downloader/internal/model"
)

// Matches reports whether u points to a Spotify web page.
func Matches(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "spotify.com" || strings.HasSuffix(host, ".spotify.com")
}

// ParseLink extracts the resource type and id from a Spotify link. Both
// web links (https://open.spotify.com/intl-de/album/<id>?si=...) and URIs
// (spotify:album:<id>) are accepted.
func ParseLink(link string) (model.QueryType, string, bool) {
	if rest, ok := strings.CutPrefix(link, "spotify:"); ok {
		kind, id, ok := strings.Cut(rest, ":")
		if !ok {
			return "", "", false
		}
		return parts(kind, id)
	}

	u, err := url.Parse(link)
	if err != nil || !Matches(u) {
		return "", "", false
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) < 2 {
		return "", "", false
	}
	return parts(segments[0], segments[1])
}

func parts(kind, id string) (model.QueryType, string, bool) {
	qt, err := model.ParseQueryType(kind)
	if err != nil || id == "" {
		return "", "", false
	}
	return qt, id, true
}
