package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/music-downloader/internal/model"
)

// ErrUnsupportedURL is returned for links no source can handle.
var ErrUnsupportedURL = errors.New("url not supported")

// Source resolves links of one catalog domain.
type Source interface {
	Matches(u *url.URL) bool
	Resolve(ctx context.Context, link string, artistAlbums bool) ([]*model.Track, error)
}

// Searcher answers free text queries.
type Searcher interface {
	Search(ctx context.Context, query string, kind model.QueryType, artistAlbums bool) ([]*model.Track, error)
}

// Options tune how a query is resolved.
type Options struct {
	// Type selects what a free text query searches for. Links ignore it.
	Type model.QueryType

	// ArtistAlbums expands artists to all their albums instead of their
	// top tracks.
	ArtistAlbums bool
}

// Resolver turns a user query into track descriptors. Links are routed to
// the first Source matching their host, anything else is searched.
type Resolver struct {
	searcher Searcher
	sources  []Source
}

// NewResolver creates a Resolver. Sources are tried in order.
func NewResolver(searcher Searcher, sources ...Source) *Resolver {
	return &Resolver{searcher: searcher, sources: sources}
}

// Resolve returns the tracks for query. An empty result means nothing was
// found.
func (r *Resolver) Resolve(ctx context.Context, query string, opts Options) ([]*model.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if u, ok := parseLink(query); ok {
		for _, src := range r.sources {
			if src.Matches(u) {
				return src.Resolve(ctx, query, opts.ArtistAlbums)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, query)
	}

	if r.searcher == nil {
		return nil, fmt.Errorf("no search provider configured for %q", query)
	}

	kind := opts.Type
	if kind == "" {
		kind = model.QueryTrack
	}
	return r.searcher.Search(ctx, query, kind, opts.ArtistAlbums)
}

// IsLink reports whether query is a link rather than search text.
func IsLink(query string) bool {
	_, ok := parseLink(strings.TrimSpace(query))
	return ok
}

func parseLink(query string) (*url.URL, bool) {
	if strings.HasPrefix(query, "spotify:") {
		u, err := url.Parse(query)
		return u, err == nil
	}
	if strings.ContainsAny(query, " \t") {
		return nil, false
	}

	u, err := url.Parse(query)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}
