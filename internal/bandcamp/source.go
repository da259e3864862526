package bandcamp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/music-downloader/internal/http"
	"github.com/handiism/music-downloader/internal/model"
)

// Source resolves Bandcamp links into track descriptors.
//
// Album and track links are parsed directly. Any other page of an artist
// site resolves to the artist's whole discography.
type Source struct {
	client *http.Client
	parser *Parser
}

// NewSource creates a Source fetching pages through client.
func NewSource(client *http.Client) *Source {
	if client == nil {
		client = http.NewClient()
	}
	return &Source{
		client: client,
		parser: NewParser(),
	}
}

// Matches reports whether u points to a Bandcamp site.
func Matches(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "bandcamp.com" || strings.HasSuffix(host, ".bandcamp.com")
}

// Matches reports whether u points to a Bandcamp site.
func (s *Source) Matches(u *url.URL) bool {
	return Matches(u)
}

// Resolve returns the tracks behind rawURL. A page that does not exist
// yields an empty list.
//
// Artist pages always resolve to the whole discography; Bandcamp has no
// notion of top tracks, so artistAlbums is ignored.
func (s *Source) Resolve(ctx context.Context, rawURL string, artistAlbums bool) ([]*model.Track, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if isReleasePath(u.Path) {
		return s.fetchRelease(ctx, rawURL)
	}

	return s.fetchDiscography(ctx, u)
}

func isReleasePath(path string) bool {
	return strings.Contains(path, "/album/") || strings.Contains(path, "/track/")
}

func (s *Source) fetchRelease(ctx context.Context, pageURL string) ([]*model.Track, error) {
	page, err := s.client.GetString(ctx, pageURL)
	if err != nil {
		if http.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.parser.ParseAlbumPage(page, pageURL)
}

func (s *Source) fetchDiscography(ctx context.Context, u *url.URL) ([]*model.Track, error) {
	root := &url.URL{Scheme: u.Scheme, Host: u.Host}

	page, err := s.client.GetString(ctx, root.ResolveReference(&url.URL{Path: "/music"}).String())
	if err != nil {
		if http.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	links, err := discographyLinks(root, page)
	if err != nil {
		if errors.Is(err, ErrNoAlbumFound) {
			return nil, nil
		}
		return nil, err
	}

	var tracks []*model.Track
	var errs []error
	for _, link := range links {
		release, err := s.fetchRelease(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", link, err))
			continue
		}
		tracks = append(tracks, release...)
	}

	if len(tracks) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tracks, nil
}
