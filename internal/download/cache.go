package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/shared"
)

// ErrArtworkFetch wraps cover art download failures.
var ErrArtworkFetch = errors.New("artwork fetch failed")

// CoverArtCache memoizes downloaded album artwork for the duration of a run.
//
// Entries are keyed by sanitized album and primary artist. Concurrent
// callers asking for the same key share a single download, so the cache
// never holds more than one file per key.
type CoverArtCache struct {
	dir     string
	fetcher ArtworkFetcher
	images  *ioutils.ImageService
	maxEdge int

	mu      sync.Mutex
	entries map[model.CoverKey]string
	group   singleflight.Group
}

// NewCoverArtCache creates an empty cache storing images in dir.
//
// When images is non-nil every fetched image is converted to JPEG and
// scaled to fit maxEdge (0 keeps the original size).
func NewCoverArtCache(dir string, fetcher ArtworkFetcher, images *ioutils.ImageService, maxEdge int) *CoverArtCache {
	return &CoverArtCache{
		dir:     dir,
		fetcher: fetcher,
		images:  images,
		maxEdge: maxEdge,
		entries: make(map[model.CoverKey]string),
	}
}

// GetOrFetch returns the local path of the artwork for key, downloading
// url on the first request.
func (c *CoverArtCache) GetOrFetch(ctx context.Context, key model.CoverKey, url string) (string, error) {
	if path, ok := c.lookup(key); ok {
		return path, nil
	}

	v, err, _ := c.group.Do(key.Album+"\x00"+key.Artist, func() (any, error) {
		if path, ok := c.lookup(key); ok {
			return path, nil
		}

		path, err := c.fetch(ctx, url)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.entries[key] = path
		c.mu.Unlock()
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of cached entries.
func (c *CoverArtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CoverArtCache) lookup(key model.CoverKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.entries[key]
	return path, ok
}

func (c *CoverArtCache) fetch(ctx context.Context, url string) (string, error) {
	if err := ioutils.EnsureDir(c.dir); err != nil {
		return "", err
	}

	path := filepath.Join(c.dir, shared.GenerateID()+".jpg")
	if err := c.fetcher.DownloadFile(ctx, url, path); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrArtworkFetch, url, err)
	}

	if c.images != nil {
		c.prepare(ctx, path)
	}
	return path, nil
}

// prepare converts the image in place. The raw file is kept when the
// image cannot be decoded.
func (c *CoverArtCache) prepare(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	prepared, err := c.images.PrepareCover(ctx, data, c.maxEdge)
	if err != nil {
		return
	}
	_ = ioutils.WriteFile(ctx, path, prepared)
}
