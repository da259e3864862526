package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/handiism/music-downloader/internal/http"
	"github.com/handiism/music-downloader/internal/model"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRateLimit is the number of API requests allowed per second.
	DefaultRateLimit = 10.0

	DefaultMarket = "US"
)

var (
	// ErrMissingCredentials is returned by every call of a Client built
	// without a client id or secret.
	ErrMissingCredentials = errors.New("missing spotify client credentials")

	// ErrAuthentication is returned when the token endpoint rejects the
	// client credentials.
	ErrAuthentication = errors.New("spotify authentication failed")
)

// Config holds the client credentials and API settings.
type Config struct {
	ClientID     string
	ClientSecret string

	// BaseURL and TokenURL default to the public Spotify endpoints.
	BaseURL  string
	TokenURL string

	// Market is the ISO 3166-1 country code used for artist top tracks,
	// episodes and shows.
	Market string

	RateLimit float64
	Timeout   time.Duration
}

// Client resolves Spotify links and searches into track descriptors using
// the Web API with the client credentials flow.
type Client struct {
	missing bool
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	market  string
}

// New creates a Client. The access token is requested lazily on the first
// call and refreshed by the oauth2 transport.
//
// Missing credentials are reported when the client is used, so Bandcamp
// links keep working without a Spotify account.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Market == "" {
		cfg.Market = DefaultMarket
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	hc := http.NewClient(
		http.WithHTTPClient(cc.Client(context.Background())),
		http.WithTimeout(cfg.Timeout),
	)

	return &Client{
		missing: cfg.ClientID == "" || cfg.ClientSecret == "",
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		market:  cfg.Market,
	}
}

// Matches reports whether link is a Spotify web link or URI.
func (c *Client) Matches(u *url.URL) bool {
	return u.Scheme == "spotify" || Matches(u)
}

// get decodes the JSON document at endpoint, which is either a path
// relative to the base URL or an absolute paging URL.
func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	if c.missing {
		return ErrMissingCredentials
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if !strings.HasPrefix(endpoint, "http") {
		endpoint = c.baseURL + endpoint
	}

	err := c.http.GetJSON(ctx, endpoint, v)
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %w", ErrAuthentication, re)
	}
	return err
}

// Resolve returns the tracks behind a Spotify link or URI. artistAlbums
// selects every album of an artist instead of the top tracks.
//
// A link to a resource that does not exist yields an empty list. Links
// that do not name a supported resource yield an empty list as well.
func (c *Client) Resolve(ctx context.Context, link string, artistAlbums bool) ([]*model.Track, error) {
	kind, id, ok := ParseLink(link)
	if !ok {
		return nil, nil
	}

	tracks, err := c.fetch(ctx, kind, id, artistAlbums)
	if http.IsNotFound(err) {
		return nil, nil
	}
	return tracks, err
}

func (c *Client) fetch(ctx context.Context, kind model.QueryType, id string, artistAlbums bool) ([]*model.Track, error) {
	switch kind {
	case model.QueryTrack:
		return c.Track(ctx, id)
	case model.QueryAlbum:
		return c.Album(ctx, id)
	case model.QueryPlaylist:
		return c.Playlist(ctx, id)
	case model.QueryArtist:
		if artistAlbums {
			return c.ArtistAlbums(ctx, id)
		}
		return c.ArtistTopTracks(ctx, id)
	case model.QueryEpisode:
		return c.Episode(ctx, id)
	case model.QueryShow:
		return c.Show(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrInvalidQueryType, kind)
}

// Search looks up the best match for query and expands it to tracks.
// Albums, playlists and shows expand to their content, artists to their
// top tracks or albums.
func (c *Client) Search(ctx context.Context, query string, kind model.QueryType, artistAlbums bool) ([]*model.Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", string(kind))
	params.Set("limit", "1")
	if kind == model.QueryEpisode || kind == model.QueryShow {
		params.Set("market", c.market)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	id, ok := resp.firstID(kind)
	if !ok {
		return nil, nil
	}
	if kind == model.QueryTrack {
		return []*model.Track{resp.Tracks.Items[0].toTrack(nil, "")}, nil
	}
	if kind == model.QueryEpisode {
		return []*model.Track{resp.Episodes.Items[0].toTrack(nil, "")}, nil
	}
	return c.fetch(ctx, kind, id, artistAlbums)
}

func (r *searchResponse) firstID(kind model.QueryType) (string, bool) {
	var id string
	switch kind {
	case model.QueryTrack:
		if r.Tracks != nil && len(r.Tracks.Items) > 0 && r.Tracks.Items[0] != nil {
			id = r.Tracks.Items[0].ID
		}
	case model.QueryAlbum:
		if r.Albums != nil && len(r.Albums.Items) > 0 && r.Albums.Items[0] != nil {
			id = r.Albums.Items[0].ID
		}
	case model.QueryPlaylist:
		if r.Playlists != nil && len(r.Playlists.Items) > 0 && r.Playlists.Items[0] != nil {
			id = r.Playlists.Items[0].ID
		}
	case model.QueryArtist:
		if r.Artists != nil && len(r.Artists.Items) > 0 && r.Artists.Items[0] != nil {
			id = r.Artists.Items[0].ID
		}
	case model.QueryEpisode:
		if r.Episodes != nil && len(r.Episodes.Items) > 0 && r.Episodes.Items[0] != nil {
			id = r.Episodes.Items[0].ID
		}
	case model.QueryShow:
		if r.Shows != nil && len(r.Shows.Items) > 0 && r.Shows.Items[0] != nil {
			id = r.Shows.Items[0].ID
		}
	}
	return id, id != ""
}

// Track returns a single track.
func (c *Client) Track(ctx context.Context, id string) ([]*model.Track, error) {
	var t track
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return []*model.Track{t.toTrack(nil, "")}, nil
}

// Album returns every track of an album.
func (c *Client) Album(ctx context.Context, id string) ([]*model.Track, error) {
	var a fullAlbum
	if err := c.get(ctx, "/albums/"+url.PathEscape(id), &a); err != nil {
		return nil, err
	}

	items, err := collect(ctx, c, a.Tracks)
	if err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, t.toTrack(&a.album, ""))
	}
	return tracks, nil
}

// Playlist returns every track and episode of a playlist. Each one carries
// the playlist name.
func (c *Client) Playlist(ctx context.Context, id string) ([]*model.Track, error) {
	var p playlist
	if err := c.get(ctx, "/playlists/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}

	items, err := collect(ctx, c, p.Tracks)
	if err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(items))
	for _, item := range items {
		// Removed or local items come back as null.
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, item.Track.toTrack(nil, p.Name))
	}
	return tracks, nil
}

// ArtistTopTracks returns the artist's top tracks in the configured market.
func (c *Client) ArtistTopTracks(ctx context.Context, id string) ([]*model.Track, error) {
	var resp topTracksResponse
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=%s", url.PathEscape(id), url.QueryEscape(c.market))
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		if t != nil {
			tracks = append(tracks, t.toTrack(nil, ""))
		}
	}
	return tracks, nil
}

// ArtistAlbums returns the tracks of every album and single of an artist.
func (c *Client) ArtistAlbums(ctx context.Context, id string) ([]*model.Track, error) {
	var albums page[album]
	endpoint := fmt.Sprintf("/artists/%s/albums?include_groups=album,single&limit=50", url.PathEscape(id))
	if err := c.get(ctx, endpoint, &albums); err != nil {
		return nil, err
	}

	items, err := collect(ctx, c, albums)
	if err != nil {
		return nil, err
	}

	var tracks []*model.Track
	for _, a := range items {
		albumTracks, err := c.Album(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("album %s: %w", a.ID, err)
		}
		tracks = append(tracks, albumTracks...)
	}
	return tracks, nil
}

// Episode returns a single podcast episode.
func (c *Client) Episode(ctx context.Context, id string) ([]*model.Track, error) {
	var e episode
	endpoint := fmt.Sprintf("/episodes/%s?market=%s", url.PathEscape(id), url.QueryEscape(c.market))
	if err := c.get(ctx, endpoint, &e); err != nil {
		return nil, err
	}
	return []*model.Track{e.toTrack(nil, "")}, nil
}

// Show returns every episode of a podcast show.
func (c *Client) Show(ctx context.Context, id string) ([]*model.Track, error) {
	var s fullShow
	endpoint := fmt.Sprintf("/shows/%s?market=%s", url.PathEscape(id), url.QueryEscape(c.market))
	if err := c.get(ctx, endpoint, &s); err != nil {
		return nil, err
	}

	items, err := collect(ctx, c, s.Episodes)
	if err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(items))
	for _, e := range items {
		tracks = append(tracks, e.toTrack(&s.show, ""))
	}
	return tracks, nil
}

// collect follows the Next links of first and returns every non-nil item.
func collect[T any](ctx context.Context, c *Client, first page[T]) ([]*T, error) {
	var items []*T
	current := first
	for {
		for _, item := range current.Items {
			if item != nil {
				items = append(items, item)
			}
		}
		if current.Next == nil || *current.Next == "" {
			return items, nil
		}

		next := *current.Next
		current = page[T]{}
		if err := c.get(ctx, next, &current); err != nil {
			return nil, err
		}
	}
}
