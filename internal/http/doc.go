// Package http provides the HTTP client shared by the catalog resolvers
// and the cover art cache.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - JSON decoding for catalog APIs
//   - File downloads that never leave partial files behind
//
// Transport failures are wrapped with ErrConnectivity so callers can tell
// a dead network apart from an HTTP error status (*StatusError).
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch HTML page
//	html, err := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
//
//	// Use an authenticated transport
//	client = http.NewClient(http.WithHTTPClient(oauthClient))
package http
