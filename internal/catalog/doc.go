// Package catalog routes user queries to the catalog that can answer them.
//
// Links go to the source owning their domain (Spotify or Bandcamp) and
// fail with ErrUnsupportedURL when none does. Free text is searched.
package catalog
