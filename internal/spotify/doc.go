// Package spotify resolves Spotify links, URIs and searches into track
// descriptors through the Web API.
//
// Authentication uses the OAuth2 client credentials flow, so no user login
// is involved. Requests are rate limited and paged lists are followed to
// the end.
//
//	client := spotify.New(spotify.Config{ClientID: id, ClientSecret: secret})
//	tracks, err := client.Resolve(ctx, "https://open.spotify.com/album/<id>", false)
//	tracks, err = client.Search(ctx, "Daft Punk Discovery", model.QueryAlbum, false)
package spotify
