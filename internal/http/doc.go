// Package http provides the HTTP client used for auxiliary downloads such
// as video thumbnails.
//
// The Client sets a configurable User-Agent on every request, applies a
// timeout and refuses bodies that are unreasonably large for the small
// resources it is meant for.
//
//	client := http.NewClient(settings.UserAgent)
//	artwork, err := client.DownloadBytes(ctx, artifact.ThumbnailURL)
package http
