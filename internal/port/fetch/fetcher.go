package fetch

import "context"

// ImageFetcher retrieves a remote image. It returns the bytes and the
// resolved content type, or an error for non-2xx responses, oversized
// bodies, and transport failures.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}
