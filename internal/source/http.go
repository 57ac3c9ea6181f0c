package source

import (
	"context"
	"fmt"
	"image"
	"net/http"
)

// HTTPSource loads images over HTTP(S).
type HTTPSource struct {
	Client *http.Client
}

// Load fetches url and decodes the response body. Cancellation propagates
// through the request context.
func (s *HTTPSource) Load(ctx context.Context, url string) (*image.NRGBA, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	img, err := decode(resp.Body)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	return img, nil
}
