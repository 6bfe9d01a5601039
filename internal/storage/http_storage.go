package storage

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"go-cvd-inspector/pkg/models"
)

const maxAttempts = 3

// HTTPImageFetcher implements ImageFetcher over HTTP(S) with retries
type HTTPImageFetcher struct {
	client   *http.Client
	backoff  time.Duration
	maxBytes int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher. timeout bounds each
// request; zero means 30 seconds.
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Connection pooling tuned for single image downloads
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff:  time.Second,
		maxBytes: DefaultMaxImageBytes,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	resp, err := h.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeImage(resp.Body, h.maxBytes)
}

func (h *HTTPImageFetcher) FetchMetadata(ctx context.Context, imageURL string) (*models.ImageMetadata, error) {
	resp, err := h.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeMetadata(resp.Body, resp.Header.Get("Content-Type"), resp.ContentLength)
}

// get issues a GET, retrying transport errors and 5xx responses with linear
// backoff. 4xx responses are final. On success the caller closes the body.
func (h *HTTPImageFetcher) get(ctx context.Context, imageURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, image/bmp, image/tiff, */*")
		req.Header.Set("User-Agent", "Go-CVD-Inspector/1.0")

		resp, err := h.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			drain(resp)
			return nil, fmt.Errorf("client error: status code %d", resp.StatusCode)
		case resp.StatusCode >= 500:
			drain(resp)
			lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		default:
			drain(resp)
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * h.backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxAttempts, lastErr)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
