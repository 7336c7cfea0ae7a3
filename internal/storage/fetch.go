package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	fetchDefaultTimeout = 30 * time.Second
	maxFetchBytes       = 25 << 20
)

// Fetcher loads images referenced by URL: objects of the local store,
// data: URLs and remote http(s) resources. Concurrent fetches of one URL
// share a single download.
type Fetcher struct {
	client  *http.Client
	local   *FileStore
	group   singleflight.Group
	timeout time.Duration
}

// NewFetcher returns a Fetcher. local may be nil.
func NewFetcher(client *http.Client, local *FileStore) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchDefaultTimeout}
	}
	timeout := client.Timeout
	if timeout <= 0 {
		timeout = fetchDefaultTimeout
	}
	return &Fetcher{client: client, local: local, timeout: timeout}
}

// Fetch returns the raw bytes behind rawURL. A caller whose ctx ends stops
// waiting, but the shared download keeps running for the other callers until
// the fetch timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("storage: empty url")
	}
	ch := f.group.DoChan(rawURL, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return f.fetch(fctx, rawURL)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// FetchImage fetches and decodes an image, honouring EXIF orientation.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("storage: decode image: %w", err)
	}
	return img, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if key, ok := f.local.KeyForURL(rawURL); ok {
		return f.local.Read(ctx, key)
	}
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURL(rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storage: fetch %s: status %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read body: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("storage: %s exceeds %d bytes", rawURL, maxFetchBytes)
	}
	return data, nil
}

// decodeDataURL handles base64 data: URLs, the form model providers and
// browsers hand around for inline images.
func decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, errors.New("storage: malformed data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("storage: decode data url: %w", err)
	}
	return data, nil
}
