package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func TestSanitizeKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "composites/a.png", want: "composites/a.png"},
		{in: "/backgrounds//b.png", want: "backgrounds/b.png"},
		{in: `.\win\c.png`, want: "win/c.png"},
		{in: "../escape.png", wantErr: true},
		{in: "a/../../escape.png", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestFileStorePutReadRoundTrip(t *testing.T) {
	t.Parallel()
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	url, err := store.Put(ctx, "composites/s1-1.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/static/composites/s1-1.png" {
		t.Fatalf("url = %q", url)
	}
	key, ok := store.KeyForURL(url)
	if !ok || key != "composites/s1-1.png" {
		t.Fatalf("KeyForURL = %q, %v", key, ok)
	}
	data, err := store.Read(ctx, key)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if _, err := store.Read(ctx, "missing.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Read missing err = %v, want ErrObjectNotFound", err)
	}
	if _, ok := store.KeyForURL("https://cdn.example.com/x.png"); ok {
		t.Fatal("foreign URL should not map to a key")
	}
}

func TestFileStoreFileURLs(t *testing.T) {
	t.Parallel()
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	url, err := store.Put(context.Background(), "backgrounds/s.png", []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("url = %q, want file://", url)
	}
	key, ok := store.KeyForURL(url)
	if !ok || key != "backgrounds/s.png" {
		t.Fatalf("KeyForURL = %q, %v", key, ok)
	}
}

func TestFetcherSourcesAndDecode(t *testing.T) {
	t.Parallel()
	store, err := NewFileStore(t.TempDir(), "http://local/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	pngBytes, err := EncodePNG(solid(4, 3))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	localURL, err := store.Put(context.Background(), "logos/l.png", pngBytes, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	var remoteCalls atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		remoteCalls.Add(1)
		if r.URL.Host == "broken.example.com" {
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(string(pngBytes)))}, nil
	})}
	f := NewFetcher(client, store)
	ctx := context.Background()

	for _, u := range []string{
		localURL,
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		"https://cdn.example.com/logo.png",
	} {
		img, err := f.FetchImage(ctx, u)
		if err != nil {
			t.Fatalf("FetchImage(%.40s): %v", u, err)
		}
		if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
			t.Fatalf("bounds = %v", b)
		}
	}
	if remoteCalls.Load() != 1 {
		t.Fatalf("remote calls = %d, want 1", remoteCalls.Load())
	}
	if _, err := f.Fetch(ctx, "https://broken.example.com/x.png"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetcherSharedDownloadSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		once.Do(func() { close(started) })
		<-release
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("logo"))}, nil
	})}
	f := NewFetcher(client, nil)
	const url = "https://cdn.example.com/shared.png"

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(first, url)
		firstErr <- err
	}()
	<-started

	type result struct {
		data []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		data, err := f.Fetch(context.Background(), url)
		second <- result{data, err}
	}()
	// let the second caller join the in-flight download
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v", err)
	}
	close(release)
	got := <-second
	if got.err != nil || string(got.data) != "logo" {
		t.Fatalf("second caller = %q, %v", got.data, got.err)
	}
}

func TestEncoderDefaultsToPNG(t *testing.T) {
	t.Parallel()
	out, err := Encoder{Format: "tiff"}.Encode(solid(2, 2))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out.Ext != FormatPNG || out.ContentType != "image/png" {
		t.Fatalf("unexpected encoding %+v", out)
	}
	if !strings.HasPrefix(string(out.Data), "\x89PNG") {
		t.Fatal("data is not PNG")
	}
}
