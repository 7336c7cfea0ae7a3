package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-chi/chi/v5"

	"studio/internal/storage"
)

const browserDefaultTimeout = 30 * time.Second

// BrowserOptions configures BrowserRenderer.
type BrowserOptions struct {
	ExecPath string
	Timeout  time.Duration
}

// BrowserRenderer screenshots the plan's HTML document in headless Chrome.
type BrowserRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewBrowserRenderer returns the headless-browser backend. Chrome is only
// launched on Render, so construction succeeds on hosts without it.
func NewBrowserRenderer(opts BrowserOptions) *BrowserRenderer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = browserDefaultTimeout
	}
	return &BrowserRenderer{execPath: opts.ExecPath, timeout: timeout}
}

// Name implements Renderer.
func (b *BrowserRenderer) Name() string { return "browser" }

// Render implements Renderer.
func (b *BrowserRenderer) Render(ctx context.Context, job Job) (image.Image, error) {
	if job.Background == nil {
		return nil, errors.New("browser: background is required")
	}
	doc, err := RenderHTML(job.Plan, job.Logo != nil)
	if err != nil {
		return nil, err
	}
	assets, err := pageAssets(job)
	if err != nil {
		return nil, err
	}
	srv, addr, err := servePage(doc, assets)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = srv.Close()
	}()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(job.Plan.Width, job.Plan.Height),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var (
		fontsReady bool
		shot       []byte
	)
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(job.Plan.Width), int64(job.Plan.Height)),
		chromedp.Navigate("http://"+addr+"/"),
		chromedp.WaitReady("body"),
		chromedp.Poll(`document.fonts.status === "loaded"`, &fontsReady, chromedp.WithPollingTimeout(10*time.Second)),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("browser: decode screenshot: %w", err)
	}
	return img, nil
}

func pageAssets(job Job) (map[string][]byte, error) {
	bg, err := storage.EncodePNG(job.Background)
	if err != nil {
		return nil, err
	}
	assets := map[string][]byte{
		backgroundPath:  bg,
		fontRegularPath: FontBytes(false),
		fontBoldPath:    FontBytes(true),
	}
	if job.Logo != nil {
		logo, err := storage.EncodePNG(job.Logo)
		if err != nil {
			return nil, err
		}
		assets[logoPath] = logo
	}
	return assets, nil
}

// pageRouter serves the document at / and the assets at their paths.
func pageRouter(doc string, assets map[string][]byte) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(doc))
	})
	for path, data := range assets {
		data := data
		r.Get(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", assetContentType(path))
			_, _ = w.Write(data)
		})
	}
	return r
}

func assetContentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".ttf"):
		return "font/ttf"
	default:
		return "application/octet-stream"
	}
}

// servePage exposes the page on a loopback port so the browser loads it like
// any site.
func servePage(doc string, assets map[string][]byte) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("browser: listen: %w", err)
	}
	srv := &http.Server{Handler: pageRouter(doc, assets), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, ln.Addr().String(), nil
}

var _ Renderer = (*BrowserRenderer)(nil)
