package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRasterizer renders SVG through a headless browser screenshot.
// It exists as an alternative backend for environments where the
// in-process renderer misses a font or SVG feature; resvg remains the
// default. The browser binary is located once at construction.
type ChromeRasterizer struct {
	execPath string
	timeout  time.Duration
}

// chromeCandidates are the browser binaries probed, in order.
var chromeCandidates = []string{"chromium", "chromium-browser", "google-chrome", "chrome"}

// NewChromeRasterizer locates a Chrome/Chromium binary on PATH.
func NewChromeRasterizer(timeout time.Duration) (*ChromeRasterizer, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	for _, candidate := range chromeCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return &ChromeRasterizer{execPath: path, timeout: timeout}, nil
		}
	}
	return nil, fmt.Errorf("no Chrome/Chromium binary found on PATH (tried %v)", chromeCandidates)
}

// NewChromeRasterizerWithPath uses an already resolved browser binary.
func NewChromeRasterizerWithPath(execPath string) *ChromeRasterizer {
	return &ChromeRasterizer{execPath: execPath, timeout: 30 * time.Second}
}

// Name identifies the backend in logs and startup checks.
func (c *ChromeRasterizer) Name() string { return "chrome" }

// Rasterize loads the SVG in a headless browser sized to the target
// dimensions and screenshots the page.
func (c *ChromeRasterizer) Rasterize(svgData []byte, width, height int) (image.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	page := fmt.Sprintf(
		`<!DOCTYPE html><html><head><style>html,body{margin:0;padding:0}svg{width:100vw;height:100vh;display:block}</style></head><body>%s</body></html>`,
		svgData)
	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(page))

	var shot []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(url),
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("headless browser screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decoding browser screenshot: %w", err)
	}
	return img, nil
}
