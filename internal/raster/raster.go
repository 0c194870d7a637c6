// Package raster turns scene SVG into PNG using headless Chromium.
package raster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultTimeout = 15 * time.Second

// Chromium renders through a remote browser when CDPURL is set, otherwise
// through a locally launched headless one.
type Chromium struct {
	CDPURL  string
	Timeout time.Duration
}

// PNG rasterizes svg at width×height CSS pixels.
func (c *Chromium) PNG(ctx context.Context, svg []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if c.CDPURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, c.CDPURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.WindowSize(width, height))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	html := pageHTML(svg, width, height)
	var png []byte
	err := chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			png, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: float64(width), Height: float64(height), Scale: 1}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	slog.Debug("scene rasterized", "width", width, "height", height, "bytes", len(png), "remote", c.CDPURL != "")
	return png, nil
}

// pageHTML embeds svg in a page sized exactly to the viewport on the chart's
// dark background.
func pageHTML(svg []byte, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!doctype html><html><head><style>html,body{margin:0;padding:0;background:#0b1220;overflow:hidden}svg{display:block;width:%dpx;height:%dpx}</style></head><body>`, width, height)
	b.Write(svg)
	b.WriteString(`</body></html>`)
	return b.String()
}
