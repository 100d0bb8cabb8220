package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

var ErrBrowserMissing = errors.New("no chromium binary found")

type Viewport struct {
	Name   string
	Width  int64
	Height int64
	Scale  float64
	Mobile bool
}

var DefaultViewports = []Viewport{
	{Name: "desktop", Width: 1200, Height: 800, Scale: 1},
	{Name: "mobile", Width: 375, Height: 812, Scale: 2, Mobile: true},
}

// Shot is one written screenshot.
type Shot struct {
	Viewport string `json:"viewport"`
	Path     string `json:"path"`
}

// Renderer takes full-page PNG screenshots of a local HTML file with headless Chrome.
type Renderer struct {
	viewports []Viewport
	timeout   time.Duration
}

func NewRenderer() *Renderer {
	return &Renderer{
		viewports: DefaultViewports,
		timeout:   45 * time.Second,
	}
}

func ShotPath(dir string, vp Viewport) string {
	return filepath.Join(dir, fmt.Sprintf("preview-%s.png", vp.Name))
}

func browserAvailable() bool {
	for _, bin := range []string{"chromium-browser", "chromium", "google-chrome", "headless-shell"} {
		if _, err := exec.LookPath(bin); err == nil {
			return true
		}
	}
	return false
}

// Render screenshots htmlPath once per viewport into the file's directory.
func (r *Renderer) Render(ctx context.Context, htmlPath string) ([]Shot, error) {
	if !browserAvailable() {
		return nil, ErrBrowserMissing
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	shots := make([]Shot, 0, len(r.viewports))
	for _, vp := range r.viewports {
		var buf []byte
		err := chromedp.Run(taskCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				return emulation.SetDeviceMetricsOverride(vp.Width, vp.Height, vp.Scale, vp.Mobile).Do(ctx)
			}),
			chromedp.Navigate("file://"+abs),
			chromedp.WaitReady("body"),
			chromedp.FullScreenshot(&buf, 100),
		)
		if err != nil {
			return shots, fmt.Errorf("screenshot %s: %w", vp.Name, err)
		}

		out := ShotPath(filepath.Dir(abs), vp)
		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return shots, fmt.Errorf("write %s: %w", out, err)
		}
		shots = append(shots, Shot{Viewport: vp.Name, Path: out})
	}
	return shots, nil
}
