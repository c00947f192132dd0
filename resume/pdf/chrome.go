package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultChromeTimeout = 60 * time.Second

// chromeCandidates are probed on PATH when no explicit binary is configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

var lookPath = exec.LookPath

// ChromeRasterizer prints pages with a headless Chrome driven by chromedp.
type ChromeRasterizer struct {
	execPath string
	timeout  time.Duration
}

// NewChromeRasterizer returns a rasterizer using execPath, or the first
// Chrome found on PATH when execPath is empty.
func NewChromeRasterizer(execPath string, timeout time.Duration) *ChromeRasterizer {
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}
	return &ChromeRasterizer{execPath: execPath, timeout: timeout}
}

// Available reports whether a Chrome binary can be located.
func (c *ChromeRasterizer) Available() bool {
	_, err := c.resolve()
	return err == nil
}

func (c *ChromeRasterizer) resolve() (string, error) {
	if c.execPath != "" {
		if _, err := os.Stat(c.execPath); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrRasterizerUnavailable, c.execPath, err)
		}
		return c.execPath, nil
	}
	for _, name := range chromeCandidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chrome binary on PATH", ErrRasterizerUnavailable)
}

// Rasterize loads the page from a temporary file and prints it to PDF.
// Failures to launch or connect to the browser wrap
// ErrRasterizerUnavailable.
func (c *ChromeRasterizer) Rasterize(ctx context.Context, html string, setup PageSetup) ([]byte, error) {
	path, err := c.resolve()
	if err != nil {
		return nil, err
	}

	runCtx, cancelRun := context.WithTimeout(ctx, c.timeout)
	defer cancelRun()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(path),
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(runCtx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// an empty Run launches the browser and attaches the first tab
	if err := chromedp.Run(browserCtx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: start chrome: %v", ErrRasterizerUnavailable, err)
	}

	tmpDir, err := os.MkdirTemp("", "resume-pdf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, err
	}

	var (
		pdfBuf       []byte
		contentWidth float64
	)
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(printableWidthPx(setup)), viewportHeightPx),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.documentElement.scrollWidth`, &contentWidth),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(setup.PrintBackground).
				WithLandscape(setup.Landscape).
				WithPaperWidth(setup.WidthIn).
				WithPaperHeight(setup.HeightIn).
				WithMarginTop(setup.MarginIn).
				WithMarginBottom(setup.MarginIn).
				WithMarginLeft(setup.MarginIn).
				WithMarginRight(setup.MarginIn).
				WithScale(fitScale(contentWidth, setup)).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdfBuf, nil
}

const (
	cssPxPerInch     = 96
	viewportHeightPx = 1056
	minPrintScale    = 0.1
)

func printableWidthPx(setup PageSetup) float64 {
	width := setup.WidthIn
	if setup.Landscape {
		width = setup.HeightIn
	}
	return (width - 2*setup.MarginIn) * cssPxPerInch
}

// fitScale shrinks content wider than the printable area so it fits the
// page width. Content that already fits prints at scale 1.
func fitScale(contentWidthPx float64, setup PageSetup) float64 {
	printable := printableWidthPx(setup)
	if contentWidthPx <= printable || printable <= 0 {
		return 1
	}
	scale := printable / contentWidthPx
	if scale < minPrintScale {
		return minPrintScale
	}
	return scale
}
