package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pdfTimeout bounds how long one print job may take.
const pdfTimeout = 30 * time.Second

// RenderPDF converts a rendered HTML artifact to PDF using a headless
// browser and writes it next to the HTML file. Requires Chrome/Chromium on
// the system; callers treat a failure here as non-fatal since the HTML
// artifact is the canonical document.
func RenderPDF(ctx context.Context, htmlPath string) (string, error) {
	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", &RenderError{Message: "failed to resolve artifact path", Cause: err}
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("artifact not found: %s", absPath), Cause: err}
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, pdfTimeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+absPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return "", &RenderError{Message: "pdf generation failed", Cause: err}
	}

	pdfPath := strings.TrimSuffix(absPath, filepath.Ext(absPath)) + ".pdf"
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to write pdf %s", pdfPath), Cause: err}
	}
	return pdfPath, nil
}
