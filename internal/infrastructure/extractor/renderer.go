package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

const renderUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ChromeRenderer renders pages in a headless Chrome so script-built content
// is present in the returned HTML. Each call starts its own browser.
type ChromeRenderer struct {
	timeout   time.Duration
	allocOpts []chromedp.ExecAllocatorOption
}

var _ repository.PageRenderer = (*ChromeRenderer)(nil)

// NewChromeRenderer returns a renderer giving each page at most timeout.
func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(renderUserAgent),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	return &ChromeRenderer{timeout: timeout, allocOpts: opts}
}

// Render navigates to pageURL and returns the document's outer HTML.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var page string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chrome: %w", err)
	}
	return page, nil
}
