package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/fortuna/florbal-stats/internal/cache"
	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

const (
	// UpstreamTimeout bounds a single upstream request.
	UpstreamTimeout = 15 * time.Second

	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguageHeader = "cs,en;q=0.9"
)

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// HTTPUpstream fetches pages with a plain HTTP client, following redirects.
type HTTPUpstream struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewHTTPUpstream creates an upstream rooted at baseURL allowing rps requests per
// second (unlimited when rps <= 0).
func NewHTTPUpstream(baseURL string, rps float64) *HTTPUpstream {
	if baseURL == "" {
		baseURL = florbal.UpstreamBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(UpstreamTimeout).
		SetHeader("User-Agent", florbal.UserAgent).
		SetHeader("Accept", acceptHeader).
		SetHeader("Accept-Language", acceptLanguageHeader)

	return &HTTPUpstream{
		http:    httpClient,
		limiter: newLimiter(rps),
	}
}

func (u *HTTPUpstream) Get(ctx context.Context, path string, query url.Values) (cache.Page, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return cache.Page{}, err
	}

	req := u.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Get(path)
	if err != nil {
		return cache.Page{}, fmt.Errorf("upstream request failed: %w", err)
	}

	return cache.Page{
		Status:      res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		Body:        res.Body(),
	}, nil
}

// BrowserUpstream renders pages in headless Chrome, for when the site only serves
// complete markup to a real browser.
type BrowserUpstream struct {
	baseURL  string
	limiter  *rate.Limiter
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowserUpstream starts a Chrome allocator. Close releases it.
func NewBrowserUpstream(baseURL string, rps float64) *BrowserUpstream {
	if baseURL == "" {
		baseURL = florbal.UpstreamBaseURL
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(florbal.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserUpstream{
		baseURL:  strings.TrimRight(baseURL, "/"),
		limiter:  newLimiter(rps),
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases resources
func (b *BrowserUpstream) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Get renders the page and returns its outer HTML. The browser does not expose the
// document status, so a rendered page is reported as 200.
func (b *BrowserUpstream) Get(ctx context.Context, path string, query url.Values) (cache.Page, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return cache.Page{}, err
	}

	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	browserCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 2*UpstreamTimeout)
	defer cancel()

	// Abort the render when the caller goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return cache.Page{}, fmt.Errorf("chromedp error: %w", err)
	}

	if html == "" {
		return cache.Page{}, fmt.Errorf("empty HTML content returned")
	}

	return cache.Page{
		Status:      200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}
