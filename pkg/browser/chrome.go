package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

const (
	navigateTimeout = 90 * time.Second
	dismissTimeout  = 1500 * time.Millisecond
	scrollByPixels  = 20000
)

// Options configures a Chrome session.
type Options struct {
	UserAgent   string
	Headless    bool
	CookiesFile string
}

// Chrome is a chromedp-backed Session. The embedded context carries the
// browser lifetime; cancelling the parent context tears the browser down.
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
	log     *slog.Logger
}

// NewChrome launches a browser, preloads exported cookies when present, and
// returns a ready session. Cookie-load failures are logged and swallowed.
func NewChrome(parent context.Context, opts Options, log *slog.Logger) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1280, 2000),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Chrome{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{tabCancel, allocCancel},
		log:     log,
	}

	// Start the browser eagerly so a missing binary fails here, not mid-run.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: failed to launch: %w", err)
	}

	if opts.CookiesFile != "" {
		if err := s.preloadCookies(opts.CookiesFile); err != nil {
			log.Warn("cookie preload failed, continuing unauthenticated", "file", opts.CookiesFile, "error", err)
		}
	}

	return s, nil
}

func (s *Chrome) preloadCookies(path string) error {
	cookies, err := LoadCookies(path)
	if err != nil {
		return err
	}
	if len(cookies) == 0 {
		return nil
	}

	err = chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			p := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if c.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p = p.WithExpires(&exp)
			}
			if err := p.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
	if err != nil {
		return err
	}

	s.log.Info("cookies loaded", "file", path, "count", len(cookies))
	return nil
}

// Navigate loads the URL and waits for the document body.
func (s *Chrome) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, navigateTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

// Snapshot returns the full rendered document.
func (s *Chrome) Snapshot() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: snapshot: %w", err)
	}
	return html, nil
}

// ScrollMore scrolls toward the bottom to trigger the next content load.
func (s *Chrome) ScrollMore() error {
	script := fmt.Sprintf("window.scrollBy(0, %d)", scrollByPixels)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("browser: scroll: %w", err)
	}
	return nil
}

// Wait sleeps for the settle delay, returning early if the browser context
// dies.
func (s *Chrome) Wait(d time.Duration) {
	select {
	case <-s.ctx.Done():
	case <-time.After(d):
	}
}

// dismissScript clicks the first visible button matching a consent label.
const dismissScript = `(() => {
	const labels = ["Accept", "I agree", "Allow all"];
	for (const el of document.querySelectorAll('button, [role="button"]')) {
		const text = (el.innerText || "").trim();
		if (labels.some(l => text.startsWith(l))) { el.click(); return text; }
	}
	return "";
})()`

// DismissOverlays is best effort: any failure is swallowed.
func (s *Chrome) DismissOverlays() {
	ctx, cancel := context.WithTimeout(s.ctx, dismissTimeout)
	defer cancel()

	var clicked string
	if err := chromedp.Run(ctx, chromedp.Evaluate(dismissScript, &clicked)); err != nil {
		return
	}
	if clicked != "" {
		s.log.Info("dismissed overlay", "label", clicked)
	}
}

// ExportCookies reads the browser's current cookie jar, for the login flow.
func (s *Chrome) ExportCookies() ([]Cookie, error) {
	var out []Cookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
				SameSite: string(c.SameSite),
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("browser: export cookies: %w", err)
	}
	return out, nil
}

// Close tears down the tab and the browser process.
func (s *Chrome) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	return nil
}
