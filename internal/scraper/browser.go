package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserConfig holds the settings for one browser session.
type BrowserConfig struct {
	Headless          bool
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
}

// DefaultBrowserConfig returns the timeouts used against the live sites.
func DefaultBrowserConfig(headless bool) BrowserConfig {
	return BrowserConfig{
		Headless:          headless,
		NavigationTimeout: 30 * time.Second,
		SelectorTimeout:   10 * time.Second,
	}
}

// session is one throwaway browser + page. Every fetch attempt gets a fresh
// one; nothing is shared between attempts.
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// newSession launches a browser and opens a blank page.
func newSession(cfg BrowserConfig) (*session, error) {
	l := launcher.New().Headless(cfg.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &session{launcher: l, browser: browser, page: page}, nil
}

// close tears the whole session down.
func (s *session) close() {
	_ = s.browser.Close()
	s.launcher.Cleanup()
}

// stripHeadlessUserAgent removes the "Headless" marker from the user agent.
// The NSE site serves different (broken) markup to obviously-headless
// browsers.
func (s *session) stripHeadlessUserAgent() error {
	result, err := s.page.Eval("() => navigator.userAgent")
	if err != nil {
		return fmt.Errorf("failed to read user agent: %w", err)
	}

	ua := result.Value.Str()
	cleaned := strings.ReplaceAll(ua, "Headless", "")
	if cleaned == ua {
		return nil
	}

	return (proto.NetworkSetUserAgentOverride{UserAgent: cleaned}).Call(s.page)
}

// disableJavaScript turns off script execution for the page. The IBJA pages
// carry the price in their initial HTML and load faster without scripts.
func (s *session) disableJavaScript() error {
	return (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(s.page)
}

// navigate loads a URL, bounded by the configured navigation timeout. A
// timeout is classified as ErrSiteNotLoaded.
func (s *session) navigate(url string, timeout time.Duration) error {
	if err := s.page.Timeout(timeout).Navigate(url); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: navigation to %s timed out", ErrSiteNotLoaded, url)
		}
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// waitVisible blocks until the selector appears, bounded by timeout. A
// timeout is classified as ErrSiteNotLoaded: the page responded but its data
// never rendered.
func (s *session) waitVisible(selector string, timeout time.Duration) error {
	if _, err := s.page.Timeout(timeout).Element(selector); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: selector %q did not appear", ErrSiteNotLoaded, selector)
		}
		return fmt.Errorf("failed waiting for %q: %w", selector, err)
	}
	return nil
}

// texts returns the text content of every element matching the selector.
func (s *session) texts(selector string) ([]string, error) {
	elements, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	out := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("failed to read text of %q: %w", selector, err)
		}
		out = append(out, text)
	}
	return out, nil
}

// text returns the text content of the first element matching the selector,
// waiting up to timeout for it to appear.
func (s *session) text(selector string, timeout time.Duration) (string, error) {
	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: selector %q did not appear", ErrSiteNotLoaded, selector)
		}
		return "", fmt.Errorf("failed to find %q: %w", selector, err)
	}
	return el.Text()
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// ScreenshotElement renders a URL in a fresh session and screenshots the
// element matching the selector. Used by the Telegram notifier to turn the
// rendered results table into an image.
func ScreenshotElement(cfg BrowserConfig, url, selector string) ([]byte, error) {
	s, err := newSession(cfg)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if err := s.navigate(url, cfg.NavigationTimeout); err != nil {
		return nil, err
	}

	el, err := s.page.Timeout(cfg.SelectorTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to find %q for screenshot: %w", selector, err)
	}

	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}
