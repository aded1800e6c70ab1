// Package browser owns the live automation session against Chrome. It exposes
// the narrow surface the resolver needs (find, evaluate, scroll, click,
// screenshot, navigate) and nothing else; callers must treat the session as a
// single shared resource and serialize their use of it.
package browser

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// ErrNotAttached is returned by every Session method once the underlying
// browser or page has gone away. Callers should abandon the attempt in
// progress rather than retry against a dead session.
var ErrNotAttached = errors.New("browser session not attached")

// Config controls how a session is established.
type Config struct {
	// DebuggerAddress is an explicit host:port of a Chrome started with
	// --remote-debugging-port. When empty the well-known local ports are tried.
	DebuggerAddress string
	// ExecutablePath overrides the browser binary for a fresh launch.
	ExecutablePath string
	// Headless applies only to a fresh launch; attaching reuses whatever the
	// user already has on screen.
	Headless bool
}

// ConfigFromEnv reads DEBUGGER_ADDRESS, PLAYWRIGHT_EXECUTABLE_PATH and
// JARVIS_HEADLESS.
func ConfigFromEnv() Config {
	return Config{
		DebuggerAddress: strings.TrimSpace(os.Getenv("DEBUGGER_ADDRESS")),
		ExecutablePath:  os.Getenv("PLAYWRIGHT_EXECUTABLE_PATH"),
		Headless:        os.Getenv("JARVIS_HEADLESS") == "1",
	}
}

// Rect is a vertical slice of an element's bounding box in viewport
// coordinates. Top may be negative when the element sits above the fold.
type Rect struct {
	Top    float64
	Bottom float64
}

// Session wraps one playwright page. The zero value is unusable; build one
// with Attach.
type Session struct {
	runner  *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

// Attach connects to an already-running Chrome over CDP, trying the explicit
// address first and then the usual local debugging ports. When nothing is
// listening it launches a fresh Chromium instead.
func Attach(cfg Config) (*Session, error) {
	runner, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var addresses []string
	if cfg.DebuggerAddress != "" {
		addresses = append(addresses, cfg.DebuggerAddress)
	}
	for _, port := range []string{"9222", "9223", "9333"} {
		addresses = append(addresses, "127.0.0.1:"+port, "localhost:"+port)
	}

	for _, addr := range addresses {
		b, err := runner.Chromium.ConnectOverCDP("http://" + addr)
		if err != nil {
			continue
		}
		page, err := firstPage(b)
		if err != nil {
			_ = b.Close()
			continue
		}
		log.Printf("✅ Attached to Chrome at %s", addr)
		return &Session{runner: runner, browser: b, page: page}, nil
	}

	return launch(runner, cfg)
}

func launch(runner *pw.Playwright, cfg Config) (*Session, error) {
	execPath := cfg.ExecutablePath
	if execPath == "" {
		for _, p := range []string{
			"/usr/bin/chromium",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
		} {
			if _, err := os.Stat(p); err == nil {
				execPath = p
				break
			}
		}
	}

	opts := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(cfg.Headless),
		Args:     []string{"--start-maximized", "--disable-blink-features=AutomationControlled"},
	}
	if execPath != "" {
		opts.ExecutablePath = pw.String(execPath)
		log.Printf("🚀 Using browser executable: %s", execPath)
	}

	b, err := runner.Chromium.Launch(opts)
	if err != nil {
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	page, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	log.Printf("🚀 Launched new browser instance")
	return &Session{runner: runner, browser: b, page: page}, nil
}

func firstPage(b pw.Browser) (pw.Page, error) {
	for _, bc := range b.Contexts() {
		if pages := bc.Pages(); len(pages) > 0 {
			return pages[0], nil
		}
	}
	if len(b.Contexts()) > 0 {
		return b.Contexts()[0].NewPage()
	}
	return b.NewPage()
}

// Alive reports whether the session can still be used. Cheap enough to call
// before every tier of work.
func (s *Session) Alive() bool {
	if s == nil || s.browser == nil || s.page == nil {
		return false
	}
	return s.browser.IsConnected() && !s.page.IsClosed()
}

func (s *Session) check() error {
	if !s.Alive() {
		return ErrNotAttached
	}
	return nil
}

// FindVisibleElements returns the handles matching selector that are
// currently rendered visible. Handles are only valid while the page stays on
// the same document.
func (s *Session) FindVisibleElements(selector string) ([]pw.ElementHandle, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	all, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	visible := make([]pw.ElementHandle, 0, len(all))
	for _, el := range all {
		if ok, err := el.IsVisible(); err == nil && ok {
			visible = append(visible, el)
		}
	}
	return visible, nil
}

// Evaluate runs a JS function in the page and returns its decoded result.
func (s *Session) Evaluate(js string, args ...interface{}) (interface{}, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.page.Evaluate(js, args...)
}

// CurrentURL returns the page's URL, or an error when the session is gone.
func (s *Session) CurrentURL() (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

// Navigate loads url and waits for the document load event, bounded.
func (s *Session) Navigate(url string) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateLoad,
		Timeout:   pw.Float(15000),
	})
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// ScrollBy scrolls the viewport forward by delta pixels.
func (s *Session) ScrollBy(delta int) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.page.Evaluate("(d) => window.scrollBy(0, d)", delta)
	return err
}

// ViewportHeight returns window.innerHeight, 0 when it cannot be read.
func (s *Session) ViewportHeight() float64 {
	v, err := s.Evaluate("() => window.innerHeight")
	if err != nil {
		return 0
	}
	return asFloat(v)
}

// ElementRect reads the element's bounding rect relative to the viewport.
func (s *Session) ElementRect(el pw.ElementHandle) (Rect, error) {
	if err := s.check(); err != nil {
		return Rect{}, err
	}
	v, err := el.Evaluate("el => { const r = el.getBoundingClientRect(); return { top: r.top, bottom: r.bottom }; }")
	if err != nil {
		return Rect{}, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return Rect{}, fmt.Errorf("unexpected rect result type: %T", v)
	}
	return Rect{Top: asFloat(m["top"]), Bottom: asFloat(m["bottom"])}, nil
}

// ScrollIntoView centers the element in the viewport.
func (s *Session) ScrollIntoView(el pw.ElementHandle) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := el.Evaluate("el => el.scrollIntoView({ block: 'center' })")
	return err
}

// Click performs a native click on the element, bounded.
func (s *Session) Click(el pw.ElementHandle) error {
	if err := s.check(); err != nil {
		return err
	}
	return el.Click(pw.ElementHandleClickOptions{Timeout: pw.Float(3000)})
}

// MouseClick moves the pointer to viewport coordinates and clicks there. Used
// as the second strategy in the click chain.
func (s *Session) MouseClick(x, y float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.page.Mouse().Move(x, y); err != nil {
		return err
	}
	return s.page.Mouse().Click(x, y)
}

// BoundingBox returns the element's full box, nil when it has none.
func (s *Session) BoundingBox(el pw.ElementHandle) (*pw.Rect, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return el.BoundingBox()
}

// Screenshot captures the current viewport as PNG bytes.
func (s *Session) Screenshot() ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.page.Screenshot(pw.PageScreenshotOptions{Timeout: pw.Float(10000)})
}

// WaitForSelector blocks until selector appears, up to timeout.
func (s *Session) WaitForSelector(selector string, timeout time.Duration) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.page.WaitForSelector(selector, pw.PageWaitForSelectorOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	return err
}

// Close tears the whole session down, including the playwright driver.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.runner != nil {
		_ = s.runner.Stop()
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
