package browser

import (
	"testing"
)

// Needs a reachable Chrome (DEBUGGER_ADDRESS or a local debugging port) or a
// launchable Chromium; skipped otherwise.
func TestSessionScroll(t *testing.T) {
	sess, err := Attach(ConfigFromEnv())
	if err != nil {
		t.Skipf("no browser available: %v", err)
	}
	defer sess.Close()

	if err := sess.Navigate("about:blank"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if err := sess.ScrollBy(600); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if h := sess.ViewportHeight(); h <= 0 {
		t.Fatalf("viewport height not readable: %v", h)
	}
}
