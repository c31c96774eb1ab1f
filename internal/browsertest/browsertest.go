// Package browsertest provides the shared Playwright environment for browser
// tests: one fixture server and one browser per test binary, a fresh page per
// test. Tests skip when Playwright or the browser is missing and in -short
// mode.
package browsertest

import (
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/pickerpw/internal/config"
	"github.com/kuitang/pickerpw/internal/fixture"
	"github.com/kuitang/pickerpw/internal/obs"
)

const (
	// Always use these timeouts in browser tests. Never introduce a larger one.
	MaxTimeoutMS = 5000
	MaxTimeout   = 5 * time.Second
)

var (
	sharedMu  sync.Mutex
	sharedEnv *Env
)

// Env is the browser test environment.
type Env struct {
	Server  *httptest.Server
	BaseURL string
	Config  *config.Config

	pw        *playwright.Playwright
	browser   playwright.Browser
	browserMu sync.Mutex
}

// Setup returns the shared environment, starting the fixture server on first
// use.
func Setup(t *testing.T) *Env {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedEnv != nil {
		return sharedEnv
	}

	cfg, err := config.LoadConfig("", -1)
	if err != nil {
		t.Fatalf("Failed to load browser test config: %v", err)
	}
	if cfg.WaitTimeout > MaxTimeout {
		cfg.WaitTimeout = MaxTimeout
	}
	obs.SetLevel(cfg.LogLevel)

	handler, err := fixture.NewHandler(cfg.OverlayDelay)
	if err != nil {
		t.Fatalf("Failed to create fixture handler: %v", err)
	}
	server := httptest.NewServer(handler.Routes())

	sharedEnv = &Env{
		Server:  server,
		BaseURL: server.URL,
		Config:  cfg,
	}
	return sharedEnv
}

// Shutdown stops the browser, Playwright and the fixture server. Call it from
// TestMain after m.Run.
func Shutdown() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedEnv == nil {
		return
	}
	if sharedEnv.browser != nil {
		_ = sharedEnv.browser.Close()
	}
	if sharedEnv.pw != nil {
		_ = sharedEnv.pw.Stop()
	}
	if sharedEnv.Server != nil {
		sharedEnv.Server.Close()
	}
	sharedEnv = nil
}

// InitBrowser starts Playwright and launches the configured browser. Skips
// the test if either is not available.
func (env *Env) InitBrowser(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}

	env.browserMu.Lock()
	defer env.browserMu.Unlock()

	if env.browser != nil {
		return
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skip("Playwright not available:", err)
	}

	browser, err := browserType(pw, env.Config.Browser).Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(env.Config.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		t.Skip("Could not launch browser:", err)
	}
	env.pw = pw
	env.browser = browser
}

func browserType(pw *playwright.Playwright, name string) playwright.BrowserType {
	switch name {
	case "firefox":
		return pw.Firefox
	case "webkit":
		return pw.WebKit
	default:
		return pw.Chromium
	}
}

// NewPage opens a page in a fresh browser context with the configured
// default timeout. The context is closed when the test ends.
func (env *Env) NewPage(t *testing.T) playwright.Page {
	t.Helper()

	bctx, err := env.browser.NewContext()
	if err != nil {
		t.Fatalf("could not create browser context: %v", err)
	}
	t.Cleanup(func() { _ = bctx.Close() })

	bctx.SetDefaultTimeout(env.Config.WaitTimeoutMS())
	bctx.SetDefaultNavigationTimeout(MaxTimeoutMS)

	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	return page
}

// PickersPath returns the fixture page path with the given query parameters.
func PickersPath(query url.Values) string {
	if len(query) == 0 {
		return "/pickers"
	}
	return "/pickers?" + query.Encode()
}

// Navigate navigates to a path on the fixture server and waits for
// DOMContentLoaded.
func Navigate(t *testing.T, page playwright.Page, baseURL, path string) {
	t.Helper()

	_, err := page.Goto(baseURL+path, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(MaxTimeoutMS),
	})
	if err != nil {
		t.Fatalf("Failed to navigate to %s: %v", path, err)
	}
}

// WaitForSelector waits for an element to be visible and returns its locator.
func WaitForSelector(t *testing.T, page playwright.Page, selector string) playwright.Locator {
	t.Helper()

	first := page.Locator(selector).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(MaxTimeoutMS),
	})
	if err != nil {
		content, _ := page.Content()
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		t.Logf("Current URL: %s", page.URL())
		t.Logf("Content preview: %s", content)
		t.Fatalf("Failed to wait for selector %s: %v", selector, err)
	}
	return first
}

// UniqueName returns a label unique to this run, for telling fields apart in
// logs.
func UniqueName(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, id[:12])
}
