package browser

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Fixed stealth profile. Constant on purpose: a stable fingerprint with
// randomized timing is less detectable than a fingerprint that changes
// per session.
const (
	stealthUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	stealthLocale    = "en-US"
	stealthTimezone  = "America/New_York"
)

// hideWebdriver masks the automation flag the runtime exposes to page
// scripts before any site script runs.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Engine owns one browser runtime and hands out isolated, stealth-configured
// contexts. One context per application attempt; contexts are never shared.
type Engine struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	headless    bool
	cookiesPath string
	logger      *slog.Logger
}

func NewEngine(headless bool, cookiesPath string, logger *slog.Logger) *Engine {
	return &Engine{
		headless:    headless,
		cookiesPath: cookiesPath,
		logger:      logger,
	}
}

// Start launches the browser runtime with automation-detection flags
// disabled. Idempotent: later calls are no-ops while the runtime is up.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.headless),
		Args: []string{
			"--no-sandbox",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
			"--disable-plugins-discovery",
		},
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	e.pw = pw
	e.browser = browser
	e.logger.Info("browser runtime started", "headless", e.headless)
	return nil
}

// NewStealthContext opens an isolated browsing context carrying the fixed
// stealth profile, injects the webdriver mask, and preloads exported
// session cookies when a cookies file is configured.
func (e *Engine) NewStealthContext() (playwright.BrowserContext, error) {
	e.mu.Lock()
	browser := e.browser
	e.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("engine not started")
	}

	ctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:   &playwright.Size{Width: 1920, Height: 1080},
		UserAgent:  playwright.String(stealthUserAgent),
		Locale:     playwright.String(stealthLocale),
		TimezoneId: playwright.String(stealthTimezone),
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriver)}); err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to inject stealth script: %w", err)
	}

	if e.cookiesPath != "" {
		cookies, err := LoadCookies(e.cookiesPath)
		if err != nil {
			e.logger.Warn("could not load session cookies", "path", e.cookiesPath, "error", err)
		} else if len(cookies) > 0 {
			if err := ctx.AddCookies(cookies); err != nil {
				e.logger.Warn("could not add session cookies", "error", err)
			}
		}
	}

	return ctx, nil
}

// NavigateToJob opens the posting URL on a fresh page with human-like
// pacing. The page is closed before any error propagates.
func (e *Engine) NavigateToJob(bctx playwright.BrowserContext, url string) (playwright.Page, error) {
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// Instantaneous navigation right after context creation is a bot tell.
	RandomDelay(500, 1500)

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		page.Close()
		return nil, &NavigationError{URL: url, Err: err}
	}

	if err := checkBlocked(page); err != nil {
		page.Close()
		return nil, err
	}

	// "Reading" pause before the caller starts interacting.
	RandomDelay(1000, 3000)
	return page, nil
}

// checkBlocked looks for challenge interstitials and captchas the way the
// target sites actually present them.
func checkBlocked(page playwright.Page) error {
	title, _ := page.Title()
	lower := strings.ToLower(title)
	if strings.Contains(lower, "cloudflare") ||
		strings.Contains(lower, "attention required") ||
		strings.Contains(lower, "just a moment") {
		return &NavigationError{URL: page.URL(), Err: fmt.Errorf("blocked by challenge page: %q", title)}
	}

	if count, _ := page.Locator(".captcha, .recaptcha, [data-captcha], iframe[src*='captcha']").Count(); count > 0 {
		return &NavigationError{URL: page.URL(), Err: fmt.Errorf("captcha challenge present")}
	}
	return nil
}

// CaptureScreenshot takes a full-page capture for the audit trail.
func (e *Engine) CaptureScreenshot(page playwright.Page) ([]byte, error) {
	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return data, nil
}

// Close releases browser then runtime handles. Safe to call repeatedly.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			e.logger.Warn("browser close failed", "error", err)
		}
		e.browser = nil
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil {
			e.logger.Warn("playwright stop failed", "error", err)
		}
		e.pw = nil
	}
	return nil
}
