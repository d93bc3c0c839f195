package browser

import (
	"fmt"
	"io"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// NavigationBlockedError reports that the browser itself refused a
// navigation (client-side block), as opposed to an ordinary HTTP
// failure from the server.
type NavigationBlockedError struct {
	URL string
	Err error
}

func (e *NavigationBlockedError) Error() string {
	return fmt.Sprintf("navigation to %s blocked by the browser: %v", e.URL, e.Err)
}

func (e *NavigationBlockedError) Unwrap() error {
	return e.Err
}

// Launch installs and starts Playwright, launches a Chromium browser
// and opens a single page. The caller owns the returned session and
// must Close it.
func Launch(opts SessionOptions) (*Session, error) {
	// Discard driver output so it does not interleave with CLI logging
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	return &Session{
		PW:       pw,
		Browser:  browser,
		Context:  context,
		Page:     page,
		Headless: opts.Headless,
	}, nil
}

// Close releases all browser resources. Errors from individual
// resources are ignored so cleanup always runs to completion.
func (s *Session) Close() error {
	_ = s.Page.Close()
	_ = s.Context.Close()
	_ = s.Browser.Close()
	if err := s.PW.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// Navigate navigates the page to the specified URL, distinguishing a
// client-side navigation block from other failures.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		if isBlockedNavigation(err) {
			return &NavigationBlockedError{URL: url, Err: err}
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// isBlockedNavigation matches the driver's client-side block errors.
func isBlockedNavigation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "net::ERR_BLOCKED_BY_CLIENT") ||
		strings.Contains(msg, "net::ERR_BLOCKED_BY_RESPONSE")
}

// Click clicks an element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	playwrightOpts := playwright.PageClickOptions{}

	if opts.ClickCount > 0 {
		playwrightOpts.ClickCount = &opts.ClickCount
	}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Click(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(opts FillOptions) error {
	playwrightOpts := playwright.PageFillOptions{}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Fill(opts.Selector, opts.Value, playwrightOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Wait waits for an element to reach a state.
func (s *Session) Wait(opts WaitOptions) error {
	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	playwrightOpts := playwright.PageWaitForSelectorOptions{}

	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		playwrightOpts.State = &state
	}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.WaitForSelector(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// Evaluate executes JavaScript in the page context.
func (s *Session) Evaluate(code string) (interface{}, error) {
	result, err := s.Page.Evaluate(code)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}
