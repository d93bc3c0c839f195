// Package store drives the shop admin application: login, product page
// navigation, description editing and image uploads. It sits on top of
// pkg/browser for the page driver and pkg/filemanager for the upload
// engine.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/entrhq/storepilot/pkg/browser"
)

// ErrNotLoggedIn is returned by operations that need an authenticated
// admin session before Login has succeeded.
var ErrNotLoggedIn = errors.New("not logged in")

// Driver is the page surface the store layer needs. *browser.Session
// implements it; tests substitute fakes.
type Driver interface {
	Navigate(url string, opts browser.NavigateOptions) error
	Click(opts browser.ClickOptions) error
	Fill(opts browser.FillOptions) error
	Wait(opts browser.WaitOptions) error
	Evaluate(code string) (interface{}, error)
	URL() string
}

// Uploader runs a batch upload through the embedded file manager.
// *filemanager.Manager implements it.
type Uploader interface {
	UploadBatch(tab string, paths []string) ([]string, error)
}

// Selectors locates the admin application's elements outside the file
// manager. ProductTab is a fmt.Sprintf template taking the tab name.
type Selectors struct {
	LoginUser   string
	LoginPass   string
	LoginSubmit string
	Dashboard   string

	ProductTab     string
	DescriptionBox string
	SaveButton     string
	SavedMarker    string
}

// Config carries the store layer's knobs.
type Config struct {
	// BaseURL is the admin application's root URL, without a trailing
	// slash.
	BaseURL string

	Username string
	Password string

	// LoginPath and ProductPath are appended to BaseURL. ProductPath
	// is a template taking the product id.
	LoginPath   string
	ProductPath string

	// TokenParam names the session token query parameter the admin
	// application carries across pages after login. Empty disables
	// token capture.
	TokenParam string

	// ImagesTab and DescriptionTab name the product page tabs.
	ImagesTab      string
	DescriptionTab string

	Selectors Selectors
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.ProductPath == "" {
		c.ProductPath = "/products/%s/edit"
	}
	if c.ImagesTab == "" {
		c.ImagesTab = "images"
	}
	if c.DescriptionTab == "" {
		c.DescriptionTab = "description"
	}
	return c
}

// Session is an authenticated connection to the admin application. It
// is not safe for concurrent use; callers must serialize operations.
type Session struct {
	driver   Driver
	uploader Uploader
	cfg      Config
	log      zerolog.Logger

	token    string
	loggedIn bool

	// productID is the product whose edit page the driver currently
	// shows, empty when elsewhere.
	productID string
}

// New creates a store session. The uploader may be nil when image
// uploads are not needed.
func New(driver Driver, uploader Uploader, cfg Config, log zerolog.Logger) *Session {
	return &Session{
		driver:   driver,
		uploader: uploader,
		cfg:      cfg.withDefaults(),
		log:      log,
	}
}

// Token returns the session token captured at login, if any.
func (s *Session) Token() string {
	return s.token
}

// Login authenticates against the admin application: it opens the
// login form, submits the credentials and waits for the dashboard. A
// client-side navigation block surfaces as
// *browser.NavigationBlockedError.
func (s *Session) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	loginURL := s.cfg.BaseURL + s.cfg.LoginPath
	if err := s.driver.Navigate(loginURL, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		return err
	}

	sel := s.cfg.Selectors
	if err := s.driver.Fill(browser.FillOptions{Selector: sel.LoginUser, Value: s.cfg.Username}); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := s.driver.Fill(browser.FillOptions{Selector: sel.LoginPass, Value: s.cfg.Password}); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := s.driver.Click(browser.ClickOptions{Selector: sel.LoginSubmit}); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	if err := s.driver.Wait(browser.WaitOptions{Selector: sel.Dashboard, State: "visible"}); err != nil {
		return fmt.Errorf("dashboard did not appear after login: %w", err)
	}

	s.captureToken()
	s.loggedIn = true
	s.productID = ""
	s.log.Info().Bool("token", s.token != "").Msg("logged in")
	return nil
}

// captureToken reads the session token from the post-login URL. Some
// installations run without one; that is not an error.
func (s *Session) captureToken() {
	if s.cfg.TokenParam == "" {
		return
	}
	u, err := url.Parse(s.driver.URL())
	if err != nil {
		s.log.Debug().Err(err).Msg("could not parse post-login URL")
		return
	}
	s.token = u.Query().Get(s.cfg.TokenParam)
}

// productURL builds the edit page URL for a product, carrying the
// session token when one was captured.
func (s *Session) productURL(productID string) string {
	u := s.cfg.BaseURL + fmt.Sprintf(s.cfg.ProductPath, productID)
	if s.token == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + s.cfg.TokenParam + "=" + url.QueryEscape(s.token)
}
