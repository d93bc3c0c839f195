// Package config loads the storepilot configuration from a YAML file
// and applies defaults for everything the admin application's markup
// makes predictable, so a minimal config only carries the shop URL and
// credentials.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// BaseURL is the admin application's root URL.
	BaseURL string `yaml:"base_url"`

	// Username and Password are the admin credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Headless controls whether the browser runs without a window.
	Headless bool `yaml:"headless"`

	// UploadDir is the file-manager directory batch uploads land in.
	UploadDir string `yaml:"upload_dir"`

	// SuccessPhrase is matched against confirmation dialogs to decide
	// whether an upload was accepted.
	SuccessPhrase string `yaml:"success_phrase"`

	// LoginPath and ProductPath are appended to BaseURL. ProductPath is
	// a template taking the product id.
	LoginPath   string `yaml:"login_path"`
	ProductPath string `yaml:"product_path"`

	// TokenParam names the session token query parameter the admin
	// application carries across pages after login.
	TokenParam string `yaml:"token_param"`

	// ImagesTab and DescriptionTab name the product page tabs.
	ImagesTab      string `yaml:"images_tab"`
	DescriptionTab string `yaml:"description_tab"`

	Timeouts  Timeouts  `yaml:"timeouts"`
	Selectors Selectors `yaml:"selectors"`
}

// Timeouts bounds the engine's waits. Listing and Dialog are in
// seconds, Ack in milliseconds.
type Timeouts struct {
	ListingSeconds  int `yaml:"listing_seconds"`
	DialogSeconds   int `yaml:"dialog_seconds"`
	AckMilliseconds int `yaml:"ack_milliseconds"`
	MaxClickRetries int `yaml:"max_click_retries"`
}

// Listing returns the listing timeout as a duration.
func (t Timeouts) Listing() time.Duration {
	return time.Duration(t.ListingSeconds) * time.Second
}

// Dialog returns the dialog timeout as a duration.
func (t Timeouts) Dialog() time.Duration {
	return time.Duration(t.DialogSeconds) * time.Second
}

// Ack returns the per-attempt acknowledgement budget as a duration.
func (t Timeouts) Ack() time.Duration {
	return time.Duration(t.AckMilliseconds) * time.Millisecond
}

// Selectors locates the admin application's elements. The templates
// take fmt.Sprintf verbs as documented per field.
type Selectors struct {
	// Login form
	LoginUser   string `yaml:"login_user"`
	LoginPass   string `yaml:"login_pass"`
	LoginSubmit string `yaml:"login_submit"`
	Dashboard   string `yaml:"dashboard"`

	// Product page: the tab template takes the tab name, the trigger
	// template takes the tab name and the image slot index.
	ProductTab     string `yaml:"product_tab"`
	ImageTrigger   string `yaml:"image_trigger"`
	DescriptionBox string `yaml:"description_box"`
	SaveButton     string `yaml:"save_button"`
	SavedMarker    string `yaml:"saved_marker"`

	// File manager: the tree node template takes the directory path,
	// the entry template a one-based child position.
	FMFrameName    string `yaml:"fm_frame_name"`
	FMReady        string `yaml:"fm_ready"`
	FMListingURL   string `yaml:"fm_listing_url"`
	FMTreeNode     string `yaml:"fm_tree_node"`
	FMRootNode     string `yaml:"fm_root_node"`
	FMEntry        string `yaml:"fm_entry"`
	FMEntryQuery   string `yaml:"fm_entry_query"`
	FMUploadButton string `yaml:"fm_upload_button"`
	FMCloseButton  string `yaml:"fm_close_button"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".storepilot", "config.yaml"), nil
}

// Load reads and validates the configuration. If path is empty, the
// default location is used.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Headless:       true,
		SuccessPhrase:  "erfolgreich",
		LoginPath:      "/login",
		ProductPath:    "/products/%s/edit",
		TokenParam:     "token",
		ImagesTab:      "images",
		DescriptionTab: "description",

		Timeouts: Timeouts{
			ListingSeconds:  30,
			DialogSeconds:   30,
			AckMilliseconds: 50,
			MaxClickRetries: 600,
		},
		Selectors: Selectors{
			LoginUser:   `input[name="username"]`,
			LoginPass:   `input[name="password"]`,
			LoginSubmit: `form#login button[type="submit"]`,
			Dashboard:   `#admin-dashboard`,

			ProductTab:     `#product-tabs a[data-tab="%s"]`,
			ImageTrigger:   `#tab-%s .image-slot:nth-of-type(%d) .add-image`,
			DescriptionBox: `#product-description`,
			SaveButton:     `#product-save`,
			SavedMarker:    `.save-confirmation`,

			FMFrameName:    "filemanager",
			FMReady:        `#fm-tree`,
			FMListingURL:   `**/filemanager/listing*`,
			FMTreeNode:     `#fm-tree a[data-dir="%s"]`,
			FMRootNode:     `#fm-tree a.tree-root`,
			FMEntry:        `#fm-files .file-entry:nth-of-type(%d)`,
			FMEntryQuery:   `#fm-files .file-entry`,
			FMUploadButton: `#fm-upload`,
			FMCloseButton:  `#fm-close`,
		},
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("base_url is not a valid URL: %w", err)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.Timeouts.ListingSeconds <= 0 || c.Timeouts.DialogSeconds <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
