package filemanager

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// UI is the capability surface the engine needs from an open
// file-manager frame. The production implementation lives in
// pkg/browser; tests substitute fakes.
type UI interface {
	// Click clicks the first element matching selector the given number
	// of times.
	Click(selector string, clicks int) error

	// ArmAck attaches a one-shot activation listener to the element
	// matching selector. The channel receives once the element
	// dispatches its native click event; cancel detaches a listener
	// that never fired.
	ArmAck(selector string) (ack <-chan struct{}, cancel func(), err error)

	// IsOpen reports whether the node matching selector currently
	// carries the widget's open marker class.
	IsOpen(selector string) (bool, error)

	// FindEntry waits for a rendered file entry whose name equals name
	// or whose stem equals name, and returns its index. It returns -1
	// without error when no such entry appears within timeout.
	FindEntry(name string, timeout time.Duration) (int, error)

	// ArmDialog registers a one-shot acceptor for the next native
	// dialog; the channel receives the dialog's message text.
	ArmDialog() (res <-chan Dialog, cancel func())

	// ChooseFiles clicks the element matching triggerSelector and
	// feeds the native file chooser it opens with the given local
	// paths.
	ChooseFiles(triggerSelector string, paths []string) error

	// Close dismisses the file-manager frame if it is still present.
	Close() error
}

// Dialog is the observed text of an accepted native dialog.
type Dialog struct {
	Message string
}

// Opener attaches the engine to the remote page: it opens the
// file-manager frame for an image slot and wires the listing data
// requests through the given gate.
type Opener interface {
	OpenFileManager(tab string, index int, gate *RequestGate) (UI, error)
}

// Selectors locates the widget's elements. TreeNode is a fmt.Sprintf
// template taking the directory path; Entry takes the one-based child
// position of a file entry.
type Selectors struct {
	TreeNode     string
	RootNode     string
	Entry        string
	UploadButton string
}

func (s Selectors) node(path string) string {
	if path == "" {
		return s.RootNode
	}
	return fmt.Sprintf(s.TreeNode, path)
}

// entry maps a zero-based listing index to its selector.
func (s Selectors) entry(index int) string {
	return fmt.Sprintf(s.Entry, index+1)
}

// Timeouts bounds the engine's waits. Ack is the per-attempt click
// acknowledgement budget; MaxClickAttempts caps the retry loop so it
// terminates even if acknowledgement can never fire.
type Timeouts struct {
	Listing          time.Duration
	Dialog           time.Duration
	Ack              time.Duration
	MaxClickAttempts int
}

// Defaults for engine timeouts.
const (
	DefaultListingTimeout   = 30 * time.Second
	DefaultDialogTimeout    = 30 * time.Second
	DefaultAckTimeout       = 50 * time.Millisecond
	DefaultMaxClickAttempts = 600
)

func (t Timeouts) withDefaults() Timeouts {
	if t.Listing == 0 {
		t.Listing = DefaultListingTimeout
	}
	if t.Dialog == 0 {
		t.Dialog = DefaultDialogTimeout
	}
	if t.Ack == 0 {
		t.Ack = DefaultAckTimeout
	}
	if t.MaxClickAttempts == 0 {
		t.MaxClickAttempts = DefaultMaxClickAttempts
	}
	return t
}

// Config carries the widget-specific knobs for an engine session.
type Config struct {
	Selectors Selectors

	Timeouts Timeouts

	// SuccessPhrase is matched against confirmation dialog text to
	// decide whether an upload was accepted.
	SuccessPhrase string

	// UploadDir, when set, is navigated to before the first item of a
	// batch upload. The remote widget keeps the directory across
	// reopens, so later items skip the navigation.
	UploadDir string
}

// Manager synchronizes a local directory cursor against the remote
// file-manager widget. It owns the cursor, the cached listing and the
// request gate for one page; callers must serialize operations on it.
type Manager struct {
	opener Opener
	cfg    Config
	log    zerolog.Logger

	ui      UI
	gate    *RequestGate
	cursor  string
	listing []string
}

// NewManager creates an engine bound to the given page opener. Multiple
// managers may coexist as long as each drives its own page.
func NewManager(opener Opener, cfg Config, log zerolog.Logger) *Manager {
	cfg.Timeouts = cfg.Timeouts.withDefaults()
	return &Manager{
		opener: opener,
		cfg:    cfg,
		log:    log,
		gate:   NewRequestGate(),
	}
}

// Cursor returns the engine's belief about the currently open path.
func (m *Manager) Cursor() string {
	return m.cursor
}

// Listing returns the file names captured by the last successful
// navigation. The slice is stale once a new navigation begins.
func (m *Manager) Listing() []string {
	return m.listing
}

// OpenFileManager opens the file-manager frame for the image slot
// identified by tab and index and resets the cursor to the root.
func (m *Manager) OpenFileManager(tab string, index int) error {
	if m.ui != nil {
		return fmt.Errorf("file manager already open")
	}
	if tab == "" {
		return &InvalidArgumentError{Field: "tab", Reason: "must not be empty"}
	}
	if index < 0 {
		return &InvalidArgumentError{Field: "index", Reason: "must not be negative"}
	}
	m.gate.Reset()
	ui, err := m.opener.OpenFileManager(tab, index, m.gate)
	if err != nil {
		return fmt.Errorf("failed to open file manager: %w", err)
	}
	m.ui = ui
	m.cursor = ""
	m.listing = nil
	m.log.Debug().Str("tab", tab).Int("index", index).Msg("file manager opened")
	return nil
}

// CloseFileManager dismisses the frame and invalidates the cursor and
// gate state. Safe to call when no session is open.
func (m *Manager) CloseFileManager() error {
	if m.ui == nil {
		return nil
	}
	err := m.ui.Close()
	m.detach()
	if err != nil {
		return fmt.Errorf("failed to close file manager: %w", err)
	}
	return nil
}

// detach invalidates the session state unconditionally. In-flight
// waits belonging to the old session fail via their own timeouts.
func (m *Manager) detach() {
	m.ui = nil
	m.cursor = ""
	m.listing = nil
	m.gate.Reset()
}
