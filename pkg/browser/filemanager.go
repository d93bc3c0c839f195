package browser

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/entrhq/storepilot/pkg/filemanager"
)

// FileManagerConfig tells the driver how to reach the embedded file
// manager on a product page.
type FileManagerConfig struct {
	// TriggerSelector is a template taking the tab name and slot index
	// of the image control that opens the file manager.
	TriggerSelector string

	// FrameName identifies the file-manager iframe.
	FrameName string

	// ReadySelector is awaited inside the frame before the widget is
	// considered usable.
	ReadySelector string

	// ListingURL is the route pattern of the widget's listing endpoint.
	ListingURL string

	// EntryQuery selects the rendered file entries.
	EntryQuery string

	// CloseButton dismisses the frame.
	CloseButton string

	// OpenTimeout bounds the wait for the frame and its tree.
	OpenTimeout time.Duration
}

// FileManagerOpener attaches a filemanager engine to the live page. It
// implements filemanager.Opener. The dialog handler and the listing
// route are bound once to the page; the gate they feed is swapped on
// each open.
type FileManagerOpener struct {
	session *Session
	cfg     FileManagerConfig
	log     zerolog.Logger

	dialogs *dialogWatcher

	mu    sync.Mutex
	gate  *filemanager.RequestGate
	bound bool
}

// NewFileManagerOpener wires dialog acceptance to the page and returns
// an opener for the configured widget.
func NewFileManagerOpener(session *Session, cfg FileManagerConfig, log zerolog.Logger) *FileManagerOpener {
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	o := &FileManagerOpener{
		session: session,
		cfg:     cfg,
		log:     log,
		dialogs: &dialogWatcher{},
	}
	session.Page.OnDialog(o.dialogs.handle)
	return o
}

// OpenFileManager clicks the image slot's trigger, waits for the
// widget frame to attach and render, and returns a UI bound to it.
func (o *FileManagerOpener) OpenFileManager(tab string, index int, gate *filemanager.RequestGate) (filemanager.UI, error) {
	o.mu.Lock()
	o.gate = gate
	if !o.bound {
		err := o.session.Page.Route(o.cfg.ListingURL, func(route playwright.Route) {
			o.mu.Lock()
			g := o.gate
			o.mu.Unlock()
			if err := g.Handle(&listingRoute{route: route}); err != nil {
				o.log.Warn().Err(err).Msg("listing request handling failed")
			}
		})
		if err != nil {
			o.mu.Unlock()
			return nil, fmt.Errorf("failed to bind listing route: %w", err)
		}
		o.bound = true
	}
	o.mu.Unlock()

	trigger := fmt.Sprintf(o.cfg.TriggerSelector, tab, index)
	if err := o.session.Page.Click(trigger); err != nil {
		return nil, fmt.Errorf("failed to trigger file manager via %q: %w", trigger, err)
	}

	frame, err := o.waitForFrame()
	if err != nil {
		return nil, err
	}
	if o.cfg.ReadySelector != "" {
		timeout := float64(o.cfg.OpenTimeout.Milliseconds())
		if _, err := frame.WaitForSelector(o.cfg.ReadySelector, playwright.FrameWaitForSelectorOptions{
			Timeout: &timeout,
		}); err != nil {
			return nil, fmt.Errorf("file manager tree did not render: %w", err)
		}
	}

	return &frameUI{
		page:    o.session.Page,
		frame:   frame,
		cfg:     o.cfg,
		dialogs: o.dialogs,
	}, nil
}

// waitForFrame polls the page's frames for the widget's iframe. The
// frame attaches asynchronously after the trigger click.
func (o *FileManagerOpener) waitForFrame() (playwright.Frame, error) {
	deadline := time.Now().Add(o.cfg.OpenTimeout)
	for {
		for _, frame := range o.session.Page.Frames() {
			if frame.Name() == o.cfg.FrameName {
				return frame, nil
			}
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("file manager frame %q did not attach within %s", o.cfg.FrameName, o.cfg.OpenTimeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// frameUI drives an attached file-manager frame. It implements
// filemanager.UI.
type frameUI struct {
	page    playwright.Page
	frame   playwright.Frame
	cfg     FileManagerConfig
	dialogs *dialogWatcher
	ackSeq  atomic.Uint64
}

func (f *frameUI) Click(selector string, clicks int) error {
	return f.frame.Click(selector, playwright.FrameClickOptions{
		ClickCount: &clicks,
	})
}

// ArmAck attaches a one-shot click listener to the element and waits
// for it on a background goroutine. The listener writes a page-global
// token the waiter polls for; cancel settles the token so the waiter
// exits promptly instead of running out its timeout.
func (f *frameUI) ArmAck(selector string) (<-chan struct{}, func(), error) {
	token := fmt.Sprintf("__sp_ack_%d", f.ackSeq.Add(1))

	attach := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		window[%q] = 0;
		el.addEventListener("click", () => { window[%q] = 1; }, { once: true });
		return true;
	})()`, selector, token, token)
	res, err := f.frame.Evaluate(attach)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to attach ack listener to %q: %w", selector, err)
	}
	if attached, ok := res.(bool); !ok || !attached {
		return nil, nil, fmt.Errorf("no element matches %q", selector)
	}

	ch := make(chan struct{}, 1)
	var cancelled atomic.Bool
	go func() {
		timeout := 30000.0
		_, err := f.frame.WaitForFunction(fmt.Sprintf(`() => window[%q] !== 0`, token), nil,
			playwright.FrameWaitForFunctionOptions{Timeout: &timeout})
		if err != nil || cancelled.Load() {
			return
		}
		ch <- struct{}{}
	}()

	cancel := func() {
		cancelled.Store(true)
		// settle the token so the waiter goroutine stops polling
		_, _ = f.frame.Evaluate(fmt.Sprintf(`window[%q] = -1`, token))
	}
	return ch, cancel, nil
}

func (f *frameUI) IsOpen(selector string) (bool, error) {
	res, err := f.frame.Evaluate(fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return !!el && el.classList.contains("open");
	})()`, selector))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %q: %w", selector, err)
	}
	open, _ := res.(bool)
	return open, nil
}

// FindEntry waits for a rendered entry whose name or stem equals name.
// The rendered list can lag the listing response, so this polls the
// DOM rather than reading it once. The polled expression reports the
// match index shifted by one because a zero result would read as
// falsy and keep the wait pending.
func (f *frameUI) FindEntry(name string, timeout time.Duration) (int, error) {
	expr := fmt.Sprintf(`() => {
		const stem = (s) => { const i = s.lastIndexOf("."); return i > 0 ? s.slice(0, i) : s; };
		const wanted = %q;
		const entries = Array.from(document.querySelectorAll(%q));
		const idx = entries.findIndex((el) => {
			const n = (el.dataset.name || el.textContent || "").trim();
			return n === wanted || stem(n) === wanted;
		});
		return idx >= 0 ? idx + 1 : 0;
	}`, name, f.cfg.EntryQuery)

	ms := float64(timeout.Milliseconds())
	handle, err := f.frame.WaitForFunction(expr, nil, playwright.FrameWaitForFunctionOptions{
		Timeout: &ms,
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return -1, nil
		}
		return -1, fmt.Errorf("failed waiting for entry %q: %w", name, err)
	}

	value, err := handle.JSONValue()
	if err != nil {
		return -1, fmt.Errorf("failed to read entry index: %w", err)
	}
	shifted, ok := value.(float64)
	if !ok || shifted < 1 {
		return -1, nil
	}
	return int(shifted) - 1, nil
}

func (f *frameUI) ArmDialog() (<-chan filemanager.Dialog, func()) {
	return f.dialogs.arm()
}

// ChooseFiles clicks the trigger and feeds the native file chooser it
// opens. ExpectFileChooser starts the wait before issuing the click,
// so a chooser that fires immediately is not missed.
func (f *frameUI) ChooseFiles(triggerSelector string, paths []string) error {
	chooser, err := f.page.ExpectFileChooser(func() error {
		return f.frame.Click(triggerSelector)
	})
	if err != nil {
		return fmt.Errorf("file chooser did not open from %q: %w", triggerSelector, err)
	}
	if err := chooser.SetFiles(paths); err != nil {
		return fmt.Errorf("failed to set chooser files: %w", err)
	}
	return nil
}

func (f *frameUI) Close() error {
	if err := f.frame.Click(f.cfg.CloseButton); err != nil {
		return fmt.Errorf("failed to close file manager: %w", err)
	}
	return nil
}

// dialogWatcher accepts every native dialog on the page and delivers
// the message of the next one to whoever is armed. One-shot: the armed
// channel is cleared on first delivery.
type dialogWatcher struct {
	mu    sync.Mutex
	armed chan filemanager.Dialog
}

func (w *dialogWatcher) handle(dialog playwright.Dialog) {
	msg := dialog.Message()
	_ = dialog.Accept()

	w.mu.Lock()
	ch := w.armed
	w.armed = nil
	w.mu.Unlock()

	if ch != nil {
		ch <- filemanager.Dialog{Message: msg}
	}
}

func (w *dialogWatcher) arm() (<-chan filemanager.Dialog, func()) {
	ch := make(chan filemanager.Dialog, 1)
	w.mu.Lock()
	w.armed = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if w.armed == ch {
			w.armed = nil
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

// listingRoute adapts an intercepted Playwright request to the gate's
// Route contract.
type listingRoute struct {
	route playwright.Route
}

func (r *listingRoute) Payload() string {
	data, err := r.route.Request().PostData()
	if err != nil {
		return ""
	}
	return data
}

// Forward lets the request reach the server, fulfills the page with
// the real response and returns the file names parsed from it.
func (r *listingRoute) Forward() ([]string, error) {
	resp, err := r.route.Fetch()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	body, err := resp.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing body: %w", err)
	}
	if err := r.route.Fulfill(playwright.RouteFulfillOptions{Response: resp}); err != nil {
		return nil, fmt.Errorf("failed to fulfill listing request: %w", err)
	}
	return ParseListing(body), nil
}

// Block answers the request with an empty synthetic body so the page
// does not hang waiting for a reply that will never come.
func (r *listingRoute) Block() error {
	status := 200
	contentType := "text/html"
	return r.route.Fulfill(playwright.RouteFulfillOptions{
		Status:      &status,
		ContentType: &contentType,
		Body:        "",
	})
}

var _ filemanager.Route = (*listingRoute)(nil)
var _ filemanager.UI = (*frameUI)(nil)
var _ filemanager.Opener = (*FileManagerOpener)(nil)
