package filemanager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// clickRec records one physical click issued against the fake widget.
type clickRec struct {
	Selector string
	Count    int
}

// fakeUI is an in-memory stand-in for the file-manager frame. Acks
// fire on a configurable attempt number, listing requests are driven
// through an onClick hook, and dialogs are pushed by the scenario.
type fakeUI struct {
	mu         sync.Mutex
	clicks     []clickRec
	attempts   map[string]int
	pendingAck map[string]chan struct{}
	ackOn      map[string]int
	errOn      map[string]error
	openNodes  map[string]bool
	entries    []string
	findCalls  int
	dialogs    chan Dialog
	dialogOn   string
	dialogMsg  string
	chosen     [][]string
	closed     int
	onClick    func(selector string, count int)
}

func newFakeUI() *fakeUI {
	return &fakeUI{
		attempts:   make(map[string]int),
		pendingAck: make(map[string]chan struct{}),
		ackOn:      make(map[string]int),
		errOn:      make(map[string]error),
		openNodes:  make(map[string]bool),
		dialogs:    make(chan Dialog, 1),
		dialogMsg:  "1 file uploaded successfully",
	}
}

func (f *fakeUI) Click(selector string, count int) error {
	f.mu.Lock()
	f.clicks = append(f.clicks, clickRec{selector, count})
	f.attempts[selector]++
	needed := f.ackOn[selector]
	if needed == 0 {
		needed = 1
	}
	if ch, ok := f.pendingAck[selector]; ok && f.attempts[selector] >= needed {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	err := f.errOn[selector]
	hook := f.onClick
	dialogOn := f.dialogOn
	msg := f.dialogMsg
	f.mu.Unlock()

	if dialogOn != "" && dialogOn == selector {
		select {
		case f.dialogs <- Dialog{Message: msg}:
		default:
		}
	}
	if hook != nil {
		hook(selector, count)
	}
	return err
}

func (f *fakeUI) ArmAck(selector string) (<-chan struct{}, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{}, 1)
	f.pendingAck[selector] = ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.pendingAck[selector] == ch {
			delete(f.pendingAck, selector)
		}
	}, nil
}

func (f *fakeUI) IsOpen(selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openNodes[selector], nil
}

func (f *fakeUI) FindEntry(name string, timeout time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	for i, entry := range f.entries {
		if matchesEntry(entry, name) {
			return i, nil
		}
	}
	return -1, nil
}

func (f *fakeUI) ArmDialog() (<-chan Dialog, func()) {
	return f.dialogs, func() {}
}

func (f *fakeUI) ChooseFiles(triggerSelector string, paths []string) error {
	f.mu.Lock()
	f.chosen = append(f.chosen, paths)
	msg := f.dialogMsg
	f.mu.Unlock()
	select {
	case f.dialogs <- Dialog{Message: msg}:
	default:
	}
	return nil
}

func (f *fakeUI) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeUI) clickLog() []clickRec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]clickRec(nil), f.clicks...)
}

// fakeOpener hands out the same fake frame for every open and captures
// the gate the manager wired in.
type fakeOpener struct {
	mu    sync.Mutex
	ui    *fakeUI
	gate  *RequestGate
	opens []int
}

func (o *fakeOpener) OpenFileManager(tab string, index int, gate *RequestGate) (UI, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gate = gate
	o.opens = append(o.opens, index)
	return o.ui, nil
}

func (o *fakeOpener) Gate() *RequestGate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gate
}

// fakeRoute is one intercepted listing request.
type fakeRoute struct {
	payload   string
	names     []string
	forwarded bool
	blocked   bool
}

func (r *fakeRoute) Payload() string { return r.payload }

func (r *fakeRoute) Forward() ([]string, error) {
	r.forwarded = true
	return r.names, nil
}

func (r *fakeRoute) Block() error {
	r.blocked = true
	return nil
}

// testSelectors mirrors the selector templates used in production
// configs.
func testSelectors() Selectors {
	return Selectors{
		TreeNode:     `#tree a[data-dir="%s"]`,
		RootNode:     `#tree a.tree-root`,
		Entry:        `#files .file-entry:nth-of-type(%d)`,
		UploadButton: `#fm-upload`,
	}
}

func testTimeouts() Timeouts {
	return Timeouts{
		Listing:          250 * time.Millisecond,
		Dialog:           250 * time.Millisecond,
		Ack:              5 * time.Millisecond,
		MaxClickAttempts: 20,
	}
}
