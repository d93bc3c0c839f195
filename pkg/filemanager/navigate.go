package filemanager

import (
	"fmt"
	"strings"
	"time"
)

// validatePath rejects malformed directory paths before any remote
// interaction. "" denotes the root and is valid.
func validatePath(p string) error {
	if p == "" {
		return nil
	}
	if strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return &InvalidArgumentError{Field: "path", Reason: "must not start or end with a slash"}
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			return &InvalidArgumentError{Field: "path", Reason: "must not contain empty segments"}
		}
	}
	return nil
}

// Navigate reconciles the remote tree's open path with target. Only
// the divergent suffix of the old cursor is closed and only the
// divergent suffix of the target is opened; shared ancestors are left
// alone. The terminal open is raced against the request gate armed
// with the target's payload so the directory listing is captured in
// the same step.
//
// On a listing timeout the cursor stays at the last successfully
// opened ancestor; re-entry is safe because the cursor-equality check
// and the ancestor search make Navigate idempotent.
func (m *Manager) Navigate(target string) error {
	if m.ui == nil {
		return ErrSessionClosed
	}
	if err := validatePath(target); err != nil {
		return err
	}
	if target == m.cursor {
		return nil
	}

	m.listing = nil
	ancestor := commonAncestor(m.cursor, target)
	m.log.Debug().
		Str("cursor", displayPath(m.cursor)).
		Str("target", displayPath(target)).
		Str("ancestor", displayPath(ancestor)).
		Msg("navigating file manager tree")

	// Tear-down: close the open chain from the cursor back up to the
	// common ancestor. The cursor's node is open by definition, so
	// these closes click unconditionally.
	for m.cursor != ancestor {
		if err := m.ui.Click(m.cfg.Selectors.node(m.cursor), 1); err != nil {
			return fmt.Errorf("failed to close %q: %w", displayPath(m.cursor), err)
		}
		m.cursor = parentPath(m.cursor)
	}
	// The ancestor itself may be left carrying the open marker with
	// nothing open beneath it. Closing a node without the marker is a
	// no-op, so this is safe when the ancestor must stay put.
	if err := m.closeIfOpen(ancestor); err != nil {
		return err
	}

	// Build-up: double activation opens a branch without fetching its
	// terminal listing; only the target's click is allowed to produce
	// a listing request.
	chain := openChain(ancestor, target)
	for _, p := range chain[:len(chain)-1] {
		if err := m.confirmedClick(m.cfg.Selectors.node(p), 2); err != nil {
			return fmt.Errorf("failed to open branch %q: %w", displayPath(p), err)
		}
		m.cursor = p
	}
	return m.openAndCapture(target)
}

// closeIfOpen clicks a node only when it carries the open marker. The
// root has no tree node and is never closed.
func (m *Manager) closeIfOpen(path string) error {
	if path == "" {
		return nil
	}
	sel := m.cfg.Selectors.node(path)
	open, err := m.ui.IsOpen(sel)
	if err != nil {
		return fmt.Errorf("failed to inspect %q: %w", displayPath(path), err)
	}
	if !open {
		return nil
	}
	if err := m.ui.Click(sel, 1); err != nil {
		return fmt.Errorf("failed to close %q: %w", displayPath(path), err)
	}
	return nil
}

// openAndCapture performs the terminal open: the confirmed click and
// the gated listing request are started together and both must settle,
// because the listing response can arrive before the click call
// returns. The cursor advances only after both succeed.
func (m *Manager) openAndCapture(target string) error {
	clicks := 2
	if target == "" {
		clicks = 1
	}

	results := m.gate.Allow(payloadKey(target))
	defer m.gate.Disallow()

	clickErr := make(chan error, 1)
	go func() {
		clickErr <- m.confirmedClick(m.cfg.Selectors.node(target), clicks)
	}()

	timer := time.NewTimer(m.cfg.Timeouts.Listing)
	defer timer.Stop()

	var listing []string
	clicked, listed := false, false
	for !clicked || !listed {
		select {
		case err := <-clickErr:
			if err != nil {
				return fmt.Errorf("failed to open %q: %w", displayPath(target), err)
			}
			clicked = true
		case listing = <-results:
			listed = true
		case <-timer.C:
			return &ListingTimeoutError{Path: target, Timeout: m.cfg.Timeouts.Listing}
		}
	}

	m.listing = listing
	m.cursor = target
	m.log.Debug().
		Str("path", displayPath(target)).
		Int("files", len(listing)).
		Msg("directory settled")
	return nil
}
