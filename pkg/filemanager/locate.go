package filemanager

import (
	"fmt"
	"strings"
	"time"
)

// Locate resolves the index of the named file within the current
// directory. The name is reduced to its trailing name.extension
// component first, so callers may pass a full local path. Returns -1
// when no matching file exists.
//
// The cached listing and the rendered entries populate asynchronously
// right after Navigate, so a positive answer requires waiting for the
// DOM entry; but the listing rules out impossible names cheaply, and
// in that case Locate fails fast without touching the remote UI.
func (m *Manager) Locate(name string) (int, error) {
	if m.ui == nil {
		return -1, ErrSessionClosed
	}
	leaf := leafName(name)
	if leaf == "" {
		return -1, &InvalidArgumentError{Field: "fileName", Reason: "must not be empty"}
	}

	candidate := false
	for _, entry := range m.listing {
		if strings.HasPrefix(entry, leaf) {
			candidate = true
			break
		}
	}
	if !candidate {
		return -1, nil
	}

	idx, err := m.ui.FindEntry(leaf, m.cfg.Timeouts.Listing)
	if err != nil {
		return -1, fmt.Errorf("failed to find entry %q: %w", leaf, err)
	}
	return idx, nil
}

// SelectFile locates the named file and single-clicks it. The boolean
// reports whether the file was found; infrastructure failures are
// returned as errors.
func (m *Manager) SelectFile(name string) (bool, error) {
	idx, err := m.Locate(name)
	if err != nil || idx < 0 {
		return false, err
	}
	if err := m.ui.Click(m.cfg.Selectors.entry(idx), 1); err != nil {
		return false, fmt.Errorf("failed to select %q: %w", name, err)
	}
	return true, nil
}

// UploadFile locates the named file and double-clicks it, which is the
// widget's "choose this file" convention. The click is raced against a
// one-shot acceptance of the confirmation dialog. The double click
// also closes the file-manager frame as a side effect, so the session
// handle is dropped unconditionally afterward, and a click error
// caused by the destroyed execution context is swallowed.
func (m *Manager) UploadFile(name string) (bool, error) {
	idx, err := m.Locate(name)
	if err != nil || idx < 0 {
		return false, err
	}

	res, cancel := m.ui.ArmDialog()
	defer cancel()

	clickErr := make(chan error, 1)
	sel := m.cfg.Selectors.entry(idx)
	ui, timeouts := m.ui, m.cfg.Timeouts
	go func() {
		clickErr <- confirmClick(ui, sel, 2, timeouts)
	}()

	timer := time.NewTimer(m.cfg.Timeouts.Dialog)
	defer timer.Stop()

	var dialog Dialog
	clicked, confirmed := false, false
	for !clicked || !confirmed {
		select {
		case err := <-clickErr:
			if err != nil && !isContextDestroyed(err) {
				m.detach()
				return false, fmt.Errorf("failed to choose %q: %w", name, err)
			}
			clicked = true
		case dialog = <-res:
			confirmed = true
		case <-timer.C:
			m.detach()
			return false, &DialogTimeoutError{Timeout: m.cfg.Timeouts.Dialog}
		}
	}

	m.detach()
	return strings.Contains(dialog.Message, m.cfg.SuccessPhrase), nil
}

// isContextDestroyed matches the benign race where the file-manager
// frame is torn down by the very click being confirmed.
func isContextDestroyed(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"Execution context was destroyed",
		"frame was detached",
		"Target closed",
		"Target page, context or browser has been closed",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
