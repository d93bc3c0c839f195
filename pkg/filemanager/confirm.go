package filemanager

import (
	"fmt"
	"time"
)

// confirmClick turns an unreliable click into a confirmed action. The
// widget occasionally swallows clicks while mid-animation, and there
// is no synchronous signal that a click took effect other than the
// element's own activation event. Each attempt arms a one-shot
// listener before clicking and races it against the per-attempt ack
// budget; a dropped click is cheap to reissue immediately, so the loop
// retries until acknowledgement appears or the attempt cap runs out.
func confirmClick(ui UI, selector string, clicks int, t Timeouts) error {
	for attempt := 1; attempt <= t.MaxClickAttempts; attempt++ {
		ack, cancel, err := ui.ArmAck(selector)
		if err != nil {
			return fmt.Errorf("failed to arm acknowledgement on %q: %w", selector, err)
		}
		if err := ui.Click(selector, clicks); err != nil {
			cancel()
			return fmt.Errorf("click on %q failed: %w", selector, err)
		}

		timer := time.NewTimer(t.Ack)
		select {
		case <-ack:
			timer.Stop()
			return nil
		case <-timer.C:
			// Stale listener from this attempt must not acknowledge a
			// later click.
			cancel()
		}
	}
	return &AckTimeoutError{Selector: selector, Attempts: t.MaxClickAttempts}
}

func (m *Manager) confirmedClick(selector string, clicks int) error {
	if m.ui == nil {
		return ErrSessionClosed
	}
	return confirmClick(m.ui, selector, clicks, m.cfg.Timeouts)
}
