package filemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmClick_AcknowledgedFirstTry(t *testing.T) {
	ui := newFakeUI()
	sel := `#tree a[data-dir="2024"]`

	err := confirmClick(ui, sel, 2, testTimeouts())
	require.NoError(t, err)
	assert.Equal(t, []clickRec{{sel, 2}}, ui.clickLog())
}

func TestConfirmClick_RetriesUntilAcknowledged(t *testing.T) {
	ui := newFakeUI()
	sel := `#tree a[data-dir="2024"]`
	ui.ackOn[sel] = 3

	err := confirmClick(ui, sel, 2, testTimeouts())
	require.NoError(t, err)
	assert.Len(t, ui.clickLog(), 3, "exactly one click per attempt until the ack fires")
}

func TestConfirmClick_AttemptCap(t *testing.T) {
	ui := newFakeUI()
	sel := `#tree a[data-dir="2024"]`
	ui.ackOn[sel] = 1000

	timeouts := testTimeouts()
	timeouts.MaxClickAttempts = 4

	err := confirmClick(ui, sel, 2, timeouts)
	var ackErr *AckTimeoutError
	require.ErrorAs(t, err, &ackErr)
	assert.Equal(t, 4, ackErr.Attempts)
	assert.Len(t, ui.clickLog(), 4)
}

func TestConfirmClick_ClickErrorPropagates(t *testing.T) {
	ui := newFakeUI()
	sel := "#broken"
	ui.errOn[sel] = assert.AnError

	err := confirmClick(ui, sel, 1, testTimeouts())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, ui.clickLog(), 1, "no retry on a hard click failure")
}

func TestConfirmedClick_RequiresOpenSession(t *testing.T) {
	m := NewManager(&fakeOpener{ui: newFakeUI()}, Config{Selectors: testSelectors()}, nopLogger())

	err := m.confirmedClick("#x", 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
}
