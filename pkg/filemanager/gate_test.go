package filemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestGate_ForwardsOnlyArmedPayload(t *testing.T) {
	gate := NewRequestGate()
	results := gate.Allow("directory=2024%2Fspring")

	spurious := &fakeRoute{payload: "directory=2024"}
	require.NoError(t, gate.Handle(spurious))
	assert.True(t, spurious.blocked)
	assert.False(t, spurious.forwarded)

	wanted := &fakeRoute{payload: "directory=2024%2Fspring", names: []string{"a.png"}}
	require.NoError(t, gate.Handle(wanted))
	assert.True(t, wanted.forwarded)
	assert.False(t, wanted.blocked)

	select {
	case names := <-results:
		assert.Equal(t, []string{"a.png"}, names)
	default:
		t.Fatal("expected listing result")
	}
}

func TestRequestGate_SuppressesConsecutiveDuplicates(t *testing.T) {
	gate := NewRequestGate()
	gate.Allow("directory=a")

	first := &fakeRoute{payload: "directory=a", names: []string{"x"}}
	dup := &fakeRoute{payload: "directory=a", names: []string{"x"}}
	require.NoError(t, gate.Handle(first))
	require.NoError(t, gate.Handle(dup))

	assert.True(t, first.forwarded)
	assert.True(t, dup.blocked, "immediate duplicate must be suppressed")
}

func TestRequestGate_PermitRepeat(t *testing.T) {
	gate := NewRequestGate()
	gate.Allow("directory=a")
	gate.PermitRepeat()

	first := &fakeRoute{payload: "directory=a"}
	dup := &fakeRoute{payload: "directory=a"}
	require.NoError(t, gate.Handle(first))
	require.NoError(t, gate.Handle(dup))

	assert.True(t, first.forwarded)
	assert.True(t, dup.forwarded)
}

func TestRequestGate_DisallowForwardsNothing(t *testing.T) {
	gate := NewRequestGate()
	gate.Allow("directory=a")
	gate.Disallow()

	r := &fakeRoute{payload: "directory=a"}
	require.NoError(t, gate.Handle(r))
	assert.True(t, r.blocked)
}

func TestRequestGate_TracksLastSeenEvenWhenBlocked(t *testing.T) {
	gate := NewRequestGate()

	require.NoError(t, gate.Handle(&fakeRoute{payload: "directory=x"}))
	assert.Equal(t, "directory=x", gate.LastSeen())
}

func TestRequestGate_AllowDropsStaleResult(t *testing.T) {
	gate := NewRequestGate()
	gate.Allow("directory=a")
	require.NoError(t, gate.Handle(&fakeRoute{payload: "directory=a", names: []string{"stale"}}))

	results := gate.Allow("directory=b")
	select {
	case names := <-results:
		t.Fatalf("expected empty channel, got %v", names)
	default:
	}
}
