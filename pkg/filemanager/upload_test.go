package filemanager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
	return p
}

func TestUploadBatch_SkipsMissingLocalFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.png")
	b := writeTempFile(t, dir, "b.png")
	missing := filepath.Join(dir, "missing.png")

	ui := newFakeUI()
	opener := &fakeOpener{ui: ui}
	m := NewManager(opener, Config{
		Selectors:     testSelectors(),
		Timeouts:      testTimeouts(),
		SuccessPhrase: "uploaded successfully",
	}, nopLogger())

	uploaded, err := m.UploadBatch("images", []string{a, missing, b})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, uploaded, "missing file skipped, order preserved")

	ui.mu.Lock()
	defer ui.mu.Unlock()
	assert.Equal(t, [][]string{{a}, {b}}, ui.chosen, "no chooser interaction for the missing file")
	assert.Equal(t, []int{0, 1}, opener.opens, "each upload fills the next free slot")
}

func TestUploadBatch_OmitsUnconfirmedUploads(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.png")
	b := writeTempFile(t, dir, "b.png")

	ui := newFakeUI()
	ui.dialogMsg = "upload rejected"
	opener := &fakeOpener{ui: ui}
	m := NewManager(opener, Config{
		Selectors:     testSelectors(),
		Timeouts:      testTimeouts(),
		SuccessPhrase: "uploaded successfully",
	}, nopLogger())

	uploaded, err := m.UploadBatch("images", []string{a, b})
	require.NoError(t, err)
	assert.Empty(t, uploaded)

	ui.mu.Lock()
	defer ui.mu.Unlock()
	assert.Len(t, ui.chosen, 2, "rejected uploads are omitted, not retried")
}

func TestUploadBatch_NavigatesOnlyForFirstItem(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.png")
	b := writeTempFile(t, dir, "b.png")

	ui := newFakeUI()
	opener := &fakeOpener{ui: ui}
	m := NewManager(opener, Config{
		Selectors:     testSelectors(),
		Timeouts:      testTimeouts(),
		SuccessPhrase: "uploaded successfully",
		UploadDir:     "media/products",
	}, nopLogger())
	wireListings(ui, opener, map[string][]string{
		"media":          {},
		"media/products": {"existing.png"},
	})

	uploaded, err := m.UploadBatch("images", []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, uploaded)

	sels := testSelectors()
	opens := 0
	for _, c := range ui.clickLog() {
		if c.Selector == sels.node("media/products") && c.Count == 2 {
			opens++
		}
	}
	assert.Equal(t, 1, opens, "the widget keeps its directory across reopens")
}

func TestUploadBatch_Validation(t *testing.T) {
	m := NewManager(&fakeOpener{ui: newFakeUI()}, Config{Selectors: testSelectors()}, nopLogger())

	var invalid *InvalidArgumentError
	_, err := m.UploadBatch("", nil)
	assert.ErrorAs(t, err, &invalid)
}

func TestUploadBatch_AllMissing(t *testing.T) {
	opener := &fakeOpener{ui: newFakeUI()}
	m := NewManager(opener, Config{
		Selectors: testSelectors(),
		Timeouts:  testTimeouts(),
	}, nopLogger())

	uploaded, err := m.UploadBatch("images", []string{"/nonexistent/a.png"})
	require.NoError(t, err)
	assert.Empty(t, uploaded)
	assert.Empty(t, opener.opens, "no remote interaction for missing files")
}
