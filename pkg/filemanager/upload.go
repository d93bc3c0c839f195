package filemanager

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// UploadBatch uploads local files through the remote "add" control,
// one slot per file. Inputs that are not existing local files are
// filtered out up front; files whose confirmation dialog reports
// non-success or never appears are omitted rather than retried. The
// returned slice holds the paths that were confirmed, in input order.
func (m *Manager) UploadBatch(tab string, paths []string) ([]string, error) {
	if tab == "" {
		return nil, &InvalidArgumentError{Field: "tab", Reason: "must not be empty"}
	}
	if m.ui != nil {
		return nil, fmt.Errorf("file manager already open")
	}

	local := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			m.log.Warn().Str("path", p).Msg("skipping path that is not an existing local file")
			continue
		}
		local = append(local, p)
	}

	var uploaded []string
	for i, p := range local {
		// Each upload fills the next free slot.
		ok, err := m.uploadOne(tab, len(uploaded), p, i == 0)
		if err != nil {
			return uploaded, err
		}
		if ok {
			uploaded = append(uploaded, p)
		} else {
			m.log.Warn().Str("path", p).Msg("upload not confirmed, skipping")
		}
	}
	return uploaded, nil
}

// uploadOne pushes a single file through the add control: open the
// file manager for the slot, navigate to the upload directory on the
// first item only (the widget keeps its directory across reopens),
// then feed the native file chooser and wait for the confirmation
// dialog. The chooser acceptance is armed together with the trigger
// click inside ChooseFiles, and the dialog listener is armed before
// the chooser runs, because either signal can fire before the driver
// call returns.
func (m *Manager) uploadOne(tab string, slot int, path string, first bool) (bool, error) {
	if err := m.OpenFileManager(tab, slot); err != nil {
		return false, err
	}
	if first && m.cfg.UploadDir != "" {
		if err := m.Navigate(m.cfg.UploadDir); err != nil {
			m.teardownQuietly()
			return false, err
		}
	}

	res, cancel := m.ui.ArmDialog()
	defer cancel()

	if err := m.ui.ChooseFiles(m.cfg.Selectors.UploadButton, []string{path}); err != nil {
		m.teardownQuietly()
		return false, fmt.Errorf("failed to feed file chooser with %q: %w", path, err)
	}

	timer := time.NewTimer(m.cfg.Timeouts.Dialog)
	defer timer.Stop()

	ok := false
	select {
	case dialog := <-res:
		ok = strings.Contains(dialog.Message, m.cfg.SuccessPhrase)
	case <-timer.C:
	}

	m.teardownQuietly()
	return ok, nil
}

// teardownQuietly closes the file manager, tolerating the frame having
// already destroyed itself after a confirmed upload.
func (m *Manager) teardownQuietly() {
	if err := m.CloseFileManager(); err != nil && !isContextDestroyed(err) {
		m.log.Debug().Err(err).Msg("file manager close failed")
	}
}
