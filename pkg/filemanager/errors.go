package filemanager

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionClosed is returned when an operation requires an open
// file-manager session and none is active.
var ErrSessionClosed = errors.New("no active file manager session")

// InvalidArgumentError reports an argument rejected before any remote
// interaction took place.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// AckTimeoutError reports a click that was never acknowledged by the
// remote widget within the retry budget.
type AckTimeoutError struct {
	Selector string
	Attempts int
}

func (e *AckTimeoutError) Error() string {
	return fmt.Sprintf("click on %q not acknowledged after %d attempts", e.Selector, e.Attempts)
}

// ListingTimeoutError reports that the directory listing for a path did
// not arrive within the navigation timeout. The cursor is left at the
// last successfully opened ancestor.
type ListingTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *ListingTimeoutError) Error() string {
	return fmt.Sprintf("listing for %q did not arrive within %s", displayPath(e.Path), e.Timeout)
}

// DialogTimeoutError reports that a confirmation dialog did not appear
// within the dialog timeout.
type DialogTimeoutError struct {
	Timeout time.Duration
}

func (e *DialogTimeoutError) Error() string {
	return fmt.Sprintf("confirmation dialog did not appear within %s", e.Timeout)
}

// displayPath renders the root path readably in error messages.
func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
