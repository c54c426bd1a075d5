package remote

import (
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"
)

// Failure taxonomy for remote operations. Read paths check these with
// errors.Is to decide whether to fall back to local or sample data;
// write paths propagate them verbatim. Anything outside the taxonomy
// passes through unwrapped.
var (
	// ErrUnavailable means the remote store is not configured or not
	// reachable.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrPermissionDenied means the remote store refused the operation.
	// Read fallback treats it like ErrUnavailable but it is logged
	// distinctly for diagnosis.
	ErrPermissionDenied = errors.New("remote store permission denied")
)

// IsUnavailable reports whether err means the remote store could not
// be reached or is not configured.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsPermissionDenied reports whether err means the remote store
// refused the operation.
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// classify maps driver errors onto the failure taxonomy, preserving the
// original error text.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.PERM, sqlite3.AUTH, sqlite3.READONLY:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		case sqlite3.CANTOPEN, sqlite3.BUSY, sqlite3.LOCKED, sqlite3.IOERR, sqlite3.NOTADB, sqlite3.CORRUPT:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}
