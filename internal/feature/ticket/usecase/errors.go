// Package usecase implements ticket and message business logic.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a form field is missing or malformed.
	ErrValidation = errors.New("invalid ticket input")

	// ErrTicketNotFound is returned when no ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrForbidden is returned when the requester does not own the ticket.
	ErrForbidden = errors.New("ticket belongs to another user")

	// ErrUnsupportedFileType is returned when an attachment's extension is
	// not on the allow-list.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrAttachmentNotFound is returned when a requested attachment is not
	// referenced by any of the requester's tickets or is gone from disk.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// FileIOWarning reports a failed attachment removal. It never aborts the
// ticket deletion it was raised for.
type FileIOWarning struct {
	Filename string
	// Missing is true when the file did not exist.
	Missing bool
	Err     error
}

func (w *FileIOWarning) Error() string {
	if w.Missing {
		return fmt.Sprintf("attachment %q not found", w.Filename)
	}
	return fmt.Sprintf("failed to remove attachment %q: %v", w.Filename, w.Err)
}

func (w *FileIOWarning) Unwrap() error { return w.Err }
