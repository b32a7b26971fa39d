package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrDuplicateFileID     = errors.New("an invoice already exists for this file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrMissingFileID       = errors.New("fileId is required")
	ErrUnsupportedProvider = errors.New("unsupported extraction model")
	ErrEmptyText           = errors.New("no text could be extracted from the file")
	ErrInvalidInvoiceData  = errors.New("invoice data is invalid")
	ErrStorageUnavailable  = errors.New("file could not be read from storage")
)

// DetailError attaches a client-facing detail to a sentinel error.
type DetailError struct {
	Err    error
	Detail string
}

// WithDetail wraps err so errors.Is still matches it and the HTTP layer can
// report detail alongside the mapped message.
func WithDetail(err error, detail string) error {
	return &DetailError{Err: err, Detail: detail}
}

func (e *DetailError) Error() string {
	return e.Err.Error() + ": " + e.Detail
}

func (e *DetailError) Unwrap() error { return e.Err }
