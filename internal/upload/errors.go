package upload

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable class of an upload error.
type Kind string

const (
	KindUnauthorized        Kind = "unauthorized"
	KindInvalidInput        Kind = "invalid_input"
	KindSizeLimitExceeded   Kind = "size_limit_exceeded"
	KindForbiddenFileType   Kind = "forbidden_file_type"
	KindParentNotFound      Kind = "parent_not_found"
	KindAlreadyExists       Kind = "already_exists"
	KindUploadFailed        Kind = "upload_failed"
	KindCatalogWriteFailed  Kind = "catalog_write_failed"
	KindCatalogReadFailed   Kind = "catalog_read_failed"
	KindPartialBatchFailure Kind = "partial_batch_failure"
	KindInternal            Kind = "internal"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrSizeLimitExceeded  = &Error{Kind: KindSizeLimitExceeded}
	ErrForbiddenFileType  = &Error{Kind: KindForbiddenFileType}
	ErrParentNotFound     = &Error{Kind: KindParentNotFound}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists}
	ErrUploadFailed       = &Error{Kind: KindUploadFailed}
	ErrCatalogWriteFailed = &Error{Kind: KindCatalogWriteFailed}
	ErrCatalogReadFailed  = &Error{Kind: KindCatalogReadFailed}
)

// Error is returned by the ingestors. Message is safe to show to callers;
// Err carries the internal cause and is not.
type Error struct {
	Kind    Kind
	Message string
	// FileName is the display name of the offending payload, when there is one.
	FileName string
	// Extension is set for KindForbiddenFileType.
	Extension string
	// StoredPath is the blob left without a catalog row (KindCatalogWriteFailed).
	StoredPath string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// BatchError reports a folder upload that stopped part way. The folder and
// the first Succeeded files were kept.
type BatchError struct {
	Succeeded      int
	Total          int
	FailedFileName string
	// Err is the *Error of the failed item.
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.message(), e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

func (e *BatchError) message() string {
	return fmt.Sprintf("uploaded %d of %d files; %s failed", e.Succeeded, e.Total, e.FailedFileName)
}

// KindOf classifies err. A partial batch wins over the kind of its cause.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return KindPartialBatchFailure
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindInternal
}

// Message returns the caller-facing text of err, without internal causes.
func Message(err error) string {
	var be *BatchError
	if errors.As(err, &be) {
		return be.message()
	}
	var ue *Error
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return "internal error"
}

func unauthorized() error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}
