package sources

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Error codes carried by SourceError.
const (
	CodeRawFetch        = "RAW_FETCH_ERROR"
	CodePrivateRepo     = "PRIVATE_REPO"
	CodeNotFound        = "NOT_FOUND"
	CodeGithubAPI       = "GITHUB_API_ERROR"
	CodeUnsupportedMIME = "UNSUPPORTED_MIME"
	CodeHTTPFetch       = "HTTP_FETCH"
	CodeHTTPStatus      = "HTTP_STATUS"
	CodeHTTPMaxSize     = "HTTP_MAX_SIZE"
	CodeLocalRead       = "LOCAL_READ"
	CodeInvalidSource   = "INVALID_SOURCE"
)

var codeCategories = map[string]goerrors.Category{
	CodeRawFetch:        goerrors.CategoryExternal,
	CodePrivateRepo:     goerrors.CategoryAuth,
	CodeNotFound:        goerrors.CategoryNotFound,
	CodeGithubAPI:       goerrors.CategoryExternal,
	CodeUnsupportedMIME: goerrors.CategoryBadInput,
	CodeHTTPFetch:       goerrors.CategoryExternal,
	CodeHTTPStatus:      goerrors.CategoryExternal,
	CodeHTTPMaxSize:     goerrors.CategoryBadInput,
	CodeLocalRead:       goerrors.CategoryOperation,
	CodeInvalidSource:   goerrors.CategoryBadInput,
}

// SourceError describes why a source could not be read.
type SourceError struct {
	Code     string
	SourceID string
	Status   int
	Message  string
	Err      error
}

func (e *SourceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "source read failed"
	}
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.SourceID != "" {
		msg = fmt.Sprintf("%s: %s", e.SourceID, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Err }

// newSourceError wraps a SourceError in the go-errors envelope so callers
// can branch on category and text code.
func newSourceError(code, sourceID string, status int, message string, cause error) error {
	srcErr := &SourceError{
		Code:     code,
		SourceID: sourceID,
		Status:   status,
		Message:  message,
		Err:      cause,
	}
	category, ok := codeCategories[code]
	if !ok {
		category = goerrors.CategoryInternal
	}
	meta := map[string]any{"source_id": sourceID}
	if status > 0 {
		meta["status"] = status
	}
	summary := message
	if summary == "" {
		summary = "source read failed"
	}
	wrapped := goerrors.Wrap(srcErr, category, summary).
		WithTextCode(code).
		WithMetadata(meta)
	if status > 0 {
		wrapped = wrapped.WithCode(status)
	}
	return wrapped
}

// CodeOf returns the SourceError code found in err's chain, or "".
func CodeOf(err error) string {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Code
	}
	return ""
}
