package textextract

import (
	"errors"
	"fmt"
	"strings"
)

// StrategyError records why one extraction strategy did not produce text.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e StrategyError) Error() string {
	return e.Strategy + ": " + e.Err.Error()
}

// NoTextFoundError is returned when every strategy ran and none produced text.
type NoTextFoundError struct {
	Attempts []StrategyError
}

func (e *NoTextFoundError) Error() string {
	if len(e.Attempts) == 0 {
		return "no text found in PDF: no extraction strategies configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("no text found in PDF after %d strategies (%s)", len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes the per-strategy causes to errors.Is and errors.As.
func (e *NoTextFoundError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// FetchError is returned when a PDF URL could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var (
	errEmptyText   = errors.New("strategy produced no text")
	errNoURL       = errors.New("no source URL available")
	errNullPage    = errors.New("page object is null")
	errShortText   = errors.New("remote service returned too little text")
	errRemoteFail  = errors.New("remote service reported failure")
	errNoTextRuns  = errors.New("no qualifying text runs in byte stream")
	errFetchTooBig = errors.New("response body exceeds size limit")
)
