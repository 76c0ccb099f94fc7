package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeAuthentication represents session bootstrap / token errors
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeHTTP represents non-2xx or transport-level HTTP errors
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeDocumentParse represents unreadable document errors
	ErrorTypeDocumentParse ErrorType = "document_parse"
	// ErrorTypeDateParse represents unparsable listing date errors
	ErrorTypeDateParse ErrorType = "date_parse"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error.
//
// Whether an error aborts the run is decided by the caller from where it
// happened, not from the type: the same HTTP failure is fatal on a listing
// fetch and a skip on a document download.
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Status  int
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, msg)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is (or wraps) a ScrapeError of the given type.
func IsType(err error, t ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewAuthentication creates a new authentication error
func NewAuthentication(source, message string, err error) *ScrapeError {
	return New(ErrorTypeAuthentication, source, message, err)
}

// NewHTTP creates a new HTTP error carrying the response status
func NewHTTP(source string, status int, message string, err error) *ScrapeError {
	e := New(ErrorTypeHTTP, source, message, err)
	e.Status = status
	return e
}

// NewDocumentParse creates a new document parse error
func NewDocumentParse(source, message string, err error) *ScrapeError {
	return New(ErrorTypeDocumentParse, source, message, err)
}

// NewDateParse creates a new date parse error for the given raw value
func NewDateParse(source, value string, err error) *ScrapeError {
	message := fmt.Sprintf("unparsable date %q", value)
	return New(ErrorTypeDateParse, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
