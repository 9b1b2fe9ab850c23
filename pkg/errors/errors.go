package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network or storefront fetch errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeTerminal represents a terminal crawl condition (not a fault)
	ErrorTypeTerminal ErrorType = "terminal"
	// ErrorTypeExtraction represents per-listing extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypePersistence represents store write errors during ingest
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeStore represents store connectivity or query errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeRateLimit represents rate limiting by the storefront
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// TerminalReason distinguishes the ways a brand crawl can end. Both are
// routed through the same retry path; there is no separate success outcome.
type TerminalReason string

const (
	// ReasonBrandNotFound means the page carried no pagination markers
	ReasonBrandNotFound TerminalReason = "brand_not_found"
	// ReasonPagesExhausted means the last reported page was crawled
	ReasonPagesExhausted TerminalReason = "pages_exhausted"
)

// CrawlError represents a crawl-specific error
type CrawlError struct {
	Type    ErrorType
	Brand   string
	Reason  TerminalReason
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Brand, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Brand, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the brand should be retried after backoff.
// Every crawl outcome feeds the selector's retry loop, so only a bad
// configuration is considered unretryable.
func (e *CrawlError) IsRetryable() bool {
	return e.Type != ErrorTypeConfiguration
}

// New creates a new CrawlError
func New(errType ErrorType, brand, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Brand:   brand,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(brand, message string, err error) *CrawlError {
	return New(ErrorTypeNetwork, brand, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(brand, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, brand, message, err)
}

// NewExtraction creates a new per-listing extraction error
func NewExtraction(brand, message string, err error) *CrawlError {
	return New(ErrorTypeExtraction, brand, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(brand, message string, err error) *CrawlError {
	return New(ErrorTypePersistence, brand, message, err)
}

// NewStore creates a new store connectivity error
func NewStore(message string, err error) *CrawlError {
	return New(ErrorTypeStore, "", message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(brand string, duration time.Duration) *CrawlError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, brand, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewBrandNotFound creates the terminal condition for a page without
// pagination markers.
func NewBrandNotFound(brand string) *CrawlError {
	e := New(ErrorTypeTerminal, brand, "brand not found on storefront", nil)
	e.Reason = ReasonBrandNotFound
	return e
}

// NewPagesExhausted creates the terminal condition for a fully crawled brand.
func NewPagesExhausted(brand string, pages int) *CrawlError {
	e := New(ErrorTypeTerminal, brand, fmt.Sprintf("all %d pages crawled", pages), nil)
	e.Reason = ReasonPagesExhausted
	return e
}

// IsTerminal reports whether err is a terminal crawl condition and, if so,
// which one.
func IsTerminal(err error) (TerminalReason, bool) {
	var ce *CrawlError
	if errors.As(err, &ce) && ce.Type == ErrorTypeTerminal {
		return ce.Reason, true
	}
	return "", false
}
