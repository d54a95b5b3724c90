package domain

import "fmt"

// ErrorKind classifies why a page could not be turned into content.
type ErrorKind string

// Supported scrape error kinds.
const (
	ErrBlocked      ErrorKind = "blocked"
	ErrEmptyContent ErrorKind = "empty_content"
	ErrTimeout      ErrorKind = "timeout"
	ErrServerError  ErrorKind = "server_error"
	ErrNotFound     ErrorKind = "not_found"
	ErrInvalidURL   ErrorKind = "invalid_url"
	ErrUnknown      ErrorKind = "unknown"
)

// Valid reports whether k is one of the known kinds.
func (k ErrorKind) Valid() bool {
	switch k {
	case ErrBlocked, ErrEmptyContent, ErrTimeout, ErrServerError, ErrNotFound, ErrInvalidURL, ErrUnknown:
		return true
	default:
		return false
	}
}

// ScrapeError records a failed URL by kind and the domain it belonged to.
type ScrapeError struct {
	Kind   ErrorKind `json:"kind"`
	Domain string    `json:"domain"`
}

func (e ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %s", e.Domain, e.Kind)
}

// ScrapeOutcome is the result of fetching one URL: either Text or Failure is set.
type ScrapeOutcome struct {
	URL     string
	Text    string
	Failure *ScrapeError
}

// Content builds a successful outcome.
func Content(url, text string) ScrapeOutcome {
	return ScrapeOutcome{URL: url, Text: text}
}

// Failure builds a failed outcome.
func Failure(url string, kind ErrorKind, domain string) ScrapeOutcome {
	return ScrapeOutcome{URL: url, Failure: &ScrapeError{Kind: kind, Domain: domain}}
}

// OK reports whether the outcome carries content.
func (o ScrapeOutcome) OK() bool {
	return o.Failure == nil
}
