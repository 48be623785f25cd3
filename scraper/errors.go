package scraper

import (
	"errors"
	"fmt"
)

// classified is implemented by every crawl error that carries its own
// counter label.
type classified interface {
	error
	label() string
}

// ErrTimeout indicates a request that timed out.
type ErrTimeout struct{ Err error }

func (e ErrTimeout) label() string { return "timeout" }
func (e ErrTimeout) Error() string { return labelled(e, e.Err) }
func (e ErrTimeout) Unwrap() error { return e.Err }

// ErrConnection indicates a network failure before any response arrived.
type ErrConnection struct{ Err error }

func (e ErrConnection) label() string { return "connection" }
func (e ErrConnection) Error() string { return labelled(e, e.Err) }
func (e ErrConnection) Unwrap() error { return e.Err }

// ErrForbidden indicates an HTTP 403 from the marketplace.
type ErrForbidden struct{ Err error }

func (e ErrForbidden) label() string { return "forbidden" }
func (e ErrForbidden) Error() string { return labelled(e, e.Err) }
func (e ErrForbidden) Unwrap() error { return e.Err }

// ErrNotFound indicates an HTTP 404, usually a delisted product.
type ErrNotFound struct{ Err error }

func (e ErrNotFound) label() string { return "not_found" }
func (e ErrNotFound) Error() string { return labelled(e, e.Err) }
func (e ErrNotFound) Unwrap() error { return e.Err }

// ErrRateLimited indicates an HTTP 429.
type ErrRateLimited struct{ Err error }

func (e ErrRateLimited) label() string { return "rate_limited" }
func (e ErrRateLimited) Error() string { return labelled(e, e.Err) }
func (e ErrRateLimited) Unwrap() error { return e.Err }

// ErrMalformedListing indicates a listing page without the anchors needed to
// plan its section, such as the total item count. The section is skipped.
type ErrMalformedListing struct {
	URL string
	Err error
}

func (e ErrMalformedListing) label() string { return "malformed_listing" }
func (e ErrMalformedListing) Error() string {
	return fmt.Sprintf("%s %s: %v", e.label(), e.URL, e.Err)
}
func (e ErrMalformedListing) Unwrap() error { return e.Err }

func labelled(e classified, cause error) string {
	if cause == nil {
		return e.label()
	}
	return e.label() + ": " + cause.Error()
}

// errorTypeLabel names the counter an error is reported under.
func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var c classified
	if errors.As(err, &c) {
		return c.label()
	}
	return "other"
}
