package fetch

import (
	"errors"
	"strings"
)

// ErrorKind classifies why a fetch failed, so callers (the assembler, the
// denick heuristic) can decide whether to retry, fall back, or surface the
// failure to the user.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	NotFound
	AuthInvalid
	Throttled
	Transient
	MissingLocalIssuer
)

// Error wraps a classified fetch failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to Unknown if err
// isn't a *Error.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// missingLocalIssuerMarkers are substrings Go's TLS stack and common
// corporate TLS-intercepting proxies put in their error text when the
// client can't build a trust chain to a locally-trusted root. Matched the
// same way the original implementation detects it: by text, since Go
// doesn't expose a single typed error across every platform's root store.
var missingLocalIssuerMarkers = []string{
	"certificate signed by unknown authority",
	"unable to get local issuer certificate",
	"x509: certificate is not trusted",
}

func looksLikeMissingLocalIssuer(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range missingLocalIssuerMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
