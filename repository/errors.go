package repository

import (
	"fmt"
)

// StructureError reports malformed nesting, a missing required attribute or a
// stream that ended inside an element.
type StructureError struct {
	// Element is the element being parsed when the problem was found.
	Element string
	// Expected and Actual are set when a closing tag did not match.
	Expected string
	Actual   string
	Msg      string
	Err      error
}

func (e *StructureError) Error() string {
	switch {
	case e.Actual != "":
		return fmt.Sprintf("parsing %s: expected closing tag %q, found %q", e.Element, e.Expected, e.Actual)
	case e.Err != nil:
		return fmt.Sprintf("parsing %s: %v", e.Element, e.Err)
	default:
		return fmt.Sprintf("parsing %s: %s", e.Element, e.Msg)
	}
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// ValueError reports well formed structure whose content failed validation.
type ValueError struct {
	Field string
	Text  string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q: %v", e.Field, e.Text, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

type FetchErrorKind int

const (
	// FetchTransport covers request, network and local I/O failures.
	FetchTransport FetchErrorKind = iota
	FetchChecksumMismatch
	FetchUnpack
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTransport:
		return "transport"
	case FetchChecksumMismatch:
		return "checksum mismatch"
	case FetchUnpack:
		return "unpack"
	default:
		return fmt.Sprintf("FetchErrorKind(%d)", int(k))
	}
}

type FetchError struct {
	Kind FetchErrorKind
	URL  string
	// Expected and Actual are the checksums for FetchChecksumMismatch.
	Expected string
	Actual   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchChecksumMismatch {
		return fmt.Sprintf("checksum failure: %s: expected %s, actual %s", e.URL, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s failure: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
