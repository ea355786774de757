// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The pipeline's two error families: structured, mark-carrying failures
// raised by Reader/Scanner/Parser/Composer/Constructor/Emitter (fatal for
// the current document), and the legacy/compatibility wrappers the public
// API still exposes.

package libyaml

import (
	"errors"
	"fmt"
	"strings"
)

// MarkedYAMLError is the common shape behind every stage-specific error
// below: a problem message plus the mark where it was detected, and
// optionally a second mark/message describing where the offending
// construct began (the "problem mark" / "context mark" pair).
type MarkedYAMLError struct {
	ContextMark    Mark
	ContextMessage string
	Mark           Mark
	Message        string

	// SourceName labels the input stream when the loader was given one.
	SourceName string
}

func (e MarkedYAMLError) Error() string {
	var b strings.Builder
	b.WriteString("yaml: ")
	if e.SourceName != "" {
		fmt.Fprintf(&b, "in %q: ", e.SourceName)
	}
	if e.ContextMessage != "" {
		fmt.Fprintf(&b, "%s at %s: ", e.ContextMessage, e.ContextMark)
	}
	if e.ContextMessage == "" || e.ContextMark != e.Mark {
		fmt.Fprintf(&b, "%s: ", e.Mark)
	}
	b.WriteString(e.Message)
	return b.String()
}

// ScannerError is a MarkedYAMLError raised while tokenizing.
type ScannerError MarkedYAMLError

func (e ScannerError) Error() string { return MarkedYAMLError(e).Error() }

// ParserError is a MarkedYAMLError raised while building events from
// tokens.
type ParserError MarkedYAMLError

func (e ParserError) Error() string { return MarkedYAMLError(e).Error() }

// ReaderError reports a forbidden code point or malformed encoding found
// while decoding the input buffer; Offset is the byte position, Value the
// offending code point.
type ReaderError struct {
	Offset int
	Value  int
	Err    error
}

func (e ReaderError) Error() string { return fmt.Sprintf("yaml: offset %d: %s", e.Offset, e.Err) }
func (e ReaderError) Unwrap() error { return e.Err }

// EmitterError reports a failure on the dump path: an invalid anchor
// name, a non-representable node, or an I/O failure from the sink.
type EmitterError struct {
	Message string
}

func (e EmitterError) Error() string { return fmt.Sprintf("yaml: %s", e.Message) }

// WriterError wraps an I/O error surfaced while flushing emitted bytes.
type WriterError struct {
	Err error
}

func (e WriterError) Error() string { return fmt.Sprintf("yaml: %s", e.Err) }
func (e WriterError) Unwrap() error { return e.Err }

// ConstructError is one field-level failure encountered while decoding a
// composed Node into a Go value. Multiple
// ConstructErrors collected over one Decode/Unmarshal call are reported
// together as a LoadErrors.
type ConstructError struct {
	Err    error
	Line   int
	Column int
}

func (e *ConstructError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Err) }
func (e *ConstructError) Unwrap() error { return e.Err }

// LoadErrors collects every ConstructError produced by a single decode
// call; the Constructor keeps decoding past a field-level failure so a
// caller sees every mismatch in one pass rather than just the first.
type LoadErrors struct {
	Errors []*ConstructError
}

func (e *LoadErrors) Error() string {
	var b strings.Builder
	b.WriteString("yaml: construct errors:")
	for _, ce := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(ce.Error())
	}
	return b.String()
}

// As gives LoadErrors the errors.As behavior of Go 1.20+'s Unwrap()
// []error convention on the older toolchains this module still supports:
// a *ConstructError target matches the
// first collected error, and a *TypeError target gets the legacy
// UnmarshalError-per-failure view for callers still checking against it.
func (e *LoadErrors) As(target any) bool {
	switch t := target.(type) {
	case **ConstructError:
		if len(e.Errors) == 0 {
			return false
		}
		*t = e.Errors[0]
		return true
	case **TypeError:
		errs := make([]*UnmarshalError, len(e.Errors))
		for i, ce := range e.Errors {
			errs[i] = &UnmarshalError{Err: ce.Err, Line: ce.Line, Column: ce.Column}
		}
		*t = &TypeError{Errors: errs}
		return true
	}
	return false
}

// Is gives LoadErrors the same Go-version-compatibility treatment As
// does: walk the collected errors and defer to errors.Is on each.
func (e *LoadErrors) Is(target error) bool {
	for _, ce := range e.Errors {
		if errors.Is(ce, target) {
			return true
		}
	}
	return false
}

// TypeError and UnmarshalError (the pre-LoadErrors shape Unmarshal/Decode
// still return when one or more fields couldn't be decoded) are declared in
// load.go next to the legacy Decoder that raises them.
//
// Deprecated: use LoadErrors.

// YAMLError wraps any of the above for propagation through panic/recover:
// the pipeline's internal control flow raises one to unwind out of deep
// recursion, and handleErr converts it back into a normal error return at
// the public API boundary rather than letting it escape as a panic.
type YAMLError struct {
	Err error
}

func (e *YAMLError) Error() string { return e.Err.Error() }

// handleErr is deferred at each public entry point (Load, Dump, Encode,
// Decode, ...) to recover a YAMLError panic into *err. Any other panic
// value is re-raised unchanged — this is not a general-purpose recover.
func handleErr(err *error) {
	v := recover()
	if v == nil {
		return
	}
	if ye, ok := v.(*YAMLError); ok {
		*err = ye.Err
		return
	}
	panic(v)
}
