// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Loader surface: Load/LoadAny one-shot entry points and the streaming
// Loader, driving the Composer → Resolver → Constructor pipeline.

package libyaml

import (
	"bytes"
	"errors"
	"io"
	"reflect"
)

// loadError wraps a plain message in the single-error LoadErrors shape
// the Load surface reports usage problems with.
func loadError(msg string) error {
	return &LoadErrors{Errors: []*ConstructError{{Err: errors.New(msg)}}}
}

// newByteLoader builds a Loader over an in-memory stream, copying the
// already-applied options rather than re-running them.
func newByteLoader(in []byte, opts *Options) (*Loader, error) {
	return NewLoader(bytes.NewReader(in), func(o *Options) error {
		*o = *opts
		return nil
	})
}

// Load decodes YAML document(s) from in into out.
//
// By default the input must hold exactly one document; zero or several
// documents are an error. With WithAllDocuments(), out must be a pointer
// to a slice and every document in the stream is decoded into one
// element (an empty stream gives an empty slice):
//
//	var configs []Config
//	yaml.Load(multiDocYAML, &configs, yaml.WithAllDocuments())
//
// Maps and pointers (to a struct, string, int, etc) are accepted as out
// values; nil pointers inside structs are allocated as needed. When one
// or more values cannot be decoded due to type mismatches, decoding
// continues to the end of the content and a *yaml.LoadErrors reports
// every missed value at once.
//
// Struct fields are decoded if exported, under the lowercased field name
// by default. A `yaml:"name,opts"` field tag overrides the key; the
// comma-separated options after it control decode/encode behavior:
//
//	type T struct {
//	    F int `yaml:"a,omitempty"`
//	    B int
//	}
//	var t T
//	yaml.Load([]byte("a: 1\nb: 2"), &t)
//
// See Dump for the tag format and the full list of tag options.
func Load(in []byte, out any, opts ...Option) error {
	o, err := ApplyOptions(opts...)
	if err != nil {
		return err
	}
	if o.AllDocuments {
		return loadAll(in, out, o)
	}
	return loadSingle(in, out, o)
}

// LoadAny decodes data into generic Go values (map[string]any, []any,
// scalars). Handy when the shape isn't known at compile time, as in the
// data-driven test loaders.
func LoadAny(data []byte) (any, error) {
	var result any
	if err := Load(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadAll decodes every document in the stream into *out, which must be
// a pointer to a slice. The slice is reset first.
func loadAll(in []byte, out any, opts *Options) error {
	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Pointer || outVal.IsNil() {
		return loadError("yaml: WithAllDocuments requires a non-nil pointer to a slice")
	}
	sliceVal := outVal.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return loadError("yaml: WithAllDocuments requires a pointer to a slice")
	}
	sliceVal.Set(reflect.MakeSlice(sliceVal.Type(), 0, 0))

	l, err := newByteLoader(in, opts)
	if err != nil {
		return err
	}

	elemType := sliceVal.Type().Elem()
	for {
		elemPtr := reflect.New(elemType)
		switch err := l.Load(elemPtr.Interface()); err {
		case io.EOF:
			return nil
		case nil:
			sliceVal.Set(reflect.Append(sliceVal, elemPtr.Elem()))
		default:
			return err
		}
	}
}

// loadSingle decodes exactly one document, rejecting empty and
// multi-document streams (the legacy Unmarshal leg skips the trailing
// check to keep the old Decoder.Decode behavior).
func loadSingle(in []byte, out any, opts *Options) error {
	l, err := newByteLoader(in, opts)
	if err != nil {
		return err
	}

	if err := l.Load(out); err != nil {
		if err == io.EOF {
			return loadError("yaml: no documents in stream")
		}
		return err
	}

	if opts.FromLegacy {
		return nil
	}

	var extra any
	switch err := l.Load(&extra); err {
	case io.EOF:
		return nil
	case nil:
		return loadError("yaml: expected single document, found multiple")
	default:
		return err
	}
}

// A Loader reads and decodes YAML values from an input stream. It owns
// the three load-path stages and threads each document through them.
type Loader struct {
	composer    *Composer
	resolver    *Resolver
	constructor *Constructor
	options     *Options
	docCount    int
}

// NewLoader returns a new Loader reading from r with the given options.
// The Loader buffers internally and may consume bytes from r beyond the
// documents requested so far.
func NewLoader(r io.Reader, opts ...Option) (*Loader, error) {
	o, err := ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}
	c := NewComposerFromReader(r, o)
	c.SetStreamNodes(o.StreamNodes)
	resolver := o.Resolver
	if resolver == nil {
		resolver = NewResolver(o)
	}
	constructor := o.Constructor
	if constructor == nil {
		constructor = NewConstructor(o)
	}
	return &Loader{
		composer:    c,
		resolver:    resolver,
		constructor: constructor,
		options:     o,
	}, nil
}

// SetKnownFields toggles strict field checking for subsequent Load
// calls; the legacy Decoder.KnownFields method delegates here.
func (l *Loader) SetKnownFields(enable bool) {
	l.constructor.KnownFields = enable
}

// nextDocument runs the compose and resolve stages for the next
// document, or returns nil at end of stream (and, under
// WithSingleDocument, after the first document).
func (l *Loader) nextDocument() *Node {
	if l.options.SingleDocument && l.docCount > 0 {
		return nil
	}
	node := l.composer.Compose()
	if node == nil {
		return nil
	}
	l.docCount++
	l.resolver.Resolve(node)
	return node
}

// ComposeAndResolve returns the next document as a resolved Node tree
// without constructing Go values; Unmarshal uses it to feed the
// Unmarshaler interface.
func (l *Loader) ComposeAndResolve() *Node {
	return l.nextDocument()
}

// Load reads the next YAML document from the input and stores it in the
// value pointed to by v, returning io.EOF once the stream is exhausted.
// See the package-level Load for the conversion rules and tag options.
func (l *Loader) Load(v any) (err error) {
	defer handleErr(&err)

	node := l.nextDocument()
	if node == nil {
		return io.EOF
	}

	out := reflect.ValueOf(v)
	if out.Kind() == reflect.Pointer && !out.IsNil() {
		out = out.Elem()
	}
	l.constructor.Construct(node, out)
	if len(l.constructor.TypeErrors) > 0 {
		typeErrors := l.constructor.TypeErrors
		l.constructor.TypeErrors = nil
		return &LoadErrors{Errors: typeErrors}
	}
	return nil
}
