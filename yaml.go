//
// Copyright (c) 2011-2019 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package yaml implements YAML support for the Go language.
//
// Source code and other details for the project are available at GitHub:
//
//	https://github.com/yaml/go-yaml
package yaml

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"go.yaml.in/yaml/v4/internal/libyaml"
)

var noWriter io.Writer

// Node, Kind, Style and their constants, together with the Marshaler,
// Unmarshaler and IsZeroer interfaces, are re-exported in node.go.

// Re-export error types
type (
	UnmarshalError = libyaml.UnmarshalError
	TypeError      = libyaml.TypeError
)

// LineBreak represents the line ending style for YAML output.
type LineBreak = libyaml.LineBreak

// Line break constants for different platforms.
const (
	LineBreakLN   = libyaml.LN_BREAK   // Unix-style \n (default)
	LineBreakCR   = libyaml.CR_BREAK   // Old Mac-style \r
	LineBreakCRLN = libyaml.CRLN_BREAK // Windows-style \r\n
)

// drainTerrors empties the decoder's collected type errors into a
// TypeError, or returns nil when the decode was clean.
func drainTerrors(d *libyaml.Decoder) error {
	if len(d.Terrors) == 0 {
		return nil
	}
	terrors := d.Terrors
	d.Terrors = nil
	return &TypeError{Errors: terrors}
}

// decodeNode unmarshals node into v through the legacy decoder,
// dereferencing the usual pointer level first.
func decodeNode(d *libyaml.Decoder, node *Node, v any) error {
	out := reflect.ValueOf(v)
	if out.Kind() == reflect.Pointer && !out.IsNil() {
		out = out.Elem()
	}
	d.Unmarshal(node, out)
	return drainTerrors(d)
}

//-----------------------------------------------------------------------------
// Load / Dump API
//-----------------------------------------------------------------------------

// Load decodes the first YAML document with the given options.
//
// out must be a non-nil map or pointer (to a struct, string, int, ...);
// nil pointers inside structs are allocated as needed. When one or more
// values cannot be decoded due to type mismatches, decoding continues to
// the end of the content and a *yaml.TypeError reports every missed
// value at once.
//
// Struct fields are decoded if exported, under the lowercased field name
// by default; a `yaml:"name,opts"` field tag overrides the key, with the
// comma-separated options controlling decode/encode behavior:
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
	return unmarshal(in, out, opts...)
}

// LoadAll decodes every document in the input into a slice, each as an
// any value (typically map[string]any or []any). See [Unmarshal] for the
// YAML-to-Go conversion rules.
func LoadAll(in []byte, opts ...Option) ([]any, error) {
	l, err := NewLoader(bytes.NewReader(in), opts...)
	if err != nil {
		return nil, err
	}
	var docs []any
	for {
		var doc any
		switch err := l.Load(&doc); err {
		case io.EOF:
			return docs, nil
		case nil:
			docs = append(docs, doc)
		default:
			return docs, err
		}
	}
}

// A Loader reads and decodes YAML values from an input stream.
type Loader struct {
	composer *libyaml.Composer
	decoder  *libyaml.Decoder
	opts     *libyaml.Options
	docCount int
}

// NewLoader returns a new Loader reading from r with the given options.
// The Loader buffers internally and may consume bytes from r beyond the
// documents requested so far.
func NewLoader(r io.Reader, opts ...Option) (*Loader, error) {
	o, err := libyaml.ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Loader{
		composer: libyaml.NewComposerFromReader(r, o),
		decoder:  libyaml.NewDecoder(o),
		opts:     o,
	}, nil
}

// Load reads the next YAML document from the input and stores it in the
// value pointed to by v, returning io.EOF once the stream is exhausted
// (immediately after the first document under WithSingleDocument). See
// the package-level Load for the conversion rules and tag options.
func (l *Loader) Load(v any) (err error) {
	defer handleErr(&err)
	if l.opts.SingleDocument && l.docCount > 0 {
		return io.EOF
	}
	node := l.composer.Parse()
	if node == nil {
		return io.EOF
	}
	l.docCount++

	// A json.Unmarshaler without YAML-specific decoding gets the document
	// decoded generically and re-delivered as JSON.
	if ju, ok := v.(json.Unmarshaler); ok {
		if _, isYAML := v.(Unmarshaler); !isYAML {
			var doc any
			l.decoder.Unmarshal(node, reflect.ValueOf(&doc).Elem())
			if err := drainTerrors(l.decoder); err != nil {
				return err
			}
			return unmarshalJSON(doc, ju)
		}
	}

	return decodeNode(l.decoder, node, v)
}

// Dump and DumpAll, and the streaming Dumper they're built on, live in
// dumper.go: they're the new-vocabulary counterpart to Load/LoadAll/Loader
// above, backed by the Representer/Desolver/Serializer pipeline instead of
// this file's legacy Encoder.

//-----------------------------------------------------------------------------
// Decode / Encode API
//-----------------------------------------------------------------------------

// A Decoder reads and decodes YAML values from an input stream.
//
// Deprecated: Use Loader instead. Will be removed in v5.
type Decoder struct {
	composer    *libyaml.Composer
	knownFields bool
}

// NewDecoder returns a new decoder that reads from r.
//
// The decoder introduces its own buffering and may read
// data from r beyond the YAML values requested.
//
// Deprecated: Use NewLoader instead. Will be removed in v5.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		composer: libyaml.NewComposerFromReader(r, libyaml.LegacyOptions),
	}
}

// KnownFields ensures that the keys in decoded mappings to
// exist as fields in the struct being decoded into.
//
// Deprecated: Use NewLoader with WithKnownFields option instead.
// Will be removed in v5.
func (dec *Decoder) KnownFields(enable bool) {
	dec.knownFields = enable
}

// Decode reads the next YAML-encoded value from its input
// and stores it in the value pointed to by v.
//
// See the documentation for Unmarshal for details about the
// conversion of YAML into a Go value.
//
// Deprecated: Use Loader.Load instead. Will be removed in v5.
func (dec *Decoder) Decode(v any) (err error) {
	defer handleErr(&err)
	d := libyaml.NewDecoder(libyaml.LegacyOptions)
	d.KnownFields = dec.knownFields
	node := dec.composer.Parse()
	if node == nil {
		return io.EOF
	}
	return decodeNode(d, node, v)
}

// An Encoder writes YAML values to an output stream.
//
// Deprecated: Use Dumper instead. Will be removed in v5.
type Encoder struct {
	encoder *libyaml.Encoder
}

// NewEncoder returns a new encoder that writes to w.
// The Encoder should be closed after use to flush all data
// to w.
//
// Deprecated: Use NewDumper instead. Will be removed in v5.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		encoder: libyaml.NewEncoder(w, libyaml.LegacyOptions),
	}
}

// Encode writes the YAML encoding of v to the stream.
// If multiple items are encoded to the stream, the
// second and subsequent document will be preceded
// with a "---" document separator, but the first will not.
//
// See the documentation for Marshal for details about the conversion of Go
// values to YAML.
//
// Deprecated: Use Dumper.Dump instead. Will be removed in v5.
func (e *Encoder) Encode(v any) (err error) {
	defer handleErr(&err)
	e.encoder.MarshalDoc("", reflect.ValueOf(v))
	return nil
}

// SetIndent changes the used indentation used when encoding.
//
// Deprecated: Use NewDumper with WithIndent option instead. Will be removed in v5.
func (e *Encoder) SetIndent(spaces int) {
	if spaces < 0 {
		panic("yaml: cannot indent to a negative number of spaces")
	}
	e.encoder.Indent = spaces
}

// CompactSeqIndent makes it so that '- ' is considered part of the indentation.
//
// Deprecated: Use NewDumper with WithCompactSeqIndent option instead. Will be removed in v5.
func (e *Encoder) CompactSeqIndent() {
	e.encoder.Emitter.CompactSequenceIndent = true
}

// DefaultSeqIndent makes it so that '- ' is not considered part of the indentation.
//
// Deprecated: This is the default behavior for Dumper. Will be removed in v5.
func (e *Encoder) DefaultSeqIndent() {
	e.encoder.Emitter.CompactSequenceIndent = false
}

// Close closes the encoder by writing any remaining data.
// It does not write a stream terminating string "...".
//
// Deprecated: Use Dumper.Close instead. Will be removed in v5.
func (e *Encoder) Close() (err error) {
	defer handleErr(&err)
	e.encoder.Finish()
	return nil
}

//-----------------------------------------------------------------------------
// Unmarshal / Marshal API
//-----------------------------------------------------------------------------

// Unmarshal decodes the first document found within the in byte slice
// and assigns decoded values into the out value.
//
// out must be a non-nil map or pointer (to a struct, string, int, ...);
// nil pointers inside structs are allocated as needed. When one or more
// values cannot be decoded due to type mismatches, decoding continues to
// the end of the content and a *yaml.TypeError reports every missed
// value at once.
//
// Struct fields are decoded if exported, under the lowercased field name
// by default; a `yaml:"name,opts"` field tag overrides the key, with the
// comma-separated options controlling the marshaling process (see
// Marshal). Conflicting names result in a runtime error.
//
// For example:
//
//	type T struct {
//	    F int `yaml:"a,omitempty"`
//	    B int
//	}
//	var t T
//	yaml.Unmarshal([]byte("a: 1\nb: 2"), &t)
//
// See the documentation of Marshal for the format of tags and a list of
// supported tag options.
//
// Deprecated: Use Load instead. Will be removed in v5.
func Unmarshal(in []byte, out any) (err error) {
	return unmarshal(in, out, V3)
}

func unmarshal(in []byte, out any, opts ...Option) (err error) {
	defer handleErr(&err)
	o, err := libyaml.ApplyOptions(opts...)
	if err != nil {
		return err
	}

	// A yaml.Unmarshaler takes the composed document tree directly.
	if u, ok := out.(Unmarshaler); ok {
		p := libyaml.NewComposer(in, o)
		defer p.Destroy()
		if node := p.Parse(); node != nil {
			return u.UnmarshalYAML(node)
		}
		return nil
	}

	// A json.Unmarshaler without YAML-specific decoding gets the document
	// decoded generically and re-delivered as JSON.
	if ju, ok := out.(json.Unmarshaler); ok {
		var doc any
		if err := unmarshal(in, &doc, opts...); err != nil {
			return err
		}
		return unmarshalJSON(doc, ju)
	}

	p := libyaml.NewComposer(in, o)
	defer p.Destroy()
	d := libyaml.NewDecoder(o)
	node := p.Parse()
	if node == nil {
		return drainTerrors(d)
	}
	return decodeNode(d, node, out)
}

// Marshal serializes the value provided into a YAML document. The structure
// of the generated document will reflect the structure of the value itself.
// Maps and pointers (to struct, string, int, etc) are accepted as the in value.
//
// Struct fields are only marshaled if they are exported (have an upper case
// first letter), and are marshaled using the field name lowercased as the
// default key. Custom keys may be defined via the "yaml" name in the field
// tag: the content preceding the first comma is used as the key, and the
// following comma-separated options are used to tweak the marshaling process.
// Conflicting names result in a runtime error.
//
// The field tag format accepted is:
//
//	`(...) yaml:"[<key>][,<flag1>[,<flag2>]]" (...)`
//
// The following flags are currently supported:
//
//	omitempty    Only include the field if it's not set to the zero
//	             value for the type or to empty slices or maps.
//	             Zero valued structs will be omitted if all their public
//	             fields are zero, unless they implement an IsZero
//	             method (see the IsZeroer interface type), in which
//	             case the field will be excluded if IsZero returns true.
//
//	flow         Marshal using a flow style (useful for structs,
//	             sequences and maps).
//
//	inline       Inline the field, which must be a struct or a map,
//	             causing all of its fields or keys to be processed as if
//	             they were part of the outer struct. For maps, keys must
//	             not conflict with the yaml keys of other struct fields.
//	             See doc/inline-tags.md for detailed examples and use cases.
//
// In addition, if the key is "-", the field is ignored.
//
// For example:
//
//	type T struct {
//	    F int `yaml:"a,omitempty"`
//	    B int
//	}
//	yaml.Marshal(&T{B: 2}) // Returns "b: 2\n"
//	yaml.Marshal(&T{F: 1}} // Returns "a: 1\nb: 0\n"
//
// Deprecated: Use Dump instead. Will be removed in v5.
func Marshal(in any) (out []byte, err error) {
	defer handleErr(&err)
	e := libyaml.NewEncoder(noWriter, libyaml.LegacyOptions)
	defer e.Destroy()
	e.MarshalDoc("", reflect.ValueOf(in))
	e.Finish()
	return e.Out, nil
}

// handleErr recovers the pipeline's YAMLError panic into *err at the
// public API boundary; anything else keeps panicking.
func handleErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(*libyaml.YAMLError); ok {
			*err = e.Err
		} else {
			panic(v)
		}
	}
}
