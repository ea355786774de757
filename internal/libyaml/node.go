// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Node tree types shared by the Composer, Constructor, Representer, and
// Serializer stages.

package libyaml

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Kind identifies the shape of a Node.
type Kind uint32

const (
	DocumentNode Kind = 1 << iota
	SequenceNode
	MappingNode
	ScalarNode
	AliasNode
	StreamNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	case ScalarNode:
		return "scalar"
	case AliasNode:
		return "alias"
	case StreamNode:
		return "stream"
	}
	return "unknown"
}

// Style carries formatting hints for a Node. It is a superset of the
// scalar/sequence/mapping style enums used at the event level, because a
// single node may need to remember both "this was quoted" and "this was
// flow" across a represent/emit round trip.
type Style uint32

const (
	TaggedStyle Style = 1 << iota
	DoubleQuotedStyle
	SingleQuotedStyle
	LiteralStyle
	FoldedStyle
	FlowStyle
)

// StreamVersionDirective mirrors a document's %YAML directive on a StreamNode.
type StreamVersionDirective struct {
	Major int
	Minor int
}

// StreamTagDirective mirrors a document's %TAG directive on a StreamNode.
type StreamTagDirective struct {
	Handle string
	Prefix string
}

// Node represents a single element of a YAML document tree.
//
// Node is the shared currency between the Composer (which builds it from an
// event stream), the Constructor (which types it), the Representer (which
// builds it from a Go value), and the Serializer (which walks it back into
// events). Line and Column are 1-based; a zero value means "not tracked"
// (see Composer.Textless).
type Node struct {
	Kind  Kind
	Style Style

	// Tag is the resolved tag URI, e.g. "!!str" or "tag:yaml.org,2002:int".
	Tag string

	// Value holds the raw scalar text (for ScalarNode) or, for AliasNode,
	// the anchor name being referenced.
	Value string

	// Anchor is the anchor name defined at this node, if any.
	Anchor string

	// Alias points at the node an AliasNode refers to.
	Alias *Node

	// Content holds child nodes: values for SequenceNode, alternating
	// key/value pairs for MappingNode, the single document root for
	// DocumentNode, and documents for StreamNode.
	Content []*Node

	HeadComment string
	LineComment string
	FootComment string

	Line   int
	Column int
	Index  int

	// Encoding, Version and TagDirectives are only meaningful on a
	// StreamNode produced when stream-level introspection is requested.
	Encoding      Encoding
	Version       *StreamVersionDirective
	TagDirectives []StreamTagDirective
}

// IsZero reports whether the node is the Node zero value.
func (n *Node) IsZero() bool {
	return n.Kind == 0 && n.Style == 0 && n.Tag == "" && n.Value == "" &&
		n.Anchor == "" && n.Alias == nil && len(n.Content) == 0
}

// ShortTag returns the node's tag using its short "!!name" form when it
// denotes a built-in YAML 1.1 schema tag, or the tag unchanged otherwise.
func (n *Node) ShortTag() string {
	return shortTag(n.Tag)
}

// LongTag returns the node's tag expanded to the "tag:yaml.org,2002:name"
// form used on the wire.
func (n *Node) LongTag() string {
	return longTag(n.Tag)
}

// indicatedString reports whether the node's remembered style indicates
// that it must be treated as a string regardless of what the value would
// otherwise resolve to (e.g. a quoted "42" is a string, not an int).
func (n *Node) indicatedString() bool {
	return n.Style&(SingleQuotedStyle|DoubleQuotedStyle|LiteralStyle|FoldedStyle) != 0
}

// typeMismatch builds the ConstructError raised when a node's tag cannot be
// decoded into the requested Go kind.
func (n *Node) typeMismatch(want string) error {
	return fmt.Errorf("cannot decode %s into a %s", n.Kind, want)
}

// shouldUseLiteralStyle reports whether a scalar value reads better in
// literal block style: any embedded line break qualifies.
func shouldUseLiteralStyle(value string) bool {
	return strings.Contains(value, "\n")
}

// SetString sets the node to a scalar holding s. Valid UTF-8 keeps the
// string tag; anything else is stored base64-encoded as !!binary.
// Multi-line values remember literal style so they round-trip readably.
func (n *Node) SetString(s string) {
	n.Kind = ScalarNode
	if utf8.ValidString(s) {
		n.Value = s
		n.Tag = strTag
	} else {
		n.Value = encodeBase64(s)
		n.Tag = binaryTag
	}
	if shouldUseLiteralStyle(n.Value) {
		n.Style = LiteralStyle
	}
}

// Load decodes the node into out, honoring the given options.
func (n *Node) Load(out any, opts ...Option) (err error) {
	defer handleErr(&err)
	o, err := ApplyOptions(opts...)
	if err != nil {
		return err
	}
	return n.decodeWith(NewDecoder(o), out)
}

// Decode decodes the node into out with go-yaml v3's fixed settings.
//
// Deprecated: Use Load instead. Will be removed in v5.
func (n *Node) Decode(out any) (err error) {
	defer handleErr(&err)
	return n.decodeWith(NewDecoder(LegacyOptions), out)
}

func (n *Node) decodeWith(d *Decoder, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	d.Unmarshal(n, rv)
	if len(d.Terrors) > 0 {
		return &TypeError{Errors: d.Terrors}
	}
	return nil
}

// Dump replaces the node with the representation of in, honoring the
// given options.
func (n *Node) Dump(in any, opts ...Option) (err error) {
	defer handleErr(&err)
	o, err := ApplyOptions(opts...)
	if err != nil {
		return err
	}
	return n.encodeWith(NewEncoder(nil, o), in)
}

// Encode replaces the node with the representation of in, using go-yaml
// v3's fixed settings.
//
// Deprecated: Use Dump instead. Will be removed in v5.
func (n *Node) Encode(in any) (err error) {
	defer handleErr(&err)
	return n.encodeWith(NewEncoder(nil, LegacyOptions), in)
}

// encodeWith marshals in through e, then re-composes the emitted bytes in
// textless mode so the node carries no positions from the scratch render.
func (n *Node) encodeWith(e *Encoder, in any) error {
	defer e.Destroy()
	e.MarshalDoc("", reflect.ValueOf(in))
	e.Finish()
	p := NewComposer(e.Out, nil)
	p.Textless = true
	defer p.Destroy()
	doc := p.Parse()
	*n = *doc.Content[0]
	return nil
}
