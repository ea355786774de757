// Copyright 2006-2010 Kirill Simonov
// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0 AND MIT

// The pipeline's shared vocabulary: Mark, Token, Event, the style and
// error enums, and the YAML 1.1 schema tag constants. Parser and Emitter
// state lives in reader.go and emitter_state.go respectively.

package libyaml

import (
	"fmt"
	"strings"
)

// VersionDirective is a parsed %YAML directive.
type VersionDirective struct {
	major int8
	minor int8
}

// Major returns the major version number.
func (v *VersionDirective) Major() int { return int(v.major) }

// Minor returns the minor version number.
func (v *VersionDirective) Minor() int { return int(v.minor) }

// TagDirective is a parsed %TAG directive: a handle and the prefix it
// expands to.
type TagDirective struct {
	handle []byte
	prefix []byte
}

// GetHandle returns the tag handle.
func (t *TagDirective) GetHandle() string { return string(t.handle) }

// GetPrefix returns the tag prefix.
func (t *TagDirective) GetPrefix() string { return string(t.prefix) }

// Encoding identifies a stream's character encoding.
type Encoding int

const (
	// Let the parser choose the encoding.
	ANY_ENCODING Encoding = iota

	UTF8_ENCODING    // The default UTF-8 encoding.
	UTF16LE_ENCODING // The UTF-16-LE encoding with BOM.
	UTF16BE_ENCODING // The UTF-16-BE encoding with BOM.
	UTF32LE_ENCODING // The UTF-32-LE encoding with BOM.
	UTF32BE_ENCODING // The UTF-32-BE encoding with BOM.
)

// LineBreak selects the break style the emitter writes.
type LineBreak int

const (
	// Let the parser choose the break type.
	ANY_BREAK LineBreak = iota

	CR_BREAK   // Use CR for line breaks (Mac style).
	LN_BREAK   // Use LN for line breaks (Unix style).
	CRLN_BREAK // Use CR LN for line breaks (DOS style).
)

// QuoteStyle selects which quote style wins when a scalar must be
// quoted but neither style is otherwise required.
type QuoteStyle int

const (
	QuoteSingle QuoteStyle = iota // Prefer single quotes when quoting is required.
	QuoteDouble                   // Prefer double quotes when quoting is required.
	QuoteLegacy                   // Legacy behavior: double in representer, single in emitter.
)

// ScalarStyle maps the preference onto a concrete scalar style for the
// representer/serializer context, where QuoteLegacy means double.
func (q QuoteStyle) ScalarStyle() ScalarStyle {
	if q == QuoteDouble || q == QuoteLegacy {
		return DOUBLE_QUOTED_SCALAR_STYLE
	}
	return SINGLE_QUOTED_SCALAR_STYLE
}

// ErrorType routes a failure to its pipeline stage.
type ErrorType int

const (
	// No error is produced.
	NO_ERROR ErrorType = iota

	MEMORY_ERROR   // Cannot allocate or reallocate a block of memory.
	READER_ERROR   // Cannot read or decode the input stream.
	SCANNER_ERROR  // Cannot scan the input stream.
	PARSER_ERROR   // Cannot parse the input stream.
	COMPOSER_ERROR // Cannot compose a YAML document.
	WRITER_ERROR   // Cannot write to the output stream.
	EMITTER_ERROR  // Cannot emit a YAML stream.
)

// Mark is a position in the source stream. Line is 1-indexed; Column is
// 0-indexed internally and displayed 1-indexed.
type Mark struct {
	Index  int
	Line   int
	Column int
}

func (m Mark) String() string {
	if m.Line == 0 {
		return "<unknown position>"
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "line %d", m.Line)
	if m.Column != 0 {
		fmt.Fprintf(&builder, ", column %d", m.Column+1)
	}
	return builder.String()
}

// Node styles.

type styleInt int8

// ScalarStyle is the requested or detected rendering of one scalar.
type ScalarStyle styleInt

const (
	// Let the emitter choose the style.
	ANY_SCALAR_STYLE ScalarStyle = 0

	PLAIN_SCALAR_STYLE         ScalarStyle = 1 << iota // The plain scalar style.
	SINGLE_QUOTED_SCALAR_STYLE                         // The single-quoted scalar style.
	DOUBLE_QUOTED_SCALAR_STYLE                         // The double-quoted scalar style.
	LITERAL_SCALAR_STYLE                               // The literal scalar style.
	FOLDED_SCALAR_STYLE                                // The folded scalar style.
)

var scalarStyleStrings = map[ScalarStyle]string{
	PLAIN_SCALAR_STYLE:         "Plain",
	SINGLE_QUOTED_SCALAR_STYLE: "Single",
	DOUBLE_QUOTED_SCALAR_STYLE: "Double",
	LITERAL_SCALAR_STYLE:       "Literal",
	FOLDED_SCALAR_STYLE:        "Folded",
}

// String returns a string representation of a [ScalarStyle].
func (style ScalarStyle) String() string {
	return scalarStyleStrings[style]
}

// SequenceStyle picks block or flow rendering for a sequence.
type SequenceStyle styleInt

const (
	// Let the emitter choose the style.
	ANY_SEQUENCE_STYLE SequenceStyle = iota

	BLOCK_SEQUENCE_STYLE // The block sequence style.
	FLOW_SEQUENCE_STYLE  // The flow sequence style.
)

// MappingStyle picks block or flow rendering for a mapping.
type MappingStyle styleInt

const (
	// Let the emitter choose the style.
	ANY_MAPPING_STYLE MappingStyle = iota

	BLOCK_MAPPING_STYLE // The block mapping style.
	FLOW_MAPPING_STYLE  // The flow mapping style.
)

// Tokens.

type TokenType int

const (
	// An empty token.
	NO_TOKEN TokenType = iota

	STREAM_START_TOKEN // A STREAM-START token.
	STREAM_END_TOKEN   // A STREAM-END token.

	VERSION_DIRECTIVE_TOKEN // A VERSION-DIRECTIVE token.
	TAG_DIRECTIVE_TOKEN     // A TAG-DIRECTIVE token.
	DOCUMENT_START_TOKEN    // A DOCUMENT-START token.
	DOCUMENT_END_TOKEN      // A DOCUMENT-END token.

	BLOCK_SEQUENCE_START_TOKEN // A BLOCK-SEQUENCE-START token.
	BLOCK_MAPPING_START_TOKEN  // A BLOCK-MAPPING-START token.
	BLOCK_END_TOKEN            // A BLOCK-END token.

	FLOW_SEQUENCE_START_TOKEN // A FLOW-SEQUENCE-START token.
	FLOW_SEQUENCE_END_TOKEN   // A FLOW-SEQUENCE-END token.
	FLOW_MAPPING_START_TOKEN  // A FLOW-MAPPING-START token.
	FLOW_MAPPING_END_TOKEN    // A FLOW-MAPPING-END token.

	BLOCK_ENTRY_TOKEN // A BLOCK-ENTRY token.
	FLOW_ENTRY_TOKEN  // A FLOW-ENTRY token.
	KEY_TOKEN         // A KEY token.
	VALUE_TOKEN       // A VALUE token.

	ALIAS_TOKEN   // An ALIAS token.
	ANCHOR_TOKEN  // An ANCHOR token.
	TAG_TOKEN     // A TAG token.
	SCALAR_TOKEN  // A SCALAR token.
	COMMENT_TOKEN // A COMMENT token.
)

var tokenTypeStrings = map[TokenType]string{
	NO_TOKEN:                   "NO_TOKEN",
	STREAM_START_TOKEN:         "STREAM_START_TOKEN",
	STREAM_END_TOKEN:           "STREAM_END_TOKEN",
	VERSION_DIRECTIVE_TOKEN:    "VERSION_DIRECTIVE_TOKEN",
	TAG_DIRECTIVE_TOKEN:        "TAG_DIRECTIVE_TOKEN",
	DOCUMENT_START_TOKEN:       "DOCUMENT_START_TOKEN",
	DOCUMENT_END_TOKEN:         "DOCUMENT_END_TOKEN",
	BLOCK_SEQUENCE_START_TOKEN: "BLOCK_SEQUENCE_START_TOKEN",
	BLOCK_MAPPING_START_TOKEN:  "BLOCK_MAPPING_START_TOKEN",
	BLOCK_END_TOKEN:            "BLOCK_END_TOKEN",
	FLOW_SEQUENCE_START_TOKEN:  "FLOW_SEQUENCE_START_TOKEN",
	FLOW_SEQUENCE_END_TOKEN:    "FLOW_SEQUENCE_END_TOKEN",
	FLOW_MAPPING_START_TOKEN:   "FLOW_MAPPING_START_TOKEN",
	FLOW_MAPPING_END_TOKEN:     "FLOW_MAPPING_END_TOKEN",
	BLOCK_ENTRY_TOKEN:          "BLOCK_ENTRY_TOKEN",
	FLOW_ENTRY_TOKEN:           "FLOW_ENTRY_TOKEN",
	KEY_TOKEN:                  "KEY_TOKEN",
	VALUE_TOKEN:                "VALUE_TOKEN",
	ALIAS_TOKEN:                "ALIAS_TOKEN",
	ANCHOR_TOKEN:               "ANCHOR_TOKEN",
	TAG_TOKEN:                  "TAG_TOKEN",
	SCALAR_TOKEN:               "SCALAR_TOKEN",
	COMMENT_TOKEN:              "COMMENT_TOKEN",
}

func (tt TokenType) String() string {
	if s, ok := tokenTypeStrings[tt]; ok {
		return s
	}
	return "<unknown token>"
}

// Token is one scanner output unit. The unexported fields carry
// type-specific payloads (tag suffix, directive values, encoding).
type Token struct {
	Type TokenType

	StartMark, EndMark Mark

	// encoding rides on STREAM-START.
	encoding Encoding

	// Value holds the alias/anchor/scalar text, or the tag/directive
	// handle.
	Value []byte

	// suffix rides on TAG tokens.
	suffix []byte

	// prefix rides on TAG-DIRECTIVE tokens.
	prefix []byte

	// Style rides on SCALAR tokens.
	Style ScalarStyle

	// major/minor ride on VERSION-DIRECTIVE tokens.
	major, minor int8
}

// Events.

type EventType int8

const (
	// An empty event.
	NO_EVENT EventType = iota

	STREAM_START_EVENT   // A STREAM-START event.
	STREAM_END_EVENT     // A STREAM-END event.
	DOCUMENT_START_EVENT // A DOCUMENT-START event.
	DOCUMENT_END_EVENT   // A DOCUMENT-END event.
	ALIAS_EVENT          // An ALIAS event.
	SCALAR_EVENT         // A SCALAR event.
	SEQUENCE_START_EVENT // A SEQUENCE-START event.
	SEQUENCE_END_EVENT   // A SEQUENCE-END event.
	MAPPING_START_EVENT  // A MAPPING-START event.
	MAPPING_END_EVENT    // A MAPPING-END event.
	TAIL_COMMENT_EVENT
)

var eventStrings = []string{
	NO_EVENT:             "none",
	STREAM_START_EVENT:   "stream start",
	STREAM_END_EVENT:     "stream end",
	DOCUMENT_START_EVENT: "document start",
	DOCUMENT_END_EVENT:   "document end",
	ALIAS_EVENT:          "alias",
	SCALAR_EVENT:         "scalar",
	SEQUENCE_START_EVENT: "sequence start",
	SEQUENCE_END_EVENT:   "sequence end",
	MAPPING_START_EVENT:  "mapping start",
	MAPPING_END_EVENT:    "mapping end",
	TAIL_COMMENT_EVENT:   "tail comment",
}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventStrings) {
		return fmt.Sprintf("unknown event %d", e)
	}
	return eventStrings[e]
}

// Event is the boundary unit between the parser and composer/emitter
// halves of the pipeline.
type Event struct {
	Type EventType

	StartMark, EndMark Mark

	// encoding rides on STREAM-START.
	encoding Encoding

	// version_directive/tag_directives ride on DOCUMENT-START.
	version_directive *VersionDirective
	tag_directives    []TagDirective

	HeadComment []byte
	LineComment []byte
	FootComment []byte
	TailComment []byte

	// Anchor rides on SCALAR/SEQUENCE-START/MAPPING-START/ALIAS.
	Anchor []byte

	// Tag rides on SCALAR/SEQUENCE-START/MAPPING-START.
	Tag []byte

	// Value rides on SCALAR.
	Value []byte

	// Implicit reports an omittable document marker, or (for scalars
	// and collections) an omittable tag.
	Implicit bool

	// quoted_implicit reports an omittable tag for a non-plain scalar.
	quoted_implicit bool

	// Style rides on SCALAR/SEQUENCE-START/MAPPING-START.
	Style Style
}

func (e *Event) ScalarStyle() ScalarStyle     { return ScalarStyle(e.Style) }
func (e *Event) SequenceStyle() SequenceStyle { return SequenceStyle(e.Style) }
func (e *Event) MappingStyle() MappingStyle   { return MappingStyle(e.Style) }

// GetEncoding returns the stream encoding (for STREAM_START_EVENT).
func (e *Event) GetEncoding() Encoding { return e.encoding }

// GetVersionDirective returns the version directive (for DOCUMENT_START_EVENT).
func (e *Event) GetVersionDirective() *VersionDirective { return e.version_directive }

// GetTagDirectives returns the tag directives (for DOCUMENT_START_EVENT).
func (e *Event) GetTagDirectives() []TagDirective { return e.tag_directives }

// The YAML 1.1 schema tags in wire form.

const (
	NULL_TAG      = "tag:yaml.org,2002:null"      // The tag !!null with the only possible value: null.
	BOOL_TAG      = "tag:yaml.org,2002:bool"      // The tag !!bool with the values: true and false.
	STR_TAG       = "tag:yaml.org,2002:str"       // The tag !!str for string values.
	INT_TAG       = "tag:yaml.org,2002:int"       // The tag !!int for integer values.
	FLOAT_TAG     = "tag:yaml.org,2002:float"     // The tag !!float for float values.
	TIMESTAMP_TAG = "tag:yaml.org,2002:timestamp" // The tag !!timestamp for date and time values.

	SEQ_TAG = "tag:yaml.org,2002:seq" // The tag !!seq is used to denote sequences.
	MAP_TAG = "tag:yaml.org,2002:map" // The tag !!map is used to denote mapping.

	// Not in original libyaml.
	BINARY_TAG = "tag:yaml.org,2002:binary"
	MERGE_TAG  = "tag:yaml.org,2002:merge"

	DEFAULT_SCALAR_TAG   = STR_TAG // The default scalar tag is !!str.
	DEFAULT_SEQUENCE_TAG = SEQ_TAG // The default sequence tag is !!seq.
	DEFAULT_MAPPING_TAG  = MAP_TAG // The default mapping tag is !!map.
)
