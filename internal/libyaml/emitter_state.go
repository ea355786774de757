// Copyright 2011-2019 Canonical Ltd
// Copyright 2006-2010 Kirill Simonov
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0 AND MIT

package libyaml

import "io"

const (
	output_buffer_size     = input_buffer_size
	output_raw_buffer_size = output_buffer_size*2 + 2
	initial_stack_size     = 16
	initial_queue_size     = 16
)

// ParserState names a state of the Parser's event state machine.
type ParserState int

const (
	PARSE_STREAM_START_STATE ParserState = iota

	PARSE_IMPLICIT_DOCUMENT_START_STATE
	PARSE_DOCUMENT_START_STATE
	PARSE_DOCUMENT_CONTENT_STATE
	PARSE_DOCUMENT_END_STATE
	PARSE_BLOCK_NODE_STATE
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE
	PARSE_FLOW_NODE_STATE
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE
	PARSE_BLOCK_MAPPING_KEY_STATE
	PARSE_BLOCK_MAPPING_VALUE_STATE
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE
	PARSE_FLOW_SEQUENCE_ENTRY_STATE
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE
	PARSE_FLOW_MAPPING_KEY_STATE
	PARSE_FLOW_MAPPING_VALUE_STATE
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE
	PARSE_END_STATE
)

var parserStateStrings = [...]string{
	PARSE_STREAM_START_STATE:                       "PARSE_STREAM_START_STATE",
	PARSE_IMPLICIT_DOCUMENT_START_STATE:             "PARSE_IMPLICIT_DOCUMENT_START_STATE",
	PARSE_DOCUMENT_START_STATE:                      "PARSE_DOCUMENT_START_STATE",
	PARSE_DOCUMENT_CONTENT_STATE:                    "PARSE_DOCUMENT_CONTENT_STATE",
	PARSE_DOCUMENT_END_STATE:                        "PARSE_DOCUMENT_END_STATE",
	PARSE_BLOCK_NODE_STATE:                          "PARSE_BLOCK_NODE_STATE",
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE:   "PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE",
	PARSE_FLOW_NODE_STATE:                           "PARSE_FLOW_NODE_STATE",
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE:          "PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE",
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE:                "PARSE_BLOCK_SEQUENCE_ENTRY_STATE",
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE:           "PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE",
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE:             "PARSE_BLOCK_MAPPING_FIRST_KEY_STATE",
	PARSE_BLOCK_MAPPING_KEY_STATE:                   "PARSE_BLOCK_MAPPING_KEY_STATE",
	PARSE_BLOCK_MAPPING_VALUE_STATE:                 "PARSE_BLOCK_MAPPING_VALUE_STATE",
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE:           "PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_STATE:                 "PARSE_FLOW_SEQUENCE_ENTRY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:     "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE:   "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:     "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE",
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE:              "PARSE_FLOW_MAPPING_FIRST_KEY_STATE",
	PARSE_FLOW_MAPPING_KEY_STATE:                    "PARSE_FLOW_MAPPING_KEY_STATE",
	PARSE_FLOW_MAPPING_VALUE_STATE:                  "PARSE_FLOW_MAPPING_VALUE_STATE",
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE:            "PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE",
	PARSE_END_STATE:                                 "PARSE_END_STATE",
}

func (ps ParserState) String() string {
	if int(ps) < 0 || int(ps) >= len(parserStateStrings) {
		return "unknown parser state"
	}
	return parserStateStrings[ps]
}

// EmitterState names a state of the Emitter's event state machine.
type EmitterState int

const (
	EMIT_STREAM_START_STATE EmitterState = iota

	EMIT_FIRST_DOCUMENT_START_STATE
	EMIT_DOCUMENT_START_STATE
	EMIT_DOCUMENT_CONTENT_STATE
	EMIT_DOCUMENT_END_STATE
	EMIT_FLOW_SEQUENCE_FIRST_ITEM_STATE
	EMIT_FLOW_SEQUENCE_TRAIL_ITEM_STATE
	EMIT_FLOW_SEQUENCE_ITEM_STATE
	EMIT_FLOW_MAPPING_FIRST_KEY_STATE
	EMIT_FLOW_MAPPING_TRAIL_KEY_STATE
	EMIT_FLOW_MAPPING_KEY_STATE
	EMIT_FLOW_MAPPING_SIMPLE_VALUE_STATE
	EMIT_FLOW_MAPPING_VALUE_STATE
	EMIT_BLOCK_SEQUENCE_FIRST_ITEM_STATE
	EMIT_BLOCK_SEQUENCE_ITEM_STATE
	EMIT_BLOCK_MAPPING_FIRST_KEY_STATE
	EMIT_BLOCK_MAPPING_KEY_STATE
	EMIT_BLOCK_MAPPING_SIMPLE_VALUE_STATE
	EMIT_BLOCK_MAPPING_VALUE_STATE
	EMIT_END_STATE
)

type yamlWriteHandler func(emitter *Emitter, buffer []byte) error

// Emitter holds the state of the dump-path pipeline: buffering/encoding on
// the way out, the event queue fed by the Serializer, and the anchor/tag/
// scalar analysis scratch space the state machine fills in per event.
type Emitter struct {
	// Error handling

	ErrorType ErrorType
	Problem   string

	// Writer stuff

	write_handler yamlWriteHandler

	output_buffer *[]byte
	output_writer io.Writer

	buffer     []byte
	buffer_pos int

	raw_buffer     []byte
	raw_buffer_pos int

	encoding Encoding

	// Emitter stuff

	canonical  bool
	BestIndent int
	best_width int
	unicode    bool
	line_break LineBreak

	state  EmitterState
	states []EmitterState

	events      []Event
	events_head int

	indents []int

	tag_directives []TagDirective

	indent int

	CompactSequenceIndent bool

	flow_level int

	root_context       bool
	sequence_context   bool
	mapping_context    bool
	simple_key_context bool

	line       int
	column     int
	whitespace bool
	indention  bool
	OpenEnded  bool

	space_above bool
	foot_indent int

	anchor_data struct {
		anchor []byte
		alias  bool
	}

	tag_data struct {
		handle []byte
		suffix []byte
	}

	scalar_data struct {
		value                 []byte
		multiline             bool
		flow_plain_allowed    bool
		block_plain_allowed   bool
		single_quoted_allowed bool
		block_allowed         bool
		style                 ScalarStyle
	}

	HeadComment []byte
	LineComment []byte
	FootComment []byte
	TailComment []byte

	key_line_comment []byte

	opened bool
	closed bool

	anchors *struct {
		references int
		anchor     int
		serialized bool
	}

	last_anchor_id int
}
