//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package libyaml

import (
	"bytes"
	"io"
)

// Parser stage: an LL state machine over the scanner's token stream,
// implementing the YAML 1.1 grammar:
//
// stream               ::= STREAM-START implicit_document? explicit_document* STREAM-END
// implicit_document    ::= block_node DOCUMENT-END*
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
// block_node_or_indentless_sequence    ::=
//                          ALIAS
//                          | properties (block_content | indentless_block_sequence)?
//                          | block_content
//                          | indentless_block_sequence
// block_node           ::= ALIAS
//                          | properties block_content?
//                          | block_content
// flow_node            ::= ALIAS
//                          | properties flow_content?
//                          | flow_content
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
// block_content        ::= block_collection | flow_collection | SCALAR
// flow_content         ::= flow_collection | SCALAR
// block_collection     ::= block_sequence | block_mapping
// flow_collection      ::= flow_sequence | flow_mapping
// block_sequence       ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
// block_mapping        ::= BLOCK-MAPPING_START
//                          ((KEY block_node_or_indentless_sequence?)?
//                          (VALUE block_node_or_indentless_sequence?)?)*
//                          BLOCK-END
// flow_sequence        ::= FLOW-SEQUENCE-START
//                          (flow_sequence_entry FLOW-ENTRY)*
//                          flow_sequence_entry?
//                          FLOW-SEQUENCE-END
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
// flow_mapping         ::= FLOW-MAPPING-START
//                          (flow_mapping_entry FLOW-ENTRY)*
//                          flow_mapping_entry?
//                          FLOW-MAPPING-END
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?

// peekToken fills out with the front of the token queue, fetching more
// tokens from the scanner as needed and folding any comments that belong
// before the token.
func (parser *Parser) peekToken(out **Token) error {
	if !parser.token_available {
		if err := parser.fetchMoreTokens(); err != nil {
			return err
		}
	}
	token := &parser.tokens[parser.tokens_head]
	parser.unfoldComments(token)
	*out = token
	return nil
}

// peek is peekToken in return-value form; the state functions below all
// go through it.
func (parser *Parser) peek() (*Token, error) {
	var token *Token
	if err := parser.peekToken(&token); err != nil {
		return nil, err
	}
	return token, nil
}

// unfoldComments drains every queued comment positioned before token into
// the parser's pending head/line/foot slices, joining multiple comments
// of one kind with newlines.
func (parser *Parser) unfoldComments(token *Token) {
	for parser.comments_head < len(parser.comments) && token.StartMark.Index >= parser.comments[parser.comments_head].token_mark.Index {
		comment := &parser.comments[parser.comments_head]
		if len(comment.head) > 0 {
			if token.Type == BLOCK_END_TOKEN {
				// A block end takes no head comment; leave it queued for
				// the token after.
				break
			}
			if len(parser.head_comment) > 0 {
				parser.head_comment = append(parser.head_comment, '\n')
			}
			parser.head_comment = append(parser.head_comment, comment.head...)
		}
		if len(comment.foot) > 0 {
			if len(parser.foot_comment) > 0 {
				parser.foot_comment = append(parser.foot_comment, '\n')
			}
			parser.foot_comment = append(parser.foot_comment, comment.foot...)
		}
		if len(comment.line) > 0 {
			if len(parser.line_comment) > 0 {
				parser.line_comment = append(parser.line_comment, '\n')
			}
			parser.line_comment = append(parser.line_comment, comment.line...)
		}
		*comment = Comment{}
		parser.comments_head++
	}
}

// skipToken consumes the token peekToken returned.
func (parser *Parser) skipToken() {
	parser.token_available = false
	parser.tokens_parsed++
	parser.stream_end_produced = parser.tokens[parser.tokens_head].Type == STREAM_END_TOKEN
	parser.tokens_head++
}

// popState resumes the state saved by the most recent push.
func (parser *Parser) popState() {
	parser.state = parser.states[len(parser.states)-1]
	parser.states = parser.states[:len(parser.states)-1]
}

// popMark drops and returns the most recent collection start mark.
func (parser *Parser) popMark() Mark {
	mark := parser.marks[len(parser.marks)-1]
	parser.marks = parser.marks[:len(parser.marks)-1]
	return mark
}

// Parse produces the next event, or io.EOF past the end of the stream.
// The first error is sticky: every later call reports io.EOF.
func (parser *Parser) Parse(event *Event) error {
	*event = Event{}
	if parser.stream_end_produced || parser.hadError || parser.state == PARSE_END_STATE {
		return io.EOF
	}
	if err := parser.stateMachine(event); err != nil {
		parser.hadError = true
		return err
	}
	return nil
}

func (parser *Parser) setParserError(problem string, problem_mark Mark) error {
	if len(problem) == 0 {
		problem = "unknown problem parsing YAML content"
	}
	return &ParserError{Mark: problem_mark, Message: problem, SourceName: parser.source_name}
}

func (parser *Parser) setParserErrorContext(context string, context_mark Mark, problem string, problem_mark Mark) error {
	if len(problem) == 0 {
		problem = "unknown problem parsing YAML content"
	}
	return &ParserError{
		ContextMessage: context,
		ContextMark:    context_mark,
		Mark:           problem_mark,
		Message:        problem,
		SourceName:     parser.source_name,
	}
}

// parserStateTable maps each parser state to its handler; the flag-taking
// handlers are bound through small adapters.
var parserStateTable = map[ParserState]func(*Parser, *Event) error{
	PARSE_STREAM_START_STATE: (*Parser).parseStreamStart,
	PARSE_IMPLICIT_DOCUMENT_START_STATE: func(p *Parser, e *Event) error {
		return p.parseDocumentStart(e, true)
	},
	PARSE_DOCUMENT_START_STATE: func(p *Parser, e *Event) error {
		return p.parseDocumentStart(e, false)
	},
	PARSE_DOCUMENT_CONTENT_STATE: (*Parser).parseDocumentContent,
	PARSE_DOCUMENT_END_STATE:     (*Parser).parseDocumentEnd,
	PARSE_BLOCK_NODE_STATE: func(p *Parser, e *Event) error {
		return p.parseNode(e, true, false)
	},
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE: func(p *Parser, e *Event) error {
		return p.parseNode(e, true, true)
	},
	PARSE_FLOW_NODE_STATE: func(p *Parser, e *Event) error {
		return p.parseNode(e, false, false)
	},
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE: func(p *Parser, e *Event) error {
		return p.parseBlockSequenceEntry(e, true)
	},
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE: func(p *Parser, e *Event) error {
		return p.parseBlockSequenceEntry(e, false)
	},
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE: (*Parser).parseIndentlessSequenceEntry,
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE: func(p *Parser, e *Event) error {
		return p.parseBlockMappingKey(e, true)
	},
	PARSE_BLOCK_MAPPING_KEY_STATE: func(p *Parser, e *Event) error {
		return p.parseBlockMappingKey(e, false)
	},
	PARSE_BLOCK_MAPPING_VALUE_STATE: (*Parser).parseBlockMappingValue,
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowSequenceEntry(e, true)
	},
	PARSE_FLOW_SEQUENCE_ENTRY_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowSequenceEntry(e, false)
	},
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:   (*Parser).parseFlowSequenceEntryMappingKey,
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE: (*Parser).parseFlowSequenceEntryMappingValue,
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:   (*Parser).parseFlowSequenceEntryMappingEnd,
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowMappingKey(e, true)
	},
	PARSE_FLOW_MAPPING_KEY_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowMappingKey(e, false)
	},
	PARSE_FLOW_MAPPING_VALUE_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowMappingValue(e, false)
	},
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE: func(p *Parser, e *Event) error {
		return p.parseFlowMappingValue(e, true)
	},
}

func (parser *Parser) stateMachine(event *Event) error {
	fn, ok := parserStateTable[parser.state]
	if !ok {
		panic("invalid parser state")
	}
	return fn(parser, event)
}

// parseStreamStart handles:
// stream ::= STREAM-START implicit_document? explicit_document* STREAM-END
func (parser *Parser) parseStreamStart(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	if token.Type != STREAM_START_TOKEN {
		return parser.setParserError("did not find expected <stream-start>", token.StartMark)
	}
	parser.state = PARSE_IMPLICIT_DOCUMENT_START_STATE
	*event = Event{
		Type:      STREAM_START_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
		encoding:  token.encoding,
	}
	parser.skipToken()
	return nil
}

// splitDocumentHeadComment breaks a pending head comment at its last
// blank line: the part above becomes the document's head comment, the
// rest stays pending for the following event.
func (parser *Parser) splitDocumentHeadComment() []byte {
	head := parser.head_comment
	if len(head) == 0 {
		return nil
	}
	for i := len(head) - 1; i > 0; i-- {
		if head[i] != '\n' {
			continue
		}
		if i == len(head)-1 {
			parser.head_comment = head[i+1:]
			return head[:i]
		}
		if head[i-1] == '\n' {
			parser.head_comment = head[i+1:]
			return head[:i-1]
		}
	}
	return nil
}

// parseDocumentStart handles:
// implicit_document ::= block_node DOCUMENT-END*
// explicit_document ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
func (parser *Parser) parseDocumentStart(event *Event, implicit bool) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}

	if !implicit {
		// Skip extra "..." markers.
		for token.Type == DOCUMENT_END_TOKEN {
			parser.skipToken()
			if token, err = parser.peek(); err != nil {
				return err
			}
		}
	}

	switch {
	case implicit && token.Type != VERSION_DIRECTIVE_TOKEN &&
		token.Type != TAG_DIRECTIVE_TOKEN &&
		token.Type != DOCUMENT_START_TOKEN &&
		token.Type != STREAM_END_TOKEN:
		// Implicit document.
		if err := parser.processDirectives(nil, nil); err != nil {
			return err
		}
		parser.states = append(parser.states, PARSE_DOCUMENT_END_STATE)
		parser.state = PARSE_BLOCK_NODE_STATE
		*event = Event{
			Type:        DOCUMENT_START_EVENT,
			StartMark:   token.StartMark,
			EndMark:     token.EndMark,
			HeadComment: parser.splitDocumentHeadComment(),
		}

	case token.Type != STREAM_END_TOKEN:
		// Explicit document.
		var version_directive *VersionDirective
		var tag_directives []TagDirective
		start_mark := token.StartMark
		if err := parser.processDirectives(&version_directive, &tag_directives); err != nil {
			return err
		}
		if token, err = parser.peek(); err != nil {
			return err
		}
		if token.Type != DOCUMENT_START_TOKEN {
			return parser.setParserError("did not find expected <document start>", token.StartMark)
		}
		parser.states = append(parser.states, PARSE_DOCUMENT_END_STATE)
		parser.state = PARSE_DOCUMENT_CONTENT_STATE
		*event = Event{
			Type:              DOCUMENT_START_EVENT,
			StartMark:         start_mark,
			EndMark:           token.EndMark,
			version_directive: version_directive,
			tag_directives:    tag_directives,
			Implicit:          false,
		}
		parser.skipToken()

	default:
		// End of the stream.
		parser.state = PARSE_END_STATE
		*event = Event{
			Type:      STREAM_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
		}
		parser.skipToken()
	}
	return nil
}

// parseDocumentContent handles the block_node? inside an explicit
// document, producing an empty scalar when the document has none.
func (parser *Parser) parseDocumentContent(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	switch token.Type {
	case VERSION_DIRECTIVE_TOKEN, TAG_DIRECTIVE_TOKEN,
		DOCUMENT_START_TOKEN, DOCUMENT_END_TOKEN, STREAM_END_TOKEN:
		parser.popState()
		return parser.processEmptyScalar(event, token.StartMark)
	}
	return parser.parseNode(event, true, false)
}

// parseDocumentEnd closes the current document, resetting the
// document-scoped tag directive table.
func (parser *Parser) parseDocumentEnd(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}

	start_mark := token.StartMark
	end_mark := token.StartMark
	implicit := true
	if token.Type == DOCUMENT_END_TOKEN {
		end_mark = token.EndMark
		parser.skipToken()
		implicit = false
	}

	parser.tag_directives = parser.tag_directives[:0]

	parser.state = PARSE_DOCUMENT_START_STATE
	*event = Event{
		Type:      DOCUMENT_END_EVENT,
		StartMark: start_mark,
		EndMark:   end_mark,
		Implicit:  implicit,
	}
	parser.setEventComments(event)
	if len(event.HeadComment) > 0 && len(event.FootComment) == 0 {
		event.FootComment = event.HeadComment
		event.HeadComment = nil
	}
	return nil
}

// setEventComments moves the pending comments onto event and clears
// every pending slot.
func (parser *Parser) setEventComments(event *Event) {
	event.HeadComment = parser.head_comment
	event.LineComment = parser.line_comment
	event.FootComment = parser.foot_comment
	parser.head_comment = nil
	parser.line_comment = nil
	parser.foot_comment = nil
	parser.tail_comment = nil
	parser.stem_comment = nil
}

// nodeProperties collects the ANCHOR/TAG pair (in either order) that may
// precede a node's content.
type nodeProperties struct {
	anchor     []byte
	tagPresent bool
	tagHandle  []byte
	tagSuffix  []byte
	tagMark    Mark
	startMark  Mark
	endMark    Mark
}

// parseNodeProperties consumes a leading anchor and/or tag, leaving the
// content token peeked. token must be the currently peeked token and the
// returned token is the one after the properties.
func (parser *Parser) parseNodeProperties(token *Token) (*Token, nodeProperties, error) {
	props := nodeProperties{startMark: token.StartMark, endMark: token.StartMark}
	var err error

	readTag := func() error {
		props.tagPresent = true
		props.tagHandle = token.Value
		props.tagSuffix = token.suffix
		props.tagMark = token.StartMark
		props.endMark = token.EndMark
		parser.skipToken()
		token, err = parser.peek()
		return err
	}
	readAnchor := func() error {
		props.anchor = token.Value
		props.endMark = token.EndMark
		parser.skipToken()
		token, err = parser.peek()
		return err
	}

	switch token.Type {
	case ANCHOR_TOKEN:
		if err := readAnchor(); err != nil {
			return nil, props, err
		}
		if token.Type == TAG_TOKEN {
			if err := readTag(); err != nil {
				return nil, props, err
			}
		}
	case TAG_TOKEN:
		props.startMark = token.StartMark
		if err := readTag(); err != nil {
			return nil, props, err
		}
		if token.Type == ANCHOR_TOKEN {
			if err := readAnchor(); err != nil {
				return nil, props, err
			}
		}
	}
	return token, props, nil
}

// resolveTag expands a tag token's handle through the active %TAG table.
func (parser *Parser) resolveTag(props *nodeProperties) ([]byte, error) {
	if !props.tagPresent {
		return nil, nil
	}
	if len(props.tagHandle) == 0 {
		return props.tagSuffix, nil
	}
	for i := range parser.tag_directives {
		if bytes.Equal(parser.tag_directives[i].handle, props.tagHandle) {
			tag := append([]byte(nil), parser.tag_directives[i].prefix...)
			return append(tag, props.tagSuffix...), nil
		}
	}
	return nil, parser.setParserErrorContext(
		"while parsing a node", props.startMark,
		"found undefined tag handle", props.tagMark)
}

// parseNode handles block_node, flow_node, and
// block_node_or_indentless_sequence: aliases, node properties, and the
// dispatch into scalars and collections.
func (parser *Parser) parseNode(event *Event, block, indentless_sequence bool) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}

	if token.Type == ALIAS_TOKEN {
		parser.popState()
		*event = Event{
			Type:      ALIAS_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
			Anchor:    token.Value,
		}
		parser.setEventComments(event)
		parser.skipToken()
		return nil
	}

	token, props, err := parser.parseNodeProperties(token)
	if err != nil {
		return err
	}
	tag, err := parser.resolveTag(&props)
	if err != nil {
		return err
	}

	start_mark, end_mark, anchor := props.startMark, props.endMark, props.anchor
	implicit := len(tag) == 0

	collection := func(typ EventType, style Style, state ParserState) Event {
		parser.state = state
		return Event{
			Type:      typ,
			StartMark: start_mark,
			EndMark:   token.EndMark,
			Anchor:    anchor,
			Tag:       tag,
			Implicit:  implicit,
			Style:     style,
		}
	}

	switch {
	case indentless_sequence && token.Type == BLOCK_ENTRY_TOKEN:
		*event = collection(SEQUENCE_START_EVENT, Style(BLOCK_SEQUENCE_STYLE), PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE)
		return nil

	case token.Type == SCALAR_TOKEN:
		var plain_implicit, quoted_implicit bool
		if (len(tag) == 0 && token.Style == PLAIN_SCALAR_STYLE) || (len(tag) == 1 && tag[0] == '!') {
			plain_implicit = true
		} else if len(tag) == 0 {
			quoted_implicit = true
		}
		parser.popState()
		*event = Event{
			Type:            SCALAR_EVENT,
			StartMark:       start_mark,
			EndMark:         token.EndMark,
			Anchor:          anchor,
			Tag:             tag,
			Value:           token.Value,
			Implicit:        plain_implicit,
			quoted_implicit: quoted_implicit,
			Style:           Style(token.Style),
		}
		parser.setEventComments(event)
		parser.skipToken()
		return nil

	case token.Type == FLOW_SEQUENCE_START_TOKEN:
		*event = collection(SEQUENCE_START_EVENT, Style(FLOW_SEQUENCE_STYLE), PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE)
		parser.setEventComments(event)
		return nil

	case token.Type == FLOW_MAPPING_START_TOKEN:
		*event = collection(MAPPING_START_EVENT, Style(FLOW_MAPPING_STYLE), PARSE_FLOW_MAPPING_FIRST_KEY_STATE)
		parser.setEventComments(event)
		return nil

	case block && token.Type == BLOCK_SEQUENCE_START_TOKEN:
		*event = collection(SEQUENCE_START_EVENT, Style(BLOCK_SEQUENCE_STYLE), PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE)
		if parser.stem_comment != nil {
			event.HeadComment = parser.stem_comment
			parser.stem_comment = nil
		}
		return nil

	case block && token.Type == BLOCK_MAPPING_START_TOKEN:
		*event = collection(MAPPING_START_EVENT, Style(BLOCK_MAPPING_STYLE), PARSE_BLOCK_MAPPING_FIRST_KEY_STATE)
		if parser.stem_comment != nil {
			event.HeadComment = parser.stem_comment
			parser.stem_comment = nil
		}
		return nil

	case len(anchor) > 0 || len(tag) > 0:
		// Properties with no content: an empty plain scalar.
		parser.popState()
		*event = Event{
			Type:      SCALAR_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:    anchor,
			Tag:       tag,
			Implicit:  implicit,
			Style:     Style(PLAIN_SCALAR_STYLE),
		}
		return nil
	}

	context := "while parsing a flow node"
	if block {
		context = "while parsing a block node"
	}
	return parser.setParserErrorContext(context, start_mark,
		"did not find expected node content", token.StartMark)
}

// parseBlockSequenceEntry handles:
// block_sequence ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
func (parser *Parser) parseBlockSequenceEntry(event *Event, first bool) error {
	if first {
		token, err := parser.peek()
		if err != nil {
			return err
		}
		parser.marks = append(parser.marks, token.StartMark)
		parser.skipToken()
	}

	token, err := parser.peek()
	if err != nil {
		return err
	}

	switch token.Type {
	case BLOCK_ENTRY_TOKEN:
		mark := token.EndMark
		prior_head_len := len(parser.head_comment)
		parser.skipToken()
		parser.splitStemComment(prior_head_len)
		if token, err = parser.peek(); err != nil {
			return err
		}
		if token.Type == BLOCK_ENTRY_TOKEN || token.Type == BLOCK_END_TOKEN {
			parser.state = PARSE_BLOCK_SEQUENCE_ENTRY_STATE
			return parser.processEmptyScalar(event, mark)
		}
		parser.states = append(parser.states, PARSE_BLOCK_SEQUENCE_ENTRY_STATE)
		return parser.parseNode(event, true, false)

	case BLOCK_END_TOKEN:
		parser.popState()
		parser.popMark()
		*event = Event{
			Type:      SEQUENCE_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
		}
		parser.skipToken()
		return nil
	}

	return parser.setParserErrorContext(
		"while parsing a block collection", parser.popMark(),
		"did not find expected '-' indicator", token.StartMark)
}

// parseIndentlessSequenceEntry handles:
// indentless_sequence ::= (BLOCK-ENTRY block_node?)+
func (parser *Parser) parseIndentlessSequenceEntry(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}

	if token.Type != BLOCK_ENTRY_TOKEN {
		parser.popState()
		*event = Event{
			Type:      SEQUENCE_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.StartMark,
		}
		return nil
	}

	mark := token.EndMark
	prior_head_len := len(parser.head_comment)
	parser.skipToken()
	parser.splitStemComment(prior_head_len)
	if token, err = parser.peek(); err != nil {
		return err
	}
	switch token.Type {
	case BLOCK_ENTRY_TOKEN, KEY_TOKEN, VALUE_TOKEN, BLOCK_END_TOKEN:
		parser.state = PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
		return parser.processEmptyScalar(event, mark)
	}
	parser.states = append(parser.states, PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE)
	return parser.parseNode(event, true, false)
}

// splitStemComment handles the head comment that precedes a "-" entry
// whose value is itself a collection: that comment belongs to the nested
// collection as a whole, so it moves aside as the stem comment before
// the entry's own comments accumulate.
func (parser *Parser) splitStemComment(stem_len int) error {
	if stem_len == 0 {
		return nil
	}

	token, err := parser.peek()
	if err != nil {
		return err
	}
	if token.Type != BLOCK_SEQUENCE_START_TOKEN && token.Type != BLOCK_MAPPING_START_TOKEN {
		return nil
	}

	parser.stem_comment = parser.head_comment[:stem_len]
	if len(parser.head_comment) == stem_len {
		parser.head_comment = nil
	} else {
		// Copy the tail: the stem slice above shares the array, and an
		// append to it must not clobber these bytes.
		parser.head_comment = append([]byte(nil), parser.head_comment[stem_len+1:]...)
	}
	return nil
}

// parseBlockMappingKey handles the KEY half of:
// block_mapping ::= BLOCK-MAPPING-START
//
//	((KEY block_node_or_indentless_sequence?)?
//	(VALUE block_node_or_indentless_sequence?)?)*
//	BLOCK-END
func (parser *Parser) parseBlockMappingKey(event *Event, first bool) error {
	if first {
		token, err := parser.peek()
		if err != nil {
			return err
		}
		parser.marks = append(parser.marks, token.StartMark)
		parser.skipToken()
	}

	token, err := parser.peek()
	if err != nil {
		return err
	}

	// A tail comment left over from the prior value must ride its own
	// event; it belongs to that value, not the coming key.
	if len(parser.tail_comment) > 0 {
		*event = Event{
			Type:        TAIL_COMMENT_EVENT,
			StartMark:   token.StartMark,
			EndMark:     token.EndMark,
			FootComment: parser.tail_comment,
		}
		parser.tail_comment = nil
		return nil
	}

	switch token.Type {
	case KEY_TOKEN:
		mark := token.EndMark
		parser.skipToken()
		if token, err = parser.peek(); err != nil {
			return err
		}
		switch token.Type {
		case KEY_TOKEN, VALUE_TOKEN, BLOCK_END_TOKEN:
			parser.state = PARSE_BLOCK_MAPPING_VALUE_STATE
			return parser.processEmptyScalar(event, mark)
		}
		parser.states = append(parser.states, PARSE_BLOCK_MAPPING_VALUE_STATE)
		return parser.parseNode(event, true, true)

	case BLOCK_END_TOKEN:
		parser.popState()
		parser.popMark()
		*event = Event{
			Type:      MAPPING_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
		}
		parser.setEventComments(event)
		parser.skipToken()
		return nil
	}

	return parser.setParserErrorContext(
		"while parsing a block mapping", parser.popMark(),
		"did not find expected key", token.StartMark)
}

// parseBlockMappingValue handles the VALUE half of a block mapping
// entry, producing an empty scalar for a missing value.
func (parser *Parser) parseBlockMappingValue(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	if token.Type != VALUE_TOKEN {
		parser.state = PARSE_BLOCK_MAPPING_KEY_STATE
		return parser.processEmptyScalar(event, token.StartMark)
	}

	mark := token.EndMark
	parser.skipToken()
	if token, err = parser.peek(); err != nil {
		return err
	}
	switch token.Type {
	case KEY_TOKEN, VALUE_TOKEN, BLOCK_END_TOKEN:
		parser.state = PARSE_BLOCK_MAPPING_KEY_STATE
		return parser.processEmptyScalar(event, mark)
	}
	parser.states = append(parser.states, PARSE_BLOCK_MAPPING_KEY_STATE)
	return parser.parseNode(event, true, true)
}

// parseFlowSequenceEntry handles:
// flow_sequence ::= FLOW-SEQUENCE-START
//
//	(flow_sequence_entry FLOW-ENTRY)* flow_sequence_entry?
//	FLOW-SEQUENCE-END
//
// where an entry may open an implicit single-pair mapping via KEY.
func (parser *Parser) parseFlowSequenceEntry(event *Event, first bool) error {
	if first {
		token, err := parser.peek()
		if err != nil {
			return err
		}
		parser.marks = append(parser.marks, token.StartMark)
		parser.skipToken()
	}

	token, err := parser.peek()
	if err != nil {
		return err
	}

	if token.Type != FLOW_SEQUENCE_END_TOKEN {
		if !first {
			if token.Type != FLOW_ENTRY_TOKEN {
				return parser.setParserErrorContext(
					"while parsing a flow sequence", parser.popMark(),
					"did not find expected ',' or ']'", token.StartMark)
			}
			parser.skipToken()
			if token, err = parser.peek(); err != nil {
				return err
			}
		}

		if token.Type == KEY_TOKEN {
			parser.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE
			*event = Event{
				Type:      MAPPING_START_EVENT,
				StartMark: token.StartMark,
				EndMark:   token.EndMark,
				Implicit:  true,
				Style:     Style(FLOW_MAPPING_STYLE),
			}
			parser.skipToken()
			return nil
		}
		if token.Type != FLOW_SEQUENCE_END_TOKEN {
			parser.states = append(parser.states, PARSE_FLOW_SEQUENCE_ENTRY_STATE)
			return parser.parseNode(event, false, false)
		}
	}

	parser.popState()
	parser.popMark()
	*event = Event{
		Type:      SEQUENCE_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
	}
	parser.setEventComments(event)
	parser.skipToken()
	return nil
}

// parseFlowSequenceEntryMappingKey handles the KEY of an implicit
// single-pair mapping inside a flow sequence.
func (parser *Parser) parseFlowSequenceEntryMappingKey(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	switch token.Type {
	case VALUE_TOKEN, FLOW_ENTRY_TOKEN, FLOW_SEQUENCE_END_TOKEN:
		mark := token.EndMark
		parser.skipToken()
		parser.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE
		return parser.processEmptyScalar(event, mark)
	}
	parser.states = append(parser.states, PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE)
	return parser.parseNode(event, false, false)
}

// parseFlowSequenceEntryMappingValue handles that pair's VALUE.
func (parser *Parser) parseFlowSequenceEntryMappingValue(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	if token.Type == VALUE_TOKEN {
		parser.skipToken()
		next, err := parser.peek()
		if err != nil {
			return err
		}
		if next.Type != FLOW_ENTRY_TOKEN && next.Type != FLOW_SEQUENCE_END_TOKEN {
			parser.states = append(parser.states, PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE)
			return parser.parseNode(event, false, false)
		}
	}
	parser.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE
	return parser.processEmptyScalar(event, token.StartMark)
}

// parseFlowSequenceEntryMappingEnd closes the implicit single-pair
// mapping.
func (parser *Parser) parseFlowSequenceEntryMappingEnd(event *Event) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	parser.state = PARSE_FLOW_SEQUENCE_ENTRY_STATE
	*event = Event{
		Type:      MAPPING_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.StartMark,
	}
	return nil
}

// parseFlowMappingKey handles:
// flow_mapping ::= FLOW-MAPPING-START
//
//	(flow_mapping_entry FLOW-ENTRY)* flow_mapping_entry?
//	FLOW-MAPPING-END
func (parser *Parser) parseFlowMappingKey(event *Event, first bool) error {
	if first {
		token, err := parser.peek()
		if err != nil {
			return err
		}
		parser.marks = append(parser.marks, token.StartMark)
		parser.skipToken()
	}

	token, err := parser.peek()
	if err != nil {
		return err
	}

	if token.Type != FLOW_MAPPING_END_TOKEN {
		if !first {
			if token.Type != FLOW_ENTRY_TOKEN {
				return parser.setParserErrorContext(
					"while parsing a flow mapping", parser.popMark(),
					"did not find expected ',' or '}'", token.StartMark)
			}
			parser.skipToken()
			if token, err = parser.peek(); err != nil {
				return err
			}
		}

		if token.Type == KEY_TOKEN {
			parser.skipToken()
			if token, err = parser.peek(); err != nil {
				return err
			}
			switch token.Type {
			case VALUE_TOKEN, FLOW_ENTRY_TOKEN, FLOW_MAPPING_END_TOKEN:
				parser.state = PARSE_FLOW_MAPPING_VALUE_STATE
				return parser.processEmptyScalar(event, token.StartMark)
			}
			parser.states = append(parser.states, PARSE_FLOW_MAPPING_VALUE_STATE)
			return parser.parseNode(event, false, false)
		}
		if token.Type != FLOW_MAPPING_END_TOKEN {
			parser.states = append(parser.states, PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE)
			return parser.parseNode(event, false, false)
		}
	}

	parser.popState()
	parser.popMark()
	*event = Event{
		Type:      MAPPING_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
	}
	parser.setEventComments(event)
	parser.skipToken()
	return nil
}

// parseFlowMappingValue handles a flow mapping entry's value; empty
// means the key had no ":" and the value is a synthesized empty scalar.
func (parser *Parser) parseFlowMappingValue(event *Event, empty bool) error {
	token, err := parser.peek()
	if err != nil {
		return err
	}
	if empty {
		parser.state = PARSE_FLOW_MAPPING_KEY_STATE
		return parser.processEmptyScalar(event, token.StartMark)
	}
	if token.Type == VALUE_TOKEN {
		parser.skipToken()
		next, err := parser.peek()
		if err != nil {
			return err
		}
		if next.Type != FLOW_ENTRY_TOKEN && next.Type != FLOW_MAPPING_END_TOKEN {
			parser.states = append(parser.states, PARSE_FLOW_MAPPING_KEY_STATE)
			return parser.parseNode(event, false, false)
		}
	}
	parser.state = PARSE_FLOW_MAPPING_KEY_STATE
	return parser.processEmptyScalar(event, token.StartMark)
}

// processEmptyScalar fills event with the zero-width plain scalar the
// grammar synthesizes for omitted keys and values.
func (parser *Parser) processEmptyScalar(event *Event, mark Mark) error {
	*event = Event{
		Type:      SCALAR_EVENT,
		StartMark: mark,
		EndMark:   mark,
		Value:     nil,
		Implicit:  true,
		Style:     Style(PLAIN_SCALAR_STYLE),
	}
	return nil
}

var default_tag_directives = []TagDirective{
	{[]byte("!"), []byte("!")},
	{[]byte("!!"), []byte("tag:yaml.org,2002:")},
}

// processDirectives consumes the %YAML/%TAG directives ahead of a
// document, installs them (plus the two defaults) into the
// document-scoped table, and optionally hands them back to the caller.
func (parser *Parser) processDirectives(version_directive_ref **VersionDirective, tag_directives_ref *[]TagDirective) error {
	var version_directive *VersionDirective
	var tag_directives []TagDirective

	token, err := parser.peek()
	if err != nil {
		return err
	}

	for token.Type == VERSION_DIRECTIVE_TOKEN || token.Type == TAG_DIRECTIVE_TOKEN {
		if token.Type == VERSION_DIRECTIVE_TOKEN {
			if version_directive != nil {
				return parser.setParserError(
					"found duplicate %YAML directive", token.StartMark)
			}
			if token.major != 1 || token.minor != 1 {
				return parser.setParserError(
					"found incompatible YAML document", token.StartMark)
			}
			version_directive = &VersionDirective{
				major: token.major,
				minor: token.minor,
			}
		} else {
			value := TagDirective{
				handle: token.Value,
				prefix: token.prefix,
			}
			if err := parser.appendTagDirective(value, false, token.StartMark); err != nil {
				return err
			}
			tag_directives = append(tag_directives, value)
		}

		parser.skipToken()
		if token, err = parser.peek(); err != nil {
			return err
		}
	}

	for i := range default_tag_directives {
		if err := parser.appendTagDirective(default_tag_directives[i], true, token.StartMark); err != nil {
			return err
		}
	}

	if version_directive_ref != nil {
		*version_directive_ref = version_directive
	}
	if tag_directives_ref != nil {
		*tag_directives_ref = tag_directives
	}
	return nil
}

// appendTagDirective installs one %TAG mapping, rejecting a repeated
// handle unless it is one of the defaults shadowed by the document.
func (parser *Parser) appendTagDirective(value TagDirective, allow_duplicates bool, mark Mark) error {
	for i := range parser.tag_directives {
		if bytes.Equal(value.handle, parser.tag_directives[i].handle) {
			if allow_duplicates {
				return nil
			}
			return parser.setParserError("found duplicate %TAG directive", mark)
		}
	}

	// Copy both halves: the token's backing bytes move under the queue.
	copied := TagDirective{
		handle: append([]byte(nil), value.handle...),
		prefix: append([]byte(nil), value.prefix...),
	}
	parser.tag_directives = append(parser.tag_directives, copied)
	return nil
}
