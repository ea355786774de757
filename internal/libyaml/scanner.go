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

// Scanner stage: turns the decoded character stream into tokens, tracking
// indentation, the simple-key machinery, and flow nesting, with one
// scanner per scalar style (plain, quoted, block).

package libyaml

import (
	"bytes"
	"fmt"
)

// Character classification over a buffer and index, so callers can probe
// lookahead bytes without slicing.

func isAlpha(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'Z' || b[i] >= 'a' && b[i] <= 'z' || b[i] == '_' || b[i] == '-'
}

func isDigit(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9'
}

func asDigit(b []byte, i int) int {
	return int(b[i]) - '0'
}

func isHex(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'F' || b[i] >= 'a' && b[i] <= 'f'
}

func asHex(b []byte, i int) int {
	c := b[i]
	switch {
	case c >= 'A' && c <= 'F':
		return int(c) - 'A' + 10
	case c >= 'a' && c <= 'f':
		return int(c) - 'a' + 10
	}
	return int(c) - '0'
}

func isASCII(b []byte, i int) bool {
	return b[i] <= 0x7F
}

// isPrintable reports whether the code point starting at b[i] may appear
// unescaped in the output.
func isPrintable(b []byte, i int) bool {
	return b[i] == 0x0A ||
		(b[i] >= 0x20 && b[i] <= 0x7E) ||
		(b[i] == 0xC2 && b[i+1] >= 0xA0) ||
		(b[i] > 0xC2 && b[i] < 0xED) ||
		(b[i] == 0xED && b[i+1] < 0xA0) ||
		(b[i] == 0xEE) ||
		(b[i] == 0xEF &&
			!(b[i+1] == 0xBB && b[i+2] == 0xBF) &&
			!(b[i+1] == 0xBF && (b[i+2] == 0xBE || b[i+2] == 0xBF)))
}

func isZeroChar(b []byte, i int) bool {
	return b[i] == 0x00
}

func isBOM(b []byte, i int) bool {
	return b[i] == 0xEF && b[i+1] == 0xBB && b[i+2] == 0xBF
}

func isSpace(b []byte, i int) bool {
	return b[i] == ' '
}

func isTab(b []byte, i int) bool {
	return b[i] == '\t'
}

func isBlank(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t'
}

func isLineBreak(b []byte, i int) bool {
	return b[i] == '\r' ||
		b[i] == '\n' ||
		b[i] == 0xC2 && b[i+1] == 0x85 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA8 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA9
}

func isCRLF(b []byte, i int) bool {
	return b[i] == '\r' && b[i+1] == '\n'
}

func isBreakOrZero(b []byte, i int) bool {
	return isLineBreak(b, i) || b[i] == 0
}

func isSpaceOrZero(b []byte, i int) bool {
	return b[i] == ' ' || isBreakOrZero(b, i)
}

func isBlankOrZero(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t' || isBreakOrZero(b, i)
}

func isFlowIndicator(b []byte, i int) bool {
	switch b[i] {
	case ',', '[', ']', '{', '}':
		return true
	}
	return false
}

// isAnchorChar reports whether b[i] may appear in an anchor or alias name:
// any printable character except blanks, flow indicators, and ':'.
func isAnchorChar(b []byte, i int) bool {
	return isPrintable(b, i) && !isBlankOrZero(b, i) && !isFlowIndicator(b, i) && b[i] != ':'
}

func isColon(b []byte, i int) bool {
	return b[i] == ':'
}

// isTagURIChar reports whether b[i] may appear in a tag URI. In verbatim
// (!<...>) tags, flow indicators are permitted since they are delimited by
// the '<'/'>' brackets instead of by the surrounding flow context.
func isTagURIChar(b []byte, i int, verbatim bool) bool {
	if isAlpha(b, i) {
		return true
	}
	switch b[i] {
	case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '.', '!', '~', '*', '\'', '(', ')', '%':
		return true
	case '[', ']':
		return verbatim
	}
	return false
}

// width returns the UTF-8 byte width indicated by a leading byte, or 0 if
// it cannot start a valid sequence.
func width(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}

const max_flow_level = 10000
const max_indents = 10000
const max_number_length = 2

// newScannerError builds a ScannerError anchored at the current mark,
// with a context message and the position where the offending construct
// began.
func newScannerError(parser *Parser, context string, context_mark Mark, problem string) error {
	return &ScannerError{ContextMessage: context, ContextMark: context_mark, Mark: parser.mark, Message: problem, SourceName: parser.source_name}
}

// ensure tops the decoded buffer up to at least n unread characters (or
// EOF); nearly every scan routine leans on it before peeking.
func (parser *Parser) ensure(n int) error {
	if parser.unread >= n {
		return nil
	}
	return parser.updateBuffer(n)
}

// peekByte returns the byte at the given lookahead distance from the
// cursor. The caller must have ensured enough unread characters.
func (parser *Parser) peekByte(off int) byte {
	return parser.buffer[parser.buffer_pos+off]
}

// Scan dequeues the next token, fetching more from the input as needed.
// It is the scanner's standalone entry point, used independently of the
// parser's event-level Parse.
func (parser *Parser) Scan(token *Token) error {
	if parser.stream_end_produced {
		*token = Token{Type: STREAM_END_TOKEN}
		return nil
	}
	var out *Token
	if err := parser.peekToken(&out); err != nil {
		return err
	}
	*token = *out
	parser.skipToken()
	return nil
}

// fetchMoreTokens keeps fetching until the queue's front token is settled:
// a pending simple key at the front means a later ':' may still splice a
// KEY token in ahead of it.
func (parser *Parser) fetchMoreTokens() error {
	for {
		// Comment association needs two tokens of lookahead so foot
		// comments can attach to already-fetched tokens.
		if parser.tokens_head < len(parser.tokens)-2 {
			head_tok_idx, pending := parser.simple_keys_by_tok[parser.tokens_parsed]
			if !pending {
				break
			}
			valid, err := yamlSimpleKeyIsValid(parser, &parser.simple_keys[head_tok_idx])
			if err != nil {
				return err
			}
			if !valid {
				break
			}
		}
		if err := parser.fetchNextToken(); err != nil {
			return err
		}
	}
	parser.token_available = true
	return nil
}

// canStartPlainScalar reports whether the byte at the cursor may open a
// plain scalar: any non-indicator, or '-'/'?'/':' when what follows makes
// them unambiguous.
func (parser *Parser) canStartPlainScalar() bool {
	buf := parser.buffer
	pos := parser.buffer_pos
	switch buf[pos] {
	case '-':
		return !isBlank(buf, pos+1)
	case '?', ':':
		return parser.flow_level == 0 && !isBlankOrZero(buf, pos+1)
	case ',', '[', ']', '{', '}', '#', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		return false
	}
	return !isBlankOrZero(buf, pos)
}

// fetchNextToken dispatches on the first character of the next token.
func (parser *Parser) fetchNextToken() (errOut error) {
	if err := parser.ensure(1); err != nil {
		return err
	}

	if !parser.stream_start_produced {
		parser.fetchStreamStart()
		return nil
	}

	scan_mark := parser.mark

	if err := parser.scanToNextToken(); err != nil {
		return err
	}

	parser.unrollIndent(parser.mark.Column, scan_mark)

	if err := parser.ensure(4); err != nil {
		return err
	}
	if isZeroChar(parser.buffer, parser.buffer_pos) {
		return parser.fetchStreamEnd()
	}

	if parser.mark.Column == 0 && parser.peekByte(0) == '%' {
		return parser.fetchDirective()
	}

	buf := parser.buffer
	pos := parser.buffer_pos

	if parser.mark.Column == 0 && isBlankOrZero(buf, pos+3) {
		if buf[pos] == '-' && buf[pos+1] == '-' && buf[pos+2] == '-' {
			return parser.fetchDocumentIndicator(DOCUMENT_START_TOKEN)
		}
		if buf[pos] == '.' && buf[pos+1] == '.' && buf[pos+2] == '.' {
			return parser.fetchDocumentIndicator(DOCUMENT_END_TOKEN)
		}
	}

	// A trailing line comment on this line belongs to the previous token
	// when the upcoming token is a ':' (or ',' in flow).
	comment_mark := parser.mark
	if len(parser.tokens) > 0 && (parser.flow_level == 0 && buf[pos] == ':' || parser.flow_level > 0 && buf[pos] == ',') {
		comment_mark = parser.tokens[len(parser.tokens)-1].StartMark
	}
	defer func() {
		if errOut != nil {
			return
		}
		if len(parser.tokens) > 0 && parser.tokens[len(parser.tokens)-1].Type == BLOCK_ENTRY_TOKEN {
			return
		}
		errOut = parser.scanLineComment(comment_mark)
	}()

	switch buf[pos] {
	case '[':
		return parser.fetchFlowCollectionStart(FLOW_SEQUENCE_START_TOKEN)
	case '{':
		return parser.fetchFlowCollectionStart(FLOW_MAPPING_START_TOKEN)
	case ']':
		return parser.fetchFlowCollectionEnd(FLOW_SEQUENCE_END_TOKEN)
	case '}':
		return parser.fetchFlowCollectionEnd(FLOW_MAPPING_END_TOKEN)
	case ',':
		return parser.fetchFlowEntry()
	case '-':
		if isBlankOrZero(buf, pos+1) {
			return parser.fetchBlockEntry()
		}
	case '?':
		if parser.flow_level > 0 || isBlankOrZero(buf, pos+1) {
			return parser.fetchKey()
		}
	case ':':
		if parser.flow_level > 0 || isBlankOrZero(buf, pos+1) {
			return parser.fetchValue()
		}
	case '*':
		return parser.fetchAnchor(ALIAS_TOKEN)
	case '&':
		return parser.fetchAnchor(ANCHOR_TOKEN)
	case '!':
		return parser.fetchTag()
	case '|':
		if parser.flow_level == 0 {
			return parser.fetchBlockScalar(true)
		}
	case '>':
		if parser.flow_level == 0 {
			return parser.fetchBlockScalar(false)
		}
	case '\'':
		return parser.fetchFlowScalar(true)
	case '"':
		return parser.fetchFlowScalar(false)
	}

	if parser.canStartPlainScalar() {
		return parser.fetchPlainScalar()
	}

	return newScannerError(parser, "while scanning for the next token", parser.mark, "found character that cannot start any token")
}

func yamlSimpleKeyIsValid(parser *Parser, simple_key *SimpleKey) (bool, error) {
	if !simple_key.possible {
		return false, nil
	}
	// A simple key must sit on one line and its ':' must appear within
	// 1024 characters of its start.
	if simple_key.mark.Line < parser.mark.Line || simple_key.mark.Index+1024 < parser.mark.Index {
		if simple_key.required {
			return false, newScannerError(parser, "while scanning a simple key", simple_key.mark, "could not find expected ':'")
		}
		simple_key.possible = false
		return false, nil
	}
	return true, nil
}

// saveSimpleKey records the current position as a simple-key candidate
// for the active flow level, replacing any stale one.
func (parser *Parser) saveSimpleKey() error {
	required := parser.flow_level == 0 && parser.indent == parser.mark.Column

	if !parser.simple_key_allowed {
		return nil
	}
	simple_key := SimpleKey{
		possible:     true,
		required:     required,
		token_number: parser.tokens_parsed + (len(parser.tokens) - parser.tokens_head),
		mark:         parser.mark,
	}
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_keys[len(parser.simple_keys)-1] = simple_key
	parser.simple_keys_by_tok[simple_key.token_number] = len(parser.simple_keys) - 1
	return nil
}

// removeSimpleKey clears the pending simple key at the current flow
// level, failing if one was required here.
func (parser *Parser) removeSimpleKey() error {
	i := len(parser.simple_keys) - 1
	if parser.simple_keys[i].possible {
		if parser.simple_keys[i].required {
			return newScannerError(parser, "while scanning a simple key", parser.simple_keys[i].mark, "could not find expected ':'")
		}
		parser.simple_keys[i].possible = false
		delete(parser.simple_keys_by_tok, parser.simple_keys[i].token_number)
	}
	return nil
}

func (parser *Parser) increaseFlowLevel() error {
	parser.simple_keys = append(parser.simple_keys, SimpleKey{
		token_number: parser.tokens_parsed + (len(parser.tokens) - parser.tokens_head),
		mark:         parser.mark,
	})
	parser.flow_level++
	if parser.flow_level > max_flow_level {
		return newScannerError(parser, "while increasing flow level", parser.simple_keys[len(parser.simple_keys)-1].mark, fmt.Sprintf("exceeded max depth of %d", max_flow_level))
	}
	return nil
}

func (parser *Parser) decreaseFlowLevel() {
	if parser.flow_level == 0 {
		return
	}
	parser.flow_level--
	last := len(parser.simple_keys) - 1
	delete(parser.simple_keys_by_tok, parser.simple_keys[last].token_number)
	parser.simple_keys = parser.simple_keys[:last]
}

// rollIndent opens a block collection when column grows past the current
// indent: the indent is pushed and a BLOCK-SEQUENCE-START or
// BLOCK-MAPPING-START token spliced in at number (or appended for -1).
// Flow context ignores indentation entirely.
func (parser *Parser) rollIndent(column, number int, typ TokenType, mark Mark) error {
	if parser.flow_level > 0 || parser.indent >= column {
		return nil
	}

	parser.indents = append(parser.indents, parser.indent)
	parser.indent = column
	if len(parser.indents) > max_indents {
		return newScannerError(parser, "while increasing indent level", parser.simple_keys[len(parser.simple_keys)-1].mark, fmt.Sprintf("exceeded max depth of %d", max_indents))
	}

	token := Token{Type: typ, StartMark: mark, EndMark: mark}
	if number > -1 {
		number -= parser.tokens_parsed
	}
	parser.insertToken(number, &token)
	return nil
}

// blockEndMark picks the position for a BLOCK-END token, walking back
// over foot comments that belong to the closing block so the end token
// lands before them.
func (parser *Parser) blockEndMark(block_mark Mark) Mark {
	stop_index := block_mark.Index
	for i := len(parser.comments) - 1; i >= 0; i-- {
		comment := &parser.comments[i]
		if comment.end_mark.Index < stop_index {
			break
		}
		if comment.start_mark.Column == parser.indent+1 {
			block_mark = comment.start_mark
		}
		stop_index = comment.scan_mark.Index
	}
	return block_mark
}

// unrollIndent closes block collections whose indent exceeds column,
// emitting one BLOCK-END per popped level. Flow context ignores
// indentation entirely.
func (parser *Parser) unrollIndent(column int, scan_mark Mark) {
	if parser.flow_level > 0 {
		return
	}

	block_mark := scan_mark
	block_mark.Index--

	for parser.indent > column {
		block_mark = parser.blockEndMark(block_mark)
		token := Token{Type: BLOCK_END_TOKEN, StartMark: block_mark, EndMark: block_mark}
		parser.insertToken(-1, &token)

		parser.indent = parser.indents[len(parser.indents)-1]
		parser.indents = parser.indents[:len(parser.indents)-1]
	}
}

// queueSpanToken consumes n characters and appends a token of the given
// type spanning them.
func (parser *Parser) queueSpanToken(typ TokenType, n int) {
	start_mark := parser.mark
	for ; n > 0; n-- {
		parser.skip()
	}
	token := Token{Type: typ, StartMark: start_mark, EndMark: parser.mark}
	parser.insertToken(-1, &token)
}

func (parser *Parser) fetchStreamStart() {
	parser.indent = -1
	parser.simple_keys = append(parser.simple_keys, SimpleKey{})
	parser.simple_keys_by_tok = make(map[int]int)
	parser.simple_key_allowed = true
	parser.stream_start_produced = true

	token := Token{
		Type:      STREAM_START_TOKEN,
		StartMark: parser.mark,
		EndMark:   parser.mark,
		encoding:  parser.encoding,
	}
	parser.insertToken(-1, &token)
}

func (parser *Parser) fetchStreamEnd() error {
	// The stream conceptually ends on a fresh line.
	if parser.mark.Column != 0 {
		parser.mark.Column = 0
		parser.mark.Line++
	}
	parser.unrollIndent(-1, parser.mark)
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token := Token{Type: STREAM_END_TOKEN, StartMark: parser.mark, EndMark: parser.mark}
	parser.insertToken(-1, &token)
	return nil
}

func (parser *Parser) fetchDirective() error {
	parser.unrollIndent(-1, parser.mark)
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token, err := parser.scanDirective()
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

func (parser *Parser) fetchDocumentIndicator(typ TokenType) error {
	parser.unrollIndent(-1, parser.mark)
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	parser.queueSpanToken(typ, 3)
	return nil
}

func (parser *Parser) fetchFlowCollectionStart(typ TokenType) error {
	if err := parser.saveSimpleKey(); err != nil {
		return err
	}
	if err := parser.increaseFlowLevel(); err != nil {
		return err
	}
	parser.simple_key_allowed = true

	parser.queueSpanToken(typ, 1)
	return nil
}

func (parser *Parser) fetchFlowCollectionEnd(typ TokenType) error {
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.decreaseFlowLevel()
	parser.simple_key_allowed = false

	parser.queueSpanToken(typ, 1)
	return nil
}

func (parser *Parser) fetchFlowEntry() error {
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = true

	parser.queueSpanToken(FLOW_ENTRY_TOKEN, 1)
	return nil
}

func (parser *Parser) fetchBlockEntry() error {
	if parser.flow_level == 0 {
		if !parser.simple_key_allowed {
			return newScannerError(parser, "", parser.mark, "block sequence entries are not allowed in this context")
		}
		if err := parser.rollIndent(parser.mark.Column, -1, BLOCK_SEQUENCE_START_TOKEN, parser.mark); err != nil {
			return err
		}
	}
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = true

	parser.queueSpanToken(BLOCK_ENTRY_TOKEN, 1)
	return nil
}

func (parser *Parser) fetchKey() error {
	if parser.flow_level == 0 {
		if !parser.simple_key_allowed {
			return newScannerError(parser, "", parser.mark, "mapping keys are not allowed in this context")
		}
		if err := parser.rollIndent(parser.mark.Column, -1, BLOCK_MAPPING_START_TOKEN, parser.mark); err != nil {
			return err
		}
	}
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = parser.flow_level == 0

	parser.queueSpanToken(KEY_TOKEN, 1)
	return nil
}

// fetchValue handles ':': when a simple key is pending, a KEY token is
// retroactively spliced in front of it; otherwise the ':' may itself open
// a block mapping.
func (parser *Parser) fetchValue() error {
	simple_key := &parser.simple_keys[len(parser.simple_keys)-1]

	valid, err := yamlSimpleKeyIsValid(parser, simple_key)
	if err != nil {
		return err
	}
	if valid {
		token := Token{Type: KEY_TOKEN, StartMark: simple_key.mark, EndMark: simple_key.mark}
		parser.insertToken(simple_key.token_number-parser.tokens_parsed, &token)

		if err := parser.rollIndent(simple_key.mark.Column, simple_key.token_number, BLOCK_MAPPING_START_TOKEN, simple_key.mark); err != nil {
			return err
		}

		simple_key.possible = false
		delete(parser.simple_keys_by_tok, simple_key.token_number)
		parser.simple_key_allowed = false
	} else {
		if parser.flow_level == 0 {
			if !parser.simple_key_allowed {
				return newScannerError(parser, "", parser.mark, "mapping values are not allowed in this context")
			}
			if err := parser.rollIndent(parser.mark.Column, -1, BLOCK_MAPPING_START_TOKEN, parser.mark); err != nil {
				return err
			}
		}
		parser.simple_key_allowed = parser.flow_level == 0
	}

	parser.queueSpanToken(VALUE_TOKEN, 1)
	return nil
}

func (parser *Parser) fetchAnchor(typ TokenType) error {
	if err := parser.saveSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token, err := parser.scanAnchor(typ)
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

func (parser *Parser) fetchTag() error {
	if err := parser.saveSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token, err := parser.scanTag()
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

func (parser *Parser) fetchBlockScalar(literal bool) error {
	if err := parser.removeSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = true

	token, err := parser.scanBlockScalar(literal)
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

func (parser *Parser) fetchFlowScalar(single bool) error {
	if err := parser.saveSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token, err := parser.scanFlowScalar(single)
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

func (parser *Parser) fetchPlainScalar() error {
	if err := parser.saveSimpleKey(); err != nil {
		return err
	}
	parser.simple_key_allowed = false

	token, err := parser.scanPlainScalar()
	if err != nil {
		return err
	}
	parser.insertToken(-1, token)
	return nil
}

// Cursor movement.

// skip advances past one character.
func (parser *Parser) skip() {
	if !isBlank(parser.buffer, parser.buffer_pos) {
		parser.newlines = 0
	}
	parser.mark.Index++
	parser.mark.Column++
	parser.unread--
	parser.buffer_pos += width(parser.buffer[parser.buffer_pos])
}

// skipLine advances past one line break, counting CRLF as a single break.
func (parser *Parser) skipLine() {
	switch {
	case isCRLF(parser.buffer, parser.buffer_pos):
		parser.mark.Index += 2
		parser.mark.Column = 0
		parser.mark.Line++
		parser.unread -= 2
		parser.buffer_pos += 2
		parser.newlines++
	case isLineBreak(parser.buffer, parser.buffer_pos):
		parser.mark.Index++
		parser.mark.Column = 0
		parser.mark.Line++
		parser.unread--
		parser.buffer_pos += width(parser.buffer[parser.buffer_pos])
		parser.newlines++
	}
}

// read copies one character into s and advances the cursor.
func (parser *Parser) read(s []byte) []byte {
	if !isBlank(parser.buffer, parser.buffer_pos) {
		parser.newlines = 0
	}
	w := width(parser.buffer[parser.buffer_pos])
	if w == 0 {
		panic("invalid character sequence")
	}
	if len(s) == 0 {
		s = make([]byte, 0, 32)
	}
	if w == 1 && len(s)+w <= cap(s) {
		s = s[:len(s)+1]
		s[len(s)-1] = parser.buffer[parser.buffer_pos]
		parser.buffer_pos++
	} else {
		s = append(s, parser.buffer[parser.buffer_pos:parser.buffer_pos+w]...)
		parser.buffer_pos += w
	}
	parser.mark.Index++
	parser.mark.Column++
	parser.unread--
	return s
}

// readLine appends a normalized '\n' (or LS/PS verbatim) for the break at
// the cursor and advances past it.
func (parser *Parser) readLine(s []byte) []byte {
	buf := parser.buffer
	pos := parser.buffer_pos
	switch {
	case buf[pos] == '\r' && buf[pos+1] == '\n':
		s = append(s, '\n')
		parser.buffer_pos += 2
		parser.mark.Index++
		parser.unread--
	case buf[pos] == '\r' || buf[pos] == '\n':
		s = append(s, '\n')
		parser.buffer_pos++
	case buf[pos] == 0xC2 && buf[pos+1] == 0x85:
		s = append(s, '\n')
		parser.buffer_pos += 2
	case buf[pos] == 0xE2 && buf[pos+1] == 0x80 && (buf[pos+2] == 0xA8 || buf[pos+2] == 0xA9):
		s = append(s, buf[pos:pos+3]...)
		parser.buffer_pos += 3
	default:
		return s
	}
	parser.mark.Index++
	parser.mark.Column = 0
	parser.mark.Line++
	parser.unread--
	parser.newlines++
	return s
}

// scanToNextToken eats whitespace, comments, and line breaks up to the
// next token. Tabs count as whitespace only where a simple key can't
// start.
func (parser *Parser) scanToNextToken() error {
	scan_mark := parser.mark

	for {
		if err := parser.ensure(1); err != nil {
			return err
		}

		for parser.peekByte(0) == ' ' || ((parser.flow_level > 0 || !parser.simple_key_allowed) && parser.peekByte(0) == '\t') {
			parser.skip()
			if err := parser.ensure(1); err != nil {
				return err
			}
		}

		// A line comment directly under a "-" that introduces nested
		// content reads as a header for that content; move it to a head
		// comment.
		if len(parser.comments) > 0 && len(parser.tokens) > 1 {
			tokenA := parser.tokens[len(parser.tokens)-2]
			tokenB := parser.tokens[len(parser.tokens)-1]
			comment := &parser.comments[len(parser.comments)-1]
			if tokenA.Type == BLOCK_SEQUENCE_START_TOKEN && tokenB.Type == BLOCK_ENTRY_TOKEN && len(comment.line) > 0 && !isLineBreak(parser.buffer, parser.buffer_pos) {
				comment.head = comment.line
				comment.line = nil
				if comment.start_mark.Line == parser.mark.Line-1 {
					comment.token_mark = parser.mark
				}
			}
		}

		if parser.peekByte(0) == '#' {
			if err := parser.scanComments(scan_mark); err != nil {
				return err
			}
		}

		if !isLineBreak(parser.buffer, parser.buffer_pos) {
			return nil
		}
		if err := parser.ensure(2); err != nil {
			return err
		}
		parser.skipLine()
		if parser.flow_level == 0 {
			parser.simple_key_allowed = true
		}
	}
}

// skipBlanks consumes spaces and tabs.
func (parser *Parser) skipBlanks() error {
	if err := parser.ensure(1); err != nil {
		return err
	}
	for isBlank(parser.buffer, parser.buffer_pos) {
		parser.skip()
		if err := parser.ensure(1); err != nil {
			return err
		}
	}
	return nil
}

// skipToBreak consumes everything up to the next break or end of stream.
func (parser *Parser) skipToBreak() error {
	for !isBreakOrZero(parser.buffer, parser.buffer_pos) {
		parser.skip()
		if err := parser.ensure(1); err != nil {
			return err
		}
	}
	return nil
}

// consumeBreak consumes the line break at the cursor, if any.
func (parser *Parser) consumeBreak() error {
	if !isLineBreak(parser.buffer, parser.buffer_pos) {
		return nil
	}
	if err := parser.ensure(2); err != nil {
		return err
	}
	parser.skipLine()
	return nil
}

// scanDirective scans a %YAML or %TAG directive line into its token.
func (parser *Parser) scanDirective() (*Token, error) {
	start_mark := parser.mark
	parser.skip()

	name, err := parser.scanDirectiveName(start_mark)
	if err != nil {
		return nil, err
	}

	var token Token
	switch {
	case bytes.Equal(name, []byte("YAML")):
		major, minor, err := parser.scanVersionDirectiveValue(start_mark)
		if err != nil {
			return nil, err
		}
		token = Token{
			Type:      VERSION_DIRECTIVE_TOKEN,
			StartMark: start_mark,
			EndMark:   parser.mark,
			major:     major,
			minor:     minor,
		}
	case bytes.Equal(name, []byte("TAG")):
		handle, prefix, err := parser.scanTagDirectiveValue(start_mark)
		if err != nil {
			return nil, err
		}
		token = Token{
			Type:      TAG_DIRECTIVE_TOKEN,
			StartMark: start_mark,
			EndMark:   parser.mark,
			Value:     handle,
			prefix:    prefix,
		}
	default:
		return nil, newScannerError(parser, "while scanning a directive", start_mark, "found unknown directive name")
	}

	if err := parser.skipBlanks(); err != nil {
		return nil, err
	}

	if parser.peekByte(0) == '#' {
		if err := parser.skipToBreak(); err != nil {
			return nil, err
		}
	}

	if !isBreakOrZero(parser.buffer, parser.buffer_pos) {
		return nil, newScannerError(parser, "while scanning a directive", start_mark, "did not find expected comment or line break")
	}
	if err := parser.consumeBreak(); err != nil {
		return nil, err
	}

	return &token, nil
}

func (parser *Parser) scanDirectiveName(start_mark Mark) ([]byte, error) {
	if err := parser.ensure(1); err != nil {
		return nil, err
	}

	var s []byte
	for isAlpha(parser.buffer, parser.buffer_pos) {
		s = parser.read(s)
		if err := parser.ensure(1); err != nil {
			return nil, err
		}
	}

	if len(s) == 0 {
		return nil, newScannerError(parser, "while scanning a directive", start_mark, "could not find expected directive name")
	}
	if !isBlankOrZero(parser.buffer, parser.buffer_pos) {
		return nil, newScannerError(parser, "while scanning a directive", start_mark, "found unexpected non-alphabetical character")
	}
	return s, nil
}

func (parser *Parser) scanVersionDirectiveValue(start_mark Mark) (major, minor int8, _ error) {
	if err := parser.skipBlanks(); err != nil {
		return 0, 0, err
	}

	major, err := parser.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}
	if parser.peekByte(0) != '.' {
		return 0, 0, newScannerError(parser, "while scanning a %YAML directive", start_mark, "did not find expected digit or '.' character")
	}
	parser.skip()

	minor, err = parser.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

func (parser *Parser) scanVersionDirectiveNumber(start_mark Mark) (int8, error) {
	if err := parser.ensure(1); err != nil {
		return 0, err
	}
	var value, length int8
	for isDigit(parser.buffer, parser.buffer_pos) {
		length++
		if length > max_number_length {
			return 0, newScannerError(parser, "while scanning a %YAML directive", start_mark, "found extremely long version number")
		}
		value = value*10 + int8(asDigit(parser.buffer, parser.buffer_pos))
		parser.skip()
		if err := parser.ensure(1); err != nil {
			return 0, err
		}
	}
	if length == 0 {
		return 0, newScannerError(parser, "while scanning a %YAML directive", start_mark, "did not find expected version number")
	}
	return value, nil
}

func (parser *Parser) scanTagDirectiveValue(start_mark Mark) (handle, prefix []byte, _ error) {
	if err := parser.skipBlanks(); err != nil {
		return nil, nil, err
	}

	if err := parser.scanTagHandle(true, start_mark, &handle); err != nil {
		return nil, nil, err
	}

	if err := parser.ensure(1); err != nil {
		return nil, nil, err
	}
	if !isBlank(parser.buffer, parser.buffer_pos) {
		return nil, nil, newScannerError(parser, "while scanning a %TAG directive", start_mark, "did not find expected whitespace")
	}
	if err := parser.skipBlanks(); err != nil {
		return nil, nil, err
	}

	if err := parser.scanTagURI(true, nil, start_mark, &prefix); err != nil {
		return nil, nil, err
	}

	if err := parser.ensure(1); err != nil {
		return nil, nil, err
	}
	if !isBlankOrZero(parser.buffer, parser.buffer_pos) {
		return nil, nil, newScannerError(parser, "while scanning a %TAG directive", start_mark, "did not find expected whitespace or line break")
	}
	return handle, prefix, nil
}

// scanAnchor scans the name after '&' or '*'.
func (parser *Parser) scanAnchor(typ TokenType) (*Token, error) {
	context := "while scanning an anchor"
	if typ == ALIAS_TOKEN {
		context = "while scanning an alias"
	}
	start_mark := parser.mark
	parser.skip()

	if err := parser.ensure(1); err != nil {
		return nil, err
	}
	var s []byte
	for isAlpha(parser.buffer, parser.buffer_pos) {
		s = parser.read(s)
		if err := parser.ensure(1); err != nil {
			return nil, err
		}
	}
	end_mark := parser.mark

	terminator := false
	if isBlankOrZero(parser.buffer, parser.buffer_pos) {
		terminator = true
	} else {
		switch parser.peekByte(0) {
		case '?', ':', ',', ']', '}', '%', '@', '`':
			terminator = true
		}
	}
	if len(s) == 0 || !terminator {
		return nil, newScannerError(parser, context, start_mark, "did not find expected alphabetic or numeric character")
	}

	return &Token{Type: typ, StartMark: start_mark, EndMark: end_mark, Value: s}, nil
}

// scanTag scans a "!handle!suffix" or verbatim "!<uri>" tag token.
func (parser *Parser) scanTag() (*Token, error) {
	var handle, suffix []byte
	start_mark := parser.mark

	if err := parser.ensure(2); err != nil {
		return nil, err
	}

	if parser.peekByte(1) == '<' {
		// Verbatim form.
		parser.skip()
		parser.skip()
		if err := parser.scanTagURI(false, nil, start_mark, &suffix); err != nil {
			return nil, err
		}
		if parser.peekByte(0) != '>' {
			return nil, newScannerError(parser, "while scanning a tag", start_mark, "did not find the expected '>'")
		}
		parser.skip()
	} else {
		if err := parser.scanTagHandle(false, start_mark, &handle); err != nil {
			return nil, err
		}
		if handle[0] == '!' && len(handle) > 1 && handle[len(handle)-1] == '!' {
			if err := parser.scanTagURI(false, nil, start_mark, &suffix); err != nil {
				return nil, err
			}
		} else {
			// What looked like a named handle was suffix text; fold it
			// back in under the "!" handle.
			if err := parser.scanTagURI(false, handle, start_mark, &suffix); err != nil {
				return nil, err
			}
			handle = []byte{'!'}
			if len(suffix) == 0 {
				handle, suffix = suffix, handle
			}
		}
	}

	if err := parser.ensure(1); err != nil {
		return nil, err
	}
	if !isBlankOrZero(parser.buffer, parser.buffer_pos) {
		return nil, newScannerError(parser, "while scanning a tag", start_mark, "did not find expected whitespace or line break")
	}

	return &Token{Type: TAG_TOKEN, StartMark: start_mark, EndMark: parser.mark, Value: handle, suffix: suffix}, nil
}

// scanTagHandle scans "!", "!!", or "!name!".
func (parser *Parser) scanTagHandle(directive bool, start_mark Mark, handle *[]byte) error {
	context := "while scanning a tag"
	if directive {
		context = "while scanning a tag directive"
	}
	if err := parser.ensure(1); err != nil {
		return err
	}
	if parser.peekByte(0) != '!' {
		return newScannerError(parser, context, start_mark, "did not find expected '!'")
	}

	s := parser.read(nil)

	if err := parser.ensure(1); err != nil {
		return err
	}
	for isAlpha(parser.buffer, parser.buffer_pos) {
		s = parser.read(s)
		if err := parser.ensure(1); err != nil {
			return err
		}
	}

	if parser.peekByte(0) == '!' {
		s = parser.read(s)
	} else if directive && string(s) != "!" {
		// A directive's handle must be closed; "!x" alone is not one.
		return newScannerError(parser, context, start_mark, "did not find expected '!'")
	}

	*handle = s
	return nil
}

// scanTagURI scans a tag suffix or %TAG prefix, decoding %HH escapes.
func (parser *Parser) scanTagURI(directive bool, head []byte, start_mark Mark, uri *[]byte) error {
	context := "while parsing a tag"
	if directive {
		context = "while parsing a %TAG directive"
	}
	var s []byte
	hasTag := len(head) > 0

	// The head's leading '!' is not part of the URI.
	if len(head) > 1 {
		s = append(s, head[1:]...)
	}

	if err := parser.ensure(1); err != nil {
		return err
	}

	for isTagURIChar(parser.buffer, parser.buffer_pos, false) {
		if parser.peekByte(0) == '%' {
			if err := parser.scanURIEscapes(directive, start_mark, &s); err != nil {
				return err
			}
		} else {
			s = parser.read(s)
		}
		if err := parser.ensure(1); err != nil {
			return err
		}
		hasTag = true
	}

	if !hasTag {
		return newScannerError(parser, context, start_mark, "did not find expected tag URI")
	}
	*uri = s
	return nil
}

// scanURIEscapes decodes one %HH-escaped UTF-8 sequence.
func (parser *Parser) scanURIEscapes(directive bool, start_mark Mark, s *[]byte) error {
	context := "while parsing a tag"
	if directive {
		context = "while parsing a %TAG directive"
	}
	remaining := 0
	for first := true; first || remaining > 0; first = false {
		if err := parser.ensure(3); err != nil {
			return err
		}

		if !(parser.peekByte(0) == '%' &&
			isHex(parser.buffer, parser.buffer_pos+1) &&
			isHex(parser.buffer, parser.buffer_pos+2)) {
			return newScannerError(parser, context, start_mark, "did not find URI escaped octet")
		}

		octet := byte((asHex(parser.buffer, parser.buffer_pos+1) << 4) + asHex(parser.buffer, parser.buffer_pos+2))

		if first {
			remaining = width(octet)
			if remaining == 0 {
				return newScannerError(parser, context, start_mark, "found an incorrect leading UTF-8 octet")
			}
		} else if octet&0xC0 != 0x80 {
			return newScannerError(parser, context, start_mark, "found an incorrect trailing UTF-8 octet")
		}

		*s = append(*s, octet)
		parser.skip()
		parser.skip()
		parser.skip()
		remaining--
	}
	return nil
}

// scanBlockScalarHeader reads the optional chomping and explicit-indent
// indicators after '|' or '>', in either order.
func (parser *Parser) scanBlockScalarHeader(start_mark Mark) (chomping, increment int, _ error) {
	if err := parser.ensure(1); err != nil {
		return 0, 0, err
	}

	readChomping := func() {
		if parser.peekByte(0) == '+' {
			chomping = +1
		} else {
			chomping = -1
		}
		parser.skip()
	}
	readIncrement := func() error {
		if parser.peekByte(0) == '0' {
			return newScannerError(parser, "while scanning a block scalar", start_mark, "found an indentation indicator equal to 0")
		}
		increment = asDigit(parser.buffer, parser.buffer_pos)
		parser.skip()
		return nil
	}

	switch {
	case parser.peekByte(0) == '+' || parser.peekByte(0) == '-':
		readChomping()
		if err := parser.ensure(1); err != nil {
			return 0, 0, err
		}
		if isDigit(parser.buffer, parser.buffer_pos) {
			if err := readIncrement(); err != nil {
				return 0, 0, err
			}
		}
	case isDigit(parser.buffer, parser.buffer_pos):
		if err := readIncrement(); err != nil {
			return 0, 0, err
		}
		if err := parser.ensure(1); err != nil {
			return 0, 0, err
		}
		if parser.peekByte(0) == '+' || parser.peekByte(0) == '-' {
			readChomping()
		}
	}
	return chomping, increment, nil
}

// scanBlockScalar scans a '|' or '>' scalar: header, then content lines
// at the computed indentation, folding interior breaks for '>'.
func (parser *Parser) scanBlockScalar(literal bool) (*Token, error) {
	start_mark := parser.mark
	parser.skip()

	chomping, increment, err := parser.scanBlockScalarHeader(start_mark)
	if err != nil {
		return nil, err
	}

	// The rest of the header line may hold blanks and a comment.
	if err := parser.skipBlanks(); err != nil {
		return nil, err
	}
	if parser.peekByte(0) == '#' {
		if err := parser.scanLineComment(start_mark); err != nil {
			return nil, err
		}
		if err := parser.skipToBreak(); err != nil {
			return nil, err
		}
	}

	if !isBreakOrZero(parser.buffer, parser.buffer_pos) {
		return nil, newScannerError(parser, "while scanning a block scalar", start_mark, "did not find expected comment or line break")
	}
	if err := parser.consumeBreak(); err != nil {
		return nil, err
	}

	end_mark := parser.mark

	var indent int
	if increment > 0 {
		if parser.indent >= 0 {
			indent = parser.indent + increment
		} else {
			indent = increment
		}
	}

	var s, leading_break, trailing_breaks []byte
	if err := parser.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark); err != nil {
		return nil, err
	}

	if err := parser.ensure(1); err != nil {
		return nil, err
	}
	var leading_blank, trailing_blank bool
	for parser.mark.Column == indent && !isZeroChar(parser.buffer, parser.buffer_pos) {
		trailing_blank = isBlank(parser.buffer, parser.buffer_pos)

		// '>' folds a single interior break between non-blank lines into
		// a space; everything else keeps its breaks.
		if !literal && !leading_blank && !trailing_blank && len(leading_break) > 0 && leading_break[0] == '\n' {
			if len(trailing_breaks) == 0 {
				s = append(s, ' ')
			}
		} else {
			s = append(s, leading_break...)
		}
		leading_break = leading_break[:0]

		s = append(s, trailing_breaks...)
		trailing_breaks = trailing_breaks[:0]

		leading_blank = isBlank(parser.buffer, parser.buffer_pos)

		for !isBreakOrZero(parser.buffer, parser.buffer_pos) {
			s = parser.read(s)
			if err := parser.ensure(1); err != nil {
				return nil, err
			}
		}

		if err := parser.ensure(2); err != nil {
			return nil, err
		}
		leading_break = parser.readLine(leading_break)

		if err := parser.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark); err != nil {
			return nil, err
		}
	}

	// Chomping: clip keeps one trailing break, strip keeps none, keep
	// keeps them all.
	if chomping != -1 {
		s = append(s, leading_break...)
	}
	if chomping == 1 {
		s = append(s, trailing_breaks...)
	}

	style := ScalarStyle(LITERAL_SCALAR_STYLE)
	if !literal {
		style = FOLDED_SCALAR_STYLE
	}
	return &Token{Type: SCALAR_TOKEN, StartMark: start_mark, EndMark: end_mark, Value: s, Style: style}, nil
}

// scanBlockScalarBreaks consumes indentation and blank lines between
// content lines, settling the content indentation when the header gave
// no explicit indicator.
func (parser *Parser) scanBlockScalarBreaks(indent *int, breaks *[]byte, start_mark Mark, end_mark *Mark) error {
	*end_mark = parser.mark

	max_indent := 0
	for {
		if err := parser.ensure(1); err != nil {
			return err
		}
		for (*indent == 0 || parser.mark.Column < *indent) && isSpace(parser.buffer, parser.buffer_pos) {
			parser.skip()
			if err := parser.ensure(1); err != nil {
				return err
			}
		}
		if parser.mark.Column > max_indent {
			max_indent = parser.mark.Column
		}

		if (*indent == 0 || parser.mark.Column < *indent) && isTab(parser.buffer, parser.buffer_pos) {
			return newScannerError(parser, "while scanning a block scalar", start_mark, "found a tab character where an indentation space is expected")
		}

		if !isLineBreak(parser.buffer, parser.buffer_pos) {
			break
		}

		if err := parser.ensure(2); err != nil {
			return err
		}
		*breaks = parser.readLine(*breaks)
		*end_mark = parser.mark
	}

	if *indent == 0 {
		// max(first non-empty line's indent, surrounding indent + 1, 1).
		*indent = max_indent
		if *indent < parser.indent+1 {
			*indent = parser.indent + 1
		}
		if *indent < 1 {
			*indent = 1
		}
	}
	return nil
}

// quotedEscapes maps a double-quoted escape character to its expansion.
var quotedEscapes = map[byte]string{
	'0':  "\x00",
	'a':  "\x07",
	'b':  "\x08",
	't':  "\x09",
	'\t': "\x09",
	'n':  "\x0A",
	'v':  "\x0B",
	'f':  "\x0C",
	'r':  "\x0D",
	'e':  "\x1B",
	' ':  "\x20",
	'"':  "\"",
	'\'': "'",
	'\\': "\\",
	'N':  "\xC2\x85",
	'_':  "\xC2\xA0",
	'L':  "\xE2\x80\xA8",
	'P':  "\xE2\x80\xA9",
}

// hexEscapeLengths maps the \x/\u/\U escape markers to their digit count.
var hexEscapeLengths = map[byte]int{'x': 2, 'u': 4, 'U': 8}

// scanQuotedEscape decodes the backslash escape at the cursor into s.
func (parser *Parser) scanQuotedEscape(start_mark Mark, s []byte) ([]byte, error) {
	marker := parser.peekByte(1)
	if expansion, ok := quotedEscapes[marker]; ok {
		parser.skip()
		parser.skip()
		return append(s, expansion...), nil
	}
	code_length, ok := hexEscapeLengths[marker]
	if !ok {
		return nil, newScannerError(parser, "while scanning a quoted scalar", start_mark, "found unknown escape character")
	}
	parser.skip()
	parser.skip()

	if err := parser.ensure(code_length); err != nil {
		return nil, err
	}
	var value int
	for k := 0; k < code_length; k++ {
		if !isHex(parser.buffer, parser.buffer_pos+k) {
			return nil, newScannerError(parser, "while scanning a quoted scalar", start_mark, "did not find expected hexdecimal number")
		}
		value = (value << 4) + asHex(parser.buffer, parser.buffer_pos+k)
	}
	if (value >= 0xD800 && value <= 0xDFFF) || value > 0x10FFFF {
		return nil, newScannerError(parser, "while scanning a quoted scalar", start_mark, "found invalid Unicode character escape code")
	}
	s = appendRune(s, rune(value))
	for k := 0; k < code_length; k++ {
		parser.skip()
	}
	return s, nil
}

// foldWhitespace appends the folded rendering of the blank/break run the
// caller just consumed: a lone '\n' becomes a space (or the blank-line
// breaks), other breaks pass through, and a breakless run keeps its
// literal whitespace.
func foldWhitespace(s, leading_break, trailing_breaks, whitespaces []byte, leading_blanks bool) []byte {
	if leading_blanks {
		if len(leading_break) > 0 && leading_break[0] == '\n' {
			if len(trailing_breaks) == 0 {
				s = append(s, ' ')
			} else {
				s = append(s, trailing_breaks...)
			}
		} else {
			s = append(s, leading_break...)
			s = append(s, trailing_breaks...)
		}
	} else {
		s = append(s, whitespaces...)
	}
	return s
}

// scanFlowScalar scans a single- or double-quoted scalar.
func (parser *Parser) scanFlowScalar(single bool) (*Token, error) {
	start_mark := parser.mark
	parser.skip()

	var s, leading_break, trailing_breaks, whitespaces []byte
	for {
		if err := parser.ensure(4); err != nil {
			return nil, err
		}

		if parser.mark.Column == 0 &&
			((parser.peekByte(0) == '-' && parser.peekByte(1) == '-' && parser.peekByte(2) == '-') ||
				(parser.peekByte(0) == '.' && parser.peekByte(1) == '.' && parser.peekByte(2) == '.')) &&
			isBlankOrZero(parser.buffer, parser.buffer_pos+3) {
			return nil, newScannerError(parser, "while scanning a quoted scalar", start_mark, "found unexpected document indicator")
		}

		if isZeroChar(parser.buffer, parser.buffer_pos) {
			return nil, newScannerError(parser, "while scanning a quoted scalar", start_mark, "found unexpected end of stream")
		}

		leading_blanks := false
		for !isBlankOrZero(parser.buffer, parser.buffer_pos) {
			switch {
			case single && parser.peekByte(0) == '\'' && parser.peekByte(1) == '\'':
				// '' is the escaped quote.
				s = append(s, '\'')
				parser.skip()
				parser.skip()
			case single && parser.peekByte(0) == '\'':
				goto doneContent
			case !single && parser.peekByte(0) == '"':
				goto doneContent
			case !single && parser.peekByte(0) == '\\' && isLineBreak(parser.buffer, parser.buffer_pos+1):
				// An escaped break folds away entirely.
				if err := parser.ensure(3); err != nil {
					return nil, err
				}
				parser.skip()
				parser.skipLine()
				leading_blanks = true
				goto doneContent
			case !single && parser.peekByte(0) == '\\':
				var err error
				if s, err = parser.scanQuotedEscape(start_mark, s); err != nil {
					return nil, err
				}
			default:
				s = parser.read(s)
			}
			if err := parser.ensure(2); err != nil {
				return nil, err
			}
		}

		if err := parser.ensure(1); err != nil {
			return nil, err
		}
		if single {
			if parser.peekByte(0) == '\'' {
				goto doneScalar
			}
		} else if parser.peekByte(0) == '"' {
			goto doneScalar
		}

	doneContent:
		for isBlank(parser.buffer, parser.buffer_pos) || isLineBreak(parser.buffer, parser.buffer_pos) {
			if isBlank(parser.buffer, parser.buffer_pos) {
				if !leading_blanks {
					whitespaces = parser.read(whitespaces)
				} else {
					parser.skip()
				}
			} else {
				if err := parser.ensure(2); err != nil {
					return nil, err
				}
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = parser.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = parser.readLine(trailing_breaks)
				}
			}
			if err := parser.ensure(1); err != nil {
				return nil, err
			}
		}

		s = foldWhitespace(s, leading_break, trailing_breaks, whitespaces, leading_blanks)
		if leading_blanks {
			leading_break = leading_break[:0]
			trailing_breaks = trailing_breaks[:0]
		} else {
			whitespaces = whitespaces[:0]
		}
	}

doneScalar:
	parser.skip()
	end_mark := parser.mark

	style := ScalarStyle(SINGLE_QUOTED_SCALAR_STYLE)
	if !single {
		style = DOUBLE_QUOTED_SCALAR_STYLE
	}
	return &Token{Type: SCALAR_TOKEN, StartMark: start_mark, EndMark: end_mark, Value: s, Style: style}, nil
}

// endsPlainScalarChar reports whether the character at the cursor
// terminates a plain scalar: ':' before whitespace anywhere, and the
// flow indicators (plus '?') inside flow context.
func (parser *Parser) endsPlainScalarChar() bool {
	buf := parser.buffer
	pos := parser.buffer_pos
	if buf[pos] == ':' && isBlankOrZero(buf, pos+1) {
		return true
	}
	if parser.flow_level == 0 {
		return false
	}
	switch buf[pos] {
	case ',', '?', '[', ']', '{', '}':
		return true
	}
	return false
}

// scanPlainScalar scans an unquoted scalar, folding line breaks and
// trimming trailing whitespace.
func (parser *Parser) scanPlainScalar() (*Token, error) {
	var s, leading_break, trailing_breaks, whitespaces []byte
	var leading_blanks bool
	indent := parser.indent + 1

	start_mark := parser.mark
	end_mark := parser.mark

	for {
		if err := parser.ensure(4); err != nil {
			return nil, err
		}
		if parser.mark.Column == 0 &&
			((parser.peekByte(0) == '-' && parser.peekByte(1) == '-' && parser.peekByte(2) == '-') ||
				(parser.peekByte(0) == '.' && parser.peekByte(1) == '.' && parser.peekByte(2) == '.')) &&
			isBlankOrZero(parser.buffer, parser.buffer_pos+3) {
			break
		}
		if parser.peekByte(0) == '#' {
			break
		}

		for !isBlankOrZero(parser.buffer, parser.buffer_pos) {
			if parser.endsPlainScalarChar() {
				break
			}

			if leading_blanks || len(whitespaces) > 0 {
				s = foldWhitespace(s, leading_break, trailing_breaks, whitespaces, leading_blanks)
				if leading_blanks {
					leading_break = leading_break[:0]
					trailing_breaks = trailing_breaks[:0]
					leading_blanks = false
				} else {
					whitespaces = whitespaces[:0]
				}
			}

			s = parser.read(s)
			end_mark = parser.mark
			if err := parser.ensure(2); err != nil {
				return nil, err
			}
		}

		if !(isBlank(parser.buffer, parser.buffer_pos) || isLineBreak(parser.buffer, parser.buffer_pos)) {
			break
		}

		if err := parser.ensure(1); err != nil {
			return nil, err
		}

		for isBlank(parser.buffer, parser.buffer_pos) || isLineBreak(parser.buffer, parser.buffer_pos) {
			if isBlank(parser.buffer, parser.buffer_pos) {
				if leading_blanks && parser.mark.Column < indent && isTab(parser.buffer, parser.buffer_pos) {
					return nil, newScannerError(parser, "while scanning a plain scalar", start_mark, "found a tab character that violates indentation")
				}
				if !leading_blanks {
					whitespaces = parser.read(whitespaces)
				} else {
					parser.skip()
				}
			} else {
				if err := parser.ensure(2); err != nil {
					return nil, err
				}
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = parser.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = parser.readLine(trailing_breaks)
				}
			}
			if err := parser.ensure(1); err != nil {
				return nil, err
			}
		}

		// In block context, dedenting below the scalar's indent ends it.
		if parser.flow_level == 0 && parser.mark.Column < indent {
			break
		}
	}

	// A folded break means the next token may start a simple key.
	if leading_blanks {
		parser.simple_key_allowed = true
	}
	return &Token{Type: SCALAR_TOKEN, StartMark: start_mark, EndMark: end_mark, Value: s, Style: PLAIN_SCALAR_STYLE}, nil
}

// scanLineComment looks ahead (without consuming non-comment input) for an
// inline '#...' comment trailing the current line.
func (parser *Parser) scanLineComment(token_mark Mark) error {
	if parser.newlines > 0 {
		return nil
	}

	var start_mark Mark
	var text []byte

	for peek := 0; peek < 512; peek++ {
		if err := parser.ensure(peek + 1); err != nil {
			return err
		}
		if isBlank(parser.buffer, parser.buffer_pos+peek) {
			continue
		}
		if parser.buffer[parser.buffer_pos+peek] == '#' {
			seen := parser.mark.Index + peek
			for {
				if err := parser.ensure(1); err != nil {
					return err
				}
				if isBreakOrZero(parser.buffer, parser.buffer_pos) {
					if parser.mark.Index >= seen {
						break
					}
					if err := parser.ensure(2); err != nil {
						return err
					}
					parser.skipLine()
				} else if parser.mark.Index >= seen {
					if len(text) == 0 {
						start_mark = parser.mark
					}
					text = parser.read(text)
				} else {
					parser.skip()
				}
			}
		}
		break
	}
	if len(text) > 0 {
		parser.comments = append(parser.comments, Comment{
			token_mark: token_mark,
			start_mark: start_mark,
			line:       text,
		})
	}
	return nil
}

// scanComments scans a run of '#...' comment lines, deciding for each
// whether it is a foot comment of the token just scanned or a head
// comment of whatever follows.
func (parser *Parser) scanComments(scan_mark Mark) error {
	token := parser.tokens[len(parser.tokens)-1]
	if token.Type == FLOW_ENTRY_TOKEN && len(parser.tokens) > 1 {
		token = parser.tokens[len(parser.tokens)-2]
	}

	token_mark := token.StartMark
	var start_mark Mark
	next_indent := parser.indent
	if next_indent < 0 {
		next_indent = 0
	}

	recent_empty := false
	first_empty := parser.newlines <= 1

	line := parser.mark.Line
	column := parser.mark.Column

	var text []byte

	// The first line where a comment still counts as a foot of the
	// current token.
	foot_line := -1
	if scan_mark.Line > 0 {
		foot_line = parser.mark.Line - parser.newlines + 1
		if parser.newlines == 0 && parser.mark.Column > 1 {
			foot_line++
		}
	}

	peek := 0
	for ; peek < 512; peek++ {
		if parser.unread < peek+1 && parser.updateBuffer(peek+1) != nil {
			break
		}
		column++
		if isBlank(parser.buffer, parser.buffer_pos+peek) {
			continue
		}
		c := parser.buffer[parser.buffer_pos+peek]
		close_flow := parser.flow_level > 0 && (c == ']' || c == '}')
		if close_flow || isBreakOrZero(parser.buffer, parser.buffer_pos+peek) {
			// An empty line (or closing flow bracket) may end a foot
			// comment.
			if close_flow || !recent_empty {
				if close_flow || first_empty && (start_mark.Line == foot_line && token.Type != VALUE_TOKEN || start_mark.Column-1 < next_indent) {
					if len(text) > 0 {
						if start_mark.Column-1 < next_indent {
							token_mark = start_mark
						}
						parser.comments = append(parser.comments, Comment{
							scan_mark:  scan_mark,
							token_mark: token_mark,
							start_mark: start_mark,
							end_mark:   Mark{Index: parser.mark.Index + peek, Line: line, Column: column},
							foot:       text,
						})
						scan_mark = Mark{Index: parser.mark.Index + peek, Line: line, Column: column}
						token_mark = scan_mark
						text = nil
					}
				} else if len(text) > 0 && parser.buffer[parser.buffer_pos+peek] != 0 {
					text = append(text, '\n')
				}
			}
			if !isLineBreak(parser.buffer, parser.buffer_pos+peek) {
				break
			}
			first_empty = false
			recent_empty = true
			column = 0
			line++
			continue
		}

		// Dedenting below the current block also closes a foot comment.
		if len(text) > 0 && (close_flow || column-1 < next_indent && column != start_mark.Column) {
			parser.comments = append(parser.comments, Comment{
				scan_mark:  scan_mark,
				token_mark: token_mark,
				start_mark: start_mark,
				end_mark:   Mark{Index: parser.mark.Index + peek, Line: line, Column: column},
				foot:       text,
			})
			scan_mark = Mark{Index: parser.mark.Index + peek, Line: line, Column: column}
			token_mark = scan_mark
			text = nil
		}

		if parser.buffer[parser.buffer_pos+peek] != '#' {
			break
		}

		if len(text) == 0 {
			start_mark = Mark{Index: parser.mark.Index + peek, Line: line, Column: column}
		} else {
			text = append(text, '\n')
		}

		recent_empty = false

		// Consume the comment line itself.
		seen := parser.mark.Index + peek
		for {
			if err := parser.ensure(1); err != nil {
				return err
			}
			if isBreakOrZero(parser.buffer, parser.buffer_pos) {
				if parser.mark.Index >= seen {
					break
				}
				if err := parser.ensure(2); err != nil {
					return err
				}
				parser.skipLine()
			} else if parser.mark.Index >= seen {
				text = parser.read(text)
			} else {
				parser.skip()
			}
		}

		peek = 0
		column = 0
		line = parser.mark.Line
		next_indent = parser.indent
		if next_indent < 0 {
			next_indent = 0
		}
	}

	// Whatever text is left heads the next token.
	if len(text) > 0 {
		parser.comments = append(parser.comments, Comment{
			scan_mark:  scan_mark,
			token_mark: start_mark,
			start_mark: start_mark,
			end_mark:   Mark{Index: parser.mark.Index + peek - 1, Line: line, Column: column},
			head:       text,
		})
	}
	return nil
}
