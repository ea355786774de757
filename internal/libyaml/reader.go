// Copyright 2011-2019 Canonical Ltd
// Copyright 2006-2010 Kirill Simonov
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0 AND MIT

// Reader stage: owns the input buffer, detects the stream encoding from its
// BOM, transcodes UTF-16/UTF-32 to UTF-8, and validates that the stream
// contains no forbidden code points.

package libyaml

import (
	"errors"
	"fmt"
	"io"
)

const (
	input_raw_buffer_size = 512
	input_buffer_size     = input_raw_buffer_size * 3
)

// SimpleKey records a pending simple-key candidate at some flow level.
type SimpleKey struct {
	possible     bool
	required     bool
	token_number int
	mark         Mark
}

// Comment records the raw text and association marks of a scanned comment,
// before it is folded into head/line/foot comments on the owning token.
type Comment struct {
	scan_mark  Mark
	token_mark Mark
	start_mark Mark
	end_mark   Mark

	head []byte
	line []byte
	foot []byte
}

// TokenMark returns the mark of the token this comment is associated with.
func (c *Comment) TokenMark() Mark { return c.token_mark }

// StartMark returns the mark where the comment's text begins.
func (c *Comment) StartMark() Mark { return c.start_mark }

// EndMark returns the mark where the comment's text ends.
func (c *Comment) EndMark() Mark { return c.end_mark }

// Head returns the comment's head-comment text, if any.
func (c *Comment) Head() []byte { return c.head }

// Line returns the comment's line-comment text, if any.
func (c *Comment) Line() []byte { return c.line }

// Foot returns the comment's foot-comment text, if any.
func (c *Comment) Foot() []byte { return c.foot }

// Parser holds the state shared by the Reader, Scanner, and Parser stages:
// buffering/encoding, the token queue, the indent/flow stacks, and the
// parser state stack. It is the single mutable struct the pipeline's load
// half threads through a document.
type Parser struct {
	// Reader stuff

	read_handler yamlReadHandler

	input_reader io.Reader
	input        []byte
	input_pos    int

	eof bool

	buffer     []byte
	buffer_pos int

	unread int

	newlines int

	raw_buffer     []byte
	raw_buffer_pos int

	encoding Encoding

	offset int
	mark   Mark

	// source_name labels the input in diagnostics when set (a file name,
	// usually). Empty means errors print marks alone.
	source_name string

	// Comments

	head_comment []byte
	line_comment []byte
	foot_comment []byte
	tail_comment []byte
	stem_comment []byte

	comments      []Comment
	comments_head int

	// Scanner stuff

	stream_start_produced bool
	stream_end_produced   bool

	flow_level int

	tokens          []Token
	tokens_head     int
	tokens_parsed   int
	token_available bool

	indent  int
	indents []int

	simple_key_allowed bool
	simple_keys        []SimpleKey
	simple_keys_by_tok map[int]int

	hadError bool

	// Parser stuff

	state          ParserState
	states         []ParserState
	marks          []Mark
	tag_directives []TagDirective
}

type yamlReadHandler func(parser *Parser, buffer []byte) (n int, err error)

// bomTable lists the byte order marks in detection order. UTF-32 entries
// come first: a UTF-32-LE BOM starts with the UTF-16-LE one, so the longer
// prefix has to win.
var bomTable = []struct {
	encoding Encoding
	bom      string
}{
	{UTF32LE_ENCODING, "\xff\xfe\x00\x00"},
	{UTF32BE_ENCODING, "\x00\x00\xfe\xff"},
	{UTF16LE_ENCODING, "\xff\xfe"},
	{UTF16BE_ENCODING, "\xfe\xff"},
	{UTF8_ENCODING, "\xef\xbb\xbf"},
}

// determineEncoding inspects the start of the raw buffer for a BOM, sets
// parser.encoding, and consumes the matched mark. Without a BOM the
// stream is UTF-8.
func (parser *Parser) determineEncoding() error {
	for !parser.eof && len(parser.raw_buffer)-parser.raw_buffer_pos < 4 {
		if err := parser.updateRawBuffer(); err != nil {
			return err
		}
	}

	head := parser.raw_buffer[parser.raw_buffer_pos:]
	parser.encoding = UTF8_ENCODING
	for _, entry := range bomTable {
		if len(head) >= len(entry.bom) && string(head[:len(entry.bom)]) == entry.bom {
			parser.encoding = entry.encoding
			parser.raw_buffer_pos += len(entry.bom)
			parser.offset += len(entry.bom)
			break
		}
	}
	return nil
}

// updateRawBuffer tops off the raw buffer from the configured read handler.
func (parser *Parser) updateRawBuffer() error {
	full := parser.raw_buffer_pos == 0 && len(parser.raw_buffer) == cap(parser.raw_buffer)
	if full || parser.eof {
		return nil
	}

	// Slide the unconsumed tail to the front to make room.
	if n := parser.raw_buffer_pos; n > 0 {
		if n < len(parser.raw_buffer) {
			copy(parser.raw_buffer, parser.raw_buffer[n:])
		}
		parser.raw_buffer = parser.raw_buffer[:len(parser.raw_buffer)-n]
		parser.raw_buffer_pos = 0
	}

	n, err := parser.read_handler(parser, parser.raw_buffer[len(parser.raw_buffer):cap(parser.raw_buffer)])
	if err == io.EOF {
		parser.eof = true
	} else if err != nil {
		return &ReaderError{Offset: parser.offset, Err: fmt.Errorf("input error: %w", err)}
	}
	parser.raw_buffer = parser.raw_buffer[:len(parser.raw_buffer)+n]
	return nil
}

// forbidden reports whether r is a code point the Reader must reject:
// C0 controls other than TAB/LF/CR, DEL, the C1 block other than NEL,
// non-characters, and unpaired surrogates.
func forbidden(r rune) bool {
	switch r {
	case 0x9, 0xA, 0xD, 0x85:
		return false
	}
	if r < 0x20 || r == 0x7F {
		return true
	}
	if 0x80 <= r && r <= 0x9F {
		return true
	}
	if 0xD800 <= r && r <= 0xDFFF {
		return true
	}
	// Non-characters: U+FDD0..U+FDEF and the last two code points of
	// every plane.
	if 0xFDD0 <= r && r <= 0xFDEF {
		return true
	}
	return r&0xFFFE == 0xFFFE
}

// decodeRune decodes the next code point at the front of the raw buffer
// according to the stream encoding. width is 0 when more raw bytes are
// needed; ok is false for a malformed sequence.
func (parser *Parser) decodeRune() (r rune, width int, ok bool) {
	raw := parser.raw_buffer[parser.raw_buffer_pos:]
	switch parser.encoding {
	case UTF16LE_ENCODING, UTF16BE_ENCODING:
		return decodeUTF16(raw, parser.encoding == UTF16BE_ENCODING, parser.eof)
	case UTF32LE_ENCODING, UTF32BE_ENCODING:
		return decodeUTF32(raw, parser.encoding == UTF32BE_ENCODING)
	}
	return decodeUTF8(raw)
}

// rawExhausted reports whether the input has ended and every raw byte has
// been decoded.
func (parser *Parser) rawExhausted() bool {
	return parser.eof && parser.raw_buffer_pos == len(parser.raw_buffer)
}

// updateBuffer decodes input until parser.buffer holds at least length
// unread characters or the stream ends, validating every code point. At
// EOF a NUL sentinel is appended so peek() reads 0 past the end.
func (parser *Parser) updateBuffer(length int) error {
	if parser.read_handler == nil {
		panic("read handler must be set")
	}

	if parser.rawExhausted() {
		if n := len(parser.buffer); n == 0 || parser.buffer[n-1] != 0 {
			parser.buffer = append(parser.buffer, 0)
			parser.unread++
		}
		return nil
	}

	if parser.unread >= length {
		return nil
	}

	// The first real read decides the encoding.
	if parser.encoding == ANY_ENCODING {
		if err := parser.determineEncoding(); err != nil {
			return err
		}
	}

	// Drop the already-consumed front of the decoded buffer.
	if pos := parser.buffer_pos; pos > 0 {
		if pos == len(parser.buffer) {
			parser.buffer = parser.buffer[:0]
		} else {
			copy(parser.buffer, parser.buffer[pos:])
			parser.buffer = parser.buffer[:len(parser.buffer)-pos]
		}
		parser.buffer_pos = 0
	}

	for parser.unread < length {
		for !parser.eof && len(parser.raw_buffer)-parser.raw_buffer_pos < 4 {
			if err := parser.updateRawBuffer(); err != nil {
				return err
			}
			if parser.eof {
				break
			}
		}
		if parser.raw_buffer_pos == len(parser.raw_buffer) {
			if parser.eof {
				break
			}
			continue
		}

		r, width, ok := parser.decodeRune()
		if width == 0 {
			// A partial sequence: refill, unless the stream ended inside
			// the code point.
			if parser.eof {
				return &ReaderError{Offset: parser.offset, Err: errIncompleteSequence}
			}
			if err := parser.updateRawBuffer(); err != nil {
				return err
			}
			continue
		}
		switch {
		case !ok:
			return &ReaderError{Offset: parser.offset, Value: int(r), Err: errInvalidSequence}
		case forbidden(r):
			return &ReaderError{Offset: parser.offset, Value: int(r), Err: errForbiddenCodePoint}
		case r == 0xFEFF:
			// The stream's leading BOM was consumed during encoding
			// detection; any other one is inside the stream.
			return &ReaderError{Offset: parser.offset, Value: int(r), Err: errMisplacedBOM}
		}

		parser.raw_buffer_pos += width
		parser.offset += width
		parser.buffer = appendRune(parser.buffer, r)
		parser.unread++
	}

	if parser.rawExhausted() {
		parser.buffer = append(parser.buffer, 0)
		parser.unread++
	}
	return nil
}

// formatReaderError builds the ReaderError reported for a malformed byte
// sequence or forbidden code point: problem text, stream offset, and the
// offending value.
func formatReaderError(problem string, offset, value int) error {
	return &ReaderError{Offset: offset, Value: value, Err: errors.New(problem)}
}
