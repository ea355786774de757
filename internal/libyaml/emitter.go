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

// Emitter stage: the event-to-bytes state machine. The Emitter struct
// itself and the state enum live in emitter_state.go; this file holds the
// buffered byte writing, the per-state handlers, event analysis, and the
// scalar writers for each style.

package libyaml

import (
	"bytes"
	"fmt"
)

// flush hands everything buffered to the write handler, transcoding to
// the output encoding first when it isn't UTF-8. The output target must
// have been bound before the first write.
func (emitter *Emitter) flush() error {
	if emitter.write_handler == nil {
		panic("write handler not set")
	}
	if emitter.buffer_pos == 0 {
		return nil
	}
	out := emitter.buffer[:emitter.buffer_pos]
	if emitter.encoding != UTF8_ENCODING && emitter.encoding != ANY_ENCODING {
		out = encodeStream(out, emitter.encoding)
	}
	err := emitter.write_handler(emitter, out)
	emitter.buffer_pos = 0
	return err
}

// flushBuffer adapts flush to the emitter's bool/Problem convention.
func (emitter *Emitter) flushBuffer() bool {
	if err := emitter.flush(); err != nil {
		emitter.ErrorType = WRITER_ERROR
		emitter.Problem = fmt.Sprintf("write error: %v", err)
		return false
	}
	return true
}

// flushIfNeeded flushes when the buffer lacks headroom for one more
// UTF-8 sequence plus slack.
func (emitter *Emitter) flushIfNeeded() bool {
	if emitter.buffer_pos+5 >= len(emitter.buffer) {
		return emitter.flushBuffer()
	}
	return true
}

// put appends one byte, advancing the column.
func (emitter *Emitter) put(value byte) bool {
	if !emitter.flushIfNeeded() {
		return false
	}
	emitter.buffer[emitter.buffer_pos] = value
	emitter.buffer_pos++
	emitter.column++
	return true
}

// putLineBreak appends the configured break and resets column tracking.
func (emitter *Emitter) putLineBreak() bool {
	if !emitter.flushIfNeeded() {
		return false
	}
	switch emitter.line_break {
	case CR_BREAK:
		emitter.buffer[emitter.buffer_pos] = '\r'
		emitter.buffer_pos++
	case LN_BREAK:
		emitter.buffer[emitter.buffer_pos] = '\n'
		emitter.buffer_pos++
	case CRLN_BREAK:
		emitter.buffer[emitter.buffer_pos+0] = '\r'
		emitter.buffer[emitter.buffer_pos+1] = '\n'
		emitter.buffer_pos += 2
	default:
		panic("unknown line break setting")
	}
	if emitter.column == 0 {
		emitter.space_above = true
	}
	emitter.column = 0
	emitter.line++
	emitter.indention = true
	return true
}

// write copies the whole UTF-8 sequence at s[*i] into the buffer and
// advances *i past it. One column regardless of byte width.
func (emitter *Emitter) write(s []byte, i *int) bool {
	if !emitter.flushIfNeeded() {
		return false
	}
	w := width(s[*i])
	if w < 1 || w > 4 {
		panic("unknown character width")
	}
	copy(emitter.buffer[emitter.buffer_pos:], s[*i:*i+w])
	emitter.column++
	emitter.buffer_pos += w
	*i += w
	return true
}

// writeAll writes every character of s.
func (emitter *Emitter) writeAll(s []byte) bool {
	for i := 0; i < len(s); {
		if !emitter.write(s, &i) {
			return false
		}
	}
	return true
}

// writeLineBreak writes the break character at s[*i]: a plain LF becomes
// the configured break, any other break character is copied through.
func (emitter *Emitter) writeLineBreak(s []byte, i *int) bool {
	if s[*i] == '\n' {
		if !emitter.putLineBreak() {
			return false
		}
		*i++
		return true
	}
	if !emitter.write(s, i) {
		return false
	}
	if emitter.column == 0 {
		emitter.space_above = true
	}
	emitter.column = 0
	emitter.line++
	emitter.indention = true
	return true
}

// setEmitterError records the problem and reports failure.
func (emitter *Emitter) setEmitterError(problem string) bool {
	emitter.ErrorType = EMITTER_ERROR
	emitter.Problem = problem
	return false
}

// popEmitState resumes the state saved by the most recent push.
func (emitter *Emitter) popEmitState() {
	emitter.state = emitter.states[len(emitter.states)-1]
	emitter.states = emitter.states[:len(emitter.states)-1]
}

// popIndent restores the indentation level saved by increaseIndent.
func (emitter *Emitter) popIndent() {
	emitter.indent = emitter.indents[len(emitter.indents)-1]
	emitter.indents = emitter.indents[:len(emitter.indents)-1]
}

// hasTrailComments reports whether line/foot/tail comments are pending on
// the current event, which forces the trail-item flow states.
func (emitter *Emitter) hasTrailComments() bool {
	return len(emitter.LineComment)+len(emitter.FootComment)+len(emitter.TailComment) > 0
}

// Emit queues event and drains the queue as far as the lookahead rules
// allow, driving the state machine for each drained event.
func (emitter *Emitter) Emit(event *Event) bool {
	emitter.events = append(emitter.events, *event)
	for !emitter.needMoreEvents() {
		event := &emitter.events[emitter.events_head]
		if !emitter.analyzeEvent(event) {
			return false
		}
		if !emitter.stateMachine(event) {
			return false
		}
		event.Delete()
		emitter.events_head++
	}
	return true
}

// EmitEvent wraps Emit's bool/Problem convention in a Go error, for callers
// that want to propagate the failure rather than inspect ErrorType/Problem
// themselves.
func (emitter *Emitter) EmitEvent(event *Event) error {
	if emitter.Emit(event) {
		return nil
	}
	msg := emitter.Problem
	if msg == "" {
		msg = "unknown problem generating YAML content"
	}
	return EmitterError{Message: msg}
}

// needMoreEvents reports whether the queue's front event still needs
// lookahead before it can be emitted: one extra event for
// DOCUMENT-START, two for SEQUENCE-START, three for MAPPING-START (the
// empty-collection and simple-key checks peek that far).
func (emitter *Emitter) needMoreEvents() bool {
	if emitter.events_head == len(emitter.events) {
		return true
	}
	var accumulate int
	switch emitter.events[emitter.events_head].Type {
	case DOCUMENT_START_EVENT:
		accumulate = 1
	case SEQUENCE_START_EVENT:
		accumulate = 2
	case MAPPING_START_EVENT:
		accumulate = 3
	default:
		return false
	}
	if len(emitter.events)-emitter.events_head > accumulate {
		return false
	}
	// Enough once the whole subtree is queued.
	var level int
	for i := emitter.events_head; i < len(emitter.events); i++ {
		switch emitter.events[i].Type {
		case STREAM_START_EVENT, DOCUMENT_START_EVENT, SEQUENCE_START_EVENT, MAPPING_START_EVENT:
			level++
		case STREAM_END_EVENT, DOCUMENT_END_EVENT, SEQUENCE_END_EVENT, MAPPING_END_EVENT:
			level--
		}
		if level == 0 {
			return false
		}
	}
	return true
}

// appendTagDirective installs one %TAG mapping for the current document,
// rejecting repeated handles unless they are the shadowable defaults.
func (emitter *Emitter) appendTagDirective(value *TagDirective, allow_duplicates bool) bool {
	for i := range emitter.tag_directives {
		if bytes.Equal(value.handle, emitter.tag_directives[i].handle) {
			if allow_duplicates {
				return true
			}
			return emitter.setEmitterError("duplicate %TAG directive")
		}
	}
	copied := TagDirective{
		handle: append([]byte(nil), value.handle...),
		prefix: append([]byte(nil), value.prefix...),
	}
	emitter.tag_directives = append(emitter.tag_directives, copied)
	return true
}

// increaseIndentCompact pushes the current indent and computes the next
// level. compact_seq is only ever true for sequence nodes, where the
// "- " indicator itself counts as two columns of the indentation.
func (emitter *Emitter) increaseIndentCompact(flow, indentless bool, compact_seq bool) bool {
	emitter.indents = append(emitter.indents, emitter.indent)
	switch {
	case emitter.indent < 0:
		if flow {
			emitter.indent = emitter.BestIndent
		} else {
			emitter.indent = 0
		}
	case !indentless:
		if emitter.states[len(emitter.states)-1] == EMIT_BLOCK_SEQUENCE_ITEM_STATE {
			// The first indent inside a sequence only clears the "- "
			// indicator.
			emitter.indent += 2
		} else {
			// Align everything else to a multiple of the chosen indent.
			emitter.indent = emitter.BestIndent * ((emitter.indent + emitter.BestIndent) / emitter.BestIndent)
			if compact_seq {
				emitter.indent -= 2
			}
		}
	}
	return true
}

// increaseIndent is increaseIndentCompact without compact sequence
// handling, the common case.
func (emitter *Emitter) increaseIndent(flow, indentless bool) bool {
	return emitter.increaseIndentCompact(flow, indentless, false)
}

// processLineComment is processLineCommentLinebreak without the forced
// trailing break.
func (emitter *Emitter) processLineComment() bool {
	return emitter.processLineCommentLinebreak(false)
}

// emitterStateTable maps each emitter state to its handler; flag-taking
// handlers are bound through adapters.
var emitterStateTable = map[EmitterState]func(*Emitter, *Event) bool{
	EMIT_STREAM_START_STATE: (*Emitter).emitStreamStart,
	EMIT_FIRST_DOCUMENT_START_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitDocumentStart(ev, true)
	},
	EMIT_DOCUMENT_START_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitDocumentStart(ev, false)
	},
	EMIT_DOCUMENT_CONTENT_STATE: (*Emitter).emitDocumentContent,
	EMIT_DOCUMENT_END_STATE:     (*Emitter).emitDocumentEnd,
	EMIT_FLOW_SEQUENCE_FIRST_ITEM_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowSequenceItem(ev, true, false)
	},
	EMIT_FLOW_SEQUENCE_TRAIL_ITEM_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowSequenceItem(ev, false, true)
	},
	EMIT_FLOW_SEQUENCE_ITEM_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowSequenceItem(ev, false, false)
	},
	EMIT_FLOW_MAPPING_FIRST_KEY_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowMappingKey(ev, true, false)
	},
	EMIT_FLOW_MAPPING_TRAIL_KEY_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowMappingKey(ev, false, true)
	},
	EMIT_FLOW_MAPPING_KEY_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowMappingKey(ev, false, false)
	},
	EMIT_FLOW_MAPPING_SIMPLE_VALUE_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowMappingValue(ev, true)
	},
	EMIT_FLOW_MAPPING_VALUE_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitFlowMappingValue(ev, false)
	},
	EMIT_BLOCK_SEQUENCE_FIRST_ITEM_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockSequenceItem(ev, true)
	},
	EMIT_BLOCK_SEQUENCE_ITEM_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockSequenceItem(ev, false)
	},
	EMIT_BLOCK_MAPPING_FIRST_KEY_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockMappingKey(ev, true)
	},
	EMIT_BLOCK_MAPPING_KEY_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockMappingKey(ev, false)
	},
	EMIT_BLOCK_MAPPING_SIMPLE_VALUE_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockMappingValue(ev, true)
	},
	EMIT_BLOCK_MAPPING_VALUE_STATE: func(e *Emitter, ev *Event) bool {
		return e.emitBlockMappingValue(ev, false)
	},
	EMIT_END_STATE: func(e *Emitter, ev *Event) bool {
		return e.setEmitterError("expected nothing after STREAM-END")
	},
}

func (emitter *Emitter) stateMachine(event *Event) bool {
	fn, ok := emitterStateTable[emitter.state]
	if !ok {
		panic("invalid emitter state")
	}
	return fn(emitter, event)
}

// emitStreamStart settles the stream-wide settings (encoding, indent,
// width, line break) and writes the BOM for non-UTF-8 output.
func (emitter *Emitter) emitStreamStart(event *Event) bool {
	if event.Type != STREAM_START_EVENT {
		return emitter.setEmitterError("expected STREAM-START")
	}
	if emitter.encoding == ANY_ENCODING {
		emitter.encoding = event.encoding
		if emitter.encoding == ANY_ENCODING {
			emitter.encoding = UTF8_ENCODING
		}
	}
	if emitter.BestIndent < 2 || emitter.BestIndent > 9 {
		emitter.BestIndent = 2
	}
	if emitter.best_width >= 0 && emitter.best_width <= emitter.BestIndent*2 {
		emitter.best_width = 80
	}
	if emitter.best_width < 0 {
		emitter.best_width = 1<<31 - 1
	}
	if emitter.line_break == ANY_BREAK {
		emitter.line_break = LN_BREAK
	}

	emitter.indent = -1
	emitter.line = 0
	emitter.column = 0
	emitter.whitespace = true
	emitter.indention = true
	emitter.space_above = true
	emitter.foot_indent = -1

	if emitter.encoding != UTF8_ENCODING {
		if !emitter.writeBom() {
			return false
		}
	}
	emitter.state = EMIT_FIRST_DOCUMENT_START_STATE
	return true
}

// emitDocumentStart writes a document's directives and "---" marker, or
// finishes the stream on STREAM-END.
func (emitter *Emitter) emitDocumentStart(event *Event, first bool) bool {
	switch event.Type {
	case DOCUMENT_START_EVENT:
		if event.version_directive != nil {
			if !emitter.analyzeVersionDirective(event.version_directive) {
				return false
			}
		}
		for i := range event.tag_directives {
			td := &event.tag_directives[i]
			if !emitter.analyzeTagDirective(td) {
				return false
			}
			if !emitter.appendTagDirective(td, false) {
				return false
			}
		}
		for i := range default_tag_directives {
			if !emitter.appendTagDirective(&default_tag_directives[i], true) {
				return false
			}
		}

		implicit := event.Implicit
		if !first || emitter.canonical {
			implicit = false
		}

		if emitter.OpenEnded && (event.version_directive != nil || len(event.tag_directives) > 0) {
			if !emitter.writeIndicator([]byte("..."), true, false, false) {
				return false
			}
			if !emitter.writeIndent() {
				return false
			}
		}

		if event.version_directive != nil {
			implicit = false
			if !emitter.writeIndicator([]byte("%YAML"), true, false, false) {
				return false
			}
			if !emitter.writeIndicator([]byte("1.1"), true, false, false) {
				return false
			}
			if !emitter.writeIndent() {
				return false
			}
		}

		if len(event.tag_directives) > 0 {
			implicit = false
			for i := range event.tag_directives {
				td := &event.tag_directives[i]
				if !emitter.writeIndicator([]byte("%TAG"), true, false, false) {
					return false
				}
				if !emitter.writeTagHandle(td.handle) {
					return false
				}
				if !emitter.writeTagContent(td.prefix, true) {
					return false
				}
				if !emitter.writeIndent() {
					return false
				}
			}
		}

		if emitter.checkEmptyDocument() {
			implicit = false
		}
		if !implicit {
			if !emitter.writeIndent() {
				return false
			}
			if !emitter.writeIndicator([]byte("---"), true, false, false) {
				return false
			}
			if !emitter.writeIndent() {
				return false
			}
		}

		if len(emitter.HeadComment) > 0 {
			if !emitter.processHeadComment() {
				return false
			}
			if !emitter.putLineBreak() {
				return false
			}
		}

		emitter.state = EMIT_DOCUMENT_CONTENT_STATE
		return true

	case STREAM_END_EVENT:
		if emitter.OpenEnded {
			if !emitter.writeIndicator([]byte("..."), true, false, false) {
				return false
			}
			if !emitter.writeIndent() {
				return false
			}
		}
		if !emitter.flushBuffer() {
			return false
		}
		emitter.state = EMIT_END_STATE
		return true
	}

	return emitter.setEmitterError("expected DOCUMENT-START or STREAM-END")
}

// emitDocumentContent emits the document's root node with its
// surrounding comments.
func (emitter *Emitter) emitDocumentContent(event *Event) bool {
	emitter.states = append(emitter.states, EMIT_DOCUMENT_END_STATE)

	if !emitter.processHeadComment() {
		return false
	}
	if !emitter.emitNode(event, true, false, false, false) {
		return false
	}
	if !emitter.processLineComment() {
		return false
	}
	return emitter.processFootComment()
}

// emitDocumentEnd writes the optional "..." marker and resets the
// per-document tag directive table.
func (emitter *Emitter) emitDocumentEnd(event *Event) bool {
	if event.Type != DOCUMENT_END_EVENT {
		return emitter.setEmitterError("expected DOCUMENT-END")
	}
	// Force foot separation for document-level foot comments.
	emitter.foot_indent = 0
	if !emitter.processFootComment() {
		return false
	}
	emitter.foot_indent = -1
	if !emitter.writeIndent() {
		return false
	}
	if !event.Implicit {
		if !emitter.writeIndicator([]byte("..."), true, false, false) {
			return false
		}
		if !emitter.writeIndent() {
			return false
		}
	}
	if !emitter.flushBuffer() {
		return false
	}
	emitter.state = EMIT_DOCUMENT_START_STATE
	emitter.tag_directives = emitter.tag_directives[:0]
	return true
}

// emitFlowSequenceItem writes one "[a, b]" item, or the closing bracket
// on SEQUENCE-END. trail marks an item that had to flush comments after
// its comma.
func (emitter *Emitter) emitFlowSequenceItem(event *Event, first, trail bool) bool {
	if first {
		if !emitter.writeIndicator([]byte{'['}, true, true, false) {
			return false
		}
		if !emitter.increaseIndent(true, false) {
			return false
		}
		emitter.flow_level++
	}

	if event.Type == SEQUENCE_END_EVENT {
		if emitter.canonical && !first && !trail {
			if !emitter.writeIndicator([]byte{','}, false, false, false) {
				return false
			}
		}
		emitter.flow_level--
		emitter.popIndent()
		if emitter.column == 0 || emitter.canonical && !first {
			if !emitter.writeIndent() {
				return false
			}
		}
		if !emitter.writeIndicator([]byte{']'}, false, false, false) {
			return false
		}
		if !emitter.processLineComment() {
			return false
		}
		if !emitter.processFootComment() {
			return false
		}
		emitter.popEmitState()
		return true
	}

	if !first && !trail {
		if !emitter.writeIndicator([]byte{','}, false, false, false) {
			return false
		}
	}

	if !emitter.processHeadComment() {
		return false
	}
	if emitter.column == 0 {
		if !emitter.writeIndent() {
			return false
		}
	}
	if emitter.canonical || emitter.column > emitter.best_width {
		if !emitter.writeIndent() {
			return false
		}
	}

	if emitter.hasTrailComments() {
		emitter.states = append(emitter.states, EMIT_FLOW_SEQUENCE_TRAIL_ITEM_STATE)
	} else {
		emitter.states = append(emitter.states, EMIT_FLOW_SEQUENCE_ITEM_STATE)
	}
	if !emitter.emitNode(event, false, true, false, false) {
		return false
	}
	if emitter.hasTrailComments() {
		if !emitter.writeIndicator([]byte{','}, false, false, false) {
			return false
		}
	}
	if !emitter.processLineComment() {
		return false
	}
	return emitter.processFootComment()
}

// emitFlowMappingKey writes one "{k: v}" key, or the closing brace on
// MAPPING-END.
func (emitter *Emitter) emitFlowMappingKey(event *Event, first, trail bool) bool {
	if first {
		if !emitter.writeIndicator([]byte{'{'}, true, true, false) {
			return false
		}
		if !emitter.increaseIndent(true, false) {
			return false
		}
		emitter.flow_level++
	}

	if event.Type == MAPPING_END_EVENT {
		if (emitter.canonical || len(emitter.HeadComment)+len(emitter.FootComment)+len(emitter.TailComment) > 0) && !first && !trail {
			if !emitter.writeIndicator([]byte{','}, false, false, false) {
				return false
			}
		}
		if !emitter.processHeadComment() {
			return false
		}
		emitter.flow_level--
		emitter.popIndent()
		if emitter.canonical && !first {
			if !emitter.writeIndent() {
				return false
			}
		}
		if !emitter.writeIndicator([]byte{'}'}, false, false, false) {
			return false
		}
		if !emitter.processLineComment() {
			return false
		}
		if !emitter.processFootComment() {
			return false
		}
		emitter.popEmitState()
		return true
	}

	if !first && !trail {
		if !emitter.writeIndicator([]byte{','}, false, false, false) {
			return false
		}
	}

	if !emitter.processHeadComment() {
		return false
	}
	if emitter.column == 0 {
		if !emitter.writeIndent() {
			return false
		}
	}
	if emitter.canonical || emitter.column > emitter.best_width {
		if !emitter.writeIndent() {
			return false
		}
	}

	if !emitter.canonical && emitter.checkSimpleKey() {
		emitter.states = append(emitter.states, EMIT_FLOW_MAPPING_SIMPLE_VALUE_STATE)
		return emitter.emitNode(event, false, false, true, true)
	}
	if !emitter.writeIndicator([]byte{'?'}, true, false, false) {
		return false
	}
	emitter.states = append(emitter.states, EMIT_FLOW_MAPPING_VALUE_STATE)
	return emitter.emitNode(event, false, false, true, false)
}

// emitFlowMappingValue writes the ": value" half of a flow pair.
func (emitter *Emitter) emitFlowMappingValue(event *Event, simple bool) bool {
	if simple {
		if !emitter.writeIndicator([]byte{':'}, false, false, false) {
			return false
		}
	} else {
		if emitter.canonical || emitter.column > emitter.best_width {
			if !emitter.writeIndent() {
				return false
			}
		}
		if !emitter.writeIndicator([]byte{':'}, true, false, false) {
			return false
		}
	}
	if emitter.hasTrailComments() {
		emitter.states = append(emitter.states, EMIT_FLOW_MAPPING_TRAIL_KEY_STATE)
	} else {
		emitter.states = append(emitter.states, EMIT_FLOW_MAPPING_KEY_STATE)
	}
	if !emitter.emitNode(event, false, false, true, false) {
		return false
	}
	if emitter.hasTrailComments() {
		if !emitter.writeIndicator([]byte{','}, false, false, false) {
			return false
		}
	}
	if !emitter.processLineComment() {
		return false
	}
	return emitter.processFootComment()
}

// emitBlockSequenceItem writes one "- item", or unwinds on SEQUENCE-END.
func (emitter *Emitter) emitBlockSequenceItem(event *Event, first bool) bool {
	if first {
		// Compact indentation applies when this sequence is a mapping
		// value that starts on the key's line (or mid-line) and "- " is
		// configured to count as indentation.
		seq := emitter.mapping_context && (emitter.column == 0 || !emitter.indention) &&
			emitter.CompactSequenceIndent
		if !emitter.increaseIndentCompact(false, false, seq) {
			return false
		}
	}
	if event.Type == SEQUENCE_END_EVENT {
		emitter.popIndent()
		emitter.popEmitState()
		return true
	}
	if !emitter.processHeadComment() {
		return false
	}
	if !emitter.writeIndent() {
		return false
	}
	if !emitter.writeIndicator([]byte{'-'}, true, false, true) {
		return false
	}
	emitter.states = append(emitter.states, EMIT_BLOCK_SEQUENCE_ITEM_STATE)
	if !emitter.emitNode(event, false, true, false, false) {
		return false
	}
	if !emitter.processLineComment() {
		return false
	}
	return emitter.processFootComment()
}

// emitBlockMappingKey writes one block mapping key (simple or "?"-form),
// or unwinds on MAPPING-END.
func (emitter *Emitter) emitBlockMappingKey(event *Event, first bool) bool {
	if first {
		if !emitter.increaseIndent(false, false) {
			return false
		}
	}
	if !emitter.processHeadComment() {
		return false
	}
	if event.Type == MAPPING_END_EVENT {
		emitter.popIndent()
		emitter.popEmitState()
		return true
	}
	if !emitter.writeIndent() {
		return false
	}
	if len(emitter.LineComment) > 0 {
		// The scanner attaches line comments to values; one landing on a
		// key is stashed and rendered when the value's shape is known.
		emitter.key_line_comment = emitter.LineComment
		emitter.LineComment = nil
	}
	if emitter.checkSimpleKey() {
		emitter.states = append(emitter.states, EMIT_BLOCK_MAPPING_SIMPLE_VALUE_STATE)
		if !emitter.emitNode(event, false, false, true, true) {
			return false
		}
		if event.Type == ALIAS_EVENT {
			// An alias key needs a space before its ":".
			return emitter.put(' ')
		}
		return true
	}
	if !emitter.writeIndicator([]byte{'?'}, true, false, true) {
		return false
	}
	emitter.states = append(emitter.states, EMIT_BLOCK_MAPPING_VALUE_STATE)
	return emitter.emitNode(event, false, false, true, false)
}

// emitBlockMappingValue writes the ": value" half of a block pair,
// placing any stashed key line comment where it renders best.
func (emitter *Emitter) emitBlockMappingValue(event *Event, simple bool) bool {
	if simple {
		if !emitter.writeIndicator([]byte{':'}, false, false, false) {
			return false
		}
	} else {
		if !emitter.writeIndent() {
			return false
		}
		if !emitter.writeIndicator([]byte{':'}, true, false, true) {
			return false
		}
	}
	if len(emitter.key_line_comment) > 0 {
		// A key's stashed line comment renders with a scalar value when
		// that value has none of its own, or right here when an indented
		// block follows.
		if event.Type == SCALAR_EVENT {
			if len(emitter.LineComment) == 0 {
				// Both can't render; the value's own comment would win.
				emitter.LineComment = emitter.key_line_comment
				emitter.key_line_comment = nil
			}
		} else if event.SequenceStyle() != FLOW_SEQUENCE_STYLE && (event.Type == MAPPING_START_EVENT || event.Type == SEQUENCE_START_EVENT) {
			emitter.LineComment, emitter.key_line_comment = emitter.key_line_comment, emitter.LineComment
			if !emitter.processLineComment() {
				return false
			}
			emitter.LineComment, emitter.key_line_comment = emitter.key_line_comment, emitter.LineComment
		}
	}
	emitter.states = append(emitter.states, EMIT_BLOCK_MAPPING_KEY_STATE)
	if !emitter.emitNode(event, false, false, true, false) {
		return false
	}
	if !emitter.processLineComment() {
		return false
	}
	return emitter.processFootComment()
}

// emitNode records the context flags and dispatches by event type.
func (emitter *Emitter) emitNode(event *Event,
	root bool, sequence bool, mapping bool, simple_key bool,
) bool {
	emitter.root_context = root
	emitter.sequence_context = sequence
	emitter.mapping_context = mapping
	emitter.simple_key_context = simple_key

	switch event.Type {
	case ALIAS_EVENT:
		return emitter.emitAlias(event)
	case SCALAR_EVENT:
		return emitter.emitScalar(event)
	case SEQUENCE_START_EVENT:
		return emitter.emitSequenceStart(event)
	case MAPPING_START_EVENT:
		return emitter.emitMappingStart(event)
	}
	return emitter.setEmitterError(
		fmt.Sprintf("expected SCALAR, SEQUENCE-START, MAPPING-START, or ALIAS, but got %v", event.Type))
}

// emitAlias writes "*anchor".
func (emitter *Emitter) emitAlias(event *Event) bool {
	if !emitter.processAnchor() {
		return false
	}
	emitter.popEmitState()
	return true
}

// emitScalar writes one scalar with its properties, at a temporary
// deeper indent for any wrapped continuation lines.
func (emitter *Emitter) emitScalar(event *Event) bool {
	if !emitter.selectScalarStyle(event) {
		return false
	}
	if !emitter.processAnchor() {
		return false
	}
	if !emitter.processTag() {
		return false
	}
	if !emitter.increaseIndent(true, false) {
		return false
	}
	if !emitter.processScalar() {
		return false
	}
	emitter.popIndent()
	emitter.popEmitState()
	return true
}

// emitSequenceStart picks flow or block for the sequence; nested-in-flow,
// canonical, and empty sequences all force flow.
func (emitter *Emitter) emitSequenceStart(event *Event) bool {
	if !emitter.processAnchor() {
		return false
	}
	if !emitter.processTag() {
		return false
	}
	if emitter.flow_level > 0 || emitter.canonical || event.SequenceStyle() == FLOW_SEQUENCE_STYLE ||
		emitter.checkEmptySequence() {
		emitter.state = EMIT_FLOW_SEQUENCE_FIRST_ITEM_STATE
	} else {
		emitter.state = EMIT_BLOCK_SEQUENCE_FIRST_ITEM_STATE
	}
	return true
}

// emitMappingStart is emitSequenceStart's mapping counterpart.
func (emitter *Emitter) emitMappingStart(event *Event) bool {
	if !emitter.processAnchor() {
		return false
	}
	if !emitter.processTag() {
		return false
	}
	if emitter.flow_level > 0 || emitter.canonical || event.MappingStyle() == FLOW_MAPPING_STYLE ||
		emitter.checkEmptyMapping() {
		emitter.state = EMIT_FLOW_MAPPING_FIRST_KEY_STATE
	} else {
		emitter.state = EMIT_BLOCK_MAPPING_FIRST_KEY_STATE
	}
	return true
}

// checkEmptyDocument would detect a document holding only an empty
// scalar; no caller produces one that needs the distinction.
func (emitter *Emitter) checkEmptyDocument() bool {
	return false
}

// checkEmptySequence peeks one event ahead for an immediately closed
// sequence.
func (emitter *Emitter) checkEmptySequence() bool {
	if len(emitter.events)-emitter.events_head < 2 {
		return false
	}
	return emitter.events[emitter.events_head].Type == SEQUENCE_START_EVENT &&
		emitter.events[emitter.events_head+1].Type == SEQUENCE_END_EVENT
}

// checkEmptyMapping peeks one event ahead for an immediately closed
// mapping.
func (emitter *Emitter) checkEmptyMapping() bool {
	if len(emitter.events)-emitter.events_head < 2 {
		return false
	}
	return emitter.events[emitter.events_head].Type == MAPPING_START_EVENT &&
		emitter.events[emitter.events_head+1].Type == MAPPING_END_EVENT
}

// checkSimpleKey reports whether the queued node can render as a simple
// key: single line, all properties included, at most 128 columns.
func (emitter *Emitter) checkSimpleKey() bool {
	length := 0
	switch emitter.events[emitter.events_head].Type {
	case ALIAS_EVENT:
		length += len(emitter.anchor_data.anchor)
	case SCALAR_EVENT:
		if emitter.scalar_data.multiline {
			return false
		}
		length += len(emitter.anchor_data.anchor) +
			len(emitter.tag_data.handle) +
			len(emitter.tag_data.suffix) +
			len(emitter.scalar_data.value)
	case SEQUENCE_START_EVENT:
		if !emitter.checkEmptySequence() {
			return false
		}
		length += len(emitter.anchor_data.anchor) +
			len(emitter.tag_data.handle) +
			len(emitter.tag_data.suffix)
	case MAPPING_START_EVENT:
		if !emitter.checkEmptyMapping() {
			return false
		}
		length += len(emitter.anchor_data.anchor) +
			len(emitter.tag_data.handle) +
			len(emitter.tag_data.suffix)
	default:
		return false
	}
	return length <= 128
}

// selectScalarStyle settles the style the scalar actually renders in,
// degrading the requested style until the analyzed value permits it:
// plain falls to single-quoted, single-quoted and the block styles fall
// to double-quoted.
func (emitter *Emitter) selectScalarStyle(event *Event) bool {
	no_tag := len(emitter.tag_data.handle) == 0 && len(emitter.tag_data.suffix) == 0
	if no_tag && !event.Implicit && !event.quoted_implicit {
		return emitter.setEmitterError("neither tag nor implicit flags are specified")
	}

	style := event.ScalarStyle()
	if style == ANY_SCALAR_STYLE {
		style = PLAIN_SCALAR_STYLE
	}
	if emitter.canonical {
		style = DOUBLE_QUOTED_SCALAR_STYLE
	}
	if emitter.simple_key_context && emitter.scalar_data.multiline {
		style = DOUBLE_QUOTED_SCALAR_STYLE
	}

	if style == PLAIN_SCALAR_STYLE {
		if emitter.flow_level > 0 && !emitter.scalar_data.flow_plain_allowed ||
			emitter.flow_level == 0 && !emitter.scalar_data.block_plain_allowed {
			style = SINGLE_QUOTED_SCALAR_STYLE
		}
		if len(emitter.scalar_data.value) == 0 && (emitter.flow_level > 0 || emitter.simple_key_context) {
			style = SINGLE_QUOTED_SCALAR_STYLE
		}
		if no_tag && !event.Implicit {
			style = SINGLE_QUOTED_SCALAR_STYLE
		}
	}
	if style == SINGLE_QUOTED_SCALAR_STYLE && !emitter.scalar_data.single_quoted_allowed {
		style = DOUBLE_QUOTED_SCALAR_STYLE
	}
	if style == LITERAL_SCALAR_STYLE || style == FOLDED_SCALAR_STYLE {
		if !emitter.scalar_data.block_allowed || emitter.flow_level > 0 || emitter.simple_key_context {
			style = DOUBLE_QUOTED_SCALAR_STYLE
		}
	}

	if no_tag && !event.quoted_implicit && style != PLAIN_SCALAR_STYLE {
		emitter.tag_data.handle = []byte{'!'}
	}
	emitter.scalar_data.style = style
	return true
}

// processAnchor writes "&anchor" or "*anchor" when one is pending.
func (emitter *Emitter) processAnchor() bool {
	if emitter.anchor_data.anchor == nil {
		return true
	}
	c := []byte{'&'}
	if emitter.anchor_data.alias {
		c[0] = '*'
	}
	if !emitter.writeIndicator(c, true, false, false) {
		return false
	}
	return emitter.writeAnchor(emitter.anchor_data.anchor)
}

// processTag writes the pending tag, in handle form or verbatim "!<...>".
func (emitter *Emitter) processTag() bool {
	if len(emitter.tag_data.handle) == 0 && len(emitter.tag_data.suffix) == 0 {
		return true
	}
	if len(emitter.tag_data.handle) > 0 {
		if !emitter.writeTagHandle(emitter.tag_data.handle) {
			return false
		}
		if len(emitter.tag_data.suffix) > 0 {
			if !emitter.writeTagContent(emitter.tag_data.suffix, false) {
				return false
			}
		}
		return true
	}
	if !emitter.writeIndicator([]byte("!<"), true, false, false) {
		return false
	}
	if !emitter.writeTagContent(emitter.tag_data.suffix, false) {
		return false
	}
	return emitter.writeIndicator([]byte{'>'}, false, false, false)
}

// processScalar writes the pending scalar in the style selectScalarStyle
// settled on.
func (emitter *Emitter) processScalar() bool {
	switch emitter.scalar_data.style {
	case PLAIN_SCALAR_STYLE:
		return emitter.writePlainScalar(emitter.scalar_data.value, !emitter.simple_key_context)
	case SINGLE_QUOTED_SCALAR_STYLE:
		return emitter.writeSingleQuotedScalar(emitter.scalar_data.value, !emitter.simple_key_context)
	case DOUBLE_QUOTED_SCALAR_STYLE:
		return emitter.writeDoubleQuotedScalar(emitter.scalar_data.value, !emitter.simple_key_context)
	case LITERAL_SCALAR_STYLE:
		return emitter.writeLiteralScalar(emitter.scalar_data.value)
	case FOLDED_SCALAR_STYLE:
		return emitter.writeFoldedScalar(emitter.scalar_data.value)
	}
	panic("unknown scalar style")
}

// processHeadComment writes any pending tail comment, then the pending
// head comment.
func (emitter *Emitter) processHeadComment() bool {
	if len(emitter.TailComment) > 0 {
		if !emitter.writeIndent() {
			return false
		}
		if !emitter.writeComment(emitter.TailComment) {
			return false
		}
		emitter.TailComment = emitter.TailComment[:0]
		emitter.foot_indent = emitter.indent
		if emitter.foot_indent < 0 {
			emitter.foot_indent = 0
		}
	}

	if len(emitter.HeadComment) == 0 {
		return true
	}
	if !emitter.writeIndent() {
		return false
	}
	if !emitter.writeComment(emitter.HeadComment) {
		return false
	}
	emitter.HeadComment = emitter.HeadComment[:0]
	return true
}

// processLineCommentLinebreak writes the pending line comment; with
// linebreak set, a break goes out even when no comment is pending, which
// the block scalar writers rely on for their leading newline handling
// (https://github.com/go-yaml/yaml/issues/755).
func (emitter *Emitter) processLineCommentLinebreak(linebreak bool) bool {
	if len(emitter.LineComment) == 0 {
		if linebreak && !emitter.putLineBreak() {
			return false
		}
		return true
	}
	if !emitter.whitespace {
		if !emitter.put(' ') {
			return false
		}
	}
	if !emitter.writeComment(emitter.LineComment) {
		return false
	}
	emitter.LineComment = emitter.LineComment[:0]
	return true
}

// processFootComment writes the pending foot comment, recording the
// indent so a blank separator line follows.
func (emitter *Emitter) processFootComment() bool {
	if len(emitter.FootComment) == 0 {
		return true
	}
	if !emitter.writeIndent() {
		return false
	}
	if !emitter.writeComment(emitter.FootComment) {
		return false
	}
	emitter.FootComment = emitter.FootComment[:0]
	emitter.foot_indent = emitter.indent
	if emitter.foot_indent < 0 {
		emitter.foot_indent = 0
	}
	return true
}

// analyzeVersionDirective accepts only %YAML 1.1.
func (emitter *Emitter) analyzeVersionDirective(version_directive *VersionDirective) bool {
	if version_directive.major != 1 || version_directive.minor != 1 {
		return emitter.setEmitterError("incompatible %YAML directive")
	}
	return true
}

// analyzeTagDirective validates a %TAG directive's handle and prefix.
func (emitter *Emitter) analyzeTagDirective(tag_directive *TagDirective) bool {
	handle := tag_directive.handle
	prefix := tag_directive.prefix
	if len(handle) == 0 {
		return emitter.setEmitterError("tag handle must not be empty")
	}
	if handle[0] != '!' {
		return emitter.setEmitterError("tag handle must start with '!'")
	}
	if handle[len(handle)-1] != '!' {
		return emitter.setEmitterError("tag handle must end with '!'")
	}
	for i := 1; i < len(handle)-1; i += width(handle[i]) {
		if !isAlpha(handle, i) {
			return emitter.setEmitterError("tag handle must contain alphanumerical characters only")
		}
	}
	if len(prefix) == 0 {
		return emitter.setEmitterError("tag prefix must not be empty")
	}
	return true
}

// analyzeAnchor validates an anchor or alias name and stashes it for
// processAnchor.
func (emitter *Emitter) analyzeAnchor(anchor []byte, alias bool) bool {
	if len(anchor) == 0 {
		problem := "anchor value must not be empty"
		if alias {
			problem = "alias value must not be empty"
		}
		return emitter.setEmitterError(problem)
	}
	for i := 0; i < len(anchor); i += width(anchor[i]) {
		if !isAnchorChar(anchor, i) {
			problem := "anchor value must contain valid characters only"
			if alias {
				problem = "alias value must contain valid characters only"
			}
			return emitter.setEmitterError(problem)
		}
	}
	emitter.anchor_data.anchor = anchor
	emitter.anchor_data.alias = alias
	return true
}

// analyzeTag splits a tag into handle+suffix through the active %TAG
// table where a prefix matches, and stashes it for processTag.
func (emitter *Emitter) analyzeTag(tag []byte) bool {
	if len(tag) == 0 {
		return emitter.setEmitterError("tag value must not be empty")
	}
	for i := range emitter.tag_directives {
		td := &emitter.tag_directives[i]
		if bytes.HasPrefix(tag, td.prefix) {
			emitter.tag_data.handle = td.handle
			emitter.tag_data.suffix = tag[len(td.prefix):]
			return true
		}
	}
	emitter.tag_data.suffix = tag
	return true
}

// scalarFlags accumulates what one pass over a scalar's characters found;
// analyzeScalar derives the allowed styles from it.
type scalarFlags struct {
	blockIndicators   bool
	flowIndicators    bool
	lineBreaks        bool
	specialCharacters bool
	tabCharacters     bool

	leadingSpace  bool
	leadingBreak  bool
	trailingSpace bool
	trailingBreak bool
	breakSpace    bool
	spaceBreak    bool
}

// scanScalarFlags classifies every character of value in one pass.
func (emitter *Emitter) scanScalarFlags(value []byte) scalarFlags {
	var f scalarFlags

	if len(value) >= 3 {
		head := string(value[:3])
		if head == "---" || head == "..." {
			f.blockIndicators = true
			f.flowIndicators = true
		}
	}

	precededByWhitespace := true
	var previousSpace, previousBreak bool
	for i, w := 0, 0; i < len(value); i += w {
		w = width(value[i])
		followedByWhitespace := i+w >= len(value) || isBlank(value, i+w)

		if i == 0 {
			switch value[i] {
			case '#', ',', '[', ']', '{', '}', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
				f.flowIndicators = true
				f.blockIndicators = true
			case '?', ':':
				f.flowIndicators = true
				if followedByWhitespace {
					f.blockIndicators = true
				}
			case '-':
				if followedByWhitespace {
					f.flowIndicators = true
					f.blockIndicators = true
				}
			}
		} else {
			switch value[i] {
			case ',', '?', '[', ']', '{', '}':
				f.flowIndicators = true
			case ':':
				f.flowIndicators = true
				if followedByWhitespace {
					f.blockIndicators = true
				}
			case '#':
				if precededByWhitespace {
					f.flowIndicators = true
					f.blockIndicators = true
				}
			}
		}

		if value[i] == '\t' {
			f.tabCharacters = true
		} else if !isPrintable(value, i) || !isASCII(value, i) && !emitter.unicode {
			f.specialCharacters = true
		}
		switch {
		case isSpace(value, i):
			if i == 0 {
				f.leadingSpace = true
			}
			if i+w == len(value) {
				f.trailingSpace = true
			}
			if previousBreak {
				f.breakSpace = true
			}
			previousSpace, previousBreak = true, false
		case isLineBreak(value, i):
			f.lineBreaks = true
			if i == 0 {
				f.leadingBreak = true
			}
			if i+w == len(value) {
				f.trailingBreak = true
			}
			if previousSpace {
				f.spaceBreak = true
			}
			previousSpace, previousBreak = false, true
		default:
			previousSpace, previousBreak = false, false
		}

		precededByWhitespace = isBlankOrZero(value, i)
	}
	return f
}

// analyzeScalar fills scalar_data with the style permissions for value.
func (emitter *Emitter) analyzeScalar(value []byte) bool {
	data := &emitter.scalar_data
	data.value = value

	if len(value) == 0 {
		data.multiline = false
		data.flow_plain_allowed = false
		data.block_plain_allowed = true
		data.single_quoted_allowed = true
		data.block_allowed = false
		return true
	}

	f := emitter.scanScalarFlags(value)

	data.multiline = f.lineBreaks
	data.flow_plain_allowed = true
	data.block_plain_allowed = true
	data.single_quoted_allowed = true
	data.block_allowed = true

	if f.leadingSpace || f.leadingBreak || f.trailingSpace || f.trailingBreak {
		data.flow_plain_allowed = false
		data.block_plain_allowed = false
	}
	if f.trailingSpace {
		data.block_allowed = false
	}
	if f.breakSpace {
		data.flow_plain_allowed = false
		data.block_plain_allowed = false
		data.single_quoted_allowed = false
	}
	if f.spaceBreak || f.tabCharacters || f.specialCharacters {
		data.flow_plain_allowed = false
		data.block_plain_allowed = false
		data.single_quoted_allowed = false
	}
	if f.spaceBreak || f.specialCharacters {
		data.block_allowed = false
	}
	if f.lineBreaks {
		data.flow_plain_allowed = false
		data.block_plain_allowed = false
	}
	if f.flowIndicators {
		data.flow_plain_allowed = false
	}
	if f.blockIndicators {
		data.block_plain_allowed = false
	}
	return true
}

// analyzeEvent validates and stashes the event's anchor, tag, scalar
// value, and comments ahead of the state handler.
func (emitter *Emitter) analyzeEvent(event *Event) bool {
	emitter.anchor_data.anchor = nil
	emitter.tag_data.handle = nil
	emitter.tag_data.suffix = nil
	emitter.scalar_data.value = nil

	if len(event.HeadComment) > 0 {
		emitter.HeadComment = event.HeadComment
	}
	if len(event.LineComment) > 0 {
		emitter.LineComment = event.LineComment
	}
	if len(event.FootComment) > 0 {
		emitter.FootComment = event.FootComment
	}
	if len(event.TailComment) > 0 {
		emitter.TailComment = event.TailComment
	}

	switch event.Type {
	case ALIAS_EVENT:
		return emitter.analyzeAnchor(event.Anchor, true)

	case SCALAR_EVENT:
		if len(event.Anchor) > 0 && !emitter.analyzeAnchor(event.Anchor, false) {
			return false
		}
		if len(event.Tag) > 0 && (emitter.canonical || (!event.Implicit && !event.quoted_implicit)) {
			if !emitter.analyzeTag(event.Tag) {
				return false
			}
		}
		return emitter.analyzeScalar(event.Value)

	case SEQUENCE_START_EVENT, MAPPING_START_EVENT:
		if len(event.Anchor) > 0 && !emitter.analyzeAnchor(event.Anchor, false) {
			return false
		}
		if len(event.Tag) > 0 && (emitter.canonical || !event.Implicit) {
			return emitter.analyzeTag(event.Tag)
		}
	}
	return true
}

// writeBom buffers U+FEFF as UTF-8; flush transcodes it along with the
// rest of the stream.
func (emitter *Emitter) writeBom() bool {
	if !emitter.flushIfNeeded() {
		return false
	}
	pos := emitter.buffer_pos
	emitter.buffer[pos+0] = '\xEF'
	emitter.buffer[pos+1] = '\xBB'
	emitter.buffer[pos+2] = '\xBF'
	emitter.buffer_pos += 3
	return true
}

// writeIndent breaks the line if needed and pads out to the current
// indent, inserting the pending foot separator line.
func (emitter *Emitter) writeIndent() bool {
	indent := emitter.indent
	if indent < 0 {
		indent = 0
	}
	if !emitter.indention || emitter.column > indent || (emitter.column == indent && !emitter.whitespace) {
		if !emitter.putLineBreak() {
			return false
		}
	}
	if emitter.foot_indent == indent {
		if !emitter.putLineBreak() {
			return false
		}
	}
	for emitter.column < indent {
		if !emitter.put(' ') {
			return false
		}
	}
	emitter.whitespace = true
	emitter.space_above = false
	emitter.foot_indent = -1
	return true
}

// writeIndicator writes a syntax indicator, spacing it from the previous
// token as requested and updating the whitespace/indentation flags.
func (emitter *Emitter) writeIndicator(indicator []byte, need_whitespace, is_whitespace, is_indention bool) bool {
	if need_whitespace && !emitter.whitespace {
		if !emitter.put(' ') {
			return false
		}
	}
	if !emitter.writeAll(indicator) {
		return false
	}
	emitter.whitespace = is_whitespace
	emitter.indention = emitter.indention && is_indention
	emitter.OpenEnded = false
	return true
}

func (emitter *Emitter) writeAnchor(value []byte) bool {
	if !emitter.writeAll(value) {
		return false
	}
	emitter.whitespace = false
	emitter.indention = false
	return true
}

func (emitter *Emitter) writeTagHandle(value []byte) bool {
	if !emitter.whitespace {
		if !emitter.put(' ') {
			return false
		}
	}
	if !emitter.writeAll(value) {
		return false
	}
	emitter.whitespace = false
	emitter.indention = false
	return true
}

// hexDigit renders the low nibble of b as an uppercase hex character.
func hexDigit(b byte) byte {
	b &= 0x0F
	if b < 10 {
		return b + '0'
	}
	return b + 'A' - 10
}

// writeTagContent writes a tag suffix or %TAG prefix, percent-encoding
// every byte outside the URI character set.
func (emitter *Emitter) writeTagContent(value []byte, need_whitespace bool) bool {
	if need_whitespace && !emitter.whitespace {
		if !emitter.put(' ') {
			return false
		}
	}
	for i := 0; i < len(value); {
		uriSafe := isAlpha(value, i)
		switch value[i] {
		case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '_', '.', '~', '*', '\'', '(', ')', '[', ']':
			uriSafe = true
		}
		if uriSafe {
			if !emitter.write(value, &i) {
				return false
			}
			continue
		}
		w := width(value[i])
		for k := 0; k < w; k++ {
			octet := value[i]
			i++
			if !emitter.put('%') || !emitter.put(hexDigit(octet>>4)) || !emitter.put(hexDigit(octet)) {
				return false
			}
		}
	}
	emitter.whitespace = false
	emitter.indention = false
	return true
}

func (emitter *Emitter) writePlainScalar(value []byte, allow_breaks bool) bool {
	if len(value) > 0 && !emitter.whitespace {
		if !emitter.put(' ') {
			return false
		}
	}

	spaces := false
	breaks := false
	for i := 0; i < len(value); {
		switch {
		case isSpace(value, i):
			// Fold a single space into a line break when past the target
			// width.
			if allow_breaks && !spaces && emitter.column > emitter.best_width && !isSpace(value, i+1) {
				if !emitter.writeIndent() {
					return false
				}
				i += width(value[i])
			} else if !emitter.write(value, &i) {
				return false
			}
			spaces = true
		case isLineBreak(value, i):
			if !breaks && value[i] == '\n' {
				if !emitter.putLineBreak() {
					return false
				}
			}
			if !emitter.writeLineBreak(value, &i) {
				return false
			}
			breaks = true
		default:
			if breaks {
				if !emitter.writeIndent() {
					return false
				}
			}
			if !emitter.write(value, &i) {
				return false
			}
			emitter.indention = false
			spaces = false
			breaks = false
		}
	}

	if len(value) > 0 {
		emitter.whitespace = false
	}
	emitter.indention = false
	if emitter.root_context {
		emitter.OpenEnded = true
	}
	return true
}

func (emitter *Emitter) writeSingleQuotedScalar(value []byte, allow_breaks bool) bool {
	if !emitter.writeIndicator([]byte{'\''}, true, false, false) {
		return false
	}

	spaces := false
	breaks := false
	for i := 0; i < len(value); {
		switch {
		case isSpace(value, i):
			if allow_breaks && !spaces && emitter.column > emitter.best_width && i > 0 && i < len(value)-1 && !isSpace(value, i+1) {
				if !emitter.writeIndent() {
					return false
				}
				i += width(value[i])
			} else if !emitter.write(value, &i) {
				return false
			}
			spaces = true
		case isLineBreak(value, i):
			if !breaks && value[i] == '\n' {
				if !emitter.putLineBreak() {
					return false
				}
			}
			if !emitter.writeLineBreak(value, &i) {
				return false
			}
			breaks = true
		default:
			if breaks {
				if !emitter.writeIndent() {
					return false
				}
			}
			// '' is the only escape this style has.
			if value[i] == '\'' {
				if !emitter.put('\'') {
					return false
				}
			}
			if !emitter.write(value, &i) {
				return false
			}
			emitter.indention = false
			spaces = false
			breaks = false
		}
	}
	if !emitter.writeIndicator([]byte{'\''}, false, false, false) {
		return false
	}
	emitter.whitespace = false
	emitter.indention = false
	return true
}

// writeEscapedRune writes one code point in double-quoted escape form:
// the named escapes where they exist, \xXX/\uXXXX/\UXXXXXXXX otherwise.
func (emitter *Emitter) writeEscapedRune(v rune) bool {
	if !emitter.put('\\') {
		return false
	}
	var short byte
	switch v {
	case 0x00:
		short = '0'
	case 0x07:
		short = 'a'
	case 0x08:
		short = 'b'
	case 0x09:
		short = 't'
	case 0x0A:
		short = 'n'
	case 0x0B:
		short = 'v'
	case 0x0C:
		short = 'f'
	case 0x0D:
		short = 'r'
	case 0x1B:
		short = 'e'
	case 0x22:
		short = '"'
	case 0x5C:
		short = '\\'
	case 0x85:
		short = 'N'
	case 0xA0:
		short = '_'
	case 0x2028:
		short = 'L'
	case 0x2029:
		short = 'P'
	}
	if short != 0 {
		return emitter.put(short)
	}

	var marker byte
	var digits int
	switch {
	case v <= 0xFF:
		marker, digits = 'x', 2
	case v <= 0xFFFF:
		marker, digits = 'u', 4
	default:
		marker, digits = 'U', 8
	}
	if !emitter.put(marker) {
		return false
	}
	for k := (digits - 1) * 4; k >= 0; k -= 4 {
		if !emitter.put(hexDigit(byte(v >> uint(k)))) {
			return false
		}
	}
	return true
}

func (emitter *Emitter) writeDoubleQuotedScalar(value []byte, allow_breaks bool) bool {
	if !emitter.writeIndicator([]byte{'"'}, true, false, false) {
		return false
	}

	spaces := false
	for i := 0; i < len(value); {
		needsEscape := !isPrintable(value, i) || (!emitter.unicode && !isASCII(value, i)) ||
			isBOM(value, i) || isLineBreak(value, i) ||
			value[i] == '"' || value[i] == '\\'

		switch {
		case needsEscape:
			v, w, _ := decodeUTF8(value[i:])
			i += w
			if !emitter.writeEscapedRune(v) {
				return false
			}
			spaces = false
		case isSpace(value, i):
			if allow_breaks && !spaces && emitter.column > emitter.best_width && i > 0 && i < len(value)-1 {
				if !emitter.writeIndent() {
					return false
				}
				if isSpace(value, i+1) {
					// Protect the following space from the fold.
					if !emitter.put('\\') {
						return false
					}
				}
				i += width(value[i])
			} else if !emitter.write(value, &i) {
				return false
			}
			spaces = true
		default:
			if !emitter.write(value, &i) {
				return false
			}
			spaces = false
		}
	}
	if !emitter.writeIndicator([]byte{'"'}, false, false, false) {
		return false
	}
	emitter.whitespace = false
	emitter.indention = false
	return true
}

// writeBlockScalarHints writes the indentation and chomping indicators a
// "|" or ">" header needs for this value.
func (emitter *Emitter) writeBlockScalarHints(value []byte) bool {
	if isSpace(value, 0) || isLineBreak(value, 0) {
		indent_hint := []byte{'0' + byte(emitter.BestIndent)}
		if !emitter.writeIndicator(indent_hint, false, false, false) {
			return false
		}
	}

	emitter.OpenEnded = false

	var chomp_hint [1]byte
	if len(value) == 0 {
		chomp_hint[0] = '-'
	} else {
		i := len(value) - 1
		for value[i]&0xC0 == 0x80 {
			i--
		}
		if !isLineBreak(value, i) {
			chomp_hint[0] = '-'
		} else if i == 0 {
			chomp_hint[0] = '+'
			emitter.OpenEnded = true
		} else {
			i--
			for value[i]&0xC0 == 0x80 {
				i--
			}
			if isLineBreak(value, i) {
				chomp_hint[0] = '+'
				emitter.OpenEnded = true
			}
		}
	}
	if chomp_hint[0] != 0 {
		if !emitter.writeIndicator(chomp_hint[:], false, false, false) {
			return false
		}
	}
	return true
}

func (emitter *Emitter) writeLiteralScalar(value []byte) bool {
	if !emitter.writeIndicator([]byte{'|'}, true, false, false) {
		return false
	}
	if !emitter.writeBlockScalarHints(value) {
		return false
	}
	if !emitter.processLineCommentLinebreak(true) {
		return false
	}
	emitter.whitespace = true
	breaks := true
	for i := 0; i < len(value); {
		if isLineBreak(value, i) {
			if !emitter.writeLineBreak(value, &i) {
				return false
			}
			breaks = true
		} else {
			if breaks {
				if !emitter.writeIndent() {
					return false
				}
			}
			if !emitter.write(value, &i) {
				return false
			}
			emitter.indention = false
			breaks = false
		}
	}
	return true
}

func (emitter *Emitter) writeFoldedScalar(value []byte) bool {
	if !emitter.writeIndicator([]byte{'>'}, true, false, false) {
		return false
	}
	if !emitter.writeBlockScalarHints(value) {
		return false
	}
	if !emitter.processLineCommentLinebreak(true) {
		return false
	}

	emitter.whitespace = true

	breaks := true
	leading_spaces := true
	for i := 0; i < len(value); {
		if isLineBreak(value, i) {
			// An extra break keeps a fold from eating the paragraph
			// separator, unless blank lines follow anyway.
			if !breaks && !leading_spaces && value[i] == '\n' {
				k := 0
				for isLineBreak(value, k) {
					k += width(value[k])
				}
				if !isBlankOrZero(value, k) {
					if !emitter.putLineBreak() {
						return false
					}
				}
			}
			if !emitter.writeLineBreak(value, &i) {
				return false
			}
			breaks = true
		} else {
			if breaks {
				if !emitter.writeIndent() {
					return false
				}
				leading_spaces = isBlank(value, i)
			}
			if !breaks && isSpace(value, i) && !isSpace(value, i+1) && emitter.column > emitter.best_width {
				if !emitter.writeIndent() {
					return false
				}
				i += width(value[i])
			} else if !emitter.write(value, &i) {
				return false
			}
			emitter.indention = false
			breaks = false
		}
	}
	return true
}

// writeComment writes comment text, prefixing "# " onto lines that don't
// already carry their own pound.
func (emitter *Emitter) writeComment(comment []byte) bool {
	breaks := false
	pound := false
	for i := 0; i < len(comment); {
		if isLineBreak(comment, i) {
			if !emitter.writeLineBreak(comment, &i) {
				return false
			}
			breaks = true
			pound = false
		} else {
			if breaks && !emitter.writeIndent() {
				return false
			}
			if !pound {
				if comment[i] != '#' && (!emitter.put('#') || !emitter.put(' ')) {
					return false
				}
				pound = true
			}
			if !emitter.write(comment, &i) {
				return false
			}
			emitter.indention = false
			breaks = false
		}
	}
	if !breaks && !emitter.putLineBreak() {
		return false
	}

	emitter.whitespace = true
	return true
}
