//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
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

package libyaml

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Serializer walks a Node tree built by a Representer and drives an
// Emitter's event stream from it. It's the inverse of the Composer: where
// Parse turns events into a tree, Serialize turns a tree back into events.
// Along the way it elides a tag the Resolver would reinfer from the bare
// value on the next load, the same omission the Desolver hook exists to do
// as its own pass once that type grows past a no-op; today the elision
// decision is made here, inline, during the walk.
type Serializer struct {
	Emitter Emitter

	lineWidth             int
	flowSimpleCollections bool
	explicitStart         bool
	explicitEnd           bool
	encoding              Encoding
	versionDirective      *VersionDirective
	tagDirectives         []TagDirective
	doneInit              bool
}

// NewSerializer returns a Serializer that writes the events it emits to w.
func NewSerializer(w io.Writer, opts *Options) *Serializer {
	emitter := NewEmitter()
	emitter.CompactSequenceIndent = opts.CompactSeqIndent
	emitter.SetWidth(opts.LineWidth)
	emitter.SetUnicode(opts.Unicode)
	emitter.SetCanonical(opts.Canonical)
	emitter.SetLineBreak(opts.LineBreak)
	emitter.SetOutputWriter(w)

	indent := opts.Indent
	if indent == 0 {
		indent = 4
	}
	emitter.BestIndent = indent

	return &Serializer{
		Emitter:               emitter,
		lineWidth:             opts.LineWidth,
		flowSimpleCollections: opts.FlowSimpleCollections,
		explicitStart:         opts.ExplicitStart,
		explicitEnd:           opts.ExplicitEnd,
		encoding:              opts.Encoding,
		versionDirective:      eventVersionDirective(opts.VersionDirective),
		tagDirectives:         eventTagDirectives(opts.TagDirectives),
	}
}

// eventVersionDirective converts the public directive shape carried by
// Options into the event-level form the Emitter consumes.
func eventVersionDirective(vd *StreamVersionDirective) *VersionDirective {
	if vd == nil {
		return nil
	}
	return &VersionDirective{major: int8(vd.Major), minor: int8(vd.Minor)}
}

func eventTagDirectives(tds []StreamTagDirective) []TagDirective {
	if len(tds) == 0 {
		return nil
	}
	out := make([]TagDirective, len(tds))
	for i, td := range tds {
		out[i] = TagDirective{handle: []byte(td.Handle), prefix: []byte(td.Prefix)}
	}
	return out
}

func (e *Serializer) init() {
	if e.doneInit {
		return
	}
	encoding := e.encoding
	if encoding == ANY_ENCODING {
		encoding = UTF8_ENCODING
	}
	e.emit(NewStreamStartEvent(encoding))
	e.doneInit = true
}

// Finish writes the stream-end event, flushing anything still buffered.
func (e *Serializer) Finish() {
	e.init()
	e.Emitter.OpenEnded = false
	e.emit(NewStreamEndEvent())
}

func (e *Serializer) emit(event Event) {
	e.must(e.Emitter.EmitEvent(&event))
}

func (e *Serializer) must(err error) {
	if err != nil {
		// failf prefixes "yaml: " itself; don't let EmitterError's own
		// prefix double up.
		msg := strings.TrimPrefix(err.Error(), "yaml: ")
		if msg == "" {
			msg = "unknown problem generating YAML content"
		}
		failf("%s", msg)
	}
}

func (e *Serializer) emitScalar(value, anchor, tag string, style ScalarStyle, head, line, foot, tail []byte) {
	implicit := tag == ""
	if !implicit {
		tag = longTag(tag)
	}
	event := NewScalarEvent([]byte(anchor), []byte(tag), []byte(value), implicit, implicit, style)
	event.HeadComment = head
	event.LineComment = line
	event.FootComment = foot
	event.TailComment = tail
	e.emit(event)
}

func (e *Serializer) emitNull() {
	e.emitScalar("null", "", "", PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

// Serialize emits one document's worth of events for node, which must be a
// DocumentNode. The DocumentNode case in serialize emits the document
// start/end markers; Serialize only needs to ensure the stream itself has
// started first.
func (e *Serializer) Serialize(node *Node) {
	e.init()
	e.serialize(node, "")
}

// serialize walks one Node (and its children) and emits the corresponding
// event sequence. tail carries a foot comment deferred from a mapping key
// whose value hasn't finished streaming yet (see the MappingNode case).
func (e *Serializer) serialize(node *Node, tail string) {
	// Zero nodes behave as nil.
	if node.Kind == 0 && node.IsZero() {
		e.emitNull()
		return
	}

	tag, forceQuoting := e.elideImplicitTag(node)

	switch node.Kind {
	case DocumentNode:
		vd, tds := e.versionDirective, e.tagDirectives
		if node.Version != nil {
			vd = eventVersionDirective(node.Version)
		}
		if len(node.TagDirectives) > 0 {
			tds = eventTagDirectives(node.TagDirectives)
		}
		implicit := !e.explicitStart && vd == nil && len(tds) == 0
		event := NewDocumentStartEvent(vd, tds, implicit)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)
		for _, child := range node.Content {
			e.serialize(child, "")
		}
		event = NewDocumentEndEvent(!e.explicitEnd)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case SequenceNode:
		style := BLOCK_SEQUENCE_STYLE
		if node.Style&FlowStyle != 0 || e.fitsFlowStyle(node) {
			style = FLOW_SEQUENCE_STYLE
		}
		event := NewSequenceStartEvent([]byte(node.Anchor), []byte(longTag(tag)), tag == "", style)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)
		for _, child := range node.Content {
			e.serialize(child, "")
		}
		event = NewSequenceEndEvent()
		event.LineComment = []byte(node.LineComment)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case MappingNode:
		style := BLOCK_MAPPING_STYLE
		if node.Style&FlowStyle != 0 || e.fitsFlowStyle(node) {
			style = FLOW_MAPPING_STYLE
		}
		event := NewMappingStartEvent([]byte(node.Anchor), []byte(longTag(tag)), tag == "", style)
		event.TailComment = []byte(tail)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)

		// A key's foot comment can't be emitted until its value has finished
		// streaming (the value may itself be a nested tree), so it rides
		// along as the next pair's tail and the last one rides out on the
		// mapping-end event below.
		var pendingFoot string
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i]
			foot := k.FootComment
			if foot != "" {
				kopy := *k
				kopy.FootComment = ""
				k = &kopy
			}
			e.serialize(k, pendingFoot)
			pendingFoot = foot

			e.serialize(node.Content[i+1], "")
		}

		event = NewMappingEndEvent()
		event.TailComment = []byte(pendingFoot)
		event.LineComment = []byte(node.LineComment)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case AliasNode:
		event := NewAliasEvent([]byte(node.Value))
		event.HeadComment = []byte(node.HeadComment)
		event.LineComment = []byte(node.LineComment)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case ScalarNode:
		value := node.Value
		if !utf8.ValidString(value) {
			origStag := shortTag(node.Tag)
			if origStag == binaryTag {
				failf("explicitly tagged !!binary data must be base64-encoded")
			}
			if origStag != "" {
				failf("cannot marshal invalid UTF-8 data as %s", origStag)
			}
			// Can't be represented directly as YAML text; fall back to a
			// !!binary scalar encoded as base64.
			tag = binaryTag
			value = encodeBase64(value)
		}

		style := PLAIN_SCALAR_STYLE
		switch {
		case node.Style&DoubleQuotedStyle != 0:
			style = DOUBLE_QUOTED_SCALAR_STYLE
		case node.Style&SingleQuotedStyle != 0:
			style = SINGLE_QUOTED_SCALAR_STYLE
		case node.Style&LiteralStyle != 0:
			style = LITERAL_SCALAR_STYLE
		case node.Style&FoldedStyle != 0:
			style = FOLDED_SCALAR_STYLE
		case strings.Contains(value, "\n"):
			style = LITERAL_SCALAR_STYLE
		case forceQuoting:
			style = DOUBLE_QUOTED_SCALAR_STYLE
		}

		e.emitScalar(value, node.Anchor, tag, style, []byte(node.HeadComment), []byte(node.LineComment), []byte(node.FootComment), []byte(tail))
	default:
		failf("cannot represent node with unknown kind %d", node.Kind)
	}
}

// elideImplicitTag drops node.Tag when it wasn't explicitly requested
// (TaggedStyle unset) and the Resolver would reinfer the same tag from the
// bare value on the way back in, applied inline rather than via the
// Desolver's separate pass over the tree. It also
// reports whether a bare string needs forced double-quoting to avoid being
// misread as the type it would otherwise resolve to.
func (e *Serializer) elideImplicitTag(node *Node) (tag string, forceQuoting bool) {
	tag = node.Tag
	if tag == "" || node.Style&TaggedStyle != 0 {
		return tag, false
	}
	stag := shortTag(tag)
	switch node.Kind {
	case ScalarNode:
		if stag == strTag && node.Style&(SingleQuotedStyle|DoubleQuotedStyle|LiteralStyle|FoldedStyle) != 0 {
			return "", false
		}
		rtag, _ := resolve("", node.Value)
		switch {
		case rtag == stag:
			return "", false
		case stag == strTag:
			return "", true
		}
	case MappingNode:
		if stag == mapTag {
			return "", false
		}
	case SequenceNode:
		if stag == seqTag {
			return "", false
		}
	}
	return tag, false
}

// fitsFlowStyle reports whether node is a scalar-only sequence or mapping
// short enough to render in flow style instead of block style, when the
// caller opted into that via WithFlowSimpleCollections.
func (e *Serializer) fitsFlowStyle(node *Node) bool {
	if !e.flowSimpleCollections {
		return false
	}
	if node.Kind != SequenceNode && node.Kind != MappingNode {
		return false
	}
	for _, child := range node.Content {
		if child.Kind != ScalarNode {
			return false
		}
	}
	width := e.lineWidth
	if width <= 0 {
		width = 80
	}
	n := flowRenderedWidth(node)
	return n > 0 && n <= width
}

// flowRenderedWidth estimates how many characters node would occupy if
// rendered in flow style: "[a, b, c]" or "{k: v, k: v}", brackets and
// separators included. Good enough to decide a style, not a byte-exact
// prediction of the Emitter's eventual output.
func flowRenderedWidth(node *Node) int {
	switch node.Kind {
	case SequenceNode:
		n := 2 // enclosing brackets
		for i, child := range node.Content {
			if i > 0 {
				n += 2 // ", "
			}
			n += len(child.Value)
		}
		return n
	case MappingNode:
		n := 2 // enclosing braces
		for i := 0; i < len(node.Content); i += 2 {
			if i > 0 {
				n += 2 // ", "
			}
			n += len(node.Content[i].Value) + 2 + len(node.Content[i+1].Value) // "key: val"
		}
		return n
	default:
		return 0
	}
}
