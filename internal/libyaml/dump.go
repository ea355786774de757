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

// Legacy encode leg: the Encoder behind Marshal and the deprecated
// Encoder.Encode surface, walking Go values straight into emitter
// events. The Representer/Serializer pair is the newer equivalent.

package libyaml

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// keyList sorts map keys for deterministic output: numbers and bools by
// value first, then strings in a digit-aware natural order, then
// everything else by kind.
type keyList []reflect.Value

func (l keyList) Len() int      { return len(l) }
func (l keyList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// derefKey unwraps interfaces and non-nil pointers down to the value a
// key comparison should look at.
func derefKey(v reflect.Value) reflect.Value {
	for k := v.Kind(); (k == reflect.Interface || k == reflect.Pointer) && !v.IsNil(); k = v.Kind() {
		v = v.Elem()
	}
	return v
}

func (l keyList) Less(i, j int) bool {
	a := derefKey(l[i])
	b := derefKey(l[j])
	ak, bk := a.Kind(), b.Kind()

	af, aok := keyFloat(a)
	bf, bok := keyFloat(b)
	if aok && bok {
		if af != bf {
			return af < bf
		}
		if ak != bk {
			return ak < bk
		}
		return numLess(a, b)
	}
	if ak != reflect.String || bk != reflect.String {
		return ak < bk
	}
	return naturalLess(a.String(), b.String())
}

// naturalLess orders strings with embedded numbers numerically ("a9"
// before "a10"), falling back to rune order.
func naturalLess(as, bs string) bool {
	ar, br := []rune(as), []rune(bs)
	digits := false
	for i := 0; i < len(ar) && i < len(br); i++ {
		if ar[i] == br[i] {
			digits = unicode.IsDigit(ar[i])
			continue
		}
		al := unicode.IsLetter(ar[i])
		bl := unicode.IsLetter(br[i])
		if al && bl {
			return ar[i] < br[i]
		}
		if al || bl {
			if digits {
				return al
			}
			return bl
		}
		var ai, bi int
		var an, bn int64
		if ar[i] == '0' || br[i] == '0' {
			for j := i - 1; j >= 0 && unicode.IsDigit(ar[j]); j-- {
				if ar[j] != '0' {
					an = 1
					bn = 1
					break
				}
			}
		}
		for ai = i; ai < len(ar) && unicode.IsDigit(ar[ai]); ai++ {
			an = an*10 + int64(ar[ai]-'0')
		}
		for bi = i; bi < len(br) && unicode.IsDigit(br[bi]); bi++ {
			bn = bn*10 + int64(br[bi]-'0')
		}
		if an != bn {
			return an < bn
		}
		if ai != bi {
			return ai < bi
		}
		return ar[i] < br[i]
	}
	return len(ar) < len(br)
}

// keyFloat maps numbers and bools onto a common float axis for key
// ordering; ok is false for everything else.
func keyFloat(v reflect.Value) (f float64, ok bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// numLess compares two values of the same numeric (or bool) kind.
func numLess(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	}
	panic("not a number")
}

// Nil sentinels for NewDocumentStartEvent call sites, in the style of
// http.NoBody.
var (
	noVersionDirective *VersionDirective = nil
	noTagDirective     []TagDirective    = nil
)

type Encoder struct {
	Emitter               Emitter
	Out                   []byte
	flow                  bool
	Indent                int
	lineWidth             int
	doneInit              bool
	explicitStart         bool
	explicitEnd           bool
	flowSimpleCollections bool
	encoding              Encoding
	versionDirective      *VersionDirective
	tagDirectives         []TagDirective
}

// NewEncoder builds an Encoder writing to writer, or to its internal Out
// buffer when writer is nil.
func NewEncoder(writer io.Writer, opts *Options) *Encoder {
	emitter := NewEmitter()
	emitter.CompactSequenceIndent = opts.CompactSeqIndent
	emitter.SetWidth(opts.LineWidth)
	emitter.SetUnicode(opts.Unicode)
	emitter.SetCanonical(opts.Canonical)
	emitter.SetLineBreak(opts.LineBreak)

	e := &Encoder{
		Emitter:               emitter,
		Indent:                opts.Indent,
		lineWidth:             opts.LineWidth,
		explicitStart:         opts.ExplicitStart,
		explicitEnd:           opts.ExplicitEnd,
		flowSimpleCollections: opts.FlowSimpleCollections,
		encoding:              opts.Encoding,
		versionDirective:      eventVersionDirective(opts.VersionDirective),
		tagDirectives:         eventTagDirectives(opts.TagDirectives),
	}
	if writer != nil {
		e.Emitter.SetOutputWriter(writer)
	} else {
		e.Emitter.SetOutputString(&e.Out)
	}
	return e
}

func (e *Encoder) init() {
	if e.doneInit {
		return
	}
	if e.Indent == 0 {
		e.Indent = 4
	}
	e.Emitter.BestIndent = e.Indent
	encoding := e.encoding
	if encoding == ANY_ENCODING {
		encoding = UTF8_ENCODING
	}
	e.emit(NewStreamStartEvent(encoding))
	e.doneInit = true
}

func (e *Encoder) Finish() {
	e.Emitter.OpenEnded = false
	e.emit(NewStreamEndEvent())
}

func (e *Encoder) Destroy() {
	e.Emitter.Delete()
}

func (e *Encoder) emit(event Event) {
	e.must(e.Emitter.EmitEvent(&event))
}

func (e *Encoder) must(err error) {
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

// MarshalDoc wraps one marshaled value in document start/end events. A
// *Node that is already a DocumentNode provides its own markers.
func (e *Encoder) MarshalDoc(tag string, in reflect.Value) {
	e.init()
	var node *Node
	if in.IsValid() {
		node, _ = in.Interface().(*Node)
	}
	if node != nil && node.Kind == DocumentNode {
		e.nodev(in)
		return
	}
	// Directives force the "---" marker regardless of explicitStart.
	implicit := !e.explicitStart && e.versionDirective == nil && len(e.tagDirectives) == 0
	e.emit(NewDocumentStartEvent(e.versionDirective, e.tagDirectives, implicit))
	e.marshal(tag, in)
	e.emit(NewDocumentEndEvent(!e.explicitEnd))
}

// isSimpleCollection reports whether node is a scalar-only collection
// short enough for flow style, when WithFlowSimpleCollections is on.
func (e *Encoder) isSimpleCollection(node *Node) bool {
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
	n := e.estimateFlowLength(node)
	return n > 0 && n <= width
}

// estimateFlowLength approximates node's rendered width in flow style,
// brackets and separators included.
func (e *Encoder) estimateFlowLength(node *Node) int {
	switch node.Kind {
	case SequenceNode:
		length := 2 // brackets
		for i, child := range node.Content {
			if i > 0 {
				length += 2 // ", "
			}
			length += len(child.Value)
		}
		return length
	case MappingNode:
		length := 2 // braces
		for i := 0; i < len(node.Content); i += 2 {
			if i > 0 {
				length += 2 // ", "
			}
			length += len(node.Content[i].Value) + 2 + len(node.Content[i+1].Value)
		}
		return length
	}
	return 0
}

func (e *Encoder) marshal(tag string, in reflect.Value) {
	tag = shortTag(tag)
	if !in.IsValid() || in.Kind() == reflect.Pointer && in.IsNil() {
		e.nilv()
		return
	}

	switch value := in.Interface().(type) {
	case *Node:
		e.nodev(in)
		return
	case Node:
		if !in.CanAddr() {
			n := reflect.New(in.Type()).Elem()
			n.Set(in)
			in = n
		}
		e.nodev(in.Addr())
		return
	case time.Time:
		e.timev(tag, in)
		return
	case *time.Time:
		e.timev(tag, in.Elem())
		return
	case time.Duration:
		e.stringv(tag, reflect.ValueOf(value.String()))
		return
	case Marshaler:
		v, err := value.MarshalYAML()
		if err != nil {
			Fail(err)
		}
		if v == nil {
			e.nilv()
			return
		}
		e.marshal(tag, reflect.ValueOf(v))
		return
	case encoding.TextMarshaler:
		text, err := value.MarshalText()
		if err != nil {
			Fail(err)
		}
		in = reflect.ValueOf(string(text))
	case nil:
		e.nilv()
		return
	}

	switch in.Kind() {
	case reflect.Interface, reflect.Pointer:
		e.marshal(tag, in.Elem())
	case reflect.Map:
		e.mapv(tag, in)
	case reflect.Struct:
		e.structv(tag, in)
	case reflect.Slice, reflect.Array:
		e.slicev(tag, in)
	case reflect.String:
		e.stringv(tag, in)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.intv(tag, in)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.uintv(tag, in)
	case reflect.Float32, reflect.Float64:
		e.floatv(tag, in)
	case reflect.Bool:
		e.boolv(tag, in)
	default:
		panic("cannot marshal type: " + in.Type().String())
	}
}

func (e *Encoder) mapv(tag string, in reflect.Value) {
	e.mappingv(tag, func() {
		keys := keyList(in.MapKeys())
		sort.Sort(keys)
		for _, k := range keys {
			e.marshal("", k)
			e.marshal("", in.MapIndex(k))
		}
	})
}

// fieldByIndex follows an inline field's index path; a nil pointer along
// the way yields an invalid value (nothing to encode).
func (e *Encoder) fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for _, num := range index {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(num)
	}
	return v
}

func (e *Encoder) structv(tag string, in reflect.Value) {
	sinfo, err := getStructInfo(in.Type())
	if err != nil {
		panic(err)
	}
	e.mappingv(tag, func() {
		for _, info := range sinfo.FieldsList {
			var value reflect.Value
			if info.Inline == nil {
				value = in.Field(info.Num)
			} else {
				value = e.fieldByIndex(in, info.Inline)
				if !value.IsValid() {
					continue
				}
			}
			if info.OmitEmpty && zeroValue(value) {
				continue
			}
			e.marshal("", reflect.ValueOf(info.Key))
			e.flow = info.Flow
			e.marshal("", value)
		}
		if sinfo.InlineMap >= 0 {
			m := in.Field(sinfo.InlineMap)
			if m.Len() > 0 {
				e.flow = false
				keys := keyList(m.MapKeys())
				sort.Sort(keys)
				for _, k := range keys {
					if _, found := sinfo.FieldsMap[k.String()]; found {
						panic(fmt.Sprintf("cannot have key %q in inlined map: conflicts with struct field", k.String()))
					}
					e.marshal("", k)
					e.flow = false
					e.marshal("", m.MapIndex(k))
				}
			}
		}
	})
}

func (e *Encoder) mappingv(tag string, f func()) {
	implicit := tag == ""
	style := BLOCK_MAPPING_STYLE
	if e.flow {
		e.flow = false
		style = FLOW_MAPPING_STYLE
	}
	e.emit(NewMappingStartEvent(nil, []byte(tag), implicit, style))
	f()
	e.emit(NewMappingEndEvent())
}

func (e *Encoder) slicev(tag string, in reflect.Value) {
	implicit := tag == ""
	style := BLOCK_SEQUENCE_STYLE
	if e.flow {
		e.flow = false
		style = FLOW_SEQUENCE_STYLE
	}
	e.emit(NewSequenceStartEvent(nil, []byte(tag), implicit, style))
	for i, n := 0, in.Len(); i < n; i++ {
		e.marshal("", in.Index(i))
	}
	e.emit(NewSequenceEndEvent())
}

// isBase60Float reports whether s is a YAML 1.1 base-60 number. The
// notation is gone from 1.2 and unsupported here, but such strings must
// be quoted so 1.1 parsers don't misread the output.
func isBase60Float(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '+' || c == '-' || c >= '0' && c <= '9') || strings.IndexByte(s, ':') < 0 {
		return false
	}
	return base60float.MatchString(s)
}

// From http://yaml.org/type/float.html, except the regular expression there
// is bogus. In practice parsers do not enforce the "\.[0-9_]*" suffix.
var base60float = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(?::[0-5]?[0-9])+(?:\.[0-9_]*)?$`)

// isOldBool reports whether a YAML 1.1 parser would read s as a bool, in
// which case the emitted string must be quoted.
func isOldBool(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes", "YES", "on", "On", "ON",
		"n", "N", "no", "No", "NO", "off", "Off", "OFF":
		return true
	}
	return false
}

// looksLikeMerge reports whether s is the merge indicator "<<", which
// must be quoted to survive a round trip as a plain string.
func looksLikeMerge(s string) bool {
	return s == "<<"
}

func (e *Encoder) stringv(tag string, in reflect.Value) {
	s := in.String()
	canUsePlain := true
	switch {
	case !utf8.ValidString(s):
		if tag == binaryTag {
			failf("explicitly tagged !!binary data must be base64-encoded")
		}
		if tag != "" {
			failf("cannot marshal invalid UTF-8 data as %s", shortTag(tag))
		}
		// Not representable as YAML text; fall back to base64 under
		// !!binary.
		tag = binaryTag
		s = encodeBase64(s)
	case tag == "":
		// Plain output is fine unless the bare text would resolve to
		// some other type on the way back in.
		rtag, _ := resolve("", s)
		canUsePlain = rtag == strTag &&
			!(isBase60Float(s) || isOldBool(s) || looksLikeMerge(s))
	}

	// A caller-specified tag combined with incompatible text can still
	// produce invalid YAML; that is the caller's contract to keep.
	var style ScalarStyle
	switch {
	case strings.Contains(s, "\n"):
		if e.flow || !shouldUseLiteralStyle(s) {
			style = DOUBLE_QUOTED_SCALAR_STYLE
		} else {
			style = LITERAL_SCALAR_STYLE
		}
	case canUsePlain:
		style = PLAIN_SCALAR_STYLE
	default:
		style = DOUBLE_QUOTED_SCALAR_STYLE
	}
	e.emitScalar(s, "", tag, style, nil, nil, nil, nil)
}

func (e *Encoder) boolv(tag string, in reflect.Value) {
	s := "false"
	if in.Bool() {
		s = "true"
	}
	e.emitScalar(s, "", tag, PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) intv(tag string, in reflect.Value) {
	e.emitScalar(strconv.FormatInt(in.Int(), 10), "", tag, PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) uintv(tag string, in reflect.Value) {
	e.emitScalar(strconv.FormatUint(in.Uint(), 10), "", tag, PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) timev(tag string, in reflect.Value) {
	t := in.Interface().(time.Time)
	e.emitScalar(t.Format(time.RFC3339Nano), "", tag, PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) floatv(tag string, in reflect.Value) {
	// Format at the precision of the underlying value, so a float32
	// doesn't sprout float64 noise digits.
	precision := 64
	if in.Kind() == reflect.Float32 {
		precision = 32
	}
	s := strconv.FormatFloat(in.Float(), 'g', -1, precision)
	switch s {
	case "+Inf":
		s = ".inf"
	case "-Inf":
		s = "-.inf"
	case "NaN":
		s = ".nan"
	}
	e.emitScalar(s, "", tag, PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) nilv() {
	e.emitScalar("null", "", "", PLAIN_SCALAR_STYLE, nil, nil, nil, nil)
}

func (e *Encoder) emitScalar(
	value, anchor, tag string, style ScalarStyle, head, line, foot, tail []byte,
) {
	// TODO Kill this function. Replace all initialize calls by their underlining Go literals.
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

func (e *Encoder) nodev(in reflect.Value) {
	e.node(in.Interface().(*Node), "")
}

// elideNodeTag drops node.Tag when it wasn't explicitly requested and a
// reload would reinfer it from the bare value, also reporting when a
// string needs forced quoting to stay a string.
func elideNodeTag(node *Node) (tag string, forceQuoting bool) {
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
		if rtag == stag {
			return "", false
		}
		if stag == strTag {
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

// nodeScalarStyle picks the emitted style for a scalar node: the
// remembered style wins, then literal for multi-line values, then forced
// quoting from tag elision.
func nodeScalarStyle(node *Node, value string, forceQuoting bool) ScalarStyle {
	switch {
	case node.Style&DoubleQuotedStyle != 0:
		return DOUBLE_QUOTED_SCALAR_STYLE
	case node.Style&SingleQuotedStyle != 0:
		return SINGLE_QUOTED_SCALAR_STYLE
	case node.Style&LiteralStyle != 0:
		return LITERAL_SCALAR_STYLE
	case node.Style&FoldedStyle != 0:
		return FOLDED_SCALAR_STYLE
	case strings.Contains(value, "\n"):
		return LITERAL_SCALAR_STYLE
	case forceQuoting:
		return DOUBLE_QUOTED_SCALAR_STYLE
	}
	return PLAIN_SCALAR_STYLE
}

// node emits the events for one Node subtree. tail carries a foot
// comment deferred from a prior mapping key (see the MappingNode case).
func (e *Encoder) node(node *Node, tail string) {
	// Zero nodes behave as nil.
	if node.Kind == 0 && node.IsZero() {
		e.nilv()
		return
	}

	stag := shortTag(node.Tag)
	tag, forceQuoting := elideNodeTag(node)

	switch node.Kind {
	case DocumentNode:
		event := NewDocumentStartEvent(noVersionDirective, noTagDirective, true)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)
		for _, child := range node.Content {
			e.node(child, "")
		}
		event = NewDocumentEndEvent(true)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case SequenceNode:
		style := BLOCK_SEQUENCE_STYLE
		if node.Style&FlowStyle != 0 || e.isSimpleCollection(node) {
			style = FLOW_SEQUENCE_STYLE
		}
		event := NewSequenceStartEvent([]byte(node.Anchor), []byte(longTag(tag)), tag == "", style)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)
		for _, child := range node.Content {
			e.node(child, "")
		}
		event = NewSequenceEndEvent()
		event.LineComment = []byte(node.LineComment)
		event.FootComment = []byte(node.FootComment)
		e.emit(event)

	case MappingNode:
		style := BLOCK_MAPPING_STYLE
		if node.Style&FlowStyle != 0 || e.isSimpleCollection(node) {
			style = FLOW_MAPPING_STYLE
		}
		event := NewMappingStartEvent([]byte(node.Anchor), []byte(longTag(tag)), tag == "", style)
		event.TailComment = []byte(tail)
		event.HeadComment = []byte(node.HeadComment)
		e.emit(event)

		// A key's foot comment can't go out until its value (possibly a
		// whole nested tree) has streamed, so it rides along as the next
		// pair's tail; the last one leaves on the mapping-end event.
		var pendingFoot string
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i]
			foot := k.FootComment
			if foot != "" {
				kopy := *k
				kopy.FootComment = ""
				k = &kopy
			}
			e.node(k, pendingFoot)
			pendingFoot = foot

			e.node(node.Content[i+1], "")
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
			if stag == binaryTag {
				failf("explicitly tagged !!binary data must be base64-encoded")
			}
			if stag != "" {
				failf("cannot marshal invalid UTF-8 data as %s", stag)
			}
			// Not representable as YAML text; fall back to base64 under
			// !!binary.
			tag = binaryTag
			value = encodeBase64(value)
		}
		style := nodeScalarStyle(node, value, forceQuoting)
		e.emitScalar(value, node.Anchor, tag, style, []byte(node.HeadComment), []byte(node.LineComment), []byte(node.FootComment), []byte(tail))

	default:
		failf("cannot encode node with unknown kind %d", node.Kind)
	}
}
