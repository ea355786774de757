// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Representer stage: walks a Go value into a tagged Node tree, the first
// half of the Dump pipeline (the Serializer turns the tree into events).

package libyaml

import (
	"encoding"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Representer builds Node trees from Go values.
type Representer struct {
	flow                  bool
	Indent                int
	lineWidth             int
	explicitStart         bool
	explicitEnd           bool
	flowSimpleCollections bool
	quotePreference       QuoteStyle
}

// NewRepresenter creates a Representer configured from opts.
func NewRepresenter(opts *Options) *Representer {
	return &Representer{
		Indent:                opts.Indent,
		lineWidth:             opts.LineWidth,
		explicitStart:         opts.ExplicitStart,
		explicitEnd:           opts.ExplicitEnd,
		flowSimpleCollections: opts.FlowSimpleCollections,
		quotePreference:       opts.QuotePreference,
	}
}

// Represent builds the document tree for one Go value. A *Node that is
// already a DocumentNode passes through untouched; everything else is
// wrapped in a fresh one.
func (r *Representer) Represent(tag string, in reflect.Value) *Node {
	var node *Node
	if in.IsValid() {
		node, _ = in.Interface().(*Node)
	}
	if node != nil && node.Kind == DocumentNode {
		return node
	}
	return &Node{
		Kind:    DocumentNode,
		Content: []*Node{r.represent(tag, in)},
	}
}

// base60float (the YAML 1.1 sexagesimal-float quoting check) lives in
// dump.go and is shared from there.

// YAML 1.1 spec Examples 2.19/2.20 show comma as digit separator (+12,345, 1,230.15).
// Some parsers interpret these literally, so quote for compatibility.
// See: https://yaml.org/spec/1.1/
var yaml11CommaNumber = regexp.MustCompile(`^[-+]?(?:0|[1-9][0-9,]*)(?:\.[0-9]*)?$`)

// represent dispatches one Go value to its node builder.
func (r *Representer) represent(tag string, in reflect.Value) *Node {
	tag = shortTag(tag)
	if !in.IsValid() || in.Kind() == reflect.Pointer && in.IsNil() {
		return r.nilv()
	}

	switch value := in.Interface().(type) {
	case *Node:
		return r.nodev(in)
	case Node:
		if !in.CanAddr() {
			n := reflect.New(in.Type()).Elem()
			n.Set(in)
			in = n
		}
		return r.nodev(in.Addr())
	case time.Time:
		return r.timev(tag, in)
	case *time.Time:
		return r.timev(tag, in.Elem())
	case time.Duration:
		return r.stringv(tag, reflect.ValueOf(value.String()))
	case Marshaler:
		v, err := value.MarshalYAML()
		if err != nil {
			Fail(err)
		}
		if v == nil {
			return r.nilv()
		}
		return r.represent(tag, reflect.ValueOf(v))
	case encoding.TextMarshaler:
		text, err := value.MarshalText()
		if err != nil {
			Fail(err)
		}
		in = reflect.ValueOf(string(text))
	case nil:
		return r.nilv()
	}

	switch in.Kind() {
	case reflect.Interface, reflect.Pointer:
		return r.represent(tag, in.Elem())
	case reflect.Map:
		return r.mapv(tag, in)
	case reflect.Struct:
		return r.structv(tag, in)
	case reflect.Slice, reflect.Array:
		return r.slicev(tag, in)
	case reflect.String:
		return r.stringv(tag, in)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.intv(tag, in)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return r.uintv(tag, in)
	case reflect.Float32, reflect.Float64:
		return r.floatv(tag, in)
	case reflect.Bool:
		return r.boolv(tag, in)
	}
	panic("cannot represent type: " + in.Type().String())
}

// takeFlowStyle consumes the one-shot flow flag a `,flow` struct tag
// sets for the next collection.
func (r *Representer) takeFlowStyle() Style {
	if r.flow {
		r.flow = false
		return FlowStyle
	}
	return 0
}

// scalarNode builds a ScalarNode, applying the default tag when the
// caller supplied none.
func scalarNode(tag, defaultTag, value string) *Node {
	if tag == "" {
		tag = defaultTag
	}
	return &Node{
		Kind:  ScalarNode,
		Tag:   tag,
		Value: value,
	}
}

// mapv builds a mapping node from a Go map, keys in deterministic order.
func (r *Representer) mapv(tag string, in reflect.Value) *Node {
	if tag == "" {
		tag = mapTag
	}
	style := r.takeFlowStyle()

	keys := keyList(in.MapKeys())
	sort.Sort(keys)
	content := make([]*Node, 0, len(keys)*2)
	for _, k := range keys {
		content = append(content, r.represent("", k))
		content = append(content, r.represent("", in.MapIndex(k)))
	}

	return &Node{
		Kind:    MappingNode,
		Tag:     tag,
		Content: content,
		Style:   style,
	}
}

// structv builds a mapping node from a struct: tagged fields in
// declaration order, then the sorted entries of any ,inline map.
func (r *Representer) structv(tag string, in reflect.Value) *Node {
	sinfo, err := getStructInfo(in.Type())
	if err != nil {
		panic(err)
	}

	if tag == "" {
		tag = mapTag
	}
	style := r.takeFlowStyle()

	content := make([]*Node, 0)
	for _, info := range sinfo.FieldsList {
		var value reflect.Value
		if info.Inline == nil {
			value = in.Field(info.Num)
		} else {
			value = r.fieldByIndex(in, info.Inline)
			if !value.IsValid() {
				continue
			}
		}
		if info.OmitEmpty && zeroValue(value) {
			continue
		}
		content = append(content, r.represent("", reflect.ValueOf(info.Key)))
		r.flow = info.Flow
		content = append(content, r.represent("", value))
	}
	if sinfo.InlineMap >= 0 {
		m := in.Field(sinfo.InlineMap)
		if m.Len() > 0 {
			r.flow = false
			keys := keyList(m.MapKeys())
			sort.Sort(keys)
			for _, k := range keys {
				if _, found := sinfo.FieldsMap[k.String()]; found {
					panic(fmt.Sprintf("cannot have key %q in inlined map: conflicts with struct field", k.String()))
				}
				content = append(content, r.represent("", k))
				r.flow = false
				content = append(content, r.represent("", m.MapIndex(k)))
			}
		}
	}

	return &Node{
		Kind:    MappingNode,
		Tag:     tag,
		Content: content,
		Style:   style,
	}
}

// slicev builds a sequence node from a slice or array.
func (r *Representer) slicev(tag string, in reflect.Value) *Node {
	if tag == "" {
		tag = seqTag
	}
	style := r.takeFlowStyle()

	content := make([]*Node, in.Len())
	for i := range content {
		content[i] = r.represent("", in.Index(i))
	}

	return &Node{
		Kind:    SequenceNode,
		Tag:     tag,
		Content: content,
		Style:   style,
	}
}

// stringv builds a scalar node from a string, falling back to !!binary
// base64 for invalid UTF-8 and marking strings that YAML 1.1 parsers
// would misread for quoting.
func (r *Representer) stringv(tag string, in reflect.Value) *Node {
	s := in.String()
	needsQuoting := false

	switch {
	case !utf8.ValidString(s):
		if tag == binaryTag {
			failf("explicitly tagged !!binary data must be base64-encoded")
		}
		if tag != "" {
			failf("cannot represent invalid UTF-8 data as %s", shortTag(tag))
		}
		tag = binaryTag
		s = encodeBase64(s)
	case tag == "":
		tag = strTag
		needsQuoting = isBase60Float(s) || isOldBool(s) || isCommaNumber(s) || looksLikeMerge(s)
	}

	var style Style
	switch {
	case strings.Contains(s, "\n"):
		if r.flow || !shouldUseLiteralStyle(s) {
			style = DoubleQuotedStyle
		} else {
			style = LiteralStyle
		}
	case needsQuoting:
		style = SingleQuotedStyle
	default:
		// Plain; the Desolver adds quoting later if the bare text would
		// resolve as another type.
		style = 0
	}

	return &Node{
		Kind:  ScalarNode,
		Tag:   tag,
		Value: s,
		Style: style,
	}
}

func (r *Representer) boolv(tag string, in reflect.Value) *Node {
	s := "false"
	if in.Bool() {
		s = "true"
	}
	return scalarNode(tag, boolTag, s)
}

func (r *Representer) intv(tag string, in reflect.Value) *Node {
	return scalarNode(tag, intTag, strconv.FormatInt(in.Int(), 10))
}

func (r *Representer) uintv(tag string, in reflect.Value) *Node {
	return scalarNode(tag, intTag, strconv.FormatUint(in.Uint(), 10))
}

// timev renders a time.Time in RFC3339Nano form.
func (r *Representer) timev(tag string, in reflect.Value) *Node {
	t := in.Interface().(time.Time)
	return scalarNode(tag, timestampTag, t.Format(time.RFC3339Nano))
}

// floatv renders a float at the precision of its underlying type, with
// the YAML spellings for the infinities and NaN.
func (r *Representer) floatv(tag string, in reflect.Value) *Node {
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
	return scalarNode(tag, floatTag, s)
}

func (r *Representer) nilv() *Node {
	return &Node{
		Kind:  ScalarNode,
		Tag:   nullTag,
		Value: "null",
	}
}

// nodev passes a caller-built *Node through untouched.
func (r *Representer) nodev(in reflect.Value) *Node {
	return in.Interface().(*Node)
}

// keyList's sort.Interface methods (Len/Swap/Less) and the keyFloat/numLess
// helpers they depend on live in dump.go alongside the legacy encoder that
// introduced them; this Representer sorts map keys with the same rules by
// calling those, rather than carrying a second copy of the same ordering.

// fieldByIndex follows an inline field's index path; a nil pointer along
// the way yields an invalid value (nothing to represent).
func (r *Representer) fieldByIndex(v reflect.Value, index []int) reflect.Value {
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

// isBase60Float and isOldBool (the YAML 1.1 quoting heuristics this
// Representer shares with the legacy encoder) live in dump.go; no second
// copy here.

// isCommaNumber reports whether s matches the YAML 1.1 comma-separated
// number notation that some parsers read literally.
func isCommaNumber(s string) bool {
	if !strings.ContainsRune(s, ',') {
		return false
	}
	return yaml11CommaNumber.MatchString(s)
}

// looksLikeMerge also lives in dump.go; same reasoning.
