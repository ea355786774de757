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

// Legacy decode leg: the Decoder behind Unmarshal and the deprecated
// Decoder.Decode surface. The Constructor (constructor.go) is the newer
// equivalent; this one keeps the old conversion quirks (e.g. truncating
// float-to-int) for compatibility.

package libyaml

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Unmarshaler interface may be implemented by types to customize their
// behavior when being unmarshaled from a YAML document.
type Unmarshaler interface {
	UnmarshalYAML(value *Node) error
}

type obsoleteUnmarshaler interface {
	UnmarshalYAML(unmarshal func(any) error) error
}

// Marshaler and IsZeroer are declared once, in interfaces.go, alongside the
// FromYAMLNode/ToYAMLNode pair the new Constructor/Representer path adds;
// this legacy Decoder consults the same two.

// UnmarshalError is one non-fatal failure collected while unmarshaling a
// document into a Go value.
type UnmarshalError struct {
	Err    error
	Line   int
	Column int
}

func (e *UnmarshalError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err.Error())
}

func (e *UnmarshalError) Unwrap() error {
	return e.Err
}

// TypeError reports every field that could not be decoded in one pass.
type TypeError struct {
	Errors []*UnmarshalError
}

func (e *TypeError) Error() string {
	var b strings.Builder
	b.WriteString("yaml: unmarshal errors:")
	for _, err := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the collected errors through the Go 1.20+ multi-error
// convention, so errors.Is/As reach the individual UnmarshalErrors.
func (e *TypeError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Strings renders each collected error as its own "line N: ..." message.
func (e *TypeError) Strings() []string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return msgs
}

// handleErr lives in errors.go; the struct-field metadata in structmeta.go;
// zeroValue in interfaces.go. The decode path below consumes all three.

type Decoder struct {
	doc     *Node
	aliases map[*Node]bool
	Terrors []*UnmarshalError

	stringMapType  reflect.Type
	generalMapType reflect.Type

	KnownFields bool
	UniqueKeys  bool
	decodeCount int
	aliasCount  int
	aliasDepth  int

	mergedFields map[any]bool
}

// nodeType, durationType, stringMapType, generalMapType and ifaceType are
// declared once in constructor.go and shared with this legacy Decoder.

func NewDecoder(opts *Options) *Decoder {
	return &Decoder{
		stringMapType:  stringMapType,
		generalMapType: generalMapType,
		KnownFields:    opts.KnownFields,
		UniqueKeys:     opts.UniqueKeys,
		aliases:        make(map[*Node]bool),
	}
}

// Unmarshal decodes YAML input into out, which must be a pointer.
// Type mismatches are collected and reported together as a *TypeError.
func Unmarshal(in []byte, out any, opts *Options) error {
	d := NewDecoder(opts)
	p := NewComposer(in, opts)
	defer p.Destroy()
	node := p.Parse()
	if node != nil {
		v := reflect.ValueOf(out)
		if v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		d.Unmarshal(node, v)
	}
	if len(d.Terrors) > 0 {
		return &TypeError{Errors: d.Terrors}
	}
	return nil
}

// recordTerror collects one failure at n's position.
func (d *Decoder) recordTerror(n *Node, err error) {
	d.Terrors = append(d.Terrors, &UnmarshalError{
		Err:    err,
		Line:   n.Line,
		Column: n.Column,
	})
}

// terror records that a node with the given tag has no decoding into the
// target type, quoting a clipped copy of scalar values.
func (d *Decoder) terror(n *Node, tag string, out reflect.Value) {
	if n.Tag != "" {
		tag = n.Tag
	}
	value := n.Value
	if tag != seqTag && tag != mapTag {
		if len(value) > 10 {
			value = " `" + value[:7] + "...`"
		} else {
			value = " `" + value + "`"
		}
	}
	d.recordTerror(n, fmt.Errorf("cannot unmarshal %s%s into %s", shortTag(tag), value, out.Type()))
}

// foldUnmarshalError folds a custom unmarshaler's result into Terrors.
func (d *Decoder) foldUnmarshalError(n *Node, err error) bool {
	switch e := err.(type) {
	case nil:
		return true
	case *TypeError:
		d.Terrors = append(d.Terrors, e.Errors...)
		return false
	default:
		d.recordTerror(n, err)
		return false
	}
}

func (d *Decoder) callUnmarshaler(n *Node, u Unmarshaler) bool {
	return d.foldUnmarshalError(n, u.UnmarshalYAML(n))
}

// callObsoleteUnmarshaler runs a v2-style UnmarshalYAML, handing it a
// callback that reports this call's errors back as one TypeError.
func (d *Decoder) callObsoleteUnmarshaler(n *Node, u obsoleteUnmarshaler) bool {
	terrlen := len(d.Terrors)
	err := u.UnmarshalYAML(func(v any) (err error) {
		defer handleErr(&err)
		d.Unmarshal(n, reflect.ValueOf(v))
		if len(d.Terrors) > terrlen {
			issues := d.Terrors[terrlen:]
			d.Terrors = d.Terrors[:terrlen]
			return &TypeError{issues}
		}
		return nil
	})
	return d.foldUnmarshalError(n, err)
}

// prepare allocates and dereferences pointers down to the decode target,
// invoking any custom unmarshaler found on the way. unmarshaled reports
// that one ran (good carrying its outcome). Null nodes skip all of it.
func (d *Decoder) prepare(n *Node, out reflect.Value) (newout reflect.Value, unmarshaled, good bool) {
	if n.ShortTag() == nullTag {
		return out, false, false
	}
	for {
		deref := out.Kind() == reflect.Pointer
		if deref {
			if out.IsNil() {
				out.Set(reflect.New(out.Type().Elem()))
			}
			out = out.Elem()
		}
		if out.CanAddr() {
			if called, good := d.tryCallYAMLUnmarshaler(n, out); called {
				return out, true, good
			}
			outi := out.Addr().Interface()
			if u, ok := outi.(Unmarshaler); ok {
				return out, true, d.callUnmarshaler(n, u)
			}
			if u, ok := outi.(obsoleteUnmarshaler); ok {
				return out, true, d.callObsoleteUnmarshaler(n, u)
			}
		}
		if !deref {
			return out, false, false
		}
	}
}

// fieldByIndex walks an inline field's index path, allocating nil
// pointers along the way. Null nodes return an invalid value.
func (d *Decoder) fieldByIndex(n *Node, v reflect.Value, index []int) reflect.Value {
	if n.ShortTag() == nullTag {
		return reflect.Value{}
	}
	for _, num := range index {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(num)
	}
	return v
}

const (
	// 400,000 decode operations is ~500kb of dense object declarations, or
	// ~5kb of dense object declarations with 10000% alias expansion
	alias_ratio_range_low = 400000

	// 4,000,000 decode operations is ~5MB of dense object declarations, or
	// ~4.5MB of dense object declarations with 10% alias expansion
	alias_ratio_range_high = 4000000

	// alias_ratio_range is the range over which we scale allowed alias ratios
	alias_ratio_range = float64(alias_ratio_range_high - alias_ratio_range_low)
)

func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= alias_ratio_range_low:
		// allow 99% to come from alias expansion for small-to-medium documents
		return 0.99
	case decodeCount >= alias_ratio_range_high:
		// allow 10% to come from alias expansion for very large documents
		return 0.10
	default:
		// scale smoothly from 99% down to 10% over the range.
		// this maps to 396,000 - 400,000 allowed alias-driven decodes over the range.
		// 400,000 decode operations is ~100MB of allocations in worst-case scenarios (single-item maps).
		return 0.99 - 0.89*(float64(decodeCount-alias_ratio_range_low)/alias_ratio_range)
	}
}

// tryCallYAMLUnmarshaler detects and calls an UnmarshalYAML method whose
// parameter is the root package's *yaml.Node. The two Node types share
// one layout, so the call goes through a pointer reinterpretation.
func (d *Decoder) tryCallYAMLUnmarshaler(n *Node, out reflect.Value) (called, good bool) {
	if !out.CanAddr() {
		return false, false
	}
	method := out.Addr().MethodByName("UnmarshalYAML")
	if !method.IsValid() {
		return false, false
	}
	sig := method.Type()
	if sig.NumIn() != 1 || sig.NumOut() != 1 {
		return false, false
	}
	arg := sig.In(0)
	if arg.Kind() != reflect.Ptr || arg.Elem().Kind() != reflect.Struct || arg.Elem().Name() != "Node" {
		return false, false
	}

	nodeValue := reflect.NewAt(arg.Elem(), reflect.ValueOf(n).UnsafePointer())
	results := method.Call([]reflect.Value{nodeValue})
	err := results[0].Interface()
	if err == nil {
		return true, true
	}
	return true, d.foldUnmarshalError(n, err.(error))
}

// Unmarshal decodes n into out, dispatching on node kind.
func (d *Decoder) Unmarshal(n *Node, out reflect.Value) (good bool) {
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 && float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		failf("document contains excessive aliasing")
	}
	if out.Type() == nodeType {
		out.Set(reflect.ValueOf(n).Elem())
		return true
	}
	switch n.Kind {
	case DocumentNode:
		return d.document(n, out)
	case AliasNode:
		return d.alias(n, out)
	}
	out, unmarshaled, good := d.prepare(n, out)
	if unmarshaled {
		return good
	}
	switch n.Kind {
	case ScalarNode:
		return d.scalar(n, out)
	case MappingNode:
		return d.mapping(n, out)
	case SequenceNode:
		return d.sequence(n, out)
	}
	if n.Kind == 0 && n.IsZero() {
		return d.null(out)
	}
	failf("cannot decode node with unknown kind %d", n.Kind)
	return false
}

func (d *Decoder) document(n *Node, out reflect.Value) bool {
	if len(n.Content) != 1 {
		return false
	}
	d.doc = n
	d.Unmarshal(n.Content[0], out)
	return true
}

func (d *Decoder) alias(n *Node, out reflect.Value) bool {
	if d.aliases[n] {
		// TODO this could actually be allowed in some circumstances.
		failf("anchor '%s' value contains itself", n.Value)
	}
	d.aliases[n] = true
	d.aliasDepth++
	good := d.Unmarshal(n.Alias, out)
	d.aliasDepth--
	delete(d.aliases, n)
	return good
}

func (d *Decoder) null(out reflect.Value) bool {
	if out.CanAddr() {
		switch out.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			out.Set(reflect.Zero(out.Type()))
			return true
		}
	}
	return false
}

// scalarToInt applies the legacy int conversion rules: exact ints,
// in-range uint64/float64 (the float truncates), and duration strings.
func (d *Decoder) scalarToInt(resolved any, out reflect.Value) bool {
	if out.Type() == durationType {
		switch v := resolved.(type) {
		case int:
			if v == 0 {
				out.SetInt(0)
				return true
			}
		case string:
			if dur, err := time.ParseDuration(v); err == nil {
				out.SetInt(int64(dur))
				return true
			}
		}
		return false
	}
	switch v := resolved.(type) {
	case int:
		if !out.OverflowInt(int64(v)) {
			out.SetInt(int64(v))
			return true
		}
	case int64:
		if !out.OverflowInt(v) {
			out.SetInt(v)
			return true
		}
	case uint64:
		if v <= math.MaxInt64 && !out.OverflowInt(int64(v)) {
			out.SetInt(int64(v))
			return true
		}
	case float64:
		if v <= math.MaxInt64 && !out.OverflowInt(int64(v)) {
			out.SetInt(int64(v))
			return true
		}
	}
	return false
}

// scalarToUint is scalarToInt's unsigned counterpart.
func (d *Decoder) scalarToUint(resolved any, out reflect.Value) bool {
	switch v := resolved.(type) {
	case int:
		if v >= 0 && !out.OverflowUint(uint64(v)) {
			out.SetUint(uint64(v))
			return true
		}
	case int64:
		if v >= 0 && !out.OverflowUint(uint64(v)) {
			out.SetUint(uint64(v))
			return true
		}
	case uint64:
		if !out.OverflowUint(v) {
			out.SetUint(v)
			return true
		}
	case float64:
		if v <= math.MaxUint64 && !out.OverflowUint(uint64(v)) {
			out.SetUint(uint64(v))
			return true
		}
	}
	return false
}

func (d *Decoder) scalar(n *Node, out reflect.Value) bool {
	var tag string
	var resolved any
	if n.indicatedString() {
		tag, resolved = strTag, n.Value
	} else {
		tag, resolved = resolve(n.Tag, n.Value)
		if tag == binaryTag {
			data, err := base64.StdEncoding.DecodeString(resolved.(string))
			if err != nil {
				failf("!!binary value contains invalid base64 data")
			}
			resolved = string(data)
		}
	}
	if resolved == nil {
		return d.null(out)
	}
	if rv := reflect.ValueOf(resolved); out.Type() == rv.Type() {
		out.Set(rv)
		return true
	}

	// A TextUnmarshaler target takes the raw text; dubious values are its
	// own problem to reject.
	if out.CanAddr() {
		if u, ok := out.Addr().Interface().(encoding.TextUnmarshaler); ok {
			text := []byte(n.Value)
			if tag == binaryTag {
				text = []byte(resolved.(string))
			}
			if err := u.UnmarshalText(text); err != nil {
				d.recordTerror(n, err)
				return false
			}
			return true
		}
	}

	switch out.Kind() {
	case reflect.String:
		if tag == binaryTag {
			out.SetString(resolved.(string))
		} else {
			out.SetString(n.Value)
		}
		return true
	case reflect.Slice:
		// !!binary decodes into []byte specifically.
		if out.Type().Elem().Kind() == reflect.Uint8 && tag == binaryTag {
			out.SetBytes([]byte(resolved.(string)))
			return true
		}
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if d.scalarToInt(resolved, out) {
			return true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if d.scalarToUint(resolved, out) {
			return true
		}
	case reflect.Bool:
		switch v := resolved.(type) {
		case bool:
			out.SetBool(v)
			return true
		case string:
			// YAML 1.1 bool words (https://yaml.org/type/bool.html),
			// honored only for explicitly typed bool targets.
			if b, ok := legacyBoolValue(v); ok {
				out.SetBool(b)
				return true
			}
		}
	case reflect.Float32, reflect.Float64:
		switch v := resolved.(type) {
		case int:
			out.SetFloat(float64(v))
			return true
		case int64:
			out.SetFloat(float64(v))
			return true
		case uint64:
			out.SetFloat(float64(v))
			return true
		case float64:
			out.SetFloat(v)
			return true
		}
	case reflect.Struct:
		if rv := reflect.ValueOf(resolved); out.Type() == rv.Type() {
			out.Set(rv)
			return true
		}
	case reflect.Pointer:
		panic("yaml internal error: please report the issue")
	}
	d.terror(n, tag, out)
	return false
}

// settableValueOf, isStringMap, failWantMap and isMerge are shared with
// constructor.go's newer decode path; both walk the same Node shapes and
// need the same helpers, so only one copy of each lives in this package
// (in constructor.go).

func (d *Decoder) sequence(n *Node, out reflect.Value) bool {
	l := len(n.Content)

	var iface reflect.Value
	switch out.Kind() {
	case reflect.Slice:
		out.Set(reflect.MakeSlice(out.Type(), l, l))
	case reflect.Array:
		if l != out.Len() {
			failf("invalid array: want %d elements but got %d", out.Len(), l)
		}
	case reflect.Interface:
		// No type hint; decode into []any and assign at the end.
		iface = out
		out = settableValueOf(make([]any, l))
	default:
		d.terror(n, seqTag, out)
		return false
	}

	et := out.Type().Elem()
	kept := 0
	for _, item := range n.Content {
		e := reflect.New(et).Elem()
		if d.Unmarshal(item, e) {
			out.Index(kept).Set(e)
			kept++
		}
	}
	if out.Kind() != reflect.Array {
		out.Set(out.Slice(0, kept))
	}
	if iface.IsValid() {
		iface.Set(out)
	}
	return true
}

// checkUniqueKeys scans a mapping for repeated keys, recording one error
// per duplicate. Reports whether any were found.
func (d *Decoder) checkUniqueKeys(n *Node) bool {
	found := false
	l := len(n.Content)
	for i := 0; i < l; i += 2 {
		ni := n.Content[i]
		for j := i + 2; j < l; j += 2 {
			nj := n.Content[j]
			if ni.Kind == nj.Kind && ni.Value == nj.Value {
				d.recordTerror(nj, fmt.Errorf("mapping key %#v already defined at line %d", nj.Value, ni.Line))
				found = true
			}
		}
	}
	return found
}

func (d *Decoder) mapping(n *Node, out reflect.Value) bool {
	if d.UniqueKeys && d.checkUniqueKeys(n) {
		return false
	}

	switch out.Kind() {
	case reflect.Struct:
		return d.mappingStruct(n, out)
	case reflect.Map:
	case reflect.Interface:
		iface := out
		if isStringMap(n) {
			out = reflect.MakeMap(d.stringMapType)
		} else {
			out = reflect.MakeMap(d.generalMapType)
		}
		iface.Set(out)
	default:
		d.terror(n, mapTag, out)
		return false
	}

	outt := out.Type()
	kt := outt.Key()
	et := outt.Elem()

	// A typed interface map narrows what nested interface mappings
	// decode into; restore the previous types on the way out.
	savedStringMap, savedGeneralMap := d.stringMapType, d.generalMapType
	if et == ifaceType {
		if kt.Kind() == reflect.String {
			d.stringMapType = outt
		} else if kt == ifaceType {
			d.generalMapType = outt
		}
	}

	mergedFields := d.mergedFields
	d.mergedFields = nil
	var mergeNode *Node

	mapIsNew := false
	if out.IsNil() {
		out.Set(reflect.MakeMap(outt))
		mapIsNew = true
	}
	for i := 0; i < len(n.Content); i += 2 {
		if isMerge(n.Content[i]) {
			mergeNode = n.Content[i+1]
			continue
		}
		k := reflect.New(kt).Elem()
		if !d.Unmarshal(n.Content[i], k) {
			continue
		}
		if mergedFields != nil {
			ki := k.Interface()
			if d.getPossiblyUnhashableKey(mergedFields, ki) {
				continue
			}
			d.setPossiblyUnhashableKey(mergedFields, ki, true)
		}
		kkind := k.Kind()
		if kkind == reflect.Interface {
			kkind = k.Elem().Kind()
		}
		if kkind == reflect.Map || kkind == reflect.Slice {
			failf("cannot use '%#v' as a map key; try decoding into yaml.Node", k.Interface())
		}
		e := reflect.New(et).Elem()
		if d.Unmarshal(n.Content[i+1], e) || n.Content[i+1].ShortTag() == nullTag && (mapIsNew || !out.MapIndex(k).IsValid()) {
			out.SetMapIndex(k, e)
		}
	}

	d.mergedFields = mergedFields
	if mergeNode != nil {
		d.merge(n, mergeNode, out)
	}

	d.stringMapType = savedStringMap
	d.generalMapType = savedGeneralMap
	return true
}

func (d *Decoder) mappingStruct(n *Node, out reflect.Value) bool {
	sinfo, err := getStructInfo(out.Type())
	if err != nil {
		panic(err)
	}

	var inlineMap reflect.Value
	var elemType reflect.Type
	if sinfo.InlineMap != -1 {
		inlineMap = out.Field(sinfo.InlineMap)
		elemType = inlineMap.Type().Elem()
	}

	for _, index := range sinfo.InlineConstructors {
		field := d.fieldByIndex(n, out, index)
		d.prepare(n, field)
	}

	mergedFields := d.mergedFields
	d.mergedFields = nil
	var mergeNode *Node
	var doneFields []bool
	if d.UniqueKeys {
		doneFields = make([]bool, len(sinfo.FieldsList))
	}

	name := settableValueOf("")
	for i := 0; i < len(n.Content); i += 2 {
		ni := n.Content[i]
		if isMerge(ni) {
			mergeNode = n.Content[i+1]
			continue
		}
		if !d.Unmarshal(ni, name) {
			continue
		}
		sname := name.String()
		if mergedFields != nil {
			if mergedFields[sname] {
				continue
			}
			mergedFields[sname] = true
		}

		info, known := sinfo.FieldsMap[sname]
		switch {
		case known:
			if d.UniqueKeys {
				if doneFields[info.Id] {
					d.recordTerror(ni, fmt.Errorf("field %s already set in type %s", name.String(), out.Type()))
					continue
				}
				doneFields[info.Id] = true
			}
			var field reflect.Value
			if info.Inline == nil {
				field = out.Field(info.Num)
			} else {
				field = d.fieldByIndex(n, out, info.Inline)
			}
			d.Unmarshal(n.Content[i+1], field)
		case sinfo.InlineMap != -1:
			if inlineMap.IsNil() {
				inlineMap.Set(reflect.MakeMap(inlineMap.Type()))
			}
			value := reflect.New(elemType).Elem()
			d.Unmarshal(n.Content[i+1], value)
			inlineMap.SetMapIndex(name, value)
		case d.KnownFields:
			d.recordTerror(ni, fmt.Errorf("field %s not found in type %s", name.String(), out.Type()))
		}
	}

	d.mergedFields = mergedFields
	if mergeNode != nil {
		d.merge(n, mergeNode, out)
	}
	return true
}

// setPossiblyUnhashableKey writes into a shadow-key map, converting the
// panic an unhashable key raises into a decode failure.
func (d *Decoder) setPossiblyUnhashableKey(m map[any]bool, key any, value bool) {
	defer func() {
		if err := recover(); err != nil {
			failf("%v", err)
		}
	}()
	m[key] = value
}

// getPossiblyUnhashableKey reads from a shadow-key map with the same
// panic conversion as the setter.
func (d *Decoder) getPossiblyUnhashableKey(m map[any]bool, key any) bool {
	defer func() {
		if err := recover(); err != nil {
			failf("%v", err)
		}
	}()
	return m[key]
}

// merge applies a merge key's value to out; see Constructor.merge for
// the shadowing rules, which are identical here.
func (d *Decoder) merge(parent *Node, merge *Node, out reflect.Value) {
	mergedFields := d.mergedFields
	if mergedFields == nil {
		d.mergedFields = make(map[any]bool)
		for i := 0; i < len(parent.Content); i += 2 {
			k := reflect.New(ifaceType).Elem()
			if d.Unmarshal(parent.Content[i], k) {
				d.setPossiblyUnhashableKey(d.mergedFields, k.Interface(), true)
			}
		}
	}

	switch merge.Kind {
	case MappingNode:
		d.Unmarshal(merge, out)
	case AliasNode:
		if merge.Alias != nil && merge.Alias.Kind != MappingNode {
			failWantMap()
		}
		d.Unmarshal(merge, out)
	case SequenceNode:
		for _, item := range merge.Content {
			if item.Kind == AliasNode {
				if item.Alias != nil && item.Alias.Kind != MappingNode {
					failWantMap()
				}
			} else if item.Kind != MappingNode {
				failWantMap()
			}
			d.Unmarshal(item, out)
		}
	default:
		failWantMap()
	}

	d.mergedFields = mergedFields
}
