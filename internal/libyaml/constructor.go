// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Constructor stage: turns resolved Node trees into Go values, honoring
// custom unmarshalers, struct tags, and the YAML 1.1 merge key.

package libyaml

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"time"
)

var (
	nodeType       = reflect.TypeOf(Node{})
	durationType   = reflect.TypeOf(time.Duration(0))
	stringMapType  = reflect.TypeOf(map[string]any{})
	generalMapType = reflect.TypeOf(map[any]any{})
	ifaceType      = generalMapType.Elem()
)

// legacyConstructor is the v2-era unmarshaler shape, still honored.
type legacyConstructor interface {
	UnmarshalYAML(construct func(any) error) error
}

// ScalarConstructFunc decodes one scalar tag into a Go value. Each built-in
// tag has one entry in scalarConstructors.
type ScalarConstructFunc func(c *Constructor, n *Node, resolved any, out reflect.Value) bool

// scalarConstructors dispatches a resolved scalar by its short tag.
var scalarConstructors = map[string]ScalarConstructFunc{
	strTag:       (*Constructor).constructStr,
	intTag:       (*Constructor).constructInt,
	boolTag:      (*Constructor).constructBool,
	floatTag:     (*Constructor).constructFloat,
	nullTag:      (*Constructor).constructNull,
	timestampTag: (*Constructor).constructTimestamp,
	binaryTag:    (*Constructor).constructBinary,
	mergeTag:     (*Constructor).constructMerge,
}

// Constructor holds the per-load decode state: collected field errors,
// alias bookkeeping, and the interface-map types in effect.
type Constructor struct {
	doc        *Node
	aliases    map[*Node]bool
	TypeErrors []*ConstructError

	stringMapType  reflect.Type
	generalMapType reflect.Type

	KnownFields          bool
	UniqueKeys           bool
	AliasingExceededFunc AliasingRestrictionFunction
	constructCount       int
	aliasCount           int
	aliasDepth           int

	mergedFields map[any]bool
}

// NewConstructor creates a Constructor configured from opts (nil means
// defaults).
func NewConstructor(opts *Options) *Constructor {
	if opts == nil {
		opts = DefaultOptions
	}
	exceeded := opts.AliasingRestrictionFunction
	if exceeded == nil {
		exceeded = DefaultAliasingRestrictions
	}
	return &Constructor{
		stringMapType:        stringMapType,
		generalMapType:       generalMapType,
		KnownFields:          opts.KnownFields,
		UniqueKeys:           opts.UniqueKeys,
		AliasingExceededFunc: exceeded,
		aliases:              make(map[*Node]bool),
	}
}

// recordError collects one field-level failure at n's position without
// stopping the decode.
func (c *Constructor) recordError(n *Node, err error) {
	c.TypeErrors = append(c.TypeErrors, &ConstructError{
		Err:    err,
		Line:   n.Line,
		Column: n.Column,
	})
}

// Construct decodes n into out, dispatching on node kind. Custom
// unmarshalers and alias expansion are handled here; field-level type
// mismatches accumulate in TypeErrors rather than aborting.
func (c *Constructor) Construct(n *Node, out reflect.Value) (good bool) {
	c.constructCount++
	if c.aliasDepth > 0 {
		c.aliasCount++
	}
	if c.AliasingExceededFunc(c.aliasCount, c.constructCount) {
		failf("document contains excessive aliasing")
	}

	if out.Type() == nodeType {
		out.Set(reflect.ValueOf(n).Elem())
		return true
	}

	switch n.Kind {
	case DocumentNode:
		return c.document(n, out)
	case AliasNode:
		return c.alias(n, out)
	}

	out, done, good := c.prepare(n, out)
	if done {
		return good
	}

	// A non-scalar node must not reach a TextUnmarshaler target:
	// decoding a mapping into a struct with no exported fields but a
	// TextUnmarshaler would otherwise succeed silently and do nothing.
	// encoding/json behaves the same way.
	if n.Kind != ScalarNode && isTextUnmarshaler(out) {
		c.recordError(n, fmt.Errorf("cannot construct %s into %s (TextUnmarshaler)", shortTag(n.Tag), out.Type()))
		return false
	}

	switch n.Kind {
	case ScalarNode:
		return c.scalar(n, out)
	case MappingNode:
		return c.mapping(n, out)
	case SequenceNode:
		return c.sequence(n, out)
	}
	if n.Kind == 0 && n.IsZero() {
		return c.null(out)
	}
	failf("cannot construct node with unknown kind %d", n.Kind)
	return false
}

// document unwraps the single root under a DocumentNode.
func (c *Constructor) document(n *Node, out reflect.Value) bool {
	if len(n.Content) != 1 {
		return false
	}
	c.doc = n
	c.Construct(n.Content[0], out)
	return true
}

// alias follows an alias to its anchored node, tracking the chain so a
// node whose expansion reaches itself is caught.
func (c *Constructor) alias(n *Node, out reflect.Value) bool {
	if c.aliases[n] {
		// TODO this could actually be allowed in some circumstances.
		failf("anchor '%s' value contains itself", n.Value)
	}
	c.aliases[n] = true
	c.aliasDepth++
	good := c.Construct(n.Alias, out)
	c.aliasDepth--
	delete(c.aliases, n)
	return good
}

// legacyBoolValue maps the YAML 1.1 extended bool words (y/yes/on and
// friends) to their values; ok is false for anything else.
func legacyBoolValue(s string) (value, ok bool) {
	switch s {
	case "y", "Y", "yes", "Yes", "YES", "on", "On", "ON":
		return true, true
	case "n", "N", "no", "No", "NO", "off", "Off", "OFF":
		return false, true
	}
	return false, false
}

// asInt64 converts a resolved scalar to int64 when the conversion is
// exact: any int/int64, a uint64 within range, or a float64 with no
// fractional part that survives the round trip.
func asInt64(resolved any) (int64, bool) {
	switch v := resolved.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= math.MinInt64 && v <= math.MaxInt64 {
			i := int64(v)
			if float64(i) == v {
				return i, true
			}
		}
	}
	return 0, false
}

// asUint64 is asInt64's unsigned counterpart; negative values never
// convert.
func asUint64(resolved any) (uint64, bool) {
	switch v := resolved.(type) {
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	case uint64:
		return v, true
	case float64:
		if v >= 0 && v <= math.MaxUint64 {
			u := uint64(v)
			if float64(u) == v {
				return u, true
			}
		}
	}
	return 0, false
}

// constructStr decodes a !!str scalar.
func (c *Constructor) constructStr(n *Node, resolved any, out reflect.Value) bool {
	switch out.Kind() {
	case reflect.String:
		out.SetString(n.Value)
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// "3s", "1m" and the like into time.Duration.
		if out.Type() == durationType {
			if d, err := time.ParseDuration(n.Value); err == nil {
				out.SetInt(int64(d))
				return true
			}
		}
	case reflect.Bool:
		// YAML 1.1 bool words reach here as strings when the target is
		// an explicit bool.
		if v, ok := legacyBoolValue(n.Value); ok {
			out.SetBool(v)
			return true
		}
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	}
	c.tagError(n, strTag, out)
	return false
}

// constructInt decodes a !!int scalar.
func (c *Constructor) constructInt(n *Node, resolved any, out reflect.Value) bool {
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.Type() == durationType {
			// A bare integer is ambiguous as a duration; only zero and
			// parseable duration strings are accepted.
			switch v := resolved.(type) {
			case int:
				if v == 0 {
					out.SetInt(0)
					return true
				}
			case string:
				if d, err := time.ParseDuration(v); err == nil {
					out.SetInt(int64(d))
					return true
				}
			}
			break
		}
		if v, ok := asInt64(resolved); ok && !out.OverflowInt(v) {
			out.SetInt(v)
			return true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v, ok := asUint64(resolved); ok && !out.OverflowUint(v) {
			out.SetUint(v)
			return true
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
		}
	case reflect.String:
		out.SetString(n.Value)
		return true
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	}
	c.tagError(n, intTag, out)
	return false
}

// constructBool decodes a !!bool scalar.
func (c *Constructor) constructBool(n *Node, resolved any, out reflect.Value) bool {
	switch out.Kind() {
	case reflect.Bool:
		switch v := resolved.(type) {
		case bool:
			out.SetBool(v)
			return true
		case string:
			// YAML 1.1 compatibility (https://yaml.org/type/bool.html),
			// honored only for explicitly typed bool targets.
			if b, ok := legacyBoolValue(v); ok {
				out.SetBool(b)
				return true
			}
		}
	case reflect.String:
		out.SetString(n.Value)
		return true
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	}
	c.tagError(n, boolTag, out)
	return false
}

// constructFloat decodes a !!float scalar.
func (c *Constructor) constructFloat(n *Node, resolved any, out reflect.Value) bool {
	switch out.Kind() {
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
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// A whole-valued float fits an int target.
		if f, ok := resolved.(float64); ok {
			if v, ok := asInt64(f); ok && !out.OverflowInt(v) {
				out.SetInt(v)
				return true
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if f, ok := resolved.(float64); ok {
			if v, ok := asUint64(f); ok && !out.OverflowUint(v) {
				out.SetUint(v)
				return true
			}
		}
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	}
	c.tagError(n, floatTag, out)
	return false
}

// constructTimestamp decodes a !!timestamp scalar.
func (c *Constructor) constructTimestamp(n *Node, resolved any, out reflect.Value) bool {
	rv := reflect.ValueOf(resolved)
	switch out.Kind() {
	case reflect.Struct:
		if out.Type() == rv.Type() {
			out.Set(rv)
			return true
		}
	case reflect.Interface:
		out.Set(rv)
		return true
	}
	c.tagError(n, timestampTag, out)
	return false
}

// constructBinary decodes a !!binary scalar (already base64-decoded by
// scalar()).
func (c *Constructor) constructBinary(n *Node, resolved any, out reflect.Value) bool {
	switch out.Kind() {
	case reflect.String:
		out.SetString(resolved.(string))
		return true
	case reflect.Slice:
		if out.Type().Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(resolved.(string)))
			return true
		}
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	}
	c.tagError(n, binaryTag, out)
	return false
}

// constructNull decodes a !!null scalar.
func (c *Constructor) constructNull(n *Node, resolved any, out reflect.Value) bool {
	return c.null(out)
}

// constructMerge never decodes: a merge key is a directive, consumed by
// mapping(), not a value.
func (c *Constructor) constructMerge(n *Node, resolved any, out reflect.Value) bool {
	return false
}

// scalar decodes one ScalarNode: resolve the tag and typed value, handle
// the exact-type and TextUnmarshaler fast paths, then dispatch by tag.
func (c *Constructor) scalar(n *Node, out reflect.Value) bool {
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
		return c.null(out)
	}

	if rv := reflect.ValueOf(resolved); out.Type() == rv.Type() {
		out.Set(rv)
		return true
	}

	if out.CanAddr() {
		if u, ok := out.Addr().Interface().(encoding.TextUnmarshaler); ok {
			text := []byte(n.Value)
			if tag == binaryTag {
				text = []byte(resolved.(string))
			}
			if err := u.UnmarshalText(text); err != nil {
				c.recordError(n, err)
				return false
			}
			return true
		}
	}

	if construct, ok := scalarConstructors[tag]; ok {
		return construct(c, n, resolved, out)
	}

	// Unknown tag: an interface target takes the resolved value as-is,
	// a struct target only on an exact type match.
	switch out.Kind() {
	case reflect.Interface:
		out.Set(reflect.ValueOf(resolved))
		return true
	case reflect.Struct:
		if rv := reflect.ValueOf(resolved); out.Type() == rv.Type() {
			out.Set(rv)
			return true
		}
	}

	c.tagError(n, tag, out)
	return false
}

// sequence decodes a SequenceNode into a slice, array, or interface.
func (c *Constructor) sequence(n *Node, out reflect.Value) bool {
	l := len(n.Content)
	c.checkPairSequence(n)

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
		c.tagError(n, seqTag, out)
		return false
	}

	et := out.Type().Elem()
	kept := 0
	for _, item := range n.Content {
		e := reflect.New(et).Elem()
		if c.Construct(item, e) {
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
func (c *Constructor) checkUniqueKeys(n *Node) bool {
	found := false
	l := len(n.Content)
	for i := 0; i < l; i += 2 {
		ni := n.Content[i]
		for j := i + 2; j < l; j += 2 {
			nj := n.Content[j]
			if ni.Kind == nj.Kind && ni.Value == nj.Value {
				c.recordError(nj, fmt.Errorf("mapping key %#v already defined at line %d", nj.Value, ni.Line))
				found = true
			}
		}
	}
	return found
}

// mapping decodes a MappingNode into a map, struct, or interface,
// honoring key uniqueness and the merge key.
func (c *Constructor) mapping(n *Node, out reflect.Value) bool {
	if c.UniqueKeys && c.checkUniqueKeys(n) {
		return false
	}

	switch out.Kind() {
	case reflect.Struct:
		return c.mappingStruct(n, out)
	case reflect.Map:
	case reflect.Interface:
		iface := out
		if isStringMap(n) {
			out = reflect.MakeMap(c.stringMapType)
		} else {
			out = reflect.MakeMap(c.generalMapType)
		}
		iface.Set(out)
	default:
		c.tagError(n, mapTag, out)
		return false
	}

	outt := out.Type()
	kt := outt.Key()
	et := outt.Elem()

	// A typed interface map narrows what nested interface mappings
	// decode into; restore the previous types on the way out.
	savedStringMap, savedGeneralMap := c.stringMapType, c.generalMapType
	if et == ifaceType {
		if kt.Kind() == reflect.String {
			c.stringMapType = outt
		} else if kt == ifaceType {
			c.generalMapType = outt
		}
	}

	mergedFields := c.mergedFields
	c.mergedFields = nil
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
		if !c.Construct(n.Content[i], k) {
			continue
		}
		if mergedFields != nil {
			ki := k.Interface()
			if c.getPossiblyUnhashableKey(mergedFields, ki) {
				continue
			}
			c.setPossiblyUnhashableKey(mergedFields, ki, true)
		}
		kkind := k.Kind()
		if kkind == reflect.Interface {
			kkind = k.Elem().Kind()
		}
		if kkind == reflect.Map || kkind == reflect.Slice {
			failf("cannot use '%#v' as a map key; try decoding into yaml.Node", k.Interface())
		}
		e := reflect.New(et).Elem()
		if c.Construct(n.Content[i+1], e) || n.Content[i+1].ShortTag() == nullTag && (mapIsNew || !out.MapIndex(k).IsValid()) {
			out.SetMapIndex(k, e)
		}
	}

	c.mergedFields = mergedFields
	if mergeNode != nil {
		c.merge(n, mergeNode, out)
	}

	c.stringMapType = savedStringMap
	c.generalMapType = savedGeneralMap
	return true
}

// mappingStruct decodes a MappingNode into a struct: fields matched by
// tag key, inline fields and maps, merge keys, and the KnownFields and
// UniqueKeys checks.
func (c *Constructor) mappingStruct(n *Node, out reflect.Value) bool {
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
		field := c.fieldByIndex(n, out, index)
		c.prepare(n, field)
	}

	mergedFields := c.mergedFields
	c.mergedFields = nil
	var mergeNode *Node
	var doneFields []bool
	if c.UniqueKeys {
		doneFields = make([]bool, len(sinfo.FieldsList))
	}

	name := settableValueOf("")
	for i := 0; i < len(n.Content); i += 2 {
		ni := n.Content[i]
		if isMerge(ni) {
			mergeNode = n.Content[i+1]
			continue
		}
		if !c.Construct(ni, name) {
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
			if c.UniqueKeys {
				if doneFields[info.Id] {
					c.recordError(ni, fmt.Errorf("field %s already set in type %s", name.String(), out.Type()))
					continue
				}
				doneFields[info.Id] = true
			}
			var field reflect.Value
			if info.Inline == nil {
				field = out.Field(info.Num)
			} else {
				field = c.fieldByIndex(n, out, info.Inline)
			}
			c.Construct(n.Content[i+1], field)
		case sinfo.InlineMap != -1:
			if inlineMap.IsNil() {
				inlineMap.Set(reflect.MakeMap(inlineMap.Type()))
			}
			value := reflect.New(elemType).Elem()
			c.Construct(n.Content[i+1], value)
			inlineMap.SetMapIndex(name, value)
		case c.KnownFields:
			c.recordError(ni, fmt.Errorf("field %s not found in type %s", name.String(), out.Type()))
		}
	}

	c.mergedFields = mergedFields
	if mergeNode != nil {
		c.merge(n, mergeNode, out)
	}
	return true
}

// merge applies a merge key's value to out. The value must be a mapping,
// an alias to one, or a sequence of (aliases to) mappings. Keys already
// present in the surrounding mapping shadow merged keys, and earlier
// merge sources shadow later ones.
func (c *Constructor) merge(parent *Node, merge *Node, out reflect.Value) {
	mergedFields := c.mergedFields
	if mergedFields == nil {
		// First merge on this mapping: seed the shadow set with the
		// keys the mapping spells out itself.
		c.mergedFields = make(map[any]bool)
		for i := 0; i < len(parent.Content); i += 2 {
			k := reflect.New(ifaceType).Elem()
			if c.Construct(parent.Content[i], k) {
				c.setPossiblyUnhashableKey(c.mergedFields, k.Interface(), true)
			}
		}
	}

	switch merge.Kind {
	case MappingNode:
		c.Construct(merge, out)
	case AliasNode:
		if merge.Alias != nil && merge.Alias.Kind != MappingNode {
			failWantMap()
		}
		c.Construct(merge, out)
	case SequenceNode:
		for _, item := range merge.Content {
			if item.Kind == AliasNode {
				if item.Alias != nil && item.Alias.Kind != MappingNode {
					failWantMap()
				}
			} else if item.Kind != MappingNode {
				failWantMap()
			}
			c.Construct(item, out)
		}
	default:
		failWantMap()
	}

	c.mergedFields = mergedFields
}

// isStringMap reports whether every key of a mapping is a string (or the
// merge key), deciding map[string]any vs map[any]any for interface
// targets.
func isStringMap(n *Node) bool {
	if n.Kind != MappingNode {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		switch n.Content[i].ShortTag() {
		case strTag, mergeTag:
		default:
			return false
		}
	}
	return true
}

// isMerge reports whether n is a merge key: the scalar "<<" with no tag,
// the "!" non-specific tag, or an explicit !!merge tag.
func isMerge(n *Node) bool {
	return n.Kind == ScalarNode && n.Value == "<<" && (n.Tag == "" || n.Tag == "!" || shortTag(n.Tag) == mergeTag)
}

func failWantMap() {
	failf("map merge requires map or sequence of maps as the value")
}

// prepare allocates and dereferences pointers down to the decode target,
// invoking any custom unmarshaler it finds on the way. done reports that
// an unmarshaler ran (good carrying its outcome); otherwise the returned
// value is the final target. Null nodes skip all of it so the null
// handling can zero the outermost value.
func (c *Constructor) prepare(n *Node, out reflect.Value) (newout reflect.Value, done, good bool) {
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
			if called, good := c.tryCallYAMLConstructor(n, out); called {
				return out, true, good
			}
			outi := out.Addr().Interface()
			if u, ok := outi.(Unmarshaler); ok {
				return out, true, c.callConstructor(n, u)
			}
			if u, ok := outi.(legacyConstructor); ok {
				return out, true, c.callLegacyConstructor(n, u)
			}
		}
		if !deref {
			return out, false, false
		}
	}
}

// fieldByIndex walks an inline field's index path, allocating nil
// pointers along the way. Null nodes return an invalid value so nothing
// gets allocated for them.
func (c *Constructor) fieldByIndex(n *Node, v reflect.Value, index []int) reflect.Value {
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

// tryCallYAMLConstructor detects and calls an UnmarshalYAML method whose
// parameter is the root package's *yaml.Node. The two Node types share
// one layout, so the call goes through a pointer reinterpretation.
func (c *Constructor) tryCallYAMLConstructor(n *Node, out reflect.Value) (called, good bool) {
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
	if le, ok := err.(*LoadErrors); ok {
		c.TypeErrors = append(c.TypeErrors, le.Errors...)
		return true, false
	}
	c.recordError(n, err.(error))
	return true, false
}

// callConstructor runs a this-package UnmarshalYAML and folds its errors
// into TypeErrors.
func (c *Constructor) callConstructor(n *Node, u Unmarshaler) bool {
	switch err := u.UnmarshalYAML(n); e := err.(type) {
	case nil:
		return true
	case *LoadErrors:
		c.TypeErrors = append(c.TypeErrors, e.Errors...)
		return false
	default:
		c.recordError(n, err)
		return false
	}
}

// callLegacyConstructor runs a v2-style UnmarshalYAML, handing it a
// construct callback that reports this call's type errors back as one
// LoadErrors value.
func (c *Constructor) callLegacyConstructor(n *Node, u legacyConstructor) bool {
	terrlen := len(c.TypeErrors)
	err := u.UnmarshalYAML(func(v any) (err error) {
		defer handleErr(&err)
		c.Construct(n, reflect.ValueOf(v))
		if len(c.TypeErrors) > terrlen {
			issues := c.TypeErrors[terrlen:]
			c.TypeErrors = c.TypeErrors[:terrlen]
			return &LoadErrors{issues}
		}
		return nil
	})
	switch e := err.(type) {
	case nil:
		return true
	case *LoadErrors:
		c.TypeErrors = append(c.TypeErrors, e.Errors...)
		return false
	default:
		c.recordError(n, err)
		return false
	}
}

// tagError records that a node with the given tag has no decoding into
// the target type, quoting a clipped copy of scalar values.
func (c *Constructor) tagError(n *Node, tag string, out reflect.Value) {
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
	c.recordError(n, fmt.Errorf("cannot construct %s%s into %s", shortTag(tag), value, out.Type()))
}

// null zeroes a nillable target (interface, pointer, map, slice).
func (c *Constructor) null(out reflect.Value) bool {
	if out.CanAddr() {
		switch out.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			out.Set(reflect.Zero(out.Type()))
			return true
		}
	}
	return false
}

// isTextUnmarshaler reports whether out (after pointer dereferencing)
// implements encoding.TextUnmarshaler.
func isTextUnmarshaler(out reflect.Value) bool {
	for out.Kind() == reflect.Pointer {
		if out.IsNil() {
			out = reflect.New(out.Type().Elem()).Elem()
		} else {
			out = out.Elem()
		}
	}
	if !out.CanAddr() {
		return false
	}
	_, ok := out.Addr().Interface().(encoding.TextUnmarshaler)
	return ok
}

// settableValueOf copies i into a fresh settable reflect.Value.
func settableValueOf(i any) reflect.Value {
	v := reflect.ValueOf(i)
	sv := reflect.New(v.Type()).Elem()
	sv.Set(v)
	return sv
}

// setPossiblyUnhashableKey writes into a shadow-key map, converting the
// panic an unhashable key raises into a decode failure.
func (c *Constructor) setPossiblyUnhashableKey(m map[any]bool, key any, value bool) {
	defer func() {
		if err := recover(); err != nil {
			failf("%v", err)
		}
	}()
	m[key] = value
}

// getPossiblyUnhashableKey reads from a shadow-key map with the same
// panic conversion as the setter.
func (c *Constructor) getPossiblyUnhashableKey(m map[any]bool, key any) bool {
	defer func() {
		if err := recover(); err != nil {
			failf("%v", err)
		}
	}()
	return m[key]
}

// checkPairSequence validates !!omap and !!pairs sequences: every entry
// must be a single-pair mapping, and !!omap also rejects repeated keys.
func (c *Constructor) checkPairSequence(n *Node) {
	stag := shortTag(n.Tag)
	if stag != omapTag && stag != pairsTag {
		return
	}
	seen := make(map[string]bool, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != MappingNode || len(item.Content) != 2 {
			c.recordError(item, fmt.Errorf("%s entries must be single-pair mappings", stag))
			continue
		}
		if stag != omapTag {
			continue
		}
		if k := item.Content[0]; k.Kind == ScalarNode {
			if seen[k.Value] {
				c.recordError(k, fmt.Errorf("mapping key %#v already defined in %s", k.Value, stag))
			}
			seen[k.Value] = true
		}
	}
}
