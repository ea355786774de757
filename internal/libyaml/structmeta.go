// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Struct-tag metadata shared by the decode and encode paths. A struct
// type is inspected once, its `yaml:"name,omitempty,flow,inline"` tags
// parsed into a structInfo, and the result cached for every later
// Construct/Represent touching the same type.

package libyaml

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// fieldInfo describes one marshalable struct field.
type fieldInfo struct {
	Key       string
	Num       int
	OmitEmpty bool
	Flow      bool

	// Id is the field's position in FieldsList, usable as a cheap
	// duplicate-detection handle without a second map.
	Id int

	// Inline is the index path to the field when it was promoted out of
	// an inlined struct; nil for direct fields.
	Inline []int
}

// structInfo is the parsed tag metadata for one struct type.
type structInfo struct {
	FieldsMap  map[string]fieldInfo
	FieldsList []fieldInfo

	// InlineMap is the field number of the ,inline map catch-all, or -1
	// when the struct has none.
	InlineMap int

	// InlineConstructors lists index paths to inlined fields whose types
	// unmarshal themselves.
	InlineConstructors [][]int
}

// structInfoCache maps reflect.Type to *structInfo. sync.Map suits the
// access pattern here: written once per type, read on every subsequent
// decode or encode of that type.
var structInfoCache sync.Map

var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

// selfUnmarshals reports whether t carries an UnmarshalYAML method with
// the Unmarshaler shape, either through this package's Node type or a
// structurally identical one (checked by name, since the root package's
// interface cannot be imported from here).
func selfUnmarshals(t reflect.Type) bool {
	if t.Implements(unmarshalerType) {
		return true
	}
	m, ok := t.MethodByName("UnmarshalYAML")
	if !ok {
		return false
	}
	sig := m.Type
	if sig.NumIn() != 2 || sig.NumOut() != 1 {
		return false
	}
	arg := sig.In(1)
	if arg.Kind() != reflect.Ptr || arg.Elem().Kind() != reflect.Struct || arg.Elem().Name() != "Node" {
		return false
	}
	ret := sig.Out(0)
	return ret.Kind() == reflect.Interface && ret.Name() == "error"
}

// fieldTag is the parsed form of one field's yaml tag.
type fieldTag struct {
	key       string
	omitEmpty bool
	flow      bool
	inline    bool
	skip      bool
}

// parseFieldTag splits a `yaml:"..."` tag into its key and option flags.
// A bare tag with no colon anywhere (legacy form) is treated as the
// whole yaml tag.
func parseFieldTag(st reflect.Type, field reflect.StructField) (fieldTag, error) {
	tag := field.Tag.Get("yaml")
	if tag == "" && !strings.Contains(string(field.Tag), ":") {
		tag = string(field.Tag)
	}
	if tag == "-" {
		return fieldTag{skip: true}, nil
	}

	var ft fieldTag
	parts := strings.Split(tag, ",")
	ft.key = parts[0]
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			ft.omitEmpty = true
		case "flow":
			ft.flow = true
		case "inline":
			ft.inline = true
		default:
			return ft, fmt.Errorf("unsupported flag %q in tag %q of type %s", opt, tag, st)
		}
	}
	return ft, nil
}

// structBuilder accumulates one struct type's fields while its tags are
// being walked.
type structBuilder struct {
	st          reflect.Type
	byKey       map[string]fieldInfo
	ordered     []fieldInfo
	inlineMap   int
	inlineCtors [][]int
}

func (b *structBuilder) add(info fieldInfo) error {
	if _, dup := b.byKey[info.Key]; dup {
		return errors.New("duplicated key '" + info.Key + "' in struct " + b.st.String())
	}
	info.Id = len(b.ordered)
	b.byKey[info.Key] = info
	b.ordered = append(b.ordered, info)
	return nil
}

// addInline handles a field tagged ,inline: a string-keyed map becomes
// the catch-all, a struct (or pointer chain to one) has its own fields
// promoted into this struct's namespace.
func (b *structBuilder) addInline(fieldNum int, field reflect.StructField) error {
	switch field.Type.Kind() {
	case reflect.Map:
		if b.inlineMap >= 0 {
			return errors.New("multiple ,inline maps in struct " + b.st.String())
		}
		if field.Type.Key() != reflect.TypeOf("") {
			return errors.New("option ,inline needs a map with string keys in struct " + b.st.String())
		}
		b.inlineMap = fieldNum
		return nil

	case reflect.Struct, reflect.Pointer:
		ftype := field.Type
		for ftype.Kind() == reflect.Pointer {
			ftype = ftype.Elem()
		}
		if ftype.Kind() != reflect.Struct {
			return errors.New("option ,inline may only be used on a struct or map field")
		}
		if selfUnmarshals(reflect.PointerTo(ftype)) {
			// The inlined value decodes itself; record the path and stop.
			b.inlineCtors = append(b.inlineCtors, []int{fieldNum})
			return nil
		}
		inner, err := getStructInfo(ftype)
		if err != nil {
			return err
		}
		for _, path := range inner.InlineConstructors {
			b.inlineCtors = append(b.inlineCtors, append([]int{fieldNum}, path...))
		}
		for _, finfo := range inner.FieldsList {
			if finfo.Inline == nil {
				finfo.Inline = []int{fieldNum, finfo.Num}
			} else {
				finfo.Inline = append([]int{fieldNum}, finfo.Inline...)
			}
			if err := b.add(finfo); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.New("option ,inline may only be used on a struct or map field")
	}
}

// getStructInfo parses and caches the yaml tag metadata for st.
func getStructInfo(st reflect.Type) (*structInfo, error) {
	if cached, ok := structInfoCache.Load(st); ok {
		return cached.(*structInfo), nil
	}

	b := structBuilder{
		st:        st,
		byKey:     make(map[string]fieldInfo),
		ordered:   make([]fieldInfo, 0, st.NumField()),
		inlineMap: -1,
	}
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if field.PkgPath != "" && !field.Anonymous {
			// Unexported.
			continue
		}

		ft, err := parseFieldTag(st, field)
		if err != nil {
			return nil, err
		}
		if ft.skip {
			continue
		}
		if ft.inline {
			if err := b.addInline(i, field); err != nil {
				return nil, err
			}
			continue
		}

		key := ft.key
		if key == "" {
			key = strings.ToLower(field.Name)
		}
		info := fieldInfo{
			Key:       key,
			Num:       i,
			OmitEmpty: ft.omitEmpty,
			Flow:      ft.flow,
		}
		if err := b.add(info); err != nil {
			return nil, err
		}
	}

	sinfo := &structInfo{
		FieldsMap:          b.byKey,
		FieldsList:         b.ordered,
		InlineMap:          b.inlineMap,
		InlineConstructors: b.inlineCtors,
	}
	actual, _ := structInfoCache.LoadOrStore(st, sinfo)
	return actual.(*structInfo), nil
}
