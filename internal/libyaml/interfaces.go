// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Extension points a caller's Go types can implement to take over part of
// the Representer (marshal) or Constructor (unmarshal) path: a type that
// implements one of these interfaces steps in for the library's own
// tag-driven conversion for that value.

package libyaml

import "reflect"

// Marshaler lets a type override how the Representer turns it into a
// document value. Whatever it returns is represented exactly as if the
// caller had passed that value directly, implicit tag inference included.
type Marshaler interface {
	MarshalYAML() (any, error)
}

// IsZeroer lets a type decide its own omitempty-ness. Struct-tag handling
// (structmeta.go) consults this before falling back to the built-in
// per-kind zero check; time.Time is the motivating case, since its zero
// value isn't the same as an all-zero-fields comparison would suggest.
type IsZeroer interface {
	IsZero() bool
}

// FromYAMLNode lets a type build itself directly from a composed Node
// rather than going through the
// Constructor's typed-value dispatch. Preferred over the legacy
// Unmarshaler surface for new call sites.
type FromYAMLNode interface {
	FromYAMLNode(*Node) error
}

// ToYAMLNode is the Representer-side counterpart of FromYAMLNode: a type
// that implements it hands back a fully-formed Node instead of a plain Go
// value for the Representer to walk.
type ToYAMLNode interface {
	ToYAMLNode() (*Node, error)
}

// zeroValue reports whether v is the zero value for omitempty purposes.
// A type implementing IsZeroer is deferred to; everything else falls
// back to a per-Kind structural check, recursing into exported struct
// fields only (spec's Node model has no concept of unexported state, so
// there is nothing meaningful to compare for those).
func zeroValue(v reflect.Value) bool {
	kind := v.Kind()
	if zeroer, ok := v.Interface().(IsZeroer); ok {
		if (kind == reflect.Pointer || kind == reflect.Interface) && v.IsNil() {
			return true
		}
		return zeroer.IsZero()
	}
	switch kind {
	case reflect.String:
		return v.Len() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Struct:
		fields := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if fields.Field(i).PkgPath != "" {
				continue // unexported field carries no encodable state
			}
			if !zeroValue(v.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}
