//
// Copyright (c) 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0
//

package yaml

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// unmarshalJSON delivers an already-decoded YAML value to a type that
// implements json.Unmarshaler but has no YAML-specific decoding: the value
// is rewritten into a JSON-compatible shape, marshaled, and handed to
// UnmarshalJSON. YAML mappings may carry non-string keys, which JSON
// objects cannot; keys are stringified, and two keys that collide after
// stringification are an error.
func unmarshalJSON(in any, out json.Unmarshaler) error {
	conv, err := jsonCompatible(in)
	if err != nil {
		return err
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return out.UnmarshalJSON(data)
}

func jsonCompatible(in any) (any, error) {
	v := reflect.ValueOf(in)
	switch v.Kind() {
	case reflect.Map:
		m := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			for key.Kind() == reflect.Interface {
				key = key.Elem()
			}
			var ks string
			if key.Kind() == reflect.String {
				ks = key.String()
			} else {
				ks = fmt.Sprint(key.Interface())
			}
			if _, dup := m[ks]; dup {
				return nil, fmt.Errorf("duplicate key %q found when converting to JSON object", ks)
			}
			val, err := jsonCompatible(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[ks] = val
		}
		return m, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return in, nil // []byte marshals as base64
		}
		s := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := jsonCompatible(v.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			s[i] = elem
		}
		return s, nil
	}
	return in, nil
}
