// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Dumper surface: the one-shot Dump entry point and the streaming
// Dumper, driving the Representer → Desolver → Serializer pipeline.

package libyaml

import (
	"bytes"
	"io"
	"reflect"
)

// A Dumper writes YAML values to an output stream. It mirrors the
// Loader's three stages in reverse: the Representer builds a tagged
// Node tree from a Go value, the Desolver strips tags a load would
// reinfer, and the Serializer turns the tree into emitted events.
type Dumper struct {
	representer *Representer
	desolver    *Desolver
	serializer  *Serializer
	options     *Options
}

// NewDumper returns a new Dumper writing to w with the given options.
// Close flushes whatever the emitter still buffers.
func NewDumper(w io.Writer, opts ...Option) (*Dumper, error) {
	o, err := ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Dumper{
		representer: NewRepresenter(o),
		desolver:    NewDesolver(o),
		serializer:  NewSerializer(w, o),
		options:     o,
	}, nil
}

// Dump encodes in to YAML with the given options.
//
// A single value becomes a single document. With WithAllDocuments(), in
// must be a slice and each element becomes its own document, separated
// by "---" markers:
//
//	docs := []Config{config1, config2, config3}
//	yaml.Dump(docs, yaml.WithAllDocuments())
//
// See [Marshal] for how Go values map to YAML.
func Dump(in any, opts ...Option) (out []byte, err error) {
	defer handleErr(&err)

	o, err := ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	d, err := NewDumper(&buf, func(opts *Options) error {
		*opts = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if o.AllDocuments {
		inVal := reflect.ValueOf(in)
		if inVal.Kind() != reflect.Slice {
			return nil, loadError("yaml: WithAllDocuments requires a slice input")
		}
		for i := 0; i < inVal.Len(); i++ {
			if err := d.Dump(inVal.Index(i).Interface()); err != nil {
				return nil, err
			}
		}
	} else if err := d.Dump(in); err != nil {
		return nil, err
	}

	if err := d.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dump writes the YAML encoding of v to the stream. Documents after the
// first are preceded by a "---" separator. See [Marshal] for the
// conversion rules.
func (d *Dumper) Dump(v any) (err error) {
	defer handleErr(&err)

	node := d.representer.Represent("", reflect.ValueOf(v))

	// The represented tree may alias nodes the caller handed in
	// (Represent passes *Node values through), and dump must never
	// mutate caller nodes, so the standalone Desolve pass only runs on
	// trees the Representer built itself. Pass-through nodes get the
	// same tag elision per event from the Serializer, which decides
	// without touching the tree.
	switch v.(type) {
	case *Node, Node:
	default:
		d.desolver.Desolve(node)
	}

	d.serializer.Serialize(node)
	return nil
}

// Close flushes any remaining data. It does not write a stream
// terminating "...".
func (d *Dumper) Close() (err error) {
	defer handleErr(&err)
	d.serializer.Finish()
	return nil
}

// SetIndent changes the indentation used when encoding; the legacy
// Encoder.SetIndent method delegates here.
func (d *Dumper) SetIndent(spaces int) {
	if spaces < 0 {
		panic("yaml: cannot indent to a negative number of spaces")
	}
	d.serializer.Emitter.BestIndent = spaces
}

// SetCompactSeqIndent controls whether "- " counts as part of a block
// sequence's indentation; the legacy Encoder methods delegate here.
func (d *Dumper) SetCompactSeqIndent(compact bool) {
	d.serializer.Emitter.CompactSequenceIndent = compact
}
