// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// The Dump surface: Dump/DumpAll one-shot entry points and the streaming
// Dumper, thin wrappers over internal/libyaml's Dumper pipeline.

package yaml

import (
	"bytes"
	"io"

	"go.yaml.in/yaml/v4/internal/libyaml"
)

// dumpValues encodes one or more values into a fresh buffer through a
// Dumper, which Dump and DumpAll share.
func dumpValues(opts []Option, values ...any) ([]byte, error) {
	var buf bytes.Buffer
	d, err := NewDumper(&buf, opts...)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := d.Dump(v); err != nil {
			return nil, err
		}
	}
	if err := d.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dump encodes a value to YAML with the given options. See [Marshal]
// for how Go values map to YAML.
func Dump(in any, opts ...Option) (out []byte, err error) {
	defer handleErr(&err)
	return dumpValues(opts, in)
}

// DumpAll encodes the values as a multi-document YAML stream, each value
// its own document separated by "---". See [Marshal] for how Go values
// map to YAML.
func DumpAll(in []any, opts ...Option) (out []byte, err error) {
	defer handleErr(&err)
	return dumpValues(opts, in...)
}

// A Dumper writes YAML values to an output stream through the
// Representer/Desolver/Serializer pipeline (the Encoder behind Marshal
// is a separate, deprecated leg).
type Dumper struct {
	dumper *libyaml.Dumper
}

// NewDumper returns a new Dumper writing to w with the given options.
// Close flushes whatever is still buffered to w.
func NewDumper(w io.Writer, opts ...Option) (*Dumper, error) {
	d, err := libyaml.NewDumper(w, opts...)
	if err != nil {
		return nil, err
	}
	return &Dumper{dumper: d}, nil
}

// Dump writes the YAML encoding of v to the stream. Documents after the
// first are preceded by a "---" separator. See [Marshal] for how Go
// values map to YAML.
func (d *Dumper) Dump(v any) (err error) {
	defer handleErr(&err)
	return d.dumper.Dump(v)
}

// Close closes the Dumper by writing any remaining data. It does not
// write a stream terminating "...".
func (d *Dumper) Close() (err error) {
	defer handleErr(&err)
	return d.dumper.Close()
}

// SetIndent changes the indentation used when encoding.
func (d *Dumper) SetIndent(spaces int) {
	d.dumper.SetIndent(spaces)
}

// SetCompactSeqIndent controls whether "- " is considered part of the
// indentation of a block sequence.
func (d *Dumper) SetCompactSeqIndent(compact bool) {
	d.dumper.SetCompactSeqIndent(compact)
}
