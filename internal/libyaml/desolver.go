// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Desolver removes unnecessary tags from YAML nodes.
// This is the inverse of tag resolution - tags that match implicit
// resolution can be omitted from the output.

package libyaml

// Desolver handles tag desolution for YAML nodes.
type Desolver struct {
	opts *Options
}

// NewDesolver creates a new Desolver with the given options.
func NewDesolver(opts *Options) *Desolver {
	return &Desolver{opts: opts}
}

// quoteStyle is the style forced onto strings that must stay strings
// once their tag is dropped, honoring the configured quote preference.
func (d *Desolver) quoteStyle() Style {
	if d.opts != nil && d.opts.QuotePreference.ScalarStyle() == DOUBLE_QUOTED_SCALAR_STYLE {
		return DoubleQuotedStyle
	}
	return SingleQuotedStyle
}

// Desolve walks the node tree and removes tags the Resolver would
// re-infer, so the emitted document carries no redundant tags. It is the
// inverse of Resolver.Resolve().
//
// Dropping a !!str tag from a value that would resolve to some other
// type (a "42" that must stay a string) forces quoting instead, so the
// round trip stays lossless. Explicitly tagged nodes (TaggedStyle) keep
// their tag untouched.
//
// The Serializer still performs the same elision inline while it walks a
// tree; that logic moves here once represent() builds Node trees.
func (d *Desolver) Desolve(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ScalarNode:
		if n.Style&TaggedStyle != 0 {
			return
		}
		tag := shortTag(n.Tag)
		switch tag {
		case strTag:
			if rtag, _ := resolve("", n.Value); rtag != strTag {
				// Untagged, the value would resolve to rtag; quote it
				// so it stays a string.
				n.Style |= d.quoteStyle()
			}
			n.Tag = ""
		case nullTag, boolTag, intTag, floatTag, timestampTag, mergeTag:
			if rtag, _ := resolve("", n.Value); rtag == tag {
				n.Tag = ""
			}
		}
	case SequenceNode:
		if n.Style&TaggedStyle == 0 && shortTag(n.Tag) == seqTag {
			n.Tag = ""
		}
		for _, c := range n.Content {
			d.Desolve(c)
		}
	case MappingNode:
		if n.Style&TaggedStyle == 0 && shortTag(n.Tag) == mapTag {
			n.Tag = ""
		}
		for _, c := range n.Content {
			d.Desolve(c)
		}
	case DocumentNode, StreamNode:
		for _, c := range n.Content {
			d.Desolve(c)
		}
	}
}
