// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// This file contains the functional-options surface shared by Load/Dump
// and their streaming Loader/Dumper counterparts: the Options bag every
// pipeline stage is constructed from, the With* constructors that mutate
// it, and ApplyOptions/CombineOptions which fold a list of them together.

package libyaml

import "fmt"

// AliasingRestrictionFunction decides whether alias expansion has gone far
// enough to abort decoding. It's called after every successfully
// constructed node with the running alias and construct counts; returning
// true aborts with an error. See DefaultAliasingRestrictions for the
// built-in ratio check this guards against (aliasing/billion-laughs
// amplification).
type AliasingRestrictionFunction func(aliasCount, constructCount int) bool

// DefaultAliasingRestrictions is the AliasingRestrictionFunction used when
// none is supplied: it mirrors the ratio check load.go's legacy decoder
// applies, so both entry points reject the same pathological documents.
func DefaultAliasingRestrictions(aliasCount, constructCount int) bool {
	return aliasCount > 100 && constructCount > 1000 &&
		float64(aliasCount)/float64(constructCount) > allowedAliasRatio(constructCount)
}

// Options holds every setting a Load/Dump call (or their streaming
// Loader/Dumper forms) can be configured with. Its zero value is valid:
// each pipeline stage falls back to its own default (4-space indent, 80
// column width, and so on) when a field is left unset.
type Options struct {
	Indent                int
	CompactSeqIndent      bool
	LineWidth             int
	Unicode               bool
	Canonical             bool
	LineBreak             LineBreak
	ExplicitStart         bool
	ExplicitEnd           bool
	FlowSimpleCollections bool
	QuotePreference       QuoteStyle
	Encoding              Encoding
	VersionDirective      *StreamVersionDirective
	TagDirectives         []StreamTagDirective

	KnownFields    bool
	UniqueKeys     bool
	SingleDocument bool
	StreamNodes    bool
	AllDocuments   bool

	// SourceName labels the input in load diagnostics (a file name,
	// usually). Empty leaves error messages as bare marks.
	SourceName string

	// Resolver and Constructor replace the stages a Loader builds for
	// itself, letting a caller register extra implicit-tag rules or typed
	// decoders once and reuse them across loads.
	Resolver    *Resolver
	Constructor *Constructor

	AliasingRestrictionFunction AliasingRestrictionFunction

	// CommentBehavior holds the comment hooks the Composer drives while
	// building nodes. Nil drops comments, which is the default for the
	// Load/Loader surface.
	CommentBehavior CommentBehavior

	// FromLegacy marks an Options built on behalf of the deprecated
	// Unmarshal path, which skips loadSingle's trailing-document check
	// for backward compatibility with the old Decoder.Decode behavior.
	FromLegacy bool
}

// DefaultOptions is the Options value pipeline stages fall back to when
// the caller supplies none. It is zero-valued: each stage applies its own
// defaults for unset fields.
var DefaultOptions = &Options{}

// LegacyOptions carries the fixed settings the deprecated
// Unmarshal/Marshal/Decoder/Encoder surface was built with: go-yaml v3's
// defaults, including v3 comment attachment.
var LegacyOptions = &Options{
	Indent:          4,
	LineWidth:       80,
	Unicode:         true,
	UniqueKeys:      true,
	CommentBehavior: LegacyComments{},
	FromLegacy:      true,
}

// Option configures an Options value, returning an error if the value it
// was given is invalid.
type Option func(*Options) error

// ApplyOptions builds an Options value by applying opts in order,
// returning the first error encountered.
func ApplyOptions(opts ...Option) (*Options, error) {
	o := &Options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// CombineOptions folds opts into a single Option, applying each in order.
// Combined options are themselves reusable, so a set of defaults can be
// built once and layered under per-call overrides.
func CombineOptions(opts ...Option) Option {
	return func(o *Options) error {
		for _, opt := range opts {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// boolArg returns the single value in args, or true if args is empty -
// the pattern every WithXxx(enable ...bool) option below follows so that
// WithCanonical() alone means "enable", matching how the root package's
// callers write it.
func boolArg(args []bool) (bool, error) {
	switch len(args) {
	case 0:
		return true, nil
	case 1:
		return args[0], nil
	default:
		return false, fmt.Errorf("yaml: option accepts at most one bool argument, got %d", len(args))
	}
}

// WithIndent sets the number of spaces used per indentation level when
// dumping. Must be between 1 and 9.
func WithIndent(indent int) Option {
	return func(o *Options) error {
		if indent <= 0 || indent > 9 {
			return fmt.Errorf("yaml: indent must be a positive number between 1 and 9, got %d", indent)
		}
		o.Indent = indent
		return nil
	}
}

// WithCompactSeqIndent controls whether "- " is considered part of the
// indentation of a block sequence, rather than a prefix before it.
func WithCompactSeqIndent(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.CompactSeqIndent = v
		return nil
	}
}

// WithKnownFields makes Load return an error when the input contains a
// mapping key that doesn't match any destination struct field.
func WithKnownFields(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.KnownFields = v
		return nil
	}
}

// WithSingleDocument requires the input to contain exactly one document,
// returning an error if it's empty or holds more than one.
func WithSingleDocument(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.SingleDocument = v
		return nil
	}
}

// WithStreamNodes makes a streaming Loader return *Node values from Load
// instead of decoding into the caller's Go value.
func WithStreamNodes(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.StreamNodes = v
		return nil
	}
}

// WithAllDocuments makes Load/Dump operate on every document in the
// stream rather than exactly one.
func WithAllDocuments(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.AllDocuments = v
		return nil
	}
}

// WithLineWidth sets the target line width the Emitter wraps long plain
// and folded scalars at. Zero or negative disables wrapping.
func WithLineWidth(width int) Option {
	return func(o *Options) error {
		o.LineWidth = width
		return nil
	}
}

// WithUnicode controls whether non-ASCII characters are emitted as-is
// (true) or escaped (false).
func WithUnicode(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.Unicode = v
		return nil
	}
}

// WithUniqueKeys makes Load return an error when a mapping repeats a key.
func WithUniqueKeys(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.UniqueKeys = v
		return nil
	}
}

// WithCanonical dumps in YAML's canonical form: explicit tags on every
// node and no plain scalars.
func WithCanonical(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.Canonical = v
		return nil
	}
}

// WithLineBreak sets the line break style used when dumping.
func WithLineBreak(lb LineBreak) Option {
	return func(o *Options) error {
		o.LineBreak = lb
		return nil
	}
}

// WithSourceName labels the input in load diagnostics, typically with
// the file name the stream came from.
func WithSourceName(name string) Option {
	return func(o *Options) error {
		o.SourceName = name
		return nil
	}
}

// WithResolver makes Load use the given Resolver instead of building a
// default one, so rules registered with AddRule apply.
func WithResolver(r *Resolver) Option {
	return func(o *Options) error {
		o.Resolver = r
		return nil
	}
}

// WithConstructor makes Load use the given Constructor instead of
// building a default one.
func WithConstructor(c *Constructor) Option {
	return func(o *Options) error {
		o.Constructor = c
		return nil
	}
}

// WithEncoding sets the encoding Dump writes the stream in. UTF-16 and
// UTF-32 output starts with the matching BOM; the default is UTF-8
// without one.
func WithEncoding(encoding Encoding) Option {
	return func(o *Options) error {
		switch encoding {
		case ANY_ENCODING, UTF8_ENCODING,
			UTF16LE_ENCODING, UTF16BE_ENCODING,
			UTF32LE_ENCODING, UTF32BE_ENCODING:
			o.Encoding = encoding
			return nil
		}
		return fmt.Errorf("yaml: unknown stream encoding %d", encoding)
	}
}

// WithVersionDirective makes Dump write a %YAML directive on every
// document, which also forces an explicit "---" marker. Only major
// version 1 is accepted.
func WithVersionDirective(major, minor int) Option {
	return func(o *Options) error {
		if major != 1 {
			return fmt.Errorf("yaml: unsupported YAML directive version %d.%d", major, minor)
		}
		o.VersionDirective = &StreamVersionDirective{Major: major, Minor: minor}
		return nil
	}
}

// WithTagDirectives makes Dump write %TAG directives on every document
// and registers their handles for shortening matching tags.
func WithTagDirectives(directives ...StreamTagDirective) Option {
	return func(o *Options) error {
		for _, td := range directives {
			if td.Handle == "" {
				return fmt.Errorf("yaml: tag directive with empty handle")
			}
			o.TagDirectives = append(o.TagDirectives, td)
		}
		return nil
	}
}

// WithExplicitStart makes Dump emit a "---" document start marker.
func WithExplicitStart(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.ExplicitStart = v
		return nil
	}
}

// WithExplicitEnd makes Dump emit a "..." document end marker.
func WithExplicitEnd(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.ExplicitEnd = v
		return nil
	}
}

// WithFlowSimpleCollections renders scalar-only sequences and mappings in
// flow style when they fit within the line width, instead of block style.
func WithFlowSimpleCollections(enable ...bool) Option {
	return func(o *Options) error {
		v, err := boolArg(enable)
		if err != nil {
			return err
		}
		o.FlowSimpleCollections = v
		return nil
	}
}

// WithQuotePreference sets which quote style Dump prefers when a scalar
// must be quoted but neither style is otherwise required.
func WithQuotePreference(style QuoteStyle) Option {
	return func(o *Options) error {
		o.QuotePreference = style
		return nil
	}
}

// WithCommentBehavior installs the comment hooks the Composer drives.
// Nil drops comments.
func WithCommentBehavior(cb CommentBehavior) Option {
	return func(o *Options) error {
		o.CommentBehavior = cb
		return nil
	}
}

// WithAliasingRestrictionFunction overrides the check Load uses to decide
// an alias-expansion bomb is in progress. The default is
// DefaultAliasingRestrictions.
func WithAliasingRestrictionFunction(fn AliasingRestrictionFunction) Option {
	return func(o *Options) error {
		o.AliasingRestrictionFunction = fn
		return nil
	}
}
