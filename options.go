//
// Copyright (c) 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0
//

package yaml

import (
	"errors"

	"go.yaml.in/yaml/v4/internal/libyaml"
)

// Option configures a load or dump operation; build one with the With*
// constructors below. Re-exported from internal/libyaml.
type Option = libyaml.Option

// The With* option constructors, re-exported from internal/libyaml.
var (
	WithIndent                = libyaml.WithIndent
	WithCompactSeqIndent      = libyaml.WithCompactSeqIndent
	WithKnownFields           = libyaml.WithKnownFields
	WithSingleDocument        = libyaml.WithSingleDocument
	WithLineWidth             = libyaml.WithLineWidth
	WithUnicode               = libyaml.WithUnicode
	WithUniqueKeys            = libyaml.WithUniqueKeys
	WithCanonical             = libyaml.WithCanonical
	WithLineBreak             = libyaml.WithLineBreak
	WithExplicitStart         = libyaml.WithExplicitStart
	WithExplicitEnd           = libyaml.WithExplicitEnd
	WithFlowSimpleCollections = libyaml.WithFlowSimpleCollections
	WithAllDocuments          = libyaml.WithAllDocuments
	WithAll                   = libyaml.WithAllDocuments
	WithStreamNodes           = libyaml.WithStreamNodes
	WithEncoding              = libyaml.WithEncoding
	WithVersionDirective      = libyaml.WithVersionDirective
	WithTagDirectives         = libyaml.WithTagDirectives
	WithSourceName            = libyaml.WithSourceName
	WithResolver              = libyaml.WithResolver
	WithConstructor           = libyaml.WithConstructor
)

// Options folds several options into one, handy for presets and for
// layering custom settings over a version default:
//
//	opts := yaml.Options(yaml.V4, yaml.WithIndent(3))
//	yaml.Dump(&data, opts)
func Options(opts ...Option) Option {
	return libyaml.CombineOptions(opts...)
}

// lineBreakNames maps OptsYAML's line-break spellings to their values.
var lineBreakNames = map[string]LineBreak{
	"ln":   LineBreakLN,
	"cr":   LineBreakCR,
	"crln": LineBreakCRLN,
}

// OptsYAML parses option settings out of a YAML string, returning an
// Option combinable with others via Options(). Recognized fields:
//
//   - indent (int)
//   - compact-seq-indent (bool)
//   - line-width (int)
//   - unicode (bool)
//   - canonical (bool)
//   - line-break (string: ln, cr, crln)
//   - explicit-start (bool)
//   - explicit-end (bool)
//   - flow-simple-coll (bool)
//   - known-fields (bool)
//   - single-document (bool)
//   - unique-keys (bool)
//
// Only fields present in the YAML take effect; everything else is left
// to the other options in play:
//
//	opts, err := yaml.OptsYAML(`
//	  indent: 3
//	  known-fields: true
//	`)
//	yaml.Dump(&data, yaml.Options(V4, opts))
func OptsYAML(yamlStr string) (Option, error) {
	var cfg struct {
		Indent                *int    `yaml:"indent"`
		CompactSeqIndent      *bool   `yaml:"compact-seq-indent"`
		LineWidth             *int    `yaml:"line-width"`
		Unicode               *bool   `yaml:"unicode"`
		Canonical             *bool   `yaml:"canonical"`
		LineBreak             *string `yaml:"line-break"`
		ExplicitStart         *bool   `yaml:"explicit-start"`
		ExplicitEnd           *bool   `yaml:"explicit-end"`
		FlowSimpleCollections *bool   `yaml:"flow-simple-coll"`
		KnownFields           *bool   `yaml:"known-fields"`
		SingleDocument        *bool   `yaml:"single-document"`
		UniqueKeys            *bool   `yaml:"unique-keys"`
	}
	if err := Load([]byte(yamlStr), &cfg, WithKnownFields()); err != nil {
		return nil, err
	}

	var optList []Option
	add := func(opt Option) { optList = append(optList, opt) }

	if cfg.Indent != nil {
		add(WithIndent(*cfg.Indent))
	}
	if cfg.CompactSeqIndent != nil {
		add(WithCompactSeqIndent(*cfg.CompactSeqIndent))
	}
	if cfg.LineWidth != nil {
		add(WithLineWidth(*cfg.LineWidth))
	}
	if cfg.Unicode != nil {
		add(WithUnicode(*cfg.Unicode))
	}
	if cfg.ExplicitStart != nil {
		add(WithExplicitStart(*cfg.ExplicitStart))
	}
	if cfg.ExplicitEnd != nil {
		add(WithExplicitEnd(*cfg.ExplicitEnd))
	}
	if cfg.FlowSimpleCollections != nil {
		add(WithFlowSimpleCollections(*cfg.FlowSimpleCollections))
	}
	if cfg.KnownFields != nil {
		add(WithKnownFields(*cfg.KnownFields))
	}
	if cfg.SingleDocument != nil && *cfg.SingleDocument {
		add(WithSingleDocument())
	}
	if cfg.UniqueKeys != nil {
		add(WithUniqueKeys(*cfg.UniqueKeys))
	}
	if cfg.Canonical != nil {
		add(WithCanonical(*cfg.Canonical))
	}
	if cfg.LineBreak != nil {
		lb, ok := lineBreakNames[*cfg.LineBreak]
		if !ok {
			return nil, errors.New("yaml: invalid line-break value (use ln, cr, or crln)")
		}
		add(WithLineBreak(lb))
	}

	return Options(optList...), nil
}

// V2 provides go-yaml v2 formatting defaults:
//   - 2-space indentation
//   - Non-compact sequence indentation
//   - 80-character line width
//   - Unicode enabled
//   - Unique keys enforced
//
// Usage:
//
//	yaml.Dump(&data, yaml.V2)
//	yaml.Dump(&data, yaml.V2, yaml.WithIndent(4))
var V2 = Options(
	WithIndent(2),
	WithCompactSeqIndent(false),
	WithLineWidth(80),
	WithUnicode(true),
	WithUniqueKeys(true),
)

// V3 provides go-yaml v3 formatting defaults:
//   - 4-space indentation (classic go-yaml v3 style)
//   - Non-compact sequence indentation
//   - 80-character line width
//   - Unicode enabled
//   - Unique keys enforced
//   - v3 comment attachment
//
// Usage:
//
//	yaml.Dump(&data, yaml.V3)
//	yaml.Dump(&data, yaml.V3, yaml.WithIndent(2))
var V3 = Options(
	WithIndent(4),
	WithCompactSeqIndent(false),
	WithLineWidth(80),
	WithUnicode(true),
	WithUniqueKeys(true),
	WithV3LegacyComments(),
)

// V4 provides go-yaml v4 formatting defaults:
//   - 2-space indentation (more compact than v3)
//   - Compact sequence indentation
//   - 80-character line width
//   - Unicode enabled
//   - Unique keys enforced
//
// Usage:
//
//	yaml.Dump(&data, yaml.V4)
var V4 = Options(
	WithIndent(2),
	WithCompactSeqIndent(true),
	WithLineWidth(80),
	WithUnicode(true),
	WithUniqueKeys(true),
)

// WithV2Defaults returns the V2 formatting preset as a single option.
func WithV2Defaults() Option { return V2 }

// WithV3Defaults returns the V3 formatting preset as a single option.
func WithV3Defaults() Option { return V3 }

// WithV4Defaults returns the V4 formatting preset as a single option.
func WithV4Defaults() Option { return V4 }
