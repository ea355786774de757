//
// Copyright (c) 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0
//

package yaml

import (
	"errors"
	"fmt"

	"go.yaml.in/yaml/v4/internal/libyaml"
)

// CommentContext carries the raw comment data of the event currently
// being processed, as collected by the parser.
type CommentContext = libyaml.CommentContext

// Plugin is the common surface every plugin exposes. Kind identifies the
// plugin family; "comment" is the only kind the core drives today.
type Plugin interface {
	Kind() string
}

// CommentPlugin processes comments during YAML parsing.
//
// When registered, the ProcessComment method is called for each node during
// parsing, allowing the plugin to attach or transform comment data.
//
// Example usage:
//
//	loader := yaml.NewLoader(data, yaml.WithPlugin(commentPlugin))
type CommentPlugin interface {
	// ProcessComment is called for each node during parsing.
	// The node parameter is the node being processed.
	// The ctx parameter contains the raw comment data from the parser.
	// Plugins can modify the node's comment fields based on ctx.
	ProcessComment(node *Node, ctx *CommentContext) error
}

// nodeCommentPlugin is the shape of the plugin/comment/v3 package's
// plugin: event-level and node-level hooks, both fed the same context.
type nodeCommentPlugin interface {
	ProcessEventComments(ctx *CommentContext) error
	ProcessNodeComments(node *Node, ctx *CommentContext) error
}

// nodeCommentAdapter drives a nodeCommentPlugin from the composer's
// hooks. Pair and end-of-collection handling keep the legacy rules; only
// per-node attachment is delegated.
type nodeCommentAdapter struct {
	libyaml.LegacyComments
	plugin nodeCommentPlugin
}

func (a nodeCommentAdapter) ProcessComment(n *Node, ctx *CommentContext) (bool, error) {
	if err := a.plugin.ProcessEventComments(ctx); err != nil {
		return false, err
	}
	if err := a.plugin.ProcessNodeComments(n, ctx); err != nil {
		return false, err
	}
	return true, nil
}

// commentPluginAdapter does the same for the single-method CommentPlugin
// interface.
type commentPluginAdapter struct {
	libyaml.LegacyComments
	plugin CommentPlugin
}

func (a commentPluginAdapter) ProcessComment(n *Node, ctx *CommentContext) (bool, error) {
	if err := a.plugin.ProcessComment(n, ctx); err != nil {
		return false, err
	}
	return true, nil
}

// WithPlugin registers a plugin for the operation being configured.
// Supported plugin shapes are the CommentPlugin interface, the
// plugin/comment/v3 package's plugin, and any value implementing the
// internal comment hooks directly (such as plugin/comment/v3legacy's).
// Anything else is rejected.
func WithPlugin(p any) Option {
	return func(o *libyaml.Options) error {
		switch v := p.(type) {
		case libyaml.CommentBehavior:
			o.CommentBehavior = v
		case nodeCommentPlugin:
			o.CommentBehavior = nodeCommentAdapter{plugin: v}
		case CommentPlugin:
			o.CommentBehavior = commentPluginAdapter{plugin: v}
		default:
			return errors.New("yaml: unsupported plugin type")
		}
		return nil
	}
}

// WithoutPlugin removes any plugin of the given kind from the operation
// being configured. Loading without a comment plugin drops comments.
func WithoutPlugin(kind string) Option {
	return func(o *libyaml.Options) error {
		if kind != "comment" {
			return fmt.Errorf("yaml: unknown plugin kind %q", kind)
		}
		o.CommentBehavior = nil
		return nil
	}
}

// WithV3LegacyComments enables go-yaml v3's comment attachment rules,
// equivalent to WithPlugin(v3legacy.New()).
func WithV3LegacyComments() Option {
	return func(o *libyaml.Options) error {
		o.CommentBehavior = libyaml.LegacyComments{}
		return nil
	}
}
