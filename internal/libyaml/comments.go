// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Comment-processing hooks driven by the Composer. The scanner and parser
// always collect comments and attach them to events; whether and how they
// end up on nodes is decided by the CommentBehavior installed on the
// Composer. With no behavior installed, comments are dropped.

package libyaml

// CommentContext carries the raw comment data of the event currently being
// composed. Behaviors read from it and write to the node they are given.
type CommentContext struct {
	HeadComment []byte
	LineComment []byte
	FootComment []byte

	// TailComment holds the foot comment delivered by a trailing
	// TAIL_COMMENT_EVENT, when one follows the construct. Nil otherwise.
	TailComment []byte
}

// MappingPairContext is handed to ProcessMappingPair after each key/value
// pair of a mapping has been composed, so a behavior can migrate foot
// comments between the key, the value, and earlier entries of the mapping.
type MappingPairContext struct {
	Key     *Node
	Value   *Node
	Mapping *Node

	// Block is true when the surrounding mapping uses block style.
	// Foot-comment migration on dedent only applies in block context.
	Block bool

	// TailComment holds the foot comment of a TAIL_COMMENT_EVENT seen
	// right after the pair, or nil.
	TailComment []byte
}

// CommentBehavior is the hook set the Composer drives while building
// nodes. Each method returns whether the behavior handled the call;
// an unhandled call leaves the node untouched.
type CommentBehavior interface {
	// Kind identifies the plugin family, e.g. "comment".
	Kind() string

	// ProcessComment runs when a node is created, with the comments of
	// the event that produced it.
	ProcessComment(node *Node, ctx *CommentContext) (bool, error)

	// ProcessMappingPair runs after each key/value pair of a mapping.
	ProcessMappingPair(ctx *MappingPairContext) (bool, error)

	// ProcessEndComments runs when a collection or document close event
	// is consumed, with that event's comments.
	ProcessEndComments(node *Node, ctx *CommentContext) (bool, error)
}

// DefaultCommentBehavior is a no-op CommentBehavior intended for
// embedding, so plugins only override the hooks they care about.
type DefaultCommentBehavior struct{}

// Kind returns the plugin type.
func (DefaultCommentBehavior) Kind() string { return "comment" }

func (DefaultCommentBehavior) ProcessComment(*Node, *CommentContext) (bool, error) {
	return false, nil
}

func (DefaultCommentBehavior) ProcessMappingPair(*MappingPairContext) (bool, error) {
	return false, nil
}

func (DefaultCommentBehavior) ProcessEndComments(*Node, *CommentContext) (bool, error) {
	return false, nil
}

// LegacyComments reproduces the go-yaml v3 comment attachment rules: head
// comments go to the following node, line comments to the current node,
// and foot comments are migrated so they land on the entry they follow in
// the source rather than the node the parser delivered them with.
type LegacyComments struct{}

// Kind returns the plugin type.
func (LegacyComments) Kind() string { return "comment" }

func (LegacyComments) ProcessComment(node *Node, ctx *CommentContext) (bool, error) {
	node.HeadComment = string(ctx.HeadComment)
	node.LineComment = string(ctx.LineComment)
	node.FootComment = string(ctx.FootComment)
	return true, nil
}

func (LegacyComments) ProcessMappingPair(ctx *MappingPairContext) (bool, error) {
	k, v, n := ctx.Key, ctx.Value, ctx.Mapping
	if ctx.Block && k.FootComment != "" {
		// Must be a foot comment for the prior value when being dedented.
		if len(n.Content) > 2 {
			n.Content[len(n.Content)-3].FootComment = k.FootComment
			k.FootComment = ""
		}
	}
	if k.FootComment == "" && v.FootComment != "" {
		k.FootComment = v.FootComment
		v.FootComment = ""
	}
	if ctx.TailComment != nil && k.FootComment == "" {
		k.FootComment = string(ctx.TailComment)
	}
	return true, nil
}

func (LegacyComments) ProcessEndComments(node *Node, ctx *CommentContext) (bool, error) {
	node.LineComment = string(ctx.LineComment)
	node.FootComment = string(ctx.FootComment)
	if node.Kind == MappingNode && node.Style&FlowStyle == 0 &&
		node.FootComment != "" && len(node.Content) > 1 {
		// A block mapping's own foot comment belongs to its last value.
		node.Content[len(node.Content)-2].FootComment = node.FootComment
		node.FootComment = ""
	}
	return true, nil
}
