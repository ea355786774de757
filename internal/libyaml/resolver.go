// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0 AND MIT

// Resolver stage: assigns implicit tags to untagged nodes produced by the
// Composer, by first-character dispatch followed by a full-value predicate.

package libyaml

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// tag short forms used internally while resolving and constructing.
const (
	nullTag      = "!!null"
	boolTag      = "!!bool"
	strTag       = "!!str"
	intTag       = "!!int"
	floatTag     = "!!float"
	timestampTag = "!!timestamp"
	seqTag       = "!!seq"
	mapTag       = "!!map"
	binaryTag    = "!!binary"
	mergeTag     = "!!merge"
	setTag       = "!!set"
	omapTag      = "!!omap"
	pairsTag     = "!!pairs"
)

const longTagPrefix = "tag:yaml.org,2002:"

// shortTag collapses a long "tag:yaml.org,2002:foo" tag to its "!!foo" form.
// Tags outside the YAML 1.1 schema namespace, and already-short tags, are
// returned unchanged.
func shortTag(tag string) string {
	if strings.HasPrefix(tag, longTagPrefix) {
		return "!!" + tag[len(longTagPrefix):]
	}
	return tag
}

// longTag expands a "!!foo" tag to its "tag:yaml.org,2002:foo" wire form.
// Tags that are not in the short form are returned unchanged.
func longTag(tag string) string {
	if strings.HasPrefix(tag, "!!") {
		return longTagPrefix + tag[2:]
	}
	return tag
}

func resolvableTag(tag string) bool {
	switch tag {
	case "", strTag, boolTag, intTag, floatTag, nullTag, timestampTag, mergeTag:
		return true
	}
	return false
}

// ResolveRule is a single entry in a Resolver's dispatch table: a tag,
// the set of scalar first characters it may apply to, and a predicate
// deciding whether a given value matches.
type ResolveRule struct {
	Tag     string
	Chars   string
	Matches func(value string) bool
}

// Resolver assigns implicit tags to nodes that carry no explicit tag,
// by first-character dispatch into an ordered rule table (earliest
// registered rule wins), per the YAML 1.1 core schema.
type Resolver struct {
	rules  []ResolveRule
	byChar map[byte][]int
}

// NewResolver builds a Resolver seeded with the YAML 1.1 implicit-tag
// rules. opts may be nil; it is accepted for symmetry with the other
// pipeline stages and to allow future tuning (e.g. a caller that wants a
// stricter or looser core schema).
func NewResolver(opts *Options) *Resolver {
	r := &Resolver{byChar: make(map[byte][]int)}
	for _, rule := range defaultResolveRules {
		r.AddRule(rule)
	}
	return r
}

// AddRule registers an additional implicit-tag rule. Rules already
// registered take priority over it for any value they both match.
func (r *Resolver) AddRule(rule ResolveRule) {
	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	for i := 0; i < len(rule.Chars); i++ {
		c := rule.Chars[i]
		r.byChar[c] = append(r.byChar[c], idx)
	}
}

// Resolve assigns n.Tag in place when the node carries no explicit tag
// (TaggedStyle is unset). Scalars are matched against the seeded rule
// table by first character then full-value predicate; sequences and
// mappings fall back to !!seq / !!map.
func (r *Resolver) Resolve(n *Node) {
	if n == nil || n.Style&TaggedStyle != 0 {
		return
	}
	switch n.Kind {
	case ScalarNode:
		if n.Tag == "" {
			n.Tag = r.resolveScalar(n.Value, n.indicatedString())
		}
	case SequenceNode:
		if n.Tag == "" {
			n.Tag = seqTag
		}
	case MappingNode:
		if n.Tag == "" {
			n.Tag = mapTag
		}
	}
}

func (r *Resolver) resolveScalar(value string, quoted bool) string {
	if quoted {
		return strTag
	}
	if len(value) == 0 {
		return nullTag
	}
	c := value[0]
	for _, idx := range r.byChar[c] {
		rule := r.rules[idx]
		if rule.Matches(value) {
			return rule.Tag
		}
	}
	return strTag
}

// resolve is the package-level entry point used by the Composer and
// Constructor: it maps a possibly-empty explicit tag plus a scalar's raw
// text to (resolved tag, typed Go value). An explicit, non-empty tag is
// honored as given (after being long-formed); an empty tag is resolved
// through the default Resolver.
var defaultResolver = NewResolver(nil)

func resolve(tag, value string) (string, any) {
	rtag := shortTag(tag)
	if rtag == "" || rtag == "!" {
		rtag = defaultResolver.resolveScalar(value, false)
	}
	switch rtag {
	case nullTag:
		return rtag, nil
	case boolTag:
		return rtag, parseBool(value)
	case intTag:
		if i, ok := parseInt(value); ok {
			return rtag, i
		}
		return strTag, value
	case floatTag:
		if f, ok := parseFloat(value); ok {
			return rtag, f
		}
		return strTag, value
	case mergeTag:
		return rtag, value
	case binaryTag:
		return rtag, value
	case timestampTag:
		if t, ok := parseTimestamp(value); ok {
			return rtag, t
		}
		return strTag, value
	}
	return strTag, value
}

// --- predicates -------------------------------------------------------

var (
	boolValues = map[string]bool{
		"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
		"n": false, "N": false, "no": false, "No": false, "NO": false,
		"true": true, "True": true, "TRUE": true,
		"false": false, "False": false, "FALSE": false,
		"on": true, "On": true, "ON": true,
		"off": false, "Off": false, "OFF": false,
	}

	nullValues = map[string]bool{
		"~": true, "null": true, "Null": true, "NULL": true,
	}

	intRe   = regexp.MustCompile(`^[-+]?(0b[0-1_]+|0x[0-9a-fA-F_]+|0[0-7_]*|(0|[1-9][0-9_]*)|[0-9][0-9_]*(:[0-5]?[0-9])+)$`)
	floatRe = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9][0-9_]*\.[0-9_]*|[0-9][0-9_]*)([eE][-+]?[0-9]+)?$`)
	sexaRe  = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(:[0-5]?[0-9]){2,}(\.[0-9_]*)?$`)
)

func isBool(v string) bool {
	_, ok := boolValues[v]
	return ok
}

func isNull(v string) bool {
	return nullValues[v]
}

func isInt(v string) bool {
	return intRe.MatchString(v)
}

func isFloat(v string) bool {
	switch v {
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF", "-.inf", "-.Inf", "-.INF", ".nan", ".NaN", ".NAN":
		return true
	}
	if sexaRe.MatchString(v) {
		return true
	}
	return floatRe.MatchString(v) && strings.ContainsAny(v, ".eE")
}

func isMergeValue(v string) bool { return v == "<<" }
func isValue(v string) bool      { return v == "=" }

var defaultResolveRules = []ResolveRule{
	{Tag: nullTag, Chars: "~nN\x00", Matches: func(v string) bool { return v == "~" || isNull(v) || v == "" }},
	{Tag: boolTag, Chars: "yYnNtTfFoO", Matches: isBool},
	{Tag: mergeTag, Chars: "<", Matches: isMergeValue},
	{Tag: "!!value", Chars: "=", Matches: isValue},
	{Tag: intTag, Chars: "-+0123456789", Matches: isInt},
	{Tag: floatTag, Chars: "-+0123456789.", Matches: isFloat},
	{Tag: timestampTag, Chars: "0123456789", Matches: func(v string) bool { _, ok := parseTimestamp(v); return ok }},
}

func parseBool(v string) bool {
	b, ok := boolValues[v]
	return ok && b
}

func parseInt(v string) (int64, bool) {
	s := strings.ReplaceAll(v, "_", "")
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	var err error
	switch {
	case strings.HasPrefix(s, "0b"):
		n, err = strconv.ParseInt(s[2:], 2, 64)
	case strings.HasPrefix(s, "0x"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		var total int64
		for _, p := range parts {
			digit, perr := strconv.ParseInt(p, 10, 64)
			if perr != nil {
				return 0, false
			}
			total = total*60 + digit
		}
		n = total
	case len(s) > 1 && s[0] == '0':
		n, err = strconv.ParseInt(s, 8, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func parseFloat(v string) (float64, bool) {
	switch v {
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return math.Inf(1), true
	case "-.inf", "-.Inf", "-.INF":
		return math.Inf(-1), true
	case ".nan", ".NaN", ".NAN":
		return math.NaN(), true
	}
	s := strings.ReplaceAll(v, "_", "")
	if sexaRe.MatchString(v) {
		neg := false
		if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
			neg = s[0] == '-'
			s = s[1:]
		}
		parts := strings.Split(s, ":")
		var total float64
		for _, p := range parts {
			d, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, false
			}
			total = total*60 + d
		}
		if neg {
			total = -total
		}
		return total, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
