// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Event-notation rendering of a parsed stream, in the format the YAML
// test suite uses for its test.event files.

package libyaml

import "strings"

// ParserGetEvents parses in and renders the resulting event stream in the
// YAML test suite's event notation, one event per line with no trailing
// newline:
//
//	+STR
//	+DOC ---
//	+SEQ []
//	=VAL :Red
//	=ALI *a
//	-SEQ
//	-DOC ...
//	-STR
//
// Anchors print as " &name", explicit tags as " <uri>". Scalar values
// follow their style indicator (: ' " | >) with \\ \n \t \r \b escaped.
// On a parse error the events rendered so far are returned with it.
func ParserGetEvents(in []byte) (string, error) {
	parser := NewParser()
	defer parser.Delete()
	if len(in) == 0 {
		in = []byte{'\n'}
	}
	parser.SetInputString(in)

	var sb strings.Builder
	var event Event
	for {
		if err := parser.Parse(&event); err != nil {
			return strings.TrimSuffix(sb.String(), "\n"), err
		}
		writeEventNotation(&sb, &event)
		done := event.Type == STREAM_END_EVENT
		event.Delete()
		if done {
			return strings.TrimSuffix(sb.String(), "\n"), nil
		}
	}
}

func writeEventNotation(sb *strings.Builder, event *Event) {
	switch event.Type {
	case STREAM_START_EVENT:
		sb.WriteString("+STR\n")
	case STREAM_END_EVENT:
		sb.WriteString("-STR\n")
	case DOCUMENT_START_EVENT:
		sb.WriteString("+DOC")
		if !event.Implicit {
			sb.WriteString(" ---")
		}
		sb.WriteByte('\n')
	case DOCUMENT_END_EVENT:
		sb.WriteString("-DOC")
		if !event.Implicit {
			sb.WriteString(" ...")
		}
		sb.WriteByte('\n')
	case SEQUENCE_START_EVENT:
		sb.WriteString("+SEQ")
		if event.SequenceStyle()&FLOW_SEQUENCE_STYLE != 0 {
			sb.WriteString(" []")
		}
		writeEventProperties(sb, event, !event.Implicit)
		sb.WriteByte('\n')
	case SEQUENCE_END_EVENT:
		sb.WriteString("-SEQ\n")
	case MAPPING_START_EVENT:
		sb.WriteString("+MAP")
		if event.MappingStyle()&FLOW_MAPPING_STYLE != 0 {
			sb.WriteString(" {}")
		}
		writeEventProperties(sb, event, !event.Implicit)
		sb.WriteByte('\n')
	case MAPPING_END_EVENT:
		sb.WriteString("-MAP\n")
	case ALIAS_EVENT:
		sb.WriteString("=ALI *")
		sb.Write(event.Anchor)
		sb.WriteByte('\n')
	case SCALAR_EVENT:
		sb.WriteString("=VAL")
		writeEventProperties(sb, event, !event.Implicit && !event.quoted_implicit)
		sb.WriteByte(' ')
		sb.WriteByte(scalarStyleIndicator(event.ScalarStyle()))
		sb.WriteString(escapeEventValue(event.Value))
		sb.WriteByte('\n')
	}
}

func writeEventProperties(sb *strings.Builder, event *Event, explicitTag bool) {
	if len(event.Anchor) > 0 {
		sb.WriteString(" &")
		sb.Write(event.Anchor)
	}
	if explicitTag && len(event.Tag) > 0 {
		sb.WriteString(" <")
		sb.Write(event.Tag)
		sb.WriteByte('>')
	}
}

func scalarStyleIndicator(style ScalarStyle) byte {
	switch {
	case style&SINGLE_QUOTED_SCALAR_STYLE != 0:
		return '\''
	case style&DOUBLE_QUOTED_SCALAR_STYLE != 0:
		return '"'
	case style&LITERAL_SCALAR_STYLE != 0:
		return '|'
	case style&FOLDED_SCALAR_STYLE != 0:
		return '>'
	}
	return ':'
}

func escapeEventValue(value []byte) string {
	var sb strings.Builder
	for _, c := range value {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
