// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0 AND MIT

package libyaml

import (
	"strings"
	"time"
)

// allowedTimestampFormats lists the ISO-8601 variants the !!timestamp tag
// accepts, tried in order.
var allowedTimestampFormats = []string{
	"2006-1-2T15:4:5.999999999Z07:00", // RCF3339/ISO8601, with short date fields.
	"2006-1-2t15:4:5.999999999Z07:00", // Used in seed scenarios.
	"2006-1-2 15:4:5.999999999",       // space separated with no time zone
	"2006-1-2",                        // date only
}

// parseTimestamp parses a !!timestamp scalar value per the ISO-8601
// variants above, defaulting to UTC and midnight when the time-of-day is
// omitted (B6).
func parseTimestamp(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range allowedTimestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// base64Line is the column the !!binary payload wraps at, so long blobs
// render as a readable literal block.
const base64Line = 76

// encodeBase64 renders s as a !!binary payload, wrapped at base64Line
// columns.
func encodeBase64(s string) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	data := []byte(s)
	var b strings.Builder
	for i := 0; i < len(data); i += 3 {
		chunk := data[i:min(i+3, len(data))]
		var n uint32
		for _, c := range chunk {
			n = n<<8 | uint32(c)
		}
		n <<= uint(8 * (3 - len(chunk)))
		for j := 0; j < 4; j++ {
			if j > len(chunk) {
				b.WriteByte('=')
				continue
			}
			b.WriteByte(chars[(n>>(18-6*uint(j)))&0x3F])
		}
	}
	raw := b.String()
	if len(raw) <= base64Line {
		return raw
	}
	var out strings.Builder
	for i := 0; i < len(raw); i += base64Line {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(raw[i:min(i+base64Line, len(raw))])
	}
	return out.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
