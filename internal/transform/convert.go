// Package transform interprets staged rows into normalized entities,
// idempotently and resumably.
package transform

import (
	"strconv"
	"strings"
	"time"
)

// Conversion rules: malformed input is never fatal. Required integers
// default to 0, nullable integers to null, booleans to false; the nullable
// boolean conversion preserves null for empty input.

func toInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func toNullInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

var trueTokens = map[string]bool{"1": true, "true": true, "y": true}

func toBool(s string) bool {
	return trueTokens[strings.ToLower(strings.TrimSpace(s))]
}

func toNullBool(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	b := toBool(s)
	return &b
}

// toDate parses the source date column. Both ISO and compact Retrosheet
// forms appear in the historical files; an unparseable date yields the zero
// time rather than an error.
func toDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "20060102", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
