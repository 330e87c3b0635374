package ir

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Delimiters wrapped around each entry of a multi-value column. A search
// for the wrapped value cannot match a neighbouring entry or a prefix of
// a longer one, so "bob" never matches "bobby".
const (
	ValueOpen  = "<<<<"
	ValueClose = ">>>>"
)

// WrapValue returns v wrapped in the multi-value delimiters.
func WrapValue(v string) string {
	return ValueOpen + v + ValueClose
}

// NormalizeValue lower-cases v and converts it to NFC. Query values are
// lower-cased by the classifier, so stored values must be folded the same
// way to compare equal.
func NormalizeValue(v string) string {
	return norm.NFC.String(cases.Lower(language.Und).String(strings.TrimSpace(v)))
}

// JoinValues encodes values as a multi-value column. Entries are
// normalized and deduplicated in first-seen order; blank entries are
// dropped. ok is false when nothing remains, which the store writes as
// NULL.
func JoinValues(values []string) (joined string, ok bool) {
	var (
		b    strings.Builder
		seen = make(map[string]bool, len(values))
	)
	for _, v := range values {
		n := NormalizeValue(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		b.WriteString(WrapValue(n))
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// SplitValues decodes a multi-value column. Text outside the delimiters is
// ignored.
func SplitValues(joined string) []string {
	values := []string{}
	rest := joined
	for {
		start := strings.Index(rest, ValueOpen)
		if start < 0 {
			return values
		}
		rest = rest[start+len(ValueOpen):]
		end := strings.Index(rest, ValueClose)
		if end < 0 {
			return values
		}
		values = append(values, rest[:end])
		rest = rest[end+len(ValueClose):]
	}
}
