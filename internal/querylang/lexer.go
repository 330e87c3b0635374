// Package querylang turns free-text issue queries into the predicate IR.
//
// The syntax follows GitHub search: whitespace separated tokens,
// "quoted phrases" kept as one token, key:value and -key:value clauses, and
// bare keywords. Nothing in this package returns an error; malformed text
// degrades to keywords or is ignored.
package querylang

import "strings"

// lexState is the two-state machine driving Tokenize.
type lexState int

const (
	stateNormal lexState = iota
	stateInPhrase
)

// Tokenize splits a query into tokens.
//
// A double quote toggles phrase mode and is dropped. Outside a phrase a
// space ends the current token; inside a phrase it is kept. Consecutive
// spaces yield empty tokens, and the pending token is always emitted at the
// end, so an empty query yields a single empty token. An unterminated
// phrase runs to the end of the input. Quotes cannot be escaped.
func Tokenize(query string) []string {
	var (
		tokens []string
		cur    strings.Builder
		state  = stateNormal
	)

	for _, r := range query {
		switch {
		case r == '"':
			if state == stateNormal {
				state = stateInPhrase
			} else {
				state = stateNormal
			}
		case r == ' ' && state == stateNormal:
			tokens = append(tokens, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	return append(tokens, cur.String())
}
