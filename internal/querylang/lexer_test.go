package querylang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{""}},
		{name: "single word", input: "bug", want: []string{"bug"}},
		{name: "two words", input: "is:open author:alice", want: []string{"is:open", "author:alice"}},
		{name: "double space", input: "a  b", want: []string{"a", "", "b"}},
		{name: "leading and trailing spaces", input: " a ", want: []string{"", "a", ""}},
		{name: "phrase", input: `"hello world"`, want: []string{"hello world"}},
		{name: "phrase as value", input: `label:"good first issue" is:open`, want: []string{"label:good first issue", "is:open"}},
		{name: "phrase in middle of word", input: `ab"c d"e`, want: []string{"abc de"}},
		{name: "unterminated phrase", input: `title:"fix the`, want: []string{"title:fix the"}},
		{name: "phrase keeps repeated spaces", input: `"a  b"`, want: []string{"a  b"}},
		{name: "sort phrase", input: `sort:"updated desc, author"`, want: []string{"sort:updated desc, author"}},
		{name: "empty phrase", input: `""`, want: []string{""}},
		{name: "tab is not a separator", input: "a\tb", want: []string{"a\tb"}},
		{name: "unicode", input: `label:"bogue très grave"`, want: []string{"label:bogue très grave"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.input))
		})
	}
}

func TestTokenize_PhraseRoundTrip(t *testing.T) {
	phrases := []string{
		"hello world",
		"a  b   c",
		"label with: colon",
		" leading and trailing ",
		"ünïcödé text",
	}

	for _, phrase := range phrases {
		tokens := Tokenize(`"` + phrase + `"`)
		assert.Equal(t, phrase, strings.Join(tokens, " "), "phrase %q", phrase)
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	input := `is:open -label:"wont fix" sort:"updated desc" bug`
	first := Tokenize(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Tokenize(input))
	}
}
