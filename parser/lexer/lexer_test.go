package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HatsuSixty/loisp/parser/token"
)

func lexAll(src string) []*token.Token {
	return New(token.NewScanner("test.loisp", []byte(src))).Tokens()
}

func kinds(toks []*token.Token) []token.Type {
	ts := make([]token.Type, len(toks))
	for i, tok := range toks {
		ts[i] = tok.Type
	}
	return ts
}

func TestTokens(t *testing.T) {
	toks := lexAll(`(print (+ 34 35))`)
	assert.Equal(t, []token.Type{
		token.PAREN_L, token.WORD, token.PAREN_L, token.WORD,
		token.INT, token.INT, token.PAREN_R, token.PAREN_R, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "print", toks[1].Text)
	assert.Equal(t, "+", toks[3].Text)
}

func TestWords(t *testing.T) {
	for _, word := range []string{"+", "<=", "?alpha", "$1", "strlen", "1abc", "-", "a-b_c"} {
		toks := lexAll(word)
		require.Len(t, toks, 2, "lexing %q", word)
		assert.Equal(t, token.WORD, toks[0].Type, "lexing %q", word)
		assert.Equal(t, word, toks[0].Text)
	}
}

func TestIntegers(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"-42", -42},
		{"0x10", 16},
		{"0xff", 255},
		{"-0x10", -16},
		{"9223372036854775807", 9223372036854775807},
		{"-9223372036854775808", -9223372036854775808},
	}
	for _, tt := range tests {
		toks := lexAll(tt.src)
		require.Equal(t, token.INT, toks[0].Type, "lexing %q", tt.src)
		n, err := ParseInt(toks[0].Text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n)
	}
}

func TestIntegerOutOfRange(t *testing.T) {
	toks := lexAll("9223372036854775808")
	require.Equal(t, token.ERROR, toks[0].Type)
	assert.Contains(t, toks[0].Text, "out of range")
}

func TestStrings(t *testing.T) {
	toks := lexAll(`"hello"`)
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, `"hello"`, toks[0].Text)

	toks = lexAll(`"a\nb\t\"\\\0"`)
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\nb\t\"\\\x00", Unescape(toks[0].Text[1:len(toks[0].Text)-1]))
}

func TestStringErrors(t *testing.T) {
	toks := lexAll(`"unterminated`)
	require.Equal(t, token.ERROR, toks[0].Type)
	assert.Contains(t, toks[0].Text, "unterminated string")

	toks = lexAll(`"bad \q escape"`)
	require.Equal(t, token.ERROR, toks[0].Type)
	assert.Contains(t, toks[0].Text, "unknown escape")
}

func TestChars(t *testing.T) {
	toks := lexAll(`'a'`)
	require.Equal(t, token.CHAR, toks[0].Type)
	assert.Equal(t, "a", Unescape(toks[0].Text[1:len(toks[0].Text)-1]))

	toks = lexAll(`'\n'`)
	require.Equal(t, token.CHAR, toks[0].Type)
	assert.Equal(t, "\n", Unescape(toks[0].Text[1:len(toks[0].Text)-1]))

	toks = lexAll(`'a`)
	assert.Equal(t, token.ERROR, toks[0].Type)
}

func TestComments(t *testing.T) {
	toks := lexAll("(print 1) ; trailing comment\n(print 2)")
	var words int
	for _, tok := range toks {
		switch tok.Type {
		case token.COMMENT:
			assert.Contains(t, tok.Text, "trailing comment")
		case token.WORD:
			words++
		}
	}
	assert.Equal(t, 2, words)
}

func TestLocations(t *testing.T) {
	toks := lexAll("(a\n  b)")
	// "(" 1:1, "a" 1:2, "b" 2:3, ")" 2:4
	assert.Equal(t, 1, toks[0].Source.Line)
	assert.Equal(t, 1, toks[0].Source.Col)
	assert.Equal(t, 1, toks[1].Source.Line)
	assert.Equal(t, 2, toks[1].Source.Col)
	assert.Equal(t, 2, toks[2].Source.Line)
	assert.Equal(t, 3, toks[2].Source.Col)
	assert.Equal(t, "test.loisp:2:3", toks[2].Source.String())
}

// Lexing the token texts printed back as whitespace-separated source yields
// the same token sequence.
func TestRoundTrip(t *testing.T) {
	src := `(setvar x 10) ; init
(while (< (getvar x) 0x20)
  (syscall 1 1 (castint "hi\n") 3)
  (chvar x (+ (getvar x) '\n')))`
	first := lexAll(src)

	var parts []string
	for _, tok := range first {
		if tok.Type == token.COMMENT || tok.Type == token.EOF {
			continue
		}
		parts = append(parts, tok.Text)
	}
	second := lexAll(strings.Join(parts, " "))

	var expect []*token.Token
	for _, tok := range first {
		if tok.Type == token.COMMENT {
			continue
		}
		expect = append(expect, tok)
	}
	require.Equal(t, len(expect), len(second))
	for i := range expect {
		assert.Equal(t, expect[i].Type, second[i].Type)
		assert.Equal(t, expect[i].Text, second[i].Text)
	}
}
