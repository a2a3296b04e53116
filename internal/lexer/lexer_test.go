package lexer

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `shuru bhai x = 2 + 3 * 4 bass`
	l := New(input, "t.bhai")

	expected := []token.Type{
		token.SHURU, token.BHAI, token.IDENT, token.ASSIGN,
		token.INT, token.PLUS, token.INT, token.STAR, token.INT,
		token.BASS, token.EOF,
	}

	for i, want := range expected {
		tok := l.NextToken()
		assert.Equalf(t, want, tok.Type, "token %d: literal %q", i, tok.Literal)
	}
}

func TestLexerAliasNormalization(t *testing.T) {
	// spec.md §8 invariant 2: alias keywords resolve to the same kind tag as
	// their canonical form.
	pairs := [][2]string{
		{"while", "tabtak"},
		{"for", "jabtak"},
		{"do", "kar"},
		{"class", "kaksha"},
		{"void", "khali"},
		{"float", "decimal"},
		{"start_bhai", "shuru"},
		{"bas_kar", "bass"},
		{"laao", "import"},
		{"break", "tod"},
		{"continue", "jari"},
		{"input", "bata"},
	}
	for _, p := range pairs {
		l1 := New(p[0], "a")
		l2 := New(p[1], "b")
		tok1 := l1.NextToken()
		tok2 := l2.NextToken()
		assert.Equalf(t, tok2.Type, tok1.Type, "alias %q should match canonical %q", p[0], p[1])
	}
}

func TestLexerFloatRequiresDotOrExponent(t *testing.T) {
	l := New("3 3.5 1e10 3.", "t")
	tok := l.NextToken()
	assert.Equal(t, token.INT, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.FLOAT, tok.Type)
	assert.Equal(t, "3.5", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, token.FLOAT, tok.Type)
	assert.Equal(t, "1e10", tok.Literal)
	// "3." with no digit after the dot is not a float: the dot is a separate token.
	tok = l.NextToken()
	assert.Equal(t, token.INT, tok.Type)
	assert.Equal(t, "3", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, token.DOT, tok.Type)
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\"e"`, "t")
	tok := l.NextToken()
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, "a\nb\tc\\d\"e", tok.Literal)
}

func TestLexerUnterminatedStringProducesErrorAndContinues(t *testing.T) {
	l := New(`"abc`, "t")
	tok := l.NextToken()
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, "abc", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, token.EOF, tok.Type)
	require := l.Errors()
	assert.Len(t, require, 1)
	assert.Contains(t, require[0].Message, "unterminated string")
}

func TestLexerIllegalCharacterRecovers(t *testing.T) {
	l := New("x ` y", "t")
	tok := l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.ILLEGAL, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "y", tok.Literal)
	assert.Len(t, l.Errors(), 1)
}

func TestLexerNewlinePreservedAsToken(t *testing.T) {
	l := New("x\ny", "t")
	tok := l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.NEWLINE, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
}

func TestLexerDeterminism(t *testing.T) {
	// spec.md §8 invariant 1: re-tokenizing yields byte-identical spans.
	input := "shuru bhai sum = 0 jabtak(i = 0; i < 5; i++) { sum += i } bol(sum) bass"
	toks1 := allTokens(input)
	toks2 := allTokens(input)
	assert.Equal(t, toks1, toks2)
}

func allTokens(input string) []token.Token {
	l := New(input, "t")
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerBlockCommentNonNesting(t *testing.T) {
	l := New("x /* a /* b */ y */ z", "t")
	tok := l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "x", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "y", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, token.STAR, tok.Type)
}

func TestLexerCompoundAssignAndIncDec(t *testing.T) {
	l := New("x += 1 x++ x-- x -= 1", "t")
	want := []token.Type{token.IDENT, token.PLUS_ASSIGN, token.INT, token.IDENT, token.INC,
		token.IDENT, token.DEC, token.IDENT, token.MINUS_ASSIGN, token.INT, token.EOF}
	for _, w := range want {
		tok := l.NextToken()
		assert.Equal(t, w, tok.Type)
	}
}
