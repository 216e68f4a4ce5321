package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgtm98/ToyCComp/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := NewFromReader(strings.NewReader(src), "test.tc")
	var out []token.Token
	for {
		tok := l.Scan()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestScanPunctAndOperators(t *testing.T) {
	toks := scanAll(t, "int x = 1 + 2; if (x >= 3) {}")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.KwInt, token.Ident, token.Assign, token.IntLit, token.Plus,
		token.IntLit, token.Semi, token.KwIf, token.LParen, token.Ident,
		token.Ge, token.IntLit, token.RParen, token.LBrace, token.RBrace,
		token.EOF,
	}, kinds)
}

func TestScanMultiCharOperatorDisambiguation(t *testing.T) {
	toks := scanAll(t, "a <= b >= c == d != e < f > g")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.Ident, token.Le, token.Ident, token.Ge, token.Ident, token.Eq,
		token.Ident, token.Ne, token.Ident, token.Lt, token.Ident, token.Gt,
		token.Ident, token.EOF,
	}, kinds)
}

func TestScanIdentifierVsReservedWord(t *testing.T) {
	toks := scanAll(t, "intake int")
	require.Len(t, toks, 3)
	assert.Equal(t, token.Ident, toks[0].Kind)
	assert.Equal(t, "intake", toks[0].StrPayload)
	assert.Equal(t, token.KwInt, toks[1].Kind)
}

func TestScanIntegerLiteral(t *testing.T) {
	toks := scanAll(t, "255 0 1000000")
	require.Len(t, toks, 4)
	assert.EqualValues(t, 255, toks[0].IntPayload)
	assert.EqualValues(t, 0, toks[1].IntPayload)
	assert.EqualValues(t, 1000000, toks[2].IntPayload)
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	toks := scanAll(t, `"hello\nworld\0"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.StrLit, toks[0].Kind)
	assert.Equal(t, "hello\nworld\x00\x00", toks[0].StrPayload)
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "int // trailing comment\nx /* inline */ = 1;")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.KwInt, token.Ident, token.Assign, token.IntLit, token.Semi, token.EOF,
	}, kinds)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := NewFromReader(strings.NewReader("int x;"), "test.tc")
	first := l.Peek()
	assert.Equal(t, token.KwInt, first.Kind)
	second := l.Peek()
	assert.Equal(t, first, second)
	scanned := l.Scan()
	assert.Equal(t, token.KwInt, scanned.Kind)
	assert.Equal(t, token.Ident, l.Peek().Kind)
}

func TestPeekAtLookahead(t *testing.T) {
	l := NewFromReader(strings.NewReader("int x = 1;"), "test.tc")
	assert.Equal(t, token.KwInt, l.PeekAt(0).Kind)
	assert.Equal(t, token.Ident, l.PeekAt(1).Kind)
	assert.Equal(t, token.Assign, l.PeekAt(2).Kind)
	// Scanning still proceeds from the true head, unaffected by PeekAt.
	assert.Equal(t, token.KwInt, l.Scan().Kind)
}

func TestPeekAtPastEOFReturnsEOF(t *testing.T) {
	l := NewFromReader(strings.NewReader("x"), "test.tc")
	assert.Equal(t, token.EOF, l.PeekAt(5).Kind)
}

func TestCacheNextFillsBufferAndReturnsKind(t *testing.T) {
	l := NewFromReader(strings.NewReader("a = b;"), "test.tc")
	assert.Equal(t, token.Ident, l.CacheNext())
	assert.Equal(t, token.Assign, l.CacheNext())
	// Matching consumes in the original order regardless of caching ahead.
	assert.Equal(t, token.Ident, l.Scan().Kind)
	assert.Equal(t, token.Assign, l.Scan().Kind)
	assert.Equal(t, token.Ident, l.Scan().Kind)
}

func TestMatchReturnsMatchingToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Match test in short mode")
	}
	// Match calls diag.Fatal on mismatch, which terminates the process;
	// exercising that path directly isn't possible in-process, so only the
	// success path is asserted here.
	l := NewFromReader(strings.NewReader("int"), "test.tc")
	tok := l.Match(token.KwInt)
	assert.Equal(t, token.KwInt, tok.Kind)
}
