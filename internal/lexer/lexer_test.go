package lexer

import (
	"testing"

	"github.com/horizonanalytic/stratum/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want ...token.Kind) {
	t.Helper()
	toks := Tokenize(src)
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize(%q)[%d] = %s, want %s", src, i, got[i], want[i])
		}
	}
}

func TestTokenizeSimpleArithmetic(t *testing.T) {
	assertKinds(t, "1 + 2", token.INT, token.PLUS, token.INT, token.EOF)
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	assertKinds(t, "let x = foo", token.LET, token.IDENT, token.ASSIGN, token.IDENT, token.EOF)
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	assertKinds(t, "a == b != c -> d => e",
		token.IDENT, token.EQ, token.IDENT, token.NE, token.IDENT,
		token.ARROW, token.IDENT, token.FATARROW, token.IDENT, token.EOF)
}

func TestTokenizeNullSafeAndCoalesceOperators(t *testing.T) {
	assertKinds(t, "a?.b ?? c", token.IDENT, token.QDOT, token.IDENT, token.QQ, token.IDENT, token.EOF)
}

func TestTokenizeRangeOperators(t *testing.T) {
	assertKinds(t, "0..10", token.INT, token.DOTDOT, token.INT, token.EOF)
	assertKinds(t, "0..=10", token.INT, token.DOTDOTEQ, token.INT, token.EOF)
}

func TestTokenizeHexBinOctIntegers(t *testing.T) {
	toks := Tokenize("0xFF 0b101 0o17")
	for i, want := range []string{"0xFF", "0b101", "0o17"} {
		if toks[i].Kind != token.INT || toks[i].Literal != want {
			t.Errorf("token %d: got %s %q, want INT %q", i, toks[i].Kind, toks[i].Literal, want)
		}
	}
}

func TestTokenizeFloatWithExponent(t *testing.T) {
	toks := Tokenize("1.5e10")
	if toks[0].Kind != token.FLOAT || toks[0].Literal != "1.5e10" {
		t.Errorf("got %s %q, want FLOAT \"1.5e10\"", toks[0].Kind, toks[0].Literal)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	assertKinds(t, "1 // trailing comment\n+ 2", token.INT, token.COMMENT, token.NEWLINE, token.PLUS, token.INT, token.EOF)
}

func TestTokenizeDocCommentKind(t *testing.T) {
	toks := Tokenize("/// does a thing\nfx f() {}")
	if toks[0].Kind != token.DOC_COMMENT {
		t.Fatalf("got %s, want DOC_COMMENT", toks[0].Kind)
	}
}

func TestTokenizeSimpleString(t *testing.T) {
	assertKinds(t, `"hello"`, token.STRING_START, token.STRING_PART, token.STRING_END, token.EOF)
}

func TestTokenizeStringWithInterpolation(t *testing.T) {
	assertKinds(t, `"a{x}b"`,
		token.STRING_START, token.STRING_PART, token.INTERP_START, token.IDENT, token.INTERP_END,
		token.STRING_PART, token.STRING_END, token.EOF)
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks := Tokenize(`"a\nb"`)
	if toks[1].Kind != token.STRING_PART || toks[1].Literal != "a\nb" {
		t.Errorf("got %q, want unescaped \"a\\nb\"", toks[1].Literal)
	}
}

func TestTokenizeTripleQuotedStringNeverInterpolates(t *testing.T) {
	assertKinds(t, `"""a{b}"""`, token.TSTRING_START, token.STRING_PART, token.TSTRING_END, token.EOF)
}

func TestTokenizeUnterminatedStringIsIllegal(t *testing.T) {
	toks := Tokenize(`"abc`)
	var sawIllegal bool
	for _, tok := range toks {
		if tok.Kind == token.ILLEGAL {
			sawIllegal = true
		}
	}
	if !sawIllegal {
		t.Errorf("expected an ILLEGAL token for an unterminated string, got %v", kinds(toks))
	}
}

func TestTokenizeBraceDepthInsideInterpolation(t *testing.T) {
	// The `{ y: 1 }` struct literal inside the interpolation must not be
	// mistaken for the interpolation's own closing brace.
	toks := Tokenize(`"{ {y: 1}.y }"`)
	var opens, closes int
	for _, tok := range toks {
		switch tok.Kind {
		case token.LBRACE:
			opens++
		case token.RBRACE:
			closes++
		}
	}
	if opens != closes {
		t.Errorf("mismatched brace counts inside interpolation: %d opens, %d closes", opens, closes)
	}
}

func TestTokenizeSpanTracksLineAndColumn(t *testing.T) {
	toks := Tokenize("a\nb")
	if toks[0].Span.Line != 1 {
		t.Errorf("got line %d for first token, want 1", toks[0].Span.Line)
	}
	// toks[1] is the NEWLINE, toks[2] is b on line 2.
	if toks[2].Span.Line != 2 {
		t.Errorf("got line %d for token after newline, want 2", toks[2].Span.Line)
	}
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	toks := Tokenize("1 $ 2")
	if toks[1].Kind != token.ILLEGAL {
		t.Errorf("got %s, want ILLEGAL for '$'", toks[1].Kind)
	}
}

func TestTokenizeAlwaysTerminatesWithEOF(t *testing.T) {
	toks := Tokenize("")
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Errorf("Tokenize(\"\") = %v, want a single EOF", toks)
	}
}
