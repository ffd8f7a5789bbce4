package token

import "testing"

func TestLookupIdentRecognizesKeywords(t *testing.T) {
	cases := map[string]Kind{
		"let": LET, "fx": FX, "if": IF, "else": ELSE, "match": MATCH,
		"enum": ENUM, "struct": STRUCT, "true": TRUE, "false": FALSE, "null": NULL,
	}
	for lit, want := range cases {
		if got := LookupIdent(lit); got != want {
			t.Errorf("LookupIdent(%q) = %s, want %s", lit, got, want)
		}
	}
}

func TestLookupIdentPlainNameIsIdent(t *testing.T) {
	if got := LookupIdent("myVariable"); got != IDENT {
		t.Errorf("LookupIdent(\"myVariable\") = %s, want IDENT", got)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if LET.String() != "let" {
		t.Errorf("LET.String() = %q, want \"let\"", LET.String())
	}
	unknown := Kind(9999)
	if unknown.String() != "Kind(9999)" {
		t.Errorf("got %q, want a Kind(N) fallback", unknown.String())
	}
}

func TestTokenStringIncludesKindLiteralAndPosition(t *testing.T) {
	tok := Token{Kind: IDENT, Literal: "foo", Span: Span{Line: 2, Col: 4}}
	got := tok.String()
	want := `IDENT("foo")@2:4`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
