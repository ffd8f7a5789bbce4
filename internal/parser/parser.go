// Package parser implements a recursive-descent, Pratt-style parser that
// turns a Stratum token stream into an ast.Module.
package parser

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/lexer"
	"github.com/horizonanalytic/stratum/internal/token"
)

// Precedence levels, low to high, per spec §4.2.
const (
	_ int = iota
	precLowest
	precAssign     // =  (right-assoc)
	precPipe       // |>
	precCoalesce   // ??
	precOr         // ||
	precAnd        // &&
	precEquality   // == !=
	precComparison // < <= > >=
	precRange      // .. ..=
	precAdditive   // + -
	precMultiplicative
	precUnary
	precPostfix // call / index / member chain, ?. and ?.[]
)

var precedences = map[token.Kind]int{
	token.ASSIGN:   precAssign,
	token.PIPE:     precPipe,
	token.QQ:       precCoalesce,
	token.OR:       precOr,
	token.AND:      precAnd,
	token.EQ:       precEquality,
	token.NE:       precEquality,
	token.LT:       precComparison,
	token.LE:       precComparison,
	token.GT:       precComparison,
	token.GE:       precComparison,
	token.DOTDOT:   precRange,
	token.DOTDOTEQ: precRange,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
	token.LPAREN:   precPostfix,
	token.LBRACKET: precPostfix,
	token.DOT:      precPostfix,
	token.QDOT:     precPostfix,
}

// maxRecursionDepth guards against pathological input driving the parser
// into unbounded recursion.
const maxRecursionDepth = 2000

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser consumes a token stream and produces an ast.Module, collecting
// diagnostics rather than stopping at the first error.
type Parser struct {
	toks []token.Token
	pos  int

	cur, peek       token.Token
	curIdx, peekIdx int

	errors []diagnostics.Diagnostic
	depth  int

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn

	// docs[i] is the doc-comment trivia immediately preceding toks[i].
	docs map[int]string
}

// New constructs a Parser over an already-lexed token stream (trivia and
// all — doc comments are extracted internally).
func New(toks []token.Token) *Parser {
	filtered, docs := stripTrivia(toks)
	p := &Parser{toks: filtered, docs: docs}
	p.prefixFns = map[token.Kind]prefixParseFn{}
	p.infixFns = map[token.Kind]infixParseFn{}
	p.registerPrefix()
	p.registerInfix()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse lexes and parses src end to end.
func Parse(src string) (*ast.Module, []diagnostics.Diagnostic) {
	toks := lexer.Tokenize(src)
	p := New(toks)
	mod := p.parseModule()
	return mod, p.errors
}

// stripTrivia removes comment/newline tokens from the stream, recording
// any accumulated `///` / `/** */` doc text against the index of the
// first surviving token that follows it.
func stripTrivia(toks []token.Token) ([]token.Token, map[int]string) {
	var out []token.Token
	docs := map[int]string{}
	var pendingDoc string
	for _, t := range toks {
		switch t.Kind {
		case token.NEWLINE, token.COMMENT:
			continue
		case token.DOC_COMMENT:
			if pendingDoc != "" {
				pendingDoc += "\n"
			}
			pendingDoc += t.Literal
			continue
		}
		if pendingDoc != "" {
			docs[len(out)] = pendingDoc
			pendingDoc = ""
		}
		out = append(out, t)
	}
	return out, docs
}

// docAt returns the doc comment recorded for the filtered token at index
// idx, if any.
func (p *Parser) docAt(idx int) string { return p.docs[idx] }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.curIdx = p.peekIdx
	if p.pos < len(p.toks) {
		p.peek = p.toks[p.pos]
		p.peekIdx = p.pos
		p.pos++
	} else {
		p.peek = token.Token{Kind: token.EOF}
		p.peekIdx = len(p.toks)
	}
}

// curDoc returns the doc-comment trivia attached to the current token.
func (p *Parser) curDoc() string { return p.docAt(p.curIdx) }

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.peekIs(k) {
		p.nextToken()
		return true
	}
	p.errorf(diagnostics.KindSyntaxError, p.peek.Span, "expected %s, got %s", k, p.peek.Kind)
	return false
}

func (p *Parser) errorf(kind diagnostics.Kind, span token.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.New(kind, span, format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return precLowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return precLowest
}

// synchronize skips tokens until a likely statement boundary, so one
// parse error does not cascade into dozens.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.RBRACE) {
			return
		}
		if p.peekIs(token.LET) || p.peekIs(token.FX) || p.peekIs(token.STRUCT) ||
			p.peekIs(token.ENUM) || p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseExpr(precedence int) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxRecursionDepth {
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expression too deeply nested")
		return nil
	}

	prefix := p.prefixFns[p.cur.Kind]
	if prefix == nil {
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "unexpected token %s in expression", p.cur.Kind)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Kind]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}
