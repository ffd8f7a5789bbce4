package parser

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/token"
)

// parsePattern parses a single pattern, including `|`-separated
// or-patterns.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePrimaryPattern()
	if !p.peekIs(token.BAR) {
		return first
	}
	alts := []ast.Pattern{first}
	for p.peekIs(token.BAR) {
		p.nextToken() // consume '|'
		p.nextToken()
		alts = append(alts, p.parsePrimaryPattern())
	}
	return &ast.OrPattern{PatternBase: ast.PatternBase{Sp: first.Span()}, Alternatives: alts}
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{PatternBase: ast.PatternBase{Sp: start}}
	case token.IDENT:
		if p.cur.Literal == "_" {
			return &ast.WildcardPattern{PatternBase: ast.PatternBase{Sp: start}}
		}
		return p.parseIdentOrEnumOrStructPattern()
	case token.INT:
		e := p.parseIntLit()
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: e}
	case token.FLOAT:
		e := p.parseFloatLit()
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: e}
	case token.TRUE, token.FALSE:
		e := p.parseBoolLit()
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: e}
	case token.NULL:
		e := p.parseNullLit()
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: e}
	case token.STRING_START:
		e := p.parseStringLit()
		return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: e}
	case token.LPAREN:
		return p.parseTuplePattern()
	case token.MINUS:
		p.nextToken()
		inner := p.parsePrimaryPattern()
		if lit, ok := inner.(*ast.LiteralPattern); ok {
			if il, ok := lit.Value.(*ast.IntLit); ok {
				return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: &ast.IntLit{ExprBase: il.ExprBase, Value: -il.Value}}
			}
			if fl, ok := lit.Value.(*ast.FloatLit); ok {
				return &ast.LiteralPattern{PatternBase: ast.PatternBase{Sp: start}, Value: &ast.FloatLit{ExprBase: fl.ExprBase, Value: -fl.Value}}
			}
		}
		return inner
	default:
		return &ast.WildcardPattern{PatternBase: ast.PatternBase{Sp: start}}
	}
}

func (p *Parser) parseIdentOrEnumOrStructPattern() ast.Pattern {
	start := p.cur.Span
	name := p.cur.Literal
	isTypeLike := len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'

	// Qualified enum variant: `EnumName::Variant(...)` is not in the
	// grammar; bare `Variant(...)` / `Variant { ... }` / `Variant` is.
	if isTypeLike {
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			var elems []ast.Pattern
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				elems = append(elems, p.parsePattern())
				if p.peekIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					continue
				}
				p.nextToken()
			}
			return &ast.EnumVariantPattern{PatternBase: ast.PatternBase{Sp: sp(start, p.cur.Span)}, VariantName: name, Tuple: elems}
		}
		if p.peekIs(token.LBRACE) {
			p.nextToken()
			p.nextToken()
			var fields []ast.StructPatternField
			for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
				fname := p.cur.Literal
				p.expect(token.COLON)
				p.nextToken()
				fields = append(fields, ast.StructPatternField{Name: fname, Pattern: p.parsePattern()})
				if p.peekIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					continue
				}
				p.nextToken()
			}
			return &ast.StructPattern{PatternBase: ast.PatternBase{Sp: sp(start, p.cur.Span)}, Name: name, Fields: fields}
		}
		return &ast.EnumVariantPattern{PatternBase: ast.PatternBase{Sp: start}, VariantName: name}
	}
	return &ast.IdentPattern{PatternBase: ast.PatternBase{Sp: start}, Name: name}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.cur.Span
	p.nextToken()
	var elems []ast.Pattern
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		elems = append(elems, p.parsePattern())
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
	}
	return &ast.TuplePattern{PatternBase: ast.PatternBase{Sp: sp(start, p.cur.Span)}, Elems: elems}
}
