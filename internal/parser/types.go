package parser

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/token"
)

// parseTypeAnn parses a syntactic type annotation per §3: named (with
// type-argument list), nullable `T?`, function `(T…)->T`, tuple, list
// `[T]`, unit `()`, never `!`, inferred `_`.
func (p *Parser) parseTypeAnn() ast.TypeAnn {
	base := p.parseTypeAnnPrimary()
	for p.peekIs(token.QUESTION) {
		p.nextToken()
		base = &ast.NullableType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(base.Span(), p.cur.Span)}, Inner: base}
	}
	return base
}

func (p *Parser) parseTypeAnnPrimary() ast.TypeAnn {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.UNDERSCORE:
		return &ast.InferredType{TypeAnnBase: ast.TypeAnnBase{Sp: start}}
	case token.NOT:
		return &ast.NeverType{TypeAnnBase: ast.TypeAnnBase{Sp: start}}
	case token.LBRACKET:
		p.nextToken()
		elem := p.parseTypeAnn()
		p.expect(token.RBRACKET)
		return &ast.ListType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}, Elem: elem}
	case token.LPAREN:
		return p.parseParenTypeAnn(start)
	case token.IDENT:
		if p.cur.Literal == "_" {
			return &ast.InferredType{TypeAnnBase: ast.TypeAnnBase{Sp: start}}
		}
		name := p.cur.Literal
		var args []ast.TypeAnn
		if p.peekIs(token.LT) {
			p.nextToken()
			p.nextToken()
			args = append(args, p.parseTypeAnn())
			for p.peekIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				args = append(args, p.parseTypeAnn())
			}
			p.expect(token.GT)
		}
		return &ast.NamedType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}, Name: name, Args: args}
	default:
		return &ast.InferredType{TypeAnnBase: ast.TypeAnnBase{Sp: start}}
	}
}

// parseParenTypeAnn handles `()`, `(T)`, `(T1, T2)` (tuple), and
// `(T1, T2) -> Ret` (function type), disambiguated by what follows the
// closing paren.
func (p *Parser) parseParenTypeAnn(start token.Span) ast.TypeAnn {
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		if p.peekIs(token.ARROW) {
			p.nextToken()
			p.nextToken()
			ret := p.parseTypeAnn()
			return &ast.FuncType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}, Ret: ret}
		}
		return &ast.UnitType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}}
	}
	p.nextToken()
	var elems []ast.TypeAnn
	elems = append(elems, p.parseTypeAnn())
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseTypeAnn())
	}
	p.expect(token.RPAREN)
	if p.peekIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		ret := p.parseTypeAnn()
		return &ast.FuncType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}, Params: elems, Ret: ret}
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TupleType{TypeAnnBase: ast.TypeAnnBase{Sp: sp(start, p.cur.Span)}, Elems: elems}
}
