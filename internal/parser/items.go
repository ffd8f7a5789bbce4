package parser

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/token"
)

func (p *Parser) parseModule() *ast.Module {
	start := p.cur.Span
	mod := &ast.Module{}
	for !p.curIs(token.EOF) {
		item := p.parseItem()
		if item != nil {
			mod.Items = append(mod.Items, item)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	mod.Sp = token.Span{Start: start.Start, End: p.cur.Span.End, Line: start.Line, Col: start.Col}
	return mod
}

func (p *Parser) parseItem() ast.Item {
	doc := p.curDoc()
	switch p.cur.Kind {
	case token.FX:
		return p.parseFunctionItem(doc, false)
	case token.ASYNC:
		if p.peekIs(token.FX) {
			p.nextToken()
			return p.parseFunctionItem(doc, true)
		}
		return p.parseExprStmtItem(doc)
	case token.STRUCT:
		return p.parseStructItem(doc)
	case token.ENUM:
		return p.parseEnumItem(doc)
	case token.INTERFACE:
		return p.parseInterfaceItem(doc)
	case token.IMPL:
		return p.parseImplItem(doc)
	case token.IMPORT:
		return p.parseImportItem(doc)
	case token.LET:
		return p.parseLetItem(doc)
	default:
		return p.parseExprStmtItem(doc)
	}
}

func (p *Parser) parseExprStmtItem(doc string) ast.Item {
	start := p.cur.Span
	e := p.parseExpr(precLowest)
	if e == nil {
		return nil
	}
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.ExprStmtItem{ItemBase: mkItemBase(doc, start, p.cur.Span), Expr: e}
}

func mkItemBase(doc string, start, end token.Span) ast.ItemBase {
	return ast.ItemBase{
		Sp:      token.Span{Start: start.Start, End: end.End, Line: start.Line, Col: start.Col},
		DocText: doc,
	}
}

func (p *Parser) parseTypeParams() []string {
	var params []string
	if !p.peekIs(token.LT) {
		return nil
	}
	p.nextToken() // consume <
	for {
		if !p.expect(token.IDENT) {
			break
		}
		params = append(params, p.cur.Literal)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.GT)
	return params
}

func (p *Parser) parseFunctionItem(doc string, isAsync bool) *ast.FunctionItem {
	start := p.cur.Span
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	typeParams := p.parseTypeParams()
	if !p.expect(token.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	var ret ast.TypeAnn
	if p.peekIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		ret = p.parseTypeAnn()
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	return &ast.FunctionItem{
		ItemBase:   mkItemBase(doc, start, p.cur.Span),
		Name:       name, TypeParams: typeParams, Params: params,
		ReturnType: ret, Body: body, IsAsync: isAsync,
	}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		pat := p.parsePattern()
		var ty ast.TypeAnn
		if p.peekIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			ty = p.parseTypeAnn()
		}
		params = append(params, ast.Param{Pattern: pat, Type: ty})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseStructItem(doc string) *ast.StructItem {
	start := p.cur.Span
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	typeParams := p.parseTypeParams()
	if !p.expect(token.LBRACE) {
		return nil
	}
	var fields []ast.StructField
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		public := true
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expected field name, got %s", p.cur.Kind)
			break
		}
		fname := p.cur.Literal
		if !p.expect(token.COLON) {
			break
		}
		p.nextToken()
		ty := p.parseTypeAnn()
		fields = append(fields, ast.StructField{Name: fname, Type: ty, Public: public})
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	return &ast.StructItem{ItemBase: mkItemBase(doc, start, p.cur.Span), Name: name, TypeParams: typeParams, Fields: fields}
}

func (p *Parser) parseEnumItem(doc string) *ast.EnumItem {
	start := p.cur.Span
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	typeParams := p.parseTypeParams()
	if !p.expect(token.LBRACE) {
		return nil
	}
	var variants []ast.EnumVariant
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expected variant name")
			break
		}
		v := ast.EnumVariant{Name: p.cur.Literal}
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				v.Tuple = append(v.Tuple, p.parseTypeAnn())
				if p.peekIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					continue
				}
				p.nextToken()
			}
		} else if p.peekIs(token.LBRACE) {
			p.nextToken()
			p.nextToken()
			for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
				fname := p.cur.Literal
				p.expect(token.COLON)
				p.nextToken()
				ty := p.parseTypeAnn()
				v.Fields = append(v.Fields, ast.StructField{Name: fname, Type: ty, Public: true})
				if p.peekIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					continue
				}
				p.nextToken()
			}
		}
		variants = append(variants, v)
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	return &ast.EnumItem{ItemBase: mkItemBase(doc, start, p.cur.Span), Name: name, TypeParams: typeParams, Variants: variants}
}

func (p *Parser) parseInterfaceItem(doc string) *ast.InterfaceItem {
	start := p.cur.Span
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expect(token.LBRACE) {
		return nil
	}
	var methods []ast.InterfaceMethod
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if !p.curIs(token.FX) {
			p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expected method signature in interface")
			break
		}
		p.expect(token.IDENT)
		m := ast.InterfaceMethod{Name: p.cur.Literal}
		p.expect(token.LPAREN)
		p.nextToken()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			m.Params = append(m.Params, p.parseTypeAnn())
			if p.peekIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
		}
		if p.peekIs(token.ARROW) {
			p.nextToken()
			p.nextToken()
			m.ReturnType = p.parseTypeAnn()
		}
		methods = append(methods, m)
		p.nextToken()
	}
	return &ast.InterfaceItem{ItemBase: mkItemBase(doc, start, p.cur.Span), Name: name, Methods: methods}
}

func (p *Parser) parseImplItem(doc string) *ast.ImplItem {
	start := p.cur.Span
	if !p.expect(token.IDENT) {
		return nil
	}
	first := p.cur.Literal
	impl := &ast.ImplItem{}
	if peekWordIsFor(p) {
		// `impl Interface for Type { ... }`
		impl.InterfaceName = first
		p.nextToken() // the "for" keyword
		if !p.expect(token.IDENT) {
			return nil
		}
		impl.TargetType = p.cur.Literal
	} else {
		impl.TargetType = first
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.FX) {
			fn := p.parseFunctionItem(p.curDoc(), false)
			if fn != nil {
				impl.Methods = append(impl.Methods, fn)
			}
		}
		p.nextToken()
	}
	impl.ItemBase = mkItemBase(doc, start, p.cur.Span)
	return impl
}

// peekWordIsFor reports whether the token after the current identifier
// is the `for` keyword, used by `impl X for Y`.
func peekWordIsFor(p *Parser) bool { return p.peekIs(token.FOR) }

func (p *Parser) parseImportItem(doc string) *ast.ImportItem {
	start := p.cur.Span
	p.nextToken()
	if !p.curIs(token.STRING_START) {
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expected import path string")
		return nil
	}
	var path string
	p.nextToken()
	for p.curIs(token.STRING_PART) {
		path += p.cur.Literal
		p.nextToken()
	}
	// cur is now STRING_END
	imp := &ast.ImportItem{Path: path}
	if p.peekIs(token.IDENT) && p.peek.Literal == "as" {
		p.nextToken()
		p.expect(token.IDENT)
		imp.Alias = p.cur.Literal
	}
	imp.ItemBase = mkItemBase(doc, start, p.cur.Span)
	return imp
}

func (p *Parser) parseLetItem(doc string) *ast.LetItem {
	start := p.cur.Span
	e := p.parseLetExprBody()
	if e == nil {
		return nil
	}
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.LetItem{
		ItemBase: mkItemBase(doc, start, p.cur.Span),
		Pattern:  e.Pattern, Type: e.Type, Value: e.Value,
	}
}
