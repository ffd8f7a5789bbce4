package parser

import (
	"strconv"
	"strings"

	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/token"
)

func (p *Parser) registerPrefix() {
	p.prefixFns[token.INT] = p.parseIntLit
	p.prefixFns[token.FLOAT] = p.parseFloatLit
	p.prefixFns[token.TRUE] = p.parseBoolLit
	p.prefixFns[token.FALSE] = p.parseBoolLit
	p.prefixFns[token.NULL] = p.parseNullLit
	p.prefixFns[token.IDENT] = p.parseIdent
	p.prefixFns[token.STRING_START] = p.parseStringLit
	p.prefixFns[token.TSTRING_START] = p.parseTripleStringLit
	p.prefixFns[token.LPAREN] = p.parseParenOrTuple
	p.prefixFns[token.LBRACKET] = p.parseListLit
	p.prefixFns[token.MINUS] = p.parseUnary
	p.prefixFns[token.NOT] = p.parseUnary
	p.prefixFns[token.IF] = p.parseIfExpr
	p.prefixFns[token.WHILE] = p.parseWhileExpr
	p.prefixFns[token.FOR] = p.parseForExpr
	p.prefixFns[token.MATCH] = p.parseMatchExpr
	p.prefixFns[token.TRY] = p.parseTryExpr
	p.prefixFns[token.THROW] = p.parseThrowExpr
	p.prefixFns[token.AWAIT] = p.parseAwaitExpr
	p.prefixFns[token.RETURN] = p.parseReturnExpr
	p.prefixFns[token.BREAK] = p.parseBreakExpr
	p.prefixFns[token.CONTINUE] = p.parseContinueExpr
	p.prefixFns[token.FX] = p.parseFuncLit
	p.prefixFns[token.ASYNC] = p.parseAsyncFuncLit
	p.prefixFns[token.LBRACE] = p.parseBlockAsExpr
	p.prefixFns[token.LET] = p.parseLetExpr
}

func (p *Parser) registerInfix() {
	for _, k := range []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR,
	} {
		p.infixFns[k] = p.parseBinary
	}
	p.infixFns[token.ASSIGN] = p.parseAssign
	p.infixFns[token.PIPE] = p.parsePipe
	p.infixFns[token.QQ] = p.parseCoalesce
	p.infixFns[token.DOTDOT] = p.parseRange
	p.infixFns[token.DOTDOTEQ] = p.parseRange
	p.infixFns[token.LPAREN] = p.parseCall
	p.infixFns[token.LBRACKET] = p.parseIndex
	p.infixFns[token.DOT] = p.parseField
	p.infixFns[token.QDOT] = p.parseNullSafe
}

func sp(a, b token.Span) token.Span {
	return token.Span{Start: a.Start, End: b.End, Line: a.Line, Col: a.Col}
}

func (p *Parser) parseIntLit() ast.Expr {
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		v, err = strconv.ParseInt(lit[2:], 16, 64)
	case strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0B"):
		v, err = strconv.ParseInt(lit[2:], 2, 64)
	case strings.HasPrefix(lit, "0o") || strings.HasPrefix(lit, "0O"):
		v, err = strconv.ParseInt(lit[2:], 8, 64)
	default:
		v, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "invalid integer literal %q", p.cur.Literal)
	}
	return &ast.IntLit{ExprBase: ast.ExprBase{Sp: p.cur.Span}, Value: v}
}

func (p *Parser) parseFloatLit() ast.Expr {
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "invalid float literal %q", p.cur.Literal)
	}
	return &ast.FloatLit{ExprBase: ast.ExprBase{Sp: p.cur.Span}, Value: v}
}

func (p *Parser) parseBoolLit() ast.Expr {
	return &ast.BoolLit{ExprBase: ast.ExprBase{Sp: p.cur.Span}, Value: p.cur.Kind == token.TRUE}
}

func (p *Parser) parseNullLit() ast.Expr {
	return &ast.NullLit{ExprBase: ast.ExprBase{Sp: p.cur.Span}}
}

func (p *Parser) parseIdent() ast.Expr {
	start := p.cur.Span
	name := p.cur.Literal
	// Struct literal: `Name { field: value, ... }` — only when Name looks
	// like a type (capitalized) to avoid swallowing `if x {`-style blocks.
	if p.peekIs(token.LBRACE) && len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		return p.parseStructLit(start, name)
	}
	return &ast.Ident{ExprBase: ast.ExprBase{Sp: start}, Name: name}
}

func (p *Parser) parseStructLit(start token.Span, name string) ast.Expr {
	p.nextToken() // consume '{'
	p.nextToken()
	var fields []ast.MapEntry
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fname := p.cur.Literal
		fstart := p.cur.Span
		p.expect(token.COLON)
		p.nextToken()
		val := p.parseExpr(precLowest)
		fields = append(fields, ast.MapEntry{
			Key:   &ast.Ident{ExprBase: ast.ExprBase{Sp: fstart}, Name: fname},
			Value: val,
		})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
	}
	return &ast.StructLit{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Name: name, Fields: fields}
}

// parseStringLit parses a plain (possibly interpolated) string. cur is
// STRING_START on entry; it consumes through STRING_END.
func (p *Parser) parseStringLit() ast.Expr { return p.parseAnyStringLit(token.STRING_END, false) }
func (p *Parser) parseTripleStringLit() ast.Expr {
	return p.parseAnyStringLit(token.TSTRING_END, true)
}

func (p *Parser) parseAnyStringLit(endKind token.Kind, triple bool) ast.Expr {
	start := p.cur.Span
	lit := &ast.StringLit{Triple: triple}
	p.nextToken()
	for !p.curIs(endKind) && !p.curIs(token.EOF) {
		switch p.cur.Kind {
		case token.STRING_PART:
			lit.Parts = append(lit.Parts, p.cur.Literal)
			lit.Exprs = append(lit.Exprs, nil)
			p.nextToken()
		case token.INTERP_START:
			p.nextToken()
			e := p.parseExpr(precLowest)
			lit.Parts = append(lit.Parts, "")
			lit.Exprs = append(lit.Exprs, e)
			if !p.peekIs(token.INTERP_END) {
				p.errorf(diagnostics.KindSyntaxError, p.peek.Span, "expected '}' to close interpolation")
			} else {
				p.nextToken()
			}
			p.nextToken()
		default:
			p.nextToken()
		}
	}
	lit.Sp = sp(start, p.cur.Span)
	return lit
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.cur.Span
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return &ast.TupleLit{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}}
	}
	p.nextToken()
	first := p.parseExpr(precLowest)
	if p.peekIs(token.COMMA) {
		elems := []ast.Expr{first}
		for p.peekIs(token.COMMA) {
			p.nextToken()
			if p.peekIs(token.RPAREN) {
				break
			}
			p.nextToken()
			elems = append(elems, p.parseExpr(precLowest))
		}
		p.expect(token.RPAREN)
		return &ast.TupleLit{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Elems: elems}
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseListLit() ast.Expr {
	start := p.cur.Span
	var elems []ast.Expr
	if p.peekIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ListLit{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}}
	}
	p.nextToken()
	elems = append(elems, p.parseExpr(precLowest))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		if p.peekIs(token.RBRACKET) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseExpr(precLowest))
	}
	p.expect(token.RBRACKET)
	return &ast.ListLit{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Elems: elems}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur.Span
	op := p.cur.Kind
	p.nextToken()
	operand := p.parseExpr(precUnary)
	return &ast.UnaryExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Op: op, Operand: operand}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	op := p.cur.Kind
	prec := p.curPrecedence()
	start := left.Span()
	p.nextToken()
	right := p.parseExpr(prec)
	return &ast.BinaryExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Op: op, Left: left, Right: right}
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	start := left.Span()
	p.nextToken()
	val := p.parseExpr(precAssign - 1) // right-associative
	return &ast.AssignExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Target: left, Value: val}
}

func (p *Parser) parsePipe(left ast.Expr) ast.Expr {
	start := left.Span()
	p.nextToken()
	fn := p.parseExpr(precPipe)
	return &ast.PipeExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Arg: left, Func: fn}
}

func (p *Parser) parseCoalesce(left ast.Expr) ast.Expr {
	start := left.Span()
	p.nextToken()
	right := p.parseExpr(precCoalesce - 1) // right-assoc
	return &ast.CoalesceExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Left: left, Right: right}
}

func (p *Parser) parseRange(left ast.Expr) ast.Expr {
	start := left.Span()
	inclusive := p.cur.Kind == token.DOTDOTEQ
	p.nextToken()
	right := p.parseExpr(precRange)
	return &ast.RangeExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Start: left, End: right, Inclusive: inclusive}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	start := left.Span()
	var args []ast.Expr
	if !p.peekIs(token.RPAREN) {
		p.nextToken()
		args = append(args, p.parseExpr(precLowest))
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			args = append(args, p.parseExpr(precLowest))
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Callee: left, Args: args}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	start := left.Span()
	p.nextToken()
	idx := p.parseExpr(precLowest)
	p.expect(token.RBRACKET)
	return &ast.IndexExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Receiver: left, Index: idx}
}

func (p *Parser) parseField(left ast.Expr) ast.Expr {
	start := left.Span()
	p.expect(token.IDENT)
	return &ast.FieldExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Receiver: left, Field: p.cur.Literal}
}

func (p *Parser) parseNullSafe(left ast.Expr) ast.Expr {
	start := left.Span()
	if p.peekIs(token.LBRACKET) {
		p.nextToken()
		p.nextToken()
		idx := p.parseExpr(precLowest)
		p.expect(token.RBRACKET)
		return &ast.NullSafeIndexExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Receiver: left, Index: idx}
	}
	p.expect(token.IDENT)
	return &ast.NullSafeFieldExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Receiver: left, Field: p.cur.Literal}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	cond := p.parseExpr(precLowest)
	if !p.expect(token.LBRACE) {
		return nil
	}
	then := p.parseBlockExpr()
	ifx := &ast.IfExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Cond: cond, Then: then}
	if p.peekIs(token.ELSE) {
		p.nextToken()
		if p.peekIs(token.IF) {
			p.nextToken()
			ifx.Else = p.parseIfExpr()
		} else {
			p.expect(token.LBRACE)
			ifx.Else = p.parseBlockExpr()
		}
		ifx.Sp = sp(start, p.cur.Span)
	}
	return ifx
}

func (p *Parser) parseWhileExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	cond := p.parseExpr(precLowest)
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	return &ast.WhileExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Cond: cond, Body: body}
}

func (p *Parser) parseForExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	pat := p.parsePattern()
	if !p.expect(token.IN) {
		return nil
	}
	p.nextToken()
	iter := p.parseExpr(precLowest)
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	return &ast.ForExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Pattern: pat, Iter: iter, Body: body}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	subject := p.parseExpr(precLowest)
	if !p.expect(token.LBRACE) {
		return nil
	}
	mx := &ast.MatchExpr{Subject: subject}
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		pat := p.parsePattern()
		arm := ast.MatchArm{Pattern: pat}
		if p.peekIs(token.IF) {
			p.nextToken()
			p.nextToken()
			arm.Guard = p.parseExpr(precLowest)
		}
		if !p.expect(token.FATARROW) {
			break
		}
		p.nextToken()
		arm.Body = p.parseExpr(precLowest)
		mx.Arms = append(mx.Arms, arm)
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	mx.Sp = sp(start, p.cur.Span)
	return mx
}

func (p *Parser) parseTryExpr() ast.Expr {
	start := p.cur.Span
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	tx := &ast.TryExpr{Body: body}
	if !p.expect(token.CATCH) {
		return nil
	}
	p.nextToken()
	tx.CatchPat = p.parsePattern()
	if !p.expect(token.LBRACE) {
		return nil
	}
	tx.Handler = p.parseBlockExpr()
	if p.peekIs(token.IDENT) && p.peek.Literal == "finally" {
		p.nextToken()
		p.expect(token.LBRACE)
		tx.Finally = p.parseBlockExpr()
	}
	tx.Sp = sp(start, p.cur.Span)
	return tx
}

func (p *Parser) parseThrowExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	v := p.parseExpr(precLowest)
	return &ast.ThrowExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Value: v}
}

func (p *Parser) parseAwaitExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	v := p.parseExpr(precUnary)
	return &ast.AwaitExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Value: v}
}

func (p *Parser) parseReturnExpr() ast.Expr {
	start := p.cur.Span
	if p.peekIs(token.SEMI) || p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		return &ast.ReturnExpr{ExprBase: ast.ExprBase{Sp: start}}
	}
	p.nextToken()
	v := p.parseExpr(precLowest)
	return &ast.ReturnExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Value: v}
}

func (p *Parser) parseBreakExpr() ast.Expr {
	return &ast.BreakExpr{ExprBase: ast.ExprBase{Sp: p.cur.Span}}
}

func (p *Parser) parseContinueExpr() ast.Expr {
	return &ast.ContinueExpr{ExprBase: ast.ExprBase{Sp: p.cur.Span}}
}

func (p *Parser) parseFuncLit() ast.Expr { return p.parseFuncLitAsync(false) }

func (p *Parser) parseAsyncFuncLit() ast.Expr {
	if !p.expect(token.FX) {
		return nil
	}
	return p.parseFuncLitAsync(true)
}

func (p *Parser) parseFuncLitAsync(isAsync bool) ast.Expr {
	start := p.cur.Span
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
	return &ast.FuncLit{
		ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)},
		Params:   params, ReturnType: ret, Body: body, IsAsync: isAsync,
	}
}

func (p *Parser) parseBlockAsExpr() ast.Expr { return p.parseBlockExpr() }

func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.cur.Span // '{'
	blk := &ast.BlockExpr{}
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		e := p.parseExpr(precLowest)
		if e == nil {
			p.synchronize()
			p.nextToken()
			continue
		}
		if p.peekIs(token.SEMI) {
			p.nextToken()
			blk.Stmts = append(blk.Stmts, e)
		} else if p.peekIs(token.RBRACE) {
			blk.Tail = e
			p.nextToken()
			break
		} else {
			blk.Stmts = append(blk.Stmts, e)
		}
		p.nextToken()
	}
	blk.Sp = sp(start, p.cur.Span)
	return blk
}

// letExprBody is the shared parse for `let pattern [: type] = value`,
// used both as a statement-expression and as a top-level item.
type letExprBody struct {
	Pattern ast.Pattern
	Type    ast.TypeAnn
	Value   ast.Expr
}

func (p *Parser) parseLetExprBody() *letExprBody {
	p.nextToken() // consume 'let'
	pat := p.parsePattern()
	var ty ast.TypeAnn
	if p.peekIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		ty = p.parseTypeAnn()
	}
	if !p.expect(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	if p.curIs(token.LET) {
		// A let binding is a statement, never the value of another let.
		p.errorf(diagnostics.KindSyntaxError, p.cur.Span, "expected expression after '=', got %s", p.cur.Kind)
		return nil
	}
	val := p.parseExpr(precLowest)
	return &letExprBody{Pattern: pat, Type: ty, Value: val}
}

func (p *Parser) parseLetExpr() ast.Expr {
	start := p.cur.Span
	b := p.parseLetExprBody()
	if b == nil {
		return nil
	}
	return &ast.LetExpr{ExprBase: ast.ExprBase{Sp: sp(start, p.cur.Span)}, Pattern: b.Pattern, Type: b.Type, Value: b.Value}
}
