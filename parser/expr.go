package parser

import (
	"ccfront/ast"
	"ccfront/token"
	"ccfront/types"
)

// expr parses a comma expression, the widest grammar rule, per
// original_source/parse.c's expr -> assign ( "," expr )?.
func (p *Parser) expr() (*ast.Node, error) {
	n, err := p.assign()
	if err != nil {
		return nil, err
	}
	if tok := p.cur; p.consume(",") {
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.COMMA, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

// assign parses conditional ( assignOp assign )?, desugaring the compound
// assignment subset this front end supports (+=, -=, *=, /=, <<=, >>=) into
// ASSIGN(lhs, BINOP(lhs, rhs)). Per the Non-goal on compound assignment,
// the bitwise compound operators (&=, |=, ^=) are tokenized but rejected
// here rather than silently misparsed.
func (p *Parser) assign() (*ast.Node, error) {
	n, err := p.conditional()
	if err != nil {
		return nil, err
	}

	tok := p.cur
	switch {
	case p.consume("="):
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(ast.ASSIGN, n, rhs, tok.Line, tok.Column), nil
	case p.consume("+="):
		return p.compoundAssign(ast.ADD, n, tok)
	case p.consume("-="):
		return p.compoundAssign(ast.SUB, n, tok)
	case p.consume("*="):
		return p.compoundAssign(ast.MUL, n, tok)
	case p.consume("/="):
		return p.compoundAssign(ast.DIV, n, tok)
	case p.consume("<<="):
		return p.compoundAssign(ast.SHL, n, tok)
	case p.consume(">>="):
		return p.compoundAssign(ast.SHR, n, tok)
	case p.cur.Is("&=") || p.cur.Is("|=") || p.cur.Is("^="):
		return nil, p.errorAtCur("compound assignment with '%s' is not supported", p.cur.Text)
	}
	return n, nil
}

func (p *Parser) compoundAssign(op ast.Kind, lhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	rhs, err := p.assign()
	if err != nil {
		return nil, err
	}
	bin, err := p.newArith(op, lhs, rhs, tok)
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(ast.ASSIGN, lhs, bin, tok.Line, tok.Column), nil
}

func (p *Parser) conditional() (*ast.Node, error) {
	cond, err := p.logor()
	if err != nil {
		return nil, err
	}
	tok := p.cur
	if !p.consume("?") {
		return cond, nil
	}
	then, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.conditional()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.COND, Cond: cond, Then: then, Els: els, Line: tok.Line, Column: tok.Column}, nil
}

func (p *Parser) logor() (*ast.Node, error) {
	n, err := p.logand()
	if err != nil {
		return nil, err
	}
	for p.cur.Is("||") {
		tok := p.advance()
		rhs, err := p.logand()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.LOGOR, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

// logand is explicitly written as a left-associative loop (not recursion on
// the right operand), preserving the one behavior in the original parser
// that was already correct and worth keeping exactly as-is.
func (p *Parser) logand() (*ast.Node, error) {
	n, err := p.bitor()
	if err != nil {
		return nil, err
	}
	for p.cur.Is("&&") {
		tok := p.advance()
		rhs, err := p.bitor()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.LOGAND, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

func (p *Parser) bitor() (*ast.Node, error) {
	n, err := p.bitxor()
	if err != nil {
		return nil, err
	}
	for p.cur.Is("|") {
		tok := p.advance()
		rhs, err := p.bitxor()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.BITOR, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

// bitxor sits strictly between bitor and bitand and descends to bitand for
// its right operand, not to itself — the original parser's bitxor()
// recursed on itself here, which both broke its own precedence (so e.g.
// `a ^ b & c` grouped wrong) and meant `&` could never be reached through
// this path at all.
func (p *Parser) bitxor() (*ast.Node, error) {
	n, err := p.bitand()
	if err != nil {
		return nil, err
	}
	for p.cur.Is("^") {
		tok := p.advance()
		rhs, err := p.bitand()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.BITXOR, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

func (p *Parser) bitand() (*ast.Node, error) {
	n, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.cur.Is("&") {
		tok := p.advance()
		rhs, err := p.equality()
		if err != nil {
			return nil, err
		}
		n = ast.NewBinary(ast.BITAND, n, rhs, tok.Line, tok.Column)
	}
	return n, nil
}

func (p *Parser) equality() (*ast.Node, error) {
	n, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("=="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.EQ, n, rhs, tok.Line, tok.Column)
		case p.consume("!="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.NE, n, rhs, tok.Line, tok.Column)
		default:
			return n, nil
		}
	}
}

func (p *Parser) relational() (*ast.Node, error) {
	n, err := p.shift()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("<"):
			rhs, err := p.shift()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.LT, n, rhs, tok.Line, tok.Column)
		case p.consume("<="):
			rhs, err := p.shift()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.LE, n, rhs, tok.Line, tok.Column)
		case p.consume(">"):
			rhs, err := p.shift()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.LT, rhs, n, tok.Line, tok.Column) // a > b == b < a
		case p.consume(">="):
			rhs, err := p.shift()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.LE, rhs, n, tok.Line, tok.Column)
		default:
			return n, nil
		}
	}
}

func (p *Parser) shift() (*ast.Node, error) {
	n, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("<<"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.SHL, n, rhs, tok.Line, tok.Column)
		case p.consume(">>"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.SHR, n, rhs, tok.Line, tok.Column)
		default:
			return n, nil
		}
	}
}

func (p *Parser) add() (*ast.Node, error) {
	n, err := p.mul()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("+"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			n, err = p.newArith(ast.ADD, n, rhs, tok)
			if err != nil {
				return nil, err
			}
		case p.consume("-"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			n, err = p.newArith(ast.SUB, n, rhs, tok)
			if err != nil {
				return nil, err
			}
		default:
			return n, nil
		}
	}
}

// newArith elaborates +/- (also reused for the compound-assignment desugar
// above, where the operator may be * or / with no pointer involvement) per
// original_source/parse.c:new_add/new_sub. Pointer-involving operands
// produce the distinct PTR_ADD/PTR_SUB/PTR_DIFF kinds instead of plain
// ADD/SUB, with the pointer operand always placed on Lhs; scaling by the
// pointee size is left to the code generator (which can still read it off
// the pointer operand's own Type), matching the original's new_add/new_sub
// exactly — neither scales at parse time.
func (p *Parser) newArith(op ast.Kind, lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	AddType(lhs)
	AddType(rhs)

	lp := types.IsPointerLike(lhs.Type)
	rp := types.IsPointerLike(rhs.Type)

	if op != ast.ADD && op != ast.SUB {
		return ast.NewBinary(op, lhs, rhs, tok.Line, tok.Column), nil
	}

	if !lp && !rp {
		return ast.NewBinary(op, lhs, rhs, tok.Line, tok.Column), nil
	}

	if op == ast.ADD {
		if lp && rp {
			return nil, p.errorf(tok, "invalid operands: pointer + pointer")
		}
		if lp {
			return ast.NewBinary(ast.PTR_ADD, lhs, rhs, tok.Line, tok.Column), nil
		}
		return ast.NewBinary(ast.PTR_ADD, rhs, lhs, tok.Line, tok.Column), nil
	}

	// op == ast.SUB
	if !lp && rp {
		return nil, p.errorf(tok, "invalid operands: number - pointer")
	}
	if lp && rp {
		return ast.NewBinary(ast.PTR_DIFF, lhs, rhs, tok.Line, tok.Column), nil
	}
	return ast.NewBinary(ast.PTR_SUB, lhs, rhs, tok.Line, tok.Column), nil
}

func (p *Parser) mul() (*ast.Node, error) {
	n, err := p.cast()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("*"):
			rhs, err := p.cast()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.MUL, n, rhs, tok.Line, tok.Column)
		case p.consume("/"):
			rhs, err := p.cast()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.DIV, n, rhs, tok.Line, tok.Column)
		case p.consume("%"):
			rhs, err := p.cast()
			if err != nil {
				return nil, err
			}
			n = ast.NewBinary(ast.MOD, n, rhs, tok.Line, tok.Column)
		default:
			return n, nil
		}
	}
}

// cast parses `( type-name ) cast` or falls through to unary, per
// original_source/parse.c:cast. A parenthesized type is distinguished from
// a parenthesized expression by peeking past '(' for a type keyword. A `{`
// immediately following the closing `)` instead means a compound literal
// `(type-name){...}`, not a cast.
func (p *Parser) cast() (*ast.Node, error) {
	if p.cur.Is("(") && p.cur.Next != nil && p.isTypeNameAt(p.cur.Next) {
		tok := p.advance() // '('
		_, _, base, err := p.declspec()
		if err != nil {
			return nil, err
		}
		d, err := p.abstractDeclarator()
		if err != nil {
			return nil, err
		}
		ty := base
		if d != nil {
			ty = d.build(base)
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if p.cur.Is("{") {
			return p.compoundLiteral(ty, tok)
		}
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		n := &ast.Node{Kind: ast.CAST, Lhs: operand, Type: ty, Line: tok.Line, Column: tok.Column}
		return n, nil
	}
	return p.unary()
}

// compoundLiteral lowers `(type-name){...}` by binding the braced
// initializer to a freshly minted anonymous variable and returning a
// reference to it, per original_source/parse.c:compound_literal. At file
// scope the variable is a static global parsed through the same
// fragment-lowering path as any other global initializer; inside a function
// it is an ordinary local whose initializer BLOCK is attached to the
// returned VAR node's Init field, the same shape a declaration's
// initializer produces.
func (p *Parser) compoundLiteral(ty *types.Type, tok *token.Token) (*ast.Node, error) {
	if p.scope.Depth() == 0 {
		gv := p.addGlobal(p.newLabel(), ty)
		gv.IsStatic = true
		if err := p.globalInitializer(gv, ty); err != nil {
			return nil, err
		}
		return ast.NewVarNode(gv, tok.Line, tok.Column), nil
	}

	lv := p.addLocal(p.newLabel(), ty)
	init, err := p.localInitializer(lv, ty)
	if err != nil {
		return nil, err
	}
	n := ast.NewVarNode(lv, tok.Line, tok.Column)
	n.Init = init
	return n, nil
}

// isTypeNameAt reports whether tok begins a type, without consuming
// anything — used by cast() to disambiguate `(int)x` from `(x)`.
func (p *Parser) isTypeNameAt(tok *token.Token) bool {
	kws := []string{"void", "_Bool", "char", "short", "int", "long", "signed", "struct", "enum"}
	for _, kw := range kws {
		if tok.Is(kw) {
			return true
		}
	}
	if tok.Kind == token.IDENT {
		if e := p.scope.FindVar(tok.Text); e != nil && e.IsTypedef {
			return true
		}
	}
	return false
}

// abstractDeclarator parses a declarator with no name, as used inside a
// cast or sizeof's parenthesized type-name, reusing parseDeclarator's
// closure machinery.
func (p *Parser) abstractDeclarator() (*declarator, error) {
	if p.cur.Is(")") {
		return nil, nil
	}
	return p.parseDeclarator()
}

func (p *Parser) unary() (*ast.Node, error) {
	tok := p.cur
	switch {
	case p.consume("+"):
		return p.cast()
	case p.consume("-"):
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(ast.SUB, ast.NewNum(0, tok.Line, tok.Column), operand, tok.Line, tok.Column), nil
	case p.consume("&"):
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.ADDR, operand, tok.Line, tok.Column), nil
	case p.consume("*"):
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.DEREF, operand, tok.Line, tok.Column), nil
	case p.consume("!"):
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.NOT, operand, tok.Line, tok.Column), nil
	case p.consume("~"):
		operand, err := p.cast()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.BITNOT, operand, tok.Line, tok.Column), nil
	case p.consume("++"):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.newArith(ast.ADD, operand, ast.NewNum(1, tok.Line, tok.Column), tok)
	case p.consume("--"):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		inc, err := p.newArith(ast.SUB, operand, ast.NewNum(1, tok.Line, tok.Column), tok)
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(ast.ASSIGN, operand, inc, tok.Line, tok.Column), nil
	case p.cur.Is("sizeof"), p.cur.Is("_Alignof"):
		return p.sizeofOrAlignof()
	}
	return p.postfix()
}

func (p *Parser) sizeofOrAlignof() (*ast.Node, error) {
	tok := p.advance()
	isAlign := tok.Text == "_Alignof"

	if p.cur.Is("(") && p.cur.Next != nil && p.isTypeNameAt(p.cur.Next) {
		p.advance()
		_, _, base, err := p.declspec()
		if err != nil {
			return nil, err
		}
		d, err := p.abstractDeclarator()
		if err != nil {
			return nil, err
		}
		ty := base
		if d != nil {
			ty = d.build(base)
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		v := int64(ty.Size)
		if isAlign {
			v = int64(ty.Align)
		}
		return ast.NewNum(v, tok.Line, tok.Column), nil
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	AddType(operand)
	v := int64(operand.Type.Size)
	if isAlign {
		v = int64(operand.Type.Align)
	}
	return ast.NewNum(v, tok.Line, tok.Column), nil
}

// postfix parses primary ( "[" expr "]" | "." ident | "->" ident | "++" |
// "--" | "(" args ")" )*.
func (p *Parser) postfix() (*ast.Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur
		switch {
		case p.consume("["):
			idx, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			elem, err := p.newArith(ast.ADD, n, idx, tok)
			if err != nil {
				return nil, err
			}
			n = ast.NewUnary(ast.DEREF, elem, tok.Line, tok.Column)
		case p.consume("."):
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			n = &ast.Node{Kind: ast.MEMBER, Lhs: n, MemberName: name, Line: tok.Line, Column: tok.Column}
		case p.consume("->"):
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			deref := ast.NewUnary(ast.DEREF, n, tok.Line, tok.Column)
			n = &ast.Node{Kind: ast.MEMBER, Lhs: deref, MemberName: name, Line: tok.Line, Column: tok.Column}
		case p.consume("++"):
			AddType(n)
			inc, err := p.newArith(ast.ADD, n, ast.NewNum(1, tok.Line, tok.Column), tok)
			if err != nil {
				return nil, err
			}
			// postfix++ reads as "(x += 1) - 1": the whole expression's
			// value is the pre-increment value, but x itself ends up
			// incremented, matching original_source/parse.c's new_inc_dec.
			n, err = p.newArith(ast.SUB, ast.NewBinary(ast.ASSIGN, n, inc, tok.Line, tok.Column), ast.NewNum(1, tok.Line, tok.Column), tok)
			if err != nil {
				return nil, err
			}
		case p.consume("--"):
			AddType(n)
			dec, err := p.newArith(ast.SUB, n, ast.NewNum(1, tok.Line, tok.Column), tok)
			if err != nil {
				return nil, err
			}
			n, err = p.newArith(ast.ADD, ast.NewBinary(ast.ASSIGN, n, dec, tok.Line, tok.Column), ast.NewNum(1, tok.Line, tok.Column), tok)
			if err != nil {
				return nil, err
			}
		default:
			return n, nil
		}
	}
}

// primary parses "(" "{" stmt+ "}" ")" | "(" expr ")" |
// ident [ "(" args ")" ] | str | num.
func (p *Parser) primary() (*ast.Node, error) {
	tok := p.cur

	if p.cur.Is("(") && p.cur.Next != nil && p.cur.Next.Is("{") {
		p.advance() // '('
		body, err := p.compoundStmt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.STMT_EXPR, Body: body.Body, Line: tok.Line, Column: tok.Column}, nil
	}

	if p.consume("(") {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return n, nil
	}

	if p.cur.Kind == token.NUM {
		v := p.cur.IntValue
		p.advance()
		return ast.NewNum(v, tok.Line, tok.Column), nil
	}

	if p.cur.Kind == token.STR {
		return p.stringLiteral()
	}

	if p.cur.Kind == token.IDENT {
		name := p.cur.Text
		p.advance()

		if p.cur.Is("(") {
			return p.funcall(name, tok)
		}

		if e := p.scope.FindVar(name); e != nil {
			if e.IsEnumConst {
				return ast.NewNum(e.EnumValue, tok.Line, tok.Column), nil
			}
			if v, ok := e.Var.(*ast.Var); ok {
				return ast.NewVarNode(v, tok.Line, tok.Column), nil
			}
		}
		return nil, p.errorf(tok, "undeclared identifier '%s'", name)
	}

	return nil, p.errorAtCur("expected an expression")
}

// stringLiteral turns a string token into a reference to a freshly minted,
// anonymous char-array global holding its decoded bytes, per
// original_source/parse.c's handling of string literals as labeled globals
// (named by newLabel, `.L.data.%d`).
func (p *Parser) stringLiteral() (*ast.Node, error) {
	tok := p.cur
	p.advance()

	ty := types.ArrayOf(types.Char, tok.ContLen)
	gv := &ast.Var{Name: p.newLabel(), Type: ty, StringLiteral: true}
	gv.InitData = make([]ast.Fragment, len(tok.StringPayload))
	for i, b := range tok.StringPayload {
		gv.InitData[i] = ast.Fragment{Kind: ast.FragVal, Size: 1, Value: int64(b)}
	}
	p.globals = append(p.globals, gv)

	return ast.NewVarNode(gv, tok.Line, tok.Column), nil
}

func (p *Parser) funcall(name string, tok *token.Token) (*ast.Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var head, tail *ast.Node
	first := true
	for !p.cur.Is(")") {
		if !first {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		first = false
		arg, err := p.assign()
		if err != nil {
			return nil, err
		}
		if head == nil {
			head, tail = arg, arg
		} else {
			tail.Next = arg
			tail = arg
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.FUNCALL, FuncName: name, Args: head, Line: tok.Line, Column: tok.Column}, nil
}
