package parser

import (
	"ccfront/ast"
	"ccfront/scope"
	"ccfront/token"
)

// stmt parses one statement, per original_source/parse.c:stmt/stmt2's
// dispatch over the leading keyword, falling through to a declaration or an
// expression statement when none match.
func (p *Parser) stmt() (*ast.Node, error) {
	switch {
	case p.cur.Is("return"):
		return p.returnStmt()
	case p.cur.Is("if"):
		return p.ifStmt()
	case p.cur.Is("switch"):
		return p.switchStmt()
	case p.cur.Is("case"), p.cur.Is("default"):
		return p.caseStmt()
	case p.cur.Is("while"):
		return p.whileStmt()
	case p.cur.Is("for"):
		return p.forStmt()
	case p.cur.Is("{"):
		return p.compoundStmt()
	case p.cur.Is("break"):
		tok := p.advance()
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		if p.breakLabel == "" {
			return nil, p.errorf(tok, "break outside of a loop or switch")
		}
		return &ast.Node{Kind: ast.GOTO, UniqueLabel: p.breakLabel, Line: tok.Line, Column: tok.Column}, nil
	case p.cur.Is("continue"):
		tok := p.advance()
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		if p.continueLabel == "" {
			return nil, p.errorf(tok, "continue outside of a loop")
		}
		return &ast.Node{Kind: ast.GOTO, UniqueLabel: p.continueLabel, Line: tok.Line, Column: tok.Column}, nil
	case p.cur.Is("goto"):
		tok := p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.GOTO, Label: name, Line: tok.Line, Column: tok.Column}, nil
	case p.cur.Kind == token.IDENT && p.peekNextIs(":"):
		tok := p.advance()
		p.advance() // ':'
		body, err := p.stmt()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.LABEL, Label: tok.Text, Lhs: body, Line: tok.Line, Column: tok.Column}, nil
	default:
		return p.declarationOrExprStmt()
	}
}

func (p *Parser) returnStmt() (*ast.Node, error) {
	tok := p.advance()
	if p.consume(";") {
		return &ast.Node{Kind: ast.RETURN, Line: tok.Line, Column: tok.Column}, nil
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.RETURN, Lhs: e, Line: tok.Line, Column: tok.Column}, nil
}

func (p *Parser) ifStmt() (*ast.Node, error) {
	tok := p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.stmt()
	if err != nil {
		return nil, err
	}
	n := &ast.Node{Kind: ast.IF, Cond: cond, Then: then, Line: tok.Line, Column: tok.Column}
	if p.consume("else") {
		els, err := p.stmt()
		if err != nil {
			return nil, err
		}
		n.Els = els
	}
	return n, nil
}

// whileStmt desugars `while (cond) body` into the same FOR node shape as
// forStmt, with Init/Inc left nil, matching original_source/parse.c which
// builds both from one ND_FOR kind.
func (p *Parser) whileStmt() (*ast.Node, error) {
	tok := p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	n := &ast.Node{Kind: ast.FOR, Cond: cond, Line: tok.Line, Column: tok.Column}
	n.BreakLabel = p.newControlLabel("break")
	n.ContinueLabel = p.newControlLabel("continue")
	savedBreak, savedContinue := p.breakLabel, p.continueLabel
	p.breakLabel, p.continueLabel = n.BreakLabel, n.ContinueLabel

	body, err := p.stmt()
	p.breakLabel, p.continueLabel = savedBreak, savedContinue
	if err != nil {
		return nil, err
	}
	n.Then = body
	return n, nil
}

func (p *Parser) forStmt() (*ast.Node, error) {
	tok := p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}

	p.scope.EnterScope()
	defer p.scope.LeaveScope()

	n := &ast.Node{Kind: ast.FOR, Line: tok.Line, Column: tok.Column}
	n.BreakLabel = p.newControlLabel("break")
	n.ContinueLabel = p.newControlLabel("continue")

	if !p.cur.Is(";") {
		init, err := p.declarationOrExprStmt()
		if err != nil {
			return nil, err
		}
		n.Init = init
	} else {
		if err := p.expect(";"); err != nil {
			return nil, err
		}
	}

	if !p.cur.Is(";") {
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Cond = cond
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}

	if !p.cur.Is(")") {
		inc, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Inc = &ast.Node{Kind: ast.EXPR_STMT, Lhs: inc}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	savedBreak, savedContinue := p.breakLabel, p.continueLabel
	p.breakLabel, p.continueLabel = n.BreakLabel, n.ContinueLabel
	body, err := p.stmt()
	p.breakLabel, p.continueLabel = savedBreak, savedContinue
	if err != nil {
		return nil, err
	}
	n.Then = body
	return n, nil
}

// switchStmt parses `switch (cond) body`. Only BreakLabel is set (a
// `break` inside a switch targets the switch's end); ContinueLabel is left
// untouched so an enclosed `continue` still targets the nearest enclosing
// loop, matching C's scoping of the two keywords.
func (p *Parser) switchStmt() (*ast.Node, error) {
	tok := p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	n := &ast.Node{Kind: ast.SWITCH, Cond: cond, Line: tok.Line, Column: tok.Column}
	n.BreakLabel = p.newControlLabel("break")

	savedBreak := p.breakLabel
	savedSwitch := p.currentSwitch
	p.breakLabel = n.BreakLabel
	p.currentSwitch = n

	body, err := p.stmt()

	p.breakLabel = savedBreak
	p.currentSwitch = savedSwitch
	if err != nil {
		return nil, err
	}
	n.Then = body
	return n, nil
}

// caseStmt parses `case CONST: stmt` or `default: stmt`. The node is both
// returned as an ordinary statement (so it still appears inline where the
// code generator expects to emit its label) and threaded into the nearest
// enclosing SWITCH's CaseList via CaseNext, so the generator can also walk
// every case of a switch without re-descending its whole body.
func (p *Parser) caseStmt() (*ast.Node, error) {
	tok := p.advance()
	if p.currentSwitch == nil {
		return nil, p.errorf(tok, "'%s' outside of a switch", tok.Text)
	}
	var val int64
	isDefault := tok.Text == "default"
	if !isDefault {
		v, err := p.constExprInt()
		if err != nil {
			return nil, err
		}
		val = v
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	body, err := p.stmt()
	if err != nil {
		return nil, err
	}
	n := &ast.Node{Kind: ast.CASE, IntValue: val, Lhs: body, UniqueLabel: p.newControlLabel("case"), Line: tok.Line, Column: tok.Column}
	if isDefault {
		n.Label = "default"
	}

	n.CaseNext = p.currentSwitch.CaseList
	p.currentSwitch.CaseList = n
	return n, nil
}

// compoundStmt parses `{ stmt* }`, chaining statements through Node.Next,
// inside one new scope that holds every declaration of the block until the
// closing '}'.
func (p *Parser) compoundStmt() (*ast.Node, error) {
	open := p.advance() // '{'
	p.scope.EnterScope()
	defer p.scope.LeaveScope()

	var head, tail *ast.Node
	for !p.cur.Is("}") {
		if p.atEOF() {
			return nil, p.errorAtCur("expected '}'")
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if s == nil {
			continue
		}
		if head == nil {
			head, tail = s, s
		} else {
			tail.Next = s
			tail = s
		}
	}
	p.advance() // '}'
	return &ast.Node{Kind: ast.BLOCK, Body: head, Line: open.Line, Column: open.Column}, nil
}

// declarationOrExprStmt parses either a local declaration (lowered to a
// BLOCK of assignment statements when it carries an initializer) or a bare
// expression statement, whichever the current token begins.
func (p *Parser) declarationOrExprStmt() (*ast.Node, error) {
	if p.isTypeName() && !p.cur.Is("(") {
		return p.localDeclaration()
	}
	tok := p.cur
	if p.consume(";") {
		return &ast.Node{Kind: ast.NULL_EXPR, Line: tok.Line, Column: tok.Column}, nil
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.EXPR_STMT, Lhs: e, Line: tok.Line, Column: tok.Column}, nil
}

func (p *Parser) localDeclaration() (*ast.Node, error) {
	isTypedef, isStatic, base, err := p.declspec()
	if err != nil {
		return nil, err
	}

	var head, tail *ast.Node
	append_ := func(n *ast.Node) {
		if n == nil {
			return
		}
		if head == nil {
			head, tail = n, n
		} else {
			tail.Next = n
			tail = n
		}
	}

	first := true
	for !p.cur.Is(";") {
		if !first {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		first = false

		d, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		ty := d.build(base)

		if isTypedef {
			p.scope.DeclareVar(&scope.VarEntry{Name: d.name, Type: ty, IsTypedef: true})
			continue
		}
		if isStatic {
			// a function-local static behaves like a global with internal
			// linkage: one instance, initialized once, named uniquely so it
			// can't collide with another function's same-named static.
			gv := &ast.Var{Name: p.newLabel(), Type: ty, IsStatic: true}
			p.globals = append(p.globals, gv)
			p.scope.DeclareVar(&scope.VarEntry{Name: d.name, Type: ty, Var: gv})
			if p.consume("=") {
				if err := p.globalInitializer(gv, ty); err != nil {
					return nil, err
				}
			}
			continue
		}

		lv := p.addLocal(d.name, ty)
		if p.consume("=") {
			init, err := p.localInitializer(lv, ty)
			if err != nil {
				return nil, err
			}
			if init.Kind != ast.BLOCK {
				append_(init)
				continue
			}
			for s := init.Body; s != nil; {
				next := s.Next
				append_(s)
				s = next
			}
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if head == nil {
		return &ast.Node{Kind: ast.NULL_EXPR}, nil
	}
	return &ast.Node{Kind: ast.BLOCK, Body: head}, nil
}
