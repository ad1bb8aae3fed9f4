// Package parser implements the recursive-descent parser and semantic
// analyzer: it turns a token.Token stream into a typed ast.Program, doing
// declarator resolution, scope tracking, initializer lowering, constant
// folding, and type annotation as it goes.
package parser

import (
	"fmt"

	"ccfront/ast"
	"ccfront/diag"
	"ccfront/lexer"
	"ccfront/scope"
	"ccfront/token"
	"ccfront/types"
)

// Parser holds the cursor into the token stream and the accumulating
// program state. Grounded on informatter-nilan/parser/parser.go's Parser
// struct and cursor method shape (peek/previous/advance/isFinished/
// checkType/isMatch), generalized from Nilan's expression-only grammar to
// the full C declaration/statement/expression grammar.
type Parser struct {
	file string
	src  string
	cur  *token.Token

	scope *scope.Scope

	locals  []*ast.Var // current function's locals, reset per function
	globals []*ast.Var
	funcs   []*ast.Function

	labelSeq int

	// breakLabel/continueLabel are the unique labels a bare break/continue
	// statement resolves to right now, updated by forStmt/whileStmt/
	// switchStmt as they recurse into their bodies and restored on the way
	// back out, so nested loops/switches each get their own targets.
	breakLabel    string
	continueLabel string
	currentSwitch *ast.Node
}

// Parse tokenizes and parses src, returning the resulting Program.
func Parse(file, src string) (*ast.Program, error) {
	toks, err := lexer.New(file, src).Scan()
	if err != nil {
		return nil, err
	}
	return New(file, src, toks).ParseProgram()
}

// New builds a Parser over an already-scanned token stream.
func New(file, src string, tokens *token.Token) *Parser {
	return &Parser{file: file, src: src, cur: tokens, scope: scope.New()}
}

func (p *Parser) errorf(tok *token.Token, format string, args ...any) error {
	return diag.New(p.file, tok.Line, tok.Column, diag.LineByNumber(p.src, tok.Line), format, args...)
}

func (p *Parser) errorAtCur(format string, args ...any) error {
	return p.errorf(p.cur, format, args...)
}

func (p *Parser) advance() *token.Token {
	tok := p.cur
	if p.cur.Next != nil {
		p.cur = p.cur.Next
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.cur.Kind == token.EOF
}

// consume advances past the current token if it's the reserved operator s.
func (p *Parser) consume(s string) bool {
	if p.cur.Is(s) {
		p.advance()
		return true
	}
	return false
}

// expect requires the current token to be reserved operator s, consuming it.
func (p *Parser) expect(s string) error {
	if !p.cur.Is(s) {
		return p.errorAtCur("expected '%s'", s)
	}
	p.advance()
	return nil
}

// expectIdent requires the current token to be an identifier, returning its
// text and consuming it. Keywords lex as RESERVED, so this also rejects
// keywords used where a name is required.
func (p *Parser) expectIdent() (string, error) {
	if p.cur.Kind != token.RESERVED && p.cur.Kind != token.IDENT {
		return "", p.errorAtCur("expected an identifier")
	}
	if p.cur.Kind == token.RESERVED {
		return "", p.errorAtCur("expected an identifier")
	}
	name := p.cur.Text
	p.advance()
	return name, nil
}

// expectNum requires and consumes a NUM token, returning its decoded value.
func (p *Parser) expectNum() (int64, error) {
	if p.cur.Kind != token.NUM {
		return 0, p.errorAtCur("expected a number")
	}
	v := p.cur.IntValue
	p.advance()
	return v, nil
}

// newLabel mints a unique global data label, per
// original_source/parse.c:new_label's ".L.data.%d" format.
func (p *Parser) newLabel() string {
	p.labelSeq++
	return fmt.Sprintf(".L.data.%d", p.labelSeq)
}

// newControlLabel mints a unique control-flow label (break/continue/case
// targets), distinguished from newLabel's data labels by prefix.
func (p *Parser) newControlLabel(prefix string) string {
	p.labelSeq++
	return fmt.Sprintf(".L.%s.%d", prefix, p.labelSeq)
}

// addLocal registers a new local variable of type ty in the current
// function and in the innermost scope.
func (p *Parser) addLocal(name string, ty *types.Type) *ast.Var {
	v := &ast.Var{Name: name, Type: ty, IsLocal: true}
	p.locals = append(p.locals, v)
	p.scope.DeclareVar(&scope.VarEntry{Name: name, Type: ty, Var: v})
	return v
}

// addGlobal registers a new global variable of type ty.
func (p *Parser) addGlobal(name string, ty *types.Type) *ast.Var {
	v := &ast.Var{Name: name, Type: ty}
	p.globals = append(p.globals, v)
	p.scope.DeclareVar(&scope.VarEntry{Name: name, Type: ty, Var: v})
	return v
}

// findVar resolves name to its ast.Var via the scope's variable namespace,
// or nil if it's unbound or names a typedef/enum constant instead.
func (p *Parser) findVar(name string) *ast.Var {
	e := p.scope.FindVar(name)
	if e == nil || e.Var == nil {
		return nil
	}
	v, _ := e.Var.(*ast.Var)
	return v
}

// isTypeName reports whether the current token begins a type: a builtin
// type keyword, struct/enum, a storage-class keyword, or a name previously
// bound as a typedef.
func (p *Parser) isTypeName() bool {
	kws := []string{"void", "_Bool", "char", "short", "int", "long", "signed", "struct", "enum", "typedef", "static", "extern"}
	for _, kw := range kws {
		if p.cur.Is(kw) {
			return true
		}
	}
	if p.cur.Kind == token.IDENT {
		if e := p.scope.FindVar(p.cur.Text); e != nil && e.IsTypedef {
			return true
		}
	}
	return false
}

// ParseProgram parses a whole translation unit: a sequence of top-level
// typedefs, global variable declarations, and function definitions.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	for !p.atEOF() {
		isTypedef, isStatic, base, err := p.declspec()
		if err != nil {
			return nil, err
		}

		if isTypedef {
			if err := p.parseTypedef(base); err != nil {
				return nil, err
			}
			continue
		}

		if err := p.topLevelDeclarator(base, isStatic); err != nil {
			return nil, err
		}
	}

	prog := &ast.Program{Globals: p.globals, Functions: p.funcs}
	for _, fn := range prog.Functions {
		if fn.Body != nil {
			AddType(fn.Body)
		}
	}
	return prog, nil
}

// topLevelDeclarator parses one or more comma-separated declarators sharing
// base, dispatching to a function definition when a declarator is
// immediately followed by a parameter list and a '{', and to a global
// variable (with optional initializer) otherwise.
func (p *Parser) topLevelDeclarator(base *types.Type, isStatic bool) error {
	if p.consume(";") {
		return nil // e.g. `struct S { ... };` declares only the tag
	}
	first := true
	for {
		if !first {
			if !p.consume(",") {
				break
			}
		}
		first = false

		d, err := p.parseDeclarator()
		if err != nil {
			return err
		}

		if d.isFunction {
			return p.function(d, base, isStatic)
		}

		ty := d.build(base)
		gv := p.addGlobal(d.name, ty)
		gv.IsStatic = isStatic

		if p.consume("=") {
			if err := p.globalInitializer(gv, ty); err != nil {
				return err
			}
		}
	}
	return p.expect(";")
}

func (p *Parser) parseTypedef(base *types.Type) error {
	first := true
	for {
		if !first {
			if !p.consume(",") {
				break
			}
		}
		first = false
		d, err := p.parseDeclarator()
		if err != nil {
			return err
		}
		ty := d.build(base)
		p.scope.DeclareVar(&scope.VarEntry{Name: d.name, Type: ty, IsTypedef: true})
	}
	return p.expect(";")
}
