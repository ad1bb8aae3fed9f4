package parser

import (
	"ccfront/ast"
	"ccfront/types"
)

// function parses a function prototype or definition once topLevelDeclarator
// has seen a declarator immediately followed by '(' params ')'. A trailing
// ';' is a prototype (not lowered into an ast.Function); a trailing '{' is a
// definition, parsed in its own scope with params bound as locals.
func (p *Parser) function(d *declarator, retBase *types.Type, isStatic bool) error {
	if p.consume(";") {
		return nil // prototype only: nothing downstream needs it once it's parsed
	}

	// d.build wraps retBase with whatever leading '*'s and the trailing
	// parameter-list suffix produced; its Base is this function's actual
	// return type (e.g. `int *foo(void)` builds FUNC{ret: PTR{int}}, so
	// Base is PTR{int}, not plain int).
	fn := &ast.Function{Name: d.name, ReturnType: d.build(retBase).Base, IsStatic: isStatic}

	p.scope.EnterScope()
	defer p.scope.LeaveScope()

	p.locals = nil
	for _, param := range d.params {
		lv := p.addLocal(param.Name, param.Type)
		fn.Params = append(fn.Params, lv)
	}

	if !p.cur.Is("{") {
		return p.errorAtCur("expected '{'")
	}
	body, err := p.compoundStmt()
	if err != nil {
		return err
	}
	fn.Body = body
	fn.Locals = p.locals
	assignStackLayout(fn)

	p.funcs = append(p.funcs, fn)
	return nil
}

// assignStackLayout gives every local a monotonically increasing stack
// offset and sets the function's total frame size, per spec.md §3/§6 and
// original_source/parse.c:assign_lvar_offsets (chibi.h's codegen consumes
// offset/stack_size the same way). Each local's offset is bumped by its own
// type size before assignment, so offsets grow from the first local down
// toward the frame's far end; the total is rounded up to a 16-byte stack
// alignment boundary.
func assignStackLayout(fn *ast.Function) {
	offset := 0
	for _, lv := range fn.Locals {
		offset += lv.Type.Size
		lv.Offset = offset
	}
	fn.StackSize = types.AlignTo(offset, 16)
}
