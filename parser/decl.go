package parser

import (
	"ccfront/ast"
	"ccfront/scope"
	"ccfront/token"
	"ccfront/types"
)

// declarator is the parsed shape of one C declarator: a name plus a
// type-building closure that, applied to the declaration's base type,
// produces the declarator's full type. This replaces the original
// tokenizer/parser's in-place placeholder-Type memcpy trick (the "spiral"
// resolution of declarators like `int (*arr[3])(void)`) with an ordinary Go
// closure composition, per the Design Note on tagged types: build the type
// bottom-up from small closures rather than mutating a shared struct.
type declarator struct {
	name       string
	build      func(base *types.Type) *types.Type
	isFunction bool // true if this declarator's outermost suffix is a parameter list
	params     []*ast.Var
}

// declspec parses a declaration's specifier sequence: an optional
// storage-class keyword (typedef/static/extern) followed by a type
// specifier. Grounded on original_source/parse.c:declspec's counter-based
// combination of void/_Bool/char/short/int/long/signed into one of the
// primitive Types, plus struct/enum/typedef-name specifiers.
func (p *Parser) declspec() (isTypedef bool, isStatic bool, ty *types.Type, err error) {
	const (
		bitVoid = 1 << (iota * 2)
		bitBool
		bitChar
		bitShort
		bitInt
		bitLong
	)
	counter := 0

	for p.isTypeName() {
		if p.cur.Is("typedef") {
			isTypedef = true
			p.advance()
			continue
		}
		if p.cur.Is("static") {
			isStatic = true
			p.advance()
			continue
		}
		if p.cur.Is("extern") {
			p.advance()
			continue
		}
		if p.cur.Is("signed") {
			p.advance() // contributes no bit: `signed int` is plain int; a bare `signed` is rejected as "expected a type"
			continue
		}

		if p.cur.Is("struct") || p.cur.Is("enum") {
			if counter > 0 {
				return false, false, nil, p.errorAtCur("invalid type")
			}
			if p.cur.Is("struct") {
				ty, err = p.structUnionDecl()
			} else {
				ty, err = p.enumSpecifier()
			}
			if err != nil {
				return false, false, nil, err
			}
			counter += bitLong // saturate: no further primitive specifiers allowed
			continue
		}

		if p.cur.Kind == token.RESERVED || p.cur.Kind == token.IDENT {
			if e := p.scope.FindVar(p.cur.Text); e != nil && e.IsTypedef && counter == 0 {
				ty = e.Type
				p.advance()
				counter += bitLong
				continue
			}
		}

		if ty != nil {
			return false, false, nil, p.errorAtCur("invalid type")
		}
		switch {
		case p.cur.Is("void"):
			counter += bitVoid
		case p.cur.Is("_Bool"):
			counter += bitBool
		case p.cur.Is("char"):
			counter += bitChar
		case p.cur.Is("short"):
			counter += bitShort
		case p.cur.Is("int"):
			counter += bitInt
		case p.cur.Is("long"):
			counter += bitLong
		default:
			return false, false, nil, p.errorAtCur("invalid type")
		}
		p.advance()
	}

	if ty != nil {
		return isTypedef, isStatic, ty, nil
	}

	switch counter {
	case 0:
		return false, false, nil, p.errorAtCur("expected a type")
	case bitVoid:
		ty = types.Void
	case bitBool:
		ty = types.Bool
	case bitChar:
		ty = types.Char
	case bitShort, bitShort + bitInt:
		ty = types.Short
	case bitInt:
		ty = types.Int
	case bitLong, bitLong + bitInt, bitLong + bitLong:
		ty = types.Long
	default:
		return false, false, nil, p.errorAtCur("invalid type")
	}
	return isTypedef, isStatic, ty, nil
}

// parseDeclarator parses one declarator: leading '*'s, then either a
// parenthesized inner declarator or a plain identifier, then any trailing
// array/function suffix. The parenthesized case needs two passes over the
// same token span — the first to find the matching ')' (so the suffix
// after it can be parsed and folded into the base type), the second to
// parse the inner declarator for real against that now-complete base — but
// because the token stream is a linked list, "rewinding" is just
// reassigning the cursor, no re-lexing involved.
func (p *Parser) parseDeclarator() (*declarator, error) {
	ptr := func(base *types.Type) *types.Type { return base }
	for p.consume("*") {
		inner := ptr
		ptr = func(base *types.Type) *types.Type { return types.PointerTo(inner(base)) }
	}

	if p.cur.Is("(") {
		start := p.cur
		p.advance()
		if _, err := p.parseDeclarator(); err != nil { // first pass: skip to find ')'
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		suffix, _, _, err := p.typeSuffix()
		if err != nil {
			return nil, err
		}
		after := p.cur

		p.cur = start
		p.advance()
		inner, err := p.parseDeclarator() // second pass: parse for real
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		p.cur = after

		build := func(base *types.Type) *types.Type {
			return inner.build(suffix(ptr(base)))
		}
		// The outer suffix applies to whatever the inner declarator wraps
		// (e.g. the pointers in `(*arr[3])(void)`), so whether the name
		// itself is a function is decided by the inner declarator.
		return &declarator{name: inner.name, build: build, isFunction: inner.isFunction, params: inner.params}, nil
	}

	name := ""
	if p.cur.Kind == token.IDENT {
		name = p.cur.Text
		p.advance()
	}
	suffix, isFunc, params, err := p.typeSuffix()
	if err != nil {
		return nil, err
	}
	build := func(base *types.Type) *types.Type { return suffix(ptr(base)) }
	return &declarator{name: name, build: build, isFunction: isFunc, params: params}, nil
}

// typeSuffix parses a declarator's trailing array dimensions or parameter
// list, per original_source/parse.c:type_suffix, returning a closure that
// wraps a base type with whatever suffix was found (identity if none).
func (p *Parser) typeSuffix() (build func(base *types.Type) *types.Type, isFunc bool, params []*ast.Var, err error) {
	if p.cur.Is("(") {
		p.advance()
		params, err = p.paramList()
		if err != nil {
			return nil, false, nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, false, nil, err
		}
		return func(base *types.Type) *types.Type { return types.FuncType(base) }, true, params, nil
	}

	if p.cur.Is("[") {
		p.advance()
		length := -1
		if !p.cur.Is("]") {
			n, err := p.constExprInt()
			if err != nil {
				return nil, false, nil, err
			}
			length = int(n)
		}
		if err := p.expect("]"); err != nil {
			return nil, false, nil, err
		}
		rest, _, _, err := p.typeSuffix()
		if err != nil {
			return nil, false, nil, err
		}
		return func(base *types.Type) *types.Type {
			elem := rest(base)
			if length < 0 {
				return types.IncompleteArrayOf(elem)
			}
			return types.ArrayOf(elem, length)
		}, false, nil, nil
	}

	return func(base *types.Type) *types.Type { return base }, false, nil, nil
}

// paramList parses a parameter type list, registering no bindings yet (the
// caller does that once it knows whether this is a prototype or a
// definition). A lone `void` parameter list means no parameters.
func (p *Parser) paramList() ([]*ast.Var, error) {
	if p.cur.Is("void") && p.peekNextIs(")") {
		p.advance()
		return nil, nil
	}

	var params []*ast.Var
	first := true
	for !p.cur.Is(")") {
		if !first {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		first = false

		if p.cur.Is("...") { // variadic marker: accepted syntactically, not lowered further
			p.advance()
			break
		}

		_, _, base, err := p.declspec()
		if err != nil {
			return nil, err
		}
		d, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		ty := d.build(base)
		if types.IsPointerLike(ty) && ty.Kind == types.ARRAY {
			ty = types.PointerTo(ty.Base) // a parameter of array type decays to pointer
		}
		params = append(params, &ast.Var{Name: d.name, Type: ty, IsLocal: true})
	}
	return params, nil
}

func (p *Parser) peekNextIs(s string) bool {
	return p.cur.Next != nil && p.cur.Next.Is(s)
}

// structUnionDecl parses `struct Tag { members }` or a bare `struct Tag`
// forward/tag reference, per original_source/parse.c:struct_decl. A tag
// redeclared at the current scope depth completes that Type in place
// rather than shadowing it.
func (p *Parser) structUnionDecl() (*types.Type, error) {
	if err := p.expect("struct"); err != nil {
		return nil, err
	}

	var tag string
	if p.cur.Kind == token.IDENT {
		tag = p.cur.Text
		p.advance()
	}

	if tag != "" && !p.cur.Is("{") {
		if e := p.scope.FindTag(tag); e != nil {
			return e.Type, nil
		}
		ty := types.NewIncompleteStruct()
		p.scope.DeclareTag(&scope.TagEntry{Name: tag, Type: ty})
		return ty, nil
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var head, tail *types.Member
	for !p.cur.Is("}") {
		_, _, base, err := p.declspec()
		if err != nil {
			return nil, err
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
			m := &types.Member{Name: d.name, Type: d.build(base)}
			if head == nil {
				head, tail = m, m
			} else {
				tail.Next = m
				tail = m
			}
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}

	var ty *types.Type
	if tag != "" {
		if e := p.scope.FindTagAtCurrentDepth(tag); e != nil {
			ty = e.Type
		}
	}
	if ty == nil {
		ty = types.NewIncompleteStruct()
		if tag != "" {
			p.scope.DeclareTag(&scope.TagEntry{Name: tag, Type: ty})
		}
	}
	ty.Members = head
	ty.Close()
	return ty, nil
}

// enumSpecifier parses `enum Tag { A, B = 5, C }` or a bare tag reference,
// per original_source/parse.c:enum_specifier. Each constant not given an
// explicit value continues from the previous one's value + 1, and each
// constant is bound in the variable namespace (enum constants and ordinary
// identifiers share one namespace in C).
func (p *Parser) enumSpecifier() (*types.Type, error) {
	if err := p.expect("enum"); err != nil {
		return nil, err
	}

	var tag string
	if p.cur.Kind == token.IDENT {
		tag = p.cur.Text
		p.advance()
	}

	if tag != "" && !p.cur.Is("{") {
		e := p.scope.FindTag(tag)
		if e == nil {
			return nil, p.errorAtCur("unknown enum tag '%s'", tag)
		}
		return e.Type, nil
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	ty := types.NewEnum()
	value := int64(0)
	first := true
	for !p.cur.Is("}") {
		if !first {
			if !p.consume(",") {
				break
			}
		}
		first = false
		if p.cur.Is("}") {
			break
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.consume("=") {
			value, err = p.constExprInt()
			if err != nil {
				return nil, err
			}
		}
		p.scope.DeclareVar(&scope.VarEntry{Name: name, Type: ty, IsEnumConst: true, EnumValue: value})
		value++
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	if tag != "" {
		p.scope.DeclareTag(&scope.TagEntry{Name: tag, Type: ty})
	}
	return ty, nil
}
