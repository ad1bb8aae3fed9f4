package parser

import (
	"ccfront/ast"
	"ccfront/token"
	"ccfront/types"
)

// initItem is one node of a parsed (but not yet lowered) initializer tree:
// either a scalar assignment-expression leaf, or a braced list of nested
// initItems for an array or struct.
type initItem struct {
	aggregate bool
	elems     []*initItem
	scalar    *ast.Node
}

// parseInitializer parses `{ init (, init)* (,)? }` or a single
// assignment-expression, per original_source/parse.c:initializer2. A bare
// string literal initializing a char array is expanded here into one
// scalar element per byte, so the rest of the lowering logic never needs a
// separate string special case.
func (p *Parser) parseInitializer(ty *types.Type) (*initItem, error) {
	if ty.Kind == types.ARRAY && ty.Base == types.Char && p.cur.Kind == token.STR {
		tok := p.advance()
		elems := make([]*initItem, len(tok.StringPayload))
		for i, b := range tok.StringPayload {
			elems[i] = &initItem{scalar: ast.NewNum(int64(b), tok.Line, tok.Column)}
		}
		return &initItem{aggregate: true, elems: elems}, nil
	}

	if p.cur.Is("{") {
		p.advance()
		var elems []*initItem
		first := true
		for !p.cur.Is("}") {
			if !first {
				if !p.consume(",") {
					break
				}
				if p.cur.Is("}") {
					break
				}
			}
			first = false
			elemTy := elementType(ty, len(elems))
			child, err := p.parseInitializer(elemTy)
			if err != nil {
				return nil, err
			}
			elems = append(elems, child)
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		return &initItem{aggregate: true, elems: elems}, nil
	}

	e, err := p.assign()
	if err != nil {
		return nil, err
	}
	return &initItem{scalar: e}, nil
}

// elementType reports the type a nested initializer at position idx should
// be parsed against: an array's element type (same for every index) or a
// struct's idx-th member's type.
func elementType(ty *types.Type, idx int) *types.Type {
	switch ty.Kind {
	case types.ARRAY:
		return ty.Base
	case types.STRUCT:
		m := ty.Members
		for i := 0; i < idx && m != nil; i++ {
			m = m.Next
		}
		if m != nil {
			return m.Type
		}
	}
	return types.Int
}

// globalInitializer parses gv's initializer and lowers it directly to a
// flat []ast.Fragment, completing an incomplete array's length from the
// number of elements actually given, per spec's global-initializer-to-
// Fragment-list contract.
func (p *Parser) globalInitializer(gv *ast.Var, ty *types.Type) error {
	item, err := p.parseInitializer(ty)
	if err != nil {
		return err
	}
	if ty.Kind == types.ARRAY && ty.Incomplete {
		ty.ArrayLen = len(item.elems)
		ty.Size = ty.Base.Size * ty.ArrayLen
		ty.Align = ty.Base.Align
		ty.Incomplete = false
		gv.Type = ty
	}

	frags, err := lowerGlobalInit(item, ty)
	if err != nil {
		return err
	}
	gv.InitData = frags
	return nil
}

func lowerGlobalInit(item *initItem, ty *types.Type) ([]ast.Fragment, error) {
	if !item.aggregate {
		v, label, err := Eval2(item.scalar)
		if err != nil {
			return nil, err
		}
		if label != "" {
			return []ast.Fragment{{Kind: ast.FragLabel, Name: label, Addend: v}}, nil
		}
		return []ast.Fragment{{Kind: ast.FragVal, Size: ty.Size, Value: v}}, nil
	}

	var out []ast.Fragment
	switch ty.Kind {
	case types.ARRAY:
		for i := 0; i < ty.ArrayLen; i++ {
			var child *initItem
			if i < len(item.elems) {
				child = item.elems[i]
			} else {
				child = &initItem{scalar: ast.NewNum(0, 0, 0)}
			}
			frags, err := lowerGlobalInit(child, ty.Base)
			if err != nil {
				return nil, err
			}
			out = append(out, frags...)
		}
	case types.STRUCT:
		m := ty.Members
		i := 0
		offset := 0
		for m != nil {
			if m.Offset > offset {
				out = append(out, ast.Fragment{Kind: ast.FragVal, Size: m.Offset - offset, Value: 0})
			}
			var child *initItem
			if i < len(item.elems) {
				child = item.elems[i]
			} else {
				child = &initItem{scalar: ast.NewNum(0, 0, 0)}
			}
			frags, err := lowerGlobalInit(child, m.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, frags...)
			offset = m.Offset + m.Type.Size
			m = m.Next
			i++
		}
		if ty.Size > offset {
			out = append(out, ast.Fragment{Kind: ast.FragVal, Size: ty.Size - offset, Value: 0})
		}
	default:
		return nil, &constError{"aggregate initializer used for a scalar type"}
	}
	return out, nil
}

// localInitializer lowers lv's initializer to a BLOCK of explicit
// EXPR_STMT(ASSIGN(designator, value)) statements, per
// original_source/parse.c:lvar_initializer2's designator-chain approach:
// rather than building one big aggregate value, each leaf gets its own
// assignment against an access expression built up through MEMBER/DEREF
// nodes from the variable itself.
func (p *Parser) localInitializer(lv *ast.Var, ty *types.Type) (*ast.Node, error) {
	item, err := p.parseInitializer(ty)
	if err != nil {
		return nil, err
	}
	if ty.Kind == types.ARRAY && ty.Incomplete {
		ty.ArrayLen = len(item.elems)
		ty.Size = ty.Base.Size * ty.ArrayLen
		ty.Align = ty.Base.Align
		ty.Incomplete = false
		lv.Type = ty
	}

	base := ast.NewVarNode(lv, 0, 0)
	var stmts []*ast.Node
	lowerLocalInit(item, base, ty, &stmts)

	if len(stmts) == 0 {
		return &ast.Node{Kind: ast.NULL_EXPR}, nil
	}
	head := stmts[0]
	cur := head
	for _, s := range stmts[1:] {
		cur.Next = s
		cur = s
	}
	return &ast.Node{Kind: ast.BLOCK, Body: head}, nil
}

func lowerLocalInit(item *initItem, access *ast.Node, ty *types.Type, out *[]*ast.Node) {
	if !item.aggregate {
		assign := ast.NewBinary(ast.ASSIGN, access, item.scalar, access.Line, access.Column)
		*out = append(*out, &ast.Node{Kind: ast.EXPR_STMT, Lhs: assign})
		return
	}

	switch ty.Kind {
	case types.ARRAY:
		for i := 0; i < ty.ArrayLen; i++ {
			var child *initItem
			if i < len(item.elems) {
				child = item.elems[i]
			} else {
				child = &initItem{scalar: ast.NewNum(0, access.Line, access.Column)}
			}
			idx := ast.NewNum(int64(i), access.Line, access.Column)
			elemAddr := ast.NewBinary(ast.ADD, access, ast.NewBinary(ast.MUL, idx, ast.NewNum(int64(ty.Base.Size), 0, 0), 0, 0), 0, 0)
			elemAccess := ast.NewUnary(ast.DEREF, elemAddr, 0, 0)
			lowerLocalInit(child, elemAccess, ty.Base, out)
		}
	case types.STRUCT:
		m := ty.Members
		i := 0
		for m != nil {
			var child *initItem
			if i < len(item.elems) {
				child = item.elems[i]
			} else {
				child = &initItem{scalar: ast.NewNum(0, access.Line, access.Column)}
			}
			memberAccess := &ast.Node{Kind: ast.MEMBER, Lhs: access, MemberName: m.Name, Member: m, Type: m.Type}
			lowerLocalInit(child, memberAccess, m.Type, out)
			m = m.Next
			i++
		}
	}
}
