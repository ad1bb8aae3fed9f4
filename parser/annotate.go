package parser

import (
	"ccfront/ast"
	"ccfront/types"
)

// AddType is the post-order type annotator: it walks n's subtree bottom-up,
// assigns n.Type from its operands' already-assigned types, and inserts the
// array-to-pointer / function-to-pointer decay C requires in value
// context. It is idempotent (a node whose Type is already set is left
// alone), so it can safely be called eagerly while parsing (as newArith
// does, to decide pointer-vs-integer elaboration) and again as a final
// sweep over each function body once parsing completes.
func AddType(n *ast.Node) {
	if n == nil || n.Type != nil {
		return
	}

	AddType(n.Lhs)
	AddType(n.Rhs)
	AddType(n.Cond)
	AddType(n.Then)
	AddType(n.Els)
	AddType(n.Init)
	AddType(n.Inc)
	for s := n.Body; s != nil; s = s.Next {
		AddType(s)
	}
	for a := n.Args; a != nil; a = a.Next {
		AddType(a)
	}
	for c := n.CaseList; c != nil; c = c.CaseNext {
		AddType(c)
	}

	switch n.Kind {
	case ast.ADD, ast.SUB, ast.MUL, ast.DIV, ast.MOD, ast.BITAND, ast.BITOR, ast.BITXOR, ast.SHL, ast.SHR:
		n.Type = n.Lhs.Type

	case ast.PTR_ADD, ast.PTR_SUB:
		n.Type = n.Lhs.Type // the pointer operand, per newArith's invariant

	case ast.PTR_DIFF:
		n.Type = types.Int

	case ast.ASSIGN:
		n.Type = n.Lhs.Type

	case ast.EQ, ast.NE, ast.LT, ast.LE, ast.LOGAND, ast.LOGOR, ast.NOT:
		n.Type = types.Int

	case ast.BITNOT:
		n.Type = n.Lhs.Type

	case ast.COND:
		n.Type = resultType(n.Then.Type, n.Els.Type)

	case ast.COMMA:
		n.Type = n.Rhs.Type

	case ast.MEMBER:
		if n.Lhs.Type == nil {
			break
		}
		baseTy := n.Lhs.Type
		if m := baseTy.FindMember(n.MemberName); m != nil {
			n.Member = m
			n.Type = m.Type
		}

	case ast.ADDR:
		if n.Lhs.Type != nil && n.Lhs.Type.Kind == types.ARRAY {
			n.Type = types.PointerTo(n.Lhs.Type.Base)
		} else if n.Lhs.Type != nil {
			n.Type = types.PointerTo(n.Lhs.Type)
		}

	case ast.DEREF:
		if n.Lhs.Type == nil || n.Lhs.Type.Base == nil {
			break
		}
		if n.Lhs.Type.Base.Kind == types.VOID {
			break // dereferencing void* leaves the node untyped; no diagnostic is raised for it
		}
		n.Type = n.Lhs.Type.Base

	case ast.VAR:
		if n.Var != nil {
			n.Type = decay(n.Var.Type)
		}

	case ast.NUM:
		if n.IntValue > 0x7fffffff || n.IntValue < -0x80000000 {
			n.Type = types.Long
		} else {
			n.Type = types.Int
		}

	case ast.FUNCALL:
		n.Type = types.Int // every call returns int: this front end has no function-signature return-type table

	case ast.STMT_EXPR:
		if n.Body == nil {
			n.Type = types.Void
			break
		}
		last := n.Body
		for last.Next != nil {
			last = last.Next
		}
		if last.Kind == ast.EXPR_STMT {
			n.Type = last.Lhs.Type
		} else {
			n.Type = types.Void
		}

	case ast.CAST:
		// Type is already set at parse time for CAST nodes.

	default:
		// statements (IF/FOR/BLOCK/RETURN/...) carry no value type.
	}
}

// decay applies C's implicit array-to-pointer and function-to-pointer
// conversion when a variable of that type is used in an expression.
func decay(ty *types.Type) *types.Type {
	if ty == nil {
		return nil
	}
	switch ty.Kind {
	case types.ARRAY:
		return types.PointerTo(ty.Base)
	case types.FUNC:
		return types.PointerTo(ty)
	default:
		return ty
	}
}

// resultType picks the wider of two arithmetic types for a conditional
// expression's combined branches, preferring a pointer type over either
// integer branch (the common `cond ? p : 0` idiom).
func resultType(a, b *types.Type) *types.Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind == types.PTR {
		return a
	}
	if b.Kind == types.PTR {
		return b
	}
	if a.Size >= b.Size {
		return a
	}
	return b
}
