package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccfront/ast"
	"ccfront/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test.c", src)
	require.NoError(t, err, "source:\n%s", src)
	return prog
}

func TestParseEmptyFunction(t *testing.T) {
	prog := mustParse(t, "int main(void) { return 0; }")
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, types.Int, fn.ReturnType)
	require.NotNil(t, fn.Body)
	assert.Equal(t, ast.BLOCK, fn.Body.Kind)
}

func TestParseGlobalVariable(t *testing.T) {
	prog := mustParse(t, "int counter;")
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, "counter", prog.Globals[0].Name)
	assert.Equal(t, types.Int, prog.Globals[0].Type)
}

func TestParseFunctionPrototypeIsNotLowered(t *testing.T) {
	prog := mustParse(t, "int foo(int x); int main(void) { return foo(1); }")
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Name)
}

func TestBitxorPrecedenceSitsBetweenOrAndAnd(t *testing.T) {
	// `a ^ b & c` must group as `a ^ (b & c)`: bitand binds tighter.
	prog := mustParse(t, "int main(void) { int a; int b; int c; return a ^ b & c; }")
	fn := prog.Functions[0]
	ret := lastStmt(fn.Body)
	require.Equal(t, ast.RETURN, ret.Kind)
	xor := ret.Lhs
	require.Equal(t, ast.BITXOR, xor.Kind)
	require.Equal(t, ast.BITAND, xor.Rhs.Kind)
}

func TestBitxorAndBitorPrecedence(t *testing.T) {
	// `a | b ^ c` must group as `a | (b ^ c)`: bitxor binds tighter than bitor.
	prog := mustParse(t, "int main(void) { int a; int b; int c; return a | b ^ c; }")
	ret := lastStmt(prog.Functions[0].Body)
	or := ret.Lhs
	require.Equal(t, ast.BITOR, or.Kind)
	assert.Equal(t, ast.BITXOR, or.Rhs.Kind)
}

func TestLogandIsLeftAssociative(t *testing.T) {
	// `a && b && c` must group as `(a && b) && c`, not `a && (b && c)`.
	prog := mustParse(t, "int main(void) { int a; int b; int c; return a && b && c; }")
	ret := lastStmt(prog.Functions[0].Body)
	outer := ret.Lhs
	require.Equal(t, ast.LOGAND, outer.Kind)
	require.Equal(t, ast.LOGAND, outer.Lhs.Kind)
	assert.Equal(t, ast.VAR, outer.Rhs.Kind)
}

func TestConstantXorFoldsToRealXor(t *testing.T) {
	prog := mustParse(t, "int g[5 ^ 3];")
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, types.ARRAY, prog.Globals[0].Type.Kind)
	assert.Equal(t, 5^3, prog.Globals[0].Type.ArrayLen)
}

func TestBreakTargetsEnclosingLoopNotSwitch(t *testing.T) {
	src := `int main(void) {
		int i;
		for (i = 0; i < 10; i = i + 1) {
			switch (i) {
			case 1:
				break;
			}
		}
		return 0;
	}`
	prog := mustParse(t, src)
	forNode := firstStmtOfKind(prog.Functions[0].Body, ast.FOR)
	require.NotNil(t, forNode)
	sw := firstStmtOfKind(forNode.Then, ast.SWITCH)
	require.NotNil(t, sw)
	require.NotEmpty(t, sw.BreakLabel)
	require.NotEmpty(t, forNode.BreakLabel)
	assert.NotEqual(t, forNode.BreakLabel, sw.BreakLabel, "switch must mint its own break target")
}

func TestContinuePassesThroughSwitchToEnclosingLoop(t *testing.T) {
	src := `int main(void) {
		int i;
		for (i = 0; i < 10; i = i + 1) {
			switch (i) {
			case 1:
				continue;
			}
		}
		return 0;
	}`
	prog := mustParse(t, src)
	forNode := firstStmtOfKind(prog.Functions[0].Body, ast.FOR)
	require.NotNil(t, forNode)
	caseNode := findCase(forNode)
	require.NotNil(t, caseNode)
	assert.Equal(t, forNode.ContinueLabel, caseNode.Lhs.UniqueLabel)
}

func TestSwitchCaseChainsThroughCaseList(t *testing.T) {
	src := `int main(void) {
		int x;
		switch (x) {
		case 1: x = 1;
		case 2: x = 2;
		default: x = 3;
		}
		return x;
	}`
	prog := mustParse(t, src)
	sw := firstStmtOfKind(prog.Functions[0].Body, ast.SWITCH)
	require.NotNil(t, sw)
	var labels []string
	for c := sw.CaseList; c != nil; c = c.CaseNext {
		labels = append(labels, c.Label)
	}
	assert.Len(t, labels, 3)
}

func TestDeclaratorPointerToArrayOfFunctionPointers(t *testing.T) {
	// int (*arr[3])(void) -- arr is an array of 3 pointers to functions
	// returning int.
	prog := mustParse(t, "int (*arr[3])(void);")
	require.Len(t, prog.Globals, 1)
	ty := prog.Globals[0].Type
	require.Equal(t, types.ARRAY, ty.Kind)
	assert.Equal(t, 3, ty.ArrayLen)
	require.Equal(t, types.PTR, ty.Base.Kind)
	assert.Equal(t, types.FUNC, ty.Base.Base.Kind)
}

func TestDeclaratorFunctionReturningPointer(t *testing.T) {
	prog := mustParse(t, "int *foo(void) { return 0; }")
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, types.PTR, prog.Functions[0].ReturnType.Kind)
}

func TestStructMemberLayoutAndAccess(t *testing.T) {
	src := `struct Point { char tag; int x; int y; };
	int main(void) { struct Point p; p.x = 1; return p.x; }`
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 1)
	structTy := fn.Locals[0].Type
	require.Equal(t, types.STRUCT, structTy.Kind)
	x := structTy.FindMember("x")
	require.NotNil(t, x)
	assert.Equal(t, 4, x.Offset) // tag(1) aligned up to int's 4-byte alignment
}

func TestEnumConstantsAutoIncrement(t *testing.T) {
	prog := mustParse(t, "enum Color { RED, GREEN, BLUE = 5, PURPLE }; int g[PURPLE];")
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, 6, prog.Globals[0].Type.ArrayLen)
}

func TestGlobalInitializerScalar(t *testing.T) {
	prog := mustParse(t, "int x = 42;")
	require.Len(t, prog.Globals, 1)
	require.Len(t, prog.Globals[0].InitData, 1)
	frag := prog.Globals[0].InitData[0]
	assert.Equal(t, ast.FragVal, frag.Kind)
	assert.EqualValues(t, 42, frag.Value)
	assert.Equal(t, 4, frag.Size)
}

func TestGlobalInitializerArrayCompletesIncompleteLength(t *testing.T) {
	prog := mustParse(t, "int arr[] = {1, 2, 3};")
	require.Len(t, prog.Globals, 1)
	ty := prog.Globals[0].Type
	assert.False(t, ty.Incomplete)
	assert.Equal(t, 3, ty.ArrayLen)
	require.Len(t, prog.Globals[0].InitData, 3)
}

func TestGlobalInitializerCharArrayFromStringLiteral(t *testing.T) {
	prog := mustParse(t, `char msg[] = "hi";`)
	require.Len(t, prog.Globals, 1)
	ty := prog.Globals[0].Type
	assert.Equal(t, 3, ty.ArrayLen) // 'h', 'i', NUL
	require.Len(t, prog.Globals[0].InitData, 3)
	assert.EqualValues(t, 'h', prog.Globals[0].InitData[0].Value)
	assert.EqualValues(t, 0, prog.Globals[0].InitData[2].Value)
}

func TestGlobalInitializerAddressOfAnotherGlobal(t *testing.T) {
	prog := mustParse(t, "int g; int *p = &g;")
	require.Len(t, prog.Globals, 2)
	p := prog.Globals[1]
	require.Len(t, p.InitData, 1)
	assert.Equal(t, ast.FragLabel, p.InitData[0].Kind)
	assert.Equal(t, "g", p.InitData[0].Name)
}

func TestLocalInitializerLowersToAssignBlock(t *testing.T) {
	prog := mustParse(t, "int main(void) { int x = 1 + 2; return x; }")
	fn := prog.Functions[0]
	init := fn.Body.Body // first statement in the compound block
	require.Equal(t, ast.BLOCK, init.Kind)
	assign := init.Body.Lhs
	require.Equal(t, ast.EXPR_STMT, init.Body.Kind)
	assert.Equal(t, ast.ASSIGN, assign.Kind)
}

func TestLocalArrayInitializerPerElementAssignments(t *testing.T) {
	prog := mustParse(t, "int main(void) { int arr[3] = {1, 2, 3}; return arr[0]; }")
	fn := prog.Functions[0]
	block := fn.Body.Body
	require.Equal(t, ast.BLOCK, block.Kind)
	count := 0
	for s := block.Body; s != nil; s = s.Next {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestConstExprDivisionByZeroErrors(t *testing.T) {
	_, err := Parse("test.c", "int g[1 / 0];")
	require.Error(t, err)
}

func TestUndeclaredIdentifierErrors(t *testing.T) {
	_, err := Parse("test.c", "int main(void) { return nope; }")
	require.Error(t, err)
}

func TestBreakOutsideLoopErrors(t *testing.T) {
	_, err := Parse("test.c", "int main(void) { break; return 0; }")
	require.Error(t, err)
}

func TestPointerArithmeticProducesDistinctPtrAddNode(t *testing.T) {
	prog := mustParse(t, "int main(void) { int *p; return *(p + 1); }")
	ret := lastStmt(prog.Functions[0].Body)
	deref := ret.Lhs
	require.Equal(t, ast.DEREF, deref.Kind)
	add := deref.Lhs
	require.Equal(t, ast.PTR_ADD, add.Kind)
	require.Equal(t, ast.NUM, add.Rhs.Kind)
	assert.EqualValues(t, 1, add.Rhs.IntValue)
	require.NotNil(t, add.Type)
	assert.Equal(t, types.PTR, add.Type.Kind) // inherits the pointer operand's type
}

func TestIntPlusPointerPutsPointerOnLhs(t *testing.T) {
	prog := mustParse(t, "int main(void) { int *p; return *(1 + p); }")
	ret := lastStmt(prog.Functions[0].Body)
	add := ret.Lhs.Lhs
	require.Equal(t, ast.PTR_ADD, add.Kind)
	require.Equal(t, ast.VAR, add.Lhs.Kind)
	require.Equal(t, ast.NUM, add.Rhs.Kind)
}

func TestPointerDifferenceProducesPtrDiffNode(t *testing.T) {
	prog := mustParse(t, "int main(void) { int *p; int *q; return p - q; }")
	ret := lastStmt(prog.Functions[0].Body)
	require.Equal(t, ast.PTR_DIFF, ret.Lhs.Kind)
	require.NotNil(t, ret.Lhs.Type)
	assert.Equal(t, types.Int, ret.Lhs.Type)
}

func TestTypedefResolvesToUnderlyingType(t *testing.T) {
	prog := mustParse(t, "typedef int myint; myint x;")
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, types.Int, prog.Globals[0].Type)
}

func TestStaticLocalGetsUniqueGlobalIdentity(t *testing.T) {
	src := "int counter(void) { static int n = 0; return n; }"
	prog := mustParse(t, src)
	require.Len(t, prog.Globals, 1)
	assert.Contains(t, prog.Globals[0].Name, ".L.data.")
	assert.True(t, prog.Globals[0].IsStatic)
}

func TestSizeofReportsTypeSize(t *testing.T) {
	prog := mustParse(t, "int main(void) { return sizeof(int); }")
	ret := lastStmt(prog.Functions[0].Body)
	require.Equal(t, ast.NUM, ret.Lhs.Kind)
	assert.EqualValues(t, 4, ret.Lhs.IntValue)
}

func TestFunctionBodyWithMultipleStatementsParses(t *testing.T) {
	// regression: function() used to consume the body's opening '{' and
	// then compoundStmt consumed a second token, eating the body's first
	// real statement.
	prog := mustParse(t, "int main(void) { int x = 1 + 2; int y = x * 3; return y; }")
	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 2)
	assert.Equal(t, "x", fn.Locals[0].Name)
	assert.Equal(t, "y", fn.Locals[1].Name)
	ret := lastStmt(fn.Body)
	require.Equal(t, ast.RETURN, ret.Kind)
	require.Equal(t, ast.VAR, ret.Lhs.Kind)
	assert.Equal(t, "y", ret.Lhs.Var.Name)
}

func TestLocalsGetMonotonicStackOffsetsAndFunctionGetsStackSize(t *testing.T) {
	prog := mustParse(t, "int main(void) { char a; int b; long c; return 0; }")
	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 3)
	prev := 0
	for _, lv := range fn.Locals {
		assert.Greater(t, lv.Offset, 0)
		assert.Greater(t, lv.Offset, prev)
		prev = lv.Offset
	}
	assert.Equal(t, 0, fn.StackSize%16)
	assert.GreaterOrEqual(t, fn.StackSize, prev)
}

func TestOversizeStringLiteralIsLexicalError(t *testing.T) {
	body := make([]byte, 1100)
	for i := range body {
		body[i] = 'a'
	}
	src := `int main(void) { char *s = "` + string(body) + `"; return 0; }`
	_, err := Parse("test.c", src)
	require.Error(t, err)
}

func TestStructLocalPartialInitializerZeroFillsTrailingMembers(t *testing.T) {
	src := `struct P { int a; int b; int c; };
	int main(void) { struct P p = {1}; return p.c; }`
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	block := fn.Body.Body
	require.Equal(t, ast.BLOCK, block.Kind)
	var assigns []*ast.Node
	for s := block.Body; s != nil; s = s.Next {
		assigns = append(assigns, s)
	}
	require.Len(t, assigns, 3) // a, b, c each get an explicit assignment
	last := assigns[2].Lhs
	require.Equal(t, ast.ASSIGN, last.Kind)
	require.Equal(t, "c", last.Lhs.MemberName)
	require.Equal(t, ast.NUM, last.Rhs.Kind)
	assert.EqualValues(t, 0, last.Rhs.IntValue)
}

func TestShiftCompoundAssignmentsAreAccepted(t *testing.T) {
	prog := mustParse(t, "int main(void) { int x; x <<= 2; x >>= 1; return x; }")
	fn := prog.Functions[0]
	decl := fn.Body.Body // `int x;`, which has no initializer
	shl := decl.Next.Lhs
	require.Equal(t, ast.ASSIGN, shl.Kind)
	require.Equal(t, ast.SHL, shl.Rhs.Kind)
	shr := decl.Next.Next.Lhs
	require.Equal(t, ast.ASSIGN, shr.Kind)
	require.Equal(t, ast.SHR, shr.Rhs.Kind)
}

func TestBitwiseCompoundAssignmentsStillRejected(t *testing.T) {
	for _, op := range []string{"&=", "|=", "^="} {
		_, err := Parse("test.c", "int main(void) { int x; x "+op+" 1; return x; }")
		require.Error(t, err, "operator %s should be rejected", op)
	}
}

func TestCompoundLiteralLowersToLocalWithAttachedInit(t *testing.T) {
	src := `struct P { int a; int b; };
	int main(void) { struct P q = (struct P){1, 2}; return q.a; }`
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 2) // q, plus the compound literal's own anonymous local
	qInit := fn.Body.Body
	require.Equal(t, ast.BLOCK, qInit.Kind)
	assign := qInit.Body.Lhs
	require.Equal(t, ast.ASSIGN, assign.Kind)
	literal := assign.Rhs
	require.Equal(t, ast.VAR, literal.Kind)
	require.NotNil(t, literal.Init)
	assert.Equal(t, ast.BLOCK, literal.Init.Kind)
}

func TestCastStillParsesWhenNoBraceFollows(t *testing.T) {
	prog := mustParse(t, "int main(void) { long x; return (int)x; }")
	ret := lastStmt(prog.Functions[0].Body)
	require.Equal(t, ast.CAST, ret.Lhs.Kind)
}

// lastStmt walks a BLOCK's statement list and returns the last one.
func lastStmt(block *ast.Node) *ast.Node {
	n := block.Body
	for n.Next != nil {
		n = n.Next
	}
	return n
}

// firstStmtOfKind searches a statement list (and recursively into BLOCK
// bodies) for the first node of the given kind.
func firstStmtOfKind(n *ast.Node, kind ast.Kind) *ast.Node {
	for s := n; s != nil; s = s.Next {
		if s.Kind == kind {
			return s
		}
		if s.Kind == ast.BLOCK {
			if found := firstStmtOfKind(s.Body, kind); found != nil {
				return found
			}
		}
		if s.Then != nil {
			if found := firstStmtOfKind(s.Then, kind); found != nil {
				return found
			}
		}
	}
	return nil
}

func findCase(n *ast.Node) *ast.Node {
	sw := firstStmtOfKind(n, ast.SWITCH)
	if sw == nil {
		return nil
	}
	return sw.CaseList
}
