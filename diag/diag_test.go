package diag

import "testing"

func TestLineColumn(t *testing.T) {
	src := "int a;\nint b = +;\n"
	line, col := LineColumn(src, 15) // the '+' on the second line
	if line != 2 || col != 8 {
		t.Errorf("LineColumn = (%d,%d), want (2,8)", line, col)
	}
}

func TestLineAt(t *testing.T) {
	src := "int a;\nint b = +;\nint c;"
	got := LineAt(src, 15)
	if got != "int b = +;" {
		t.Errorf("LineAt = %q, want %q", got, "int b = +;")
	}
}

func TestLineByNumber(t *testing.T) {
	src := "int a;\nint b = +;\nint c;"
	if got := LineByNumber(src, 2); got != "int b = +;" {
		t.Errorf("LineByNumber(_,2) = %q, want %q", got, "int b = +;")
	}
	if got := LineByNumber(src, 99); got != "" {
		t.Errorf("LineByNumber(_,99) = %q, want empty", got)
	}
}

func TestErrorFormat(t *testing.T) {
	e := New("t.c", 2, 8, "int b = +;", "expected expression")
	want := "t.c:2: int b = +;\n               ^ expected expression"
	if got := e.Error(); got != want {
		t.Errorf("Error() =\n%q\nwant\n%q", got, want)
	}
}
