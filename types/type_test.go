package types

import "testing"

func TestAlignTo(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{5, 8, 8},
		{9, 8, 16},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.n, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d,%d) = %d, want %d", tt.n, tt.align, got, tt.want)
		}
	}
}

func TestIsInteger(t *testing.T) {
	yes := []*Type{Bool, Char, Short, Int, Long, NewEnum()}
	for _, ty := range yes {
		if !IsInteger(ty) {
			t.Errorf("IsInteger(%v) = false, want true", ty.Kind)
		}
	}
	no := []*Type{Void, PointerTo(Int), ArrayOf(Int, 3), FuncType(Int)}
	for _, ty := range no {
		if IsInteger(ty) {
			t.Errorf("IsInteger(%v) = true, want false", ty.Kind)
		}
	}
}

// struct P { char c; int i; }; per spec.md §8 scenario 4: size 8, c at 0, i at 4, align 4.
func TestStructLayoutCharThenInt(t *testing.T) {
	st := NewIncompleteStruct()
	c := &Member{Name: "c", Type: Char}
	i := &Member{Name: "i", Type: Int}
	c.Next = i
	st.Members = c
	st.Close()

	if st.Size != 8 || st.Align != 4 || st.Incomplete {
		t.Fatalf("struct layout = size %d align %d incomplete %v, want 8 4 false", st.Size, st.Align, st.Incomplete)
	}
	if c.Offset != 0 {
		t.Errorf("c.Offset = %d, want 0", c.Offset)
	}
	if i.Offset != 4 {
		t.Errorf("i.Offset = %d, want 4", i.Offset)
	}
}

func TestStructLayoutPadsBetweenMembers(t *testing.T) {
	st := NewIncompleteStruct()
	a := &Member{Name: "a", Type: Int}
	b := &Member{Name: "b", Type: Char}
	c := &Member{Name: "c", Type: Long}
	a.Next, b.Next = b, c
	st.Members = a
	st.Close()

	if a.Offset != 0 || b.Offset != 4 || c.Offset != 8 {
		t.Errorf("offsets = %d,%d,%d want 0,4,8", a.Offset, b.Offset, c.Offset)
	}
	if st.Size != 16 || st.Align != 8 {
		t.Errorf("size/align = %d/%d want 16/8", st.Size, st.Align)
	}
}

func TestArrayOfSize(t *testing.T) {
	arr := ArrayOf(Int, 4)
	if arr.Size != 16 || arr.Align != 4 || arr.Incomplete {
		t.Errorf("array = size %d align %d incomplete %v, want 16 4 false", arr.Size, arr.Align, arr.Incomplete)
	}
}

func TestFindMember(t *testing.T) {
	st := NewIncompleteStruct()
	a := &Member{Name: "a", Type: Int}
	b := &Member{Name: "b", Type: Char}
	a.Next = b
	st.Members = a
	st.Close()

	if got := st.FindMember("b"); got != b {
		t.Errorf("FindMember(b) = %v, want %v", got, b)
	}
	if got := st.FindMember("missing"); got != nil {
		t.Errorf("FindMember(missing) = %v, want nil", got)
	}
}
