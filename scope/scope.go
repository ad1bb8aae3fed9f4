// Package scope implements the two parallel lexical namespaces a C block
// structure needs: ordinary identifiers (variables, typedefs, enum
// constants) and tags (struct and enum names), each a depth-tracked stack
// of scopes searched newest-first.
package scope

import "ccfront/types"

// VarEntry is one binding in the variable namespace: either an ordinary
// variable, a typedef name, or an enum constant, distinguished by which of
// the optional fields is set.
type VarEntry struct {
	Name string
	Type *types.Type

	// Var is set when this entry denotes an actual variable (local or
	// global); nil for typedefs and enum constants. It's an `any` here
	// because scope does not know about ast.Var — the parser stores its
	// own *ast.Var and type-asserts it back out, keeping this package free
	// of an import cycle with ast.
	Var any

	IsTypedef bool

	IsEnumConst bool
	EnumValue   int64
}

// TagEntry is one binding in the tag namespace: a struct or enum tag.
type TagEntry struct {
	Name string
	Type *types.Type
}

type varScopeLevel struct {
	entries map[string]*VarEntry
	order   []string // insertion order, for deterministic iteration if ever needed
}

type tagScopeLevel struct {
	entries map[string]*TagEntry
}

// Scope holds the full stack of nested block scopes live at a point in
// parsing. Depth 0 is file (global) scope; EnterScope/LeaveScope bracket
// each compound statement and function parameter list.
type Scope struct {
	vars []*varScopeLevel
	tags []*tagScopeLevel
}

// New returns a Scope already holding the file-scope (depth 0) level.
func New() *Scope {
	s := &Scope{}
	s.EnterScope()
	return s
}

// Depth reports the current nesting depth (0 = file scope).
func (s *Scope) Depth() int {
	return len(s.vars) - 1
}

// EnterScope pushes a new, empty level onto both namespaces.
func (s *Scope) EnterScope() {
	s.vars = append(s.vars, &varScopeLevel{entries: map[string]*VarEntry{}})
	s.tags = append(s.tags, &tagScopeLevel{entries: map[string]*TagEntry{}})
}

// LeaveScope pops the innermost level off both namespaces, discarding every
// binding introduced since the matching EnterScope.
func (s *Scope) LeaveScope() {
	s.vars = s.vars[:len(s.vars)-1]
	s.tags = s.tags[:len(s.tags)-1]
}

// FindVar searches the variable namespace newest-scope-first, matching
// original_source/parse.c:find_var's linked-list walk from the innermost
// scope outward.
func (s *Scope) FindVar(name string) *VarEntry {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if e, ok := s.vars[i].entries[name]; ok {
			return e
		}
	}
	return nil
}

// FindTag searches the tag namespace newest-scope-first.
func (s *Scope) FindTag(name string) *TagEntry {
	for i := len(s.tags) - 1; i >= 0; i-- {
		if e, ok := s.tags[i].entries[name]; ok {
			return e
		}
	}
	return nil
}

// FindVarAtCurrentDepth looks up name only in the innermost level. The
// parser does not call it: a redeclaration within the same block is not
// rejected and replaces the earlier binding (see DeclareVar).
func (s *Scope) FindVarAtCurrentDepth(name string) *VarEntry {
	return s.vars[len(s.vars)-1].entries[name]
}

// FindTagAtCurrentDepth looks up name only in the innermost level. A struct
// tag redeclared at the same depth completes the existing (possibly
// still-incomplete) Type in place rather than shadowing it — the parser
// checks this before deciding whether to reuse or create a struct Type. An
// enum definition always creates a new Type.
func (s *Scope) FindTagAtCurrentDepth(name string) *TagEntry {
	return s.tags[len(s.tags)-1].entries[name]
}

// DeclareVar binds name in the innermost level, overwriting any existing
// binding at that same depth without complaint.
func (s *Scope) DeclareVar(e *VarEntry) {
	level := s.vars[len(s.vars)-1]
	if _, exists := level.entries[e.Name]; !exists {
		level.order = append(level.order, e.Name)
	}
	level.entries[e.Name] = e
}

// DeclareTag binds name in the innermost level.
func (s *Scope) DeclareTag(e *TagEntry) {
	s.tags[len(s.tags)-1].entries[e.Name] = e
}
