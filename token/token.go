// Package token defines the lexical tokens produced by the lexer and
// consumed by the parser: reserved words, operators, identifiers, and
// literals.
package token

import "fmt"

// Kind classifies a Token.
type Kind int

const (
	RESERVED Kind = iota // keywords and punctuation/operators
	IDENT
	STR
	NUM
	EOF
)

func (k Kind) String() string {
	switch k {
	case RESERVED:
		return "RESERVED"
	case IDENT:
		return "IDENT"
	case STR:
		return "STR"
	case NUM:
		return "NUM"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// NumType distinguishes the width of a NUM token, set by the lexer from the
// literal's suffix/magnitude (see original_source/tokenize.c:read_int_literal).
type NumType int

const (
	NumInt NumType = iota
	NumLong
)

// Token is a single lexical token. Tokens form a singly linked list via
// Next; the parser holds a cursor into that list rather than a slice index,
// matching the spec's linked-token-stream data model.
type Token struct {
	Kind Kind
	// Next is excluded from JSON: cmd_tokens dumps the stream as a flat
	// array, and marshaling Next verbatim would nest every remaining
	// token under each entry.
	Next *Token `json:"-"`

	// Text is the token's exact source span, retained for diagnostics.
	Text string
	// Line and Column locate Text's first byte (1-based line, 0-based column).
	Line   int
	Column int

	// IntValue holds the decoded value of a NUM token.
	IntValue int64
	// NumType classifies a NUM token's width (int vs long).
	NumType NumType

	// StringPayload holds an STR token's decoded bytes, including the
	// trailing NUL the original chibicc-family tokenizer appends. ContLen
	// is len(StringPayload); kept as a separate field because downstream
	// code cares about "the byte count including the terminator" as a
	// value in its own right (e.g. when completing a flexible char array
	// from a string literal's length), not just slice length.
	StringPayload []byte
	ContLen       int
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}

// Is reports whether t is a RESERVED token whose text is exactly s.
func (t *Token) Is(s string) bool {
	return t != nil && t.Kind == RESERVED && t.Text == s
}

// Keywords are reserved words recognized by the lexer, tried with a
// following-byte boundary check so e.g. "intx" tokenizes as the identifier
// "intx", not keyword "int" + identifier "x".
var Keywords = []string{
	"return", "if", "else", "while", "for", "int", "char",
	"sizeof", "struct", "typedef", "short", "long", "void", "_Bool",
	"enum", "static", "break", "continue", "goto", "switch", "case",
	"default", "extern", "_Alignof", "do", "signed",
}

// Operators are the multi-character punctuation sequences recognized by the
// lexer, tried in this order (longest literal match first so that e.g.
// "<<=" is not split into "<<" + "=").
var Operators = []string{
	"<<=", ">>=", "...",
	"==", "!=", "<=", ">=", "->", "++", "--", "<<", ">>",
	"+=", "-=", "*=", "/=", "&&", "||", "&=", "|=", "^=",
}
