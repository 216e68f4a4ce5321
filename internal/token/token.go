// Package token defines the lexical token kinds produced by internal/lexer
// and consumed by internal/parser. It mirrors the KEY/ID/PUNCT/LIT category
// split the teacher's multi-pass lexer emits on its text wire format, but
// collapses them into a single in-process Kind enum since this compiler is
// a single-pass, self-contained pipeline rather than a text-piped one.
package token

import "fmt"

// Kind enumerates every token the lexer can produce.
type Kind int

const (
	// Empty is the uninitialized-slot sentinel (§3).
	Empty Kind = iota
	EOF

	// Punctuation
	Semi   // ;
	Comma  // ,
	LParen // (
	RParen // )
	LBrace // {
	RBrace // }
	LBrack // [
	RBrack // ]
	Assign // =
	Star   // *
	Amp    // &
	Plus   // +
	Minus  // -
	Slash  // /
	Gt     // >
	Ge     // >=
	Lt     // <
	Le     // <=
	Eq     // ==
	Ne     // !=

	// Literals and identifiers
	IntLit
	StrLit
	Ident

	// Reserved words
	KwInt
	KwChar
	KwVoid
	KwLong
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwBreak
	KwReturn
)

var names = map[Kind]string{
	Empty: "EMPTY", EOF: "EOF",
	Semi: ";", Comma: ",", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", LBrack: "[", RBrack: "]",
	Assign: "=", Star: "*", Amp: "&", Plus: "+", Minus: "-", Slash: "/",
	Gt: ">", Ge: ">=", Lt: "<", Le: "<=", Eq: "==", Ne: "!=",
	IntLit: "INTLIT", StrLit: "STRLIT", Ident: "ID",
	KwInt: "int", KwChar: "char", KwVoid: "void", KwLong: "long",
	KwIf: "if", KwElse: "else", KwWhile: "while", KwDo: "do", KwFor: "for",
	KwBreak: "break", KwReturn: "return",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reserved maps a scanned identifier spelling to its reserved-word Kind.
// Identifiers not present here are ordinary IDs.
var Reserved = map[string]Kind{
	"int": KwInt, "char": KwChar, "void": KwVoid, "long": KwLong,
	"if": KwIf, "else": KwElse, "while": KwWhile, "do": KwDo, "for": KwFor,
	"break": KwBreak, "return": KwReturn,
}

// Token is {kind, payload, line, column} per §3. IntPayload holds decoded
// integer-literal values; StrPayload holds interned identifier names and
// decoded string-literal bytes.
type Token struct {
	Kind       Kind
	StrPayload string
	IntPayload int64
	Line       int
	Column     int
}

func (t Token) String() string {
	switch t.Kind {
	case IntLit:
		return fmt.Sprintf("%d:%d: INTLIT %d", t.Line, t.Column, t.IntPayload)
	case StrLit:
		return fmt.Sprintf("%d:%d: STRLIT %q", t.Line, t.Column, t.StrPayload)
	case Ident:
		return fmt.Sprintf("%d:%d: ID %s", t.Line, t.Column, t.StrPayload)
	default:
		return fmt.Sprintf("%d:%d: %s", t.Line, t.Column, t.Kind)
	}
}
