package loisp

import (
	"bytes"
	"strconv"

	"github.com/HatsuSixty/loisp/parser/token"
)

// SType is the type of an SExpr node.
type SType uint

// Possible SType values.
const (
	SInvalid SType = iota
	SWord
	SInt
	SStr
	SChar
	SList

	numSTypes
)

var sTypeStrings = [numSTypes]string{
	SInvalid: "INVALID",
	SWord:    "word",
	SInt:     "int",
	SStr:     "string",
	SChar:    "char",
	SList:    "list",
}

func (t SType) String() string {
	if t >= numSTypes {
		return sTypeStrings[SInvalid]
	}
	return sTypeStrings[t]
}

// SExpr is a parsed S-expression: an atom or a list of child expressions.
// The first child of a list is its head, the remaining children are its
// arguments.
type SExpr struct {
	Type SType
	Loc  *token.Location

	Str   string // word text or decoded string bytes
	Int   int64  // integer value, or the decoded byte of a char literal
	Cells []*SExpr
}

// Word returns an SExpr representing the word s.
func Word(s string, loc *token.Location) *SExpr {
	return &SExpr{Type: SWord, Str: s, Loc: loc}
}

// Int returns an SExpr representing the integer n.
func Int(n int64, loc *token.Location) *SExpr {
	return &SExpr{Type: SInt, Int: n, Loc: loc}
}

// Str returns an SExpr representing the (decoded) string literal s.
func Str(s string, loc *token.Location) *SExpr {
	return &SExpr{Type: SStr, Str: s, Loc: loc}
}

// Char returns an SExpr representing a character literal with byte value c.
func Char(c byte, loc *token.Location) *SExpr {
	return &SExpr{Type: SChar, Int: int64(c), Loc: loc}
}

// List returns an SExpr representing the list with the given children.
func List(loc *token.Location, cells ...*SExpr) *SExpr {
	return &SExpr{Type: SList, Cells: cells, Loc: loc}
}

// Head returns the head of a list expression or nil when s is an atom or the
// empty form.
func (s *SExpr) Head() *SExpr {
	if s.Type != SList || len(s.Cells) == 0 {
		return nil
	}
	return s.Cells[0]
}

// Args returns the arguments of a list expression, the children following
// the head.
func (s *SExpr) Args() []*SExpr {
	if s.Type != SList || len(s.Cells) == 0 {
		return nil
	}
	return s.Cells[1:]
}

func (s *SExpr) String() string {
	switch s.Type {
	case SWord:
		return s.Str
	case SInt:
		return strconv.FormatInt(s.Int, 10)
	case SStr:
		return strconv.Quote(s.Str)
	case SChar:
		return "'" + string(rune(s.Int)) + "'"
	case SList:
		var buf bytes.Buffer
		buf.WriteString("(")
		for i, c := range s.Cells {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(c.String())
		}
		buf.WriteString(")")
		return buf.String()
	default:
		return "#invalid"
	}
}

// ValueKind is a runtime type of the loisp stack machine.
type ValueKind uint

// The three runtime value kinds plus the absence of a value.
const (
	KindInvalid ValueKind = iota
	KindNothing
	KindInt
	KindPtr
	KindString

	numValueKinds
)

var valueKindStrings = [numValueKinds]string{
	KindInvalid: "INVALID",
	KindNothing: "nothing",
	KindInt:     "int",
	KindPtr:     "ptr",
	KindString:  "string",
}

func (k ValueKind) String() string {
	if k >= numValueKinds {
		return valueKindStrings[KindInvalid]
	}
	return valueKindStrings[k]
}
