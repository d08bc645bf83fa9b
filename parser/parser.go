/*
Package parser builds loisp expression trees.

	expr := atom | "(" expr* ")"
	atom := word | int | string | char

The head of a list is its first child; the remaining children are its
arguments.  Top-level expressions must be lists.
*/
package parser

import (
	"io"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser/lexer"
	"github.com/HatsuSixty/loisp/parser/token"
)

const incompleteMsg = "reached EOF while parsing"

// IsIncomplete reports whether err indicates source text that ended in the
// middle of a list, so that an interactive caller can read more input
// instead of reporting a syntax error.
func IsIncomplete(err error) bool {
	lerr, ok := err.(*loisp.Error)
	return ok && lerr.Kind == loisp.ErrParse && lerr.Msg == incompleteMsg
}

// Reader parses loisp source streams.  It implements loisp.Reader so that an
// environment can process include directives.
type Reader struct{}

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the contents of r into a sequence of top-level expressions.
func (p *Reader) Read(name string, r io.Reader) ([]*loisp.SExpr, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, loisp.Errorf(loisp.ErrIO, nil, "cannot read %q: %v", name, err)
	}
	return Parse(name, src)
}

// Parse parses src into a sequence of top-level expressions.
func Parse(name string, src []byte) ([]*loisp.SExpr, error) {
	lex := lexer.New(token.NewScanner(name, src))
	var exprs []*loisp.SExpr
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case token.EOF:
			return exprs, nil
		case token.COMMENT:
			continue
		case token.ERROR:
			return nil, loisp.Errorf(loisp.ErrLex, tok.Source, "%s", tok.Text)
		case token.PAREN_L:
			s, err := parseList(lex, tok)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, s)
		case token.PAREN_R:
			return nil, loisp.Errorf(loisp.ErrParse, tok.Source, "unmatched parenthesis")
		default:
			return nil, loisp.Errorf(loisp.ErrParse, tok.Source, "expected a list at top level, got %s", tok.Type)
		}
	}
}

func parseList(lex *lexer.Lexer, open *token.Token) (*loisp.SExpr, error) {
	list := loisp.List(open.Source)
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case token.EOF:
			return nil, loisp.Errorf(loisp.ErrParse, open.Source, incompleteMsg)
		case token.COMMENT:
			continue
		case token.ERROR:
			return nil, loisp.Errorf(loisp.ErrLex, tok.Source, "%s", tok.Text)
		case token.PAREN_R:
			return list, nil
		case token.PAREN_L:
			child, err := parseList(lex, tok)
			if err != nil {
				return nil, err
			}
			list.Cells = append(list.Cells, child)
		default:
			atom, err := parseAtom(tok)
			if err != nil {
				return nil, err
			}
			list.Cells = append(list.Cells, atom)
		}
	}
}

func parseAtom(tok *token.Token) (*loisp.SExpr, error) {
	switch tok.Type {
	case token.WORD:
		return loisp.Word(tok.Text, tok.Source), nil
	case token.INT:
		n, err := lexer.ParseInt(tok.Text)
		if err != nil {
			return nil, loisp.Errorf(loisp.ErrLex, tok.Source, "malformed integer literal: %s", tok.Text)
		}
		return loisp.Int(n, tok.Source), nil
	case token.STRING:
		body := lexer.Unescape(tok.Text[1 : len(tok.Text)-1])
		return loisp.Str(body, tok.Source), nil
	case token.CHAR:
		body := lexer.Unescape(tok.Text[1 : len(tok.Text)-1])
		return loisp.Char(body[0], tok.Source), nil
	default:
		return nil, loisp.Errorf(loisp.ErrParse, tok.Source, "unexpected token %s", tok.Type)
	}
}
