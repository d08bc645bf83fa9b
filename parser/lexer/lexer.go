package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HatsuSixty/loisp/parser/token"
)

// Bytes that terminate a word.  Everything else, including non-ASCII bytes,
// is a word character.
const nonWordBytes = " \t\r\n()\"';"

// Lexer produces loisp tokens from a source buffer.
type Lexer struct {
	scanner *token.Scanner
}

// New returns a Lexer reading tokens from s.
func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// NextToken scans and returns the next token.  At the end of input an EOF
// token is returned.  After an ERROR token, a further call continues scanning
// from the point where the error was detected.
func (lex *Lexer) NextToken() *token.Token {
	lex.skipWhitespace()
	c, ok := lex.scanner.Peek()
	if !ok {
		return lex.scanner.EmitToken(token.EOF)
	}
	switch c {
	case '(':
		lex.scanner.ScanByte()
		return lex.scanner.EmitToken(token.PAREN_L)
	case ')':
		lex.scanner.ScanByte()
		return lex.scanner.EmitToken(token.PAREN_R)
	case ';':
		for {
			c, ok := lex.scanner.ScanByte()
			if !ok || c == '\n' {
				break
			}
		}
		return lex.scanner.EmitToken(token.COMMENT)
	case '"':
		return lex.readString()
	case '\'':
		return lex.readChar()
	default:
		return lex.readWord()
	}
}

// Tokens scans the remaining input and returns every token through the final
// EOF or ERROR token, whichever comes first.
func (lex *Lexer) Tokens() []*token.Token {
	var toks []*token.Token
	for {
		tok := lex.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF || tok.Type == token.ERROR {
			return toks
		}
	}
}

func (lex *Lexer) skipWhitespace() {
	for {
		c, ok := lex.scanner.Peek()
		if !ok || !isSpace(c) {
			break
		}
		lex.scanner.ScanByte()
	}
	lex.scanner.Ignore()
}

func (lex *Lexer) readString() *token.Token {
	lex.scanner.ScanByte() // opening quote
	for {
		c, ok := lex.scanner.ScanByte()
		if !ok || c == '\n' {
			return lex.errorf("unterminated string literal")
		}
		switch c {
		case '"':
			return lex.scanner.EmitToken(token.STRING)
		case '\\':
			e, ok := lex.scanner.ScanByte()
			if !ok {
				return lex.errorf("unterminated string literal")
			}
			if !isEscape(e) {
				return lex.errorf("unknown escape sequence `\\%c`", e)
			}
		}
	}
}

func (lex *Lexer) readChar() *token.Token {
	lex.scanner.ScanByte() // opening quote
	c, ok := lex.scanner.ScanByte()
	if !ok || c == '\n' || c == '\'' {
		return lex.errorf("unterminated character literal")
	}
	if c == '\\' {
		e, ok := lex.scanner.ScanByte()
		if !ok {
			return lex.errorf("unterminated character literal")
		}
		if !isEscape(e) {
			return lex.errorf("unknown escape sequence `\\%c`", e)
		}
	}
	end, ok := lex.scanner.ScanByte()
	if !ok || end != '\'' {
		return lex.errorf("unterminated character literal")
	}
	return lex.scanner.EmitToken(token.CHAR)
}

func (lex *Lexer) readWord() *token.Token {
	for {
		c, ok := lex.scanner.Peek()
		if !ok || !isWord(c) {
			break
		}
		lex.scanner.ScanByte()
	}
	text := lex.scanner.Text()
	if !looksNumeric(text) {
		return lex.scanner.EmitToken(token.WORD)
	}
	_, err := ParseInt(text)
	if err == strconv.ErrRange {
		return lex.errorf("integer literal out of range: %s", text)
	}
	if err != nil {
		return lex.scanner.EmitToken(token.WORD)
	}
	return lex.scanner.EmitToken(token.INT)
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	tok := &token.Token{
		Type:   token.ERROR,
		Text:   fmt.Sprintf(format, v...),
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

// ParseInt parses a loisp integer literal: an optional leading `-` followed
// by decimal digits or by `0x` and hexadecimal digits.  The returned error
// is strconv.ErrRange when the literal does not fit a signed 64-bit integer
// and strconv.ErrSyntax when the text is not an integer literal at all.
func ParseInt(text string) (int64, error) {
	s := text
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	if neg {
		s = "-" + s
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, err.(*strconv.NumError).Err
	}
	return n, nil
}

// Unescape decodes the escape sequences permitted in string and character
// literals.  The input is the literal's body without the delimiting quotes.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		default:
			// The lexer rejects unknown escapes before they get here.
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isWord(c byte) bool {
	return !strings.ContainsRune(nonWordBytes, rune(c))
}

func isEscape(c byte) bool {
	switch c {
	case 'n', 't', 'r', '0', '"', '\'', '\\':
		return true
	}
	return false
}

func looksNumeric(text string) bool {
	s := strings.TrimPrefix(text, "-")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
