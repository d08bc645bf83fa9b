package token

// Scanner facilitates construction of tokens from a source buffer.  Loisp
// sources are translation units read whole, so the scanner works over a byte
// slice and tracks the line/column of both the current byte and the first
// byte of the pending token.
type Scanner struct {
	file string
	buf  []byte

	start     int // index of the first byte of the pending token
	startLine int
	startCol  int

	pos  int // index of the next byte to scan
	line int
	col  int // column of the next byte, starting at 1
}

// NewScanner initializes and returns a new Scanner reading from buf.
func NewScanner(file string, buf []byte) *Scanner {
	return &Scanner{
		file:      file,
		buf:       buf,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// EOF returns true when the scanner has consumed all input.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.buf)
}

// Peek returns the next byte to be scanned without consuming it.  The second
// value is false at the end of input.
func (s *Scanner) Peek() (byte, bool) {
	if s.EOF() {
		return 0, false
	}
	return s.buf[s.pos], true
}

// ScanByte consumes the next byte of input for inclusion in the current
// token and returns it.  The second value is false at the end of input.
func (s *Scanner) ScanByte() (byte, bool) {
	if s.EOF() {
		return 0, false
	}
	c := s.buf[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c, true
}

// EmitToken returns a token containing the text scanned since the last call
// to either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns the text scanned since the last call to either EmitToken or
// Ignore.
func (s *Scanner) Text() string {
	return string(s.buf[s.start:s.pos])
}

// LocStart returns a Location referencing the beginning of the current
// token, just beyond the end of the previous token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Line: s.line,
		Col:  s.col,
	}
}
