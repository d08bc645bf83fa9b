package runtest

import (
	"fmt"
	"io"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Case is the observable behavior of one test program: the arguments it was
// invoked with and the output it produced.
type Case struct {
	Args   []string
	Stdout string
	Stderr string
}

// Equal reports whether two cases describe the same observed behavior.
func (c *Case) Equal(other *Case) bool {
	return c.Stdout == other.Stdout &&
		c.Stderr == other.Stderr &&
		strings.Join(c.Args, " ") == strings.Join(other.Args, " ")
}

/*
ParseCase parses an expected-output file.  The format is the original
loisp test-case syntax: fields joined by `|`, each field a `name = value`
pair.

	stdout = 0 1 2|stderr = |args = foo bar
*/
func ParseCase(text []byte) (*Case, error) {
	key := parsec.Token(`[a-z]+`, "KEY")
	eq := parsec.Atom("=", "EQ")
	value := parsec.Token(`[^|]+`, "VALUE")
	field := parsec.And(nil, key, eq, parsec.Maybe(nil, value))
	conf := parsec.Kleene(nil, field, parsec.Atom("|", "PIPE"))

	root, _ := conf(parsec.NewScanner(text))
	fields, ok := root.([]parsec.ParsecNode)
	if !ok || len(fields) == 0 {
		return nil, fmt.Errorf("malformed test case: no fields")
	}

	c := &Case{}
	for _, f := range fields {
		parts, ok := f.([]parsec.ParsecNode)
		if !ok || len(parts) != 3 {
			return nil, fmt.Errorf("malformed test case: bad field")
		}
		name, ok := terminalValue(parts[0])
		if !ok {
			return nil, fmt.Errorf("malformed test case: missing field name")
		}
		value := ""
		if v, ok := terminalValue(parts[2]); ok {
			value = strings.TrimSpace(v)
		}
		switch name {
		case "stdout":
			c.Stdout = value
		case "stderr":
			c.Stderr = value
		case "args":
			if value != "" {
				c.Args = strings.Split(value, " ")
			}
		default:
			return nil, fmt.Errorf("malformed test case: unknown field %q", name)
		}
	}
	return c, nil
}

// terminalValue digs the matched text out of a parse node.  Combinators
// with default callbacks hand terminals back either bare or wrapped in a
// single-element node list.
func terminalValue(n parsec.ParsecNode) (string, bool) {
	switch t := n.(type) {
	case *parsec.Terminal:
		return t.Value, true
	case []parsec.ParsecNode:
		if len(t) == 1 {
			return terminalValue(t[0])
		}
	}
	return "", false
}

// FormatCase writes c in the expected-output file format.
func FormatCase(w io.Writer, c *Case) error {
	_, err := fmt.Fprintf(w, "stdout = %s|stderr = %s|args =", c.Stdout, c.Stderr)
	if err != nil {
		return err
	}
	for _, a := range c.Args {
		if _, err := fmt.Fprintf(w, " %s", a); err != nil {
			return err
		}
	}
	return nil
}
