package loisp

import "io"

// Reader abstracts the surface parser so that it may be implemented in a
// separate package as an optional/swappable component.  The resolver uses
// the environment's Reader to process include directives.
type Reader interface {
	// Read the contents of r and return the sequence of top-level
	// expressions it contains.
	Read(name string, r io.Reader) ([]*SExpr, error)
}
