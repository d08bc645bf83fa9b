package runtest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCase(t *testing.T) {
	c, err := ParseCase([]byte("stdout = 0\n1\n2|stderr = |args = foo bar"))
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2", c.Stdout)
	assert.Equal(t, "", c.Stderr)
	assert.Equal(t, []string{"foo", "bar"}, c.Args)
}

func TestParseCaseEmptyFields(t *testing.T) {
	c, err := ParseCase([]byte("stdout = hi|stderr = |args ="))
	require.NoError(t, err)
	assert.Equal(t, "hi", c.Stdout)
	assert.Equal(t, "", c.Stderr)
	assert.Empty(t, c.Args)
}

func TestParseCaseUnknownField(t *testing.T) {
	_, err := ParseCase([]byte("bogus = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestFormatCaseRoundTrip(t *testing.T) {
	orig := &Case{Stdout: "a\nb", Stderr: "oops", Args: []string{"x", "y"}}
	var buf bytes.Buffer
	require.NoError(t, FormatCase(&buf, orig))
	parsed, err := ParseCase(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestCaseEqual(t *testing.T) {
	a := &Case{Stdout: "x"}
	assert.True(t, a.Equal(&Case{Stdout: "x"}))
	assert.False(t, a.Equal(&Case{Stdout: "y"}))
	assert.False(t, a.Equal(&Case{Stdout: "x", Stderr: "e"}))
}
