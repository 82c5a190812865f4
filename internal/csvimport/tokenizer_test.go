package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeRecoversPlainFields(t *testing.T) {
	fields := []string{"alpha", "beta gamma", "  delta ", "42"}
	res := Tokenize(strings.Join(fields, ","))

	require.Len(t, res.Rows, 1)
	assert.Equal(t, fields, res.Rows[0])
	assert.Equal(t, byte(Comma), res.Delimiter)
}

func TestTokenizeQuotes(t *testing.T) {
	res := Tokenize(`a,"b,c",d`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"a", "b,c", "d"}, res.Rows[0])

	res = Tokenize(`a,"he said ""hi""",c`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"a", `he said "hi"`, "c"}, res.Rows[0])
}

func TestTokenizeEmbeddedNewline(t *testing.T) {
	res := Tokenize("name,notes\r\nJohn,\"line one\r\nline two\"\r\n")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"John", "line one\r\nline two"}, res.Rows[1])
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	res := Tokenize("a,b\n1,\"open field\n2,3")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"1", "open field\n2,3"}, res.Rows[1])
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want byte
	}{
		{"semicolons", "a;b;c\n1;2;3", Semicolon},
		{"commas", "a,b,c\n1;2;3;4;5", Comma},
		{"tie", "a,b;c", Comma},
		{"none", "single", Comma},
		{"quoted semicolons ignored", `"a;b;c",d`, Comma},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.in))
		})
	}
}

func TestTokenizeSemicolonFile(t *testing.T) {
	res := Tokenize("Name;Phone\nJohn Smith;610-555-0000\n")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"John Smith", "610-555-0000"}, res.Rows[1])
	assert.Equal(t, byte(Semicolon), res.Delimiter)
}

func TestTokenizeDropsBlankRows(t *testing.T) {
	res := Tokenize("h1,h2\nx,y\n\n ,  \nz,w\n")
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"x", "y"}, res.Rows[1])
	assert.Equal(t, []string{"z", "w"}, res.Rows[2])
}

func TestTokenizeLoneCarriageReturns(t *testing.T) {
	res := Tokenize("h1,h2\rx,y\rz,w")
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"z", "w"}, res.Rows[2])
}

func TestTokenizeStripsBOM(t *testing.T) {
	res := Tokenize("\uFEFFName,Email\nJohn,j@example.com")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Name", res.Rows[0][0])
}

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize("").Rows)
	assert.Empty(t, Tokenize("\n\r\n").Rows)
}
