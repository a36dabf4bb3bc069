package search

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pattern string
		want    string
	}{
		{"prefix match", "foo.txt", "(?i)foo", "*foo*.txt"},
		{"case insensitive", "README.md", "(?i)readme", "*README*.md"},
		{"several matches", "abab", "(?i)b", "a*b*a*b*"},
		{"no match", "notes.md", "(?i)xyz", "notes.md"},
		{"empty input", "", "(?i)x", ""},
		{"zero width matches ignored", "abc", "(?i)x*", "abc"},
		{"input holds marker", "a*b.txt", "(?i)b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markup(tt.input, regexp.MustCompile(tt.pattern))
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "same", markup("same", nil))
}

func TestCompilePlain(t *testing.T) {
	c := compilePlain("report 2024")
	require.NotNil(t, c.query)
	require.NotNil(t, c.marker)
	assert.Equal(t, "*report*_*2024*.pdf", markup("report_2024.pdf", c.marker))

	all := compilePlain("   ")
	assert.NotNil(t, all.query)
	assert.Nil(t, all.marker)
}

func TestCompilePlainEscapesMeta(t *testing.T) {
	c := compilePlain("a.b")
	assert.Equal(t, "*a.b*", markup("a.b", c.marker))
	assert.Equal(t, "axb", markup("axb", c.marker))
}

func TestCompileRegex(t *testing.T) {
	c, err := compileRegex(`^foo\d+`)
	require.NoError(t, err)
	assert.Equal(t, "*foo12*.go", markup("foo12.go", c.marker))

	_, err = compileRegex("(unclosed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestFieldFor(t *testing.T) {
	assert.Equal(t, fieldName, fieldFor("report"))
	assert.Equal(t, fieldPath, fieldFor("docs/report"))
}
