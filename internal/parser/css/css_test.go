package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("margin: 4px; page-break-before: always; color: red !important")
	require.Len(t, decls, 3)
	assert.Equal(t, Declaration{Property: "margin", Value: "4px"}, decls[0])
	assert.Equal(t, Declaration{Property: "page-break-before", Value: "always"}, decls[1])
	assert.Equal(t, Declaration{Property: "color", Value: "red", Important: true}, decls[2])
}

func TestParseDeclarations_Malformed(t *testing.T) {
	decls := ParseDeclarations(";; margin ; : red; width: 10px")
	require.Len(t, decls, 2)
	assert.Equal(t, "", decls[0].Property)
	assert.Equal(t, Declaration{Property: "width", Value: "10px"}, decls[1])
}

func TestLookup(t *testing.T) {
	decls := []Declaration{
		{Property: "color", Value: "red"},
		{Property: "color", Value: "blue"},
	}
	// Later declarations win.
	assert.Equal(t, "blue", Lookup(decls, "color"))
	assert.Equal(t, "", Lookup(decls, "margin"))

	withImportant := []Declaration{
		{Property: "color", Value: "red", Important: true},
		{Property: "color", Value: "blue"},
	}
	assert.Equal(t, "red", Lookup(withImportant, "color"))
}

func TestParseString(t *testing.T) {
	sheet, err := ParseString(`
		/* comment */
		p { margin: 8px; }
		.highlight, h1 { break-inside: avoid; }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, []string{"p"}, sheet.Rules[0].Selectors)
	assert.Equal(t, []string{".highlight", "h1"}, sheet.Rules[1].Selectors)
}

func TestStylesheet_Match(t *testing.T) {
	sheet, err := ParseString(`
		p { margin: 8px; }
		.boxed { break-inside: avoid; }
	`)
	require.NoError(t, err)

	assert.Equal(t, "8px", Lookup(sheet.Match("p", nil), "margin"))
	assert.Equal(t, "avoid", Lookup(sheet.Match("div", []string{"boxed"}), "break-inside"))
	assert.Empty(t, sheet.Match("div", []string{"other"}))

	var nilSheet *Stylesheet
	assert.Nil(t, nilSheet.Match("p", nil))
}
