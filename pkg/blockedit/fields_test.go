package blockedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroBlock = `<section id="hero"><h2 id="hero-text-1">Baked <em>daily</em></h2><img id="hero-img-1" src="loaf.png"/><a id="hero-link-1" href="/menu">Menu</a></section>`

func TestExtractFields_KindFromElement(t *testing.T) {
	fields, err := ExtractFields(heroBlock)
	require.NoError(t, err)

	assert.Equal(t, map[string]FieldValue{
		"hero-text-1": Text("Baked daily"),
		"hero-img-1":  Image("loaf.png"),
		"hero-link-1": Link("/menu", "Menu"),
	}, fields)
}

func TestApplyFields(t *testing.T) {
	out, errs, err := ApplyFields(heroBlock, map[string]FieldValue{
		"hero-text-1": Text("Fresh & warm"),
		"hero-img-1":  Image("rye.png"),
		"hero-link-1": Link("/order", ""),
		"hero-text-9": Text("nope"),
	})
	require.NoError(t, err)

	assert.Equal(t, []FieldError{{Id: "hero-text-9", Reason: "unknown field"}}, errs)
	assert.Equal(t,
		`<section id="hero"><h2 id="hero-text-1">Fresh &amp; warm</h2><img id="hero-img-1" src="rye.png"/><a id="hero-link-1" href="/order">Menu</a></section>`,
		out)
}

func TestApplyFields_KindMismatch(t *testing.T) {
	out, errs, err := ApplyFields(heroBlock, map[string]FieldValue{"hero-img-1": Text("a photo")})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "hero-img-1", errs[0].Id)
	assert.Equal(t, heroBlock, out)
}

func TestApplyFields_NoRoot(t *testing.T) {
	_, _, err := ApplyFields("plain text", map[string]FieldValue{"x": Text("y")})
	assert.Error(t, err)
}

func TestApplyFields_ContainerIsNotAText(t *testing.T) {
	block := `<section id="hero"><div id="hero-card"><h2 id="hero-text-1">Hi</h2></div></section>`

	fields, err := ExtractFields(block)
	require.NoError(t, err)
	assert.Equal(t, map[string]FieldValue{"hero-text-1": Text("Hi")}, fields)

	out, errs, err := ApplyFields(block, map[string]FieldValue{"hero-card": Text("X")})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "hero-card", errs[0].Id)
	assert.Equal(t, block, out)
	assert.Contains(t, out, `id="hero-text-1"`)
}

func TestApplyFields_LinkTextKeepsNestedFields(t *testing.T) {
	block := `<footer id="footer"><a id="footer-link-1" href="/"><img id="footer-img-1" src="logo.png"/></a></footer>`

	out, errs, err := ApplyFields(block, map[string]FieldValue{"footer-link-1": Link("/home", "Home")})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "footer-link-1", errs[0].Id)
	assert.Equal(t, block, out)

	out, errs, err = ApplyFields(block, map[string]FieldValue{"footer-link-1": Link("/home", "")})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Contains(t, out, `href="/home"`)
	assert.Contains(t, out, `id="footer-img-1"`)
}
