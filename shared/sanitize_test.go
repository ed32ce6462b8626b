package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsUnsafeMarkup(t *testing.T) {
	assert.True(t, ContainsUnsafeMarkup(`<script>alert('xss')</script>`))
	assert.True(t, ContainsUnsafeMarkup(`<SCRIPT SRC="evil.js">x</SCRIPT>`))
	assert.True(t, ContainsUnsafeMarkup("<script>\nmultiline\n</script>"))
	assert.True(t, ContainsUnsafeMarkup(`<iframe src="https://evil.example"></iframe>`))
	assert.True(t, ContainsUnsafeMarkup(`click javascript:void(0)`))
	assert.True(t, ContainsUnsafeMarkup(`<img onerror=alert(1)>`))
	assert.True(t, ContainsUnsafeMarkup(`<div onclick = "steal()">`))

	assert.False(t, ContainsUnsafeMarkup("Great talk, thanks!"))
	assert.False(t, ContainsUnsafeMarkup("I think 2 < 3 and 5 > 4"))
	assert.False(t, ContainsUnsafeMarkup("the onboarding doc was helpful"))
}

func TestContainsHTMLTags(t *testing.T) {
	assert.True(t, ContainsHTMLTags("<b>bold</b>"))
	assert.True(t, ContainsHTMLTags("<br/>"))
	assert.False(t, ContainsHTMLTags("plain text"))
	assert.False(t, ContainsHTMLTags("2 < 3"))
}

func TestStripControlChars(t *testing.T) {
	assert.Equal(t, "hello", StripControlChars("he\x00ll\x08o"))
	assert.Equal(t, "a\tb\nc\r", StripControlChars("a\tb\nc\r"))
	assert.Equal(t, "x", StripControlChars("\x7Fx\x1F"))
	assert.Equal(t, "", StripControlChars("\x00\x01\x02"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;hi&lt;&#x2F;b&gt;", SanitizeText("<b>hi</b>"))
	assert.Equal(t, "it&#x27;s &quot;fine&quot;", SanitizeText(`it's "fine"`))
	assert.Equal(t, "trimmed", SanitizeText("  trimmed  "))
}

func TestSanitizeMessage(t *testing.T) {
	assert.Equal(t, "before [Script removed] after",
		SanitizeMessage("before <script>alert(1)</script> after"))
	assert.Equal(t, "[Iframe removed]",
		SanitizeMessage(`<iframe src="x"></iframe>`))
	assert.Equal(t, "go to [JavaScript removed]alert(1)",
		SanitizeMessage("go to javascript:alert(1)"))
	assert.Equal(t, "<img [Event handler removed]x>",
		SanitizeMessage("<img onerror=x>"))
	assert.Equal(t, "plain feedback", SanitizeMessage("  plain feedback  "))
}
