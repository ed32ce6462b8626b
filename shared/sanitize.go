package shared

import (
	"regexp"
	"strings"
)

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	iframeTagPattern    = regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`)
	jsProtocolPattern   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
	controlCharPattern  = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
)

// ContainsUnsafeMarkup reports whether text carries script/iframe blocks,
// javascript: URIs or inline event-handler attributes. Used by the strict
// validators, which reject rather than rewrite.
func ContainsUnsafeMarkup(text string) bool {
	return scriptTagPattern.MatchString(text) ||
		iframeTagPattern.MatchString(text) ||
		jsProtocolPattern.MatchString(text) ||
		eventHandlerPattern.MatchString(text)
}

func ContainsHTMLTags(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// StripControlChars removes C0 control characters except tab, newline and
// carriage return.
func StripControlChars(text string) string {
	return controlCharPattern.ReplaceAllString(text, "")
}

// SanitizeText HTML-escapes a short field for display contexts. Distinct
// from SanitizeMessage: this one keeps all content, entity-encoded.
func SanitizeText(input string) string {
	replacer := strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
	return replacer.Replace(strings.TrimSpace(input))
}

// SanitizeMessage is the lenient, best-effort neutralizer: unsafe markup is
// replaced with a visible placeholder. Submission validation rejects such
// content outright; this exists for display-time neutralization of text
// that was accepted before the strict policy.
func SanitizeMessage(input string) string {
	out := strings.TrimSpace(input)
	out = scriptTagPattern.ReplaceAllString(out, "[Script removed]")
	out = iframeTagPattern.ReplaceAllString(out, "[Iframe removed]")
	out = jsProtocolPattern.ReplaceAllString(out, "[JavaScript removed]")
	out = eventHandlerPattern.ReplaceAllString(out, "[Event handler removed]")
	return out
}
