package links

import (
	"regexp"
	"strings"
)

// Placeholder brackets wrap a resolved site path until the body has been
// converted to Markdown; Finalize then turns them into getpage shortcodes.
const (
	PlaceholderStart = "GETPAGESHORTCODESTART"
	PlaceholderEnd   = "GETPAGESHORTCODEEND"
)

var placeholderPattern = regexp.MustCompile(PlaceholderStart + `(.*?)` + PlaceholderEnd)

// escapedPunct matches Markdown backslash escapes the converter adds to
// placeholders that sat in prose rather than in an attribute.
var escapedPunct = regexp.MustCompile(`\\([[:punct:]])`)

// Wrap brackets a resolved path.
func Wrap(path string) string {
	return PlaceholderStart + path + PlaceholderEnd
}

// Finalize replaces every placeholder bracket with {{% getpage "<path>" %}}.
func Finalize(text string) string {
	if !strings.Contains(text, PlaceholderStart) {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		return `{{% getpage "` + unescape(placeholderPattern.FindStringSubmatch(m)[1]) + `" %}}`
	})
}

func unescape(path string) string {
	return escapedPunct.ReplaceAllString(path, "$1")
}

// Placeholders returns the bracketed paths in text, in order.
func Placeholders(text string) []string {
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, unescape(m[1]))
	}
	return out
}
