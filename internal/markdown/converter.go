// Package markdown converts rewritten HTML fragments to Markdown bodies and
// audits the result.
package markdown

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Converter turns HTML fragments into GitHub flavored Markdown. A Converter
// is owned by one course build.
type Converter struct {
	conv *md.Converter
}

// NewConverter returns a converter with GFM tables and strikethrough, which
// keeps embeds (iframes) as raw HTML.
func NewConverter() *Converter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	conv.AddRules(md.Rule{
		Filter: []string{"iframe", "video", "audio"},
		Replacement: func(_ string, selec *goquery.Selection, _ *md.Options) *string {
			raw, err := goquery.OuterHtml(selec)
			if err != nil {
				return nil
			}
			out := "\n\n" + raw + "\n\n"
			return &out
		},
	})

	return &Converter{conv: conv}
}

// Convert converts one HTML fragment. Empty input yields empty output.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	out, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}
	return UnescapeBackticks(out), nil
}

// UnescapeBackticks removes the escaping the converter puts on literal
// backticks, which the source text already escaped once.
func UnescapeBackticks(s string) string {
	return strings.ReplaceAll(s, "\\`", "`")
}
