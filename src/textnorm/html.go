package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var entityPattern = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// markup-significant entities stay encoded so tag-anchored patterns keep working
var keptEntities = map[string]bool{
	"lt": true, "gt": true, "amp": true, "quot": true, "apos": true,
	"#60": true, "#62": true, "#38": true, "#34": true, "#39": true,
}

// CleanHTML is CleanBody for HTML bodies: character entities such as &oacute;
// are decoded so that labels written with entities match plain-text patterns.
func CleanHTML(raw string) string {
	s := CleanBody(raw)
	return entityPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if keptEntities[strings.ToLower(name)] {
			return m
		}
		return html.UnescapeString(m)
	})
}

// HTMLText returns the text content of an HTML fragment with entities decoded.
// Strings without markup or entities are returned trimmed.
func HTMLText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(horizontalSpace.ReplaceAllString(b.String(), " "))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte(' ')
			}
		}
	}
}
