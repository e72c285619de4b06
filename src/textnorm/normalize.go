// Package textnorm cleans raw statement and notification text before extraction.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Longest phrase first so "datos de la operación" is not left as "datos".
	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)datos\s+de\s+la\s+operaci[oó]n:?`),
		regexp.MustCompile(`(?i)de\s+la\s+operaci[oó]n:?`),
		regexp.MustCompile(`(?i)fecha\s+y\s+hora:?`),
		regexp.MustCompile(`(?i)fecha:?`),
	}

	// A meridiem marker after a time digit: "3:45pm", "3:45 P.M.", "10:00 a. m."
	meridiemPattern = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?\s*m\b\.?`)

	horizontalSpace = regexp.MustCompile(`[ \t]+`)

	nbspReplacer = strings.NewReplacer("\u00a0", " ", "&nbsp;", " ", "\r", "")
)

// Normalize prepares a field payload (typically a date) for canonicalization.
// It is pure and idempotent.
func Normalize(raw string) string {
	s := nbspReplacer.Replace(raw)
	s = strings.ReplaceAll(s, "*", "")
	// Dropping one label can join the words of another ("de la fecha operación").
	for {
		stripped := stripBoilerplate(s)
		if stripped == s {
			break
		}
		s = stripped
	}
	s = meridiemPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiemPattern.FindStringSubmatch(m)
		return sub[1] + " " + strings.ToLower(sub[2]) + "m"
	})
	return collapse(s)
}

// CleanBody strips carriage returns and non-breaking spaces while keeping the
// labels that extraction patterns anchor on.
func CleanBody(raw string) string {
	return strings.TrimSpace(nbspReplacer.Replace(raw))
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(CleanBody(text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func stripBoilerplate(s string) string {
	for _, p := range boilerplatePatterns {
		s = p.ReplaceAllString(s, " ")
	}
	return collapse(s)
}

func collapse(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimFunc(horizontalSpace.ReplaceAllString(line, " "), unicode.IsSpace)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
