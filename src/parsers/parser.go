// Package parsers selects the field-extraction strategy for a source format.
package parsers

import (
	"fmt"

	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/parsers/business"
	"github.com/username/extractos/backend/src/parsers/email"
	"github.com/username/extractos/backend/src/parsers/personal"
)

// Result is the outcome of running one strategy over a raw input.
type Result struct {
	Records []models.ExtractedFields
	// SkippedGroups counts record groups the strategy recognized but dropped as malformed.
	SkippedGroups int
}

// Parser extracts raw fields from one source format. Parsers never fail:
// fields they cannot find are left as models.Sentinel.
type Parser interface {
	Format() models.SourceFormat
	Parse(text string) *Result
}

type personalParser struct{}

func (personalParser) Format() models.SourceFormat { return models.FormatPersonalText }
func (personalParser) Parse(text string) *Result {
	return &Result{Records: personal.Parse(text)}
}

type businessParser struct{}

func (businessParser) Format() models.SourceFormat { return models.FormatBusinessText }
func (businessParser) Parse(text string) *Result {
	records, skipped := business.Parse(text)
	return &Result{Records: records, SkippedGroups: skipped}
}

type emailTextParser struct{}

func (emailTextParser) Format() models.SourceFormat { return models.FormatEmailText }
func (emailTextParser) Parse(text string) *Result {
	return single(email.ParseText(text))
}

type emailHTMLParser struct{}

func (emailHTMLParser) Format() models.SourceFormat { return models.FormatEmailHTML }
func (emailHTMLParser) Parse(text string) *Result {
	return single(email.ParseHTML(text))
}

// single wraps one notification; a notification without an amount is not a transaction.
func single(f models.ExtractedFields) *Result {
	if !models.Present(f.Amount) {
		return &Result{}
	}
	return &Result{Records: []models.ExtractedFields{f}}
}

var registry = map[models.SourceFormat]Parser{
	models.FormatPersonalText: personalParser{},
	models.FormatBusinessText: businessParser{},
	models.FormatEmailText:    emailTextParser{},
	models.FormatEmailHTML:    emailHTMLParser{},
}

// GetParser returns the strategy registered for format.
func GetParser(format models.SourceFormat) (Parser, error) {
	p, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("no parser for source format %q", format)
	}
	return p, nil
}
