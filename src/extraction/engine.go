// Package extraction is the entry point of the statement and notification
// extraction engine. It holds no state and performs no I/O; callers supply
// the account context and the identity keys already stored for the account.
package extraction

import (
	"errors"

	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/parsers"
	"github.com/username/extractos/backend/src/parsers/email"
	"github.com/username/extractos/backend/src/processors"
)

// ErrUnsupportedFormat is returned for a source format with no extraction strategy.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Options tune a batch parse.
type Options struct {
	// ReferenceYear resolves statement dates printed without a year.
	ReferenceYear int
}

// BatchResult is the partition of a parsed batch.
type BatchResult struct {
	Currency      models.Currency               `json:"currency,omitempty"`
	New           []models.CanonicalTransaction `json:"new"`
	Duplicates    []models.CanonicalTransaction `json:"duplicates"`
	SkippedGroups int                           `json:"skipped_groups"`
}

// ParseBatch extracts, canonicalizes and de-duplicates every transaction in raw.
// Batch-level failures are returned as *processors.BatchError; on error the
// result is nil except for processors.ErrNoTransactionsFound, where it carries
// the skipped group count.
func ParseBatch(raw string, format models.SourceFormat, acct models.AccountContext, existingKeys map[string]struct{}, opts Options) (*BatchResult, error) {
	p, err := parsers.GetParser(format)
	if err != nil {
		return nil, errors.Join(ErrUnsupportedFormat, err)
	}
	parsed := p.Parse(raw)

	assembler := processors.NewTransactionAssembler(opts.ReferenceYear)
	txs, err := assembler.AssembleBatch(parsed.Records, format, acct)
	if err != nil {
		if errors.Is(err, processors.ErrNoTransactionsFound) {
			return &BatchResult{
				New:           []models.CanonicalTransaction{},
				Duplicates:    []models.CanonicalTransaction{},
				SkippedGroups: parsed.SkippedGroups,
			}, err
		}
		return nil, err
	}

	fresh, dups := processors.Partition(txs, existingKeys)
	return &BatchResult{
		Currency:      txs[0].Currency,
		New:           fresh,
		Duplicates:    dups,
		SkippedGroups: parsed.SkippedGroups,
	}, nil
}

// ParseEmail extracts notification fields from one email body for display.
// It never fails; missing fields are models.Sentinel.
func ParseEmail(body string, isHTML bool) models.ExtractedFields {
	if isHTML {
		return email.ParseHTML(body)
	}
	return email.ParseText(body)
}
