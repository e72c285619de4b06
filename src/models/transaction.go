package models

import "time"

// StoredTransaction is a CanonicalTransaction as persisted for an account.
type StoredTransaction struct {
	ID        int64     `json:"id,omitempty"` // Database primary key
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	CanonicalTransaction
}

// ImportResult summarizes one statement import.
type ImportResult struct {
	AccountID     string                 `json:"account_id"`
	Format        SourceFormat           `json:"format"`
	Currency      Currency               `json:"currency,omitempty"`
	Inserted      int                    `json:"inserted"`
	New           []CanonicalTransaction `json:"new"`
	Duplicates    []CanonicalTransaction `json:"duplicates"`
	SkippedGroups int                    `json:"skipped_groups"`
	Message       string                 `json:"message,omitempty"`
}
