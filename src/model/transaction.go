package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
)

// canonicalDateGlob matches occurred_at values that were canonicalized.
const canonicalDateGlob = `[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9] [0-9][0-9]:[0-9][0-9]:[0-9][0-9]`

// TransactionStore persists canonical transactions per account.
type TransactionStore struct {
	DB *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{DB: db}
}

// IdentityKeys returns every identity key already stored for accountID.
func (s *TransactionStore) IdentityKeys(ctx context.Context, accountID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT identity_key FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query identity keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan identity key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Insert stores txs for accountID and refreshes the account statistics in the
// same database transaction. Rows whose identity key already exists are
// ignored. It returns how many rows were written.
func (s *TransactionStore) Insert(ctx context.Context, accountID string, txs []models.CanonicalTransaction) (int, error) {
	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT OR IGNORE INTO transactions
		(account_id, identity_key, amount, currency, currency_raw, occurred_at, occurred_at_raw,
		description, source, operation_number, movement_type, channel, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, tx := range txs {
		res, err := stmt.ExecContext(ctx,
			accountID, tx.IdentityKey, tx.Amount.String(), string(tx.Currency), tx.CurrencyRaw, tx.OccurredAt, tx.OccurredAtRaw,
			tx.Description, string(tx.Source), tx.OperationNumber, tx.MovementType, tx.Channel, tx.Balance, now,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting transaction %s: %w", tx.IdentityKey, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			logger.FromContext(ctx).Debug("Skipping stored transaction", "accountID", accountID, "identityKey", tx.IdentityKey)
			continue
		}
		inserted++
	}

	if err := refreshAccountStats(ctx, dbTx, accountID); err != nil {
		return 0, err
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}
	return inserted, nil
}

// List returns the account's transactions, newest first.
func (s *TransactionStore) List(ctx context.Context, accountID string) ([]models.StoredTransaction, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, account_id, identity_key, amount, currency, currency_raw, occurred_at, occurred_at_raw,
	       description, source, operation_number, movement_type, channel, balance, created_at
	FROM transactions WHERE account_id = ?
	ORDER BY occurred_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.StoredTransaction{}
	for rows.Next() {
		var (
			st       models.StoredTransaction
			amount   string
			currency string
			source   string
		)
		err := rows.Scan(&st.ID, &st.AccountID, &st.IdentityKey, &amount, &currency, &st.CurrencyRaw, &st.OccurredAt, &st.OccurredAtRaw,
			&st.Description, &source, &st.OperationNumber, &st.MovementType, &st.Channel, &st.Balance, &st.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		st.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %d has invalid amount %q: %w", st.ID, amount, err)
		}
		st.Currency = models.Currency(currency)
		st.Source = models.SourceFormat(source)
		txs = append(txs, st)
	}
	return txs, rows.Err()
}

// Delete removes the account's transactions whose canonical date falls within
// [from, to]. Empty bounds are open. Either bound may be a bare date. A ranged
// delete never touches rows whose date was kept raw.
func (s *TransactionStore) Delete(ctx context.Context, accountID, from, to string) (int64, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	query := `DELETE FROM transactions WHERE account_id = ?`
	args := []any{accountID}
	if from != "" || to != "" {
		query += ` AND occurred_at GLOB ?`
		args = append(args, canonicalDateGlob)
	}
	if from != "" {
		query += ` AND occurred_at >= ?`
		args = append(args, from)
	}
	if to != "" {
		if !strings.Contains(to, " ") {
			to += " 23:59:59"
		}
		query += ` AND occurred_at <= ?`
		args = append(args, to)
	}

	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := refreshAccountStats(ctx, dbTx, accountID); err != nil {
		return 0, err
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}
	return n, nil
}

func refreshAccountStats(ctx context.Context, dbTx *sql.Tx, accountID string) error {
	_, err := dbTx.ExecContext(ctx, `
	UPDATE accounts SET
		tx_count = (SELECT COUNT(*) FROM transactions WHERE account_id = ?1),
		oldest = COALESCE((SELECT MIN(occurred_at) FROM transactions WHERE account_id = ?1 AND occurred_at GLOB ?2), ''),
		newest = COALESCE((SELECT MAX(occurred_at) FROM transactions WHERE account_id = ?1 AND occurred_at GLOB ?2), '')
	WHERE id = ?1`, accountID, canonicalDateGlob)
	if err != nil {
		return fmt.Errorf("failed to refresh account statistics: %w", err)
	}
	return nil
}
