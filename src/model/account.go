package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/username/extractos/backend/src/models"
)

const (
	AccountTypePersonal = "personal"
	AccountTypeBusiness = "business"
)

var ErrAccountNotFound = errors.New("account not found")

type Account struct {
	ID              string    `json:"id"`
	Alias           string    `json:"alias"`
	BankName        string    `json:"bank_name"`
	AccountHolder   string    `json:"account_holder"`
	AccountNumber   string    `json:"account_number"`
	BankAccountType string    `json:"bank_account_type"`
	Currency        string    `json:"currency"`
	AccountType     string    `json:"account_type"`
	TxCount         int       `json:"tx_count"`
	Oldest          string    `json:"oldest"`
	Newest          string    `json:"newest"`
	CreatedAt       time.Time `json:"created_at"`
}

// Context is what the extraction engine needs to know about the account.
func (a *Account) Context() models.AccountContext {
	return models.AccountContext{AccountNumber: a.AccountNumber, ExpectedCurrency: a.Currency}
}

// StatementFormat is the statement layout the account's bank exports.
func (a *Account) StatementFormat() models.SourceFormat {
	if a.AccountType == AccountTypeBusiness {
		return models.FormatBusinessText
	}
	return models.FormatPersonalText
}

// AccountStore persists accounts in SQLite.
type AccountStore struct {
	DB *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{DB: db}
}

const accountColumns = `id, alias, bank_name, account_holder, account_number, bank_account_type,
	currency, account_type, tx_count, oldest, newest, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Alias, &a.BankName, &a.AccountHolder, &a.AccountNumber, &a.BankAccountType,
		&a.Currency, &a.AccountType, &a.TxCount, &a.Oldest, &a.Newest, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a, assigning a new ID when it has none.
func (s *AccountStore) Create(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO accounts (id, alias, bank_name, account_holder, account_number, bank_account_type, currency, account_type, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Alias, a.BankName, a.AccountHolder, a.AccountNumber, a.BankAccountType, a.Currency, a.AccountType, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*Account, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

func (s *AccountStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY alias ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// Update overwrites the editable fields of a. Statistics are not touched.
func (s *AccountStore) Update(ctx context.Context, a *Account) error {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE accounts SET alias = ?, bank_name = ?, account_holder = ?, account_number = ?,
	       bank_account_type = ?, currency = ?, account_type = ?
	WHERE id = ?`,
		a.Alias, a.BankName, a.AccountHolder, a.AccountNumber, a.BankAccountType, a.Currency, a.AccountType, a.ID)
	if err != nil {
		return fmt.Errorf("update account %s: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Delete removes the account and, through the foreign key, its transactions.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
