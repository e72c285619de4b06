package services

import (
	"context"
	"errors"

	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/models"
)

// Define common service errors
var (
	ErrAccountNotFound = model.ErrAccountNotFound
	ErrEmailNotFound   = model.ErrEmailNotFound
	ErrParsingFailed   = errors.New("statement parsing failed")
)

// AccountRepository is the account storage the services depend on.
//
//go:generate mockgen -destination=mocks/mock_repositories.go -source=interfaces.go
type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, a *model.Account) error
	Delete(ctx context.Context, id string) error
}

// TransactionRepository stores canonical transactions per account.
type TransactionRepository interface {
	IdentityKeys(ctx context.Context, accountID string) ([]string, error)
	Insert(ctx context.Context, accountID string, txs []models.CanonicalTransaction) (int, error)
	List(ctx context.Context, accountID string) ([]models.StoredTransaction, error)
	Delete(ctx context.Context, accountID, from, to string) (int64, error)
}

// EmailRepository stores notification emails pushed in by a fetcher.
type EmailRepository interface {
	Insert(ctx context.Context, e *model.Email) (bool, error)
	List(ctx context.Context, limit int) ([]model.Email, error)
	GetByID(ctx context.Context, id string) (*model.Email, error)
}

// StatementService imports bank statements into accounts.
type StatementService interface {
	ImportStatement(ctx context.Context, accountID, text string, format models.SourceFormat) (*models.ImportResult, error)
	ListTransactions(ctx context.Context, accountID string) ([]models.StoredTransaction, error)
	DeleteTransactions(ctx context.Context, accountID, from, to string) (int64, error)
}

// AccountService manages accounts.
type AccountService interface {
	CreateAccount(ctx context.Context, in AccountInput) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, id string, in AccountInput) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// EmailService stores notification emails and extracts their fields for display.
type EmailService interface {
	Ingest(ctx context.Context, in EmailInput) (*model.Email, bool, error)
	List(ctx context.Context, limit int) ([]ParsedEmail, error)
	Parse(body string, isHTML bool) ParsedFields
}
