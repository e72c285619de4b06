package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/extractos/backend/src/extraction"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/processors"
	"github.com/username/extractos/backend/src/security/validation"
)

const ckIdentityKeys = "identity_keys_account_%s"

func identityKeysCacheKey(accountID string) string {
	return fmt.Sprintf(ckIdentityKeys, accountID)
}

type statementServiceImpl struct {
	accounts     AccountRepository
	transactions TransactionRepository
	keyCache     *cache.Cache
	now          func() time.Time
}

func NewStatementService(accounts AccountRepository, transactions TransactionRepository, keyCache *cache.Cache) StatementService {
	return &statementServiceImpl{
		accounts:     accounts,
		transactions: transactions,
		keyCache:     keyCache,
		now:          time.Now,
	}
}

// ImportStatement parses text for the account, stores the transactions it has
// not seen before and reports the rest as duplicates. An empty format selects
// the statement layout of the account type. A batch with no transactions
// returns the (empty) result together with processors.ErrNoTransactionsFound.
func (s *statementServiceImpl) ImportStatement(ctx context.Context, accountID, text string, format models.SourceFormat) (*models.ImportResult, error) {
	ctx = logger.With(ctx, "accountID", accountID)
	log := logger.FromContext(ctx)
	startTime := time.Now()

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = acct.StatementFormat()
	}
	log.Info("ImportStatement START", "format", format, "size", len(text))

	existing, err := s.identityKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}

	batch, err := extraction.ParseBatch(text, format, acct.Context(), existing, extraction.Options{ReferenceYear: s.now().Year()})
	result := &models.ImportResult{AccountID: accountID, Format: format}
	if err != nil {
		if errors.Is(err, processors.ErrNoTransactionsFound) {
			result.New = batch.New
			result.Duplicates = batch.Duplicates
			result.SkippedGroups = batch.SkippedGroups
			result.Message = err.Error()
			log.Info("ImportStatement found no transactions", "skippedGroups", batch.SkippedGroups)
			return result, err
		}
		if errors.Is(err, extraction.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
		}
		log.Warn("Statement rejected", "error", err)
		return nil, err
	}

	fresh := sanitizeTransactions(batch.New)
	if len(fresh) > 0 {
		inserted, err := s.transactions.Insert(ctx, accountID, fresh)
		if err != nil {
			return nil, fmt.Errorf("failed to store transactions for account %s: %w", accountID, err)
		}
		result.Inserted = inserted
		s.keyCache.Delete(identityKeysCacheKey(accountID))
	}

	result.Currency = batch.Currency
	result.New = fresh
	result.Duplicates = batch.Duplicates
	result.SkippedGroups = batch.SkippedGroups
	log.Info("ImportStatement END",
		"inserted", result.Inserted,
		"duplicates", len(result.Duplicates),
		"skippedGroups", result.SkippedGroups,
		"duration", time.Since(startTime))
	return result, nil
}

func (s *statementServiceImpl) ListTransactions(ctx context.Context, accountID string) ([]models.StoredTransaction, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.transactions.List(ctx, accountID)
}

// DeleteTransactions removes the account's transactions dated within [from, to].
// Empty bounds delete everything on that side.
func (s *statementServiceImpl) DeleteTransactions(ctx context.Context, accountID, from, to string) (int64, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if err := validation.ValidateDateBound(from, "from"); err != nil {
		return 0, err
	}
	if err := validation.ValidateDateBound(to, "to"); err != nil {
		return 0, err
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return 0, err
	}

	n, err := s.transactions.Delete(ctx, accountID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions for account %s: %w", accountID, err)
	}
	s.keyCache.Delete(identityKeysCacheKey(accountID))
	logger.FromContext(ctx).Info("Deleted transactions", "accountID", accountID, "from", from, "to", to, "count", n)
	return n, nil
}

func (s *statementServiceImpl) identityKeys(ctx context.Context, accountID string) (map[string]struct{}, error) {
	key := identityKeysCacheKey(accountID)
	if cached, found := s.keyCache.Get(key); found {
		return cached.(map[string]struct{}), nil
	}
	keys, err := s.transactions.IdentityKeys(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored identity keys: %w", err)
	}
	set := processors.KeySet(keys)
	s.keyCache.Set(key, set, cache.DefaultExpiration)
	return set, nil
}

func sanitizeTransactions(txs []models.CanonicalTransaction) []models.CanonicalTransaction {
	for i := range txs {
		txs[i].Description = validation.SanitizeText(txs[i].Description)
		txs[i].MovementType = validation.SanitizeText(txs[i].MovementType)
		txs[i].Channel = validation.SanitizeText(txs[i].Channel)
	}
	return txs
}
