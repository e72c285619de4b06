package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/username/extractos/backend/src/canonical"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/security/validation"
)

// AccountInput is the editable part of an account.
type AccountInput struct {
	Alias           string `json:"alias"`
	BankName        string `json:"bank_name"`
	AccountHolder   string `json:"account_holder"`
	AccountNumber   string `json:"account_number"`
	BankAccountType string `json:"bank_account_type"`
	Currency        string `json:"currency"`
	AccountType     string `json:"account_type"`
}

type accountServiceImpl struct {
	accounts AccountRepository
	keyCache *cache.Cache
}

func NewAccountService(accounts AccountRepository, keyCache *cache.Cache) AccountService {
	return &accountServiceImpl{accounts: accounts, keyCache: keyCache}
}

func (s *accountServiceImpl) CreateAccount(ctx context.Context, in AccountInput) (*model.Account, error) {
	a := &model.Account{}
	if err := applyAccountInput(a, in); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Account created", "accountID", a.ID, "accountType", a.AccountType, "currency", a.Currency)
	return a, nil
}

func (s *accountServiceImpl) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *accountServiceImpl) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accounts.List(ctx)
}

func (s *accountServiceImpl) UpdateAccount(ctx context.Context, id string, in AccountInput) (*model.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAccountInput(a, in); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Account updated", "accountID", a.ID)
	return a, nil
}

func (s *accountServiceImpl) DeleteAccount(ctx context.Context, id string) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.keyCache.Delete(identityKeysCacheKey(id))
	logger.FromContext(ctx).Info("Account deleted", "accountID", id)
	return nil
}

// applyAccountInput validates and sanitizes in and copies it onto a.
func applyAccountInput(a *model.Account, in AccountInput) error {
	clean := func(s string) string {
		return strings.TrimSpace(validation.SanitizeText(validation.StripUnprintable(s)))
	}
	in.Alias = clean(in.Alias)
	in.BankName = clean(in.BankName)
	in.AccountHolder = clean(in.AccountHolder)
	in.AccountNumber = clean(in.AccountNumber)
	in.BankAccountType = clean(in.BankAccountType)
	in.Currency = clean(in.Currency)
	in.AccountType = strings.ToLower(clean(in.AccountType))

	if err := validation.ValidateStringNotEmpty(in.Alias, "Alias"); err != nil {
		return err
	}
	free := map[string]string{
		"Alias":             in.Alias,
		"Bank Name":         in.BankName,
		"Account Holder":    in.AccountHolder,
		"Bank Account Type": in.BankAccountType,
	}
	for field, v := range free {
		if err := validation.ValidateStringMaxLength(v, validation.DefaultMaxStringLength, field); err != nil {
			return err
		}
		if err := validation.CheckXSSPatterns(v, field, "account"); err != nil {
			return err
		}
		if err := validation.CheckFormulaInjection(v, field, "account"); err != nil {
			return err
		}
	}
	if err := validation.ValidateAccountNumber(in.AccountNumber); err != nil {
		return err
	}
	if err := validation.ValidateCurrencyToken(in.Currency); err != nil {
		return err
	}

	switch in.AccountType {
	case "":
		in.AccountType = model.AccountTypePersonal
	case model.AccountTypePersonal, model.AccountTypeBusiness:
	default:
		return fmt.Errorf("%w: account type must be %q or %q", validation.ErrValidationFailed, model.AccountTypePersonal, model.AccountTypeBusiness)
	}

	a.Alias = in.Alias
	a.BankName = in.BankName
	a.AccountHolder = in.AccountHolder
	a.AccountNumber = in.AccountNumber
	a.BankAccountType = in.BankAccountType
	a.Currency = canonical.Currency(in.Currency).String()
	a.AccountType = in.AccountType
	return nil
}
