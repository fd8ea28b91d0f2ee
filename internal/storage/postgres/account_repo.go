package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ job.AccountRepoInterface = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) error {
	if err := r.db.WithContext(ctx).Create(acc).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	var acc models.Account
	if err := r.db.WithContext(ctx).First(&acc, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", accountID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// Debit atomically decrements the balance, but only when the current
// balance covers the amount. The non-negative balance invariant lives
// here, not in callers. A zero row count cannot distinguish a short
// balance from a missing account, so both surface as
// common.ErrInsufficientFunds.
func (r *AccountRepository) Debit(ctx context.Context, accountID string, amount int64) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_id = ? AND balance >= ?", accountID, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("debit account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrInsufficientFunds
	}
	return nil
}

// Credit atomically increments the balance. common.ErrNotFound means the
// account does not exist.
func (r *AccountRepository) Credit(ctx context.Context, accountID string, amount int64) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("credit account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", accountID, common.ErrNotFound)
	}
	return nil
}
