package merchants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
)

type merchantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
	FindAccounts(ctx context.Context, merchantID uuid.UUID, paymentType enums.PaymentType) ([]models.PaymentAccount, error)
}

// Service exposes merchant credential and account-selection operations.
type Service interface {
	SecretFor(ctx context.Context, merchantID uuid.UUID) (string, error)
	SelectAccount(ctx context.Context, merchantID uuid.UUID, paymentType enums.PaymentType) (*models.PaymentAccount, error)
}

type service struct {
	repo merchantRepository
}

// NewService builds a merchant service with the provided repository.
func NewService(repo merchantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("merchant repository required")
	}
	return &service{repo: repo}, nil
}

// SecretFor returns the signing secret of an enabled merchant. Disabled
// merchants are indistinguishable from unknown ones.
func (s *service) SecretFor(ctx context.Context, merchantID uuid.UUID) (string, error) {
	merchant, err := s.repo.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchant")
	}
	if !merchant.Enabled {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return merchant.Secret, nil
}

// SelectAccount picks the receiving payment account for a new order: the
// enabled account with the highest weight for the requested payment type.
func (s *service) SelectAccount(ctx context.Context, merchantID uuid.UUID, paymentType enums.PaymentType) (*models.PaymentAccount, error) {
	if !paymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	accounts, err := s.repo.FindAccounts(ctx, merchantID, paymentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment accounts")
	}
	if len(accounts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment account available for payment type")
	}
	account := accounts[0]
	return &account, nil
}
