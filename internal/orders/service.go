package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/internal/fingerprint"
	"github.com/harborpay/scanpay-backend/pkg/config"
	"github.com/harborpay/scanpay-backend/pkg/db"
	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

const (
	slotConstraint    = "fingerprint_slot"
	orderNoConstraint = "merchant_order_no"
)

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByMerchantOrderNo(ctx context.Context, merchantID uuid.UUID, merchantOrderNo string) (*models.Order, error)
	ActiveOrders(ctx context.Context, filter ActiveOrderFilter, now time.Time) ([]models.Order, error)
	Close(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type accountSelector interface {
	SelectAccount(ctx context.Context, merchantID uuid.UUID, paymentType enums.PaymentType) (*models.PaymentAccount, error)
}

type amountAllocator interface {
	Allocate(ctx context.Context, scope types.Scope, requested decimal.Decimal) (decimal.Decimal, error)
}

type broadcastPublisher interface {
	PublishOrder(ctx context.Context, order *models.Order, listenMode enums.ListenMode) error
}

// Service exposes order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, merchantID, orderID uuid.UUID) (*OrderDTO, error)
	ActiveOrders(ctx context.Context, filter ActiveOrderFilter) ([]OrderDTO, error)
	Close(ctx context.Context, merchantID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo      orderRepository
	accounts  accountSelector
	allocator amountAllocator
	broadcast broadcastPublisher
	logg      *logger.Logger
	cfg       config.OrdersConfig
	now       func() time.Time
}

// NewService builds an order service with the provided collaborators.
func NewService(
	repo orderRepository,
	accounts accountSelector,
	allocator amountAllocator,
	broadcast broadcastPublisher,
	logg *logger.Logger,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account selector required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("fingerprint allocator required")
	}
	if broadcast == nil {
		return nil, fmt.Errorf("broadcast publisher required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("order ttl must be positive")
	}
	if cfg.AllocateAttempts <= 0 {
		cfg.AllocateAttempts = 3
	}
	return &service{
		repo:      repo,
		accounts:  accounts,
		allocator: allocator,
		broadcast: broadcast,
		logg:      logg,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

func validateCreate(input CreateOrderInput) error {
	if input.MerchantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	if strings.TrimSpace(input.MerchantOrderNo) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant order no is required")
	}
	if !input.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if strings.TrimSpace(input.NotifyURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notify url is required")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Amount.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount exceeds minor unit precision")
	}
	return nil
}

// Create opens a new collection order: pick the receiving account, allocate a
// display amount nobody else in that scope holds, and persist. The unique slot
// index is the real arbiter under concurrency, so allocation is retried when
// the insert collides.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByMerchantOrderNo(ctx, input.MerchantID, input.MerchantOrderNo)
	if err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "merchant order no already used")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check merchant order no")
	}

	account, err := s.accounts.SelectAccount(ctx, input.MerchantID, input.PaymentType)
	if err != nil {
		return nil, err
	}
	scope := types.Scope{
		AccountID:   account.ID,
		ChannelID:   account.ChannelID,
		PaymentType: input.PaymentType,
	}

	var order *models.Order
	for attempt := 0; attempt < s.cfg.AllocateAttempts; attempt++ {
		amount, allocErr := s.allocator.Allocate(ctx, scope, input.Amount)
		if allocErr != nil {
			return nil, allocErr
		}

		slot := fingerprint.Canonical(amount)
		candidate := &models.Order{
			MerchantID:      input.MerchantID,
			MerchantOrderNo: input.MerchantOrderNo,
			AccountID:       scope.AccountID,
			ChannelID:       scope.ChannelID,
			PaymentType:     scope.PaymentType,
			RequestedAmount: input.Amount,
			Fingerprint:     amount,
			FingerprintSlot: &slot,
			State:           enums.OrderStatePending,
			NotifyURL:       input.NotifyURL,
			ExpiresAt:       s.now().Add(s.cfg.TTL),
		}

		createErr := s.repo.Create(ctx, candidate)
		if createErr == nil {
			order = candidate
			break
		}
		if db.IsUniqueViolation(createErr, orderNoConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "merchant order no already used")
		}
		if db.IsUniqueViolation(createErr, slotConstraint) {
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "insert order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fingerprint capacity exhausted for scope")
	}

	if err := s.broadcast.PublishOrder(ctx, order, account.ListenMode); err != nil {
		// The entry is re-derivable from the order row, so a failed publish
		// must not undo a committed order.
		if s.logg != nil {
			ctx = s.logg.WithOrderID(ctx, order.ID.String())
			ctx = s.logg.WithScope(ctx, scope.String())
			s.logg.Warn(ctx, "broadcast publish failed after order insert")
		}
	}

	return FromModel(order), nil
}

// Get loads one order owned by the merchant.
func (s *service) Get(ctx context.Context, merchantID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

// ActiveOrders returns pending unexpired orders for listener agents.
func (s *service) ActiveOrders(ctx context.Context, filter ActiveOrderFilter) ([]OrderDTO, error) {
	active, err := s.repo.ActiveOrders(ctx, filter, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active orders")
	}
	out := make([]OrderDTO, 0, len(active))
	for i := range active {
		out = append(out, *FromModel(&active[i]))
	}
	return out, nil
}

// Close administratively cancels a pending order. Orders that already left
// the pending state are reported as a state conflict.
func (s *service) Close(ctx context.Context, merchantID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}

	closed, err := s.repo.Close(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close order")
	}
	if !closed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, not pending", order.State))
	}

	order.State = enums.OrderStateClosed
	order.FingerprintSlot = nil
	return FromModel(order), nil
}

func (s *service) findOwned(ctx context.Context, merchantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	// Ownership mismatches look identical to missing orders.
	if order.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
