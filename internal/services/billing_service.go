package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/repositories"
)

// BillingServiceDeps bundles collaborators required to construct the billing service.
type BillingServiceDeps struct {
	Bills  repositories.BillRepository
	Clock  func() time.Time
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type billingService struct {
	bills  repositories.BillRepository
	clock  func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewBillingService wires dependencies into a concrete BillingService implementation.
func NewBillingService(deps BillingServiceDeps) (BillingService, error) {
	if deps.Bills == nil {
		return nil, errors.New("billing service: bill repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &billingService{
		bills: deps.Bills,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *billingService) ListByHotel(ctx context.Context, hotelID string) ([]domain.Bill, error) {
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: hotel id is required", ErrOrderInvalidInput)
	}

	bills, err := s.bills.ListByHotel(ctx, trimmed)
	if err != nil {
		return nil, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}
	return bills, nil
}

func (s *billingService) GetByOrder(ctx context.Context, orderID int64) (domain.Bill, error) {
	if orderID <= 0 {
		return domain.Bill{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	bill, err := s.bills.FindByOrder(ctx, orderID)
	if err != nil {
		return domain.Bill{}, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}
	return bill, nil
}

func (s *billingService) RecordPayment(ctx context.Context, billID int64, update PaymentUpdate) (domain.Bill, error) {
	if billID <= 0 {
		return domain.Bill{}, fmt.Errorf("%w: bill id is required", ErrOrderInvalidInput)
	}
	if update.Status != domain.BillStatusSent && update.Status != domain.BillStatusPaid {
		return domain.Bill{}, fmt.Errorf("%w: status must be %s or %s", ErrOrderInvalidInput, domain.BillStatusSent, domain.BillStatusPaid)
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return domain.Bill{}, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}
	// Draft bills still track unpriced orders; settlement starts once the
	// total is locked.
	if bill.Status == domain.BillStatusDraft {
		return domain.Bill{}, fmt.Errorf("%w: bill %d has no finalized total", ErrBillStateConflict, billID)
	}

	updated, err := s.bills.UpdatePayment(ctx, billID, repositories.BillPaymentUpdate{
		Status:        update.Status,
		PaymentMethod: strings.TrimSpace(update.PaymentMethod),
		Comments:      strings.TrimSpace(update.Comments),
		Now:           s.clock(),
	})
	if err != nil {
		return domain.Bill{}, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}

	s.logger(ctx, "bill.payment.recorded", map[string]any{
		"bill":   billID,
		"status": string(update.Status),
	})
	return updated, nil
}
