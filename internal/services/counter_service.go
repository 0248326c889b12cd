package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bvs-supply/api/internal/repositories"
)

// ErrCounterInvalidInput indicates the caller supplied invalid counter parameters.
var ErrCounterInvalidInput = errors.New("counter: invalid input")

// Counter names used by the order and billing workflows.
const (
	CounterOrders    = "orders"
	CounterBills     = "bills"
	CounterUsers     = "users"
	CounterSuppliers = "suppliers"
	CounterTickets   = "tickets"
)

// CounterServiceDeps bundles collaborators required to construct a counter service instance.
type CounterServiceDeps struct {
	Repository repositories.CounterRepository
}

type counterService struct {
	repo repositories.CounterRepository
}

// NewCounterService constructs a service that issues sequence values on top of the repository.
func NewCounterService(deps CounterServiceDeps) (CounterService, error) {
	if deps.Repository == nil {
		return nil, errors.New("counter service: repository is required")
	}
	return &counterService{repo: deps.Repository}, nil
}

func (s *counterService) Next(ctx context.Context, name string) (int64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: name is required", ErrCounterInvalidInput)
	}

	value, err := s.repo.Next(ctx, trimmed)
	if err != nil {
		var counterErr *repositories.CounterError
		if errors.As(err, &counterErr) && counterErr.Code == repositories.CounterErrorInvalidInput {
			return 0, fmt.Errorf("%w: %s", ErrCounterInvalidInput, counterErr.Message)
		}
		return 0, err
	}
	return value, nil
}
