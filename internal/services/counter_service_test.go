package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bvs-supply/api/internal/repositories"
)

type stubCounterRepository struct {
	mu        sync.Mutex
	nextFn    func(context.Context, string) (int64, error)
	nextCalls []string
}

func (s *stubCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	s.nextCalls = append(s.nextCalls, name)
	s.mu.Unlock()
	if s.nextFn != nil {
		return s.nextFn(ctx, name)
	}
	return 0, nil
}

func TestCounterServiceNext(t *testing.T) {
	repo := &stubCounterRepository{}
	repo.nextFn = func(context.Context, string) (int64, error) {
		return 42, nil
	}

	svc, err := NewCounterService(CounterServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("new counter service: %v", err)
	}

	value, err := svc.Next(context.Background(), "orders")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected 42, got %d", value)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.nextCalls) != 1 || repo.nextCalls[0] != "orders" {
		t.Fatalf("unexpected next calls %v", repo.nextCalls)
	}
}

func TestCounterServiceTrimsName(t *testing.T) {
	repo := &stubCounterRepository{}
	repo.nextFn = func(context.Context, string) (int64, error) {
		return 1, nil
	}

	svc, err := NewCounterService(CounterServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("new counter service: %v", err)
	}

	if _, err := svc.Next(context.Background(), "  bills  "); err != nil {
		t.Fatalf("next: %v", err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.nextCalls[0] != "bills" {
		t.Fatalf("expected trimmed name, got %q", repo.nextCalls[0])
	}
}

func TestCounterServiceRejectsEmptyName(t *testing.T) {
	svc, err := NewCounterService(CounterServiceDeps{Repository: &stubCounterRepository{}})
	if err != nil {
		t.Fatalf("new counter service: %v", err)
	}

	if _, err := svc.Next(context.Background(), "   "); !errors.Is(err, ErrCounterInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCounterServiceMapsRepositoryErrors(t *testing.T) {
	repo := &stubCounterRepository{}
	repo.nextFn = func(context.Context, string) (int64, error) {
		return 0, repositories.NewCounterError(repositories.CounterErrorInvalidInput, "bad name", nil)
	}

	svc, err := NewCounterService(CounterServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("new counter service: %v", err)
	}

	if _, err := svc.Next(context.Background(), "orders"); !errors.Is(err, ErrCounterInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
