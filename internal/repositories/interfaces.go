package repositories

import (
	"context"
	"time"

	domain "github.com/bvs-supply/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CounterRepository provides transaction-safe sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// OrderRepository persists order headers and line items. Multi-document
// invariants (submission, price finalization) execute inside a single
// Firestore transaction within the repository.
type OrderRepository interface {
	// Insert writes the order header plus its line items.
	Insert(ctx context.Context, order domain.Order) error
	// Delete removes the order header and its line items; used for
	// compensating cleanup when bill creation fails after the order write.
	Delete(ctx context.Context, orderID int64) error
	// FindByID returns the order with its line items.
	FindByID(ctx context.Context, orderID int64) (domain.Order, error)
	// ListByHotel returns a hotel's orders, newest first, without items.
	ListByHotel(ctx context.Context, hotelID string) ([]domain.Order, error)
	// ListPendingPricing returns unpriced orders, oldest first, with items.
	ListPendingPricing(ctx context.Context) ([]domain.Order, error)
	// ListAll returns every order with items; backs the delivery-day scans.
	ListAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus sets the order status and updated_at.
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, now time.Time) error
	// FinalizePrices atomically applies the per-item prices, the order total
	// and status, and the bill total. The pricing status precondition is
	// re-checked inside the transaction.
	FinalizePrices(ctx context.Context, update FinalizePricesUpdate) (domain.Order, error)
}

// FinalizePricesUpdate carries the transactional write set for finalization.
type FinalizePricesUpdate struct {
	OrderID     int64
	BillID      int64
	ItemPrices  map[string]float64 // item id -> unit price
	FinalizedAt time.Time
	NewStatus   domain.OrderStatus
	BillStatus  domain.BillStatus
}

// BillRepository persists bills.
type BillRepository interface {
	Insert(ctx context.Context, bill domain.Bill) error
	FindByID(ctx context.Context, billID int64) (domain.Bill, error)
	FindByOrder(ctx context.Context, orderID int64) (domain.Bill, error)
	ListByHotel(ctx context.Context, hotelID string) ([]domain.Bill, error)
	// UpdatePayment records a settlement transition (sent or paid).
	UpdatePayment(ctx context.Context, billID int64, update BillPaymentUpdate) (domain.Bill, error)
}

// BillPaymentUpdate carries payment recording fields.
type BillPaymentUpdate struct {
	Status        domain.BillStatus
	PaymentMethod string
	Comments      string
	Now           time.Time
}

// ProductRepository reads catalog metadata maintained externally.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
}

// HotelRepository reads hotel profiles maintained externally.
type HotelRepository interface {
	FindByID(ctx context.Context, hotelID string) (domain.Hotel, error)
	FindByIDs(ctx context.Context, hotelIDs []string) (map[string]domain.Hotel, error)
}
