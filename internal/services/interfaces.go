package services

import (
	"context"
	"time"

	domain "github.com/bvs-supply/api/internal/domain"
)

// CounterService issues sequential identifiers from named counters.
type CounterService interface {
	// Next returns the next value of the named counter. Values are unique
	// and non-decreasing per name; gaps may appear when later steps of a
	// workflow fail.
	Next(ctx context.Context, name string) (int64, error)
}

// SubmitOrderCommand carries the inputs for a hotel order submission.
type SubmitOrderCommand struct {
	HotelID             string
	DeliveryDate        string
	SpecialInstructions string
	DueDate             string
	Items               []SubmitOrderItem
}

// SubmitOrderItem is one requested product line.
type SubmitOrderItem struct {
	ProductID string
	Quantity  float64
}

// SubmitOrderResult reports the order and draft bill created by a submission.
type SubmitOrderResult struct {
	Order domain.Order
	Bill  domain.Bill
}

// ItemPrice assigns a finalized unit price to a product on the order.
type ItemPrice struct {
	ProductID    string
	PricePerUnit float64
}

// FinalizePricesCommand carries the operator's price sheet for one order.
type FinalizePricesCommand struct {
	OrderID int64
	ActorID string
	Prices  []ItemPrice
}

// FinalizeResult reports the outcome of a price finalization.
type FinalizeResult struct {
	Order          domain.Order
	NewTotalAmount float64
}

// OrderService owns order submission, pricing and lifecycle transitions.
type OrderService interface {
	Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error)
	// GetOrder returns a hotel's order with items; orders of other hotels
	// are reported as not found.
	GetOrder(ctx context.Context, hotelID string, orderID int64) (domain.Order, error)
	ListByHotel(ctx context.Context, hotelID string) ([]domain.Order, error)
	ListPendingPricing(ctx context.Context) ([]domain.Order, error)
	FinalizePrices(ctx context.Context, cmd FinalizePricesCommand) (FinalizeResult, error)
	SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error)
}

// PaymentUpdate carries an operator's settlement recording for a bill.
type PaymentUpdate struct {
	Status        domain.BillStatus
	PaymentMethod string
	Comments      string
}

// BillingService exposes bill reads and payment recording.
type BillingService interface {
	ListByHotel(ctx context.Context, hotelID string) ([]domain.Bill, error)
	GetByOrder(ctx context.Context, orderID int64) (domain.Bill, error)
	RecordPayment(ctx context.Context, billID int64, update PaymentUpdate) (domain.Bill, error)
}

// FulfillmentService computes the delivery-day aggregation views. An empty
// date selects the target date via the cutoff rule; an explicit YYYY-MM-DD
// date runs the same aggregation for that day.
type FulfillmentService interface {
	Vegetables(ctx context.Context, date string) (domain.VegetableReport, error)
	HotelOrders(ctx context.Context, date string) (domain.HotelOrdersReport, error)
	Filling(ctx context.Context, date string) (domain.FillingMatrix, error)
}

// OrderEventMessage is the payload published to the supplier notification topic.
type OrderEventMessage struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	OrderID      int64     `json:"order_id"`
	HotelID      string    `json:"hotel_id"`
	DeliveryDate string    `json:"delivery_date"`
	ItemCount    int       `json:"item_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// OrderEventPublisher delivers order lifecycle events to interested consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, message OrderEventMessage) (string, error)
}
