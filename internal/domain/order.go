package domain

import (
	"time"
)

// OrderStatus describes the fulfilment lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was submitted and awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates prices were finalized and the order is accepted.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPreparing indicates the order is being packed.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusDispatched indicates the order left for delivery.
	OrderStatusDispatched OrderStatus = "dispatched"
	// OrderStatusDelivered indicates the order reached the hotel.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted order status value.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusDispatched,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether the value is one of the accepted statuses.
func ValidOrderStatus(value OrderStatus) bool {
	for _, status := range OrderStatuses {
		if status == value {
			return true
		}
	}
	return false
}

// PricingStatus tracks whether market prices were applied to an order.
type PricingStatus string

const (
	// PricingStatusPending indicates line items still carry no prices.
	PricingStatusPending PricingStatus = "pending_pricing"
	// PricingStatusFinalized indicates prices were applied and totals are locked.
	PricingStatusFinalized PricingStatus = "prices_finalized"
)

// Order is the aggregate root for a hotel's daily vegetable order.
type Order struct {
	ID                  int64
	HotelID             string
	OrderDate           string
	DeliveryDate        string
	Status              OrderStatus
	PricingStatus       PricingStatus
	TotalAmount         float64
	SpecialInstructions string
	PriceFinalizedAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Items               []OrderItem
}

// OrderItem is a single product line on an order. PriceAtOrder stays nil until
// finalization; Subtotal is zero until then.
type OrderItem struct {
	ItemID       string
	ProductID    string
	ProductName  string
	Quantity     float64
	Unit         string
	Category     string
	PriceAtOrder *float64
	Subtotal     float64
}

// Product is read-only catalog metadata maintained by an external admin tool.
type Product struct {
	ID          string
	Name        string
	Unit        string
	Category    string
	IsAvailable bool
}

// Hotel is read-only customer metadata maintained by the external profile service.
type Hotel struct {
	ID        string
	HotelName string
	Phone     string
	Address   string
}
