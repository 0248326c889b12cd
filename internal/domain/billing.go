package domain

import (
	"time"
)

// BillStatus describes the settlement lifecycle state of a bill.
type BillStatus string

const (
	// BillStatusDraft indicates the bill belongs to an unpriced order.
	BillStatusDraft BillStatus = "draft"
	// BillStatusFinalized indicates the bill total is locked to the order total.
	BillStatusFinalized BillStatus = "finalized"
	// BillStatusSent indicates the bill was handed to the hotel.
	BillStatusSent BillStatus = "sent"
	// BillStatusPaid indicates the bill was settled.
	BillStatusPaid BillStatus = "paid"
)

// Bill mirrors an order's financial side. Exactly one bill exists per order;
// its total and status only change through price finalization and payment
// recording.
type Bill struct {
	ID            int64
	OrderID       int64
	HotelID       string
	HotelName     string
	BillDate      string
	DueDate       string
	TotalAmount   float64
	Status        BillStatus
	Paid          bool
	PaymentMethod string
	Comments      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
