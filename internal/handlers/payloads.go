package handlers

import (
	domain "github.com/bvs-supply/api/internal/domain"
)

type orderItemPayload struct {
	ItemID       string   `json:"item_id"`
	ProductID    string   `json:"product_id"`
	ProductName  string   `json:"product_name"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	Category     string   `json:"category,omitempty"`
	PriceAtOrder *float64 `json:"price_at_order"`
	Subtotal     float64  `json:"subtotal"`
}

type orderPayload struct {
	OrderID             int64              `json:"order_id"`
	HotelID             string             `json:"hotel_id"`
	OrderDate           string             `json:"order_date"`
	DeliveryDate        string             `json:"delivery_date"`
	Status              string             `json:"status"`
	PricingStatus       string             `json:"pricing_status"`
	TotalAmount         float64            `json:"total_amount"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	PriceFinalizedAt    string             `json:"price_finalized_at,omitempty"`
	CreatedAt           string             `json:"created_at"`
	UpdatedAt           string             `json:"updated_at,omitempty"`
	Items               []orderItemPayload `json:"items"`
}

type billPayload struct {
	BillID        int64   `json:"bill_id"`
	OrderID       int64   `json:"order_id"`
	HotelID       string  `json:"hotel_id"`
	HotelName     string  `json:"hotel_name,omitempty"`
	BillDate      string  `json:"bill_date"`
	DueDate       string  `json:"due_date"`
	TotalAmount   float64 `json:"total_amount"`
	Status        string  `json:"status"`
	Paid          bool    `json:"paid"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Comments      string  `json:"comments,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ItemID:       item.ItemID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			Category:     item.Category,
			PriceAtOrder: item.PriceAtOrder,
			Subtotal:     item.Subtotal,
		})
	}
	return orderPayload{
		OrderID:             order.ID,
		HotelID:             order.HotelID,
		OrderDate:           order.OrderDate,
		DeliveryDate:        order.DeliveryDate,
		Status:              string(order.Status),
		PricingStatus:       string(order.PricingStatus),
		TotalAmount:         order.TotalAmount,
		SpecialInstructions: order.SpecialInstructions,
		PriceFinalizedAt:    formatTimePointer(order.PriceFinalizedAt),
		CreatedAt:           formatTime(order.CreatedAt),
		UpdatedAt:           formatTime(order.UpdatedAt),
		Items:               items,
	}
}

func buildOrderPayloads(orders []domain.Order) []orderPayload {
	payloads := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, buildOrderPayload(order))
	}
	return payloads
}

func buildBillPayload(bill domain.Bill) billPayload {
	return billPayload{
		BillID:        bill.ID,
		OrderID:       bill.OrderID,
		HotelID:       bill.HotelID,
		HotelName:     bill.HotelName,
		BillDate:      bill.BillDate,
		DueDate:       bill.DueDate,
		TotalAmount:   bill.TotalAmount,
		Status:        string(bill.Status),
		Paid:          bill.Paid,
		PaymentMethod: bill.PaymentMethod,
		Comments:      bill.Comments,
		CreatedAt:     formatTime(bill.CreatedAt),
		UpdatedAt:     formatTime(bill.UpdatedAt),
	}
}

func buildBillPayloads(bills []domain.Bill) []billPayload {
	payloads := make([]billPayload, 0, len(bills))
	for _, bill := range bills {
		payloads = append(payloads, buildBillPayload(bill))
	}
	return payloads
}
