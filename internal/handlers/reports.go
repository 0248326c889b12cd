package handlers

import (
	domain "github.com/bvs-supply/api/internal/domain"
)

type vegetableTotalPayload struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	TotalQuantity float64 `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

type vegetableReportPayload struct {
	Date           string                  `json:"date"`
	Totals         []vegetableTotalPayload `json:"totals"`
	CategoryTotals map[string]float64      `json:"category_totals"`
	OrderCount     int                     `json:"order_count"`
}

type hotelOrderLinePayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

type hotelOrderSummaryPayload struct {
	OrderID             int64                   `json:"order_id"`
	Status              string                  `json:"status"`
	SpecialInstructions string                  `json:"special_instructions,omitempty"`
	Items               []hotelOrderLinePayload `json:"items"`
}

type hotelOrdersGroupPayload struct {
	HotelID   string                     `json:"hotel_id"`
	HotelName string                     `json:"hotel_name"`
	Phone     string                     `json:"phone,omitempty"`
	Address   string                     `json:"address,omitempty"`
	Orders    []hotelOrderSummaryPayload `json:"orders"`
}

type hotelOrdersReportPayload struct {
	Date       string                    `json:"date"`
	Hotels     []hotelOrdersGroupPayload `json:"hotels"`
	OrderCount int                       `json:"order_count"`
}

type fillingHotelPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fillingRowPayload struct {
	ProductID  string             `json:"product_id"`
	Name       string             `json:"name"`
	Unit       string             `json:"unit"`
	Quantities map[string]float64 `json:"quantities"`
	Total      float64            `json:"total"`
}

type fillingMatrixPayload struct {
	Date   string                `json:"date"`
	Hotels []fillingHotelPayload `json:"hotels"`
	Rows   []fillingRowPayload   `json:"rows"`
}

func buildVegetableReportPayload(report domain.VegetableReport) vegetableReportPayload {
	totals := make([]vegetableTotalPayload, 0, len(report.Totals))
	for _, total := range report.Totals {
		totals = append(totals, vegetableTotalPayload{
			ProductID:     total.ProductID,
			Name:          total.Name,
			Unit:          total.Unit,
			Category:      total.Category,
			TotalQuantity: total.TotalQuantity,
			OrderCount:    total.OrderCount,
		})
	}
	categoryTotals := report.CategoryTotals
	if categoryTotals == nil {
		categoryTotals = map[string]float64{}
	}
	return vegetableReportPayload{
		Date:           report.Date,
		Totals:         totals,
		CategoryTotals: categoryTotals,
		OrderCount:     report.OrderCount,
	}
}

func buildHotelOrdersReportPayload(report domain.HotelOrdersReport) hotelOrdersReportPayload {
	groups := make([]hotelOrdersGroupPayload, 0, len(report.Hotels))
	for _, group := range report.Hotels {
		orders := make([]hotelOrderSummaryPayload, 0, len(group.Orders))
		for _, order := range group.Orders {
			items := make([]hotelOrderLinePayload, 0, len(order.Items))
			for _, item := range order.Items {
				items = append(items, hotelOrderLinePayload{
					ProductID: item.ProductID,
					Name:      item.Name,
					Quantity:  item.Quantity,
					Unit:      item.Unit,
				})
			}
			orders = append(orders, hotelOrderSummaryPayload{
				OrderID:             order.OrderID,
				Status:              string(order.Status),
				SpecialInstructions: order.SpecialInstructions,
				Items:               items,
			})
		}
		groups = append(groups, hotelOrdersGroupPayload{
			HotelID:   group.HotelID,
			HotelName: group.HotelName,
			Phone:     group.Phone,
			Address:   group.Address,
			Orders:    orders,
		})
	}
	return hotelOrdersReportPayload{
		Date:       report.Date,
		Hotels:     groups,
		OrderCount: report.OrderCount,
	}
}

func buildFillingMatrixPayload(matrix domain.FillingMatrix) fillingMatrixPayload {
	hotels := make([]fillingHotelPayload, 0, len(matrix.Hotels))
	for _, hotel := range matrix.Hotels {
		hotels = append(hotels, fillingHotelPayload{ID: hotel.ID, Name: hotel.Name})
	}
	rows := make([]fillingRowPayload, 0, len(matrix.Rows))
	for _, row := range matrix.Rows {
		quantities := row.Quantities
		if quantities == nil {
			quantities = map[string]float64{}
		}
		rows = append(rows, fillingRowPayload{
			ProductID:  row.ProductID,
			Name:       row.Name,
			Unit:       row.Unit,
			Quantities: quantities,
			Total:      row.Total,
		})
	}
	return fillingMatrixPayload{
		Date:   matrix.Date,
		Hotels: hotels,
		Rows:   rows,
	}
}
