package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/repositories"
)

// Fallback metadata for items whose product record has gone missing.
const (
	fallbackProductName = "Unknown"
	fallbackUnit        = "kg"
	fallbackCategory    = "Other"
)

// FulfillmentServiceDeps bundles collaborators required to construct the fulfillment service.
type FulfillmentServiceDeps struct {
	Orders     repositories.OrderRepository
	Hotels     repositories.HotelRepository
	CutoffHour int
	Location   *time.Location
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type fulfillmentService struct {
	orders     repositories.OrderRepository
	hotels     repositories.HotelRepository
	cutoffHour int
	location   *time.Location
	clock      func() time.Time
	logger     func(context.Context, string, map[string]any)
}

// NewFulfillmentService wires dependencies into a concrete FulfillmentService
// implementation. The cutoff hour and location drive target-date selection:
// from the cutoff (supplier local time) onwards the views cover today's
// deliveries, the batch that closed overnight; before it they still cover
// tomorrow's, the batch currently accepting orders.
func NewFulfillmentService(deps FulfillmentServiceDeps) (FulfillmentService, error) {
	if deps.Orders == nil {
		return nil, errors.New("fulfillment service: order repository is required")
	}
	if deps.CutoffHour < 0 || deps.CutoffHour > 23 {
		return nil, fmt.Errorf("fulfillment service: cutoff hour %d out of range", deps.CutoffHour)
	}

	location := deps.Location
	if location == nil {
		location = time.UTC
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &fulfillmentService{
		orders:     deps.Orders,
		hotels:     deps.Hotels,
		cutoffHour: deps.CutoffHour,
		location:   location,
		clock:      clock,
		logger:     logger,
	}, nil
}

func (s *fulfillmentService) Vegetables(ctx context.Context, date string) (domain.VegetableReport, error) {
	targetDate, orders, err := s.ordersForDate(ctx, date)
	if err != nil {
		return domain.VegetableReport{}, err
	}

	totalsByProduct := make(map[string]*domain.VegetableTotal)
	categoryTotals := make(map[string]float64)
	for _, order := range orders {
		for _, item := range order.Items {
			total, ok := totalsByProduct[item.ProductID]
			if !ok {
				total = &domain.VegetableTotal{
					ProductID: item.ProductID,
					Name:      itemName(item),
					Unit:      itemUnit(item),
					Category:  itemCategory(item),
				}
				totalsByProduct[item.ProductID] = total
			}
			total.TotalQuantity += item.Quantity
			total.OrderCount++
			categoryTotals[total.Category] += item.Quantity
		}
	}

	totals := make([]domain.VegetableTotal, 0, len(totalsByProduct))
	for _, total := range totalsByProduct {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Category != totals[j].Category {
			return totals[i].Category < totals[j].Category
		}
		return totals[i].Name < totals[j].Name
	})

	return domain.VegetableReport{
		Date:           targetDate,
		Totals:         totals,
		CategoryTotals: categoryTotals,
		OrderCount:     len(orders),
	}, nil
}

func (s *fulfillmentService) HotelOrders(ctx context.Context, date string) (domain.HotelOrdersReport, error) {
	targetDate, orders, err := s.ordersForDate(ctx, date)
	if err != nil {
		return domain.HotelOrdersReport{}, err
	}

	groupsByHotel := make(map[string]*domain.HotelOrdersGroup)
	hotelIDs := make([]string, 0)
	for _, order := range orders {
		group, ok := groupsByHotel[order.HotelID]
		if !ok {
			group = &domain.HotelOrdersGroup{HotelID: order.HotelID}
			groupsByHotel[order.HotelID] = group
			hotelIDs = append(hotelIDs, order.HotelID)
		}

		summary := domain.HotelOrderSummary{
			OrderID:             order.ID,
			Status:              order.Status,
			SpecialInstructions: order.SpecialInstructions,
		}
		for _, item := range order.Items {
			summary.Items = append(summary.Items, domain.HotelOrderLine{
				ProductID: item.ProductID,
				Name:      itemName(item),
				Quantity:  item.Quantity,
				Unit:      itemUnit(item),
			})
		}
		group.Orders = append(group.Orders, summary)
	}

	s.attachHotelDetails(ctx, groupsByHotel, hotelIDs)

	groups := make([]domain.HotelOrdersGroup, 0, len(hotelIDs))
	for _, hotelID := range hotelIDs {
		groups = append(groups, *groupsByHotel[hotelID])
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].HotelName < groups[j].HotelName
	})

	return domain.HotelOrdersReport{
		Date:       targetDate,
		Hotels:     groups,
		OrderCount: len(orders),
	}, nil
}

func (s *fulfillmentService) Filling(ctx context.Context, date string) (domain.FillingMatrix, error) {
	targetDate, orders, err := s.ordersForDate(ctx, date)
	if err != nil {
		return domain.FillingMatrix{}, err
	}

	rowsByProduct := make(map[string]*domain.FillingRow)
	hotelSeen := make(map[string]bool)
	hotelIDs := make([]string, 0)
	for _, order := range orders {
		if !hotelSeen[order.HotelID] {
			hotelSeen[order.HotelID] = true
			hotelIDs = append(hotelIDs, order.HotelID)
		}
		for _, item := range order.Items {
			row, ok := rowsByProduct[item.ProductID]
			if !ok {
				row = &domain.FillingRow{
					ProductID:  item.ProductID,
					Name:       itemName(item),
					Unit:       itemUnit(item),
					Quantities: make(map[string]float64),
				}
				rowsByProduct[item.ProductID] = row
			}
			row.Quantities[order.HotelID] += item.Quantity
			row.Total += item.Quantity
		}
	}

	hotels := make([]domain.FillingHotel, 0, len(hotelIDs))
	names := s.hotelNames(ctx, hotelIDs)
	for _, hotelID := range hotelIDs {
		name := names[hotelID]
		if name == "" {
			name = hotelID
		}
		hotels = append(hotels, domain.FillingHotel{ID: hotelID, Name: name})
	}
	sort.Slice(hotels, func(i, j int) bool {
		return hotels[i].Name < hotels[j].Name
	})

	rows := make([]domain.FillingRow, 0, len(rowsByProduct))
	for _, row := range rowsByProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})

	return domain.FillingMatrix{
		Date:   targetDate,
		Hotels: hotels,
		Rows:   rows,
	}, nil
}

// ordersForDate resolves the target delivery date and returns the non-cancelled
// orders scheduled for it.
func (s *fulfillmentService) ordersForDate(ctx context.Context, date string) (string, []domain.Order, error) {
	targetDate := strings.TrimSpace(date)
	if targetDate == "" {
		targetDate = s.targetDate()
	} else {
		normalized, err := domain.NormalizeDate(targetDate)
		if err != nil {
			return "", nil, fmt.Errorf("%w: date %q", ErrOrderInvalidInput, date)
		}
		targetDate = normalized
	}

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return "", nil, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}

	selected := make([]domain.Order, 0)
	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		deliveryDay, err := domain.ParseFlexibleDate(order.DeliveryDate)
		if err != nil {
			// Orders written by older clients occasionally carry delivery
			// dates in formats the tolerant parser still cannot read.
			s.logger(ctx, "fulfillment.order.date.unparseable", map[string]any{
				"order": order.ID,
				"date":  order.DeliveryDate,
			})
			continue
		}
		if deliveryDay.Format(domain.DateLayout) == targetDate {
			selected = append(selected, order)
		}
	}
	return targetDate, selected, nil
}

// targetDate applies the cutoff rule in the supplier's local time. At or after
// the cutoff hour the target is today's delivery; before it, tomorrow's.
func (s *fulfillmentService) targetDate() string {
	now := s.clock().In(s.location)
	if now.Hour() < s.cutoffHour {
		now = now.AddDate(0, 0, 1)
	}
	return now.Format(domain.DateLayout)
}

func (s *fulfillmentService) attachHotelDetails(ctx context.Context, groups map[string]*domain.HotelOrdersGroup, hotelIDs []string) {
	if s.hotels == nil {
		for _, group := range groups {
			group.HotelName = group.HotelID
		}
		return
	}

	hotels, err := s.hotels.FindByIDs(ctx, hotelIDs)
	if err != nil {
		s.logger(ctx, "fulfillment.hotel.lookup.failed", map[string]any{
			"error": err.Error(),
		})
		hotels = nil
	}
	for hotelID, group := range groups {
		if hotel, ok := hotels[hotelID]; ok {
			group.HotelName = hotel.HotelName
			group.Phone = hotel.Phone
			group.Address = hotel.Address
		} else {
			group.HotelName = hotelID
		}
	}
}

func (s *fulfillmentService) hotelNames(ctx context.Context, hotelIDs []string) map[string]string {
	names := make(map[string]string, len(hotelIDs))
	if s.hotels == nil || len(hotelIDs) == 0 {
		return names
	}
	hotels, err := s.hotels.FindByIDs(ctx, hotelIDs)
	if err != nil {
		s.logger(ctx, "fulfillment.hotel.lookup.failed", map[string]any{
			"error": err.Error(),
		})
		return names
	}
	for hotelID, hotel := range hotels {
		names[hotelID] = hotel.HotelName
	}
	return names
}

func itemName(item domain.OrderItem) string {
	if item.ProductName != "" {
		return item.ProductName
	}
	return fallbackProductName
}

func itemUnit(item domain.OrderItem) string {
	if item.Unit != "" {
		return item.Unit
	}
	return fallbackUnit
}

func itemCategory(item domain.OrderItem) string {
	if item.Category != "" {
		return item.Category
	}
	return fallbackCategory
}
