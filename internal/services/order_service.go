package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/repositories"
)

const (
	orderEventSubmitted       = "order.submitted"
	orderEventPricesFinalized = "order.prices.finalized"
	orderEventStatusChanged   = "order.status.changed"
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Bills       repositories.BillRepository
	Products    repositories.ProductRepository
	Hotels      repositories.HotelRepository
	Counters    CounterService
	Events      OrderEventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	BillDueDays int
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders      repositories.OrderRepository
	bills       repositories.BillRepository
	products    repositories.ProductRepository
	hotels      repositories.HotelRepository
	counters    CounterService
	events      OrderEventPublisher
	clock       func() time.Time
	newID       func() string
	billDueDays int
	logger      func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Bills == nil {
		return nil, errors.New("order service: bill repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("order service: counter service is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	dueDays := deps.BillDueDays
	if dueDays <= 0 {
		dueDays = 10
	}

	return &orderService{
		orders:   deps.Orders,
		bills:    deps.Bills,
		products: deps.Products,
		hotels:   deps.Hotels,
		counters: deps.Counters,
		events:   deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:       idGen,
		billDueDays: dueDays,
		logger:      logger,
	}, nil
}

func (s *orderService) Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error) {
	hotelID := strings.TrimSpace(cmd.HotelID)
	if hotelID == "" {
		return SubmitOrderResult{}, fmt.Errorf("%w: hotel id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return SubmitOrderResult{}, fmt.Errorf("%w: order must contain at least one item", ErrOrderInvalidInput)
	}

	deliveryDate, err := domain.NormalizeDate(cmd.DeliveryDate)
	if err != nil {
		return SubmitOrderResult{}, fmt.Errorf("%w: delivery date %q", ErrOrderInvalidInput, cmd.DeliveryDate)
	}

	productIDs := make([]string, 0, len(cmd.Items))
	for i, item := range cmd.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return SubmitOrderResult{}, fmt.Errorf("%w: item %d has no product id", ErrOrderInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return SubmitOrderResult{}, fmt.Errorf("%w: item %d quantity must be positive", ErrOrderInvalidInput, i)
		}
		productIDs = append(productIDs, productID)
	}

	// Validate the whole order before touching any counter so a rejected
	// submission consumes no sequence values.
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return SubmitOrderResult{}, mapRepositoryError(err, ErrProductNotFound, ErrOrderStateConflict)
	}
	for _, productID := range productIDs {
		product, ok := products[productID]
		if !ok {
			return SubmitOrderResult{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		if !product.IsAvailable {
			return SubmitOrderResult{}, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
	}

	now := s.now()
	orderDate := now.Format(domain.DateLayout)

	dueDate := strings.TrimSpace(cmd.DueDate)
	if dueDate != "" {
		if dueDate, err = domain.NormalizeDate(dueDate); err != nil {
			return SubmitOrderResult{}, fmt.Errorf("%w: due date %q", ErrOrderInvalidInput, cmd.DueDate)
		}
	} else {
		dueDate = now.AddDate(0, 0, s.billDueDays).Format(domain.DateLayout)
	}

	hotelName := s.lookupHotelName(ctx, hotelID)

	orderID, err := s.counters.Next(ctx, CounterOrders)
	if err != nil {
		return SubmitOrderResult{}, err
	}
	billID, err := s.counters.Next(ctx, CounterBills)
	if err != nil {
		return SubmitOrderResult{}, err
	}

	order := domain.Order{
		ID:                  orderID,
		HotelID:             hotelID,
		OrderDate:           orderDate,
		DeliveryDate:        deliveryDate,
		Status:              domain.OrderStatusPending,
		PricingStatus:       domain.PricingStatusPending,
		TotalAmount:         0,
		SpecialInstructions: strings.TrimSpace(cmd.SpecialInstructions),
		CreatedAt:           now,
		UpdatedAt:           now,
		Items:               buildOrderItems(cmd.Items, products),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return SubmitOrderResult{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}

	bill := domain.Bill{
		ID:          billID,
		OrderID:     orderID,
		HotelID:     hotelID,
		HotelName:   hotelName,
		BillDate:    orderDate,
		DueDate:     dueDate,
		TotalAmount: 0,
		Status:      domain.BillStatusDraft,
		Paid:        false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bills.Insert(ctx, bill); err != nil {
		// Roll the order back so no order exists without its bill. The
		// consumed bill sequence value stays burnt.
		if cleanupErr := s.orders.Delete(ctx, orderID); cleanupErr != nil {
			s.logger(ctx, "order.submit.cleanup.failed", map[string]any{
				"order": orderID,
				"error": cleanupErr.Error(),
			})
		}
		return SubmitOrderResult{}, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}

	s.publishEvent(ctx, OrderEventMessage{
		EventID:      s.newID(),
		EventType:    orderEventSubmitted,
		OrderID:      orderID,
		HotelID:      hotelID,
		DeliveryDate: deliveryDate,
		ItemCount:    len(order.Items),
		OccurredAt:   now,
	})

	return SubmitOrderResult{Order: order, Bill: bill}, nil
}

func (s *orderService) GetOrder(ctx context.Context, hotelID string, orderID int64) (domain.Order, error) {
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return domain.Order{}, fmt.Errorf("%w: hotel id is required", ErrOrderInvalidInput)
	}
	if orderID <= 0 {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}
	// Hotels only see their own orders.
	if order.HotelID != trimmed {
		return domain.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return order, nil
}

func (s *orderService) ListByHotel(ctx context.Context, hotelID string) ([]domain.Order, error) {
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: hotel id is required", ErrOrderInvalidInput)
	}

	orders, err := s.orders.ListByHotel(ctx, trimmed)
	if err != nil {
		return nil, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}
	return orders, nil
}

func (s *orderService) ListPendingPricing(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListPendingPricing(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}
	return orders, nil
}

func (s *orderService) FinalizePrices(ctx context.Context, cmd FinalizePricesCommand) (FinalizeResult, error) {
	if cmd.OrderID <= 0 {
		return FinalizeResult{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Prices) == 0 {
		return FinalizeResult{}, fmt.Errorf("%w: at least one price is required", ErrOrderInvalidInput)
	}

	priceByProduct := make(map[string]float64, len(cmd.Prices))
	for i, price := range cmd.Prices {
		productID := strings.TrimSpace(price.ProductID)
		if productID == "" {
			return FinalizeResult{}, fmt.Errorf("%w: price %d has no product id", ErrOrderInvalidInput, i)
		}
		if price.PricePerUnit <= 0 {
			return FinalizeResult{}, fmt.Errorf("%w: price for %s must be positive", ErrOrderInvalidInput, productID)
		}
		if _, dup := priceByProduct[productID]; dup {
			return FinalizeResult{}, fmt.Errorf("%w: duplicate price for %s", ErrOrderInvalidInput, productID)
		}
		priceByProduct[productID] = price.PricePerUnit
	}

	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return FinalizeResult{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}
	if order.PricingStatus != domain.PricingStatusPending {
		return FinalizeResult{}, fmt.Errorf("%w: order %d pricing already %s", ErrOrderStateConflict, cmd.OrderID, order.PricingStatus)
	}

	itemPrices := make(map[string]float64, len(order.Items))
	matched := make(map[string]bool, len(priceByProduct))
	for _, item := range order.Items {
		price, ok := priceByProduct[item.ProductID]
		if !ok {
			return FinalizeResult{}, fmt.Errorf("%w: item %s (%s) has no price", ErrOrderInvalidInput, item.ItemID, item.ProductID)
		}
		itemPrices[item.ItemID] = price
		matched[item.ProductID] = true
	}
	for productID := range priceByProduct {
		if !matched[productID] {
			return FinalizeResult{}, fmt.Errorf("%w: %s", ErrProductNotOnOrder, productID)
		}
	}

	bill, err := s.bills.FindByOrder(ctx, cmd.OrderID)
	if err != nil {
		return FinalizeResult{}, mapRepositoryError(err, ErrBillNotFound, ErrBillStateConflict)
	}

	now := s.now()
	finalized, err := s.orders.FinalizePrices(ctx, repositories.FinalizePricesUpdate{
		OrderID:     cmd.OrderID,
		BillID:      bill.ID,
		ItemPrices:  itemPrices,
		FinalizedAt: now,
		NewStatus:   domain.OrderStatusConfirmed,
		BillStatus:  domain.BillStatusFinalized,
	})
	if err != nil {
		return FinalizeResult{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}

	s.publishEvent(ctx, OrderEventMessage{
		EventID:      s.newID(),
		EventType:    orderEventPricesFinalized,
		OrderID:      finalized.ID,
		HotelID:      finalized.HotelID,
		DeliveryDate: finalized.DeliveryDate,
		ItemCount:    len(finalized.Items),
		OccurredAt:   now,
	})

	return FinalizeResult{Order: finalized, NewTotalAmount: finalized.TotalAmount}, nil
}

func (s *orderService) SetStatus(ctx context.Context, orderID int64, newStatus domain.OrderStatus) (domain.Order, error) {
	if orderID <= 0 {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !domain.ValidOrderStatus(newStatus) {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, newStatus)
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, orderID, newStatus, now); err != nil {
		return domain.Order{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, mapRepositoryError(err, ErrOrderNotFound, ErrOrderStateConflict)
	}

	s.publishEvent(ctx, OrderEventMessage{
		EventID:      s.newID(),
		EventType:    orderEventStatusChanged,
		OrderID:      orderID,
		HotelID:      order.HotelID,
		DeliveryDate: order.DeliveryDate,
		ItemCount:    len(order.Items),
		OccurredAt:   now,
	})

	return order, nil
}

func (s *orderService) lookupHotelName(ctx context.Context, hotelID string) string {
	if s.hotels == nil {
		return ""
	}
	hotel, err := s.hotels.FindByID(ctx, hotelID)
	if err != nil {
		s.logger(ctx, "order.submit.hotel.lookup.failed", map[string]any{
			"hotel": hotelID,
			"error": err.Error(),
		})
		return ""
	}
	return hotel.HotelName
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEventMessage) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":  event.EventType,
			"order": event.OrderID,
			"error": err.Error(),
		})
	}
}

func (s *orderService) now() time.Time {
	return s.clock()
}

func buildOrderItems(items []SubmitOrderItem, products map[string]domain.Product) []domain.OrderItem {
	built := make([]domain.OrderItem, 0, len(items))
	for i, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		product := products[productID]
		built = append(built, domain.OrderItem{
			ItemID:      fmt.Sprintf("item_%d", i),
			ProductID:   productID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Unit:        product.Unit,
			Category:    product.Category,
			Subtotal:    0,
		})
	}
	return built
}
