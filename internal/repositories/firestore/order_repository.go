package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/bvs-supply/api/internal/domain"
	pfirestore "github.com/bvs-supply/api/internal/platform/firestore"
	"github.com/bvs-supply/api/internal/repositories"
)

const (
	orderCollection     = "orders"
	orderItemCollection = "order_items"
	billCollectionName  = "bills"
)

type orderDocument struct {
	HotelID             string     `firestore:"user_id"`
	OrderDate           string     `firestore:"order_date"`
	DeliveryDate        string     `firestore:"delivery_date"`
	Status              string     `firestore:"status"`
	PricingStatus       string     `firestore:"pricing_status"`
	TotalAmount         float64    `firestore:"total_amount"`
	SpecialInstructions string     `firestore:"special_instructions"`
	PriceFinalizedAt    *time.Time `firestore:"price_finalized_at,omitempty"`
	CreatedAt           time.Time  `firestore:"created_at"`
	UpdatedAt           time.Time  `firestore:"updated_at"`
}

type orderItemDocument struct {
	ProductID    string   `firestore:"product_id"`
	ProductName  string   `firestore:"product_name"`
	Quantity     float64  `firestore:"quantity"`
	Unit         string   `firestore:"unit"`
	Category     string   `firestore:"category"`
	PriceAtOrder *float64 `firestore:"price_at_order"`
	Subtotal     float64  `firestore:"subtotal"`
}

// OrderRepository persists orders and their line items in Firestore. Line
// items live in an order_items sub-collection under each order document.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil, nil)
	return &OrderRepository{base: base, provider: provider}, nil
}

// Insert writes the order header and its line items in one transaction.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.provider == nil {
		return errors.New("order repository not initialised")
	}
	if order.ID <= 0 {
		return errors.New("order id is required")
	}

	doc := fromDomainOrder(order)
	items := make(map[string]orderItemDocument, len(order.Items))
	for i, item := range order.Items {
		itemID := item.ItemID
		if itemID == "" {
			itemID = fmt.Sprintf("item_%d", i)
		}
		items[itemID] = fromDomainOrderItem(item)
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		orderRef, err := r.base.DocumentRef(ctx, formatOrderID(order.ID))
		if err != nil {
			return err
		}
		if err := tx.Create(orderRef, doc); err != nil {
			return err
		}
		for itemID, itemDoc := range items {
			if err := tx.Create(orderRef.Collection(orderItemCollection).Doc(itemID), itemDoc); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the order header and its line items.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	if r == nil || r.provider == nil {
		return errors.New("order repository not initialised")
	}

	orderRef, err := r.base.DocumentRef(ctx, formatOrderID(orderID))
	if err != nil {
		return err
	}
	itemRefs, err := orderRef.Collection(orderItemCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return pfirestore.WrapError("orders.delete", err)
	}

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, ref := range itemRefs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return tx.Delete(orderRef)
	})
}

// FindByID returns the order including its line items.
func (r *OrderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	doc, err := r.base.Get(ctx, formatOrderID(orderID))
	if err != nil {
		return domain.Order{}, err
	}

	order := toDomainOrder(orderID, doc.Data)
	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

// ListByHotel returns a hotel's orders without items, newest first.
func (r *OrderRepository) ListByHotel(ctx context.Context, hotelID string) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return nil, errors.New("hotel id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("user_id", "==", trimmed)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, toDomainOrder(parseOrderID(doc.ID), doc.Data))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// ListPendingPricing returns unpriced orders with items, oldest first.
func (r *OrderRepository) ListPendingPricing(ctx context.Context) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("pricing_status", "==", string(domain.PricingStatusPending))
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order := toDomainOrder(parseOrderID(doc.ID), doc.Data)
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

// ListAll returns every order with items. Backing the delivery-day views with
// a full scan keeps parity with the stored data until a per-date index exists.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order := toDomainOrder(parseOrderID(doc.ID), doc.Data)
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus sets the order status and updated_at.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, newStatus domain.OrderStatus, now time.Time) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}

	_, err := r.base.Update(ctx, formatOrderID(orderID), []firestore.Update{
		{Path: "status", Value: string(newStatus)},
		{Path: "updated_at", Value: now.UTC()},
	})
	return err
}

// FinalizePrices applies item prices, the order total and status, and the
// bill total inside one transaction. The pending pricing precondition is
// re-checked on the transactional read, so a concurrent finalization aborts
// with a conflict.
func (r *OrderRepository) FinalizePrices(ctx context.Context, update repositories.FinalizePricesUpdate) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	var finalized domain.Order

	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		orderRef, err := r.base.DocumentRef(ctx, formatOrderID(update.OrderID))
		if err != nil {
			return err
		}

		orderSnap, err := tx.Get(orderRef)
		if err != nil {
			return err
		}
		var orderDoc orderDocument
		if err := orderSnap.DataTo(&orderDoc); err != nil {
			return fmt.Errorf("firestore orders decode %d: %w", update.OrderID, err)
		}
		if orderDoc.PricingStatus != string(domain.PricingStatusPending) {
			return status.Errorf(codes.FailedPrecondition, "order %d pricing already %s", update.OrderID, orderDoc.PricingStatus)
		}

		itemQuery := orderRef.Collection(orderItemCollection).Query
		itemSnaps, err := tx.Documents(itemQuery).GetAll()
		if err != nil {
			return err
		}

		client, err := r.provider.Client(ctx)
		if err != nil {
			return err
		}
		billRef := client.Collection(billCollectionName).Doc(strconv.FormatInt(update.BillID, 10))
		if _, err := tx.Get(billRef); err != nil {
			return err
		}

		now := update.FinalizedAt.UTC()
		var total float64
		items := make([]domain.OrderItem, 0, len(itemSnaps))
		for _, snap := range itemSnaps {
			var itemDoc orderItemDocument
			if err := snap.DataTo(&itemDoc); err != nil {
				return fmt.Errorf("firestore order items decode %s: %w", snap.Ref.ID, err)
			}
			price, ok := update.ItemPrices[snap.Ref.ID]
			if !ok {
				return status.Errorf(codes.FailedPrecondition, "order %d item %s has no price", update.OrderID, snap.Ref.ID)
			}
			subtotal := price * itemDoc.Quantity
			total += subtotal

			if err := tx.Update(snap.Ref, []firestore.Update{
				{Path: "price_at_order", Value: price},
				{Path: "subtotal", Value: subtotal},
			}); err != nil {
				return err
			}

			item := toDomainOrderItem(snap.Ref.ID, itemDoc)
			itemPrice := price
			item.PriceAtOrder = &itemPrice
			item.Subtotal = subtotal
			items = append(items, item)
		}

		if err := tx.Update(orderRef, []firestore.Update{
			{Path: "total_amount", Value: total},
			{Path: "status", Value: string(update.NewStatus)},
			{Path: "pricing_status", Value: string(domain.PricingStatusFinalized)},
			{Path: "price_finalized_at", Value: now},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return err
		}

		if err := tx.Update(billRef, []firestore.Update{
			{Path: "total_amount", Value: total},
			{Path: "status", Value: string(update.BillStatus)},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return err
		}

		finalized = toDomainOrder(update.OrderID, orderDoc)
		finalized.TotalAmount = total
		finalized.Status = update.NewStatus
		finalized.PricingStatus = domain.PricingStatusFinalized
		finalized.PriceFinalizedAt = &now
		finalized.UpdatedAt = now
		sortOrderItems(items)
		finalized.Items = items
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return finalized, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	orderRef, err := r.base.DocumentRef(ctx, formatOrderID(orderID))
	if err != nil {
		return nil, err
	}

	iter := orderRef.Collection(orderItemCollection).Documents(ctx)
	defer iter.Stop()

	var items []domain.OrderItem
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("orders.items", err)
		}
		var doc orderItemDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore order items decode %s: %w", snap.Ref.ID, err)
		}
		items = append(items, toDomainOrderItem(snap.Ref.ID, doc))
	}
	sortOrderItems(items)
	return items, nil
}

// sortOrderItems orders item_0, item_1, ... numerically; ids without the
// numeric suffix fall back to lexical order at the end.
func sortOrderItems(items []domain.OrderItem) {
	sort.Slice(items, func(i, j int) bool {
		a, aOK := itemIndex(items[i].ItemID)
		b, bOK := itemIndex(items[j].ItemID)
		if aOK && bOK {
			return a < b
		}
		if aOK != bOK {
			return aOK
		}
		return items[i].ItemID < items[j].ItemID
	})
}

func itemIndex(itemID string) (int, bool) {
	suffix, found := strings.CutPrefix(itemID, "item_")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatOrderID(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

func parseOrderID(docID string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(docID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func fromDomainOrder(order domain.Order) orderDocument {
	return orderDocument{
		HotelID:             strings.TrimSpace(order.HotelID),
		OrderDate:           order.OrderDate,
		DeliveryDate:        order.DeliveryDate,
		Status:              string(order.Status),
		PricingStatus:       string(order.PricingStatus),
		TotalAmount:         order.TotalAmount,
		SpecialInstructions: strings.TrimSpace(order.SpecialInstructions),
		PriceFinalizedAt:    order.PriceFinalizedAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

func toDomainOrder(orderID int64, doc orderDocument) domain.Order {
	return domain.Order{
		ID:                  orderID,
		HotelID:             doc.HotelID,
		OrderDate:           doc.OrderDate,
		DeliveryDate:        doc.DeliveryDate,
		Status:              domain.OrderStatus(doc.Status),
		PricingStatus:       domain.PricingStatus(doc.PricingStatus),
		TotalAmount:         doc.TotalAmount,
		SpecialInstructions: doc.SpecialInstructions,
		PriceFinalizedAt:    doc.PriceFinalizedAt,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func fromDomainOrderItem(item domain.OrderItem) orderItemDocument {
	return orderItemDocument{
		ProductID:    strings.TrimSpace(item.ProductID),
		ProductName:  strings.TrimSpace(item.ProductName),
		Quantity:     item.Quantity,
		Unit:         strings.TrimSpace(item.Unit),
		Category:     strings.TrimSpace(item.Category),
		PriceAtOrder: item.PriceAtOrder,
		Subtotal:     item.Subtotal,
	}
}

func toDomainOrderItem(itemID string, doc orderItemDocument) domain.OrderItem {
	return domain.OrderItem{
		ItemID:       itemID,
		ProductID:    doc.ProductID,
		ProductName:  doc.ProductName,
		Quantity:     doc.Quantity,
		Unit:         doc.Unit,
		Category:     doc.Category,
		PriceAtOrder: doc.PriceAtOrder,
		Subtotal:     doc.Subtotal,
	}
}
