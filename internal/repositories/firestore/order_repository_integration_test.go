//go:build integration

package firestore

import (
	"context"
	"testing"
	"time"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/repositories"
)

func TestOrderRepositoryIntegration(t *testing.T) {
	provider := emulatorProvider(t, "order-test")

	orders, err := NewOrderRepository(provider)
	if err != nil {
		t.Fatalf("new order repository: %v", err)
	}
	bills, err := NewBillRepository(provider)
	if err != nil {
		t.Fatalf("new bill repository: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	order := domain.Order{
		ID:            101,
		HotelID:       "hotel-1",
		OrderDate:     "2024-03-05",
		DeliveryDate:  "2024-03-06",
		Status:        domain.OrderStatusPending,
		PricingStatus: domain.PricingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items: []domain.OrderItem{
			{ItemID: "item_0", ProductID: "tomato", ProductName: "Tomato", Quantity: 5, Unit: "kg", Category: "Vegetables"},
			{ItemID: "item_1", ProductID: "onion", ProductName: "Onion", Quantity: 2, Unit: "kg", Category: "Vegetables"},
		},
	}
	if err := orders.Insert(ctx, order); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	bill := domain.Bill{
		ID:        201,
		OrderID:   101,
		HotelID:   "hotel-1",
		BillDate:  "2024-03-05",
		DueDate:   "2024-03-15",
		Status:    domain.BillStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := bills.Insert(ctx, bill); err != nil {
		t.Fatalf("insert bill: %v", err)
	}

	loaded, err := orders.FindByID(ctx, 101)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(loaded.Items) != 2 || loaded.Items[0].ItemID != "item_0" {
		t.Fatalf("unexpected items %+v", loaded.Items)
	}
	if loaded.PricingStatus != domain.PricingStatusPending {
		t.Fatalf("unexpected pricing status %s", loaded.PricingStatus)
	}

	pending, err := orders.ListPendingPricing(ctx)
	if err != nil {
		t.Fatalf("list pending pricing: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 101 {
		t.Fatalf("unexpected pending orders %+v", pending)
	}

	finalizedAt := now.Add(2 * time.Hour)
	finalized, err := orders.FinalizePrices(ctx, repositories.FinalizePricesUpdate{
		OrderID:     101,
		BillID:      201,
		ItemPrices:  map[string]float64{"item_0": 40, "item_1": 30},
		FinalizedAt: finalizedAt,
		NewStatus:   domain.OrderStatusConfirmed,
		BillStatus:  domain.BillStatusFinalized,
	})
	if err != nil {
		t.Fatalf("finalize prices: %v", err)
	}
	if finalized.TotalAmount != 5*40+2*30 {
		t.Fatalf("unexpected total %f", finalized.TotalAmount)
	}
	if finalized.Status != domain.OrderStatusConfirmed || finalized.PricingStatus != domain.PricingStatusFinalized {
		t.Fatalf("unexpected state %s/%s", finalized.Status, finalized.PricingStatus)
	}

	updatedBill, err := bills.FindByID(ctx, 201)
	if err != nil {
		t.Fatalf("find bill: %v", err)
	}
	if updatedBill.TotalAmount != finalized.TotalAmount || updatedBill.Status != domain.BillStatusFinalized {
		t.Fatalf("bill not updated with order: %+v", updatedBill)
	}

	// A second finalize must fail: pricing is already locked.
	_, err = orders.FinalizePrices(ctx, repositories.FinalizePricesUpdate{
		OrderID:     101,
		BillID:      201,
		ItemPrices:  map[string]float64{"item_0": 99, "item_1": 99},
		FinalizedAt: finalizedAt,
		NewStatus:   domain.OrderStatusConfirmed,
		BillStatus:  domain.BillStatusFinalized,
	})
	if err == nil {
		t.Fatal("expected second finalize to fail")
	}

	if err := orders.Delete(ctx, 101); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := orders.FindByID(ctx, 101); err == nil {
		t.Fatal("expected deleted order to be gone")
	}
}
