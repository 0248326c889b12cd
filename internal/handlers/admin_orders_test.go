package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/services"
)

type stubFulfillmentService struct {
	vegetablesFn  func(context.Context, string) (domain.VegetableReport, error)
	hotelOrdersFn func(context.Context, string) (domain.HotelOrdersReport, error)
	fillingFn     func(context.Context, string) (domain.FillingMatrix, error)
}

func (s *stubFulfillmentService) Vegetables(ctx context.Context, date string) (domain.VegetableReport, error) {
	if s.vegetablesFn != nil {
		return s.vegetablesFn(ctx, date)
	}
	return domain.VegetableReport{}, errors.New("not implemented")
}

func (s *stubFulfillmentService) HotelOrders(ctx context.Context, date string) (domain.HotelOrdersReport, error) {
	if s.hotelOrdersFn != nil {
		return s.hotelOrdersFn(ctx, date)
	}
	return domain.HotelOrdersReport{}, errors.New("not implemented")
}

func (s *stubFulfillmentService) Filling(ctx context.Context, date string) (domain.FillingMatrix, error) {
	if s.fillingFn != nil {
		return s.fillingFn(ctx, date)
	}
	return domain.FillingMatrix{}, errors.New("not implemented")
}

func newAdminRouter(orders services.OrderService, bills services.BillingService, fulfillment services.FulfillmentService) chi.Router {
	handler := NewAdminHandlers(orders, bills, fulfillment)
	router := chi.NewRouter()
	handler.Routes(router)
	return router
}

func TestListPendingPricingReturnsOrders(t *testing.T) {
	orders := &stubOrderService{
		listPendingFn: func(context.Context) ([]domain.Order, error) {
			return []domain.Order{
				{ID: 7, HotelID: "hotel-1", PricingStatus: domain.PricingStatusPending},
				{ID: 9, HotelID: "hotel-2", PricingStatus: domain.PricingStatusPending},
			}, nil
		},
	}
	router := newAdminRouter(orders, &stubBillingService{}, &stubFulfillmentService{})

	req := httptest.NewRequest(http.MethodGet, "/orders/pending-pricing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orderListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Orders) != 2 || resp.Orders[0].OrderID != 7 {
		t.Fatalf("unexpected orders %+v", resp.Orders)
	}
}

func TestFinalizePricesReturnsUpdatedOrder(t *testing.T) {
	var captured services.FinalizePricesCommand
	orders := &stubOrderService{
		finalizeFn: func(_ context.Context, cmd services.FinalizePricesCommand) (services.FinalizeResult, error) {
			captured = cmd
			return services.FinalizeResult{
				Order: domain.Order{
					ID:            cmd.OrderID,
					Status:        domain.OrderStatusConfirmed,
					PricingStatus: domain.PricingStatusFinalized,
					TotalAmount:   260,
				},
				NewTotalAmount: 260,
			}, nil
		},
	}
	router := newAdminRouter(orders, &stubBillingService{}, &stubFulfillmentService{})

	body := bytes.NewBufferString(`{"prices": [{"product_id": "tomato", "price_per_unit": 40}, {"product_id": "onion", "price_per_unit": 30}]}`)
	req := httptest.NewRequest(http.MethodPut, "/orders/7/finalize-prices", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.OrderID != 7 || len(captured.Prices) != 2 {
		t.Fatalf("unexpected command %+v", captured)
	}

	var resp finalizePricesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NewTotalAmount != 260 || resp.Order.PricingStatus != "prices_finalized" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestFinalizePricesMapsConflict(t *testing.T) {
	orders := &stubOrderService{
		finalizeFn: func(context.Context, services.FinalizePricesCommand) (services.FinalizeResult, error) {
			return services.FinalizeResult{}, services.ErrOrderStateConflict
		},
	}
	router := newAdminRouter(orders, &stubBillingService{}, &stubFulfillmentService{})

	body := bytes.NewBufferString(`{"prices": [{"product_id": "tomato", "price_per_unit": 40}]}`)
	req := httptest.NewRequest(http.MethodPut, "/orders/7/finalize-prices", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateStatusNormalisesInput(t *testing.T) {
	var capturedStatus domain.OrderStatus
	orders := &stubOrderService{
		setStatusFn: func(_ context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
			capturedStatus = status
			return domain.Order{ID: orderID, Status: status}, nil
		},
	}
	router := newAdminRouter(orders, &stubBillingService{}, &stubFulfillmentService{})

	body := bytes.NewBufferString(`{"status": " Dispatched "}`)
	req := httptest.NewRequest(http.MethodPut, "/orders/7/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedStatus != domain.OrderStatusDispatched {
		t.Fatalf("expected dispatched, got %q", capturedStatus)
	}
}

func TestRecordPaymentReturnsUpdatedBill(t *testing.T) {
	var captured services.PaymentUpdate
	bills := &stubBillingService{
		recordPaymentFn: func(_ context.Context, billID int64, update services.PaymentUpdate) (domain.Bill, error) {
			captured = update
			return domain.Bill{ID: billID, Status: update.Status, Paid: update.Status == domain.BillStatusPaid}, nil
		},
	}
	router := newAdminRouter(&stubOrderService{}, bills, &stubFulfillmentService{})

	body := bytes.NewBufferString(`{"status": "paid", "payment_method": "upi", "comments": "settled"}`)
	req := httptest.NewRequest(http.MethodPut, "/bills/201/payment", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Status != domain.BillStatusPaid || captured.PaymentMethod != "upi" {
		t.Fatalf("unexpected update %+v", captured)
	}

	var resp billResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Bill.Paid {
		t.Fatalf("expected paid bill, got %+v", resp.Bill)
	}
}

func TestRecordPaymentMapsDraftConflict(t *testing.T) {
	bills := &stubBillingService{
		recordPaymentFn: func(context.Context, int64, services.PaymentUpdate) (domain.Bill, error) {
			return domain.Bill{}, services.ErrBillStateConflict
		},
	}
	router := newAdminRouter(&stubOrderService{}, bills, &stubFulfillmentService{})

	body := bytes.NewBufferString(`{"status": "paid"}`)
	req := httptest.NewRequest(http.MethodPut, "/bills/201/payment", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestGetOrderBillMapsNotFound(t *testing.T) {
	bills := &stubBillingService{
		getByOrderFn: func(context.Context, int64) (domain.Bill, error) {
			return domain.Bill{}, services.ErrBillNotFound
		},
	}
	router := newAdminRouter(&stubOrderService{}, bills, &stubFulfillmentService{})

	req := httptest.NewRequest(http.MethodGet, "/orders/7/bill", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTodaysVegetablesUsesEmptyDate(t *testing.T) {
	var capturedDate string
	fulfillment := &stubFulfillmentService{
		vegetablesFn: func(_ context.Context, date string) (domain.VegetableReport, error) {
			capturedDate = date
			return domain.VegetableReport{
				Date: "2024-03-06",
				Totals: []domain.VegetableTotal{
					{ProductID: "tomato", Name: "Tomato", Unit: "kg", Category: "Vegetables", TotalQuantity: 8, OrderCount: 2},
				},
				CategoryTotals: map[string]float64{"Vegetables": 8},
				OrderCount:     2,
			}, nil
		},
	}
	router := newAdminRouter(&stubOrderService{}, &stubBillingService{}, fulfillment)

	req := httptest.NewRequest(http.MethodGet, "/todays-vegetables", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedDate != "" {
		t.Fatalf("expected empty date for cutoff selection, got %q", capturedDate)
	}

	var resp vegetableReportPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Date != "2024-03-06" || len(resp.Totals) != 1 || resp.Totals[0].TotalQuantity != 8 {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestVegetablesHistoryPassesExplicitDate(t *testing.T) {
	var capturedDate string
	fulfillment := &stubFulfillmentService{
		vegetablesFn: func(_ context.Context, date string) (domain.VegetableReport, error) {
			capturedDate = date
			return domain.VegetableReport{Date: date, CategoryTotals: map[string]float64{}}, nil
		},
	}
	router := newAdminRouter(&stubOrderService{}, &stubBillingService{}, fulfillment)

	req := httptest.NewRequest(http.MethodGet, "/vegetables-history?date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if capturedDate != "2024-03-01" {
		t.Fatalf("expected explicit date, got %q", capturedDate)
	}
}

func TestTodaysFillingReturnsMatrix(t *testing.T) {
	fulfillment := &stubFulfillmentService{
		fillingFn: func(context.Context, string) (domain.FillingMatrix, error) {
			return domain.FillingMatrix{
				Date: "2024-03-06",
				Hotels: []domain.FillingHotel{
					{ID: "hotel-1", Name: "Hotel Annapurna"},
				},
				Rows: []domain.FillingRow{
					{ProductID: "tomato", Name: "Tomato", Unit: "kg", Quantities: map[string]float64{"hotel-1": 5}, Total: 5},
				},
			}, nil
		},
	}
	router := newAdminRouter(&stubOrderService{}, &stubBillingService{}, fulfillment)

	req := httptest.NewRequest(http.MethodGet, "/todays-filling", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp fillingMatrixPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].Quantities["hotel-1"] != 5 {
		t.Fatalf("unexpected matrix %+v", resp)
	}
}

func TestTodaysHotelsOrdersRejectsBadDate(t *testing.T) {
	fulfillment := &stubFulfillmentService{
		hotelOrdersFn: func(context.Context, string) (domain.HotelOrdersReport, error) {
			return domain.HotelOrdersReport{}, services.ErrOrderInvalidInput
		},
	}
	router := newAdminRouter(&stubOrderService{}, &stubBillingService{}, fulfillment)

	req := httptest.NewRequest(http.MethodGet, "/hotels-orders-history?date=garbage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
