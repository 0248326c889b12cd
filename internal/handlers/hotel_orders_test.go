package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/platform/requestctx"
	"github.com/bvs-supply/api/internal/services"
)

type stubOrderService struct {
	submitFn      func(context.Context, services.SubmitOrderCommand) (services.SubmitOrderResult, error)
	getFn         func(context.Context, string, int64) (domain.Order, error)
	listByHotelFn func(context.Context, string) ([]domain.Order, error)
	listPendingFn func(context.Context) ([]domain.Order, error)
	finalizeFn    func(context.Context, services.FinalizePricesCommand) (services.FinalizeResult, error)
	setStatusFn   func(context.Context, int64, domain.OrderStatus) (domain.Order, error)
}

func (s *stubOrderService) Submit(ctx context.Context, cmd services.SubmitOrderCommand) (services.SubmitOrderResult, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, cmd)
	}
	return services.SubmitOrderResult{}, errors.New("not implemented")
}

func (s *stubOrderService) GetOrder(ctx context.Context, hotelID string, orderID int64) (domain.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, hotelID, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) ListByHotel(ctx context.Context, hotelID string) ([]domain.Order, error) {
	if s.listByHotelFn != nil {
		return s.listByHotelFn(ctx, hotelID)
	}
	return nil, nil
}

func (s *stubOrderService) ListPendingPricing(ctx context.Context) ([]domain.Order, error) {
	if s.listPendingFn != nil {
		return s.listPendingFn(ctx)
	}
	return nil, nil
}

func (s *stubOrderService) FinalizePrices(ctx context.Context, cmd services.FinalizePricesCommand) (services.FinalizeResult, error) {
	if s.finalizeFn != nil {
		return s.finalizeFn(ctx, cmd)
	}
	return services.FinalizeResult{}, errors.New("not implemented")
}

func (s *stubOrderService) SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, orderID, status)
	}
	return domain.Order{}, errors.New("not implemented")
}

type stubBillingService struct {
	listByHotelFn   func(context.Context, string) ([]domain.Bill, error)
	getByOrderFn    func(context.Context, int64) (domain.Bill, error)
	recordPaymentFn func(context.Context, int64, services.PaymentUpdate) (domain.Bill, error)
}

func (s *stubBillingService) ListByHotel(ctx context.Context, hotelID string) ([]domain.Bill, error) {
	if s.listByHotelFn != nil {
		return s.listByHotelFn(ctx, hotelID)
	}
	return nil, nil
}

func (s *stubBillingService) GetByOrder(ctx context.Context, orderID int64) (domain.Bill, error) {
	if s.getByOrderFn != nil {
		return s.getByOrderFn(ctx, orderID)
	}
	return domain.Bill{}, errors.New("not implemented")
}

func (s *stubBillingService) RecordPayment(ctx context.Context, billID int64, update services.PaymentUpdate) (domain.Bill, error) {
	if s.recordPaymentFn != nil {
		return s.recordPaymentFn(ctx, billID, update)
	}
	return domain.Bill{}, errors.New("not implemented")
}

func newHotelRouter(orders services.OrderService, bills services.BillingService) chi.Router {
	handler := NewHotelHandlers(orders, bills)
	router := chi.NewRouter()
	handler.Routes(router)
	return router
}

func withHotelIdentity(r *http.Request, hotelID string) *http.Request {
	ctx := requestctx.WithIdentity(r.Context(), requestctx.Identity{HotelID: hotelID})
	return r.WithContext(ctx)
}

func TestSubmitOrderReturnsCreatedOrderAndBill(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

	var captured services.SubmitOrderCommand
	orders := &stubOrderService{
		submitFn: func(_ context.Context, cmd services.SubmitOrderCommand) (services.SubmitOrderResult, error) {
			captured = cmd
			return services.SubmitOrderResult{
				Order: domain.Order{
					ID:            101,
					HotelID:       cmd.HotelID,
					OrderDate:     "2024-03-05",
					DeliveryDate:  "2024-03-06",
					Status:        domain.OrderStatusPending,
					PricingStatus: domain.PricingStatusPending,
					CreatedAt:     now,
					UpdatedAt:     now,
					Items: []domain.OrderItem{
						{ItemID: "item_0", ProductID: "tomato", ProductName: "Tomato", Quantity: 5, Unit: "kg"},
					},
				},
				Bill: domain.Bill{
					ID:       201,
					OrderID:  101,
					HotelID:  cmd.HotelID,
					BillDate: "2024-03-05",
					DueDate:  "2024-03-15",
					Status:   domain.BillStatusDraft,
				},
			}, nil
		},
	}

	router := newHotelRouter(orders, &stubBillingService{})

	body := bytes.NewBufferString(`{
		"delivery_date": "2024-03-06",
		"special_instructions": "before 7am",
		"items": [{"product_id": "tomato", "quantity": 5}]
	}`)
	req := withHotelIdentity(httptest.NewRequest(http.MethodPost, "/orders", body), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.HotelID != "hotel-1" || captured.SpecialInstructions != "before 7am" {
		t.Fatalf("unexpected command %+v", captured)
	}

	var resp submitOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Order.OrderID != 101 || resp.Order.Status != "pending" {
		t.Fatalf("unexpected order payload %+v", resp.Order)
	}
	if resp.Bill.BillID != 201 || resp.Bill.Status != "draft" {
		t.Fatalf("unexpected bill payload %+v", resp.Bill)
	}
}

func TestSubmitOrderRequiresIdentityHeader(t *testing.T) {
	router := newHotelRouter(&stubOrderService{}, &stubBillingService{})

	body := bytes.NewBufferString(`{"delivery_date": "2024-03-06", "items": [{"product_id": "tomato", "quantity": 5}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSubmitOrderThrottlesPerHotel(t *testing.T) {
	orders := &stubOrderService{
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmitOrderResult, error) {
			return services.SubmitOrderResult{}, nil
		},
	}
	handler := NewHotelHandlers(orders, &stubBillingService{}, WithSubmitRateLimit(1, time.Minute))
	router := chi.NewRouter()
	handler.Routes(router)

	submit := func(hotelID string) int {
		body := bytes.NewBufferString(`{"delivery_date": "2024-03-06", "items": [{"product_id": "tomato", "quantity": 5}]}`)
		req := withHotelIdentity(httptest.NewRequest(http.MethodPost, "/orders", body), hotelID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := submit("hotel-1"); code != http.StatusCreated {
		t.Fatalf("expected first submission to pass, got %d", code)
	}
	if code := submit("hotel-1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second submission to be throttled, got %d", code)
	}
	// Another hotel has its own budget.
	if code := submit("hotel-2"); code != http.StatusCreated {
		t.Fatalf("expected other hotel to pass, got %d", code)
	}
}

func TestSubmitOrderMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: services.ErrOrderInvalidInput, want: http.StatusBadRequest},
		{name: "unknown product", err: services.ErrProductNotFound, want: http.StatusBadRequest},
		{name: "unavailable product", err: services.ErrProductUnavailable, want: http.StatusConflict},
		{name: "store outage", err: services.ErrStoreUnavailable, want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &stubOrderService{
				submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmitOrderResult, error) {
					return services.SubmitOrderResult{}, tc.err
				},
			}
			router := newHotelRouter(orders, &stubBillingService{})

			body := bytes.NewBufferString(`{"delivery_date": "2024-03-06", "items": [{"product_id": "tomato", "quantity": 5}]}`)
			req := withHotelIdentity(httptest.NewRequest(http.MethodPost, "/orders", body), "hotel-1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSubmitOrderRejectsEmptyBody(t *testing.T) {
	router := newHotelRouter(&stubOrderService{}, &stubBillingService{})

	req := withHotelIdentity(httptest.NewRequest(http.MethodPost, "/orders", nil), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetOrderReturnsOrder(t *testing.T) {
	orders := &stubOrderService{
		getFn: func(_ context.Context, hotelID string, orderID int64) (domain.Order, error) {
			if hotelID != "hotel-1" {
				t.Fatalf("unexpected hotel id %q", hotelID)
			}
			return domain.Order{ID: orderID, HotelID: hotelID, Status: domain.OrderStatusConfirmed}, nil
		},
	}
	router := newHotelRouter(orders, &stubBillingService{})

	req := withHotelIdentity(httptest.NewRequest(http.MethodGet, "/orders/42", nil), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Order.OrderID != 42 || resp.Order.Status != "confirmed" {
		t.Fatalf("unexpected payload %+v", resp.Order)
	}
}

func TestGetOrderRejectsNonNumericID(t *testing.T) {
	router := newHotelRouter(&stubOrderService{}, &stubBillingService{})

	req := withHotelIdentity(httptest.NewRequest(http.MethodGet, "/orders/abc", nil), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetOrderMapsNotFound(t *testing.T) {
	orders := &stubOrderService{
		getFn: func(context.Context, string, int64) (domain.Order, error) {
			return domain.Order{}, services.ErrOrderNotFound
		},
	}
	router := newHotelRouter(orders, &stubBillingService{})

	req := withHotelIdentity(httptest.NewRequest(http.MethodGet, "/orders/42", nil), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListBillsReturnsHotelBills(t *testing.T) {
	bills := &stubBillingService{
		listByHotelFn: func(_ context.Context, hotelID string) ([]domain.Bill, error) {
			return []domain.Bill{
				{ID: 201, OrderID: 101, HotelID: hotelID, Status: domain.BillStatusFinalized, TotalAmount: 260},
			}, nil
		},
	}
	router := newHotelRouter(&stubOrderService{}, bills)

	req := withHotelIdentity(httptest.NewRequest(http.MethodGet, "/bills", nil), "hotel-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp billListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Bills) != 1 || resp.Bills[0].TotalAmount != 260 {
		t.Fatalf("unexpected bills %+v", resp.Bills)
	}
}
