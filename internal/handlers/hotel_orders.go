package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bvs-supply/api/internal/platform/httpx"
	"github.com/bvs-supply/api/internal/platform/requestctx"
	"github.com/bvs-supply/api/internal/services"
)

type submitOrderRequest struct {
	DeliveryDate        string                   `json:"delivery_date"`
	SpecialInstructions string                   `json:"special_instructions"`
	DueDate             string                   `json:"due_date"`
	Items               []submitOrderItemRequest `json:"items"`
}

type submitOrderItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type submitOrderResponse struct {
	Order orderPayload `json:"order"`
	Bill  billPayload  `json:"bill"`
}

type orderListResponse struct {
	Orders []orderPayload `json:"orders"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type billListResponse struct {
	Bills []billPayload `json:"bills"`
}

// HotelHandlers exposes the hotel-facing order and bill endpoints. Callers are
// identified by the gateway headers; hotels only see their own records.
type HotelHandlers struct {
	orders        services.OrderService
	bills         services.BillingService
	submitLimiter rateLimiter
}

// HotelHandlerOption customises HotelHandlers behaviour.
type HotelHandlerOption func(*HotelHandlers)

// WithSubmitRateLimit throttles order submissions per hotel. A non-positive
// limit or window disables throttling.
func WithSubmitRateLimit(limit int, window time.Duration) HotelHandlerOption {
	return func(h *HotelHandlers) {
		h.submitLimiter = newSimpleRateLimiter(limit, window, time.Now)
	}
}

// NewHotelHandlers constructs a new HotelHandlers instance.
func NewHotelHandlers(orders services.OrderService, bills services.BillingService, opts ...HotelHandlerOption) *HotelHandlers {
	h := &HotelHandlers{
		orders: orders,
		bills:  bills,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the /hotel endpoints.
func (h *HotelHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/orders", h.submitOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Get("/bills", h.listBills)
}

func (h *HotelHandlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	hotelID, ok := hotelIdentity(ctx)
	if !ok {
		writeUnidentifiedCaller(ctx, w)
		return
	}

	if h.submitLimiter != nil && !h.submitLimiter.Allow(hotelID) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many order submissions; try again later", http.StatusTooManyRequests))
		return
	}

	var req submitOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	items := make([]services.SubmitOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.SubmitOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.orders.Submit(ctx, services.SubmitOrderCommand{
		HotelID:             hotelID,
		DeliveryDate:        req.DeliveryDate,
		SpecialInstructions: req.SpecialInstructions,
		DueDate:             req.DueDate,
		Items:               items,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, submitOrderResponse{
		Order: buildOrderPayload(result.Order),
		Bill:  buildBillPayload(result.Bill),
	})
}

func (h *HotelHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	hotelID, ok := hotelIdentity(ctx)
	if !ok {
		writeUnidentifiedCaller(ctx, w)
		return
	}

	orders, err := h.orders.ListByHotel(ctx, hotelID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderListResponse{Orders: buildOrderPayloads(orders)})
}

func (h *HotelHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	hotelID, ok := hotelIdentity(ctx)
	if !ok {
		writeUnidentifiedCaller(ctx, w)
		return
	}

	orderID, ok := parseIDParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, hotelID, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *HotelHandlers) listBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bills == nil {
		httpx.WriteError(ctx, w, httpx.NewError("billing_service_unavailable", "billing service unavailable", http.StatusServiceUnavailable))
		return
	}

	hotelID, ok := hotelIdentity(ctx)
	if !ok {
		writeUnidentifiedCaller(ctx, w)
		return
	}

	bills, err := h.bills.ListByHotel(ctx, hotelID)
	if err != nil {
		writeBillError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, billListResponse{Bills: buildBillPayloads(bills)})
}

func hotelIdentity(ctx context.Context) (string, bool) {
	identity, ok := requestctx.IdentityFrom(ctx)
	if !ok {
		return "", false
	}
	hotelID := strings.TrimSpace(identity.HotelID)
	if hotelID == "" {
		return "", false
	}
	return hotelID, true
}

func writeUnidentifiedCaller(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("unidentified_caller", "caller identity headers are required", http.StatusUnauthorized))
}
