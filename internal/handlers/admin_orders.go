package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/bvs-supply/api/internal/domain"
	"github.com/bvs-supply/api/internal/platform/httpx"
	"github.com/bvs-supply/api/internal/platform/requestctx"
	"github.com/bvs-supply/api/internal/services"
)

type finalizePricesRequest struct {
	Prices []itemPriceRequest `json:"prices"`
}

type itemPriceRequest struct {
	ProductID    string  `json:"product_id"`
	PricePerUnit float64 `json:"price_per_unit"`
}

type finalizePricesResponse struct {
	Order          orderPayload `json:"order"`
	NewTotalAmount float64      `json:"new_total_amount"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type recordPaymentRequest struct {
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	Comments      string `json:"comments"`
}

type billResponse struct {
	Bill billPayload `json:"bill"`
}

// AdminHandlers exposes the supplier-side order management, billing and
// fulfillment report endpoints.
type AdminHandlers struct {
	orders      services.OrderService
	bills       services.BillingService
	fulfillment services.FulfillmentService
}

// NewAdminHandlers constructs a new AdminHandlers instance.
func NewAdminHandlers(orders services.OrderService, bills services.BillingService, fulfillment services.FulfillmentService) *AdminHandlers {
	return &AdminHandlers{
		orders:      orders,
		bills:       bills,
		fulfillment: fulfillment,
	}
}

// Routes registers the /admin endpoints.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/orders/pending-pricing", h.listPendingPricing)
	r.Put("/orders/{orderID}/finalize-prices", h.finalizePrices)
	r.Put("/orders/{orderID}/status", h.updateStatus)
	r.Get("/orders/{orderID}/bill", h.getOrderBill)
	r.Put("/bills/{billID}/payment", h.recordPayment)

	r.Get("/todays-vegetables", h.vegetables)
	r.Get("/todays-hotels-orders", h.hotelOrders)
	r.Get("/todays-filling", h.filling)
	r.Get("/vegetables-history", h.vegetables)
	r.Get("/hotels-orders-history", h.hotelOrders)
	r.Get("/filling-history", h.filling)
}

func (h *AdminHandlers) listPendingPricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orders, err := h.orders.ListPendingPricing(ctx)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderListResponse{Orders: buildOrderPayloads(orders)})
}

func (h *AdminHandlers) finalizePrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID, ok := parseIDParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	var req finalizePricesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	prices := make([]services.ItemPrice, 0, len(req.Prices))
	for _, price := range req.Prices {
		prices = append(prices, services.ItemPrice{
			ProductID:    price.ProductID,
			PricePerUnit: price.PricePerUnit,
		})
	}

	var actorID string
	if identity, ok := requestctx.IdentityFrom(ctx); ok {
		actorID = strings.TrimSpace(identity.ActorID)
	}

	result, err := h.orders.FinalizePrices(ctx, services.FinalizePricesCommand{
		OrderID: orderID,
		ActorID: actorID,
		Prices:  prices,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, finalizePricesResponse{
		Order:          buildOrderPayload(result.Order),
		NewTotalAmount: result.NewTotalAmount,
	})
}

func (h *AdminHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID, ok := parseIDParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	var req updateStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	order, err := h.orders.SetStatus(ctx, orderID, status)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *AdminHandlers) getOrderBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bills == nil {
		httpx.WriteError(ctx, w, httpx.NewError("billing_service_unavailable", "billing service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID, ok := parseIDParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	bill, err := h.bills.GetByOrder(ctx, orderID)
	if err != nil {
		writeBillError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, billResponse{Bill: buildBillPayload(bill)})
}

func (h *AdminHandlers) recordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bills == nil {
		httpx.WriteError(ctx, w, httpx.NewError("billing_service_unavailable", "billing service unavailable", http.StatusServiceUnavailable))
		return
	}

	billID, ok := parseIDParam(r, "billID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "bill id must be a positive integer", http.StatusBadRequest))
		return
	}

	var req recordPaymentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	bill, err := h.bills.RecordPayment(ctx, billID, services.PaymentUpdate{
		Status:        domain.BillStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		PaymentMethod: req.PaymentMethod,
		Comments:      req.Comments,
	})
	if err != nil {
		writeBillError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, billResponse{Bill: buildBillPayload(bill)})
}

func (h *AdminHandlers) vegetables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.fulfillment == nil {
		httpx.WriteError(ctx, w, httpx.NewError("fulfillment_service_unavailable", "fulfillment service unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.fulfillment.Vegetables(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildVegetableReportPayload(report))
}

func (h *AdminHandlers) hotelOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.fulfillment == nil {
		httpx.WriteError(ctx, w, httpx.NewError("fulfillment_service_unavailable", "fulfillment service unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.fulfillment.HotelOrders(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildHotelOrdersReportPayload(report))
}

func (h *AdminHandlers) filling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.fulfillment == nil {
		httpx.WriteError(ctx, w, httpx.NewError("fulfillment_service_unavailable", "fulfillment service unavailable", http.StatusServiceUnavailable))
		return
	}

	matrix, err := h.fulfillment.Filling(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildFillingMatrixPayload(matrix))
}
