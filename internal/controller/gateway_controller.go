package controller

import (
	"net/http"
	"strconv"

	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"github.com/cassiomorais/simplify-gateway/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GatewayController handles order and payment HTTP requests.
type GatewayController struct {
	svc *service.GatewayService
}

// NewGatewayController creates a new GatewayController.
func NewGatewayController(svc *service.GatewayService) *GatewayController {
	return &GatewayController{svc: svc}
}

// CreateOrder handles POST /api/v1/orders
func (h *GatewayController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o := order.NewOrder(req.Number, req.Total, req.Currency, order.PaymentMethodSimplify)
	o.Email = req.Email
	o.Billing = toAddress(req.Billing)
	o.Shipping = toAddress(req.Shipping)

	if err := h.svc.CreateOrder(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromOrder(o, nil))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *GatewayController) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, notes, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o, notes))
}

// Pay handles POST /api/v1/orders/{id}/pay. It returns the hosted page
// arguments; the charge happens when the page posts back to Return.
func (h *GatewayController) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	hosted, err := h.svc.Pay(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hosted)
}

// Capture handles POST /api/v1/orders/{id}/capture
func (h *GatewayController) Capture(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Capture(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.writeOrder(w, r, id)
}

// Void handles POST /api/v1/orders/{id}/void
func (h *GatewayController) Void(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Void(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.writeOrder(w, r, id)
}

// Refund handles POST /api/v1/orders/{id}/refund
func (h *GatewayController) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req RefundOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Refund(r.Context(), id, req.Amount, req.Reason); err != nil {
		writeError(w, err)
		return
	}

	h.writeOrder(w, r, id)
}

// Return handles the hosted payment page callback on /gateway/return.
// It always answers 200: the page expects a redirect target either
// way, and a failure is carried in the body.
func (h *GatewayController) Return(w http.ResponseWriter, r *http.Request) {
	amount, _ := strconv.ParseInt(r.FormValue("amount"), 10, 64)

	result := h.svc.HandleReturn(r.Context(), service.ReturnParams{
		Reference: r.FormValue("reference"),
		CardToken: r.FormValue("cardToken"),
		Amount:    amount,
	})

	writeJSON(w, http.StatusOK, result)
}

// AuditLog handles GET /admin/log, serving the decrypted audit trail.
func (h *GatewayController) AuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.AuditEntries()
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []string{}
	}
	writeJSON(w, http.StatusOK, AuditLogResponse{Entries: entries})
}

func (h *GatewayController) writeOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	o, notes, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromOrder(o, notes))
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return uuid.Nil, false
	}
	return id, true
}
