package handler

import (
	"net/http"

	"exchange_go/internal/domain"
	"exchange_go/internal/service"
)

// OrderHandler handles HTTP requests for order placement.
type OrderHandler struct {
	execSvc *service.ExecutionService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(execSvc *service.ExecutionService) *OrderHandler {
	return &OrderHandler{execSvc: execSvc}
}

// submitOrderRequest is the JSON request body for POST /order. Pointers
// distinguish absent fields from zero values.
type submitOrderRequest struct {
	Price  *float64 `json:"price"`
	Amount *float64 `json:"amount"`
	Side   string   `json:"side"`
}

// SubmitOrder handles POST /order. Only a malformed body produces a
// client-visible error; every evaluated order, including slippage
// rejections and orders arriving during a feed outage, returns 200 with
// a definite Execution record.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.Price == nil || req.Amount == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "price and amount are required")
		return
	}

	order := domain.Order{
		Price:  *req.Price,
		Amount: *req.Amount,
		Side:   domain.Side(req.Side),
	}
	if err := order.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	execution := h.execSvc.Execute(r.Context(), order)
	WriteJSON(w, http.StatusOK, execution)
}
