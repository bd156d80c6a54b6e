package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/billd/internal/common"
)

// Handler exposes HTTP handlers for the product catalog and the stock ledger.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type transactionRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=stock-in stock-out adjustment"`
	Quantity  int      `json:"quantity" validate:"required"`
	Reason    string   `json:"reason" validate:"required"`
	CostPrice *float64 `json:"costPrice"`
	Reference string   `json:"reference"`
	Notes     string   `json:"notes"`
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.ListProducts(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// SaveProduct handles POST /api/v1/products.
func (h *Handler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if p.Name == "" || p.Price < 0 {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "product name is required and price must be non-negative", nil)
		return
	}
	saved, err := h.Svc.SaveProduct(r.Context(), p)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"deleted": true}})
}

// ProductTransactions handles GET /api/v1/products/{id}/transactions.
func (h *Handler) ProductTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.Svc.ProductTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load transactions", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": transactions})
}

// ProductMovement handles GET /api/v1/products/{id}/movement.
func (h *Handler) ProductMovement(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.MovementSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load movement summary", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// ListTransactions handles GET /api/v1/inventory/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.Svc.ListTransactions(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load transactions", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": transactions})
}

// RecordTransaction handles POST /api/v1/inventory/transactions.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	tx, err := h.Svc.RecordTransaction(r.Context(), TransactionInput{
		ProductID: req.ProductID,
		Type:      TransactionType(req.Type),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		CostPrice: req.CostPrice,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": tx})
}

// ListAlerts handles GET /api/v1/inventory/alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Svc.ListAlerts(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load alerts", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": alerts})
}

// AcknowledgeAlert handles POST /api/v1/inventory/alerts/{id}/ack.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.AcknowledgeAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"acknowledged": true}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// CheckAvailability handles GET /api/v1/inventory/availability.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}
	quantity := common.AtoiDefault(r.URL.Query().Get("quantity"), 1)
	insufficient, err := h.Svc.CheckAvailability(r.Context(), productID, quantity)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to check availability", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"insufficientStock": insufficient}})
}
