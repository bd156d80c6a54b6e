package invoice

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/billd/internal/billing"
	"github.com/noah-isme/billd/internal/common"
)

// Handler exposes HTTP handlers for the invoice collection.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type paymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"method" validate:"required"`
	Notes  string  `json:"notes"`
}

// List handles GET /api/v1/invoices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load invoices", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": invoices})
}

// Get handles GET /api/v1/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

// Save handles POST /api/v1/invoices. The payload is a full invoice document;
// derived fields in the payload are ignored and recomputed server-side.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var inv billing.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	saved, err := h.Svc.Save(r.Context(), inv)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save invoice", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}

// Delete handles DELETE /api/v1/invoices/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete invoice", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"deleted": true}})
}

// Duplicate handles POST /api/v1/invoices/{id}/duplicate.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	dup, err := h.Svc.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": dup})
}

// AddPayment handles POST /api/v1/invoices/{id}/payments.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	inv, err := h.Svc.AddPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Method, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": inv})
}

// RemovePayment handles DELETE /api/v1/invoices/{id}/payments/{paymentId}.
func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.RemovePayment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "paymentId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": inv})
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
