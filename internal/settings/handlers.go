package settings

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/billd/internal/common"
)

// Handler exposes HTTP handlers for application settings.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type updateRequest struct {
	CurrencySymbol      string       `json:"currencySymbol" validate:"required"`
	DecimalPrecision    int          `json:"decimalPrecision" validate:"gte=0,lte=6"`
	InvoicePrefix       string       `json:"invoicePrefix"`
	DefaultTaxRate      float64      `json:"defaultTaxRate" validate:"gte=0,lte=100"`
	DefaultDiscountMode string       `json:"defaultDiscountMode" validate:"oneof=percentage flat"`
	PrintLayout         string       `json:"printLayout"`
	Theme               string       `json:"theme"`
	QRCodeSettings      QRCodeConfig `json:"qrCodeSettings"`
	LowStockWarnings    bool         `json:"lowStockWarnings"`
	AutoDeductInventory bool         `json:"autoDeductInventory"`
}

// Get handles GET /api/v1/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Svc.Get(r.Context())})
}

// Update handles PUT /api/v1/settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	cfg := AppSettings(req)
	if err := h.Svc.Update(r.Context(), cfg); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}
