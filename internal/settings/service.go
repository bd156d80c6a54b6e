package settings

import (
	"context"
	"fmt"

	"github.com/noah-isme/billd/internal/store"
)

// QRCodeConfig is carried as opaque configuration for the rendering layer;
// the backend stores it but attaches no behaviour.
type QRCodeConfig struct {
	Enabled    bool   `json:"enabled"`
	Data       string `json:"data"`
	CustomData string `json:"customData,omitempty"`
	Size       int    `json:"size"`
	Position   string `json:"position"`
}

// AppSettings holds workbench-wide preferences.
type AppSettings struct {
	CurrencySymbol      string       `json:"currencySymbol"`
	DecimalPrecision    int          `json:"decimalPrecision"`
	InvoicePrefix       string       `json:"invoicePrefix"`
	DefaultTaxRate      float64      `json:"defaultTaxRate"`
	DefaultDiscountMode string       `json:"defaultDiscountMode"`
	PrintLayout         string       `json:"printLayout"`
	Theme               string       `json:"theme"`
	QRCodeSettings      QRCodeConfig `json:"qrCodeSettings"`
	LowStockWarnings    bool         `json:"lowStockWarnings"`
	AutoDeductInventory bool         `json:"autoDeductInventory"`
}

// Defaults returns the settings used when nothing has been stored yet.
func Defaults() AppSettings {
	return AppSettings{
		CurrencySymbol:      "$",
		DecimalPrecision:    2,
		InvoicePrefix:       "INV-",
		DefaultTaxRate:      0,
		DefaultDiscountMode: "percentage",
		PrintLayout:         "modern",
		Theme:               "system",
		QRCodeSettings: QRCodeConfig{
			Enabled:  false,
			Data:     "invoice-id",
			Size:     128,
			Position: "bottom-right",
		},
		LowStockWarnings:    true,
		AutoDeductInventory: false,
	}
}

// Service reads and writes the settings document.
type Service struct {
	Store *store.Store
}

// Get returns the stored settings, falling back to defaults when the document
// is absent or unreadable. Read problems never surface to the caller.
func (s *Service) Get(ctx context.Context) AppSettings {
	var cfg AppSettings
	found, err := s.Store.GetJSON(ctx, store.KeySettings, &cfg)
	if err != nil || !found {
		return Defaults()
	}
	return cfg
}

// Update replaces the settings document. Write failures are surfaced.
func (s *Service) Update(ctx context.Context, cfg AppSettings) error {
	if err := s.Store.SetJSON(ctx, store.KeySettings, cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
