package invoice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/billd/internal/billing"
	"github.com/noah-isme/billd/internal/common"
	"github.com/noah-isme/billd/internal/obs"
	"github.com/noah-isme/billd/internal/settings"
	"github.com/noah-isme/billd/internal/store"
)

var (
	// ErrNotFound is returned when an invoice id has no stored record.
	ErrNotFound = errors.New("invoice: not found")
	// ErrPaymentNotFound is returned when removing an unknown payment.
	ErrPaymentNotFound = errors.New("invoice: payment not found")
	// ErrInvalidPayment is returned when a payment amount is not positive.
	ErrInvalidPayment = errors.New("invoice: payment amount must be positive")
)

// StockDeducter records stock-out ledger movements for invoice line items.
// Implemented by the inventory service; kept as a local interface so billing
// does not depend on the ledger package.
type StockDeducter interface {
	DeductForInvoice(ctx context.Context, productID string, quantity int, invoiceID string) error
}

// Service owns the invoice collection. Every save runs the billing engine
// first, so stored documents always carry consistent derived fields.
type Service struct {
	Store    *store.Store
	Settings *settings.Service
	Deducter StockDeducter
	Log      zerolog.Logger
	Now      func() time.Time
	Rand     *rand.Rand
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) randomSuffix() int {
	if s.Rand != nil {
		return s.Rand.Intn(1000)
	}
	return rand.Intn(1000)
}

// NewID generates an invoice identifier from the configured prefix, the
// current millisecond timestamp and a 0-999 random suffix.
func (s *Service) NewID(ctx context.Context) string {
	prefix := s.Settings.Get(ctx).InvoicePrefix
	return fmt.Sprintf("%s%d-%d", prefix, s.now().UnixMilli(), s.randomSuffix())
}

// List loads all stored invoices.
func (s *Service) List(ctx context.Context) ([]billing.Invoice, error) {
	invoices := []billing.Invoice{}
	if _, err := s.Store.GetJSON(ctx, store.KeyInvoices, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Get finds an invoice by id.
func (s *Service) Get(ctx context.Context, id string) (billing.Invoice, error) {
	invoices, err := s.List(ctx)
	if err != nil {
		return billing.Invoice{}, err
	}
	for _, inv := range invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return billing.Invoice{}, common.NewAppError("NOT_FOUND", "invoice not found", http.StatusNotFound, ErrNotFound)
}

// Save upserts an invoice by id. The document is recalculated before writing,
// updatedAt is always refreshed and createdAt is stamped on first insert. On
// first insert, line items referencing catalog products are deducted from
// stock when the auto-deduct setting is on.
func (s *Service) Save(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	invoices, err := s.List(ctx)
	if err != nil {
		return billing.Invoice{}, err
	}
	if inv.ID == "" {
		inv.ID = s.NewID(ctx)
	}

	inv = billing.Recalculate(inv)
	now := s.now().Format(time.RFC3339)
	inv.UpdatedAt = now

	inserted := true
	for i, existing := range invoices {
		if existing.ID == inv.ID {
			if inv.CreatedAt == "" {
				inv.CreatedAt = existing.CreatedAt
			}
			invoices[i] = inv
			inserted = false
			break
		}
	}
	if inserted {
		inv.CreatedAt = now
		invoices = append(invoices, inv)
	}

	if err := s.Store.SetJSON(ctx, store.KeyInvoices, invoices); err != nil {
		if obs.InvoiceSavesTotal != nil {
			obs.InvoiceSavesTotal.WithLabelValues("error").Inc()
		}
		return billing.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}
	if obs.InvoiceSavesTotal != nil {
		obs.InvoiceSavesTotal.WithLabelValues("ok").Inc()
	}

	if inserted {
		s.autoDeduct(ctx, inv)
	}
	return inv, nil
}

// autoDeduct records stock-out transactions for catalog-linked line items.
// Failures are logged, not surfaced: the invoice is already saved and the
// availability check is advisory by design.
func (s *Service) autoDeduct(ctx context.Context, inv billing.Invoice) {
	if s.Deducter == nil || !s.Settings.Get(ctx).AutoDeductInventory {
		return
	}
	for _, item := range inv.LineItems {
		if item.ProductID == "" {
			continue
		}
		qty := int(math.Round(item.Quantity))
		if qty <= 0 {
			continue
		}
		if err := s.Deducter.DeductForInvoice(ctx, item.ProductID, qty, inv.ID); err != nil {
			s.Log.Error().Err(err).
				Str("invoice_id", inv.ID).
				Str("product_id", item.ProductID).
				Msg("auto-deduct stock")
		}
	}
}

// Delete removes an invoice from the collection.
func (s *Service) Delete(ctx context.Context, id string) error {
	invoices, err := s.List(ctx)
	if err != nil {
		return err
	}
	filtered := invoices[:0]
	for _, inv := range invoices {
		if inv.ID != id {
			filtered = append(filtered, inv)
		}
	}
	if err := s.Store.SetJSON(ctx, store.KeyInvoices, filtered); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// Duplicate saves a draft copy of an existing invoice under a fresh id with
// today's date.
func (s *Service) Duplicate(ctx context.Context, id string) (billing.Invoice, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return billing.Invoice{}, err
	}
	dup := billing.Duplicate(src, s.NewID(ctx), s.now().Format("2006-01-02"))
	return s.Save(ctx, dup)
}

// AddPayment appends a payment record and re-derives the invoice financials.
func (s *Service) AddPayment(ctx context.Context, invoiceID string, amount float64, method, notes string) (billing.Invoice, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return billing.Invoice{}, common.NewAppError("BAD_REQUEST", "payment amount must be positive", http.StatusBadRequest, ErrInvalidPayment)
	}
	inv, err := s.Get(ctx, invoiceID)
	if err != nil {
		return billing.Invoice{}, err
	}
	inv.Payments = append(inv.Payments, billing.PaymentRecord{
		ID:     uuid.NewString(),
		Amount: amount,
		Method: method,
		Date:   s.now().Format(time.RFC3339),
		Notes:  notes,
	})
	return s.Save(ctx, inv)
}

// RemovePayment deletes a payment record by id and re-derives the invoice.
// Removal is the only permitted mutation of a recorded payment.
func (s *Service) RemovePayment(ctx context.Context, invoiceID, paymentID string) (billing.Invoice, error) {
	inv, err := s.Get(ctx, invoiceID)
	if err != nil {
		return billing.Invoice{}, err
	}
	kept := make([]billing.PaymentRecord, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		if p.ID != paymentID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(inv.Payments) {
		return billing.Invoice{}, common.NewAppError("NOT_FOUND", "payment not found", http.StatusNotFound, ErrPaymentNotFound)
	}
	inv.Payments = kept
	return s.Save(ctx, inv)
}
