package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/billd/internal/common"
	"github.com/noah-isme/billd/internal/obs"
	"github.com/noah-isme/billd/internal/store"
)

var (
	// ErrInvalidQuantity is returned when a stock-in or stock-out is recorded
	// with a non-positive magnitude.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrProductNotFound is returned by product lookups, never by the ledger:
	// transactions referencing unknown products are still recorded.
	ErrProductNotFound = errors.New("inventory: product not found")
	// ErrAlertNotFound is returned when acknowledging a vanished alert.
	ErrAlertNotFound = errors.New("inventory: alert not found")
)

// TransactionInput carries the caller-provided fields of a ledger entry.
// Quantity is a magnitude for stock-in/stock-out and a signed delta for
// adjustments.
type TransactionInput struct {
	ProductID string
	Type      TransactionType
	Quantity  int
	Reason    string
	CostPrice *float64
	Reference string
	Notes     string
}

// Service owns the product catalog, the append-only transaction ledger and
// the derived alert set.
type Service struct {
	Store *store.Store
	Log   zerolog.Logger
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RecordTransaction appends a ledger entry, applies the stock transition to
// the referenced product and recomputes the full alert set. All three
// collections are persisted in a single batch so the action cannot partially
// apply. An unknown product id is not an error: the entry still joins the
// history and the product/alert steps are skipped for it.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	if (in.Type == StockIn || in.Type == StockOut) && in.Quantity <= 0 {
		return Transaction{}, common.NewAppError("BAD_REQUEST", "quantity must be positive", http.StatusBadRequest, ErrInvalidQuantity)
	}

	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		return Transaction{}, err
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Transaction{}, err
	}
	previous, err := s.ListAlerts(ctx)
	if err != nil {
		return Transaction{}, err
	}

	now := s.now()
	tx := Transaction{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Date:      now.Format(time.RFC3339),
		CostPrice: in.CostPrice,
		Reference: in.Reference,
		Notes:     in.Notes,
	}
	transactions = append(transactions, tx)

	for i, p := range products {
		if p.ID != in.ProductID {
			continue
		}
		products[i].StockQuantity = intPtr(applyTransition(stockOf(p), in.Type, in.Quantity))
		if in.Type == StockIn {
			products[i].LastRestockedDate = now.Format(time.RFC3339)
		}
		break
	}

	alerts := ComputeAlerts(products, previous, now)

	err = s.Store.SetJSONMulti(ctx, map[string]any{
		store.KeyTransactions: transactions,
		store.KeyProducts:     products,
		store.KeyAlerts:       alerts,
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	if obs.InventoryTransactionsTotal != nil {
		obs.InventoryTransactionsTotal.WithLabelValues(string(in.Type)).Inc()
	}
	if obs.StockAlertsActive != nil {
		obs.StockAlertsActive.Set(float64(len(alerts)))
	}
	s.Log.Info().
		Str("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int("quantity", in.Quantity).
		Msg("inventory transaction recorded")
	return tx, nil
}

// applyTransition computes the next stock level. The non-negative invariant
// is upheld after every step, including signed adjustments.
func applyTransition(stock int, t TransactionType, qty int) int {
	var next int
	switch t {
	case StockOut:
		next = stock - qty
	default:
		next = stock + qty
	}
	if next < 0 {
		return 0
	}
	return next
}

// ComputeAlerts derives the full alert set from current product stock.
// Untracked products are skipped. A product with zero stock yields out-of-stock; one at or below its minimum
// level yields low-stock; anything else yields nothing. The previous set is
// consulted only to carry acknowledged flags over by (productId, type).
func ComputeAlerts(products []Product, previous []Alert, now time.Time) []Alert {
	acked := make(map[string]bool, len(previous))
	for _, a := range previous {
		if a.Acknowledged {
			acked[a.ProductID+"|"+string(a.Type)] = true
		}
	}

	alerts := make([]Alert, 0)
	for _, p := range products {
		if p.StockQuantity == nil {
			continue
		}
		stock := stockOf(p)
		minLevel := minLevelOf(p)

		var alertType AlertType
		threshold := 0
		switch {
		case stock == 0:
			alertType = AlertOutOfStock
		case stock <= minLevel:
			alertType = AlertLowStock
			threshold = minLevel
		default:
			continue
		}
		alerts = append(alerts, Alert{
			ID:           p.ID + "-" + string(alertType),
			ProductID:    p.ID,
			Type:         alertType,
			Threshold:    threshold,
			CurrentStock: stock,
			Date:         now.Format(time.RFC3339),
			Acknowledged: acked[p.ID+"|"+string(alertType)],
		})
	}
	return alerts
}

// DeductForInvoice records a stock-out for a line item sold on an invoice.
// The invoice id is kept as the transaction reference.
func (s *Service) DeductForInvoice(ctx context.Context, productID string, quantity int, invoiceID string) error {
	_, err := s.RecordTransaction(ctx, TransactionInput{
		ProductID: productID,
		Type:      StockOut,
		Quantity:  quantity,
		Reason:    "Invoice " + invoiceID,
		Reference: invoiceID,
	})
	return err
}

// AcknowledgeAlert flips the acknowledged flag on a derived alert and
// persists the set. The flag survives later recomputations while the same
// alert condition holds.
func (s *Service) AcknowledgeAlert(ctx context.Context, alertID string) error {
	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return err
	}
	for i, a := range alerts {
		if a.ID == alertID {
			alerts[i].Acknowledged = true
			if err := s.Store.SetJSON(ctx, store.KeyAlerts, alerts); err != nil {
				return fmt.Errorf("save alerts: %w", err)
			}
			return nil
		}
	}
	return common.NewAppError("NOT_FOUND", "alert not found", http.StatusNotFound, ErrAlertNotFound)
}

// CheckAvailability reports whether current stock would be insufficient for
// the requested quantity. It is advisory only and never blocks anything; a
// product that is unknown or does not track stock reports false.
func (s *Service) CheckAvailability(ctx context.Context, productID string, requested int) (bool, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range products {
		if p.ID != productID {
			continue
		}
		if p.StockQuantity == nil {
			return false, nil
		}
		return *p.StockQuantity < requested, nil
	}
	return false, nil
}

// MovementSummary sums a product's ledger history by transaction type.
func (s *Service) MovementSummary(ctx context.Context, productID string) (MovementSummary, error) {
	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		return MovementSummary{}, err
	}
	var sum MovementSummary
	for _, tx := range transactions {
		if tx.ProductID != productID {
			continue
		}
		switch tx.Type {
		case StockIn:
			sum.StockIn += tx.Quantity
		case StockOut:
			sum.StockOut += tx.Quantity
		case Adjustment:
			sum.Adjustments += tx.Quantity
		}
	}
	sum.TotalMovement = sum.StockIn - sum.StockOut + sum.Adjustments
	return sum, nil
}

// ProductTransactions returns the ledger entries referencing a product, in
// recorded order. Entries may reference products that no longer exist.
func (s *Service) ProductTransactions(ctx context.Context, productID string) ([]Transaction, error) {
	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Transaction, 0)
	for _, tx := range transactions {
		if tx.ProductID == productID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// ListProducts loads the product catalog.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if _, err := s.Store.GetJSON(ctx, store.KeyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct finds a product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, ErrProductNotFound)
}

// SaveProduct upserts a catalog entry. A new product with tracked initial
// stock is stored at zero and receives an "Initial stock" ledger entry so the
// counter stays equal to the net transaction history.
func (s *Service) SaveProduct(ctx context.Context, p Product) (Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var initialStock int
	existing := -1
	for i, candidate := range products {
		if candidate.ID == p.ID {
			existing = i
			break
		}
	}
	if existing >= 0 {
		products[existing] = p
	} else {
		if p.StockQuantity != nil && *p.StockQuantity > 0 {
			initialStock = *p.StockQuantity
			p.StockQuantity = intPtr(0)
		}
		if p.LastRestockedDate == "" {
			p.LastRestockedDate = s.now().Format(time.RFC3339)
		}
		products = append(products, p)
	}

	if err := s.Store.SetJSON(ctx, store.KeyProducts, products); err != nil {
		return Product{}, fmt.Errorf("save product: %w", err)
	}

	if initialStock > 0 {
		if _, err := s.RecordTransaction(ctx, TransactionInput{
			ProductID: p.ID,
			Type:      StockIn,
			Quantity:  initialStock,
			Reason:    "Initial stock",
			CostPrice: p.CostPrice,
		}); err != nil {
			return Product{}, err
		}
		return s.GetProduct(ctx, p.ID)
	}
	return p, nil
}

// DeleteProduct removes a catalog entry. Its ledger history is untouched:
// orphaned transaction references are a valid state, not an integrity
// failure.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}
	filtered := products[:0]
	for _, p := range products {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if err := s.Store.SetJSON(ctx, store.KeyProducts, filtered); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListAlerts loads the current derived alert set.
func (s *Service) ListAlerts(ctx context.Context) ([]Alert, error) {
	alerts := []Alert{}
	if _, err := s.Store.GetJSON(ctx, store.KeyAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListTransactions returns the full ledger in recorded order.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.loadTransactions(ctx)
}

func (s *Service) loadTransactions(ctx context.Context) ([]Transaction, error) {
	transactions := []Transaction{}
	if _, err := s.Store.GetJSON(ctx, store.KeyTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}
