package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineTotalPercentage(t *testing.T) {
	total := LineTotal(LineItem{Quantity: 3, Price: 10, Discount: 10, DiscountType: DiscountPercentage})
	require.Equal(t, 27.0, total)
}

func TestLineTotalFlatFloored(t *testing.T) {
	total := LineTotal(LineItem{Quantity: 2, Price: 5, Discount: 20, DiscountType: DiscountFlat})
	require.Equal(t, 0.0, total)
}

func TestLineTotalPercentageOver100NotFloored(t *testing.T) {
	// Percentage discounts intentionally mirror the flat/percentage asymmetry:
	// only flat discounts are clamped at zero.
	total := LineTotal(LineItem{Quantity: 1, Price: 100, Discount: 150, DiscountType: DiscountPercentage})
	require.Equal(t, -50.0, total)
}

func TestLineTotalCoercesInvalidNumbers(t *testing.T) {
	total := LineTotal(LineItem{Quantity: math.NaN(), Price: 10, DiscountType: DiscountFlat})
	require.Equal(t, 0.0, total)

	total = LineTotal(LineItem{Quantity: 2, Price: math.Inf(1), DiscountType: DiscountFlat})
	require.Equal(t, 0.0, total)
}

func TestRecalculateEmptyInvoice(t *testing.T) {
	inv := Recalculate(Invoice{ShippingAmount: 12.5})
	require.Equal(t, 0.0, inv.Subtotal)
	require.Equal(t, 0.0, inv.TaxAmount)
	require.Equal(t, 12.5, inv.Total)
	require.Equal(t, 12.5, inv.BalanceRemaining)
}

func TestRecalculateDerivesAllFields(t *testing.T) {
	inv := Invoice{
		LineItems: []LineItem{
			{Quantity: 3, Price: 10, Discount: 10, DiscountType: DiscountPercentage},
			{Quantity: 2, Price: 5, DiscountType: DiscountFlat},
		},
		DiscountType:   DiscountFlat,
		DiscountValue:  7,
		TaxRate:        10,
		ShippingAmount: 5,
		Payments: []PaymentRecord{
			{ID: "p1", Amount: 10},
			{ID: "p2", Amount: 5.5},
		},
	}
	out := Recalculate(inv)

	require.Equal(t, 37.0, out.Subtotal)
	require.Equal(t, 7.0, out.DiscountAmount)
	require.Equal(t, 3.0, out.TaxAmount)
	require.Equal(t, 38.0, out.Total)
	require.Equal(t, 15.5, out.AmountPaid)
	require.Equal(t, 22.5, out.BalanceRemaining)
	require.Equal(t, 27.0, out.LineItems[0].Total)
	require.Equal(t, 10.0, out.LineItems[1].Total)
}

func TestRecalculateIdempotent(t *testing.T) {
	inv := Invoice{
		LineItems:      []LineItem{{Quantity: 4, Price: 25.25, Discount: 3, DiscountType: DiscountPercentage}},
		DiscountType:   DiscountPercentage,
		DiscountValue:  5,
		TaxRate:        18,
		ShippingAmount: 9.99,
		Payments:       []PaymentRecord{{ID: "p1", Amount: 40}},
	}
	once := Recalculate(inv)
	twice := Recalculate(once)
	require.Equal(t, once, twice)
}

func TestRecalculateNegativeDiscountPropagates(t *testing.T) {
	// Invoice-level discounts larger than the subtotal are documented to drive
	// the taxable amount negative without clamping.
	inv := Recalculate(Invoice{
		LineItems:     []LineItem{{Quantity: 1, Price: 10}},
		DiscountType:  DiscountFlat,
		DiscountValue: 25,
		TaxRate:       10,
	})
	require.Equal(t, -15.0, inv.Subtotal-inv.DiscountAmount)
	require.Equal(t, -1.5, inv.TaxAmount)
	require.Equal(t, -16.5, inv.Total)
	require.Equal(t, 0.0, inv.BalanceRemaining)
}

func TestRecalculateBalanceNeverNegative(t *testing.T) {
	inv := Recalculate(Invoice{
		LineItems: []LineItem{{Quantity: 1, Price: 10}},
		Payments:  []PaymentRecord{{ID: "p1", Amount: 100}},
	})
	require.Equal(t, 0.0, inv.BalanceRemaining)
	require.Equal(t, PaidStateSettled, PaymentProgress(inv))
}

func TestPaymentProgress(t *testing.T) {
	inv := Recalculate(Invoice{LineItems: []LineItem{{Quantity: 1, Price: 100}}})
	require.Equal(t, PaidStateUnpaid, PaymentProgress(inv))

	inv.Payments = []PaymentRecord{{ID: "p1", Amount: 40}}
	inv = Recalculate(inv)
	require.Equal(t, PaidStatePartial, PaymentProgress(inv))
}

func TestDuplicateResetsLifecycleFields(t *testing.T) {
	src := Invoice{
		ID:        "INV-1",
		Date:      "2026-01-01",
		Status:    StatusPaid,
		CreatedAt: "2026-01-01T00:00:00Z",
		UpdatedAt: "2026-02-01T00:00:00Z",
		LineItems: []LineItem{{Quantity: 1, Price: 10}},
	}
	dup := Duplicate(src, "INV-2", "2026-08-28")
	require.Equal(t, "INV-2", dup.ID)
	require.Equal(t, "2026-08-28", dup.Date)
	require.Equal(t, StatusDraft, dup.Status)
	require.Empty(t, dup.CreatedAt)
	require.Empty(t, dup.UpdatedAt)
	require.Equal(t, src.LineItems, dup.LineItems)
}
