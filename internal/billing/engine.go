package billing

import "math"

// LineTotal computes the total for a single line item.
//
// Flat discounts are floored at zero; percentage discounts are not, so a
// percentage above 100 produces a negative line total that propagates into the
// invoice subtotal unchanged. No rounding is applied here: formatting to the
// configured decimal precision is a display concern.
func LineTotal(item LineItem) float64 {
	base := num(item.Quantity) * num(item.Price)
	if item.DiscountType == DiscountPercentage {
		return base - base*num(item.Discount)/100
	}
	return math.Max(0, base-num(item.Discount))
}

// Recalculate returns a copy of the invoice with every derived field replaced:
// line totals, subtotal, discount amount, tax amount, total, amount paid and
// balance remaining. All other fields pass through untouched. It must be called
// after every mutation to line items, discount, tax, shipping or payments;
// callers never hand-patch derived fields.
//
// A discount value larger than the subtotal drives the taxable amount negative
// and the negative value flows through tax and total unclamped. Only the
// balance is floored at zero.
func Recalculate(inv Invoice) Invoice {
	var subtotal float64
	if len(inv.LineItems) > 0 {
		items := make([]LineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			item.Total = LineTotal(item)
			items[i] = item
			subtotal += item.Total
		}
		inv.LineItems = items
	}

	var discountAmount float64
	if inv.DiscountType == DiscountPercentage {
		discountAmount = subtotal * num(inv.DiscountValue) / 100
	} else {
		discountAmount = num(inv.DiscountValue)
	}

	taxableAmount := subtotal - discountAmount
	taxAmount := taxableAmount * num(inv.TaxRate) / 100
	total := taxableAmount + taxAmount + num(inv.ShippingAmount)

	var amountPaid float64
	for _, p := range inv.Payments {
		amountPaid += num(p.Amount)
	}

	inv.Subtotal = subtotal
	inv.DiscountAmount = discountAmount
	inv.TaxAmount = taxAmount
	inv.Total = total
	inv.AmountPaid = amountPaid
	inv.BalanceRemaining = math.Max(0, total-amountPaid)
	return inv
}

// Duplicate returns a draft copy of the invoice under a new identifier. The
// copy carries today's date and cleared createdAt/updatedAt stamps so the next
// save treats it as a first insert.
func Duplicate(inv Invoice, newID, date string) Invoice {
	inv.ID = newID
	inv.Date = date
	inv.Status = StatusDraft
	inv.CreatedAt = ""
	inv.UpdatedAt = ""
	return inv
}

// PaidState summarises how far an invoice has been settled.
type PaidState string

const (
	PaidStateUnpaid  PaidState = "unpaid"
	PaidStatePartial PaidState = "partially-paid"
	PaidStateSettled PaidState = "paid"
)

// PaymentProgress classifies the invoice by recorded payments versus total.
func PaymentProgress(inv Invoice) PaidState {
	switch {
	case inv.AmountPaid <= 0:
		return PaidStateUnpaid
	case inv.BalanceRemaining > 0:
		return PaidStatePartial
	default:
		return PaidStateSettled
	}
}

// num coerces invalid numeric input to zero at the engine boundary. External
// data can carry NaN or infinite values after JSON round-trips through clients
// that serialise them as null-ish sentinels; the engine never lets them enter
// the formulas.
func num(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
