package billing

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage interprets the discount value as a percentage of the base amount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFlat interprets the discount value as an absolute amount.
	DiscountFlat DiscountType = "flat"
)

// Status enumerates the invoice lifecycle states.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusUnpaid  Status = "unpaid"
	StatusOverdue Status = "overdue"
)

// Party identifies either side of an invoice.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Logo    string `json:"logo,omitempty"`
}

// LineItem is one priced row on an invoice. Total is derived and owned by the
// engine; callers must never set it directly.
type LineItem struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Quantity      float64      `json:"quantity"`
	Unit          string       `json:"unit"`
	Price         float64      `json:"price"`
	Discount      float64      `json:"discount"`
	DiscountType  DiscountType `json:"discountType"`
	Total         float64      `json:"total"`
	Tags          []string     `json:"tags,omitempty"`
	InternalNotes string       `json:"internalNotes,omitempty"`
	ProductID     string       `json:"productId,omitempty"`
}

// PaymentRecord is an immutable record of money received against an invoice.
// Records are append-only; removal is the only permitted mutation of the list.
type PaymentRecord struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Date   string  `json:"date"`
	Notes  string  `json:"notes,omitempty"`
}

// Task is a per-invoice checklist entry.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// Invoice aggregates the full invoice document. Subtotal, DiscountAmount,
// TaxAmount, Total, AmountPaid and BalanceRemaining are derived fields:
// Recalculate is the only writer.
type Invoice struct {
	ID                  string          `json:"id"`
	Date                string          `json:"date"`
	DueDate             string          `json:"dueDate,omitempty"`
	Status              Status          `json:"status"`
	Business            Party           `json:"business"`
	Customer            Party           `json:"customer"`
	LineItems           []LineItem      `json:"lineItems"`
	Subtotal            float64         `json:"subtotal"`
	TaxRate             float64         `json:"taxRate"`
	TaxAmount           float64         `json:"taxAmount"`
	DiscountType        DiscountType    `json:"discountType"`
	DiscountValue       float64         `json:"discountValue"`
	DiscountAmount      float64         `json:"discountAmount"`
	ShippingAmount      float64         `json:"shippingAmount"`
	Total               float64         `json:"total"`
	Currency            string          `json:"currency"`
	Notes               string          `json:"notes,omitempty"`
	Terms               string          `json:"terms,omitempty"`
	PaymentInstructions string          `json:"paymentInstructions,omitempty"`
	InternalNotes       string          `json:"internalNotes,omitempty"`
	Tasks               []Task          `json:"tasks,omitempty"`
	Payments            []PaymentRecord `json:"payments,omitempty"`
	AmountPaid          float64         `json:"amountPaid"`
	BalanceRemaining    float64         `json:"balanceRemaining"`
	CreatedAt           string          `json:"createdAt,omitempty"`
	UpdatedAt           string          `json:"updatedAt,omitempty"`
}
