package inventory

// TransactionType enumerates ledger movement kinds.
type TransactionType string

const (
	// StockIn adds stock and stamps the product's last restocked date.
	StockIn TransactionType = "stock-in"
	// StockOut removes stock, clamping at zero rather than going negative.
	StockOut TransactionType = "stock-out"
	// Adjustment applies a signed correction.
	Adjustment TransactionType = "adjustment"
)

// AlertType enumerates derived stock warnings.
type AlertType string

const (
	AlertLowStock   AlertType = "low-stock"
	AlertOutOfStock AlertType = "out-of-stock"
)

// Product is a catalog entry. StockQuantity is the authoritative current
// stock: nil means stock is not tracked for the product. When tracked it is
// always the net effect of the recorded transactions, floored at zero after
// every step.
type Product struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Price             float64  `json:"price"`
	CostPrice         *float64 `json:"costPrice,omitempty"`
	Unit              string   `json:"unit"`
	Category          string   `json:"category,omitempty"`
	StockQuantity     *int     `json:"stockQuantity,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	MinStockLevel     *int     `json:"minStockLevel,omitempty"`
	Supplier          string   `json:"supplier,omitempty"`
	Barcode           string   `json:"barcode,omitempty"`
	LastRestockedDate string   `json:"lastRestockedDate,omitempty"`
}

// Transaction is one immutable ledger entry. Transactions are never mutated
// or deleted once recorded; history outlives the product it references.
type Transaction struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Type      TransactionType `json:"type"`
	Quantity  int             `json:"quantity"`
	Reason    string          `json:"reason"`
	Date      string          `json:"date"`
	CostPrice *float64        `json:"costPrice,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// Alert is a derived stock warning. The alert set is recomputed wholesale
// from current stock state; only the acknowledged flag survives recomputation,
// carried over by (productId, type).
type Alert struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Type         AlertType `json:"type"`
	Threshold    int       `json:"threshold"`
	CurrentStock int       `json:"currentStock"`
	Date         string    `json:"date"`
	Acknowledged bool      `json:"acknowledged"`
}

// MovementSummary aggregates a product's ledger history.
type MovementSummary struct {
	StockIn       int `json:"stockIn"`
	StockOut      int `json:"stockOut"`
	Adjustments   int `json:"adjustments"`
	TotalMovement int `json:"totalMovement"`
}

func stockOf(p Product) int {
	if p.StockQuantity == nil {
		return 0
	}
	return *p.StockQuantity
}

func minLevelOf(p Product) int {
	if p.MinStockLevel == nil {
		return 0
	}
	return *p.MinStockLevel
}

func intPtr(v int) *int { return &v }
