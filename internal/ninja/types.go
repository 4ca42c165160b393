package ninja

// Remote records owned by Invoice Ninja. Only the fields the tools read are
// declared; IDs are opaque hashed strings throughout. Embedded relations
// (client, project, vendor, ...) are present only when the request asked for
// them via the include query parameter, hence the pointer types.

// Customer is a client record. Named Customer to avoid colliding with the
// API client type in this package; the wire entity is "client".
type Customer struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Balance     float64 `json:"balance"`
	PaidToDate  float64 `json:"paid_to_date"`
}

// Invoice is an invoice record. Status is derived from balance and the
// client_status query filter, not stored locally.
type Invoice struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	ClientID string    `json:"client_id"`
	Amount   float64   `json:"amount"`
	Balance  float64   `json:"balance"`
	DueDate  string    `json:"due_date"`
	Client   *Customer `json:"client,omitempty"`
}

// LineItem is one invoice line.
type LineItem struct {
	ProductKey string  `json:"product_key"`
	Notes      string  `json:"notes"`
	Cost       float64 `json:"cost"`
	Quantity   float64 `json:"quantity"`
}

// Product is a product/service record.
type Product struct {
	ID         string  `json:"id"`
	ProductKey string  `json:"product_key"`
	Price      float64 `json:"price"`
}

// Project groups tasks for a client with an hours budget.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ClientID      string    `json:"client_id"`
	BudgetedHours float64   `json:"budgeted_hours"`
	CurrentHours  float64   `json:"current_hours"`
	TaskRate      float64   `json:"task_rate"`
	DueDate       string    `json:"due_date"`
	PublicNotes   string    `json:"public_notes"`
	PrivateNotes  string    `json:"private_notes"`
	Client        *Customer `json:"client,omitempty"`
}

// Task carries its time log as a JSON-encoded string on the wire; parse it
// with the timelog package rather than reading it directly.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	TimeLog     string    `json:"time_log"`
	Rate        float64   `json:"rate"`
	InvoiceID   string    `json:"invoice_id"`
	Client      *Customer `json:"client,omitempty"`
	Project     *Project  `json:"project,omitempty"`
}

// PaymentType is the payment method record embedded in payments.
type PaymentType struct {
	Name string `json:"name"`
}

// Payment is a received payment, optionally applied to invoices.
type Payment struct {
	ID                   string       `json:"id"`
	Amount               float64      `json:"amount"`
	Date                 string       `json:"date"`
	TransactionReference string       `json:"transaction_reference"`
	PrivateNotes         string       `json:"private_notes"`
	Client               *Customer    `json:"client,omitempty"`
	Type                 *PaymentType `json:"type,omitempty"`
	Invoices             []Invoice    `json:"invoices,omitempty"`
}

// Vendor is who an expense was paid to.
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExpenseCategory buckets expenses for reporting.
type ExpenseCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Expense is a cost record, optionally billable to a client.
type Expense struct {
	ID               string           `json:"id"`
	Amount           float64          `json:"amount"`
	Date             string           `json:"date"`
	PublicNotes      string           `json:"public_notes"`
	PrivateNotes     string           `json:"private_notes"`
	ShouldBeInvoiced bool             `json:"should_be_invoiced"`
	InvoiceID        string           `json:"invoice_id"`
	Client           *Customer        `json:"client,omitempty"`
	Vendor           *Vendor          `json:"vendor,omitempty"`
	Category         *ExpenseCategory `json:"category,omitempty"`
}

// Document is a file attached to an entity. This server treats documents as
// read-only.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	IsPublic  bool   `json:"is_public"`
	CreatedAt int64  `json:"created_at"`
}
