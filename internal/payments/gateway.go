package payments

import "context"

type InvoiceState string

const (
	InvoicePending   InvoiceState = "pending"
	InvoicePaid      InvoiceState = "paid"
	InvoiceProcessed InvoiceState = "processed"
	InvoiceFailed    InvoiceState = "failed"
)

// Settled reports a successful terminal state.
func (s InvoiceState) Settled() bool {
	return s == InvoicePaid || s == InvoiceProcessed
}

// Terminal reports any terminal state, settled or failed.
func (s InvoiceState) Terminal() bool {
	return s.Settled() || s == InvoiceFailed
}

type Invoice struct {
	Amount            float64
	PayerPhone        string
	PayerEmail        string
	Description       string
	ExternalReference string
}

// Gateway is the outbound payment capability: create an invoice, push
// the payment prompt to the payer's handset, poll the invoice status.
type Gateway interface {
	CreateInvoice(ctx context.Context, inv Invoice) (billID string, err error)
	PushPaymentPrompt(ctx context.Context, billID, payerPhone, provider string) error
	GetInvoiceStatus(ctx context.Context, billID string) (InvoiceState, error)
}
