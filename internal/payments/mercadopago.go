package payments

import (
	"context"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

// MercadoPagoGateway is the card rail, for organizations that accept
// card payments instead of mobile money. Cards have no handset prompt,
// so PushPaymentPrompt is a no-op on this rail.
type MercadoPagoGateway struct {
	payments payment.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPagoGateway{payments: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) CreateInvoice(ctx context.Context, inv Invoice) (string, error) {
	req := payment.Request{
		TransactionAmount: inv.Amount,
		Description:       inv.Description,
		ExternalReference: inv.ExternalReference,
		PaymentMethodID:   "pix",
		Payer: &payment.PayerRequest{
			Email: inv.PayerEmail,
		},
	}

	res, err := g.payments.Create(ctx, req)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(res.ID), nil
}

func (g *MercadoPagoGateway) PushPaymentPrompt(
	ctx context.Context,
	billID, payerPhone, provider string,
) error {
	return nil
}

func (g *MercadoPagoGateway) GetInvoiceStatus(
	ctx context.Context,
	billID string,
) (InvoiceState, error) {

	id, err := strconv.Atoi(billID)
	if err != nil {
		return "", err
	}

	res, err := g.payments.Get(ctx, id)
	if err != nil {
		return "", err
	}

	switch res.Status {
	case "approved":
		return InvoicePaid, nil
	case "rejected", "cancelled", "refunded", "charged_back":
		return InvoiceFailed, nil
	default:
		return InvoicePending, nil
	}
}

var _ Gateway = (*MercadoPagoGateway)(nil)
