package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MobileMoneyClient talks to the mobile-money aggregator's REST API.
// This is the default rail: the payer receives a USSD prompt on their
// handset and the invoice settles asynchronously.
type MobileMoneyClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewMobileMoneyClient(baseURL, token string) *MobileMoneyClient {
	return &MobileMoneyClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type mmInvoiceRequest struct {
	Amount            float64 `json:"amount"`
	PayerPhone        string  `json:"payer_phone"`
	PayerEmail        string  `json:"payer_email,omitempty"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"external_reference"`
}

type mmInvoiceResponse struct {
	BillID string `json:"bill_id"`
	Status string `json:"status"`
}

func (c *MobileMoneyClient) CreateInvoice(ctx context.Context, inv Invoice) (string, error) {
	body := mmInvoiceRequest{
		Amount:            inv.Amount,
		PayerPhone:        inv.PayerPhone,
		PayerEmail:        inv.PayerEmail,
		Description:       inv.Description,
		ExternalReference: inv.ExternalReference,
	}

	var resp mmInvoiceResponse
	if err := c.do(ctx, http.MethodPost, "/invoices", body, &resp); err != nil {
		return "", err
	}
	return resp.BillID, nil
}

func (c *MobileMoneyClient) PushPaymentPrompt(
	ctx context.Context,
	billID, payerPhone, provider string,
) error {
	body := map[string]string{
		"payer_phone": payerPhone,
		"provider":    provider,
	}
	return c.do(ctx, http.MethodPost, "/invoices/"+billID+"/push", body, nil)
}

func (c *MobileMoneyClient) GetInvoiceStatus(
	ctx context.Context,
	billID string,
) (InvoiceState, error) {

	var resp mmInvoiceResponse
	if err := c.do(ctx, http.MethodGet, "/invoices/"+billID, nil, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case "paid":
		return InvoicePaid, nil
	case "processed":
		return InvoiceProcessed, nil
	case "failed", "expired", "cancelled":
		return InvoiceFailed, nil
	default:
		return InvoicePending, nil
	}
}

func (c *MobileMoneyClient) do(
	ctx context.Context,
	method, path string,
	body any,
	out any,
) error {

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ Gateway = (*MobileMoneyClient)(nil)
