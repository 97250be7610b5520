package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PaymentHandle is the payable transaction token handed back to the client.
type PaymentHandle struct {
	Token string `json:"token"`
}

// PaymentProvider is the opaque payment gateway. The bool reports that the
// provider considers the order already settled.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, orderNumber string, amount float64, description, payerID string) (PaymentHandle, bool, error)
}

type PaymentClient struct {
	addr   string
	client *http.Client
}

func NewPaymentClient(addr string) *PaymentClient {
	return &PaymentClient{
		addr:   addr,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type createPaymentRequest struct {
	OrderNumber string  `json:"order_number"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	PayerID     string  `json:"payer_id"`
}

type createPaymentResponse struct {
	Token       string `json:"token"`
	AlreadyPaid bool   `json:"already_paid"`
}

func (c *PaymentClient) CreatePayment(ctx context.Context, orderNumber string, amount float64, description, payerID string) (PaymentHandle, bool, error) {
	body, err := json.Marshal(createPaymentRequest{
		OrderNumber: orderNumber,
		Amount:      amount,
		Description: description,
		PayerID:     payerID,
	})
	if err != nil {
		return PaymentHandle{}, false, fmt.Errorf("marshal payment request: %w", err)
	}

	url := fmt.Sprintf("%s/api/payments", c.addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return PaymentHandle{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return PaymentHandle{}, false, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PaymentHandle{}, false, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var out createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PaymentHandle{}, false, fmt.Errorf("decode payment response: %w", err)
	}

	return PaymentHandle{Token: out.Token}, out.AlreadyPaid, nil
}
