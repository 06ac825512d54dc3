package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fala com o wallet-service para payouts e estornos de liquidação
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

// Credit registra o payout de uma aposta vencedora (idempotente por externalRef)
func (c *Client) Credit(ctx context.Context, userID string, cents int64, externalRef string) error {
	return c.post(ctx, "/wallet/credit", map[string]any{
		"userId":       userID,
		"amount_cents": cents,
		"external_ref": externalRef,
	})
}

// Refund estorna a reserva/débito de uma aposta (mercado anulado ou rejeição)
func (c *Client) Refund(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/refund", map[string]any{
		"userId":       userID,
		"external_ref": externalRef,
	})
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) error {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet %s http %d", path, res.StatusCode)
	}
	return nil
}
