package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Account é a visão que o planner precisa de uma conta de bookmaker:
// onde ela aposta e quanto tem livre agora
type Account struct {
	ID             string `json:"id"`
	Service        string `json:"service"`
	AvailableCents int64  `json:"available_cents"`
}

// Client consome o account-service (colaborador externo dono dos saldos)
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// ListActive retorna as contas ativas com saldo disponível
func (c *Client) ListActive(ctx context.Context) ([]Account, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/accounts?status=ACTIVE", nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("account list http %d", res.StatusCode)
	}
	var out []Account
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
