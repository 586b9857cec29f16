package book

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/master-bet-engine/internal/planner"
)

// Client coloca apostas no book externo, uma chamada por perna.
// Implementa planner.PlacementClient.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type placeRequest struct {
	AccountID  string   `json:"account_id"`
	EventID    string   `json:"event_id"`
	Market     string   `json:"market"`
	Selection  string   `json:"selection"`
	Line       *float64 `json:"line,omitempty"`
	Price      int      `json:"price"`
	StakeCents int64    `json:"stake_cents"`
}

type placeResponse struct {
	Success     bool   `json:"success"`
	PlacedCents int64  `json:"placed_cents"`
	Reason      string `json:"reason,omitempty"`
}

// Place envia a colocação de uma perna ao book. Recusa de negócio (preço
// mudou, conta suspensa) volta como Success=false; erro de transporte
// volta como error.
func (c *Client) Place(ctx context.Context, target planner.BetTarget, leg planner.AllocationLeg) (planner.PlacementResult, error) {
	body, _ := json.Marshal(placeRequest{
		AccountID:  leg.AccountID,
		EventID:    target.EventID,
		Market:     string(target.Market),
		Selection:  target.Selection,
		Line:       leg.Line,
		Price:      leg.Price,
		StakeCents: leg.StakeCents,
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/book/place", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return planner.PlacementResult{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return planner.PlacementResult{}, fmt.Errorf("book place http %d", res.StatusCode)
	}

	var out placeResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return planner.PlacementResult{}, err
	}
	return planner.PlacementResult{
		Success:     out.Success,
		PlacedCents: out.PlacedCents,
		Reason:      out.Reason,
	}, nil
}
