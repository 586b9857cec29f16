package events

import "time"

// Evento publicado no tópico "offer_updates": preço corrente de um book
// para uma seleção específica (moneyline, spread ou total).
type OfferUpdate struct {
	EventID   string    `json:"event_id"`
	Sport     string    `json:"sport"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Market    string    `json:"market"`    // "moneyline" | "spread" | "total"
	Selection string    `json:"selection"` // time ou "over"/"under"
	Line      *float64  `json:"line,omitempty"`
	Price     int       `json:"price"` // odds americanas (ex: -110, +145)
	Service   string    `json:"service"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`  // "book-simulator" em ambiente local
	Version   int       `json:"version"` // incrementado a cada atualização do book
}
