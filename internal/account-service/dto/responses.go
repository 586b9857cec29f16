package dto

// AccountResponse é a visão externa de uma conta de bookmaker.
// available_cents = balance_cents - at_risk_cents
type AccountResponse struct {
	ID             string `json:"id"`
	Service        string `json:"service"`
	Username       string `json:"username"`
	Status         string `json:"status"` // "ACTIVE" | "SUSPENDED"
	BalanceCents   int64  `json:"balance_cents"`
	AtRiskCents    int64  `json:"at_risk_cents"`
	AvailableCents int64  `json:"available_cents"`
}

// ReservationResponse confirma a criação de uma reserva
type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}
