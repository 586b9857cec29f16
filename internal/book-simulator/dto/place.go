package dto

type PlaceReq struct {
	AccountID  string   `json:"account_id"`
	EventID    string   `json:"event_id"`
	Market     string   `json:"market"`
	Selection  string   `json:"selection"`
	Line       *float64 `json:"line,omitempty"`
	Price      int      `json:"price"`
	StakeCents int64    `json:"stake_cents"`
}

type PlaceResp struct {
	Success     bool   `json:"success"`
	PlacedCents int64  `json:"placed_cents"`
	TicketRef   string `json:"ticketRef,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Motivos de recusa simulados pelo book
const (
	ReasonPriceMoved       = "price moved"
	ReasonAccountSuspended = "account suspended"
	ReasonStakeLimited     = "stake over limit"
)
