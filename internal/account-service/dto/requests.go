package dto

// CreateAccountRequest cadastra uma conta de bookmaker
type CreateAccountRequest struct {
	Service  string `json:"service"`
	Username string `json:"username"`
}

// DepositRequest adiciona saldo a uma conta
type DepositRequest struct {
	AccountID   string `json:"account_id"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

// ReserveRequest bloqueia saldo (at-risk) para uma colocação
type ReserveRequest struct {
	AccountID   string `json:"account_id"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

// SettleRequest efetiva uma reserva (stake consumido no book)
type SettleRequest struct {
	AccountID   string `json:"account_id"`
	ExternalRef string `json:"external_ref"`
}

// ReleaseRequest desfaz uma reserva, devolvendo o valor ao disponível
type ReleaseRequest struct {
	AccountID   string `json:"account_id"`
	ExternalRef string `json:"external_ref"`
}
