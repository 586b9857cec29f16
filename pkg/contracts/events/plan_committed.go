package events

import "time"

// Resultado de uma perna individual após o commit do plano.
type LegOutcome struct {
	Sequence      int      `json:"sequence"`
	AccountID     string   `json:"account_id"`
	Service       string   `json:"service"`
	Price         int      `json:"price"`
	Line          *float64 `json:"line,omitempty"`
	StakeCents    int64    `json:"stake_cents"`
	Success       bool     `json:"success"`
	PlacedCents   int64    `json:"placed_cents"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

// Evento emitido pelo planner-service após executar o commit de um plano.
// Carrega o resultado de todas as pernas (sucessos e falhas misturados).
type PlanCommitted struct {
	PlanID           string       `json:"plan_id"`
	EventID          string       `json:"event_id"`
	Sport            string       `json:"sport"`
	Market           string       `json:"market"`
	Selection        string       `json:"selection"`
	Line             *float64     `json:"line,omitempty"`
	ReferencePrice   int          `json:"reference_price"`
	TargetStakeCents int64        `json:"target_stake_cents"`
	FilledStakeCents int64        `json:"filled_stake_cents"`
	PlacedStakeCents int64        `json:"placed_stake_cents"`
	Legs             []LegOutcome `json:"legs"`
	Ts               time.Time    `json:"ts"`
}
