package dto

import (
	"time"

	"github.com/radieske/master-bet-engine/internal/planner"
)

// PlanResponse devolve o plano com o total preenchido já calculado
type PlanResponse struct {
	ID               string                  `json:"id"`
	Target           planner.BetTarget       `json:"target"`
	Tolerance        planner.ToleranceConfig `json:"tolerance"`
	TargetStakeCents int64                   `json:"target_stake_cents"`
	FilledStakeCents int64                   `json:"filled_stake_cents"`
	Legs             []planner.AllocationLeg `json:"legs"`
	Status           planner.Status          `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

func NewPlanResponse(p *planner.ExecutionPlan) PlanResponse {
	return PlanResponse{
		ID:               p.ID,
		Target:           p.Target,
		Tolerance:        p.Tolerance,
		TargetStakeCents: p.TargetStakeCents,
		FilledStakeCents: p.FilledCents(),
		Legs:             p.Legs,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
	}
}

// CommitResponse enumera o desfecho de cada perna após o commit
type CommitResponse struct {
	PlanID      string              `json:"plan_id"`
	Status      planner.Status      `json:"status"`
	PlacedCents int64               `json:"placed_cents"`
	Legs        []planner.LegResult `json:"legs"`
}

// TargetSearchItem é um resultado da busca de alvos (um card por book)
type TargetSearchItem struct {
	EventID   string   `json:"event_id"`
	Sport     string   `json:"sport"`
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
	Market    string   `json:"market"`
	Selection string   `json:"selection"`
	Line      *float64 `json:"line,omitempty"`
	Price     int      `json:"price"`
	Service   string   `json:"service"`
	UpdatedAt string   `json:"updated_at"`
}

// HistoryLeg é uma perna persistida de um master bet commitado
type HistoryLeg struct {
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

// HistoryPlan é um master bet no histórico, com suas pernas
type HistoryPlan struct {
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
	CommittedAt      string       `json:"committed_at"`
	Legs             []HistoryLeg `json:"legs"`
}
