package dto

import "github.com/radieske/master-bet-engine/internal/planner"

// CreatePlanRequest é o payload de criação de plano (POST /v1/plans)
type CreatePlanRequest struct {
	Target              planner.BetTarget `json:"target"`
	StakeCents          int64             `json:"stake_cents"`
	PointTolerance      float64           `json:"point_tolerance"`
	PriceToleranceCents int               `json:"price_tolerance_cents"`
}
