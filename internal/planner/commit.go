package planner

import (
	"context"
)

// PlacementResult é a resposta do book externo para uma colocação
type PlacementResult struct {
	Success     bool
	PlacedCents int64
	Reason      string
}

// PlacementClient coloca uma aposta em um book externo (uma chamada por perna)
type PlacementClient interface {
	Place(ctx context.Context, target BetTarget, leg AllocationLeg) (PlacementResult, error)
}

// LegResult é o desfecho de uma perna dentro do CommitResult
type LegResult struct {
	Leg           AllocationLeg `json:"leg"`
	Success       bool          `json:"success"`
	PlacedCents   int64         `json:"placed_cents"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// CommitResult enumera o desfecho de todas as pernas, na ordem de execução
type CommitResult struct {
	PlanID      string      `json:"plan_id"`
	Legs        []LegResult `json:"legs"`
	PlacedCents int64       `json:"placed_cents"`
}

// Commit executa as pernas do plano em ordem de Sequence, uma por vez
// (melhor preço primeiro). Falha de uma perna não aborta as seguintes nem
// desfaz as anteriores: cada perna é uma transação independente num book
// de terceiro, sem atomicidade possível entre contas. O plano vira
// COMMITTED mesmo com pernas falhas; o resultado carrega todas.
func Commit(ctx context.Context, client PlacementClient, plan *ExecutionPlan) (*CommitResult, error) {
	if plan.Status != StatusDrafted {
		return nil, ErrNotDraft
	}

	result := &CommitResult{
		PlanID: plan.ID,
		Legs:   make([]LegResult, 0, len(plan.Legs)),
	}

	for _, leg := range plan.Legs {
		lr := LegResult{Leg: leg}

		placed, err := client.Place(ctx, plan.Target, leg)
		switch {
		case err != nil:
			// rede, timeout, book fora: reporta por perna e segue
			lr.FailureReason = err.Error()
		case !placed.Success:
			reason := placed.Reason
			if reason == "" {
				reason = "placement rejected"
			}
			lr.FailureReason = reason
		default:
			lr.Success = true
			lr.PlacedCents = placed.PlacedCents
			if lr.PlacedCents == 0 {
				lr.PlacedCents = leg.StakeCents
			}
			result.PlacedCents += lr.PlacedCents
		}

		result.Legs = append(result.Legs, lr)
	}

	plan.Status = StatusCommitted
	return result, nil
}
