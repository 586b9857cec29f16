package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/master-bet-engine/internal/planner-service/dto"
)

// ReadRepo concentra as leituras do planner-service: busca de alvos sobre
// offers_current e histórico de master bets gravado pelo history-worker
type ReadRepo struct {
	DB *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db} }

// SearchTargets busca seleções apostáveis por nome de time (um card por book)
func (r *ReadRepo) SearchTargets(ctx context.Context, search string, limit int) ([]dto.TargetSearchItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const q = `
		SELECT event_id, sport, home_team, away_team, market, selection, line, price, service,
		       to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM offers_current
		WHERE home_team ILIKE '%' || $1 || '%'
		   OR away_team ILIKE '%' || $1 || '%'
		   OR selection ILIKE '%' || $1 || '%'
		ORDER BY event_id, market, selection, service
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.TargetSearchItem
	for rows.Next() {
		var it dto.TargetSearchItem
		var line sql.NullFloat64
		if err := rows.Scan(&it.EventID, &it.Sport, &it.HomeTeam, &it.AwayTeam,
			&it.Market, &it.Selection, &line, &it.Price, &it.Service, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if line.Valid {
			v := line.Float64
			it.Line = &v
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListHistory retorna master bets commitados em ordem decrescente, paginado
func (r *ReadRepo) ListHistory(ctx context.Context, limit, offset int) ([]dto.HistoryPlan, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT plan_id, event_id, sport, market, selection, line, reference_price,
		       target_stake_cents, filled_stake_cents, placed_stake_cents,
		       to_char(committed_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM master_bets
		ORDER BY committed_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.HistoryPlan
	for rows.Next() {
		var h dto.HistoryPlan
		var line sql.NullFloat64
		if err := rows.Scan(&h.PlanID, &h.EventID, &h.Sport, &h.Market, &h.Selection, &line,
			&h.ReferencePrice, &h.TargetStakeCents, &h.FilledStakeCents, &h.PlacedStakeCents,
			&h.CommittedAt); err != nil {
			return nil, err
		}
		if line.Valid {
			v := line.Float64
			h.Line = &v
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Pernas por plano (segunda query por item; páginas são pequenas)
	for i := range out {
		legs, err := r.legsByPlan(ctx, out[i].PlanID)
		if err != nil {
			return nil, err
		}
		out[i].Legs = legs
	}
	return out, nil
}

func (r *ReadRepo) legsByPlan(ctx context.Context, planID string) ([]dto.HistoryLeg, error) {
	const q = `
		SELECT sequence, account_id, service, price, line, stake_cents,
		       success, placed_cents, COALESCE(failure_reason, '')
		FROM master_bet_legs
		WHERE plan_id = $1
		ORDER BY sequence;
	`
	rows, err := r.DB.QueryContext(ctx, q, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.HistoryLeg
	for rows.Next() {
		var l dto.HistoryLeg
		var line sql.NullFloat64
		if err := rows.Scan(&l.Sequence, &l.AccountID, &l.Service, &l.Price, &line,
			&l.StakeCents, &l.Success, &l.PlacedCents, &l.FailureReason); err != nil {
			return nil, err
		}
		if line.Valid {
			v := line.Float64
			l.Line = &v
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
