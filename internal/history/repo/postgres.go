package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// Postgres grava o histórico de master bets commitados (plano + pernas)
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// SaveCommitted persiste o evento de commit de um plano de forma idempotente:
// reprocessamento do mesmo plan_id não duplica linhas
func (p *Postgres) SaveCommitted(ctx context.Context, ev events.PlanCommitted) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO master_bets
		  (plan_id, event_id, sport, market, selection, line, reference_price,
		   target_stake_cents, filled_stake_cents, placed_stake_cents, committed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (plan_id) DO NOTHING`,
		ev.PlanID, ev.EventID, ev.Sport, ev.Market, ev.Selection, nullableLine(ev.Line),
		ev.ReferencePrice, ev.TargetStakeCents, ev.FilledStakeCents, ev.PlacedStakeCents, ev.Ts,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// plano já registrado; redelivery do Kafka
		return tx.Commit()
	}

	for _, leg := range ev.Legs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO master_bet_legs
			  (plan_id, sequence, account_id, service, price, line, stake_cents,
			   success, placed_cents, failure_reason)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			ev.PlanID, leg.Sequence, leg.AccountID, leg.Service, leg.Price,
			nullableLine(leg.Line), leg.StakeCents, leg.Success, leg.PlacedCents,
			nullableReason(leg.FailureReason),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullableLine(line *float64) sql.NullFloat64 {
	if line == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *line, Valid: true}
}

func nullableReason(reason string) sql.NullString {
	if reason == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: reason, Valid: true}
}
