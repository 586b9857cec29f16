package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// PostgresRepo implementa a persistência de ofertas no Postgres
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertCurrent insere ou atualiza a oferta corrente de um book para uma
// seleção na tabela offers_current. ON CONFLICT na chave natural
// (event_id, market, selection, service) evita duplicidade.
func (r *PostgresRepo) UpsertCurrent(ctx context.Context, e events.OfferUpdate) error {
	const q = `
		INSERT INTO offers_current
		  (event_id, sport, home_team, away_team, market, selection, line, price, service, version, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (event_id, market, selection, service) DO UPDATE SET
		  sport     = EXCLUDED.sport,
		  home_team = EXCLUDED.home_team,
		  away_team = EXCLUDED.away_team,
		  line      = EXCLUDED.line,
		  price     = EXCLUDED.price,
		  version   = EXCLUDED.version,
		  updated_at= EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.EventID, e.Sport, e.HomeTeam, e.AwayTeam, e.Market, e.Selection,
		nullableLine(e.Line), e.Price, e.Service, e.Version, e.UpdatedAt,
	)
	return err
}

// InsertHistory insere a oferta no histórico (offers_history)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.OfferUpdate) error {
	const q = `
		INSERT INTO offers_history
		  (event_id, market, selection, line, price, service, version, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.EventID, e.Market, e.Selection, nullableLine(e.Line), e.Price, e.Service, e.Version, e.UpdatedAt,
	)
	return err
}

func nullableLine(line *float64) sql.NullFloat64 {
	if line == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *line, Valid: true}
}
