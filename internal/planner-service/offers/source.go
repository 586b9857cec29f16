package offers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/master-bet-engine/internal/planner"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// BookOffer é o preço corrente de um book para a seleção do alvo,
// ainda sem conta associada (o join com saldos é feito pelo handler)
type BookOffer struct {
	Service   string    `json:"service"`
	Price     int       `json:"price"`
	Line      *float64  `json:"line,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Source lê o snapshot de ofertas: Redis primeiro (hash por seleção,
// um campo por book, mantido pelo offers-processor), Postgres como fallback
type Source struct {
	Rdb *redis.Client
	DB  *sql.DB
}

func NewSource(rdb *redis.Client, db *sql.DB) *Source {
	return &Source{Rdb: rdb, DB: db}
}

// HashKey gera a chave Redis do hash de ofertas de uma seleção
func HashKey(eventID, market, selection string) string {
	return fmt.Sprintf("offers:current:%s:%s:%s", eventID, market, selection)
}

// Current retorna as ofertas correntes para o alvo. Snapshot do momento
// da chamada; o preço pode mudar antes do commit.
func (s *Source) Current(ctx context.Context, target planner.BetTarget) ([]BookOffer, error) {
	key := HashKey(target.EventID, string(target.Market), target.Selection)

	fields, err := s.Rdb.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		out := make([]BookOffer, 0, len(fields))
		for svc, raw := range fields {
			var ev events.OfferUpdate
			if jerr := json.Unmarshal([]byte(raw), &ev); jerr != nil {
				continue // campo corrompido não derruba o snapshot
			}
			out = append(out, BookOffer{
				Service:   svc,
				Price:     ev.Price,
				Line:      ev.Line,
				UpdatedAt: ev.UpdatedAt,
			})
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	// Fallback: leitura direta do offers_current (cache frio ou Redis fora)
	return s.fromPostgres(ctx, target)
}

func (s *Source) fromPostgres(ctx context.Context, target planner.BetTarget) ([]BookOffer, error) {
	const q = `
		SELECT service, price, line, updated_at
		FROM offers_current
		WHERE event_id = $1 AND market = $2 AND selection = $3
		ORDER BY service;
	`
	rows, err := s.DB.QueryContext(ctx, q, target.EventID, string(target.Market), target.Selection)
	if err != nil {
		return nil, fmt.Errorf("query offers_current: %w", err)
	}
	defer rows.Close()

	var out []BookOffer
	for rows.Next() {
		var o BookOffer
		var line sql.NullFloat64
		if err := rows.Scan(&o.Service, &o.Price, &line, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if line.Valid {
			v := line.Float64
			o.Line = &v
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
