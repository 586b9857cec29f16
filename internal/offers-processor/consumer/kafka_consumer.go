package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/offers-processor/cache"
	"github.com/radieske/master-bet-engine/internal/offers-processor/repository"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// Processor consome offer_updates do Kafka, atualiza o cache que o planner
// lê e persiste corrente + histórico no banco.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase

	OnAfterPersist func(events.OfferUpdate) // broadcast após persistir
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.OfferUpdate
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// Atualiza o hash de ofertas da seleção no Redis
		if err := p.Cache.SetCurrent(ctx, ev); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// não bloqueia persistência se falhar o cache
		} else if p.OnCached != nil {
			p.OnCached()
		}

		// Persiste/atualiza oferta corrente e histórico no Postgres
		if err := p.Repo.UpsertCurrent(ctx, ev); err != nil {
			p.Log.Warn("db upsert failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_upsert")
			}
			continue
		}
		if err := p.Repo.InsertHistory(ctx, ev); err != nil {
			p.Log.Warn("db insert history failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_history")
			}
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist()
		}
		if p.OnAfterPersist != nil {
			p.OnAfterPersist(ev)
		}
	}
}
