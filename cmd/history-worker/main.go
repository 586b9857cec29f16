package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	hrepo "github.com/radieske/master-bet-engine/internal/history/repo"
	"github.com/radieske/master-bet-engine/internal/shared/config"
	"github.com/radieske/master-bet-engine/internal/shared/db"
	"github.com/radieske/master-bet-engine/internal/shared/kafka"
	"github.com/radieske/master-bet-engine/internal/shared/logger"
	"github.com/radieske/master-bet-engine/internal/shared/metrics"
	ev "github.com/radieske/master-bet-engine/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com banco de dados Postgres para o ledger de histórico
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	repo := hrepo.NewPostgres(pg)

	// Kafka consumer: consome eventos plan_committed para gravar o histórico
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "history-worker",
		Topic:    cfg.TopicPlanCommitted,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ para mensagens que não conseguimos persistir após retries
	var dlqWriter *kafkago.Writer
	if cfg.TopicPlanCommittedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPlanCommittedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus do worker
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_plans_persisted_total", Help: "planos gravados no histórico"})
	dlqSent := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_dlq_messages_total", Help: "mensagens enviadas pra DLQ"})
	prometheus.MustRegister(persisted, dlqSent)

	// Servidor HTTP para métricas Prometheus e healthcheck
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("history-worker started", zap.String("consume", cfg.TopicPlanCommitted))

	ctx := context.Background()

	// Loop principal: consome eventos, persiste com retry e envia DLQ no limite
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var committed ev.PlanCommitted
		if jerr := json.Unmarshal(msg.Value, &committed); jerr != nil {
			log.Error("unmarshal plan_committed", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
				dlqSent.Inc()
			}
			continue
		}

		if err := persistOne(ctx, repo, &committed); err != nil {
			log.Error("persist plan", zap.String("planId", committed.PlanID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, committed.PlanID, msg.Value)
				dlqSent.Inc()
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
			continue
		}
		persisted.Inc()
	}
}

// persistOne grava o plano commitado com retry simples antes de desistir
func persistOne(ctx context.Context, repo *hrepo.Postgres, committed *ev.PlanCommitted) error {
	err := repo.SaveCommitted(ctx, *committed)
	if err == nil {
		return nil
	}
	const retries = 3
	for i := 0; i < retries; i++ {
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
		if err = repo.SaveCommitted(ctx, *committed); err == nil {
			return nil
		}
	}
	return err
}
