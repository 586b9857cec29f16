package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/planner-service/accounts"
	"github.com/radieske/master-bet-engine/internal/planner-service/book"
	phttp "github.com/radieske/master-bet-engine/internal/planner-service/http"
	"github.com/radieske/master-bet-engine/internal/planner-service/offers"
	kpub "github.com/radieske/master-bet-engine/internal/planner-service/producer"
	"github.com/radieske/master-bet-engine/internal/planner-service/repo"
	"github.com/radieske/master-bet-engine/internal/planner-service/store"
	sharedcache "github.com/radieske/master-bet-engine/internal/shared/cache"
	"github.com/radieske/master-bet-engine/internal/shared/config"
	"github.com/radieske/master-bet-engine/internal/shared/db"
	skafka "github.com/radieske/master-bet-engine/internal/shared/kafka"
	"github.com/radieske/master-bet-engine/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic plan_committed)
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPlanCommitted)
	defer writer.Close()

	// Métricas Prometheus do planner
	plansCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_plans_created_total", Help: "planos rascunho criados",
	})
	legsPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_legs_placed_total", Help: "pernas executadas no commit, por desfecho",
	}, []string{"outcome"})
	prometheus.MustRegister(plansCreated, legsPlaced)

	// deps
	draftTTL := 5 * time.Minute // ofertas são snapshot; rascunho velho expira
	api := &phttp.API{
		Log:      log,
		Offers:   offers.NewSource(rdb, pg),
		Accounts: accounts.New(cfg.AccountURL),
		Store:    store.NewRedisStore(rdb, draftTTL),
		Book:     book.New(cfg.BookPlaceURL),
		Read:     repo.NewReadRepo(pg),
		Publ:     kpub.NewKafkaPublisher(writer, cfg.TopicPlanCommitted),

		OnPlanCreated: func() { plansCreated.Inc() },
		OnLegPlaced: func(success bool) {
			outcome := "success"
			if !success {
				outcome = "failure"
			}
			legsPlaced.WithLabelValues(outcome).Inc()
		},
	}

	// HTTP público
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("planner-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
