package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	ahttp "github.com/radieske/master-bet-engine/internal/account-service/http"
	arepo "github.com/radieske/master-bet-engine/internal/account-service/repo"
	"github.com/radieske/master-bet-engine/internal/shared/config"
	"github.com/radieske/master-bet-engine/internal/shared/db"
	"github.com/radieske/master-bet-engine/internal/shared/logger"
	"github.com/radieske/master-bet-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("account-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "account-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para o ledger de contas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Instancia repositório e servidor HTTP de contas
	repo := arepo.NewPostgres(pg)
	api := ahttp.NewServer(log, repo)

	// Servidor HTTP público (API de contas)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8082
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (ex: 9098)
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Inicia servidor principal da API de contas
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
