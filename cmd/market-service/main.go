package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mhttp "github.com/viralfx/viralfx-platform/internal/market-service/http"
	"github.com/viralfx/viralfx-platform/internal/market-service/price"
	kpub "github.com/viralfx/viralfx-platform/internal/market-service/producer"
	"github.com/viralfx/viralfx-platform/internal/market-service/repo"
	"github.com/viralfx/viralfx-platform/internal/market-service/wallet"
	"github.com/viralfx/viralfx-platform/internal/shared/config"
	"github.com/viralfx/viralfx-platform/internal/shared/db"
	sharedkafka "github.com/viralfx/viralfx-platform/internal/shared/kafka"
	"github.com/viralfx/viralfx-platform/internal/shared/logger"
	"github.com/viralfx/viralfx-platform/internal/shared/metrics"
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

	// Redis (validação de drift de preço)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers (filas bet-processing e market-settlement)
	betWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetProcessing)
	defer betWriter.Close()
	settlementWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettlement)
	defer settlementWriter.Close()

	repository := repo.NewPostgres(pg)
	pv := price.NewValidator(rdb)
	wcli := wallet.New(cfg.WalletURL)
	publ := kpub.NewKafkaPublisher(betWriter, settlementWriter)

	// HTTP público
	api := mhttp.NewServer(log, repository, pv, wcli, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	log.Info("market-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
