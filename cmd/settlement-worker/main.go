package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/settlement/dispatcher"
	kpub "github.com/viralfx/viralfx-platform/internal/settlement/producer"
	"github.com/viralfx/viralfx-platform/internal/settlement/repo"
	"github.com/viralfx/viralfx-platform/internal/settlement/settler"
	"github.com/viralfx/viralfx-platform/internal/settlement/wallet"
	"github.com/viralfx/viralfx-platform/internal/shared/config"
	"github.com/viralfx/viralfx-platform/internal/shared/db"
	sharedkafka "github.com/viralfx/viralfx-platform/internal/shared/kafka"
	"github.com/viralfx/viralfx-platform/internal/shared/logger"
	"github.com/viralfx/viralfx-platform/internal/shared/metrics"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (snapshot do mercado, persistência da liquidação)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: fila market-settlement (jobs de liquidação/fechamento)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicMarketSettlement, "settlement-worker")
	defer reader.Close()

	// Kafka producers: evento market_settled e DLQ
	settledWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettled)
	defer settledWriter.Close()

	var dlqWriter *sharedkafka.Writer
	if cfg.TopicMarketSettlementDLQ != "" {
		dlqWriter = sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettlementDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_jobs_consumed_total", Help: "jobs consumidos"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_markets_settled_total", Help: "mercados liquidados"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_jobs_failed_total", Help: "jobs com erro"}, []string{"job"})
	prometheus.MustRegister(consumed, settled, failed)

	svc := &settler.Settler{
		Log:     log,
		Repo:    repo.NewPostgres(pg),
		Wallet:  wallet.New(cfg.WalletURL),
		Events:  kpub.NewKafkaPublisher(settledWriter),
		RakeBps: cfg.RakeBps,
	}
	disp := dispatcher.New(log, svc)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()

	// Shutdown gracioso
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicMarketSettlement))

	// Loop principal: consome jobs, despacha pelo nome e envia falhas pra DLQ
	for {
		key, value, err := sharedkafka.ReadNext(ctx, reader)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var env jobs.Envelope
		if jerr := json.Unmarshal(value, &env); jerr != nil {
			log.Error("unmarshal job envelope", zap.Error(jerr))
			if dlqWriter != nil {
				_ = sharedkafka.WriteJSON(ctx, dlqWriter, string(key), value)
			}
			continue
		}

		if err := disp.Dispatch(ctx, env); err != nil {
			failed.WithLabelValues(env.Name).Inc()
			if dlqWriter != nil {
				_ = sharedkafka.WriteJSON(ctx, dlqWriter, string(key), value)
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if env.Name == jobs.ProcessMarketSettlement {
			settled.Inc()
		}
	}

	log.Info("settlement-worker stopped")
}
