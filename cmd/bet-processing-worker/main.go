package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/betproc/cache"
	"github.com/viralfx/viralfx-platform/internal/betproc/dispatcher"
	"github.com/viralfx/viralfx-platform/internal/betproc/processor"
	"github.com/viralfx/viralfx-platform/internal/betproc/pubsub"
	"github.com/viralfx/viralfx-platform/internal/betproc/repo"
	"github.com/viralfx/viralfx-platform/internal/betproc/wallet"
	sharedcache "github.com/viralfx/viralfx-platform/internal/shared/cache"
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

	// Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka consumer: fila bet-processing (consumer group bet-processing)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetProcessing, "bet-processing")
	defer reader.Close()

	var dlqWriter *sharedkafka.Writer
	if cfg.TopicBetProcessingDLQ != "" {
		dlqWriter = sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetProcessingDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "betproc_jobs_consumed_total", Help: "jobs consumidos"})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{Name: "betproc_bets_accepted_total", Help: "apostas aceitas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betproc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, accepted, errorsBy)

	proc := &processor.Processor{
		Log:        log,
		Repo:       repo.NewPostgres(pg),
		Wallet:     wallet.New(cfg.WalletURL),
		Cache:      cache.NewRedisCache(redisClient, 60*time.Second),
		Broadcast:  pubsub.NewRedisBroadcaster(redisClient),
		Channel:    cfg.RedisPubSubChannel,
		OnAccepted: func() { accepted.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	disp := dispatcher.New(log, proc)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	// Shutdown gracioso
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bet-processing-worker started", zap.String("consume", cfg.TopicBetProcessing))

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
			if dlqWriter != nil {
				_ = sharedkafka.WriteJSON(ctx, dlqWriter, string(key), value)
			}
			time.Sleep(500 * time.Millisecond)
		}
	}

	log.Info("bet-processing-worker stopped")
}
