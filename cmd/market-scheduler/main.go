package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/scheduler"
	"github.com/viralfx/viralfx-platform/internal/shared/config"
	"github.com/viralfx/viralfx-platform/internal/shared/db"
	sharedkafka "github.com/viralfx/viralfx-platform/internal/shared/kafka"
	"github.com/viralfx/viralfx-platform/internal/shared/logger"
	"github.com/viralfx/viralfx-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Producer da fila market-settlement (jobs auto-close e settlement)
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettlement)
	defer writer.Close()

	enqueued := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scheduler_jobs_enqueued_total", Help: "jobs enfileirados"}, []string{"job"})
	prometheus.MustRegister(enqueued)

	sched := &scheduler.Scheduler{
		Log:        log,
		Repo:       scheduler.NewPostgres(pg),
		Publ:       scheduler.NewKafkaPublisher(writer),
		Interval:   30 * time.Second,
		OnEnqueued: func(job string) { enqueued.WithLabelValues(job).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("market-scheduler started", zap.Duration("interval", sched.Interval))
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("scheduler stopped with error", zap.Error(err))
	}
	log.Info("market-scheduler stopped")
}
