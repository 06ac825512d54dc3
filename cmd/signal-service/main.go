package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/shared/cache"
	"github.com/viralfx/viralfx-platform/internal/shared/config"
	"github.com/viralfx/viralfx-platform/internal/shared/db"
	"github.com/viralfx/viralfx-platform/internal/shared/logger"
	"github.com/viralfx/viralfx-platform/internal/shared/metrics"
	sigcache "github.com/viralfx/viralfx-platform/internal/signal-service/cache"
	httpapi "github.com/viralfx/viralfx-platform/internal/signal-service/http"
	"github.com/viralfx/viralfx-platform/internal/signal-service/repo"
	"github.com/viralfx/viralfx-platform/internal/signal-service/ws"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (leitura de mercados/preços)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de preços e pub/sub de broadcast)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Hub WebSocket alimentado pelo canal Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, redisClient, hub, cfg.RedisPubSubChannel)

	api := &httpapi.API{
		ReadRepo: repo.NewReadRepo(pg),
		Cache:    sigcache.New(redisClient),
	}

	r := chi.NewRouter()
	r.Mount("/", api.Router())
	r.Get("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: r,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	log.Info("signal-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
