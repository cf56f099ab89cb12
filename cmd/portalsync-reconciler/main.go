package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/cache"
	"github.com/gatewaykit/portalsync/pkg/config"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional)")
	schedule   = flag.String("schedule", "", "Cron schedule override (default: value from config)")
	runOnce    = flag.Bool("run-once", false, "Run one reconciliation pass and exit")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cronSpec := cfg.Reconciler.Schedule
	if *schedule != "" {
		cronSpec = *schedule
	}

	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to connect to account database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping account database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	entityCache, err := cache.NewRedisCache(redisClient, cache.Config{
		TTL:       cfg.Cache.TTL,
		L1Entries: cfg.Cache.L1Entries,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to initialize entity cache: %v", err)
	}

	edgeClient := edge.NewClient(cfg.Edge.BaseURL, cfg.Edge.Organization,
		cfg.Edge.Username, cfg.Edge.Password,
		edge.WithHTTPClient(&http.Client{Timeout: cfg.Edge.Timeout}),
		edge.WithCache(entityCache),
	)

	logger := observability.NewLogger(cfg.ParsedLogLevel(), os.Stdout)
	reconciler := sync.NewReconciler(edgeClient, entityCache, accounts.NewPostgresStore(db), nil, logger, nil)
	reconciler.SetConcurrency(cfg.Reconciler.Concurrency)

	if *runOnce {
		stats, err := reconciler.Run(context.Background())
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}
		log.WithFields(logrus.Fields{
			"developers":        stats.Developers,
			"matched_accounts":  stats.MatchedAccounts,
			"orphaned_accounts": stats.OrphanedAccounts,
		}).Info("Reconciliation completed")
		return
	}

	c := cron.New()
	if _, err := reconciler.Schedule(c, cronSpec); err != nil {
		log.Fatalf("Failed to schedule reconciliation: %v", err)
	}
	c.Start()
	log.WithField("schedule", cronSpec).Info("Reconciler started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infof("Received signal %s, shutting down", sig)

	ctx := c.Stop()
	<-ctx.Done()
	log.Info("Shutdown complete")
}
