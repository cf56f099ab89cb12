// Package observability provides structured logging, Prometheus
// metrics, health checks, and graceful shutdown for the service.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, nil)
//	logger.WithField("developer", email).Info("developer synchronized")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(nil)
//	metrics.RecordCacheHit("redis")
//	http.Handle("/metrics", metrics.Handler())
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	mux.HandleFunc("/healthz", checker.Liveness)
//	mux.HandleFunc("/readyz", checker.Readiness)
package observability
