package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/database"
)

var (
	dbConnectionPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pgxpool",
			Name:      "connections",
			Help:      "Current number of connections in the pool",
		},
		[]string{"state"},
	)

	dbConnectionPoolMax = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pgxpool",
			Name:      "max_conns",
			Help:      "Maximum number of connections in the pool",
		},
	)

	dbConnectionAcquireCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pgxpool",
			Name:      "acquire_count",
			Help:      "Total number of connection acquisitions",
		},
	)
)

// collectPoolMetrics publishes connection pool stats until ctx is done.
func collectPoolMetrics(ctx context.Context, pool *database.ConnectionPool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	var lastAcquires int64
	for {
		select {
		case <-ticker.C:
			stats := pool.Pool().Stat()
			dbConnectionPoolSize.WithLabelValues("active").Set(float64(stats.AcquiredConns()))
			dbConnectionPoolSize.WithLabelValues("idle").Set(float64(stats.IdleConns()))
			dbConnectionPoolSize.WithLabelValues("total").Set(float64(stats.TotalConns()))
			dbConnectionPoolMax.Set(float64(stats.MaxConns()))

			acquires := stats.AcquireCount()
			if delta := acquires - lastAcquires; delta > 0 {
				dbConnectionAcquireCount.Add(float64(delta))
			}
			lastAcquires = acquires
		case <-ctx.Done():
			return
		}
	}
}
