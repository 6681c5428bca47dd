package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BusinessStatsSource counts the rows behind the workflow gauges
type BusinessStatsSource interface {
	CountOpenRequests(ctx context.Context) (int64, error)
	CountPendingSettlements(ctx context.Context) (int64, error)
}

// BusinessMetricsCollector refreshes the workflow gauges periodically
type BusinessMetricsCollector struct {
	source   BusinessStatsSource
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewBusinessMetricsCollector creates a new collector. A non-positive interval means 60s.
func NewBusinessMetricsCollector(source BusinessStatsSource, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessMetricsCollector{
		source:   source,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector. Safe to call more than once.
func (c *BusinessMetricsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if count, err := c.source.CountOpenRequests(ctx); err != nil {
		c.logger.Error("Failed to count open requests", zap.Error(err))
	} else {
		c.metrics.SetOpenRequests(count)
	}

	if count, err := c.source.CountPendingSettlements(ctx); err != nil {
		c.logger.Error("Failed to count pending settlements", zap.Error(err))
	} else {
		c.metrics.SetPendingSettlements(count)
	}
}
