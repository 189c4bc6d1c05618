package metrics

import (
	"time"

	"go.uber.org/zap"
)

// HubStats is the subset of hub state the collector samples
type HubStats interface {
	ConnectionCount() int
	RoomCount() int
}

// RealtimeStatsCollector periodically resyncs the connection and room
// gauges from the hub's authoritative counts, correcting any drift in
// the event-maintained values.
type RealtimeStatsCollector struct {
	hub     HubStats
	metrics *Metrics
	logger  *zap.Logger
	ticker  *time.Ticker
	done    chan bool
}

// NewRealtimeStatsCollector creates a new collector
func NewRealtimeStatsCollector(hub HubStats, metrics *Metrics, logger *zap.Logger) *RealtimeStatsCollector {
	return &RealtimeStatsCollector{
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		ticker:  time.NewTicker(60 * time.Second),
		done:    make(chan bool),
	}
}

// Start begins collecting metrics
func (c *RealtimeStatsCollector) Start() {
	go func() {
		c.collect()

		for {
			select {
			case <-c.ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *RealtimeStatsCollector) Stop() {
	c.ticker.Stop()
	c.done <- true
}

func (c *RealtimeStatsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in realtime stats collection",
				zap.Any("panic", r),
			)
		}
	}()

	c.metrics.SetConnectionsActive(c.hub.ConnectionCount())
	c.metrics.SetRoomsActive(c.hub.RoomCount())
}
