package presence

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultSweepInterval  = 30 * time.Second
	defaultStaleThreshold = 90 * time.Second
)

// OfflineCallback is invoked once per identity the sweep forced offline
type OfflineCallback func(rec Record)

// Sweeper periodically reconciles tracker state against heartbeat
// recency and notifies registered observers when a user truly left.
type Sweeper struct {
	tracker   *Tracker
	interval  time.Duration
	threshold time.Duration
	logger    *zap.Logger

	mu        sync.Mutex
	callbacks []OfflineCallback
	done      chan struct{}
	running   bool
}

func NewSweeper(tracker *Tracker, interval, threshold time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if threshold <= 0 {
		threshold = defaultStaleThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		tracker:   tracker,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
	}
}

// OnOffline registers an observer for sweep-forced offline transitions
func (s *Sweeper) OnOffline(cb OfflineCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Start launches the sweep loop. Starting an already-running sweeper is
// a no-op, so duplicate timers cannot exist.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	go s.loop(s.done)

	s.logger.Info("presence sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("threshold", s.threshold))
}

// Stop halts the sweep loop. Stopping a stopped sweeper is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)

	s.logger.Info("presence sweeper stopped")
}

func (s *Sweeper) loop(done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce()
		case <-done:
			return
		}
	}
}

// SweepOnce runs a single reconciliation pass and returns the records
// forced offline.
func (s *Sweeper) SweepOnce() []Record {
	flipped := s.tracker.SweepStale(s.threshold)
	if len(flipped) == 0 {
		return nil
	}

	s.mu.Lock()
	callbacks := make([]OfflineCallback, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	for _, rec := range flipped {
		for _, cb := range callbacks {
			s.invoke(cb, rec)
		}
	}
	return flipped
}

// invoke isolates observer panics so one bad observer cannot break the
// sweep or starve the remaining observers.
func (s *Sweeper) invoke(cb OfflineCallback, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("offline callback panicked",
				zap.Any("panic", r),
				zap.String("tenant_id", rec.TenantID.String()),
				zap.String("user_id", rec.UserID.String()))
		}
	}()
	cb(rec)
}
