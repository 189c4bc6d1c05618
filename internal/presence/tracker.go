package presence

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tracker owns all presence mutation. Every operation takes the
// (tenant, user) identity key and runs under a single lock, which keeps
// connect/disconnect ordering intact for the same identity.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger
}

func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// Connect registers one more live connection for the identity. The
// first connection creates the record. Returns the resulting record and
// whether the status changed, so duplicate ONLINE broadcasts can be
// suppressed.
func (t *Tracker) Connect(tenantID, userID uuid.UUID) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	key := Key{TenantID: tenantID, UserID: userID}
	rec, ok := t.store.Get(key)
	if !ok {
		created := offlineRecord(tenantID, userID)
		rec = &created
		t.store.Put(key, rec)
	}

	prev := rec.Status
	rec.ActiveConnectionCount++
	rec.Status = StatusOnline
	rec.LastSeenAt = now
	rec.LastActiveAt = now

	return *rec, prev != StatusOnline
}

// Disconnect unregisters one connection, flooring the count at zero.
// When the count reaches zero the identity goes OFFLINE. Disconnects
// for identities that never connected do not create records.
func (t *Tracker) Disconnect(tenantID, userID uuid.UUID) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	key := Key{TenantID: tenantID, UserID: userID}
	rec, ok := t.store.Get(key)
	if !ok {
		synthetic := offlineRecord(tenantID, userID)
		synthetic.LastSeenAt = now
		return synthetic, false
	}

	if rec.ActiveConnectionCount > 0 {
		rec.ActiveConnectionCount--
	}
	rec.LastSeenAt = now

	prev := rec.Status
	if rec.ActiveConnectionCount == 0 {
		rec.Status = StatusOffline
	}

	return *rec, prev != rec.Status
}

// Ping records a heartbeat. A ping from an unknown identity synthesizes
// a record with one connection, since a heartbeat implies a live
// connection even if connect was missed. An IDLE identity returns to
// ONLINE.
func (t *Tracker) Ping(tenantID, userID uuid.UUID) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	key := Key{TenantID: tenantID, UserID: userID}
	rec, ok := t.store.Get(key)
	if !ok {
		created := offlineRecord(tenantID, userID)
		rec = &created
		rec.ActiveConnectionCount = 1
		rec.Status = StatusOnline
		rec.LastSeenAt = now
		rec.LastActiveAt = now
		t.store.Put(key, rec)
		return *rec, true
	}

	rec.LastSeenAt = now
	rec.LastActiveAt = now

	prev := rec.Status
	switch rec.Status {
	case StatusIdle:
		rec.Status = StatusOnline
	case StatusOffline:
		if rec.ActiveConnectionCount == 0 {
			rec.ActiveConnectionCount = 1
		}
		rec.Status = StatusOnline
	}

	return *rec, prev != rec.Status
}

// SetIdle toggles between ONLINE and IDLE. Only meaningful while the
// identity has live connections; otherwise a no-op.
func (t *Tracker) SetIdle(tenantID, userID uuid.UUID, isIdle bool) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := Key{TenantID: tenantID, UserID: userID}
	rec, ok := t.store.Get(key)
	if !ok {
		return offlineRecord(tenantID, userID), false
	}
	if rec.ActiveConnectionCount == 0 {
		return *rec, false
	}

	now := time.Now()
	if isIdle && rec.Status == StatusOnline {
		rec.Status = StatusIdle
		return *rec, true
	}
	if !isIdle && rec.Status == StatusIdle {
		rec.Status = StatusOnline
		rec.LastSeenAt = now
		rec.LastActiveAt = now
		return *rec, true
	}

	return *rec, false
}

// GetPresence returns the identity's record, or an OFFLINE placeholder
// with epoch timestamps when the identity has never connected.
func (t *Tracker) GetPresence(tenantID, userID uuid.UUID) Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.store.Get(Key{TenantID: tenantID, UserID: userID}); ok {
		return *rec
	}
	return offlineRecord(tenantID, userID)
}

// GetPresenceForUsers reports presence for a batch of users. Absent
// identities come back OFFLINE, never missing.
func (t *Tracker) GetPresenceForUsers(tenantID uuid.UUID, userIDs []uuid.UUID) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]Record, 0, len(userIDs))
	for _, userID := range userIDs {
		if rec, ok := t.store.Get(Key{TenantID: tenantID, UserID: userID}); ok {
			records = append(records, *rec)
		} else {
			records = append(records, offlineRecord(tenantID, userID))
		}
	}
	return records
}

// GetOnlineUsersForTenant returns records with status ONLINE or IDLE
func (t *Tracker) GetOnlineUsersForTenant(tenantID uuid.UUID) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	var records []Record
	t.store.ForEach(func(key Key, rec *Record) {
		if key.TenantID != tenantID {
			return
		}
		if rec.Status == StatusOnline || rec.Status == StatusIdle {
			records = append(records, *rec)
		}
	})
	return records
}

// GetAllPresenceForTenant returns every record for the tenant
func (t *Tracker) GetAllPresenceForTenant(tenantID uuid.UUID) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	var records []Record
	t.store.ForEach(func(key Key, rec *Record) {
		if key.TenantID == tenantID {
			records = append(records, *rec)
		}
	})
	return records
}

// SweepStale flips records that claim activity but have no live
// connections and no heartbeat within the threshold. Returns the
// flipped records. Connection counting drifts when a socket dies
// without a close frame; this is the backstop.
func (t *Tracker) SweepStale(threshold time.Duration) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-threshold)
	var flipped []Record
	t.store.ForEach(func(key Key, rec *Record) {
		if rec.Status == StatusOffline {
			return
		}
		if rec.ActiveConnectionCount != 0 {
			return
		}
		if rec.LastSeenAt.After(cutoff) {
			return
		}
		rec.Status = StatusOffline
		flipped = append(flipped, *rec)
		t.logger.Info("stale presence forced offline",
			zap.String("tenant_id", key.TenantID.String()),
			zap.String("user_id", key.UserID.String()),
			zap.Time("last_seen_at", rec.LastSeenAt))
	})
	return flipped
}
