package presence

import (
	"time"

	"github.com/google/uuid"
)

// Status classifies a user's live connectivity
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusIdle    Status = "IDLE"
	StatusOffline Status = "OFFLINE"
)

// Key identifies one presence record per (tenant, user) pair
type Key struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

// Record is the per-identity connection state. ActiveConnectionCount is
// a running sum over connect/disconnect, so records are only mutated by
// the tracker while it holds its lock.
type Record struct {
	TenantID              uuid.UUID `json:"tenantId"`
	UserID                uuid.UUID `json:"userId"`
	ActiveConnectionCount int       `json:"activeConnectionCount"`
	LastSeenAt            time.Time `json:"lastSeenAt"`
	LastActiveAt          time.Time `json:"lastActiveAt"`
	Status                Status    `json:"status"`
}

// Payload is the external, non-sensitive presence shape. Online is true
// for both ONLINE and IDLE so consumers that only care about
// reachability keep working.
type Payload struct {
	UserID       string `json:"userId"`
	Status       Status `json:"status"`
	Online       bool   `json:"online"`
	LastSeenAt   string `json:"lastSeenAt"`
	LastActiveAt string `json:"lastActiveAt"`
}

// ToPayload maps the internal record to the external shape
func (r Record) ToPayload() Payload {
	return Payload{
		UserID:       r.UserID.String(),
		Status:       r.Status,
		Online:       r.Status == StatusOnline || r.Status == StatusIdle,
		LastSeenAt:   r.LastSeenAt.UTC().Format(time.RFC3339),
		LastActiveAt: r.LastActiveAt.UTC().Format(time.RFC3339),
	}
}

// offlineRecord gives absent identities an explicit OFFLINE shape with
// epoch timestamps, so batch queries never report "unknown".
func offlineRecord(tenantID, userID uuid.UUID) Record {
	epoch := time.Unix(0, 0).UTC()
	return Record{
		TenantID:     tenantID,
		UserID:       userID,
		LastSeenAt:   epoch,
		LastActiveAt: epoch,
		Status:       StatusOffline,
	}
}
