package presence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any interleaving of connect and disconnect calls on one identity,
// the connection count never goes negative and the status is OFFLINE
// exactly when the count is zero after a disconnect.
func TestProperty_ConnectionCountNeverNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("count stays non-negative across any connect/disconnect sequence", prop.ForAll(
		func(ops []int) bool {
			tracker := NewTracker(nil, nil)
			tenantID := uuid.New()
			userID := uuid.New()

			expected := 0
			for _, op := range ops {
				var rec Record
				if op == 0 {
					rec, _ = tracker.Connect(tenantID, userID)
					expected++
				} else {
					rec, _ = tracker.Disconnect(tenantID, userID)
					if expected > 0 {
						expected--
					}
				}

				if rec.ActiveConnectionCount < 0 {
					t.Logf("count went negative: %d", rec.ActiveConnectionCount)
					return false
				}
				if rec.ActiveConnectionCount != expected {
					t.Logf("count drifted: got %d, want %d", rec.ActiveConnectionCount, expected)
					return false
				}
			}

			final := tracker.GetPresence(tenantID, userID)
			if final.ActiveConnectionCount == 0 && len(ops) > 0 && ops[len(ops)-1] == 1 {
				if final.Status != StatusOffline {
					t.Logf("zero count after disconnect but status %s", final.Status)
					return false
				}
			}
			if final.Status == StatusOffline && final.ActiveConnectionCount != 0 {
				t.Logf("offline with live count %d", final.ActiveConnectionCount)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1)),
	))

	properties.TestingRun(t)
}

// Disconnects that outnumber connects floor the count at zero instead
// of corrupting the running sum for later connections.
func TestProperty_ExcessDisconnectsDoNotCorruptCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("reconnect after excess disconnects lands on count=1", prop.ForAll(
		func(extraDisconnects int) bool {
			tracker := NewTracker(nil, nil)
			tenantID := uuid.New()
			userID := uuid.New()

			tracker.Connect(tenantID, userID)
			tracker.Disconnect(tenantID, userID)
			for i := 0; i < extraDisconnects; i++ {
				tracker.Disconnect(tenantID, userID)
			}

			rec, changed := tracker.Connect(tenantID, userID)
			return rec.ActiveConnectionCount == 1 &&
				rec.Status == StatusOnline &&
				changed
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// Presence payloads never expose a negative count or an unknown status,
// regardless of how many identities were touched in any order.
func TestProperty_BatchQueriesAlwaysClassify(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("batch lookups classify every user as a known status", prop.ForAll(
		func(connectedCount, absentCount int) bool {
			tracker := NewTracker(nil, nil)
			tenantID := uuid.New()

			userIDs := make([]uuid.UUID, 0, connectedCount+absentCount)
			for i := 0; i < connectedCount; i++ {
				userID := uuid.New()
				tracker.Connect(tenantID, userID)
				userIDs = append(userIDs, userID)
			}
			for i := 0; i < absentCount; i++ {
				userIDs = append(userIDs, uuid.New())
			}

			records := tracker.GetPresenceForUsers(tenantID, userIDs)
			if len(records) != len(userIDs) {
				return false
			}
			for _, rec := range records {
				switch rec.Status {
				case StatusOnline, StatusIdle, StatusOffline:
				default:
					return false
				}
				if rec.ActiveConnectionCount < 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 25),
		gen.IntRange(0, 25),
	))

	properties.TestingRun(t)
}
