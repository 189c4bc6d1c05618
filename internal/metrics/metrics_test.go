package metrics

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), nil)
}

// Helper function to get counter value
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

// Helper function to get gauge value
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("Failed to write gauge metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	// Test that all metrics are non-nil
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should not be nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should not be nil")
	}
	if m.DBConnectionsOpen == nil {
		t.Error("DBConnectionsOpen should not be nil")
	}
	if m.DBConnectionsInUse == nil {
		t.Error("DBConnectionsInUse should not be nil")
	}
	if m.DBConnectionsIdle == nil {
		t.Error("DBConnectionsIdle should not be nil")
	}
	if m.DBConnectionsMax == nil {
		t.Error("DBConnectionsMax should not be nil")
	}
	if m.DBConnectionWaitTotal == nil {
		t.Error("DBConnectionWaitTotal should not be nil")
	}
	if m.DBConnectionWaitDuration == nil {
		t.Error("DBConnectionWaitDuration should not be nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration should not be nil")
	}
	if m.DBQueryErrors == nil {
		t.Error("DBQueryErrors should not be nil")
	}
	if m.WSConnectionsActive == nil {
		t.Error("WSConnectionsActive should not be nil")
	}
	if m.WSRoomsActive == nil {
		t.Error("WSRoomsActive should not be nil")
	}
	if m.WSRoomJoinsTotal == nil {
		t.Error("WSRoomJoinsTotal should not be nil")
	}
	if m.WSJoinDeniedTotal == nil {
		t.Error("WSJoinDeniedTotal should not be nil")
	}
	if m.WSEventsEmittedTotal == nil {
		t.Error("WSEventsEmittedTotal should not be nil")
	}
	if m.NotificationsDispatchedTotal == nil {
		t.Error("NotificationsDispatchedTotal should not be nil")
	}
	if m.UnreadCacheHitsTotal == nil {
		t.Error("UnreadCacheHitsTotal should not be nil")
	}
	if m.UnreadCacheMissesTotal == nil {
		t.Error("UnreadCacheMissesTotal should not be nil")
	}
	if m.DeadlineSweepRunsTotal == nil {
		t.Error("DeadlineSweepRunsTotal should not be nil")
	}
	if m.DeadlineSweepFailuresTotal == nil {
		t.Error("DeadlineSweepFailuresTotal should not be nil")
	}
	if m.PresenceForcedOfflineTotal == nil {
		t.Error("PresenceForcedOfflineTotal should not be nil")
	}
}

// TestMetricNamingAndHelp verifies every exported metric carries the service
// namespace and a non-empty help description.
func TestMetricNamingAndHelp(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, nil)

	// Touch every labeled vec so Gather reports a family for it
	m.RecordHTTPRequest("GET", "/api/realtime/presence", 200, time.Millisecond)
	m.RecordDBQuery("SELECT", "notifications", time.Millisecond, errors.New("test error"))
	m.RoomJoined("project")
	m.RoomJoinDenied("access-denied")
	m.EventEmitted("TASK_CREATED")
	m.NotificationDispatched("TASK_ASSIGNED", "delivered")

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Fatal("Expected gathered metric families, got none")
	}

	for _, mf := range metricFamilies {
		name := mf.GetName()
		help := mf.GetHelp()

		if !strings.HasPrefix(name, namespace+"_") {
			t.Errorf("Metric '%s' is missing the '%s' namespace", name, namespace)
		}
		if len(strings.TrimSpace(help)) == 0 {
			t.Errorf("Metric '%s' has an empty help description", name)
		}
	}
}

func TestUpdateDBStats(t *testing.T) {
	m := getTestMetrics()

	m.UpdateDBStats(sql.DBStats{
		MaxOpenConnections: 25,
		OpenConnections:    7,
		InUse:              3,
		Idle:               4,
		WaitCount:          2,
		WaitDuration:       500 * time.Millisecond,
	})

	if v := getGaugeValue(t, m.DBConnectionsOpen); v != 7 {
		t.Errorf("Expected 7 open connections, got %f", v)
	}
	if v := getGaugeValue(t, m.DBConnectionsInUse); v != 3 {
		t.Errorf("Expected 3 in-use connections, got %f", v)
	}
	if v := getGaugeValue(t, m.DBConnectionsIdle); v != 4 {
		t.Errorf("Expected 4 idle connections, got %f", v)
	}
	if v := getGaugeValue(t, m.DBConnectionsMax); v != 25 {
		t.Errorf("Expected max 25 connections, got %f", v)
	}
	if v := getCounterValue(t, m.DBConnectionWaitTotal); v != 2 {
		t.Errorf("Expected wait count 2, got %f", v)
	}
	if v := getCounterValue(t, m.DBConnectionWaitDuration); v != 0.5 {
		t.Errorf("Expected wait duration 0.5s, got %f", v)
	}
}

func TestUpdateDBStatsIgnoresWrongType(t *testing.T) {
	m := getTestMetrics()

	m.UpdateDBStats("not db stats")

	if v := getGaugeValue(t, m.DBConnectionsOpen); v != 0 {
		t.Errorf("Expected gauges untouched for wrong type, got %f", v)
	}
}

func TestShouldSkipEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/metrics", true},
		{"/health", true},
		{"/ready", true},
		{"/api/realtime/metrics", true},
		{"/api/realtime/health", true},
		{"/api/realtime/ready", true},
		{"/api/realtime/ws", false},
		{"/api/realtime/notifications", false},
	}

	for _, tt := range tests {
		if got := ShouldSkipEndpoint(tt.path); got != tt.want {
			t.Errorf("ShouldSkipEndpoint(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRecordDBQueryNormalizesOperation(t *testing.T) {
	m := getTestMetrics()

	m.RecordDBQuery("SELECT", "notifications", 10*time.Millisecond, nil)
	m.RecordDBQuery("select", "notifications", 10*time.Millisecond, errors.New("boom"))

	errValue := getCounterValue(t, m.DBQueryErrors.WithLabelValues("select", "notifications"))
	if errValue != 1 {
		t.Errorf("Expected 1 query error under lowercase operation, got %f", errValue)
	}
}
