package metrics

// The recorders below tolerate a nil receiver so components can treat
// metrics as optional wiring.

// ConnectionOpened increments the live connection gauge
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.safeExecute("ConnectionOpened", func() {
		m.WSConnectionsActive.Inc()
	})
}

// ConnectionClosed decrements the live connection gauge
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.safeExecute("ConnectionClosed", func() {
		m.WSConnectionsActive.Dec()
	})
}

// SetConnectionsActive resyncs the live connection gauge from an
// authoritative count
func (m *Metrics) SetConnectionsActive(count int) {
	if m == nil {
		return
	}
	m.safeExecute("SetConnectionsActive", func() {
		m.WSConnectionsActive.Set(float64(count))
	})
}

// SetRoomsActive sets the occupied-room gauge
func (m *Metrics) SetRoomsActive(count int) {
	if m == nil {
		return
	}
	m.safeExecute("SetRoomsActive", func() {
		m.WSRoomsActive.Set(float64(count))
	})
}

// RoomJoined counts a successful room join by room kind
func (m *Metrics) RoomJoined(kind string) {
	if m == nil {
		return
	}
	m.safeExecute("RoomJoined", func() {
		m.WSRoomJoinsTotal.WithLabelValues(kind).Inc()
	})
}

// RoomJoinDenied counts a denied join by structured reason
func (m *Metrics) RoomJoinDenied(reason string) {
	if m == nil {
		return
	}
	m.safeExecute("RoomJoinDenied", func() {
		m.WSJoinDeniedTotal.WithLabelValues(reason).Inc()
	})
}

// EventEmitted counts one room emission by event type
func (m *Metrics) EventEmitted(eventType string) {
	if m == nil {
		return
	}
	m.safeExecute("EventEmitted", func() {
		m.WSEventsEmittedTotal.WithLabelValues(eventType).Inc()
	})
}

// NotificationDispatched counts one dispatch decision
func (m *Metrics) NotificationDispatched(notificationType, outcome string) {
	if m == nil {
		return
	}
	m.safeExecute("NotificationDispatched", func() {
		m.NotificationsDispatchedTotal.WithLabelValues(notificationType, outcome).Inc()
	})
}

// UnreadCacheHit counts an unread-count cache hit
func (m *Metrics) UnreadCacheHit() {
	if m == nil {
		return
	}
	m.safeExecute("UnreadCacheHit", func() {
		m.UnreadCacheHitsTotal.Inc()
	})
}

// UnreadCacheMiss counts an unread-count cache miss
func (m *Metrics) UnreadCacheMiss() {
	if m == nil {
		return
	}
	m.safeExecute("UnreadCacheMiss", func() {
		m.UnreadCacheMissesTotal.Inc()
	})
}

// DeadlineSweepRun counts one deadline sweep execution
func (m *Metrics) DeadlineSweepRun() {
	if m == nil {
		return
	}
	m.safeExecute("DeadlineSweepRun", func() {
		m.DeadlineSweepRunsTotal.Inc()
	})
}

// DeadlineSweepFailure counts one failed deadline sweep execution
func (m *Metrics) DeadlineSweepFailure() {
	if m == nil {
		return
	}
	m.safeExecute("DeadlineSweepFailure", func() {
		m.DeadlineSweepFailuresTotal.Inc()
	})
}

// PresenceForcedOffline counts one stale session forced offline
func (m *Metrics) PresenceForcedOffline() {
	if m == nil {
		return
	}
	m.safeExecute("PresenceForcedOffline", func() {
		m.PresenceForcedOfflineTotal.Inc()
	})
}
