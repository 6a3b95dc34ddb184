package core

import (
	"sync"
)

// Analytics accumulates classification counters for operational dashboards.
// Counters are only ever incremented; Snapshot returns a copy.
type Analytics struct {
	mu            sync.Mutex
	total         int
	byType        map[MessageType]int
	byPriority    map[Priority]int
	confidenceSum float64
}

// NewAnalytics creates an empty analytics collector
func NewAnalytics() *Analytics {
	return &Analytics{
		byType:     make(map[MessageType]int),
		byPriority: make(map[Priority]int),
	}
}

// Record counts one classified email
func (a *Analytics) Record(c Classification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.byType[c.Type]++
	a.byPriority[c.Priority]++
	a.confidenceSum += c.Confidence
}

// Snapshot returns the current aggregate counters
func (a *Analytics) Snapshot() AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := AnalyticsSnapshot{
		TotalProcessed:  a.total,
		ByType:          make(map[MessageType]int, len(a.byType)),
		ByPriority:      make(map[Priority]int, len(a.byPriority)),
		UrgentCount:     a.byPriority[PriorityUrgent],
		LocationChanges: a.byType[TypeLocationChange],
		Cancellations:   a.byType[TypeCancellation],
	}
	for t, n := range a.byType {
		snapshot.ByType[t] = n
	}
	for p, n := range a.byPriority {
		snapshot.ByPriority[p] = n
	}
	if a.total > 0 {
		snapshot.AverageConfidence = a.confidenceSum / float64(a.total)
	}

	return snapshot
}
