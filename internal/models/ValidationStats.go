package models

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

const StatsSnapshotVersion = 1

// SchemaStats is the persisted counter set for one schema version.
type SchemaStats struct {
	Accepted        int64 `json:"accepted"`
	Rejected        int64 `json:"rejected"`
	PartialFailures int64 `json:"partial_failures"`
	TopLevelErrors  int64 `json:"top_level_errors"`
}

// StatsSnapshot is the persistence envelope for ValidationStats.
type StatsSnapshot struct {
	Version    int                     `json:"version"`
	Schemas    map[string]*SchemaStats `json:"schemas"`
	Violations map[string]int64        `json:"violations"`
	TakenAt    time.Time               `json:"taken_at"`
}

type schemaCounters struct {
	accepted        atomic.Int64
	rejected        atomic.Int64
	partialFailures atomic.Int64
	topLevelErrors  atomic.Int64
}

// ValidationStats counts codec outcomes per schema version and violations
// per rule. Safe for concurrent use.
type ValidationStats struct {
	schemas map[SchemaVersion]*schemaCounters

	mu         sync.RWMutex
	violations map[string]*atomic.Int64
}

func NewValidationStats() *ValidationStats {
	return &ValidationStats{
		schemas: map[SchemaVersion]*schemaCounters{
			SchemaA: {},
			SchemaB: {},
		},
		violations: make(map[string]*atomic.Int64),
	}
}

func (s *ValidationStats) counters(version SchemaVersion) *schemaCounters {
	return s.schemas[version]
}

// RecordAccepted counts a document that parsed cleanly.
func (s *ValidationStats) RecordAccepted(version SchemaVersion, partialFailures int, topLevelError bool) {
	c := s.counters(version)
	if c == nil {
		return
	}
	c.accepted.Inc()
	c.partialFailures.Add(int64(partialFailures))
	if topLevelError {
		c.topLevelErrors.Inc()
	}
}

// RecordRejected counts a document that failed validation, once per
// violated rule occurrence.
func (s *ValidationStats) RecordRejected(version SchemaVersion, rules []string) {
	c := s.counters(version)
	if c == nil {
		return
	}
	c.rejected.Inc()
	for _, rule := range rules {
		s.violation(rule).Inc()
	}
}

func (s *ValidationStats) violation(rule string) *atomic.Int64 {
	s.mu.RLock()
	v, ok := s.violations[rule]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok = s.violations[rule]; ok {
		return v
	}
	v = atomic.NewInt64(0)
	s.violations[rule] = v
	return v
}

// Totals returns accepted and rejected counts across all versions.
func (s *ValidationStats) Totals() (accepted, rejected int64) {
	for _, c := range s.schemas {
		accepted += c.accepted.Load()
		rejected += c.rejected.Load()
	}
	return accepted, rejected
}

func (s *ValidationStats) Snapshot() *StatsSnapshot {
	snap := &StatsSnapshot{
		Version:    StatsSnapshotVersion,
		Schemas:    make(map[string]*SchemaStats, len(s.schemas)),
		Violations: make(map[string]int64),
		TakenAt:    time.Now().UTC(),
	}
	for version, c := range s.schemas {
		snap.Schemas[version.String()] = &SchemaStats{
			Accepted:        c.accepted.Load(),
			Rejected:        c.rejected.Load(),
			PartialFailures: c.partialFailures.Load(),
			TopLevelErrors:  c.topLevelErrors.Load(),
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for rule, v := range s.violations {
		snap.Violations[rule] = v.Load()
	}
	return snap
}

// Restore replaces all counters with the snapshot's values. Unknown schema
// names in the snapshot are ignored.
func (s *ValidationStats) Restore(snap *StatsSnapshot) {
	if snap == nil {
		return
	}
	for version, c := range s.schemas {
		st := snap.Schemas[version.String()]
		if st == nil {
			st = &SchemaStats{}
		}
		c.accepted.Store(st.Accepted)
		c.rejected.Store(st.Rejected)
		c.partialFailures.Store(st.PartialFailures)
		c.topLevelErrors.Store(st.TopLevelErrors)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = make(map[string]*atomic.Int64, len(snap.Violations))
	for rule, n := range snap.Violations {
		s.violations[rule] = atomic.NewInt64(n)
	}
}
