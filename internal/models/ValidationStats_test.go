package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationStats_RecordAccepted(t *testing.T) {
	s := NewValidationStats()
	s.RecordAccepted(SchemaA, 2, false)
	s.RecordAccepted(SchemaA, 0, true)
	s.RecordAccepted(SchemaB, 1, false)

	snap := s.Snapshot()
	assert.Equal(t, StatsSnapshotVersion, snap.Version)
	assert.Equal(t, &SchemaStats{Accepted: 2, PartialFailures: 2, TopLevelErrors: 1}, snap.Schemas["a"])
	assert.Equal(t, &SchemaStats{Accepted: 1, PartialFailures: 1}, snap.Schemas["b"])
	assert.False(t, snap.TakenAt.IsZero())
}

func TestValidationStats_RecordRejected(t *testing.T) {
	s := NewValidationStats()
	s.RecordRejected(SchemaB, []string{"OutOfRange", "OutOfRange", "InvalidResolution"})
	s.RecordRejected(SchemaA, []string{"InvalidEnum"})

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.Schemas["a"].Rejected)
	assert.Equal(t, int64(1), snap.Schemas["b"].Rejected)
	assert.Equal(t, map[string]int64{"OutOfRange": 2, "InvalidResolution": 1, "InvalidEnum": 1}, snap.Violations)

	accepted, rejected := s.Totals()
	assert.Equal(t, int64(0), accepted)
	assert.Equal(t, int64(2), rejected)
}

func TestValidationStats_UnknownVersionIgnored(t *testing.T) {
	s := NewValidationStats()
	s.RecordAccepted(SchemaVersion(9), 1, false)
	s.RecordRejected(SchemaVersion(9), []string{"OutOfRange"})

	accepted, rejected := s.Totals()
	assert.Zero(t, accepted+rejected)
	assert.Empty(t, s.Snapshot().Violations)
}

func TestValidationStats_Restore(t *testing.T) {
	s := NewValidationStats()
	s.RecordRejected(SchemaA, []string{"MissingField"})

	s.Restore(&StatsSnapshot{
		Version: StatsSnapshotVersion,
		Schemas: map[string]*SchemaStats{
			"a":       {Accepted: 10, Rejected: 4},
			"unknown": {Accepted: 99},
		},
		Violations: map[string]int64{"OutOfRange": 4},
	})

	snap := s.Snapshot()
	assert.Equal(t, int64(10), snap.Schemas["a"].Accepted)
	assert.Equal(t, int64(4), snap.Schemas["a"].Rejected)
	assert.Equal(t, &SchemaStats{}, snap.Schemas["b"])
	assert.Equal(t, map[string]int64{"OutOfRange": 4}, snap.Violations)
	assert.NotContains(t, snap.Schemas, "unknown")

	s.RecordRejected(SchemaA, []string{"OutOfRange"})
	assert.Equal(t, int64(5), s.Snapshot().Violations["OutOfRange"])
}

func TestValidationStats_RestoreNil(t *testing.T) {
	s := NewValidationStats()
	s.RecordAccepted(SchemaA, 0, false)
	s.Restore(nil)

	accepted, _ := s.Totals()
	assert.Equal(t, int64(1), accepted)
}

func TestValidationStats_Concurrent(t *testing.T) {
	s := NewValidationStats()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if j%2 == 0 {
					s.RecordAccepted(SchemaA, 1, false)
				} else {
					s.RecordRejected(SchemaB, []string{"OutOfRange"})
				}
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	accepted, rejected := s.Totals()
	require.Equal(t, int64(2500), accepted)
	require.Equal(t, int64(2500), rejected)
	assert.Equal(t, int64(2500), s.Snapshot().Violations["OutOfRange"])
}
