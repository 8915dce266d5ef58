package services

import (
	"spc/internal/models"
	"spc/internal/providers"
	"spc/internal/schema"
	"spc/internal/structures"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (testutil imports this package) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockMetrics struct {
	mu          sync.Mutex
	validations map[string]int
	violations  map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{validations: map[string]int{}, violations: map[string]int{}}
}

func (m *mockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *mockMetrics) IncValidations(schema string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations[schema+":"+outcome]++
}
func (m *mockMetrics) AddViolations(rule string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations[rule] += count
}

func newTestService(t *testing.T, defaultSchema string) (ValidationServiceInterface, *mockMetrics) {
	t.Helper()
	metrics := newMockMetrics()
	conf := &structures.Config{Codec: structures.CodecConfig{DefaultSchema: defaultSchema}}
	svc, err := NewValidationService(conf, &mockLogger{}, metrics)
	require.NoError(t, err)
	return svc, metrics
}

const (
	validDoc   = `{"results":{"a":{"asOf":"2024-01-01T00:00:00Z","followerCount":5},"b":{"error":"not found"}}}`
	invalidDoc = `{"results":{"k":{"asOf":"2024-01-01T00:00:00Z","episodes":{"g":{"listenerHistogram":[50,101],"listenerHistogramResolutionSeconds":120}}}}}`
)

func TestNewValidationService_DefaultVersion(t *testing.T) {
	svc, _ := newTestService(t, "B")
	assert.Equal(t, models.SchemaB, svc.DefaultVersion())
}

func TestNewValidationService_UnknownDefault(t *testing.T) {
	conf := &structures.Config{Codec: structures.CodecConfig{DefaultSchema: "z"}}
	_, err := NewValidationService(conf, &mockLogger{}, newMockMetrics())
	assert.Error(t, err)
}

func TestValidate_Accepted(t *testing.T) {
	svc, metrics := newTestService(t, "a")

	res, err := svc.Validate([]byte(validDoc), models.SchemaA)
	require.NoError(t, err)

	assert.True(t, res.Valid())
	assert.Empty(t, res.Violations)
	assert.Equal(t, 1, res.Response.PartialFailures())
	assert.Equal(t, 1, metrics.validations["a:accepted"])

	snap := svc.GetSnapshot()
	assert.Equal(t, int64(1), snap.Schemas["a"].Accepted)
	assert.Equal(t, int64(1), snap.Schemas["a"].PartialFailures)
	assert.Equal(t, int64(0), snap.Schemas["b"].Accepted)
}

func TestValidate_Rejected(t *testing.T) {
	svc, metrics := newTestService(t, "a")

	res, err := svc.Validate([]byte(invalidDoc), models.SchemaB)
	require.NoError(t, err)

	assert.False(t, res.Valid())
	require.Len(t, res.Violations, 2)
	assert.Equal(t, schema.OutOfRange, res.Violations.Find("results.k.episodes.g.listenerHistogram[1]").Rule)
	assert.Equal(t, schema.InvalidResolution, res.Violations.Find("results.k.episodes.g.listenerHistogramResolutionSeconds").Rule)

	assert.Equal(t, 1, metrics.validations["b:rejected"])
	assert.Equal(t, 1, metrics.violations["OutOfRange"])
	assert.Equal(t, 1, metrics.violations["InvalidResolution"])

	snap := svc.GetSnapshot()
	assert.Equal(t, int64(1), snap.Schemas["b"].Rejected)
	assert.Equal(t, int64(1), snap.Violations["OutOfRange"])

	accepted, rejected := svc.Totals()
	assert.Equal(t, int64(0), accepted)
	assert.Equal(t, int64(1), rejected)
}

func TestValidate_SameDocumentDiffersByVersion(t *testing.T) {
	svc, _ := newTestService(t, "a")
	doc := []byte(`{"results":{"k":{"asOf":"2024-01-01T00:00:00Z","episodes":{"g":{"listenerHistogramResolution":"30s"}}}}}`)

	resA, err := svc.Validate(doc, models.SchemaA)
	require.NoError(t, err)
	assert.True(t, resA.Valid())

	// schema B ignores the schema A key and falls back to the default
	resB, err := svc.Validate(doc, models.SchemaB)
	require.NoError(t, err)
	require.True(t, resB.Valid())
	ep := resB.Response.Results["k"].Metrics.Episodes.OrElse(nil)["g"]
	assert.Equal(t, time.Minute, ep.ResolutionFor(models.SchemaB))
}

func TestValidate_MalformedJSON(t *testing.T) {
	svc, metrics := newTestService(t, "a")

	res, err := svc.Validate([]byte(`{"results":`), models.SchemaA)
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 1, metrics.validations["a:malformed"])

	accepted, rejected := svc.Totals()
	assert.Zero(t, accepted)
	assert.Zero(t, rejected)
}

func TestNormalize_Canonical(t *testing.T) {
	svc, _ := newTestService(t, "a")
	doc := []byte(`{"results":{"z":{"totalListeners":10,"asOf":"2024-01-01T00:00:00.000+00:00"},"a":{"error":"gone"}}}`)

	out, res, err := svc.Normalize(doc, models.SchemaA)
	require.NoError(t, err)
	require.True(t, res.Valid())
	assert.Equal(t, `{"results":{"a":{"error":"gone"},"z":{"asOf":"2024-01-01T00:00:00Z","totalListeners":10}}}`, string(out))
}

func TestNormalize_Invalid(t *testing.T) {
	svc, _ := newTestService(t, "a")

	out, res, err := svc.Normalize([]byte(`{"error":""}`), models.SchemaA)
	require.NoError(t, err)
	assert.Nil(t, out)
	require.False(t, res.Valid())
	assert.Equal(t, schema.MissingField, res.Violations[0].Rule)
}

func TestSnapshot_PutRestoresCounters(t *testing.T) {
	svc, _ := newTestService(t, "a")
	snap := &models.StatsSnapshot{
		Version: models.StatsSnapshotVersion,
		Schemas: map[string]*models.SchemaStats{
			"a": {Accepted: 7, Rejected: 2},
			"b": {Accepted: 1},
		},
		Violations: map[string]int64{"InvalidTimestamp": 2},
	}

	svc.PutSnapshot(snap)

	accepted, rejected := svc.Totals()
	assert.Equal(t, int64(8), accepted)
	assert.Equal(t, int64(2), rejected)
	assert.Equal(t, int64(2), svc.GetSnapshot().Violations["InvalidTimestamp"])
}

func TestValidate_Concurrent(t *testing.T) {
	svc, _ := newTestService(t, "a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Validate([]byte(validDoc), models.SchemaA)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Validate([]byte(invalidDoc), models.SchemaB)
		}()
	}
	wg.Wait()

	accepted, rejected := svc.Totals()
	assert.Equal(t, int64(50), accepted)
	assert.Equal(t, int64(50), rejected)
	assert.Equal(t, int64(50), svc.GetSnapshot().Violations["OutOfRange"])
}
