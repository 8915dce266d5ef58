package testutil

import (
	"spc/internal/models"
	"spc/internal/providers"
	"spc/internal/services"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and records calls.
type MockMetrics struct {
	mu                   sync.Mutex
	Validations          map[string]int // key: "schema:outcome"
	Violations           map[string]int
	PersistenceDurations []time.Duration
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Validations: make(map[string]int), Violations: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncValidations(schema string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Validations[schema+":"+outcome]++
}

func (m *MockMetrics) AddViolations(rule string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Violations[rule] += count
}

func (m *MockMetrics) ObservePersistenceDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceDurations = append(m.PersistenceDurations, d)
}

// MockValidationService implements services.ValidationServiceInterface with
// a settable snapshot and totals.
type MockValidationService struct {
	mu       sync.Mutex
	Snapshot *models.StatsSnapshot
	PutCalls []*models.StatsSnapshot
	Accepted int64
	Rejected int64
}

func (m *MockValidationService) Validate(_ []byte, version models.SchemaVersion) (*services.ValidationResult, error) {
	return &services.ValidationResult{Version: version}, nil
}

func (m *MockValidationService) Normalize(data []byte, version models.SchemaVersion) ([]byte, *services.ValidationResult, error) {
	return data, &services.ValidationResult{Version: version}, nil
}

func (m *MockValidationService) DefaultVersion() models.SchemaVersion {
	return models.SchemaA
}

func (m *MockValidationService) GetSnapshot() *models.StatsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshot != nil {
		return m.Snapshot
	}
	return models.NewValidationStats().Snapshot()
}

func (m *MockValidationService) PutSnapshot(snap *models.StatsSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = append(m.PutCalls, snap)
}

func (m *MockValidationService) Totals() (accepted, rejected int64) {
	return m.Accepted, m.Rejected
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       int
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.Closed++ }
