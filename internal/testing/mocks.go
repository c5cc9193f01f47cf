package testing

import (
	"sync"
	"time"
)

// MockRecorder is a metrics recorder that keeps every observation in memory.
// It is safe for concurrent use.
type MockRecorder struct {
	mu       sync.Mutex
	analyses []time.Duration
	failures int
	signals  map[string]int
	alerts   map[string]int
}

// NewMockRecorder creates an empty recorder
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		signals: make(map[string]int),
		alerts:  make(map[string]int),
	}
}

// ObserveAnalysis records one analysis duration
func (m *MockRecorder) ObserveAnalysis(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, duration)
	if err != nil {
		m.failures++
	}
}

// ObserveSignal counts a signal action
func (m *MockRecorder) ObserveSignal(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[action]++
}

// ObserveAlert counts an alert category
func (m *MockRecorder) ObserveAlert(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[category]++
}

// Analyses returns how many analyses ran and how many failed.
func (m *MockRecorder) Analyses() (total, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyses), m.failures
}

// Signals returns a copy of the per-action counts.
func (m *MockRecorder) Signals() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCounts(m.signals)
}

// Alerts returns a copy of the per-category counts.
func (m *MockRecorder) Alerts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCounts(m.alerts)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MockStateStore is an in-memory snapshot store
type MockStateStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	saves int
	err   error
}

// NewMockStateStore creates an empty store
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string][]byte)}
}

// SetError makes every subsequent call fail with err
func (m *MockStateStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Load returns the snapshot saved for symbol
func (m *MockStateStore) Load(symbol string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, false, m.err
	}
	data, ok := m.data[symbol]
	return data, ok, nil
}

// Save stores a copy of data for symbol
func (m *MockStateStore) Save(symbol string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[symbol] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many snapshots were written
func (m *MockStateStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
