package stats

import "github.com/stretchr/testify/mock"

// MockStatsUpdater is a StatsProvider test double. Room and registry
// tests typically register it with .Maybe() expectations, since metric
// traffic is incidental to what they assert.
type MockStatsUpdater struct {
	mock.Mock
}

func (m *MockStatsUpdater) Incr(name string) {
	m.Called(name)
}

func (m *MockStatsUpdater) Decr(name string) {
	m.Called(name)
}

func (m *MockStatsUpdater) RegisterMetric(name string) {
	m.Called(name)
}

func (m *MockStatsUpdater) Run() {
	m.Called()
}
