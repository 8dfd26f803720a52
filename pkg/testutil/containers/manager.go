//go:build integration

// Package containers manages shared test containers for integration tests.
//
// One container of each kind is started lazily on first request and shared by
// every suite in the test process. Containers are not terminated explicitly;
// the testcontainers reaper (Ryuk) removes them when the process exits. Suites
// are responsible for wiping state between tests (FlushAll, TruncateTables).
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	redpanda *RedpandaContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns the shared PostgreSQL container, starting it if needed.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetRedis returns the shared Redis container, starting it if needed.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}

// GetRedpanda returns the shared Redpanda container, starting it if needed.
func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redpanda == nil {
		m.redpanda = NewRedpandaContainer(t)
	}
	return m.redpanda
}
