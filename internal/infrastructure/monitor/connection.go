package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything that can report its reachability: a pgx pool, an
// sqlx handle, a redis client adapter or the bolt session store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SessionCounter is implemented by session stores that can count entries.
type SessionCounter interface {
	Size() (int, error)
}

type Monitor struct {
	pingers  map[string]Pinger
	sessions SessionCounter

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pingers:  make(map[string]Pinger),
		interval: interval,
		timeout:  3 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a named dependency. Call before Start.
func (m *Monitor) Register(name string, p Pinger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingers[name] = p
}

// CountSessions reports the size of a local session store in Status.
func (m *Monitor) CountSessions(c SessionCounter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = c
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh probes every dependency once.
func (m *Monitor) Refresh(ctx context.Context) Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.pingers))
	for name := range m.pingers {
		names = append(names, name)
	}
	pingers := m.pingers
	sessions := m.sessions
	m.mu.RUnlock()
	sort.Strings(names)

	status := Status{
		Services:  make(map[string]bool, len(names)),
		LastCheck: time.Now(),
	}
	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := pingers[name].Ping(pingCtx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("service", name), zap.Error(err))
		}
		status.Services[name] = err == nil
	}
	if sessions != nil {
		size, err := sessions.Size()
		if err != nil {
			m.logger.Warn("session store size check failed", zap.Error(err))
		}
		status.Sessions = size
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}
