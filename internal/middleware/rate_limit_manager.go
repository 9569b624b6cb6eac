package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL   = 3 * time.Minute
	operationTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitManager owns the per-IP limiters and evicts idle ones.
type RateLimitManager struct {
	visitors   map[string]*visitor
	visitorsMu sync.Mutex

	// operations holds one limiter set per expensive operation (publish,
	// export, import), keyed by operation then IP.
	operations   map[string]map[string]*visitor
	operationsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateLimitManager creates a manager whose cleanup loop stops with ctx or
// Shutdown.
func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		visitors:   make(map[string]*visitor),
		operations: make(map[string]map[string]*visitor),
		ctx:        managerCtx,
		cancel:     cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

func newLimiter(requestsPerWindow, windowSeconds int) *rate.Limiter {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	limit := rate.Limit(float64(requestsPerWindow) / float64(windowSeconds))
	return rate.NewLimiter(limit, requestsPerWindow)
}

// GetVisitor retrieves or creates the general limiter for ip. A
// non-positive request budget disables limiting.
func (m *RateLimitManager) GetVisitor(ip string, requestsPerWindow, windowSeconds int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	m.visitorsMu.Lock()
	defer m.visitorsMu.Unlock()

	v, exists := m.visitors[ip]
	if !exists {
		v = &visitor{limiter: newLimiter(requestsPerWindow, windowSeconds)}
		m.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// GetOperationLimiter retrieves or creates the limiter of one operation for
// ip.
func (m *RateLimitManager) GetOperationLimiter(ip, operation string, requestsPerWindow, windowSeconds int) *rate.Limiter {
	if requestsPerWindow <= 0 || operation == "" {
		return nil
	}

	m.operationsMu.Lock()
	defer m.operationsMu.Unlock()

	limiters, ok := m.operations[operation]
	if !ok {
		limiters = make(map[string]*visitor)
		m.operations[operation] = limiters
	}

	v, exists := limiters[ip]
	if !exists {
		v = &visitor{limiter: newLimiter(requestsPerWindow, windowSeconds)}
		limiters[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.visitorsMu.Lock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(m.visitors, ip)
		}
	}
	m.visitorsMu.Unlock()

	m.operationsMu.Lock()
	for operation, limiters := range m.operations {
		for ip, v := range limiters {
			if now.Sub(v.lastSeen) > operationTTL {
				delete(limiters, ip)
			}
		}
		if len(limiters) == 0 {
			delete(m.operations, operation)
		}
	}
	m.operationsMu.Unlock()
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
