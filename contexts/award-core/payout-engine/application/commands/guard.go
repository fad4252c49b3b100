package commands

import "sync"

// InflightGuard tracks which sessions have a recalculation running so a
// second request for the same session can be rejected instead of racing the
// first one. Different sessions never block each other.
type InflightGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{running: make(map[string]struct{})}
}

// TryAcquire claims the session. It returns false when a recalculation is
// already in flight for it.
func (g *InflightGuard) TryAcquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[sessionID]; ok {
		return false
	}
	g.running[sessionID] = struct{}{}
	return true
}

func (g *InflightGuard) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, sessionID)
}
