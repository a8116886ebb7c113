package chi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/metrics"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
)

// Hub defaults, aligned with the config defaults.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultMaxSessions   = 10000
)

// HubConfig bounds the session hub. Zero values fall back to defaults.
type HubConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// Hub owns the live browse sessions served over HTTP: one pagination
// controller per opaque session id. Idle sessions expire after TTL;
// when the hub is full the least recently used session is evicted.
// Expiry and eviction cancel the controller's in-flight work.
type Hub struct {
	factory     func(pageSize int) *browse.Service
	ttl         time.Duration
	maxSessions int
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session

	done     chan struct{}
	stopOnce sync.Once
}

type session struct {
	svc      *browse.Service
	lastSeen time.Time
}

// NewHub creates a session hub and starts its janitor goroutine. The
// factory builds one controller per session; pageSize 0 means the
// server default.
func NewHub(factory func(pageSize int) *browse.Service, cfg HubConfig, logger *zap.Logger) *Hub {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		factory:     factory,
		ttl:         cfg.TTL,
		maxSessions: cfg.MaxSessions,
		logger:      logger,
		sessions:    make(map[string]*session),
		done:        make(chan struct{}),
	}
	go h.janitor(cfg.SweepInterval)
	return h
}

// Create registers a new session and returns its id and controller.
func (h *Hub) Create(pageSize int) (string, *browse.Service) {
	svc := h.factory(pageSize)
	id := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sessions) >= h.maxSessions {
		h.evictOldestLocked()
	}
	h.sessions[id] = &session{svc: svc, lastSeen: time.Now()}
	metrics.BrowseSessionsActive.Set(float64(len(h.sessions)))
	return id, svc
}

// Get resolves a session id to its controller and marks it as used.
func (h *Hub) Get(id string) (*browse.Service, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.lastSeen = time.Now()
	return sess.svc, nil
}

// Delete closes a session's controller and removes it.
func (h *Hub) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.svc.Close()
	delete(h.sessions, id)
	metrics.BrowseSessionsActive.Set(float64(len(h.sessions)))
	return nil
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Stop halts the janitor and closes every session.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sess := range h.sessions {
		sess.svc.Close()
		delete(h.sessions, id)
	}
	metrics.BrowseSessionsActive.Set(0)
}

func (h *Hub) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) sweep() {
	cutoff := time.Now().Add(-h.ttl)

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sess := range h.sessions {
		if sess.lastSeen.Before(cutoff) {
			sess.svc.Close()
			delete(h.sessions, id)
			h.logger.Debug("session expired", zap.String("session", id))
		}
	}
	metrics.BrowseSessionsActive.Set(float64(len(h.sessions)))
}

// evictOldestLocked drops the least recently used session. Caller
// holds h.mu.
func (h *Hub) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range h.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID = id
			oldest = sess.lastSeen
		}
	}
	if oldestID == "" {
		return
	}
	h.sessions[oldestID].svc.Close()
	delete(h.sessions, oldestID)
	h.logger.Warn("session hub full, evicted oldest", zap.String("session", oldestID))
}
