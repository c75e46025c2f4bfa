package runtime

import (
	"fmt"
	"time"

	"github.com/mockmate/interview-runtime/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Registry tracks the active machines. Sessions idle past the TTL are
// evicted and torn down: an abandoned page never leaks a stream or a
// ticking countdown.
type Registry struct {
	cache  *gocache.Cache
	max    int
	logger *zap.Logger
}

func NewRegistry(idleTTL time.Duration, maxActive int, logger *zap.Logger) *Registry {
	cleanup := idleTTL / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}

	c := gocache.New(idleTTL, cleanup)
	c.OnEvicted(func(sessionID string, v interface{}) {
		machine, ok := v.(*Machine)
		if !ok {
			return
		}
		logger.Info("evicting session", zap.String("session_id", sessionID))
		machine.Teardown()
	})

	return &Registry{
		cache:  c,
		max:    maxActive,
		logger: logger,
	}
}

// Add registers a started machine under its session ID.
func (r *Registry) Add(machine *Machine) error {
	if r.cache.ItemCount() >= r.max {
		return fmt.Errorf("%w: too many active sessions (max %d)", entity.ErrInvalidParameter, r.max)
	}
	r.cache.SetDefault(machine.Session().SessionID, machine)
	return nil
}

// Get returns the machine for a session and refreshes its idle TTL.
func (r *Registry) Get(sessionID string) (*Machine, error) {
	v, ok := r.cache.Get(sessionID)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	machine := v.(*Machine)
	// Activity keeps the session alive.
	r.cache.SetDefault(sessionID, machine)
	return machine, nil
}

// Remove tears the session down and forgets it. The eviction hook runs
// the teardown.
func (r *Registry) Remove(sessionID string) error {
	if _, ok := r.cache.Get(sessionID); !ok {
		return entity.ErrSessionNotFound
	}
	r.cache.Delete(sessionID)
	return nil
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Shutdown tears down every active session. Used on process exit.
func (r *Registry) Shutdown() {
	for sessionID, item := range r.cache.Items() {
		if machine, ok := item.Object.(*Machine); ok {
			machine.Teardown()
		}
		r.cache.Delete(sessionID)
	}
}
