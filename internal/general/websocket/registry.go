package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"fleet-tracker/internal/general/logger"
	"fleet-tracker/internal/general/metrics"
	"fleet-tracker/internal/ports"
)

const defaultMaxFanout = 64

var _ ports.Broadcaster = (*Registry)(nil)

// Registry is the set of live subscribers. All methods are safe for
// concurrent use; Register and Unregister may run during a Broadcast.
type Registry struct {
	logger    *logger.Logger
	maxFanout int

	mu     sync.RWMutex
	subs   map[string]Subscriber
	closed bool // set by CloseAll; later registrations are refused
}

// NewRegistry creates an empty registry. maxFanout bounds concurrent sends
// per broadcast; <= 0 uses the default.
func NewRegistry(log *logger.Logger, maxFanout int) *Registry {
	if maxFanout <= 0 {
		maxFanout = defaultMaxFanout
	}
	return &Registry{
		logger:    log,
		maxFanout: maxFanout,
		subs:      make(map[string]Subscriber),
	}
}

// Register adds sub. Registering the same subscriber again keeps one entry.
// After CloseAll the registry is closed: sub is closed at once and Register
// returns false.
func (r *Registry) Register(sub Subscriber) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = sub.Close()
		return false
	}
	r.subs[sub.ID()] = sub
	n := len(r.subs)
	r.mu.Unlock()

	metrics.SetSubscribers(n)
	return true
}

// Unregister removes sub if it is the entry stored under its ID. It reports
// whether anything was removed and is safe to call repeatedly.
func (r *Registry) Unregister(sub Subscriber) bool {
	r.mu.Lock()
	cur, ok := r.subs[sub.ID()]
	if ok && cur == sub {
		delete(r.subs, sub.ID())
	}
	n := len(r.subs)
	r.mu.Unlock()

	metrics.SetSubscribers(n)
	return ok && cur == sub
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast delivers payload to every subscriber registered when the call
// starts. Deliveries are independent: a failed one unregisters and closes
// that subscriber and is reported only in the counts.
//
// It returns when the slowest send finishes. At most maxFanout sends run at
// once and each is bounded by wsWriteTimeout or the ctx deadline, whichever
// is sooner, so stalled peers delay the caller by at most
// ceil(n/maxFanout) times that bound. A ctx deadline that expires counts the
// unfinished sends as failures; a cancelled ctx (shutdown) only counts them.
func (r *Registry) Broadcast(ctx context.Context, payload []byte) ports.FanoutResult {
	members := r.members()
	if len(members) == 0 {
		return ports.FanoutResult{}
	}

	var delivered, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.maxFanout)

	for _, sub := range members {
		g.Go(func() error {
			if err := sub.Send(ctx, payload); err != nil {
				failed.Add(1)
				if errors.Is(ctx.Err(), context.Canceled) {
					// shutting down; CloseAll drains the set
					r.logger.Warn(ctx, "ws_delivery_aborted", "Delivery interrupted by shutdown", map[string]any{
						"subscriber_id": sub.ID(),
					})
					return nil
				}
				r.logger.Error(ctx, "ws_delivery_failed", "Dropping subscriber after failed delivery", err, map[string]any{
					"subscriber_id": sub.ID(),
				})
				r.Unregister(sub)
				_ = sub.Close()
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := ports.FanoutResult{
		Recipients: len(members),
		Delivered:  int(delivered.Load()),
		Failed:     int(failed.Load()),
	}
	metrics.AddDeliveries(res.Delivered, res.Failed)
	return res
}

// CloseAll unregisters and closes every subscriber and closes the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]Subscriber)
	r.closed = true
	r.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	metrics.SetSubscribers(0)

	if len(subs) > 0 {
		r.logger.Info(context.Background(), "ws_registry_drained", "Closed all subscribers", map[string]any{
			"count": len(subs),
		})
	}
}

func (r *Registry) members() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	return out
}
