package metrics

import (
	"context"
	"time"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
)

// ObserveAuditEvent is an audit.Log observer that counts events by type.
func ObserveAuditEvent(e audit.Event) {
	AuditEventsTotal.WithLabelValues(e.Type).Inc()
}

type instrumentedLimiter struct {
	next    ports.RateLimiter
	backend string
}

// InstrumentLimiter wraps a limiter with decision and latency metrics.
func InstrumentLimiter(next ports.RateLimiter, backend string) ports.RateLimiter {
	return &instrumentedLimiter{next: next, backend: backend}
}

func (l *instrumentedLimiter) Check(ctx context.Context, key string) (domain.RateLimitResult, error) {
	start := time.Now()
	res, err := l.next.Check(ctx, key)
	RateLimitCheckDuration.WithLabelValues(l.backend).Observe(time.Since(start).Seconds())

	result := "allowed"
	switch {
	case err != nil:
		result = "error"
	case !res.Allowed:
		result = "denied"
	}
	RateLimitDecisionsTotal.WithLabelValues(l.backend, result).Inc()
	return res, err
}

func (l *instrumentedLimiter) Reset(ctx context.Context, key string) error {
	return l.next.Reset(ctx, key)
}

type instrumentedStore struct {
	next    ports.KeyValueStore
	backend string
}

// InstrumentStore wraps a key-value store with per-operation counters.
func InstrumentStore(next ports.KeyValueStore, backend string) ports.KeyValueStore {
	return &instrumentedStore{next: next, backend: backend}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.next.Get(ctx, key)
	s.count("get", err)
	return v, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) error {
	err := s.next.Set(ctx, key, value)
	s.count("set", err)
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	err := s.next.Remove(ctx, key)
	s.count("remove", err)
	return err
}

func (s *instrumentedStore) count(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperationsTotal.WithLabelValues(s.backend, op, result).Inc()
}
