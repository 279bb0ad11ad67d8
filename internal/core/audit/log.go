// Package audit keeps a bounded, in-memory record of security events.
// It is a diagnostic aid for the running process, not a durable trail.
package audit

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultCapacity = 100

// Event types emitted by the session layer.
const (
	EventLoginSuccess    = "login_success"
	EventLoginFailed     = "login_failed"
	EventRateLimited     = "rate_limit_exceeded"
	EventRegisterSuccess = "register_success"
	EventRegisterFailed  = "register_failed"
	EventLogout          = "logout"
	EventTokenRefreshed  = "token_refreshed"
	EventTokenInvalid    = "token_invalid"
	EventSessionExpired  = "session_expired"
	EventSessionRestored = "session_restored"
	EventStorageFailure  = "storage_failure"
	EventAccessDenied    = "access_denied"
)

// Event is a single audit record. Detail is flattened into the JSON object
// next to id, type and timestamp.
type Event struct {
	ID        string
	Type      string
	Timestamp time.Time
	Detail    map[string]any
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Detail)+3)
	for k, v := range e.Detail {
		out[k] = v
	}
	out["id"] = e.ID
	out["type"] = e.Type
	out["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// Log is an append-only, capacity-bounded event list. Once full, the oldest
// events are evicted first.
type Log struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	seq      uint64
	now      func() time.Time
	log      zerolog.Logger
	observe  func(Event)
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger mirrors every event to log at info level.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Log) { l.log = log }
}

// WithObserver registers fn to be called synchronously for every event.
func WithObserver(fn func(Event)) Option {
	return func(l *Log) { l.observe = fn }
}

// New creates a Log holding at most capacity events; non-positive values
// use DefaultCapacity.
func New(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		events:   make([]Event, 0, capacity+1),
		capacity: capacity,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log appends an event. It satisfies ports.AuditLogger.
func (l *Log) Log(eventType string, detail map[string]any) {
	l.Record(eventType, detail)
}

// Record appends an event and returns the stored value.
func (l *Log) Record(eventType string, detail map[string]any) Event {
	copied := make(map[string]any, len(detail))
	for k, v := range detail {
		copied[k] = v
	}

	l.mu.Lock()
	l.seq++
	ev := Event{
		ID:        l.newID(),
		Type:      eventType,
		Timestamp: l.now(),
		Detail:    copied,
	}
	l.events = append(l.events, ev)
	if over := len(l.events) - l.capacity; over > 0 {
		// Copy down instead of reslicing so the backing array is never regrown.
		n := copy(l.events, l.events[over:])
		l.events = l.events[:n]
	}
	l.mu.Unlock()

	l.log.Info().
		Str("audit_id", ev.ID).
		Str("audit_type", ev.Type).
		Fields(ev.Detail).
		Msg("security event")
	if l.observe != nil {
		l.observe(ev)
	}
	return ev
}

// Events returns all events, or only those of eventType when it is not
// empty, in insertion order.
func (l *Log) Events(eventType string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, 0, len(l.events))
	for _, ev := range l.events {
		if eventType == "" || ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Len reports the number of retained events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Capacity reports the maximum number of retained events.
func (l *Log) Capacity() int { return l.capacity }

// newID must be called with mu held.
func (l *Log) newID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return strconv.FormatInt(l.now().UnixNano(), 36) + "-" + strconv.FormatUint(l.seq, 36)
	}
	return id.String()
}
