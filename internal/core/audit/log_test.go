package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLog_Eviction(t *testing.T) {
	l := New(100)

	for i := 0; i < 150; i++ {
		l.Log(fmt.Sprintf("type_%d", i), map[string]any{"index": i})
	}

	events := l.Events("")
	if len(events) != 100 {
		t.Fatalf("expected 100 events, got %d", len(events))
	}
	for i, ev := range events {
		want := i + 50
		if ev.Type != fmt.Sprintf("type_%d", want) {
			t.Fatalf("event %d: expected type_%d, got %s", i, want, ev.Type)
		}
		if ev.Detail["index"] != want {
			t.Fatalf("event %d: expected index %d, got %v", i, want, ev.Detail["index"])
		}
	}
	if cap(l.events) != l.Capacity()+1 {
		t.Fatalf("backing array grew unbounded: cap=%d", cap(l.events))
	}
}

func TestLog_FilterByType(t *testing.T) {
	l := New(10)

	l.Log(EventLoginFailed, map[string]any{"email": "a@example.com"})
	l.Log(EventLoginSuccess, map[string]any{"email": "a@example.com"})
	l.Log(EventLoginFailed, map[string]any{"email": "b@example.com"})

	failed := l.Events(EventLoginFailed)
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed logins, got %d", len(failed))
	}
	if failed[0].Detail["email"] != "a@example.com" || failed[1].Detail["email"] != "b@example.com" {
		t.Fatalf("unexpected order: %+v", failed)
	}
	if got := l.Events("unknown"); len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}

func TestLog_EventFields(t *testing.T) {
	ts := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	var observed []Event
	l := New(5, WithClock(func() time.Time { return ts }), WithObserver(func(ev Event) {
		observed = append(observed, ev)
	}))

	detail := map[string]any{"ip": "10.0.0.1"}
	ev := l.Record(EventRateLimited, detail)
	detail["ip"] = "mutated"

	if ev.ID == "" {
		t.Fatalf("expected an id")
	}
	if !ev.Timestamp.Equal(ts) {
		t.Fatalf("unexpected timestamp %v", ev.Timestamp)
	}
	if l.Events("")[0].Detail["ip"] != "10.0.0.1" {
		t.Fatalf("stored detail must not alias the caller's map")
	}
	if len(observed) != 1 || observed[0].ID != ev.ID {
		t.Fatalf("observer not called with the event")
	}

	second := l.Record(EventRateLimited, nil)
	if second.ID == ev.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestEvent_MarshalJSONFlattensDetail(t *testing.T) {
	ev := Event{
		ID:        "evt-1",
		Type:      EventLoginFailed,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Detail:    map[string]any{"email": "x@example.com", "type": "ignored"},
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["id"] != "evt-1" || got["type"] != EventLoginFailed || got["email"] != "x@example.com" {
		t.Fatalf("unexpected json: %s", raw)
	}
	if got["timestamp"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected timestamp: %v", got["timestamp"])
	}
}

func TestLog_MirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(5, WithLogger(zerolog.New(&buf)))

	l.Log(EventLogout, map[string]any{"userId": "u-1"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
	}
	if line["audit_type"] != EventLogout || line["userId"] != "u-1" {
		t.Fatalf("unexpected log line: %v", line)
	}
}
