package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skripta.hr/forum/internal/outbox"
)

type fakeStore struct {
	mu      sync.Mutex
	events  []*outbox.Event
	updated chan *outbox.Event
}

func newFakeStore(events ...*outbox.Event) *fakeStore {
	return &fakeStore{
		events:  events,
		updated: make(chan *outbox.Event, 10),
	}
}

func (s *fakeStore) FetchNext(ctx context.Context) (*outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil, nil
	}
	event := s.events[0]
	s.events = s.events[1:]
	event.Status = outbox.StatusProcessing
	return event, nil
}

func (s *fakeStore) Update(ctx context.Context, event *outbox.Event) error {
	s.updated <- event
	return nil
}

func waitForUpdate(t *testing.T, store *fakeStore) *outbox.Event {
	t.Helper()
	select {
	case event := <-store.updated:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event update")
		return nil
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{8, 256 * time.Second},
		{20, 5 * time.Minute},
	}

	for _, tc := range cases {
		if got := outbox.BackoffDuration(tc.attempt); got != tc.want {
			t.Fatalf("BackoffDuration(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestWorkerMarksDoneOnSuccess(t *testing.T) {
	store := newFakeStore(&outbox.Event{ID: 1, Type: "test.event", MaxAttempts: 5})

	handled := make(chan struct{}, 1)
	handlers := map[string]outbox.Handler{
		"test.event": func(ctx context.Context, e *outbox.Event) error {
			handled <- struct{}{}
			return nil
		},
	}

	worker := outbox.NewWorker(store, handlers, 1)
	worker.Start(context.Background())
	defer worker.Stop()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler was never invoked")
	}

	event := waitForUpdate(t, store)
	if event.Status != outbox.StatusDone {
		t.Fatalf("expected status %q, got %q", outbox.StatusDone, event.Status)
	}
	if event.LastError != "" {
		t.Fatalf("expected last error cleared, got %q", event.LastError)
	}
}

func TestWorkerSchedulesRetryOnFailure(t *testing.T) {
	store := newFakeStore(&outbox.Event{ID: 2, Type: "test.event", MaxAttempts: 5})

	handlers := map[string]outbox.Handler{
		"test.event": func(ctx context.Context, e *outbox.Event) error {
			return errors.New("downstream unavailable")
		},
	}

	worker := outbox.NewWorker(store, handlers, 1)
	worker.Start(context.Background())
	defer worker.Stop()

	event := waitForUpdate(t, store)
	if event.Status != outbox.StatusRetry {
		t.Fatalf("expected status %q, got %q", outbox.StatusRetry, event.Status)
	}
	if event.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", event.Attempts)
	}
	if event.NextTryAt == nil || !event.NextTryAt.After(time.Now()) {
		t.Fatalf("expected a future retry time, got %v", event.NextTryAt)
	}
	if event.LastError != "downstream unavailable" {
		t.Fatalf("unexpected last error %q", event.LastError)
	}
}

func TestWorkerMarksDeadAfterMaxAttempts(t *testing.T) {
	store := newFakeStore(&outbox.Event{ID: 3, Type: "test.event", Attempts: 4, MaxAttempts: 5})

	handlers := map[string]outbox.Handler{
		"test.event": func(ctx context.Context, e *outbox.Event) error {
			return errors.New("still failing")
		},
	}

	worker := outbox.NewWorker(store, handlers, 1)
	worker.Start(context.Background())
	defer worker.Stop()

	event := waitForUpdate(t, store)
	if event.Status != outbox.StatusDead {
		t.Fatalf("expected status %q, got %q", outbox.StatusDead, event.Status)
	}
	if event.Attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", event.Attempts)
	}
}

func TestWorkerMarksDeadWhenNoHandlerRegistered(t *testing.T) {
	store := newFakeStore(&outbox.Event{ID: 4, Type: "unknown.event", MaxAttempts: 5})

	worker := outbox.NewWorker(store, map[string]outbox.Handler{}, 1)
	worker.Start(context.Background())
	defer worker.Stop()

	event := waitForUpdate(t, store)
	if event.Status != outbox.StatusDead {
		t.Fatalf("expected status %q, got %q", outbox.StatusDead, event.Status)
	}
	if event.LastError != "no handler registered" {
		t.Fatalf("unexpected last error %q", event.LastError)
	}
}
