package outbox

import (
	"context"
	"log"
	"sync"
	"time"
)

// store is the slice of Repository the worker needs; tests substitute a fake.
type store interface {
	FetchNext(ctx context.Context) (*Event, error)
	Update(ctx context.Context, event *Event) error
}

type Worker struct {
	repo        store
	handlers    map[string]Handler
	workerCount int
	pollDelay   time.Duration
	stop        chan struct{}
	wg          sync.WaitGroup
}

func NewWorker(repo store, handlers map[string]Handler, workerCount int) *Worker {
	if workerCount <= 0 {
		workerCount = 2
	}
	return &Worker{
		repo:        repo,
		handlers:    handlers,
		workerCount: workerCount,
		pollDelay:   500 * time.Millisecond,
		stop:        make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

// Stop signals workers to stop and waits for them.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
			event, err := w.repo.FetchNext(ctx)
			if err != nil {
				log.Printf("outbox worker %d: fetch failed: %v", id, err)
				w.sleep(time.Second)
				continue
			}
			if event == nil {
				w.sleep(w.pollDelay)
				continue
			}
			w.process(ctx, event)
		}
	}
}

// process runs the handler for one claimed event and persists the outcome.
func (w *Worker) process(ctx context.Context, event *Event) {
	handler, ok := w.handlers[event.Type]
	if !ok {
		event.Status = StatusDead
		event.LastError = "no handler registered"
		if err := w.repo.Update(ctx, event); err != nil {
			log.Printf("outbox: mark dead failed: %v", err)
		}
		return
	}

	err := handler(ctx, event)
	if err == nil {
		event.Status = StatusDone
		event.LastError = ""
		if err := w.repo.Update(ctx, event); err != nil {
			log.Printf("outbox: mark done failed: %v", err)
		}
		return
	}

	event.Attempts++
	event.LastError = err.Error()

	if event.Attempts >= event.MaxAttempts {
		event.Status = StatusDead
		log.Printf("outbox: event %d (%s) dead after %d attempts: %v", event.ID, event.Type, event.Attempts, err)
	} else {
		next := time.Now().Add(BackoffDuration(event.Attempts))
		event.NextTryAt = &next
		event.Status = StatusRetry
	}

	if err := w.repo.Update(ctx, event); err != nil {
		log.Printf("outbox: update after failure failed: %v", err)
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stop:
	case <-time.After(d):
	}
}
