package download

import (
	"container/heap"
	"context"
	"errors"
	"sync"

	"github.com/vmunix/coursarr/internal/extract"
)

// Task is one queued download. RetryCount and LastError are filled in by
// the drain once the task reaches a terminal state.
type Task struct {
	Video      extract.Video
	OutputDir  string
	Priority   int
	RetryCount int
	LastError  error

	seq uint64
}

// Queue is a priority queue of download tasks. Higher priority runs first;
// equal priorities run in enqueue order. Safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items taskHeap
	seq   uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds a task to the queue.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	q.seq++
	t.seq = q.seq
	heap.Push(&q.items, t)
	q.mu.Unlock()
}

// Pop removes the highest-priority task. The second return is false when
// the queue is empty.
func (q *Queue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Task{}, false
	}
	return heap.Pop(&q.items).(Task), true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type taskHeap []Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// ProcessQueue drains the queue, dispatching tasks in priority order with
// at most the manager's concurrency in flight. Failed tasks do not stop
// the drain; cancellation does. Results are keyed by video ID.
func (m *Manager) ProcessQueue(ctx context.Context, q *Queue) (map[string]*Progress, error) {
	results := make(map[string]*Progress)
	var mu sync.Mutex

	sem := make(chan struct{}, m.concurrency)
	var wg sync.WaitGroup

	var interrupted error
	for {
		t, ok := q.Pop()
		if !ok {
			break
		}

		select {
		case <-ctx.Done():
			interrupted = ctx.Err()
		case sem <- struct{}{}:
		}
		if interrupted != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			p, err := m.DownloadWithRetry(ctx, t.Video, t.OutputDir)
			mu.Lock()
			results[t.Video.ID] = p
			mu.Unlock()
			if err != nil && !errors.Is(err, ErrInterrupted) {
				t.RetryCount = m.policy.MaxRetries
				t.LastError = err
				m.log.Warn("queued download failed",
					"video", t.Video.ID, "retries", t.RetryCount, "error", err)
			}
		}()
	}

	wg.Wait()
	if interrupted != nil {
		return results, errors.Join(ErrInterrupted, interrupted)
	}
	return results, nil
}
