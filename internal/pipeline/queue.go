package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DocumentQueue fans manifest documents out to a fixed pool of workers.
// Summaries are collected in submission order.
type DocumentQueue struct {
	proc    *Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan queuedRequest
	wg   sync.WaitGroup
	once sync.Once

	mu        sync.Mutex
	closed    bool
	next      int
	summaries map[int]Summary
}

type queuedRequest struct {
	index int
	req   Request
}

type Option func(*DocumentQueue)

func WithWorkers(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.ch = make(chan queuedRequest, n)
		}
	}
}

func WithDocumentTimeout(d time.Duration) Option {
	return func(q *DocumentQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewDocumentQueue(proc *Processor, logger *slog.Logger, opts ...Option) *DocumentQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &DocumentQueue{
		proc:      proc,
		logger:    logger,
		workers:   4,
		timeout:   5 * time.Minute,
		ch:        make(chan queuedRequest, 64),
		summaries: make(map[int]Summary),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *DocumentQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for item := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					summary, err := q.proc.ProcessDocument(ctx, item.req)
					cancel()

					if err != nil {
						q.logger.Error("queue.document.failed",
							"worker_id", workerID, "source", item.req.Source, "error", err)
					}
					q.mu.Lock()
					q.summaries[item.index] = summary
					q.mu.Unlock()
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue submits one document. Blocks when the buffer is full; a queue
// that has been shut down silently drops the request.
func (q *DocumentQueue) Enqueue(req Request) {
	q.enqueue(req)
}

// enqueue assigns the next submission slot and reports it, or -1 when
// the queue is already shut down. Slots are never reused, even while
// a worker still holds an item that is in neither the buffer nor the
// summary map.
func (q *DocumentQueue) enqueue(req Request) int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue_after_shutdown", "source", req.Source)
		return -1
	}
	index := q.next
	q.next++
	q.mu.Unlock()

	q.ch <- queuedRequest{index: index, req: req}
	return index
}

// Drain runs a whole manifest through the pool and waits for every
// document to finish.
func (q *DocumentQueue) Drain(m *Manifest) *BatchReport {
	report := &BatchReport{StartedAt: time.Now().UTC()}
	indexes := make([]int, 0, len(m.Documents))
	for _, req := range m.Documents {
		indexes = append(indexes, q.enqueue(req))
	}
	q.Shutdown()

	for _, i := range indexes {
		summary := q.summaries[i]
		report.Documents = append(report.Documents, summary)
		report.Persisted += summary.Persisted
		report.Duplicates += summary.Duplicates
		report.Failed += summary.Failed
	}
	report.FinishedAt = time.Now().UTC()
	return report
}

// Shutdown stops intake and waits for in-flight documents.
func (q *DocumentQueue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
}
