package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"igloader/pkg/engine"
	"igloader/pkg/logger"
)

// MediaStore is the disk layer the sink writes into.
type MediaStore interface {
	Exists(username, category, filename string) bool
	Save(username, category, filename string, r io.Reader) error
}

// WriteResult reports one persisted payload.
type WriteResult struct {
	Username string
	Category string
	Filename string
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// Pool persists payloads on background workers so disk latency never
// stalls the paced fetch loop. It implements the session's Sink.
//
// Payloads for a file that already exists on disk are skipped, which is
// what makes re-running an interrupted batch cheap.
type Pool struct {
	numWorkers  int
	jobQueue    chan engine.Payload
	resultQueue chan WriteResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	store       MediaStore
	logger      logger.Logger

	mu      sync.Mutex
	written int
	skipped int
	failed  int
}

// NewPool creates a write pool over the given store.
func NewPool(numWorkers int, store MediaStore, log logger.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan engine.Payload, numWorkers*4),
		resultQueue: make(chan WriteResult, numWorkers*4),
		ctx:         ctx,
		cancel:      cancel,
		store:       store,
		logger:      log,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.logger.InfoWithFields("starting sink workers", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue, waits for in-flight writes and closes the
// result channel.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()

	written, skipped, failed := p.Totals()
	p.logger.InfoWithFields("sink stopped", map[string]interface{}{
		"written": written,
		"skipped": skipped,
		"failed":  failed,
	})
}

// Put enqueues a payload for persistence. It blocks only while the
// small handoff buffer is full. Callers must stop submitting before
// Stop is called.
func (p *Pool) Put(payload engine.Payload) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("sink is shutting down")
	default:
	}

	select {
	case p.jobQueue <- payload:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("sink is shutting down")
	}
}

// Results returns the channel of per-file write results.
func (p *Pool) Results() <-chan WriteResult {
	return p.resultQueue
}

// Totals returns the written, skipped and failed counts so far.
func (p *Pool) Totals() (written, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written, p.skipped, p.failed
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for payload := range p.jobQueue {
		result := p.write(payload, id)

		p.mu.Lock()
		switch {
		case result.Error != nil:
			p.failed++
		case result.Skipped:
			p.skipped++
		default:
			p.written++
		}
		p.mu.Unlock()

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) write(payload engine.Payload, workerID int) WriteResult {
	start := time.Now()
	result := WriteResult{
		Username: payload.Username,
		Category: payload.Category,
		Filename: payload.Filename,
		Size:     len(payload.Data),
	}

	if p.store.Exists(payload.Username, payload.Category, payload.Filename) {
		p.logger.DebugWithFields("file already on disk, skipping", map[string]interface{}{
			"worker_id": workerID,
			"file":      payload.Filename,
			"username":  payload.Username,
		})
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	if err := p.store.Save(payload.Username, payload.Category, payload.Filename, bytes.NewReader(payload.Data)); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		p.logger.ErrorWithFields("failed to persist media", map[string]interface{}{
			"worker_id": workerID,
			"file":      payload.Filename,
			"username":  payload.Username,
			"error":     err.Error(),
		})
		return result
	}

	result.Duration = time.Since(start)
	p.logger.DebugWithFields("persisted media", map[string]interface{}{
		"worker_id": workerID,
		"file":      payload.Filename,
		"username":  payload.Username,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}
