package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"igloader/pkg/logger"
	"igloader/pkg/pacing"
	"igloader/pkg/target"
)

// State is the session lifecycle. Terminal states are final; a session
// is never reused.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Options wires the session's collaborators. Fetcher is required; the
// rest default to no-ops.
type Options struct {
	Fetcher  Fetcher
	Sink     Sink
	Recorder Recorder
	Logger   logger.Logger
}

// Session drives an ordered queue of targets through paced, retried
// fetches on a single dedicated worker goroutine. At most one fetch is
// in flight at any time: sequential pacing is the anti-detection
// mechanism itself.
type Session struct {
	id      string
	policy  pacing.Policy
	queue   []target.Target
	fetcher Fetcher
	sink    Sink
	rec     Recorder
	log     logger.Logger

	tok      *CancelToken
	ctx      context.Context
	ctxStop  context.CancelFunc
	progress *tracker
	updates  chan Snapshot
	done     chan struct{}
	final    State
}

// Start validates the policy, applies enumeration-time date filtering,
// and launches the worker. The returned session is already Running.
func Start(targets []target.Target, policy pacing.Policy, opts Options) (*Session, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if opts.Fetcher == nil {
		return nil, errors.New("a fetcher is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	// Date filtering at enumeration time: out-of-range targets are
	// never enqueued, so no fetch cost is wasted on them.
	queue := make([]target.Target, 0, len(targets))
	for _, t := range targets {
		if t.InRange() {
			queue = append(queue, t)
		}
	}

	id := uuid.NewString()
	tok := NewCancelToken()
	ctx, stop := context.WithCancel(context.Background())

	s := &Session{
		id:       id,
		policy:   policy,
		queue:    queue,
		fetcher:  opts.Fetcher,
		sink:     opts.Sink,
		rec:      opts.Recorder,
		log:      log.WithField("session", id),
		tok:      tok,
		ctx:      ctx,
		ctxStop:  stop,
		progress: newTracker(id, len(queue)),
		updates:  make(chan Snapshot, 1),
		done:     make(chan struct{}),
	}

	// Bridge the token into the context handed to the fetch adapter so
	// an in-flight HTTP call is torn down on cancel too.
	go func() {
		select {
		case <-tok.Done():
			stop()
		case <-s.done:
		}
	}()

	s.log.InfoWithFields("session started", map[string]interface{}{
		"targets": len(queue),
	})
	publish(s.updates, s.progress.setState(StateRunning))

	go s.run()
	return s, nil
}

// ID returns the session handle identifier.
func (s *Session) ID() string { return s.id }

// Cancel requests a cooperative stop. Safe to call from any goroutine,
// any number of times.
func (s *Session) Cancel(reason string) {
	s.tok.Cancel(reason)
}

// Token exposes the session's cancellation token.
func (s *Session) Token() *CancelToken { return s.tok }

// Snapshots returns the progress channel. It holds at most the latest
// snapshot; slow readers skip intermediate states instead of stalling
// the worker.
func (s *Session) Snapshots() <-chan Snapshot { return s.updates }

// Snapshot returns the current progress view.
func (s *Session) Snapshot() Snapshot { return s.progress.snapshot() }

// Wait blocks until the session reaches a terminal state and returns it.
func (s *Session) Wait() State {
	<-s.done
	return s.final
}

// run is the scheduling loop. It owns the queue exclusively; nothing
// else mutates session state while it runs.
func (s *Session) run() {
	itemIndex := 0
	processed := 0
	fatal := 0

	for len(s.queue) > 0 {
		if s.tok.Cancelled() {
			s.finish(StateCancelled)
			return
		}

		t := s.queue[0]
		s.queue = s.queue[1:]

		publish(s.updates, s.progress.setCurrent(t.Label()))

		delay := s.policy.NextDelay(t.ItemKind(), itemIndex)
		s.log.DebugWithFields("pacing before fetch", map[string]interface{}{
			"target": t.Label(),
			"delay":  delay,
		})
		if !s.sleepFor(delay) {
			s.finish(StateCancelled)
			return
		}

		out := s.execute(t)
		if out.Status == StatusCancelled {
			publish(s.updates, s.progress.record(t, out))
			s.finish(StateCancelled)
			return
		}

		processed++
		switch out.Status {
		case StatusSuccess:
			s.deliver(t, out)
			s.append(out.Next)
		case StatusEmpty:
			s.log.DebugWithFields("target matched nothing", map[string]interface{}{
				"target": t.Label(),
			})
			// Completed with zero items is still completed; the recorder
			// must see it or a resume would refetch it every run.
			if s.rec != nil {
				s.rec.Record(t, 0)
			}
		case StatusFatal:
			// One bad target does not abort the session.
			fatal++
			s.log.WithError(out.Err).WithField("target", t.Label()).Error("target failed, skipping")
		case StatusTransient:
			s.log.WithError(out.Err).WithField("target", t.Label()).Error("retries exhausted, skipping target")
		}

		publish(s.updates, s.progress.record(t, out))
		itemIndex++
	}

	if processed > 0 && fatal == processed {
		s.finish(StateFailed)
		return
	}
	s.finish(StateCompleted)
}

// deliver hands fetched payloads to the sink and notifies the recorder.
func (s *Session) deliver(t target.Target, out Outcome) {
	if s.sink != nil {
		for _, p := range out.Payloads {
			if err := s.sink.Put(p); err != nil {
				s.log.WithError(err).WithField("file", p.Filename).Warn("sink rejected payload")
			}
		}
	}
	if s.rec != nil {
		s.rec.Record(t, out.Items)
	}
}

// append enqueues lazily discovered targets at the tail, preserving the
// relative order of everything already enumerated. The same date filter
// applies as at session start.
func (s *Session) append(next []target.Target) {
	added := 0
	for _, t := range next {
		if !t.InRange() {
			continue
		}
		s.queue = append(s.queue, t)
		added++
	}
	if added > 0 {
		s.progress.grow(added)
		s.log.DebugWithFields("discovered additional targets", map[string]interface{}{
			"count": added,
		})
	}
}

// sleepFor pauses cancellably. Returns false if the token tripped before
// the delay elapsed; the caller must stop scheduling immediately.
func (s *Session) sleepFor(d time.Duration) bool {
	if d <= 0 {
		return !s.tok.Cancelled()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.tok.Done():
		return false
	}
}

func (s *Session) finish(st State) {
	s.final = st
	snap := s.progress.setState(st)
	publish(s.updates, snap)

	fields := map[string]interface{}{
		"state":     st.String(),
		"completed": snap.CompletedItems,
		"failed":    snap.FailedItems,
		"media":     snap.MediaRetrieved,
		"elapsed":   snap.Elapsed,
	}
	if st == StateCancelled {
		fields["reason"] = s.tok.Reason()
	}
	s.log.InfoWithFields("session finished", fields)

	s.ctxStop()
	close(s.done)
}
