package engine

import (
	"sync"
	"time"

	"igloader/pkg/target"
)

// Snapshot is a fully-formed view of session progress. Values are copied
// out under the tracker lock, so readers never observe a half-applied
// update.
type Snapshot struct {
	SessionID      string
	State          State
	CompletedItems uint
	TotalItems     uint
	FailedItems    uint
	// MediaRetrieved counts individual media files across all targets,
	// as opposed to CompletedItems which counts queue entries.
	MediaRetrieved uint
	CurrentTarget  string
	LastStatus     Status
	LastError      string
	Elapsed        time.Duration
}

// tracker aggregates heterogeneous per-target outcomes into one monotonic
// progress view. Single writer (the session worker), many readers.
type tracker struct {
	mu        sync.Mutex
	sessionID string
	started   time.Time

	completed uint
	total     uint
	failed    uint
	media     uint

	current    string
	lastStatus Status
	lastErr    error
	state      State
}

func newTracker(sessionID string, total int) *tracker {
	return &tracker{
		sessionID: sessionID,
		started:   time.Now(),
		total:     uint(total),
		state:     StateIdle,
	}
}

// setState transitions the session state and returns a snapshot.
func (tr *tracker) setState(s State) Snapshot {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.state = s
	return tr.snapshotLocked()
}

// setCurrent marks the target about to be worked on.
func (tr *tracker) setCurrent(label string) Snapshot {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.current = label
	return tr.snapshotLocked()
}

// grow raises the total as paged targets discover more work.
func (tr *tracker) grow(n int) {
	if n <= 0 {
		return
	}
	tr.mu.Lock()
	tr.total += uint(n)
	tr.mu.Unlock()
}

// record folds one outcome into the running tally. CompletedItems never
// decreases; a cancelled outcome leaves the tally as it stands.
func (tr *tracker) record(t target.Target, out Outcome) Snapshot {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.lastStatus = out.Status
	tr.lastErr = out.Err
	tr.current = t.Label()

	switch out.Status {
	case StatusSuccess:
		tr.completed++
		tr.media += out.Items
	case StatusEmpty:
		tr.completed++
	case StatusFatal, StatusTransient:
		tr.failed++
	}

	return tr.snapshotLocked()
}

// snapshot returns the current view for polling readers.
func (tr *tracker) snapshot() Snapshot {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.snapshotLocked()
}

func (tr *tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:      tr.sessionID,
		State:          tr.state,
		CompletedItems: tr.completed,
		TotalItems:     tr.total,
		FailedItems:    tr.failed,
		MediaRetrieved: tr.media,
		CurrentTarget:  tr.current,
		LastStatus:     tr.lastStatus,
		Elapsed:        time.Since(tr.started),
	}
	if tr.lastErr != nil {
		s.LastError = tr.lastErr.Error()
	}
	return s
}

// publish delivers a snapshot with latest-value-wins semantics: a slow
// reader never stalls the worker, it just skips intermediate states.
func publish(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	// Channel full: evict the stale snapshot and send the fresh one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
