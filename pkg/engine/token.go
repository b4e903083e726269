package engine

import "sync"

// CancelToken is the cooperative stop signal for one session. It is
// write-once: the first Cancel wins, later calls are no-ops. The worker
// polls it at every suspension point and selects on Done during sleeps,
// so stop latency is bounded by the scheduler, not by the configured
// delay.
type CancelToken struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason string
}

// NewCancelToken creates an un-cancelled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel trips the token with a reason. Only the first call takes effect.
func (t *CancelToken) Cancel(reason string) {
	t.once.Do(func() {
		t.mu.Lock()
		t.reason = reason
		t.mu.Unlock()
		close(t.done)
	})
}

// Cancelled reports whether the token has been tripped.
func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Reason returns the cancellation reason, empty while un-cancelled.
func (t *CancelToken) Reason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Done returns a channel closed on cancellation, for use in selects.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}
