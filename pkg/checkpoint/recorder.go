package checkpoint

import (
	"igloader/pkg/logger"
	"igloader/pkg/target"
)

// Recorder folds completed targets into a checkpoint as the session
// works through its queue. It plugs into the session as its Recorder.
type Recorder struct {
	manager    *Manager
	checkpoint *Checkpoint
	logger     logger.Logger
}

// NewRecorder wraps a manager and its loaded (or freshly created)
// checkpoint.
func NewRecorder(manager *Manager, cp *Checkpoint, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Recorder{
		manager:    manager,
		checkpoint: cp,
		logger:     log,
	}
}

// Record persists one completed target. A failed save is logged and
// dropped; losing a checkpoint update costs a re-download on resume,
// never correctness.
func (r *Recorder) Record(t target.Target, items uint) {
	r.checkpoint.Completed[t.Label()] = items
	r.checkpoint.TotalMedia += int(items)

	switch t.Kind {
	case target.KindMediaPage, target.KindSavedPage:
		r.checkpoint.EndCursor = t.Cursor
		r.checkpoint.LastProcessedPage = t.Page
	}

	if err := r.manager.Save(r.checkpoint); err != nil {
		r.logger.WithError(err).Warn("failed to save checkpoint")
	}
}

// Checkpoint exposes the underlying state, e.g. for resume filtering.
func (r *Recorder) Checkpoint() *Checkpoint {
	return r.checkpoint
}

// Resume seeds a fresh paged target with the stored enumeration
// position, so a second run picks up from the last processed page
// instead of re-walking every page. Page 1 never carries a cursor, so
// a cursorless paged target marks a fresh start; continuation targets
// and non-paged kinds pass through untouched. The stored cursor names
// the last page the previous run finished, which gets one idempotent
// re-fetch before enumeration moves forward.
func (r *Recorder) Resume(t target.Target) target.Target {
	switch t.Kind {
	case target.KindMediaPage, target.KindSavedPage:
	default:
		return t
	}
	if t.Cursor != "" || r.checkpoint.EndCursor == "" {
		return t
	}
	t.Cursor = r.checkpoint.EndCursor
	t.Page = r.checkpoint.LastProcessedPage
	return t
}

// ShouldSkip reports whether a target already completed in a previous
// run. Paged targets are never skipped: their children may not all
// have finished.
func (r *Recorder) ShouldSkip(t target.Target) bool {
	switch t.Kind {
	case target.KindMediaPage, target.KindSavedPage, target.KindProfile:
		return false
	}
	return r.checkpoint.IsCompleted(t.Label())
}
