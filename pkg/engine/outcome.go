package engine

import (
	"context"
	"time"

	errs "igloader/pkg/errors"
	"igloader/pkg/target"
)

// Status tags the variant of an attempt outcome. Exactly one per attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusEmpty
	StatusRateLimited
	StatusTransient
	StatusFatal
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusRateLimited:
		return "rate_limited"
	case StatusTransient:
		return "transient_error"
	case StatusFatal:
		return "fatal_error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Payload is one fetched media item plus the destination hint derived
// from its target. The engine hands payloads to the sink and never
// decides final file paths itself.
type Payload struct {
	Data     []byte
	Username string
	// Category is the per-kind subfolder hint: posts, stories,
	// highlights or profile_pic.
	Category string
	Filename string
	Taken    time.Time
}

// Outcome is the result of one logical unit of work against the provider.
type Outcome struct {
	Status Status
	// Items is the number of media items retrieved on Success.
	Items uint
	// RetryAfter carries the provider's throttle hint on RateLimited.
	RetryAfter time.Duration
	// Err holds the failure for the error statuses.
	Err error
	// Next holds lazily discovered follow-up targets: the next page of
	// a paged target, or a profile's story and highlight children.
	Next []target.Target
	// Payloads holds the fetched media for the sink.
	Payloads []Payload
}

// Success builds a successful outcome carrying items for the sink.
func Success(payloads []Payload, next ...target.Target) Outcome {
	return Outcome{Status: StatusSuccess, Items: uint(len(payloads)), Payloads: payloads, Next: next}
}

// Empty marks a target that matched nothing; it completes with zero items.
func Empty() Outcome {
	return Outcome{Status: StatusEmpty}
}

// Cancelled marks an attempt cut short by the session token.
func Cancelled() Outcome {
	return Outcome{Status: StatusCancelled}
}

// Failure classifies err into the matching outcome variant.
func Failure(err error) Outcome {
	switch errs.TypeOf(err) {
	case errs.ErrorTypeRateLimit:
		return Outcome{Status: StatusRateLimited, RetryAfter: errs.RetryAfterHint(err), Err: err}
	case errs.ErrorTypeFatal:
		return Outcome{Status: StatusFatal, Err: err}
	default:
		// Unclassified failures are treated as transient; a bounded
		// retry is the safe default for an unreliable provider.
		return Outcome{Status: StatusTransient, Err: err}
	}
}

// Fetcher is the seam to the external provider: one logical unit of work
// per call (one post, one story item, one batch page).
type Fetcher interface {
	Fetch(ctx context.Context, t target.Target) Outcome
}

// Sink receives successfully fetched payloads for persistence. Put must
// not block the scheduling loop for longer than a queue handoff.
type Sink interface {
	Put(p Payload) error
}

// Recorder observes completed work items, e.g. to maintain a resume
// checkpoint. Optional.
type Recorder interface {
	Record(t target.Target, items uint)
}
