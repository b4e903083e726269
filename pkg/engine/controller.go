package engine

import (
	"time"

	"igloader/pkg/target"
)

// execute runs a single target through the retry controller and returns
// the first terminal outcome.
//
// Transient failures consume the per-item retry budget; a rate-limit
// signal instead triggers the critical cooldown and retries the same
// target without touching the budget, as many times as the provider
// keeps throttling. Every wait is cancellable.
func (s *Session) execute(t target.Target) Outcome {
	attempts := 0
	for {
		if s.tok.Cancelled() {
			return Cancelled()
		}

		out := s.fetcher.Fetch(s.ctx, t)

		switch out.Status {
		case StatusSuccess, StatusEmpty, StatusFatal, StatusCancelled:
			return out

		case StatusRateLimited:
			wait := s.policy.CriticalDelay(out.RetryAfter)
			s.log.WarnWithFields("rate limited, entering cooldown", map[string]interface{}{
				"target": t.Label(),
				"wait":   wait,
			})
			if !s.sleepFor(wait) {
				return Cancelled()
			}

		case StatusTransient:
			if attempts >= s.policy.MaxRetriesPerItem {
				return out
			}
			attempts++
			delay := s.policy.RetryDelay(attempts)
			s.log.WithError(out.Err).WarnWithFields("transient failure, retrying", map[string]interface{}{
				"target":  t.Label(),
				"attempt": attempts,
				"delay":   delay,
			})
			if !s.sleepFor(delay) {
				return Cancelled()
			}

		default:
			// Unknown status from a misbehaving adapter: treat as a
			// spent transient attempt rather than spinning.
			if attempts >= s.policy.MaxRetriesPerItem {
				return out
			}
			attempts++
			if !s.sleepFor(time.Second) {
				return Cancelled()
			}
		}
	}
}
