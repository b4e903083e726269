// Package pacing computes the human-mimicking delays between provider
// requests.
//
// The provider throttles clients that fire requests at machine speed, so
// every fetch is preceded by a pause: a base delay with uniform random
// jitter, multiplied for story and highlight items, plus a periodic
// extended pause every N items. Rate-limit recovery uses a separate,
// much longer critical wait.
//
// The policy is a pure value. Callers pass in the session-wide item
// index; the package keeps no state of its own, which keeps it trivially
// testable.
//
// Usage:
//
//	policy := pacing.Default()
//	delay := policy.NextDelay(pacing.KindStory, itemIndex)
//	// sleep cancellably for delay, then fetch
package pacing
