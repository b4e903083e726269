package pacing

import (
	"fmt"
	"math/rand"
	"time"
)

// ItemKind identifies what kind of work item a delay is being computed for.
// Stories and highlights are throttled more aggressively by the provider,
// so they carry a delay multiplier.
type ItemKind int

const (
	KindPost ItemKind = iota
	KindStory
	KindHighlight
	KindPage
	KindProfilePic
)

func (k ItemKind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindStory:
		return "story"
	case KindHighlight:
		return "highlight"
	case KindPage:
		return "page"
	case KindProfilePic:
		return "profile_pic"
	default:
		return "unknown"
	}
}

// Policy holds the human-mimicking timing parameters for a session.
// A Policy is a plain value; NextDelay performs no I/O and touches no
// state beyond the read-only fields and the item index passed in.
type Policy struct {
	// BaseDelay is the minimum pause before every request.
	BaseDelay time.Duration
	// Jitter is uniform random additive noise in [0, Jitter).
	Jitter time.Duration
	// StoryMultiplier scales the delay for story and highlight items.
	StoryMultiplier float64
	// LongPauseMin and LongPauseMax bound the periodic extended pause.
	LongPauseMin time.Duration
	LongPauseMax time.Duration
	// LongPauseEvery triggers the extended pause every N items,
	// counted per session. Zero disables it.
	LongPauseEvery int
	// CriticalWait is the cooldown applied after a rate-limit signal.
	CriticalWait time.Duration
	// MaxRetriesPerItem bounds transient-error retries for one item.
	MaxRetriesPerItem int

	// randFloat lets tests pin the random source. Nil means math/rand.
	randFloat func() float64
}

// Default returns conservative timing parameters, slow enough to stay
// under the provider's radar.
func Default() Policy {
	return Policy{
		BaseDelay:         8 * time.Second,
		Jitter:            3 * time.Second,
		StoryMultiplier:   2.5,
		LongPauseMin:      20 * time.Second,
		LongPauseMax:      30 * time.Second,
		LongPauseEvery:    5,
		CriticalWait:      30 * time.Minute,
		MaxRetriesPerItem: 3,
	}
}

// Validate checks the policy invariants: durations non-negative,
// multiplier at least 1, pause range ordered.
func (p Policy) Validate() error {
	if p.BaseDelay < 0 {
		return fmt.Errorf("base delay must be non-negative, got %v", p.BaseDelay)
	}
	if p.Jitter < 0 {
		return fmt.Errorf("jitter must be non-negative, got %v", p.Jitter)
	}
	if p.StoryMultiplier < 1.0 {
		return fmt.Errorf("story multiplier must be >= 1.0, got %v", p.StoryMultiplier)
	}
	if p.LongPauseMin < 0 || p.LongPauseMax < 0 {
		return fmt.Errorf("long pause range must be non-negative, got [%v, %v]", p.LongPauseMin, p.LongPauseMax)
	}
	if p.LongPauseMax < p.LongPauseMin {
		return fmt.Errorf("long pause max %v is below min %v", p.LongPauseMax, p.LongPauseMin)
	}
	if p.LongPauseEvery < 0 {
		return fmt.Errorf("long pause interval must be non-negative, got %d", p.LongPauseEvery)
	}
	if p.CriticalWait < 0 {
		return fmt.Errorf("critical wait must be non-negative, got %v", p.CriticalWait)
	}
	if p.MaxRetriesPerItem < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", p.MaxRetriesPerItem)
	}
	return nil
}

// NextDelay computes the pause before fetching the item at index
// (items completed since session start, across all targets).
//
// Base delay plus uniform jitter, scaled by StoryMultiplier for story
// and highlight items. Every LongPauseEvery items an extended pause drawn
// from [LongPauseMin, LongPauseMax] is added once.
func (p Policy) NextDelay(kind ItemKind, index int) time.Duration {
	delay := float64(p.BaseDelay)
	if p.Jitter > 0 {
		delay += p.rand() * float64(p.Jitter)
	}

	if kind == KindStory || kind == KindHighlight {
		delay *= p.StoryMultiplier
	}

	if p.LongPauseEvery > 0 && index > 0 && index%p.LongPauseEvery == 0 {
		spread := float64(p.LongPauseMax - p.LongPauseMin)
		delay += float64(p.LongPauseMin) + p.rand()*spread
	}

	return time.Duration(delay)
}

// RetryDelay computes the wait before retry number attempt (1-based)
// after a transient error. The ramp doubles per attempt on top of the
// base delay, so a flaky connection backs off quickly without ever
// reaching the critical-wait scale reserved for rate limits.
func (p Policy) RetryDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return p.BaseDelay * time.Duration(attempt*2)
}

// CriticalDelay returns the cooldown after a rate-limit signal,
// honoring the provider's hint when it asks for longer.
func (p Policy) CriticalDelay(retryAfterHint time.Duration) time.Duration {
	if retryAfterHint > p.CriticalWait {
		return retryAfterHint
	}
	return p.CriticalWait
}

func (p Policy) rand() float64 {
	if p.randFloat != nil {
		return p.randFloat()
	}
	return rand.Float64()
}
