// Package engine schedules download targets through a single paced
// worker. It owns the session lifecycle, the retry controller, the
// cooperative cancellation token, and the progress tracker; fetching
// and persistence are injected through the Fetcher and Sink interfaces
// so the scheduling core stays free of network and filesystem code.
package engine
