package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"igloader/internal/sink"
	"igloader/pkg/auth"
	"igloader/pkg/checkpoint"
	"igloader/pkg/config"
	"igloader/pkg/engine"
	"igloader/pkg/instagram"
	"igloader/pkg/logger"
	"igloader/pkg/ratelimit"
	"igloader/pkg/storage"
	"igloader/pkg/target"
)

// resumeFetcher wraps the provider adapter with checkpoint resume:
// targets a previous run already finished complete instantly with zero
// items and zero fetch cost, and fresh paged targets jump to the
// checkpointed cursor instead of re-enumerating from page one.
type resumeFetcher struct {
	inner    engine.Fetcher
	recorder *checkpoint.Recorder
}

func (f *resumeFetcher) Fetch(ctx context.Context, t target.Target) engine.Outcome {
	if f.recorder != nil {
		if f.recorder.ShouldSkip(t) {
			return engine.Empty()
		}
		t = f.recorder.Resume(t)
	}
	return f.inner.Fetch(ctx, t)
}

// loadRunConfig loads configuration, applies global flags and brings up
// the logger.
func loadRunConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if quiet {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// resolveAccount finds session credentials: a named account, the stored
// default, or the environment.
func resolveAccount(cfg *config.Config, accountName string) (*auth.Account, error) {
	if cfg.Instagram.SessionID != "" && cfg.Instagram.CSRFToken != "" {
		return &auth.Account{
			Username:  "config",
			SessionID: cfg.Instagram.SessionID,
			CSRFToken: cfg.Instagram.CSRFToken,
			UserAgent: cfg.Instagram.UserAgent,
		}, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if accountName != "" {
		return manager.Retrieve(accountName)
	}
	return manager.RetrieveDefault()
}

// runSession drives a batch of targets to a terminal state, rendering
// progress and handling Ctrl-C. checkpointUser enables resume when
// non-empty.
func runSession(cfg *config.Config, account *auth.Account, targets []target.Target, checkpointUser string, forceRestart bool) error {
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	pool := sink.NewPool(cfg.Download.SinkWorkers, store, log)
	pool.Start()
	go func() {
		for result := range pool.Results() {
			if result.Error != nil {
				log.WithError(result.Error).WithField("file", result.Filename).Error("write failed")
			}
		}
	}()

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	client := instagram.NewClient(cfg.Download.RequestTimeout, limiter, log)
	if account != nil {
		client.SetSession(account.SessionID, account.CSRFToken)
		if account.UserAgent != "" {
			client.SetHeader("User-Agent", account.UserAgent)
		}
	}

	var fetcher engine.Fetcher = instagram.NewAdapter(client, log)
	var recorder *checkpoint.Recorder
	if checkpointUser != "" {
		recorder, err = buildRecorder(checkpointUser, forceRestart)
		if err != nil {
			return err
		}
		fetcher = &resumeFetcher{inner: fetcher, recorder: recorder}
	}

	opts := engine.Options{
		Fetcher: fetcher,
		Sink:    pool,
		Logger:  log,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}

	session, err := engine.Start(targets, cfg.Policy(), opts)
	if err != nil {
		return err
	}

	// Ctrl-C requests a cooperative stop; the session winds down within
	// the scheduler's next suspension point.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigCh; ok {
			session.Cancel("interrupted by user")
		}
	}()

	renderProgress(session)

	state := session.Wait()
	signal.Stop(sigCh)
	close(sigCh)
	pool.Stop()

	snap := session.Snapshot()
	written, skipped, failed := pool.Totals()
	fmt.Printf("\n%s: %d/%d targets, %d media (%d written, %d already on disk, %d write failures) in %s\n",
		state, snap.CompletedItems, snap.TotalItems, snap.MediaRetrieved,
		written, skipped, failed, snap.Elapsed.Round(time.Second))

	switch state {
	case engine.StateFailed:
		return fmt.Errorf("every target failed; last error: %s", snap.LastError)
	case engine.StateCancelled:
		return fmt.Errorf("cancelled: %s", session.Token().Reason())
	}
	return nil
}

// buildRecorder loads or creates the per-user checkpoint.
func buildRecorder(username string, forceRestart bool) (*checkpoint.Recorder, error) {
	manager, err := checkpoint.NewManager(username)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}

	if forceRestart && manager.Exists() {
		if err := manager.Backup(); err != nil {
			return nil, err
		}
		if err := manager.Delete(); err != nil {
			return nil, err
		}
	}

	cp, err := manager.Load()
	if err != nil {
		return nil, err
	}
	if cp == nil {
		cp, err = manager.Create(username, "")
		if err != nil {
			return nil, err
		}
	}

	return checkpoint.NewRecorder(manager, cp, logger.GetLogger()), nil
}

// renderProgress consumes session snapshots into a terminal bar until
// the session hits a terminal state.
func renderProgress(session *engine.Session) {
	if quiet {
		for snap := range relay(session) {
			if snap.State.Terminal() {
				return
			}
		}
		return
	}

	bar := progressbar.NewOptions(int(session.Snapshot().TotalItems),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetItsString("item"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	for snap := range relay(session) {
		if int(snap.TotalItems) != bar.GetMax() {
			bar.ChangeMax(int(snap.TotalItems))
		}
		if snap.CurrentTarget != "" {
			bar.Describe(snap.CurrentTarget)
		}
		bar.Set(int(snap.CompletedItems + snap.FailedItems))
		if snap.State.Terminal() {
			bar.Finish()
			return
		}
	}
}

// relay forwards snapshots and closes when the session ends, keeping
// the render loop free of select plumbing.
func relay(session *engine.Session) <-chan engine.Snapshot {
	out := make(chan engine.Snapshot)
	go func() {
		defer close(out)
		for {
			select {
			case snap := <-session.Snapshots():
				out <- snap
				if snap.State.Terminal() {
					return
				}
			case <-time.After(500 * time.Millisecond):
				// Poll so the elapsed display moves during long pacing
				// sleeps.
				snap := session.Snapshot()
				out <- snap
				if snap.State.Terminal() {
					return
				}
			}
		}
	}()
	return out
}
