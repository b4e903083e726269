package sink

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"igloader/pkg/engine"
	"igloader/pkg/logger"
)

// mockStore is an in-memory MediaStore.
type mockStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveError error
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (m *mockStore) key(username, category, filename string) string {
	return username + "/" + category + "/" + filename
}

func (m *mockStore) Exists(username, category, filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[m.key(username, category, filename)]
	return ok
}

func (m *mockStore) Save(username, category, filename string, r io.Reader) error {
	if m.saveError != nil {
		return m.saveError
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[m.key(username, category, filename)] = data
	return nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func payload(filename string) engine.Payload {
	return engine.Payload{
		Data:     []byte("media bytes"),
		Username: "alice",
		Category: "posts",
		Filename: filename,
	}
}

func drain(p *Pool) []WriteResult {
	var results []WriteResult
	for r := range p.Results() {
		results = append(results, r)
	}
	return results
}

func TestPoolWritesPayloads(t *testing.T) {
	store := newMockStore()
	pool := NewPool(2, store, logger.NewTestLogger())
	pool.Start()

	for i := 0; i < 5; i++ {
		if err := pool.Put(payload(fmt.Sprintf("file%d.jpg", i))); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	done := make(chan []WriteResult)
	go func() { done <- drain(pool) }()
	pool.Stop()
	results := <-done

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if store.count() != 5 {
		t.Errorf("expected 5 files in store, got %d", store.count())
	}
	written, skipped, failed := pool.Totals()
	if written != 5 || skipped != 0 || failed != 0 {
		t.Errorf("unexpected totals: written=%d skipped=%d failed=%d", written, skipped, failed)
	}
}

func TestPoolSkipsExistingFiles(t *testing.T) {
	store := newMockStore()
	store.files["alice/posts/dup.jpg"] = []byte("original")

	pool := NewPool(1, store, logger.NewTestLogger())
	pool.Start()

	pool.Put(payload("dup.jpg"))
	pool.Put(payload("new.jpg"))

	done := make(chan []WriteResult)
	go func() { done <- drain(pool) }()
	pool.Stop()
	results := <-done

	skippedCount := 0
	for _, r := range results {
		if r.Skipped {
			skippedCount++
		}
	}
	if skippedCount != 1 {
		t.Errorf("expected 1 skipped result, got %d", skippedCount)
	}
	// Existing content is left untouched.
	if string(store.files["alice/posts/dup.jpg"]) != "original" {
		t.Error("existing file was overwritten")
	}
}

func TestPoolReportsSaveErrors(t *testing.T) {
	store := newMockStore()
	store.saveError = errors.New("disk full")

	pool := NewPool(1, store, logger.NewTestLogger())
	pool.Start()

	pool.Put(payload("fail.jpg"))

	done := make(chan []WriteResult)
	go func() { done <- drain(pool) }()
	pool.Stop()
	results := <-done

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected an error result")
	}
	_, _, failed := pool.Totals()
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestPoolPutAfterStopFails(t *testing.T) {
	store := newMockStore()
	pool := NewPool(1, store, logger.NewTestLogger())
	pool.Start()

	go drain(pool)
	pool.Stop()

	if err := pool.Put(payload("late.jpg")); err == nil {
		t.Error("expected Put after Stop to fail")
	}
}
