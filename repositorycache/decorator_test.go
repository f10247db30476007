package repositorycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-inventory/cache"
)

// mockLoader records every load and can block until released.
type mockLoader struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]string
	err     error
	gate    chan struct{}
	started chan struct{}
}

func newMockLoader() *mockLoader {
	return &mockLoader{results: map[string][]string{}}
}

func (m *mockLoader) load(ctx context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, owner)
	gate, started := m.gate, m.started
	result, err := m.results[owner], m.err
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result...), nil
}

func (m *mockLoader) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type fetchCounter struct {
	fetches atomic.Int64
	errors  atomic.Int64
}

func (f *fetchCounter) Fetched(kind string, elapsed time.Duration, err error) {
	f.fetches.Add(1)
	if err != nil {
		f.errors.Add(1)
	}
}

func newTestRepository(t *testing.T, loader *mockLoader, opts ...Option) *CachedRepository[[]string] {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ec := cache.NewEntityCache[[]string](svc, nil, "ws", "products")
	return New(ec, loader.load, opts...)
}

func TestSnapshot_ReadThrough(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.results["u1"] = []string{"widget"}
	obs := &fetchCounter{}
	repo := newTestRepository(t, loader, WithFetchObserver(obs))

	first, err := repo.Snapshot(ctx, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := repo.Snapshot(ctx, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loader.callCount() != 1 {
		t.Errorf("expected a single load, got %d", loader.callCount())
	}
	if len(first) != 1 || first[0] != second[0] {
		t.Errorf("expected identical snapshots, got %v and %v", first, second)
	}
	if obs.fetches.Load() != 1 {
		t.Errorf("expected 1 observed fetch, got %d", obs.fetches.Load())
	}
}

func TestSnapshot_ForceReload(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	repo := newTestRepository(t, loader)

	_, _ = repo.Snapshot(ctx, "u1", false)
	_, _ = repo.Snapshot(ctx, "u1", true)

	if loader.callCount() != 2 {
		t.Errorf("expected forced reload to fetch again, got %d loads", loader.callCount())
	}
}

func TestSnapshot_OwnerSwitchMisses(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.results["u1"] = []string{"a"}
	loader.results["u2"] = []string{"b"}
	repo := newTestRepository(t, loader)

	_, _ = repo.Snapshot(ctx, "u1", false)
	got, err := repo.Snapshot(ctx, "u2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loader.callCount() != 2 {
		t.Errorf("expected owner switch to fetch, got %d loads", loader.callCount())
	}
	if got[0] != "b" {
		t.Errorf("expected u2 rows, got %v", got)
	}
}

func TestSnapshot_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.err = errors.New("permission denied for table products")
	obs := &fetchCounter{}
	repo := newTestRepository(t, loader, WithFetchObserver(obs))

	_, err := repo.Snapshot(ctx, "u1", false)
	if err == nil || err.Error() != "permission denied for table products" {
		t.Fatalf("expected loader error verbatim, got %v", err)
	}
	if _, ok := repo.Cache().Owner(); ok {
		t.Error("expected nothing cached after a failed load")
	}
	if obs.errors.Load() != 1 {
		t.Errorf("expected failed fetch to be observed, got %d", obs.errors.Load())
	}
}

func TestSnapshot_ConcurrentCallersJoinOneLoad(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.results["u1"] = []string{"a"}
	loader.gate = make(chan struct{})
	loader.started = make(chan struct{}, 1)
	repo := newTestRepository(t, loader)

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]string, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = repo.Snapshot(ctx, "u1", false)
	}()
	<-loader.started

	if !repo.Loading() {
		t.Error("expected Loading to report the outstanding fetch")
	}

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.Snapshot(ctx, "u1", false)
		}(i)
	}

	// give the joiners time to reach the singleflight group
	time.Sleep(50 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	if loader.callCount() != 1 {
		t.Errorf("expected concurrent callers to share one load, got %d", loader.callCount())
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: unexpected error %v", i, errs[i])
		}
		if len(results[i]) != 1 || results[i][0] != "a" {
			t.Errorf("caller %d: unexpected result %v", i, results[i])
		}
	}
	if repo.Loading() {
		t.Error("expected no outstanding load after completion")
	}
}

func TestSnapshot_StaleLoadDoesNotRepopulate(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.results["u1"] = []string{"old"}
	loader.gate = make(chan struct{})
	loader.started = make(chan struct{}, 1)
	repo := newTestRepository(t, loader)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = repo.Snapshot(ctx, "u1", false)
	}()
	<-loader.started

	if err := repo.Write(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(loader.gate)
	<-done

	if _, ok := repo.Cache().Get(ctx, "u1", false); ok {
		t.Error("expected load that predates the write to be dropped")
	}
}

func TestWrite_InvalidatesOnSuccess(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	repo := newTestRepository(t, loader)

	_, _ = repo.Snapshot(ctx, "u1", false)

	if err := repo.Write(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.Cache().Get(ctx, "u1", false); ok {
		t.Error("expected cache to be invalidated after a successful write")
	}

	_, _ = repo.Snapshot(ctx, "u1", false)
	if loader.callCount() != 2 {
		t.Errorf("expected a reload after invalidation, got %d loads", loader.callCount())
	}
}

func TestWrite_FailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	loader := newMockLoader()
	loader.results["u1"] = []string{"a"}
	repo := newTestRepository(t, loader)

	_, _ = repo.Snapshot(ctx, "u1", false)
	generation := repo.Cache().Generation()

	writeErr := errors.New("new row violates row-level security policy")
	err := repo.Write(ctx, func(context.Context) error { return writeErr })
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}

	if _, ok := repo.Cache().Get(ctx, "u1", false); !ok {
		t.Error("expected cache to survive a failed write")
	}
	if repo.Cache().Generation() != generation {
		t.Error("expected generation to be unchanged after a failed write")
	}
}

func TestWrite_InvalidatesDependents(t *testing.T) {
	ctx := context.Background()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	products := cache.NewEntityCache[[]string](svc, nil, "ws", "products")
	categories := cache.NewEntityCache[[]string](svc, nil, "ws", "categories")
	_ = products.Put(ctx, "u1", []string{"p"})

	loader := newMockLoader()
	repo := New(categories, loader.load, WithDependents(products))

	if err := repo.Write(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := products.Get(ctx, "u1", false); ok {
		t.Error("expected dependent cache to be invalidated")
	}
}

func TestSnapshot_CallerCancellation(t *testing.T) {
	loader := newMockLoader()
	loader.gate = make(chan struct{})
	loader.started = make(chan struct{}, 1)
	repo := newTestRepository(t, loader)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := repo.Snapshot(ctx, "u1", false)
		errCh <- err
	}()
	<-loader.started
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	close(loader.gate)
}
