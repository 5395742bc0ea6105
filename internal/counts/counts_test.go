package counts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetCachesUntilInvalidated(t *testing.T) {
	var calls atomic.Int32
	c := New(map[Kind]Loader{
		Alerts: func(ctx context.Context) (int, error) {
			return int(calls.Add(1)) * 10, nil
		},
	}, nil)

	for i := 0; i < 3; i++ {
		n, err := c.Get(context.Background(), Alerts)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if n != 10 {
			t.Errorf("expected cached 10, got %d", n)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one load, got %d", calls.Load())
	}

	c.Invalidate(Alerts)
	if _, ok := c.Peek(Alerts); ok {
		t.Error("expected no cached value after Invalidate")
	}
	n, _ := c.Get(context.Background(), Alerts)
	if n != 20 {
		t.Errorf("expected reload after invalidation, got %d", n)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	c := New(map[Kind]Loader{
		Alerts: func(ctx context.Context) (int, error) { return 3, nil },
		Todos:  func(ctx context.Context) (int, error) { return 7, nil },
	}, nil)
	c.Get(context.Background(), Alerts)
	c.Get(context.Background(), Todos)

	c.Invalidate(Todos)
	if v, ok := c.Peek(Alerts); !ok || v != 3 {
		t.Errorf("alerts count should survive todos invalidation, got %d %v", v, ok)
	}
	if _, ok := c.Peek(Todos); ok {
		t.Error("todos count should be invalidated")
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	fail := true
	c := New(map[Kind]Loader{
		Todos: func(ctx context.Context) (int, error) {
			if fail {
				return 0, errors.New("network down")
			}
			return 4, nil
		},
	}, nil)

	if _, err := c.Get(context.Background(), Todos); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	n, err := c.Get(context.Background(), Todos)
	if err != nil || n != 4 {
		t.Errorf("expected 4 after recovery, got %d %v", n, err)
	}
}

func TestUnknownKind(t *testing.T) {
	c := New(map[Kind]Loader{}, nil)
	if _, err := c.Get(context.Background(), Alerts); err == nil {
		t.Error("expected error for kind without loader")
	}
}

func TestOrZeroSwallowsErrors(t *testing.T) {
	c := New(map[Kind]Loader{
		Alerts: func(ctx context.Context) (int, error) { return 0, errors.New("connection refused") },
		Todos:  func(ctx context.Context) (int, error) { return 0, errors.New("connection refused") },
	}, nil)
	if n := AlertsUnread(context.Background(), c); n != 0 {
		t.Errorf("AlertsUnread = %d, want 0", n)
	}
	if n := TodosOpen(context.Background(), c); n != 0 {
		t.Errorf("TodosOpen = %d, want 0", n)
	}
}

func TestInvalidateDuringLoadIsNotCached(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := New(map[Kind]Loader{
		Alerts: func(ctx context.Context) (int, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				return 5, nil
			}
			return 4, nil
		},
	}, nil)

	done := make(chan int)
	go func() {
		n, _ := c.Get(context.Background(), Alerts)
		done <- n
	}()
	<-started
	c.Invalidate(Alerts)
	close(release)

	if n := <-done; n != 5 {
		t.Errorf("in-flight caller should still see its result, got %d", n)
	}
	if _, ok := c.Peek(Alerts); ok {
		t.Error("result of a load started before Invalidate must not be cached")
	}
	if n, _ := c.Get(context.Background(), Alerts); n != 4 {
		t.Errorf("expected fresh load, got %d", n)
	}
}

func TestConcurrentGetSharesLoad(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := New(map[Kind]Loader{
		Todos: func(ctx context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 2, nil
		},
	}, nil)

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Get(context.Background(), Todos)
		}(i)
	}
	close(release)
	wg.Wait()

	for i, n := range results {
		if n != 2 {
			t.Errorf("result %d = %d, want 2", i, n)
		}
	}
	if calls.Load() > 5 || calls.Load() < 1 {
		t.Errorf("unexpected load count %d", calls.Load())
	}
}
