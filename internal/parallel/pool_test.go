package parallel

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestExecutionStats(t *testing.T) {
	stats := NewExecutionStats()

	if stats.TasksSubmitted != 0 {
		t.Errorf("expected 0 tasks submitted initially, got %d", stats.TasksSubmitted)
	}

	stats.RecordTaskSubmitted()
	if stats.TasksSubmitted != 1 {
		t.Errorf("expected 1 task submitted, got %d", stats.TasksSubmitted)
	}

	stats.RecordTaskCompleted(100 * time.Millisecond)
	if stats.TasksCompleted != 1 {
		t.Errorf("expected 1 task completed, got %d", stats.TasksCompleted)
	}

	err := context.DeadlineExceeded
	stats.RecordTaskFailed(err)
	if stats.TasksFailed != 1 {
		t.Errorf("expected 1 task failed, got %d", stats.TasksFailed)
	}
	if stats.LastError != err {
		t.Errorf("expected last error %v, got %v", err, stats.LastError)
	}

	stats.RecordWorkerCount(5)
	if stats.PeakWorkerCount != 5 {
		t.Errorf("expected peak worker count 5, got %d", stats.PeakWorkerCount)
	}

	stats.RecordQueueDepth(10)
	if stats.PeakQueueDepth != 10 {
		t.Errorf("expected peak queue depth 10, got %d", stats.PeakQueueDepth)
	}

	stats.Finalize()
	if stats.TotalExecutionTime <= 0 {
		t.Errorf("expected positive total execution time, got %v", stats.TotalExecutionTime)
	}
}

func TestWorkerPoolWithStats(t *testing.T) {
	pool := NewDynamicWorkerPoolWithConfig(4, 1, DynamicConfig{
		ScaleUpThreshold:   2,
		ScaleDownThreshold: 1,
		ScaleCheckInterval: 10 * time.Millisecond,
		ScaleCooldown:      5 * time.Millisecond,
	})

	stats := pool.GetStats()
	if stats == nil {
		t.Fatal("expected non-nil stats")
	}

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
		}
		if err := pool.Submit(ctx, task); err != nil {
			t.Errorf("failed to submit task: %v", err)
		}
	}
	wg.Wait()
	pool.Shutdown()

	final := stats.GetStats()
	if final.TasksSubmitted != 5 {
		t.Errorf("expected 5 tasks submitted, got %d", final.TasksSubmitted)
	}
	if final.TasksCompleted != 5 {
		t.Errorf("expected 5 tasks completed, got %d", final.TasksCompleted)
	}
}

func TestWorkerPoolRejectsAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Shutdown()

	if err := pool.Submit(context.Background(), func() {}); err != ErrPoolShutdown {
		t.Errorf("expected ErrPoolShutdown, got %v", err)
	}
}

func TestWorkerPoolHonorsContextCancellation(t *testing.T) {
	// A pool with a single worker kept busy so the queue fills up and a
	// further submit has to observe context cancellation instead of
	// blocking forever.
	pool := NewDynamicWorkerPoolWithConfig(1, 1, DynamicConfig{})
	defer pool.Shutdown()

	block := make(chan struct{})
	_ = pool.Submit(context.Background(), func() { <-block })
	for i := 0; i < cap(pool.taskChan); i++ {
		_ = pool.Submit(context.Background(), func() { <-block })
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Submit(ctx, func() {}); err == nil {
		t.Error("expected Submit to observe cancelled context")
	}
	close(block)
}

func BenchmarkWorkerPool(b *testing.B) {
	pool := NewDynamicWorkerPool(4, 1)
	defer pool.Shutdown()

	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = pool.Submit(ctx, func() {
				time.Sleep(time.Millisecond)
			})
		}
	})
}
