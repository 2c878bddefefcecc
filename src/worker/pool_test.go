package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(1)
	defer p.Close()

	done := make(chan struct{})
	if !p.Submit(context.Background(), func(ctx context.Context) {
		close(done)
	}) {
		t.Fatal("Expected submit into idle pool to succeed")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Job never ran")
	}
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	p := New(1)
	defer p.Close()

	var mu sync.Mutex
	started := false
	release := make(chan struct{})

	// Occupy the single worker
	p.Submit(context.Background(), func(ctx context.Context) {
		mu.Lock()
		started = true
		mu.Unlock()
		<-release
	})

	// Wait for the worker to pick the job up so the queue slot is free again
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		ok := started
		mu.Unlock()
		if ok || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Fill the 1-slot queue, then overflow it
	if !p.Submit(context.Background(), func(ctx context.Context) {}) {
		t.Error("Expected submit into free queue slot to succeed")
	}
	if p.Submit(context.Background(), func(ctx context.Context) {}) {
		t.Error("Expected submit into full queue to be dropped")
	}

	close(release)
}

func TestWorkerSkipsCancelledJobs(t *testing.T) {
	p := New(1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := make(chan struct{}, 1)
	p.Submit(ctx, func(ctx context.Context) {
		ran <- struct{}{}
	})

	select {
	case <-ran:
		t.Error("Expected job with cancelled context to be skipped")
	case <-time.After(100 * time.Millisecond):
	}
}
