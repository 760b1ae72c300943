package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// flakyWorker panics a configured number of times before finishing.
type flakyWorker struct {
	panicsLeft int32
	runs       atomic.Int32
}

func (w *flakyWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	if atomic.AddInt32(&w.panicsLeft, -1) >= 0 {
		panic("boom")
	}
	return nil
}

type blockingWorker struct{}

func (w *blockingWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

type failingWorker struct {
	runs atomic.Int32
}

func (w *failingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	return errors.New("always broken")
}

func Test_Supervisor_Restarts_Panicking_Worker(t *testing.T) {
	worker := &flakyWorker{panicsLeft: 2}
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never finished")
	}
	require.Equal(t, int32(3), worker.runs.Load())
}

func Test_Supervisor_Restarts_Erroring_Worker(t *testing.T) {
	worker := &failingWorker{}
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return worker.runs.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}

func Test_Supervisor_Stop_Cancels_Workers(t *testing.T) {
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(&blockingWorker{})

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Run assigns the cancel trigger asynchronously.
	time.Sleep(50 * time.Millisecond)

	sup.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}
