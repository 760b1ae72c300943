package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs a snapshot of the server process:
// cpu and memory usage plus the goroutine count. It keeps the realtime
// layer observable without exposing a metrics surface.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	proc     *process.Process
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration) (*TelemetryWorker, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &TelemetryWorker{log: log, interval: interval, proc: proc}, nil
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			w.snapshot()
		}
	}
}

func (w *TelemetryWorker) snapshot() {
	cpu, err := w.proc.CPUPercent()
	if err != nil {
		w.log.Error("Error while reading process cpu usage", "err", err)
		return
	}
	ram, err := w.proc.MemoryPercent()
	if err != nil {
		w.log.Error("Error while reading process ram usage", "err", err)
		return
	}
	w.log.Info("process telemetry",
		"cpu_percent", cpu,
		"ram_percent", ram,
		"goroutines", runtime.NumGoroutine(),
	)
}
