package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepJob fires once per calendar day at a fixed UTC hour and asks the
// contract service to reconcile expired engagements. The running flag is
// process-local; duplicate concurrent sweeps across instances are harmless
// because the reconciliation itself is a single idempotent bulk update.
type SweepJob struct {
	contracts *ContractService
	hour      int
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	nextFire time.Time
	stopChan chan struct{}
}

// SweepStatus reports the job's running flag and next fire time.
type SweepStatus struct {
	Running  bool      `json:"running"`
	NextFire time.Time `json:"next_fire,omitempty"`
}

func NewSweepJob(contracts *ContractService, hour int) *SweepJob {
	if hour < 0 || hour > 23 {
		hour = 2
	}
	return &SweepJob{
		contracts: contracts,
		hour:      hour,
		now:       time.Now,
	}
}

// Start launches the daily trigger. A second Start while running is a no-op,
// not an error.
func (j *SweepJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		slog.Warn("Sweep job already running")
		return
	}
	j.running = true
	j.nextFire = j.nextFireAfter(j.now())
	j.stopChan = make(chan struct{})

	go j.run(j.stopChan)
	slog.Info("Sweep job started", "hour_utc", j.hour, "next_fire", j.nextFire)
}

// Stop halts the daily trigger.
func (j *SweepJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	j.running = false
	close(j.stopChan)
	slog.Info("Sweep job stopped")
}

// Status reports whether the job is running and when it fires next.
func (j *SweepJob) Status() SweepStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := SweepStatus{Running: j.running}
	if j.running {
		status.NextFire = j.nextFire
	}
	return status
}

// RunNow triggers one out-of-band sweep immediately.
func (j *SweepJob) RunNow(ctx context.Context) (int64, error) {
	count, err := j.contracts.ReconcileExpired(ctx)
	if err != nil {
		slog.Error("Sweep run failed", "error", err)
		return 0, err
	}
	slog.Info("Sweep run completed", "reconciled", count)
	return count, nil
}

func (j *SweepJob) run(stop <-chan struct{}) {
	for {
		j.mu.Lock()
		next := j.nextFire
		j.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			// A failed tick is logged inside RunNow and the job proceeds
			// to the next day unaffected.
			j.RunNow(context.Background())

			j.mu.Lock()
			j.nextFire = j.nextFireAfter(j.now())
			j.mu.Unlock()
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// nextFireAfter returns the next daily fire time strictly after now.
func (j *SweepJob) nextFireAfter(now time.Time) time.Time {
	now = now.UTC()
	fire := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, time.UTC)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
