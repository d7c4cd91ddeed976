// Package service provides the sampling, classification and dispatch logic
// for the host monitor.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"hostmon/internal/model"
	"hostmon/internal/procfs"
)

// cooldown is the pause after a failed tick before the loop resumes.
const cooldown = 10 * time.Second

// MetricReader reads current raw values for each resource kind from the
// operating system.
type MetricReader interface {
	CPUCounters() (model.CPUSample, error)
	LoadAverage15() (float64, error)
	CountCores() (int, error)
	MemoryCounters() (model.MemoryCounters, error)
	DiskUsage(ctx context.Context) ([]model.MountUsage, error)
}

// Monitor drives the poll → evaluate → dispatch cycle at a fixed interval.
// A failed tick is logged, followed by a cooldown pause; the loop never exits
// on its own — availability over strict correctness.
type Monitor struct {
	reader     MetricReader
	tracker    *DeltaTracker
	evaluator  *Evaluator
	dispatcher *Dispatcher
	checks     map[string]*model.CheckDefinition
	interval   time.Duration
	logger     zerolog.Logger
}

// NewMonitor creates a Monitor over the given collaborators.
func NewMonitor(
	reader MetricReader,
	evaluator *Evaluator,
	dispatcher *Dispatcher,
	checks []*model.CheckDefinition,
	interval time.Duration,
	logger zerolog.Logger,
) *Monitor {
	checkMap := make(map[string]*model.CheckDefinition, len(checks))
	for _, c := range checks {
		checkMap[c.Name] = c
	}

	return &Monitor{
		reader:     reader,
		tracker:    NewDeltaTracker(),
		evaluator:  evaluator,
		dispatcher: dispatcher,
		checks:     checkMap,
		interval:   interval,
		logger:     logger.With().Str("component", "monitor").Logger(),
	}
}

// Run executes the tick loop until the context is cancelled. Any error raised
// during a tick is caught here, logged with a stack trace, and followed by a
// fixed cooldown before the normal interval resumes.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().
		Dur("interval", m.interval).
		Int("checks", len(m.checks)).
		Msg("monitor started")

	for {
		if err := m.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Error().
				Err(err).
				Str("stack", string(debug.Stack())).
				Msg("tick failed, cooling down")
			if !m.sleep(ctx, cooldown) {
				return ctx.Err()
			}
		}
		if !m.sleep(ctx, m.interval) {
			return ctx.Err()
		}
	}
}

// Tick executes one full resource-check cycle: cpu, memory, load, disk, in
// that fixed order. The first error aborts the remaining checks of the tick.
func (m *Monitor) Tick(ctx context.Context) error {
	if m.enabled(model.CheckCPU) {
		if err := m.checkCPU(ctx); err != nil {
			return fmt.Errorf("cpu check: %w", err)
		}
	}
	if m.enabled(model.CheckMemory) {
		if err := m.checkMemory(ctx); err != nil {
			return fmt.Errorf("memory check: %w", err)
		}
	}
	if m.enabled(model.CheckLoad) {
		if err := m.checkLoad(ctx); err != nil {
			return fmt.Errorf("load check: %w", err)
		}
	}
	if m.enabled(model.CheckDisk) {
		if err := m.checkDisk(ctx); err != nil {
			return fmt.Errorf("disk check: %w", err)
		}
	}
	return nil
}

// checkCPU samples the cumulative CPU counters and classifies the utilization
// since the previous tick. A missing cpu line is a monitoring result, not a
// fault: it yields one unknown-severity event. The very first tick (and any
// tick after a counter reset) has no baseline, so no cpu event is emitted.
func (m *Monitor) checkCPU(ctx context.Context) error {
	def := m.checks[model.CheckCPU]

	sample, err := m.reader.CPUCounters()
	if errors.Is(err, procfs.ErrNoCPULine) {
		m.logger.Warn().Err(err).Msg("cpu counters unreadable, reporting unknown")
		return m.dispatcher.DispatchUnknown(ctx, def.ServiceName(),
			fmt.Sprintf("%s不可读: %v", def.DisplayName, err))
	}
	if err != nil {
		return err
	}

	fraction, ok := m.tracker.Update(sample)
	if !ok {
		m.logger.Debug().Msg("no cpu baseline yet, skipping cpu event this tick")
		return nil
	}

	severity := m.evaluator.Classify(model.CheckCPU, fraction)
	return m.dispatcher.Dispatch(ctx, model.CheckCPU, model.Observation{
		Resource:    def.ServiceName(),
		Value:       fraction,
		Description: fmt.Sprintf("%s: %.1f%%", def.DisplayName, fraction*100),
	}, severity)
}

// checkMemory reads the memory counter table and classifies the used fraction.
// Missing counters are a hard failure for the tick.
func (m *Monitor) checkMemory(ctx context.Context) error {
	def := m.checks[model.CheckMemory]

	counters, err := m.reader.MemoryCounters()
	if err != nil {
		return err
	}

	fraction := counters.UsedFraction()
	severity := m.evaluator.Classify(model.CheckMemory, fraction)
	return m.dispatcher.Dispatch(ctx, model.CheckMemory, model.Observation{
		Resource:    def.ServiceName(),
		Value:       fraction,
		Description: fmt.Sprintf("%s: %.1f%%", def.DisplayName, fraction*100),
	}, severity)
}

// checkLoad reads the 15-minute load average, normalizes it by the logical
// core count, and classifies the per-core value.
func (m *Monitor) checkLoad(ctx context.Context) error {
	def := m.checks[model.CheckLoad]

	load, err := m.reader.LoadAverage15()
	if err != nil {
		return err
	}
	cores, err := m.reader.CountCores()
	if err != nil {
		return err
	}

	perCore := load / float64(cores)
	severity := m.evaluator.Classify(model.CheckLoad, perCore)
	return m.dispatcher.Dispatch(ctx, model.CheckLoad, model.Observation{
		Resource:    def.ServiceName(),
		Value:       perCore,
		Description: fmt.Sprintf("%s: %.2f（负载 %.2f / %d 核）", def.DisplayName, perCore, load, cores),
	}, severity)
}

// checkDisk enumerates device-backed mounts and emits one event per mount.
func (m *Monitor) checkDisk(ctx context.Context) error {
	def := m.checks[model.CheckDisk]

	usages, err := m.reader.DiskUsage(ctx)
	if err != nil {
		return err
	}

	for _, u := range usages {
		severity := m.evaluator.Classify(model.CheckDisk, u.UsedFraction)
		err := m.dispatcher.Dispatch(ctx, model.CheckDisk, model.Observation{
			Resource:    def.ServiceName() + " " + u.MountPoint,
			Value:       u.UsedFraction,
			Description: fmt.Sprintf("%s: %.1f%%（挂载点 %s）", def.DisplayName, u.UsedFraction*100, u.MountPoint),
		}, severity)
		if err != nil {
			return err
		}
	}
	return nil
}

// enabled reports whether a check is defined and not disabled.
func (m *Monitor) enabled(check string) bool {
	def, ok := m.checks[check]
	return ok && def.IsEnabled()
}

// sleep waits for d or until the context is cancelled.
// Returns false on cancellation.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
