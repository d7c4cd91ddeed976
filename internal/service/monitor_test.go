package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hostmon/internal/model"
	"hostmon/internal/procfs"
)

// fakeReader serves scripted samples. CPU samples are consumed one per tick.
type fakeReader struct {
	cpuSamples []model.CPUSample
	cpuErr     error
	memory     model.MemoryCounters
	memErr     error
	load       float64
	cores      int
	mounts     []model.MountUsage
	diskErr    error
}

func (f *fakeReader) CPUCounters() (model.CPUSample, error) {
	if f.cpuErr != nil {
		return model.CPUSample{}, f.cpuErr
	}
	if len(f.cpuSamples) == 0 {
		return model.CPUSample{}, errors.New("fakeReader: out of cpu samples")
	}
	sample := f.cpuSamples[0]
	f.cpuSamples = f.cpuSamples[1:]
	return sample, nil
}

func (f *fakeReader) LoadAverage15() (float64, error) { return f.load, nil }
func (f *fakeReader) CountCores() (int, error)        { return f.cores, nil }
func (f *fakeReader) MemoryCounters() (model.MemoryCounters, error) {
	return f.memory, f.memErr
}
func (f *fakeReader) DiskUsage(context.Context) ([]model.MountUsage, error) {
	return f.mounts, f.diskErr
}

func newTestMonitor(reader MetricReader, sender *fakeSender) *Monitor {
	evaluator := createTestEvaluator()
	dispatcher := NewDispatcher(sender, nil, 0, zerolog.Nop())
	return NewMonitor(reader, evaluator, dispatcher, model.DefaultChecks(), time.Second, zerolog.Nop())
}

func eventsByService(events []*model.AlertEvent) map[string]*model.AlertEvent {
	m := make(map[string]*model.AlertEvent, len(events))
	for _, e := range events {
		m[e.Service] = e
	}
	return m
}

func TestMonitor_FirstTickSkipsCPUEvent(t *testing.T) {
	reader := &fakeReader{
		cpuSamples: []model.CPUSample{{User: 100, System: 50, Idle: 850}},
		memory:     model.MemoryCounters{Total: 1000, Free: 100, Buffers: 50, Cached: 50},
		load:       4.0,
		cores:      2,
		mounts:     []model.MountUsage{{MountPoint: "/", UsedFraction: 0.42}},
	}
	sender := &fakeSender{}
	m := newTestMonitor(reader, sender)

	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	byService := eventsByService(sender.events)
	if _, ok := byService["cpu"]; ok {
		t.Error("first tick must not emit a cpu event")
	}
	if len(sender.events) != 3 {
		t.Fatalf("expected 3 events (memory, load, disk /), got %d", len(sender.events))
	}

	// memory: 1 - (100+50+50)/1000 = 0.8, not > 0.85 warning
	mem := byService["memory"]
	if mem == nil {
		t.Fatal("missing memory event")
	}
	if math.Abs(*mem.Metric-0.8) > 1e-9 {
		t.Errorf("memory metric = %v, want 0.8", *mem.Metric)
	}
	if mem.State != model.SeverityOK {
		t.Errorf("memory state = %s, want ok", mem.State)
	}

	// load per core: 4.0 / 2 = 2.0, not > 3
	load := byService["load"]
	if load == nil {
		t.Fatal("missing load event")
	}
	if math.Abs(*load.Metric-2.0) > 1e-9 {
		t.Errorf("load metric = %v, want 2.0", *load.Metric)
	}

	if _, ok := byService["disk /"]; !ok {
		t.Error("missing disk event for mount /")
	}
}

func TestMonitor_SecondTickEmitsCPUEvent(t *testing.T) {
	reader := &fakeReader{
		cpuSamples: []model.CPUSample{
			{User: 100, Nice: 0, System: 50, Idle: 850},
			{User: 150, Nice: 0, System: 80, Idle: 870},
		},
		memory: model.MemoryCounters{Total: 1000, Free: 100, Buffers: 50, Cached: 50},
		load:   1.0,
		cores:  2,
	}
	sender := &fakeSender{}
	m := newTestMonitor(reader, sender)

	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("first Tick() error = %v", err)
	}
	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("second Tick() error = %v", err)
	}

	var cpu *model.AlertEvent
	for _, e := range sender.events {
		if e.Service == "cpu" {
			cpu = e
		}
	}
	if cpu == nil {
		t.Fatal("second tick should emit a cpu event")
	}

	// used = 80, idle delta = 20 → fraction 0.80, not > 0.90 warning
	if math.Abs(*cpu.Metric-0.80) > 1e-9 {
		t.Errorf("cpu metric = %v, want 0.80", *cpu.Metric)
	}
	if cpu.State != model.SeverityOK {
		t.Errorf("cpu state = %s, want ok", cpu.State)
	}
}

func TestMonitor_UnreadableCPUEmitsUnknown(t *testing.T) {
	reader := &fakeReader{
		cpuErr: procfs.ErrNoCPULine,
		memory: model.MemoryCounters{Total: 1000, Free: 500},
		load:   1.0,
		cores:  4,
	}
	sender := &fakeSender{}
	m := newTestMonitor(reader, sender)

	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v, unreadable cpu must not fail the tick", err)
	}

	byService := eventsByService(sender.events)
	cpu := byService["cpu"]
	if cpu == nil {
		t.Fatal("expected an unknown cpu event")
	}
	if cpu.State != model.SeverityUnknown {
		t.Errorf("cpu state = %s, want unknown", cpu.State)
	}
	if cpu.Metric != nil {
		t.Errorf("cpu metric = %v, want absent", *cpu.Metric)
	}

	// The rest of the tick proceeds normally.
	if _, ok := byService["memory"]; !ok {
		t.Error("memory check should still run after unreadable cpu")
	}
	if _, ok := byService["load"]; !ok {
		t.Error("load check should still run after unreadable cpu")
	}
}

// A memory reader failure is a hard tick failure: load and disk are skipped.
func TestMonitor_MemoryFailureAbortsTick(t *testing.T) {
	reader := &fakeReader{
		cpuSamples: []model.CPUSample{{User: 1, Idle: 9}},
		memErr:     errors.New("meminfo missing keys: MemTotal"),
		load:       1.0,
		cores:      1,
		mounts:     []model.MountUsage{{MountPoint: "/", UsedFraction: 0.5}},
	}
	sender := &fakeSender{}
	m := newTestMonitor(reader, sender)

	err := m.Tick(context.Background())
	if err == nil {
		t.Fatal("expected tick error from failing memory reader")
	}
	if !strings.Contains(err.Error(), "memory check") {
		t.Errorf("error = %v, want memory check wrapping", err)
	}

	byService := eventsByService(sender.events)
	if _, ok := byService["load"]; ok {
		t.Error("load must be skipped after memory failure")
	}
	if _, ok := byService["disk /"]; ok {
		t.Error("disk must be skipped after memory failure")
	}
}

func TestMonitor_OneEventPerMount(t *testing.T) {
	reader := &fakeReader{
		cpuSamples: []model.CPUSample{{User: 1, Idle: 9}},
		memory:     model.MemoryCounters{Total: 1000, Free: 500},
		load:       1.0,
		cores:      1,
		mounts: []model.MountUsage{
			{MountPoint: "/", UsedFraction: 0.50},
			{MountPoint: "/data", UsedFraction: 0.96},
			{MountPoint: "/var", UsedFraction: 0.91},
		},
	}
	sender := &fakeSender{}
	m := newTestMonitor(reader, sender)

	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	byService := eventsByService(sender.events)
	tests := []struct {
		service string
		want    model.Severity
	}{
		{"disk /", model.SeverityOK},
		{"disk /data", model.SeverityCritical},
		{"disk /var", model.SeverityWarning},
	}
	for _, tt := range tests {
		event := byService[tt.service]
		if event == nil {
			t.Errorf("missing event for %q", tt.service)
			continue
		}
		if event.State != tt.want {
			t.Errorf("%s state = %s, want %s", tt.service, event.State, tt.want)
		}
	}
}

func TestMonitor_DisabledCheckSkipped(t *testing.T) {
	disabled := false
	checks := []*model.CheckDefinition{
		{Name: model.CheckCPU, DisplayName: "CPU 利用率", Enabled: &disabled},
		{Name: model.CheckMemory, DisplayName: "内存利用率"},
	}

	reader := &fakeReader{
		memory: model.MemoryCounters{Total: 1000, Free: 500},
	}
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, nil, 0, zerolog.Nop())
	m := NewMonitor(reader, createTestEvaluator(), dispatcher, checks, time.Second, zerolog.Nop())

	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	if len(sender.events) != 1 || sender.events[0].Service != "memory" {
		t.Errorf("expected only the memory event, got %d events", len(sender.events))
	}
}

func TestMonitor_RunStopsOnContextCancel(t *testing.T) {
	reader := &fakeReader{
		cpuSamples: []model.CPUSample{{User: 1, Idle: 9}, {User: 2, Idle: 18}, {User: 3, Idle: 27}},
		memory:     model.MemoryCounters{Total: 1000, Free: 500},
		load:       1.0,
		cores:      1,
	}
	sender := &fakeSender{}
	evaluator := createTestEvaluator()
	dispatcher := NewDispatcher(sender, nil, 0, zerolog.Nop())
	m := NewMonitor(reader, evaluator, dispatcher, model.DefaultChecks(), 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Run() = %v, want context deadline error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after context cancellation")
	}
}
