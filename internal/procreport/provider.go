// Package procreport builds human-readable top-N process tables for inclusion
// in alert descriptions.
package procreport

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// Metric selects the sort key for the process table.
type Metric string

const (
	ByCPU    Metric = "cpu"    // 按 CPU 占用排序
	ByMemory Metric = "memory" // 按内存占用排序
)

// Provider enumerates host processes through the OS process table.
type Provider struct {
	logger zerolog.Logger
}

// NewProvider creates a process report provider.
func NewProvider(logger zerolog.Logger) *Provider {
	return &Provider{
		logger: logger.With().Str("component", "procreport").Logger(),
	}
}

type entry struct {
	pid   int32
	name  string
	value float64
}

// TopByMetric returns the top n processes by the given metric, formatted as a
// fixed-width text table, descending. Processes that disappear or deny access
// mid-enumeration are skipped.
func (p *Provider) TopByMetric(ctx context.Context, metric Metric, n int) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	entries := make([]entry, 0, len(procs))
	for _, proc := range procs {
		var value float64
		switch metric {
		case ByCPU:
			v, err := proc.CPUPercentWithContext(ctx)
			if err != nil {
				continue
			}
			value = v
		case ByMemory:
			v, err := proc.MemoryPercentWithContext(ctx)
			if err != nil {
				continue
			}
			value = float64(v)
		default:
			return "", fmt.Errorf("unknown process metric %q", metric)
		}

		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		entries = append(entries, entry{pid: proc.Pid, name: name, value: value})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].value > entries[j].value })
	if n < len(entries) {
		entries = entries[:n]
	}

	var sb strings.Builder
	header := "   %CPU"
	if metric == ByMemory {
		header = "   %MEM"
	}
	sb.WriteString(fmt.Sprintf("%s %7s  %s\n", header, "PID", "COMMAND"))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%6.1f%% %7d  %s\n", e.value, e.pid, e.name))
	}

	p.logger.Debug().Str("metric", string(metric)).Int("count", len(entries)).Msg("process report built")
	return sb.String(), nil
}
