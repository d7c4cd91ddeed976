// Package procfs reads raw resource counters from the kernel's proc
// filesystem and parses them into typed samples.
package procfs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"hostmon/internal/model"
)

// ErrNoCPULine is returned when the aggregate cpu line is missing or malformed.
// Callers classify this as an unknown-severity condition rather than a fault.
var ErrNoCPULine = errors.New("no aggregate cpu line in stat")

// DefaultRoot is the proc filesystem mount point.
const DefaultRoot = "/proc"

// Reader reads raw OS counters from a proc filesystem root. It holds no state;
// the root is swappable so tests can point it at synthetic fixtures.
type Reader struct {
	root   string
	logger zerolog.Logger
}

// NewReader creates a Reader bound to the given proc root.
// An empty root falls back to DefaultRoot.
func NewReader(root string, logger zerolog.Logger) *Reader {
	if root == "" {
		root = DefaultRoot
	}
	return &Reader{
		root:   root,
		logger: logger.With().Str("component", "procfs").Logger(),
	}
}

// CPUCounters parses the aggregate cpu line of the stat table into a sample of
// cumulative jiffy counters. Returns ErrNoCPULine when the expected line is
// absent or too short.
func (r *Reader) CPUCounters() (model.CPUSample, error) {
	f, err := os.Open(filepath.Join(r.root, "stat"))
	if err != nil {
		return model.CPUSample{}, fmt.Errorf("open stat: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// The aggregate line is "cpu  user nice system idle ..."; per-cpu
		// lines are "cpu0", "cpu1" and must not match.
		if len(fields) == 0 || fields[0] != "cpu" {
			continue
		}
		if len(fields) < 5 {
			return model.CPUSample{}, ErrNoCPULine
		}

		var sample model.CPUSample
		for i, dst := range []*uint64{&sample.User, &sample.Nice, &sample.System, &sample.Idle} {
			v, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				return model.CPUSample{}, fmt.Errorf("%w: bad counter %q", ErrNoCPULine, fields[i+1])
			}
			*dst = v
		}
		return sample, nil
	}
	if err := scanner.Err(); err != nil {
		return model.CPUSample{}, fmt.Errorf("read stat: %w", err)
	}

	return model.CPUSample{}, ErrNoCPULine
}

// LoadAverage15 parses the 15-minute load average, the third whitespace
// separated field of loadavg.
func (r *Reader) LoadAverage15() (float64, error) {
	data, err := os.ReadFile(filepath.Join(r.root, "loadavg"))
	if err != nil {
		return 0, fmt.Errorf("read loadavg: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, fmt.Errorf("malformed loadavg: %q", strings.TrimSpace(string(data)))
	}

	load, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, fmt.Errorf("parse loadavg field %q: %w", fields[2], err)
	}
	return load, nil
}

// CountCores derives the logical core count from the per-processor blocks of
// cpuinfo. Blocks carrying both a physical id and a core id are deduplicated
// by that pair; blocks without topology info (virtualized or non-x86 hosts)
// each count as a distinct core.
func (r *Reader) CountCores() (int, error) {
	f, err := os.Open(filepath.Join(r.root, "cpuinfo"))
	if err != nil {
		return 0, fmt.Errorf("open cpuinfo: %w", err)
	}
	defer f.Close()

	cores := make(map[string]bool)
	block := -1
	physicalID, coreID := "", ""

	flush := func() {
		if block < 0 {
			return
		}
		if physicalID != "" && coreID != "" {
			cores["p"+physicalID+":c"+coreID] = true
		} else {
			// No topology metadata, fall back to one core per block.
			cores["block"+strconv.Itoa(block)] = true
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "processor":
			flush()
			block++
			physicalID, coreID = "", ""
		case "physical id":
			physicalID = value
		case "core id":
			coreID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read cpuinfo: %w", err)
	}
	flush()

	if len(cores) == 0 {
		return 0, fmt.Errorf("no processor blocks in cpuinfo")
	}
	return len(cores), nil
}

// memKeys are the counters required from meminfo, in kilobytes.
var memKeys = []string{"MemTotal", "MemFree", "Buffers", "Cached"}

// MemoryCounters parses the key/value memory counter table. All four expected
// keys must be present.
func (r *Reader) MemoryCounters() (model.MemoryCounters, error) {
	f, err := os.Open(filepath.Join(r.root, "meminfo"))
	if err != nil {
		return model.MemoryCounters{}, fmt.Errorf("open meminfo: %w", err)
	}
	defer f.Close()

	values := make(map[string]uint64, len(memKeys))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, rest, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		values[strings.TrimSpace(key)] = v
	}
	if err := scanner.Err(); err != nil {
		return model.MemoryCounters{}, fmt.Errorf("read meminfo: %w", err)
	}

	var missing []string
	for _, k := range memKeys {
		if _, ok := values[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return model.MemoryCounters{}, fmt.Errorf("meminfo missing keys: %s", strings.Join(missing, ", "))
	}

	return model.MemoryCounters{
		Total:   values["MemTotal"],
		Free:    values["MemFree"],
		Buffers: values["Buffers"],
		Cached:  values["Cached"],
	}, nil
}
