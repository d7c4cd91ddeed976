// Package procfs reads raw resource counters from the kernel's proc
// filesystem and parses them into typed samples.
package procfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"

	"hostmon/internal/model"
)

// diskStatConcurrency bounds the number of mounts statted in parallel.
// Result order stays deterministic regardless.
const diskStatConcurrency = 4

type mountStat struct {
	mountPoint   string
	usedFraction float64
	ok           bool
}

// DeviceBacked reports whether a partition device path names a real block
// device. Pseudo filesystems (tmpfs, proc, overlay names without a path) and
// table header rows do not start with a path separator.
func DeviceBacked(device string) bool {
	return strings.HasPrefix(device, "/")
}

// DiskUsage enumerates device-backed mounts and returns the used fraction for
// each. Mounts whose usage cannot be statted are skipped with a warning;
// every surviving mount yields exactly one entry.
func (r *Reader) DiskUsage(ctx context.Context) ([]model.MountUsage, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	var backed []disk.PartitionStat
	for _, p := range parts {
		if DeviceBacked(p.Device) {
			backed = append(backed, p)
		}
	}

	stats := make([]mountStat, len(backed))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(diskStatConcurrency)
	for i, p := range backed {
		i, p := i, p
		g.Go(func() error {
			u, err := disk.UsageWithContext(ctx, p.Mountpoint)
			if err != nil {
				r.logger.Warn().Err(err).Str("mount", p.Mountpoint).Msg("failed to stat mount, skipping")
				return nil
			}
			stats[i] = mountStat{
				mountPoint:   p.Mountpoint,
				usedFraction: u.UsedPercent / 100,
				ok:           true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usages := make([]model.MountUsage, 0, len(stats))
	for _, s := range stats {
		if s.ok {
			usages = append(usages, model.MountUsage{MountPoint: s.mountPoint, UsedFraction: s.usedFraction})
		}
	}
	return usages, nil
}
