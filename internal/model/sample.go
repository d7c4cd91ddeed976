// Package model provides data models for the host monitor.
package model

// CPUSample holds the cumulative aggregate CPU counters from one read of the
// kernel stat table. Counters are jiffies since boot and monotonically
// non-decreasing under normal operation.
type CPUSample struct {
	User   uint64 // 用户态时间
	Nice   uint64 // 低优先级用户态时间
	System uint64 // 内核态时间
	Idle   uint64 // 空闲时间
}

// Busy returns the sum of the non-idle counters.
func (s CPUSample) Busy() uint64 {
	return s.User + s.Nice + s.System
}

// MemoryCounters holds the memory counters read from the kernel, in kilobytes.
type MemoryCounters struct {
	Total   uint64 // 内存总量
	Free    uint64 // 空闲内存
	Buffers uint64 // 缓冲区
	Cached  uint64 // 页缓存
}

// UsedFraction returns the used memory fraction. Buffers and cached pages are
// reclaimable, so they count as free.
func (m MemoryCounters) UsedFraction() float64 {
	if m.Total == 0 {
		return 0
	}
	effective := m.Free + m.Buffers + m.Cached
	return 1 - float64(effective)/float64(m.Total)
}

// MountUsage is the utilization of a single device-backed filesystem mount.
type MountUsage struct {
	MountPoint   string  // 挂载点路径
	UsedFraction float64 // 已用比例
}
