// Package model provides data models for the host monitor.
package model

// Check names for the four monitored resource kinds.
const (
	CheckCPU    = "cpu"
	CheckMemory = "memory"
	CheckLoad   = "load"
	CheckDisk   = "disk"
)

// CheckDefinition defines the metadata for one resource check, loaded from
// checks.yaml. The service field overrides the name reported to the gateway.
type CheckDefinition struct {
	Name        string `yaml:"name" json:"name"`                             // 检查项标识（cpu、memory、load、disk）
	DisplayName string `yaml:"display_name" json:"display_name"`             // 中文显示名称
	Service     string `yaml:"service,omitempty" json:"service,omitempty"`   // 上报服务名（默认同 name）
	Enabled     *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`   // 是否启用（默认启用）
	Note        string `yaml:"note,omitempty" json:"note,omitempty"`         // 备注说明
}

// IsEnabled returns true unless the check is explicitly disabled.
func (d *CheckDefinition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// ServiceName returns the service name to report, falling back to the check name.
func (d *CheckDefinition) ServiceName() string {
	if d.Service != "" {
		return d.Service
	}
	return d.Name
}

// ChecksConfig represents the root structure of the checks.yaml file.
type ChecksConfig struct {
	Checks []*CheckDefinition `yaml:"checks" json:"checks"` // 检查项定义列表
}

// DefaultChecks returns the built-in definitions for the four resource checks,
// used when no checks file is supplied.
func DefaultChecks() []*CheckDefinition {
	return []*CheckDefinition{
		{Name: CheckCPU, DisplayName: "CPU 利用率"},
		{Name: CheckMemory, DisplayName: "内存利用率"},
		{Name: CheckLoad, DisplayName: "15 分钟负载"},
		{Name: CheckDisk, DisplayName: "磁盘利用率"},
	}
}
