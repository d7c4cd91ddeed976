// Package model provides data models for the host monitor.
package model

// AlertEvent is the unit handed to the alert gateway. Every tick re-emits one
// event per monitored resource regardless of whether the severity changed;
// the gateway side owns any deduplication.
type AlertEvent struct {
	Service     string   `json:"service"`          // 服务名（如 cpu、disk /、load、memory）
	State       Severity `json:"state"`            // 告警级别
	Metric      *float64 `json:"metric,omitempty"` // 指标值（unknown 时为空）
	Description string   `json:"description"`      // 告警描述
}

// NewAlertEvent creates an AlertEvent carrying a metric value.
func NewAlertEvent(service string, state Severity, metric float64, description string) *AlertEvent {
	return &AlertEvent{
		Service:     service,
		State:       state,
		Metric:      &metric,
		Description: description,
	}
}

// NewUnknownEvent creates an AlertEvent for a resource whose data source could
// not be read. The metric field stays absent.
func NewUnknownEvent(service string, description string) *AlertEvent {
	return &AlertEvent{
		Service:     service,
		State:       SeverityUnknown,
		Description: description,
	}
}

// Observation is one classified resource reading, constructed fresh each tick
// and never retained.
type Observation struct {
	Resource    string  // 资源名称
	Value       float64 // 利用率（0-1 区间的分数或单核负载）
	Description string  // 人类可读描述
}
