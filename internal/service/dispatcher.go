// Package service provides the sampling, classification and dispatch logic
// for the host monitor.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"hostmon/internal/model"
	"hostmon/internal/procreport"
)

// EventSender delivers one alert event to the gateway, fire-and-forget.
type EventSender interface {
	SendEvent(ctx context.Context, event *model.AlertEvent) error
}

// ProcessReporter returns a preformatted top-N process table for the given
// sort metric.
type ProcessReporter interface {
	TopByMetric(ctx context.Context, metric procreport.Metric, n int) (string, error)
}

// Dispatcher turns classified observations into alert events and hands them to
// the gateway client. One event per resource per tick, regardless of severity;
// the gateway owns any change suppression.
type Dispatcher struct {
	sender   EventSender
	reporter ProcessReporter
	topN     int
	logger   zerolog.Logger
}

// NewDispatcher creates a Dispatcher. reporter may be nil to disable process
// reports in alert descriptions.
func NewDispatcher(sender EventSender, reporter ProcessReporter, topN int, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		reporter: reporter,
		topN:     topN,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch sends one event for a classified observation. For cpu and memory
// the description gets a top-N process table appended; a failed report
// degrades the description but never blocks the alert.
func (d *Dispatcher) Dispatch(ctx context.Context, check string, obs model.Observation, severity model.Severity) error {
	description := obs.Description
	if report := d.processReport(ctx, check); report != "" {
		description += "\n" + report
	}

	event := model.NewAlertEvent(obs.Resource, severity, obs.Value, description)
	return d.send(ctx, event)
}

// DispatchUnknown sends one unknown-severity event for a resource whose data
// source could not be read. The metric field stays absent.
func (d *Dispatcher) DispatchUnknown(ctx context.Context, service, description string) error {
	return d.send(ctx, model.NewUnknownEvent(service, description))
}

func (d *Dispatcher) send(ctx context.Context, event *model.AlertEvent) error {
	if err := d.sender.SendEvent(ctx, event); err != nil {
		return err
	}
	d.logger.Debug().
		Str("service", event.Service).
		Str("state", string(event.State)).
		Msg("alert dispatched")
	return nil
}

// processReport builds the auxiliary process table for cpu/memory checks.
func (d *Dispatcher) processReport(ctx context.Context, check string) string {
	if d.reporter == nil || d.topN <= 0 {
		return ""
	}

	var metric procreport.Metric
	switch check {
	case model.CheckCPU:
		metric = procreport.ByCPU
	case model.CheckMemory:
		metric = procreport.ByMemory
	default:
		return ""
	}

	report, err := d.reporter.TopByMetric(ctx, metric, d.topN)
	if err != nil {
		d.logger.Warn().Err(err).Str("check", check).Msg("process report failed, sending alert without it")
		return ""
	}
	return report
}
