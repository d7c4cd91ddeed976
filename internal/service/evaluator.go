// Package service provides the sampling, classification and dispatch logic
// for the host monitor.
package service

import (
	"github.com/rs/zerolog"

	"hostmon/internal/config"
	"hostmon/internal/model"
)

// Evaluator maps resource values to severity tiers using the configured
// threshold pairs. Thresholds are fixed for the process lifetime.
type Evaluator struct {
	thresholds *config.ThresholdsConfig
	logger     zerolog.Logger
}

// NewEvaluator creates a new Evaluator with the given threshold configuration.
func NewEvaluator(thresholds *config.ThresholdsConfig, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
		logger:     logger.With().Str("component", "evaluator").Logger(),
	}
}

// Classify returns the severity tier for a value of the named resource check.
// Unknown check names classify as ok; unreadable input never reaches here, it
// is classified unknown at the reader boundary.
func (e *Evaluator) Classify(check string, value float64) model.Severity {
	pair, ok := e.pairFor(check)
	if !ok {
		e.logger.Warn().Str("check", check).Msg("no thresholds for check")
		return model.SeverityOK
	}
	return classify(value, pair)
}

// pairFor returns the threshold pair for a resource check.
func (e *Evaluator) pairFor(check string) (config.ThresholdPair, bool) {
	switch check {
	case model.CheckCPU:
		return e.thresholds.CPU, true
	case model.CheckMemory:
		return e.thresholds.Memory, true
	case model.CheckDisk:
		return e.thresholds.Disk, true
	case model.CheckLoad:
		return e.thresholds.LoadPerCore, true
	default:
		return config.ThresholdPair{}, false
	}
}

// classify compares a value against a threshold pair. Bounds are exclusive:
// a value exactly equal to a threshold is not escalated.
func classify(value float64, pair config.ThresholdPair) model.Severity {
	if value > pair.Critical {
		return model.SeverityCritical
	}
	if value > pair.Warning {
		return model.SeverityWarning
	}
	return model.SeverityOK
}
