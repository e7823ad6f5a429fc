// Package evaluator classifies metric values against per-metric threshold
// rules. Pure functions only; no I/O, no shared state.
package evaluator

import (
	"LearnLoopAPI/internal/models"
)

// ComputeSeverity maps a value to OK/WARN/CRIT under the given rule. A nil or
// disabled rule always yields OK so unconfigured metrics never alert.
// Boundary values are inclusive toward the worse severity.
func ComputeSeverity(value float64, cfg *models.EvaluationConfig) models.Severity {
	if cfg == nil || !cfg.Enabled {
		return models.SeverityOK
	}

	if cfg.Comparison == models.ComparisonGT {
		if value >= cfg.Crit {
			return models.SeverityCrit
		}
		if value >= cfg.Warn {
			return models.SeverityWarn
		}
		return models.SeverityOK
	}

	if value <= cfg.Crit {
		return models.SeverityCrit
	}
	if value <= cfg.Warn {
		return models.SeverityWarn
	}
	return models.SeverityOK
}

// Evaluate returns the input augmented with its computed severity. Callers go
// through here rather than invoking threshold logic inline.
func Evaluate(input *models.ScoreInput, cfg *models.EvaluationConfig) models.Scored {
	return models.Scored{
		EventID:  input.EventID,
		Metric:   input.Metric,
		Value:    input.Value,
		Severity: ComputeSeverity(input.Value, cfg),
	}
}
