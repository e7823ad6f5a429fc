// Package validation normalizes untrusted request payloads before anything
// else touches them. Each parser returns either a fully-defaulted record or an
// InvalidPayload error listing every violated field. Unknown fields are
// dropped, not rejected.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/models"
)

const (
	maxSourceLen  = 64
	maxIDLen      = 128
	maxNotesLen   = 2000
	minWindowSec  = 1
	maxWindowSec  = 86400
	defaultWindow = 300
)

func decode(body []byte) (map[string]interface{}, *apperrors.Error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.InvalidJSON()
	}
	if raw == nil {
		return nil, apperrors.InvalidJSON()
	}
	return raw, nil
}

// Telemetry parses a telemetry record. Missing timestamp defaults to now,
// missing type to "event", missing payload to an empty object.
func Telemetry(body []byte) (*models.Telemetry, *apperrors.Error) {
	raw, errJSON := decode(body)
	if errJSON != nil {
		return nil, errJSON
	}

	var errs []apperrors.FieldError

	source := requireString(raw, "source", 1, maxSourceLen, &errs)

	telType := models.TelemetryTypeEvent
	if v, present := raw["type"]; present {
		s, ok := v.(string)
		if !ok {
			errs = append(errs, apperrors.FieldError{Field: "type", Message: "must be a string"})
		} else {
			switch s {
			case models.TelemetryTypeMetric, models.TelemetryTypeEvent, models.TelemetryTypeTrace:
				telType = s
			default:
				errs = append(errs, apperrors.FieldError{Field: "type", Message: "must be one of metric, event, trace"})
			}
		}
	}

	timestamp := time.Now().UTC()
	if v, present := raw["timestamp"]; present {
		s, ok := v.(string)
		if !ok {
			errs = append(errs, apperrors.FieldError{Field: "timestamp", Message: "must be an RFC3339 string"})
		} else if s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				errs = append(errs, apperrors.FieldError{Field: "timestamp", Message: "must be an RFC3339 string"})
			} else {
				timestamp = t
			}
		}
	}

	payload := map[string]interface{}{}
	if v, present := raw["payload"]; present && v != nil {
		m, ok := v.(map[string]interface{})
		if !ok {
			errs = append(errs, apperrors.FieldError{Field: "payload", Message: "must be an object"})
		} else {
			payload = m
		}
	}

	if len(errs) > 0 {
		return nil, apperrors.InvalidPayload(errs)
	}

	return &models.Telemetry{
		Timestamp: timestamp,
		Source:    source,
		Type:      telType,
		Payload:   payload,
	}, nil
}

// Feedback parses a feedback record. Reviewer and notes are optional.
func Feedback(body []byte) (*models.Feedback, *apperrors.Error) {
	raw, errJSON := decode(body)
	if errJSON != nil {
		return nil, errJSON
	}

	var errs []apperrors.FieldError

	eventID := requireString(raw, "eventId", 1, maxIDLen, &errs)
	label := requireString(raw, "label", 1, maxIDLen, &errs)
	reviewer := optionalString(raw, "reviewer", maxIDLen, &errs)
	notes := optionalString(raw, "notes", maxNotesLen, &errs)

	if len(errs) > 0 {
		return nil, apperrors.InvalidPayload(errs)
	}

	return &models.Feedback{
		EventID:  eventID,
		Label:    label,
		Reviewer: reviewer,
		Notes:    notes,
	}, nil
}

// ScoreInput parses a score submission. The value must be a finite number.
func ScoreInput(body []byte) (*models.ScoreInput, *apperrors.Error) {
	raw, errJSON := decode(body)
	if errJSON != nil {
		return nil, errJSON
	}

	var errs []apperrors.FieldError

	eventID := requireString(raw, "eventId", 1, maxIDLen, &errs)
	metric := requireString(raw, "metric", 1, maxIDLen, &errs)
	value := requireNumber(raw, "value", &errs)

	if len(errs) > 0 {
		return nil, apperrors.InvalidPayload(errs)
	}

	return &models.ScoreInput{
		EventID: eventID,
		Metric:  metric,
		Value:   value,
	}, nil
}

// EvalConfig parses a threshold rule. Comparison defaults to gt, windowSeconds
// to 300 and enabled to true. Thresholds must be ordered so that warn is the
// milder bound for the chosen comparison direction; violations are a hard
// rejection, never silently corrected.
func EvalConfig(body []byte) (*models.EvaluationConfig, *apperrors.Error) {
	raw, errJSON := decode(body)
	if errJSON != nil {
		return nil, errJSON
	}

	var errs []apperrors.FieldError

	metric := requireString(raw, "metric", 1, maxIDLen, &errs)

	comparison := models.ComparisonGT
	if v, present := raw["comparison"]; present {
		s, ok := v.(string)
		if !ok {
			errs = append(errs, apperrors.FieldError{Field: "comparison", Message: "must be a string"})
		} else {
			switch models.Comparison(s) {
			case models.ComparisonGT, models.ComparisonLT:
				comparison = models.Comparison(s)
			default:
				errs = append(errs, apperrors.FieldError{Field: "comparison", Message: "must be gt or lt"})
			}
		}
	}

	warn := requireNumber(raw, "warn", &errs)
	crit := requireNumber(raw, "crit", &errs)

	windowSeconds := defaultWindow
	if v, present := raw["windowSeconds"]; present {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			errs = append(errs, apperrors.FieldError{Field: "windowSeconds", Message: "must be an integer"})
		} else if f < minWindowSec || f > maxWindowSec {
			errs = append(errs, apperrors.FieldError{
				Field:   "windowSeconds",
				Message: fmt.Sprintf("must be between %d and %d", minWindowSec, maxWindowSec),
			})
		} else {
			windowSeconds = int(f)
		}
	}

	enabled := true
	if v, present := raw["enabled"]; present {
		b, ok := v.(bool)
		if !ok {
			errs = append(errs, apperrors.FieldError{Field: "enabled", Message: "must be a boolean"})
		} else {
			enabled = b
		}
	}

	// Only check threshold ordering once both parsed cleanly.
	if len(errs) == 0 {
		if comparison == models.ComparisonGT && warn > crit {
			errs = append(errs, apperrors.FieldError{Field: "warn", Message: "must not exceed crit when comparison is gt"})
		}
		if comparison == models.ComparisonLT && warn < crit {
			errs = append(errs, apperrors.FieldError{Field: "warn", Message: "must not be below crit when comparison is lt"})
		}
	}

	if len(errs) > 0 {
		return nil, apperrors.InvalidPayload(errs)
	}

	return &models.EvaluationConfig{
		Metric:        metric,
		Comparison:    comparison,
		Warn:          warn,
		Crit:          crit,
		WindowSeconds: windowSeconds,
		Enabled:       enabled,
	}, nil
}

func requireString(raw map[string]interface{}, field string, min, max int, errs *[]apperrors.FieldError) string {
	v, present := raw[field]
	if !present {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "is required"})
		return ""
	}

	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must be a string"})
		return ""
	}

	if len(s) < min {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must not be empty"})
		return ""
	}

	if len(s) > max {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)})
		return ""
	}

	return s
}

func optionalString(raw map[string]interface{}, field string, max int, errs *[]apperrors.FieldError) string {
	v, present := raw[field]
	if !present || v == nil {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must be a string"})
		return ""
	}

	if len(s) > max {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)})
		return ""
	}

	return s
}

func requireNumber(raw map[string]interface{}, field string, errs *[]apperrors.FieldError) float64 {
	v, present := raw[field]
	if !present {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "is required"})
		return 0
	}

	f, ok := v.(float64)
	if !ok {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must be a number"})
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must be finite"})
		return 0
	}

	return f
}
