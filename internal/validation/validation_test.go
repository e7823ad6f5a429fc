package validation

import (
	"testing"

	"LearnLoopAPI/internal/apperrors"
	"LearnLoopAPI/internal/models"
)

func TestTelemetryDefaults(t *testing.T) {
	rec, err := Telemetry([]byte(`{"source":"agent-1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Type != models.TelemetryTypeEvent {
		t.Fatalf("expected default type event, got %s", rec.Type)
	}
	if rec.Payload == nil || len(rec.Payload) != 0 {
		t.Fatalf("expected empty payload default")
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("expected timestamp default")
	}
}

func TestTelemetryUnknownFieldsDropped(t *testing.T) {
	rec, err := Telemetry([]byte(`{"source":"agent-1","bogus":true,"extra":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Source != "agent-1" {
		t.Fatalf("expected source preserved")
	}
}

func TestTelemetryRejectsBadType(t *testing.T) {
	_, err := Telemetry([]byte(`{"source":"agent-1","type":"bogus"}`))
	if err == nil || err.Kind != apperrors.KindInvalidPayload {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestScoreInputValid(t *testing.T) {
	in, err := ScoreInput([]byte(`{"eventId":"e1","metric":"latency","value":500}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.EventID != "e1" || in.Metric != "latency" || in.Value != 500 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestScoreInputReportsEveryField(t *testing.T) {
	_, err := ScoreInput([]byte(`{"value":"not a number"}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(err.Fields), err.Fields)
	}
}

func TestScoreInputInvalidJSON(t *testing.T) {
	_, err := ScoreInput([]byte(`{`))
	if err == nil || err.Kind != apperrors.KindInvalidPayload {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestEvalConfigDefaults(t *testing.T) {
	cfg, err := EvalConfig([]byte(`{"metric":"latency","warn":300,"crit":450}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Comparison != models.ComparisonGT {
		t.Fatalf("expected default comparison gt")
	}
	if cfg.WindowSeconds != 300 {
		t.Fatalf("expected default window 300, got %d", cfg.WindowSeconds)
	}
	if !cfg.Enabled {
		t.Fatalf("expected enabled default true")
	}
}

func TestEvalConfigThresholdOrderGT(t *testing.T) {
	_, err := EvalConfig([]byte(`{"metric":"latency","warn":500,"crit":450}`))
	if err == nil {
		t.Fatalf("expected rejection for warn > crit under gt")
	}
}

func TestEvalConfigThresholdOrderLT(t *testing.T) {
	_, err := EvalConfig([]byte(`{"metric":"acc","comparison":"lt","warn":0.7,"crit":0.8}`))
	if err == nil {
		t.Fatalf("expected rejection for warn < crit under lt")
	}

	cfg, err := EvalConfig([]byte(`{"metric":"acc","comparison":"lt","warn":0.9,"crit":0.8}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Comparison != models.ComparisonLT {
		t.Fatalf("expected lt comparison")
	}
}

func TestEvalConfigWindowRange(t *testing.T) {
	_, err := EvalConfig([]byte(`{"metric":"m","warn":1,"crit":2,"windowSeconds":0}`))
	if err == nil {
		t.Fatalf("expected rejection for windowSeconds below 1")
	}
	_, err = EvalConfig([]byte(`{"metric":"m","warn":1,"crit":2,"windowSeconds":86401}`))
	if err == nil {
		t.Fatalf("expected rejection for windowSeconds above 86400")
	}
}

func TestFeedbackOptionalFields(t *testing.T) {
	fb, err := Feedback([]byte(`{"eventId":"e1","label":"hallucination"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Reviewer != "" || fb.Notes != "" {
		t.Fatalf("expected empty optional fields")
	}
}

func TestFeedbackLengthCeiling(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Feedback([]byte(`{"eventId":"` + string(long) + `","label":"ok"}`))
	if err == nil {
		t.Fatalf("expected rejection for oversized eventId")
	}
}
