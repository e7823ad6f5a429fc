package repository

import (
	"context"
	"fmt"
	"testing"

	"LearnLoopAPI/internal/models"
)

func TestMemoryStoreUpsertAndGetConfig(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved, err := store.UpsertEvalConfig(ctx, &models.EvaluationConfig{
		Metric:        "acc",
		Comparison:    models.ComparisonLT,
		Warn:          0.9,
		Crit:          0.8,
		WindowSeconds: 300,
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatalf("expected refreshed updatedAt")
	}

	got, err := store.GetEvalConfig(ctx, "acc")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Warn != 0.9 || got.Crit != 0.8 || got.Comparison != models.ComparisonLT {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestMemoryStoreGetConfigAbsent(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.GetEvalConfig(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent config, got %+v", got)
	}
}

func TestMemoryStoreUpsertReplacesAllFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, _ := store.UpsertEvalConfig(ctx, &models.EvaluationConfig{
		Metric: "latency", Comparison: models.ComparisonGT, Warn: 300, Crit: 450, Enabled: true,
	})
	second, _ := store.UpsertEvalConfig(ctx, &models.EvaluationConfig{
		Metric: "latency", Comparison: models.ComparisonGT, Warn: 100, Crit: 200, Enabled: false,
	})

	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}

	got, _ := store.GetEvalConfig(ctx, "latency")
	if got.Warn != 100 || got.Crit != 200 || got.Enabled {
		t.Fatalf("expected full replace, got %+v", got)
	}
}

func TestMemoryStoreScoresNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.AddScore(ctx, &models.Scored{
			EventID:  fmt.Sprintf("e%d", i),
			Metric:   "latency",
			Value:    float64(i),
			Severity: models.SeverityOK,
		})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	items, err := store.ListScores(ctx, "latency", 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].EventID != "e4" || items[2].EventID != "e2" {
		t.Fatalf("expected newest first, got %+v", items)
	}
}

func TestMemoryStoreScoresMetricFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.AddScore(ctx, &models.Scored{EventID: "e1", Metric: "latency", Severity: models.SeverityOK})
	store.AddScore(ctx, &models.Scored{EventID: "e2", Metric: "accuracy", Severity: models.SeverityOK})

	items, err := store.ListScores(ctx, "accuracy", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].EventID != "e2" {
		t.Fatalf("expected only accuracy scores, got %+v", items)
	}
}

func TestMemoryStoreTelemetryRetentionBound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < memoryRetention+10; i++ {
		store.AddTelemetry(ctx, &models.Telemetry{Source: "agent", Type: models.TelemetryTypeEvent})
	}

	store.mu.RLock()
	size := len(store.telemetry)
	store.mu.RUnlock()

	if size != memoryRetention {
		t.Fatalf("expected retention bound %d, got %d", memoryRetention, size)
	}
}
