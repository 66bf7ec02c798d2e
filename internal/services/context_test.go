package services_test

import (
	"context"
	"testing"

	"reelvault/internal/services"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, 7)
	ctx = services.WithStep(ctx, "uploading")
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("item id = %d, ok = %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "uploading" {
		t.Fatalf("step = %q, ok = %v", step, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id = %q, ok = %v", rid, ok)
	}
}

func TestContextMissingValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.ItemIDFromContext(ctx); ok {
		t.Fatal("expected no item id")
	}
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step")
	}
	if same := services.WithStep(ctx, ""); same != ctx {
		t.Fatal("empty step should not allocate a new context")
	}
}
