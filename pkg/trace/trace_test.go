package trace

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc-123")
	if got := FromContext(ctx); got != "abc-123" {
		t.Errorf("FromContext = %q, want abc-123", got)
	}
}

func TestFromContextMissing(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext on empty context = %q, want empty", got)
	}
}

func TestGenerateTraceIDUnique(t *testing.T) {
	a := GenerateTraceID()
	b := GenerateTraceID()
	if len(a) != 32 {
		t.Errorf("trace id length = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two generated trace ids are identical")
	}
}
