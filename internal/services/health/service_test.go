package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutChecks(t *testing.T) {
	report := NewService().Status(context.Background())
	if !report.OK || report.Components != nil {
		t.Fatalf("expected bare ok report, got %+v", report)
	}
}

func TestStatusReportsFailingComponent(t *testing.T) {
	svc := NewService()
	svc.Register("postgres", func(context.Context) error { return nil })
	svc.Register("redis", func(context.Context) error { return errors.New("dial tcp: refused") })
	svc.Register("ignored", nil)

	report := svc.Status(context.Background())
	if report.OK {
		t.Fatalf("expected degraded report")
	}
	if report.Components["postgres"] != "up" || report.Components["redis"] != "down" {
		t.Fatalf("unexpected components %+v", report.Components)
	}
	if _, ok := report.Components["ignored"]; ok {
		t.Fatalf("nil check should not be registered")
	}
}
