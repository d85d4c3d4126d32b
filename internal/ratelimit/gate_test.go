package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeRepo struct {
	last     *time.Time
	err      error
	recorded []time.Time
}

func (f *fakeRepo) LastSuccess(ctx context.Context, action string) (*time.Time, error) {
	return f.last, f.err
}

func (f *fakeRepo) RecordSuccess(ctx context.Context, action string, at time.Time) error {
	f.recorded = append(f.recorded, at)
	return nil
}

func newTestGate(repo *fakeRepo, now time.Time) *Gate {
	g := NewGate(repo)
	g.nowFunc = func() time.Time { return now }
	return g
}

func TestCanMakeCallNoRecord(t *testing.T) {
	g := newTestGate(&fakeRepo{}, time.Now())
	if !g.CanMakeCall(context.Background(), "daily_trends", 7) {
		t.Fatalf("expected call to be allowed when no record exists")
	}
}

func TestCanMakeCallWithinInterval(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-2 * 24 * time.Hour)
	g := newTestGate(&fakeRepo{last: &last}, now)
	if g.CanMakeCall(context.Background(), "daily_trends", 7) {
		t.Fatalf("expected call to be denied 2 days after last success under a 7-day interval")
	}
}

func TestCanMakeCallAfterInterval(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-8 * 24 * time.Hour)
	g := newTestGate(&fakeRepo{last: &last}, now)
	if !g.CanMakeCall(context.Background(), "daily_trends", 7) {
		t.Fatalf("expected call to be allowed on day 8 under a 7-day interval")
	}
}

func TestCanMakeCallExactBoundaryDenies(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-7 * 24 * time.Hour)
	g := newTestGate(&fakeRepo{last: &last}, now)
	if g.CanMakeCall(context.Background(), "daily_trends", 7) {
		t.Fatalf("expected equality with the interval to deny the call")
	}
}

func TestCanMakeCallFailsClosed(t *testing.T) {
	g := newTestGate(&fakeRepo{err: fmt.Errorf("connection refused")}, time.Now())
	if g.CanMakeCall(context.Background(), "daily_trends", 7) {
		t.Fatalf("expected gate to fail closed on lookup error")
	}
}

func TestRecordSuccessUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	g := newTestGate(repo, now)
	if err := g.RecordSuccess(context.Background(), "daily_trends"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.recorded) != 1 || !repo.recorded[0].Equal(now) {
		t.Fatalf("expected success recorded at %v, got %v", now, repo.recorded)
	}
}
