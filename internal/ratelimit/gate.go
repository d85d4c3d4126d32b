// Package ratelimit implements named, interval-based cooldowns for
// scheduled actions.
package ratelimit

import (
	"context"
	"time"

	"github.com/kharazdev/joke-factory/pkg/log"
)

// Repo persists per-action last-success timestamps.
type Repo interface {
	LastSuccess(ctx context.Context, action string) (*time.Time, error)
	RecordSuccess(ctx context.Context, action string, at time.Time) error
}

// Gate decides whether a named action may run again.
//
// The check-then-act sequence is not atomic: two concurrent callers can both
// observe "allowed" and both proceed. The downstream cost is one wasted LLM
// call, not data corruption, so the race is accepted.
type Gate struct {
	repo    Repo
	nowFunc func() time.Time
}

func NewGate(repo Repo) *Gate {
	return &Gate{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CanMakeCall reports whether the action's cooldown has elapsed. True when no
// record exists or when more than intervalDays have passed since the last
// success; elapsed time exactly equal to the interval still denies. A lookup
// failure fails closed to avoid uncontrolled repeat calls.
func (g *Gate) CanMakeCall(ctx context.Context, action string, intervalDays int) bool {
	last, err := g.repo.LastSuccess(ctx, action)
	if err != nil {
		log.Warnw("rate gate lookup failed, denying call", "action", action, "error", err.Error())
		return false
	}
	if last == nil {
		return true
	}
	interval := time.Duration(intervalDays) * 24 * time.Hour
	return g.nowFunc().Sub(*last) > interval
}

// RecordSuccess upserts now as the action's last successful call.
func (g *Gate) RecordSuccess(ctx context.Context, action string) error {
	return g.repo.RecordSuccess(ctx, action, g.nowFunc())
}
