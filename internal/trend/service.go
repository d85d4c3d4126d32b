// Package trend caches and regenerates per-country trending topics.
package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// ActionTrendGeneration is the rate-gate key for trend regeneration.
const ActionTrendGeneration = "trend_generation"

const trendSystemPrompt = `You track what people in each country are currently talking about.
For every requested country, list 5 current trending topics with a one-sentence description each.
Return ONLY a valid JSON object, with no commentary and no Markdown code fences.`

// SnapshotRepo persists trend snapshots.
type SnapshotRepo interface {
	Latest(ctx context.Context) (*types.TrendSnapshot, error)
	Insert(ctx context.Context, trends map[string][]types.Trend) error
}

// CountrySource lists the countries the snapshot must cover.
type CountrySource interface {
	Countries(ctx context.Context) ([]string, error)
}

// SuccessRecorder marks the regeneration action as done for the rate gate.
type SuccessRecorder interface {
	RecordSuccess(ctx context.Context, action string) error
}

// Service reads the latest cached snapshot and regenerates it on demand.
type Service struct {
	chat      llm.ChatClient
	snapshots SnapshotRepo
	countries CountrySource
	recorder  SuccessRecorder
}

func NewService(chat llm.ChatClient, snapshots SnapshotRepo, countries CountrySource, recorder SuccessRecorder) *Service {
	return &Service{
		chat:      chat,
		snapshots: snapshots,
		countries: countries,
		recorder:  recorder,
	}
}

// LatestCached returns the most recent snapshot, or nil when none exists.
func (s *Service) LatestCached(ctx context.Context) (*types.TrendSnapshot, error) {
	return s.snapshots.Latest(ctx)
}

// Generate produces a fresh snapshot for the active characters' countries,
// stores it as a new immutable row, and records the rate-gate success.
func (s *Service) Generate(ctx context.Context) error {
	countries, err := s.countries.Countries(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve countries for trend generation: %w", err)
	}
	if len(countries) == 0 {
		return fmt.Errorf("no active character countries to generate trends for")
	}

	raw, err := s.chat.Complete(ctx, trendSystemPrompt, buildTrendPrompt(countries))
	if err != nil {
		return fmt.Errorf("trend generation call failed: %w", err)
	}

	trends, err := parseTrends(raw)
	if err != nil {
		return err
	}

	if err := s.snapshots.Insert(ctx, trends); err != nil {
		return err
	}

	if s.recorder != nil {
		if err := s.recorder.RecordSuccess(ctx, ActionTrendGeneration); err != nil {
			log.Warnw("failed to record trend generation success", "error", err.Error())
		}
	}
	return nil
}

// TriggerGeneration fires regeneration in the background and returns
// immediately. Callers must not wait for the result; they proceed with
// stale-trend reads while the new snapshot lands. Failures are only logged.
func (s *Service) TriggerGeneration() {
	go func() {
		if err := s.Generate(context.Background()); err != nil {
			log.Warnw("background trend generation failed", "error", err.Error())
			return
		}
		log.Info("trend snapshot regenerated")
	}()
}

func buildTrendPrompt(countries []string) string {
	var sb strings.Builder
	sb.WriteString("Countries: ")
	sb.WriteString(strings.Join(countries, ", "))
	sb.WriteString("\n\nRespond with a JSON object mapping each country name to an array of objects shaped as " +
		`{"trend_name": "<name>", "description": "<one sentence>"}.`)
	return sb.String()
}

// parseTrends extracts the JSON object from a possibly fence-wrapped
// response and decodes the country map.
func parseTrends(raw string) (map[string][]types.Trend, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var trends map[string][]types.Trend
	if err := json.Unmarshal([]byte(clean), &trends); err != nil {
		return nil, fmt.Errorf("failed to parse trend response: %w", err)
	}
	if len(trends) == 0 {
		return nil, fmt.Errorf("trend response contained no countries")
	}
	return trends, nil
}
