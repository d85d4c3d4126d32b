package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kharazdev/joke-factory/internal/generation"
	"github.com/kharazdev/joke-factory/internal/trend"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// JobStatus describes a tracked job's lifecycle.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	// JobAborted means an early return: empty roster, missing snapshot,
	// failed assignment, or zero generated jokes. Aborted runs publish no
	// event and must be re-triggered from scratch.
	JobAborted  JobStatus = "aborted"
	JobCanceled JobStatus = "canceled"
)

// Job is a tracked pipeline run.
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     JobStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	JokeCount  int        `json:"joke_count"`

	cancel context.CancelFunc
}

// CharacterSource loads job rosters.
type CharacterSource interface {
	ListActive(ctx context.Context) ([]types.Character, error)
	ListActiveByCategory(ctx context.Context, categoryID int) ([]types.Character, error)
	ListTop(ctx context.Context, limit int) ([]types.Character, error)
}

// TrendSource reads cached snapshots and kicks off regeneration.
type TrendSource interface {
	LatestCached(ctx context.Context) (*types.TrendSnapshot, error)
	TriggerGeneration()
}

// TopicAssigner resolves trend topics for a roster.
type TopicAssigner interface {
	AssignTopics(ctx context.Context, characters []types.Character, snapshot *types.TrendSnapshot) []types.TopicAssignment
}

// JokeGenerator produces drafts in the three pipeline modes.
type JokeGenerator interface {
	GenerateAssigned(ctx context.Context, plan []types.PlanEntry) []types.JokeDraft
	GenerateSelfSelect(ctx context.Context, characters []types.Character) []types.JokeDraft
	GenerateHighVolume(ctx context.Context, character types.Character, count int) []types.JokeDraft
}

// JokeSaver persists a generated joke.
type JokeSaver interface {
	SaveNewJoke(ctx context.Context, characterID int, characterName, content string) error
}

// Gate guards the trend-regeneration cooldown.
type Gate interface {
	CanMakeCall(ctx context.Context, action string, intervalDays int) bool
}

// Config carries the pipeline knobs.
type Config struct {
	TrendIntervalDays int
	HighVolumeCount   int
	TopCharacterLimit int
}

// Orchestrator runs the three job variants. Each job is a strict sequence
// with no parallelism inside it; the only concurrency is the fire-and-forget
// goroutine a job runs in, tracked in a registry the HTTP layer can query
// and cancel.
type Orchestrator struct {
	characters CharacterSource
	trends     TrendSource
	assigner   TopicAssigner
	generator  JokeGenerator
	saver      JokeSaver
	gate       Gate
	bus        *EventBus
	cfg        Config

	mu   sync.Mutex
	jobs map[string]*Job
}

func New(characters CharacterSource, trends TrendSource, assigner TopicAssigner, generator JokeGenerator, saver JokeSaver, gate Gate, bus *EventBus, cfg Config) *Orchestrator {
	if cfg.TrendIntervalDays <= 0 {
		cfg.TrendIntervalDays = 7
	}
	if cfg.HighVolumeCount <= 0 {
		cfg.HighVolumeCount = 100
	}
	if cfg.TopCharacterLimit <= 0 {
		cfg.TopCharacterLimit = 5
	}
	return &Orchestrator{
		characters: characters,
		trends:     trends,
		assigner:   assigner,
		generator:  generator,
		saver:      saver,
		gate:       gate,
		bus:        bus,
		cfg:        cfg,
		jobs:       make(map[string]*Job),
	}
}

// StartDailyJob launches the daily-cached variant and returns its job id.
func (o *Orchestrator) StartDailyJob() string {
	return o.start("daily", o.runDaily)
}

// StartCategoryJob launches the smart-category variant for one category.
func (o *Orchestrator) StartCategoryJob(categoryID int) string {
	return o.start("category", func(ctx context.Context) ([]types.JobResult, bool) {
		return o.runCategory(ctx, categoryID)
	})
}

// StartTopCharactersJob launches the high-volume variant over the top roster.
func (o *Orchestrator) StartTopCharactersJob() string {
	return o.start("top", o.runTop)
}

// JobStatus returns a snapshot of a tracked job.
func (o *Orchestrator) JobStatus(id string) (Job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Cancel stops a running job. Returns false for unknown ids.
func (o *Orchestrator) Cancel(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[id]
	if !ok {
		return false
	}
	if job.Status == JobRunning && job.cancel != nil {
		job.cancel()
	}
	return true
}

func (o *Orchestrator) start(kind string, run func(ctx context.Context) ([]types.JobResult, bool)) string {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    JobRunning,
		StartedAt: time.Now(),
		cancel:    cancel,
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.mu.Unlock()

	go func() {
		defer cancel()
		results, completed := run(ctx)
		o.finish(job.ID, ctx, results, completed)
	}()

	log.Infow("job started", "job_id", job.ID, "kind", kind)
	return job.ID
}

func (o *Orchestrator) finish(jobID string, ctx context.Context, results []types.JobResult, completed bool) {
	status := JobAborted
	switch {
	case ctx.Err() != nil:
		status = JobCanceled
	case completed:
		status = JobCompleted
	}

	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if ok {
		now := time.Now()
		job.Status = status
		job.FinishedAt = &now
		job.JokeCount = len(results)
	}
	o.mu.Unlock()

	log.Infow("job finished", "job_id", jobID, "status", string(status), "jokes", len(results))

	if status == JobCompleted {
		o.bus.Publish(Event{JobID: jobID, Results: results})
	}
}

// runDaily: gate-check trends, fire-and-forget regeneration, then assign
// topics from the cached snapshot and generate one joke per plan entry.
func (o *Orchestrator) runDaily(ctx context.Context) ([]types.JobResult, bool) {
	if o.gate.CanMakeCall(ctx, trend.ActionTrendGeneration, o.cfg.TrendIntervalDays) {
		o.trends.TriggerGeneration()
	}

	roster, err := o.characters.ListActive(ctx)
	if err != nil {
		log.Error("failed to load roster", err)
		return nil, false
	}
	if len(roster) == 0 {
		log.Info("daily job aborted: empty roster")
		return nil, false
	}

	snapshot, err := o.trends.LatestCached(ctx)
	if err != nil {
		log.Error("failed to load trend snapshot", err)
		return nil, false
	}
	if snapshot == nil {
		log.Info("daily job aborted: no cached trend snapshot yet")
		return nil, false
	}

	assignments := o.assigner.AssignTopics(ctx, roster, snapshot)
	if len(assignments) == 0 {
		log.Info("daily job aborted: topic assignment failed")
		return nil, false
	}

	plan := generation.ResolvePlan(roster, snapshot, assignments)
	drafts := o.generator.GenerateAssigned(ctx, plan)
	if len(drafts) == 0 {
		log.Info("daily job aborted: generation returned no jokes")
		return nil, false
	}

	return o.persist(ctx, roster, plan, drafts), true
}

// runCategory: category roster, topics picked inline by the model, so the
// assignment step is skipped entirely.
func (o *Orchestrator) runCategory(ctx context.Context, categoryID int) ([]types.JobResult, bool) {
	roster, err := o.characters.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		log.Error("failed to load category roster", err)
		return nil, false
	}
	if len(roster) == 0 {
		log.Infow("category job aborted: empty roster", "category_id", categoryID)
		return nil, false
	}

	drafts := o.generator.GenerateSelfSelect(ctx, roster)
	if len(drafts) == 0 {
		log.Info("category job aborted: generation returned no jokes")
		return nil, false
	}

	return o.persist(ctx, roster, nil, drafts), true
}

// runTop: one high-volume call per top character, sequential.
func (o *Orchestrator) runTop(ctx context.Context) ([]types.JobResult, bool) {
	roster, err := o.characters.ListTop(ctx, o.cfg.TopCharacterLimit)
	if err != nil {
		log.Error("failed to load top roster", err)
		return nil, false
	}
	if len(roster) == 0 {
		log.Info("top job aborted: empty roster")
		return nil, false
	}

	var results []types.JobResult
	for _, character := range roster {
		if ctx.Err() != nil {
			return results, false
		}
		drafts := o.generator.GenerateHighVolume(ctx, character, o.cfg.HighVolumeCount)
		results = append(results, o.persist(ctx, roster, nil, drafts)...)
	}
	if len(results) == 0 {
		log.Info("top job aborted: generation returned no jokes")
		return nil, false
	}
	return results, true
}

// persist writes each draft whose characterId matches the loaded roster.
// Drafts with unknown ids are dropped silently; save failures yield fewer
// jokes in the result set rather than failing the job.
func (o *Orchestrator) persist(ctx context.Context, roster []types.Character, plan []types.PlanEntry, drafts []types.JokeDraft) []types.JobResult {
	byID := make(map[int]types.Character, len(roster))
	for _, character := range roster {
		byID[character.ID] = character
	}
	topicByID := make(map[int]string, len(plan))
	for _, entry := range plan {
		topicByID[entry.Character.ID] = entry.Topic.Name
	}

	results := make([]types.JobResult, 0, len(drafts))
	for _, draft := range drafts {
		character, ok := byID[draft.CharacterID]
		if !ok {
			continue
		}
		if err := o.saver.SaveNewJoke(ctx, character.ID, character.Name, draft.Content); err != nil {
			log.Warnw("failed to persist joke", "character_id", character.ID, "error", err.Error())
			continue
		}
		topic := draft.SelectedTopic
		if topic == "" {
			topic = topicByID[character.ID]
		}
		results = append(results, types.JobResult{
			CharacterID:   character.ID,
			CharacterName: character.Name,
			Topic:         topic,
			Content:       draft.Content,
		})
	}
	return results
}
