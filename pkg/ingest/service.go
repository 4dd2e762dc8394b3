package ingest

import (
	"go.uber.org/zap"

	"github.com/harrisonrobin/workbench/pkg/markdown"
	"github.com/harrisonrobin/workbench/pkg/model"
)

// DefaultAgentBucket is the bucket of agent tasks that name none.
const DefaultAgentBucket = "Orchestrator"

// BulkUpserter stores a batch of canonical tasks as one transition.
type BulkUpserter interface {
	BulkUpsertTasks(tasks []model.Task)
}

type Options struct {
	DefaultBucket string
}

// Service normalizes task-like input and hands it to the store in batches.
type Service struct {
	store      BulkUpserter
	normalizer model.Normalizer
	logger     *zap.Logger
}

type Option func(*Service)

// WithNormalizer replaces the wall-clock normalizer, mostly for tests.
func WithNormalizer(n model.Normalizer) Option {
	return func(s *Service) { s.normalizer = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store BulkUpserter, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	s := &Service{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpsertTasksFromAgent normalizes tasks with opts.DefaultBucket (or
// "Orchestrator") as the base bucket and stores them in a single batch.
// It returns the task ids in input order.
func (s *Service) UpsertTasksFromAgent(tasks []model.TaskInput, opts Options) []string {
	bucket := opts.DefaultBucket
	if bucket == "" {
		bucket = DefaultAgentBucket
	}
	batch := make([]model.Task, 0, len(tasks))
	for _, in := range tasks {
		batch = append(batch, s.normalizer.Normalize(in.WithDefaultBucket(bucket)))
	}
	return s.commit(batch)
}

// UpsertPayload accepts one decoded JSON value: a single object or an array
// of them. Anything else counts as an empty record.
func (s *Service) UpsertPayload(raw any, opts Options) []string {
	var inputs []model.TaskInput
	switch v := raw.(type) {
	case []any:
		inputs = make([]model.TaskInput, 0, len(v))
		for _, item := range v {
			inputs = append(inputs, decodeRecord(item))
		}
	default:
		inputs = []model.TaskInput{decodeRecord(v)}
	}
	return s.UpsertTasksFromAgent(inputs, opts)
}

func decodeRecord(v any) model.TaskInput {
	m, _ := v.(map[string]any)
	return model.DecodeTaskInput(m)
}

// ImportMarkdown extracts tasks from Markdown text and stores them as one
// batch. opts.DefaultBucket is the bucket before the first heading.
func (s *Service) ImportMarkdown(text string, opts Options) []string {
	return s.ImportDrafts(markdown.Extract(text, markdown.Options{DefaultBucket: opts.DefaultBucket}))
}

// ImportDrafts normalizes extracted drafts and stores them as one batch.
func (s *Service) ImportDrafts(drafts []markdown.DraftTask) []string {
	batch := make([]model.Task, 0, len(drafts))
	for _, d := range drafts {
		batch = append(batch, s.normalizer.Normalize(d.Input()))
	}
	return s.commit(batch)
}

func (s *Service) commit(batch []model.Task) []string {
	ids := make([]string, len(batch))
	for i, t := range batch {
		ids[i] = t.ID
	}
	if len(batch) == 0 {
		return ids
	}
	s.store.BulkUpsertTasks(batch)
	s.logger.Debug("upserted tasks", zap.Int("count", len(batch)))
	return ids
}
