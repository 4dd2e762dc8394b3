package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/workbench/pkg/index"
	"github.com/harrisonrobin/workbench/pkg/model"
)

// Mirror publishes the board to Google Tasks, one task list per bucket.
type Mirror struct {
	srv        *tasks.Service
	index      *index.MirrorIndex
	listPrefix string
	logger     *zap.Logger
}

// Result counts what a Sync did.
type Result struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

func NewMirror(srv *tasks.Service, idx *index.MirrorIndex, listPrefix string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{srv: srv, index: idx, listPrefix: listPrefix, logger: logger}
}

// Sync mirrors every task. A failing task is logged and counted and the
// rest are still attempted; the joined errors are returned.
func (m *Mirror) Sync(ctx context.Context, board []model.Task) (Result, error) {
	var res Result
	var errs []error
	remote := make(remoteTasks)
	for _, t := range board {
		outcome, err := m.syncTask(ctx, t, remote)
		if err != nil {
			m.logger.Warn("failed to mirror task", zap.String("task", t.ID), zap.Error(err))
			res.Failed++
			errs = append(errs, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		switch outcome {
		case created:
			res.Created++
		case updated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	return res, errors.Join(errs...)
}

type outcome int

const (
	unchanged outcome = iota
	created
	updated
)

func (m *Mirror) syncTask(ctx context.Context, t model.Task, remote remoteTasks) (outcome, error) {
	listID, err := m.ensureList(ctx, t.Bucket)
	if err != nil {
		return unchanged, err
	}
	target := ConvertTask(t)

	ref, ok := m.index.Get(t.ID)
	if ok && ref.ListID != listID {
		// bucket changed: the task moves to another list
		if err := m.srv.Tasks.Delete(ref.ListID, ref.TaskID).Context(ctx).Do(); err != nil && !isGone(err) {
			return unchanged, fmt.Errorf("error deleting task from previous list: %w", err)
		}
		m.index.Remove(t.ID)
		ok = false
	}

	var existing *tasks.Task
	if ok {
		existing, err = m.srv.Tasks.Get(ref.ListID, ref.TaskID).Context(ctx).Do()
		if err != nil {
			if !isGone(err) {
				return unchanged, fmt.Errorf("error fetching task: %w", err)
			}
			m.logger.Debug("mirrored task gone, recreating", zap.String("task", t.ID))
			m.index.Remove(t.ID)
			existing = nil
		}
	} else {
		// not indexed: it may still be mirrored from an earlier run
		existing, err = remote.find(ctx, m.srv, listID, t.ID)
		if err != nil {
			return unchanged, err
		}
		if existing != nil {
			m.index.Set(t.ID, index.Ref{ListID: listID, TaskID: existing.Id})
		}
	}

	if existing != nil {
		patch := TaskNeedsUpdate(existing, target)
		if patch == nil {
			return unchanged, nil
		}
		if _, err := m.srv.Tasks.Patch(listID, existing.Id, patch).Context(ctx).Do(); err != nil {
			return unchanged, fmt.Errorf("error patching task: %w", err)
		}
		return updated, nil
	}

	inserted, err := m.srv.Tasks.Insert(listID, target).Context(ctx).Do()
	if err != nil {
		return unchanged, fmt.Errorf("error inserting task: %w", err)
	}
	m.index.Set(t.ID, index.Ref{ListID: listID, TaskID: inserted.Id})
	return created, nil
}

// remoteTasks caches, per task list, the mirrored tasks keyed by the board id
// in their notes. Each list is fetched at most once per Sync.
type remoteTasks map[string]map[string]*tasks.Task

func (r remoteTasks) find(ctx context.Context, srv *tasks.Service, listID, taskID string) (*tasks.Task, error) {
	byID, ok := r[listID]
	if !ok {
		byID = make(map[string]*tasks.Task)
		err := srv.Tasks.List(listID).ShowCompleted(true).ShowHidden(true).MaxResults(100).
			Pages(ctx, func(page *tasks.Tasks) error {
				for _, item := range page.Items {
					if id, ok := TaskIDFromNotes(item.Notes); ok {
						byID[id] = item
					}
				}
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("unable to list tasks of %s: %w", listID, err)
		}
		r[listID] = byID
	}
	return byID[taskID], nil
}

// isGone reports whether err means the remote object no longer exists.
func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

func (m *Mirror) ensureList(ctx context.Context, bucket string) (string, error) {
	if id := m.index.List(bucket); id != "" {
		return id, nil
	}
	title := m.listPrefix + bucket

	var found string
	err := m.srv.Tasklists.List().MaxResults(100).Pages(ctx, func(page *tasks.TaskLists) error {
		for _, l := range page.Items {
			if l.Title == title {
				found = l.Id
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return "", fmt.Errorf("unable to retrieve task lists: %w", err)
	}

	if found == "" {
		list, err := m.srv.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to create task list %q: %w", title, err)
		}
		found = list.Id
	}
	m.index.SetList(bucket, found)
	return found, nil
}

var errStopPaging = errors.New("stop paging")
