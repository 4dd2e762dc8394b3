package store

import (
	"slices"

	"github.com/harrisonrobin/workbench/pkg/model"
)

// BulkUpsertTasks inserts or replaces tasks in one transition. A task whose
// id is already on the board replaces it in place; new ids are appended in
// the given order.
func (s *Store) BulkUpsertTasks(tasks []model.Task) {
	s.Set(func(st *State) {
		pos := make(map[string]int, len(st.Tasks))
		for i, t := range st.Tasks {
			pos[t.ID] = i
		}
		for _, t := range tasks {
			t = t.Clone()
			if i, ok := pos[t.ID]; ok {
				st.Tasks[i] = t
				continue
			}
			pos[t.ID] = len(st.Tasks)
			st.Tasks = append(st.Tasks, t)
		}
	})
}

// MoveTask sets the column of the task with the given id.
func (s *Store) MoveTask(id string, col model.Column) error {
	if !col.Valid() {
		return model.ErrInvalidColumn
	}
	found := false
	s.Update(func(st *State) bool {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i].Col = col
				found = true
				break
			}
		}
		return found
	})
	if !found {
		return ErrTaskNotFound
	}
	return nil
}

// RemoveTask deletes the task with the given id.
func (s *Store) RemoveTask(id string) error {
	found := false
	s.Update(func(st *State) bool {
		for i, t := range st.Tasks {
			if t.ID == id {
				st.Tasks = slices.Delete(st.Tasks, i, i+1)
				found = true
				break
			}
		}
		return found
	})
	if !found {
		return ErrTaskNotFound
	}
	return nil
}

// Bucket is a named group of tasks.
type Bucket struct {
	Name  string
	Tasks []model.Task
}

// TasksByBucket groups the board by bucket. Buckets appear in the order their
// first task was added.
func (s *Store) TasksByBucket() []Bucket {
	snap := s.Snapshot()
	var buckets []Bucket
	index := make(map[string]int)
	for _, t := range snap.Tasks {
		i, ok := index[t.Bucket]
		if !ok {
			i = len(buckets)
			index[t.Bucket] = i
			buckets = append(buckets, Bucket{Name: t.Bucket})
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	return buckets
}
