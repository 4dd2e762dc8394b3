package model

import (
	"slices"
	"strings"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMed      Priority = "med"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "crit"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Column is the workflow status of a task on the board.
type Column string

const (
	ColumnTodo  Column = "todo"
	ColumnDoing Column = "doing"
	ColumnDone  Column = "done"
)

// Valid reports whether c is one of the board columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnDoing, ColumnDone:
		return true
	}
	return false
}

// ParseColumn returns the column named by s or ErrInvalidColumn.
func ParseColumn(s string) (Column, error) {
	c := Column(s)
	if !c.Valid() {
		return "", ErrInvalidColumn
	}
	return c, nil
}

const (
	DefaultTitle    = "Untitled"
	DefaultAssignee = "Unassigned"
	DefaultBucket   = "General"
)

// Task is one actionable item on the shared board.
// A Task produced by Normalize always has every field set and well-typed.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Desc      string   `json:"desc"`
	Priority  Priority `json:"priority"`
	Assignee  string   `json:"assignee"`
	Col       Column   `json:"col"`
	Bucket    string   `json:"bucket"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"` // ms since epoch
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// Input converts t back into a fully populated TaskInput.
func (t Task) Input() TaskInput {
	id, title, desc, assignee, bucket := t.ID, t.Title, t.Desc, t.Assignee, t.Bucket
	createdAt := t.CreatedAt
	return TaskInput{
		ID:        &id,
		Title:     &title,
		Desc:      &desc,
		Priority:  string(t.Priority),
		Assignee:  &assignee,
		Col:       string(t.Col),
		Bucket:    &bucket,
		Tags:      slices.Clone(t.Tags),
		CreatedAt: &createdAt,
	}
}

// TaskInput is a partial, unvalidated task record. Nil pointers and empty
// enum strings mean "not supplied".
type TaskInput struct {
	ID        *string
	Title     *string
	Desc      *string
	Priority  string
	Assignee  *string
	Col       string
	Bucket    *string
	Tags      []string
	CreatedAt *int64
}

// WithDefaultBucket returns a copy of in whose bucket is bucket unless the
// input already names a non-blank one.
func (in TaskInput) WithDefaultBucket(bucket string) TaskInput {
	if in.Bucket == nil || strings.TrimSpace(*in.Bucket) == "" {
		in.Bucket = &bucket
	}
	return in
}
