package google

import (
	"fmt"
	"strings"

	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/workbench/pkg/model"
)

const (
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// ConvertTask builds the Google task that mirrors t.
func ConvertTask(t model.Task) *tasks.Task {
	status := statusNeedsAction
	if t.Col == model.ColumnDone {
		status = statusCompleted
	}
	return &tasks.Task{
		Title:  t.Title,
		Notes:  taskNotes(t),
		Status: status,
	}
}

func taskNotes(t model.Task) string {
	var b strings.Builder
	if t.Desc != "" {
		b.WriteString(t.Desc)
		b.WriteString("\n\n")
	}
	if len(t.Tags) > 0 {
		for i, tag := range t.Tags {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "#%s", tag)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "Assignee: %s\n", t.Assignee)
	fmt.Fprintf(&b, "Column: %s\n", t.Col)
	fmt.Fprintf(&b, "ID: %s\n", t.ID)
	return b.String()
}

// TaskNeedsUpdate returns a patch carrying the fields of target that differ
// from existing, or nil when they match.
func TaskNeedsUpdate(existing, target *tasks.Task) *tasks.Task {
	patch := &tasks.Task{}
	needsUpdate := false

	if existing.Title != target.Title {
		patch.Title = target.Title
		needsUpdate = true
	}
	if existing.Notes != target.Notes {
		patch.Notes = target.Notes
		patch.ForceSendFields = append(patch.ForceSendFields, "Notes")
		needsUpdate = true
	}
	if existing.Status != target.Status {
		patch.Status = target.Status
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

// TaskIDFromNotes recovers the board id written into a mirrored task's notes.
func TaskIDFromNotes(notes string) (string, bool) {
	for _, line := range strings.Split(notes, "\n") {
		if id, ok := strings.CutPrefix(line, "ID: "); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
