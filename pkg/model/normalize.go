package model

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalizer turns partial task records into canonical Tasks. The zero value
// is ready to use: it reads the wall clock and generates random UUIDs.
type Normalizer struct {
	// Now is the clock used for missing creation times.
	Now func() time.Time
	// NewID generates ids for records that carry none.
	NewID func() string
	// DefaultBucket replaces a missing bucket. Empty means "General".
	DefaultBucket string
}

var defaultNormalizer Normalizer

// NormalizeTask normalizes in with the wall clock and random ids.
func NormalizeTask(in TaskInput) Task {
	return defaultNormalizer.Normalize(in)
}

// Normalize validates every field of in independently and substitutes the
// documented default for anything missing or out of domain. It never fails.
func (n Normalizer) Normalize(in TaskInput) Task {
	t := Task{
		Title:    orDefault(in.Title, DefaultTitle),
		Desc:     orDefault(in.Desc, ""),
		Assignee: orDefault(in.Assignee, DefaultAssignee),
		Bucket:   orDefault(in.Bucket, n.defaultBucket()),
		Priority: PriorityMed,
		Col:      ColumnTodo,
		Tags:     []string{},
	}

	if in.ID != nil && *in.ID != "" {
		t.ID = *in.ID
	} else {
		t.ID = n.newID()
	}
	if p := Priority(in.Priority); p.Valid() {
		t.Priority = p
	}
	if c := Column(in.Col); c.Valid() {
		t.Col = c
	}
	if in.Tags != nil {
		t.Tags = append(t.Tags, in.Tags...)
	}
	if in.CreatedAt != nil {
		t.CreatedAt = *in.CreatedAt
	} else {
		t.CreatedAt = n.now().UnixMilli()
	}
	return t
}

func (n Normalizer) defaultBucket() string {
	if b := strings.TrimSpace(n.DefaultBucket); b != "" {
		return b
	}
	return DefaultBucket
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n Normalizer) newID() string {
	if n.NewID != nil {
		return n.NewID()
	}
	id, err := uuid.NewRandom()
	if err != nil {
		// crypto/rand unavailable
		return fallbackID(n.now())
	}
	return id.String()
}

// fallbackID builds a "<unix-ms>-<base36 suffix>" identifier.
func fallbackID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(rand.Uint64(), 36)
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return def
}
