package model

import (
	"encoding/json"
	"math"
)

// DecodeTaskInput coerces a loosely typed record, typically decoded agent
// JSON, into a TaskInput. Fields of the wrong type are dropped so that
// normalization falls back to their defaults. A nil map yields an empty input.
func DecodeTaskInput(raw map[string]any) TaskInput {
	var in TaskInput
	in.ID = stringField(raw, "id")
	in.Title = stringField(raw, "title")
	in.Desc = stringField(raw, "desc")
	in.Assignee = stringField(raw, "assignee")
	in.Bucket = stringField(raw, "bucket")
	if p := stringField(raw, "priority"); p != nil {
		in.Priority = *p
	}
	if c := stringField(raw, "col"); c != nil {
		in.Col = *c
	}

	if tags, ok := raw["tags"].([]any); ok {
		in.Tags = make([]string, 0, len(tags))
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				in.Tags = append(in.Tags, s)
			}
		}
	} else if tags, ok := raw["tags"].([]string); ok {
		in.Tags = append([]string{}, tags...)
	}

	if ms, ok := millis(raw["createdAt"]); ok {
		in.CreatedAt = &ms
	}
	return in
}

func stringField(raw map[string]any, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func millis(v any) (int64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
