package ingest

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodePayloads reads a stream of concatenated JSON values, e.g. one agent
// message per line. Each value is returned as decoded by encoding/json.
func DecodePayloads(r io.Reader) ([]any, error) {
	var payloads []any
	decoder := json.NewDecoder(r)
	for {
		var v any
		if err := decoder.Decode(&v); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode agent payload: %w", err)
		}
		payloads = append(payloads, v)
	}
	return payloads, nil
}
