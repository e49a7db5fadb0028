package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// parsePayload turns raw provider output into a validated JSON object. It
// strips code fences, narrows to the outermost {...} span, and attempts one
// repair pass on malformed JSON before giving up. A non-nil error means the
// payload is unusable and the caller must fall back to the heuristic scorer.
func parsePayload(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("parse provider response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("parse repaired provider response: %w", err)
		}
	}

	if err := responseSchema.Validate(any(data)); err != nil {
		return nil, fmt.Errorf("provider response shape: %w", err)
	}

	return data, nil
}

// extractJSON strips markdown code fences and returns the outermost {...}
// span of the remaining text.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
