// Package extract recovers structured data from model-generated answers.
//
// Remote step answers frequently ignore formatting instructions: the JSON
// may arrive bare, wrapped in markdown fences, buried in surrounding prose,
// or subtly malformed. Extraction applies an ordered list of strategies,
// each strictly more permissive than the previous, and stops at the first
// one that yields a parseable payload. Failure to extract is not an error;
// it produces an empty payload the caller records as "no data".
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// strategies are evaluated in order of increasing permissiveness; the first
// candidate that parses wins. Ordering matters: a permissive strategy run
// early would extract the wrong substring from answers the stricter ones
// handle exactly.
var strategies = []func(string) (string, bool){
	directCandidate,
	fencedCandidate,
	boundaryCandidate,
}

// Payload attempts to recover a JSON object or array from a raw step answer.
// The boolean reports whether any strategy succeeded; on failure the payload
// is empty, never nil. Extraction is pure and idempotent: the same answer
// always yields the same payload.
func Payload(answer string) (map[string]any, bool) {
	for _, strategy := range strategies {
		candidate, ok := strategy(answer)
		if !ok {
			continue
		}
		if payload, ok := parseCandidate(candidate); ok {
			return payload, true
		}
	}
	return map[string]any{}, false
}

// JSONText returns the best JSON candidate substring of text, or the trimmed
// text itself when no strategy finds anything better. Callers that need the
// raw JSON (rather than a decoded payload) use this.
func JSONText(text string) string {
	for _, strategy := range strategies {
		candidate, ok := strategy(text)
		if !ok {
			continue
		}
		if _, ok := parseCandidate(candidate); ok {
			return candidate
		}
	}
	return strings.TrimSpace(text)
}

// parseCandidate decodes a candidate string into a payload. Strict JSON is
// tried first; if that fails, a jsonrepair pass fixes the common model
// mistakes (trailing commas, single quotes, unquoted keys) before one more
// strict attempt. Top-level arrays are wrapped under an "items" key so every
// successful extraction is a map.
func parseCandidate(candidate string) (map[string]any, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	if payload, ok := decode(candidate); ok {
		return payload, true
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	return decode(repaired)
}

func decode(candidate string) (map[string]any, bool) {
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, false
	}
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case []any:
		return map[string]any{"items": v}, true
	}
	// Scalars parse as valid JSON but carry no structure worth extracting.
	return nil, false
}

// directCandidate proposes the whole trimmed answer.
func directCandidate(answer string) (string, bool) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// fencedCandidate proposes the interior of the first fenced code block,
// preferring a json-tagged fence over an untagged one.
func fencedCandidate(answer string) (string, bool) {
	if body, ok := fenceBody(answer, "```json"); ok {
		return body, true
	}
	return fenceBody(answer, "```")
}

// fenceBody finds the first fence opened by marker and returns its interior.
func fenceBody(answer, marker string) (string, bool) {
	start := strings.Index(answer, marker)
	if start < 0 {
		return "", false
	}
	rest := answer[start+len(marker):]
	// Skip the remainder of the opening fence line (e.g. a language tag).
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		if marker == "```" && strings.TrimSpace(rest[:nl]) != "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// boundaryCandidate proposes the substring between the first opening brace
// or bracket (whichever appears first) and the last matching closer. This is
// the most permissive strategy and runs last.
func boundaryCandidate(answer string) (string, bool) {
	objStart := strings.IndexByte(answer, '{')
	arrStart := strings.IndexByte(answer, '[')

	start, closer := objStart, byte('}')
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closer = arrStart, ']'
	}
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(answer, closer)
	if end <= start {
		return "", false
	}
	return answer[start : end+1], true
}
