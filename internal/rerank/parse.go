package rerank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var (
	errNoPayload      = errors.New("no JSON payload in response")
	errInvalidPayload = errors.New("response payload is not valid JSON")
	errMissingIDs     = errors.New(`response has no "rankedIds" array`)
)

// ExtractPayload strips code fences and returns the first balanced {...} or
// [...] span that is valid JSON. Bracketed prose before the payload is skipped.
func ExtractPayload(text string) (string, error) {
	s := trimFences(text)

	found := false
	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		found = true
		end := balancedEnd(s, start)
		if end < 0 {
			continue
		}
		if span := s[start : end+1]; gjson.Valid(span) {
			return span, nil
		}
	}
	if found {
		return "", errInvalidPayload
	}
	return "", errNoPayload
}

// balancedEnd returns the index of the bracket closing the one at start,
// ignoring brackets inside JSON strings, or -1 when it is never closed.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type ranking struct {
	RankedIDs []string `json:"rankedIds"`
}

// ParseRanking reads the id order out of a model response. It accepts
// {"rankedIds": [...]} or a bare array of ids; every element must be a string.
func ParseRanking(text string) ([]string, error) {
	payload, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}
	if payload[0] == '[' {
		var ids []string
		if err := json.Unmarshal([]byte(payload), &ids); err != nil {
			return nil, fmt.Errorf("decode id list: %w", err)
		}
		return ids, nil
	}

	if !gjson.Get(payload, "rankedIds").IsArray() {
		return nil, errMissingIDs
	}
	var r ranking
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}
	return r.RankedIDs, nil
}

func trimFences(s string) string {
	for _, fence := range []string{"```json", "```JSON", "```"} {
		s = strings.ReplaceAll(s, fence, "")
	}
	return strings.TrimSpace(s)
}
