package guidelines

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is a list of free-form labels that unmarshals from either a JSON array
// of strings or a single comma-delimited string.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*t = ParseTags(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or an array of strings")
	}

	*t = normalizeTags(list)
	return nil
}

// ParseTags splits a comma-delimited string into trimmed, non-empty tags.
func ParseTags(raw string) []string {
	return normalizeTags(strings.Split(raw, ","))
}

// normalizeTags trims each tag and drops empty entries, preserving order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
