package tips

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedArray = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	looseArray  = regexp.MustCompile(`(?s)\[.*?\]`)
)

// parseTipArray extracts a JSON string array from model output, tolerating
// markdown code fences and surrounding prose.
func parseTipArray(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	if m := fencedArray.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	} else if m := looseArray.FindString(raw); m != "" {
		raw = m
	}

	var tips []string
	if err := json.Unmarshal([]byte(raw), &tips); err != nil {
		return nil, fmt.Errorf("response is not a JSON string array: %w", err)
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("empty tip array")
	}
	return tips, nil
}
