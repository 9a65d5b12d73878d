package assessor

import (
	"fmt"
	"strings"
)

// extractJSON returns the span between the first open byte and the last
// close byte of raw. Model replies often wrap the JSON payload in prose or
// markdown fences; the span scan tolerates that. The result still has to
// survive a strict decode into the typed target; this function only finds
// the candidate substring.
func extractJSON(raw string, open, close byte) ([]byte, error) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no %c...%c span in response", open, close)
	}
	return []byte(raw[start : end+1]), nil
}

// extractObject finds the outermost {...} span.
func extractObject(raw string) ([]byte, error) {
	return extractJSON(raw, '{', '}')
}

// extractArray finds the outermost [...] span.
func extractArray(raw string) ([]byte, error) {
	return extractJSON(raw, '[', ']')
}
