package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// dataURLPreview is how many characters of a data: URL survive redaction.
const dataURLPreview = 32

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// redactor redacts sensitive values in log key-value pairs.
type redactor struct {
	sensitiveWords map[string]bool
}

// newRedactor creates a new redactor with the default sensitive key pattern.
func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "auth", "credential"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks through a slice of key-value pairs (flattened as [key1, value1, key2, value2, ...]).
// Values under sensitive keys become "[REDACTED]"; embedded data: URLs are
// shortened so imported audio does not end up base64-encoded in the log.
// Returns a new slice; the original slice is not modified.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = "[REDACTED]"
			continue
		}
		if s, ok := result[i+1].(string); ok {
			result[i+1] = shortenDataURL(s)
		}
	}
	return result
}

// isSensitive returns true if the key contains any sensitive word as a separate segment.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range nonAlphanumeric.Split(strings.ToLower(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}

func shortenDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") || len(s) <= dataURLPreview {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:dataURLPreview], len(s))
}
