package shared

import "time"

// ParseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates. Empty input
// is the zero time, which callers treat as "not provided".
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}
