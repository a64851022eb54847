package util

import (
	"time"
)

func ParseTime(val string) (time.Time, error) {
	return time.Parse(time.RFC3339, val)
}

// ParseOptionalTime returns nil for an empty string.
func ParseOptionalTime(val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := ParseTime(val)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
