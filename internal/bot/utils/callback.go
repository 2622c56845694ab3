package utils

import (
	"strconv"
	"strings"
)

// ParseID extracts the numeric id following prefix in callback data.
func ParseID(data, prefix string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok || raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}

	return id, true
}

// WithID builds callback data from a prefix and an id.
func WithID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
