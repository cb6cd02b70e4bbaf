package parsers

import (
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the timestamp spellings seen across tool logs:
// RFC3339 with or without fractional seconds, a bare datetime, or a unix
// epoch in seconds or milliseconds.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return FromEpoch(n), true
	}

	return time.Time{}, false
}

// FromEpoch converts a unix epoch to time.Time, treating values above
// 1e12 as milliseconds.
func FromEpoch(n int64) time.Time {
	if n > 1_000_000_000_000 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

// ParseFloat returns nil for empty or unparseable input rather than an
// error, matching how optional numeric fields are treated everywhere in
// this module.
func ParseFloat(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// NonNegative clamps token counts; sources occasionally report -1 for
// "unknown".
func NonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
