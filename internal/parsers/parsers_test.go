package parsers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testEntry struct {
	Type   string `json:"type"`
	Tokens int    `json:"tokens"`
}

func TestDecodeJSONLinesSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"type":"assistant","tokens":10}
not json at all
{"type":"user","tokens":5}

{"type":"assistant","tokens":7}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := DecodeJSONLines[testEntry](path)
	if err != nil {
		t.Fatalf("DecodeJSONLines() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (malformed line skipped)", len(entries))
	}

	total := 0
	for _, e := range entries {
		total += e.Tokens
	}
	if total != 22 {
		t.Errorf("token sum = %d, want 22", total)
	}
}

func TestForEachJSONLineMissingFile(t *testing.T) {
	err := ForEachJSONLine(filepath.Join(t.TempDir(), "absent.jsonl"), func([]byte) {
		t.Fatal("handler should not run")
	})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2026-01-15T10:30:00Z", time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2026-01-15T10:30:00.500Z", time.Date(2026, 1, 15, 10, 30, 0, 500_000_000, time.UTC), true},
		{"2026-01-15 10:30:00", time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"1768473000", time.Unix(1768473000, 0), true},
		{"1768473000000", time.UnixMilli(1768473000000), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseFloat(t *testing.T) {
	if v := ParseFloat(" 3.5 "); v == nil || *v != 3.5 {
		t.Errorf("ParseFloat(\" 3.5 \") = %v, want 3.5", v)
	}
	if v := ParseFloat("oops"); v != nil {
		t.Errorf("ParseFloat(\"oops\") = %v, want nil", v)
	}
}

func TestNonNegative(t *testing.T) {
	if NonNegative(-1) != 0 || NonNegative(42) != 42 {
		t.Error("NonNegative clamp broken")
	}
}
