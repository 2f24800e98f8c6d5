package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"info","ts":"2026-03-01T10:04:05.123Z","logger":"persist","msg":"saved","bytes":42,"key":"persist:root"}`

	e := Parse(line)
	if e.Raw != "" {
		t.Fatalf("Raw = %q, want empty", e.Raw)
	}
	want := time.Date(2026, 3, 1, 10, 4, 5, 123e6, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if e.Level != "info" || e.Logger != "persist" || e.Message != "saved" {
		t.Fatalf("unexpected entry %+v", e)
	}
	fields := []Field{{Key: "bytes", Value: "42"}, {Key: "key", Value: "persist:root"}}
	if !reflect.DeepEqual(e.Fields, fields) {
		t.Fatalf("Fields = %v, want %v", e.Fields, fields)
	}
}

func TestParseNonJSON(t *testing.T) {
	tests := []string{
		"panic: boom",
		`{"level":`,
		`["not","an","object"]`,
	}
	for _, line := range tests {
		e := Parse(line)
		if e.Raw != line {
			t.Errorf("Parse(%q).Raw = %q", line, e.Raw)
		}
	}
}

func TestFormat(t *testing.T) {
	e := Entry{
		Level:   "warn",
		Logger:  "catalog",
		Message: "fetch failed",
		Fields:  []Field{{Key: "error", Value: "timeout"}},
	}
	if got, want := e.Format(), "WARN [catalog] fetch failed error=timeout"; got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
	if got := (Entry{Raw: "plain"}).Format(); got != "plain" {
		t.Fatalf("Format() = %q, want plain", got)
	}
}

func TestTailSkipsBlankLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shelf.log")
	body := `{"level":"info","msg":"one"}` + "\n\n" + `{"level":"error","msg":"two"}` + "\n"
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := Tail(logPath, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "one" || entries[1].Level != "error" {
		t.Fatalf("Tail() = %+v", entries)
	}
}
