package actionlog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/browsion/browsion-core/internal/events"
	"github.com/browsion/browsion-core/internal/redact"
)

func TestAppendEvictsOldestOnOverflow(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, 2, nil, nil)

	now := time.Now()
	_ = l.Append(New("p1", "navigate", now, now, nil))
	_ = l.Append(New("p1", "click", now, now, nil))
	_ = l.Append(New("p1", "reload", now, now, nil))

	got := l.ListByProfile("p1", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after overflow, got %d", len(got))
	}
	if got[0].Operation != "reload" || got[1].Operation != "click" {
		t.Errorf("expected newest-first [reload, click], got %+v", got)
	}
}

func TestAppendWritesDayShardFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, 10, nil, nil)

	now := time.Now().UTC()
	if err := l.Append(New("p1", "navigate", now, now, nil)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	l.Close()

	path := filepath.Join(dir, shardDay(now.Unix())+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected shard file at %s: %v", path, err)
	}
	var e Entry
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("unmarshal shard line: %v", err)
	}
	if e.Operation != "navigate" || e.ProfileID != "p1" {
		t.Errorf("unexpected shard entry: %+v", e)
	}
}

func TestListByProfileFiltersAndLimits(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, 10, nil, nil)
	now := time.Now()

	_ = l.Append(New("p1", "navigate", now, now, nil))
	_ = l.Append(New("p2", "click", now, now, nil))
	_ = l.Append(New("p1", "reload", now, now, nil))

	got := l.ListByProfile("p1", 1)
	if len(got) != 1 || got[0].Operation != "reload" {
		t.Errorf("expected the single newest p1 entry, got %+v", got)
	}
}

func TestClearByProfileRemovesOnlyMatching(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, 10, nil, nil)
	now := time.Now()

	_ = l.Append(New("p1", "navigate", now, now, nil))
	_ = l.Append(New("p2", "click", now, now, nil))

	removed := l.ClearByProfile("p1")
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if len(l.ListByProfile("p1", 0)) != 0 {
		t.Error("expected no p1 entries remaining")
	}
	if len(l.ListByProfile("p2", 0)) != 1 {
		t.Error("expected p2 entry to survive")
	}
}

func TestAppendRedactsJSONErrorMessages(t *testing.T) {
	dir := t.TempDir()
	r := redact.New(true)
	l := NewLog(dir, 10, r, nil)
	now := time.Now()

	err := errors.New(`{"password":"hunter2","url":"https://example.com"}`)
	_ = l.Append(New("p1", "login", now, now, err))

	got := l.ListByProfile("p1", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if strings.Contains(got[0].Error, "hunter2") {
		t.Errorf("expected password redacted, got %q", got[0].Error)
	}
}

func TestBroadcastFiresOnAppend(t *testing.T) {
	dir := t.TempDir()
	var got *events.Event
	l := NewLog(dir, 10, nil, func(e *events.Event) { got = e })

	now := time.Now()
	_ = l.Append(New("p1", "navigate", now, now, nil))

	if got == nil {
		t.Fatal("expected broadcast to fire on Append")
	}
	if got.Type != events.TypeActionLogEntry {
		t.Errorf("expected %s, got %s", events.TypeActionLogEntry, got.Type)
	}
}

func TestShardDayMatchesKnownDates(t *testing.T) {
	cases := []struct {
		unix int64
		want string
	}{
		{0, "1970-01-01"},
		{1577836800, "2020-01-01"}, // 2020-01-01T00:00:00Z
		{951782400, "2000-02-29"},  // leap day, 400-year-cycle edge
	}
	for _, c := range cases {
		if got := shardDay(c.unix); got != c.want {
			t.Errorf("shardDay(%d) = %q, want %q", c.unix, got, c.want)
		}
	}
}
