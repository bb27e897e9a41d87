package actionlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/events"
	"github.com/browsion/browsion-core/internal/redact"
)

// Broadcaster receives one Event per completed operation; the HTTP
// service's WebSocket hub implements it. Kept as a narrow function type
// rather than an interface so Log has no import-time dependency on the
// hub's concrete type.
type Broadcaster func(*events.Event)

// Log is the C9 ring buffer plus day-sharded JSONL writer. One Log is
// shared by every HTTP/MCP operation in the service.
type Log struct {
	mu       sync.Mutex
	ring     []Entry
	capacity int
	head     int // index of the oldest entry once the ring has wrapped
	size     int

	dir      string
	redactor *redact.Redactor

	currentShard string
	file         *os.File
	writer       *bufio.Writer

	broadcast Broadcaster
}

// NewLog builds a Log writing day shards under dir, retaining capacity
// entries in memory. broadcast may be nil (no fan-out, e.g. in tests).
func NewLog(dir string, capacity int, redactor *redact.Redactor, broadcast Broadcaster) *Log {
	return &Log{
		ring:      make([]Entry, capacity),
		capacity:  capacity,
		dir:       dir,
		redactor:  redactor,
		broadcast: broadcast,
	}
}

// Append records e: evicts the oldest ring entry if full, appends one JSON
// line to the current UTC day's shard file (rolling over the file handle
// on day change), and broadcasts it.
func (l *Log) Append(e Entry) error {
	if l.redactor != nil && e.Error != "" {
		e.Error = l.redactor.RedactBody(e.Error)
	}

	l.mu.Lock()
	if l.size < l.capacity {
		l.ring[(l.head+l.size)%l.capacity] = e
		l.size++
	} else {
		l.ring[l.head] = e
		l.head = (l.head + 1) % l.capacity
	}
	err := l.writeShard(e)
	l.mu.Unlock()

	if l.broadcast != nil {
		l.broadcast(events.NewActionLogEvent(e))
	}
	return err
}

// writeShard appends e to the current day's file, rolling to a new file
// when the entry's day differs from the currently open shard. Must be
// called with l.mu held.
func (l *Log) writeShard(e Entry) error {
	day := shardDay(e.FinishedAt.Unix())
	if day != l.currentShard {
		if l.writer != nil {
			_ = l.writer.Flush()
		}
		if l.file != nil {
			_ = l.file.Close()
		}
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return browsionerr.New(browsionerr.KindIOError, "create action log dir %s: %v", l.dir, err)
		}
		path := filepath.Join(l.dir, day+".jsonl")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return browsionerr.New(browsionerr.KindIOError, "open action log shard %s: %v", path, err)
		}
		l.file = f
		l.writer = bufio.NewWriterSize(f, 8*1024)
		l.currentShard = day
	}

	data, err := json.Marshal(e)
	if err != nil {
		return browsionerr.New(browsionerr.KindIOError, "marshal action log entry: %v", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "write action log shard: %v", err)
	}
	return l.writer.Flush()
}

// ListByProfile returns up to limit of the most recent ring entries for
// profileID, newest first. limit <= 0 means unbounded.
func (l *Log) ListByProfile(profileID string, limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, l.size)
	for i := 0; i < l.size; i++ {
		idx := (l.head + l.size - 1 - i) % l.capacity // newest first
		e := l.ring[idx]
		if profileID == "" || e.ProfileID == profileID {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// ClearByProfile drops profileID's entries from the in-memory ring and
// returns how many were removed. The day-shard files are an append-only
// audit trail and are never rewritten.
func (l *Log) ClearByProfile(profileID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]Entry, 0, l.size)
	for i := 0; i < l.size; i++ {
		idx := (l.head + i) % l.capacity
		e := l.ring[idx]
		if profileID != "" && e.ProfileID == profileID {
			continue
		}
		kept = append(kept, e)
	}
	removed := l.size - len(kept)

	for i := range l.ring {
		l.ring[i] = Entry{}
	}
	for i, e := range kept {
		l.ring[i] = e
	}
	l.head = 0
	l.size = len(kept)
	return removed
}

// RedactionEnabled reports whether this Log's Redactor is scrubbing
// captured data, surfaced on GET /api/health.
func (l *Log) RedactionEnabled() bool {
	return l.redactor != nil && l.redactor.IsEnabled()
}

// Close flushes and closes the currently open shard file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		_ = l.writer.Flush()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Track times fn and appends an Entry describing its outcome; the HTTP
// middleware (C7) calls this once per request.
func Track(l *Log, profileID, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	l.Append(New(profileID, operation, start, time.Now(), err))
	return err
}
