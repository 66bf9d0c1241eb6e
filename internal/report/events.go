package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventScan    EventType = "scan"    // song indexed or re-indexed
	EventSkip    EventType = "skip"    // unchanged song, fast path
	EventCover   EventType = "cover"   // cover art resolved
	EventRemove  EventType = "remove"  // destination file removed
	EventCopy    EventType = "copy"    // plain want materialized
	EventConvert EventType = "convert" // conversion want materialized
	EventError   EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is a single machine-readable record of one per-item outcome
type Event struct {
	Timestamp time.Time  `json:"ts"`
	Level     EventLevel `json:"level"`
	Event     EventType  `json:"event"`
	RootID    string     `json:"root_id,omitempty"`
	SrcPath   string     `json:"src_path,omitempty"`
	DestPath  string     `json:"dest_path,omitempty"`
	Codec     string     `json:"codec,omitempty"`
	Bitrate   int        `json:"bitrate_kbps,omitempty"`
	Cover     string     `json:"cover,omitempty"`
	Duration  int64      `json:"duration_ms,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates an event logger writing to a timestamped file in
// outputDir. minLevel filters which events are written.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("events-%s.jsonl", time.Now().Format("20060102-150405"))
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// NullLogger returns a logger that discards everything
func NullLogger() *EventLogger {
	return &EventLogger{}
}

// Path returns the log file path, or "" for a null logger
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// LogScan records an indexed song
func (l *EventLogger) LogScan(rootID, srcPath, codec string) {
	l.Log(&Event{Level: LevelInfo, Event: EventScan, RootID: rootID, SrcPath: srcPath, Codec: codec})
}

// LogSkip records an unchanged song that took the fast path
func (l *EventLogger) LogSkip(rootID, srcPath string) {
	l.Log(&Event{Level: LevelDebug, Event: EventSkip, RootID: rootID, SrcPath: srcPath})
}

// LogCover records a resolved cover image
func (l *EventLogger) LogCover(rootID, srcPath, coverPath string) {
	l.Log(&Event{Level: LevelDebug, Event: EventCover, RootID: rootID, SrcPath: srcPath, Cover: coverPath})
}

// LogRemove records a destination file removal
func (l *EventLogger) LogRemove(destPath string) {
	l.Log(&Event{Level: LevelInfo, Event: EventRemove, DestPath: destPath})
}

// LogCopy records a plain copy, successful or not
func (l *EventLogger) LogCopy(srcPath, destPath string, err error) {
	e := &Event{Level: LevelInfo, Event: EventCopy, SrcPath: srcPath, DestPath: destPath}
	if err != nil {
		e.Level = LevelError
		e.Error = err.Error()
	}
	l.Log(e)
}

// LogConvert records a conversion, successful or not
func (l *EventLogger) LogConvert(srcPath, destPath, codec string, bitrate int, took time.Duration, err error) {
	e := &Event{
		Level:    LevelInfo,
		Event:    EventConvert,
		SrcPath:  srcPath,
		DestPath: destPath,
		Codec:    codec,
		Bitrate:  bitrate,
		Duration: took.Milliseconds(),
	}
	if err != nil {
		e.Level = LevelError
		e.Error = err.Error()
	}
	l.Log(e)
}

// LogError records a per-item error that did not abort the run
func (l *EventLogger) LogError(event EventType, srcPath string, err error) {
	l.Log(&Event{Level: LevelError, Event: event, SrcPath: srcPath, Error: err.Error()})
}
