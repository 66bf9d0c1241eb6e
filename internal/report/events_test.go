package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return events
}

func TestEventLoggerWritesJSONL(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatal(err)
	}

	logger.LogScan("ab12cd34ef", "album/one.flac", "flac")
	logger.LogSkip("ab12cd34ef", "album/two.flac")
	logger.LogConvert("a.flac", "a.opus", "opus", 128, 1500*time.Millisecond, nil)
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	events := readEvents(t, logger.Path())
	if len(events) != 3 {
		t.Fatalf("wrote %d events, want 3", len(events))
	}

	scan := events[0]
	if scan.Event != EventScan || scan.RootID != "ab12cd34ef" || scan.Codec != "flac" {
		t.Errorf("scan event = %+v", scan)
	}
	if scan.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}

	conv := events[2]
	if conv.Event != EventConvert || conv.Bitrate != 128 || conv.Duration != 1500 {
		t.Errorf("convert event = %+v", conv)
	}
}

func TestEventLoggerLevelFilter(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatal(err)
	}

	logger.LogSkip("ab12cd34ef", "quiet.flac") // debug, filtered
	logger.LogScan("ab12cd34ef", "loud.flac", "flac")
	logger.LogError(EventScan, "bad.flac", errors.New("unreadable"))
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("wrote %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.Event == EventSkip {
			t.Error("debug event leaked through the info filter")
		}
	}
}

func TestEventLoggerErrorsCarryMessage(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatal(err)
	}

	logger.LogCopy("src.mp3", "dst.mp3", errors.New("disk full"))
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 1 {
		t.Fatal("copy failure not logged")
	}
	if events[0].Level != LevelError || events[0].Error != "disk full" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestNullLoggerIsSafe(t *testing.T) {
	logger := NullLogger()

	logger.LogScan("ab12cd34ef", "a.flac", "flac")
	logger.LogRemove("gone.mp3")
	if err := logger.Log(&Event{Level: LevelError, Event: EventError}); err != nil {
		t.Errorf("null logger returned %v", err)
	}
	if logger.Path() != "" {
		t.Errorf("null logger has path %q", logger.Path())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}

	var nilLogger *EventLogger
	nilLogger.LogScan("ab12cd34ef", "a.flac", "flac")
	if err := nilLogger.Close(); err != nil {
		t.Errorf("nil logger Close = %v", err)
	}
}
