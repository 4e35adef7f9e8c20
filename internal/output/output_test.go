package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type recordingLogger struct {
	NopLogger
	errors []string
}

func (r *recordingLogger) Error(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestLogStopReasonUsesGivenLogger(t *testing.T) {
	logger := &recordingLogger{}
	path := filepath.Join(t.TempDir(), "logs", "stop.log")
	out := NewOutput(logger, path, 0, 0)

	out.LogStopReason("abc-123", "Connection timed out.", errors.New("i/o timeout"))

	if len(logger.errors) != 1 || logger.errors[0] != "Connection abc-123 stopped: Connection timed out. - i/o timeout" {
		t.Errorf("terminal output = %q", logger.errors)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stop log: %v", err)
	}
	for _, want := range []string{"connection-broken: Connection timed out.", "session: abc-123", "error: i/o timeout"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("stop log missing %q:\n%s", want, data)
		}
	}
}

func TestLogStopReasonWithoutFile(t *testing.T) {
	logger := &recordingLogger{}
	out := NewOutput(logger, "", 0, 0)
	out.LogStopReason("s", "Handle is not allowed on this server.", nil)

	if out.StopLog != nil {
		t.Error("empty path should disable the stop log")
	}
	if len(logger.errors) != 1 || logger.errors[0] != "Connection s stopped: Handle is not allowed on this server." {
		t.Errorf("terminal output = %q", logger.errors)
	}
}

func TestStopLogRecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.log")
	l := NewStopLog(path, 1, 2)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	if err := l.Record(StopRecord{Reason: "  server closed the connection \n"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	data, _ := os.ReadFile(path)
	if want := "[2026-01-02 03:04:05] stopped: server closed the connection\n"; string(data) != want {
		t.Errorf("log = %q, want %q", data, want)
	}
}

func TestStopLogRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.log")
	l := NewStopLog(path, 1, 2)
	l.maxSize = 1

	for i := 1; i <= 4; i++ {
		if err := l.Record(StopRecord{Reason: fmt.Sprintf("stop %d", i)}); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	want := map[string]string{
		path:        "stop 4",
		path + ".1": "stop 3",
		path + ".2": "stop 2",
	}
	for name, reason := range want {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), reason) {
			t.Errorf("%s = %q, want %q", filepath.Base(name), data, reason)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("kept more than two rotated files")
	}
}
