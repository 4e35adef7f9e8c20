package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxLogSizeMB is used when the configured size is not positive
	DefaultMaxLogSizeMB = 10
	// DefaultMaxLogFiles is used when the configured rotation count is not positive
	DefaultMaxLogFiles = 5
)

// StopRecord describes why a connection ended
type StopRecord struct {
	Time      time.Time
	Kind      string
	SessionID string
	Reason    string
	Err       error
}

func (r StopRecord) format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s\n", r.Time.Format("2006-01-02 15:04:05"), r.Kind, strings.TrimSpace(r.Reason))
	if r.SessionID != "" {
		fmt.Fprintf(&b, "  session: %s\n", r.SessionID)
	}
	if r.Err != nil {
		fmt.Fprintf(&b, "  error: %v\n", r.Err)
	}
	return b.String()
}

// StopLog appends stop records to a file, keeping at most maxFiles
// rotated copies (path.1 is the newest) once it grows past maxSize.
type StopLog struct {
	path     string
	mu       sync.Mutex
	maxSize  int64
	maxFiles int
	now      func() time.Time
}

// NewStopLog creates a log at path. The directory is created on demand.
func NewStopLog(path string, maxSizeMB, maxFiles int) *StopLog {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxLogSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxLogFiles
	}
	return &StopLog{
		path:     path,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
		now:      time.Now,
	}
}

// Record appends r, stamping it with the current time if unset
func (l *StopLog) Record(r StopRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.Time.IsZero() {
		r.Time = l.now()
	}
	if r.Kind == "" {
		r.Kind = "stopped"
	}

	if err := l.rotateIfNeeded(); err != nil {
		return fmt.Errorf("rotate %s: %w", l.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	_, err = f.WriteString(r.format())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

func (l *StopLog) rotateIfNeeded() error {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() < l.maxSize {
		return nil
	}

	// path.N falls off the end, everything else moves up one
	for i := l.maxFiles; i >= 1; i-- {
		from := l.rotated(i - 1)
		if err := os.Rename(from, l.rotated(i)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// rotated returns the name of the n-th rotated file, or the live file for 0
func (l *StopLog) rotated(n int) string {
	if n == 0 {
		return l.path
	}
	return fmt.Sprintf("%s.%d", l.path, n)
}
