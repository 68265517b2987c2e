package pantrypilot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// GenerationLogger records every recipe generator attempt.
type GenerationLogger interface {
	LogAttempt(attempt GenerationAttemptLog) error
}

// NewGenerationLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify logs produced with various models.
func NewGenerationLogFilePath(model string) string {
	if model == "" {
		model = "default"
	}
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(model)),
	)
}

// GenerationAttemptLog is one call to the recipe generator.
type GenerationAttemptLog struct {
	Token      string        `json:"token,omitempty"`
	Attempt    int           `json:"attempt"`
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration_ns"`
	Requested  int           `json:"requested"`
	Returned   int           `json:"returned"`
	Accepted   []string      `json:"accepted,omitempty"`
	Rejected   []string      `json:"rejected,omitempty"`
	Duplicates int           `json:"duplicates,omitempty"`
	Reused     []string      `json:"reused,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// FileGenerationLogger accumulates attempts and writes them on Flush.
// It is safe for concurrent use.
type FileGenerationLogger struct {
	mu       sync.Mutex
	attempts []GenerationAttemptLog
	writer   io.Writer
}

func NewFileGenerationLogger(writer io.Writer) *FileGenerationLogger {
	return &FileGenerationLogger{
		attempts: make([]GenerationAttemptLog, 0),
		writer:   writer,
	}
}

// LogAttempt buffers an attempt (does not flush immediately)
func (l *FileGenerationLogger) LogAttempt(attempt GenerationAttemptLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Flush writes all buffered attempts to the writer as one indented JSON document.
func (l *FileGenerationLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_log": map[string]any{
			"timestamp": time.Now(),
			"attempts":  l.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal generation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}

	l.attempts = l.attempts[:0]
	return nil
}

type NoOpGenerationLogger struct{}

func NewNoOpGenerationLogger() *NoOpGenerationLogger {
	return &NoOpGenerationLogger{}
}

func (nop *NoOpGenerationLogger) LogAttempt(attempt GenerationAttemptLog) error {
	return nil
}

// StdoutGenerationLogger writes each attempt as a JSON line (for Lambda/CloudWatch).
type StdoutGenerationLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdoutGenerationLogger() *StdoutGenerationLogger {
	return &StdoutGenerationLogger{out: os.Stdout}
}

func (l *StdoutGenerationLogger) LogAttempt(attempt GenerationAttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
