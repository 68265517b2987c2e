package pantrypilot

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestFileGenerationLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileGenerationLogger(&buf)

	require.NoError(t, l.LogAttempt(GenerationAttemptLog{Attempt: 1, Requested: 2, Returned: 2, Accepted: []string{"a", "b"}}))
	require.NoError(t, l.LogAttempt(GenerationAttemptLog{Attempt: 2, Requested: 1, Error: "timeout"}))
	assert.Zero(t, buf.Len(), "nothing is written before Flush")

	require.NoError(t, l.Flush())

	var doc struct {
		GenerationLog struct {
			Attempts []GenerationAttemptLog `json:"attempts"`
		} `json:"generation_log"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.GenerationLog.Attempts, 2)
	assert.Equal(t, []string{"a", "b"}, doc.GenerationLog.Attempts[0].Accepted)
	assert.Equal(t, "timeout", doc.GenerationLog.Attempts[1].Error)

	t.Run("flush clears the buffer", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, l.Flush())
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Empty(t, doc.GenerationLog.Attempts)
	})

	t.Run("write errors are wrapped", func(t *testing.T) {
		bad := NewFileGenerationLogger(failingWriter{})
		require.NoError(t, bad.LogAttempt(GenerationAttemptLog{Attempt: 1}))
		err := bad.Flush()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("nil writer", func(t *testing.T) {
		assert.NoError(t, NewFileGenerationLogger(nil).Flush())
	})
}

func TestStdoutGenerationLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &StdoutGenerationLogger{out: &buf}

	require.NoError(t, l.LogAttempt(GenerationAttemptLog{Token: "tok", Attempt: 1, Duration: time.Second}))
	require.NoError(t, l.LogAttempt(GenerationAttemptLog{Token: "tok", Attempt: 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got GenerationAttemptLog
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, time.Second, got.Duration)
}

func TestNoOpGenerationLogger(t *testing.T) {
	assert.NoError(t, NewNoOpGenerationLogger().LogAttempt(GenerationAttemptLog{}))
}

func TestNewGenerationLogFilePath(t *testing.T) {
	got := NewGenerationLogFilePath("us.anthropic.claude:v1/foo")
	assert.True(t, strings.HasPrefix(got, "./logs/"))
	assert.True(t, strings.HasSuffix(got, ".us.anthropic.claude_v1_foo.json"))

	assert.True(t, strings.HasSuffix(NewGenerationLogFilePath(""), ".default.json"))
}
