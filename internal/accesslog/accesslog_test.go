package accesslog

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmittedLineShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Admitted("127.0.0.1", "POST", "/anthropic/v1/messages", "claude-3-5-sonnet", 200, 123*time.Millisecond)

	line := buf.String()
	assert.Contains(t, line, "127.0.0.1")
	assert.Contains(t, line, "POST")
	assert.Contains(t, line, "/anthropic/v1/messages")
	assert.Contains(t, line, "model=claude-3-5-sonnet")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "123ms")
}

func TestAdmittedLineModelFallback(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Admitted("127.0.0.1", "GET", "/agentauth/health", "-", 200, 0)
	assert.Contains(t, buf.String(), "model=-")
}

func TestDeniedLineShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Denied("8.8.8.8", "GET", "/agentauth/health")

	line := buf.String()
	assert.True(t, strings.Contains(line, "DENIED"))
	assert.Contains(t, line, "8.8.8.8")
	assert.Contains(t, line, "GET")
	assert.Contains(t, line, "/agentauth/health")
}

func TestErrorLineShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Error("127.0.0.1", "POST", "/mistral/v1/chat/completions", "no credential for provider mistral")

	line := buf.String()
	assert.Contains(t, line, "ERROR")
	assert.Contains(t, line, "—")
	assert.Contains(t, line, "no credential for provider mistral")
}

func TestLoggerNeverRendersCredential(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	const secret = "sk-ant-TEST-DO-NOT-LOG"
	l.Admitted("127.0.0.1", "POST", "/anthropic/v1/messages", "claude", 200, time.Millisecond)
	l.Error("127.0.0.1", "POST", "/anthropic/v1/messages", "no credential for provider anthropic")
	l.Denied("8.8.8.8", "GET", "/agentauth/health")

	assert.NotContains(t, buf.String(), secret)
}

func TestLoggerConcurrentWritesAreSerialized(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Admitted("127.0.0.1", "POST", "/openai/v1/chat/completions", "gpt-4o", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
}
