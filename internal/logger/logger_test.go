package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("embedded %d chunks", 3) }, "[DEBUG] embedded 3 chunks\n"},
		{"info", func() { Info("index built") }, "[INFO] index built\n"},
		{"warn", func() { Warn("reindex failed: %v", "timeout") }, "[WARN] reindex failed: timeout\n"},
		{"section", func() { Section("Ingestion") }, "\n=== Ingestion ===\n"},
		{"timing", func() { Timing("search", 1500*time.Microsecond) }, "[INFO] search took 1.5ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSilentWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)
	defer SetOutput(os.Stderr)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Zero(t, buf.Len())
}

func TestConcurrentAccess(t *testing.T) {
	buf := capture(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Debug("worker %d", i)
			IsVerbose()
		}(i)
	}
	wg.Wait()

	assert.NotZero(t, buf.Len())
}
