package debug

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalOutput := output
	originalEnv, hadEnv := os.LookupEnv("DEBUG")
	return func() {
		EnableDebug = originalDebug
		output = originalOutput
		if hadEnv {
			os.Setenv("DEBUG", originalEnv)
		} else {
			os.Unsetenv("DEBUG")
		}
	}
}

func TestEnabledViaBuildFlag(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "false"
	os.Unsetenv("DEBUG")
	assert.False(t, Enabled())

	EnableDebug = "true"
	assert.True(t, Enabled())
}

func TestEnabledViaEnvironmentVariable(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "false"
	os.Setenv("DEBUG", "1")
	assert.True(t, Enabled())

	os.Setenv("DEBUG", "true")
	assert.True(t, Enabled())

	os.Setenv("DEBUG", "nope")
	assert.False(t, Enabled())
}

func TestLogWritesTaggedLine(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)
	EnableDebug = "true"

	Log("TEST", "hello %s", "world")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:TEST]")
	assert.Contains(t, out, "hello world")
}

func TestLogNoopWhenDisabled(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)
	EnableDebug = "false"
	os.Unsetenv("DEBUG")

	Log("TEST", "should not appear")
	assert.Empty(t, buf.String())
}

func TestLogNoopWithoutOutput(t *testing.T) {
	defer saveAndRestoreState()()

	SetOutput(nil)
	EnableDebug = "true"

	assert.NotPanics(t, func() {
		LogIndexing("scanning %s", "/tmp")
	})
}

func TestComponentHelpersTagCorrectly(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)
	EnableDebug = "true"

	LogIndexing("a")
	LogSearch("b")
	LogWatch("c")
	LogMFT("d")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:INDEX]")
	assert.Contains(t, out, "[DEBUG:SEARCH]")
	assert.Contains(t, out, "[DEBUG:WATCH]")
	assert.Contains(t, out, "[DEBUG:MFT]")
}

func TestConcurrentLogging(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)
	EnableDebug = "true"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			LogSearch("message from goroutine %d", id)
		}(i)
	}
	wg.Wait()

	assert.NotEmpty(t, buf.String())
}
