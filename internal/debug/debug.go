// Package debug provides the engine's diagnostic logging facade: a
// package-level enable flag plus an optional io.Writer target, so the
// embedding process controls whether diagnostic output appears at all.
// Per-path enumeration errors and MFT volume read failures log here at
// debug level only; they never propagate to the caller.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be overridden at build time:
// go build -ldflags "-X github.com/brightloom/filescan/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	outputMu sync.RWMutex
	output   io.Writer
)

// SetOutput sets the writer debug output is sent to. Pass nil to disable
// debug output entirely (the default).
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// Enabled reports whether debug logging is currently active: the build
// flag is set, or the DEBUG environment variable is "1"/"true".
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output
}

// Log writes a component-tagged debug line. A no-op unless Enabled() and
// an output writer has been configured via SetOutput.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIndexing logs a debug line tagged for the enumerator/index.
func LogIndexing(format string, args ...interface{}) { Log("INDEX", format, args...) }

// LogSearch logs a debug line tagged for the query evaluator.
func LogSearch(format string, args ...interface{}) { Log("SEARCH", format, args...) }

// LogWatch logs a debug line tagged for the change observer.
func LogWatch(format string, args ...interface{}) { Log("WATCH", format, args...) }

// LogMFT logs a debug line tagged for the NTFS MFT fast path.
func LogMFT(format string, args ...interface{}) { Log("MFT", format, args...) }
