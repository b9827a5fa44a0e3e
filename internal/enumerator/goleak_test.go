package enumerator

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures no worker goroutines leak past a completed or
// cancelled Standard enumeration.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
