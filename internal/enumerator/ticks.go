package enumerator

import (
	"time"

	"github.com/brightloom/filescan/internal/index"
)

// ticksFromTime converts t to the index package's 100-nanosecond tick
// unit, truncated to whole seconds (the portable stat API's precision
// varies by platform and filesystem, so the Standard walker always drops
// the sub-second part). MFT records keep the raw ticks they carry.
func ticksFromTime(t time.Time) int64 {
	return index.TicksFromTime(t)
}
