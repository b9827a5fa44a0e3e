package filescan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/brightloom/filescan/internal/enumerator"
	"github.com/brightloom/filescan/internal/index"
	"github.com/brightloom/filescan/pkg/pathutil"
)

// statEntry re-stats a single path for the Created/Modified observer
// events, which carry only a path, not a full directory listing.
func statEntry(path string) (enumerator.Entry, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return enumerator.Entry{}, false
	}

	full := pathutil.Normalize(path)
	attrs := index.Attribute(0)
	if info.IsDir() {
		attrs |= index.AttrDirectory
	}
	if strings.HasPrefix(filepath.Base(full), ".") {
		attrs |= index.AttrHidden
	}

	return enumerator.Entry{
		FullPath:      full,
		Size:          info.Size(),
		CreatedTicks:  index.TicksFromTime(info.ModTime()),
		ModifiedTicks: index.TicksFromTime(info.ModTime()),
		AccessedTicks: index.TicksFromTime(info.ModTime()),
		Attributes:    attrs,
	}, true
}
