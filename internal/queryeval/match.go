package queryeval

import (
	"fmt"
	"time"

	"github.com/brightloom/filescan/internal/index"
	"github.com/brightloom/filescan/pkg/pathutil"
)

// Match is the public view of one matched FileRecord: human-facing fields
// derived on demand rather than stored.
type Match struct {
	FullPath      string
	Name          string
	DirectoryPath string
	Extension     string
	Size          int64
	CreatedTime   time.Time
	ModifiedTime  time.Time
	AccessedTime  time.Time
	Attributes    index.Attribute
	VolumeTag     byte
	FileRef       uint64
	IsDirectory   bool
	IsHidden      bool
	IsSystem      bool
}

// FormattedSize renders Size using the conventional binary-prefix units
// (KiB/MiB/GiB).
func (m Match) FormattedSize() string {
	const unit = 1024.0
	size := float64(m.Size)
	if size < unit {
		return fmt.Sprintf("%d B", m.Size)
	}
	div, exp := unit, 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	return fmt.Sprintf("%.1f %s", size/div, units[exp])
}

func toMatch(fullPath string, rec index.Record) Match {
	dir, name := pathutil.SplitDirName(fullPath)
	return Match{
		FullPath:      fullPath,
		Name:          name,
		DirectoryPath: dir,
		Extension:     pathutil.Extension(name),
		Size:          rec.Size,
		CreatedTime:   index.TimeFromTicks(rec.CreatedTicks),
		ModifiedTime:  index.TimeFromTicks(rec.ModifiedTicks),
		AccessedTime:  index.TimeFromTicks(rec.AccessedTicks),
		Attributes:    rec.Attributes,
		VolumeTag:     rec.VolumeTag,
		FileRef:       rec.FileRef,
		IsDirectory:   rec.IsDirectory(),
		IsHidden:      rec.IsHidden(),
		IsSystem:      rec.IsSystem(),
	}
}
