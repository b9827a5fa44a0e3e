// Package index owns the composite index: the primary path → record map,
// the directory and extension set maps, and the path trie, kept
// consistent under a single-writer/many-readers discipline.
package index

import "time"

// TicksPerSecond is the 100-nanosecond tick rate the MFT wire format uses;
// every timestamp in a Record, regardless of which enumerator produced it,
// is expressed in this unit so the two enumerators stay comparable.
const TicksPerSecond = 10_000_000

// TicksFromTime converts t to ticks, truncated to whole seconds so
// re-indexing an unchanged file never produces a spurious Modified event
// purely from sub-second precision differences between enumeration passes.
func TicksFromTime(t time.Time) int64 {
	return t.Unix() * TicksPerSecond
}

// TimeFromTicks is the inverse of TicksFromTime, used when a query's date
// bounds (wall-clock time.Time) need comparing against record ticks.
func TimeFromTicks(ticks int64) time.Time {
	return time.Unix(ticks/TicksPerSecond, 0).UTC()
}

// Attribute bits recorded on a FileRecord. Mirrors the subset of NTFS/POSIX
// attributes the engine cares about for predicate filtering.
type Attribute uint32

const (
	AttrDirectory Attribute = 1 << iota
	AttrHidden
	AttrSystem
	AttrReadOnly
)

// Record is the compact, string-pool-backed representation of one
// filesystem entry. No strings are stored inline; name/directory/extension
// are StringPool ids resolved on demand by the owning engine.
type Record struct {
	NameID        uint32
	DirectoryID   uint32
	ExtensionID   uint32
	Size          int64
	CreatedTicks  int64
	ModifiedTicks int64
	AccessedTicks int64
	Attributes    Attribute
	VolumeTag     byte
	FileRef       uint64
}

// IsDirectory reports whether the record's attributes mark it as a directory.
func (r Record) IsDirectory() bool { return r.Attributes&AttrDirectory != 0 }

// IsHidden reports whether the record's attributes mark it as hidden.
func (r Record) IsHidden() bool { return r.Attributes&AttrHidden != 0 }

// IsSystem reports whether the record's attributes mark it as a system entry.
func (r Record) IsSystem() bool { return r.Attributes&AttrSystem != 0 }
