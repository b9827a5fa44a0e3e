// Package enumerator ingests filesystem metadata into the engine: a
// portable Standard walker usable on any platform, and a privileged NTFS
// MFT fast path available only under GOOS=windows.
package enumerator

import "github.com/brightloom/filescan/internal/index"

// Entry is one enumerated filesystem item, not yet interned into the
// string pool or composite index.
type Entry struct {
	FullPath      string
	Size          int64
	CreatedTicks  int64
	ModifiedTicks int64
	AccessedTicks int64
	Attributes    index.Attribute
	VolumeTag     byte
	FileRef       uint64
}

// IsDirectory reports whether the entry is a directory.
func (e Entry) IsDirectory() bool { return e.Attributes&index.AttrDirectory != 0 }
