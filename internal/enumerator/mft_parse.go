package enumerator

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/brightloom/filescan/internal/index"
)

// rawMFTRecord is one parsed MFT row before parent references are resolved
// to full directory paths.
type rawMFTRecord struct {
	FileRef       uint64
	ParentRef     uint64
	Attributes    uint32
	CreatedTicks  int64
	ModifiedTicks int64
	AccessedTicks int64
	Size          int64
	Name          string
}

func (r rawMFTRecord) isTombstone() bool {
	return r.Attributes&mftTombstoneAttr != 0
}

// parseMFTBuffer decodes every fixed-header record packed into buf. A
// record whose declared length is zero or would read past the end of buf
// terminates parsing cleanly — the caller's batch ends, the enumeration
// session does not.
func parseMFTBuffer(buf []byte) []rawMFTRecord {
	var records []rawMFTRecord
	offset := 0

	for offset+4 <= len(buf) {
		recLen := int(binary.LittleEndian.Uint32(buf[offset:]))
		if recLen <= 0 || offset+recLen > len(buf) {
			break
		}

		rec, ok := parseOneMFTRecord(buf[offset : offset+recLen])
		if ok && !rec.isTombstone() {
			records = append(records, rec)
		}
		offset += recLen
	}

	return records
}

func parseOneMFTRecord(rec []byte) (rawMFTRecord, bool) {
	if len(rec) < mftRecordHeaderSize {
		return rawMFTRecord{}, false
	}

	fileRef := binary.LittleEndian.Uint64(rec[8:16])
	parentRef := binary.LittleEndian.Uint64(rec[16:24])
	attrs := binary.LittleEndian.Uint32(rec[24:28])
	created := int64(binary.LittleEndian.Uint64(rec[28:36]))
	modified := int64(binary.LittleEndian.Uint64(rec[36:44]))
	accessed := int64(binary.LittleEndian.Uint64(rec[44:52]))
	size := int64(binary.LittleEndian.Uint64(rec[52:60]))
	nameOffset := binary.LittleEndian.Uint16(rec[60:62])
	nameLen := binary.LittleEndian.Uint16(rec[62:64])

	nameEnd := int(nameOffset) + int(nameLen)
	if nameEnd > len(rec) || nameEnd < int(nameOffset) {
		return rawMFTRecord{}, false
	}

	name := decodeUTF16Name(rec[nameOffset:nameEnd])

	return rawMFTRecord{
		FileRef:       fileRef,
		ParentRef:     parentRef,
		Attributes:    attrs,
		CreatedTicks:  created,
		ModifiedTicks: modified,
		AccessedTicks: accessed,
		Size:          size,
		Name:          name,
	}, true
}

// decodeUTF16Name decodes a little-endian UTF-16 byte span, replacing any
// unpaired surrogate with the Unicode replacement character rather than
// failing the record.
func decodeUTF16Name(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	runes := utf16.Decode(units)

	out := make([]rune, len(runes))
	for i, r := range runes {
		if r == utf8.RuneError {
			out[i] = '�'
			continue
		}
		out[i] = r
	}
	return string(out)
}

// resolveMFTPaths walks the parent-reference map built from a full MFT
// pass and produces a full path for every record, directories included
// (they carry AttrDirectory). A record whose parent is itself, zero, or
// absent from the map is treated as a root: its own name becomes the first
// path segment, and it is emitted as a row like any other record.
func resolveMFTPaths(records []rawMFTRecord, volumeTag byte) []Entry {
	byRef := make(map[uint64]rawMFTRecord, len(records))
	for _, r := range records {
		byRef[r.FileRef] = r
	}

	pathCache := make(map[uint64]string, len(records))
	var resolve func(ref uint64) string
	resolve = func(ref uint64) string {
		if p, ok := pathCache[ref]; ok {
			return p
		}
		rec, ok := byRef[ref]
		if !ok {
			return ""
		}

		var full string
		if rec.ParentRef == ref || rec.ParentRef == 0 {
			full = rec.Name
		} else {
			parent := resolve(rec.ParentRef)
			if parent == "" {
				full = rec.Name
			} else {
				full = parent + "/" + rec.Name
			}
		}
		pathCache[ref] = full
		return full
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		full := resolve(r.FileRef)
		if full == "" {
			continue
		}

		attrs := index.Attribute(0)
		if r.Attributes&0x10000000 != 0 {
			attrs |= index.AttrDirectory
		}
		entries = append(entries, Entry{
			FullPath:      string(volumeTag) + ":/" + full,
			Size:          r.Size,
			CreatedTicks:  r.CreatedTicks,
			ModifiedTicks: r.ModifiedTicks,
			AccessedTicks: r.AccessedTicks,
			Attributes:    attrs,
			VolumeTag:     volumeTag,
			FileRef:       r.FileRef,
		})
	}
	return entries
}
