package enumerator

import "errors"

// errMFTUnsupported is returned by the non-Windows stub; it should never
// surface to a caller that checked MFTEligible first.
var errMFTUnsupported = errors.New("enumerator: MFT fast path unavailable on this platform")

// mftRecordHeaderSize is the fixed portion of the wire layout read before
// the variable-length file-name span: record length (u32) at offset 0,
// file reference (u64) at offset 8, parent file reference (u64) at offset
// 16, attributes (u32), three timestamps (i64 each), size (i64), then the
// packed file-name offset/length (u16 each) — 64 bytes total.
const mftRecordHeaderSize = 64

const mftTombstoneAttr = 0x1 // low bit of the on-disk flags: deletion-marked
