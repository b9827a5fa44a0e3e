//go:build windows

package enumerator

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/brightloom/filescan/internal/config"
	"github.com/brightloom/filescan/internal/debug"
	"github.com/brightloom/filescan/internal/ferrors"
)

// fsctlEnumUSNData is FSCTL_ENUM_USN_DATA, the volume control code used to
// walk a live NTFS master file table sequentially by file reference number.
const fsctlEnumUSNData = 0x900b3

// mftAlignment matches the buffer-size rounding config.clampMFTBuffer
// already applies; the raw volume read still rounds defensively here in
// case a caller constructs IndexingOptions outside Load/ApplySmartDefaults.
const mftAlignment = 4096

// usnEnumDataV0 mirrors NTFS's MFT_ENUM_DATA_V0: the starting file
// reference to resume from, and the USN range to request (zero values
// request every live record from the start of the volume).
type usnEnumDataV0 struct {
	StartFileReferenceNumber uint64
	LowUsn                   int64
	HighUsn                  int64
}

// MFTEligible reports whether the caller has not disabled the fast path and
// this process can open a raw volume handle for at least one of
// opts.Locations. The volume's filesystem type is not checked.
func MFTEligible(opts config.IndexingOptions) bool {
	if !opts.PreferMFT {
		return false
	}
	for _, loc := range opts.Locations {
		if h, err := openVolumeHandle(loc); err == nil {
			windows.CloseHandle(h)
			return true
		}
	}
	return false
}

// MFT streams every live, non-tombstoned record on volume's NTFS master
// file table through the returned channel, resolved to full paths.
func MFT(volume string, opts config.IndexingOptions) (<-chan Entry, error) {
	handle, err := openVolumeHandle(volume)
	if err != nil {
		return nil, ferrors.NewIOFatalError("mft.open", err)
	}

	out := make(chan Entry, 256)
	go func() {
		defer windows.CloseHandle(handle)
		defer close(out)

		records, err := readAllMFTRecords(handle, bufferSize(opts))
		if err != nil {
			debug.LogMFT("volume %s: %v", volume, err)
			return
		}

		tag := volumeTagOf(volume)
		for _, e := range resolveMFTPaths(records, tag) {
			out <- e
		}
	}()

	return out, nil
}

func bufferSize(opts config.IndexingOptions) int {
	n := opts.MFTBufferBytes
	if n <= 0 {
		n = 1024 * 1024
	}
	return (n + mftAlignment - 1) / mftAlignment * mftAlignment
}

func openVolumeHandle(location string) (windows.Handle, error) {
	path := fmt.Sprintf(`\\.\%s`, volumeRootOf(location))
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	return windows.CreateFile(
		p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
}

func volumeRootOf(location string) string {
	if len(location) >= 2 && location[1] == ':' {
		return location[:2]
	}
	return "C:"
}

// readAllMFTRecords issues FSCTL_ENUM_USN_DATA repeatedly, resuming from
// the next file reference after each batch until the volume reports no
// further records, parsing each returned buffer as it arrives.
func readAllMFTRecords(handle windows.Handle, bufSize int) ([]rawMFTRecord, error) {
	var all []rawMFTRecord
	in := usnEnumDataV0{}
	buf := make([]byte, bufSize)

	for {
		var bytesReturned uint32
		err := windows.DeviceIoControl(
			handle,
			fsctlEnumUSNData,
			(*byte)(unsafe.Pointer(&in)),
			uint32(unsafe.Sizeof(in)),
			&buf[0],
			uint32(len(buf)),
			&bytesReturned,
			nil,
		)
		if err != nil {
			if err == syscall.ERROR_HANDLE_EOF {
				break
			}
			return all, err
		}
		if bytesReturned <= 8 {
			break
		}

		next := readUint64(buf[:8])
		batch := parseMFTBuffer(buf[8:bytesReturned])
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		in.StartFileReferenceNumber = next
	}

	return all, nil
}

func readUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
