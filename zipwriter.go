package zipwriter

import (
	"hash/crc32"

	"github.com/gmaclennan/zip-writer/internal/crc32x"
)

// Method identifies the compression method recorded for an entry.
type Method uint16

// Supported compression methods.
const (
	Store   Method = 0 // payload stored verbatim
	Deflate Method = 8 // raw DEFLATE
)

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// CRC32Func incrementally updates a CRC-32 checksum (IEEE 802.3,
// polynomial 0xedb88320) with the bytes of p. Zero is the seed for a
// fresh checksum.
type CRC32Func func(crc uint32, p []byte) uint32

func stdCRC32(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, crc32.IEEETable, p)
}

// PortableCRC32 is a pure table-driven CRC-32 usable with [WithCRC32]
// on platforms where the hash/crc32 implementation is unsuitable.
func PortableCRC32(crc uint32, p []byte) uint32 {
	return crc32x.Update(crc, p)
}

// Summary describes a finalized archive.
type Summary struct {
	// Zip64 is true when any entry or the end-of-central-directory
	// record required ZIP64 encoding.
	Zip64 bool

	// UncompressedSize is the total uncompressed byte count of the
	// entries listed in the central directory.
	UncompressedSize uint64

	// CompressedSize is the total compressed byte count of the entries
	// listed in the central directory.
	CompressedSize uint64

	// FileSize is the total size of the archive in bytes, including
	// the central directory and trailer records.
	FileSize uint64
}
