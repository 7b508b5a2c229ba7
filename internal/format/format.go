// Package format serializes PKZIP wire records.
//
// All multi-byte integers are little-endian. Record layouts follow the
// PKWARE APPNOTE; the constants below are the only place signatures and
// version numbers appear in the module.
package format

import "encoding/binary"

// Record signatures.
const (
	LocalFileHeaderSignature  = 0x04034b50
	DataDescriptorSignature   = 0x08074b50
	CentralDirectorySignature = 0x02014b50
	EndOfCentralDirSignature  = 0x06054b50
	Zip64EOCDSignature        = 0x06064b50
	Zip64EOCDLocatorSignature = 0x07064b50
)

const (
	// VersionMadeBy is recorded in central directory headers and the
	// ZIP64 end-of-central-directory record.
	VersionMadeBy uint16 = 45

	// VersionNeeded is the minimum extractor version for standard
	// entries; VersionNeededZip64 for entries with ZIP64 fields.
	VersionNeeded      uint16 = 20
	VersionNeededZip64 uint16 = 45

	// GeneralPurposeFlags sets bit 3 (sizes follow in a data
	// descriptor) and bit 11 (name and comment are UTF-8).
	GeneralPurposeFlags uint16 = 0x0808

	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
)

// Field widths and limits.
const (
	Uint16Max = 1<<16 - 1
	Uint32Max = 1<<32 - 1

	localFileHeaderLen  = 30
	dataDescriptorLen   = 16
	dataDescriptor64Len = 24
	centralHeaderLen    = 46
	endOfCentralDirLen  = 22
	zip64EOCDLen        = 56
	zip64LocatorLen     = 20

	zip64ExtraID      uint16 = 0x0001
	zip64ExtraPayload        = 24 // three uint64s
)

// recordBuf appends little-endian fields to a fixed-size record buffer,
// consuming itself as it goes.
type recordBuf []byte

func (b *recordBuf) uint16(v uint16) {
	binary.LittleEndian.PutUint16(*b, v)
	*b = (*b)[2:]
}

func (b *recordBuf) uint32(v uint32) {
	binary.LittleEndian.PutUint32(*b, v)
	*b = (*b)[4:]
}

func (b *recordBuf) uint64(v uint64) {
	binary.LittleEndian.PutUint64(*b, v)
	*b = (*b)[8:]
}

// LocalHeader describes the fields of a local file header. CRC and size
// fields are always written as zero; the real values follow the entry
// payload in a data descriptor.
type LocalHeader struct {
	Method  uint16
	ModTime uint16
	ModDate uint16
	Name    string
}

// EncodeLocalHeader serializes a local file header record.
// The caller must have validated that Name fits in a uint16 length.
func EncodeLocalHeader(h LocalHeader) []byte {
	buf := make([]byte, localFileHeaderLen, localFileHeaderLen+len(h.Name))
	b := recordBuf(buf)
	b.uint32(LocalFileHeaderSignature)
	b.uint16(VersionNeeded)
	b.uint16(GeneralPurposeFlags)
	b.uint16(h.Method)
	b.uint16(h.ModTime)
	b.uint16(h.ModDate)
	b.uint32(0) // crc-32, carried by the data descriptor
	b.uint32(0) // compressed size
	b.uint32(0) // uncompressed size
	b.uint16(uint16(len(h.Name)))
	b.uint16(0) // extra field length
	return append(buf, h.Name...)
}

// DataDescriptor carries the sizes and checksum that were unknown when
// the local header was written. Zip64 selects the 8-byte size variant.
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	Zip64            bool
}

// EncodeDataDescriptor serializes a data descriptor record, 16 bytes in
// standard form or 24 bytes in ZIP64 form.
func EncodeDataDescriptor(d DataDescriptor) []byte {
	size := dataDescriptorLen
	if d.Zip64 {
		size = dataDescriptor64Len
	}
	buf := make([]byte, size)
	b := recordBuf(buf)
	b.uint32(DataDescriptorSignature)
	b.uint32(d.CRC32)
	if d.Zip64 {
		b.uint64(d.CompressedSize)
		b.uint64(d.UncompressedSize)
	} else {
		b.uint32(uint32(d.CompressedSize))
		b.uint32(uint32(d.UncompressedSize))
	}
	return buf
}

// CentralHeader describes one central directory file header. Size and
// offset fields are always 64-bit here; narrowing to the 32-bit wire
// fields happens during encoding, with 0xffffffff sentinels and a ZIP64
// extra field when Zip64 is set.
type CentralHeader struct {
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	Offset           uint64
	Mode             uint16
	Name             string
	Comment          string
	Zip64            bool
}

// EncodeCentralHeader serializes a central directory file header,
// including the ZIP64 extra field when required.
func EncodeCentralHeader(h CentralHeader) []byte {
	extraLen := 0
	if h.Zip64 {
		extraLen = 4 + zip64ExtraPayload
	}
	buf := make([]byte, centralHeaderLen, centralHeaderLen+len(h.Name)+extraLen+len(h.Comment))
	b := recordBuf(buf)
	b.uint32(CentralDirectorySignature)
	b.uint16(VersionMadeBy)
	if h.Zip64 {
		b.uint16(VersionNeededZip64)
	} else {
		b.uint16(VersionNeeded)
	}
	b.uint16(GeneralPurposeFlags)
	b.uint16(h.Method)
	b.uint16(h.ModTime)
	b.uint16(h.ModDate)
	b.uint32(h.CRC32)
	if h.Zip64 {
		b.uint32(Uint32Max)
		b.uint32(Uint32Max)
	} else {
		b.uint32(uint32(h.CompressedSize))
		b.uint32(uint32(h.UncompressedSize))
	}
	b.uint16(uint16(len(h.Name)))
	b.uint16(uint16(extraLen))
	b.uint16(uint16(len(h.Comment)))
	b.uint16(0) // disk number start
	b.uint16(0) // internal attributes
	b.uint32(uint32(h.Mode) << 16)
	if h.Zip64 {
		b.uint32(Uint32Max)
	} else {
		b.uint32(uint32(h.Offset))
	}
	buf = append(buf, h.Name...)
	if h.Zip64 {
		var extra [4 + zip64ExtraPayload]byte
		eb := recordBuf(extra[:])
		eb.uint16(zip64ExtraID)
		eb.uint16(zip64ExtraPayload)
		eb.uint64(h.UncompressedSize)
		eb.uint64(h.CompressedSize)
		eb.uint64(h.Offset)
		buf = append(buf, extra[:]...)
	}
	return append(buf, h.Comment...)
}

// EncodeEndOfCentralDir serializes the archive trailer: the standard
// end-of-central-directory record, preceded by a ZIP64
// end-of-central-directory record and locator when any field overflows
// its standard width.
func EncodeEndOfCentralDir(records, cdSize, cdOffset uint64) []byte {
	if !EOCDNeedsZip64(records, cdSize, cdOffset) {
		return encodeEOCD(records, cdSize, cdOffset)
	}

	buf := make([]byte, zip64EOCDLen+zip64LocatorLen, zip64EOCDLen+zip64LocatorLen+endOfCentralDirLen)
	b := recordBuf(buf)

	b.uint32(Zip64EOCDSignature)
	b.uint64(zip64EOCDLen - 12) // size of remaining record
	b.uint16(VersionMadeBy)
	b.uint16(VersionNeededZip64)
	b.uint32(0) // number of this disk
	b.uint32(0) // disk with start of central directory
	b.uint64(records)
	b.uint64(records)
	b.uint64(cdSize)
	b.uint64(cdOffset)

	b.uint32(Zip64EOCDLocatorSignature)
	b.uint32(0)                 // disk with the ZIP64 EOCD record
	b.uint64(cdOffset + cdSize) // offset of the ZIP64 EOCD record
	b.uint32(1)                 // total number of disks

	// Sentinels in the standard record signal that the ZIP64 values
	// are authoritative.
	return append(buf, encodeEOCD(Uint16Max, Uint32Max, Uint32Max)...)
}

func encodeEOCD(records, cdSize, cdOffset uint64) []byte {
	buf := make([]byte, endOfCentralDirLen)
	b := recordBuf(buf)
	b.uint32(EndOfCentralDirSignature)
	b.uint16(0) // number of this disk
	b.uint16(0) // disk with start of central directory
	b.uint16(uint16(records))
	b.uint16(uint16(records))
	b.uint32(uint32(cdSize))
	b.uint32(uint32(cdOffset))
	b.uint16(0) // comment length
	return buf
}
