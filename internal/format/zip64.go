package format

// NeedsZip64 reports whether an entry requires ZIP64 encoding. The
// boundary is inclusive: 0xffffffff is reserved as the sentinel value,
// so a field equal to it already cannot be stored in 32 bits.
func NeedsZip64(uncompressedSize, compressedSize, offset uint64) bool {
	return uncompressedSize >= Uint32Max ||
		compressedSize >= Uint32Max ||
		offset >= Uint32Max
}

// EOCDNeedsZip64 reports whether the end-of-central-directory record
// requires the ZIP64 variant. 0xffff is reserved as the record-count
// sentinel, matching the inclusive size and offset boundaries.
func EOCDNeedsZip64(records, cdSize, cdOffset uint64) bool {
	return records >= Uint16Max ||
		cdSize >= Uint32Max ||
		cdOffset >= Uint32Max
}
