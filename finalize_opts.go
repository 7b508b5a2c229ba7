package zipwriter

// finalizeConfig holds configuration for Finalize.
type finalizeConfig struct {
	entries []EntryRecord
}

// FinalizeOption configures Finalize.
type FinalizeOption func(*finalizeConfig)

// FinalizeWithEntries substitutes the central-directory listing. The
// list must be a permutation or sub-sequence of the written entries
// (matched by StartOffset, no duplicates); Name, Comment, Modified,
// Mode, and Method may differ from the values the entries were written
// with, while CRC32, the sizes, and the Zip64 flag are frozen. A list
// that violates these rules fails Finalize before any
// central-directory byte is written and aborts the archive.
//
// Entries omitted from the list keep their payload bytes in the stream
// but are absent from the central directory, so standard readers will
// not see them.
func FinalizeWithEntries(entries []EntryRecord) FinalizeOption {
	return func(c *finalizeConfig) {
		c.entries = entries
	}
}
