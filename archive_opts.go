package zipwriter

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithCRC32 replaces the CRC-32 implementation. The default uses
// hash/crc32; see [PortableCRC32] for a pure table-driven alternative.
func WithCRC32(fn CRC32Func) Option {
	return func(a *Archive) {
		if fn != nil {
			a.crc = fn
		}
	}
}

// WithCompressionLevel sets the default DEFLATE level for the archive.
// Accepts the flate package levels; the default is
// flate.DefaultCompression. Individual entries may override it via
// EntryOptions.Level.
func WithCompressionLevel(level int) Option {
	return func(a *Archive) {
		a.level = level
	}
}

// WithBufferSize sets the size of the buffer between the archive and
// its sink. The default is DefaultBufferSize.
func WithBufferSize(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.bufSize = n
		}
	}
}

// WithLogger sets the logger for archive operations. If not set,
// logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}
