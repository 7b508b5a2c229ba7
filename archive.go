package zipwriter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/semaphore"

	"github.com/gmaclennan/zip-writer/internal/format"
	"github.com/gmaclennan/zip-writer/internal/ioutil"
)

// DefaultBufferSize is the size of the buffer between the archive and
// its sink when no WithBufferSize option is set.
const DefaultBufferSize = 16 * 1024

// Archive writes a PKZIP stream to a sink. Create one with NewArchive,
// add entries with AddEntry, and complete the stream with Finalize.
//
// Methods may be called from multiple goroutines. A weighted semaphore
// serializes writers: each entry's bytes are contiguous in the output,
// and entries appear in the order AddEntry calls acquire the writer.
type Archive struct {
	sink io.Writer
	bw   *bufio.Writer
	out  *ioutil.CountingWriter

	crc     CRC32Func
	level   int
	bufSize int
	logger  *slog.Logger

	// writer lock; weight 1, waiters served in FIFO order
	sem *semaphore.Weighted

	// guarded by the writer lock
	entries []EntryRecord
	err     error
	buf     []byte
	fw      *flate.Writer

	finalized atomic.Bool
}

// NewArchive creates an archive writing to w. Writes are buffered; the
// buffer is flushed by Finalize, and if w implements io.Closer it is
// closed by Finalize as well.
func NewArchive(w io.Writer, opts ...Option) *Archive {
	a := &Archive{
		sink:    w,
		crc:     stdCRC32,
		level:   flate.DefaultCompression,
		bufSize: DefaultBufferSize,
		sem:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.bw = bufio.NewWriterSize(w, a.bufSize)
	a.out = &ioutil.CountingWriter{W: a.bw}
	a.buf = make([]byte, 32*1024)
	return a
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// AddEntry validates opts, then streams the entry from src onto the
// output: local file header, payload (raw DEFLATE unless opts.Store),
// and data descriptor. It returns the completed record.
//
// Option validation fails synchronously and leaves the archive usable.
// A source or sink error, or ctx cancellation mid-entry, leaves a
// partial record on the stream and aborts the archive.
func (a *Archive) AddEntry(ctx context.Context, opts EntryOptions, src io.Reader) (EntryRecord, error) {
	if err := opts.validate(); err != nil {
		return EntryRecord{}, err
	}
	if a.finalized.Load() {
		return EntryRecord{}, ErrFinalized
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		// Nothing was written for this entry; the archive is intact.
		return EntryRecord{}, err
	}
	defer a.sem.Release(1)

	if a.err != nil {
		return EntryRecord{}, a.err
	}
	if a.finalized.Load() {
		return EntryRecord{}, ErrFinalized
	}

	rec, err := a.writeEntry(ctx, opts, src)
	if err != nil {
		var optErr *OptionsError
		if errors.As(err, &optErr) {
			// Rejected before any byte was written; the archive is intact.
			return EntryRecord{}, err
		}
		a.abort(err)
		return EntryRecord{}, a.err
	}

	a.entries = append(a.entries, rec)
	a.log().Debug("entry written",
		"name", rec.Name,
		"method", rec.Method.String(),
		"offset", rec.StartOffset,
		"size", rec.UncompressedSize,
		"compressed", rec.CompressedSize,
		"zip64", rec.Zip64)
	return rec, nil
}

// Entries returns a snapshot of the completed entries. It waits for any
// in-progress entry, so a partially-written entry is never observed.
func (a *Archive) Entries() []EntryRecord {
	// Acquire cannot fail with a background context.
	_ = a.sem.Acquire(context.Background(), 1)
	defer a.sem.Release(1)
	return slices.Clone(a.entries)
}

// Finalize completes the archive: it waits for in-flight entries,
// writes a central directory file header per entry, the ZIP64
// end-of-central-directory record and locator when required, and the
// standard end-of-central-directory record, then flushes the buffer and
// closes the sink if it implements io.Closer.
//
// By default the central directory lists all entries in write order.
// FinalizeWithEntries substitutes a reordering (see its documentation).
//
// Finalize may be called once; later calls return ErrFinalized.
func (a *Archive) Finalize(ctx context.Context, opts ...FinalizeOption) (Summary, error) {
	if !a.finalized.CompareAndSwap(false, true) {
		return Summary{}, ErrFinalized
	}
	cfg := finalizeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return Summary{}, err
	}
	defer a.sem.Release(1)

	if a.err != nil {
		return Summary{}, a.err
	}

	list := a.entries
	if cfg.entries != nil {
		resolved, err := a.applyOverride(cfg.entries)
		if err != nil {
			// Abort before any central-directory byte so a blocked
			// downstream reader is released rather than left hanging.
			a.abort(err)
			return Summary{}, err
		}
		list = resolved
	}

	summary, err := a.writeCentralDirectory(list)
	if err != nil {
		a.abort(err)
		return Summary{}, a.err
	}

	a.log().Debug("archive finalized",
		"entries", len(list),
		"size", summary.FileSize,
		"zip64", summary.Zip64)
	return summary, nil
}

// writeCentralDirectory emits the trailing records for list and closes
// out the stream.
func (a *Archive) writeCentralDirectory(list []EntryRecord) (Summary, error) {
	cdOffset := a.out.N
	summary := Summary{}

	for _, e := range list {
		date, tod, _ := format.DOSDateTime(e.Modified)
		_, err := a.out.Write(format.EncodeCentralHeader(format.CentralHeader{
			Method:           uint16(e.Method),
			ModTime:          tod,
			ModDate:          date,
			CRC32:            e.CRC32,
			CompressedSize:   e.CompressedSize,
			UncompressedSize: e.UncompressedSize,
			Offset:           e.StartOffset,
			Mode:             uint16(e.Mode),
			Name:             e.Name,
			Comment:          e.Comment,
			Zip64:            e.Zip64,
		}))
		if err != nil {
			return Summary{}, fmt.Errorf("write central directory: %w", err)
		}
		summary.UncompressedSize += e.UncompressedSize
		summary.CompressedSize += e.CompressedSize
		summary.Zip64 = summary.Zip64 || e.Zip64
	}

	cdSize := a.out.N - cdOffset
	records := uint64(len(list))
	summary.Zip64 = summary.Zip64 || format.EOCDNeedsZip64(records, cdSize, cdOffset)

	if _, err := a.out.Write(format.EncodeEndOfCentralDir(records, cdSize, cdOffset)); err != nil {
		return Summary{}, fmt.Errorf("write end of central directory: %w", err)
	}
	if err := a.bw.Flush(); err != nil {
		return Summary{}, fmt.Errorf("flush output: %w", err)
	}
	if c, ok := a.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return Summary{}, fmt.Errorf("close output: %w", err)
		}
	}

	summary.FileSize = a.out.N
	return summary, nil
}

// applyOverride resolves a caller-supplied central-directory list
// against the written entries. Entries are matched by StartOffset; the
// physical fields (checksum, sizes, ZIP64 flag) are frozen and only the
// metadata recorded at the central-directory level may differ.
func (a *Archive) applyOverride(override []EntryRecord) ([]EntryRecord, error) {
	byOffset := make(map[uint64]EntryRecord, len(a.entries))
	for _, e := range a.entries {
		byOffset[e.StartOffset] = e
	}

	seen := make(map[uint64]struct{}, len(override))
	out := make([]EntryRecord, 0, len(override))
	for i, e := range override {
		orig, ok := byOffset[e.StartOffset]
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: no entry written at offset %d", ErrInvalidOverride, i, e.StartOffset)
		}
		if _, dup := seen[e.StartOffset]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate entry at offset %d", ErrInvalidOverride, i, e.StartOffset)
		}
		seen[e.StartOffset] = struct{}{}

		if e.CRC32 != orig.CRC32 {
			return nil, fmt.Errorf("%w: entry %q: crc32 is frozen", ErrInvalidOverride, orig.Name)
		}
		if e.CompressedSize != orig.CompressedSize || e.UncompressedSize != orig.UncompressedSize {
			return nil, fmt.Errorf("%w: entry %q: sizes are frozen", ErrInvalidOverride, orig.Name)
		}
		if e.Zip64 != orig.Zip64 {
			return nil, fmt.Errorf("%w: entry %q: zip64 flag is frozen", ErrInvalidOverride, orig.Name)
		}
		if err := validateMeta(e.Name, e.Comment, e.Mode, e.Modified); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidOverride, orig.Name, err)
		}
		if e.Modified.IsZero() {
			return nil, fmt.Errorf("%w: entry %q: modified time is zero", ErrInvalidOverride, orig.Name)
		}
		out = append(out, e)
	}
	return out, nil
}

// abort marks the archive dead after a mid-stream failure. If the sink
// supports CloseWithError (an io.PipeWriter does), the cause is pushed
// downstream so readers unblock with the error instead of hanging.
func (a *Archive) abort(cause error) {
	a.err = fmt.Errorf("%w: %w", ErrAborted, cause)
	type closerWithError interface {
		CloseWithError(error) error
	}
	if c, ok := a.sink.(closerWithError); ok {
		_ = c.CloseWithError(cause)
	}
	a.log().Debug("archive aborted", "error", cause)
}
