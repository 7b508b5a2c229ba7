package zipwriter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/gmaclennan/zip-writer/internal/format"
	"github.com/gmaclennan/zip-writer/internal/ioutil"
)

// EntryOptions describes a file to be added to the archive.
type EntryOptions struct {
	// Name is the entry path, UTF-8, using "/" as the separator.
	// Its encoded length must not exceed 65535 bytes.
	Name string

	// Comment is an optional entry comment recorded in the central
	// directory. Its encoded length must not exceed 65535 bytes.
	Comment string

	// Modified is the entry timestamp. The zero value means the
	// current time. Must fall within the MS-DOS representable range,
	// 1980-01-01 through 2107-12-31.
	Modified time.Time

	// Mode is the Unix file mode stored in the upper 16 bits of the
	// entry's external attributes. Must be at most 65535.
	Mode uint32

	// Store disables compression for this entry; the payload is
	// stored verbatim. The default is raw DEFLATE.
	Store bool

	// Level overrides the archive's DEFLATE level for this entry.
	// Zero means the archive default; otherwise it must be a valid
	// flate level. Ignored when Store is set.
	Level int
}

// validate checks the options synchronously, before any I/O.
func (o *EntryOptions) validate() error {
	if err := validateMeta(o.Name, o.Comment, o.Mode, o.Modified); err != nil {
		return err
	}
	if o.Level != 0 && (o.Level < flate.HuffmanOnly || o.Level > flate.BestCompression) {
		return &OptionsError{Field: "level", Reason: fmt.Sprintf("invalid deflate level %d", o.Level)}
	}
	return nil
}

// validateMeta checks the fields shared between EntryOptions and a
// finalize override.
func validateMeta(name, comment string, mode uint32, modified time.Time) error {
	if len(name) > format.Uint16Max {
		return &OptionsError{Field: "name", Reason: fmt.Sprintf("encoded length %d exceeds %d bytes", len(name), format.Uint16Max)}
	}
	if len(comment) > format.Uint16Max {
		return &OptionsError{Field: "comment", Reason: fmt.Sprintf("encoded length %d exceeds %d bytes", len(comment), format.Uint16Max)}
	}
	if mode > format.Uint16Max {
		return &OptionsError{Field: "mode", Reason: fmt.Sprintf("%d exceeds 16 bits", mode)}
	}
	if !modified.IsZero() {
		if _, _, ok := format.DOSDateTime(modified); !ok {
			return &OptionsError{Field: "modified", Reason: fmt.Sprintf("%s outside MS-DOS range 1980-2107", modified.Format(time.DateOnly))}
		}
	}
	return nil
}

// EntryRecord is the completed metadata of a written entry. StartOffset,
// CRC32, CompressedSize, UncompressedSize, and Zip64 are frozen once the
// entry is on the output stream; the remaining fields may be rewritten
// at the central-directory level via a finalize override.
type EntryRecord struct {
	Name     string
	Comment  string
	Modified time.Time
	Mode     uint32
	Method   Method

	// StartOffset is the byte offset of the entry's local file header
	// in the output stream.
	StartOffset uint64

	// CRC32 is the checksum of the uncompressed payload.
	CRC32 uint32

	// CompressedSize and UncompressedSize are the payload byte counts.
	// Equal for Store entries.
	CompressedSize   uint64
	UncompressedSize uint64

	// Zip64 is true when any of the sizes or the start offset reached
	// the 32-bit limit.
	Zip64 bool
}

// crcWriter folds written bytes into a running CRC-32.
type crcWriter struct {
	update CRC32Func
	sum    uint32
}

func (w *crcWriter) Write(p []byte) (int, error) {
	w.sum = w.update(w.sum, p)
	return len(p), nil
}

// writeEntry streams one entry to the output: local file header,
// payload, data descriptor. Caller holds the writer lock. The returned
// record is complete. An *OptionsError is returned before any byte is
// written; on any other error the output stream is mid-record and the
// caller must abort the archive.
func (a *Archive) writeEntry(ctx context.Context, opts EntryOptions, src io.Reader) (EntryRecord, error) {
	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
		if _, _, ok := format.DOSDateTime(modified); !ok {
			return EntryRecord{}, &OptionsError{Field: "modified", Reason: "current time outside MS-DOS range 1980-2107"}
		}
	}
	date, tod, _ := format.DOSDateTime(modified)

	method := Deflate
	if opts.Store {
		method = Store
	}

	start := a.out.N
	_, err := a.out.Write(format.EncodeLocalHeader(format.LocalHeader{
		Method:  uint16(method),
		ModTime: tod,
		ModDate: date,
		Name:    opts.Name,
	}))
	if err != nil {
		return EntryRecord{}, fmt.Errorf("write local header: %w", err)
	}

	// Stream: src → CountingReader → TeeReader(crc) → compressor → CountingWriter(out)
	crc := &crcWriter{update: a.crc}
	cr := &ioutil.CountingReader{R: src}
	tee := io.TeeReader(cr, crc)
	body := &ioutil.CountingWriter{W: a.out}

	if method == Store {
		if _, err := ioutil.CopyWithContext(ctx, body, tee, a.buf); err != nil {
			return EntryRecord{}, fmt.Errorf("write payload: %w", err)
		}
	} else {
		fw, err := a.flateWriter(body, opts.Level)
		if err != nil {
			return EntryRecord{}, err
		}
		if _, err := ioutil.CopyWithContext(ctx, fw, tee, a.buf); err != nil {
			return EntryRecord{}, fmt.Errorf("write payload: %w", err)
		}
		if err := fw.Close(); err != nil {
			return EntryRecord{}, fmt.Errorf("flush deflate: %w", err)
		}
	}

	// The entry is ZIP64 based on the values the descriptor must
	// carry, known only now.
	zip64 := format.NeedsZip64(cr.N, body.N, start)
	_, err = a.out.Write(format.EncodeDataDescriptor(format.DataDescriptor{
		CRC32:            crc.sum,
		CompressedSize:   body.N,
		UncompressedSize: cr.N,
		Zip64:            zip64,
	}))
	if err != nil {
		return EntryRecord{}, fmt.Errorf("write data descriptor: %w", err)
	}

	return EntryRecord{
		Name:             opts.Name,
		Comment:          opts.Comment,
		Modified:         modified,
		Mode:             opts.Mode,
		Method:           method,
		StartOffset:      start,
		CRC32:            crc.sum,
		CompressedSize:   body.N,
		UncompressedSize: cr.N,
		Zip64:            zip64,
	}, nil
}

// flateWriter returns a raw DEFLATE writer targeting w. The encoder for
// the archive default level is reused across entries; per-entry level
// overrides get a fresh encoder.
func (a *Archive) flateWriter(w io.Writer, level int) (*flate.Writer, error) {
	if level == 0 || level == a.level {
		if a.fw == nil {
			fw, err := flate.NewWriter(w, a.level)
			if err != nil {
				return nil, fmt.Errorf("create deflate encoder: %w", err)
			}
			a.fw = fw
			return fw, nil
		}
		a.fw.Reset(w)
		return a.fw, nil
	}
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, fmt.Errorf("create deflate encoder: %w", err)
	}
	return fw, nil
}
