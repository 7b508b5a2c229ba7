// Package zipwriter produces PKZIP archives as a single forward-only
// byte stream. Entry payloads are streamed: sizes and checksums are not
// required up front and are never buffered in memory. Each entry is
// written as a local file header, its (optionally DEFLATE-compressed)
// payload, and a trailing data descriptor; Finalize appends the central
// directory and end-of-central-directory records.
//
// ZIP64 promotion is automatic, per entry and for the archive trailer,
// whenever a size, offset, or record count reaches its 32-bit or 16-bit
// limit.
//
// # Quick Start
//
// Stream two files into an archive:
//
//	a := zipwriter.NewArchive(out)
//	_, err := a.AddEntry(ctx, zipwriter.EntryOptions{Name: "hello.txt"}, strings.NewReader("Hello, World!"))
//	if err != nil {
//	    return err
//	}
//	_, err = a.AddEntry(ctx, zipwriter.EntryOptions{Name: "raw.bin", Store: true}, data)
//	if err != nil {
//	    return err
//	}
//	summary, err := a.Finalize(ctx)
//
// AddEntry may be called from multiple goroutines; entries appear in
// the output in the order the calls acquire the writer, and each
// entry's bytes are contiguous.
//
// # Error Handling
//
// Invalid entry options and lifecycle misuse fail synchronously and
// leave the archive usable. An error from the payload source or the
// output sink mid-entry corrupts the stream irrecoverably: the archive
// is aborted, and later AddEntry calls and the first Finalize call
// return an error wrapping [ErrAborted]. Once Finalize has been called,
// AddEntry and Finalize return [ErrFinalized].
package zipwriter
