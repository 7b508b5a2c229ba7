package zipwriter

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func benchmarkAddEntry(b *testing.B, store bool) {
	b.Helper()
	ctx := context.Background()
	data := bytes.Repeat([]byte("0123456789abcdef"), 4096) // 64 KiB
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		a := NewArchive(io.Discard)
		if _, err := a.AddEntry(ctx, EntryOptions{Name: "bench.bin", Store: store}, bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
		if _, err := a.Finalize(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAddEntryStore(b *testing.B) {
	benchmarkAddEntry(b, true)
}

func BenchmarkAddEntryDeflate(b *testing.B) {
	benchmarkAddEntry(b, false)
}
