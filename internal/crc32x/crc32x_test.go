package crc32x

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"a", 0xe8b7be43},
		{"123456789", 0xcbf43926},
		{"Hello, World!", 0xec4ac3d0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Checksum([]byte(tt.in)), "crc32(%q)", tt.in)
	}
}

func TestUpdateIncremental(t *testing.T) {
	t.Parallel()

	data := []byte("The quick brown fox jumps over the lazy dog")
	whole := Checksum(data)

	for _, split := range []int{0, 1, 7, 16, 17, len(data)} {
		crc := Update(0, data[:split])
		crc = Update(crc, data[split:])
		assert.Equal(t, whole, crc, "split at %d", split)
	}
}

func TestMatchesStdlib(t *testing.T) {
	t.Parallel()

	// Lengths around the slicing-by-16 boundary plus larger buffers.
	for _, n := range []int{0, 1, 15, 16, 17, 31, 32, 255, 4096, 65537} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*31 + 7)
		}
		assert.Equal(t, crc32.ChecksumIEEE(data), Checksum(data), "length %d", n)
	}
}
