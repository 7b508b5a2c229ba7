package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOSDateTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       time.Time
		wantDate uint16
		wantTime uint16
	}{
		{
			name:     "epoch start",
			in:       time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
			wantDate: 0<<9 | 1<<5 | 1,
			wantTime: 0,
		},
		{
			name:     "typical timestamp",
			in:       time.Date(2024, 3, 15, 10, 30, 41, 0, time.UTC),
			wantDate: 44<<9 | 3<<5 | 15,
			wantTime: 10<<11 | 30<<5 | 20,
		},
		{
			name:     "epoch end",
			in:       time.Date(2107, 12, 31, 23, 59, 58, 0, time.UTC),
			wantDate: 127<<9 | 12<<5 | 31,
			wantTime: 23<<11 | 59<<5 | 29,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			date, tod, ok := DOSDateTime(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantTime, tod)
		})
	}
}

func TestDOSDateTimeOutOfRange(t *testing.T) {
	t.Parallel()

	for _, in := range []time.Time{
		time.Date(1979, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2108, 1, 1, 0, 0, 0, 0, time.UTC),
		{},
	} {
		_, _, ok := DOSDateTime(in)
		assert.False(t, ok, "expected %s to be rejected", in)
	}
}
