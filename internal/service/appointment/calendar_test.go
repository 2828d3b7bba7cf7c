package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 15, d.Day())

	for _, bad := range []string{"15-03-2026", "2026/03/15", "2026-3-15", "tomorrow", ""} {
		_, err := ParseDate(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.ErrInvalidDate, apperrors.CodeOf(err))
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "08:00", hour: 8, minute: 0},
		{input: "8:30", hour: 8, minute: 30},
		{input: "23:59", hour: 23, minute: 59},
		{input: "00:00", hour: 0, minute: 0},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "12.30", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrInvalidTime, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestOnSlotBoundary(t *testing.T) {
	assert.True(t, OnSlotBoundary("08:00"))
	assert.True(t, OnSlotBoundary("14:30"))
	assert.True(t, OnSlotBoundary("9:30"))
	assert.False(t, OnSlotBoundary("08:15"))
	assert.False(t, OnSlotBoundary("08:45"))
	assert.False(t, OnSlotBoundary("08:01"))
	assert.False(t, OnSlotBoundary("garbage"))
}

func TestOverlaps(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 15, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{name: "identical", aStart: at(9, 0), aEnd: at(9, 30), bStart: at(9, 0), bEnd: at(9, 30), want: true},
		{name: "partial", aStart: at(9, 0), aEnd: at(10, 0), bStart: at(9, 30), bEnd: at(10, 30), want: true},
		{name: "contained", aStart: at(9, 0), aEnd: at(11, 0), bStart: at(9, 30), bEnd: at(10, 0), want: true},
		{name: "back to back", aStart: at(9, 0), aEnd: at(9, 30), bStart: at(9, 30), bEnd: at(10, 0), want: false},
		{name: "disjoint", aStart: at(8, 0), aEnd: at(8, 30), bStart: at(14, 0), bEnd: at(14, 30), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestCombineDateTime(t *testing.T) {
	date, err := ParseDate("2026-03-15")
	require.NoError(t, err)

	instant, err := CombineDateTime(date, "14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC), instant)

	_, err = CombineDateTime(date, "25:00")
	require.Error(t, err)
}

func TestValidateDuration(t *testing.T) {
	got, err := validateDuration(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDurationMinutes, got)

	got, err = validateDuration(45)
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	got, err = validateDuration(MinDurationMinutes)
	require.NoError(t, err)
	assert.Equal(t, MinDurationMinutes, got)

	got, err = validateDuration(MaxDurationMinutes)
	require.NoError(t, err)
	assert.Equal(t, MaxDurationMinutes, got)

	for _, bad := range []int{5, 14, 241, -30} {
		_, err := validateDuration(bad)
		require.Error(t, err, "duration %d", bad)
		assert.Equal(t, apperrors.ErrInvalidDuration, apperrors.CodeOf(err))
	}
}
