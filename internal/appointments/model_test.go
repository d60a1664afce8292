package appointments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockLabel(t *testing.T) {
	cases := []struct {
		label  string
		hour   int
		minute int
	}{
		{"9:00 AM", 9, 0},
		{"9:30 AM", 9, 30},
		{"12:00 AM", 0, 0},
		{"12:30 AM", 0, 30},
		{"12:00 PM", 12, 0},
		{"1:00 PM", 13, 0},
		{"5:00 PM", 17, 0},
		{"11:30 PM", 23, 30},
	}
	for _, tc := range cases {
		tod, err := ParseClockLabel(tc.label)
		require.NoError(t, err, tc.label)
		assert.Equal(t, tc.hour, tod.Hour, tc.label)
		assert.Equal(t, tc.minute, tod.Minute, tc.label)
	}
}

func TestParseClockLabelRejectsGarbage(t *testing.T) {
	for _, label := range []string{"", "10:00", "25:00 AM", "10:75 PM", "ten AM", "10:00 XM", "0:30 PM"} {
		_, err := ParseClockLabel(label)
		assert.ErrorIs(t, err, ErrInvalidTime, label)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for _, label := range gridLabels() {
		tod, err := ParseClockLabel(label)
		require.NoError(t, err, label)
		assert.Equal(t, label, tod.Label())
	}
	assert.Equal(t, "12:00 AM", TimeOfDay{Hour: 0}.Label())
	assert.Equal(t, "12:00 PM", TimeOfDay{Hour: 12}.Label())
}

func TestInstantIsUTC(t *testing.T) {
	tod, err := ParseClockLabel("10:00 AM")
	require.NoError(t, err)
	instant, err := tod.Instant("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), instant)

	_, err = tod.Instant("not-a-date")
	assert.Error(t, err)
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	status, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestSpecialtyForCondition(t *testing.T) {
	assert.Equal(t, "Cardiologist", SpecialtyForCondition("heart"))
	assert.Equal(t, "Psychiatrist", SpecialtyForCondition("Mental_Health"))
	assert.Equal(t, "", SpecialtyForCondition("other"))
	assert.Equal(t, "", SpecialtyForCondition("unknown"))
}
