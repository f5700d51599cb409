package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.October, day, hour, minute, 0, 0, time.UTC)
}

func TestParseNaturalTime(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		now      time.Time
		expected time.Time
	}{
		{"kal subah 8 baje", "kal subah 8 baje", at(28, 7, 0), at(29, 8, 0)},
		{"8 baje before eight", "8 baje", at(28, 7, 0), at(28, 8, 0)},
		{"8 baje after eight", "8 baje", at(28, 9, 30), at(29, 8, 0)},
		{"8 baje exactly at eight rolls", "8 baje", at(28, 8, 0), at(29, 8, 0)},
		{"tomorrow 8am", "tomorrow 8am", at(28, 22, 0), at(29, 8, 0)},
		{"pm marker", "aaj 5 pm", at(28, 9, 0), at(28, 17, 0)},
		{"pm suffix", "remind me at 7pm", at(28, 9, 0), at(28, 19, 0)},
		{"12am is midnight", "kal 12 am", at(28, 9, 0), at(29, 0, 0)},
		{"minutes", "kal 6:45 baje", at(28, 9, 0), at(29, 6, 45)},
		{"no meridiem keeps 24h", "kal 18.30", at(28, 9, 0), at(29, 18, 30)},
		{"part of day", "aaj shaam", at(28, 9, 0), at(28, 18, 0)},
		{"english part of day", "tomorrow night", at(28, 9, 0), at(29, 21, 0)},
		{"part of day rolls", "dopahar", at(28, 15, 0), at(29, 13, 0)},
		{"generic marker", "kal baje", at(28, 9, 0), at(29, 9, 0)},
		{"kal never rolls", "kal subah", at(28, 23, 0), at(29, 8, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNaturalTime(tt.text, tt.now)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "want %s, got %s", tt.expected, got)
		})
	}
}

func TestParseNaturalTime_Unresolvable(t *testing.T) {
	now := at(28, 9, 0)
	for _, text := range []string{"", "   ", "kal", "remind me", "25 baje", "kal 7:75"} {
		_, ok := ParseNaturalTime(text, now)
		assert.False(t, ok, text)
	}
}

func TestRolloverPolicy_ExplicitToday(t *testing.T) {
	now := at(28, 20, 0)

	got, ok := New(RolloverInferredToday).Parse("aaj subah", now)
	require.True(t, ok)
	assert.True(t, at(28, 8, 0).Equal(got))

	got, ok = New(RolloverUnlessTomorrow).Parse("aaj subah", now)
	require.True(t, ok)
	assert.True(t, at(29, 8, 0).Equal(got))
}

func TestParse_ZeroNowUsesClock(t *testing.T) {
	got, ok := ParseNaturalTime("kal 10 baje", time.Time{})
	require.True(t, ok)
	assert.True(t, got.After(time.Now()))
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, RolloverUnlessTomorrow, ParsePolicy("unless_tomorrow"))
	assert.Equal(t, RolloverUnlessTomorrow, ParsePolicy(" Always "))
	assert.Equal(t, RolloverInferredToday, ParsePolicy("inferred_today"))
	assert.Equal(t, RolloverInferredToday, ParsePolicy(""))
	assert.Equal(t, "unless_tomorrow", RolloverUnlessTomorrow.String())
}
