package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestEaster(t *testing.T) {
	cases := map[int]time.Time{
		2019: date(2019, time.April, 21),
		2023: date(2023, time.April, 9),
		2024: date(2024, time.March, 31),
		2025: date(2025, time.April, 20),
		2026: date(2026, time.April, 5),
	}
	for year, want := range cases {
		got := Easter(year)
		assert.Equal(t, want.Month(), got.Month(), "year %d", year)
		assert.Equal(t, want.Day(), got.Day(), "year %d", year)
	}
}

func TestIsHoliday_Fixed(t *testing.T) {
	for _, h := range NationalHolidays {
		for _, year := range []int{2023, 2024, 2031} {
			assert.True(t, National.IsHoliday(date(year, h.Month, h.Day)), "%s %d", h.Name, year)
		}
	}
	assert.False(t, National.IsHoliday(date(2024, time.December, 24)))
}

func TestIsHoliday_Movable2024(t *testing.T) {
	// Easter 2024 is March 31.
	assert.True(t, National.IsHoliday(date(2024, time.March, 31)), "easter")
	assert.True(t, National.IsHoliday(date(2024, time.March, 29)), "good friday")
	assert.True(t, National.IsHoliday(date(2024, time.February, 12)), "carnival monday")
	assert.True(t, National.IsHoliday(date(2024, time.February, 13)), "carnival tuesday")
	assert.True(t, National.IsHoliday(date(2024, time.May, 30)), "corpus christi")
	assert.False(t, National.IsHoliday(date(2024, time.February, 14)), "ash wednesday")
}

func TestIsNonBusinessDay(t *testing.T) {
	assert.True(t, IsNonBusinessDay(date(2024, time.March, 3)), "sunday")
	assert.False(t, IsNonBusinessDay(date(2024, time.March, 2)), "saturday")
	assert.False(t, IsNonBusinessDay(date(2024, time.March, 4)), "monday")
	assert.True(t, IsNonBusinessDay(date(2024, time.December, 25)), "christmas wednesday")
}

func TestIsNonBusinessDay_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 2024-12-25 01:00 UTC is still Dec 24 in BRT.
	ts := time.Date(2024, time.December, 25, 1, 0, 0, 0, time.UTC).In(loc)
	assert.False(t, IsNonBusinessDay(ts))
}

func TestNew_CustomFixedHolidays(t *testing.T) {
	cal := New([]MonthDay{{Month: time.July, Day: 9, Name: "Revolução Constitucionalista"}})
	assert.True(t, cal.IsHoliday(date(2024, time.July, 9)))
	assert.False(t, cal.IsHoliday(date(2024, time.December, 25)))
	assert.True(t, cal.IsHoliday(date(2024, time.March, 29)), "movable dates still apply")
}
