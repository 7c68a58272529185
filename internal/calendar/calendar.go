// Package calendar answers whether a date counts as business time for SLA purposes.
package calendar

import "time"

// MonthDay is a holiday that repeats on the same date every year.
type MonthDay struct {
	Month time.Month
	Day   int
	Name  string
}

// NationalHolidays are the fixed-date national holidays.
var NationalHolidays = []MonthDay{
	{Month: time.January, Day: 1, Name: "Confraternização Universal"},
	{Month: time.April, Day: 21, Name: "Tiradentes"},
	{Month: time.May, Day: 1, Name: "Dia do Trabalho"},
	{Month: time.September, Day: 7, Name: "Independência"},
	{Month: time.October, Day: 12, Name: "Nossa Senhora Aparecida"},
	{Month: time.November, Day: 2, Name: "Finados"},
	{Month: time.November, Day: 15, Name: "Proclamação da República"},
	{Month: time.December, Day: 25, Name: "Natal"},
}

// Easter-relative offsets in days.
const (
	offsetCarnivalMonday  = -48
	offsetCarnivalTuesday = -47
	offsetCarnival        = -47
	offsetGoodFriday      = -2
	offsetEaster          = 0
	offsetCorpusChristi   = 60
)

var movableOffsets = []int{
	offsetCarnival,
	offsetCarnivalMonday,
	offsetCarnivalTuesday,
	offsetGoodFriday,
	offsetEaster,
	offsetCorpusChristi,
}

// Calendar decides business days. The zero value is not useful; use National.
type Calendar struct {
	fixed []MonthDay
}

// National is the calendar used for SLA adjustment.
var National = New(NationalHolidays)

// New builds a calendar over the given fixed holidays plus the Easter-relative ones.
func New(fixed []MonthDay) *Calendar {
	return &Calendar{fixed: append([]MonthDay(nil), fixed...)}
}

// IsNonBusinessDay is true for Sundays and holidays.
func (c *Calendar) IsNonBusinessDay(t time.Time) bool {
	return t.Weekday() == time.Sunday || c.IsHoliday(t)
}

// IsHoliday checks fixed dates by month/day and movable dates against the year's Easter.
func (c *Calendar) IsHoliday(t time.Time) bool {
	month, day := t.Month(), t.Day()
	for _, h := range c.fixed {
		if h.Month == month && h.Day == day {
			return true
		}
	}

	easter := Easter(t.Year())
	for _, offset := range movableOffsets {
		h := easter.AddDate(0, 0, offset)
		if h.Month() == month && h.Day() == day {
			return true
		}
	}
	return false
}

// IsNonBusinessDay checks t against the national calendar.
func IsNonBusinessDay(t time.Time) bool {
	return National.IsNonBusinessDay(t)
}

// Easter returns Easter Sunday (UTC midnight) for the Gregorian year using the
// anonymous Gregorian computus.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
