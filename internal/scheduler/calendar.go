package scheduler

import "time"

// B3 regular session bounds, local exchange time (minutes since midnight).
const (
	sessionOpen  = 10 * 60
	sessionClose = 18*60 + 20
)

// IsTradingTime reports whether t, converted to loc, falls inside the regular
// session of a Brazilian business day. Both bounds are inclusive.
func IsTradingTime(t time.Time, loc *time.Location) bool {
	if loc != nil {
		t = t.In(loc)
	}
	if !IsBusinessDay(t) {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= sessionOpen && m <= sessionClose
}

// IsBusinessDay returns true if date is a business day in Brazil.
// Weekends, national fixed holidays and the Easter based movable holidays
// are excluded.
func IsBusinessDay(d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	if _, ok := fixedHolidays[d.Format("01-02")]; ok {
		return false
	}

	day := truncateToDate(d)
	for _, h := range movableHolidays(d.Year(), d.Location()) {
		if h.Equal(day) {
			return false
		}
	}
	return true
}

var fixedHolidays = map[string]struct{}{
	"01-01": {}, // New Year
	"04-21": {}, // Tiradentes
	"05-01": {}, // Labor Day
	"09-07": {}, // Independence Day
	"10-12": {}, // Our Lady Aparecida
	"11-02": {}, // All Souls' Day
	"11-15": {}, // Republic Proclamation
	"11-20": {}, // Black Consciousness Day
	"12-25": {}, // Christmas
}

// movableHolidays returns Carnival Monday and Tuesday, Good Friday and
// Corpus Christi for the given year.
func movableHolidays(year int, loc *time.Location) []time.Time {
	easter := easterSunday(year, loc)
	return []time.Time{
		easter.AddDate(0, 0, -48),
		easter.AddDate(0, 0, -47),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 60),
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int, loc *time.Location) time.Time {
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
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
