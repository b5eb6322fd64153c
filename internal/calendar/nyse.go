package calendar

import (
	"sync"
	"time"
)

// NYSE is the US equity trading calendar (weekends + exchange holidays).
// Holiday sets are computed lazily per year and owned by the value.
// ⭐ SSOT: 거래일 계산은 여기서만
type NYSE struct {
	mu       sync.Mutex
	holidays map[int]map[string]struct{}
}

// NewNYSE creates an empty calendar; years fill on first use
func NewNYSE() *NYSE {
	return &NYSE{holidays: make(map[int]map[string]struct{})}
}

// IsTradingDay reports whether date (calendar day, location ignored) is a session
func (c *NYSE) IsTradingDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(date)
}

// IsHoliday reports whether date is an exchange holiday
func (c *NYSE) IsHoliday(date time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	year := date.Year()
	set, ok := c.holidays[year]
	if !ok {
		set = make(map[string]struct{})
		for _, h := range holidaysFor(year) {
			set[h.Format("2006-01-02")] = struct{}{}
		}
		c.holidays[year] = set
	}
	_, hit := set[date.Format("2006-01-02")]
	return hit
}

// AddTradingDays moves n sessions forward (n > 0) or backward (n < 0).
// n = 0 returns date unchanged. The result is a date at midnight in date's location.
func (c *NYSE) AddTradingDays(date time.Time, n int) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if c.IsTradingDay(d) {
			n--
		}
	}
	return d
}

// holidaysFor lists the observed NYSE full-day closures for year
func holidaysFor(year int) []time.Time {
	days := []time.Time{
		nthWeekday(year, time.January, time.Monday, 3),  // MLK Day
		nthWeekday(year, time.February, time.Monday, 3), // Presidents Day
		easter(year).AddDate(0, 0, -2),                  // Good Friday
		lastWeekday(year, time.May, time.Monday),        // Memorial Day
		observed(date(year, time.July, 4)),
		nthWeekday(year, time.September, time.Monday, 1), // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		observed(date(year, time.December, 25)),
	}
	// New Year's Day on a Saturday is not observed
	if ny := date(year, time.January, 1); ny.Weekday() != time.Saturday {
		days = append(days, observed(ny))
	}
	if year >= 2022 {
		days = append(days, observed(date(year, time.June, 19))) // Juneteenth
	}
	return days
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// observed shifts Saturday holidays to Friday and Sunday holidays to Monday
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := date(year, month, 1)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := date(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easter returns Western Easter Sunday (anonymous Gregorian computus)
func easter(year int) time.Time {
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
	return date(year, time.Month(month), day)
}
