package generic

import "time"

// FixedPublicHolidays returns the Korean public holidays that fall on the
// same solar date every year, as recurring global holidays.
//
// Seollal, Buddha's Birthday and Chuseok follow the lunar calendar and
// substitute holidays depend on the weekday; those have to be added per
// year.
func FixedPublicHolidays() []Holiday {
	fixed := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "New Year's Day"},
		{time.March, 1, "Independence Movement Day"},
		{time.May, 5, "Children's Day"},
		{time.June, 6, "Memorial Day"},
		{time.August, 15, "Liberation Day"},
		{time.October, 3, "National Foundation Day"},
		{time.October, 9, "Hangul Day"},
		{time.December, 25, "Christmas Day"},
	}

	holidays := make([]Holiday, len(fixed))
	for i, f := range fixed {
		holidays[i] = Holiday{
			Date:      NewTimePoint(2000, f.month, f.day),
			Name:      f.name,
			Recurring: true,
		}
	}
	return holidays
}
