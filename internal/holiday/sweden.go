package holiday

import "time"

// Sweden is the Swedish public holiday calendar, including the de facto
// holidays (Midsommarafton, Julafton, Nyårsafton). With IncludeSundays every
// Sunday that is not otherwise a holiday is labelled "Söndag".
type Sweden struct {
	IncludeSundays bool
	years          map[int]map[string]string
}

// NewSweden returns an empty-cached Swedish calendar.
func NewSweden(includeSundays bool) *Sweden {
	return &Sweden{IncludeSundays: includeSundays, years: make(map[int]map[string]string)}
}

func (s *Sweden) Holiday(day time.Time) (string, bool) {
	if s.years == nil {
		s.years = make(map[int]map[string]string)
	}
	year, ok := s.years[day.Year()]
	if !ok {
		year = swedishHolidays(day.Year())
		s.years[day.Year()] = year
	}
	if label, ok := year[dateKey(day)]; ok {
		return label, true
	}
	if s.IncludeSundays && day.Weekday() == time.Sunday {
		return "Söndag", true
	}
	return "", false
}

func swedishHolidays(year int) map[string]string {
	d := func(m time.Month, day int) time.Time { return time.Date(year, m, day, 0, 0, 0, 0, time.UTC) }
	easter := easterSunday(year)

	h := map[string]string{
		dateKey(d(time.January, 1)):       "Nyårsdagen",
		dateKey(d(time.January, 6)):       "Trettondedag jul",
		dateKey(easter.AddDate(0, 0, -2)): "Långfredagen",
		dateKey(easter):                   "Påskdagen",
		dateKey(easter.AddDate(0, 0, 1)):  "Annandag påsk",
		dateKey(d(time.May, 1)):           "Första maj",
		dateKey(easter.AddDate(0, 0, 39)): "Kristi himmelsfärdsdag",
		dateKey(easter.AddDate(0, 0, 49)): "Pingstdagen",
		dateKey(d(time.December, 24)):     "Julafton",
		dateKey(d(time.December, 25)):     "Juldagen",
		dateKey(d(time.December, 26)):     "Annandag jul",
		dateKey(d(time.December, 31)):     "Nyårsafton",
	}
	if year >= 2005 {
		h[dateKey(d(time.June, 6))] = "Sveriges nationaldag"
	}

	// Midsommardagen is the Saturday between 20 and 26 June, Alla helgons
	// dag the Saturday between 31 October and 6 November.
	midsummer := nextWeekday(d(time.June, 20), time.Saturday)
	h[dateKey(midsummer.AddDate(0, 0, -1))] = "Midsommarafton"
	h[dateKey(midsummer)] = "Midsommardagen"
	h[dateKey(nextWeekday(d(time.October, 31), time.Saturday))] = "Alla helgons dag"
	return h
}

func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	return from.AddDate(0, 0, (int(wd)-int(from.Weekday())+7)%7)
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
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
