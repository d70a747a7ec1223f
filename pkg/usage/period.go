package usage

import "time"

// Period is a calendar month stamp in the form "2006-01", always UTC.
type Period string

const periodLayout = "2006-01"

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(periodLayout))
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Previous returns the period n months before p. Invalid periods return
// themselves.
func (p Period) Previous(n int) Period {
	t, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return p
	}
	return Period(t.AddDate(0, -n, 0).Format(periodLayout))
}

// Valid reports whether p parses as a period stamp.
func (p Period) Valid() bool {
	_, err := time.Parse(periodLayout, string(p))
	return err == nil
}
