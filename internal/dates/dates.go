// Package dates converts the date notations used by the scraped sites into calendar dates.
//
// Every parser returns a time.Time at midnight UTC. Failures wrap ErrUnrecognized so
// callers can log the candidate and move on.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrUnrecognized = errors.New("unrecognized date")

var portugueseMonths = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

var monthAbbrevs = map[string]time.Month{
	"JAN": time.January,
	"FEV": time.February,
	"MAR": time.March,
	"ABR": time.April,
	"MAI": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AGO": time.August,
	"SET": time.September,
	"OUT": time.October,
	"NOV": time.November,
	"DEZ": time.December,
}

// Date returns the calendar date y-m-d, failing when the day does not exist in that month.
func Date(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d does not exist", ErrUnrecognized, year, month, day)
	}
	return t, nil
}

var portugueseRe = regexp.MustCompile(`^(\d{1,2})\s+de\s+(\pL+)\s+de\s+(\d{4})$`)

// ParsePortuguese parses "DD de <mês> de YYYY", e.g. "5 de março de 2024".
func ParsePortuguese(text string) (time.Time, error) {
	m := portugueseRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, text)
	}

	month, ok := portugueseMonths[m[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month %q", ErrUnrecognized, m[2])
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	return Date(year, month, day)
}

var shortSlashRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)

// ParseShortSlash parses "DD/MM/YY". Two-digit years always land in 2000-2099.
func ParseShortSlash(text string) (time.Time, error) {
	m := shortSlashRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, text)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d out of range in %q", ErrUnrecognized, month, text)
	}

	return Date(2000+year, time.Month(month), day)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO 8601 timestamp and keeps only its date, as seen in the
// timestamp's own offset.
func ParseISO(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, text)
}

// FromMonthAbbrev returns the first day of the month named by a three-letter Portuguese
// abbreviation (JAN, FEV, ..., DEZ) in the given year.
func FromMonthAbbrev(abbrev string, year int) (time.Time, error) {
	month, ok := monthAbbrevs[strings.ToUpper(strings.TrimSpace(abbrev))]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month abbreviation %q", ErrUnrecognized, abbrev)
	}
	return Date(year, month, 1)
}
