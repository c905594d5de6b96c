// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dates parses the loosely formatted date strings found in
// bibliographic metadata into year/month/day parts. The record engine
// treats this package as an opaque parsing service: it hands over whatever
// the item carries and receives either structured parts or a literal.
package dates

import (
	"regexp"
	"strconv"
	"strings"
)

// Date is a parsed date, possibly a range. A Date with Year == 0 and a
// non-empty Literal is a verbatim note ("n.d.", "forthcoming") that could
// not be interpreted numerically.
type Date struct {
	Year  int
	Month int
	Day   int

	// End* hold the second half of a closed range ("2020/2022").
	EndYear  int
	EndMonth int
	EndDay   int

	// Open marks an open-ended range ("2020/").
	Open bool

	// Literal carries the source text when no numeric date was found.
	Literal string
}

// IsZero reports whether nothing at all was parsed.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Literal == ""
}

// months maps English month names and abbreviations to month numbers.
var months = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	isoRe       = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2})(?:-(\d{1,2}))?)?$`)
	monthYearRe = regexp.MustCompile(`^([A-Za-z]+)\.?,?\s+(\d{4})$`)
	dayMonthRe  = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	slashRe     = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	yearOnlyRe  = regexp.MustCompile(`\b(\d{4})\b`)
)

// Parse interprets a date string. Ranges are split on "/"; each half is
// parsed independently. Anything that yields no year becomes a Literal.
func Parse(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}

	if i := strings.Index(s, "/"); i >= 0 {
		start := parseSingle(strings.TrimSpace(s[:i]))
		rest := strings.TrimSpace(s[i+1:])
		if start.Year != 0 {
			if rest == "" {
				start.Open = true
				return start
			}
			end := parseSingle(rest)
			if end.Year != 0 {
				start.EndYear, start.EndMonth, start.EndDay = end.Year, end.Month, end.Day
				return start
			}
		}
	}

	return parseSingle(s)
}

func parseSingle(s string) Date {
	if m := isoRe.FindStringSubmatch(s); m != nil {
		return Date{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
	}
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		if mo, ok := months[strings.ToLower(m[1])]; ok {
			return Date{Year: atoi(m[3]), Month: mo, Day: atoi(m[2])}
		}
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		if mo, ok := months[strings.ToLower(m[1])]; ok {
			return Date{Year: atoi(m[2]), Month: mo}
		}
	}
	if m := slashRe.FindStringSubmatch(s); m != nil {
		mo := atoi(m[1])
		if mo >= 1 && mo <= 12 {
			return Date{Year: atoi(m[2]), Month: mo}
		}
	}
	// Fall back to the first plausible year anywhere in the text
	// ("Spring 2021", "ca. 1997").
	if m := yearOnlyRe.FindStringSubmatch(s); m != nil {
		return Date{Year: atoi(m[1])}
	}
	return Date{Literal: s}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
