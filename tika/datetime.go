/*
Copyright 2017 Google Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tika

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Errors returned by ParseTime.
var (
	// ErrTimeFormat means the text is not an ISO 8601 date-time in one of
	// the forms Tika parsers emit.
	ErrTimeFormat = errors.New("tika: unrecognized date-time format")
	// ErrTimeRange means the text has the right shape but one of its
	// components is out of range, for example month 13.
	ErrTimeRange = errors.New("tika: date-time component out of range")
)

// timeRE matches the whole value, so trailing garbage such as a truncated
// offset ("-0") or a dot with no digits is rejected instead of ignored.
var timeRE = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ tT](\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?([zZ]|[+-]\d{2}:\d{2})?$`)

// A Timestamp is a date-time parsed from a metadata field.
//
// Tika passes dates through from the document, and many formats store
// local time with no zone. Such values are Naive: Time holds the wall
// clock in time.UTC, but that location carries no meaning and must not be
// read as an instant.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

// ParseTime parses s as YYYY-MM-DD, a 'T', 't' or ' ' separator,
// hh:mm:ss, optional fractional seconds and an optional 'Z' or ±hh:mm
// zone. Fractions are kept to microsecond resolution; extra digits are
// truncated.
func ParseTime(s string) (Timestamp, error) {
	m := timeRE.FindStringSubmatch(s)
	if m == nil {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	// The regexp guarantees every numeric group is ASCII digits.
	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	hour, minute, second := atoi(m[4]), atoi(m[5]), atoi(m[6])

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) ||
		hour > 23 || minute > 59 || second > 59 {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrTimeRange, s)
	}

	usec := 0
	if frac := m[7]; frac != "" {
		usec = atoi(padFraction(frac))
	}

	loc := time.UTC
	naive := true
	switch zone := m[8]; {
	case zone == "":
	case zone == "Z" || zone == "z":
		naive = false
	default:
		zh, zm := atoi(zone[1:3]), atoi(zone[4:6])
		if zh > 23 || zm > 59 {
			return Timestamp{}, fmt.Errorf("%w: %q", ErrTimeRange, s)
		}
		offset := zh*3600 + zm*60
		if zone[0] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
		naive = false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, usec*int(time.Microsecond), loc)
	return Timestamp{Time: t, Naive: naive}, nil
}

// padFraction returns exactly six digits of frac.
func padFraction(frac string) string {
	if len(frac) >= 6 {
		return frac[:6]
	}
	return frac + strings.Repeat("0", 6-len(frac))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Microsecond returns the sub-second part of t in microseconds.
func (t Timestamp) Microsecond() int {
	return t.Time.Nanosecond() / int(time.Microsecond)
}

// Format returns t in the form accepted by ParseTime. The fraction is
// written with six digits when non-zero. Naive timestamps carry no zone,
// a zero offset is written as "Z".
func (t Timestamp) Format() string {
	s := t.Time.Format("2006-01-02T15:04:05")
	if us := t.Microsecond(); us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	if t.Naive {
		return s
	}
	return s + t.Time.Format("Z07:00")
}

func (t Timestamp) String() string {
	return t.Format()
}
