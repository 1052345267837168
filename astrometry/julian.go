package astrometry

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/

import "math"

// Calendar selects the calendar used by JulDay and RevJul.
type Calendar int

const (
	// Julian is the Julian calendar.
	Julian Calendar = iota
	// Gregorian is the Gregorian calendar.
	Gregorian
)

// JulDay converts a calendar date to a Julian day number.
//
// Parameters:
//   - year, month, day: calendar date; astronomical year numbering (1 BC = 0).
//   - hour: decimal hours of the day.
//   - cal: calendar of the input date.
//
// Returns:
//   - float64: Julian day number.
func JulDay(year, month, day int, hour float64, cal Calendar) float64 {
	y, m := float64(year), float64(month)
	if month <= 2 {
		y--
		m += 12
	}
	b := 0.0
	if cal == Gregorian {
		a := math.Floor(y / 100)
		b = 2 - a + math.Floor(a/4)
	}
	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + float64(day) + hour/24 + b - 1524.5
}

// RevJul converts a Julian day number back to a calendar date.
//
// Parameters:
//   - jd: Julian day number.
//   - cal: calendar of the output date.
//
// Returns:
//   - year, month, day: calendar date.
//   - hour: decimal hours of the day.
func RevJul(jd float64, cal Calendar) (year, month, day int, hour float64) {
	jd += 0.5
	z := math.Floor(jd)
	f := jd - z
	a := z
	if cal == Gregorian {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)
	dayf := b - d - math.Floor(30.6001*e) + f
	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}
	day = int(math.Floor(dayf))
	hour = (dayf - float64(day)) * 24
	return year, month, day, hour
}

// DecimalYear returns the approximate decimal year of a Julian day.
func DecimalYear(jd float64) float64 {
	return 2000.0 + (jd-J2000)/365.25
}
