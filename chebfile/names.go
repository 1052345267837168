package chebfile

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

import (
	"fmt"
	"path/filepath"

	"github.com/mshafiee/astroeph/astrometry"
)

// Kind is a family of coefficient files.
type Kind int

const (
	KindPlanets   Kind = iota // Sun, planets and the Earth-Moon barycenter
	KindMoon                  // geocentric Moon
	KindAsteroids             // Chiron, Pholus and the four main-belt bodies
	KindNumbered              // one file per numbered minor planet
)

var kindPrefix = [...]string{"sepl", "semo", "seas"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindPlanets:
		return "planets"
	case KindMoon:
		return "moon"
	case KindAsteroids:
		return "asteroids"
	case KindNumbered:
		return "numbered"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Extension of coefficient files.
const Extension = ".cheb"

// CenturiesPerFile is the span of one planetary, lunar or asteroid file.
const CenturiesPerFile = 6

// Overall span any file family may cover.
const (
	MinDate = -3027215.5 // 13000 BCE
	MaxDate = 7930192.5  // 17000 CE
)

// gregorianStart is the first Gregorian calendar date, 1582 Oct 15.
const gregorianStart = 2305447.5

// FileName returns the name of the file of kind k covering tjd, relative to
// the ephemeris directory. Files span CenturiesPerFile centuries starting at
// a multiple of six centuries: 2000 CE lives in "sepl_18.cheb", 500 BCE in
// "seplm06.cheb". For KindNumbered, ast is the minor planet number and tjd is
// ignored.
func FileName(k Kind, tjd float64, ast int) string {
	if k == KindNumbered {
		if ast > 99999 {
			return filepath.Join(fmt.Sprintf("ast%d", ast/1000), fmt.Sprintf("s%06d%s", ast, Extension))
		}
		return filepath.Join(fmt.Sprintf("ast%d", ast/1000), fmt.Sprintf("se%05d%s", ast, Extension))
	}
	icty := fileCentury(tjd)
	sep := "_"
	if icty < 0 {
		sep = "m"
		icty = -icty
	}
	return fmt.Sprintf("%s%s%02d%s", kindPrefix[k], sep, icty, Extension)
}

// FileSpan returns the Julian day range of the six-century file covering tjd.
func FileSpan(tjd float64) (start, end float64) {
	icty := fileCentury(tjd)
	y0 := icty * 100
	y1 := y0 + CenturiesPerFile*100
	return astrometry.JulDay(y0, 1, 1, 0, calendarFor(y0)), astrometry.JulDay(y1, 1, 1, 0, calendarFor(y1))
}

// fileCentury returns the first century of the file holding tjd.
func fileCentury(tjd float64) int {
	cal := astrometry.Julian
	if tjd >= gregorianStart {
		cal = astrometry.Gregorian
	}
	year, _, _, _ := astrometry.RevJul(tjd, cal)
	icty := year / 100
	if year < 0 && year%100 != 0 {
		icty--
	}
	for icty%CenturiesPerFile != 0 {
		icty--
	}
	return icty
}

func calendarFor(year int) astrometry.Calendar {
	if year >= 1583 {
		return astrometry.Gregorian
	}
	return astrometry.Julian
}
