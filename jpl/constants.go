package jpl

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

// Planet identifies a quantity that can be interpolated from a DE file.
// Numbering follows the JPL PLEPH convention.
type Planet int

const (
	Mercury               Planet = 1
	Venus                 Planet = 2
	Earth                 Planet = 3
	Mars                  Planet = 4
	Jupiter               Planet = 5
	Saturn                Planet = 6
	Uranus                Planet = 7
	Neptune               Planet = 8
	Pluto                 Planet = 9
	Moon                  Planet = 10
	Sun                   Planet = 11
	SolarSystemBarycenter Planet = 12
	EarthMoonBarycenter   Planet = 13
	Nutations             Planet = 14 // longitude and obliquity, radians
	Librations            Planet = 15 // lunar Euler angles
	LunarMantleOmega      Planet = 16
	TTMinusTDB            Planet = 17
)

var planetNames = map[Planet]string{
	Mercury: "Mercury", Venus: "Venus", Earth: "Earth", Mars: "Mars",
	Jupiter: "Jupiter", Saturn: "Saturn", Uranus: "Uranus", Neptune: "Neptune",
	Pluto: "Pluto", Moon: "Moon", Sun: "Sun", SolarSystemBarycenter: "SSB",
	EarthMoonBarycenter: "EMB", Nutations: "Nutations", Librations: "Librations",
	LunarMantleOmega: "LunarMantleOmega", TTMinusTDB: "TT-TDB",
}

// String implements fmt.Stringer.
func (p Planet) String() string {
	if n, ok := planetNames[p]; ok {
		return n
	}
	return "Planet(?)"
}

// CenterBody is the origin a position is measured from. Values match Planet
// for the bodies 1..13.
type CenterBody int

const (
	CenterMercury               CenterBody = 1
	CenterVenus                 CenterBody = 2
	CenterEarth                 CenterBody = 3
	CenterMars                  CenterBody = 4
	CenterJupiter               CenterBody = 5
	CenterSaturn                CenterBody = 6
	CenterUranus                CenterBody = 7
	CenterNeptune               CenterBody = 8
	CenterPluto                 CenterBody = 9
	CenterMoon                  CenterBody = 10
	CenterSun                   CenterBody = 11
	CenterSolarSystemBarycenter CenterBody = 12
	CenterEarthMoonBarycenter   CenterBody = 13
)

// ValueType selects a header value for GetEphemerisDouble and GetEphemerisLong.
type ValueType int

const (
	EphemerisStartJD   ValueType = 0   // first JED covered
	EphemerisEndJD     ValueType = 8   // last JED covered
	EphemerisStep      ValueType = 16  // days per record
	NumberOfConstants  ValueType = 24  // constants in the file
	AUinKM             ValueType = 28  // km per AU
	EarthMoonMassRatio ValueType = 36  // Earth/Moon mass ratio
	IPTArrayOffset     ValueType = 44  // IPTArrayOffset + i reads ipt[i/3][i%3]
	EphemerisVersion   ValueType = 224 // DE number
	KernelSize         ValueType = 228 // record size in 32-bit words
	KernelRecordSize   ValueType = 232 // record size in bytes
	KernelNCoeff       ValueType = 236 // float64 values per record
	KernelSwapBytes    ValueType = 240 // 1 when the file is big-endian
)
