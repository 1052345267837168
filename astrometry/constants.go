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

// Reference epochs (Julian days, TT).
const (
	J2000 = 2451545.0        // 2000 Jan 1.5 TT
	J1900 = 2415020.0        // 1900 Jan 0.5
	B1950 = 2433282.42345905 // Besselian 1950.0
	B1900 = 2415020.3135     // Besselian 1900.0

	DaysPerCentury    = 36525.0
	DaysPerMillennium = 365250.0
)

// Physical constants.
const (
	AUKm           = 149597870.700         // astronomical unit in km
	AUMeters       = AUKm * 1000.0         // astronomical unit in m
	CLight         = 299792458.0           // speed of light, m/s
	HelioGM        = 1.32712440017987e20   // heliocentric gravitational constant, m^3/s^2
	GMSun          = 2.959122082855911e-04 // AU^3/day^2
	GMEarthMoon    = 8.997011390199871e-10 // AU^3/day^2
	EarthMoonRatio = 81.30056907419062     // Earth/Moon mass ratio (DE431)

	// LightTimePerAU is the light travel time across one AU, in days.
	LightTimePerAU = AUMeters / CLight / 86400.0

	EarthRadius     = 6378136.6                 // equatorial radius, m
	EarthFlattening = 1.0 / 298.25642           // IERS 2003
	EarthRotation   = 7.2921151467e-5           // rad/s
	SunRadius       = 959.63 / 3600.0 * Deg2Rad // apparent solar radius at 1 AU, rad
)

// Angle conversions.
const (
	Deg2Rad    = math.Pi / 180.0
	Rad2Deg    = 180.0 / math.Pi
	Arcsec2Rad = Deg2Rad / 3600.0
	TwoPi      = 2.0 * math.Pi
)

// Sampling intervals for numeric derivatives, in days.
const (
	NutSpeedInterval  = 0.0001
	PlanSpeedInterval = 0.0001
	DeflSpeedInterval = 0.0000005
	NodeCalcInterval  = 0.0001
	// for osculating elements from a Moon whose velocity is itself a
	// difference over PlanSpeedInterval
	NodeNumericInterval = 0.01
)

// Norm2Pi reduces an angle in radians to [0, 2π).
func Norm2Pi(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// Norm360 reduces an angle in degrees to [0, 360).
func Norm360(a float64) float64 {
	a = math.Mod(a, 360.0)
	if a < 0 {
		a += 360.0
	}
	return a
}

// NormPi reduces an angle in radians to [-π, π).
func NormPi(a float64) float64 {
	a = Norm2Pi(a)
	if a >= math.Pi {
		a -= TwoPi
	}
	return a
}

// Centuries returns Julian centuries of TT since J2000.
func Centuries(tjd float64) float64 {
	return (tjd - J2000) / DaysPerCentury
}
