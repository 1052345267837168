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

// GMST returns Greenwich mean sidereal time (IAU 1982) in radians for a UT
// Julian day.
func GMST(tjdUT float64) float64 {
	t := Centuries(tjdUT)
	deg := 280.46061837 + 360.98564736629*(tjdUT-J2000) + 0.000387933*t*t - t*t*t/38710000
	return Norm2Pi(deg * Deg2Rad)
}

// GAST returns Greenwich apparent sidereal time in radians: GMST plus the
// equation of the equinoxes.
func GAST(tjdUT float64, dpsi, epsTrue float64) float64 {
	return Norm2Pi(GMST(tjdUT) + dpsi*math.Cos(epsTrue))
}

// SiderealHours converts a sidereal angle in radians to hours.
func SiderealHours(a float64) float64 {
	return a * Rad2Deg / 15.0
}
