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

// DefaultTidalAcc is the lunar tidal acceleration of DE430/DE431 in arcsec/cy².
const DefaultTidalAcc = -25.82

// tidalAccReference is the tidal acceleration the polynomials were fitted with.
const tidalAccReference = -26.0

// DeltaT returns TT - UT in days for a UT Julian day.
//
// Parameters:
//   - tjdUT: Julian day, UT.
//   - tidalAcc: lunar tidal acceleration (arcsec/cy²) of the ephemeris in use.
//
// Returns:
//   - float64: Delta-T in days.
func DeltaT(tjdUT, tidalAcc float64) float64 {
	return DeltaTSeconds(DecimalYear(tjdUT), tidalAcc) / 86400.0
}

// DeltaTSeconds returns TT - UT in seconds for a decimal year using the
// Espenak-Meeus polynomials.
func DeltaTSeconds(y, tidalAcc float64) float64 {
	var dt float64
	switch {
	case y < -500:
		u := (y - 1820) / 100
		dt = -20 + 32*u*u
	case y < 500:
		u := y / 100
		dt = poly(u, 10583.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	case y < 1600:
		u := (y - 1000) / 100
		dt = poly(u, 1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	case y < 1700:
		t := y - 1600
		dt = 120 - 0.9808*t - 0.01532*t*t + t*t*t/7129
	case y < 1800:
		t := y - 1700
		dt = poly(t, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000)
	case y < 1860:
		t := y - 1800
		dt = poly(t, 13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case y < 1900:
		t := y - 1860
		dt = poly(t, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174)
	case y < 1920:
		t := y - 1900
		dt = poly(t, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1941:
		t := y - 1920
		dt = poly(t, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1961:
		t := y - 1950
		dt = poly(t, 29.07, 0.407, -1.0/233, 1.0/2547)
	case y < 1986:
		t := y - 1975
		dt = poly(t, 45.45, 1.067, -1.0/260, -1.0/718)
	case y < 2005:
		t := y - 2000
		dt = poly(t, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case y < 2050:
		t := y - 2000
		dt = poly(t, 62.92, 0.32217, 0.005589)
	case y < 2150:
		u := (y - 1820) / 100
		dt = -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		dt = -20 + 32*u*u
	}
	if y < 1955 && tidalAcc != tidalAccReference {
		dt += -0.000091 * (tidalAcc - tidalAccReference) * (y - 1955) * (y - 1955)
	}
	return dt
}

// poly evaluates c[0] + c[1]x + c[2]x² + ... by Horner's rule.
func poly(x float64, c ...float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
