package astroeph

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
	"strings"

	"github.com/mshafiee/astroeph/astrometry"
)

// Result is the outcome of Calc.
//
// Coords holds the representation selected by the request flags:
// ecliptic or equatorial (FlagEquatorial), polar or cartesian (FlagXYZ),
// degrees or radians (FlagRadians). Polar vectors are {lon, lat, dist,
// dlon, dlat, ddist}; cartesian ones are {x, y, z, dx, dy, dz}. Distances
// are in AU, rates per day.
//
// The four full vectors are always filled; their angles are in radians.
// Velocities are zero unless FlagSpeed was requested.
type Result struct {
	Coords [6]float64

	EclipticCart    [6]float64
	EclipticPolar   [6]float64
	EquatorialCart  [6]float64
	EquatorialPolar [6]float64

	Model     Model   // model that delivered the data
	Flags     Flag    // effective flags, including the model bit
	Warning   string  // fallback advisories, empty when none
	LightTime float64 // light travel time in days, 0 without light-time correction
}

// Lon returns the first coordinate in the requested unit.
func (r Result) Lon() float64 { return r.Coords[0] }

// Lat returns the second coordinate in the requested unit.
func (r Result) Lat() float64 { return r.Coords[1] }

// Dist returns the distance in AU (or z for cartesian output).
func (r Result) Dist() float64 { return r.Coords[2] }

// SpeedLon returns the rate of the first coordinate.
func (r Result) SpeedLon() float64 { return r.Coords[3] }

// String formats Coords the way the CLI prints them.
func (r Result) String() string {
	var b strings.Builder
	for i, v := range r.Coords {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.9f", v)
	}
	return b.String()
}

// newResult builds the four representations from the final equatorial and
// ecliptic states.
func newResult(equ, ecl astrometry.State) Result {
	return Result{
		EclipticCart:    ecl.Array(),
		EclipticPolar:   astrometry.CartPolSpeed(ecl),
		EquatorialCart:  equ.Array(),
		EquatorialPolar: astrometry.CartPolSpeed(equ),
	}
}

// zeroVelocity clears the rate components of all vectors.
func (r *Result) zeroVelocity() {
	for _, v := range []*[6]float64{&r.EclipticCart, &r.EclipticPolar, &r.EquatorialCart, &r.EquatorialPolar} {
		v[3], v[4], v[5] = 0, 0, 0
	}
}

// view returns a copy of r with Coords selected by flags. Velocities are
// cleared when flags lacks FlagSpeed, so an entry computed with speed can
// answer a request without it.
func (r Result) view(flags Flag) Result {
	out := r
	if !flags.Has(FlagSpeed) {
		out.zeroVelocity()
	}
	var src [6]float64
	switch {
	case flags.Has(FlagEquatorial) && flags.Has(FlagXYZ):
		src = out.EquatorialCart
	case flags.Has(FlagEquatorial):
		src = out.EquatorialPolar
	case flags.Has(FlagXYZ):
		src = out.EclipticCart
	default:
		src = out.EclipticPolar
	}
	if !flags.Has(FlagXYZ) && !flags.Has(FlagRadians) {
		src[0] *= astrometry.Rad2Deg
		src[1] *= astrometry.Rad2Deg
		src[3] *= astrometry.Rad2Deg
		src[4] *= astrometry.Rad2Deg
	}
	out.Coords = src
	out.Flags = out.Flags&^outputMask | flags&outputMask
	return out
}
