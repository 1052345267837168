package analytic

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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

// Elements are osculating heliocentric elements referred to the J2000
// ecliptic and equinox. Angles are in degrees.
type Elements struct {
	Epoch   float64 // Julian day TT
	A       float64 // semi-major axis, AU
	E       float64 // eccentricity
	I       float64 // inclination
	Node    float64 // longitude of the ascending node
	ArgPeri float64 // argument of perihelion
	M       float64 // mean anomaly at Epoch
}

// Position returns the two-body position of the orbit at tjd in AU, J2000
// equatorial.
func (el Elements) Position(tjd float64) r3.Vec {
	n := math.Sqrt(astrometry.GMSun / (el.A * el.A * el.A))
	m := astrometry.Norm2Pi(el.M*astrometry.Deg2Rad + n*(tjd-el.Epoch))
	ecl := orbitPosition(el.A, el.E, el.I*astrometry.Deg2Rad, el.Node*astrometry.Deg2Rad,
		el.ArgPeri*astrometry.Deg2Rad, m)
	return toEquator(ecl)
}

// Osculating elements at JD 2459000.5. Planetary perturbations are ignored,
// so accuracy degrades with distance from the epoch.
var minorElements = map[Body]Elements{
	Chiron: {Epoch: 2459000.5, A: 13.6480, E: 0.37893, I: 6.94960, Node: 209.2152, ArgPeri: 339.2536, M: 148.4350},
	Pholus: {Epoch: 2459000.5, A: 20.3067, E: 0.57303, I: 24.68250, Node: 119.3500, ArgPeri: 354.8613, M: 72.2614},
	Ceres:  {Epoch: 2459000.5, A: 2.7691652, E: 0.0760090, I: 10.59406704, Node: 80.30553156, ArgPeri: 73.59769469, M: 77.37209589},
	Pallas: {Epoch: 2459000.5, A: 2.7724659, E: 0.2299723, I: 34.83623, Node: 173.08006, ArgPeri: 310.04885, M: 59.69912},
	Juno:   {Epoch: 2459000.5, A: 2.6682, E: 0.25690, I: 12.99140, Node: 169.8513, ArgPeri: 248.0662, M: 125.3644},
	Vesta:  {Epoch: 2459000.5, A: 2.3615, E: 0.08872, I: 7.14182, Node: 103.8105, ArgPeri: 150.7285, M: 95.8618},
}

// MinorElements returns the orbit used for a minor body.
func MinorElements(b Body) (Elements, bool) {
	el, ok := minorElements[b]
	return el, ok
}

func minorPosition(b Body, tjd float64) r3.Vec {
	return minorElements[b].Position(tjd)
}
