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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

// eps2000 is the mean obliquity of J2000 used for lunar files.
var eps2000 = astrometry.IAU1976{}.MeanObliquity(astrometry.J2000)

// planeAt returns the equinoctial (q, p) pair of the mean orbital plane at t.
func planeAt(e OrbitElements, t float64, moon bool) (q, p float64) {
	tdiff := (t - e.Epoch) / astrometry.DaysPerMillennium
	if moon {
		amp := e.Q + tdiff*e.DQ
		dn := math.Mod(e.P+tdiff*e.DP, astrometry.TwoPi)
		return amp * math.Cos(dn), amp * math.Sin(dn)
	}
	return e.Q + tdiff*e.DQ, e.P + tdiff*e.DP
}

// Triad returns the orthonormal frame of the mean orbital plane at t: the
// origin-of-longitude axis, the in-plane axis 90 degrees ahead, and the
// orbital pole, in the frame the elements are referred to.
func Triad(e OrbitElements, t float64, moon bool) (ux, uy, uz r3.Vec) {
	q, p := planeAt(e, t, moon)
	k := 1.0 / (1.0 + q*q + p*p)
	uz = r3.Vec{X: 2 * p * k, Y: -2 * q * k, Z: (1 - q*q - p*p) * k}
	ux = r3.Vec{X: (1 + q*q - p*p) * k, Y: 2 * q * p * k, Z: -2 * p * k}
	uy = r3.Cross(uz, ux)
	return ux, uy, uz
}

// Reconstruct converts the coefficients of one rotated segment, whose
// midpoint is tMid, into J2000 equatorial coefficients in place. ref holds the
// reference ellipse coefficients (x then y) when the body has FlagEllipse.
func Reconstruct(coef *[3][]float64, ref *[2][]float64, e OrbitElements, tMid float64, moon bool) {
	n := len(coef[0])
	if ref != nil {
		tdiff := (tMid - e.Epoch) / astrometry.DaysPerMillennium
		som, com := math.Sincos(math.Mod(e.Peri+tdiff*e.DPeri, astrometry.TwoPi))
		for i := 0; i < n; i++ {
			rx, ry := ref[0][i], ref[1][i]
			coef[0][i] += com*rx - som*ry
			coef[1][i] += com*ry + som*rx
		}
	}
	ux, uy, uz := Triad(e, tMid, moon)
	toEquator := astrometry.RotX(-eps2000)
	for i := 0; i < n; i++ {
		x := r3.Vec{X: coef[0][i], Y: coef[1][i], Z: coef[2][i]}
		v := r3.Add(r3.Add(r3.Scale(x.X, ux), r3.Scale(x.Y, uy)), r3.Scale(x.Z, uz))
		if moon {
			v = toEquator.Apply(v)
		}
		coef[0][i], coef[1][i], coef[2][i] = v.X, v.Y, v.Z
	}
}

// toOrbitFrame is the inverse of the triad rotation in Reconstruct, used
// when fitting rotated bodies.
func toOrbitFrame(v r3.Vec, ux, uy, uz r3.Vec, moon bool) r3.Vec {
	if moon {
		v = astrometry.RotX(eps2000).Apply(v)
	}
	return r3.Vec{X: r3.Dot(v, ux), Y: r3.Dot(v, uy), Z: r3.Dot(v, uz)}
}

// ElementsFromPoles derives non-lunar OrbitElements from the orbital pole
// (angular momentum direction) at two epochs, with a linear rate between them.
func ElementsFromPoles(t0 float64, pole0 r3.Vec, t1 float64, pole1 r3.Vec) OrbitElements {
	q0, p0 := poleToQP(pole0)
	q1, p1 := poleToQP(pole1)
	e := OrbitElements{Epoch: t0, Q: q0, P: p0}
	if dt := (t1 - t0) / astrometry.DaysPerMillennium; dt != 0 {
		e.DQ = (q1 - q0) / dt
		e.DP = (p1 - p0) / dt
	}
	return e
}

func poleToQP(pole r3.Vec) (q, p float64) {
	u := r3.Unit(pole)
	return -u.Y / (1 + u.Z), u.X / (1 + u.Z)
}
