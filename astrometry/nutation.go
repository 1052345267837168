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

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NutationModel evaluates nutation in longitude and obliquity (radians).
type NutationModel interface {
	Nutate(tjd float64) (dpsi, deps float64)
}

// Epsilon is the obliquity of the ecliptic for an epoch.
type Epsilon struct {
	T   float64 // epoch, Julian day TT
	Eps float64 // obliquity, radians
	Sin float64
	Cos float64
}

// NewEpsilon computes the mean obliquity of tjd under model m.
func NewEpsilon(m PrecessionModel, tjd float64) Epsilon {
	eps := m.MeanObliquity(tjd)
	s, c := math.Sincos(eps)
	return Epsilon{T: tjd, Eps: eps, Sin: s, Cos: c}
}

// Nutation holds the nutation angles of an epoch and the rotation from the
// mean equator of date to the true equator of date.
type Nutation struct {
	T      float64 // epoch, Julian day TT
	DPsi   float64 // nutation in longitude, radians
	DEps   float64 // nutation in obliquity, radians
	Sin    float64 // sin(DEps)
	Cos    float64 // cos(DEps)
	Matrix Matrix  // mean equator of date → true equator of date
}

// NewNutation evaluates m at tjd and builds the nutation matrix around the
// mean obliquity eps.
func NewNutation(m NutationModel, tjd float64, eps Epsilon) Nutation {
	dpsi, deps := m.Nutate(tjd)
	s, c := math.Sincos(deps)
	mat := RotX(-(eps.Eps + deps)).Mul(RotZ(-dpsi)).Mul(RotX(eps.Eps))
	return Nutation{T: tjd, DPsi: dpsi, DEps: deps, Sin: s, Cos: c, Matrix: mat}
}

// Apply rotates a position from the mean to the true equator of date.
func (n Nutation) Apply(v r3.Vec) r3.Vec {
	return n.Matrix.Apply(v)
}

// Remove rotates a position from the true to the mean equator of date.
func (n Nutation) Remove(v r3.Vec) r3.Vec {
	return n.Matrix.ApplyT(v)
}

// NutateState applies nutation to a state. The velocity receives the rotated
// velocity plus the motion caused by the change of the matrix itself, sampled
// from prev, the nutation of tjd - NutSpeedInterval.
func NutateState(s State, cur, prev Nutation, speed bool) State {
	out := State{Pos: cur.Apply(s.Pos)}
	if !speed {
		return out
	}
	out.Vel = cur.Apply(s.Vel)
	x1 := prev.Apply(s.Pos)
	out.Vel = r3.Add(out.Vel, r3.Scale(1/NutSpeedInterval, r3.Sub(out.Pos, x1)))
	return out
}

// IAU1980 is the 1980 IAU nutation theory truncated to the 63 terms of
// Meeus, Astronomical Algorithms, table 22.A.
type IAU1980 struct{}

// nutationTerm holds multipliers of D, M, M', F, Ω and the sine/cosine
// coefficients in units of 0.0001".
type nutationTerm struct {
	d, m, mp, f, om int8
	s0, s1, c0, c1  float64
}

var nutationTerms = [...]nutationTerm{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{-2, 0, 0, 2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 0, 2, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{0, 0, 1, 0, 0, 712, 0.1, -7, 0},
	{-2, 1, 0, 2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 0, 2, 1, -386, -0.4, 200, 0},
	{0, 0, 1, 2, 2, -301, 0, 129, -0.1},
	{-2, -1, 0, 2, 2, 217, -0.5, -95, 0.3},
	{-2, 0, 1, 0, 0, -158, 0, 0, 0},
	{-2, 0, 0, 2, 1, 129, 0.1, -70, 0},
	{0, 0, -1, 2, 2, 123, 0, -53, 0},
	{2, 0, 0, 0, 0, 63, 0, 0, 0},
	{0, 0, 1, 0, 1, 63, 0.1, -33, 0},
	{2, 0, -1, 2, 2, -59, 0, 26, 0},
	{0, 0, -1, 0, 1, -58, -0.1, 32, 0},
	{0, 0, 1, 2, 1, -51, 0, 27, 0},
	{-2, 0, 2, 0, 0, 48, 0, 0, 0},
	{0, 0, -2, 2, 1, 46, 0, -24, 0},
	{2, 0, 0, 2, 2, -38, 0, 16, 0},
	{0, 0, 2, 2, 2, -31, 0, 13, 0},
	{0, 0, 2, 0, 0, 29, 0, 0, 0},
	{-2, 0, 1, 2, 2, 29, 0, -12, 0},
	{0, 0, 0, 2, 0, 26, 0, 0, 0},
	{-2, 0, 0, 2, 0, -22, 0, 0, 0},
	{0, 0, -1, 2, 1, 21, 0, -10, 0},
	{0, 2, 0, 0, 0, 17, -0.1, 0, 0},
	{2, 0, -1, 0, 1, 16, 0, -8, 0},
	{-2, 2, 0, 2, 2, -16, 0.1, 7, 0},
	{0, 1, 0, 0, 1, -15, 0, 9, 0},
	{-2, 0, 1, 0, 1, -13, 0, 7, 0},
	{0, -1, 0, 0, 1, -12, 0, 6, 0},
	{0, 0, 2, -2, 0, 11, 0, 0, 0},
	{2, 0, -1, 2, 1, -10, 0, 5, 0},
	{2, 0, 1, 2, 2, -8, 0, 3, 0},
	{0, 1, 0, 2, 2, 7, 0, -3, 0},
	{-2, 1, 1, 0, 0, -7, 0, 0, 0},
	{0, -1, 0, 2, 2, -7, 0, 3, 0},
	{2, 0, 0, 2, 1, -7, 0, 3, 0},
	{2, 0, 1, 0, 0, 6, 0, 0, 0},
	{-2, 0, 2, 2, 2, 6, 0, -3, 0},
	{-2, 0, 1, 2, 1, 6, 0, -3, 0},
	{2, 0, -2, 0, 1, -6, 0, 3, 0},
	{2, 0, 0, 0, 1, -6, 0, 3, 0},
	{0, -1, 1, 0, 0, 5, 0, 0, 0},
	{-2, -1, 0, 2, 1, -5, 0, 3, 0},
	{-2, 0, 0, 0, 1, -5, 0, 3, 0},
	{0, 0, 2, 2, 1, -5, 0, 3, 0},
	{-2, 0, 2, 0, 1, 4, 0, 0, 0},
	{-2, 1, 0, 2, 1, 4, 0, 0, 0},
	{0, 0, 1, -2, 0, 4, 0, 0, 0},
	{-1, 0, 1, 0, 0, -4, 0, 0, 0},
	{-2, 1, 0, 0, 0, -4, 0, 0, 0},
	{1, 0, 0, 0, 0, -4, 0, 0, 0},
	{0, 0, 1, 2, 0, 3, 0, 0, 0},
	{0, 0, -2, 2, 2, -3, 0, 0, 0},
	{-1, -1, 1, 0, 0, -3, 0, 0, 0},
	{0, 1, 1, 0, 0, -3, 0, 0, 0},
	{0, -1, 1, 2, 2, -3, 0, 0, 0},
	{2, -1, -1, 2, 2, -3, 0, 0, 0},
	{0, 0, 3, 2, 2, -3, 0, 0, 0},
	{2, -1, 0, 2, 2, -3, 0, 0, 0},
}

// Nutate implements NutationModel.
func (IAU1980) Nutate(tjd float64) (dpsi, deps float64) {
	t := Centuries(tjd)
	d := poly(t, 297.85036, 445267.111480, -0.0019142, 1.0/189474) * Deg2Rad
	m := poly(t, 357.52772, 35999.050340, -0.0001603, -1.0/300000) * Deg2Rad
	mp := poly(t, 134.96298, 477198.867398, 0.0086972, 1.0/56250) * Deg2Rad
	f := poly(t, 93.27191, 483202.017538, -0.0036825, 1.0/327270) * Deg2Rad
	om := poly(t, 125.04452, -1934.136261, 0.0020708, 1.0/450000) * Deg2Rad
	for _, n := range nutationTerms {
		arg := float64(n.d)*d + float64(n.m)*m + float64(n.mp)*mp + float64(n.f)*f + float64(n.om)*om
		s, c := math.Sincos(arg)
		dpsi += (n.s0 + n.s1*t) * s
		deps += (n.c0 + n.c1*t) * c
	}
	return dpsi * 0.0001 * Arcsec2Rad, deps * 0.0001 * Arcsec2Rad
}
