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

// State is a Cartesian position (AU) and velocity (AU/day).
type State struct {
	Pos r3.Vec
	Vel r3.Vec
}

// Add returns s + o.
func (s State) Add(o State) State {
	return State{Pos: r3.Add(s.Pos, o.Pos), Vel: r3.Add(s.Vel, o.Vel)}
}

// Sub returns s - o.
func (s State) Sub(o State) State {
	return State{Pos: r3.Sub(s.Pos, o.Pos), Vel: r3.Sub(s.Vel, o.Vel)}
}

// Scale returns f*s.
func (s State) Scale(f float64) State {
	return State{Pos: r3.Scale(f, s.Pos), Vel: r3.Scale(f, s.Vel)}
}

// Array flattens the state to {x, y, z, dx, dy, dz}.
func (s State) Array() [6]float64 {
	return [6]float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Vel.X, s.Vel.Y, s.Vel.Z}
}

// StateOf builds a State from a flattened {x, y, z, dx, dy, dz} array.
func StateOf(a [6]float64) State {
	return State{Pos: r3.Vec{X: a[0], Y: a[1], Z: a[2]}, Vel: r3.Vec{X: a[3], Y: a[4], Z: a[5]}}
}

// Matrix is a row-major 3x3 rotation matrix.
type Matrix [3][3]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotX rotates the coordinate frame by angle a about the x axis.
func RotX(a float64) Matrix {
	s, c := math.Sincos(a)
	return Matrix{{1, 0, 0}, {0, c, s}, {0, -s, c}}
}

// RotY rotates the coordinate frame by angle a about the y axis.
func RotY(a float64) Matrix {
	s, c := math.Sincos(a)
	return Matrix{{c, 0, -s}, {0, 1, 0}, {s, 0, c}}
}

// RotZ rotates the coordinate frame by angle a about the z axis.
func RotZ(a float64) Matrix {
	s, c := math.Sincos(a)
	return Matrix{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}
}

// Mul returns the product m·n (n applied first).
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

// T returns the transpose, which is the inverse for a rotation.
func (m Matrix) T() Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Apply returns m·v.
func (m Matrix) Apply(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// ApplyT returns mᵀ·v.
func (m Matrix) ApplyT(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}

// ApplyState rotates both position and velocity.
func (m Matrix) ApplyState(s State) State {
	return State{Pos: m.Apply(s.Pos), Vel: m.Apply(s.Vel)}
}

// EquatorToEcliptic rotates an equatorial state into the ecliptic defined by eps.
func EquatorToEcliptic(s State, eps float64) State {
	return RotX(eps).ApplyState(s)
}

// EclipticToEquator rotates an ecliptic state into the equator defined by eps.
func EclipticToEquator(s State, eps float64) State {
	return RotX(-eps).ApplyState(s)
}

// CartPol converts a position to longitude, latitude (radians) and distance.
func CartPol(v r3.Vec) (lon, lat, r float64) {
	r = r3.Norm(v)
	if r == 0 {
		return 0, 0, 0
	}
	rxy := math.Hypot(v.X, v.Y)
	if rxy == 0 {
		return 0, math.Copysign(math.Pi/2, v.Z), r
	}
	return Norm2Pi(math.Atan2(v.Y, v.X)), math.Atan2(v.Z, rxy), r
}

// PolCart converts longitude, latitude (radians) and distance to a position.
func PolCart(lon, lat, r float64) r3.Vec {
	sl, cl := math.Sincos(lon)
	sb, cb := math.Sincos(lat)
	return r3.Vec{X: r * cb * cl, Y: r * cb * sl, Z: r * sb}
}

// CartPolSpeed converts a state to {lon, lat, r, dlon, dlat, dr}.
func CartPolSpeed(s State) [6]float64 {
	var out [6]float64
	x, v := s.Pos, s.Vel
	r := r3.Norm(x)
	if r == 0 {
		return out
	}
	rxy2 := x.X*x.X + x.Y*x.Y
	out[0], out[1], out[2] = CartPol(x)
	out[5] = r3.Dot(x, v) / r
	if rxy2 == 0 {
		// pole: longitude and its rate are undefined
		return out
	}
	rxy := math.Sqrt(rxy2)
	out[3] = (x.X*v.Y - x.Y*v.X) / rxy2
	out[4] = (v.Z*rxy2 - x.Z*(x.X*v.X+x.Y*v.Y)) / (r * r * rxy)
	return out
}

// PolCartSpeed converts {lon, lat, r, dlon, dlat, dr} back to a state.
func PolCartSpeed(p [6]float64) State {
	sl, cl := math.Sincos(p[0])
	sb, cb := math.Sincos(p[1])
	r := p[2]
	pos := r3.Vec{X: r * cb * cl, Y: r * cb * sl, Z: r * sb}
	vel := r3.Vec{
		X: p[5]*cb*cl - r*sb*cl*p[4] - r*cb*sl*p[3],
		Y: p[5]*cb*sl - r*sb*sl*p[4] + r*cb*cl*p[3],
		Z: p[5]*sb + r*cb*p[4],
	}
	return State{Pos: pos, Vel: vel}
}
