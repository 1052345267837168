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

	"gonum.org/v1/gonum/floats"
)

// chebyBasis fills t with T_0..T_{n-1} at x and, when dt is not nil, dt with
// their derivatives, using the same recurrences as the DE reader.
func chebyBasis(x float64, t, dt []float64) {
	n := len(t)
	if n == 0 {
		return
	}
	t[0] = 1
	if n > 1 {
		t[1] = x
	}
	twox := x + x
	for i := 2; i < n; i++ {
		t[i] = twox*t[i-1] - t[i-2]
	}
	if dt == nil {
		return
	}
	dt[0] = 0
	if n > 1 {
		dt[1] = 1
	}
	for i := 2; i < n; i++ {
		dt[i] = twox*dt[i-1] + 2*t[i-1] - dt[i-2]
	}
}

// evalSegment evaluates the three component series at the normalized time x
// in [-1, 1]. Velocities are d/dx; the caller scales them to days.
func evalSegment(coef *[3][]float64, x float64, speed bool) (pos, vel [3]float64) {
	n := len(coef[0])
	t := make([]float64, n)
	var dt []float64
	if speed {
		dt = make([]float64, n)
	}
	chebyBasis(x, t, dt)
	for i := 0; i < 3; i++ {
		pos[i] = floats.Dot(coef[i], t)
		if speed {
			vel[i] = floats.Dot(coef[i], dt)
		}
	}
	return pos, vel
}

// chebyNodes returns the n Chebyshev-Gauss nodes in [-1, 1], highest first.
func chebyNodes(n int) []float64 {
	x := make([]float64, n)
	for k := range x {
		x[k] = math.Cos(math.Pi * (float64(k) + 0.5) / float64(n))
	}
	return x
}

// chebyFit returns the n coefficients interpolating f sampled at chebyNodes(n).
func chebyFit(f []float64) []float64 {
	n := len(f)
	c := make([]float64, n)
	t := make([]float64, n)
	basis := make([][]float64, n)
	for k, x := range chebyNodes(n) {
		chebyBasis(x, t, nil)
		basis[k] = append([]float64(nil), t...)
	}
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		for k := 0; k < n; k++ {
			col[k] = basis[k][j]
		}
		c[j] = 2 * floats.Dot(f, col) / float64(n)
	}
	c[0] /= 2
	return c
}
