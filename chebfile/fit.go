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
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source returns the position of a body at tjd, in AU, J2000 equatorial.
type Source func(tjd float64) (r3.Vec, error)

// FitSpec controls how one body is fitted.
type FitSpec struct {
	ID     int
	Flags  BodyFlag // FlagHeliocentric and FlagMoon are stored as given
	NCoe   int
	DSeg   float64
	Rotate bool // store in the mean orbital plane frame

	// Elements of the mean orbital plane for Rotate. When nil they are
	// derived from the source's angular momentum at both ends of the span;
	// lunar bodies must supply them.
	Elements *OrbitElements
}

// Fit samples src at Chebyshev nodes over [start, end] and returns the body
// ready for Write, plus the largest deviation (AU) found at check points
// midway between nodes.
func Fit(src Source, spec FitSpec, start, end float64) (BodyData, float64, error) {
	if spec.NCoe < 2 || spec.NCoe > maxCoeffs || !(spec.DSeg > 0) || !(end > start) {
		return BodyData{}, 0, fmt.Errorf("chebfile: bad fit spec for body %d", spec.ID)
	}
	moon := spec.Flags&FlagMoon != 0
	info := BodyInfo{ID: spec.ID, Flags: spec.Flags &^ (FlagRotated | FlagEllipse), NCoe: spec.NCoe, DSeg: spec.DSeg, TSeg0: start}

	if spec.Rotate {
		switch {
		case spec.Elements != nil:
			info.Elements = *spec.Elements
		case moon:
			return BodyData{}, 0, fmt.Errorf("chebfile: body %d: lunar rotation needs explicit elements", spec.ID)
		default:
			el, err := elementsFromSource(src, start, end)
			if err != nil {
				return BodyData{}, 0, err
			}
			info.Elements = el
		}
		info.Flags |= FlagRotated
	}

	nseg := int(math.Ceil((end-start)/spec.DSeg - 1e-9))
	nodes := chebyNodes(spec.NCoe)
	out := BodyData{Info: info, Segments: make([][3][]float64, nseg)}
	var maxErr float64

	for s := 0; s < nseg; s++ {
		t0 := start + float64(s)*spec.DSeg
		mid := t0 + spec.DSeg/2
		var ux, uy, uz r3.Vec
		if spec.Rotate {
			ux, uy, uz = Triad(info.Elements, mid, moon)
		}
		var samples [3][]float64
		for c := range samples {
			samples[c] = make([]float64, spec.NCoe)
		}
		for k, x := range nodes {
			p, err := src(mid + x*spec.DSeg/2)
			if err != nil {
				return BodyData{}, 0, fmt.Errorf("chebfile: body %d at %.6f: %w", spec.ID, mid+x*spec.DSeg/2, err)
			}
			if spec.Rotate {
				p = toOrbitFrame(p, ux, uy, uz, moon)
			}
			samples[0][k], samples[1][k], samples[2][k] = p.X, p.Y, p.Z
		}
		var coef [3][]float64
		for c := range coef {
			coef[c] = chebyFit(samples[c])
		}
		out.Segments[s] = coef

		// check between nodes, in the stored frame
		for k := 0; k+1 < len(nodes); k++ {
			x := (nodes[k] + nodes[k+1]) / 2
			p, err := src(mid + x*spec.DSeg/2)
			if err != nil {
				return BodyData{}, 0, fmt.Errorf("chebfile: body %d: %w", spec.ID, err)
			}
			if spec.Rotate {
				p = toOrbitFrame(p, ux, uy, uz, moon)
			}
			got, _ := evalSegment(&coef, x, false)
			d := r3.Norm(r3.Sub(p, r3.Vec{X: got[0], Y: got[1], Z: got[2]}))
			maxErr = math.Max(maxErr, d)
		}
	}
	out.Info.NSeg = nseg
	return out, maxErr, nil
}

// elementsFromSource estimates the mean orbital plane from the angular
// momentum at the ends of the span.
func elementsFromSource(src Source, start, end float64) (OrbitElements, error) {
	pole := func(t float64) (r3.Vec, error) {
		const h = 0.5
		a, err := src(t - h)
		if err != nil {
			return r3.Vec{}, err
		}
		b, err := src(t + h)
		if err != nil {
			return r3.Vec{}, err
		}
		p, err := src(t)
		if err != nil {
			return r3.Vec{}, err
		}
		return r3.Cross(p, r3.Scale(1/(2*h), r3.Sub(b, a))), nil
	}
	p0, err := pole(start + 1)
	if err != nil {
		return OrbitElements{}, err
	}
	p1, err := pole(end - 1)
	if err != nil {
		return OrbitElements{}, err
	}
	if r3.Norm(p0) == 0 || r3.Norm(p1) == 0 {
		return OrbitElements{}, fmt.Errorf("chebfile: degenerate orbit, no angular momentum")
	}
	return ElementsFromPoles(start+1, p0, end-1, p1), nil
}
