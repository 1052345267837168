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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

const (
	moonMeanDist  = 384400.0 / astrometry.AUKm // AU
	moonMeanEcc   = 0.054900489
	moonMeanIncl  = 5.1453964 * astrometry.Deg2Rad
	meanApogeeFac = 1 + moonMeanEcc
)

// meanNodeLon returns the longitude of the mean ascending node of the Moon
// on the mean ecliptic of date, radians (Meeus 47.7).
func meanNodeLon(tjd float64) float64 {
	t := astrometry.Centuries(tjd)
	deg := 125.0445479 - 1934.1362891*t + 0.0020754*t*t + t*t*t/467441 - t*t*t*t/60616000
	return astrometry.Norm2Pi(deg * astrometry.Deg2Rad)
}

// meanPerigeeLon returns the longitude of the mean lunar perigee, radians
// (Meeus 47.7).
func meanPerigeeLon(tjd float64) float64 {
	t := astrometry.Centuries(tjd)
	deg := 83.3532465 + 4069.0137287*t - 0.0103200*t*t - t*t*t/80053 + t*t*t*t/18999000
	return astrometry.Norm2Pi(deg * astrometry.Deg2Rad)
}

// meanNode returns the mean node on the mean ecliptic of date.
func meanNode(tjd float64) r3.Vec {
	return astrometry.PolCart(meanNodeLon(tjd), 0, moonMeanDist)
}

// meanApogee returns the mean apogee on the mean ecliptic of date. Its
// longitude along the orbit is projected onto the ecliptic through the mean
// inclination.
func meanApogee(tjd float64) r3.Vec {
	node := meanNodeLon(tjd)
	u := meanPerigeeLon(tjd) + math.Pi - node
	su, cu := math.Sincos(u)
	si, ci := math.Sincos(moonMeanIncl)
	lon := node + math.Atan2(su*ci, cu)
	lat := math.Asin(su * si)
	return astrometry.PolCart(lon, lat, moonMeanDist*meanApogeeFac)
}

// geocentricMoon returns the geocentric Moon of tjd on the mean ecliptic of
// date, from p.
func (e *Engine) geocentricMoon(p Provider, tjd float64) (astrometry.State, error) {
	moon, err := e.rawState(p, tjd, TargetMoon, true, false)
	if err != nil {
		return astrometry.State{}, err
	}
	earth, err := e.rawState(p, tjd, TargetEarth, true, false)
	if err != nil {
		return astrometry.State{}, err
	}
	geo := moon.Sub(earth)
	equ := astrometry.PrecessionMatrix(e.prec, tjd).ApplyState(geo)
	return astrometry.EquatorToEcliptic(equ, e.prec.MeanObliquity(tjd)), nil
}

// oscNode returns the ascending node of the osculating lunar orbit.
func oscNode(s astrometry.State) r3.Vec {
	mu := astrometry.GMEarthMoon
	h := r3.Cross(s.Pos, s.Vel)
	n := r3.Vec{X: -h.Y, Y: h.X}
	nn := r3.Norm(n)
	if nn == 0 {
		return r3.Vec{}
	}
	n = r3.Scale(1/nn, n)
	ev := r3.Sub(r3.Scale(1/mu, r3.Cross(s.Vel, h)), r3.Scale(1/r3.Norm(s.Pos), s.Pos))
	p := r3.Norm2(h) / mu
	return r3.Scale(p/(1+r3.Dot(ev, n)), n)
}

// oscApogee returns the apogee of the osculating lunar orbit.
func oscApogee(s astrometry.State) r3.Vec {
	mu := astrometry.GMEarthMoon
	r := r3.Norm(s.Pos)
	h := r3.Cross(s.Pos, s.Vel)
	ev := r3.Sub(r3.Scale(1/mu, r3.Cross(s.Vel, h)), r3.Scale(1/r, s.Pos))
	ecc := r3.Norm(ev)
	a := 1 / (2/r - r3.Norm2(s.Vel)/mu)
	if ecc == 0 {
		return r3.Vec{}
	}
	return r3.Scale(-a*(1+ecc)/ecc, ev)
}

// lunarPointAt evaluates the point on the mean ecliptic of date.
func (e *Engine) lunarPointAt(pt lunarPoint, p Provider, tjd float64) (r3.Vec, error) {
	switch pt {
	case pointMeanNode:
		return meanNode(tjd), nil
	case pointMeanApogee:
		return meanApogee(tjd), nil
	}
	geo, err := e.geocentricMoon(p, tjd)
	if err != nil {
		return r3.Vec{}, err
	}
	if pt == pointTrueNode {
		return oscNode(geo), nil
	}
	return oscApogee(geo), nil
}

// lunarPointState evaluates the point at tjd - h, tjd and tjd + h; the
// velocity is the central difference. h is widened when p derives the Moon
// velocity numerically.
func (e *Engine) lunarPointState(pt lunarPoint, p Provider, tjd float64, speed bool) (astrometry.State, error) {
	x, err := e.lunarPointAt(pt, p, tjd)
	if err != nil {
		return astrometry.State{}, err
	}
	st := astrometry.State{Pos: x}
	if !speed {
		return st, nil
	}
	h := astrometry.NodeCalcInterval
	if p != nil && p.Model() == ModelAnalytic {
		h = astrometry.NodeNumericInterval
	}
	x0, err := e.lunarPointAt(pt, p, tjd-h)
	if err != nil {
		return astrometry.State{}, err
	}
	x2, err := e.lunarPointAt(pt, p, tjd+h)
	if err != nil {
		return astrometry.State{}, err
	}
	st.Vel = r3.Scale(1/(2*h), r3.Sub(x2, x0))
	return st, nil
}

func (l lunarPointBody) compute(e *Engine, req *request) (Result, error) {
	if req.flags.Has(FlagHelCtr) || req.flags.Has(FlagBaryCtr) {
		m := e.startModel(req, TargetMoon)
		return Result{Model: m, Flags: req.flags&^modelMask | m.Flag()}, nil
	}

	var (
		m   = e.startModel(req, TargetMoon)
		p   Provider
		err error
	)
	if l.point == pointTrueNode || l.point == pointOscuApogee {
		if m, err = e.resolve(req, TargetMoon); err != nil {
			return Result{}, err
		}
		p = e.provider(m)
	}
	ecl, err := e.lunarPointState(l.point, p, req.tjd, req.speed)
	if err != nil {
		return Result{}, err
	}

	tjd := req.tjd
	equ := astrometry.EclipticToEquator(ecl, e.prec.MeanObliquity(tjd))
	j2000 := astrometry.PrecessionMatrix(e.prec, tjd).T().ApplyState(equ)
	if req.flags.Has(FlagJ2000) {
		equ = j2000
	} else if !req.flags.Has(FlagNoNut) {
		_, nut, prev := e.frames(tjd)
		equ = astrometry.NutateState(equ, nut, prev, req.speed)
	}
	res := e.finish(req, equ, j2000)
	res.Model, res.Flags = m, req.flags&^modelMask|m.Flag()
	return res, nil
}
