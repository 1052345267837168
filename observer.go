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

// GeoPosition is a geodetic observer location.
type GeoPosition struct {
	Lon float64 // degrees, east positive
	Lat float64 // degrees, north positive
	Alt float64 // metres above the ellipsoid
}

// observerCache holds the geocentric offset of the observer for one instant.
type observerCache struct {
	tjd   float64
	noNut bool
	state astrometry.State
	valid bool
}

// topoOffset returns the geocentric state of the observer on the J2000
// equator, cached per instant.
func (e *Engine) topoOffset(tjd float64, noNut bool) astrometry.State {
	if c := &e.obs; c.valid && c.tjd == tjd && c.noNut == noNut {
		return c.state
	}
	st := e.geocentricObserver(tjd, noNut)
	e.obs = observerCache{tjd: tjd, noNut: noNut, state: st, valid: true}
	return st
}

// geocentricObserver converts the geodetic position to a geocentric state
// on the true equator of date, rotated by the sidereal time, then removes
// nutation and precession.
func (e *Engine) geocentricObserver(tjd float64, noNut bool) astrometry.State {
	eps := astrometry.NewEpsilon(e.prec, tjd)
	nut := astrometry.NewNutation(e.nutModel, tjd, eps)
	dpsi, epsTrue := nut.DPsi, eps.Eps+nut.DEps
	if noNut {
		dpsi, epsTrue = 0, eps.Eps
	}
	tjdUT := tjd - astrometry.DeltaT(tjd, e.tidalAcc)
	theta := astrometry.GAST(tjdUT, dpsi, epsTrue) + e.topo.Lon*astrometry.Deg2Rad

	sinPhi, cosPhi := math.Sincos(e.topo.Lat * astrometry.Deg2Rad)
	f := 1 - astrometry.EarthFlattening
	cc := 1 / math.Sqrt(cosPhi*cosPhi+f*f*sinPhi*sinPhi)
	ss := f * f * cc
	rxy := (astrometry.EarthRadius*cc + e.topo.Alt) * cosPhi / astrometry.AUMeters
	z := (astrometry.EarthRadius*ss + e.topo.Alt) * sinPhi / astrometry.AUMeters

	sinT, cosT := math.Sincos(theta)
	pos := r3.Vec{X: rxy * cosT, Y: rxy * sinT, Z: z}
	w := astrometry.EarthRotation * 86400
	vel := r3.Vec{X: -w * pos.Y, Y: w * pos.X}
	if !noNut {
		pos, vel = nut.Remove(pos), nut.Remove(vel)
	}
	return astrometry.State{
		Pos: astrometry.Precess(e.prec, pos, tjd, astrometry.ToJ2000),
		Vel: astrometry.Precess(e.prec, vel, tjd, astrometry.ToJ2000),
	}
}

// observer returns the barycentric state of the point the body is seen
// from: the Sun for heliocentric requests, the origin for barycentric ones,
// otherwise the Earth plus the topocentric offset when requested.
func (e *Engine) observer(req *request, earth, sun astrometry.State, tjd float64) astrometry.State {
	switch {
	case req.flags.Has(FlagHelCtr):
		return sun
	case req.flags.Has(FlagBaryCtr):
		return astrometry.State{}
	case req.flags.Has(FlagTopoCtr):
		if tjd == req.tjd {
			return earth.Add(e.topoOffset(tjd, req.flags.Has(FlagNoNut)))
		}
		return earth.Add(e.geocentricObserver(tjd, req.flags.Has(FlagNoNut)))
	}
	return earth
}
