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
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

// request carries one Calc call through the pipeline.
type request struct {
	tjd      float64
	body     Body
	flags    Flag // normalized
	speed    bool
	hint     Model            // model of the body's last result with the same flags
	raw      astrometry.State // raw state of the body at tjd, kept in the cache entry
	warnings []string
}

func (b physicalBody) compute(e *Engine, req *request) (Result, error) {
	f := req.flags
	geocentric := !f.Has(FlagHelCtr) && !f.Has(FlagBaryCtr)
	if (b.target == TargetSun && f.Has(FlagHelCtr)) || (b.target == TargetEarth && geocentric) {
		m := e.startModel(req, b.target)
		return Result{Model: m, Flags: f&^modelMask | m.Flag()}, nil
	}
	return e.computeApparent(req, b.target)
}

func (b asteroidBody) compute(e *Engine, req *request) (Result, error) {
	return e.computeApparent(req, b.target)
}

// computeApparent runs the correction chain for a body with a raw state:
// center shift and observer, light time, deflection, aberration, frame
// bias, precession, nutation, sidereal projection, output vectors.
func (e *Engine) computeApparent(req *request, t Target) (Result, error) {
	m, err := e.resolve(req, t)
	if err != nil {
		return Result{}, err
	}
	p := e.provider(m)
	tjd, f, speed := req.tjd, req.flags, req.speed

	// resolve left all three in the raw cache.
	x0, err := e.rawState(p, tjd, t, speed, true)
	if err != nil {
		return Result{}, err
	}
	earth, err := e.rawState(p, tjd, TargetEarth, true, true)
	if err != nil {
		return Result{}, err
	}
	sun, err := e.rawState(p, tjd, TargetSun, true, true)
	if err != nil {
		return Result{}, err
	}
	req.raw = x0
	obs := e.observer(req, earth, sun, tjd)

	xx, dt := x0, 0.0
	if !f.Has(FlagTruePos) {
		if xx, dt, err = e.lightTime(p, req, t, x0, obs); err != nil {
			return Result{}, err
		}
	}
	xx = xx.Sub(obs)

	if !f.Has(FlagNoGDefl) {
		xx = deflect(xx, obs, sun, dt, speed)
	}
	if !f.Has(FlagNoAberr) {
		xx = aberrate(xx, obs.Vel, speed)
		if speed && dt > 0 {
			// the observer velocity changed during the light time
			earthDt, err := e.rawState(p, tjd-dt, TargetEarth, true, false)
			if err != nil {
				return Result{}, err
			}
			obsDt := e.observer(req, earthDt, sun, tjd-dt)
			xx.Vel = r3.Add(xx.Vel, r3.Sub(obs.Vel, obsDt.Vel))
		}
	}
	if p.FrameBias() && !f.Has(FlagICRS) {
		xx = astrometry.ApplyBias(xx, false)
	}

	j2000 := xx
	res := e.finish(req, e.toDate(req, xx), j2000)
	res.Model, res.Flags = m, f&^modelMask|m.Flag()
	res.LightTime = dt
	return res, nil
}

// toDate precesses a J2000 equatorial state to the mean equator of date and
// applies nutation, as the flags ask.
func (e *Engine) toDate(req *request, x astrometry.State) astrometry.State {
	if req.flags.Has(FlagJ2000) {
		return x
	}
	tjd := req.tjd
	if req.speed {
		x = astrometry.PrecessState(e.prec, x, tjd, astrometry.FromJ2000)
	} else {
		x = astrometry.State{Pos: astrometry.Precess(e.prec, x.Pos, tjd, astrometry.FromJ2000)}
	}
	if !req.flags.Has(FlagNoNut) {
		_, nut, prev := e.frames(tjd)
		x = astrometry.NutateState(x, nut, prev, req.speed)
	}
	return x
}

// obliquity returns the obliquity matching the equator of the output:
// J2000 mean, mean of date, or true of date.
func (e *Engine) obliquity(req *request) float64 {
	if req.flags.Has(FlagJ2000) {
		return e.eps2000.Eps
	}
	eps, nut, _ := e.frames(req.tjd)
	if req.flags.Has(FlagNoNut) {
		return eps.Eps
	}
	return eps.Eps + nut.DEps
}

// finish derives the ecliptic vectors from the final equatorial state and
// applies the sidereal projection.
func (e *Engine) finish(req *request, equ, j2000 astrometry.State) Result {
	ecl := astrometry.EquatorToEcliptic(equ, e.obliquity(req))
	res := newResult(equ, ecl)
	if req.flags.Has(FlagSidereal) {
		e.applySidereal(req, &res, j2000)
	}
	if !req.speed {
		res.zeroVelocity()
	}
	return res
}

// frames returns the mean obliquity and the nutation of tjd, and the
// nutation of tjd - NutSpeedInterval.
func (e *Engine) frames(tjd float64) (astrometry.Epsilon, astrometry.Nutation, astrometry.Nutation) {
	if !e.framesValid || e.eps.T != tjd {
		e.eps = astrometry.NewEpsilon(e.prec, tjd)
		e.nut = astrometry.NewNutation(e.nutModel, tjd, e.eps)
		prev := tjd - astrometry.NutSpeedInterval
		e.nutPrev = astrometry.NewNutation(e.nutModel, prev, astrometry.NewEpsilon(e.prec, prev))
		e.framesValid = true
	}
	return e.eps, e.nut, e.nutPrev
}
