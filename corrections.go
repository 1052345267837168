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

// lightTime iterates the retarded position of t as seen from obs. x0 is the
// state of t at req.tjd. It returns the state at tjd - dt together with dt.
//
// With speed, the velocity is corrected for the change of dt over one day:
// the light-time shift at t - 1 is estimated from x0 alone and the
// difference to the current shift is removed from the velocity.
func (e *Engine) lightTime(p Provider, req *request, t Target, x0, obs astrometry.State) (astrometry.State, float64, error) {
	niter := 2
	if p.Model() == ModelAnalytic {
		niter = 1
	}

	var shiftPrev r3.Vec
	if req.speed {
		xsv := r3.Sub(x0.Pos, x0.Vel)
		osv := r3.Sub(obs.Pos, obs.Vel)
		xsp := xsv
		for j := 0; j < niter; j++ {
			dt := r3.Norm(r3.Sub(xsp, osv)) * astrometry.LightTimePerAU
			xsp = r3.Sub(xsv, r3.Scale(dt, x0.Vel))
		}
		shiftPrev = r3.Sub(xsv, xsp)
	}

	xx, dt := x0, 0.0
	for j := 0; j < niter; j++ {
		dt = r3.Norm(r3.Sub(xx.Pos, obs.Pos)) * astrometry.LightTimePerAU
		var err error
		if xx, err = e.rawState(p, req.tjd-dt, t, req.speed, false); err != nil {
			return astrometry.State{}, 0, err
		}
	}

	if req.speed {
		shiftNow := r3.Sub(x0.Pos, xx.Pos)
		xx.Vel = r3.Sub(x0.Vel, r3.Sub(shiftNow, shiftPrev))
	}
	return xx, dt, nil
}

// meffTable is the fraction of the solar mass inside radius r (in solar
// radii) for an exponential density profile with scale 1/10.54.
var meffTable = [...]struct{ r, m float64 }{
	{1.000, 1.000000}, {0.900, 0.999328}, {0.800, 0.997085}, {0.700, 0.991397},
	{0.600, 0.977935}, {0.500, 0.947535}, {0.400, 0.882358}, {0.300, 0.752501},
	{0.250, 0.651784}, {0.200, 0.523063}, {0.150, 0.369179}, {0.100, 0.204308},
	{0.050, 0.062032}, {0.000, 0.000000},
}

// meff returns the effective deflecting mass for a ray passing the Sun's
// centre at r solar radii.
func meff(r float64) float64 {
	if r <= 0 {
		return 0
	}
	if r >= 1 {
		return 1
	}
	i := 0
	for meffTable[i].r > r {
		i++
	}
	hi, lo := meffTable[i-1], meffTable[i]
	f := (r - lo.r) / (hi.r - lo.r)
	return lo.m + f*(hi.m-lo.m)
}

// deflectOnce bends u (geocentric body) toward the Sun. e is the observer
// relative to the Sun, q the body relative to the Sun at the retarded time.
func deflectOnce(u, e, q r3.Vec) r3.Vec {
	ru, rq, re := r3.Norm(u), r3.Norm(q), r3.Norm(e)
	if ru == 0 || rq == 0 || re == 0 {
		return u
	}
	un, qn, en := r3.Scale(1/ru, u), r3.Scale(1/rq, q), r3.Scale(1/re, e)
	uq, ue, qe := r3.Dot(un, qn), r3.Dot(un, en), r3.Dot(qn, en)

	// inside the solar disk only when the body lies beyond the Sun
	fact := 1.0
	sina := math.Sqrt(math.Max(0, 1-ue*ue))
	if sinSun := astrometry.SunRadius / re; ue < 0 && sina < sinSun {
		fact = meff(sina / sinSun)
	}
	g1 := 2 * astrometry.HelioGM * fact / astrometry.CLight / astrometry.CLight / astrometry.AUMeters / re
	g2 := 1 + qe
	if g2 == 0 {
		return u
	}
	d := r3.Sub(r3.Scale(uq, en), r3.Scale(ue, qn))
	return r3.Scale(ru, r3.Add(un, r3.Scale(g1/g2, d)))
}

// deflect applies gravitational light deflection by the Sun to the
// geocentric state xx. obs and sun are barycentric at req.tjd and dt is the
// light time. The velocity receives the rate of the deflection, taken over
// DeflSpeedInterval.
func deflect(xx, obs, sun astrometry.State, dt float64, speed bool) astrometry.State {
	sunRet := r3.Sub(sun.Pos, r3.Scale(dt, sun.Vel))
	e := r3.Sub(obs.Pos, sun.Pos)
	q := r3.Sub(r3.Add(xx.Pos, obs.Pos), sunRet)
	out := astrometry.State{Pos: deflectOnce(xx.Pos, e, q), Vel: xx.Vel}
	if !speed {
		return out
	}
	h := astrometry.DeflSpeedInterval
	u2 := r3.Add(xx.Pos, r3.Scale(h, xx.Vel))
	e2 := r3.Add(e, r3.Scale(h, r3.Sub(obs.Vel, sun.Vel)))
	q2 := r3.Add(q, r3.Scale(h, r3.Add(xx.Vel, r3.Sub(obs.Vel, sun.Vel))))
	d1 := r3.Sub(out.Pos, xx.Pos)
	d2 := r3.Sub(deflectOnce(u2, e2, q2), u2)
	out.Vel = r3.Add(out.Vel, r3.Scale(1/h, r3.Sub(d2, d1)))
	return out
}

// aberrOnce applies relativistic aberration for an observer moving with v
// (in units of c).
func aberrOnce(u, v r3.Vec) r3.Vec {
	ru := r3.Norm(u)
	if ru == 0 {
		return u
	}
	b1 := math.Sqrt(1 - r3.Norm2(v))
	f1 := r3.Dot(u, v) / ru
	f2 := 1 + f1/(1+b1)
	return r3.Scale(1/(1+f1), r3.Add(r3.Scale(b1, u), r3.Scale(f2*ru, v)))
}

// aberrate applies annual aberration to xx for an observer with velocity
// obsVel (AU/day). The velocity receives the rate of the aberration shift
// over PlanSpeedInterval.
func aberrate(xx astrometry.State, obsVel r3.Vec, speed bool) astrometry.State {
	v := r3.Scale(astrometry.AUMeters/astrometry.CLight/86400, obsVel)
	out := astrometry.State{Pos: aberrOnce(xx.Pos, v), Vel: xx.Vel}
	if !speed {
		return out
	}
	h := astrometry.PlanSpeedInterval
	u := r3.Sub(xx.Pos, r3.Scale(h, xx.Vel))
	d1 := r3.Sub(out.Pos, xx.Pos)
	d2 := r3.Sub(aberrOnce(u, v), u)
	out.Vel = r3.Add(out.Vel, r3.Scale(1/h, r3.Sub(d1, d2)))
	return out
}
