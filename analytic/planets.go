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

// keplerElements holds a planet's mean elements at J2000 (index 0) and their
// rates per Julian century (index 1), in AU and degrees, followed by the
// extra terms of the mean anomaly for the outer planets:
// M += b*T^2 + c*cos(f*T) + s*sin(f*T).
type keplerElements struct {
	a, e, incl, meanLon, periLon, node [2]float64
	b, c, s, f                         float64
}

// Valid from 3000 BCE to 3000 CE, referred to the J2000 ecliptic and equinox.
var planetElements = map[Body]keplerElements{
	Mercury: {
		a:       [2]float64{0.38709843, 0.00000000},
		e:       [2]float64{0.20563661, 0.00002123},
		incl:    [2]float64{7.00559432, -0.00590158},
		meanLon: [2]float64{252.25166724, 149472.67486623},
		periLon: [2]float64{77.45771895, 0.15940013},
		node:    [2]float64{48.33961819, -0.12214182},
	},
	Venus: {
		a:       [2]float64{0.72332102, -0.00000026},
		e:       [2]float64{0.00676399, -0.00005107},
		incl:    [2]float64{3.39777545, 0.00043494},
		meanLon: [2]float64{181.97970850, 58517.81560260},
		periLon: [2]float64{131.76755713, 0.05679648},
		node:    [2]float64{76.67261496, -0.27274174},
	},
	EMB: {
		a:       [2]float64{1.00000018, -0.00000003},
		e:       [2]float64{0.01673163, -0.00003661},
		incl:    [2]float64{-0.00054346, -0.01337178},
		meanLon: [2]float64{100.46691572, 35999.37306329},
		periLon: [2]float64{102.93005885, 0.31795260},
		node:    [2]float64{-5.11260389, -0.24123856},
	},
	Mars: {
		a:       [2]float64{1.52371243, 0.00000097},
		e:       [2]float64{0.09336511, 0.00009149},
		incl:    [2]float64{1.85181869, -0.00724757},
		meanLon: [2]float64{-4.56813164, 19140.29934243},
		periLon: [2]float64{-23.91744784, 0.45223625},
		node:    [2]float64{49.71320984, -0.26852431},
	},
	Jupiter: {
		a:       [2]float64{5.20248019, -0.00002864},
		e:       [2]float64{0.04853590, 0.00018026},
		incl:    [2]float64{1.29861416, -0.00322699},
		meanLon: [2]float64{34.33479152, 3034.90371757},
		periLon: [2]float64{14.27495244, 0.18199196},
		node:    [2]float64{100.29282654, 0.13024619},
		b:       -0.00012452, c: 0.06064060, s: -0.35635438, f: 38.35125000,
	},
	Saturn: {
		a:       [2]float64{9.54149883, -0.00003065},
		e:       [2]float64{0.05550825, -0.00032044},
		incl:    [2]float64{2.49424102, 0.00451969},
		meanLon: [2]float64{50.07571329, 1222.11494724},
		periLon: [2]float64{92.86136063, 0.54179478},
		node:    [2]float64{113.63998702, -0.25015002},
		b:       0.00025899, c: -0.13434469, s: 0.87320147, f: 38.35125000,
	},
	Uranus: {
		a:       [2]float64{19.18797948, -0.00020455},
		e:       [2]float64{0.04685740, -0.00001550},
		incl:    [2]float64{0.77298127, -0.00180155},
		meanLon: [2]float64{314.20276625, 428.49512595},
		periLon: [2]float64{172.43404441, 0.09266985},
		node:    [2]float64{73.96250215, 0.05739699},
		b:       0.00058331, c: -0.97731848, s: 0.17689245, f: 7.67025000,
	},
	Neptune: {
		a:       [2]float64{30.06952752, 0.00006447},
		e:       [2]float64{0.00895439, 0.00000818},
		incl:    [2]float64{1.77005520, 0.00022400},
		meanLon: [2]float64{304.22289287, 218.46515314},
		periLon: [2]float64{46.68158724, 0.01009938},
		node:    [2]float64{131.78635853, -0.00606302},
		b:       -0.00041348, c: 0.68346318, s: -0.10162547, f: 7.67025000,
	},
	Pluto: {
		a:       [2]float64{39.48686035, 0.00449751},
		e:       [2]float64{0.24885238, 0.00006016},
		incl:    [2]float64{17.14104260, 0.00000501},
		meanLon: [2]float64{238.96535011, 145.18042903},
		periLon: [2]float64{224.09702598, -0.00968827},
		node:    [2]float64{110.30167986, -0.00809981},
		b:       -0.01262724,
	},
}

// eps2000 rotates the J2000 ecliptic onto the J2000 equator.
var eps2000 = astrometry.IAU1976{}.MeanObliquity(astrometry.J2000)

func planetPosition(b Body, tjd float64) r3.Vec {
	el, ok := planetElements[b]
	if !ok {
		return r3.Vec{}
	}
	t := astrometry.Centuries(tjd)
	at := func(v [2]float64) float64 { return v[0] + v[1]*t }

	a, e := at(el.a), at(el.e)
	incl := at(el.incl) * astrometry.Deg2Rad
	meanLon, periLon := at(el.meanLon), at(el.periLon)
	node := at(el.node) * astrometry.Deg2Rad
	m := meanLon - periLon + el.b*t*t
	if el.f != 0 {
		ft := el.f * t * astrometry.Deg2Rad
		m += el.c*math.Cos(ft) + el.s*math.Sin(ft)
	}
	m = astrometry.Deg2Rad * astrometry.Norm360(m+180)
	m -= math.Pi
	argPeri := periLon*astrometry.Deg2Rad - node

	ecl := orbitPosition(a, e, incl, node, argPeri, m)
	return toEquator(ecl)
}

// orbitPosition returns the ecliptic position of a body on a Keplerian orbit.
// Angles are radians; m is the mean anomaly.
func orbitPosition(a, e, incl, node, argPeri, m float64) r3.Vec {
	ea := eccentricAnomaly(m, e)
	se, ce := math.Sincos(ea)
	xp := a * (ce - e)
	yp := a * math.Sqrt(1-e*e) * se

	sw, cw := math.Sincos(argPeri)
	sn, cn := math.Sincos(node)
	si, ci := math.Sincos(incl)
	return r3.Vec{
		X: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		Y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		Z: sw*si*xp + cw*si*yp,
	}
}

// eccentricAnomaly solves Kepler's equation by Newton iteration.
func eccentricAnomaly(m, e float64) float64 {
	ea := m + e*math.Sin(m)
	for i := 0; i < 30; i++ {
		d := (m - (ea - e*math.Sin(ea))) / (1 - e*math.Cos(ea))
		ea += d
		if math.Abs(d) < 1e-14 {
			break
		}
	}
	return ea
}

func toEquator(ecl r3.Vec) r3.Vec {
	return astrometry.RotX(-eps2000).Apply(ecl)
}
