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
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

// SidMode selects a sidereal zodiac. Numbers follow the Swiss Ephemeris
// SE_SIDM_* constants.
type SidMode int

const (
	SidFaganBradley SidMode = 0
	SidLahiri       SidMode = 1
	SidRaman        SidMode = 3
	SidKrishnamurti SidMode = 5
	SidDjwhalKhul   SidMode = 6
	SidYukteshwar   SidMode = 7
	SidJNBhasin     SidMode = 8
	SidJ2000        SidMode = 18
	SidJ1900        SidMode = 19
	SidB1950        SidMode = 20
	SidUser         SidMode = 255 // T0 and AyanT0 supplied by the caller
)

type ayanamsha struct {
	name   string
	t0     float64 // Julian day TT
	ayanT0 float64 // degrees
}

var sidModes = map[SidMode]ayanamsha{
	SidFaganBradley: {"fagan_bradley", 2433282.42346, 24.042044444},
	SidLahiri:       {"lahiri", 2435553.5, 23.245524743},
	SidRaman:        {"raman", astrometry.J1900, 21.014},
	SidKrishnamurti: {"krishnamurti", astrometry.J1900, 22.363606},
	SidDjwhalKhul:   {"djwhal_khul", astrometry.J1900, 28.359679},
	SidYukteshwar:   {"yukteshwar", astrometry.J1900, 22.478803},
	SidJNBhasin:     {"jn_bhasin", astrometry.J1900, 22.762137},
	SidJ2000:        {"j2000", astrometry.J2000, 0},
	SidJ1900:        {"j1900", astrometry.J1900, 0},
	SidB1950:        {"b1950", 2433282.42346, 0},
}

func (m SidMode) String() string {
	if m == SidUser {
		return "user"
	}
	if a, ok := sidModes[m]; ok {
		return a.name
	}
	return fmt.Sprintf("SidMode(%d)", int(m))
}

// ParseSidMode accepts a mode name such as "lahiri" or "user".
func ParseSidMode(s string) (SidMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "user" {
		return SidUser, nil
	}
	for m, a := range sidModes {
		if a.name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown sidereal mode %q", s)
}

// Projection selects how sidereal longitudes are derived.
type Projection int

const (
	// ProjTraditional subtracts the ayanamsha of date from the tropical
	// ecliptic longitude.
	ProjTraditional Projection = iota
	// ProjEclipticT0 projects the J2000 position onto the ecliptic of the
	// reference epoch.
	ProjEclipticT0
	// ProjSolarSystemPlane projects onto the invariable plane of the solar
	// system and measures from the equinox of the reference epoch.
	ProjSolarSystemPlane
)

var projectionNames = [...]string{"traditional", "ecliptic_t0", "solar_system_plane"}

func (p Projection) String() string {
	if p >= 0 && int(p) < len(projectionNames) {
		return projectionNames[p]
	}
	return fmt.Sprintf("Projection(%d)", int(p))
}

// ParseProjection accepts a projection name.
func ParseProjection(s string) (Projection, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProjTraditional, nil
	}
	for i, n := range projectionNames {
		if n == s {
			return Projection(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sidereal projection %q", s)
}

// SiderealConfig describes the sidereal zodiac used with FlagSidereal.
// T0 and AyanT0 are only read for SidUser; catalog modes use their own.
type SiderealConfig struct {
	Mode       SidMode
	T0         float64 // reference epoch, Julian day TT
	AyanT0     float64 // ayanamsha at T0, degrees
	Projection Projection
}

// DefaultSidereal is Fagan/Bradley with the traditional projection.
var DefaultSidereal = SiderealConfig{Mode: SidFaganBradley}

// resolved returns the configuration with T0 and AyanT0 taken from the
// catalog.
func (c SiderealConfig) resolved() (SiderealConfig, error) {
	if c.Projection < ProjTraditional || c.Projection > ProjSolarSystemPlane {
		return c, configError("sidereal", -1, "unknown projection %d", int(c.Projection))
	}
	if c.Mode == SidUser {
		if c.T0 == 0 {
			return c, configError("sidereal", -1, "user mode needs a reference epoch")
		}
		return c, nil
	}
	a, ok := sidModes[c.Mode]
	if !ok {
		return c, configError("sidereal", -1, "unknown sidereal mode %d", int(c.Mode))
	}
	c.T0, c.AyanT0 = a.t0, a.ayanT0
	return c, nil
}

// Invariable plane of the solar system, referred to the J2000 ecliptic.
const (
	ssyPlaneNode = 107.582569 * astrometry.Deg2Rad
	ssyPlaneIncl = 1.578701 * astrometry.Deg2Rad
)

// meanAyanamsha returns the ayanamsha of tjd in radians without nutation.
func (e *Engine) meanAyanamsha(tjd float64) float64 {
	s := e.sid
	gp := e.prec.GeneralPrecession(tjd) - e.prec.GeneralPrecession(s.T0)
	return s.AyanT0*astrometry.Deg2Rad + gp
}

// Ayanamsha returns the ayanamsha of tjd (TT) in degrees for the current
// sidereal configuration. Nutation in longitude is included unless flags
// has FlagNoNut.
func (e *Engine) Ayanamsha(tjd float64, flags Flag) float64 {
	a := e.meanAyanamsha(tjd)
	if !flags.Has(FlagNoNut) {
		_, nut, _ := e.frames(tjd)
		a += nut.DPsi
	}
	return astrometry.Norm360(a * astrometry.Rad2Deg)
}

// applySidereal converts the ecliptic vectors of res to the sidereal
// zodiac. j2000 is the state on the J2000 equator before precession.
func (e *Engine) applySidereal(req *request, res *Result, j2000 astrometry.State) {
	switch e.sid.Projection {
	case ProjEclipticT0:
		e.siderealEclipticT0(res, j2000)
	case ProjSolarSystemPlane:
		e.siderealSolarSystemPlane(res, j2000)
	default:
		e.siderealTraditional(req, res)
	}
}

func (e *Engine) siderealTraditional(req *request, res *Result) {
	tjd := req.tjd
	h := astrometry.NutSpeedInterval
	ayan := e.meanAyanamsha(tjd)
	rate := (ayan - e.meanAyanamsha(tjd-h)) / h
	if !req.flags.Has(FlagNoNut) {
		_, nut, prev := e.frames(tjd)
		ayan += nut.DPsi
		rate += (nut.DPsi - prev.DPsi) / h
	}
	pol := res.EclipticPolar
	pol[0] = astrometry.Norm2Pi(pol[0] - ayan)
	pol[3] -= rate
	res.EclipticPolar = pol
	res.EclipticCart = astrometry.PolCartSpeed(pol).Array()
}

// siderealEclipticT0 rotates the J2000 state to the fixed equator of T0,
// then to its ecliptic. The equatorial vectors become those of T0.
func (e *Engine) siderealEclipticT0(res *Result, j2000 astrometry.State) {
	t0 := e.sid.T0
	equ := astrometry.PrecessionMatrix(e.prec, t0).ApplyState(j2000)
	ecl := astrometry.EquatorToEcliptic(equ, e.prec.MeanObliquity(t0))
	pol := astrometry.CartPolSpeed(ecl)
	pol[0] = astrometry.Norm2Pi(pol[0] - e.sid.AyanT0*astrometry.Deg2Rad)
	res.EclipticPolar = pol
	res.EclipticCart = astrometry.PolCartSpeed(pol).Array()
	res.EquatorialCart = equ.Array()
	res.EquatorialPolar = astrometry.CartPolSpeed(equ)
}

// toInvariablePlane rotates a J2000 ecliptic state into the invariable plane
// with its node as origin of longitude.
func toInvariablePlane(s astrometry.State) astrometry.State {
	return astrometry.RotX(ssyPlaneIncl).Mul(astrometry.RotZ(ssyPlaneNode)).ApplyState(s)
}

// siderealSolarSystemPlane measures longitude on the invariable plane from
// the projection of the T0 equinox.
func (e *Engine) siderealSolarSystemPlane(res *Result, j2000 astrometry.State) {
	eps2000 := e.prec.MeanObliquity(astrometry.J2000)
	x := toInvariablePlane(astrometry.EquatorToEcliptic(j2000, eps2000))

	equinox := astrometry.Precess(e.prec, r3.Vec{X: 1}, e.sid.T0, astrometry.ToJ2000)
	x0 := toInvariablePlane(astrometry.EquatorToEcliptic(astrometry.State{Pos: equinox}, eps2000))
	lon0, _, _ := astrometry.CartPol(x0.Pos)

	pol := astrometry.CartPolSpeed(x)
	pol[0] = astrometry.Norm2Pi(pol[0] - lon0 - e.sid.AyanT0*astrometry.Deg2Rad)
	res.EclipticPolar = pol
	res.EclipticCart = astrometry.PolCartSpeed(pol).Array()
}
