/*
Package analytic evaluates low-precision closed-form ephemerides: Keplerian
planets with the long-term correction terms of Standish (JPL, "Keplerian
Elements for Approximate Positions of the Major Planets"), the lunar series of
Meeus (Astronomical Algorithms, chapter 47) and two-body orbits for the
Centaurs and the four main-belt asteroids.

Every state is heliocentric, in AU and AU/day, referred to the J2000 mean
equator and equinox. No file I/O is involved; each body has a fixed validity
window outside of which evaluation fails with ErrOutOfRange.

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
package analytic

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

var (
	// ErrOutOfRange means the epoch lies outside the body's validity window.
	ErrOutOfRange = errors.New("analytic: epoch outside the series' validity window")
	// ErrUnsupported means the body has no analytic representation.
	ErrUnsupported = errors.New("analytic: body not supported")
)

// Body identifies a body evaluated by this package.
type Body int

const (
	Sun Body = iota
	Mercury
	Venus
	EMB // Earth-Moon barycenter
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Earth
	Moon
	Chiron
	Pholus
	Ceres
	Pallas
	Juno
	Vesta
	numBodies
)

var bodyNames = [numBodies]string{
	"Sun", "Mercury", "Venus", "EMB", "Mars", "Jupiter", "Saturn", "Uranus",
	"Neptune", "Pluto", "Earth", "Moon", "Chiron", "Pholus", "Ceres", "Pallas",
	"Juno", "Vesta",
}

// String implements fmt.Stringer.
func (b Body) String() string {
	if b < 0 || b >= numBodies {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// Validity window of the planetary and lunar series, 3000 BCE to 3000 CE.
const (
	Start = 625000.5
	End   = 2818000.5
)

// Range returns the validity window of b.
func Range(b Body) (start, end float64) {
	switch b {
	case Chiron:
		return 1958470.5, 3419437.5
	case Pholus:
		return 314845.5, 4227397.5
	}
	return Start, End
}

// Covers reports whether tjd lies within the validity window of b.
func Covers(b Body, tjd float64) bool {
	if b < 0 || b >= numBodies {
		return false
	}
	start, end := Range(b)
	return tjd >= start && tjd <= end
}

func check(b Body, tjd float64) error {
	if b < 0 || b >= numBodies {
		return fmt.Errorf("%w: %v", ErrUnsupported, b)
	}
	if !Covers(b, tjd) {
		start, end := Range(b)
		return fmt.Errorf("%w: %v at JD %.1f, valid from JD %.1f to %.1f", ErrOutOfRange, b, tjd, start, end)
	}
	return nil
}

// Position returns the heliocentric position of b at tjd (TT).
func Position(b Body, tjd float64) (r3.Vec, error) {
	if err := check(b, tjd); err != nil {
		return r3.Vec{}, err
	}
	return position(b, tjd), nil
}

// State returns the heliocentric state of b at tjd (TT). Velocities are
// central differences over astrometry.PlanSpeedInterval.
func State(b Body, tjd float64, speed bool) (astrometry.State, error) {
	if err := check(b, tjd); err != nil {
		return astrometry.State{}, err
	}
	return differentiate(func(t float64) r3.Vec { return position(b, t) }, tjd, speed), nil
}

// MoonState returns the geocentric state of the Moon at tjd (TT).
func MoonState(tjd float64, speed bool) (astrometry.State, error) {
	if err := check(Moon, tjd); err != nil {
		return astrometry.State{}, err
	}
	return differentiate(moonGeocentric, tjd, speed), nil
}

func differentiate(f func(float64) r3.Vec, tjd float64, speed bool) astrometry.State {
	st := astrometry.State{Pos: f(tjd)}
	if speed {
		const h = astrometry.PlanSpeedInterval
		st.Vel = r3.Scale(1/(2*h), r3.Sub(f(tjd+h), f(tjd-h)))
	}
	return st
}

func position(b Body, tjd float64) r3.Vec {
	switch b {
	case Sun:
		return r3.Vec{}
	case Earth:
		emb := planetPosition(EMB, tjd)
		return r3.Sub(emb, r3.Scale(1/(1+astrometry.EarthMoonRatio), moonGeocentric(tjd)))
	case Moon:
		emb := planetPosition(EMB, tjd)
		moon := moonGeocentric(tjd)
		earth := r3.Sub(emb, r3.Scale(1/(1+astrometry.EarthMoonRatio), moon))
		return r3.Add(earth, moon)
	case Chiron, Pholus, Ceres, Pallas, Juno, Vesta:
		return minorPosition(b, tjd)
	}
	return planetPosition(b, tjd)
}
