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
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Direction selects the sense of a precession rotation.
type Direction int

const (
	// FromJ2000 rotates from the J2000 mean equator to the mean equator of date.
	FromJ2000 Direction = iota
	// ToJ2000 rotates from the mean equator of date to J2000.
	ToJ2000
)

// PrecessionModel supplies the equatorial precession angles and the mean
// obliquity consistent with them.
type PrecessionModel interface {
	Name() string
	// Angles returns zeta, z and theta (radians) for J2000 → tjd.
	Angles(tjd float64) (zeta, z, theta float64)
	// MeanObliquity returns the mean obliquity of the ecliptic of date (radians).
	MeanObliquity(tjd float64) float64
	// GeneralPrecession returns the accumulated precession in ecliptic
	// longitude since J2000 (radians).
	GeneralPrecession(tjd float64) float64
}

// IAU1976 is the Lieske (1977) precession with the IAU 1976 obliquity.
type IAU1976 struct{}

// Name implements PrecessionModel.
func (IAU1976) Name() string { return "iau1976" }

// Angles implements PrecessionModel.
func (IAU1976) Angles(tjd float64) (zeta, z, theta float64) {
	t := Centuries(tjd)
	zeta = (2306.2181*t + 0.30188*t*t + 0.017998*t*t*t) * Arcsec2Rad
	z = (2306.2181*t + 1.09468*t*t + 0.018203*t*t*t) * Arcsec2Rad
	theta = (2004.3109*t - 0.42665*t*t - 0.041833*t*t*t) * Arcsec2Rad
	return zeta, z, theta
}

// MeanObliquity implements PrecessionModel.
func (IAU1976) MeanObliquity(tjd float64) float64 {
	t := Centuries(tjd)
	return poly(t, 84381.448, -46.8150, -0.00059, 0.001813) * Arcsec2Rad
}

// GeneralPrecession implements PrecessionModel.
func (IAU1976) GeneralPrecession(tjd float64) float64 {
	t := Centuries(tjd)
	return poly(t, 0, 5029.0966, 1.11113, -0.000006) * Arcsec2Rad
}

// IAU2006 is the Capitaine et al. (2003) P03 precession.
type IAU2006 struct{}

// Name implements PrecessionModel.
func (IAU2006) Name() string { return "iau2006" }

// Angles implements PrecessionModel.
func (IAU2006) Angles(tjd float64) (zeta, z, theta float64) {
	t := Centuries(tjd)
	zeta = poly(t, 2.650545, 2306.083227, 0.2988499, 0.01801828, -0.000005971, -0.0000003173) * Arcsec2Rad
	z = poly(t, -2.650545, 2306.077181, 1.0927348, 0.01826837, -0.000028596, -0.0000002904) * Arcsec2Rad
	theta = poly(t, 0, 2004.191903, -0.4294934, -0.04182264, -0.000007089, -0.0000001274) * Arcsec2Rad
	return zeta, z, theta
}

// MeanObliquity implements PrecessionModel.
func (IAU2006) MeanObliquity(tjd float64) float64 {
	t := Centuries(tjd)
	return poly(t, 84381.406, -46.836769, -0.0001831, 0.00200340, -0.000000576, -0.0000000434) * Arcsec2Rad
}

// GeneralPrecession implements PrecessionModel.
func (IAU2006) GeneralPrecession(tjd float64) float64 {
	t := Centuries(tjd)
	return poly(t, 0, 5028.796195, 1.1054348, 0.00007964, -0.000023857, -0.0000000383) * Arcsec2Rad
}

// ParsePrecession maps a model name to a PrecessionModel.
func ParsePrecession(name string) (PrecessionModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "iau2006", "p03":
		return IAU2006{}, nil
	case "iau1976", "lieske":
		return IAU1976{}, nil
	}
	return nil, fmt.Errorf("unknown precession model %q", name)
}

// PrecessionMatrix returns the rotation from the J2000 mean equator to the
// mean equator of tjd.
func PrecessionMatrix(m PrecessionModel, tjd float64) Matrix {
	zeta, z, theta := m.Angles(tjd)
	return RotZ(-z).Mul(RotY(theta)).Mul(RotZ(-zeta))
}

// Precess rotates an equatorial position between J2000 and the mean equator of tjd.
func Precess(m PrecessionModel, v r3.Vec, tjd float64, dir Direction) r3.Vec {
	if tjd == J2000 {
		return v
	}
	p := PrecessionMatrix(m, tjd)
	if dir == ToJ2000 {
		return p.ApplyT(v)
	}
	return p.Apply(v)
}

// PrecessState precesses position and velocity and adds the secular motion
// of the equinox to the longitude rate, so the velocity is the apparent
// motion in the moving frame of date.
func PrecessState(m PrecessionModel, s State, tjd float64, dir Direction) State {
	out := State{Pos: Precess(m, s.Pos, tjd, dir), Vel: Precess(m, s.Vel, tjd, dir)}
	fac, eps := 1.0, m.MeanObliquity(tjd)
	if dir == ToJ2000 {
		fac, eps = -1.0, m.MeanObliquity(J2000)
	}
	t := Centuries(tjd)
	pol := CartPolSpeed(EquatorToEcliptic(out, eps))
	// Montenbruck's rate of general precession, arcsec/yr
	pol[3] += (50.290966 + 0.0222226*t) / 3600 / 365.25 * Deg2Rad * fac
	return EclipticToEquator(PolCartSpeed(pol), eps)
}
