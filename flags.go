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
)

// Flag selects the ephemeris model, the corrections applied and the
// representation returned by Calc. Values are bit-compatible with the
// Swiss Ephemeris SEFLG_* constants.
type Flag int32

const (
	FlagJPL        Flag = 1      // JPL DE file
	FlagCheb       Flag = 2      // Chebyshev coefficient files
	FlagAnalytic   Flag = 4      // analytic series
	FlagHelCtr     Flag = 8      // heliocentric
	FlagTruePos    Flag = 16     // geometric position, no light-time, deflection or aberration
	FlagJ2000      Flag = 32     // J2000 equinox, no precession or nutation
	FlagNoNut      Flag = 64     // mean equinox of date
	FlagSpeed      Flag = 256    // compute velocities
	FlagNoGDefl    Flag = 512    // no gravitational deflection
	FlagNoAberr    Flag = 1024   // no annual aberration
	FlagEquatorial Flag = 2048   // right ascension and declination
	FlagXYZ        Flag = 4096   // cartesian coordinates
	FlagRadians    Flag = 8192   // angles in radians
	FlagBaryCtr    Flag = 16384  // barycentric
	FlagTopoCtr    Flag = 32768  // topocentric, see SetTopo
	FlagSidereal   Flag = 65536  // sidereal zodiac, see SetSidereal
	FlagICRS       Flag = 131072 // ICRS axes, no frame bias

	// FlagAstrometric gives light-time corrected positions without
	// deflection and aberration.
	FlagAstrometric = FlagNoAberr | FlagNoGDefl

	modelMask = FlagJPL | FlagCheb | FlagAnalytic
	// representation bits do not affect the computation itself
	outputMask = FlagEquatorial | FlagXYZ | FlagRadians | FlagSpeed
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagJPL, "jpl"}, {FlagCheb, "cheb"}, {FlagAnalytic, "analytic"},
	{FlagHelCtr, "helctr"}, {FlagTruePos, "truepos"}, {FlagJ2000, "j2000"},
	{FlagNoNut, "nonut"}, {FlagSpeed, "speed"}, {FlagNoGDefl, "nogdefl"},
	{FlagNoAberr, "noaberr"}, {FlagEquatorial, "equatorial"}, {FlagXYZ, "xyz"},
	{FlagRadians, "radians"}, {FlagBaryCtr, "baryctr"}, {FlagTopoCtr, "topoctr"},
	{FlagSidereal, "sidereal"}, {FlagICRS, "icrs"},
}

// Has reports whether all bits of g are set.
func (f Flag) Has(g Flag) bool { return f&g == g }

// String lists the set bits, e.g. "cheb|speed".
func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", int32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseFlags parses a list of flag names as produced by Flag.String.
func ParseFlags(names ...string) (Flag, error) {
	var f Flag
	for _, name := range names {
		for _, part := range strings.Split(name, "|") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			found := false
			for _, n := range flagNames {
				if n.name == part {
					f |= n.f
					found = true
					break
				}
			}
			if !found {
				return 0, fmt.Errorf("unknown flag %q", part)
			}
		}
	}
	return f, nil
}

// Model is an ephemeris source.
type Model int

const (
	ModelJPL Model = iota + 1
	ModelCheb
	ModelAnalytic
)

// fallbackOrder lists the models from most to least precise.
var fallbackOrder = [...]Model{ModelJPL, ModelCheb, ModelAnalytic}

// DefaultModel is used when neither the flags nor the engine select one.
const DefaultModel = ModelCheb

// String implements fmt.Stringer.
func (m Model) String() string {
	switch m {
	case ModelJPL:
		return "jpl"
	case ModelCheb:
		return "cheb"
	case ModelAnalytic:
		return "analytic"
	case 0:
		return "none"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// Flag returns the model selection bit of m.
func (m Model) Flag() Flag {
	switch m {
	case ModelJPL:
		return FlagJPL
	case ModelCheb:
		return FlagCheb
	case ModelAnalytic:
		return FlagAnalytic
	}
	return 0
}

// ParseModel maps "jpl", "cheb" or "analytic" to a Model.
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpl", "de":
		return ModelJPL, nil
	case "cheb", "files", "":
		return ModelCheb, nil
	case "analytic":
		return ModelAnalytic, nil
	}
	return 0, fmt.Errorf("unknown ephemeris model %q", name)
}

// modelFromFlags returns the most precise model selected by flags, or 0.
func modelFromFlags(f Flag) Model {
	for _, m := range fallbackOrder {
		if f&m.Flag() != 0 {
			return m
		}
	}
	return 0
}
