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
	"errors"
	"fmt"

	"github.com/mshafiee/astroeph/analytic"
	"github.com/mshafiee/astroeph/astrometry"
)

var analyticTargets = map[Target]analytic.Body{
	TargetSun: analytic.Sun, TargetMercury: analytic.Mercury,
	TargetVenus: analytic.Venus, TargetEMB: analytic.EMB, TargetMars: analytic.Mars,
	TargetJupiter: analytic.Jupiter, TargetSaturn: analytic.Saturn,
	TargetUranus: analytic.Uranus, TargetNeptune: analytic.Neptune,
	TargetPluto: analytic.Pluto, TargetEarth: analytic.Earth,
	TargetMoon: analytic.Moon, TargetChiron: analytic.Chiron,
	TargetPholus: analytic.Pholus, TargetCeres: analytic.Ceres,
	TargetPallas: analytic.Pallas, TargetJuno: analytic.Juno,
	TargetVesta: analytic.Vesta,
}

// analyticProvider evaluates the closed-form series. Its states are
// heliocentric and need no file.
type analyticProvider struct{}

// NewAnalyticProvider returns the analytic series provider.
func NewAnalyticProvider() Provider { return analyticProvider{} }

func (analyticProvider) Model() Model { return ModelAnalytic }

func (analyticProvider) State(tjd float64, t Target, speed bool) (astrometry.State, error) {
	b, ok := analyticTargets[t]
	if !ok {
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, ModelAnalytic,
			fmt.Errorf("%v has no analytic series", t))
	}
	st, err := analytic.State(b, tjd, speed)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, analytic.ErrOutOfRange):
		return astrometry.State{}, newError(KindOutOfRange, "state", -1, ModelAnalytic, err)
	default:
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, ModelAnalytic, err)
	}
}

func (analyticProvider) Covers(tjd float64, t Target) bool {
	b, ok := analyticTargets[t]
	return ok && analytic.Covers(b, tjd)
}

func (analyticProvider) Heliocentric() bool { return true }
func (analyticProvider) FrameBias() bool    { return false }
func (analyticProvider) Close() error       { return nil }
