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

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/logging"
	"github.com/mshafiee/astroeph/jpl"
)

var jplTargets = map[Target]jpl.Planet{
	TargetSun: jpl.Sun, TargetMercury: jpl.Mercury, TargetVenus: jpl.Venus,
	TargetEMB: jpl.EarthMoonBarycenter, TargetMars: jpl.Mars,
	TargetJupiter: jpl.Jupiter, TargetSaturn: jpl.Saturn, TargetUranus: jpl.Uranus,
	TargetNeptune: jpl.Neptune, TargetPluto: jpl.Pluto, TargetEarth: jpl.Earth,
	TargetMoon: jpl.Moon,
}

// jplProvider reads a JPL DE file, opened on first use. A read failure
// closes the file; the next call reopens it.
type jplProvider struct {
	path string
	eph  *jpl.Ephemeris
	log  logging.Logger
}

// NewJPLProvider returns a provider for the DE file at path.
func NewJPLProvider(path string, log logging.Logger) Provider {
	if log == nil {
		log = logging.Noop()
	}
	return &jplProvider{path: path, log: log}
}

func (p *jplProvider) Model() Model { return ModelJPL }

func (p *jplProvider) open() (*jpl.Ephemeris, error) {
	if p.eph != nil {
		return p.eph, nil
	}
	if p.path == "" {
		return nil, newError(KindNotAvailable, "open", -1, ModelJPL, errors.New("no JPL file configured"))
	}
	eph, err := jpl.Open(p.path, jpl.WithLogger(p.log))
	if err != nil {
		return nil, newError(KindNotAvailable, "open", -1, ModelJPL, err)
	}
	start, end := eph.Range()
	p.log.Debug("JPL file opened",
		logging.String("path", p.path),
		logging.Int("de", eph.DENumber()),
		logging.Float("start", start),
		logging.Float("end", end))
	p.eph = eph
	return eph, nil
}

func (p *jplProvider) State(tjd float64, t Target, speed bool) (astrometry.State, error) {
	planet, ok := jplTargets[t]
	if !ok {
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, ModelJPL,
			fmt.Errorf("%v is not in JPL files", t))
	}
	eph, err := p.open()
	if err != nil {
		return astrometry.State{}, err
	}
	pos, vel, err := eph.CalculatePV(tjd, planet, jpl.CenterSolarSystemBarycenter, speed)
	if err != nil {
		if errors.Is(err, jpl.ErrOutsideRange) {
			return astrometry.State{}, newError(KindOutOfRange, "state", -1, ModelJPL, err)
		}
		p.log.Warn("JPL read failed, closing file", logging.String("path", p.path), logging.Err(err))
		p.Close()
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, ModelJPL, err)
	}
	return astrometry.State{
		Pos: r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z},
		Vel: r3.Vec{X: vel.DX, Y: vel.DY, Z: vel.DZ},
	}, nil
}

func (p *jplProvider) Covers(tjd float64, t Target) bool {
	if _, ok := jplTargets[t]; !ok {
		return false
	}
	eph, err := p.open()
	return err == nil && eph.Covers(tjd)
}

func (p *jplProvider) Heliocentric() bool { return false }

// FrameBias is needed from DE403 on, whose axes are the ICRS.
func (p *jplProvider) FrameBias() bool {
	eph, err := p.open()
	return err != nil || eph.DENumber() >= 403
}

func (p *jplProvider) Close() error {
	if p.eph == nil {
		return nil
	}
	err := p.eph.Close()
	p.eph = nil
	return err
}
