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
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/chebfile"
	"github.com/mshafiee/astroeph/internal/logging"
)

var chebPlanetIDs = map[Target]int{
	TargetSun: chebfile.BodySun, TargetMercury: chebfile.BodyMercury,
	TargetVenus: chebfile.BodyVenus, TargetEMB: chebfile.BodyEMB,
	TargetMars: chebfile.BodyMars, TargetJupiter: chebfile.BodyJupiter,
	TargetSaturn: chebfile.BodySaturn, TargetUranus: chebfile.BodyUranus,
	TargetNeptune: chebfile.BodyNeptune, TargetPluto: chebfile.BodyPluto,
}

var chebAsteroidIDs = map[Target]int{
	TargetChiron: chebfile.BodyChiron, TargetPholus: chebfile.BodyPholus,
	TargetCeres: chebfile.BodyCeres, TargetPallas: chebfile.BodyPallas,
	TargetJuno: chebfile.BodyJuno, TargetVesta: chebfile.BodyVesta,
}

// chebProvider evaluates Chebyshev coefficient files found in dir. One file
// per family is kept open and replaced when the date leaves it, or, for the
// numbered-asteroid slot, when another asteroid is requested.
type chebProvider struct {
	dir      string
	log      logging.Logger
	files    [4]*chebfile.File // indexed by chebfile.Kind
	numbered int
}

// NewChebProvider returns a provider for the coefficient files in dir.
func NewChebProvider(dir string, log logging.Logger) Provider {
	if log == nil {
		log = logging.Noop()
	}
	return &chebProvider{dir: dir, log: log}
}

func (p *chebProvider) Model() Model { return ModelCheb }

func (p *chebProvider) file(k chebfile.Kind, tjd float64, ast int) (*chebfile.File, error) {
	if f := p.files[k]; f != nil {
		if f.Covers(tjd) && (k != chebfile.KindNumbered || p.numbered == ast) {
			return f, nil
		}
		f.Close()
		p.files[k] = nil
	}
	if p.dir == "" {
		return nil, newError(KindNotAvailable, "open", -1, ModelCheb, errors.New("no ephemeris directory configured"))
	}
	if tjd < chebfile.MinDate || tjd > chebfile.MaxDate {
		return nil, newError(KindOutOfRange, "open", -1, ModelCheb,
			fmt.Errorf("JD %.1f outside %.1f .. %.1f", tjd, chebfile.MinDate, chebfile.MaxDate))
	}
	path := filepath.Join(p.dir, chebfile.FileName(k, tjd, ast))
	f, err := chebfile.Open(path, chebfile.WithLogger(p.log))
	if err != nil {
		return nil, chebError(err)
	}
	if !f.Covers(tjd) {
		f.Close()
		return nil, newError(KindNotAvailable, "open", -1, ModelCheb,
			fmt.Errorf("%s does not cover JD %.1f", path, tjd))
	}
	h := f.Header()
	p.log.Debug("coefficient file opened",
		logging.String("path", path),
		logging.Int("de", h.DENumber),
		logging.Float("start", h.Start),
		logging.Float("end", h.End))
	p.files[k] = f
	if k == chebfile.KindNumbered {
		p.numbered = ast
	}
	return f, nil
}

// chebError classifies chebfile errors.
func chebError(err error) error {
	switch {
	case errors.Is(err, chebfile.ErrNotFound):
		return newError(KindNotAvailable, "state", -1, ModelCheb, err)
	case errors.Is(err, chebfile.ErrOutOfRange):
		return newError(KindOutOfRange, "state", -1, ModelCheb, err)
	default:
		return newError(KindIO, "state", -1, ModelCheb, err)
	}
}

func (p *chebProvider) eval(k chebfile.Kind, tjd float64, id, ast int, speed bool) (astrometry.State, chebfile.BodyInfo, error) {
	f, err := p.file(k, tjd, ast)
	if err != nil {
		return astrometry.State{}, chebfile.BodyInfo{}, err
	}
	st, err := f.State(tjd, id, speed)
	if err != nil {
		return astrometry.State{}, chebfile.BodyInfo{}, chebError(err)
	}
	info, _ := f.Body(id)
	return st, info, nil
}

func (p *chebProvider) State(tjd float64, t Target, speed bool) (astrometry.State, error) {
	if id, ok := chebPlanetIDs[t]; ok {
		st, _, err := p.eval(chebfile.KindPlanets, tjd, id, 0, speed)
		return st, err
	}
	switch t {
	case TargetEarth, TargetMoon:
		emb, _, err := p.eval(chebfile.KindPlanets, tjd, chebfile.BodyEMB, 0, speed)
		if err != nil {
			return astrometry.State{}, err
		}
		moon, _, err := p.eval(chebfile.KindMoon, tjd, chebfile.BodyMoon, 0, speed)
		if err != nil {
			return astrometry.State{}, err
		}
		emrat := p.files[chebfile.KindPlanets].Header().EMRat
		if emrat <= 0 {
			emrat = astrometry.EarthMoonRatio
		}
		earth := emb.Sub(moon.Scale(1 / (1 + emrat)))
		if t == TargetEarth {
			return earth, nil
		}
		return earth.Add(moon), nil
	}

	kind, id, ast := chebfile.KindAsteroids, 0, 0
	if n, ok := t.Asteroid(); ok {
		kind, id, ast = chebfile.KindNumbered, chebfile.AsteroidOffset+n, n
	} else if id, ok = chebAsteroidIDs[t]; !ok {
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, ModelCheb, fmt.Errorf("no coefficient file holds %v", t))
	}
	st, info, err := p.eval(kind, tjd, id, ast, speed)
	if err != nil {
		return astrometry.State{}, err
	}
	if info.Flags&chebfile.FlagHeliocentric == 0 {
		return st, nil
	}
	sun, _, err := p.eval(chebfile.KindPlanets, tjd, chebfile.BodySun, 0, speed)
	if err != nil {
		return astrometry.State{}, err
	}
	if !speed {
		sun.Vel = r3.Vec{}
	}
	return st.Add(sun), nil
}

// Covers reports whether the files t needs at tjd are present. Their
// contents are checked by State.
func (p *chebProvider) Covers(tjd float64, t Target) bool {
	if p.dir == "" || tjd < chebfile.MinDate || tjd > chebfile.MaxDate {
		return false
	}
	need, ast := chebfile.KindPlanets, 0
	switch _, planet := chebPlanetIDs[t]; {
	case planet:
	case t == TargetEarth || t == TargetMoon:
		need = chebfile.KindMoon
	default:
		if n, ok := t.Asteroid(); ok {
			need, ast = chebfile.KindNumbered, n
		} else if _, ok := chebAsteroidIDs[t]; ok {
			need = chebfile.KindAsteroids
		} else {
			return false
		}
	}
	return p.hasFile(chebfile.KindPlanets, tjd, 0) && p.hasFile(need, tjd, ast)
}

func (p *chebProvider) hasFile(k chebfile.Kind, tjd float64, ast int) bool {
	if f := p.files[k]; f != nil && f.Covers(tjd) && (k != chebfile.KindNumbered || p.numbered == ast) {
		return true
	}
	_, err := os.Stat(filepath.Join(p.dir, chebfile.FileName(k, tjd, ast)))
	return err == nil
}

func (p *chebProvider) Heliocentric() bool { return false }

// FrameBias follows the DE the planet file was fitted to.
func (p *chebProvider) FrameBias() bool {
	if f := p.files[chebfile.KindPlanets]; f != nil {
		return f.Header().DENumber >= 403
	}
	return true
}

func (p *chebProvider) Close() error {
	var errs []error
	for k, f := range p.files {
		if f != nil {
			errs = append(errs, f.Close())
			p.files[k] = nil
		}
	}
	p.numbered = 0
	return errors.Join(errs...)
}
