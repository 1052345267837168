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

	"github.com/mshafiee/astroeph/internal/logging"
)

// outcome classifies a provider result for the fallback driver.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeNotAvailable
	outcomeOutOfRange
	outcomeHard
)

func classify(err error) outcome {
	if err == nil {
		return outcomeOK
	}
	switch kindOf(err) {
	case KindNotAvailable:
		return outcomeNotAvailable
	case KindOutOfRange:
		return outcomeOutOfRange
	}
	return outcomeHard
}

// startModel returns the first model to try: the model bit in flags, else
// the engine default. The model that served the body's last request with the
// same flags is tried instead while the preferred provider does not cover t
// at req.tjd.
func (e *Engine) startModel(req *request, t Target) Model {
	m := modelFromFlags(req.flags)
	if m == 0 {
		m = e.defaultModel
	}
	if req.hint != 0 && req.hint != m && !e.provider(m).Covers(req.tjd, t) {
		return req.hint
	}
	return m
}

// nextModel returns the model after m in the fallback order, or 0.
func nextModel(m Model) Model {
	for i, fm := range fallbackOrder {
		if fm == m && i+1 < len(fallbackOrder) {
			return fallbackOrder[i+1]
		}
	}
	return 0
}

// resolve walks the fallback order from the start model until a provider
// delivers the target, the Earth and the Sun at req.tjd. The fetched states
// are kept in the raw cache for the pipeline; the Earth and the Sun always
// carry velocities, which aberration and deflection need. Warnings for
// every downgrade are appended to req.warnings.
func (e *Engine) resolve(req *request, t Target) (Model, error) {
	m := e.startModel(req, t)
	for {
		if m == ModelAnalytic && req.flags.Has(FlagBaryCtr) {
			return 0, configError("calc", req.body, "barycentric positions need the JPL or the coefficient-file model")
		}
		err := e.fetchRaw(m, req, t)
		next := nextModel(m)
		switch classify(err) {
		case outcomeOK:
			return m, nil
		case outcomeNotAvailable:
			if next == 0 {
				return 0, err
			}
		case outcomeOutOfRange:
			if next == 0 || !e.provider(next).Covers(req.tjd, t) {
				return 0, err
			}
		default:
			return 0, err
		}
		w := fmt.Sprintf("%s: %v; using %s ephemeris", m, err, next)
		req.warnings = append(req.warnings, w)
		e.log.Warn("ephemeris fallback",
			logging.String("body", req.body.String()),
			logging.String("from", m.String()),
			logging.String("to", next.String()),
			logging.Err(err))
		e.metrics.Fallback(m.String(), next.String())
		m = next
	}
}

func (e *Engine) fetchRaw(m Model, req *request, t Target) error {
	p := e.provider(m)
	for _, pt := range [...]Target{t, TargetEarth, TargetSun} {
		if _, err := e.rawState(p, req.tjd, pt, req.speed || pt != t, true); err != nil {
			return err
		}
	}
	return nil
}
