/*
Package astroeph computes apparent positions of the Sun, the Moon, the planets,
minor planets and the lunar nodes and apsides, as seen from the geocenter, a
place on the Earth's surface, the Sun or the solar system barycenter.

Raw states come from one of three ephemeris models, tried in order of
precision with automatic fallback: a JPL DE file (ModelJPL), Chebyshev
coefficient files (ModelCheb) and an analytic series that needs no files
(ModelAnalytic). The engine then applies light time, gravitational
deflection, annual aberration, frame bias, precession and nutation, and
optionally projects the result onto a sidereal zodiac:

	eng, err := astroeph.New(astroeph.WithEphemerisDir("/usr/share/ephe"))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	res, err := eng.CalcUT(2451545.0, astroeph.Mars, astroeph.FlagSpeed)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Lon(), res.Lat(), res.Dist(), res.SpeedLon(), res.Warning)

An Engine keeps per-body caches and open file handles and must not be used
from more than one goroutine at a time; use one Engine per goroutine.

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
package astroeph

import (
	"errors"
	"strings"
	"time"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/logging"
)

// Engine computes apparent positions. See the package documentation.
type Engine struct {
	log     logging.Logger
	metrics Recorder

	providers    [len(fallbackOrder) + 1]Provider // indexed by Model
	defaultModel Model
	prec         astrometry.PrecessionModel
	nutModel     astrometry.NutationModel
	tidalAcc     float64
	sid          SiderealConfig
	topo         GeoPosition
	topoSet      bool

	cache *resultCache
	raw   *rawCache
	obs   observerCache

	eps2000     astrometry.Epsilon
	eps         astrometry.Epsilon // of date
	nut         astrometry.Nutation
	nutPrev     astrometry.Nutation // of date - NutSpeedInterval
	framesValid bool

	closed bool
}

// New creates an engine.
//
// Without WithJPLFile the JPL model reports no data, and without
// WithEphemerisDir so does the coefficient-file model; requests then fall
// back to the analytic series with a warning in Result.Warning.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validModel(o.defaultModel); err != nil {
		return nil, err
	}
	if o.precession == nil || o.nutation == nil {
		return nil, configError("new", -1, "precession and nutation models are required")
	}

	e := &Engine{
		log:          o.log,
		metrics:      o.metrics,
		defaultModel: o.defaultModel,
		prec:         o.precession,
		nutModel:     o.nutation,
		tidalAcc:     o.tidalAcc,
		cache:        newResultCache(),
		raw:          newRawCache(),
		eps2000:      astrometry.NewEpsilon(o.precession, astrometry.J2000),
	}
	e.providers[ModelJPL] = NewJPLProvider(o.jplPath, o.log)
	e.providers[ModelCheb] = NewChebProvider(o.ephDir, o.log)
	e.providers[ModelAnalytic] = NewAnalyticProvider()
	for m, p := range o.providers {
		if validModel(m) != nil {
			return nil, configError("new", -1, "provider for unknown model %d", int(m))
		}
		e.providers[m] = p
	}

	sid := DefaultSidereal
	if o.sidereal != nil {
		sid = *o.sidereal
	}
	var err error
	if e.sid, err = sid.resolved(); err != nil {
		return nil, err
	}
	if o.topo != nil {
		e.topo, e.topoSet = *o.topo, true
	}

	e.log.Debug("engine created",
		logging.String("default_model", e.defaultModel.String()),
		logging.String("precession", e.prec.Name()),
		logging.String("sidereal", e.sid.Mode.String()))
	return e, nil
}

func validModel(m Model) error {
	for _, fm := range fallbackOrder {
		if fm == m {
			return nil
		}
	}
	return configError("new", -1, "unknown ephemeris model %d", int(m))
}

func (e *Engine) provider(m Model) Provider { return e.providers[m] }

// normalizeFlags applies the implications between flags: heliocentric and
// barycentric positions have no aberration or deflection, true positions
// have no light-time corrections either, J2000 output has no nutation, and
// only the most precise model bit is kept.
func normalizeFlags(f Flag) Flag {
	if f.Has(FlagHelCtr) {
		f &^= FlagBaryCtr
	}
	if f.Has(FlagHelCtr) || f.Has(FlagBaryCtr) {
		f |= FlagNoAberr | FlagNoGDefl
		f &^= FlagTopoCtr
	}
	if f.Has(FlagTruePos) {
		f |= FlagNoAberr | FlagNoGDefl
	}
	if f.Has(FlagJ2000) {
		f |= FlagNoNut
	}
	return f&^modelMask | modelFromFlags(f).Flag()
}

// Calc computes the position of body b at tjd.
//
// Parameters:
//   - tjd: Julian day, Terrestrial Time
//   - b: the body
//   - flags: model, center, frame, output and correction bits
//
// Returns:
//   - the result; Result.Coords is selected by flags
//   - an *Error on failure, in which case the result is zero. Use errors.Is
//     with ErrNotAvailable, ErrOutOfRange, ErrConfig or ErrIO to classify it.
func (e *Engine) Calc(tjd float64, b Body, flags Flag) (Result, error) {
	start := time.Now()
	if e.closed {
		return Result{}, e.fail(b, newError(KindConfig, "calc", b, 0, errors.New("engine closed")))
	}
	kind, err := kindOfBody(b)
	if err != nil {
		return Result{}, e.fail(b, err)
	}
	flags = normalizeFlags(flags)
	if err := e.checkFlags(b, flags); err != nil {
		return Result{}, e.fail(b, err)
	}

	key, speed := cacheKey(flags), flags.Has(FlagSpeed)
	req := &request{tjd: tjd, body: b, flags: flags, speed: speed}
	if ent, ok := e.cache.get(b); ok {
		if ent.hit(tjd, key, speed) {
			e.metrics.CacheRequest(true)
			return ent.result.view(flags), nil
		}
		if ent.valid && ent.flags == key {
			req.hint = ent.model
		}
	}
	e.metrics.CacheRequest(false)

	res, err := kind.compute(e, req)
	if err != nil {
		e.cache.invalidate(b)
		return Result{}, e.fail(b, err)
	}
	res.Warning = strings.Join(req.warnings, "; ")
	e.cache.put(b, &cacheEntry{
		tjd:    tjd,
		model:  res.Model,
		flags:  key,
		raw:    req.raw,
		result: res,
		speed:  speed,
		valid:  true,
	})
	e.metrics.ObserveCalc(res.Model.String(), time.Since(start))
	return res.view(flags), nil
}

// CalcUT is Calc for a Julian day in Universal Time.
func (e *Engine) CalcUT(tjdUT float64, b Body, flags Flag) (Result, error) {
	return e.Calc(tjdUT+e.DeltaT(tjdUT), b, flags)
}

func (e *Engine) checkFlags(b Body, f Flag) error {
	m := modelFromFlags(f)
	if m == 0 {
		m = e.defaultModel
	}
	if m == ModelAnalytic && f.Has(FlagBaryCtr) {
		return configError("calc", b, "barycentric positions need the JPL or the coefficient-file model")
	}
	if f.Has(FlagTopoCtr) && !e.topoSet {
		return configError("calc", b, "topocentric position requested before SetTopo")
	}
	return nil
}

// fail records a failed request. Saved raw states are dropped with it.
func (e *Engine) fail(b Body, err error) error {
	err = withBody(err, "calc", b)
	k := kindOf(err)
	e.metrics.Error(k.String())
	e.raw.reset()
	if k == KindIO {
		e.log.Error("calc failed", logging.String("body", b.String()), logging.Err(err))
	} else {
		e.log.Debug("calc failed", logging.String("body", b.String()), logging.Err(err))
	}
	return err
}

// invalidate drops every cached result and saved state.
func (e *Engine) invalidate() {
	e.cache.invalidateAll()
	e.raw.reset()
	e.obs.valid = false
	e.framesValid = false
}

// Close closes the ephemeris files and invalidates the caches. Calc fails
// afterwards.
func (e *Engine) Close() error {
	e.invalidate()
	var errs []error
	for _, p := range e.providers {
		if p != nil {
			errs = append(errs, p.Close())
		}
	}
	e.closed = true
	return errors.Join(errs...)
}

// Reset invalidates all cached results. Open files stay open.
func (e *Engine) Reset() { e.invalidate() }

// DefaultModel returns the model used when a request carries no model flag.
func (e *Engine) DefaultModel() Model { return e.defaultModel }

// SetDefaultModel changes the default model. All cached results are
// dropped.
func (e *Engine) SetDefaultModel(m Model) error {
	if err := validModel(m); err != nil {
		return err
	}
	e.defaultModel = m
	e.invalidate()
	return nil
}

// Sidereal returns the current sidereal configuration.
func (e *Engine) Sidereal() SiderealConfig { return e.sid }

// SetSidereal changes the sidereal configuration used with FlagSidereal.
func (e *Engine) SetSidereal(cfg SiderealConfig) error {
	r, err := cfg.resolved()
	if err != nil {
		return err
	}
	e.sid = r
	e.invalidate()
	return nil
}

// SetTopo sets the observer for FlagTopoCtr: geodetic longitude and
// latitude in degrees, altitude in metres.
func (e *Engine) SetTopo(lon, lat, alt float64) {
	e.topo, e.topoSet = GeoPosition{Lon: lon, Lat: lat, Alt: alt}, true
	e.invalidate()
}

// Topo returns the observer set with SetTopo.
func (e *Engine) Topo() (GeoPosition, bool) { return e.topo, e.topoSet }

// SetTidalAcc sets the lunar tidal acceleration used by Delta T.
func (e *Engine) SetTidalAcc(ndot float64) {
	e.tidalAcc = ndot
	e.invalidate()
}

// DeltaT returns TT - UT in days for a UT Julian day.
func (e *Engine) DeltaT(tjdUT float64) float64 {
	return astrometry.DeltaT(tjdUT, e.tidalAcc)
}

// SiderealTime returns Greenwich apparent sidereal time in hours for a UT
// Julian day.
func (e *Engine) SiderealTime(tjdUT float64) float64 {
	eps, nut, _ := e.frames(tjdUT + e.DeltaT(tjdUT))
	return astrometry.SiderealHours(astrometry.GAST(tjdUT, nut.DPsi, eps.Eps+nut.DEps))
}
