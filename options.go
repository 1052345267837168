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
	"time"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/logging"
)

// Recorder receives engine events. *observability.EngineCollector satisfies it.
type Recorder interface {
	CacheRequest(hit bool)
	ProviderCall(model string)
	Fallback(from, to string)
	Error(kind string)
	ObserveCalc(model string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) CacheRequest(bool)                 {}
func (noopRecorder) ProviderCall(string)               {}
func (noopRecorder) Fallback(string, string)           {}
func (noopRecorder) Error(string)                      {}
func (noopRecorder) ObserveCalc(string, time.Duration) {}

// Option configures New.
type Option func(*options)

type options struct {
	jplPath      string
	ephDir       string
	providers    map[Model]Provider
	defaultModel Model
	precession   astrometry.PrecessionModel
	nutation     astrometry.NutationModel
	tidalAcc     float64
	log          logging.Logger
	metrics      Recorder
	sidereal     *SiderealConfig
	topo         *GeoPosition
}

func defaultOptions() options {
	return options{
		providers:    make(map[Model]Provider),
		defaultModel: DefaultModel,
		precession:   astrometry.IAU2006{},
		nutation:     astrometry.IAU1980{},
		tidalAcc:     astrometry.DefaultTidalAcc,
		log:          logging.Noop(),
		metrics:      noopRecorder{},
	}
}

// WithJPLFile sets the JPL DE file used by ModelJPL.
func WithJPLFile(path string) Option {
	return func(o *options) { o.jplPath = path }
}

// WithEphemerisDir sets the directory holding the Chebyshev coefficient
// files used by ModelCheb.
func WithEphemerisDir(dir string) Option {
	return func(o *options) { o.ephDir = dir }
}

// WithProvider replaces the provider of p.Model(). The engine closes it on
// Close.
func WithProvider(p Provider) Option {
	return func(o *options) { o.providers[p.Model()] = p }
}

// WithDefaultModel sets the model used when a request carries no model flag.
func WithDefaultModel(m Model) Option {
	return func(o *options) { o.defaultModel = m }
}

// WithPrecession selects the precession model. The default is IAU 2006.
func WithPrecession(m astrometry.PrecessionModel) Option {
	return func(o *options) { o.precession = m }
}

// WithNutation selects the nutation model. The default is IAU 1980.
func WithNutation(m astrometry.NutationModel) Option {
	return func(o *options) { o.nutation = m }
}

// WithTidalAcc sets the lunar tidal acceleration used by Delta T, in
// arcsec/cy².
func WithTidalAcc(ndot float64) Option {
	return func(o *options) { o.tidalAcc = ndot }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics sets the event recorder.
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithSidereal sets the initial sidereal configuration.
func WithSidereal(cfg SiderealConfig) Option {
	return func(o *options) { o.sidereal = &cfg }
}

// WithTopo sets the initial geodetic observer position.
func WithTopo(lon, lat, alt float64) Option {
	return func(o *options) { o.topo = &GeoPosition{Lon: lon, Lat: lat, Alt: alt} }
}
