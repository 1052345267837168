package astroeph

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/observability"
)

type stateFunc func(tjd float64) astrometry.State

func circle(r, period, phase float64) stateFunc {
	n := astrometry.TwoPi / period
	return func(tjd float64) astrometry.State {
		s, c := math.Sincos(n*(tjd-astrometry.J2000) + phase)
		return astrometry.State{
			Pos: r3.Vec{X: r * c, Y: r * s},
			Vel: r3.Vec{X: -r * n * s, Y: r * n * c},
		}
	}
}

func fixed(x, y, z float64) stateFunc {
	return func(float64) astrometry.State {
		return astrometry.State{Pos: r3.Vec{X: x, Y: y, Z: z}}
	}
}

// fakeProvider serves circular orbits and counts State calls.
type fakeProvider struct {
	model  Model
	lo, hi float64
	bodies map[Target]stateFunc
	fail   map[Target]error
	calls  int
}

func newFakeProvider(m Model) *fakeProvider {
	earth := circle(1, 365.25, 0)
	moon := circle(0.00257, 27.32, 1)
	return &fakeProvider{
		model: m,
		lo:    2000000.5,
		hi:    3000000.5,
		bodies: map[Target]stateFunc{
			TargetSun:    fixed(0.003, -0.002, 0.0001),
			TargetEarth:  earth,
			TargetMoon:   func(tjd float64) astrometry.State { return earth(tjd).Add(moon(tjd)) },
			TargetMars:   circle(1.52, 687, 2),
			TargetChiron: circle(13.6, 50*365.25, 3),
		},
		fail: make(map[Target]error),
	}
}

func (f *fakeProvider) Model() Model { return f.model }

func (f *fakeProvider) State(tjd float64, t Target, speed bool) (astrometry.State, error) {
	f.calls++
	if err, ok := f.fail[t]; ok {
		return astrometry.State{}, err
	}
	if tjd < f.lo || tjd > f.hi {
		return astrometry.State{}, newError(KindOutOfRange, "state", -1, f.model, fmt.Errorf("JD %.1f outside fake range", tjd))
	}
	fn, ok := f.bodies[t]
	if !ok {
		return astrometry.State{}, newError(KindNotAvailable, "state", -1, f.model, fmt.Errorf("no %v", t))
	}
	st := fn(tjd)
	if !speed {
		st.Vel = r3.Vec{}
	}
	return st, nil
}

func (f *fakeProvider) Covers(tjd float64, t Target) bool {
	_, ok := f.bodies[t]
	return ok && tjd >= f.lo && tjd <= f.hi
}

func (f *fakeProvider) Heliocentric() bool { return false }
func (f *fakeProvider) FrameBias() bool    { return false }
func (f *fakeProvider) Close() error       { return nil }

type recorder struct {
	hits, misses int
	fallbacks    []string
	errs         []string
}

func (r *recorder) CacheRequest(hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}
func (r *recorder) ProviderCall(string)               {}
func (r *recorder) Fallback(from, to string)          { r.fallbacks = append(r.fallbacks, from+"->"+to) }
func (r *recorder) Error(kind string)                 { r.errs = append(r.errs, kind) }
func (r *recorder) ObserveCalc(string, time.Duration) {}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func analyticEngine(t *testing.T, opts ...Option) *Engine {
	return newTestEngine(t, append([]Option{WithDefaultModel(ModelAnalytic)}, opts...)...)
}

func assertZeroResult(t *testing.T, res Result, msg string) {
	t.Helper()
	var zero [6]float64
	assert.Equal(t, zero, res.Coords, msg)
	assert.Equal(t, zero, res.EclipticCart, msg)
	assert.Equal(t, zero, res.EclipticPolar, msg)
	assert.Equal(t, zero, res.EquatorialCart, msg)
	assert.Equal(t, zero, res.EquatorialPolar, msg)
}

// angleDiff returns a - b reduced to [-180, 180).
func angleDiff(a, b float64) float64 {
	return math.Mod(math.Mod(a-b, 360)+540, 360) - 180
}

// separation returns the angle in degrees between the polar positions of a
// and b.
func separation(a, b Result) float64 {
	la, ba := a.Lon()*astrometry.Deg2Rad, a.Lat()*astrometry.Deg2Rad
	lb, bb := b.Lon()*astrometry.Deg2Rad, b.Lat()*astrometry.Deg2Rad
	c := math.Sin(ba)*math.Sin(bb) + math.Cos(ba)*math.Cos(bb)*math.Cos(la-lb)
	return math.Acos(math.Min(1, c)) * astrometry.Rad2Deg
}

// Without FlagSpeed every velocity component must be exactly zero.
func TestCalc_ZeroVelocityWithoutSpeed(t *testing.T) {
	e := analyticEngine(t, WithTopo(13.4, 52.5, 40))
	bodies := []Body{Sun, Moon, Mercury, Mars, Pluto, Earth, Chiron, Ceres, MeanNode, TrueNode, MeanApogee, OscuApogee}
	flagSets := []Flag{
		0, FlagEquatorial, FlagXYZ, FlagEquatorial | FlagXYZ, FlagRadians, FlagNoNut,
		FlagJ2000, FlagTruePos, FlagHelCtr, FlagSidereal, FlagTopoCtr, FlagNoAberr | FlagNoGDefl,
	}
	for _, tjd := range []float64{2451545.0, 2460000.5} {
		for _, b := range bodies {
			for _, f := range flagSets {
				res, err := e.Calc(tjd, b, f)
				require.NoError(t, err, "%v %v", b, f)
				msg := fmt.Sprintf("%v at %.1f with %v", b, tjd, f)
				for _, v := range [][6]float64{res.Coords, res.EclipticCart, res.EclipticPolar, res.EquatorialCart, res.EquatorialPolar} {
					assert.Equal(t, [3]float64{}, [3]float64{v[3], v[4], v[5]}, msg)
				}
			}
		}
	}
}

// A repeated request is answered from the cache without provider calls.
func TestCalc_SecondCallServedFromCache(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	rec := &recorder{}
	e := newTestEngine(t, WithProvider(fake), WithMetrics(rec))

	first, err := e.Calc(2451545.0, Mars, FlagSpeed)
	require.NoError(t, err)
	calls := fake.calls
	require.Positive(t, calls)

	second, err := e.Calc(2451545.0, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, calls, fake.calls)
	assert.Equal(t, 1, rec.hits)

	// output bits are re-derived from the stored vectors
	cart, err := e.Calc(2451545.0, Mars, FlagSpeed|FlagEquatorial|FlagXYZ)
	require.NoError(t, err)
	assert.Equal(t, calls, fake.calls)
	assert.Equal(t, first.EquatorialCart, cart.Coords)

	// an entry computed with speed answers a request without it
	slow, err := e.Calc(2451545.0, Mars, 0)
	require.NoError(t, err)
	assert.Equal(t, calls, fake.calls)
	assert.Equal(t, first.Coords[:3], slow.Coords[:3])
	assert.Zero(t, slow.Coords[3])

	_, err = e.Calc(2451546.0, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Greater(t, fake.calls, calls)
}

func TestCalc_SpeedAfterNoSpeedRecomputes(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	e := newTestEngine(t, WithProvider(fake))

	_, err := e.Calc(2451545.0, Mars, 0)
	require.NoError(t, err)
	calls := fake.calls

	res, err := e.Calc(2451545.0, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Greater(t, fake.calls, calls)
	assert.NotZero(t, res.SpeedLon())
}

func TestLightTime_MatchesDistanceOverC(t *testing.T) {
	tests := []struct {
		name string
		body stateFunc
		dist float64
	}{
		{"static at 1 AU", fixed(1, 0, 0), 1},
		{"slow at 2.5 AU", func(tjd float64) astrometry.State {
			return astrometry.State{
				Pos: r3.Vec{X: 2.5, Y: 1e-6 * (tjd - astrometry.J2000)},
				Vel: r3.Vec{Y: 1e-6},
			}
		}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeProvider(ModelCheb)
			fake.bodies[TargetEarth] = fixed(0, 0, 0)
			fake.bodies[TargetSun] = fixed(0, -1, 0)
			fake.bodies[TargetMars] = tt.body
			e := newTestEngine(t, WithProvider(fake))

			for _, f := range []Flag{FlagNoAberr | FlagNoGDefl, FlagSpeed} {
				res, err := e.Calc(astrometry.J2000, Mars, f)
				require.NoError(t, err)
				assert.InDelta(t, tt.dist*astrometry.LightTimePerAU, res.LightTime, 1e-9)
			}
		})
	}
}

func TestLightTime_TruePosHasNone(t *testing.T) {
	e := newTestEngine(t, WithProvider(newFakeProvider(ModelCheb)))
	res, err := e.Calc(astrometry.J2000, Mars, FlagTruePos)
	require.NoError(t, err)
	assert.Zero(t, res.LightTime)
}

// A sidereal request between two tropical ones leaves the tropical result
// unchanged.
func TestSidereal_TropicalRoundTrip(t *testing.T) {
	e := analyticEngine(t)
	const tjd = 2455000.5

	trop, err := e.Calc(tjd, Mars, FlagSpeed)
	require.NoError(t, err)
	sid, err := e.Calc(tjd, Mars, FlagSpeed|FlagSidereal)
	require.NoError(t, err)
	again, err := e.Calc(tjd, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, trop, again)

	assert.InDelta(t, 0, angleDiff(sid.Lon(), trop.Lon()-e.Ayanamsha(tjd, 0)), 1e-9)
	assert.InDelta(t, trop.Lat(), sid.Lat(), 1e-12)
	assert.Equal(t, trop.EquatorialPolar, sid.EquatorialPolar)
	// the sidereal zodiac moves with the precession of about 50"/year
	assert.InDelta(t, trop.SpeedLon()-50.3/3600/365.25, sid.SpeedLon(), 2e-5)

	require.NoError(t, e.SetSidereal(SiderealConfig{Mode: SidLahiri}))
	_, err = e.Calc(tjd, Mars, FlagSpeed|FlagSidereal)
	require.NoError(t, err)
	again, err = e.Calc(tjd, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, trop, again)
}

func TestAyanamsha_Catalog(t *testing.T) {
	tests := []struct {
		cfg  SiderealConfig
		want float64
	}{
		{SiderealConfig{Mode: SidFaganBradley}, 24.740},
		{SiderealConfig{Mode: SidLahiri}, 23.857},
		{SiderealConfig{Mode: SidJ2000}, 0},
		{SiderealConfig{Mode: SidUser, T0: astrometry.J2000, AyanT0: 10}, 10},
	}
	e := analyticEngine(t)
	for _, tt := range tests {
		t.Run(tt.cfg.Mode.String(), func(t *testing.T) {
			require.NoError(t, e.SetSidereal(tt.cfg))
			assert.InDelta(t, tt.want, e.Ayanamsha(astrometry.J2000, FlagNoNut), 0.005)
			_, nut, _ := e.frames(astrometry.J2000)
			assert.InDelta(t, nut.DPsi*astrometry.Rad2Deg,
				angleDiff(e.Ayanamsha(astrometry.J2000, 0), e.Ayanamsha(astrometry.J2000, FlagNoNut)), 1e-12)
		})
	}
}

func TestSidereal_EclipticT0MatchesJ2000(t *testing.T) {
	e := analyticEngine(t, WithSidereal(SiderealConfig{Mode: SidJ2000, Projection: ProjEclipticT0}))
	const tjd = 2458000.5

	sid, err := e.Calc(tjd, Jupiter, FlagSidereal)
	require.NoError(t, err)
	j2000, err := e.Calc(tjd, Jupiter, FlagJ2000)
	require.NoError(t, err)
	assert.InDelta(t, 0, angleDiff(j2000.Lon(), sid.Lon()), 1e-9)
	assert.InDelta(t, j2000.Lat(), sid.Lat(), 1e-9)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, j2000.EquatorialCart[i], sid.EquatorialCart[i], 1e-12)
	}
}

func TestSidereal_SolarSystemPlane(t *testing.T) {
	e := analyticEngine(t, WithSidereal(SiderealConfig{Mode: SidJ2000, Projection: ProjSolarSystemPlane}))
	const tjd = 2458000.5

	sid, err := e.Calc(tjd, Saturn, FlagSidereal)
	require.NoError(t, err)
	j2000, err := e.Calc(tjd, Saturn, FlagJ2000)
	require.NoError(t, err)
	assert.InDelta(t, 0, angleDiff(j2000.Lon(), sid.Lon()), 2)
	assert.Less(t, math.Abs(sid.Lat()), math.Abs(j2000.Lat())+1.6)
}

// The heliocentric Sun is zero by convention, whatever the flags.
func TestCalc_HeliocentricSunIsZero(t *testing.T) {
	engines := map[string]*Engine{
		"analytic": analyticEngine(t),
		"fake":     newTestEngine(t, WithProvider(newFakeProvider(ModelCheb))),
	}
	flagSets := []Flag{
		FlagHelCtr, FlagHelCtr | FlagSpeed, FlagHelCtr | FlagEquatorial | FlagXYZ,
		FlagHelCtr | FlagSidereal | FlagSpeed, FlagHelCtr | FlagJ2000, FlagHelCtr | FlagTruePos | FlagRadians,
	}
	for name, e := range engines {
		for _, tjd := range []float64{2415020.5, 2451545.0, 2470000.5} {
			for _, f := range flagSets {
				res, err := e.Calc(tjd, Sun, f)
				require.NoError(t, err)
				assertZeroResult(t, res, fmt.Sprintf("%s %.1f %v", name, tjd, f))
			}
		}
	}
}

func TestCalc_BarycentricAnalyticIsConfigError(t *testing.T) {
	noMars := newFakeProvider(ModelCheb)
	delete(noMars.bodies, TargetMars)

	tests := []struct {
		name  string
		e     *Engine
		flags Flag
	}{
		{"explicit flag", newTestEngine(t), FlagBaryCtr | FlagAnalytic},
		{"default model", analyticEngine(t), FlagBaryCtr},
		{"reached by fallback", newTestEngine(t, WithProvider(noMars)), FlagBaryCtr | FlagSpeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.e.Calc(astrometry.J2000, Mars, tt.flags)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			var ee *Error
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, KindConfig, ee.Kind)
			assert.Equal(t, Mars, ee.Body)
			assert.Equal(t, Result{}, res)
		})
	}
}

// Meeus, Astronomical Algorithms, example 25.a: 1992 October 13.0 TD.
func TestAnalytic_SunReference(t *testing.T) {
	e := analyticEngine(t)
	res, err := e.Calc(2448908.5, Sun, 0)
	require.NoError(t, err)
	assert.InDelta(t, 199.906060, res.Lon(), 0.02)
	assert.InDelta(t, 0, res.Lat(), 0.003)
	assert.InDelta(t, 0.99761, res.Dist(), 2e-4)
	assert.Equal(t, ModelAnalytic, res.Model)
	assert.True(t, res.Flags.Has(FlagAnalytic))
}

// Meeus, Astronomical Algorithms, example 47.a: 1992 April 12.0 TD.
func TestAnalytic_MoonReference(t *testing.T) {
	e := analyticEngine(t)
	res, err := e.Calc(2448724.5, Moon, 0)
	require.NoError(t, err)
	const arcsec = 1.0 / 3600
	assert.InDelta(t, 133.167265, res.Lon(), 5*arcsec)
	assert.InDelta(t, -3.229126, res.Lat(), 5*arcsec)

	// the reference distance is geometric; light time adds about 34 km
	geo, err := e.Calc(2448724.5, Moon, FlagTruePos)
	require.NoError(t, err)
	assert.InDelta(t, 368409.7/astrometry.AUKm, geo.Dist(), 1/astrometry.AUKm)
	assert.InDelta(t, 34, math.Abs(res.Dist()-geo.Dist())*astrometry.AUKm, 10)
}

func TestCalc_OutsideWindowIsRangeError(t *testing.T) {
	e := analyticEngine(t)
	for _, tc := range []struct {
		tjd float64
		b   Body
	}{
		{5000000.5, Mars},
		{500000.5, Sun},
		{1000000.5, Chiron},
		{4300000.5, Pholus},
		{5000000.5, TrueNode},
	} {
		res, err := e.Calc(tc.tjd, tc.b, FlagAnalytic)
		assert.ErrorIs(t, err, ErrOutOfRange, "%v at %.1f", tc.b, tc.tjd)
		assert.Equal(t, Result{}, res)
	}

	// no fallback when the analytic series does not cover the date either
	fake := newFakeProvider(ModelCheb)
	e = newTestEngine(t, WithProvider(fake))
	_, err := e.Calc(3500000.5, Mars, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ModelCheb, ee.Model)
}

func TestFallback_OutOfRangeCoveredByNextModel(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	fake.lo, fake.hi = 2451000.5, 2452000.5
	rec := &recorder{}
	e := newTestEngine(t, WithProvider(fake), WithMetrics(rec))

	res, err := e.Calc(2460000.5, Mars, 0)
	require.NoError(t, err)
	assert.Equal(t, ModelAnalytic, res.Model)
	assert.Contains(t, res.Warning, "using analytic ephemeris")
	assert.Contains(t, res.Warning, "out_of_range")
	assert.Equal(t, []string{"cheb->analytic"}, rec.fallbacks)
}

// A body served by the analytic series after a range fallback goes back to
// the coefficient files once the date is inside them again.
func TestFallback_ReturnsToPreferredModel(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	fake.lo, fake.hi = 2451000.5, 2452000.5
	e := newTestEngine(t, WithProvider(fake))

	res, err := e.Calc(2460000.5, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, ModelAnalytic, res.Model)
	assert.Equal(t, FlagAnalytic, res.Flags&modelMask)

	calls := fake.calls
	res, err = e.Calc(astrometry.J2000, Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, ModelCheb, res.Model)
	assert.Equal(t, FlagCheb, res.Flags&modelMask)
	assert.Empty(t, res.Warning)
	assert.Greater(t, fake.calls, calls)
}

func TestFallback_NotAvailable(t *testing.T) {
	jpl := newFakeProvider(ModelJPL)
	jpl.bodies = map[Target]stateFunc{}
	cheb := newFakeProvider(ModelCheb)
	rec := &recorder{}
	e := newTestEngine(t, WithProvider(jpl), WithProvider(cheb), WithMetrics(rec))

	res, err := e.Calc(astrometry.J2000, Mars, FlagJPL|FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, ModelCheb, res.Model)
	assert.True(t, res.Flags.Has(FlagCheb))
	assert.False(t, res.Flags.Has(FlagJPL))
	assert.True(t, strings.HasPrefix(res.Warning, "jpl: "), res.Warning)
	assert.Contains(t, res.Warning, "using cheb ephemeris")
	assert.Equal(t, []string{"jpl->cheb"}, rec.fallbacks)

	// the resolved model is tried first for the next request with these flags
	jplCalls := jpl.calls
	res, err = e.Calc(astrometry.J2000+1, Mars, FlagJPL|FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, ModelCheb, res.Model)
	assert.Empty(t, res.Warning)
	assert.Equal(t, jplCalls, jpl.calls)
}

func TestFallback_NoDirectoryUsesAnalytic(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Calc(astrometry.J2000, Mars, 0)
	require.NoError(t, err)
	assert.Equal(t, ModelAnalytic, res.Model)
	assert.True(t, strings.HasPrefix(res.Warning, "cheb: "), res.Warning)
}

// A hard failure invalidates the body's entry, so an earlier request is
// recomputed rather than served stale.
func TestCalc_HardErrorInvalidatesEntry(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	rec := &recorder{}
	e := newTestEngine(t, WithProvider(fake), WithMetrics(rec))

	first, err := e.Calc(astrometry.J2000, Mars, 0)
	require.NoError(t, err)

	fake.fail[TargetMars] = errors.New("disk read failed")
	res, err := e.Calc(astrometry.J2000+1, Mars, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, []string{"io"}, rec.errs)
	ent, ok := e.cache.get(Mars)
	require.True(t, ok)
	assert.False(t, ent.valid)
	assert.Equal(t, Model(0), ent.model)

	delete(fake.fail, TargetMars)
	calls := fake.calls
	again, err := e.Calc(astrometry.J2000, Mars, 0)
	require.NoError(t, err)
	assert.Greater(t, fake.calls, calls)
	assert.Equal(t, first, again)
}

func TestSetTopo(t *testing.T) {
	e := analyticEngine(t)
	const tjd = 2455000.5

	_, err := e.Calc(tjd, Moon, FlagTopoCtr)
	assert.ErrorIs(t, err, ErrConfig)

	e.SetTopo(0, 51.5, 0)
	geo, err := e.Calc(tjd, Moon, 0)
	require.NoError(t, err)
	topo, err := e.Calc(tjd, Moon, FlagTopoCtr)
	require.NoError(t, err)
	assert.True(t, e.obs.valid)

	// the parallax never exceeds the horizontal parallax; the Moon is close
	// to the horizon at this moment
	sep := separation(geo, topo)
	hp := math.Asin(astrometry.EarthRadius/1000/(geo.Dist()*astrometry.AUKm)) * astrometry.Rad2Deg
	assert.LessOrEqual(t, sep, hp+1e-3)
	assert.Greater(t, sep, 0.9*hp)
	assert.InDelta(t, geo.Dist(), topo.Dist(), 7000/astrometry.AUKm)

	e.SetTopo(180, -51.5, 0)
	assert.False(t, e.obs.valid)
	other, err := e.Calc(tjd, Moon, FlagTopoCtr)
	require.NoError(t, err)
	assert.NotEqual(t, topo.Coords, other.Coords)
}

// The osculating points move at the rate of their positions.
func TestLunarPoints_OsculatingSpeed(t *testing.T) {
	e := analyticEngine(t)
	const tjd = 2455000.3
	for _, b := range []Body{TrueNode, OscuApogee} {
		res, err := e.Calc(tjd, b, FlagSpeed)
		require.NoError(t, err)
		want := numericSpeed(t, e, tjd, b, 0, 0.01)
		assert.InDelta(t, want, res.SpeedLon(), 3e-4, "%v", b)
	}
	node, err := e.Calc(tjd, TrueNode, FlagSpeed)
	require.NoError(t, err)
	assert.InDelta(t, -0.032745, node.SpeedLon(), 5e-4)
}

func TestLunarPoints(t *testing.T) {
	e := analyticEngine(t)

	node, err := e.Calc(astrometry.J2000, MeanNode, FlagNoNut|FlagSpeed)
	require.NoError(t, err)
	assert.InDelta(t, 125.0445479, node.Lon(), 1e-9)
	assert.InDelta(t, 0, node.Lat(), 1e-9)
	assert.InDelta(t, 384400/astrometry.AUKm, node.Dist(), 1e-12)
	assert.InDelta(t, -1934.1362891/36525, node.SpeedLon(), 1e-6)

	mean, err := e.Calc(astrometry.J2000, MeanNode, 0)
	require.NoError(t, err)
	trueNode, err := e.Calc(astrometry.J2000, TrueNode, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, angleDiff(trueNode.Lon(), mean.Lon()), 2.5)
	assert.InDelta(t, 0, trueNode.Lat(), 1e-6)

	apogee, err := e.Calc(astrometry.J2000, MeanApogee, FlagNoNut)
	require.NoError(t, err)
	assert.InDelta(t, 0, angleDiff(apogee.Lon(), 263.3532465), 0.2)
	assert.LessOrEqual(t, math.Abs(apogee.Lat()), 5.2)

	osc, err := e.Calc(astrometry.J2000, OscuApogee, FlagSpeed)
	require.NoError(t, err)
	assert.Greater(t, osc.Dist(), 0.0025)
	assert.Less(t, osc.Dist(), 0.0030)
	assert.NotZero(t, osc.SpeedLon())

	helio, err := e.Calc(astrometry.J2000, TrueNode, FlagHelCtr)
	require.NoError(t, err)
	assertZeroResult(t, helio, "heliocentric node")
}

func TestCalc_OutputSelection(t *testing.T) {
	e := analyticEngine(t)
	const tjd = 2451545.0
	base, err := e.Calc(tjd, Venus, FlagSpeed|FlagRadians)
	require.NoError(t, err)
	assert.Equal(t, base.EclipticPolar, base.Coords)

	tests := []struct {
		flags Flag
		want  [6]float64
	}{
		{FlagSpeed | FlagXYZ, base.EclipticCart},
		{FlagSpeed | FlagEquatorial | FlagXYZ, base.EquatorialCart},
		{FlagSpeed | FlagEquatorial | FlagRadians, base.EquatorialPolar},
	}
	for _, tt := range tests {
		res, err := e.Calc(tjd, Venus, tt.flags)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Coords, "%v", tt.flags)
	}

	deg, err := e.Calc(tjd, Venus, FlagSpeed)
	require.NoError(t, err)
	assert.InDelta(t, base.EclipticPolar[0]*astrometry.Rad2Deg, deg.Lon(), 1e-12)
	assert.InDelta(t, base.EclipticPolar[3]*astrometry.Rad2Deg, deg.SpeedLon(), 1e-12)
	assert.Equal(t, base.EclipticPolar[2], deg.Dist())
}

func TestCalc_Errors(t *testing.T) {
	e := analyticEngine(t)
	_, err := e.Calc(astrometry.J2000, Body(99), 0)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = e.Calc(astrometry.J2000, Asteroid(433), 0)
	assert.ErrorIs(t, err, ErrNotAvailable)

	assert.ErrorIs(t, e.SetDefaultModel(Model(9)), ErrConfig)
	assert.ErrorIs(t, e.SetSidereal(SiderealConfig{Mode: SidMode(42)}), ErrConfig)
	assert.ErrorIs(t, e.SetSidereal(SiderealConfig{Mode: SidUser}), ErrConfig)

	require.NoError(t, e.Close())
	_, err = e.Calc(astrometry.J2000, Sun, 0)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(WithDefaultModel(Model(0)))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNormalizeFlags(t *testing.T) {
	tests := []struct {
		in, want Flag
	}{
		{FlagSpeed, FlagSpeed},
		{FlagHelCtr, FlagHelCtr | FlagNoAberr | FlagNoGDefl},
		{FlagHelCtr | FlagBaryCtr, FlagHelCtr | FlagNoAberr | FlagNoGDefl},
		{FlagBaryCtr | FlagTopoCtr, FlagBaryCtr | FlagNoAberr | FlagNoGDefl},
		{FlagTruePos, FlagTruePos | FlagNoAberr | FlagNoGDefl},
		{FlagJ2000, FlagJ2000 | FlagNoNut},
		{FlagJPL | FlagCheb | FlagAnalytic, FlagJPL},
		{FlagCheb | FlagAnalytic, FlagCheb},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeFlags(tt.in), "%v", tt.in)
	}
}

func TestCalcUT(t *testing.T) {
	e := analyticEngine(t)
	const ut = 2455197.5
	viaUT, err := e.CalcUT(ut, Mars, FlagSpeed)
	require.NoError(t, err)
	viaTT, err := e.Calc(ut+e.DeltaT(ut), Mars, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, viaUT, viaTT)
	// about 67 s in 2010
	assert.InDelta(t, 66.7, e.DeltaT(ut)*86400, 0.2)
}

func TestSiderealTime_J2000(t *testing.T) {
	e := analyticEngine(t)
	// GMST at 2000 January 1, 12h UT is 18h41m50.55s; the equation of the
	// equinoxes is about -0.9 s
	assert.InDelta(t, 18.697375-0.9/3600, e.SiderealTime(2451545.0), 1e-4)
}

func TestReset_KeepsResults(t *testing.T) {
	fake := newFakeProvider(ModelCheb)
	e := newTestEngine(t, WithProvider(fake))
	first, err := e.Calc(astrometry.J2000, Moon, FlagSpeed)
	require.NoError(t, err)

	e.Reset()
	calls := fake.calls
	again, err := e.Calc(astrometry.J2000, Moon, FlagSpeed)
	require.NoError(t, err)
	assert.Greater(t, fake.calls, calls)
	assert.Equal(t, first, again)

	require.NoError(t, e.SetDefaultModel(ModelAnalytic))
	res, err := e.Calc(astrometry.J2000, Moon, FlagSpeed)
	require.NoError(t, err)
	assert.Equal(t, ModelAnalytic, res.Model)
}

func TestMetrics_EngineCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	col, err := observability.NewEngineCollector(reg)
	require.NoError(t, err)

	jpl := newFakeProvider(ModelJPL)
	jpl.bodies = map[Target]stateFunc{}
	e := newTestEngine(t, WithProvider(jpl), WithProvider(newFakeProvider(ModelCheb)), WithMetrics(col))

	for i := 0; i < 2; i++ {
		_, err := e.Calc(astrometry.J2000, Mars, FlagJPL)
		require.NoError(t, err)
	}
	_, err = e.Calc(astrometry.J2000, Body(99), 0)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(col.Fallbacks.WithLabelValues("jpl", "cheb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.Errors.WithLabelValues("config")))
	assert.Positive(t, testutil.ToFloat64(col.ProviderCalls.WithLabelValues("cheb")))
}
