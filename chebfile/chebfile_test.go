package chebfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
)

const (
	orbitRadius = 1.5
	orbitPeriod = 600.0
	orbitIncl   = 10 * astrometry.Deg2Rad
	spanStart   = 2451536.5
	spanEnd     = spanStart + 256
)

// inclinedCircle is a circular orbit tilted about the x axis.
func inclinedCircle(tjd float64) (r3.Vec, error) {
	n := astrometry.TwoPi / orbitPeriod
	s, c := math.Sincos(n * (tjd - spanStart))
	return astrometry.RotX(-orbitIncl).Apply(r3.Vec{X: orbitRadius * c, Y: orbitRadius * s}), nil
}

func inclinedCircleVel(tjd float64) r3.Vec {
	n := astrometry.TwoPi / orbitPeriod
	s, c := math.Sincos(n * (tjd - spanStart))
	return astrometry.RotX(-orbitIncl).Apply(r3.Vec{X: -orbitRadius * n * s, Y: orbitRadius * n * c})
}

func fitAndOpen(t *testing.T, spec FitSpec, order binary.ByteOrder) *File {
	t.Helper()
	body, maxErr, err := Fit(inclinedCircle, spec, spanStart, spanEnd)
	require.NoError(t, err)
	assert.Less(t, maxErr, 1e-10)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FileSpec{
		Title: "test file", DENumber: 431, Start: spanStart, End: spanEnd,
		EMRat: astrometry.EarthMoonRatio, Order: order,
	}, []BodyData{body}))
	f, err := New(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return f
}

func assertMatchesOrbit(t *testing.T, f *File, id int) {
	t.Helper()
	for _, tjd := range []float64{spanStart, spanStart + 0.3, spanStart + 31.99, spanStart + 32, spanStart + 100.7, spanEnd} {
		st, err := f.State(tjd, id, true)
		require.NoError(t, err, "tjd %f", tjd)
		want, _ := inclinedCircle(tjd)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(st.Pos, want)), 1e-10, "position at %f", tjd)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(st.Vel, inclinedCircleVel(tjd))), 1e-10, "velocity at %f", tjd)
	}
}

func TestChebyFit_ReproducesPolynomial(t *testing.T) {
	nodes := chebyNodes(6)
	f := make([]float64, len(nodes))
	for i, x := range nodes {
		f[i] = 3 - 2*x + 0.5*x*x*x
	}
	c := chebyFit(f)
	// 0.5x^3 = 0.375 T1 + 0.125 T3
	want := []float64{3, -2 + 0.375, 0, 0.125, 0, 0}
	for i := range want {
		assert.InDelta(t, want[i], c[i], 1e-14, "coefficient %d", i)
	}
}

func TestRoundTrip_Plain(t *testing.T) {
	f := fitAndOpen(t, FitSpec{ID: BodyMars, NCoe: 14, DSeg: 32}, nil)
	defer f.Close()

	h := f.Header()
	assert.Equal(t, "test file", h.Title)
	assert.Equal(t, 431, h.DENumber)
	assert.Equal(t, binary.LittleEndian, h.Order)
	require.Len(t, h.Bodies, 1)
	assert.Equal(t, 8, h.Bodies[0].NSeg)
	assert.True(t, f.Has(BodyMars))
	assertMatchesOrbit(t, f, BodyMars)

	st, err := f.State(spanStart+5, BodyMars, false)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{}, st.Vel)
}

func TestRoundTrip_BigEndian(t *testing.T) {
	f := fitAndOpen(t, FitSpec{ID: BodyCeres, Flags: FlagHeliocentric, NCoe: 14, DSeg: 32}, binary.BigEndian)
	defer f.Close()

	assert.Equal(t, binary.BigEndian, f.Header().Order)
	info, ok := f.Body(BodyCeres)
	require.True(t, ok)
	assert.NotZero(t, info.Flags&FlagHeliocentric)
	assertMatchesOrbit(t, f, BodyCeres)
}

func TestRoundTrip_RotatedDerivedElements(t *testing.T) {
	body, _, err := Fit(inclinedCircle, FitSpec{ID: BodyJupiter, NCoe: 14, DSeg: 32, Rotate: true}, spanStart, spanEnd)
	require.NoError(t, err)
	assert.NotZero(t, body.Info.Flags&FlagRotated)
	assert.InDelta(t, math.Tan(orbitIncl/2), body.Info.Elements.Q, 1e-9)
	assert.InDelta(t, 0, body.Info.Elements.P, 1e-9)
	// in the orbital plane frame the out-of-plane series vanishes
	for _, c := range body.Segments[0][2] {
		assert.InDelta(t, 0, c, 1e-12)
	}

	f := fitAndOpen(t, FitSpec{ID: BodyJupiter, NCoe: 14, DSeg: 32, Rotate: true}, nil)
	defer f.Close()
	assertMatchesOrbit(t, f, BodyJupiter)
}

func TestRoundTrip_RotatedMoon(t *testing.T) {
	el := &OrbitElements{Epoch: spanStart, Q: 0.045, P: 2.1, DP: -33.7}
	f := fitAndOpen(t, FitSpec{ID: BodyMoon, Flags: FlagMoon, NCoe: 14, DSeg: 32, Rotate: true, Elements: el}, nil)
	defer f.Close()
	assertMatchesOrbit(t, f, BodyMoon)

	_, _, err := Fit(inclinedCircle, FitSpec{ID: BodyMoon, Flags: FlagMoon, NCoe: 14, DSeg: 32, Rotate: true}, spanStart, spanEnd)
	assert.Error(t, err)
}

func TestReconstruct_ReferenceEllipse(t *testing.T) {
	n := 4
	zero := func() []float64 { return make([]float64, n) }
	ref := [2][]float64{zero(), zero()}
	ref[0][0] = 1
	body := BodyData{
		Info: BodyInfo{ID: BodyPholus, Flags: FlagRotated, NCoe: n, DSeg: 100, TSeg0: spanStart,
			Elements: OrbitElements{Epoch: spanStart + 50, Peri: math.Pi / 2}},
		Ref:      &ref,
		Segments: [][3][]float64{{zero(), zero(), zero()}},
	}
	body.Segments[0][2][0] = 0.25

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FileSpec{Start: spanStart, End: spanStart + 100, EMRat: 81.3}, []BodyData{body}))
	f, err := New(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	info, _ := f.Body(BodyPholus)
	assert.NotZero(t, info.Flags&FlagEllipse)
	st, err := f.State(spanStart+10, BodyPholus, false)
	require.NoError(t, err)
	assert.InDelta(t, 0, st.Pos.X, 1e-15)
	assert.InDelta(t, 1, st.Pos.Y, 1e-15)
	assert.InDelta(t, 0.25, st.Pos.Z, 1e-15)

	// a second evaluation in the same segment must not add the ellipse twice
	st, err = f.State(spanStart+20, BodyPholus, false)
	require.NoError(t, err)
	assert.InDelta(t, 1, st.Pos.Y, 1e-15)
	assert.Equal(t, 1.0, ref[0][0])
}

func TestTriad_Orthonormal(t *testing.T) {
	for _, moon := range []bool{false, true} {
		ux, uy, uz := Triad(OrbitElements{Epoch: astrometry.J2000, Q: 0.3, P: -0.2, DQ: 0.01, DP: 0.4}, astrometry.J2000+5000, moon)
		for _, u := range []r3.Vec{ux, uy, uz} {
			assert.InDelta(t, 1, r3.Norm(u), 1e-14)
		}
		assert.InDelta(t, 0, r3.Dot(ux, uy), 1e-14)
		assert.InDelta(t, 0, r3.Dot(ux, uz), 1e-14)
		assert.InDelta(t, 0, r3.Dot(uy, uz), 1e-14)
		assert.InDelta(t, 1, r3.Dot(r3.Cross(ux, uy), uz), 1e-14)
	}
}

func TestState_Errors(t *testing.T) {
	f := fitAndOpen(t, FitSpec{ID: BodyMars, NCoe: 10, DSeg: 32}, nil)
	defer f.Close()

	_, err := f.State(spanStart+1, BodyVenus, true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.State(spanStart-1, BodyMars, true)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = f.State(spanEnd+1e-3, BodyMars, true)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.False(t, f.Covers(spanEnd+1))
}

func TestNew_RejectsCorruption(t *testing.T) {
	body, _, err := Fit(inclinedCircle, FitSpec{ID: BodyMars, NCoe: 8, DSeg: 64}, spanStart, spanEnd)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FileSpec{Start: spanStart, End: spanEnd, EMRat: 81.3}, []BodyData{body}))
	good := buf.Bytes()

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[fixedHeader+20] ^= 0xff
		_, err := New(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("marker", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[titleSize] = 'x'
		_, err := New(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := New(bytes.NewReader(good[:fixedHeader+10]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("truncated data", func(t *testing.T) {
		f, err := New(bytes.NewReader(good[:len(good)-8]))
		require.NoError(t, err)
		_, err = f.State(spanEnd-1, BodyMars, false)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestOpen_FileSystem(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "sepl_18.cheb"))
	assert.ErrorIs(t, err, ErrNotFound)

	body, _, err := Fit(inclinedCircle, FitSpec{ID: BodyMars, NCoe: 14, DSeg: 32}, spanStart, spanEnd)
	require.NoError(t, err)
	path := filepath.Join(dir, "sub", "sepl_18.cheb")
	require.NoError(t, WriteFile(path, FileSpec{Start: spanStart, End: spanEnd, EMRat: 81.3}, []BodyData{body}))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())
	assertMatchesOrbit(t, f, BodyMars)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestWrite_Validation(t *testing.T) {
	spec := FileSpec{Start: 0, End: 10}
	assert.Error(t, Write(&bytes.Buffer{}, spec, nil))
	assert.Error(t, Write(&bytes.Buffer{}, spec, []BodyData{{Info: BodyInfo{NCoe: 2, DSeg: 10},
		Segments: [][3][]float64{{{1}, {1, 2}, {1, 2}}}}}))
	assert.Error(t, Write(&bytes.Buffer{}, FileSpec{Start: 10, End: 10}, []BodyData{{Info: BodyInfo{NCoe: 1, DSeg: 10},
		Segments: [][3][]float64{{{1}, {1}, {1}}}}}))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		tjd  float64
		ast  int
		want string
	}{
		{"planets J2000", KindPlanets, astrometry.J2000, 0, "sepl_18.cheb"},
		{"moon 1799", KindMoon, astrometry.JulDay(1799, 12, 31, 0, astrometry.Gregorian), 0, "semo_12.cheb"},
		{"asteroids 2400", KindAsteroids, astrometry.JulDay(2400, 1, 1, 0, astrometry.Gregorian), 0, "seas_24.cheb"},
		{"planets 500 BCE", KindPlanets, astrometry.JulDay(-499, 6, 1, 0, astrometry.Julian), 0, "seplm06.cheb"},
		{"planets 50 BCE", KindPlanets, astrometry.JulDay(-49, 6, 1, 0, astrometry.Julian), 0, "seplm06.cheb"},
		{"numbered", KindNumbered, 0, 433, filepath.Join("ast0", "se00433.cheb")},
		{"numbered large", KindNumbered, 0, 123456, filepath.Join("ast123", "s123456.cheb")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.kind, tt.tjd, tt.ast))
		})
	}
}

func TestFileSpan(t *testing.T) {
	start, end := FileSpan(astrometry.J2000)
	assert.Equal(t, astrometry.JulDay(1800, 1, 1, 0, astrometry.Gregorian), start)
	assert.Equal(t, astrometry.JulDay(2400, 1, 1, 0, astrometry.Gregorian), end)
	assert.Equal(t, "planets", KindPlanets.String())
}
