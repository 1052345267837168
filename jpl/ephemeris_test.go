package jpl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAU    = 149597870.7
	testEMRat = 81.30056
	testStart = 2451536.5
	testStep  = 32.0
	testNCF   = 12
)

// linear coefficients (km) of component c of ipt row i: x = a + b*tc
func testCoef(i, c int) (a, b float64) {
	return testAU * 0.1 * float64(i+1) * float64(c+1), testAU * 0.01 * float64(i+1)
}

// buildDE writes a one-record DE405-like file whose eleven body series are
// linear in the normalized time.
func buildDE(t *testing.T, order binary.ByteOrder, emrat float64) []byte {
	return buildDEWith(t, order, emrat, nil)
}

type namedConst struct {
	name  string
	value float64
}

func buildDEWith(t *testing.T, order binary.ByteOrder, emrat float64, extra []namedConst) []byte {
	t.Helper()
	consts := append([]namedConst{{"DENUM", 405}, {"AU", testAU}, {"EMRAT", emrat}}, extra...)
	const ncoeff = 2 + 11*3*testNCF
	const recsize = ncoeff * 8
	buf := make([]byte, 3*recsize)

	title := "JPL Planetary Ephemeris DE405/LE405"
	copy(buf, title)
	copy(buf[84:], "Start Epoch: JED=  2451536.5")
	copy(buf[168:], "Final Epoch: JED=  2451568.5")
	for i, c := range consts {
		copy(buf[252+i*6:], fmt.Sprintf("%-6s", c.name))
	}

	h := buf[headerOffset:]
	putF := func(b []byte, off int, v float64) { order.PutUint64(b[off:], math.Float64bits(v)) }
	putF(h, 0, testStart)
	putF(h, 8, testStart+testStep)
	putF(h, 16, testStep)
	order.PutUint32(h[24:], uint32(len(consts)))
	putF(h, 28, testAU)
	putF(h, 36, emrat)
	for i := 0; i < 11; i++ {
		order.PutUint32(h[44+(i*3)*4:], uint32(3+3*testNCF*i))
		order.PutUint32(h[44+(i*3+1)*4:], testNCF)
		order.PutUint32(h[44+(i*3+2)*4:], 1)
	}
	order.PutUint32(h[44+36*4:], 405)

	for i, c := range consts {
		putF(buf[recsize:], i*8, c.value)
	}

	rec := buf[2*recsize:]
	putF(rec, 0, testStart)
	putF(rec, 8, testStart+testStep)
	for i := 0; i < 11; i++ {
		for c := 0; c < 3; c++ {
			a, b := testCoef(i, c)
			base := 2 + 3*testNCF*i + testNCF*c
			putF(rec, base*8, a)
			putF(rec, (base+1)*8, b)
		}
	}
	return buf
}

func openTestDE(t *testing.T, opts ...Option) *Ephemeris {
	t.Helper()
	eph, err := New(bytes.NewReader(buildDE(t, binary.LittleEndian, testEMRat)), opts...)
	require.NoError(t, err)
	return eph
}

// rowState is the expected barycentric state, in AU, of ipt row i at et.
func rowState(i int, et float64) [6]float64 {
	tc := 2*(et-testStart)/testStep - 1
	var s [6]float64
	for c := 0; c < 3; c++ {
		a, b := testCoef(i, c)
		s[c] = (a + b*tc) / testAU
		s[3+c] = b * 2 / testStep / testAU
	}
	return s
}

func assertPV(t *testing.T, want [6]float64, pos Position, vel Velocity) {
	t.Helper()
	got := [6]float64{pos.X, pos.Y, pos.Z, vel.DX, vel.DY, vel.DZ}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "component %d", i)
	}
}

func sub(a, b [6]float64) [6]float64 {
	for i := range a {
		a[i] -= b[i]
	}
	return a
}

func TestHeader(t *testing.T) {
	eph := openTestDE(t)
	defer eph.Close()

	assert.Equal(t, "DE405", eph.GetEphemName())
	assert.Equal(t, 405, eph.DENumber())
	start, end := eph.Range()
	assert.Equal(t, testStart, start)
	assert.Equal(t, testStart+testStep, end)
	assert.Equal(t, testAU, eph.GetEphemerisDouble(AUinKM))
	assert.Equal(t, testEMRat, eph.EarthMoonRatio())
	assert.EqualValues(t, 2+11*3*testNCF, eph.GetEphemerisLong(KernelNCoeff))
	assert.EqualValues(t, (2+11*3*testNCF)*8, eph.GetEphemerisLong(KernelRecordSize))
	assert.EqualValues(t, 0, eph.GetEphemerisLong(KernelSwapBytes))
	assert.EqualValues(t, 3, eph.GetIPTArrayValue(0))
	assert.EqualValues(t, -1, eph.GetIPTArrayValue(45))
	assert.Equal(t, -1.0, eph.GetEphemerisDouble(KernelSize))
	assert.True(t, eph.Covers(testStart+1))
	assert.False(t, eph.Covers(testStart-1))
	assert.False(t, eph.HasSeries(Nutations))
	assert.Contains(t, eph.Title()[0], "DE405")
}

func TestCalculatePV_Bodies(t *testing.T) {
	eph := openTestDE(t)
	defer eph.Close()
	et := testStart + 8

	emb := rowState(2, et)
	moonGeo := rowState(9, et)
	var earth, moon [6]float64
	for i := range earth {
		earth[i] = emb[i] - moonGeo[i]/(1+testEMRat)
		moon[i] = moonGeo[i] + earth[i]
	}

	tests := []struct {
		name   string
		target Planet
		center CenterBody
		want   [6]float64
	}{
		{"Mars barycentric", Mars, CenterSolarSystemBarycenter, rowState(3, et)},
		{"Sun barycentric", Sun, CenterSolarSystemBarycenter, rowState(10, et)},
		{"Mars heliocentric", Mars, CenterSun, sub(rowState(3, et), rowState(10, et))},
		{"EMB barycentric", EarthMoonBarycenter, CenterSolarSystemBarycenter, emb},
		{"Earth barycentric", Earth, CenterSolarSystemBarycenter, earth},
		{"Moon barycentric", Moon, CenterSolarSystemBarycenter, moon},
		{"Moon geocentric", Moon, CenterEarth, moonGeo},
		{"Earth selenocentric", Earth, CenterMoon, sub([6]float64{}, moonGeo)},
		{"Venus from Earth", Venus, CenterEarth, sub(rowState(1, et), earth)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel, err := eph.CalculatePV(et, tt.target, tt.center, true)
			require.NoError(t, err)
			assertPV(t, tt.want, pos, vel)
		})
	}
}

func TestCalculatePV_RecordEdges(t *testing.T) {
	eph := openTestDE(t)
	defer eph.Close()

	for _, et := range []float64{testStart, testStart + testStep} {
		pos, vel, err := eph.CalculatePV(et, Jupiter, CenterSolarSystemBarycenter, true)
		require.NoError(t, err)
		assertPV(t, rowState(4, et), pos, vel)
	}
}

func TestCalculatePV_PositionOnly(t *testing.T) {
	eph := openTestDE(t)
	defer eph.Close()

	pos, vel, err := eph.CalculatePV(testStart+3, Saturn, CenterSolarSystemBarycenter, false)
	require.NoError(t, err)
	want := rowState(5, testStart+3)
	assert.InDelta(t, want[0], pos.X, 1e-12)
	assert.Equal(t, Velocity{}, vel)
}

func TestCalculatePV_Errors(t *testing.T) {
	eph := openTestDE(t)
	defer eph.Close()

	_, _, err := eph.CalculatePV(testStart-1, Mars, CenterSun, true)
	assert.ErrorIs(t, err, ErrOutsideRange)

	_, _, err = eph.CalculatePV(testStart+1, Nutations, CenterEarth, true)
	assert.ErrorIs(t, err, ErrQuantityNotInEphemeris)

	_, _, err = eph.CalculatePV(testStart+1, Planet(18), CenterEarth, true)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	pos, vel, err := eph.CalculatePV(testStart+1, Mars, CenterMars, true)
	require.NoError(t, err)
	assert.Equal(t, Position{}, pos)
	assert.Equal(t, Velocity{}, vel)
}

func TestConstants(t *testing.T) {
	for _, tt := range []struct {
		name string
		opts []Option
	}{
		{"preloaded", []Option{WithConstants()}},
		{"on demand", nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			eph := openTestDE(t, tt.opts...)
			defer eph.Close()

			name, err := eph.GetConstantName(2)
			require.NoError(t, err)
			assert.Equal(t, "EMRAT", name)
			v, err := eph.GetConstantValue(0)
			require.NoError(t, err)
			assert.Equal(t, 405.0, v)
			au, err := eph.Constant("AU")
			require.NoError(t, err)
			assert.Equal(t, testAU, au)

			_, err = eph.Constant("GMS")
			assert.ErrorIs(t, err, ErrConstantNotFound)
			_, err = eph.GetConstantName(3)
			assert.ErrorIs(t, err, ErrConstantNotFound)
		})
	}
}

func TestNew_BigEndian(t *testing.T) {
	eph, err := New(bytes.NewReader(buildDE(t, binary.BigEndian, testEMRat)))
	require.NoError(t, err)
	defer eph.Close()

	assert.EqualValues(t, 1, eph.GetEphemerisLong(KernelSwapBytes))
	pos, vel, err := eph.CalculatePV(testStart+20, Uranus, CenterSolarSystemBarycenter, true)
	require.NoError(t, err)
	assertPV(t, rowState(6, testStart+20), pos, vel)
}

func TestNew_RejectsCorruptHeader(t *testing.T) {
	_, err := New(bytes.NewReader(buildDE(t, binary.LittleEndian, 80.0)))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorIs(t, err, ErrInitialization)

	_, err = New(bytes.NewReader(make([]byte, 100)))
	assert.ErrorIs(t, err, ErrFileRead)
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title string
		name  string
		de    int64
		ok    bool
	}{
		{"JPL Planetary Ephemeris DE431/LE431", "DE431", 431, true},
		{"INPOP19a", "INPOP19a", 19, true},
		{"JPL Planetary Ephemeris DExxx", "DExxx", 0, false},
	}
	for _, tt := range tests {
		b := make([]byte, 84)
		copy(b, tt.title)
		name, de, ok := parseTitle(b)
		assert.Equal(t, tt.name, name, tt.title)
		assert.Equal(t, tt.de, de, tt.title)
		assert.Equal(t, tt.ok, ok, tt.title)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing.eph")
	assert.ErrorIs(t, err, ErrInitialization)
}

func TestMasses(t *testing.T) {
	const gms = 2.959122082855911e-04
	const gmb = 8.997011390199871e-10
	data := buildDEWith(t, binary.LittleEndian, testEMRat, []namedConst{
		{"GMS", gms}, {"GM1", 4.912480450364760e-11}, {"GMB", gmb},
		{"GM5", 2.825345840833870e-07}, {"MA0001", 1.400476556172344e-13},
	})
	eph, err := New(bytes.NewReader(data))
	require.NoError(t, err)
	defer eph.Close()

	m, err := eph.Masses()
	require.NoError(t, err)
	require.Len(t, m, 16)
	assert.Equal(t, "Sun", m[0].Name)
	assert.Equal(t, gms, m[0].GM)
	assert.InDelta(t, 1.660114153054349e-07, m[1].RatioToSun(gms), 1e-18)
	assert.Equal(t, gmb, m[3].GM)
	assert.InDelta(t, gmb/(1+testEMRat), m[11].GM, 1e-25)
	assert.InDelta(t, gmb, m[10].GM+m[11].GM, 1e-25)
	assert.Equal(t, "Ceres", m[12].Name)
	assert.Equal(t, 1.400476556172344e-13, m[12].GM)
	assert.Zero(t, m[2].GM)
	assert.InDelta(t, 1.327124400419394e+11, m[0].GMKm(149597870.7), 1e4)

	_, err = openTestDE(t).Masses()
	assert.ErrorIs(t, err, ErrConstantNotFound)
}
