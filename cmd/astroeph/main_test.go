package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph"
	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/chebfile"
)

const testConfig = `ephemeris:
  model: analytic
log:
  level: error
`

// runCLI executes the root command with a config file selecting the
// analytic model and returns what it printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "astroeph.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0o644))

	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestParseDate(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"2000-01-01T12:00", 2451545.0},
		{"2000-01-01 12:00:00", 2451545.0},
		{"2000-01-01", 2451544.5},
		{"1582-10-15", 2299160.5},
		{"1582-10-04", 2299159.5},
		{"2024-03-20T03:06:00Z", 2460389.6291667},
	} {
		got, err := parseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-6, tc.in)
	}
	_, err := parseDate("yesterday")
	assert.Error(t, err)
}

func TestTimeFlags_Resolve(t *testing.T) {
	now := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

	tjd, err := (&timeFlags{}).resolve(now)
	require.NoError(t, err)
	assert.InDelta(t, 2451545.0, tjd, 1e-9)

	tjd, err = (&timeFlags{jd: 2415020.5}).resolve(now)
	require.NoError(t, err)
	assert.Equal(t, 2415020.5, tjd)

	_, err = (&timeFlags{jd: 2415020.5, date: "1900-01-01"}).resolve(now)
	assert.Error(t, err)
}

func TestParseTopo(t *testing.T) {
	lon, lat, alt, err := parseTopo("8.55, 47.37,400")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{8.55, 47.37, 400}, [3]float64{lon, lat, alt})

	_, _, alt, err = parseTopo("-70.4,-24.6")
	require.NoError(t, err)
	assert.Zero(t, alt)

	for _, bad := range []string{"", "1", "1,2,3,4", "a,b"} {
		_, _, _, err := parseTopo(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseJobs(t *testing.T) {
	jobs, err := parseJobs(strings.NewReader(`# jd body flags
2451545 sun
  2451546.5  moon  speed|equatorial

2451547 ast:433
`))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, job{line: 2, tjd: 2451545, body: astroeph.Sun}, jobs[0])
	assert.Equal(t, astroeph.Moon, jobs[1].body)
	assert.Equal(t, astroeph.FlagSpeed|astroeph.FlagEquatorial, jobs[1].flags)
	assert.Equal(t, 5, jobs[2].line)
	assert.Equal(t, astroeph.Asteroid(433), jobs[2].body)

	for _, bad := range []string{"2451545", "x sun", "2451545 nobody", "2451545 sun bogus", "1 sun speed extra"} {
		_, err := parseJobs(strings.NewReader(bad))
		assert.Error(t, err, bad)
	}
}

func TestCalc_Text(t *testing.T) {
	out, _, err := runCLI(t, "", "calc", "--jd", "2451545", "sun", "moon")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	fields := strings.Fields(lines[0])
	require.Len(t, fields, 8)
	assert.Equal(t, "2451545.000000", fields[0])
	assert.Equal(t, "Sun", fields[1])
	lon, err := strconv.ParseFloat(fields[2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 280.37, lon, 0.05)
	assert.Equal(t, "Moon", strings.Fields(lines[1])[1])
}

func TestCalc_JSON(t *testing.T) {
	out, _, err := runCLI(t, "", "calc", "--json", "--jd", "2451545", "--flags", "speed,equatorial", "mars")
	require.NoError(t, err)

	var r record
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Mars", r.Body)
	assert.Equal(t, "analytic", r.Model)
	assert.Contains(t, r.Flags, "equatorial")
	assert.Greater(t, r.LightTime, 0.0)
	assert.NotZero(t, r.Coords[3])
	assert.Empty(t, r.Error)
}

func TestCalc_Sidereal(t *testing.T) {
	trop, _, err := runCLI(t, "", "calc", "--jd", "2451545", "sun")
	require.NoError(t, err)
	sid, _, err := runCLI(t, "", "calc", "--jd", "2451545", "--sidereal", "lahiri", "sun")
	require.NoError(t, err)

	lt, _ := strconv.ParseFloat(strings.Fields(trop)[2], 64)
	ls, _ := strconv.ParseFloat(strings.Fields(sid)[2], 64)
	assert.InDelta(t, 23.857, lt-ls, 0.01)
}

func TestCalc_Errors(t *testing.T) {
	_, _, err := runCLI(t, "", "calc", "--jd", "2451545", "vulcan")
	assert.Error(t, err)

	_, _, err = runCLI(t, "", "calc", "--jd", "2451545", "--flags", "sideways", "sun")
	assert.Error(t, err)

	// numbered minor planets have no analytic series, the Sun is still printed
	out, errOut, err := runCLI(t, "", "calc", "--jd", "2451545", "sun", "ast:433")
	assert.EqualError(t, err, "1 of 2 bodies failed")
	assert.Contains(t, errOut, "error:")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "asteroid 433")
}

func TestBatch_KeepsInputOrder(t *testing.T) {
	var in strings.Builder
	for i := 0; i < 20; i++ {
		in.WriteString(strconv.FormatFloat(2451545+float64(i), 'f', 1, 64))
		in.WriteString(" mercury speed\n")
	}
	out, _, err := runCLI(t, in.String(), "batch", "--workers", "3")
	require.NoError(t, err)

	sc := bufio.NewScanner(strings.NewReader(out))
	for i := 0; sc.Scan(); i++ {
		fields := strings.Fields(sc.Text())
		require.Len(t, fields, 8)
		tjd, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err)
		assert.Equal(t, 2451545+float64(i), tjd)
	}
}

func TestBatch_ReportsFailures(t *testing.T) {
	out, _, err := runCLI(t, "2451545 sun\n2451545 moon baryctr\n", "batch", "--json")
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var r record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &r))
	assert.NotEmpty(t, r.Error)
}

func TestDeltaT(t *testing.T) {
	out, _, err := runCLI(t, "", "deltat", "--date", "2000-01-01T12:00")
	require.NoError(t, err)

	values := map[string]float64{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			v, err = strconv.ParseFloat(fields[len(fields)-2], 64)
		}
		require.NoError(t, err, sc.Text())
		values[fields[0]] = v
	}
	assert.InDelta(t, 63.8, values["Delta"], 0.5)
	assert.InDelta(t, 18.697, values["GAST"], 0.01)
}

func TestInfo_CoefficientFile(t *testing.T) {
	dir := t.TempDir()
	const start = astrometry.J2000 - 64
	circle := func(tjd float64) (r3.Vec, error) {
		a := 2 * math.Pi * (tjd - start) / 365.25
		return r3.Vec{X: 1.5 * math.Cos(a), Y: 1.5 * math.Sin(a)}, nil
	}
	bd, _, err := chebfile.Fit(circle, chebfile.FitSpec{ID: chebfile.BodyMars, NCoe: 12, DSeg: 16}, start, start+128)
	require.NoError(t, err)
	path := filepath.Join(dir, chebfile.FileName(chebfile.KindPlanets, start, 0))
	require.NoError(t, chebfile.WriteFile(path, chebfile.FileSpec{
		Title: "test planets", DENumber: 431, Start: start, End: start + 128, EMRat: 81.3,
	}, []chebfile.BodyData{bd}))

	out, _, err := runCLI(t, "", "info", "--jd", strconv.FormatFloat(start+3, 'f', 1, 64), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Title:            test planets")
	assert.Contains(t, out, "Fitted to:        DE431")
	assert.Contains(t, out, "States at JD")
	assert.Regexp(t, `\n\s+4 -\s+12\s+8\s+16\.00`, out)
}

func TestInfo_MissingFile(t *testing.T) {
	_, _, err := runCLI(t, "", "info", filepath.Join(t.TempDir(), "de440.bin"))
	assert.Error(t, err)
}
