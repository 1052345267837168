package main

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/chebfile"
	"github.com/mshafiee/astroeph/internal/logging"
	"github.com/mshafiee/astroeph/jpl"
)

type buildOptions struct {
	jplFile    string
	out        string
	start, end float64
	workers    int
}

// fitPlan is the fit of one body. Every dseg divides buildQuantum.
type fitPlan struct {
	kind   chebfile.Kind
	id     int
	planet jpl.Planet
	center jpl.CenterBody
	dseg   float64
	ncoe   int
}

const buildQuantum = 128.0

var buildPlans = []fitPlan{
	{chebfile.KindPlanets, chebfile.BodySun, jpl.Sun, jpl.CenterSolarSystemBarycenter, 32, 12},
	{chebfile.KindPlanets, chebfile.BodyMercury, jpl.Mercury, jpl.CenterSolarSystemBarycenter, 8, 12},
	{chebfile.KindPlanets, chebfile.BodyVenus, jpl.Venus, jpl.CenterSolarSystemBarycenter, 16, 12},
	{chebfile.KindPlanets, chebfile.BodyEMB, jpl.EarthMoonBarycenter, jpl.CenterSolarSystemBarycenter, 16, 12},
	{chebfile.KindPlanets, chebfile.BodyMars, jpl.Mars, jpl.CenterSolarSystemBarycenter, 16, 12},
	{chebfile.KindPlanets, chebfile.BodyJupiter, jpl.Jupiter, jpl.CenterSolarSystemBarycenter, 32, 12},
	{chebfile.KindPlanets, chebfile.BodySaturn, jpl.Saturn, jpl.CenterSolarSystemBarycenter, 64, 12},
	{chebfile.KindPlanets, chebfile.BodyUranus, jpl.Uranus, jpl.CenterSolarSystemBarycenter, 64, 12},
	{chebfile.KindPlanets, chebfile.BodyNeptune, jpl.Neptune, jpl.CenterSolarSystemBarycenter, 128, 12},
	{chebfile.KindPlanets, chebfile.BodyPluto, jpl.Pluto, jpl.CenterSolarSystemBarycenter, 128, 12},
	{chebfile.KindMoon, chebfile.BodyMoon, jpl.Moon, jpl.CenterEarth, 4, 14},
}

func newBuildCmd(a *app) *cobra.Command {
	var o buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fit planet and Moon coefficient files to a JPL DE file",
		Long: "Fits Chebyshev series to the barycentric planets and the geocentric Moon of a\n" +
			"JPL DE file and writes them in the coefficient file layout the engine reads.\n" +
			"The span must lie within one " + fmt.Sprint(chebfile.CenturiesPerFile) + "-century file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(o)
		},
	}
	cmd.Flags().StringVar(&o.jplFile, "jpl", "", "JPL DE file to fit (default ephemeris.jpl_file)")
	cmd.Flags().StringVar(&o.out, "out", "", "output directory (default ephemeris.dir)")
	cmd.Flags().Float64Var(&o.start, "start", 0, "first Julian day (TDB)")
	cmd.Flags().Float64Var(&o.end, "end", 0, "last Julian day (TDB)")
	cmd.Flags().IntVar(&o.workers, "workers", runtime.NumCPU(), "bodies fitted in parallel")
	return cmd
}

func (a *app) runBuild(o buildOptions) error {
	if o.jplFile == "" {
		o.jplFile = a.cfg.Ephemeris.JPLFile
	}
	if o.out == "" {
		o.out = a.cfg.Ephemeris.Dir
	}
	if o.jplFile == "" || o.out == "" {
		return errors.New("build needs a JPL file and an output directory")
	}

	eph, err := jpl.Open(o.jplFile, jpl.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer eph.Close()
	start, end, err := buildSpan(eph, o.start, o.end)
	if err != nil {
		return err
	}

	data := make([]chebfile.BodyData, len(buildPlans))
	g := new(errgroup.Group)
	g.SetLimit(max(o.workers, 1))
	for i, plan := range buildPlans {
		i, plan := i, plan
		g.Go(func() error {
			// a JPL handle caches one record and is not safe to share
			e, err := jpl.Open(o.jplFile)
			if err != nil {
				return err
			}
			defer e.Close()
			src := func(tjd float64) (r3.Vec, error) {
				pos, _, err := e.CalculatePV(tjd, plan.planet, plan.center, false)
				return r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}, err
			}
			bd, maxErr, err := chebfile.Fit(src, chebfile.FitSpec{ID: plan.id, NCoe: plan.ncoe, DSeg: plan.dseg}, start, end)
			if err != nil {
				return err
			}
			a.log.Info("body fitted",
				logging.String("body", plan.planet.String()),
				logging.Int("segments", bd.Info.NSeg),
				logging.Float("max_error_km", maxErr*eph.GetEphemerisDouble(jpl.AUinKM)))
			data[i] = bd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, k := range []chebfile.Kind{chebfile.KindPlanets, chebfile.KindMoon} {
		var bodies []chebfile.BodyData
		for i, plan := range buildPlans {
			if plan.kind == k {
				bodies = append(bodies, data[i])
			}
		}
		path := filepath.Join(o.out, chebfile.FileName(k, start, 0))
		spec := chebfile.FileSpec{
			Title:    fmt.Sprintf("%s fitted to %s", k, eph.GetEphemName()),
			DENumber: eph.DENumber(),
			Start:    start,
			End:      end,
			EMRat:    eph.EarthMoonRatio(),
		}
		if err := chebfile.WriteFile(path, spec, bodies); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "wrote %s (%.1f .. %.1f)\n", path, start, end)
	}
	return nil
}

// buildSpan clamps the requested span to the JPL file and to one coefficient
// file, and shortens it to a whole number of buildQuantum days.
func buildSpan(eph *jpl.Ephemeris, start, end float64) (float64, float64, error) {
	lo, hi := eph.Range()
	if start == 0 {
		start = lo
	}
	if end == 0 {
		end = hi
	}
	start, end = math.Max(start, lo), math.Min(end, hi)
	_, fileEnd := chebfile.FileSpan(start)
	if end > fileEnd {
		return 0, 0, fmt.Errorf("span %.1f .. %.1f crosses the file boundary at %.1f", start, end, fileEnd)
	}
	end = start + math.Floor((end-start)/buildQuantum)*buildQuantum
	if end <= start {
		return 0, 0, fmt.Errorf("span shorter than %.0f days", buildQuantum)
	}
	return start, end, nil
}
