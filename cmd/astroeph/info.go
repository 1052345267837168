package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mshafiee/astroeph/chebfile"
	"github.com/mshafiee/astroeph/jpl"
)

type infoOptions struct {
	jd        float64
	constants bool
}

func newInfoCmd(a *app) *cobra.Command {
	var o infoOptions
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Describe a JPL DE file or a Chebyshev coefficient file",
		Long: "Prints the header of FILE. Files ending in " + chebfile.Extension +
			" are read as coefficient files, anything else as a JPL DE binary file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(filepath.Ext(args[0]), chebfile.Extension) {
				return a.chebInfo(args[0], o)
			}
			return a.jplInfo(args[0], o)
		},
	}
	cmd.Flags().Float64Var(&o.jd, "jd", 0, "also print the states of every body at this Julian day (TDB)")
	cmd.Flags().BoolVar(&o.constants, "constants", false, "list the constants of a JPL file")
	return cmd
}

func (a *app) jplInfo(path string, o infoOptions) error {
	eph, err := jpl.Open(path, jpl.WithConstants(), jpl.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer eph.Close()

	w := a.out
	start, end := eph.Range()
	fmt.Fprintf(w, "File:             %s\n", path)
	fmt.Fprintf(w, "Ephemeris:        DE%d (%s)\n", eph.DENumber(), eph.GetEphemName())
	for _, t := range eph.Title() {
		if t = strings.TrimSpace(t); t != "" {
			fmt.Fprintf(w, "Title:            %s\n", t)
		}
	}
	fmt.Fprintf(w, "Time range:       %.1f to %.1f JD (step %.2f days)\n", start, end, eph.GetEphemerisDouble(jpl.EphemerisStep))
	fmt.Fprintf(w, "AU:               %.8f km\n", eph.GetEphemerisDouble(jpl.AUinKM))
	fmt.Fprintf(w, "Earth/Moon ratio: %.8f\n", eph.EarthMoonRatio())
	fmt.Fprintf(w, "Constants:        %d\n", eph.GetEphemerisLong(jpl.NumberOfConstants))

	if o.constants {
		n := int(eph.GetEphemerisLong(jpl.NumberOfConstants))
		fmt.Fprintln(w)
		for i := 0; i < n; i++ {
			name, err := eph.GetConstantName(i)
			if err != nil {
				return err
			}
			val, err := eph.GetConstantValue(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%-6s %24.16e\n", name, val)
		}
	}
	if o.jd != 0 {
		return jplStates(w, eph, o.jd)
	}
	return nil
}

var jplBodies = []jpl.Planet{
	jpl.Sun, jpl.Mercury, jpl.Venus, jpl.EarthMoonBarycenter, jpl.Earth, jpl.Moon,
	jpl.Mars, jpl.Jupiter, jpl.Saturn, jpl.Uranus, jpl.Neptune, jpl.Pluto,
}

// jplStates prints barycentric states of the bodies and the series the file
// carries besides them.
func jplStates(w io.Writer, eph *jpl.Ephemeris, et float64) error {
	fmt.Fprintf(w, "\nBarycentric states at JD %.4f (AU, AU/day)\n", et)
	for _, p := range jplBodies {
		pos, vel, err := eph.CalculatePV(et, p, jpl.CenterSolarSystemBarycenter, true)
		if err != nil {
			return fmt.Errorf("%v: %w", p, err)
		}
		fmt.Fprintf(w, "  %-8v %15.10f %15.10f %15.10f %14.10f %14.10f %14.10f\n",
			p, pos.X, pos.Y, pos.Z, vel.DX, vel.DY, vel.DZ)
	}

	moon, _, err := eph.CalculatePV(et, jpl.Moon, jpl.CenterEarth, false)
	if err != nil {
		return err
	}
	dist := math.Sqrt(moon.X*moon.X + moon.Y*moon.Y + moon.Z*moon.Z)
	fmt.Fprintf(w, "  Earth-Moon distance %.8f AU (%.3f km)\n", dist, dist*eph.GetEphemerisDouble(jpl.AUinKM))

	if eph.HasSeries(jpl.Nutations) {
		nut, rate, err := eph.CalculatePV(et, jpl.Nutations, jpl.CenterSolarSystemBarycenter, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  nutation dpsi %.6e rad (%.6e rad/day), deps %.6e rad (%.6e rad/day)\n",
			nut.X, rate.DX, nut.Y, rate.DY)
	}
	if eph.HasSeries(jpl.Librations) {
		lib, _, err := eph.CalculatePV(et, jpl.Librations, jpl.CenterSolarSystemBarycenter, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  lunar librations %.6e %.6e %.6e rad\n", lib.X, lib.Y, lib.Z)
	}
	if eph.HasSeries(jpl.TTMinusTDB) {
		tt, _, err := eph.CalculatePV(et, jpl.TTMinusTDB, jpl.CenterSolarSystemBarycenter, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  TT-TDB %.6e s\n", tt.X*86400)
	}
	return nil
}

func (a *app) chebInfo(path string, o infoOptions) error {
	f, err := chebfile.Open(path, chebfile.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer f.Close()

	w := a.out
	h := f.Header()
	fmt.Fprintf(w, "File:             %s\n", path)
	fmt.Fprintf(w, "Title:            %s\n", h.Title)
	fmt.Fprintf(w, "Format version:   %d (%v)\n", h.Version, h.Order)
	fmt.Fprintf(w, "Fitted to:        DE%d\n", h.DENumber)
	fmt.Fprintf(w, "Time range:       %.1f to %.1f JD\n", h.Start, h.End)
	fmt.Fprintf(w, "Earth/Moon ratio: %.8f\n", h.EMRat)
	fmt.Fprintf(w, "\n  %5s %-14s %5s %5s %8s %s\n", "id", "flags", "ncoe", "nseg", "dseg", "span")
	for _, b := range h.Bodies {
		fmt.Fprintf(w, "  %5d %-14s %5d %5d %8.2f %.1f .. %.1f\n",
			b.ID, bodyFlagString(b.Flags), b.NCoe, b.NSeg, b.DSeg, b.Start(), b.End())
	}

	if o.jd == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nStates at JD %.4f (AU, AU/day)\n", o.jd)
	for _, b := range h.Bodies {
		st, err := f.State(o.jd, b.ID, true)
		if err != nil {
			fmt.Fprintf(w, "  %5d %v\n", b.ID, err)
			continue
		}
		fmt.Fprintf(w, "  %5d %15.10f %15.10f %15.10f %14.10f %14.10f %14.10f\n",
			b.ID, st.Pos.X, st.Pos.Y, st.Pos.Z, st.Vel.X, st.Vel.Y, st.Vel.Z)
	}
	return nil
}

func bodyFlagString(f chebfile.BodyFlag) string {
	var parts []string
	for _, n := range []struct {
		f    chebfile.BodyFlag
		name string
	}{
		{chebfile.FlagHeliocentric, "helio"},
		{chebfile.FlagRotated, "rot"},
		{chebfile.FlagEllipse, "ellipse"},
		{chebfile.FlagMoon, "moon"},
	} {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
