// Command astroeph computes apparent positions and inspects ephemeris files.
package main

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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mshafiee/astroeph"
	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/config"
	"github.com/mshafiee/astroeph/internal/logging"
	"github.com/mshafiee/astroeph/internal/observability"
)

// app is the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     logging.Logger
	out     io.Writer
	errOut  io.Writer

	metrics *observability.EngineCollector
	server  *http.Server
}

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.NewViper(), out: out, errOut: errOut, log: logging.Noop()}
	d := config.DefaultConfig()

	root := &cobra.Command{
		Use:          "astroeph",
		Short:        "Apparent positions of the Sun, Moon, planets and lunar points",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./astroeph.yaml or ~/.astroeph/astroeph.yaml)")
	pf.String("ephe-dir", d.Ephemeris.Dir, "directory of the Chebyshev coefficient files")
	pf.String("jpl-file", d.Ephemeris.JPLFile, "JPL DE binary file")
	pf.String("model", d.Ephemeris.Model, "default ephemeris model: jpl, cheb or analytic")
	pf.String("log-level", d.Log.Level, "log level: debug, info, warn or error")
	pf.Bool("metrics", d.Metrics.Enabled, "serve Prometheus metrics while the command runs")
	pf.String("metrics-addr", d.Metrics.Addr, "listen address of the metrics endpoint")

	for key, flag := range map[string]string{
		"ephemeris.dir":      "ephe-dir",
		"ephemeris.jpl_file": "jpl-file",
		"ephemeris.model":    "model",
		"log.level":          "log-level",
		"metrics.enabled":    "metrics",
		"metrics.addr":       "metrics-addr",
	} {
		// the flag exists, binding cannot fail
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newCalcCmd(a),
		newBatchCmd(a),
		newInfoCmd(a),
		newMassesCmd(a),
		newBuildCmd(a),
		newDeltaTCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.errOut})

	if !cfg.Metrics.Enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	if a.metrics, err = observability.NewEngineCollector(reg); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", logging.Err(err))
		}
	}()
	a.log.Info("serving metrics", logging.String("addr", cfg.Metrics.Addr))
	return nil
}

func (a *app) shutdown() error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// newEngine builds an engine from the loaded configuration. Each goroutine
// needs its own.
func (a *app) newEngine(extra ...astroeph.Option) (*astroeph.Engine, error) {
	var rec astroeph.Recorder
	if a.metrics != nil {
		rec = a.metrics
	}
	opts, err := a.cfg.EngineOptions(a.log, rec)
	if err != nil {
		return nil, err
	}
	return astroeph.New(append(opts, extra...)...)
}

// timeFlags are the date options shared by calc and deltat.
type timeFlags struct {
	jd   float64
	date string
	ut   bool
}

func (t *timeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t.jd, "jd", 0, "Julian day")
	cmd.Flags().StringVar(&t.date, "date", "", "calendar date, e.g. 2024-03-20 or 2024-03-20T12:30:00 (default now)")
	cmd.Flags().BoolVar(&t.ut, "ut", false, "the date is Universal Time rather than Terrestrial Time")
}

// resolve returns the Julian day of the flags. A calendar date without --ut
// is read as TT.
func (t *timeFlags) resolve(now time.Time) (float64, error) {
	if t.jd != 0 && t.date != "" {
		return 0, errors.New("--jd and --date are mutually exclusive")
	}
	if t.jd != 0 {
		return t.jd, nil
	}
	if t.date == "" {
		return timeToJD(now.UTC()), nil
	}
	return parseDate(t.date)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate parses a proleptic calendar date. Dates before 1582-10-15 are
// read in the Julian calendar.
func parseDate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return timeToJD(tm.UTC()), nil
		}
	}
	return 0, fmt.Errorf("cannot parse date %q", s)
}

func timeToJD(tm time.Time) float64 {
	y, m, d := tm.Date()
	hour := float64(tm.Hour()) + float64(tm.Minute())/60 + (float64(tm.Second())+float64(tm.Nanosecond())/1e9)/3600
	cal := astrometry.Gregorian
	if y < 1582 || (y == 1582 && (m < 10 || (m == 10 && d < 15))) {
		cal = astrometry.Julian
	}
	return astrometry.JulDay(y, int(m), d, hour, cal)
}
