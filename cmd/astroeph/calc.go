package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mshafiee/astroeph"
)

type calcOptions struct {
	timeFlags
	flags    []string
	sidereal string
	topo     string
	json     bool
}

const calcExample = `  astroeph calc --date 2024-03-20 --ut --flags speed sun moon mars
  astroeph calc --jd 2451545 --flags equatorial,xyz --model analytic "true node" ast:433`

func newCalcCmd(a *app) *cobra.Command {
	var o calcOptions
	cmd := &cobra.Command{
		Use:     "calc BODY...",
		Short:   "Compute the positions of one or more bodies",
		Example: calcExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCalc(o, args, time.Now())
		},
	}
	o.register(cmd)
	cmd.Flags().StringSliceVar(&o.flags, "flags", nil, "calculation flags, e.g. speed,equatorial,nonut")
	cmd.Flags().StringVar(&o.sidereal, "sidereal", "", "sidereal mode, e.g. lahiri; implies the sidereal flag")
	cmd.Flags().StringVar(&o.topo, "topo", "", "observer as lon,lat[,alt]; implies the topoctr flag")
	cmd.Flags().BoolVar(&o.json, "json", false, "print one JSON object per body")
	return cmd
}

func (a *app) runCalc(o calcOptions, args []string, now time.Time) error {
	tjd, err := o.resolve(now)
	if err != nil {
		return err
	}
	flags, err := astroeph.ParseFlags(o.flags...)
	if err != nil {
		return err
	}
	bodies := make([]astroeph.Body, len(args))
	for i, s := range args {
		if bodies[i], err = astroeph.ParseBody(s); err != nil {
			return err
		}
	}

	var extra []astroeph.Option
	if o.sidereal != "" {
		sid, err := a.cfg.SiderealConfig()
		if err != nil {
			return err
		}
		if sid.Mode, err = astroeph.ParseSidMode(o.sidereal); err != nil {
			return err
		}
		extra = append(extra, astroeph.WithSidereal(sid))
		flags |= astroeph.FlagSidereal
	}
	if o.topo != "" {
		lon, lat, alt, err := parseTopo(o.topo)
		if err != nil {
			return err
		}
		extra = append(extra, astroeph.WithTopo(lon, lat, alt))
		flags |= astroeph.FlagTopoCtr
	}

	eng, err := a.newEngine(extra...)
	if err != nil {
		return err
	}
	defer eng.Close()

	w := newRecordWriter(a.out, o.json)
	failed := 0
	for _, b := range bodies {
		var res astroeph.Result
		if o.ut {
			res, err = eng.CalcUT(tjd, b, flags)
		} else {
			res, err = eng.Calc(tjd, b, flags)
		}
		rec := newRecord(tjd, b, res, err)
		if err != nil {
			failed++
			fmt.Fprintf(a.errOut, "error: %v\n", err)
		} else if res.Warning != "" {
			fmt.Fprintf(a.errOut, "warning: %s: %s\n", b, res.Warning)
		}
		if err := w.write(rec); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bodies failed", failed, len(bodies))
	}
	return nil
}

// parseTopo parses "lon,lat" or "lon,lat,alt".
func parseTopo(s string) (lon, lat, alt float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("observer %q: want lon,lat[,alt]", s)
	}
	var v [3]float64
	for i, p := range parts {
		if v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return 0, 0, 0, fmt.Errorf("observer %q: %w", s, err)
		}
	}
	return v[0], v[1], v[2], nil
}

// record is one line of calc or batch output.
type record struct {
	JD        float64    `json:"jd"`
	Body      string     `json:"body"`
	Model     string     `json:"model,omitempty"`
	Flags     string     `json:"flags,omitempty"`
	Coords    [6]float64 `json:"coords"`
	LightTime float64    `json:"light_time,omitempty"`
	Warning   string     `json:"warning,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func newRecord(tjd float64, b astroeph.Body, res astroeph.Result, err error) record {
	r := record{JD: tjd, Body: b.String()}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Model = res.Model.String()
	r.Flags = res.Flags.String()
	r.Coords = res.Coords
	r.LightTime = res.LightTime
	r.Warning = res.Warning
	return r
}

type recordWriter struct {
	w   io.Writer
	enc *json.Encoder
}

func newRecordWriter(w io.Writer, asJSON bool) *recordWriter {
	rw := &recordWriter{w: w}
	if asJSON {
		rw.enc = json.NewEncoder(w)
	}
	return rw
}

func (rw *recordWriter) write(r record) error {
	if rw.enc != nil {
		return rw.enc.Encode(r)
	}
	if r.Error != "" {
		_, err := fmt.Fprintf(rw.w, "%.6f %-12s error: %s\n", r.JD, r.Body, r.Error)
		return err
	}
	vals := make([]string, len(r.Coords))
	for i, c := range r.Coords {
		vals[i] = fmt.Sprintf("%.9f", c)
	}
	_, err := fmt.Fprintf(rw.w, "%.6f %-12s %s\n", r.JD, r.Body, strings.Join(vals, " "))
	return err
}
