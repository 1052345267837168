package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mshafiee/astroeph"
	"github.com/mshafiee/astroeph/internal/logging"
)

type batchOptions struct {
	workers int
	ut      bool
	json    bool
}

// job is one input line: "JD BODY [FLAGS]", flags joined with '|'.
type job struct {
	line  int
	tjd   float64
	body  astroeph.Body
	flags astroeph.Flag
}

func newBatchCmd(a *app) *cobra.Command {
	var o batchOptions
	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Compute positions for lines of \"JD BODY [FLAGS]\" read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return a.runBatch(cmd.Context(), o, in)
		},
	}
	cmd.Flags().IntVar(&o.workers, "workers", runtime.NumCPU(), "number of engines computing in parallel")
	cmd.Flags().BoolVar(&o.ut, "ut", false, "the Julian days are Universal Time")
	cmd.Flags().BoolVar(&o.json, "json", false, "print one JSON object per line")
	return cmd
}

func parseJobs(r io.Reader) ([]job, error) {
	var jobs []job
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: want JD BODY [FLAGS]", n)
		}
		tjd, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		body, err := astroeph.ParseBody(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		j := job{line: n, tjd: tjd, body: body}
		if len(fields) == 3 {
			if j.flags, err = astroeph.ParseFlags(fields[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, sc.Err()
}

// runBatch splits the jobs into contiguous chunks, one engine per chunk, and
// prints the results in input order.
func (a *app) runBatch(ctx context.Context, o batchOptions, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs, err := parseJobs(in)
	if err != nil {
		return err
	}
	workers := o.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	records := make([]record, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(jobs) + workers - 1) / max(workers, 1)
	for lo := 0; lo < len(jobs); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(jobs))
		g.Go(func() error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				j := jobs[i]
				var res astroeph.Result
				if o.ut {
					res, err = eng.CalcUT(j.tjd, j.body, j.flags)
				} else {
					res, err = eng.Calc(j.tjd, j.body, j.flags)
				}
				records[i] = newRecord(j.tjd, j.body, res, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	w := newRecordWriter(a.out, o.json)
	for _, r := range records {
		if r.Error != "" {
			failed++
		}
		if err := w.write(r); err != nil {
			return err
		}
	}
	a.log.Info("batch done",
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", workers),
		logging.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed", failed, len(jobs))
	}
	return nil
}
