package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDeltaTCmd(a *app) *cobra.Command {
	var t timeFlags
	cmd := &cobra.Command{
		Use:   "deltat",
		Short: "Print Delta T and Greenwich sidereal time for a Universal Time date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDeltaT(t, time.Now())
		},
	}
	t.register(cmd)
	// dates are always UT here
	_ = cmd.Flags().MarkHidden("ut")
	return cmd
}

func (a *app) runDeltaT(t timeFlags, now time.Time) error {
	ut, err := t.resolve(now)
	if err != nil {
		return err
	}
	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	dt := eng.DeltaT(ut)
	fmt.Fprintf(a.out, "JD (UT)  %.6f\n", ut)
	fmt.Fprintf(a.out, "Delta T  %.3f s\n", dt*86400)
	fmt.Fprintf(a.out, "JD (TT)  %.6f\n", ut+dt)
	fmt.Fprintf(a.out, "GAST     %.6f h\n", eng.SiderealTime(ut))
	return nil
}
