package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mshafiee/astroeph/jpl"
)

func newMassesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "masses FILE",
		Short: "Print the planetary masses stored in a JPL DE file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMasses(args[0])
		},
	}
}

func (a *app) runMasses(path string) error {
	eph, err := jpl.Open(path, jpl.WithConstants(), jpl.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer eph.Close()

	masses, err := eph.Masses()
	if err != nil {
		return err
	}
	au := eph.GetEphemerisDouble(jpl.AUinKM)
	gmSun := masses[0].GM

	w := a.out
	fmt.Fprintf(w, "Data from %s\n", path)
	fmt.Fprintf(w, "%-8s %22s %22s %22s %22s\n",
		"Body", "mass(obj)/mass(sun)", "mass(sun)/mass(obj)", "GM (km³/s²)", "GM (AU³/day²)")
	for _, m := range masses {
		inverse := 0.0
		if m.GM != 0 {
			inverse = gmSun / m.GM
		}
		fmt.Fprintf(w, "%-8s %22.15e %22.15e %22.15e %22.15e\n",
			m.Name, m.RatioToSun(gmSun), inverse, m.GMKm(au), m.GM)
	}
	return nil
}
