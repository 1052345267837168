package jpl

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
	"fmt"
	"strings"
)

// BodyMass is one row of the mass table built from a file's GM constants.
type BodyMass struct {
	Name string
	GM   float64 // AU^3/day^2
}

// RatioToSun returns m(body)/m(Sun) given the solar GM.
func (b BodyMass) RatioToSun(gmSun float64) float64 { return b.GM / gmSun }

// GMKm returns GM in km^3/s^2 for the given AU length.
func (b BodyMass) GMKm(auKm float64) float64 {
	const secondsPerDay = 86400.0
	return b.GM * auKm * auKm * auKm / (secondsPerDay * secondsPerDay)
}

var massNames = [...]string{
	"Sun", "Mercury", "Venus", "EMB", "Mars", "Jupiter", "Saturn", "Uranus",
	"Neptune", "Pluto", "Earth", "Moon", "Ceres", "Pallas", "Juno", "Vesta",
}

// Masses reads the GM constants (GMS, GM1..GM9, GMB, MA0001..MA0004) and
// returns a table in the order Sun, planets with the EMB in third place,
// Earth, Moon, then the four big asteroids. Earth and Moon are split from
// GMB with EMRAT. Entries missing from the file are zero.
func (e *Ephemeris) Masses() ([]BodyMass, error) {
	var gm [len(massNames)]float64
	var gmb float64
	emrat := e.hdr.emrat

	for i := 0; i < int(e.hdr.ncon); i++ {
		name, err := e.GetConstantName(i)
		if err != nil {
			return nil, err
		}
		val, err := e.GetConstantValue(i)
		if err != nil {
			return nil, err
		}
		switch {
		case name == "GMS":
			gm[0] = val
		case name == "GMB":
			gmb = val
		case name == "EMRAT":
			emrat = val
		case len(name) == 3 && strings.HasPrefix(name, "GM") && name[2] >= '1' && name[2] <= '9' && name[2] != '3':
			gm[name[2]-'0'] = val
		case len(name) == 6 && strings.HasPrefix(name, "MA000") && name[5] >= '1' && name[5] <= '4':
			gm[11+int(name[5]-'0')] = val
		}
	}
	if gm[0] == 0 {
		return nil, fmt.Errorf("%w: GMS", ErrConstantNotFound)
	}
	gm[3] = gmb
	gm[11] = gmb / (1 + emrat)
	gm[10] = gmb - gm[11]

	out := make([]BodyMass, len(massNames))
	for i, n := range massNames {
		out[i] = BodyMass{Name: n, GM: gm[i]}
	}
	return out, nil
}
