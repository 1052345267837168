package astrometry

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

// frameBias rotates ICRS coordinates to the J2000 mean equator and
// dynamical equinox (IAU 2000 frame bias).
var frameBias = Matrix{
	{0.9999999999999942, -0.0000000707827974, 0.0000000805621715},
	{0.0000000707827948, 0.9999999999999969, 0.0000000330604145},
	{-0.0000000805621738, -0.0000000330604088, 0.9999999999999962},
}

// FrameBias returns the ICRS → J2000 mean equator rotation.
func FrameBias() Matrix { return frameBias }

// ApplyBias rotates a state from ICRS to J2000, or from J2000 to ICRS when
// inverse is set.
func ApplyBias(s State, inverse bool) State {
	if inverse {
		return State{Pos: frameBias.ApplyT(s.Pos), Vel: frameBias.ApplyT(s.Vel)}
	}
	return frameBias.ApplyState(s)
}
