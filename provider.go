package astroeph

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

import "github.com/mshafiee/astroeph/astrometry"

// Provider evaluates raw states for one ephemeris model.
//
// States are in AU and AU/day, referred to the J2000 equator (ICRS axes when
// FrameBias reports true). They are barycentric unless Heliocentric reports
// true, in which case TargetSun is the origin.
//
// Errors should be *Error values with KindNotAvailable (no data for the body
// or time, the engine may try another model), KindOutOfRange (outside the
// model's supported interval) or KindIO (unreadable data).
type Provider interface {
	Model() Model
	State(tjd float64, t Target, speed bool) (astrometry.State, error)
	// Covers reports whether tjd is inside the model's absolute interval
	// for t. It must not fail.
	Covers(tjd float64, t Target) bool
	Heliocentric() bool
	// FrameBias reports whether states need the ICRS to J2000 frame bias.
	FrameBias() bool
	Close() error
}
