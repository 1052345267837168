/*
Package astrometry provides the reference-frame and time-scale models used by
the apparent-position pipeline: Julian day conversion, Delta-T, obliquity of the
ecliptic, precession, nutation, frame bias and sidereal time.

All vectors are gonum r3.Vec values in AU (and AU/day for velocities). Angles
are radians unless a function name or comment says otherwise.

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

// Package astrometry provides time scales, precession, nutation and frame rotations.
package astrometry
