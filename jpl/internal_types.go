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

import "encoding/binary"

// Layout of a JPL DE binary file.
//
// Record 0 (header), offsets in bytes:
//
//	   0-251   three 84-byte title lines ("JPL Planetary Ephemeris DE431/LE431", start, end)
//	 252-2651  names of the first 400 constants, 6 bytes each
//	2652-2675  start JED, end JED, record span in days (float64)
//	2676-2679  number of constants (uint32)
//	2680-2695  AU in km, Earth/Moon mass ratio (float64)
//	2696-2839  ipt[0..11][3]: coefficient offset, count and sub-intervals per quantity
//	2840-2843  DE number
//	2844-2855  ipt[12][3], lunar librations
//	2856-      names of constants 400 and up, then ipt[13][3] and ipt[14][3]
//	           (lunar mantle rates and TT-TDB, DE430t and later)
//
// Record 1 holds the constant values. Data records start at record 2; each is
// ncoeff float64 values: the record start and end JED followed by the
// Chebyshev coefficients of every quantity.
//
// ipt rows: 0 Mercury, 1 Venus, 2 EMB, 3 Mars, 4 Jupiter, 5 Saturn, 6 Uranus,
// 7 Neptune, 8 Pluto, 9 geocentric Moon, 10 Sun, 11 nutations,
// 12 librations, 13 lunar mantle, 14 TT-TDB.

// maxCheby is the largest number of Chebyshev coefficients per component any
// known DE file uses.
const maxCheby = 18

// headerOffset is where the numeric header starts in record 0.
const headerOffset = 2652

// numericHeaderSize is the size of the numeric header that follows the 400
// constant names.
const numericHeaderSize = 5*8 + 41*4

// start400thConstantName is the file offset of the names of constants 400 and up.
const start400thConstantName = 84*3 + 400*6 + numericHeaderSize

// header is the parsed content of record 0.
type header struct {
	title    [3]string
	start    float64       // first JED covered
	end      float64       // last JED covered
	step     float64       // days per record
	ncon     uint32        // number of constants
	au       float64       // km per AU
	emrat    float64       // Earth/Moon mass ratio
	ipt      [15][3]uint32 // coefficient layout per quantity
	deNumber int64         // 405, 431, ...
	name     string        // "DE431", "INPOP19a", ...
	order    binary.ByteOrder
	kernel   uint32 // record size in 32-bit words
	recsize  uint32 // record size in bytes
	ncoeff   uint32 // float64 values per record
}

// interpolationInfo caches Chebyshev polynomial values between calls that
// share the same normalized time.
type interpolationInfo struct {
	posnCoeff  [maxCheby]float64 // T_i(tc)
	velCoeff   [maxCheby]float64 // T'_i(tc)
	nPosnAvail uint
	nVelAvail  uint
	twot       float64 // 2*tc
}

// reset marks the cached polynomials stale.
func (ii *interpolationInfo) reset() {
	ii.posnCoeff[0] = 1.0
	ii.posnCoeff[1] = -2.0 // impossible tc forces a recompute
	ii.velCoeff[0] = 0.0
	ii.velCoeff[1] = 1.0
	ii.nPosnAvail = 0
	ii.nVelAvail = 0
}
