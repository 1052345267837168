/*
Package chebfile reads and writes compact Chebyshev coefficient files.

A file holds, for a fixed time span, a set of bodies each stored as a run of
equal-length segments. Every segment carries ncoe Chebyshev coefficients per
Cartesian component. Bodies flagged as rotated store their coefficients in a
frame attached to the mean orbital plane, optionally as a residual over a
reference ellipse; Reconstruct turns such a segment back into J2000 equatorial
coordinates once, when the segment is loaded.

Layout (all integers and floats in the file's byte order):

	title      [84]byte
	marker     uint32  0x00616263, identifies the byte order
	version    uint32
	denum      int32   DE number the file was fitted from
	start, end float64 Julian days (TT)
	nbodies    uint32
	emrat      float64 Earth/Moon mass ratio
	bodies     nbodies fixed-size records (see bodyRecord)
	checksum   uint64  xxhash64 of every byte above
	data       reference ellipses and segment coefficients

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
package chebfile

import (
	"encoding/binary"
	"errors"
)

// ErrNotFound is returned when a file or a body inside it does not exist.
var ErrNotFound = errors.New("coefficient data not found")

// ErrOutOfRange is returned when the date lies outside the data stored for a body.
var ErrOutOfRange = errors.New("date outside coefficient file range")

// ErrCorrupt is returned when a header or segment fails validation.
var ErrCorrupt = errors.New("coefficient file corrupt")

const (
	titleSize   = 84
	endianMark  = 0x00616263
	Version     = 1
	maxCoeffs   = 64
	maxBodies   = 1024
	fixedHeader = titleSize + 4 + 4 + 4 + 8 + 8 + 4 + 8
)

// Body identifiers used inside files.
const (
	BodySun     = 0 // barycentric
	BodyMercury = 1
	BodyVenus   = 2
	BodyEMB     = 3
	BodyMars    = 4
	BodyJupiter = 5
	BodySaturn  = 6
	BodyUranus  = 7
	BodyNeptune = 8
	BodyPluto   = 9
	BodyMoon    = 10 // geocentric
	BodyChiron  = 11
	BodyPholus  = 12
	BodyCeres   = 13
	BodyPallas  = 14
	BodyJuno    = 15
	BodyVesta   = 16

	// AsteroidOffset is added to a minor planet number to form its identifier.
	AsteroidOffset = 10000
)

// BodyFlag describes how a body's coefficients are stored.
type BodyFlag uint32

const (
	FlagHeliocentric BodyFlag = 1 << iota // coefficients relative to the Sun
	FlagRotated                           // stored in the mean orbital plane frame
	FlagEllipse                           // stored as residual over a reference ellipse
	FlagMoon                              // orbital plane referred to the J2000 ecliptic
)

// OrbitElements are the mean orbital-plane parameters of a rotated body. Rates
// are per Julian millennium from Epoch. For ordinary bodies P and Q are the
// equinoctial inclination variables; for FlagMoon bodies Q is their amplitude
// and P the node angle.
type OrbitElements struct {
	Epoch float64
	P     float64
	DP    float64
	Q     float64
	DQ    float64
	Peri  float64 // longitude of perihelion of the reference ellipse, rad
	DPeri float64
}

// BodyInfo describes one body stored in a file.
type BodyInfo struct {
	ID       int
	Flags    BodyFlag
	NCoe     int     // coefficients per component
	NSeg     int     // number of segments
	DSeg     float64 // segment length, days
	TSeg0    float64 // start of the first segment
	Elements OrbitElements
}

// Start returns the first date covered by the body.
func (b BodyInfo) Start() float64 { return b.TSeg0 }

// End returns the last date covered by the body.
func (b BodyInfo) End() float64 { return b.TSeg0 + float64(b.NSeg)*b.DSeg }

// Header is the decoded file header.
type Header struct {
	Title    string
	Version  uint32
	DENumber int
	Start    float64
	End      float64
	EMRat    float64
	Bodies   []BodyInfo
	Order    binary.ByteOrder
}

// bodyRecord is the on-disk form of BodyInfo plus data offsets.
type bodyRecord struct {
	ID         int32
	Flags      uint32
	NCoe       int32
	NSeg       int32
	DSeg       float64
	TSeg0      float64
	Epoch      float64
	P          float64
	DP         float64
	Q          float64
	DQ         float64
	Peri       float64
	DPeri      float64
	RefOffset  int64
	DataOffset int64
}

const bodyRecordSize = 4*4 + 9*8 + 2*8

func (r bodyRecord) info() BodyInfo {
	return BodyInfo{
		ID:    int(r.ID),
		Flags: BodyFlag(r.Flags),
		NCoe:  int(r.NCoe),
		NSeg:  int(r.NSeg),
		DSeg:  r.DSeg,
		TSeg0: r.TSeg0,
		Elements: OrbitElements{
			Epoch: r.Epoch, P: r.P, DP: r.DP, Q: r.Q, DQ: r.DQ, Peri: r.Peri, DPeri: r.DPeri,
		},
	}
}

func recordOf(b BodyInfo, refOffset, dataOffset int64) bodyRecord {
	e := b.Elements
	return bodyRecord{
		ID: int32(b.ID), Flags: uint32(b.Flags), NCoe: int32(b.NCoe), NSeg: int32(b.NSeg),
		DSeg: b.DSeg, TSeg0: b.TSeg0,
		Epoch: e.Epoch, P: e.P, DP: e.DP, Q: e.Q, DQ: e.DQ, Peri: e.Peri, DPeri: e.DPeri,
		RefOffset: refOffset, DataOffset: dataOffset,
	}
}

// segmentBytes is the size of one stored segment.
func (b BodyInfo) segmentBytes() int64 { return int64(3 * b.NCoe * 8) }
