/*
Package jpl reads JPL Development Ephemeris (DE) binary files and INPOP files
written in the same layout.

It interpolates the Chebyshev records of a file to obtain barycentric or
relative positions and velocities of the major bodies, plus the nutation,
libration, lunar mantle and TT-TDB series carried by newer files. It is the
highest-precision source behind the astroeph engine, but it can be used on its
own:

	eph, err := jpl.Open("de440.eph", jpl.WithConstants())
	if err != nil {
		log.Fatal(err)
	}
	defer eph.Close()

	pos, vel, err := eph.CalculatePV(2451545.0, jpl.Mars, jpl.CenterSun, true)

Positions are in AU and velocities in AU per day, in the ICRF axes the file is
written in.

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
package jpl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mshafiee/astroeph/internal/logging"
)

// ErrQuantityNotInEphemeris is returned when the file does not carry the requested series.
var ErrQuantityNotInEphemeris = errors.New("quantity not available in ephemeris file")

// ErrInvalidIndex is returned for a target or center outside 1..17.
var ErrInvalidIndex = errors.New("invalid target or center body index")

// ErrOutsideRange is returned when the epoch lies outside the file's time span.
var ErrOutsideRange = errors.New("requested time is outside ephemeris time range")

// ErrFileSeek is returned when seeking in the file fails.
var ErrFileSeek = errors.New("error seeking in ephemeris file")

// ErrFileRead is returned when reading from the file fails.
var ErrFileRead = errors.New("error reading from ephemeris file")

// ErrInitialization wraps every failure that happens while opening a file.
var ErrInitialization = errors.New("ephemeris initialization error")

// ErrCorrupt is returned when the header fails a consistency check.
var ErrCorrupt = errors.New("ephemeris file corrupt")

// ErrConstantNotFound is returned for an unknown constant name or index.
var ErrConstantNotFound = errors.New("constant not found")

// Position is a position vector in AU.
type Position struct {
	X, Y, Z float64
}

// Velocity is a velocity vector in AU/day.
type Velocity struct {
	DX, DY, DZ float64
}

// Option configures Open and New.
type Option func(*options)

type options struct {
	loadConstants bool
	log           logging.Logger
}

// WithConstants reads every constant name and value while opening, so the
// constant accessors never touch the file afterwards.
func WithConstants() Option {
	return func(o *options) { o.loadConstants = true }
}

// WithLogger sets the logger used for diagnostics. The default drops everything.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Ephemeris is an open DE file. All methods are safe for concurrent use; the
// record cache is shared and guarded by a mutex.
type Ephemeris struct {
	mu     sync.Mutex
	r      io.ReadSeeker
	closer io.Closer
	hdr    header
	log    logging.Logger

	cache    []float64 // current data record
	cacheRec int64     // record number held in cache, -1 when empty
	iinfo    interpolationInfo
	pvsun    [9]float64 // barycentric Sun: position, velocity, acceleration
	pvsunT   float64    // epoch of pvsun

	constNames  []string
	constValues []float64
}

// Open opens the DE file at path.
func Open(path string, opts ...Option) (*Ephemeris, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	eph, err := New(f, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	eph.closer = f
	return eph, nil
}

// New reads a DE file from r. Close does not close r unless it was opened
// by Open.
func New(r io.ReadSeeker, opts ...Option) (*Ephemeris, error) {
	o := options{log: logging.Noop()}
	for _, opt := range opts {
		opt(&o)
	}
	hdr, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	e := &Ephemeris{
		r:        r,
		hdr:      hdr,
		log:      o.log.With(logging.String("ephemeris", hdr.name)),
		cache:    make([]float64, hdr.ncoeff),
		cacheRec: -1,
		pvsunT:   -1e80,
	}
	e.iinfo.reset()
	if o.loadConstants {
		if err := e.loadConstants(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
		}
	}
	e.log.Debug("ephemeris opened",
		logging.Float("start", hdr.start),
		logging.Float("end", hdr.end),
		logging.Float("step", hdr.step),
		logging.Int("constants", int(hdr.ncon)),
		logging.Int("recsize", int(hdr.recsize)))
	return e, nil
}

// Close releases the underlying file.
func (e *Ephemeris) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// CalculatePV returns the position, and when calcVelocity is set the
// velocity, of target relative to center at the ephemeris date et.
//
// For Nutations, Librations, LunarMantleOmega and TTMinusTDB the center is
// ignored and the raw series values are returned in the vector slots.
func (e *Ephemeris) CalculatePV(et float64, target Planet, center CenterBody, calcVelocity bool) (Position, Velocity, error) {
	e.mu.Lock()
	rrd, err := e.pleph(et, int(target), int(center), calcVelocity)
	e.mu.Unlock()
	if err != nil {
		return Position{}, Velocity{}, err
	}
	pos := Position{X: rrd[0], Y: rrd[1], Z: rrd[2]}
	var vel Velocity
	if calcVelocity {
		vel = Velocity{DX: rrd[3], DY: rrd[4], DZ: rrd[5]}
	}
	return pos, vel, nil
}

// Range returns the first and last dates the file covers.
func (e *Ephemeris) Range() (start, end float64) {
	return e.hdr.start, e.hdr.end
}

// Covers reports whether et lies inside the file's time span.
func (e *Ephemeris) Covers(et float64) bool {
	return et >= e.hdr.start && et <= e.hdr.end
}

// DENumber returns the ephemeris number, e.g. 431.
func (e *Ephemeris) DENumber() int {
	return int(e.hdr.deNumber)
}

// EarthMoonRatio returns the Earth/Moon mass ratio used by the file.
func (e *Ephemeris) EarthMoonRatio() float64 {
	return e.hdr.emrat
}

// HasSeries reports whether the file carries the given non-body series.
func (e *Ephemeris) HasSeries(p Planet) bool {
	if p < Nutations || p > TTMinusTDB {
		return false
	}
	return e.hdr.ipt[int(p)-3][1] > 0
}

// GetEphemerisDouble returns a floating point header value, or -1 for a
// ValueType that is not a float.
func (e *Ephemeris) GetEphemerisDouble(valueType ValueType) float64 {
	switch valueType {
	case EphemerisStartJD:
		return e.hdr.start
	case EphemerisEndJD:
		return e.hdr.end
	case EphemerisStep:
		return e.hdr.step
	case AUinKM:
		return e.hdr.au
	case EarthMoonMassRatio:
		return e.hdr.emrat
	}
	return -1
}

// GetEphemerisLong returns an integer header value, or -1 for a ValueType
// that is not an integer.
func (e *Ephemeris) GetEphemerisLong(valueType ValueType) int64 {
	switch valueType {
	case NumberOfConstants:
		return int64(e.hdr.ncon)
	case EphemerisVersion:
		return e.hdr.deNumber
	case KernelSize:
		return int64(e.hdr.kernel)
	case KernelRecordSize:
		return int64(e.hdr.recsize)
	case KernelNCoeff:
		return int64(e.hdr.ncoeff)
	case KernelSwapBytes:
		if e.hdr.order != nativeOrder {
			return 1
		}
		return 0
	}
	if idx := int(valueType - IPTArrayOffset); idx >= 0 && idx < 45 {
		return int64(e.hdr.ipt[idx/3][idx%3])
	}
	return -1
}

// GetIPTArrayValue returns ipt[index/3][index%3], or -1 for an index outside 0..44.
func (e *Ephemeris) GetIPTArrayValue(index int) int64 {
	if index < 0 || index > 44 {
		return -1
	}
	return e.GetEphemerisLong(IPTArrayOffset + ValueType(index))
}

// GetEphemName returns the ephemeris name from the title, e.g. "DE431".
func (e *Ephemeris) GetEphemName() string {
	return e.hdr.name
}

// Title returns the three title lines of the header.
func (e *Ephemeris) Title() [3]string {
	return e.hdr.title
}

// GetConstantName returns the name of constant index.
func (e *Ephemeris) GetConstantName(index int) (string, error) {
	if e.constNames != nil {
		if index < 0 || index >= len(e.constNames) {
			return "", fmt.Errorf("%w: index %d out of range", ErrConstantNotFound, index)
		}
		return e.constNames[index], nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	name, _, err := e.readConstant(index)
	return name, err
}

// GetConstantValue returns the value of constant index.
func (e *Ephemeris) GetConstantValue(index int) (float64, error) {
	if e.constValues != nil {
		if index < 0 || index >= len(e.constValues) {
			return 0, fmt.Errorf("%w: index %d out of range", ErrConstantNotFound, index)
		}
		return e.constValues[index], nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, val, err := e.readConstant(index)
	return val, err
}

// Constant looks a constant up by name, ignoring surrounding blanks.
func (e *Ephemeris) Constant(name string) (float64, error) {
	name = strings.TrimSpace(name)
	for i := 0; i < int(e.hdr.ncon); i++ {
		n, err := e.GetConstantName(i)
		if err != nil {
			return 0, err
		}
		if n == name {
			return e.GetConstantValue(i)
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrConstantNotFound, name)
}
