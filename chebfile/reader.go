package chebfile

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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/logging"
)

// Option configures Open and New.
type Option func(*File)

// WithLogger sets the logger used for segment-load diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.log = l
		}
	}
}

// segment is the decoded coefficient block currently held for a body.
type segment struct {
	index  int
	tStart float64
	tEnd   float64
	coef   [3][]float64
}

type bodyData struct {
	info       BodyInfo
	ref        *[2][]float64
	dataOffset int64
	seg        *segment
}

// File is an open coefficient file. It is not safe for concurrent use.
type File struct {
	name   string
	r      io.ReadSeeker
	closer io.Closer
	hdr    Header
	bodies map[int]*bodyData
	log    logging.Logger
}

// Open opens the coefficient file at path. A missing file yields ErrNotFound.
func Open(path string, opts ...Option) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	f, err := New(fh, opts...)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.name = path
	f.closer = fh
	return f, nil
}

// New reads a coefficient file from r and validates its header.
func New(r io.ReadSeeker, opts ...Option) (*File, error) {
	f := &File{r: r, log: logging.Noop(), bodies: make(map[int]*bodyData)}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.readHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) readHeader() error {
	fixed := make([]byte, fixedHeader)
	if _, err := io.ReadFull(f.r, fixed); err != nil {
		return fmt.Errorf("%w: short header: %v", ErrCorrupt, err)
	}
	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(fixed[titleSize:]) {
	case endianMark:
		order = binary.LittleEndian
	case 0x63626100:
		order = binary.BigEndian
	default:
		return fmt.Errorf("%w: bad byte order marker", ErrCorrupt)
	}

	h := Header{Order: order}
	h.Title = string(bytes.TrimRight(fixed[:titleSize], "\x00 "))
	off := titleSize + 4
	h.Version = order.Uint32(fixed[off:])
	h.DENumber = int(int32(order.Uint32(fixed[off+4:])))
	h.Start = math.Float64frombits(order.Uint64(fixed[off+8:]))
	h.End = math.Float64frombits(order.Uint64(fixed[off+16:]))
	nbodies := order.Uint32(fixed[off+24:])
	h.EMRat = math.Float64frombits(order.Uint64(fixed[off+28:]))
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}
	if nbodies == 0 || nbodies > maxBodies || !(h.End > h.Start) {
		return fmt.Errorf("%w: %d bodies over [%f, %f]", ErrCorrupt, nbodies, h.Start, h.End)
	}

	recs := make([]byte, int(nbodies)*bodyRecordSize+8)
	if _, err := io.ReadFull(f.r, recs); err != nil {
		return fmt.Errorf("%w: short body table: %v", ErrCorrupt, err)
	}
	sum := xxhash.New()
	sum.Write(fixed)
	sum.Write(recs[:len(recs)-8])
	if got, want := sum.Sum64(), order.Uint64(recs[len(recs)-8:]); got != want {
		return fmt.Errorf("%w: header checksum %016x, stored %016x", ErrCorrupt, got, want)
	}

	f.hdr.Order = order
	rd := bytes.NewReader(recs[:len(recs)-8])
	for i := 0; i < int(nbodies); i++ {
		var rec bodyRecord
		if err := binary.Read(rd, order, &rec); err != nil {
			return fmt.Errorf("%w: body record %d: %v", ErrCorrupt, i, err)
		}
		info := rec.info()
		if info.NCoe < 1 || info.NCoe > maxCoeffs || info.NSeg < 1 || !(info.DSeg > 0) || rec.DataOffset <= 0 {
			return fmt.Errorf("%w: body %d has ncoe %d nseg %d dseg %f", ErrCorrupt, info.ID, info.NCoe, info.NSeg, info.DSeg)
		}
		bd := &bodyData{info: info, dataOffset: rec.DataOffset}
		if info.Flags&FlagEllipse != 0 {
			ref := [2][]float64{make([]float64, info.NCoe), make([]float64, info.NCoe)}
			if err := f.readFloats(rec.RefOffset, ref[0], ref[1]); err != nil {
				return fmt.Errorf("reference ellipse of body %d: %w", info.ID, err)
			}
			bd.ref = &ref
		}
		f.bodies[info.ID] = bd
		h.Bodies = append(h.Bodies, info)
	}
	f.hdr = h
	return nil
}

// readFloats fills each destination in turn starting at off.
func (f *File) readFloats(off int64, dst ...[]float64) error {
	if _, err := f.r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %d: %v", ErrCorrupt, off, err)
	}
	for _, d := range dst {
		if err := binary.Read(f.r, f.hdr.Order, d); err != nil {
			return fmt.Errorf("%w: read at %d: %v", ErrCorrupt, off, err)
		}
	}
	return nil
}

// Name returns the path the file was opened from.
func (f *File) Name() string { return f.name }

// Header returns the decoded header.
func (f *File) Header() Header { return f.hdr }

// Covers reports whether tjd lies within the file's time span.
func (f *File) Covers(tjd float64) bool {
	return tjd >= f.hdr.Start && tjd <= f.hdr.End
}

// Has reports whether the file stores body id.
func (f *File) Has(id int) bool {
	_, ok := f.bodies[id]
	return ok
}

// Body returns the description of body id.
func (f *File) Body(id int) (BodyInfo, bool) {
	bd, ok := f.bodies[id]
	if !ok {
		return BodyInfo{}, false
	}
	return bd.info, true
}

// State evaluates body id at tjd. Positions are in AU and velocities in
// AU/day, J2000 equatorial, relative to the origin the body is stored in.
func (f *File) State(tjd float64, id int, speed bool) (astrometry.State, error) {
	bd, ok := f.bodies[id]
	if !ok {
		return astrometry.State{}, fmt.Errorf("%w: body %d in %s", ErrNotFound, id, f.name)
	}
	info := bd.info
	if tjd < info.Start() || tjd > info.End() || !f.Covers(tjd) {
		return astrometry.State{}, fmt.Errorf("%w: body %d at %.6f, file covers [%.1f, %.1f]",
			ErrOutOfRange, id, tjd, math.Max(info.Start(), f.hdr.Start), math.Min(info.End(), f.hdr.End))
	}
	iseg := int((tjd - info.TSeg0) / info.DSeg)
	if iseg >= info.NSeg {
		iseg = info.NSeg - 1
	}
	if bd.seg == nil || bd.seg.index != iseg {
		seg, err := f.loadSegment(bd, iseg)
		if err != nil {
			bd.seg = nil
			return astrometry.State{}, err
		}
		bd.seg = seg
	}
	seg := bd.seg
	x := 2*(tjd-seg.tStart)/info.DSeg - 1
	pos, vel := evalSegment(&seg.coef, x, speed)
	st := astrometry.State{Pos: r3.Vec{X: pos[0], Y: pos[1], Z: pos[2]}}
	if speed {
		k := 2 / info.DSeg
		st.Vel = r3.Vec{X: vel[0] * k, Y: vel[1] * k, Z: vel[2] * k}
	}
	return st, nil
}

// loadSegment reads segment iseg and, for rotated bodies, reconstructs it.
func (f *File) loadSegment(bd *bodyData, iseg int) (*segment, error) {
	info := bd.info
	n := info.NCoe
	seg := &segment{
		index:  iseg,
		tStart: info.TSeg0 + float64(iseg)*info.DSeg,
		coef:   [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)},
	}
	seg.tEnd = seg.tStart + info.DSeg
	off := bd.dataOffset + int64(iseg)*info.segmentBytes()
	if err := f.readFloats(off, seg.coef[0], seg.coef[1], seg.coef[2]); err != nil {
		return nil, fmt.Errorf("body %d segment %d: %w", info.ID, iseg, err)
	}
	for _, c := range seg.coef {
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: body %d segment %d holds non-finite coefficients", ErrCorrupt, info.ID, iseg)
			}
		}
	}
	if info.Flags&FlagRotated != 0 {
		Reconstruct(&seg.coef, bd.ref, info.Elements, seg.tStart+info.DSeg/2, info.Flags&FlagMoon != 0)
	}
	f.log.Debug("segment loaded",
		logging.String("file", f.name),
		logging.Int("body", info.ID),
		logging.Int("segment", iseg),
		logging.Float("start", seg.tStart))
	return seg, nil
}

// Close releases the file handle. Cached segments are dropped.
func (f *File) Close() error {
	for _, bd := range f.bodies {
		bd.seg = nil
	}
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}
