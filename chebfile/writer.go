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
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// FileSpec describes the header of a file to write.
type FileSpec struct {
	Title    string
	DENumber int
	Start    float64
	End      float64
	EMRat    float64
	Order    binary.ByteOrder // little endian when nil
}

// BodyData is one body ready to be written. Segments[i] covers
// Info.TSeg0 + i*Info.DSeg and holds x, y and z coefficients.
type BodyData struct {
	Info     BodyInfo
	Ref      *[2][]float64
	Segments [][3][]float64
}

// Write encodes a complete file to w.
func Write(w io.Writer, spec FileSpec, bodies []BodyData) error {
	order := spec.Order
	if order == nil {
		order = binary.LittleEndian
	}
	if len(bodies) == 0 || len(bodies) > maxBodies {
		return fmt.Errorf("chebfile: cannot write %d bodies", len(bodies))
	}
	if len(spec.Title) > titleSize {
		return fmt.Errorf("chebfile: title longer than %d bytes", titleSize)
	}
	if !(spec.End > spec.Start) {
		return fmt.Errorf("chebfile: empty time span [%f, %f]", spec.Start, spec.End)
	}

	off := int64(fixedHeader + len(bodies)*bodyRecordSize + 8)
	recs := make([]bodyRecord, len(bodies))
	for i := range bodies {
		b := bodies[i]
		b.Info.NSeg = len(b.Segments)
		if err := validateBody(&b); err != nil {
			return err
		}
		var refOff int64
		if b.Ref != nil {
			b.Info.Flags |= FlagEllipse
			refOff = off
			off += int64(2 * b.Info.NCoe * 8)
		} else {
			b.Info.Flags &^= FlagEllipse
		}
		recs[i] = recordOf(b.Info, refOff, off)
		off += int64(b.Info.NSeg) * b.Info.segmentBytes()
	}

	var hdr bytes.Buffer
	title := make([]byte, titleSize)
	copy(title, spec.Title)
	hdr.Write(title)
	for _, v := range []any{
		uint32(endianMark), uint32(Version), int32(spec.DENumber),
		spec.Start, spec.End, uint32(len(bodies)), spec.EMRat,
	} {
		binary.Write(&hdr, order, v)
	}
	for _, r := range recs {
		binary.Write(&hdr, order, r)
	}
	binary.Write(&hdr, order, xxhash.Sum64(hdr.Bytes()))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr.Bytes()); err != nil {
		return err
	}
	for _, b := range bodies {
		if b.Ref != nil {
			if err := writeFloats(bw, order, b.Ref[0], b.Ref[1]); err != nil {
				return err
			}
		}
		for _, s := range b.Segments {
			if err := writeFloats(bw, order, s[0], s[1], s[2]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes a file at path, creating parent directories.
func WriteFile(path string, spec FileSpec, bodies []BodyData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, spec, bodies); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func validateBody(b *BodyData) error {
	n := b.Info.NCoe
	if n < 1 || n > maxCoeffs || b.Info.NSeg < 1 || !(b.Info.DSeg > 0) {
		return fmt.Errorf("chebfile: body %d: ncoe %d nseg %d dseg %f", b.Info.ID, n, b.Info.NSeg, b.Info.DSeg)
	}
	if b.Ref != nil && (len(b.Ref[0]) != n || len(b.Ref[1]) != n) {
		return fmt.Errorf("chebfile: body %d: reference ellipse needs %d coefficients", b.Info.ID, n)
	}
	for i, s := range b.Segments {
		for c := range s {
			if len(s[c]) != n {
				return fmt.Errorf("chebfile: body %d segment %d: component %d has %d coefficients, want %d",
					b.Info.ID, i, c, len(s[c]), n)
			}
			for _, v := range s[c] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("chebfile: body %d segment %d: non-finite coefficient", b.Info.ID, i)
				}
			}
		}
	}
	return nil
}

func writeFloats(w io.Writer, order binary.ByteOrder, src ...[]float64) error {
	for _, s := range src {
		if err := binary.Write(w, order, s); err != nil {
			return err
		}
	}
	return nil
}
