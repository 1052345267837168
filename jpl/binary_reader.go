package jpl

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// nativeOrder is the byte order DE files are normally distributed in.
var nativeOrder binary.ByteOrder = binary.LittleEndian

// detectByteOrder guesses the byte order of a DE file from its constant
// count: a little-endian read of a big-endian count (or vice versa) yields a
// value far beyond any real file.
func detectByteOrder(nconBytes []byte) binary.ByteOrder {
	if binary.LittleEndian.Uint32(nconBytes) > 65536 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// float64At decodes the float64 at b[off:off+8].
func float64At(order binary.ByteOrder, b []byte, off int) float64 {
	return math.Float64frombits(order.Uint64(b[off : off+8]))
}

// uint32At decodes the uint32 at b[off:off+4].
func uint32At(order binary.ByteOrder, b []byte, off int) uint32 {
	return order.Uint32(b[off : off+4])
}

// readAt seeks to off and fills buf completely.
func readAt(r io.ReadSeeker, off int64, buf []byte) error {
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("%w: offset %d: %v", ErrFileSeek, off, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: offset %d: %v", ErrFileRead, off, err)
	}
	return nil
}

// readFloat64s reads len(dst) float64 values at off in the given byte order.
func readFloat64s(r io.ReadSeeker, order binary.ByteOrder, off int64, dst []float64) error {
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("%w: offset %d: %v", ErrFileSeek, off, err)
	}
	if err := binary.Read(r, order, dst); err != nil {
		return fmt.Errorf("%w: offset %d: %v", ErrFileRead, off, err)
	}
	return nil
}
