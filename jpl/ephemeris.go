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
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mshafiee/astroeph/internal/logging"
)

// readHeader parses record 0 and validates the coefficient layout.
func readHeader(r io.ReadSeeker) (header, error) {
	var h header

	titles := make([]byte, 84*3)
	if err := readAt(r, 0, titles); err != nil {
		return h, fmt.Errorf("title: %w", err)
	}
	for i := range h.title {
		h.title[i] = strings.TrimRight(string(bytes.TrimRight(titles[i*84:(i+1)*84], "\x00")), " ")
	}

	b := make([]byte, numericHeaderSize)
	if err := readAt(r, headerOffset, b); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	h.order = detectByteOrder(b[24:28])
	h.start = float64At(h.order, b, 0)
	h.end = float64At(h.order, b, 8)
	h.step = float64At(h.order, b, 16)
	h.ncon = uint32At(h.order, b, 24)
	h.au = float64At(h.order, b, 28)
	h.emrat = float64At(h.order, b, 36)
	for i := 0; i < 12; i++ {
		for j := 0; j < 3; j++ {
			h.ipt[i][j] = uint32At(h.order, b, 44+(i*3+j)*4)
		}
	}
	numde := uint32At(h.order, b, 44+36*4)
	for j := 0; j < 3; j++ {
		h.ipt[12][j] = uint32At(h.order, b, 44+(37+j)*4)
	}

	var ok bool
	h.name, h.deNumber, ok = parseTitle(titles[:84])
	if !ok {
		h.deNumber = int64(numde)
		if h.name == "" {
			h.name = fmt.Sprintf("DE%d", numde)
		}
	}

	// lunar mantle and TT-TDB follow the names of constants 400 and up
	if h.deNumber >= 430 && h.ncon != 400 {
		off := int64(start400thConstantName)
		if h.ncon > 400 {
			off += int64(h.ncon-400) * 6
		}
		extra := make([]byte, 6*4)
		if err := readAt(r, off, extra); err == nil {
			for j := 0; j < 3; j++ {
				h.ipt[13][j] = uint32At(h.order, extra, j*4)
				h.ipt[14][j] = uint32At(h.order, extra, 12+j*4)
			}
		}
	}
	if h.ipt[13][0] != h.ipt[12][0]+h.ipt[12][1]*h.ipt[12][2]*3 ||
		h.ipt[14][0] != h.ipt[13][0]+h.ipt[13][1]*h.ipt[13][2]*3 {
		h.ipt[13] = [3]uint32{}
		h.ipt[14] = [3]uint32{}
	}

	if h.emrat > 81.3008 || h.emrat < 81.30055 {
		return h, fmt.Errorf("%w: Earth/Moon ratio %f out of range", ErrCorrupt, h.emrat)
	}
	if !(h.step > 0) || !(h.end > h.start) || !(h.au > 0) {
		return h, fmt.Errorf("%w: bad time span [%f, %f] step %f", ErrCorrupt, h.start, h.end, h.step)
	}

	h.kernel = 4
	for i := range h.ipt {
		h.kernel += 2 * h.ipt[i][1] * h.ipt[i][2] * uint32(quantityDimension(i))
	}
	h.recsize = h.kernel * 4
	h.ncoeff = h.kernel / 2

	for i, p := range h.ipt {
		if p[1] == 0 {
			continue
		}
		if p[1] > maxCheby || p[0] < 1 || p[2] == 0 {
			return h, fmt.Errorf("%w: ipt[%d] = %v", ErrCorrupt, i, p)
		}
		if last := p[0] - 1 + p[1]*p[2]*uint32(quantityDimension(i)); last > h.ncoeff {
			return h, fmt.Errorf("%w: ipt[%d] = %v exceeds record of %d coefficients", ErrCorrupt, i, p, h.ncoeff)
		}
	}
	return h, nil
}

// parseTitle extracts the ephemeris name and number from the first title
// line. "JPL Planetary Ephemeris DE431/LE431" yields ("DE431", 431) and
// "INPOP19a ..." yields ("INPOP19a", 19).
func parseTitle(title []byte) (string, int64, bool) {
	var digits, field []byte
	if bytes.HasPrefix(title, []byte("INPOP")) {
		digits = bytes.TrimLeft(title[5:30], " ")
		field = title[:30]
	} else {
		if len(title) < 54 {
			return "", 0, false
		}
		digits = bytes.TrimLeft(title[26:54], " ")
		field = title[24:54]
	}
	n := 0
	for n < len(digits) && digits[n] >= '0' && digits[n] <= '9' {
		n++
	}
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	var name string
	if f := strings.Fields(string(field)); len(f) > 0 {
		name, _, _ = strings.Cut(f[0], "/")
	}
	de, err := strconv.ParseInt(string(digits[:n]), 10, 64)
	if err != nil {
		return name, 0, false
	}
	return name, de, true
}

// quantityDimension returns the number of components of ipt row idx:
// nutations have two, TT-TDB one, everything else three.
func quantityDimension(idx int) int {
	switch idx {
	case 11:
		return 2
	case 14:
		return 1
	default:
		return 3
	}
}

// constantNameOffset is where the 6-byte name of constant idx lives.
func constantNameOffset(idx int) int64 {
	if idx < 400 {
		return 84*3 + int64(idx)*6
	}
	return start400thConstantName + int64(idx-400)*6
}

// readConstant reads one constant name and value from the file.
func (e *Ephemeris) readConstant(idx int) (string, float64, error) {
	if idx < 0 || idx >= int(e.hdr.ncon) {
		return "", 0, fmt.Errorf("%w: index %d out of range", ErrConstantNotFound, idx)
	}
	name := make([]byte, 6)
	if err := readAt(e.r, constantNameOffset(idx), name); err != nil {
		return "", 0, err
	}
	val := make([]float64, 1)
	if err := readFloat64s(e.r, e.hdr.order, int64(e.hdr.recsize)+int64(idx)*8, val); err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(string(bytes.TrimRight(name, "\x00"))), val[0], nil
}

// loadConstants caches every constant name and value.
func (e *Ephemeris) loadConstants() error {
	n := int(e.hdr.ncon)
	names := make([]string, n)
	values := make([]float64, n)
	if err := readFloat64s(e.r, e.hdr.order, int64(e.hdr.recsize), values); err != nil {
		return fmt.Errorf("constant values: %w", err)
	}
	buf := make([]byte, 6)
	for i := 0; i < n; i++ {
		if err := readAt(e.r, constantNameOffset(i), buf); err != nil {
			return fmt.Errorf("constant name %d: %w", i, err)
		}
		names[i] = strings.TrimSpace(string(bytes.TrimRight(buf, "\x00")))
	}
	e.constNames, e.constValues = names, values
	return nil
}

// pleph returns the state of ntarg relative to ncent. Targets 14..17 are the
// non-body series; their components are spread as [v0 v1 v2 v0' v1' v2'].
// The caller holds e.mu.
func (e *Ephemeris) pleph(et float64, ntarg, ncent int, vel bool) ([6]float64, error) {
	var rrd [6]float64
	listVal := 1
	if vel {
		listVal = 2
	}
	if ntarg == ncent {
		return rrd, nil
	}

	var list [14]int
	var pv [13][6]float64

	if ntarg >= 14 && ntarg <= 17 {
		row := ntarg - 3
		if e.hdr.ipt[row][1] == 0 {
			return rrd, fmt.Errorf("%w: %s", ErrQuantityNotInEphemeris, Planet(ntarg))
		}
		list[ntarg-4] = listVal
		var series [6]float64
		if err := e.state(et, list, &pv, series[:]); err != nil {
			return rrd, err
		}
		dim := quantityDimension(row)
		for i := 0; i < dim; i++ {
			rrd[i] = series[i]
			if vel {
				rrd[3+i] = series[dim+i]
			}
		}
		return rrd, nil
	}
	if ntarg > 13 || ncent > 13 || ntarg < 1 || ncent < 1 {
		return rrd, fmt.Errorf("%w: target %d center %d", ErrInvalidIndex, ntarg, ncent)
	}

	for _, body := range [2]int{ntarg, ncent} {
		k := body - 1
		if k <= 9 {
			list[k] = listVal
		}
		switch k {
		case 9, 12:
			list[2] = listVal // Moon and EMB need the EMB series
		case 2:
			list[9] = listVal // Earth needs the geocentric Moon
		}
	}

	if err := e.state(et, list, &pv, nil); err != nil {
		return rrd, err
	}
	if ntarg == 11 || ncent == 11 {
		copy(pv[10][:], e.pvsun[:6])
	}
	if ntarg == 13 || ncent == 13 {
		pv[12] = pv[2]
	}
	if ntarg*ncent == 30 && ntarg+ncent == 13 {
		// Earth and Moon against each other: the geocentric Moon is all we need
		pv[2] = [6]float64{}
	} else {
		if list[2] != 0 {
			for i := 0; i < list[2]*3; i++ {
				pv[2][i] -= pv[9][i] / (1.0 + e.hdr.emrat)
			}
		}
		if list[9] != 0 {
			for i := 0; i < list[9]*3; i++ {
				pv[9][i] += pv[2][i]
			}
		}
	}
	for i := 0; i < listVal*3; i++ {
		rrd[i] = pv[ntarg-1][i] - pv[ncent-1][i]
	}
	return rrd, nil
}

// state interpolates the quantities flagged in list at et. list holds 0
// (skip), 1 (position) or 2 (position and velocity) for:
//
//	0-8 Mercury..Pluto with 2 the EMB, 9 geocentric Moon, 10 nutations,
//	11 librations, 12 lunar mantle, 13 TT-TDB.
//
// Bodies land in pv in AU, barycentric; the series land in series. The
// barycentric Sun, with acceleration, is refreshed into e.pvsun whenever et
// changes.
func (e *Ephemeris) state(et float64, list [14]int, pv *[13][6]float64, series []float64) error {
	h := &e.hdr
	if et < h.start || et > h.end {
		return fmt.Errorf("%w: %.6f not in [%.1f, %.1f]", ErrOutsideRange, et, h.start, h.end)
	}

	blockLoc := (et - h.start) / h.step
	nr := int64(blockLoc)
	t := [2]float64{blockLoc - float64(nr), h.step}
	if t[0] == 0 && nr != 0 {
		t[0] = 1.0
		nr--
	}
	if nr != e.cacheRec {
		if err := readFloat64s(e.r, h.order, (nr+2)*int64(h.recsize), e.cache); err != nil {
			e.cacheRec = -1
			e.log.Error("record read failed", logging.Int("record", int(nr)), logging.Err(err))
			return err
		}
		e.cacheRec = nr
	}

	recomputeSun := e.pvsunT != et
	e.pvsunT = et
	aufac := 1.0 / h.au

	// Grouping by sub-interval count lets consecutive quantities reuse the
	// Chebyshev values cached in iinfo.
	for na := uint32(1); na <= 32; na *= 2 {
		for i := 0; i < 15; i++ {
			var quantities, row int
			switch {
			case i == 14:
				row = 10
				if recomputeSun {
					quantities = 3
				}
			case i < 10:
				row, quantities = i, list[i]
			default:
				row, quantities = i+1, list[i]
			}
			p := h.ipt[row]
			if quantities == 0 || p[2] != na {
				continue
			}
			var dest []float64
			switch {
			case i < 10:
				dest = pv[i][:]
			case i == 14:
				dest = e.pvsun[:]
			default:
				dest = series
			}
			interp(&e.iinfo, e.cache[p[0]-1:], t, uint(p[1]), uint(quantityDimension(row)), uint(na), quantities, dest)
			if i < 10 || i == 14 {
				for j := 0; j < quantities*3; j++ {
					dest[j] *= aufac
				}
			}
		}
	}
	return nil
}

// interp evaluates one Chebyshev series set.
//
//	coef      coefficients starting at the quantity's first entry
//	t         [fraction of the record elapsed, record length in days]
//	ncf       coefficients per component
//	ncm       components
//	na        sub-intervals per record
//	flag      1 position, 2 adds velocity, 3 adds acceleration
//	posvel    output, ncm values per derivative order
func interp(iinfo *interpolationInfo, coef []float64, t [2]float64, ncf, ncm, na uint, flag int, posvel []float64) {
	dna := float64(na)
	intPart, fracPart := math.Modf(dna * t[0])
	l := uint(intPart)
	tc := 2.0*fracPart - 1.0
	if l == na {
		l--
		tc = 1.0
	}

	if tc != iinfo.posnCoeff[1] {
		iinfo.nPosnAvail = 2
		iinfo.nVelAvail = 2
		iinfo.posnCoeff[1] = tc
		iinfo.twot = tc + tc
	}
	if iinfo.nPosnAvail < ncf {
		for i := max(iinfo.nPosnAvail, 2); i < ncf; i++ {
			iinfo.posnCoeff[i] = iinfo.twot*iinfo.posnCoeff[i-1] - iinfo.posnCoeff[i-2]
		}
		iinfo.nPosnAvail = ncf
	}

	out := 0
	for i := uint(0); i < ncm; i++ {
		c := coef[ncf*(i+l*ncm):]
		sum := 0.0
		for j := uint(0); j < ncf; j++ {
			sum += iinfo.posnCoeff[j] * c[j]
		}
		posvel[out] = sum
		out++
	}
	if flag <= 1 {
		return
	}

	if iinfo.nVelAvail < ncf {
		for i := max(iinfo.nVelAvail, 2); i < ncf; i++ {
			iinfo.velCoeff[i] = iinfo.twot*iinfo.velCoeff[i-1] + 2*iinfo.posnCoeff[i-1] - iinfo.velCoeff[i-2]
		}
		iinfo.nVelAvail = ncf
	}
	vfac := (dna + dna) / t[1]
	for i := uint(0); i < ncm; i++ {
		c := coef[ncf*(i+l*ncm):]
		sum := 0.0
		for j := uint(1); j < ncf; j++ {
			sum += iinfo.velCoeff[j] * c[j]
		}
		posvel[out] = sum * vfac
		out++
	}
	if flag != 3 {
		return
	}

	var accel [maxCheby]float64
	for i := uint(2); i < ncf; i++ {
		accel[i] = 4.0*iinfo.velCoeff[i-1] + iinfo.twot*accel[i-1] - accel[i-2]
	}
	for i := uint(0); i < ncm; i++ {
		c := coef[ncf*(i+l*ncm):]
		sum := 0.0
		for j := uint(2); j < ncf; j++ {
			sum += accel[j] * c[j]
		}
		posvel[out] = sum * vfac * vfac
		out++
	}
}
