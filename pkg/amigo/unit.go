/*
   AmigoDrive - HP Amigo disk drive emulator
   Copyright (c) 2018, F. Ulivi

   This file is part of AmigoDrive.

   AmigoDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   AmigoDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with AmigoDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package amigo

import (
	"io"
)

// SectorSize is the fixed sector size of all supported models.
const SectorSize = 256

// Image is the backing store of one unit. Sector n occupies bytes
// [n*SectorSize, (n+1)*SectorSize).
type Image interface {
	io.ReaderAt
	io.WriterAt
}

/*
	unit holds the state of one drive unit: the backing image (nil when no
	medium is present), the current LBA and the per-unit status bits that
	get reported through the two status bytes.
*/
type unit struct {
	//
	img   Image
	model *Model
	//
	lba uint
	//
	aBit bool // address invalid / attention
	cBit bool // CHS overflow / seek error
	fBit bool // first status after power-on
	wBit bool // write protect
	//
	ss   byte // error summary
	tttt byte // drive type nibble
}

//
func newUnit(img Image, m *Model) *unit {
	u := &unit{
		img:   img,
		model: m,
		fBit:  true,
		tttt:  6,
	}
	if !u.isReady() {
		// drive not ready
		u.ss = 3
		u.fBit = false
	}
	return u
}

//
func (u *unit) isReady() bool {
	return u.img != nil
}

//
func (u *unit) isLBAOk() bool {
	return u.lba < u.model.Geometry.MaxLBA()
}

// format fills the whole image with the filler byte and rewinds to LBA 0.
func (u *unit) format(filler byte) error {

	if !u.isReady() {
		return nil
	}

	sector := make([]byte, SectorSize)
	for ix := range sector {
		sector[ix] = filler
	}

	maxLBA := u.model.Geometry.MaxLBA()
	for lba := uint(0); lba < maxLBA; lba++ {
		if _, err := u.img.WriteAt(
			sector, int64(lba)*SectorSize); err != nil {
			return err
		}
	}

	u.lba = 0
	return nil
}

// write stores one sector at the current LBA and advances it. Short data
// is padded with zeros to a full sector, excess data is dropped.
func (u *unit) write(data []byte) error {

	if !u.isReady() {
		return nil
	}

	sector := make([]byte, SectorSize)
	copy(sector, data)

	if _, err := u.img.WriteAt(sector, int64(u.lba)*SectorSize); err != nil {
		return err
	}

	u.lba++
	return nil
}

// read fetches one sector at the current LBA and advances it. A short
// read past the end of the image yields whatever the store provides.
func (u *unit) read() ([]byte, error) {

	sector := make([]byte, SectorSize)

	if !u.isReady() {
		return sector, nil
	}

	if _, err := u.img.ReadAt(sector, int64(u.lba)*SectorSize); err != nil &&
		err != io.EOF {
		return nil, err
	}

	u.lba++
	return sector, nil
}

// encodeStatus fills the two status bytes reported after a request
// status command.
func (u *unit) encodeStatus(out []byte) {

	out[0] = u.tttt << 1
	if u.cBit || u.ss != 0 {
		out[0] |= 0x80
	}

	res := u.ss
	if u.aBit {
		res |= 0x80
	}
	if u.wBit {
		res |= 0x40
	}
	if u.fBit {
		res |= 0x08
	}
	if u.cBit {
		res |= 0x04
	}
	out[1] = res
}
