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
	"errors"
	"fmt"
)

//
var ErrCHSOutOfRange = errors.New("CHS address out of range")
var ErrLBAOutOfRange = errors.New("LBA out of range")

// CHS is a cylinder/head/sector triple. It doubles as the geometry of a
// unit, in which case each field holds the respective count.
type CHS struct {
	Cyl  uint
	Head uint
	Sec  uint
}

// NewCHSFromBytes decodes the 4-byte wire representation:
// cylinder high, cylinder low, head, sector.
func NewCHSFromBytes(b []byte) CHS {
	return CHS{
		Cyl:  uint(b[0])<<8 | uint(b[1]),
		Head: uint(b[2]),
		Sec:  uint(b[3]),
	}
}

//
func (c CHS) String() string {
	return fmt.Sprintf("(%d:%d:%d)", c.Cyl, c.Head, c.Sec)
}

// ToBytes encodes into the 4-byte wire representation.
func (c CHS) ToBytes(out []byte) error {
	if err := c.checkRange(); err != nil {
		return err
	}
	out[0] = byte(c.Cyl >> 8)
	out[1] = byte(c.Cyl)
	out[2] = byte(c.Head)
	out[3] = byte(c.Sec)
	return nil
}

// ToLBA converts to a linear block address within the given geometry,
// row-major with sectors innermost.
func (c CHS) ToLBA(geometry CHS) (uint, error) {
	if err := c.checkRange(); err != nil {
		return 0, err
	}
	if c.Cyl >= geometry.Cyl || c.Head >= geometry.Head ||
		c.Sec >= geometry.Sec {
		return 0, ErrCHSOutOfRange
	}
	return (c.Cyl*geometry.Head+c.Head)*geometry.Sec + c.Sec, nil
}

// FromLBA converts a linear block address back into a CHS triple within
// the given geometry.
func FromLBA(lba uint, geometry CHS) (CHS, error) {
	if lba >= geometry.MaxLBA() {
		return CHS{}, ErrLBAOutOfRange
	}
	track := lba / geometry.Sec
	return CHS{
		Cyl:  track / geometry.Head,
		Head: track % geometry.Head,
		Sec:  lba % geometry.Sec,
	}, nil
}

// MaxLBA is the block count of the geometry, one past the last valid LBA.
func (c CHS) MaxLBA() uint {
	return c.Cyl * c.Head * c.Sec
}

//
func (c CHS) checkRange() error {
	if c.Cyl >= 0x10000 || c.Head >= 0x100 || c.Sec >= 0x100 {
		return ErrCHSOutOfRange
	}
	return nil
}
