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
	"bytes"
	"io/ioutil"
	"os"
	"testing"
)

// a small model keeps the image fixtures small
var testModel = &Model{
	Name:     "test",
	ID:       [2]byte{0x01, 0x0a},
	Geometry: CHS{Cyl: 2, Head: 2, Sec: 4},
	Units:    1,
}

//
func tempImage(t *testing.T) *os.File {
	f, err := ioutil.TempFile("", "amigo")
	if err != nil {
		t.Fatalf("cannot create image: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return f
}

func TestUnitNotReady(t *testing.T) {

	u := newUnit(nil, testModel)

	if u.isReady() {
		t.Error("unit without image reports ready")
	}
	if u.fBit || u.ss != 3 {
		t.Errorf("expected ss=3, F clear; got ss=%d F=%v", u.ss, u.fBit)
	}

	out := make([]byte, 2)
	u.encodeStatus(out)
	if out[0] != 0x8c || out[1] != 0x03 {
		t.Errorf("expected status 8c 03, got %02x %02x", out[0], out[1])
	}

	// media operations are no-ops
	if err := u.write([]byte{1, 2, 3}); err != nil {
		t.Errorf("write failed: %v", err)
	}
	if u.lba != 0 {
		t.Errorf("write on missing medium moved LBA to %d", u.lba)
	}
}

func TestUnitFreshStatus(t *testing.T) {

	u := newUnit(tempImage(t), testModel)

	if !u.fBit {
		t.Error("expected F set after power-on")
	}

	out := make([]byte, 2)
	u.encodeStatus(out)
	if out[0] != 0x0c || out[1] != 0x08 {
		t.Errorf("expected status 0c 08, got %02x %02x", out[0], out[1])
	}
}

func TestUnitStatusBits(t *testing.T) {

	u := newUnit(tempImage(t), testModel)
	u.fBit = false
	u.aBit = true
	u.cBit = true
	u.wBit = true

	out := make([]byte, 2)
	u.encodeStatus(out)
	if out[0] != 0x8c {
		t.Errorf("expected first byte 8c, got %02x", out[0])
	}
	if out[1] != 0xc4 {
		t.Errorf("expected second byte c4, got %02x", out[1])
	}
}

func TestUnitFormatAndRead(t *testing.T) {

	f := tempImage(t)
	u := newUnit(f, testModel)

	if err := u.format(0x5a); err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if u.lba != 0 {
		t.Errorf("expected LBA 0 after format, got %d", u.lba)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	want := int64(testModel.Geometry.MaxLBA()) * SectorSize
	if info.Size() != want {
		t.Errorf("expected image size %d, got %d", want, info.Size())
	}

	for lba := uint(0); lba < testModel.Geometry.MaxLBA(); lba++ {
		sec, err := u.read()
		if err != nil {
			t.Fatalf("read at %d failed: %v", lba, err)
		}
		for _, b := range sec {
			if b != 0x5a {
				t.Fatalf("sector %d not filled: %02x", lba, b)
			}
		}
	}
	if u.lba != testModel.Geometry.MaxLBA() {
		t.Errorf("expected LBA at end, got %d", u.lba)
	}
}

func TestUnitWriteReadBack(t *testing.T) {

	u := newUnit(tempImage(t), testModel)
	if err := u.format(0); err != nil {
		t.Fatalf("format failed: %v", err)
	}

	data := make([]byte, SectorSize)
	for ix := range data {
		data[ix] = byte(ix)
	}

	u.lba = 5
	if err := u.write(data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if u.lba != 6 {
		t.Errorf("expected LBA 6 after write, got %d", u.lba)
	}

	u.lba = 5
	got, err := u.read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("read back data differs")
	}
}

func TestUnitShortWritePads(t *testing.T) {

	u := newUnit(tempImage(t), testModel)
	if err := u.format(0xff); err != nil {
		t.Fatalf("format failed: %v", err)
	}

	if err := u.write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	u.lba = 0
	got, err := u.read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := make([]byte, SectorSize)
	copy(want, []byte{1, 2, 3})
	if !bytes.Equal(got, want) {
		t.Error("short write was not zero padded")
	}
}
