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
	"reflect"
	"testing"

	"github.com/fulivi/mame-tools/pkg/hpib"
)

func TestDecodeTalk(t *testing.T) {

	ttable := []struct {
		sa   byte
		want Op
	}{
		{0x00, SendDataOp{}},
		{0x08, SendStatusOp{}},
		{0x10, DSJOp{}},
		{0x0c, UnknownTalkOp{SA: 0x0c}},
	}

	for _, tt := range ttable {
		got := Decode(hpib.TalkCmd{SA: tt.sa})
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SA %02x: expected %v, got %v", tt.sa, tt.want, got)
		}
	}
}

func TestDecodeListen(t *testing.T) {

	ttable := []struct {
		sa     byte
		params []byte
		want   Op
	}{
		{0x00, []byte{1, 2, 3},
			ReceiveDataOp{Data: []byte{1, 2, 3}}},
		{0x08, []byte{0x02, 0x01, 0x00, 0x12, 0x03, 0x1e},
			SeekOp{Unit: 1, Addr: CHS{Cyl: 0x12, Head: 0x03, Sec: 0x1e}}},
		{0x08, []byte{0x0c, 0x00, 0x00, 0x00, 0x00, 0x00},
			SeekOp{Unit: 0, Addr: CHS{}}},
		{0x08, []byte{0x03, 0x01}, ReqStatusOp{Unit: 1}},
		{0x08, []byte{0x07, 0x00, 0x01, 0x10},
			VerifyOp{Unit: 0, Count: 0x110}},
		{0x08, []byte{0x14, 0x00}, ReqLogAddrOp{}},
		{0x08, []byte{0x15, 0x00}, EndOp{}},
		{0x09, []byte{0x08, 0x01}, BufferedWriteOp{Unit: 1}},
		{0x0a, []byte{0x03, 0x00}, ReqStatusOp{Unit: 0}},
		{0x0a, []byte{0x05, 0x00}, BufferedReadOp{Unit: 0}},
		{0x0a, []byte{0x14, 0x00}, ReqLogAddrOp{}},
		{0x0b, []byte{0x05, 0x01}, BufferedReadOp{Unit: 1}},
		{0x0c, []byte{0x18, 0x00, 0x80, 0x00, 0x5a},
			FormatOp{Unit: 0, Override: 0x80, Filler: 0x5a}},
		{0x10, []byte{0x00}, AmigoClearOp{}},
	}

	for _, tt := range ttable {
		got := Decode(&hpib.ListenCmd{SA: tt.sa, Params: tt.params})
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LISTEN %02x %v: expected %v, got %v",
				tt.sa, tt.params, tt.want, got)
		}
	}
}

func TestDecodeUnknownListen(t *testing.T) {

	ttable := []struct {
		sa     byte
		params []byte
	}{
		{0x08, []byte{0x02, 0x01}},       // seek with short params
		{0x08, []byte{0x42, 0x00}},       // unknown opcode
		{0x09, []byte{0x08}},             // buffered write, missing unit
		{0x0d, []byte{0x03, 0x00}},       // unsupported SA
		{0x10, []byte{0x00, 0x00}},       // amigo clear takes one byte
	}

	for _, tt := range ttable {
		cmd := &hpib.ListenCmd{SA: tt.sa, Params: tt.params}
		got := Decode(cmd)
		if ul, ok := got.(UnknownListenOp); !ok || ul.Cmd != cmd {
			t.Errorf("LISTEN %02x %v: expected unknown, got %v",
				tt.sa, tt.params, got)
		}
	}
}

func TestDecodeOthers(t *testing.T) {

	if _, ok := Decode(hpib.IdentifyCmd{}).(IdentifyOp); !ok {
		t.Error("identify did not decode")
	}
	if _, ok := Decode(hpib.DeviceClearCmd{}).(DeviceClearOp); !ok {
		t.Error("device clear did not decode")
	}
	pp, ok := Decode(hpib.ParallelPollCmd{Enable: true}).(ParallelPollOp)
	if !ok || !pp.Enable {
		t.Error("parallel poll did not decode")
	}
}

func TestPPEnableFlags(t *testing.T) {

	// ops that must not re-assert the parallel poll response
	ttable := []struct {
		op   Op
		want bool
	}{
		{IdentifyOp{}, false},
		{ParallelPollOp{}, false},
		{AmigoClearOp{}, false},
		{DeviceClearOp{}, true},
		{SendDataOp{}, true},
		{SendStatusOp{}, true},
		{DSJOp{}, true},
		{SeekOp{}, true},
		{ReqStatusOp{}, true},
		{VerifyOp{}, true},
		{ReqLogAddrOp{}, true},
		{EndOp{}, true},
		{BufferedWriteOp{}, true},
		{BufferedReadOp{}, true},
		{FormatOp{}, true},
		{ReceiveDataOp{}, true},
		{UnknownTalkOp{}, true},
		{UnknownListenOp{}, true},
	}

	for _, tt := range ttable {
		if tt.op.ppEnable() != tt.want {
			t.Errorf("%v: expected ppEnable %v", tt.op, tt.want)
		}
	}
}
