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
	"fmt"

	"github.com/fulivi/mame-tools/pkg/hpib"
)

/*
	Op is one decoded Amigo operation. Execution happens in a single
	dispatch on the drive state (see Drive.Exec); the op types themselves
	only carry their parameters and the parallel poll policy flag.
*/
type Op interface {
	String() string
	// ppEnable reports whether executing this op re-enables the
	// parallel poll response
	ppEnable() bool
}

// IdentifyOp answers the identify sequence of the model.
type IdentifyOp struct{}

func (o IdentifyOp) String() string { return "IDENTIFY" }
func (o IdentifyOp) ppEnable() bool { return false }

// ParallelPollOp updates the parallel poll response line.
type ParallelPollOp struct {
	Enable bool
}

func (o ParallelPollOp) String() string { return fmt.Sprintf("PP %v", o.Enable) }
func (o ParallelPollOp) ppEnable() bool { return false }

// DeviceClearOp is the universal or selected device clear.
type DeviceClearOp struct{}

func (o DeviceClearOp) String() string { return "CLEAR" }
func (o DeviceClearOp) ppEnable() bool { return true }

// UnknownTalkOp is a talk command with an unsupported secondary address.
type UnknownTalkOp struct {
	SA byte
}

func (o UnknownTalkOp) String() string { return fmt.Sprintf("UNKNOWN TALK %02x", o.SA) }
func (o UnknownTalkOp) ppEnable() bool { return true }

// SendDataOp streams the sector buffer to the host.
type SendDataOp struct{}

func (o SendDataOp) String() string { return "SEND DATA" }
func (o SendDataOp) ppEnable() bool { return true }

// SendStatusOp streams the 4-byte status frame to the host.
type SendStatusOp struct{}

func (o SendStatusOp) String() string { return "SEND ADDR/STATUS" }
func (o SendStatusOp) ppEnable() bool { return true }

// DSJOp reports the device status jump byte.
type DSJOp struct{}

func (o DSJOp) String() string { return "DSJ" }
func (o DSJOp) ppEnable() bool { return true }

// UnknownListenOp is a listen command with an unsupported secondary
// address or parameter shape.
type UnknownListenOp struct {
	Cmd *hpib.ListenCmd
}

func (o UnknownListenOp) String() string { return "UNKNOWN " + o.Cmd.String() }
func (o UnknownListenOp) ppEnable() bool { return true }

// ReceiveDataOp writes host data to the current unit.
type ReceiveDataOp struct {
	Data []byte
}

func (o ReceiveDataOp) String() string {
	out := "RECEIVE DATA:"
	for _, b := range o.Data {
		out += fmt.Sprintf("%02x ", b)
	}
	return out
}
func (o ReceiveDataOp) ppEnable() bool { return true }

// SeekOp positions a unit at a CHS address.
type SeekOp struct {
	Unit uint
	Addr CHS
}

func (o SeekOp) String() string { return fmt.Sprintf("SEEK %d:%v", o.Unit, o.Addr) }
func (o SeekOp) ppEnable() bool { return true }

// ReqStatusOp latches the status frame for a unit.
type ReqStatusOp struct {
	Unit uint
}

func (o ReqStatusOp) String() string { return fmt.Sprintf("REQ STATUS %d", o.Unit) }
func (o ReqStatusOp) ppEnable() bool { return true }

// VerifyOp advances a unit by a sector count, or to the end of the disk
// when the count is zero.
type VerifyOp struct {
	Unit  uint
	Count uint
}

func (o VerifyOp) String() string { return fmt.Sprintf("VERIFY %d:%d", o.Unit, o.Count) }
func (o VerifyOp) ppEnable() bool { return true }

// ReqLogAddrOp latches the current unit's position as a CHS address.
type ReqLogAddrOp struct{}

func (o ReqLogAddrOp) String() string { return "REQ LOG ADDRESS" }
func (o ReqLogAddrOp) ppEnable() bool { return true }

// EndOp terminates a command exchange.
type EndOp struct{}

func (o EndOp) String() string { return "END" }
func (o EndOp) ppEnable() bool { return true }

// BufferedWriteOp arms a unit for receiving one sector.
type BufferedWriteOp struct {
	Unit uint
}

func (o BufferedWriteOp) String() string { return fmt.Sprintf("BUFFERED WR %d", o.Unit) }
func (o BufferedWriteOp) ppEnable() bool { return true }

// BufferedReadOp reads one sector from a unit into the buffer.
type BufferedReadOp struct {
	Unit uint
}

func (o BufferedReadOp) String() string { return fmt.Sprintf("BUFFERED RD %d", o.Unit) }
func (o BufferedReadOp) ppEnable() bool { return true }

// FormatOp formats a unit.
type FormatOp struct {
	Unit     uint
	Override byte
	Filler   byte
}

func (o FormatOp) String() string {
	return fmt.Sprintf("FORMAT %d %02x %02x", o.Unit, o.Override, o.Filler)
}
func (o FormatOp) ppEnable() bool { return true }

// AmigoClearOp is the addressed Amigo clear, announcing a device clear
// to follow.
type AmigoClearOp struct{}

func (o AmigoClearOp) String() string { return "AMIGO CLEAR" }
func (o AmigoClearOp) ppEnable() bool { return false }

/*
	Decode classifies a raw bus command into a typed Amigo operation. The
	listen table keys on secondary address, opcode byte and parameter
	length; anything not in the table becomes an unknown op.
*/
func Decode(cmd hpib.Cmd) Op {

	switch c := cmd.(type) {

	case hpib.IdentifyCmd:
		return IdentifyOp{}

	case hpib.ParallelPollCmd:
		return ParallelPollOp{Enable: c.Enable}

	case hpib.DeviceClearCmd:
		return DeviceClearOp{}

	case hpib.TalkCmd:
		return decodeTalk(c)

	case *hpib.ListenCmd:
		return decodeListen(c)
	}

	return nil
}

//
func decodeTalk(c hpib.TalkCmd) Op {

	switch c.SA {

	case 0:
		return SendDataOp{}

	case 8:
		return SendStatusOp{}

	case 0x10:
		return DSJOp{}

	default:
		return UnknownTalkOp{SA: c.SA}
	}
}

//
func decodeListen(c *hpib.ListenCmd) Op {

	p := c.Params

	switch c.SA {

	case 0:
		return ReceiveDataOp{Data: p}

	case 8:
		if len(p) == 6 && (p[0] == 0x02 || p[0] == 0x0c) {
			// seek & set address record
			return SeekOp{Unit: uint(p[1]), Addr: NewCHSFromBytes(p[2:])}
		} else if len(p) == 2 && p[0] == 0x03 {
			return ReqStatusOp{Unit: uint(p[1])}
		} else if len(p) == 4 && p[0] == 0x07 {
			return VerifyOp{
				Unit:  uint(p[1]),
				Count: uint(p[2])<<8 | uint(p[3]),
			}
		} else if len(p) == 2 && p[0] == 0x14 {
			return ReqLogAddrOp{}
		} else if len(p) == 2 && p[0] == 0x15 {
			return EndOp{}
		}

	case 9:
		if len(p) == 2 && p[0] == 0x08 {
			return BufferedWriteOp{Unit: uint(p[1])}
		}

	case 0x0a:
		if len(p) == 2 && p[0] == 0x03 {
			return ReqStatusOp{Unit: uint(p[1])}
		} else if len(p) == 2 && p[0] == 0x05 {
			return BufferedReadOp{Unit: uint(p[1])}
		} else if len(p) == 2 && p[0] == 0x14 {
			return ReqLogAddrOp{}
		}

	case 0x0b:
		if len(p) == 2 && p[0] == 0x05 {
			// read with verify
			return BufferedReadOp{Unit: uint(p[1])}
		}

	case 0x0c:
		if len(p) == 5 && p[0] == 0x18 {
			return FormatOp{Unit: uint(p[1]), Override: p[2], Filler: p[4]}
		}

	case 0x10:
		if len(p) == 1 {
			return AmigoClearOp{}
		}
	}

	return UnknownListenOp{Cmd: c}
}
