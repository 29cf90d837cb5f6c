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

package hpib

import (
	"github.com/fulivi/mame-tools/pkg/remote488"
)

// MsgSource delivers Remote488 messages in arrival order.
type MsgSource interface {
	GetMsg() (remote488.Msg, error)
}

// universal commands
const cmdSDC = 0x04 // selected device clear
const cmdPPC = 0x05 // parallel poll configure
const cmdDCL = 0x14 // device clear
const cmdPPU = 0x15 // parallel poll unconfigure
const cmdUNL = 0x3f // unlisten
const cmdUNT = 0x5f // untalk

// secondary addressing states
const (
	saNone = iota
	saPACS
	saTPAS
	saLPAS
	saUNT
)

// command assembly states
const (
	decIdle = iota
	decMTASA
	decMLASA
)

/*
	Decoder tracks the IEEE-488 addressing model over the message stream:
	the signal line shadow, whether this device is currently addressed to
	talk or listen, and the secondary address sub-state. GetCmd blocks
	until one complete raw command has been reassembled.

	Parallel poll is handled here only as far as the bus defines it: the
	response is asserted when the device stops being addressed and
	deasserted when it becomes addressed. The resulting edges are emitted
	as ParallelPollCmd so drive policy can decide what actually goes out
	on the wire.
*/
type Decoder struct {
	//
	src MsgSource
	//
	mta byte
	mla byte
	msa byte
	//
	saState  int
	decState int
	//
	talker   bool
	listener bool
	ppState  bool
	signals  byte
	//
	pending Cmd
}

// NewDecoder creates a decoder for the given HPIB address, 0 through 7 by
// convention of the supported hosts.
func NewDecoder(src MsgSource, address byte) *Decoder {
	return &Decoder{
		src:     src,
		mta:     address&0x1f | 0x40,
		mla:     address&0x1f | 0x20,
		msa:     address&0x1f | 0x60,
		signals: 0xff,
	}
}

// GetCmd returns the next complete raw bus command. It fails with the
// error of the underlying message source when the connection goes away.
func (d *Decoder) GetCmd() (Cmd, error) {

	for {
		msg, err := d.src.GetMsg()
		if err != nil {
			return nil, err
		}

		switch msg.Type {

		case remote488.MsgSignalClear:
			d.signals &^= msg.Data

		case remote488.MsgSignalSet:
			d.signals |= msg.Data

		case remote488.MsgPPRequest, remote488.MsgPPData,
			remote488.MsgEchoReply:
			continue
		}

		isCmd := d.signals&remote488.SignalATN == 0 &&
			msg.Type == remote488.MsgDataByte

		if isCmd {
			if cmd := d.busCommand(msg.Data & 0x7f); cmd != nil {
				return cmd, nil
			}
		}

		switch d.decState {

		case decMTASA:
			if d.signals&remote488.SignalATN != 0 {
				// ATN deasserted, talk command complete
				d.decState = decIdle
				cmd := d.pending
				d.pending = nil
				return cmd, nil
			}

		case decMLASA:
			if d.listener && !isCmd {
				if msg.Type == remote488.MsgDataByte ||
					msg.Type == remote488.MsgEndByte {
					lc := d.pending.(*ListenCmd)
					lc.Params = append(lc.Params, msg.Data)
				}
				if msg.Type == remote488.MsgEndByte {
					d.decState = decIdle
					cmd := d.pending
					d.pending = nil
					return cmd, nil
				}
			}
		}
	}
}

/*
	busCommand interprets one byte received with ATN asserted. It returns
	a raw command when the byte completes one, nil otherwise. PCG bytes
	reset the secondary addressing state before interpretation.
*/
func (d *Decoder) busCommand(data byte) Cmd {

	isPCG := data&0x60 != 0x60
	saState := d.saState
	if isPCG {
		d.saState = saNone
	}

	switch {

	case data == cmdPPC && d.listener:
		d.saState = saPACS

	case data == cmdPPU:
		// parallel poll unconfigure, not implemented

	case d.listener && data == cmdUNL:
		d.listener = false
		d.decState = decIdle
		return d.assertPP()

	case data == cmdUNT:
		d.talker = false
		d.decState = decIdle
		d.saState = saUNT
		return d.assertPP()

	case data == d.mla:
		d.listener = true
		d.decState = decIdle
		d.saState = saLPAS

	case data == d.mta:
		d.talker = true
		d.decState = decIdle
		d.saState = saTPAS

	case d.talker && data&0x60 == 0x40:
		// some other talk address
		d.talker = false
		d.decState = decIdle
		return d.assertPP()

	case d.listener && data == cmdSDC, data == cmdDCL:
		d.decState = decIdle
		return DeviceClearCmd{}

	case !isPCG:
		switch saState {

		case saPACS:
			// PPE/PPD, not implemented

		case saTPAS:
			d.decState = decMTASA
			d.pending = TalkCmd{SA: data & 0x1f}
			return d.deassertPP()

		case saLPAS:
			d.decState = decMLASA
			d.pending = &ListenCmd{SA: data & 0x1f}
			return d.deassertPP()

		case saUNT:
			if data == d.msa {
				d.pending = IdentifyCmd{}
				d.decState = decMTASA
			}
		}
	}

	return nil
}

//
func (d *Decoder) assertPP() Cmd {
	if !d.ppState {
		d.ppState = true
		return ParallelPollCmd{Enable: true}
	}
	return nil
}

//
func (d *Decoder) deassertPP() Cmd {
	if d.ppState {
		d.ppState = false
		return ParallelPollCmd{Enable: false}
	}
	return nil
}
