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

package remote488

import (
	"fmt"
)

// message types of the Remote488 serialization
const MsgSignalClear = 'R' // clear signal(s)
const MsgSignalSet = 'S'   // set signal(s)
const MsgDataByte = 'D'    // cmd/data byte (no EOI)
const MsgEndByte = 'E'     // data byte (with EOI)
const MsgPPData = 'P'      // parallel poll data
const MsgPPRequest = 'Q'   // request PP data
const MsgEchoReq = 'J'     // heartbeat: echo request
const MsgEchoReply = 'K'   // heartbeat: echo reply

// SignalATN is the only signal bit interpreted by the emulator. The bit is
// 0 while ATN is asserted, i.e. while data bytes carry bus commands.
const SignalATN = 0x01

// Msg is one message of the Remote488 stream: a type letter plus an 8-bit
// data value, serialized as "T:hh".
type Msg struct {
	Type byte
	Data byte
}

//
func (m Msg) String() string {
	return fmt.Sprintf("%c:%02x", m.Type, m.Data)
}

//
func formatMsg(m Msg) string {
	return fmt.Sprintf("%c:%02x\n", m.Type, m.Data)
}

//
func isMsgType(c byte) bool {
	return c == MsgSignalClear ||
		c == MsgSignalSet ||
		c == MsgDataByte ||
		c == MsgEndByte ||
		c == MsgPPData ||
		c == MsgPPRequest ||
		c == MsgEchoReq ||
		c == MsgEchoReply
}

//
func isTerminator(c byte) bool {
	return c == ',' || c == ';'
}

//
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

//
func hexNibble(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
