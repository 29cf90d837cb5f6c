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
	"fmt"
)

// Cmd is a raw bus command as reassembled by the decoder, before any
// interpretation of secondary addresses and parameters.
type Cmd interface {
	String() string
}

// IdentifyCmd is the untalk + secondary address sequence probing the
// device identity.
type IdentifyCmd struct{}

//
func (c IdentifyCmd) String() string {
	return "IDENTIFY"
}

// ParallelPollCmd tracks the edges of this device's parallel poll
// response.
type ParallelPollCmd struct {
	Enable bool
}

//
func (c ParallelPollCmd) String() string {
	if c.Enable {
		return "PP 1"
	}
	return "PP 0"
}

// DeviceClearCmd is the universal (DCL) or addressed (SDC) clear.
type DeviceClearCmd struct{}

//
func (c DeviceClearCmd) String() string {
	return "CLEAR"
}

// TalkCmd addresses this device as talker with a secondary address.
type TalkCmd struct {
	SA byte
}

//
func (c TalkCmd) String() string {
	return fmt.Sprintf("TALK %02x:", c.SA)
}

// ListenCmd addresses this device as listener with a secondary address,
// followed by the parameter bytes received up to EOI.
type ListenCmd struct {
	SA     byte
	Params []byte
}

//
func (c ListenCmd) String() string {
	out := fmt.Sprintf("LISTEN %02x:", c.SA)
	for _, b := range c.Params {
		out += fmt.Sprintf("%02x ", b)
	}
	return out
}
