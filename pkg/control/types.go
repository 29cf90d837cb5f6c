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

package control

import (
	"fmt"

	"github.com/fulivi/mame-tools/pkg/amigo"
)

//
type Unit struct {
	Ready        bool `json:"ready"`
	WriteProtect bool `json:"writeProtect"`
	LBA          uint `json:"lba"`
	Attention    bool `json:"attention"`
	SeekError    bool `json:"seekError"`
	FirstStatus  bool `json:"firstStatus"`
}

//
type Status struct {
	Model       string `json:"model"`
	DSJ         byte   `json:"dsj"`
	Stat1       byte   `json:"stat1"`
	CurrentUnit uint   `json:"currentUnit"`
	Units       []Unit `json:"units"`
}

//
func newStatus(s amigo.Status) *Status {
	ret := &Status{
		Model:       s.Model,
		DSJ:         s.DSJ,
		Stat1:       s.Stat1,
		CurrentUnit: s.CurrentUnit,
	}
	for _, u := range s.Units {
		ret.Units = append(ret.Units, Unit{
			Ready:        u.Ready,
			WriteProtect: u.WriteProtect,
			LBA:          u.LBA,
			Attention:    u.Attention,
			SeekError:    u.SeekError,
			FirstStatus:  u.FirstStatus,
		})
	}
	return ret
}

//
func (s *Status) String() string {

	out := fmt.Sprintf("\nMODEL %s | DSJ %d | STAT1 %02x | CURRENT UNIT %d\n",
		s.Model, s.DSJ, s.Stat1, s.CurrentUnit)
	out += "\nUNIT READY LBA    A C F W"

	for ix, u := range s.Units {
		out += fmt.Sprintf("\n  %d  %-5v %-6d %s %s %s %s", ix,
			u.Ready, u.LBA, mark(u.Attention), mark(u.SeekError),
			mark(u.FirstStatus), mark(u.WriteProtect))
	}

	return out
}

//
func mark(b bool) string {
	if b {
		return "*"
	}
	return "-"
}
