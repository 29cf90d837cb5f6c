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

package run

import (
	"fmt"

	"github.com/fulivi/mame-tools/pkg/amigo"
)

//
func NewModels() *Models {

	m := &Models{}
	m.Runner = *NewRunner(
		"models",
		"drive model catalog command",
		`Use the models command for listing the drive models the emulator knows,
with their geometry and unit count.`,
		"", runnerHelpEpilogue, m.Run)

	return m
}

//
type Models struct {
	//
	Runner
}

//
func (m *Models) Run() error {

	m.ParseSettings()

	fmt.Println("\nMODEL  GEOMETRY (C,H,S)  UNITS  SECTOR")
	for _, name := range amigo.Models() {
		md, err := amigo.GetModel(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-6s %4d,%d,%-10d %d      %d\n", md.Name,
			md.Geometry.Cyl, md.Geometry.Head, md.Geometry.Sec,
			md.Units, amigo.SectorSize)
	}

	return nil
}
