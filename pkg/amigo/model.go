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
	"sort"
)

// Model is the fixed data of one drive model.
type Model struct {
	Name string
	// identify sequence (2 bytes)
	ID [2]byte
	// geometry of each unit
	Geometry CHS
	// count of units
	Units uint
	// ignore the filler byte in the format command
	IgnoreFormatFiller bool
}

//
var models = map[string]*Model{
	"9134b": {
		Name:               "9134b",
		ID:                 [2]byte{0x01, 0x0a},
		Geometry:           CHS{Cyl: 306, Head: 4, Sec: 31},
		Units:              1,
		IgnoreFormatFiller: true,
	},
	"9895": {
		Name:               "9895",
		ID:                 [2]byte{0x00, 0x81},
		Geometry:           CHS{Cyl: 77, Head: 2, Sec: 30},
		Units:              2,
		IgnoreFormatFiller: false,
	},
}

// GetModel looks up a drive model by name.
func GetModel(name string) (*Model, error) {
	if m, ok := models[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf(
		"unknown model: %s; available models: %v", name, Models())
}

// Models lists the names of all known drive models.
func Models() []string {
	ret := make([]string, 0, len(models))
	for name := range models {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
