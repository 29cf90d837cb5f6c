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
	"io/ioutil"
)

//
func NewStatus() *Status {

	s := &Status{}
	s.Runner = *NewRunner(
		"status [-p|--port {port}]",
		"drive status command",
		`Use the status command for retrieving the state of a running emulator
session: DSJ, latched error code, current unit and per-unit state.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()

	return s
}

//
type Status struct {
	//
	Runner
}

//
func (s *Status) Run() error {

	s.ParseSettings()

	body, err := s.apiCall("GET", "/status", false, nil)
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := ioutil.ReadAll(body)
	if err != nil {
		return err
	}

	fmt.Printf("%s", data)
	return nil
}
