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

package daemon

import (
	"fmt"
	"io"
	"net"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

/*
	openConduit establishes the Remote488 link: a single TCP connection
	from the machine emulator by default, or a serial-attached remotizer
	when a device is configured. The TCP listener accepts exactly one
	connection and is closed afterwards.
*/
func openConduit(c *Config) (io.ReadWriteCloser, error) {
	if c.Device != "" {
		return openPort(c.Device)
	}
	return acceptOne(c.Listen)
}

//
func acceptOne(listen string) (io.ReadWriteCloser, error) {

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("cannot listen on %s: %v", listen, err)
	}
	defer ln.Close()

	log.Infof("listening on %s", ln.Addr())

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept failed: %v", err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("cannot set TCP_NODELAY: %v", err)
		}
	}

	log.Infof("connected from %s", conn.RemoteAddr())
	return conn, nil
}

//
func openPort(p string) (io.ReadWriteCloser, error) {
	log.Infof("opening port %s", p)
	return serial.Open(serial.OpenOptions{
		PortName:        p,
		BaudRate:        115200,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}
