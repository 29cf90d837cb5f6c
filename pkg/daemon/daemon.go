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
	"errors"
	"io"
	"os"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/fulivi/mame-tools/pkg/amigo"
	"github.com/fulivi/mame-tools/pkg/hpib"
	"github.com/fulivi/mame-tools/pkg/remote488"
)

//
type Config struct {
	// TCP listen address, used when Device is empty
	Listen string
	// serial device of the remotizer, overrides Listen when set
	Device string
	//
	Model  string
	Images []string
	//
	HPIBAddress byte
}

// the daemon that runs one emulator session against the machine emulator
type Daemon struct {
	//
	config *Config
	//
	drive  atomic.Value
	framer atomic.Value
}

//
func NewDaemon(c *Config) *Daemon {
	if c.Listen == "" {
		c.Listen = ":1234"
	}
	return &Daemon{config: c}
}

/*
	Serve runs the emulator session: open the images, wait for the
	Remote488 link, then decode and execute bus commands until the peer
	goes away. The peer is expected to reconnect by restarting the
	session; there are no retries here.
*/
func (d *Daemon) Serve() error {

	model, err := amigo.GetModel(d.config.Model)
	if err != nil {
		return err
	}

	files, err := openImages(model, d.config.Images)
	if err != nil {
		return err
	}
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()

	rw, err := openConduit(d.config)
	if err != nil {
		return err
	}

	images := make([]amigo.Image, len(files))
	for ix, f := range files {
		if f != nil {
			images[ix] = f
		}
	}

	return d.runSession(rw, model, images)
}

// runSession wires the framer, the bus decoder and the drive over the
// given transport and executes commands until the peer goes away.
func (d *Daemon) runSession(rw io.ReadWriteCloser, model *amigo.Model,
	images []amigo.Image) error {

	framer := remote488.NewFramer(rw)
	defer framer.Close()
	d.framer.Store(framer)

	drive := amigo.NewDrive(framer, model, images)
	d.drive.Store(drive)

	decoder := hpib.NewDecoder(framer, d.config.HPIBAddress)

	for {
		cmd, err := decoder.GetCmd()
		if err != nil {
			if errors.Is(err, remote488.ErrClosed) {
				log.Info("disconnected")
				return nil
			}
			return err
		}

		op := amigo.Decode(cmd)
		log.WithFields(log.Fields{"cmd": cmd.String()}).Debugf("%v", op)

		if err := drive.Exec(op); err != nil {
			// a failed write to the peer or an image I/O error ends
			// the session
			log.Errorf("connection lost: %v", err)
			return nil
		}
	}
}

// Stop tears the session down by closing the transport, which unblocks
// the command loop.
func (d *Daemon) Stop() error {
	if f, ok := d.framer.Load().(*remote488.Framer); ok {
		return f.Close()
	}
	return nil
}

// GetStatus returns a snapshot of the drive state, or false while no
// session is running yet.
func (d *Daemon) GetStatus() (amigo.Status, bool) {
	if drv, ok := d.drive.Load().(*amigo.Drive); ok {
		return drv.Snapshot(), true
	}
	return amigo.Status{}, false
}

/*
	openImages opens one backing file per unit. Missing trailing images
	leave the corresponding units not ready; an image that cannot be
	opened is an error. The files are opened read/write and never
	truncated.
*/
func openImages(model *amigo.Model, paths []string) ([]*os.File, error) {

	files := make([]*os.File, model.Units)

	for ix := uint(0); ix < model.Units; ix++ {
		if ix >= uint(len(paths)) {
			log.Infof("no image for unit #%d", ix)
			continue
		}
		log.Infof("opening image file %s for unit #%d", paths[ix], ix)
		f, err := os.OpenFile(paths[ix], os.O_RDWR, 0)
		if err != nil {
			for _, g := range files {
				if g != nil {
					g.Close()
				}
			}
			return nil, err
		}
		files[ix] = f
	}

	return files, nil
}
