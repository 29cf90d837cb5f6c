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
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/fulivi/mame-tools/pkg/control"
	"github.com/fulivi/mame-tools/pkg/daemon"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve -m|--model {model} [-i|--image {image file}]...
      [-l|--listen {address}] [-d|--device {device}] [-a|--api {address}]`,
		"emulator session command",
		`Use the serve command for running an emulator session. The session waits for
one connection from the machine emulator carrying the Remote488 serialization
of the IEEE-488 bus, and answers Amigo commands on it until the peer closes
the connection. Image files are given per unit, in unit order; units without
an image file report as not ready.`,
		"", `- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

`+runnerHelpEpilogue, s.Run)

	s.AddSetting(&s.Model, "model", "m", "AMIGO_MODEL", nil,
		"drive model to emulate, see the models command", true)
	s.AddSetting(&s.Images, "image", "i", "", nil,
		"backing image file for the next unit", false)
	s.AddSetting(&s.Listen, "listen", "l", "AMIGO_LISTEN", ":1234",
		"TCP listen address for the Remote488 connection", false)
	s.AddSetting(&s.Device, "device", "d", "AMIGO_DEVICE", nil,
		`serial port device carrying the Remote488 stream;
overrides --listen`, false)
	s.AddSetting(&s.API, "api", "a", "AMIGO_API", ":8888",
		"listen address of the API server; empty to disable", false)
	s.AddSetting(&s.HPIBAddress, "hpib-address", "b", "", 0,
		"HPIB address of the drive, 0 through 7", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Model       string
	Images      []string
	Listen      string
	Device      string
	API         string
	HPIBAddress int
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	if s.HPIBAddress < 0 || s.HPIBAddress > 7 {
		return fmt.Errorf("invalid HPIB address: %d", s.HPIBAddress)
	}

	d := daemon.NewDaemon(&daemon.Config{
		Listen:      s.Listen,
		Device:      s.Device,
		Model:       s.Model,
		Images:      s.Images,
		HPIBAddress: byte(s.HPIBAddress),
	})

	wg := &sync.WaitGroup{}
	wg.Add(1)

	var serveErr error
	go func() {
		defer wg.Done()
		if serveErr = d.Serve(); serveErr != nil {
			log.Errorf("session closed with error: %v", serveErr)
		} else {
			log.Info("session stopped")
		}
	}()

	var api control.APIServer
	if s.API != "" {
		api = control.NewAPIServer(s.API, d)
		go func() {
			if err := api.Serve(); err != nil {
				log.Errorf("API server closed with error: %v", err)
			} else {
				log.Info("API server stopped")
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan bool)

	go func() {
		wg.Wait()
		done <- true
	}()

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			log.Info("shutting down, hit Ctrl-C again to force exit...")
			go func() {
				if api != nil {
					api.Stop()
				}
				d.Stop()
			}()
			signal.Reset(syscall.SIGINT, syscall.SIGTERM)

		case <-done: // session over
			if api != nil {
				api.Stop()
			}
			return serveErr
		}
	}
}
