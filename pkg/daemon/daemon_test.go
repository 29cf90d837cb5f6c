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
	"io/ioutil"
	"net"
	"os"
	"testing"
	"time"

	"github.com/fulivi/mame-tools/pkg/amigo"
)

//
func send(t *testing.T, conn net.Conn, s string) {
	if _, err := io.WriteString(conn, s); err != nil {
		t.Fatalf("send failed: %v", err)
	}
}

//
func expect(t *testing.T, conn net.Conn, want string) {
	got := make([]byte, len(want))
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("expected %q: %v", want, err)
	}
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// startSession runs a session over an in-process pipe, with one ready
// unit backed by a formatted image file.
func startSession(t *testing.T) (net.Conn, chan error) {

	f, err := ioutil.TempFile("", "amigo")
	if err != nil {
		t.Fatalf("cannot create image: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})

	model, err := amigo.GetModel("9134b")
	if err != nil {
		t.Fatal(err)
	}

	client, server := net.Pipe()
	client.SetDeadline(time.Now().Add(10 * time.Second))

	d := NewDaemon(&Config{Model: "9134b"})
	done := make(chan error, 1)
	go func() {
		done <- d.runSession(server, model, []amigo.Image{f})
	}()

	return client, done
}

func TestSessionIdentify(t *testing.T) {

	client, done := startSession(t)

	// ATN, UNT, MSA; identify reported when ATN deasserts
	send(t, client, "R:01,D:5f,D:60,S:01\n")
	expect(t, client, "P:80\nD:01\nE:0a\n")

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

func TestSessionPowerOnDSJ(t *testing.T) {

	client, done := startSession(t)

	// heartbeats are answered transparently
	send(t, client, "J:00\n")
	expect(t, client, "K:00\n")

	// MTA + SA 0x10, read DSJ: power-on value 2
	send(t, client, "R:01 D:40 D:70 S:01\n")
	expect(t, client, "E:02\n")

	// reading DSJ again reports 0
	send(t, client, "R:01 D:40 D:70 S:01\n")
	expect(t, client, "E:00\n")

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

func TestSessionWriteReadSector(t *testing.T) {

	client, done := startSession(t)

	// read DSJ to get out of the power-on state, then request status
	// to clear the first-status bit of unit 0
	send(t, client, "R:01 D:40 D:70 S:01\n")
	expect(t, client, "E:02\n")
	send(t, client, "R:01 D:20 D:68 S:01 D:03 E:00\n")
	expect(t, client, "P:80\n")
	send(t, client, "R:01 D:40 D:68 S:01\n")
	expect(t, client, "D:00\nD:00\nD:0c\nD:08\n")

	// seek unit 0 to (0,0,0)
	send(t, client, "R:01 D:20 D:68 S:01 D:02 D:00 D:00 D:00 D:00 E:00\n")

	// buffered write, then the sector as receive-data, EOI on the last
	send(t, client, "R:01 D:20 D:69 S:01 D:08 E:00\n")
	send(t, client, "R:01 D:20 D:60 S:01\n")
	for ix := 0; ix < 255; ix++ {
		send(t, client, fmt.Sprintf("D:%02x\n", ix))
	}
	send(t, client, "E:ff\n")

	// seek back and read the sector
	send(t, client, "R:01 D:20 D:68 S:01 D:02 D:00 D:00 D:00 D:00 E:00\n")
	send(t, client, "R:01 D:20 D:6a S:01 D:05 E:00\n")
	send(t, client, "R:01 D:40 D:60 S:01\n")

	want := ""
	for ix := 0; ix < 255; ix++ {
		want += fmt.Sprintf("D:%02x\n", ix)
	}
	want += "D:ff\n"
	expect(t, client, want)

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

func TestSessionSequencingError(t *testing.T) {

	client, done := startSession(t)

	send(t, client, "R:01 D:40 D:70 S:01\n")
	expect(t, client, "E:02\n")

	// send-data without a preceding buffered read
	send(t, client, "R:01 D:40 D:60 S:01\n")
	expect(t, client, "E:01\nP:80\n")

	// DSJ now reports the pending error, and gives up the poll response
	send(t, client, "R:01 D:40 D:70 S:01\n")
	expect(t, client, "E:01\nP:00\n")

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

func TestOpenImages(t *testing.T) {

	model, err := amigo.GetModel("9895")
	if err != nil {
		t.Fatal(err)
	}

	f, err := ioutil.TempFile("", "amigo")
	if err != nil {
		t.Fatalf("cannot create image: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})

	// a missing trailing image leaves the unit not ready
	files, err := openImages(model, []string{f.Name()})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if len(files) != 2 || files[0] == nil || files[1] != nil {
		t.Errorf("expected one open file, got %v", files)
	}
	files[0].Close()

	// an image that cannot be opened is an error
	if _, err := openImages(model, []string{"/no/such/image"}); err == nil {
		t.Error("expected error for missing image file")
	}
}
