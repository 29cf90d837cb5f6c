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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulivi/mame-tools/pkg/daemon"
)

func TestModelsEndpoint(t *testing.T) {

	a := &api{daemon: daemon.NewDaemon(&daemon.Config{Model: "9134b"})}

	req := httptest.NewRequest("GET", "/models", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	a.models(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var names []string
	if err := json.NewDecoder(rec.Body).Decode(&names); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}
	if len(names) < 2 {
		t.Errorf("expected at least 2 models, got %v", names)
	}
	for _, want := range []string{"9134b", "9895"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("model %s missing from %v", want, names)
		}
	}
}

func TestStatusWithoutSession(t *testing.T) {

	a := &api{daemon: daemon.NewDaemon(&daemon.Config{Model: "9134b"})}

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()

	a.status(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without session, got %d", rec.Code)
	}
}

func TestStatusText(t *testing.T) {

	st := Status{
		Model: "9134b",
		DSJ:   2,
		Units: []Unit{{Ready: true, FirstStatus: true}},
	}

	out := st.String()
	if !strings.Contains(out, "9134b") || !strings.Contains(out, "DSJ 2") {
		t.Errorf("unexpected status text: %q", out)
	}
}
