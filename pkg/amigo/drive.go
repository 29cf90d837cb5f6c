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
	"sync"
)

// BusPort is the outbound half of the bus link the drive answers on.
type BusPort interface {
	SendData(data []byte, eoiAtEnd bool) error
	SendEndByte(data byte) error
	SendPPState(state byte) error
}

// error codes reported through stat1
const (
	errorBadCmd    = 0x01 // unknown command
	errorIO        = 0x0a // I/O error
	errorStat2     = 0x13 // some error in stat2
	errorNoUnit    = 0x17 // unit # out of range
	errorAttention = 0x1f // unit attention
)

// command sequencing states
const (
	seqIdle            = iota // not waiting for a particular cmd
	seqWaitSendStatus         // waiting for send addr/status cmd
	seqWaitSendData           // waiting for send data cmd
	seqWaitReceiveData        // waiting for receive data cmd
	seqWaitClear              // waiting for clear cmd
)

/*
	Drive is the state machine executing decoded Amigo operations against
	the units of one emulated drive. It owns the DSJ/stat1 error channel,
	the implicit two-phase command sequencing and the parallel poll
	policy. All mutation happens through Exec; Snapshot takes a consistent
	copy for introspection.
*/
type Drive struct {
	//
	io    BusPort
	model *Model
	units []*unit
	//
	dsj         byte
	stat1       byte
	currentUnit uint
	failedUnit  uint
	//
	ppEnabled bool
	ppState   bool
	//
	status [4]byte
	buffer []byte
	//
	seqState int
	//
	mu sync.Mutex
}

// NewDrive creates a drive for the given model. images must have one
// entry per unit; a nil entry leaves that unit not ready.
func NewDrive(port BusPort, m *Model, images []Image) *Drive {

	d := &Drive{
		io:        port,
		model:     m,
		dsj:       2,
		ppEnabled: true,
	}

	for ix := uint(0); ix < m.Units; ix++ {
		var img Image
		if ix < uint(len(images)) {
			img = images[ix]
		}
		d.units = append(d.units, newUnit(img, m))
	}

	return d
}

/*
	Exec runs one operation. Operations flagged with ppEnable force the
	parallel poll response back on and assert it once the operation has
	completed. The returned error is a transport failure or an I/O error
	of a backing image; protocol level errors are folded into DSJ/stat1
	instead.
*/
func (d *Drive) Exec(op Op) error {

	d.mu.Lock()
	defer d.mu.Unlock()

	enPP := op.ppEnable()
	if enPP {
		d.ppEnabled = true
	}

	if err := d.exec(op); err != nil {
		return err
	}

	if enPP {
		return d.setPP(true)
	}
	return nil
}

//
func (d *Drive) exec(op Op) error {

	switch o := op.(type) {

	case IdentifyOp:
		return d.io.SendData(d.model.ID[:], true)

	case ParallelPollOp:
		return d.setPP(o.Enable)

	case DeviceClearOp:
		d.amigoClear()

	case UnknownTalkOp:
		// a real drive's reaction is unknown, leave the bus alone

	case SendDataOp:
		ok, err := d.requireSeqState(seqWaitSendData, true)
		if err != nil {
			return err
		}
		if ok {
			if err := d.io.SendData(d.buffer, false); err != nil {
				return err
			}
			d.seqState = seqIdle
		}

	case SendStatusOp:
		ok, err := d.requireSeqState(seqWaitSendStatus, true)
		if err != nil {
			return err
		}
		if ok {
			if err := d.io.SendData(d.status[:], false); err != nil {
				return err
			}
			d.seqState = seqIdle
		}

	case DSJOp:
		ok, err := d.requireSeqState(seqIdle, true)
		if err != nil {
			return err
		}
		if ok {
			if err := d.io.SendEndByte(d.dsj); err != nil {
				return err
			}
			if d.dsj == 2 {
				d.dsj = 0
			}
		}
		// reading DSJ must not re-assert PP on completion
		d.ppEnabled = false

	case UnknownListenOp:
		d.setError(errorIO)
		d.seqState = seqIdle

	case ReceiveDataOp:
		ok, err := d.requireSeqState(seqWaitReceiveData, false)
		if err != nil {
			return err
		}
		if ok {
			d.buffer = o.Data
			if err := d.getCurrentUnit().write(d.buffer); err != nil {
				return err
			}
			d.clearErrors()
			d.seqState = seqIdle
		}

	case SeekOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			if u := d.selectUnit(o.Unit); u != nil {
				d.setError(errorAttention)
				u.aBit = true
				if lba, err := o.Addr.ToLBA(d.model.Geometry); err == nil {
					u.lba = lba
					d.clearDSJ()
				} else {
					u.cBit = true
				}
			}
		}

	case ReqStatusOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			var u *unit
			if o.Unit < d.model.Units {
				d.currentUnit = o.Unit
				u = d.getCurrentUnit()
				d.status[0] = d.stat1
				d.status[1] = byte(d.currentUnit)
				u.encodeStatus(d.status[2:])
			} else {
				// invalid unit number
				d.status[0] = errorNoUnit
				d.status[1] = byte(o.Unit)
				d.status[2] = 0
				d.status[3] = 0
				u = d.getCurrentUnit()
			}
			u.aBit = false
			u.fBit = false
			u.cBit = false
			d.clearErrors()
			d.seqState = seqWaitSendStatus
		}

	case VerifyOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			if u := d.selectUnit(o.Unit); u != nil {
				maxLBA := d.model.Geometry.MaxLBA()
				if o.Count == 0 {
					// verify to end of disk
					u.lba = maxLBA
				} else if u.lba+o.Count < maxLBA {
					u.lba += o.Count
				} else {
					u.lba = maxLBA
				}
				d.clearErrors()
			}
		}

	case ReqLogAddrOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			chs, err := FromLBA(d.getCurrentUnit().lba, d.model.Geometry)
			if err != nil {
				// position past the end, cannot be encoded
				d.setError(errorIO)
			} else {
				chs.ToBytes(d.status[:])
				d.clearErrors()
				d.seqState = seqWaitSendStatus
			}
		}

	case EndOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			d.clearErrors()
			d.ppEnabled = false
		}

	case BufferedWriteOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() && d.selectUnit(o.Unit) != nil &&
			!d.dsj1Holdoff() && d.isLBAOk() {
			d.seqState = seqWaitReceiveData
		}

	case BufferedReadOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			if u := d.selectUnit(o.Unit); u != nil &&
				!d.dsj1Holdoff() && d.isLBAOk() {
				data, err := u.read()
				if err != nil {
					return err
				}
				d.buffer = data
				d.clearErrors()
				d.seqState = seqWaitSendData
			}
		}

	case FormatOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok && d.isDsjOk() {
			if u := d.selectUnit(o.Unit); u != nil {
				if !d.model.IgnoreFormatFiller || o.Override&0x80 != 0 {
					filler := o.Filler
					if d.model.IgnoreFormatFiller {
						filler = 0xff
					}
					if err := u.format(filler); err != nil {
						return err
					}
				}
				u.lba = 0
				d.clearErrors()
			}
		}

	case AmigoClearOp:
		ok, err := d.requireSeqState(seqIdle, false)
		if err != nil {
			return err
		}
		if ok {
			d.seqState = seqWaitClear
		}
	}

	return nil
}

// setPP drives the parallel poll line with hysteresis: a PP_DATA message
// goes out only when the effective state actually changes.
func (d *Drive) setPP(state bool) error {
	newState := d.ppEnabled && state
	if newState != d.ppState {
		d.ppState = newState
		if newState {
			return d.io.SendPPState(0x80)
		}
		return d.io.SendPPState(0x00)
	}
	return nil
}

/*
	requireSeqState guards the two-phase command sequencing. On a
	violation the sequencing state resets, an I/O error is latched if no
	error is pending yet, and on the talker side a single END byte of
	0x01 is sent so the host does not hang waiting for data.
*/
func (d *Drive) requireSeqState(req int, talker bool) (bool, error) {

	if d.seqState == req {
		return true, nil
	}

	d.seqState = seqIdle
	if d.dsj == 0 {
		d.setError(errorIO)
	}
	if talker {
		if err := d.io.SendEndByte(1); err != nil {
			return false, err
		}
	}
	return false, nil
}

//
func (d *Drive) isDsjOk() bool {
	return d.dsj != 2
}

// selectUnit makes the given unit current. It returns nil after latching
// the corresponding error when the unit number is out of range, or the
// unit is not ready or still has its first-status bit set.
func (d *Drive) selectUnit(unitNo uint) *unit {

	if unitNo >= d.model.Units {
		d.setError(errorNoUnit)
		return nil
	}

	d.currentUnit = unitNo
	u := d.units[d.currentUnit]
	if u.fBit || !u.isReady() {
		d.setError(errorStat2)
		return nil
	}
	return u
}

//
func (d *Drive) getCurrentUnit() *unit {
	return d.units[d.currentUnit]
}

// dsj1Holdoff gates I/O commands while a previous error other than
// bad-command or I/O is still unreported.
func (d *Drive) dsj1Holdoff() bool {
	return d.dsj == 1 && d.stat1 != errorBadCmd && d.stat1 != errorIO
}

//
func (d *Drive) isLBAOk() bool {
	u := d.getCurrentUnit()
	if u.isLBAOk() {
		return true
	}
	d.setError(errorAttention)
	u.aBit = true
	u.cBit = true
	return false
}

//
func (d *Drive) setError(code byte) {
	d.stat1 = code
	d.failedUnit = d.currentUnit
	if d.dsj != 2 {
		d.dsj = 1
	}
}

//
func (d *Drive) clearErrors() {
	d.stat1 = 0
	d.dsj = 0
}

//
func (d *Drive) clearDSJ() {
	if d.dsj != 2 {
		d.dsj = 0
	}
}

//
func (d *Drive) amigoClear() {
	for _, u := range d.units {
		u.aBit = false
		u.cBit = false
		u.fBit = false
		u.lba = 0
	}
	d.currentUnit = 0
	d.seqState = seqIdle
	d.clearErrors()
}

// UnitStatus is a point-in-time copy of one unit's state.
type UnitStatus struct {
	Ready        bool
	WriteProtect bool
	LBA          uint
	Attention    bool
	SeekError    bool
	FirstStatus  bool
}

// Status is a point-in-time copy of the drive state.
type Status struct {
	Model       string
	DSJ         byte
	Stat1       byte
	CurrentUnit uint
	Units       []UnitStatus
}

// Snapshot takes a consistent copy of the drive state for introspection.
func (d *Drive) Snapshot() Status {

	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{
		Model:       d.model.Name,
		DSJ:         d.dsj,
		Stat1:       d.stat1,
		CurrentUnit: d.currentUnit,
	}

	for _, u := range d.units {
		st.Units = append(st.Units, UnitStatus{
			Ready:        u.isReady(),
			WriteProtect: u.wBit,
			LBA:          u.lba,
			Attention:    u.aBit,
			SeekError:    u.cBit,
			FirstStatus:  u.fBit,
		})
	}

	return st
}
