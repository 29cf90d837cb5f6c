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

package remote488

import (
	"errors"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned by GetMsg once the peer has closed the connection
// and all previously received messages have been delivered.
var ErrClosed = errors.New("connection closed")

const queueLength = 1024

// receiver lexer states
const (
	rxWaitCh = iota
	rxWaitColon
	rxWaitHex1
	rxWaitHex2
	rxWaitSep
	rxWaitWS // resync sink, left on terminator or whitespace
)

/*
	Framer owns one connected Remote488 transport. A background reader
	parses the inbound byte stream into messages and queues them for
	GetMsg. Echo requests are answered directly by the reader and never
	delivered upstream. All outbound writes go through a single mutex so
	that a multi-message burst cannot be interleaved with an echo reply.
*/
type Framer struct {
	//
	rw io.ReadWriteCloser
	//
	queue chan Msg
	//
	sendMu sync.Mutex
}

//
func NewFramer(rw io.ReadWriteCloser) *Framer {
	f := &Framer{
		rw:    rw,
		queue: make(chan Msg, queueLength),
	}
	go f.reader()
	return f
}

// GetMsg blocks until a message is available. It fails with ErrClosed after
// the connection has gone away.
func (f *Framer) GetMsg() (Msg, error) {
	msg, ok := <-f.queue
	if !ok {
		return Msg{}, ErrClosed
	}
	return msg, nil
}

//
func (f *Framer) SendMsg(m Msg) error {
	return f.sendAll(formatMsg(m))
}

// SendData sends a data vector as DATA messages. With eoiAtEnd, the last
// byte goes out as an END message instead. The whole burst is written
// atomically.
func (f *Framer) SendData(data []byte, eoiAtEnd bool) error {

	if len(data) == 0 {
		return nil
	}

	var b strings.Builder
	for ix, d := range data {
		m := Msg{MsgDataByte, d}
		if eoiAtEnd && ix == len(data)-1 {
			m.Type = MsgEndByte
		}
		b.WriteString(formatMsg(m))
	}

	return f.sendAll(b.String())
}

//
func (f *Framer) SendEndByte(data byte) error {
	return f.SendMsg(Msg{MsgEndByte, data})
}

//
func (f *Framer) SendPPState(state byte) error {
	return f.SendMsg(Msg{MsgPPData, state})
}

//
func (f *Framer) Close() error {
	return f.rw.Close()
}

//
func (f *Framer) sendAll(s string) error {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()
	if _, err := io.WriteString(f.rw, s); err != nil {
		return err
	}
	return nil
}

/*
	reader drains the transport and runs the six-state lexer over the byte
	stream. A parse error drops into the rxWaitWS sink until the next
	terminator or whitespace. On EOF or read error the queue is closed
	once, after which every GetMsg call reports ErrClosed as soon as the
	queued messages have been delivered.
*/
func (f *Framer) reader() {

	defer close(f.queue)

	state := rxWaitCh
	var msg Msg
	buf := make([]byte, 256)

	for {
		n, err := f.rw.Read(buf)
		if n == 0 && err != nil {
			if err != io.EOF {
				log.Debugf("receiver stopped: %v", err)
			}
			return
		}

		for _, c := range buf[:n] {

			switch state {

			case rxWaitCh:
				if isMsgType(c) {
					msg.Type = c
					state = rxWaitColon
				} else if !isSpace(c) && !isTerminator(c) {
					state = rxWaitWS
				}

			case rxWaitColon:
				if c == ':' {
					state = rxWaitHex1
				} else {
					state = rxWaitWS
				}

			case rxWaitHex1:
				if v, ok := hexNibble(c); ok {
					msg.Data = v
					state = rxWaitHex2
				} else {
					state = rxWaitWS
				}

			case rxWaitHex2:
				if v, ok := hexNibble(c); ok {
					msg.Data = msg.Data<<4 | v
					state = rxWaitSep
				} else {
					state = rxWaitWS
				}

			case rxWaitSep:
				if isTerminator(c) || isSpace(c) {
					state = rxWaitCh
					if msg.Type == MsgEchoReq {
						if err := f.SendMsg(Msg{MsgEchoReply, 0}); err != nil {
							log.Debugf("error sending echo reply: %v", err)
						}
					} else {
						f.queue <- msg
					}
				} else {
					state = rxWaitWS
				}

			case rxWaitWS:
				if isTerminator(c) || isSpace(c) {
					state = rxWaitCh
				}
			}
		}
	}
}
