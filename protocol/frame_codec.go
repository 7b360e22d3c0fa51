// File: protocol/frame_codec.go
// Package protocol implements the length-prefixed frame codec with frame
// size enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFramePayload defines the maximum allowed payload size for a single
// frame. This limit protects against excessively large frames that could
// exhaust memory.
const MaxFramePayload = 16 << 20 // 16 MiB

// headerLen is the size of the big-endian length prefix.
const headerLen = 4

// ErrFrameTooLarge is returned when a frame exceeds MaxFramePayload.
var ErrFrameTooLarge = errors.New("frame payload exceeds maximum allowed size")

// EncodeFrame serializes a payload into a single frame.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerLen:], payload)
	return buf, nil
}

// Decoder accumulates bytes read from a non-blocking socket and yields
// complete frame payloads as they become available.
type Decoder struct {
	buf []byte
}

// Write appends raw bytes to the decode buffer.
func (d *Decoder) Write(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete frame payload, or nil when the buffer does
// not yet hold a full frame. The returned slice is a copy; the internal
// buffer is advanced past the consumed frame.
func (d *Decoder) Next() ([]byte, error) {
	if len(d.buf) < headerLen {
		return nil, nil
	}
	length := int(binary.BigEndian.Uint32(d.buf))
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	if len(d.buf) < headerLen+length {
		return nil, nil
	}
	payload := make([]byte, length)
	copy(payload, d.buf[headerLen:headerLen+length])
	d.buf = d.buf[headerLen+length:]
	return payload, nil
}

// Buffered reports how many undecoded bytes the decoder holds.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// WriteFrame encodes payload and writes the full frame to w. Blocking helper
// for peers running over net.Conn.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads exactly one frame payload from r. Blocking helper for peers
// running over net.Conn.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint32(hdr[:]))
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}
