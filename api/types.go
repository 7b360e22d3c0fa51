// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations for addresses and wire envelopes.

package api

import (
	"fmt"
	"time"
)

// Localhost is the loopback address channels default to.
const Localhost = "127.0.0.1"

// Address is a (host, port) pair identifying a kernel channel endpoint.
// Port 0 means "OS-assigned, to be learned after kernel launch".
type Address struct {
	Host string
	Port int
}

// DefaultAddress returns the channel default: loopback with an unset port.
func DefaultAddress() Address {
	return Address{Host: Localhost, Port: 0}
}

// Normalize fills an empty host with the loopback address.
func (a Address) Normalize() Address {
	if a.Host == "" {
		a.Host = Localhost
	}
	return a
}

// IsLocal reports whether the address resolves to the local host.
func (a Address) IsLocal() bool {
	switch a.Host {
	case Localhost, "localhost", "::1", "":
		return true
	}
	return false
}

// String renders the address in host:port form.
func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Normalize().Host, a.Port)
}

// Header identifies a single wire message. MsgID is unique per message and is
// how replies are correlated with requests.
type Header struct {
	MsgID    string    `json:"msg_id"`
	MsgType  string    `json:"msg_type"`
	Session  string    `json:"session"`
	Username string    `json:"username"`
	Date     time.Time `json:"date"`
}

// Envelope is the structured message exchanged with the kernel: a header plus
// a content body, with the originating request header echoed back on replies.
type Envelope struct {
	Header  Header         `json:"header"`
	Parent  *Header        `json:"parent_header,omitempty"`
	Content map[string]any `json:"content"`
}

// MsgID is a shorthand for the envelope's unique message id.
func (e *Envelope) MsgID() string {
	return e.Header.MsgID
}

// MsgType is a shorthand for the envelope's message type.
func (e *Envelope) MsgType() string {
	return e.Header.MsgType
}
