// Package protocol implements the kernel wire format.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Each message travels as one discrete frame: a 4-byte big-endian payload
// length followed by the payload, which is the JSON-encoded envelope built by
// the session collaborator. Immediately after connecting, a channel sends a
// single greeting frame declaring its socket kind, transport identity and
// subscription, the stand-in for socket-option based identity in brokered
// transports.
package protocol
