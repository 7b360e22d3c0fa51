// File: protocol/greeting.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel greeting: the first frame on every connection, declaring the
// socket kind and the session identity of the connecting frontend.

package protocol

import (
	"encoding/json"
	"fmt"
)

// SocketKind names the role a channel connection plays at the kernel side.
type SocketKind string

const (
	// KindSub subscribes to kernel-published broadcast events.
	KindSub SocketKind = "sub"
	// KindDealer carries frontend requests and kernel replies.
	KindDealer SocketKind = "dealer"
	// KindStdin carries kernel-initiated raw-input requests.
	KindStdin SocketKind = "stdin"
)

// Greeting is the first frame sent on a freshly connected channel socket.
type Greeting struct {
	Kind     SocketKind `json:"kind"`
	Identity string     `json:"identity"`
	// Subscribe is the topic filter for sub connections; empty subscribes
	// to all topics.
	Subscribe string `json:"subscribe,omitempty"`
}

// EncodeGreeting serializes a greeting into a frame payload.
func EncodeGreeting(g Greeting) ([]byte, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode greeting: %w", err)
	}
	return payload, nil
}

// DecodeGreeting parses a greeting frame payload.
func DecodeGreeting(payload []byte) (Greeting, error) {
	var g Greeting
	if err := json.Unmarshal(payload, &g); err != nil {
		return Greeting{}, fmt.Errorf("decode greeting: %w", err)
	}
	switch g.Kind {
	case KindSub, KindDealer, KindStdin:
	default:
		return Greeting{}, fmt.Errorf("decode greeting: unknown socket kind %q", g.Kind)
	}
	return g, nil
}
