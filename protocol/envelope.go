// File: protocol/envelope.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/momentics/hioload-kernel/api"
)

// EncodeEnvelope serializes an envelope into a frame payload.
func EncodeEnvelope(env *api.Envelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return payload, nil
}

// DecodeEnvelope parses a frame payload into an envelope.
func DecodeEnvelope(payload []byte) (*api.Envelope, error) {
	env := &api.Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
