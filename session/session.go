// File: session/session.go
// Package session builds wire envelopes for one frontend session.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Session owns the frontend's identity: its id is used as the transport
// identity of every channel socket, and every envelope it builds carries a
// freshly generated unique message id for reply correlation.

package session

import (
	"os/user"
	"time"

	"github.com/google/uuid"

	"github.com/momentics/hioload-kernel/api"
)

// Session is the envelope-builder collaborator shared by all channels of one
// kernel manager.
type Session struct {
	id       string
	username string
}

// New creates a session with a fresh unique id and the current OS username.
func New() *Session {
	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	return &Session{
		id:       uuid.NewString(),
		username: username,
	}
}

// ID returns the session id used as each socket's transport identity.
func (s *Session) ID() string {
	return s.id
}

// Username returns the username stamped into message headers.
func (s *Session) Username() string {
	return s.username
}

// Msg builds a fully formed envelope of the given type. The header carries a
// freshly generated unique message id; callers correlate replies by it.
func (s *Session) Msg(msgType string, content map[string]any) *api.Envelope {
	if content == nil {
		content = map[string]any{}
	}
	return &api.Envelope{
		Header: api.Header{
			MsgID:    uuid.NewString(),
			MsgType:  msgType,
			Session:  s.id,
			Username: s.username,
			Date:     time.Now().UTC(),
		},
		Content: content,
	}
}
