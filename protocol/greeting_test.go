package protocol_test

import (
	"testing"

	"github.com/momentics/hioload-kernel/protocol"
)

func TestGreetingRoundTrip(t *testing.T) {
	in := protocol.Greeting{
		Kind:     protocol.KindDealer,
		Identity: "session-1",
	}
	payload, err := protocol.EncodeGreeting(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := protocol.DecodeGreeting(payload)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %+v want %+v", out, in)
	}
}

func TestGreetingUnknownKind(t *testing.T) {
	if _, err := protocol.DecodeGreeting([]byte(`{"kind":"router","identity":"x"}`)); err == nil {
		t.Fatal("expected error for unknown socket kind")
	}
}
