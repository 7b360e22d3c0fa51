package protocol_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-kernel/protocol"
)

func TestEncodeDecodeFrame(t *testing.T) {
	payload := []byte(`{"header":{}}`)
	frame, err := protocol.EncodeFrame(payload)
	if err != nil {
		t.Fatal(err)
	}

	var dec protocol.Decoder
	dec.Write(frame)
	got, err := dec.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch")
	}
	if next, _ := dec.Next(); next != nil {
		t.Error("expected empty decoder after one frame")
	}
}

func TestDecoderPartialFeed(t *testing.T) {
	payload := []byte("hello kernel")
	frame, err := protocol.EncodeFrame(payload)
	if err != nil {
		t.Fatal(err)
	}

	var dec protocol.Decoder
	for i := range frame {
		dec.Write(frame[i : i+1])
		got, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		if i < len(frame)-1 {
			if got != nil {
				t.Fatalf("frame yielded early at byte %d", i)
			}
		} else if !bytes.Equal(got, payload) {
			t.Fatal("payload mismatch after byte-wise feed")
		}
	}
}

func TestDecoderMultipleFramesOneWrite(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, p := range payloads {
		frame, err := protocol.EncodeFrame(p)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(frame)
	}

	var dec protocol.Decoder
	dec.Write(buf.Bytes())
	for i, want := range payloads {
		got, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %q want %q", i, got, want)
		}
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	payload := make([]byte, protocol.MaxFramePayload+1)
	if _, err := protocol.EncodeFrame(payload); err != protocol.ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestReadWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("round trip")
	if err := protocol.WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := protocol.ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch")
	}
}
