package dlp

import (
	"bytes"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	f := Frame{Flags: FlagReply | FlagSequenceEcho, Seq: 0x22, Length: 2, Body: []byte{0x0A, 0x1A}}
	raw, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) != MTU {
		t.Fatalf("frame size=%d", len(raw))
	}
	// 头部：flags | seq | lenLE
	if raw[0] != 0xA0 || raw[1] != 0x22 || raw[2] != 0x02 || raw[3] != 0x00 {
		t.Fatalf("bad header % X", raw[:4])
	}
	// body 之后必须补零
	if !bytes.Equal(raw[4:6], []byte{0x0A, 0x1A}) || !bytes.Equal(raw[6:], make([]byte, 58)) {
		t.Fatalf("bad body % X", raw[4:8])
	}

	g, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Flags != f.Flags || g.Seq != f.Seq || g.Length != f.Length {
		t.Fatalf("header round trip: %+v", g)
	}
	if !bytes.Equal(g.Body[:2], f.Body) {
		t.Fatalf("body round trip: % X", g.Body[:4])
	}
}

func TestFrameEncodeBodyTooLong(t *testing.T) {
	f := Frame{Body: make([]byte, BodyCap+1)}
	if _, err := f.Encode(); err != ErrInvalidLength {
		t.Fatalf("want ErrInvalidLength, got %v", err)
	}
}

func TestDecodeFrameWrongSize(t *testing.T) {
	for _, n := range []int{0, 1, MTU - 1, MTU + 1, 2 * MTU} {
		if _, err := DecodeFrame(make([]byte, n)); err != ErrMalformedFrame {
			t.Fatalf("len=%d want ErrMalformedFrame, got %v", n, err)
		}
	}
}

func TestFrameFlagBits(t *testing.T) {
	f := &Frame{Flags: FlagReply | FlagError | FlagContinuation}
	if !f.IsReply() || !f.IsError() || !f.IsContinuation() {
		t.Fatalf("flag accessors: %08b", f.Flags)
	}
	f.Flags = 0
	if f.IsReply() || f.IsError() || f.IsContinuation() {
		t.Fatalf("zero flags: %08b", f.Flags)
	}
}
