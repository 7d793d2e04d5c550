package dlp

import (
	"bytes"
	"testing"
)

func TestFragmentRoundTrip(t *testing.T) {
	cmd := []byte{0x1B, 0x1A}
	for n := 0; n <= 10000; n++ {
		params := make([]byte, n)
		for i := range params {
			params[i] = byte(i)
		}
		frames, err := Fragment(FlagReply, 0x42, cmd, params)
		if err != nil {
			t.Fatalf("n=%d fragment: %v", n, err)
		}
		got, err := Defragment(frames)
		if err != nil {
			t.Fatalf("n=%d defragment: %v", n, err)
		}
		want := append(append([]byte{}, cmd...), params...)
		if !bytes.Equal(got, want) {
			t.Fatalf("n=%d round trip mismatch", n)
		}
	}
}

func TestFragmentFrameInvariants(t *testing.T) {
	frames, err := Fragment(FlagReply, 0x07, []byte{0x34, 0x1A}, make([]byte, 200))
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	for i := range frames {
		raw, err := frames[i].Encode()
		if err != nil || len(raw) != MTU {
			t.Fatalf("frame %d size=%d err=%v", i, len(raw), err)
		}
		if frames[i].Seq != 0x07 {
			t.Fatalf("frame %d seq=%d", i, frames[i].Seq)
		}
		if frames[i].Length != 202 {
			t.Fatalf("frame %d length=%d", i, frames[i].Length)
		}
		// 首帧带命令字节，续传帧置续传位
		if i == 0 {
			if !frames[i].IsContinuation() {
				t.Fatalf("first frame should announce continuation")
			}
			if frames[i].Body[0] != 0x34 || frames[i].Body[1] != 0x1A {
				t.Fatalf("first frame missing command id")
			}
		} else if !frames[i].IsContinuation() {
			t.Fatalf("frame %d missing continuation bit", i)
		}
	}
}

func TestFragmentBoundary(t *testing.T) {
	cmd := []byte{0x05, 0x00}
	// 正好一帧：2 命令 + 58 参数 = 60 字节
	frames, err := Fragment(0, 1, cmd, make([]byte, BodyCap-2))
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	if len(frames) != 1 || frames[0].IsContinuation() {
		t.Fatalf("60B payload: frames=%d cont=%v", len(frames), frames[0].IsContinuation())
	}
	// 多一字节需要两帧
	frames, err = Fragment(0, 1, cmd, make([]byte, BodyCap-1))
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	if len(frames) != 2 || !frames[0].IsContinuation() || !frames[1].IsContinuation() {
		t.Fatalf("61B payload: frames=%d", len(frames))
	}
	if len(frames[1].Body) != 1 {
		t.Fatalf("tail body=%d", len(frames[1].Body))
	}
}

func TestFragmentTooLarge(t *testing.T) {
	if _, err := Fragment(0, 0, []byte{1, 2}, make([]byte, MaxPayload)); err != ErrInvalidLength {
		t.Fatalf("want ErrInvalidLength, got %v", err)
	}
}

func TestDefragmentSequenceMismatch(t *testing.T) {
	frames, err := Fragment(0, 9, []byte{1, 2}, make([]byte, 100))
	if err != nil || len(frames) < 2 {
		t.Fatalf("fragment: frames=%d err=%v", len(frames), err)
	}
	frames[1].Seq = 10
	if _, err := Defragment(frames); err != ErrSequenceMismatch {
		t.Fatalf("want ErrSequenceMismatch, got %v", err)
	}
}

func TestDefragmentIncomplete(t *testing.T) {
	frames, err := Fragment(0, 3, []byte{1, 2}, make([]byte, 100))
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	// 丢掉尾帧模拟流提前结束
	if _, err := Defragment(frames[:len(frames)-1]); err != ErrIncompleteTransfer {
		t.Fatalf("want ErrIncompleteTransfer, got %v", err)
	}
}

func TestDefragmentRejectsFreshStart(t *testing.T) {
	frames, err := Fragment(0, 5, []byte{1, 2}, make([]byte, 100))
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	var d Defragmenter
	if _, err := d.Feed(&frames[0]); err != nil {
		t.Fatalf("feed: %v", err)
	}
	// 同 seq 但未置续传位：上一转移被截断
	fresh := Frame{Seq: 5, Length: 10, Body: make([]byte, 10)}
	if _, err := d.Feed(&fresh); err != ErrIncompleteTransfer {
		t.Fatalf("want ErrIncompleteTransfer, got %v", err)
	}
}

func TestDefragmenterTrimsPadding(t *testing.T) {
	// 解码后的帧 body 总是 60 字节，重组须按声明长度裁剪补零
	frames, err := Fragment(0, 1, []byte{0x0A, 0x1A}, nil)
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	raw, _ := frames[0].Encode()
	decoded, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := Defragment([]Frame{*decoded})
	if err != nil {
		t.Fatalf("defragment: %v", err)
	}
	if !bytes.Equal(got, []byte{0x0A, 0x1A}) {
		t.Fatalf("payload % X", got)
	}
}
