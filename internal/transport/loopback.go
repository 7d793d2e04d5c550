package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
)

// ErrPortClosed 端口已关闭
var ErrPortClosed = errors.New("port closed")

// Loopback 内存回环端口，与对端成对出现。
// 本端写出的帧从对端读到，反之亦然；供测试与模拟器使用。
type Loopback struct {
	out  chan []byte
	in   chan []byte
	done chan struct{}
	once *sync.Once
}

// LoopbackPair 创建一对互联端口，depth 为单向缓冲帧数
func LoopbackPair(depth int) (*Loopback, *Loopback) {
	if depth <= 0 {
		depth = 16
	}
	ab := make(chan []byte, depth)
	ba := make(chan []byte, depth)
	done := make(chan struct{})
	once := &sync.Once{}
	a := &Loopback{out: ab, in: ba, done: done, once: once}
	b := &Loopback{out: ba, in: ab, done: done, once: once}
	return a, b
}

// WriteFrame 写出一帧（复制内容，调用方可复用切片）
func (p *Loopback) WriteFrame(ctx context.Context, frame []byte) error {
	if len(frame) != dlp.MTU {
		return errors.New("loopback: bad frame size")
	}
	dup := make([]byte, len(frame))
	copy(dup, frame)
	select {
	case <-p.done:
		return ErrPortClosed
	default:
	}
	select {
	case p.out <- dup:
		return nil
	case <-p.done:
		return ErrPortClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadFrame 读入一帧；对端关闭且缓冲排空后返回 io.EOF
func (p *Loopback) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case f := <-p.in:
		return f, nil
	default:
	}
	select {
	case f := <-p.in:
		return f, nil
	case <-p.done:
		// 关闭后允许读尽残余帧
		select {
		case f := <-p.in:
			return f, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close 关闭两端（任一端关闭即整对失效）
func (p *Loopback) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
