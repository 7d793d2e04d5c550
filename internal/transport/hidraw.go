// Package transport 提供 dlp.Port 的具体实现。
// 设备枚举与驱动安装不在职责范围内，调用方给出设备节点路径。
package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
)

// HidrawPort 经 Linux hidraw 字符设备收发固定 64 字节帧。
// 发送侧按 HID 规范在帧前附加 report ID 0x00；
// 设备应答不带 report ID（DLPC900 的实际行为），读取侧原样收 64 字节。
type HidrawPort struct {
	f            *os.File
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// HidrawOption 配置项
type HidrawOption func(*HidrawPort)

// WithReadTimeout 设置默认读超时（ctx 带 deadline 时以更早者为准）
func WithReadTimeout(d time.Duration) HidrawOption {
	return func(p *HidrawPort) { p.readTimeout = d }
}

// WithWriteTimeout 设置默认写超时
func WithWriteTimeout(d time.Duration) HidrawOption {
	return func(p *HidrawPort) { p.writeTimeout = d }
}

// OpenHidraw 打开 hidraw 设备节点（如 /dev/hidraw0）
func OpenHidraw(path string, opts ...HidrawOption) (*HidrawPort, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open hidraw %s: %w", path, err)
	}
	p := &HidrawPort{
		f:            f,
		readTimeout:  2 * time.Second,
		writeTimeout: 2 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// WriteFrame 写出一帧，前置 report ID 字节
func (p *HidrawPort) WriteFrame(ctx context.Context, frame []byte) error {
	if len(frame) != dlp.MTU {
		return fmt.Errorf("write frame: length %d != %d", len(frame), dlp.MTU)
	}
	if err := p.f.SetWriteDeadline(p.deadline(ctx, p.writeTimeout)); err != nil {
		return err
	}
	buf := make([]byte, 1+dlp.MTU)
	copy(buf[1:], frame)
	_, err := p.f.Write(buf)
	return err
}

// ReadFrame 读入一帧
func (p *HidrawPort) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := p.f.SetReadDeadline(p.deadline(ctx, p.readTimeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, dlp.MTU)
	if _, err := io.ReadFull(p.f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close 关闭设备节点
func (p *HidrawPort) Close() error { return p.f.Close() }

func (p *HidrawPort) deadline(ctx context.Context, fallback time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if fallback <= 0 {
		return time.Time{}
	}
	return time.Now().Add(fallback)
}
