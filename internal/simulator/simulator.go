// Package simulator 提供一个行为级 DLPC900 模拟器。
// 挂在回环端口对端，按协议重组入站转移、查表应答，
// 供无硬件环境下的集成测试与联调使用。
package simulator

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
	"github.com/qiwei-code/dmd-server/internal/transport"
)

// diagInvalidCommand 设备错误码 3：无效命令号
const diagInvalidCommand = 3

// Device 模拟控制器。
// 写命令把参数存入寄存器镜像，读命令按 schema 应答寄存器内容；
// 应答帧回传请求的 sequence 字节，超长应答自动分片。
type Device struct {
	port  dlp.Port
	table *dlp.Table
	log   *zap.Logger

	mu   sync.Mutex
	regs map[uint16][]byte
	fail map[uint16]byte
}

// New 创建模拟器
func New(port dlp.Port, table *dlp.Table, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{
		port:  port,
		table: table,
		log:   log,
		regs:  make(map[uint16][]byte),
		fail:  make(map[uint16]byte),
	}
}

// Load 预置某命令的应答载荷（如硬件状态位、固件标签）
func (d *Device) Load(code uint16, payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dup := make([]byte, len(payload))
	copy(dup, payload)
	d.regs[code] = dup
}

// Fail 注入故障：该命令的下一次及后续应答置 error 位并携带诊断码
func (d *Device) Fail(code uint16, diag byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[code] = diag
}

// Clear 清除故障注入
func (d *Device) Clear(code uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.fail, code)
}

// Run 处理入站帧直至端口关闭或 ctx 取消
func (d *Device) Run(ctx context.Context) error {
	var defrag *dlp.Defragmenter
	for {
		raw, err := d.port.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrPortClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		f, err := dlp.DecodeFrame(raw)
		if err != nil {
			d.log.Warn("simulator: dropping malformed frame", zap.Error(err))
			defrag = nil
			continue
		}
		if defrag == nil {
			defrag = &dlp.Defragmenter{}
		}
		done, err := defrag.Feed(f)
		if err != nil {
			d.log.Warn("simulator: dropping transfer", zap.Error(err))
			defrag = nil
			continue
		}
		if !done {
			continue
		}
		payload, _ := defrag.Payload()
		d.serve(ctx, defrag.Seq(), defrag.Flags(), payload)
		defrag = nil
	}
}

func (d *Device) serve(ctx context.Context, seq, flags byte, payload []byte) {
	wantReply := flags&dlp.FlagReply != 0
	if len(payload) < 2 {
		if wantReply {
			d.respond(ctx, seq, dlp.FlagReply|dlp.FlagError, []byte{diagInvalidCommand})
		}
		return
	}
	id := dlp.CommandID{Major: payload[0], Minor: payload[1]}
	params := payload[2:]
	code := id.Code()

	d.mu.Lock()
	diag, failing := d.fail[code]
	d.mu.Unlock()
	if failing {
		if wantReply {
			d.respond(ctx, seq, dlp.FlagReply|dlp.FlagError, []byte{diag})
		}
		return
	}

	schema, ok := d.table.Lookup(id)
	if !ok {
		d.log.Info("simulator: unknown command", zap.String("cmd", id.String()))
		if wantReply {
			d.respond(ctx, seq, dlp.FlagReply|dlp.FlagError, []byte{diagInvalidCommand})
		}
		return
	}

	if !wantReply {
		// 写命令：参数落入寄存器镜像
		d.mu.Lock()
		dup := make([]byte, len(params))
		copy(dup, params)
		d.regs[code] = dup
		d.mu.Unlock()
		d.log.Debug("simulator: write", zap.String("cmd", id.String()), zap.Int("params", len(params)))
		return
	}

	// 读命令：寄存器内容裁剪/补零到应答宽度
	reply := make([]byte, schema.ReplySize())
	d.mu.Lock()
	copy(reply, d.regs[code])
	d.mu.Unlock()
	d.log.Debug("simulator: read", zap.String("cmd", id.String()), zap.Int("reply", len(reply)))
	d.respond(ctx, seq, dlp.FlagReply, reply)
}

func (d *Device) respond(ctx context.Context, seq, flags byte, payload []byte) {
	frames, err := dlp.Fragment(flags, seq, nil, payload)
	if err != nil {
		d.log.Error("simulator: fragment reply", zap.Error(err))
		return
	}
	for i := range frames {
		raw, err := frames[i].Encode()
		if err != nil {
			d.log.Error("simulator: encode reply", zap.Error(err))
			return
		}
		if err := d.port.WriteFrame(ctx, raw); err != nil {
			d.log.Warn("simulator: write reply", zap.Error(err))
			return
		}
	}
}
