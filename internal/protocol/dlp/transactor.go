package dlp

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
)

// Port 固定帧长的收发抽象（USB 控制/批量端点、hidraw、或测试回环）。
// 读写超时由实现负责，超时以普通错误返回并被核心原样上抛。
type Port interface {
	WriteFrame(ctx context.Context, frame []byte) error
	ReadFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// Request 一次逻辑转移的描述
type Request struct {
	Cmd    CommandID
	Params []int64
	Read   bool // true 为读查询（期望应答），false 为写设置
}

// Transactor 在单个 Port 之上执行 编码→分片→发送→收包→重组→解码 的完整事务。
// 同一时刻只允许一个在途事务：USB 端点无复用能力，帧必须严格按序收发。
// 事务失败不回退 sequence 计数（序号已在线上消耗）。
type Transactor struct {
	port  Port
	seq   *Counter
	table *Table
	log   *zap.Logger
	busy  atomic.Bool
}

// NewTransactor 创建事务执行器
func NewTransactor(port Port, seq *Counter, table *Table, log *zap.Logger) *Transactor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transactor{port: port, seq: seq, table: table, log: log}
}

// Table 返回底层命令表
func (x *Transactor) Table() *Table { return x.table }

// Do 执行一次事务。并发重入返回 ErrTransactionInProgress。
// 一旦开始发帧，转移要么完成要么失败，不支持中途取消；
// 失败的转移不可续传，调用方须用新 sequence 重发。
func (x *Transactor) Do(ctx context.Context, req Request) (*Response, error) {
	if !x.busy.CompareAndSwap(false, true) {
		return nil, ErrTransactionInProgress
	}
	defer x.busy.Store(false)

	var (
		payload []byte
		err     error
	)
	if req.Read {
		payload, err = EncodeQuery(x.table, req.Cmd)
	} else {
		payload, err = EncodeCommand(x.table, req.Cmd, req.Params)
	}
	if err != nil {
		return nil, err
	}

	flags := FlagSequenceEcho
	if req.Read {
		flags |= FlagReply
	}
	seq := x.seq.Next()
	frames, err := Fragment(flags, seq, payload[:2], payload[2:])
	if err != nil {
		return nil, err
	}

	x.log.Debug("sending command",
		zap.String("cmd", req.Cmd.String()),
		zap.Uint8("seq", seq),
		zap.Int("frames", len(frames)),
		zap.Bool("read", req.Read))

	for i := range frames {
		raw, err := frames[i].Encode()
		if err != nil {
			return nil, err
		}
		if err := x.port.WriteFrame(ctx, raw); err != nil {
			return nil, &TransportError{Op: "write", Err: err}
		}
	}

	if !req.Read {
		return &Response{Cmd: req.Cmd, Ack: true}, nil
	}

	var d Defragmenter
	for {
		raw, err := x.port.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) && !d.Done() {
				return nil, ErrIncompleteTransfer
			}
			return nil, &TransportError{Op: "read", Err: err}
		}
		f, err := DecodeFrame(raw)
		if err != nil {
			return nil, err
		}
		if f.Seq != seq {
			// 应答须携带本次请求的 sequence，串台即判废
			return nil, ErrSequenceMismatch
		}
		done, err := d.Feed(f)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	reply, err := d.Payload()
	if err != nil {
		return nil, err
	}
	return DecodeResponse(x.table, req.Cmd, d.Flags(), reply)
}
