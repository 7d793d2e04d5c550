package dlp

import "encoding/binary"

// Frame DLPC900 协议单帧
// Length 为整个逻辑载荷的总长度，分片传输时各帧保持一致；
// Body 仅为本帧承载的片段，编码时补零到 BodyCap。
type Frame struct {
	Flags  byte
	Seq    byte
	Length uint16
	Body   []byte
}

// IsReply 是否要求/携带应答
func (f *Frame) IsReply() bool { return f.Flags&FlagReply != 0 }

// IsError 设备是否报告错误
func (f *Frame) IsError() bool { return f.Flags&FlagError != 0 }

// IsContinuation 是否为续传帧
func (f *Frame) IsContinuation() bool { return f.Flags&FlagContinuation != 0 }

// Encode 编码为固定 MTU 长度的原始字节，Body 不足部分补零
func (f *Frame) Encode() ([]byte, error) {
	if len(f.Body) > BodyCap {
		return nil, ErrInvalidLength
	}
	raw := make([]byte, MTU)
	raw[0] = f.Flags
	raw[1] = f.Seq
	binary.LittleEndian.PutUint16(raw[2:4], f.Length)
	copy(raw[HeaderSize:], f.Body)
	return raw, nil
}

// DecodeFrame 解析一帧原始字节，仅校验结构形状不做语义判断。
// Body 返回帧头之后的全部 60 字节，有效范围由 Length 结合分片状态裁定。
func DecodeFrame(raw []byte) (*Frame, error) {
	if len(raw) != MTU {
		return nil, ErrMalformedFrame
	}
	body := make([]byte, BodyCap)
	copy(body, raw[HeaderSize:])
	return &Frame{
		Flags:  raw[0],
		Seq:    raw[1],
		Length: binary.LittleEndian.Uint16(raw[2:4]),
		Body:   body,
	}, nil
}
