package dlp

import "fmt"

// EncodeCommand 将写命令编码为逻辑载荷：major, minor, 参数按声明位宽小端排列。
// 参数个数、位宽范围在编码前全部校验，不触发任何 I/O。
func EncodeCommand(t *Table, id CommandID, params []int64) ([]byte, error) {
	s, ok := t.Lookup(id)
	if !ok {
		return nil, ErrUnknownCommand
	}
	if !s.Writable() {
		return nil, fmt.Errorf("%w: %s is read-only", ErrParameterCountMismatch, s.Name)
	}
	if len(params) != len(s.Params) {
		return nil, fmt.Errorf("%w: %s wants %d, got %d", ErrParameterCountMismatch, s.Name, len(s.Params), len(params))
	}

	payload := make([]byte, 0, 2+paramsSize(s.Params))
	payload = append(payload, id.Major, id.Minor)
	for i, p := range s.Params {
		enc, err := encodeValue(p, params[i])
		if err != nil {
			return nil, fmt.Errorf("%s param %q: %w", s.Name, p.Name, err)
		}
		payload = append(payload, enc...)
	}
	return payload, nil
}

// EncodeQuery 将读命令编码为逻辑载荷：仅命令两字节，不带参数
func EncodeQuery(t *Table, id CommandID) ([]byte, error) {
	s, ok := t.Lookup(id)
	if !ok {
		return nil, ErrUnknownCommand
	}
	if !s.Readable() {
		return nil, fmt.Errorf("%w: %s is write-only", ErrUnknownCommand, s.Name)
	}
	return id.Bytes(), nil
}

func paramsSize(specs []ParamSpec) int {
	n := 0
	for _, p := range specs {
		n += p.Width
	}
	return n
}

func encodeValue(p ParamSpec, v int64) ([]byte, error) {
	switch p.Kind {
	case ParamUint, ParamBits:
		if v < 0 || v >= int64(1)<<(8*p.Width) {
			return nil, ErrParameterRange
		}
	case ParamFixed:
		lo := int64(-1) << (8*p.Width - 1)
		hi := int64(1)<<(8*p.Width-1) - 1
		if v < lo || v > hi {
			return nil, ErrParameterRange
		}
	default:
		return nil, ErrParameterRange
	}
	out := make([]byte, p.Width)
	u := uint64(v)
	for i := 0; i < p.Width; i++ {
		out[i] = byte(u >> (8 * i))
	}
	return out, nil
}

// Field 应答中的单个已解码字段
type Field struct {
	Name  string
	Value int64  // 整数类字段的值（定点为预缩放整数）
	Raw   []byte // ParamRaw 字段的原始字节
}

// Response 一次命令的解码结果。
// 读命令返回字段列表；写命令只携带 ACK（错误时根本不会构造 Response）。
type Response struct {
	Cmd    CommandID
	Ack    bool
	Fields []Field
}

// Field 按名称取整数字段值
func (r *Response) Field(name string) (int64, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// RawField 按名称取原始字节字段
func (r *Response) RawField(name string) ([]byte, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Raw, true
		}
	}
	return nil, false
}

// DecodeResponse 按命令 schema 解码应答载荷。
// flags 取自应答首帧：error 位置位时返回 DeviceError（载荷首字节为诊断码）。
// 写命令（Reply 为空）仅根据 error 位生成 ACK。
func DecodeResponse(t *Table, id CommandID, flags byte, payload []byte) (*Response, error) {
	s, ok := t.Lookup(id)
	if !ok {
		return nil, ErrUnknownCommand
	}
	if flags&FlagError != 0 {
		var diag byte
		if len(payload) > 0 {
			diag = payload[0]
		}
		return nil, &DeviceError{Diag: diag}
	}
	if !s.Readable() {
		return &Response{Cmd: id, Ack: true}, nil
	}
	if len(payload) != s.ReplySize() {
		return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", ErrUnexpectedPayloadLength, s.Name, s.ReplySize(), len(payload))
	}

	resp := &Response{Cmd: id, Ack: true, Fields: make([]Field, 0, len(s.Reply))}
	off := 0
	for _, p := range s.Reply {
		chunk := payload[off : off+p.Width]
		off += p.Width
		if p.Kind == ParamRaw {
			raw := make([]byte, len(chunk))
			copy(raw, chunk)
			resp.Fields = append(resp.Fields, Field{Name: p.Name, Raw: raw})
			continue
		}
		resp.Fields = append(resp.Fields, Field{Name: p.Name, Value: decodeValue(p, chunk)})
	}
	return resp, nil
}

func decodeValue(p ParamSpec, b []byte) int64 {
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	if p.Kind == ParamFixed {
		// 按声明位宽做符号扩展
		shift := 64 - 8*p.Width
		return int64(u<<shift) >> shift
	}
	return int64(u)
}
