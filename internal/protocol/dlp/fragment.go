package dlp

// Fragment 将一个逻辑载荷（命令2字节+参数）切分为帧序列。
// 纯函数：相同输入产生相同帧序列，传输失败后调用方可原样重发。
// 规则：
//   - 首帧 body = cmd + 尽量多的参数字节，装不下时置续传位于后续帧；
//   - 所有帧共享同一 seq 与同一逻辑总长度 Length；
//   - 除最后一帧外每帧 body 填满容量。
func Fragment(flags, seq byte, cmd, params []byte) ([]Frame, error) {
	total := len(cmd) + len(params)
	if total > MaxPayload || len(cmd) > BodyCap {
		return nil, ErrInvalidLength
	}

	first := Frame{Flags: flags &^ FlagContinuation, Seq: seq, Length: uint16(total)}
	n := BodyCap - len(cmd)
	if n > len(params) {
		n = len(params)
	}
	first.Body = make([]byte, 0, len(cmd)+n)
	first.Body = append(first.Body, cmd...)
	first.Body = append(first.Body, params[:n]...)
	rest := params[n:]

	if len(rest) > 0 {
		first.Flags |= FlagContinuation
	}
	frames := []Frame{first}

	for len(rest) > 0 {
		n = BodyCap
		if n > len(rest) {
			n = len(rest)
		}
		frames = append(frames, Frame{
			Flags:  flags | FlagContinuation,
			Seq:    seq,
			Length: uint16(total),
			Body:   rest[:n],
		})
		rest = rest[n:]
	}
	return frames, nil
}

// Defragmenter 流式重组器，逐帧喂入直至凑齐声明的逻辑长度。
// 用法同 bkv.StreamDecoder：Feed 返回 done=true 后取 Payload。
type Defragmenter struct {
	started bool
	done    bool
	seq     byte
	flags   byte
	total   int
	buf     []byte
}

// Feed 喂入一帧。返回 done=true 表示逻辑载荷已凑齐。
// 后续帧 seq 与首帧不符返回 ErrSequenceMismatch；
// 转移未完成时遇到非续传帧视为上一转移被截断，返回 ErrIncompleteTransfer。
func (d *Defragmenter) Feed(f *Frame) (bool, error) {
	if d.done {
		return true, nil
	}
	if !d.started {
		d.started = true
		d.seq = f.Seq
		d.flags = f.Flags
		d.total = int(f.Length)
		d.buf = make([]byte, 0, d.total)
	} else {
		if f.Seq != d.seq {
			return false, ErrSequenceMismatch
		}
		if !f.IsContinuation() {
			return false, ErrIncompleteTransfer
		}
	}

	remain := d.total - len(d.buf)
	if remain > len(f.Body) {
		remain = len(f.Body)
	}
	d.buf = append(d.buf, f.Body[:remain]...)

	d.done = len(d.buf) == d.total
	return d.done, nil
}

// Done 逻辑载荷是否已凑齐
func (d *Defragmenter) Done() bool { return d.done }

// Seq 首帧 sequence 字节
func (d *Defragmenter) Seq() byte { return d.seq }

// Flags 首帧 flags 字节（应答错误位在此）
func (d *Defragmenter) Flags() byte { return d.flags }

// Payload 返回重组后的逻辑载荷；未凑齐时返回 ErrIncompleteTransfer
func (d *Defragmenter) Payload() ([]byte, error) {
	if !d.done {
		return nil, ErrIncompleteTransfer
	}
	return d.buf, nil
}

// Defragment 一次性重组一个完整帧序列（便于测试与离线解析）
func Defragment(frames []Frame) ([]byte, error) {
	var d Defragmenter
	for i := range frames {
		done, err := d.Feed(&frames[i])
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return d.Payload()
}
