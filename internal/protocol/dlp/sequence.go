package dlp

import "sync/atomic"

// Counter 进程内单调循环的 sequence 字节计数器。
// 每个逻辑转移消耗一个值（分片共享同一值），mod 256 回绕。
// 同一设备句柄之上允许并发调用方，因此取号用原子操作。
type Counter struct {
	v atomic.Uint32
}

// Next 返回当前值并自增
func (c *Counter) Next() byte {
	return byte(c.v.Add(1) - 1)
}
