package dlp

// DLPC900 USB 命令包协议常量
// 帧布局（固定 64 字节）：
// flags[1] | seq[1] | lenLE[2] | body[60]
// lenLE 为逻辑载荷总长度（命令2字节+参数），跨分片保持一致
const (
	// MTU 单帧固定长度（USB HID 报文大小）
	MTU = 64

	// HeaderSize 帧头长度：flags(1) + seq(1) + lenLE(2)
	HeaderSize = 4

	// BodyCap 单帧载荷容量
	BodyCap = MTU - HeaderSize

	// MaxPayload 逻辑载荷长度上限（len 字段为 16 位）
	MaxPayload = 0xFFFF
)

// flags 字节位定义
const (
	// FlagReply bit7：期望设备应答（读命令）
	FlagReply byte = 1 << 7

	// FlagError bit6：设备报告错误（应答帧）
	FlagError byte = 1 << 6

	// FlagSequenceEcho bit5：要求应答帧回传 sequence 字节
	FlagSequenceEcho byte = 1 << 5

	// FlagContinuation bit0：本帧为上一帧逻辑载荷的续传
	FlagContinuation byte = 1 << 0
)
