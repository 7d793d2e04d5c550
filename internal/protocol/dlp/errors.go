package dlp

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame 帧结构性解码失败（长度不等于 MTU）
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrInvalidLength 载荷超出帧容量或 16 位长度字段上限
	ErrInvalidLength = errors.New("invalid length")

	// ErrIncompleteTransfer 声明长度未凑齐即遇到流结束
	ErrIncompleteTransfer = errors.New("incomplete transfer")

	// ErrSequenceMismatch 后续帧 sequence 与首帧不一致（串台应答）
	ErrSequenceMismatch = errors.New("sequence mismatch")

	// ErrUnknownCommand 命令表中未注册该 (major, minor)
	ErrUnknownCommand = errors.New("unknown command")

	// ErrParameterCountMismatch 参数个数与 schema 声明不符
	ErrParameterCountMismatch = errors.New("parameter count mismatch")

	// ErrParameterRange 参数值超出声明位宽
	ErrParameterRange = errors.New("parameter out of range")

	// ErrUnexpectedPayloadLength 应答载荷长度与 schema 不符
	ErrUnexpectedPayloadLength = errors.New("unexpected payload length")

	// ErrTransactionInProgress 上一事务未完成即发起新事务（调用方错误）
	ErrTransactionInProgress = errors.New("transaction in progress")
)

// deviceErrorText DLPC900 错误码说明（用户手册 0x0100 应答）
var deviceErrorText = map[byte]string{
	1:   "batch file checksum error",
	2:   "device failure",
	3:   "invalid command number",
	4:   "incompatible controller and DMD combination",
	5:   "command not allowed in current mode",
	6:   "invalid command parameter",
	7:   "item referred by the parameter is not present",
	8:   "out of resource (RAM or flash)",
	9:   "invalid BMP compression type",
	10:  "pattern bit number out of range",
	11:  "pattern BMP not present in flash",
	12:  "pattern dark time is out of range",
	13:  "signal delay parameter is out of range",
	14:  "pattern exposure time is out of range",
	15:  "pattern number is out of range",
	16:  "invalid pattern definition",
	17:  "pattern image memory address is out of range",
	255: "internal error",
}

// DeviceError 设备在应答帧中置位 error 标志时携带的诊断信息
type DeviceError struct {
	Diag byte
}

func (e *DeviceError) Error() string {
	if msg, ok := deviceErrorText[e.Diag]; ok {
		return fmt.Sprintf("device error %d: %s", e.Diag, msg)
	}
	return fmt.Sprintf("device error %d: undocumented", e.Diag)
}

// TransportError 传输层失败原样上抛，不在协议核心内重试
type TransportError struct {
	Op  string // "write" | "read"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
