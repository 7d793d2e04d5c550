package dlp

// DLPC900 命令码（用户手册 DLPU018 章节号见注释）
const (
	CmdErrorCode      uint16 = 0x0100 // 2.1 通信错误码查询
	CmdPowerMode      uint16 = 0x0200 // 2.3.1.1 电源模式
	CmdIdleMode       uint16 = 0x0201 // 2.3.1.2 空闲模式
	CmdHardwareInfo   uint16 = 0x0206 // 2.1 硬件型号与固件标签
	CmdHardwareStatus uint16 = 0x1A0A // 2.1 硬件状态位
	CmdSystemStatus   uint16 = 0x1A0B // 2.1 内部存储自检
	CmdMainStatus     uint16 = 0x1A0C // 2.1 主状态位
	CmdInputSource    uint16 = 0x1A00 // 2.3 输入源选择
	CmdSourcePort     uint16 = 0x1A01 // 2.3 端口/时钟选择（HDMI/DP 锁定）
	CmdPixelMode      uint16 = 0x1A03 // 2.3 像素模式（单/双像素）
	CmdDisplayMode    uint16 = 0x1A1B // 2.4.1 显示模式
	CmdPatternControl uint16 = 0x1A24 // 2.4.4.3 图案序列 启/停/暂停
	CmdPatternLUT     uint16 = 0x1A34 // 2.4.4.3.5 图案 LUT 定义
	CmdDMDCommStatus  uint16 = 0x1A49 // 2.1 DMD 通信状态
)

// 显示模式取值（0x1A1B）
const (
	DisplayModeVideo        = 0
	DisplayModePattern      = 1
	DisplayModeVideoPattern = 2
	DisplayModeOnTheFly     = 3
)

// 图案序列控制取值（0x1A24）
const (
	PatternStop  = 0
	PatternPause = 1
	PatternStart = 2
)

// 电源模式取值（0x0200）
const (
	PowerNormal  = 0
	PowerStandby = 1
	PowerReset   = 2
)

// DefaultTable 构建 DLPC900 静态命令表。
// 注意：on-the-fly 图像加载命令（0x1A2A/0x1A2B）不在表内，
// 其分帧约定与常规命令不同，需要单独设计后再引入。
func DefaultTable() *Table {
	t := NewTable()

	t.MustRegister(Schema{
		ID:    ID16(CmdErrorCode),
		Name:  "error-code",
		Reply: []ParamSpec{{Name: "code", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdPowerMode),
		Name:   "power-mode",
		Params: []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
		Reply:  []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdIdleMode),
		Name:   "idle-mode",
		Params: []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
		Reply:  []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:   ID16(CmdHardwareInfo),
		Name: "hardware-info",
		Reply: []ParamSpec{
			{Name: "product", Width: 1, Kind: ParamUint},
			{Name: "firmware-tag", Width: 31, Kind: ParamRaw},
		},
	})
	t.MustRegister(Schema{
		ID:    ID16(CmdHardwareStatus),
		Name:  "hardware-status",
		Reply: []ParamSpec{{Name: "status", Width: 1, Kind: ParamBits}},
	})
	t.MustRegister(Schema{
		ID:    ID16(CmdSystemStatus),
		Name:  "system-status",
		Reply: []ParamSpec{{Name: "status", Width: 1, Kind: ParamBits}},
	})
	t.MustRegister(Schema{
		ID:    ID16(CmdMainStatus),
		Name:  "main-status",
		Reply: []ParamSpec{{Name: "status", Width: 1, Kind: ParamBits}},
	})
	t.MustRegister(Schema{
		ID:   ID16(CmdInputSource),
		Name: "input-source",
		Params: []ParamSpec{
			{Name: "source", Width: 1, Kind: ParamUint},
			{Name: "bit-depth", Width: 1, Kind: ParamUint},
		},
		Reply: []ParamSpec{
			{Name: "source", Width: 1, Kind: ParamUint},
			{Name: "bit-depth", Width: 1, Kind: ParamUint},
		},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdSourcePort),
		Name:   "source-port",
		Params: []ParamSpec{{Name: "port", Width: 1, Kind: ParamUint}},
		Reply:  []ParamSpec{{Name: "port", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdPixelMode),
		Name:   "pixel-mode",
		Params: []ParamSpec{{Name: "mode", Width: 4, Kind: ParamUint}},
		Reply:  []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdDisplayMode),
		Name:   "display-mode",
		Params: []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
		Reply:  []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:     ID16(CmdPatternControl),
		Name:   "pattern-control",
		Params: []ParamSpec{{Name: "action", Width: 1, Kind: ParamUint}},
	})
	t.MustRegister(Schema{
		ID:   ID16(CmdPatternLUT),
		Name: "pattern-lut",
		Params: []ParamSpec{
			{Name: "pattern-index", Width: 2, Kind: ParamUint},
			{Name: "exposure-us", Width: 3, Kind: ParamUint},
			{Name: "options", Width: 1, Kind: ParamBits},
			{Name: "dark-time-us", Width: 3, Kind: ParamUint},
			{Name: "trigger-out", Width: 1, Kind: ParamBits},
			{Name: "image-bit-index", Width: 2, Kind: ParamBits},
		},
	})
	t.MustRegister(Schema{
		ID:    ID16(CmdDMDCommStatus),
		Name:  "dmd-comm-status",
		Reply: []ParamSpec{{Name: "status", Width: 1, Kind: ParamBits}},
	})

	return t
}
