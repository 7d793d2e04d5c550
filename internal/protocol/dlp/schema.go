package dlp

import (
	"fmt"
	"sort"
)

// CommandID 命令标识：USB 命令 16 位值按小端拆成 (major, minor)。
// 例如 0x1A1B 在线上序列化为 1B 1A，即 Major=0x1B Minor=0x1A。
type CommandID struct {
	Major byte
	Minor byte
}

// ID16 由 16 位命令值构造 CommandID
func ID16(code uint16) CommandID {
	return CommandID{Major: byte(code), Minor: byte(code >> 8)}
}

// Code 还原 16 位命令值
func (id CommandID) Code() uint16 {
	return uint16(id.Minor)<<8 | uint16(id.Major)
}

func (id CommandID) String() string {
	return fmt.Sprintf("0x%04X", id.Code())
}

// Bytes 线上字节序（major 在前）
func (id CommandID) Bytes() []byte {
	return []byte{id.Major, id.Minor}
}

// ParamKind 参数编码方式
type ParamKind uint8

const (
	// ParamUint 无符号整数，小端
	ParamUint ParamKind = iota
	// ParamFixed 有符号定点数，按预缩放整数携带，小端补码
	ParamFixed
	// ParamBits 位域打包标志，按无符号整数校验位宽
	ParamBits
	// ParamRaw 原始字节块（仅允许出现在应答中，如固件版本标签）
	ParamRaw
)

// ParamSpec 单个参数/应答字段的布局声明
type ParamSpec struct {
	Name  string
	Width int // 字节数：整数类 1–4，ParamRaw 任意正数
	Kind  ParamKind
}

// Schema 一条命令的静态布局声明。
// Params 为写请求参数；Reply 为读应答字段，nil 表示纯写命令（只回 ACK）。
type Schema struct {
	ID     CommandID
	Name   string
	Params []ParamSpec
	Reply  []ParamSpec
}

// Readable 是否支持读查询
func (s *Schema) Readable() bool { return len(s.Reply) > 0 }

// Writable 是否支持写设置（零参写命令也算，如 pattern-control）
func (s *Schema) Writable() bool { return s.Params != nil }

// ReplySize 应答载荷期望字节数
func (s *Schema) ReplySize() int {
	n := 0
	for _, p := range s.Reply {
		n += p.Width
	}
	return n
}

// Table 静态命令表，注册期完成全部校验，运行期只查表。
// 取代按名称的动态属性派发。
type Table struct {
	byID   map[CommandID]*Schema
	byName map[string]*Schema
}

// NewTable 创建空命令表
func NewTable() *Table {
	return &Table{
		byID:   make(map[CommandID]*Schema),
		byName: make(map[string]*Schema),
	}
}

// Register 注册一条命令，布局非法或重复注册返回错误
func (t *Table) Register(s Schema) error {
	if s.Name == "" {
		return fmt.Errorf("register %s: empty name", s.ID)
	}
	if _, dup := t.byID[s.ID]; dup {
		return fmt.Errorf("register %s: duplicate id", s.ID)
	}
	if _, dup := t.byName[s.Name]; dup {
		return fmt.Errorf("register %s: duplicate name %q", s.ID, s.Name)
	}
	for _, p := range s.Params {
		if err := checkSpec(p, false); err != nil {
			return fmt.Errorf("register %s param %q: %w", s.ID, p.Name, err)
		}
	}
	for _, p := range s.Reply {
		if err := checkSpec(p, true); err != nil {
			return fmt.Errorf("register %s reply %q: %w", s.ID, p.Name, err)
		}
	}
	cp := s
	t.byID[s.ID] = &cp
	t.byName[s.Name] = &cp
	return nil
}

// MustRegister 注册失败即 panic，用于进程启动期的静态表构建
func (t *Table) MustRegister(s Schema) {
	if err := t.Register(s); err != nil {
		panic(err)
	}
}

func checkSpec(p ParamSpec, reply bool) error {
	if p.Name == "" {
		return fmt.Errorf("empty field name")
	}
	switch p.Kind {
	case ParamUint, ParamFixed, ParamBits:
		if p.Width < 1 || p.Width > 4 {
			return fmt.Errorf("width %d out of range", p.Width)
		}
	case ParamRaw:
		if !reply {
			return fmt.Errorf("raw field only allowed in reply")
		}
		if p.Width < 1 {
			return fmt.Errorf("width %d out of range", p.Width)
		}
	default:
		return fmt.Errorf("unknown kind %d", p.Kind)
	}
	return nil
}

// Lookup 按命令标识查表
func (t *Table) Lookup(id CommandID) (*Schema, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// ByName 按可读名称查表（设置名 -> 命令码的映射）
func (t *Table) ByName(name string) (*Schema, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Names 返回全部已注册命令名（字典序）
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
