package dlp

import "testing"

func TestCommandID(t *testing.T) {
	id := ID16(0x1A1B)
	if id.Major != 0x1B || id.Minor != 0x1A {
		t.Fatalf("id=%+v", id)
	}
	if id.Code() != 0x1A1B {
		t.Fatalf("code=0x%04X", id.Code())
	}
	if b := id.Bytes(); b[0] != 0x1B || b[1] != 0x1A {
		t.Fatalf("wire bytes % X", b)
	}
	if id.String() != "0x1A1B" {
		t.Fatalf("string=%s", id.String())
	}
}

func TestTableRegisterValidation(t *testing.T) {
	tbl := NewTable()
	ok := Schema{ID: ID16(0x0200), Name: "power-mode",
		Params: []ParamSpec{{Name: "mode", Width: 1, Kind: ParamUint}}}
	if err := tbl.Register(ok); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []Schema{
		{ID: ID16(0x0200), Name: "other"}, // 重复 id
		{ID: ID16(0x0300), Name: "power-mode"}, // 重复名称
		{ID: ID16(0x0301), Name: ""},
		{ID: ID16(0x0302), Name: "bad-width",
			Params: []ParamSpec{{Name: "v", Width: 5, Kind: ParamUint}}},
		{ID: ID16(0x0303), Name: "raw-param",
			Params: []ParamSpec{{Name: "v", Width: 8, Kind: ParamRaw}}},
		{ID: ID16(0x0304), Name: "no-field-name",
			Reply: []ParamSpec{{Width: 1, Kind: ParamUint}}},
	}
	for _, s := range cases {
		if err := tbl.Register(s); err == nil {
			t.Fatalf("schema %q should be rejected", s.Name)
		}
	}
}

func TestDefaultTableLookups(t *testing.T) {
	tbl := DefaultTable()
	for _, name := range []string{
		"error-code", "power-mode", "idle-mode", "hardware-info",
		"hardware-status", "system-status", "main-status",
		"input-source", "source-port", "pixel-mode",
		"display-mode", "pattern-control", "pattern-lut", "dmd-comm-status",
	} {
		s, ok := tbl.ByName(name)
		if !ok {
			t.Fatalf("missing command %q", name)
		}
		if got, ok := tbl.Lookup(s.ID); !ok || got != s {
			t.Fatalf("id lookup mismatch for %q", name)
		}
	}
	if len(tbl.Names()) != 14 {
		t.Fatalf("registered=%d", len(tbl.Names()))
	}

	s, _ := tbl.ByName("pattern-control")
	if s.Readable() || !s.Writable() {
		t.Fatalf("pattern-control should be write-only")
	}
	s, _ = tbl.ByName("hardware-status")
	if !s.Readable() || s.Writable() {
		t.Fatalf("hardware-status should be read-only")
	}
	s, _ = tbl.ByName("hardware-info")
	if s.ReplySize() != 32 {
		t.Fatalf("hardware-info reply size=%d", s.ReplySize())
	}
}
