package simulator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
	"github.com/qiwei-code/dmd-server/internal/transport"
)

func startSim(t *testing.T, table *dlp.Table) (*dlp.Transactor, *Device) {
	t.Helper()
	host, devPort := transport.LoopbackPair(8)
	dev := New(devPort, table, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = dev.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = host.Close()
		<-done
	})
	return dlp.NewTransactor(host, &dlp.Counter{}, table, nil), dev
}

func TestSimulatorQueryPreloaded(t *testing.T) {
	table := dlp.DefaultTable()
	x, dev := startSim(t, table)
	dev.Load(dlp.CmdHardwareStatus, []byte{0x97})

	resp, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.ID16(dlp.CmdHardwareStatus), Read: true})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if v, _ := resp.Field("status"); v != 0x97 {
		t.Fatalf("status=0x%02X", v)
	}
}

func TestSimulatorWriteThenReadBack(t *testing.T) {
	table := dlp.DefaultTable()
	x, _ := startSim(t, table)

	if _, err := x.Do(context.Background(), dlp.Request{
		Cmd: dlp.ID16(dlp.CmdDisplayMode), Params: []int64{dlp.DisplayModePattern},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.ID16(dlp.CmdDisplayMode), Read: true})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if v, _ := resp.Field("mode"); v != dlp.DisplayModePattern {
		t.Fatalf("mode=%d", v)
	}
}

func TestSimulatorErrorInjection(t *testing.T) {
	table := dlp.DefaultTable()
	x, dev := startSim(t, table)
	dev.Fail(dlp.CmdMainStatus, 2)

	_, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.ID16(dlp.CmdMainStatus), Read: true})
	var devErr *dlp.DeviceError
	if !errors.As(err, &devErr) || devErr.Diag != 2 {
		t.Fatalf("want DeviceError{2}, got %v", err)
	}

	dev.Clear(dlp.CmdMainStatus)
	if _, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.ID16(dlp.CmdMainStatus), Read: true}); err != nil {
		t.Fatalf("after clear: %v", err)
	}
}

func TestSimulatorMultiFrameBothDirections(t *testing.T) {
	table := dlp.DefaultTable()
	params := make([]dlp.ParamSpec, 30)
	for i := range params {
		params[i] = dlp.ParamSpec{Name: string(rune('a' + i%26)) + string(rune('0'+i/26)), Width: 4, Kind: dlp.ParamUint}
	}
	table.MustRegister(dlp.Schema{
		ID:     dlp.CommandID{Major: 0x70, Minor: 0x1A},
		Name:   "bulk-block",
		Params: params, // 120 字节参数，写方向两帧
		Reply:  []dlp.ParamSpec{{Name: "blob", Width: 120, Kind: dlp.ParamRaw}},
	})
	x, _ := startSim(t, table)

	values := make([]int64, 30)
	for i := range values {
		values[i] = int64(i) * 11
	}
	if _, err := x.Do(context.Background(), dlp.Request{
		Cmd: dlp.CommandID{Major: 0x70, Minor: 0x1A}, Params: values,
	}); err != nil {
		t.Fatalf("bulk write: %v", err)
	}

	resp, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.CommandID{Major: 0x70, Minor: 0x1A}, Read: true})
	if err != nil {
		t.Fatalf("bulk read: %v", err)
	}
	blob, _ := resp.RawField("blob")
	want := make([]byte, 120)
	for i, v := range values {
		want[4*i] = byte(v)
		want[4*i+1] = byte(v >> 8)
	}
	if !bytes.Equal(blob, want) {
		t.Fatalf("blob mismatch\n got % X\nwant % X", blob[:16], want[:16])
	}
}

func TestSimulatorUnknownCommand(t *testing.T) {
	// 模拟器表中不存在的命令：宿主侧用带有该命令的表，设备侧用默认表
	hostTable := dlp.DefaultTable()
	hostTable.MustRegister(dlp.Schema{
		ID:    dlp.CommandID{Major: 0x77, Minor: 0x77},
		Name:  "not-on-device",
		Reply: []dlp.ParamSpec{{Name: "v", Width: 1, Kind: dlp.ParamUint}},
	})
	host, devPort := transport.LoopbackPair(8)
	dev := New(devPort, dlp.DefaultTable(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = dev.Run(ctx) }()
	defer host.Close()

	x := dlp.NewTransactor(host, &dlp.Counter{}, hostTable, nil)
	_, err := x.Do(context.Background(), dlp.Request{Cmd: dlp.CommandID{Major: 0x77, Minor: 0x77}, Read: true})
	var devErr *dlp.DeviceError
	if !errors.As(err, &devErr) || devErr.Diag != diagInvalidCommand {
		t.Fatalf("want invalid-command diag, got %v", err)
	}
}
