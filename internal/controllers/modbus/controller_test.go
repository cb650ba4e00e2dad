package modbusctrl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"strings"
	"net"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
	"github.com/Agrid-Dev/hvacrux/internal/testutil"
)

func findFreeTCPAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	a := l.Addr().String()
	_ = l.Close()
	return a
}

const startupDelay = 50 * time.Millisecond

func newTestEstimator(t *testing.T) *estimator.Estimator {
	t.Helper()
	b := building.Building{
		Floors: []building.Floor{{Rooms: []building.Room{
			{Length: 5, Width: 4, Height: 3, WindowArea: 2, NumPeople: 2, LightingLoad: 200, ApplianceLoad: 300},
			{Length: 6, Width: 5, Height: 3, WindowArea: 3, NumPeople: 3, LightingLoad: 300, ApplianceLoad: 400},
		}}},
		Envelope: building.Envelope{WallArea: 100, WallUValue: 0.3, RoofArea: 40, RoofUValue: 0.2, WindowUValue: 2.0},
	}
	e, err := estimator.New(b, building.DesignConditions{OutdoorTemp: -10, IndoorTemp: 22})
	if err != nil {
		t.Fatalf("estimator.New: %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	if _, err := New(newTestEstimator(t), Config{}, nil); err == nil {
		t.Fatal("expected error when UnitID is zero")
	}
	c, err := New(newTestEstimator(t), Config{UnitID: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.Addr != "127.0.0.1:1502" {
		t.Fatalf("expected default addr, got %q", c.cfg.Addr)
	}
}

func TestTemperatureEncoding(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{22.5, 22.5},
		{-10, -10},
		{21.257, 21.26},
		{1000, 327.67}, // clamped
		{-1000, -327.68},
	}
	for _, tt := range tests {
		if got := decodeTemp(encodeTemp(tt.in)); got != tt.want {
			t.Errorf("decodeTemp(encodeTemp(%v)) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWattsEncoding(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3572.75, 3573},
		{-2152.75, -2153},
		{0, 0},
		{1e12, math.MaxInt32},
		{-1e12, math.MinInt32},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		regs := make([]uint16, 2)
		putWatts(regs, tt.in)
		if got := decodeWatts(regs[0], regs[1]); got != tt.want {
			t.Errorf("watts(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadRegistersBounds(t *testing.T) {
	regs := []uint16{1, 2, 3}
	req := func(start, qty uint16) []byte {
		b := make([]byte, 4)
		binary.BigEndian.PutUint16(b[0:2], start)
		binary.BigEndian.PutUint16(b[2:4], qty)
		return b
	}

	resp, exc := readRegisters(req(1, 2), regs)
	if exc != &mbserver.Success {
		t.Fatalf("expected success, got %v", exc)
	}
	if len(resp) != 5 || resp[0] != 4 || binary.BigEndian.Uint16(resp[3:5]) != 3 {
		t.Fatalf("unexpected response %v", resp)
	}
	if _, exc := readRegisters(req(2, 2), regs); exc == &mbserver.Success {
		t.Fatalf("expected illegal address, got %v", exc)
	}
	if _, exc := readRegisters(req(0, 0), regs); exc == &mbserver.Success {
		t.Fatalf("expected illegal value, got %v", exc)
	}
	if _, exc := readRegisters([]byte{0}, regs); exc == &mbserver.Success {
		t.Fatalf("expected illegal value for short frame, got %v", exc)
	}
}

func TestModbusControllerHandlers(t *testing.T) {
	est := newTestEstimator(t)
	addr := findFreeTCPAddr(t)

	ctrl, err := New(est, Config{
		SiteID: "site",
		Addr:   addr,
		UnitID: 1,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := t.Context()
	go func() {
		_ = ctrl.Run(ctx)
	}()

	time.Sleep(startupDelay)

	handler := modbus.NewTCPClientHandler(addr)
	if err := handler.Connect(); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer handler.Close()
	client := modbus.NewClient(handler)

	// Holding registers 0..1: design temperatures
	res, err := client.ReadHoldingRegisters(0, 2)
	if err != nil {
		t.Fatalf("read holding: %v", err)
	}
	if len(res) != 4 {
		t.Fatalf("expected 4 bytes got %d", len(res))
	}
	if got := decodeTemp(binary.BigEndian.Uint16(res[0:2])); got != -10 {
		t.Fatalf("outdoor temperature = %v, want -10", got)
	}
	if got := decodeTemp(binary.BigEndian.Uint16(res[2:4])); got != 22 {
		t.Fatalf("indoor temperature = %v, want 22", got)
	}

	// Input registers 0..9: loads and counts
	res, err = client.ReadInputRegisters(0, inputRegisterCount)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	reg := func(i int) uint16 { return binary.BigEndian.Uint16(res[i*2 : i*2+2]) }
	if got := decodeWatts(reg(IRHeatLoss), reg(IRHeatLoss+1)); got != 3573 {
		t.Fatalf("heat loss = %v, want 3573", got)
	}
	if got := decodeWatts(reg(IRHeatGain), reg(IRHeatGain+1)); got != 1420 {
		t.Fatalf("heat gain = %v, want 1420", got)
	}
	if got := decodeWatts(reg(IRCoolingLoad), reg(IRCoolingLoad+1)); got != -2153 {
		t.Fatalf("cooling load = %v, want -2153", got)
	}
	if reg(IRFloorCount) != 1 || reg(IRRoomCount) != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", reg(IRFloorCount), reg(IRRoomCount))
	}

	// Write outdoor temperature
	if _, err := client.WriteSingleRegister(HROutdoorTemperature, encodeTemp(-5.25)); err != nil {
		t.Fatalf("write register: %v", err)
	}
	if got := est.Get().Conditions.OutdoorTemp; got != -5.25 {
		t.Fatalf("outdoor temperature = %v, want -5.25", got)
	}

	// Write both temperatures at once
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], encodeTemp(0))
	binary.BigEndian.PutUint16(buf[2:4], encodeTemp(20))
	if _, err := client.WriteMultipleRegisters(0, 2, buf); err != nil {
		t.Fatalf("write multiple: %v", err)
	}
	if got := est.Get().Conditions; got != (building.DesignConditions{OutdoorTemp: 0, IndoorTemp: 20}) {
		t.Fatalf("conditions = %+v", got)
	}

	// Input registers are read only, out-of-range holding writes fail
	if _, err := client.WriteSingleRegister(5, 1); err == nil {
		t.Fatal("expected error writing unknown register")
	}
}

func TestWriteHoldingBlock_AppliesConditionsOnce(t *testing.T) {
	svc := testutil.NewFakeEstimatorService()
	ctrl, err := New(svc, Config{UnitID: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if exc := ctrl.writeHoldingBlock(HROutdoorTemperature, []uint16{encodeTemp(30), encodeTemp(24)}); exc != nil {
		t.Fatalf("unexpected exception %v", exc)
	}
	if !svc.SetConditionsCalled {
		t.Fatal("expected SetConditions to be called")
	}
	if svc.SetOutdoorCalled || svc.SetIndoorCalled {
		t.Fatal("expected a single conditions update, not per-register setters")
	}
	if svc.SetConditionsArg != (building.DesignConditions{OutdoorTemp: 30, IndoorTemp: 24}) {
		t.Fatalf("conditions = %+v", svc.SetConditionsArg)
	}
}

func TestWriteHoldingBlock_SingleRegisterUsesSetter(t *testing.T) {
	svc := testutil.NewFakeEstimatorService()
	ctrl, err := New(svc, Config{UnitID: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if exc := ctrl.writeHoldingBlock(HRIndoorTemperature, []uint16{encodeTemp(19.5)}); exc != nil {
		t.Fatalf("unexpected exception %v", exc)
	}
	if !svc.SetIndoorCalled || svc.SetIndoorArg != 19.5 || svc.SetConditionsCalled {
		t.Fatalf("expected SetIndoorTemperature(19.5), got indoor=%v conditions=%v", svc.SetIndoorCalled, svc.SetConditionsCalled)
	}
}

func TestWriteHoldingBlock_Rejected(t *testing.T) {
	svc := testutil.NewFakeEstimatorService()
	svc.SetConditionsErr = errors.New("boom")
	ctrl, err := New(svc, Config{UnitID: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if exc := ctrl.writeHoldingBlock(HROutdoorTemperature, []uint16{1, 2}); exc != &mbserver.IllegalDataValue {
		t.Fatalf("expected illegal value, got %v", exc)
	}
	if svc.C != (building.DesignConditions{OutdoorTemp: -10, IndoorTemp: 22}) {
		t.Fatalf("conditions changed on rejected write: %+v", svc.C)
	}

	svc.SetConditionsErr = nil
	svc.SetConditionsCalled = false
	if exc := ctrl.writeHoldingBlock(HRIndoorTemperature, []uint16{1, 2}); exc != &mbserver.IllegalDataAddress {
		t.Fatalf("expected illegal address, got %v", exc)
	}
	if svc.SetConditionsCalled {
		t.Fatal("SetConditions must not be called for an out-of-range block")
	}
}

func TestNewLoggerCarriesSiteID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctrl, err := New(newTestEstimator(t), Config{SiteID: "house1", UnitID: 1}, logger)
	if err != nil {
		t.Fatal(err)
	}
	ctrl.log.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "site_id=house1") || !strings.Contains(out, "controller=modbus") {
		t.Fatalf("expected site_id and controller attributes, got %q", out)
	}
}
