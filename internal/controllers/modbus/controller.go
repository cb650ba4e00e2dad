package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/hvacrux/internal/estimator"
	"github.com/Agrid-Dev/hvacrux/internal/ports"
)

// Holding registers (read/write), temperatures scaled by TemperatureScale.
const (
	HROutdoorTemperature = 0
	HRIndoorTemperature  = 1
	holdingRegisterCount = 2
)

// Input registers (read only). Loads are int32 watts, high word first.
const (
	IRHeatLoss    = 0
	IRHeatGain    = 2
	IRCoolingLoad = 4
	IRHeatingLoad = 6
	IRFloorCount  = 8
	IRRoomCount   = 9

	inputRegisterCount = 10
)

// Config for the Modbus controller.
type Config struct {
	SiteID string
	Addr   string
	UnitID byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.EstimatorService
	cfg Config
	log *slog.Logger

	serv *mbserver.Server
}

func New(svc ports.EstimatorService, cfg Config, logger *slog.Logger) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("controller", "modbus")
	if cfg.SiteID != "" {
		logger = logger.With("site_id", cfg.SiteID)
	}
	return &Controller{svc: svc, cfg: cfg, log: logger}, nil
}

// Run starts the Modbus server and registers handlers that apply writes immediately and
// serve reads directly from the estimator. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.

	// Read Holding Registers (function 3) - design temperatures.
	serv.RegisterFunctionHandler(3, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		return readRegisters(frame.GetData(), holdingRegisters(c.svc.Get()))
	})

	// Read Input Registers (function 4) - computed loads and layout counts.
	serv.RegisterFunctionHandler(4, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		return readRegisters(frame.GetData(), inputRegisters(c.svc.Get()))
	})

	// Write Single Register (function 6)
	serv.RegisterFunctionHandler(6, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := int(binary.BigEndian.Uint16(data[0:2]))
		value := binary.BigEndian.Uint16(data[2:4])

		if exc := c.writeHolding(addr, value); exc != nil {
			return []byte{}, exc
		}

		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Multiple Registers (function 16)
	serv.RegisterFunctionHandler(16, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		d := frame.GetData()
		if len(d) < 5 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(d[0:2])
		quantity := binary.BigEndian.Uint16(d[2:4])
		byteCount := int(d[4])
		if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
			return []byte{}, &mbserver.IllegalDataValue
		}
		if int(start)+int(quantity) > holdingRegisterCount {
			return []byte{}, &mbserver.IllegalDataAddress
		}
		vals := make([]uint16, quantity)
		for i := range vals {
			vals[i] = binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		}
		if exc := c.writeHoldingBlock(int(start), vals); exc != nil {
			return []byte{}, exc
		}

		resp := make([]byte, 4)
		binary.BigEndian.PutUint16(resp[0:2], start)
		binary.BigEndian.PutUint16(resp[2:4], quantity)
		return resp, &mbserver.Success
	})

	// Now start listening after all handlers are registered.
	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info("listening", "addr", c.cfg.Addr, "unit_id", c.cfg.UnitID)

	// Block until ctx.Done()
	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

func (c *Controller) writeHolding(addr int, value uint16) *mbserver.Exception {
	var err error
	switch addr {
	case HROutdoorTemperature:
		err = c.svc.SetOutdoorTemperature(decodeTemp(value))
	case HRIndoorTemperature:
		err = c.svc.SetIndoorTemperature(decodeTemp(value))
	default:
		return &mbserver.IllegalDataAddress
	}
	if err != nil {
		c.log.Debug("rejected register write", "addr", addr, "err", err)
		return &mbserver.IllegalDataValue
	}
	return nil
}

// writeHoldingBlock applies a multi-register write as a single conditions update.
func (c *Controller) writeHoldingBlock(start int, vals []uint16) *mbserver.Exception {
	if len(vals) == 1 {
		return c.writeHolding(start, vals[0])
	}
	cond := c.svc.Get().Conditions
	for i, v := range vals {
		switch start + i {
		case HROutdoorTemperature:
			cond.OutdoorTemp = decodeTemp(v)
		case HRIndoorTemperature:
			cond.IndoorTemp = decodeTemp(v)
		default:
			return &mbserver.IllegalDataAddress
		}
	}
	if err := c.svc.SetConditions(cond); err != nil {
		c.log.Debug("rejected register write", "addr", start, "quantity", len(vals), "err", err)
		return &mbserver.IllegalDataValue
	}
	return nil
}

// readRegisters answers a read request (start, quantity) from a register table.
func readRegisters(data []byte, regs []uint16) ([]byte, *mbserver.Exception) {
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := int(binary.BigEndian.Uint16(data[0:2]))
	qty := int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > 125 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	if start+qty > len(regs) {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	byteCount := qty * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs[start : start+qty] {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp, &mbserver.Success
}

func holdingRegisters(s estimator.Snapshot) []uint16 {
	regs := make([]uint16, holdingRegisterCount)
	regs[HROutdoorTemperature] = encodeTemp(s.Conditions.OutdoorTemp)
	regs[HRIndoorTemperature] = encodeTemp(s.Conditions.IndoorTemp)
	return regs
}

func inputRegisters(s estimator.Snapshot) []uint16 {
	regs := make([]uint16, inputRegisterCount)
	putWatts(regs[IRHeatLoss:], s.Report.HeatLoss)
	putWatts(regs[IRHeatGain:], s.Report.HeatGain)
	putWatts(regs[IRCoolingLoad:], s.Report.CoolingLoad)
	putWatts(regs[IRHeatingLoad:], s.Report.HeatingLoad)
	regs[IRFloorCount] = clampUint16(len(s.Building.Floors))
	regs[IRRoomCount] = clampUint16(s.Building.RoomCount())
	return regs
}

const TemperatureScale int = 100

func encodeTemp(v float64) uint16 {
	r := min(max(int(math.Round(v*float64(TemperatureScale))), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeTemp(u uint16) float64 {
	i := int16(u)
	return float64(i) / float64(TemperatureScale)
}

// encodeWatts rounds to whole watts and clamps to the int32 range. NaN encodes as 0.
func encodeWatts(v float64) uint32 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r > math.MaxInt32 {
		r = math.MaxInt32
	}
	if r < math.MinInt32 {
		r = math.MinInt32
	}
	return uint32(int32(r))
}

func decodeWatts(hi, lo uint16) float64 {
	return float64(int32(uint32(hi)<<16 | uint32(lo)))
}

func putWatts(regs []uint16, v float64) {
	w := encodeWatts(v)
	regs[0] = uint16(w >> 16)
	regs[1] = uint16(w)
}

func clampUint16(n int) uint16 {
	return uint16(min(max(n, 0), math.MaxUint16))
}
