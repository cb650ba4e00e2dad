package load

import "github.com/Agrid-Dev/hvacrux/internal/building"

type RoomReport struct {
	Loss RoomLoss
	Gain RoomGain
}

type FloorReport struct {
	Rooms []RoomReport
}

func (f FloorReport) HeatLoss() float64 {
	total := 0.0
	for _, r := range f.Rooms {
		total += r.Loss.Total()
	}
	return total
}

func (f FloorReport) HeatGain() float64 {
	total := 0.0
	for _, r := range f.Rooms {
		total += r.Gain.Total()
	}
	return total
}

// Report is a full estimate for one building under one set of design conditions.
type Report struct {
	HeatLoss    float64
	HeatGain    float64
	CoolingLoad float64
	HeatingLoad float64
	Floors      []FloorReport
}

// Estimate computes totals and the per-floor, per-room breakdown in one pass.
// Totals equal HeatLoss and HeatGain for the same inputs.
func Estimate(b building.Building, c building.DesignConditions) Report {
	rep := Report{Floors: make([]FloorReport, len(b.Floors))}
	for i, f := range b.Floors {
		rooms := make([]RoomReport, len(f.Rooms))
		for j, r := range f.Rooms {
			rr := RoomReport{
				Loss: RoomHeatLoss(b.Envelope, r, c),
				Gain: RoomHeatGain(r),
			}
			rep.HeatLoss += rr.Loss.Total()
			rep.HeatGain += rr.Gain.Total()
			rooms[j] = rr
		}
		rep.Floors[i].Rooms = rooms
	}
	rep.CoolingLoad = CoolingLoad(rep.HeatLoss, rep.HeatGain)
	rep.HeatingLoad = HeatingLoad(rep.HeatLoss, rep.HeatGain)
	return rep
}
