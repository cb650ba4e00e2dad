// Package load derives heating and cooling load estimates from a building
// description. All functions are pure and safe for concurrent use; inputs
// are not validated and non-finite values propagate.
package load

import "github.com/Agrid-Dev/hvacrux/internal/building"

const (
	AirChangesPerHour    = 0.5    // 1/h
	AirDensity           = 1.225  // kg/m^3, at 20°C and 1 atm
	SpecificHeatCapacity = 1005.0 // J/(kg*K)
	SecondsPerHour       = 3600.0

	PeopleHeatGain      = 75.0 // W per person
	LightingLoadFactor  = 1.25
	ApplianceLoadFactor = 0.6
)

// RoomLoss is the heat loss attributed to one room, in watts.
type RoomLoss struct {
	Wall         float64
	Roof         float64
	Window       float64
	Infiltration float64
}

func (l RoomLoss) Total() float64 {
	return l.Wall + l.Roof + l.Window + l.Infiltration
}

// RoomGain is the internal heat gain of one room, in watts.
type RoomGain struct {
	People    float64
	Lighting  float64
	Appliance float64
}

func (g RoomGain) Total() float64 {
	return g.People + g.Lighting + g.Appliance
}

// RoomHeatLoss computes the loss terms of one room. Wall and roof terms use
// the whole-building envelope areas, so each room carries the full envelope.
func RoomHeatLoss(env building.Envelope, r building.Room, c building.DesignConditions) RoomLoss {
	dt := c.IndoorTemp - c.OutdoorTemp
	return RoomLoss{
		Wall:         env.WallUValue * env.WallArea * dt,
		Roof:         env.RoofUValue * env.RoofArea * dt,
		Window:       env.WindowUValue * r.WindowArea * dt,
		Infiltration: InfiltrationLoad(r, c),
	}
}

// HeatLoss sums RoomHeatLoss over every room of every floor.
// TODO: wall and roof losses are added once per room, which multiplies the
// envelope contribution by the room count; split them out once the
// expected figures are confirmed.
func HeatLoss(b building.Building, c building.DesignConditions) float64 {
	total := 0.0
	for _, f := range b.Floors {
		for _, r := range f.Rooms {
			total += RoomHeatLoss(b.Envelope, r, c).Total()
		}
	}
	return total
}

// InfiltrationLoad models uncontrolled air exchange through the room volume.
func InfiltrationLoad(r building.Room, c building.DesignConditions) float64 {
	volume := r.Length * r.Width * r.Height
	return (AirChangesPerHour * volume * AirDensity * SpecificHeatCapacity * (c.IndoorTemp - c.OutdoorTemp)) / SecondsPerHour
}

func RoomHeatGain(r building.Room) RoomGain {
	return RoomGain{
		People:    float64(r.NumPeople) * PeopleHeatGain,
		Lighting:  r.LightingLoad * LightingLoadFactor,
		Appliance: r.ApplianceLoad * ApplianceLoadFactor,
	}
}

// HeatGain only depends on occupants, lighting and appliances.
func HeatGain(b building.Building) float64 {
	total := 0.0
	for _, f := range b.Floors {
		for _, r := range f.Rooms {
			total += RoomHeatGain(r).Total()
		}
	}
	return total
}

func CoolingLoad(heatLoss, heatGain float64) float64 {
	return heatGain - heatLoss
}

func HeatingLoad(heatLoss, heatGain float64) float64 {
	return heatLoss - heatGain
}
