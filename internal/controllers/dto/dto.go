// Package dto holds the JSON shapes shared by the HTTP and MQTT controllers.
package dto

import (
	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
	"github.com/Agrid-Dev/hvacrux/internal/load"
)

type Room struct {
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	WindowArea    float64 `json:"window_area"`
	NumPeople     uint32  `json:"num_people"`
	LightingLoad  float64 `json:"lighting_load"`
	ApplianceLoad float64 `json:"appliance_load"`
}

type Floor struct {
	Rooms []Room `json:"rooms"`
}

type Envelope struct {
	WallArea     float64 `json:"wall_area"`
	WallUValue   float64 `json:"wall_u_value"`
	RoofArea     float64 `json:"roof_area"`
	RoofUValue   float64 `json:"roof_u_value"`
	WindowUValue float64 `json:"window_u_value"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

type Conditions struct {
	OutdoorTemperature float64 `json:"outdoor_temperature"`
	IndoorTemperature  float64 `json:"indoor_temperature"`
}

type Building struct {
	Floors   []Floor  `json:"floors"`
	Envelope Envelope `json:"envelope"`
	Location Location `json:"location"`
}

type RoomLoss struct {
	Wall         float64 `json:"wall"`
	Roof         float64 `json:"roof"`
	Window       float64 `json:"window"`
	Infiltration float64 `json:"infiltration"`
	Total        float64 `json:"total"`
}

type RoomGain struct {
	People    float64 `json:"people"`
	Lighting  float64 `json:"lighting"`
	Appliance float64 `json:"appliance"`
	Total     float64 `json:"total"`
}

type RoomReport struct {
	HeatLoss RoomLoss `json:"heat_loss"`
	HeatGain RoomGain `json:"heat_gain"`
}

type FloorReport struct {
	HeatLoss float64      `json:"heat_loss"`
	HeatGain float64      `json:"heat_gain"`
	Rooms    []RoomReport `json:"rooms"`
}

type Report struct {
	HeatLoss    float64       `json:"heat_loss"`
	HeatGain    float64       `json:"heat_gain"`
	CoolingLoad float64       `json:"cooling_load"`
	HeatingLoad float64       `json:"heating_load"`
	Floors      []FloorReport `json:"floors"`
}

type Snapshot struct {
	SiteID     string     `json:"site_id"`
	Conditions Conditions `json:"conditions"`
	Envelope   Envelope   `json:"envelope"`
	Location   Location   `json:"location"`
	Floors     []Floor    `json:"floors"`
	Report     Report     `json:"report"`
}

// ---- domain -> wire ----

func FromRoom(r building.Room) Room {
	return Room{
		Length:        r.Length,
		Width:         r.Width,
		Height:        r.Height,
		WindowArea:    r.WindowArea,
		NumPeople:     r.NumPeople,
		LightingLoad:  r.LightingLoad,
		ApplianceLoad: r.ApplianceLoad,
	}
}

func FromFloors(floors []building.Floor) []Floor {
	out := make([]Floor, len(floors))
	for i, f := range floors {
		rooms := make([]Room, len(f.Rooms))
		for j, r := range f.Rooms {
			rooms[j] = FromRoom(r)
		}
		out[i] = Floor{Rooms: rooms}
	}
	return out
}

func FromEnvelope(e building.Envelope) Envelope {
	return Envelope(e)
}

func FromLocation(l building.Location) Location {
	return Location(l)
}

func FromConditions(c building.DesignConditions) Conditions {
	return Conditions{OutdoorTemperature: c.OutdoorTemp, IndoorTemperature: c.IndoorTemp}
}

func FromReport(r load.Report) Report {
	out := Report{
		HeatLoss:    r.HeatLoss,
		HeatGain:    r.HeatGain,
		CoolingLoad: r.CoolingLoad,
		HeatingLoad: r.HeatingLoad,
		Floors:      make([]FloorReport, len(r.Floors)),
	}
	for i, f := range r.Floors {
		rooms := make([]RoomReport, len(f.Rooms))
		for j, rr := range f.Rooms {
			rooms[j] = RoomReport{
				HeatLoss: RoomLoss{
					Wall:         rr.Loss.Wall,
					Roof:         rr.Loss.Roof,
					Window:       rr.Loss.Window,
					Infiltration: rr.Loss.Infiltration,
					Total:        rr.Loss.Total(),
				},
				HeatGain: RoomGain{
					People:    rr.Gain.People,
					Lighting:  rr.Gain.Lighting,
					Appliance: rr.Gain.Appliance,
					Total:     rr.Gain.Total(),
				},
			}
		}
		out.Floors[i] = FloorReport{HeatLoss: f.HeatLoss(), HeatGain: f.HeatGain(), Rooms: rooms}
	}
	return out
}

func FromSnapshot(siteID string, s estimator.Snapshot) Snapshot {
	return Snapshot{
		SiteID:     siteID,
		Conditions: FromConditions(s.Conditions),
		Envelope:   FromEnvelope(s.Building.Envelope),
		Location:   FromLocation(s.Building.Location),
		Floors:     FromFloors(s.Building.Floors),
		Report:     FromReport(s.Report),
	}
}

// ---- wire -> domain ----

func (r Room) ToDomain() building.Room {
	return building.Room{
		Length:        r.Length,
		Width:         r.Width,
		Height:        r.Height,
		WindowArea:    r.WindowArea,
		NumPeople:     r.NumPeople,
		LightingLoad:  r.LightingLoad,
		ApplianceLoad: r.ApplianceLoad,
	}
}

func ToFloors(floors []Floor) []building.Floor {
	out := make([]building.Floor, len(floors))
	for i, f := range floors {
		rooms := make([]building.Room, len(f.Rooms))
		for j, r := range f.Rooms {
			rooms[j] = r.ToDomain()
		}
		out[i] = building.Floor{Rooms: rooms}
	}
	return out
}

func (e Envelope) ToDomain() building.Envelope {
	return building.Envelope(e)
}

func (l Location) ToDomain() building.Location {
	return building.Location(l)
}

func (c Conditions) ToDomain() building.DesignConditions {
	return building.DesignConditions{OutdoorTemp: c.OutdoorTemperature, IndoorTemp: c.IndoorTemperature}
}

func (b Building) ToDomain() building.Building {
	return building.Building{
		Floors:   ToFloors(b.Floors),
		Envelope: b.Envelope.ToDomain(),
		Location: b.Location.ToDomain(),
	}
}
