package building

import (
	"fmt"
	"math"
)

// Room is a single conditioned space. Dimensions in meters, loads in watts.
type Room struct {
	Length        float64
	Width         float64
	Height        float64
	WindowArea    float64 // m^2
	NumPeople     uint32
	LightingLoad  float64
	ApplianceLoad float64
}

func (r Room) Volume() float64 {
	return r.Length * r.Width * r.Height
}

func (r Room) Validate() error {
	if !finite(r.Length, r.Width, r.Height, r.WindowArea, r.LightingLoad, r.ApplianceLoad) {
		return ErrNonFinite
	}
	if r.Length < 0 || r.Width < 0 || r.Height < 0 || r.WindowArea < 0 {
		return ErrNegativeDimension
	}
	if r.LightingLoad < 0 || r.ApplianceLoad < 0 {
		return ErrNegativeLoad
	}
	return nil
}

// Floor is an ordered list of rooms. An empty floor contributes nothing.
type Floor struct {
	Rooms []Room
}

// Envelope holds thermal properties applied to the whole building.
// WindowUValue is combined with each room's own window area.
type Envelope struct {
	WallArea     float64 // m^2
	WallUValue   float64 // W/(m^2*K)
	RoofArea     float64 // m^2
	RoofUValue   float64 // W/(m^2*K)
	WindowUValue float64 // W/(m^2*K)
}

// EnvelopeFromMaterials builds an envelope whose U-values come from the
// material catalogs.
func EnvelopeFromMaterials(wallArea float64, wall WallMaterial, roofArea float64, roof RoofMaterial, window WindowMaterial) (Envelope, error) {
	if !wall.Valid() || !roof.Valid() || !window.Valid() {
		return Envelope{}, ErrInvalidMaterial
	}
	return Envelope{
		WallArea:     wallArea,
		WallUValue:   wall.UValue(),
		RoofArea:     roofArea,
		RoofUValue:   roof.UValue(),
		WindowUValue: window.UValue(),
	}, nil
}

func (e Envelope) Validate() error {
	if !finite(e.WallArea, e.WallUValue, e.RoofArea, e.RoofUValue, e.WindowUValue) {
		return ErrNonFinite
	}
	if e.WallArea < 0 || e.RoofArea < 0 {
		return ErrNegativeArea
	}
	if e.WallUValue < 0 || e.RoofUValue < 0 || e.WindowUValue < 0 {
		return ErrNegativeUValue
	}
	return nil
}

// Location is descriptive only; no calculation reads it yet.
type Location struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Elevation float64 // meters
}

func (l Location) Validate() error {
	if !finite(l.Latitude, l.Longitude, l.Elevation) {
		return ErrNonFinite
	}
	return nil
}

// DesignConditions is the temperature snapshot (Celsius) a load estimate is made for.
type DesignConditions struct {
	OutdoorTemp float64
	IndoorTemp  float64
}

func (c DesignConditions) DeltaT() float64 {
	return c.IndoorTemp - c.OutdoorTemp
}

func (c DesignConditions) Validate() error {
	if !finite(c.OutdoorTemp, c.IndoorTemp) {
		return ErrNonFinite
	}
	return nil
}

type Building struct {
	Floors   []Floor
	Envelope Envelope
	Location Location
}

func (b Building) RoomCount() int {
	n := 0
	for _, f := range b.Floors {
		n += len(f.Rooms)
	}
	return n
}

// Validate reports the first invalid room (1-based floor/room numbers, as
// displayed to users), then envelope and location errors.
func (b Building) Validate() error {
	for i, f := range b.Floors {
		for j, r := range f.Rooms {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("floor %d room %d: %w", i+1, j+1, err)
			}
		}
	}
	if err := b.Envelope.Validate(); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	if err := b.Location.Validate(); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	return nil
}

// Clone returns a deep copy that shares no slices with b.
func (b Building) Clone() Building {
	out := b
	out.Floors = CloneFloors(b.Floors)
	return out
}

func CloneFloors(floors []Floor) []Floor {
	if floors == nil {
		return nil
	}
	out := make([]Floor, len(floors))
	for i, f := range floors {
		out[i].Rooms = append([]Room(nil), f.Rooms...)
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
