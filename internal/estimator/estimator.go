package estimator

import (
	"sync"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/load"
)

// Snapshot is a consistent copy of the estimator state and the report
// computed from it.
type Snapshot struct {
	Building   building.Building
	Conditions building.DesignConditions
	Report     load.Report
}

// Estimator holds the building currently being edited. Setters validate
// their input and leave the state untouched on error.
type Estimator struct {
	mu sync.RWMutex
	b  building.Building
	c  building.DesignConditions
}

func New(b building.Building, c building.DesignConditions) (*Estimator, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{b: b.Clone(), c: c}, nil
}

// DefaultRoom is the room appended when a room count grows.
func DefaultRoom() building.Room {
	return building.Room{
		Length:        5,
		Width:         5,
		Height:        3,
		WindowArea:    2,
		NumPeople:     2,
		LightingLoad:  100,
		ApplianceLoad: 200,
	}
}

// DefaultFloors is the sample layout shown before the user edits anything.
func DefaultFloors() []building.Floor {
	return []building.Floor{
		{Rooms: []building.Room{DefaultRoom()}},
		{Rooms: []building.Room{
			{Length: 6, Width: 5, Height: 3, WindowArea: 2, NumPeople: 2, LightingLoad: 100, ApplianceLoad: 200},
			{Length: 5, Width: 5, Height: 3, WindowArea: 2, NumPeople: 2, LightingLoad: 123.4, ApplianceLoad: 200.2},
		}},
	}
}

func (e *Estimator) Get() Snapshot {
	e.mu.RLock()
	b := e.b.Clone()
	c := e.c
	e.mu.RUnlock()
	return Snapshot{Building: b, Conditions: c, Report: load.Estimate(b, c)}
}

func (e *Estimator) SetConditions(c building.DesignConditions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.c = c
	return nil
}

func (e *Estimator) SetOutdoorTemperature(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c
	c.OutdoorTemp = v
	if err := c.Validate(); err != nil {
		return err
	}
	e.c = c
	return nil
}

func (e *Estimator) SetIndoorTemperature(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.c
	c.IndoorTemp = v
	if err := c.Validate(); err != nil {
		return err
	}
	e.c = c
	return nil
}

func (e *Estimator) SetEnvelope(env building.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.b.Envelope = env
	return nil
}

func (e *Estimator) SetLocation(l building.Location) error {
	if err := l.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.b.Location = l
	return nil
}

// SetFloors replaces the whole layout.
func (e *Estimator) SetFloors(floors []building.Floor) error {
	candidate := building.Building{Floors: floors}
	if err := candidate.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.b.Floors = building.CloneFloors(floors)
	return nil
}

// SetRoom replaces one room, addressed by 0-based indexes.
func (e *Estimator) SetRoom(floor, room int, r building.Room) error {
	if err := r.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if floor < 0 || floor >= len(e.b.Floors) {
		return ErrFloorOutOfRange
	}
	if room < 0 || room >= len(e.b.Floors[floor].Rooms) {
		return ErrRoomOutOfRange
	}
	e.b.Floors[floor].Rooms[room] = r
	return nil
}

// SetFloorCount grows the layout with single-room floors or truncates it.
func (e *Estimator) SetFloorCount(n int) error {
	if n < 1 {
		return ErrInvalidCount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= len(e.b.Floors) {
		e.b.Floors = e.b.Floors[:n:n]
		return nil
	}
	for len(e.b.Floors) < n {
		e.b.Floors = append(e.b.Floors, building.Floor{Rooms: []building.Room{DefaultRoom()}})
	}
	return nil
}

// SetRoomCount grows a floor with default rooms or truncates it.
func (e *Estimator) SetRoomCount(floor, n int) error {
	if n < 1 {
		return ErrInvalidCount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if floor < 0 || floor >= len(e.b.Floors) {
		return ErrFloorOutOfRange
	}
	rooms := e.b.Floors[floor].Rooms
	if n <= len(rooms) {
		e.b.Floors[floor].Rooms = rooms[:n:n]
		return nil
	}
	for len(rooms) < n {
		rooms = append(rooms, DefaultRoom())
	}
	e.b.Floors[floor].Rooms = rooms
	return nil
}
