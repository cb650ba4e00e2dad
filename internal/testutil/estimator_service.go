package testutil

import (
	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
	"github.com/Agrid-Dev/hvacrux/internal/load"
)

// FakeEstimatorService is a reusable fake implementing ports.EstimatorService.
// Put ONLY what multiple test packages need here. Get recomputes the report
// from the fake's state so controllers see real numbers.
type FakeEstimatorService struct {
	B building.Building
	C building.DesignConditions

	SetConditionsCalled bool
	SetConditionsArg    building.DesignConditions
	SetConditionsErr    error

	SetOutdoorCalled bool
	SetOutdoorArg    float64
	SetOutdoorErr    error

	SetIndoorCalled bool
	SetIndoorArg    float64
	SetIndoorErr    error

	SetEnvelopeCalled bool
	SetEnvelopeArg    building.Envelope
	SetEnvelopeErr    error

	SetLocationCalled bool
	SetLocationArg    building.Location
	SetLocationErr    error

	SetFloorsCalled bool
	SetFloorsArg    []building.Floor
	SetFloorsErr    error

	SetRoomCalled bool
	SetRoomFloor  int
	SetRoomIndex  int
	SetRoomArg    building.Room
	SetRoomErr    error

	SetFloorCountCalled bool
	SetFloorCountArg    int
	SetFloorCountErr    error

	SetRoomCountCalled bool
	SetRoomCountFloor  int
	SetRoomCountArg    int
	SetRoomCountErr    error
}

func NewFakeEstimatorService() *FakeEstimatorService {
	return &FakeEstimatorService{
		B: building.Building{
			Floors:   estimator.DefaultFloors(),
			Envelope: building.Envelope{WallArea: 100, WallUValue: 0.3, RoofArea: 40, RoofUValue: 0.2, WindowUValue: 2.0},
			Location: building.Location{Latitude: 37.7749, Longitude: -122.4194, Elevation: 50},
		},
		C: building.DesignConditions{OutdoorTemp: -10, IndoorTemp: 22},
	}
}

func (f *FakeEstimatorService) Get() estimator.Snapshot {
	b := f.B.Clone()
	return estimator.Snapshot{Building: b, Conditions: f.C, Report: load.Estimate(b, f.C)}
}

func (f *FakeEstimatorService) SetConditions(c building.DesignConditions) error {
	f.SetConditionsCalled = true
	f.SetConditionsArg = c
	if f.SetConditionsErr != nil {
		return f.SetConditionsErr
	}
	f.C = c
	return nil
}

func (f *FakeEstimatorService) SetOutdoorTemperature(v float64) error {
	f.SetOutdoorCalled = true
	f.SetOutdoorArg = v
	if f.SetOutdoorErr != nil {
		return f.SetOutdoorErr
	}
	f.C.OutdoorTemp = v
	return nil
}

func (f *FakeEstimatorService) SetIndoorTemperature(v float64) error {
	f.SetIndoorCalled = true
	f.SetIndoorArg = v
	if f.SetIndoorErr != nil {
		return f.SetIndoorErr
	}
	f.C.IndoorTemp = v
	return nil
}

func (f *FakeEstimatorService) SetEnvelope(e building.Envelope) error {
	f.SetEnvelopeCalled = true
	f.SetEnvelopeArg = e
	if f.SetEnvelopeErr != nil {
		return f.SetEnvelopeErr
	}
	f.B.Envelope = e
	return nil
}

func (f *FakeEstimatorService) SetLocation(l building.Location) error {
	f.SetLocationCalled = true
	f.SetLocationArg = l
	if f.SetLocationErr != nil {
		return f.SetLocationErr
	}
	f.B.Location = l
	return nil
}

func (f *FakeEstimatorService) SetFloors(floors []building.Floor) error {
	f.SetFloorsCalled = true
	f.SetFloorsArg = floors
	if f.SetFloorsErr != nil {
		return f.SetFloorsErr
	}
	f.B.Floors = building.CloneFloors(floors)
	return nil
}

func (f *FakeEstimatorService) SetRoom(floor, room int, r building.Room) error {
	f.SetRoomCalled = true
	f.SetRoomFloor = floor
	f.SetRoomIndex = room
	f.SetRoomArg = r
	if f.SetRoomErr != nil {
		return f.SetRoomErr
	}
	if floor < 0 || floor >= len(f.B.Floors) {
		return estimator.ErrFloorOutOfRange
	}
	if room < 0 || room >= len(f.B.Floors[floor].Rooms) {
		return estimator.ErrRoomOutOfRange
	}
	f.B.Floors[floor].Rooms[room] = r
	return nil
}

func (f *FakeEstimatorService) SetFloorCount(n int) error {
	f.SetFloorCountCalled = true
	f.SetFloorCountArg = n
	return f.SetFloorCountErr
}

func (f *FakeEstimatorService) SetRoomCount(floor, n int) error {
	f.SetRoomCountCalled = true
	f.SetRoomCountFloor = floor
	f.SetRoomCountArg = n
	return f.SetRoomCountErr
}
