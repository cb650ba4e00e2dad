package estimator

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/load"
)

func assertError(t *testing.T, err error, expected error) {
	t.Helper()
	if !errors.Is(err, expected) {
		t.Fatalf("expected %v, got %v", expected, err)
	}
}

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

func newTestBuilding(opts ...func(*building.Building)) building.Building {
	b := building.Building{
		Floors:   DefaultFloors(),
		Envelope: building.Envelope{WallArea: 100, WallUValue: 0.3, RoofArea: 40, RoofUValue: 0.2, WindowUValue: 2.0},
		Location: building.Location{Latitude: 37.7749, Longitude: -122.4194, Elevation: 50},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func newTestEstimator(t *testing.T, opts ...func(*building.Building)) *Estimator {
	t.Helper()
	e, err := New(newTestBuilding(opts...), building.DesignConditions{OutdoorTemp: -10, IndoorTemp: 22})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	b := newTestBuilding(func(b *building.Building) {
		b.Floors[1].Rooms[0].Height = -1
	})
	_, err := New(b, building.DesignConditions{})
	assertError(t, err, building.ErrNegativeDimension)

	_, err = New(newTestBuilding(), building.DesignConditions{OutdoorTemp: math.NaN()})
	assertError(t, err, building.ErrNonFinite)
}

func TestNewCopiesInput(t *testing.T) {
	b := newTestBuilding()
	e, err := New(b, building.DesignConditions{})
	if err != nil {
		t.Fatal(err)
	}
	b.Floors[0].Rooms[0].Length = 42
	assertEqual(t, "length", e.Get().Building.Floors[0].Rooms[0].Length, 5.0)
}

func TestGetComputesReport(t *testing.T) {
	e := newTestEstimator(t)
	s := e.Get()
	want := load.Estimate(s.Building, s.Conditions)
	assertEqual(t, "heat loss", s.Report.HeatLoss, want.HeatLoss)
	assertEqual(t, "heat gain", s.Report.HeatGain, want.HeatGain)
	assertEqual(t, "cooling", s.Report.CoolingLoad, -s.Report.HeatingLoad)
}

func TestGetReturnsCopy(t *testing.T) {
	e := newTestEstimator(t)
	s := e.Get()
	s.Building.Floors[0].Rooms[0].NumPeople = 99
	assertEqual(t, "people", e.Get().Building.Floors[0].Rooms[0].NumPeople, uint32(2))
}

func TestSetConditions(t *testing.T) {
	e := newTestEstimator(t)
	if err := e.SetConditions(building.DesignConditions{OutdoorTemp: 35, IndoorTemp: 24}); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "conditions", e.Get().Conditions, building.DesignConditions{OutdoorTemp: 35, IndoorTemp: 24})

	err := e.SetConditions(building.DesignConditions{OutdoorTemp: math.Inf(1)})
	assertError(t, err, building.ErrNonFinite)
	assertEqual(t, "outdoor", e.Get().Conditions.OutdoorTemp, 35.0)
}

func TestSetTemperatures(t *testing.T) {
	e := newTestEstimator(t)
	if err := e.SetOutdoorTemperature(-5); err != nil {
		t.Fatal(err)
	}
	if err := e.SetIndoorTemperature(20); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "conditions", e.Get().Conditions, building.DesignConditions{OutdoorTemp: -5, IndoorTemp: 20})

	assertError(t, e.SetIndoorTemperature(math.NaN()), building.ErrNonFinite)
	assertEqual(t, "indoor", e.Get().Conditions.IndoorTemp, 20.0)
}

func TestSetEnvelope(t *testing.T) {
	e := newTestEstimator(t)
	env := building.Envelope{WallArea: 600, WallUValue: 0.064, RoofArea: 1200, RoofUValue: 0.035, WindowUValue: 0.35}
	if err := e.SetEnvelope(env); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "envelope", e.Get().Building.Envelope, env)

	assertError(t, e.SetEnvelope(building.Envelope{RoofUValue: -1}), building.ErrNegativeUValue)
	assertEqual(t, "envelope", e.Get().Building.Envelope, env)
}

func TestSetLocation(t *testing.T) {
	e := newTestEstimator(t)
	loc := building.Location{Latitude: 48.85, Longitude: 2.35, Elevation: 35}
	if err := e.SetLocation(loc); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "location", e.Get().Building.Location, loc)
	assertError(t, e.SetLocation(building.Location{Elevation: math.NaN()}), building.ErrNonFinite)
}

func TestSetFloors(t *testing.T) {
	e := newTestEstimator(t)
	floors := []building.Floor{{Rooms: []building.Room{{Length: 3, Width: 3, Height: 2.5}}}}
	if err := e.SetFloors(floors); err != nil {
		t.Fatal(err)
	}
	floors[0].Rooms[0].Length = 100
	got := e.Get().Building
	assertEqual(t, "floors", len(got.Floors), 1)
	assertEqual(t, "length", got.Floors[0].Rooms[0].Length, 3.0)

	bad := []building.Floor{{Rooms: []building.Room{{LightingLoad: -1}}}}
	assertError(t, e.SetFloors(bad), building.ErrNegativeLoad)
	assertEqual(t, "floors", len(e.Get().Building.Floors), 1)
}

func TestSetFloorsEmptyIsAllowed(t *testing.T) {
	e := newTestEstimator(t)
	if err := e.SetFloors(nil); err != nil {
		t.Fatal(err)
	}
	s := e.Get()
	assertEqual(t, "heat loss", s.Report.HeatLoss, 0.0)
	assertEqual(t, "heat gain", s.Report.HeatGain, 0.0)
}

func TestSetRoom(t *testing.T) {
	e := newTestEstimator(t)
	r := building.Room{Length: 7, Width: 4, Height: 2.7, NumPeople: 5}
	if err := e.SetRoom(1, 1, r); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "room", e.Get().Building.Floors[1].Rooms[1], r)

	assertError(t, e.SetRoom(2, 0, r), ErrFloorOutOfRange)
	assertError(t, e.SetRoom(-1, 0, r), ErrFloorOutOfRange)
	assertError(t, e.SetRoom(0, 1, r), ErrRoomOutOfRange)
	assertError(t, e.SetRoom(0, 0, building.Room{Width: -2}), building.ErrNegativeDimension)
}

func TestSetFloorCount(t *testing.T) {
	e := newTestEstimator(t)

	if err := e.SetFloorCount(4); err != nil {
		t.Fatal(err)
	}
	floors := e.Get().Building.Floors
	assertEqual(t, "floors", len(floors), 4)
	assertEqual(t, "rooms on new floor", len(floors[3].Rooms), 1)
	assertEqual(t, "default room", floors[3].Rooms[0], DefaultRoom())

	if err := e.SetFloorCount(1); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "floors", len(e.Get().Building.Floors), 1)

	assertError(t, e.SetFloorCount(0), ErrInvalidCount)
}

func TestSetRoomCount(t *testing.T) {
	e := newTestEstimator(t)

	if err := e.SetRoomCount(0, 3); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "rooms", len(e.Get().Building.Floors[0].Rooms), 3)

	if err := e.SetRoomCount(1, 1); err != nil {
		t.Fatal(err)
	}
	rooms := e.Get().Building.Floors[1].Rooms
	assertEqual(t, "rooms", len(rooms), 1)
	assertEqual(t, "kept room length", rooms[0].Length, 6.0)

	assertError(t, e.SetRoomCount(5, 1), ErrFloorOutOfRange)
	assertError(t, e.SetRoomCount(0, 0), ErrInvalidCount)
}

func TestShrinkThenGrowDoesNotResurrectRooms(t *testing.T) {
	e := newTestEstimator(t)
	if err := e.SetRoomCount(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.SetRoomCount(1, 2); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "grown room", e.Get().Building.Floors[1].Rooms[1], DefaultRoom())
}

func TestConcurrentAccess(t *testing.T) {
	e := newTestEstimator(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = e.SetOutdoorTemperature(float64(i))
			_ = e.SetRoomCount(0, i%3+1)
		}(i)
		go func() {
			defer wg.Done()
			s := e.Get()
			if s.Report.CoolingLoad != -s.Report.HeatingLoad {
				t.Errorf("inconsistent report: %+v", s.Report)
			}
		}()
	}
	wg.Wait()
}
