package ports

import (
	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
)

// EstimatorService is the port used by controllers (HTTP/MQTT/Modbus) to
// read and edit the current building.
type EstimatorService interface {
	Get() estimator.Snapshot
	SetConditions(building.DesignConditions) error
	SetOutdoorTemperature(float64) error
	SetIndoorTemperature(float64) error
	SetEnvelope(building.Envelope) error
	SetLocation(building.Location) error
	SetFloors([]building.Floor) error
	SetRoom(floor, room int, r building.Room) error
	SetFloorCount(int) error
	SetRoomCount(floor, n int) error
}
