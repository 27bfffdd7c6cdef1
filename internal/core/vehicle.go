package core

import (
	"fmt"
	"regexp"
)

const (
	MinVehicleNameLength = 1
	MaxVehicleNameLength = 20
	MaxTankCapacity      = 1000.0
)

// Vehicle names become export file basenames, so they are restricted to a
// filesystem-safe alphabet.
var vehicleNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9- ]*$`)

// Vehicle is a tracked vehicle. Identity is the repository-assigned ID;
// a zero ID means the vehicle has not been stored yet.
type Vehicle struct {
	ID           int64
	Name         string
	TankCapacity float32
}

// NewVehicle returns a vehicle with the typical tank capacity for the
// given unit system.
func NewVehicle(name string, units UnitSystem) Vehicle {
	return Vehicle{
		Name:         name,
		TankCapacity: units.DefaultTankCapacity(),
	}
}

func (v Vehicle) Validate() error {
	if len(v.Name) < MinVehicleNameLength || len(v.Name) > MaxVehicleNameLength {
		return fmt.Errorf("%w: length must be %d-%d characters",
			ErrInvalidName, MinVehicleNameLength, MaxVehicleNameLength)
	}
	if !vehicleNameRE.MatchString(v.Name) {
		return fmt.Errorf("%w: %q is not a safe file name", ErrInvalidName, v.Name)
	}
	if v.TankCapacity <= 0 || v.TankCapacity > MaxTankCapacity {
		return fmt.Errorf("%w: tank capacity %.1f", ErrOutOfRange, v.TankCapacity)
	}
	return nil
}

func (v Vehicle) String() string {
	return v.Name
}
