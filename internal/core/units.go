package core

import "fmt"

// UnitSystem selects the units used for odometer distance, purchased fuel
// volume, and the derived fuel-efficiency figure.
type UnitSystem int

const (
	MilesPerGallon UnitSystem = iota
	KilometersPerLiter
	LitersPer100Kilometers
	UKMPGMilesLiters
	UKMPGKilometersLiters
	KilometersPerGallon
)

const (
	imperialGallonsPerLiter = 0.219969
	milesPerKilometer       = 0.621371
)

// default tank capacities used when a vehicle does not specify one
const (
	defaultTankGallons = 16.0
	defaultTankLiters  = 60.0
)

// ParseUnitSystem converts a configuration tag to a UnitSystem.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch s {
	case "mpg_us":
		return MilesPerGallon, nil
	case "km_per_l":
		return KilometersPerLiter, nil
	case "l_per_100km":
		return LitersPer100Kilometers, nil
	case "mpg_uk_mi_l":
		return UKMPGMilesLiters, nil
	case "mpg_uk_km_l":
		return UKMPGKilometersLiters, nil
	case "km_per_gal":
		return KilometersPerGallon, nil
	}
	return MilesPerGallon, fmt.Errorf("unknown unit system %q", s)
}

func (u UnitSystem) String() string {
	switch u {
	case MilesPerGallon:
		return "mpg_us"
	case KilometersPerLiter:
		return "km_per_l"
	case LitersPer100Kilometers:
		return "l_per_100km"
	case UKMPGMilesLiters:
		return "mpg_uk_mi_l"
	case UKMPGKilometersLiters:
		return "mpg_uk_km_l"
	case KilometersPerGallon:
		return "km_per_gal"
	}
	return "unknown"
}

// DistanceLabel returns the odometer unit name.
func (u UnitSystem) DistanceLabel() string {
	switch u {
	case MilesPerGallon, UKMPGMilesLiters:
		return "miles"
	default:
		return "kilometers"
	}
}

// VolumeLabel returns the fuel volume unit name.
func (u UnitSystem) VolumeLabel() string {
	switch u {
	case MilesPerGallon, KilometersPerGallon:
		return "gallons"
	default:
		return "liters"
	}
}

// EfficiencyLabel returns the label shown next to efficiency values.
func (u UnitSystem) EfficiencyLabel() string {
	switch u {
	case MilesPerGallon, UKMPGMilesLiters, UKMPGKilometersLiters:
		return "mpg"
	case KilometersPerLiter:
		return "km/L"
	case LitersPer100Kilometers:
		return "L/100km"
	case KilometersPerGallon:
		return "km/gal"
	}
	return "?"
}

// VolumeRatioLabel returns the per-volume label used for prices.
func (u UnitSystem) VolumeRatioLabel() string {
	switch u {
	case MilesPerGallon, KilometersPerGallon:
		return "per gallon"
	default:
		return "per liter"
	}
}

// DistanceRatioLabel returns the per-distance label used for running costs.
func (u UnitSystem) DistanceRatioLabel() string {
	switch u {
	case MilesPerGallon, UKMPGMilesLiters:
		return "per mile"
	default:
		return "per kilometer"
	}
}

// DefaultTankCapacity returns a typical tank size in the system's volume unit.
func (u UnitSystem) DefaultTankCapacity() float32 {
	switch u {
	case MilesPerGallon, KilometersPerGallon:
		return defaultTankGallons
	default:
		return defaultTankLiters
	}
}

// Efficiency computes fuel efficiency for a distance driven and a volume
// consumed. A zero distance or zero volume yields zero.
func (u UnitSystem) Efficiency(distance int, volume float32) float32 {
	if distance <= 0 || volume <= 0 {
		return 0
	}
	d := float32(distance)
	switch u {
	case MilesPerGallon, KilometersPerLiter, KilometersPerGallon:
		return d / volume
	case LitersPer100Kilometers:
		return (volume * 100) / d
	case UKMPGMilesLiters:
		return d / (volume * imperialGallonsPerLiter)
	case UKMPGKilometersLiters:
		return (d * milesPerKilometer) / (volume * imperialGallonsPerLiter)
	}
	return 0
}
