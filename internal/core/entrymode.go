package core

import "fmt"

// DataEntryMode selects which of price, volume, and total cost the entry
// form derives from the other two.
type DataEntryMode int

const (
	CalculatePrice DataEntryMode = iota
	CalculateVolume
	CalculateCost
)

// ParseDataEntryMode converts a configuration tag to a DataEntryMode.
func ParseDataEntryMode(s string) (DataEntryMode, error) {
	switch s {
	case "calculate_price":
		return CalculatePrice, nil
	case "calculate_volume":
		return CalculateVolume, nil
	case "calculate_cost":
		return CalculateCost, nil
	}
	return CalculatePrice, fmt.Errorf("unknown data entry mode %q", s)
}

func (m DataEntryMode) String() string {
	switch m {
	case CalculatePrice:
		return "calculate_price"
	case CalculateVolume:
		return "calculate_volume"
	case CalculateCost:
		return "calculate_cost"
	}
	return "unknown"
}

// DeriveCost computes total cost from unit price and volume.
func DeriveCost(price, volume float64) (float64, error) {
	cost := price * volume
	if cost < 0 || cost > MaxCost {
		return 0, fmt.Errorf("%w: cost %.3f", ErrOutOfRange, cost)
	}
	return cost, nil
}

// DeriveVolume computes volume from total cost and unit price. A zero price
// yields zero.
func DeriveVolume(cost, price float64) (float64, error) {
	if price == 0 {
		return 0, nil
	}
	volume := cost / price
	if volume < 0 || volume > MaxVolume {
		return 0, fmt.Errorf("%w: volume %.3f", ErrOutOfRange, volume)
	}
	return volume, nil
}

// DerivePrice computes unit price from total cost and volume. A zero volume
// yields zero.
func DerivePrice(cost, volume float64) (float64, error) {
	if volume == 0 {
		return 0, nil
	}
	price := cost / volume
	if price < 0 || price > MaxPrice {
		return 0, fmt.Errorf("%w: price %.3f", ErrOutOfRange, price)
	}
	return price, nil
}
