package game

import "fmt"

// Chips is the fixed wager denomination ladder, in token base units
// (6 decimals). Encoded bets reference it by 4-bit index.
var Chips = [16]uint64{
	100_000,
	200_000,
	500_000,
	1_000_000,
	2_000_000,
	5_000_000,
	10_000_000,
	20_000_000,
	50_000_000,
	100_000_000,
	200_000_000,
	500_000_000,
	1_000_000_000,
	2_000_000_000,
	5_000_000_000,
	10_000_000_000,
}

func ChipValue(index uint8) (uint64, error) {
	if int(index) >= len(Chips) {
		return 0, fmt.Errorf("chip index %d out of range", index)
	}
	return Chips[index], nil
}
