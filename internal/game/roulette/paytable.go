package roulette

import "fmt"

// Outcomes is the number of pockets on a single-zero wheel.
const Outcomes = 37

// PaytableSize is the number of bet shapes produced by buildPaytable.
const PaytableSize = 157

// Kind groups shapes that share a payout multiplier.
type Kind uint8

const (
	KindStraight Kind = iota
	KindSplit
	KindStreet
	KindCorner
	KindSixLine
	KindTrio
	KindFirstFour
	KindColumn
	KindDozen
	KindEvenMoney
)

// multiplier is the gross payout per unit staked, stake included.
var multiplier = map[Kind]uint64{
	KindStraight:  36,
	KindSplit:     18,
	KindStreet:    12,
	KindCorner:    9,
	KindSixLine:   6,
	KindTrio:      12,
	KindFirstFour: 9,
	KindColumn:    3,
	KindDozen:     3,
	KindEvenMoney: 2,
}

// Shape is a set of covered pockets with its gross multiplier.
type Shape struct {
	Name       string
	Kind       Kind
	Covers     uint64 // bit i set => pocket i covered
	Multiplier uint64
}

func (s Shape) Covered(pocket uint8) bool {
	return s.Covers&(1<<pocket) != 0
}

var redPockets = map[uint8]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func IsRed(pocket uint8) bool {
	return redPockets[pocket]
}

func mask(pockets ...uint8) uint64 {
	var m uint64
	for _, p := range pockets {
		m |= 1 << p
	}
	return m
}

func maskWhere(pred func(p uint8) bool) uint64 {
	var m uint64
	for p := uint8(1); p <= 36; p++ {
		if pred(p) {
			m |= 1 << p
		}
	}
	return m
}

// buildPaytable derives every standard European bet shape from the table
// layout (three columns, twelve rows, numbers n..n+2 per row). The order is
// part of the wire format: shape indexes in encoded bets refer to it.
func buildPaytable() []Shape {
	shapes := make([]Shape, 0, PaytableSize)
	add := func(kind Kind, name string, m uint64) {
		shapes = append(shapes, Shape{Name: name, Kind: kind, Covers: m, Multiplier: multiplier[kind]})
	}

	// Straight-up 0..36.
	for p := uint8(0); p < Outcomes; p++ {
		add(KindStraight, fmt.Sprintf("straight-%d", p), mask(p))
	}

	// Splits: zero against the first row, then for each number its right and
	// lower neighbour.
	for p := uint8(1); p <= 3; p++ {
		add(KindSplit, fmt.Sprintf("split-0-%d", p), mask(0, p))
	}
	for n := uint8(1); n <= 36; n++ {
		if n%3 != 0 {
			add(KindSplit, fmt.Sprintf("split-%d-%d", n, n+1), mask(n, n+1))
		}
		if n <= 33 {
			add(KindSplit, fmt.Sprintf("split-%d-%d", n, n+3), mask(n, n+3))
		}
	}

	// Streets.
	for row := uint8(0); row < 12; row++ {
		n := row*3 + 1
		add(KindStreet, fmt.Sprintf("street-%d", n), mask(n, n+1, n+2))
	}

	// Corners: top-left cell of every 2x2 block.
	for row := uint8(0); row < 11; row++ {
		for col := uint8(0); col < 2; col++ {
			n := row*3 + 1 + col
			add(KindCorner, fmt.Sprintf("corner-%d", n), mask(n, n+1, n+3, n+4))
		}
	}

	// Six-lines: two adjacent streets.
	for row := uint8(0); row < 11; row++ {
		n := row*3 + 1
		add(KindSixLine, fmt.Sprintf("sixline-%d", n), mask(n, n+1, n+2, n+3, n+4, n+5))
	}

	add(KindTrio, "trio-0-1-2", mask(0, 1, 2))
	add(KindTrio, "trio-0-2-3", mask(0, 2, 3))
	add(KindFirstFour, "first-four", mask(0, 1, 2, 3))

	for col := uint8(1); col <= 3; col++ {
		c := col
		add(KindColumn, fmt.Sprintf("column-%d", col), maskWhere(func(p uint8) bool { return (p-1)%3 == c-1 }))
	}
	for dz := uint8(1); dz <= 3; dz++ {
		lo, hi := (dz-1)*12+1, dz*12
		add(KindDozen, fmt.Sprintf("dozen-%d", dz), maskWhere(func(p uint8) bool { return p >= lo && p <= hi }))
	}

	add(KindEvenMoney, "red", maskWhere(IsRed))
	add(KindEvenMoney, "black", maskWhere(func(p uint8) bool { return !IsRed(p) }))
	add(KindEvenMoney, "odd", maskWhere(func(p uint8) bool { return p%2 == 1 }))
	add(KindEvenMoney, "even", maskWhere(func(p uint8) bool { return p%2 == 0 }))
	add(KindEvenMoney, "low", maskWhere(func(p uint8) bool { return p <= 18 }))
	add(KindEvenMoney, "high", maskWhere(func(p uint8) bool { return p >= 19 }))

	if len(shapes) != PaytableSize {
		panic(fmt.Sprintf("roulette: paytable has %d shapes, want %d", len(shapes), PaytableSize))
	}
	return shapes
}
