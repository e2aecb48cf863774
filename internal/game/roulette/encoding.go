package roulette

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"onchainwager/internal/game"
)

// Packed layout, most significant bit first:
//
//	[10 bits game id][4 bits leg count][leg 0]...[leg n-1][zero padding]
//
// where each leg is [8 bits shape index][4 bits chip index].
const (
	legCountBits = 4
	shapeBits    = 8
	chipBits     = 4
	legBits      = shapeBits + chipBits

	legCountShift = game.GameIDShift - legCountBits
	firstLegShift = legCountShift - legBits

	MaxLegs = 1<<legCountBits - 1
)

// Leg is one wager inside an encoded bet.
type Leg struct {
	Shape uint8 // index into the paytable
	Chip  uint8 // index into game.Chips
}

// Encode packs legs for the module with the given game id.
func Encode(gameID uint16, legs []Leg) (common.Hash, error) {
	if gameID > game.MaxGameID {
		return common.Hash{}, fmt.Errorf("game id %d exceeds %d bits", gameID, game.GameIDBits)
	}
	if len(legs) == 0 || len(legs) > MaxLegs {
		return common.Hash{}, fmt.Errorf("leg count %d out of range 1..%d", len(legs), MaxLegs)
	}
	x := uint256.NewInt(uint64(gameID))
	x.Lsh(x, game.GameIDShift)
	x.Or(x, new(uint256.Int).Lsh(uint256.NewInt(uint64(len(legs))), legCountShift))
	for i, leg := range legs {
		if int(leg.Shape) >= PaytableSize {
			return common.Hash{}, fmt.Errorf("leg %d: shape %d out of range", i, leg.Shape)
		}
		if int(leg.Chip) >= len(game.Chips) {
			return common.Hash{}, fmt.Errorf("leg %d: chip %d out of range", i, leg.Chip)
		}
		v := uint256.NewInt(uint64(leg.Shape)<<chipBits | uint64(leg.Chip))
		x.Or(x, v.Lsh(v, legShift(i)))
	}
	return common.Hash(x.Bytes32()), nil
}

// Decode unpacks an encoded bet, rejecting malformed or non-canonical words.
func Decode(encoded common.Hash) (gameID uint16, legs []Leg, err error) {
	x := new(uint256.Int).SetBytes32(encoded[:])
	gameID = game.DecodeGameID(encoded)

	n := int(new(uint256.Int).Rsh(x, legCountShift).Uint64() & (1<<legCountBits - 1))
	if n == 0 {
		return 0, nil, fmt.Errorf("encoded bet has no legs")
	}

	legs = make([]Leg, n)
	for i := range legs {
		raw := new(uint256.Int).Rsh(x, legShift(i)).Uint64() & (1<<legBits - 1)
		legs[i] = Leg{Shape: uint8(raw >> chipBits), Chip: uint8(raw & (1<<chipBits - 1))}
		if int(legs[i].Shape) >= PaytableSize {
			return 0, nil, fmt.Errorf("leg %d: shape %d out of range", i, legs[i].Shape)
		}
	}

	// Bits below the last leg must be zero.
	padding := legShift(n - 1)
	if !new(uint256.Int).Lsh(x, 256-padding).IsZero() {
		return 0, nil, fmt.Errorf("encoded bet has trailing bits")
	}
	return gameID, legs, nil
}

func legShift(i int) uint {
	return uint(firstLegShift - i*legBits)
}
