// Package roulette resolves European single-zero roulette bets. A bet is up
// to 15 legs, each a paytable shape staked with one chip.
package roulette

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"onchainwager/internal/game"
)

const (
	Name = "roulette"

	// EdgeBps is 1/37 of the stake, rounded down.
	EdgeBps uint32 = 270
)

type Roulette struct {
	id       uint16
	paytable []Shape
	byName   map[string]uint8
}

var _ game.Module = (*Roulette)(nil)

func New(gameID uint16) *Roulette {
	r := &Roulette{
		id:       gameID,
		paytable: buildPaytable(),
		byName:   map[string]uint8{},
	}
	for i, s := range r.paytable {
		r.byName[s.Name] = uint8(i)
	}
	return r
}

func (r *Roulette) GameID() uint16  { return r.id }
func (r *Roulette) Name() string    { return Name }
func (r *Roulette) EdgeBps() uint32 { return EdgeBps }

// Paytable returns a copy of the shape table in wire order.
func (r *Roulette) Paytable() []Shape {
	out := make([]Shape, len(r.paytable))
	copy(out, r.paytable)
	return out
}

// ShapeIndex looks up a shape by name, e.g. "straight-17" or "red".
func (r *Roulette) ShapeIndex(name string) (uint8, bool) {
	i, ok := r.byName[name]
	return i, ok
}

func (r *Roulette) Quote(encoded common.Hash) (game.Quote, error) {
	legs, err := r.decode(encoded)
	if err != nil {
		return game.Quote{}, err
	}
	stake, err := stakeOf(legs)
	if err != nil {
		return game.Quote{}, err
	}
	var worst uint64
	for pocket := uint8(0); pocket < Outcomes; pocket++ {
		p, err := r.payoutAt(legs, pocket)
		if err != nil {
			return game.Quote{}, err
		}
		worst = max(worst, p)
	}
	return game.Quote{Stake: stake, MaxPayout: worst}, nil
}

func (r *Roulette) Resolve(encoded common.Hash, seed common.Hash) (game.Outcome, error) {
	legs, err := r.decode(encoded)
	if err != nil {
		return game.Outcome{}, err
	}
	stake, err := stakeOf(legs)
	if err != nil {
		return game.Outcome{}, err
	}
	payout, err := r.payoutAt(legs, Pocket(seed))
	if err != nil {
		return game.Outcome{}, err
	}
	return game.Outcome{Stake: stake, Payout: payout}, nil
}

func (r *Roulette) Refund(encoded common.Hash) (uint64, error) {
	legs, err := r.decode(encoded)
	if err != nil {
		return 0, err
	}
	return stakeOf(legs)
}

// Pocket maps a seed uniformly onto 0..36.
func Pocket(seed common.Hash) uint8 {
	s := new(uint256.Int).SetBytes32(seed[:])
	return uint8(s.Mod(s, uint256.NewInt(Outcomes)).Uint64())
}

func (r *Roulette) decode(encoded common.Hash) ([]Leg, error) {
	id, legs, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	if id != r.id {
		return nil, fmt.Errorf("encoded bet is for game %d, not %d", id, r.id)
	}
	return legs, nil
}

func stakeOf(legs []Leg) (uint64, error) {
	var total uint64
	for _, leg := range legs {
		chip, err := game.ChipValue(leg.Chip)
		if err != nil {
			return 0, err
		}
		total += chip
	}
	return total, nil
}

// payoutAt sums the gross payout of every leg covering pocket.
func (r *Roulette) payoutAt(legs []Leg, pocket uint8) (uint64, error) {
	var total uint64
	for _, leg := range legs {
		shape := r.paytable[leg.Shape]
		if !shape.Covered(pocket) {
			continue
		}
		chip, err := game.ChipValue(leg.Chip)
		if err != nil {
			return 0, err
		}
		total += chip * shape.Multiplier
	}
	return total, nil
}
