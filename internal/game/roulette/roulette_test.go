package roulette

import (
	"math/bits"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/game"
)

const testGameID = 1

func shape(t *testing.T, r *Roulette, name string) uint8 {
	t.Helper()
	i, ok := r.ShapeIndex(name)
	require.True(t, ok, "shape %q missing", name)
	return i
}

func TestPaytable_RebuildsFromRules(t *testing.T) {
	r := New(testGameID)
	table := r.Paytable()
	require.Len(t, table, PaytableSize)

	wantCount := map[Kind]int{
		KindStraight:  37,
		KindSplit:     60,
		KindStreet:    12,
		KindCorner:    22,
		KindSixLine:   11,
		KindTrio:      2,
		KindFirstFour: 1,
		KindColumn:    3,
		KindDozen:     3,
		KindEvenMoney: 6,
	}
	wantCovered := map[Kind]int{
		KindStraight:  1,
		KindSplit:     2,
		KindStreet:    3,
		KindCorner:    4,
		KindSixLine:   6,
		KindTrio:      3,
		KindFirstFour: 4,
		KindColumn:    12,
		KindDozen:     12,
		KindEvenMoney: 18,
	}
	gotCount := map[Kind]int{}
	names := map[string]bool{}
	for i, s := range table {
		gotCount[s.Kind]++
		require.Equal(t, wantCovered[s.Kind], bits.OnesCount64(s.Covers), "shape %d (%s)", i, s.Name)
		require.Zero(t, s.Covers>>Outcomes, "shape %s covers pockets beyond 36", s.Name)
		require.False(t, names[s.Name], "duplicate shape name %s", s.Name)
		names[s.Name] = true

		// Every shape except the multi-chip outside bets pays 36/covered.
		if s.Kind != KindColumn && s.Kind != KindDozen && s.Kind != KindEvenMoney {
			require.Equal(t, uint64(36), s.Multiplier*uint64(bits.OnesCount64(s.Covers)), s.Name)
		}
	}
	require.Equal(t, wantCount, gotCount)

	// Deterministic construction.
	require.Equal(t, table, New(testGameID).Paytable())
}

func TestPaytable_EvenMoneyPartitions(t *testing.T) {
	r := New(testGameID)
	table := r.Paytable()
	red := table[shape(t, r, "red")].Covers
	black := table[shape(t, r, "black")].Covers
	odd := table[shape(t, r, "odd")].Covers
	even := table[shape(t, r, "even")].Covers
	low := table[shape(t, r, "low")].Covers
	high := table[shape(t, r, "high")].Covers

	all := uint64(1)<<Outcomes - 2 // 1..36
	require.Equal(t, all, red|black)
	require.Zero(t, red&black)
	require.Equal(t, all, odd|even)
	require.Zero(t, odd&even)
	require.Equal(t, all, low|high)
	require.Zero(t, low&high)

	require.True(t, IsRed(1))
	require.False(t, IsRed(17))
	require.True(t, IsRed(36))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for n := 1; n <= MaxLegs; n++ {
		legs := make([]Leg, n)
		for i := range legs {
			legs[i] = Leg{Shape: uint8((i*37 + n) % PaytableSize), Chip: uint8((i + n) % len(game.Chips))}
		}
		enc, err := Encode(testGameID, legs)
		require.NoError(t, err)

		id, got, err := Decode(enc)
		require.NoError(t, err)
		require.Equal(t, uint16(testGameID), id)
		require.Equal(t, legs, got, "n=%d", n)
		require.Equal(t, uint16(testGameID), game.DecodeGameID(enc))
	}
}

func TestEncode_RejectsBadInput(t *testing.T) {
	_, err := Encode(testGameID, nil)
	require.Error(t, err)
	_, err = Encode(testGameID, make([]Leg, MaxLegs+1))
	require.Error(t, err)
	_, err = Encode(testGameID, []Leg{{Shape: PaytableSize, Chip: 0}})
	require.Error(t, err)
	_, err = Encode(game.MaxGameID+1, []Leg{{Shape: 0, Chip: 0}})
	require.Error(t, err)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	enc, err := Encode(testGameID, []Leg{{Shape: 3, Chip: 2}})
	require.NoError(t, err)

	trailing := enc
	trailing[31] |= 1
	_, _, err = Decode(trailing)
	require.ErrorContains(t, err, "trailing bits")

	// Leg count zero.
	noLegs := enc
	noLegs[1] &^= 0x3c
	_, _, err = Decode(noLegs)
	require.ErrorContains(t, err, "no legs")

	// Shape index 0xff.
	badShape := enc
	badShape[1] |= 0x03
	badShape[2] |= 0xfc
	_, _, err = Decode(badShape)
	require.ErrorContains(t, err, "out of range")
}

func TestQuote_SumsOverlappingLegs(t *testing.T) {
	r := New(testGameID)
	// 17 is black on the European wheel.
	legs := []Leg{
		{Shape: shape(t, r, "straight-17"), Chip: 9},
		{Shape: shape(t, r, "black"), Chip: 9},
	}
	enc, err := Encode(testGameID, legs)
	require.NoError(t, err)

	q, err := r.Quote(enc)
	require.NoError(t, err)
	chip := game.Chips[9]
	require.Equal(t, 2*chip, q.Stake)
	// Both legs pay on 17: 36x + 2x, not max(36x, 2x).
	require.Equal(t, chip*36+chip*2, q.MaxPayout)
}

func TestQuote_WorstCaseAcrossOutcomes(t *testing.T) {
	r := New(testGameID)
	legs := []Leg{
		{Shape: shape(t, r, "straight-0"), Chip: 3},
		{Shape: shape(t, r, "split-0-1"), Chip: 3},
		{Shape: shape(t, r, "red"), Chip: 5},
		{Shape: shape(t, r, "dozen-1"), Chip: 4},
	}
	enc, err := Encode(testGameID, legs)
	require.NoError(t, err)
	q, err := r.Quote(enc)
	require.NoError(t, err)

	var worst uint64
	for p := uint8(0); p < Outcomes; p++ {
		var sum uint64
		for _, leg := range legs {
			s := r.Paytable()[leg.Shape]
			if s.Covered(p) {
				sum += game.Chips[leg.Chip] * s.Multiplier
			}
		}
		worst = max(worst, sum)
	}
	require.Equal(t, worst, q.MaxPayout)
	// Zero hits straight-0 and split-0-1.
	require.Equal(t, game.Chips[3]*36+game.Chips[3]*18, worst)
}

func TestResolve_PaysCoveredLegs(t *testing.T) {
	r := New(testGameID)
	legs := []Leg{
		{Shape: shape(t, r, "straight-17"), Chip: 9},
		{Shape: shape(t, r, "red"), Chip: 9},
	}
	enc, err := Encode(testGameID, legs)
	require.NoError(t, err)

	seen := map[uint8]bool{}
	for i := 0; i < 400; i++ {
		seed := crypto.Keccak256Hash([]byte{byte(i), byte(i >> 8)})
		pocket := Pocket(seed)
		require.Less(t, pocket, uint8(Outcomes))
		seen[pocket] = true

		out, err := r.Resolve(enc, seed)
		require.NoError(t, err)
		require.Equal(t, 2*game.Chips[9], out.Stake)
		switch {
		case pocket == 17:
			require.Equal(t, game.Chips[9]*36, out.Payout)
		case IsRed(pocket):
			require.Equal(t, game.Chips[9]*2, out.Payout)
		default:
			require.Zero(t, out.Payout)
		}
	}
	require.Greater(t, len(seen), 30)
}

func TestPocket_SeedModulo(t *testing.T) {
	require.Equal(t, uint8(0), Pocket(common.Hash{}))
	require.Equal(t, uint8(17), Pocket(common.Hash(uint256.NewInt(37*1000+17).Bytes32())))
}

func TestRefund_ReturnsStake(t *testing.T) {
	r := New(testGameID)
	enc, err := Encode(testGameID, []Leg{{Shape: 0, Chip: 1}, {Shape: 150, Chip: 2}})
	require.NoError(t, err)
	refund, err := r.Refund(enc)
	require.NoError(t, err)
	require.Equal(t, game.Chips[1]+game.Chips[2], refund)
}

func TestModule_RejectsOtherGameID(t *testing.T) {
	r := New(testGameID)
	enc, err := Encode(testGameID+1, []Leg{{Shape: 0, Chip: 0}})
	require.NoError(t, err)
	_, err = r.Quote(enc)
	require.Error(t, err)
	_, err = r.Resolve(enc, common.Hash{})
	require.Error(t, err)
}
