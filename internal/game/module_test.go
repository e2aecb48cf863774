package game_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/game"
	"onchainwager/internal/game/roulette"
)

func TestDecodeGameID(t *testing.T) {
	require.Equal(t, uint16(0), game.DecodeGameID(common.Hash{}))

	top := new(uint256.Int).Lsh(uint256.NewInt(game.MaxGameID), game.GameIDShift)
	top.Or(top, uint256.NewInt(0xffff))
	require.Equal(t, uint16(game.MaxGameID), game.DecodeGameID(top.Bytes32()))

	one := new(uint256.Int).Lsh(uint256.NewInt(1), game.GameIDShift)
	require.Equal(t, uint16(1), game.DecodeGameID(one.Bytes32()))
}

func TestCatalog(t *testing.T) {
	c := game.NewCatalog(roulette.New(1))
	m, err := c.Lookup(roulette.Name)
	require.NoError(t, err)
	require.Equal(t, uint16(1), m.GameID())

	_, err = c.Lookup("dice")
	require.Error(t, err)
	require.Equal(t, []string{roulette.Name}, c.Handles())
}

func TestChipValue(t *testing.T) {
	v, err := game.ChipValue(9)
	require.NoError(t, err)
	require.Equal(t, uint64(100_000_000), v)

	_, err = game.ChipValue(16)
	require.Error(t, err)
}
