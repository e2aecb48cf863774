package store

import (
	"testing"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyDBYieldsFreshState(t *testing.T) {
	s := New(dbm.NewMemDB())
	st, err := s.Load()
	require.NoError(t, err)
	require.Zero(t, st.Height)
	require.NotNil(t, st.Escrow.Bets)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(dbm.NewMemDB())
	st, err := s.Load()
	require.NoError(t, err)
	st.RecordBlock(12, common.Hash{12}, 1_700_000_012)
	st.Token.Balances[common.HexToAddress("0x01")] = 55
	st.Vault.TotalReserved = 3600

	require.NoError(t, s.Save(st))
	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, st.AppHash(), got.AppHash())
	require.Equal(t, uint64(55), got.Token.Balances[common.HexToAddress("0x01")])
}

func TestOpen_GoLevelDB(t *testing.T) {
	home := t.TempDir()
	s, err := Open(home, string(dbm.GoLevelDBBackend))
	require.NoError(t, err)
	st, err := s.Load()
	require.NoError(t, err)
	st.Height = 3
	require.NoError(t, s.Save(st))
	require.NoError(t, s.Close())

	s, err = Open(home, string(dbm.GoLevelDBBackend))
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Height)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(t.TempDir(), "nosuchdb")
	require.Error(t, err)
}
