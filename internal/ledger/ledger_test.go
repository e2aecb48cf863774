package ledger_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/types"
)

func TestSignRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)
	digest := crypto.Keccak256Hash([]byte("digest"))

	sig, err := ledger.Sign(digest, key)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.Contains(t, []byte{27, 28}, sig[64])

	got, err := ledger.Recover(digest, sig)
	require.NoError(t, err)
	require.Equal(t, addr, got)
	require.True(t, ledger.Verify(digest, sig, addr))
	require.False(t, ledger.Verify(crypto.Keccak256Hash([]byte("other")), sig, addr))
	require.False(t, ledger.Verify(digest, sig, common.Address{}))

	// Raw 0/1 recovery ids are accepted too.
	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	require.True(t, ledger.Verify(digest, raw, addr))

	_, err = ledger.Recover(digest, sig[:64])
	require.Error(t, err)
}

func TestRecover_RejectsHighS(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	digest := crypto.Keccak256Hash([]byte("digest"))
	sig, err := ledger.Sign(digest, key)
	require.NoError(t, err)

	// s' = n - s is the malleable twin.
	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(sig[32:64])
	s.Sub(n, s)
	copy(sig[32:64], common.LeftPadBytes(s.Bytes(), 32))

	_, err = ledger.Recover(digest, sig)
	require.Error(t, err)
}

func TestModuleAddresses(t *testing.T) {
	require.NotEqual(t, ledger.TokenAddress, ledger.VaultAddress)
	require.NotEqual(t, ledger.VaultAddress, ledger.EscrowAddress)
	require.Equal(t, ledger.VaultAddress, ledger.ModuleAddress("vault"))
	require.NotEqual(t, common.Address{}, ledger.EscrowAddress)
}

func TestEnvBlockHashWindow(t *testing.T) {
	st := state.NewState()
	for h := int64(1); h <= 400; h++ {
		st.RecordBlock(h, common.BigToHash(big.NewInt(h)), 1000+h)
	}
	env := ledger.FromState(st)

	require.Equal(t, int64(400), env.Height())
	require.Equal(t, int64(1400), env.Time())
	require.Equal(t, common.Hash{}, env.BlockHash(400))
	require.Equal(t, common.Hash{}, env.BlockHash(401))
	require.Equal(t, common.BigToHash(big.NewInt(399)), env.BlockHash(399))
	require.Equal(t, common.BigToHash(big.NewInt(144)), env.BlockHash(144))
	require.Equal(t, common.Hash{}, env.BlockHash(143))
	require.Len(t, st.BlockHashes, state.BlockHashWindow+1)
}

func TestArithmetic(t *testing.T) {
	_, err := ledger.AddChecked(math.MaxUint64, 1, "x")
	require.ErrorIs(t, err, types.ErrOverflow)
	v, err := ledger.AddChecked(1, 2, "x")
	require.NoError(t, err)
	require.Equal(t, uint64(3), v)

	_, err = ledger.SubChecked(1, 2, "x")
	require.ErrorIs(t, err, types.ErrOverflow)
	require.Zero(t, ledger.SubFloor(1, 2))

	// (2^64-1) * 10000 / 10000 does not overflow in the intermediate.
	v, err = ledger.MulDiv(math.MaxUint64, 10_000, 10_000, "x")
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), v)

	_, err = ledger.MulDiv(math.MaxUint64, 2, 1, "x")
	require.ErrorIs(t, err, types.ErrOverflow)
	_, err = ledger.MulDiv(1, 1, 0, "x")
	require.ErrorIs(t, err, types.ErrOverflow)

	require.Equal(t, uint64(1_200_000), ledger.Bps(100_000_000, 120))
	require.Equal(t, uint64(0), ledger.Bps(83, 120))
}

func TestReentrancyGuard(t *testing.T) {
	var g ledger.ReentrancyGuard
	release, err := g.Enter()
	require.NoError(t, err)

	_, err = g.Enter()
	require.ErrorIs(t, err, types.ErrReentrancy)

	release()
	release, err = g.Enter()
	require.NoError(t, err)
	release()
}
