package token_test

import (
	"crypto/ecdsa"
	"testing"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/token"
	"onchainwager/internal/types"
)

var owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")

const now int64 = 1_700_000_000

func newKeeper(t *testing.T) (*state.State, *events.Manager, *token.Keeper) {
	t.Helper()
	st := state.NewState()
	st.Owner = owner
	st.RecordBlock(5, common.Hash{5}, now)
	em := events.NewManager()
	return st, em, token.NewKeeper(st, ledger.FromState(st), em, log.NewNopLogger())
}

func newHolder(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func signed(t *testing.T, key *ecdsa.PrivateKey, a token.Authorization) token.Authorization {
	t.Helper()
	sig, err := ledger.Sign(a.Digest(), key)
	require.NoError(t, err)
	a.Signature = sig
	return a
}

func TestMint_OwnerOnly(t *testing.T) {
	_, _, k := newKeeper(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	require.ErrorIs(t, k.Mint(to, to, 10), types.ErrUnauthorized)
	require.ErrorIs(t, k.Mint(owner, common.Address{}, 10), types.ErrInvalidRequest)
	require.NoError(t, k.Mint(owner, to, 10))
	require.Equal(t, uint64(10), k.BalanceOf(to))
	require.Equal(t, uint64(10), k.TotalSupply())
}

func TestTransfer(t *testing.T) {
	_, em, k := newKeeper(t)
	a := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	b := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, a, 100))

	require.ErrorIs(t, k.Transfer(a, b, 101), types.ErrInsufficientBalance)
	require.NoError(t, k.Transfer(a, b, 60))
	require.Equal(t, uint64(40), k.BalanceOf(a))
	require.Equal(t, uint64(60), k.BalanceOf(b))

	evs := em.Events()
	last := evs[len(evs)-1]
	require.Equal(t, types.EventTypeTransfer, last.Type)
	require.Equal(t, "60", last.Attributes[2].Value)
}

func TestTransferWithAuthorization(t *testing.T) {
	_, _, k := newKeeper(t)
	key, from := newHolder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, from, 500))

	auth := signed(t, key, token.Authorization{
		From: from, To: to, Value: 200,
		ValidAfter: now - 1, ValidBefore: now + 1,
		Nonce: common.Hash{0xaa},
	})
	require.NoError(t, k.TransferWithAuthorization(auth))
	require.Equal(t, uint64(300), k.BalanceOf(from))
	require.Equal(t, uint64(200), k.BalanceOf(to))
	require.True(t, k.AuthorizationUsed(from, common.Hash{0xaa}))

	err := k.TransferWithAuthorization(auth)
	require.ErrorIs(t, err, types.ErrAuthorizationUsed)
	require.Equal(t, uint64(300), k.BalanceOf(from))
}

func TestTransferWithAuthorization_ForgottenOnlyAfterExpiry(t *testing.T) {
	st, _, k := newKeeper(t)
	key, from := newHolder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, from, 500))

	auth := signed(t, key, token.Authorization{
		From: from, To: to, Value: 100,
		ValidAfter: now - 1, ValidBefore: now + 10,
		Nonce: common.Hash{0xbb},
	})
	require.NoError(t, k.TransferWithAuthorization(auth))

	st.RecordBlock(6, common.Hash{6}, now+9)
	require.True(t, k.AuthorizationUsed(from, auth.Nonce))
	require.ErrorIs(t, k.TransferWithAuthorization(auth), types.ErrAuthorizationUsed)

	// Pruned once the window closes; the signature is dead by then.
	st.RecordBlock(7, common.Hash{7}, now+10)
	require.False(t, k.AuthorizationUsed(from, auth.Nonce))
	require.ErrorIs(t, k.TransferWithAuthorization(auth), types.ErrAuthorizationExpired)
	require.Equal(t, uint64(400), k.BalanceOf(from))
}

func TestTransferWithAuthorization_Window(t *testing.T) {
	_, _, k := newKeeper(t)
	key, from := newHolder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, from, 500))

	early := signed(t, key, token.Authorization{From: from, To: to, Value: 1, ValidAfter: now, ValidBefore: now + 10, Nonce: common.Hash{1}})
	require.ErrorIs(t, k.TransferWithAuthorization(early), types.ErrAuthorizationNotYetValid)

	late := signed(t, key, token.Authorization{From: from, To: to, Value: 1, ValidAfter: now - 10, ValidBefore: now, Nonce: common.Hash{2}})
	require.ErrorIs(t, k.TransferWithAuthorization(late), types.ErrAuthorizationExpired)

	require.False(t, k.AuthorizationUsed(from, common.Hash{1}))
	require.False(t, k.AuthorizationUsed(from, common.Hash{2}))
}

func TestTransferWithAuthorization_BadSignature(t *testing.T) {
	_, _, k := newKeeper(t)
	_, from := newHolder(t)
	otherKey, _ := newHolder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, from, 500))

	forged := signed(t, otherKey, token.Authorization{From: from, To: to, Value: 1, ValidAfter: now - 1, ValidBefore: now + 1, Nonce: common.Hash{1}})
	require.ErrorIs(t, k.TransferWithAuthorization(forged), types.ErrInvalidAuthorizationSig)

	key, from2 := newHolder(t)
	require.NoError(t, k.Mint(owner, from2, 5))
	tampered := signed(t, key, token.Authorization{From: from2, To: to, Value: 1, ValidAfter: now - 1, ValidBefore: now + 1, Nonce: common.Hash{1}})
	tampered.Value = 5
	require.ErrorIs(t, k.TransferWithAuthorization(tampered), types.ErrInvalidAuthorizationSig)
	require.Equal(t, uint64(5), k.BalanceOf(from2))
}

func TestReceiveWithAuthorization_PayeeOnly(t *testing.T) {
	_, _, k := newKeeper(t)
	key, from := newHolder(t)
	payee := common.HexToAddress("0x00000000000000000000000000000000000000d4")
	require.NoError(t, k.Mint(owner, from, 500))

	auth := token.Authorization{
		From: from, To: payee, Value: 150,
		ValidAfter: now - 1, ValidBefore: now + 1,
		Nonce: common.Hash{0xcc},
	}
	sig, err := ledger.Sign(auth.ReceiveDigest(), key)
	require.NoError(t, err)
	auth.Signature = sig

	// The receive signature does not open the caller-agnostic path.
	require.ErrorIs(t, k.TransferWithAuthorization(auth), types.ErrInvalidAuthorizationSig)
	require.ErrorIs(t, k.ReceiveWithAuthorization(from, auth), types.ErrUnauthorized)
	require.False(t, k.AuthorizationUsed(from, auth.Nonce))

	require.NoError(t, k.ReceiveWithAuthorization(payee, auth))
	require.Equal(t, uint64(150), k.BalanceOf(payee))
	require.ErrorIs(t, k.ReceiveWithAuthorization(payee, auth), types.ErrAuthorizationUsed)

	// And a transfer signature does not satisfy the receive path.
	transfer := signed(t, key, token.Authorization{
		From: from, To: payee, Value: 10,
		ValidAfter: now - 1, ValidBefore: now + 1,
		Nonce: common.Hash{0xcd},
	})
	require.ErrorIs(t, k.ReceiveWithAuthorization(payee, transfer), types.ErrInvalidAuthorizationSig)
}

func TestTransferWithAuthorization_FailedTransferKeepsNonce(t *testing.T) {
	_, _, k := newKeeper(t)
	key, from := newHolder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	require.NoError(t, k.Mint(owner, from, 50))

	auth := signed(t, key, token.Authorization{
		From: from, To: to, Value: 100,
		ValidAfter: now - 1, ValidBefore: now + 1,
		Nonce: common.Hash{0xee},
	})
	require.ErrorIs(t, k.TransferWithAuthorization(auth), types.ErrInsufficientBalance)
	require.False(t, k.AuthorizationUsed(from, auth.Nonce))

	require.NoError(t, k.Mint(owner, from, 50))
	require.NoError(t, k.TransferWithAuthorization(auth))
	require.Zero(t, k.BalanceOf(from))
}
