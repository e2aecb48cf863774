package app

import (
	"crypto/sha256"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"onchainwager/internal/codec"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/types"
)

const txAuthDomainV1 = "wager/tx/v1"

// TxAuthDigest is what a signer signs for an envelope:
// keccak256(DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)).
func TxAuthDigest(typ string, value []byte, nonce string, signer string) common.Hash {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV1)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV1)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return crypto.Keccak256Hash(out)
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return types.ErrInvalidTxAuth.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return types.ErrInvalidTxAuth.Wrap("missing tx.signer")
	}
	if len(env.Sig) != crypto.SignatureLength {
		return types.ErrInvalidTxAuth.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), crypto.SignatureLength)
	}
	return nil
}

// authenticate verifies the envelope signature, consumes its nonce in st and
// returns the signer.
func authenticate(st *state.State, env codec.TxEnvelope) (common.Address, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(env.Signer) {
		return common.Address{}, types.ErrInvalidTxAuth.Wrapf("tx.signer %q is not a hex address", env.Signer)
	}
	signer := common.HexToAddress(env.Signer)
	nonce, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return common.Address{}, types.ErrInvalidTxAuth.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	digest := TxAuthDigest(env.Type, env.Value, env.Nonce, env.Signer)
	if !ledger.Verify(digest, env.Sig, signer) {
		return common.Address{}, types.ErrInvalidTxAuth.Wrap("invalid signature")
	}
	if err := st.AcceptNonce(signer, nonce); err != nil {
		return common.Address{}, types.ErrInvalidTxAuth.Wrap(err.Error())
	}
	return signer, nil
}
