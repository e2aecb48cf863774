package ledger

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// DomainHash is the 32-byte tag prefixed to every signed digest.
func DomainHash(tag string) common.Hash {
	return crypto.Keccak256Hash([]byte(tag))
}

// Word left-pads an address into a 32-byte word.
func Word(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

// U64Word encodes v as a 32-byte big-endian word.
func U64Word(v uint64) []byte {
	w := uint256.NewInt(v).Bytes32()
	return w[:]
}

// I64Word encodes a non-negative int64 as a 32-byte big-endian word.
func I64Word(v int64) []byte {
	if v < 0 {
		v = 0
	}
	return U64Word(uint64(v))
}

// Sign produces a 65-byte [R || S || V] signature (V in {27, 28}) over the
// personal-sign hash of digest.
func Sign(digest common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(digest[:]), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// Recover returns the address that produced sig over digest. Malformed and
// high-S signatures are rejected.
func Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	s := make([]byte, crypto.SignatureLength)
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	r := new(big.Int).SetBytes(s[:32])
	sv := new(big.Int).SetBytes(s[32:64])
	if !crypto.ValidateSignatureValues(s[crypto.RecoveryIDOffset], r, sv, true) {
		return common.Address{}, fmt.Errorf("invalid signature values")
	}
	pub, err := crypto.SigToPub(accounts.TextHash(digest[:]), s)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig over digest was produced by want. The zero
// address never verifies.
func Verify(digest common.Hash, sig []byte, want common.Address) bool {
	if want == (common.Address{}) {
		return false
	}
	got, err := Recover(digest, sig)
	if err != nil {
		return false
	}
	return got == want
}

// ModuleAddress derives the account address owned by a protocol component.
func ModuleAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("module/" + name))[12:])
}

var (
	TokenAddress  = ModuleAddress("token")
	VaultAddress  = ModuleAddress("vault")
	EscrowAddress = ModuleAddress("escrow")
)
