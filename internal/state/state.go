package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// BlockHashWindow is how many recent heights keep a retrievable block hash.
	BlockHashWindow = 256

	// SettledRetention is how many heights a settled bet id stays blocked
	// from re-commit.
	SettledRetention = 100_000
)

type State struct {
	Height int64 `json:"height"`
	Time   int64 `json:"time"` // block time, unix seconds

	// Recent block hashes, pruned to BlockHashWindow entries behind Height.
	BlockHashes map[int64]common.Hash `json:"blockHashes"`

	Initialized bool           `json:"initialized"`
	Owner       common.Address `json:"owner"`

	NonceMax map[common.Address]uint64 `json:"nonceMax,omitempty"` // signer -> last accepted tx.nonce

	Token  TokenState  `json:"token"`
	Vault  VaultState  `json:"vault"`
	Escrow EscrowState `json:"escrow"`
}

// ---- Token ----

type TokenState struct {
	Supply   uint64                    `json:"supply"`
	Balances map[common.Address]uint64 `json:"balances"`

	// from -> used authorization nonce -> its validBefore. Entries are dropped
	// once block time reaches validBefore, when the authorization could no
	// longer execute anyway.
	Authorizations map[common.Address]map[common.Hash]int64 `json:"authorizations,omitempty"`
}

// ---- Vault ----

type VaultState struct {
	TotalReserved uint64 `json:"totalReserved"`
	TotalBonus    uint64 `json:"totalBonus"`
	FeePool       uint64 `json:"feePool"`

	BonusBalance map[common.Address]uint64 `json:"bonusBalance"`
	BonusNonces  map[common.Address]uint64 `json:"bonusNonces,omitempty"`

	TotalLpShares uint64                    `json:"totalLpShares"`
	LpShares      map[common.Address]uint64 `json:"lpShares"`
	LpWhitelist   map[common.Address]bool   `json:"lpWhitelist,omitempty"`

	Params VaultParams `json:"params"`
}

type VaultParams struct {
	FeeRecipient      common.Address `json:"feeRecipient"`
	FeeSplitBps       uint32         `json:"feeSplitBps"`
	MaxExposureCapBps uint32         `json:"maxExposureCapBps"`
	MinDeposit        uint64         `json:"minDeposit"`
	MinBonusClaim     uint64         `json:"minBonusClaim"`
}

// ---- Escrow ----

type EscrowState struct {
	Relayer common.Address `json:"relayer"`
	FeeBps  uint32         `json:"feeBps"`

	MaxGameID uint16                `json:"maxGameId"`
	Games     map[uint16]*GameEntry `json:"games"`

	Bets    map[common.Hash]*Bet  `json:"bets"`
	Settled map[common.Hash]int64 `json:"settled,omitempty"` // betId -> settle height
}

type GameEntry struct {
	Handle  string `json:"handle"`
	Blocked bool   `json:"blocked"`
}

// Bet is immutable once committed and removed on settlement.
type Bet struct {
	EncodedBet   common.Hash    `json:"encodedBet"`
	User         common.Address `json:"user"`
	CommitHeight int64          `json:"commitHeight"`
	Reserved     uint64         `json:"reserved"`
}

func NewState() *State {
	s := &State{}
	s.normalize()
	return s
}

// normalize replaces nil maps left by zero values or older snapshots.
func (s *State) normalize() {
	if s.BlockHashes == nil {
		s.BlockHashes = map[int64]common.Hash{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[common.Address]uint64{}
	}
	if s.Token.Balances == nil {
		s.Token.Balances = map[common.Address]uint64{}
	}
	if s.Token.Authorizations == nil {
		s.Token.Authorizations = map[common.Address]map[common.Hash]int64{}
	}
	if s.Vault.BonusBalance == nil {
		s.Vault.BonusBalance = map[common.Address]uint64{}
	}
	if s.Vault.BonusNonces == nil {
		s.Vault.BonusNonces = map[common.Address]uint64{}
	}
	if s.Vault.LpShares == nil {
		s.Vault.LpShares = map[common.Address]uint64{}
	}
	if s.Vault.LpWhitelist == nil {
		s.Vault.LpWhitelist = map[common.Address]bool{}
	}
	if s.Escrow.Games == nil {
		s.Escrow.Games = map[uint16]*GameEntry{}
	}
	if s.Escrow.Bets == nil {
		s.Escrow.Bets = map[common.Hash]*Bet{}
	}
	if s.Escrow.Settled == nil {
		s.Escrow.Settled = map[common.Hash]int64{}
	}
}

// Decode parses a JSON snapshot produced by Encode.
func Decode(b []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *State) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// AppHash is sha256 over the JSON snapshot. encoding/json emits map keys in
// sorted order (text-marshaled keys included), so the encoding is canonical.
func (s *State) AppHash() []byte {
	b, _ := json.Marshal(s)
	sum := sha256.Sum256(b)
	return sum[:]
}

// RecordBlock advances the chain clock and remembers the block hash for
// height, forgetting hashes that fell out of the window along with settled
// ids and authorizations that can no longer matter.
func (s *State) RecordBlock(height int64, hash common.Hash, unixTime int64) {
	s.Height = height
	s.Time = unixTime
	s.BlockHashes[height] = hash
	for h := range s.BlockHashes {
		if h < height-BlockHashWindow {
			delete(s.BlockHashes, h)
		}
	}
	for id, settledAt := range s.Escrow.Settled {
		if settledAt < height-SettledRetention {
			delete(s.Escrow.Settled, id)
		}
	}
	for from, used := range s.Token.Authorizations {
		for nonce, validBefore := range used {
			if validBefore <= unixTime {
				delete(used, nonce)
			}
		}
		if len(used) == 0 {
			delete(s.Token.Authorizations, from)
		}
	}
}

// ---- Nonces ----

// AcceptNonce enforces a strictly increasing per-signer tx nonce.
func (s *State) AcceptNonce(signer common.Address, nonce uint64) error {
	if nonce <= s.NonceMax[signer] {
		return fmt.Errorf("replayed tx.nonce %d (last accepted %d)", nonce, s.NonceMax[signer])
	}
	s.NonceMax[signer] = nonce
	return nil
}
