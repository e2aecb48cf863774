package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/token"
	"onchainwager/internal/types"
)

const commitDomainV1 = "wager/escrow/commit/v1"

// CommitRequest carries everything a relayer submits for one bet. BetID is
// keccak256(secret) for a secret only the user knows until reveal.
type CommitRequest struct {
	BetID      common.Hash    `json:"betId"`
	EncodedBet common.Hash    `json:"encodedBet"`
	User       common.Address `json:"user"`
	Stake      uint64         `json:"stake"`

	// Receive authorization from User to the vault for Stake, signed over
	// token.Authorization.ReceiveDigest.
	ValidAfter  int64       `json:"validAfter"`
	ValidBefore int64       `json:"validBefore"`
	Nonce       common.Hash `json:"nonce"`
	AuthSig     []byte      `json:"authSig"`

	UserSig    []byte `json:"userSig"`
	RelayerSig []byte `json:"relayerSig"`
}

// CommitDigest is signed independently by the user and the relayer.
func CommitDigest(encoded common.Hash, stake uint64, nonce common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		ledger.DomainHash(commitDomainV1).Bytes(),
		ledger.Word(ledger.EscrowAddress),
		encoded.Bytes(),
		ledger.U64Word(stake),
		nonce.Bytes(),
	)
}

// CommitBet validates and records a bet, pulls the stake into the vault and
// reserves its worst-case payout.
func (k *Keeper) CommitBet(req CommitRequest) error {
	release, err := k.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if b := k.st.Escrow.Bets[req.BetID]; b != nil && b.User != (common.Address{}) {
		return types.ErrBetAlreadyCommitted.Wrapf("bet %s", req.BetID.Hex())
	}
	if _, settled := k.st.Escrow.Settled[req.BetID]; settled {
		return types.ErrBetAlreadyCommitted.Wrapf("bet %s already settled", req.BetID.Hex())
	}

	gameID, m, err := k.Game(req.EncodedBet)
	if err != nil {
		return err
	}
	quote, err := m.Quote(req.EncodedBet)
	if err != nil {
		return types.ErrInvalidEncodedBet.Wrap(err.Error())
	}
	if quote.Stake != req.Stake {
		return types.ErrValueTransferNotEqualEncoded.Wrapf("declared=%d encoded=%d", req.Stake, quote.Stake)
	}

	digest := CommitDigest(req.EncodedBet, req.Stake, req.Nonce)
	if !ledger.Verify(digest, req.UserSig, req.User) {
		return types.ErrInvalidUserBetSig
	}
	relayer := k.st.Escrow.Relayer
	if relayer == (common.Address{}) {
		return types.ErrInvalidRelayerSig.Wrap("no relayer configured")
	}
	if !ledger.Verify(digest, req.RelayerSig, relayer) {
		return types.ErrInvalidRelayerSig
	}

	limit := k.vault.MaxAllowedPayout()
	if quote.MaxPayout > limit {
		return types.ErrExposureExceeded.Wrapf("maxPayout=%d cap=%d", quote.MaxPayout, limit)
	}

	if err := k.token.ReceiveWithAuthorization(k.vault.Address(), token.Authorization{
		From:        req.User,
		To:          k.vault.Address(),
		Value:       req.Stake,
		ValidAfter:  req.ValidAfter,
		ValidBefore: req.ValidBefore,
		Nonce:       req.Nonce,
		Signature:   req.AuthSig,
	}); err != nil {
		return err
	}
	if quote.MaxPayout != 0 {
		if err := k.vault.Reserve(k.Address(), req.BetID, quote.MaxPayout); err != nil {
			return err
		}
	}

	// Recorded last: a failed pull or reservation leaves no live bet.
	k.st.Escrow.Bets[req.BetID] = &state.Bet{
		EncodedBet:   req.EncodedBet,
		User:         req.User,
		CommitHeight: k.env.Height(),
		Reserved:     quote.MaxPayout,
	}

	k.events.Emit(types.EventTypeBetCommitted,
		events.Hash("betId", req.BetID),
		events.Addr("user", req.User),
		events.U64("gameId", uint64(gameID)),
		events.Hash("encodedBet", req.EncodedBet),
		events.U64("stake", req.Stake),
		events.U64("cap", limit),
	)
	k.logger.Info("bet committed", "betId", req.BetID.Hex(), "user", req.User.Hex(), "gameId", gameID, "stake", req.Stake)
	return nil
}
