package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
	"onchainwager/internal/vault"
)

// Settlement is the audit record of one settled bet.
type Settlement struct {
	BetID           common.Hash
	User            common.Address
	GameID          uint16
	Path            uint8
	Stake           uint64
	Payout          uint64
	Fees            uint64
	Bonus           uint64
	CommitHeight    int64
	CommitBlockHash common.Hash
	EncodedBet      common.Hash
	Seed            common.Hash
}

// SelectPath picks the settlement route for a bet of the given age.
// Age zero is not settleable and yields 0.
func SelectPath(age int64) uint8 {
	switch {
	case age <= 0:
		return 0
	case age <= RevealWindow:
		return types.SettlePathReveal
	case age <= ExpiryWindow:
		return types.SettlePathFallback
	default:
		return types.SettlePathExpiry
	}
}

// RevealSeed mixes the commit block hash with the user's secret.
func RevealSeed(commitBlockHash, secret, betID common.Hash, user common.Address) common.Hash {
	return crypto.Keccak256Hash(commitBlockHash.Bytes(), secret.Bytes(), betID.Bytes(), user.Bytes())
}

// FallbackSeed is used when the secret was never revealed.
func FallbackSeed(commitBlockHash, betID common.Hash, user common.Address) common.Hash {
	return crypto.Keccak256Hash(commitBlockHash.Bytes(), betID.Bytes(), user.Bytes())
}

// BetID is the commitment a user publishes for secret.
func BetID(secret common.Hash) common.Hash {
	return crypto.Keccak256Hash(secret.Bytes())
}

// SettleBet closes a live bet. Anyone may call; secret is only consulted on
// the reveal path.
func (k *Keeper) SettleBet(betID, secret common.Hash) (Settlement, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return Settlement{}, err
	}
	defer release()

	bet := k.st.Escrow.Bets[betID]
	if bet == nil || bet.User == (common.Address{}) {
		return Settlement{}, types.ErrBetUnknown.Wrapf("bet %s", betID.Hex())
	}
	gameID, m, err := k.Game(bet.EncodedBet)
	if err != nil {
		return Settlement{}, err
	}
	age := k.env.Height() - bet.CommitHeight
	if age <= 0 {
		return Settlement{}, types.ErrTryToRevealInTheSameBlock
	}

	s := Settlement{
		BetID:        betID,
		User:         bet.User,
		GameID:       gameID,
		Path:         SelectPath(age),
		CommitHeight: bet.CommitHeight,
		EncodedBet:   bet.EncodedBet,
	}

	if s.Path == types.SettlePathExpiry {
		refund, err := m.Refund(bet.EncodedBet)
		if err != nil {
			return Settlement{}, types.ErrInvalidEncodedBet.Wrap(err.Error())
		}
		s.Stake, s.Payout = refund, refund
	} else {
		s.CommitBlockHash = k.env.BlockHash(bet.CommitHeight)
		if s.Path == types.SettlePathReveal {
			if BetID(secret) != betID {
				return Settlement{}, types.ErrInvalidRevealSecret
			}
			s.Seed = RevealSeed(s.CommitBlockHash, secret, betID, bet.User)
		} else {
			s.Seed = FallbackSeed(s.CommitBlockHash, betID, bet.User)
		}

		out, err := m.Resolve(bet.EncodedBet, s.Seed)
		if err != nil {
			return Settlement{}, types.ErrInvalidEncodedBet.Wrap(err.Error())
		}
		s.Stake, s.Payout = out.Stake, out.Payout

		feeBps := k.st.Escrow.FeeBps
		s.Fees = ledger.Bps(s.Stake, feeBps)
		if edge := m.EdgeBps(); edge > feeBps {
			s.Bonus = ledger.Bps(s.Stake, edge-feeBps)
		}
	}

	delete(k.st.Escrow.Bets, betID)
	k.st.Escrow.Settled[betID] = k.env.Height()

	if err := k.vault.FinalizeBet(k.Address(), vault.Settlement{
		BetID:    betID,
		To:       bet.User,
		Reserved: bet.Reserved,
		Payout:   s.Payout,
		Fees:     s.Fees,
		Bonus:    s.Bonus,
	}); err != nil {
		return Settlement{}, err
	}

	k.events.Emit(types.EventTypeBetSettled,
		events.Hash("betId", s.BetID),
		events.Addr("user", s.User),
		events.U64("gameId", uint64(s.GameID)),
		events.U64("path", uint64(s.Path)),
		events.U64("stake", s.Stake),
		events.U64("payout", s.Payout),
		events.U64("fees", s.Fees),
		events.U64("bonus", s.Bonus),
		events.I64("commitHeight", s.CommitHeight),
		events.Hash("commitBlockHash", s.CommitBlockHash),
		events.Hash("encodedBet", s.EncodedBet),
		events.Hash("seed", s.Seed),
	)
	k.logger.Info("bet settled", "betId", betID.Hex(), "path", s.Path, "stake", s.Stake, "payout", s.Payout)
	return s, nil
}
