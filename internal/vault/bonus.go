package vault

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
)

const bonusClaimDomainV1 = "wager/vault/bonus-claim/v1"

// ClaimAll is the amount sentinel meaning "the whole bonus balance".
const ClaimAll uint64 = 0

// BonusClaim is a user-signed withdrawal that anyone may submit.
type BonusClaim struct {
	User      common.Address `json:"user"`
	Amount    uint64         `json:"amount"` // ClaimAll for everything
	Deadline  int64          `json:"deadline"`
	Signature []byte         `json:"signature"`
}

// BonusClaimDigest binds the coordinator, user, amount, deadline and the
// user's current claim nonce.
func BonusClaimDigest(user common.Address, amount uint64, deadline int64, nonce uint64) common.Hash {
	return crypto.Keccak256Hash(
		ledger.DomainHash(bonusClaimDomainV1).Bytes(),
		ledger.Word(ledger.EscrowAddress),
		ledger.Word(user),
		ledger.U64Word(amount),
		ledger.I64Word(deadline),
		ledger.U64Word(nonce),
	)
}

// ClaimBonus withdraws the caller's own bonus.
func (k *Keeper) ClaimBonus(user common.Address, amount uint64) (uint64, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	return k.withdrawBonus(user, amount)
}

// ClaimBonusWithSign withdraws on behalf of c.User after verifying the
// signature against the user's current nonce.
func (k *Keeper) ClaimBonusWithSign(c BonusClaim) (uint64, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if now := k.env.Time(); now > c.Deadline {
		return 0, types.ErrSignatureExpired.Wrapf("now=%d deadline=%d", now, c.Deadline)
	}
	nonce := k.st.Vault.BonusNonces[c.User]
	digest := BonusClaimDigest(c.User, c.Amount, c.Deadline, nonce)
	if !ledger.Verify(digest, c.Signature, c.User) {
		return 0, types.ErrInvalidSignature.Wrap("bonus claim signature does not match user")
	}

	paid, err := k.withdrawBonus(c.User, c.Amount)
	if err != nil {
		return 0, err
	}
	// Consumed only by a successful claim.
	k.st.Vault.BonusNonces[c.User] = nonce + 1
	return paid, nil
}

func (k *Keeper) withdrawBonus(user common.Address, amount uint64) (uint64, error) {
	v := &k.st.Vault
	balance := v.BonusBalance[user]
	if amount == ClaimAll {
		amount = balance
	}
	if amount == 0 || amount < v.Params.MinBonusClaim || amount > balance {
		return 0, types.ErrInsufficientBonus.Wrapf("amount=%d balance=%d min=%d", amount, balance, v.Params.MinBonusClaim)
	}
	if free := k.FreeLiquidity(); amount > free {
		return 0, types.ErrDepositsLocked.Wrapf("amount=%d freeLiquidity=%d", amount, free)
	}
	if amount > v.TotalBonus {
		return 0, types.ErrReservesOutOfSync.Wrapf("amount=%d totalBonus=%d", amount, v.TotalBonus)
	}

	v.BonusBalance[user] = balance - amount
	if v.BonusBalance[user] == 0 {
		delete(v.BonusBalance, user)
	}
	v.TotalBonus -= amount

	if err := k.token.Transfer(k.Address(), user, amount); err != nil {
		return 0, err
	}
	k.events.Emit(types.EventTypeBonusClaimed,
		events.Addr("user", user),
		events.U64("amount", amount),
	)
	k.logger.Info("bonus claimed", "user", user.Hex(), "amount", amount)
	return amount, nil
}
