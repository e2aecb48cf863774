package vault

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
)

func (k *Keeper) requireCoordinator(caller common.Address) error {
	if caller != k.Coordinator() {
		return types.ErrUnauthorized.Wrapf("caller %s is not the coordinator", caller.Hex())
	}
	return nil
}

// Reserve locks amount of worst-case exposure for betID. The per-bet cap is
// enforced by the coordinator, not here.
func (k *Keeper) Reserve(caller common.Address, betID common.Hash, amount uint64) error {
	release, err := k.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := k.requireCoordinator(caller); err != nil {
		return err
	}
	if amount == 0 {
		return types.ErrInvalidRequest.Wrap("reserve amount is zero")
	}
	total, err := ledger.AddChecked(k.st.Vault.TotalReserved, amount, "totalReserved")
	if err != nil {
		return err
	}
	k.st.Vault.TotalReserved = total

	k.events.Emit(types.EventTypeReservationCreated,
		events.Hash("betId", betID),
		events.U64("amount", amount),
		events.U64("totalReserved", total),
	)
	return nil
}

// Settlement is the coordinator's instruction to close a bet.
type Settlement struct {
	BetID    common.Hash
	To       common.Address
	Reserved uint64
	Payout   uint64
	Fees     uint64
	Bonus    uint64
}

// FinalizeBet releases the reservation, accrues fees and bonus, then pays
// the payout. Payout is transferred as given; fees never reduce it.
func (k *Keeper) FinalizeBet(caller common.Address, s Settlement) error {
	release, err := k.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := k.requireCoordinator(caller); err != nil {
		return err
	}
	v := &k.st.Vault
	if s.Reserved > v.TotalReserved {
		return types.ErrReservesOutOfSync.Wrapf("release=%d totalReserved=%d", s.Reserved, v.TotalReserved)
	}
	feePool, err := ledger.AddChecked(v.FeePool, s.Fees, "feePool")
	if err != nil {
		return err
	}
	totalBonus, err := ledger.AddChecked(v.TotalBonus, s.Bonus, "totalBonus")
	if err != nil {
		return err
	}
	userBonus, err := ledger.AddChecked(v.BonusBalance[s.To], s.Bonus, "bonusBalance")
	if err != nil {
		return err
	}

	v.TotalReserved -= s.Reserved
	v.FeePool = feePool
	v.TotalBonus = totalBonus
	if s.Bonus != 0 {
		v.BonusBalance[s.To] = userBonus
	}

	if s.Payout != 0 {
		if err := k.token.Transfer(k.Address(), s.To, s.Payout); err != nil {
			return err
		}
	}

	k.events.Emit(types.EventTypeBetFinalized,
		events.Hash("betId", s.BetID),
		events.Addr("to", s.To),
		events.U64("reserved", s.Reserved),
		events.U64("payout", s.Payout),
		events.U64("fees", s.Fees),
		events.U64("bonus", s.Bonus),
	)
	k.logger.Debug("bet finalized", "betId", s.BetID.Hex(), "payout", s.Payout, "fees", s.Fees, "bonus", s.Bonus)
	return nil
}
