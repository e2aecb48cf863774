package vault

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
)

func (k *Keeper) requireOwner(caller common.Address) error {
	if caller != k.st.Owner || caller == (common.Address{}) {
		return types.ErrUnauthorized.Wrapf("caller %s is not the owner", caller.Hex())
	}
	return nil
}

func (k *Keeper) SetFeeRecipient(caller, recipient common.Address) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	k.st.Vault.Params.FeeRecipient = recipient
	k.events.Emit(types.EventTypeFeeRecipientUpdated, events.Addr("recipient", recipient))
	return nil
}

func (k *Keeper) SetLpWhitelist(caller, lp common.Address, allowed bool) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	if lp == (common.Address{}) {
		return types.ErrInvalidRequest.Wrap("lp is the zero address")
	}
	if allowed {
		k.st.Vault.LpWhitelist[lp] = true
	} else {
		delete(k.st.Vault.LpWhitelist, lp)
	}
	k.events.Emit(types.EventTypeLPWhitelistUpdated, events.Addr("lp", lp), events.Bool("allowed", allowed))
	return nil
}

func (k *Keeper) SetMaxExposureCapBps(caller common.Address, bps uint32) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	if bps < MinExposureCapBps || bps > MaxExposureCapBps {
		return types.ErrInvalidRequest.Wrapf("exposure cap %d outside [%d,%d] bps", bps, MinExposureCapBps, MaxExposureCapBps)
	}
	k.st.Vault.Params.MaxExposureCapBps = bps
	k.events.Emit(types.EventTypeExposureCapUpdated, events.U64("bps", uint64(bps)))
	return nil
}

func (k *Keeper) SetMinDeposit(caller common.Address, amount uint64) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	k.st.Vault.Params.MinDeposit = amount
	k.events.Emit(types.EventTypeMinDepositUpdated, events.U64("amount", amount))
	return nil
}

func (k *Keeper) SetFeeSplitBps(caller common.Address, bps uint32) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	if bps > ledger.BpsDenominator {
		return types.ErrInvalidRequest.Wrapf("fee split %d exceeds %d bps", bps, ledger.BpsDenominator)
	}
	k.st.Vault.Params.FeeSplitBps = bps
	k.events.Emit(types.EventTypeFeeSplitUpdated, events.U64("bps", uint64(bps)))
	return nil
}

func (k *Keeper) SetMinBonusClaim(caller common.Address, amount uint64) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	k.st.Vault.Params.MinBonusClaim = amount
	k.events.Emit(types.EventTypeMinBonusClaimUpdated, events.U64("amount", amount))
	return nil
}
