package vault

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
)

// DistributeFees empties the fee pool: the recipient's split is transferred
// out and the remainder stays in the balance as LP equity. Anyone may call.
func (k *Keeper) DistributeFees() (toRecipient uint64, retained uint64, err error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, 0, err
	}
	defer release()

	pool := k.st.Vault.FeePool
	if pool == 0 {
		return 0, 0, nil
	}
	params := k.st.Vault.Params
	if params.FeeRecipient == (common.Address{}) {
		return 0, 0, types.ErrInvalidRequest.Wrap("fee recipient not set")
	}

	toRecipient = ledger.Bps(pool, params.FeeSplitBps)
	retained = pool - toRecipient

	k.st.Vault.FeePool = 0
	if toRecipient != 0 {
		if err := k.token.Transfer(k.Address(), params.FeeRecipient, toRecipient); err != nil {
			return 0, 0, err
		}
	}

	k.events.Emit(types.EventTypeFeesDistributed,
		events.Addr("recipient", params.FeeRecipient),
		events.U64("toRecipient", toRecipient),
		events.U64("retained", retained),
	)
	k.logger.Info("fees distributed", "toRecipient", toRecipient, "retained", retained)
	return toRecipient, retained, nil
}
