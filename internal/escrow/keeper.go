// Package escrow is the bet coordinator. It owns the game registry and the
// bet lifecycle (commit, then exactly one of reveal, fallback or expiry
// settlement) and instructs the vault; it never holds funds itself.
package escrow

import (
	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/game"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/token"
	"onchainwager/internal/types"
	"onchainwager/internal/vault"
)

const (
	// RevealWindow is the last age (in heights) at which the committer's
	// secret is accepted.
	RevealWindow int64 = 20
	// ExpiryWindow is the last age at which the block-hash seed is used;
	// older bets are refunded.
	ExpiryWindow int64 = 255

	MaxFeeBps     uint32 = 1_000
	DefaultFeeBps uint32 = 120
)

type Keeper struct {
	st      *state.State
	env     ledger.Env
	catalog game.Catalog
	vault   *vault.Keeper
	token   *token.Keeper
	events  *events.Manager
	logger  log.Logger

	guard ledger.ReentrancyGuard
}

func NewKeeper(
	st *state.State,
	env ledger.Env,
	catalog game.Catalog,
	vk *vault.Keeper,
	tk *token.Keeper,
	em *events.Manager,
	logger log.Logger,
) *Keeper {
	if st == nil {
		panic("escrow keeper: state is nil")
	}
	if vk == nil || tk == nil {
		panic("escrow keeper: vault/token keeper is nil")
	}
	if em == nil {
		panic("escrow keeper: event manager is nil")
	}
	return &Keeper{
		st:      st,
		env:     env,
		catalog: catalog,
		vault:   vk,
		token:   tk,
		events:  em,
		logger:  logger.With("module", "x/escrow"),
	}
}

func (k *Keeper) Address() common.Address { return ledger.EscrowAddress }

func (k *Keeper) Relayer() common.Address { return k.st.Escrow.Relayer }

func (k *Keeper) FeeBps() uint32 { return k.st.Escrow.FeeBps }

func (k *Keeper) Bet(betID common.Hash) (state.Bet, bool) {
	b := k.st.Escrow.Bets[betID]
	if b == nil {
		return state.Bet{}, false
	}
	return *b, true
}

func (k *Keeper) requireOwner(caller common.Address) error {
	if caller != k.st.Owner || caller == (common.Address{}) {
		return types.ErrUnauthorized.Wrapf("caller %s is not the owner", caller.Hex())
	}
	return nil
}

// SetRelayer installs the co-signer required on every commit. The zero
// address disables commits.
func (k *Keeper) SetRelayer(caller, relayer common.Address) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	k.st.Escrow.Relayer = relayer
	k.events.Emit(types.EventTypeRelayerUpdated, events.Addr("relayer", relayer))
	if relayer == (common.Address{}) {
		k.logger.Warn("relayer unset; commits are disabled")
	}
	return nil
}

func (k *Keeper) SetFeeBps(caller common.Address, bps uint32) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	if bps > MaxFeeBps {
		return types.ErrInvalidRequest.Wrapf("fee %d exceeds %d bps", bps, MaxFeeBps)
	}
	k.st.Escrow.FeeBps = bps
	k.events.Emit(types.EventTypeFeeBpsUpdated, events.U64("bps", uint64(bps)))
	return nil
}
