package escrow

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/game"
	"onchainwager/internal/state"
	"onchainwager/internal/types"
)

// AddGame registers the module behind handle. Its self-reported id must be
// exactly the current maximum plus one, so the registry is append-only.
func (k *Keeper) AddGame(caller common.Address, handle string) (uint16, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if err := k.requireOwner(caller); err != nil {
		return 0, err
	}
	m, err := k.catalog.Lookup(handle)
	if err != nil {
		return 0, types.ErrGameUnknown.Wrap(err.Error())
	}
	id := m.GameID()
	want := k.st.Escrow.MaxGameID + 1
	if id != want || id > game.MaxGameID {
		return 0, types.ErrInvalidGameID.Wrapf("module reports id %d, want %d", id, want)
	}
	if _, taken := k.st.Escrow.Games[id]; taken {
		return 0, types.ErrInvalidGameID.Wrapf("id %d already registered", id)
	}

	k.st.Escrow.Games[id] = &state.GameEntry{Handle: handle}
	k.st.Escrow.MaxGameID = id

	k.events.Emit(types.EventTypeGameRegistered,
		events.U64("gameId", uint64(id)),
		events.Str("handle", handle),
		events.Str("name", m.Name()),
		events.U64("edgeBps", uint64(m.EdgeBps())),
	)
	k.logger.Info("game registered", "gameId", id, "handle", handle)
	return id, nil
}

// SetGameBlocked toggles the blocked flag. Unchanged values emit nothing.
func (k *Keeper) SetGameBlocked(caller common.Address, id uint16, blocked bool) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	entry := k.st.Escrow.Games[id]
	if entry == nil {
		return types.ErrGameUnknown.Wrapf("game %d", id)
	}
	if entry.Blocked == blocked {
		return nil
	}
	entry.Blocked = blocked
	k.events.Emit(types.EventTypeGameBlocked,
		events.U64("gameId", uint64(id)),
		events.Bool("blocked", blocked),
	)
	k.logger.Info("game block toggled", "gameId", id, "blocked", blocked)
	return nil
}

// Game resolves an encoded bet to its registered, unblocked module.
func (k *Keeper) Game(encoded common.Hash) (uint16, game.Module, error) {
	id := game.DecodeGameID(encoded)
	entry := k.st.Escrow.Games[id]
	if entry == nil {
		return id, nil, types.ErrGameUnknown.Wrapf("game %d", id)
	}
	if entry.Blocked {
		return id, nil, types.ErrGameBlocked.Wrapf("game %d", id)
	}
	m, err := k.catalog.Lookup(entry.Handle)
	if err != nil {
		return id, nil, types.ErrGameUnknown.Wrap(err.Error())
	}
	return id, m, nil
}
