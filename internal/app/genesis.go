package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"onchainwager/internal/config"
	"onchainwager/internal/state"
)

// genesisFrom prefers CometBFT's app_state over the configured genesis.
func genesisFrom(appState []byte, fallback config.Genesis) (config.Genesis, error) {
	trimmed := bytes.TrimSpace(appState)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("null")) {
		return fallback, nil
	}
	g := config.DefaultGenesis()
	if err := json.Unmarshal(trimmed, &g); err != nil {
		return config.Genesis{}, fmt.Errorf("decode app_state: %w", err)
	}
	return g, nil
}

// applyGenesis installs the owner, then replays the owner's admin
// operations through the keepers so genesis obeys the same bounds as
// later transactions.
func (a *WagerApp) applyGenesis(st *state.State, g config.Genesis) error {
	if err := g.Validate(); err != nil {
		return err
	}
	owner := config.Address(g.Owner)
	st.Owner = owner
	k := a.keepers(st)

	if err := k.escrow.SetRelayer(owner, config.Address(g.Relayer)); err != nil {
		return err
	}
	if err := k.escrow.SetFeeBps(owner, g.FeeBps); err != nil {
		return err
	}
	if err := k.vault.SetFeeRecipient(owner, config.Address(g.FeeRecipient)); err != nil {
		return err
	}
	if err := k.vault.SetFeeSplitBps(owner, g.FeeSplitBps); err != nil {
		return err
	}
	if err := k.vault.SetMaxExposureCapBps(owner, g.MaxExposureCapBps); err != nil {
		return err
	}
	if err := k.vault.SetMinDeposit(owner, g.MinDeposit); err != nil {
		return err
	}
	if err := k.vault.SetMinBonusClaim(owner, g.MinBonusClaim); err != nil {
		return err
	}
	for _, lp := range g.LpWhitelist {
		if err := k.vault.SetLpWhitelist(owner, config.Address(lp), true); err != nil {
			return err
		}
	}

	holders := lo.Keys(g.Faucet)
	sort.Strings(holders)
	for _, h := range holders {
		if err := k.token.Mint(owner, config.Address(h), g.Faucet[h]); err != nil {
			return fmt.Errorf("faucet %s: %w", h, err)
		}
	}

	for _, handle := range g.Games {
		id, err := k.escrow.AddGame(owner, handle)
		if err != nil {
			return fmt.Errorf("register game %q: %w", handle, err)
		}
		a.logger.Info("genesis game", "handle", handle, "gameId", id)
	}

	st.Initialized = true
	return nil
}
