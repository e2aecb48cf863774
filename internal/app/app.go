// Package app is the ABCI application hosting the wagering protocol: the
// stake token, the liquidity vault and the bet coordinator.
package app

import (
	"context"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/codec"
	"onchainwager/internal/config"
	"onchainwager/internal/escrow"
	"onchainwager/internal/events"
	"onchainwager/internal/game"
	"onchainwager/internal/game/roulette"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/store"
	"onchainwager/internal/token"
	"onchainwager/internal/types"
	"onchainwager/internal/vault"
)

const (
	AppVersion uint64 = 1

	// RouletteGameID is the id the bundled roulette module reports. It is
	// registered first at genesis.
	RouletteGameID uint16 = 1
)

type WagerApp struct {
	*abci.BaseApplication

	store   *store.Store
	genesis config.Genesis
	catalog game.Catalog
	root    log.Logger
	logger  log.Logger

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
}

func New(db *store.Store, genesis config.Genesis, logger log.Logger) (*WagerApp, error) {
	st, err := db.Load()
	if err != nil {
		return nil, err
	}
	return &WagerApp{
		BaseApplication: abci.NewBaseApplication(),
		store:           db,
		genesis:         genesis,
		catalog:         game.NewCatalog(roulette.New(RouletteGameID)),
		root:            logger,
		logger:          logger.With("module", "app"),
		st:              st,
		lastHash:        st.AppHash(),
	}, nil
}

// keepers wires a fresh keeper set over st. Each transaction gets its own
// set bound to its staged state and event manager.
type keepers struct {
	events *events.Manager
	token  *token.Keeper
	vault  *vault.Keeper
	escrow *escrow.Keeper
}

func (a *WagerApp) keepers(st *state.State) keepers {
	em := events.NewManager()
	env := ledger.FromState(st)
	tk := token.NewKeeper(st, env, em, a.root)
	vk := vault.NewKeeper(st, env, tk, em, a.root)
	ek := escrow.NewKeeper(st, env, a.catalog, vk, tk, em, a.root)
	return keepers{events: em, token: tk, vault: vk, escrow: ek}
}

func (a *WagerApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "onchainwager",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx is structural only; authorization is judged at execution.
func (a *WagerApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		space, code, msg := errorsmod.ABCIInfo(types.ErrInvalidRequest.Wrap(err.Error()), false)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: msg}, nil
	}
	if !codec.IsKnownType(env.Type) {
		space, code, msg := errorsmod.ABCIInfo(types.ErrUnknownTxType.Wrap(env.Type), false)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: msg}, nil
	}
	if codec.RequiresSignature(env.Type) {
		if err := requireSignedEnvelope(env); err != nil {
			space, code, msg := errorsmod.ABCIInfo(err, false)
			return &abci.CheckTxResponse{Codespace: space, Code: code, Log: msg}, nil
		}
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *WagerApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.st.Initialized {
		return &abci.InitChainResponse{AppHash: a.lastHash}, nil
	}
	g, err := genesisFrom(req.AppStateBytes, a.genesis)
	if err != nil {
		return nil, err
	}
	staged, err := a.st.Clone()
	if err != nil {
		return nil, err
	}
	staged.Time = req.Time.Unix()
	if err := a.applyGenesis(staged, g); err != nil {
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	a.st = staged
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis applied", "owner", a.st.Owner.Hex(), "games", len(a.st.Escrow.Games))
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *WagerApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.RecordBlock(req.Height, common.BytesToHash(req.Hash), req.Time.Unix())

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(txBytes))
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *WagerApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(a.st); err != nil {
		a.logger.Error("persist state", "height", a.st.Height, "err", err)
		// Halt loudly rather than continue with an unsaved block.
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one transaction against a staged copy of state. The
// copy replaces live state only on success, so a failed tx leaves no
// partial effects and emits no events.
func (a *WagerApp) deliverTx(txBytes []byte) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(types.ErrInvalidRequest.Wrap(err.Error()))
	}
	staged, err := a.st.Clone()
	if err != nil {
		return errResult(err)
	}
	k := a.keepers(staged)
	if err := a.route(staged, k, env); err != nil {
		a.logger.Debug("tx failed", "type", env.Type, "err", err)
		return errResult(err)
	}
	a.st = staged
	return &abci.ExecTxResult{Code: 0, Events: k.events.Events()}
}

func errResult(err error) *abci.ExecTxResult {
	space, code, msg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: space, Code: code, Log: msg}
}
