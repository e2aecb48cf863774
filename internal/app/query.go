package app

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"

	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
)

type gameView struct {
	ID      uint16 `json:"id"`
	Handle  string `json:"handle"`
	Name    string `json:"name"`
	EdgeBps uint32 `json:"edgeBps"`
	Blocked bool   `json:"blocked"`
}

type vaultView struct {
	Address          common.Address    `json:"address"`
	Balance          uint64            `json:"balance"`
	TotalReserved    uint64            `json:"totalReserved"`
	TotalBonus       uint64            `json:"totalBonus"`
	FeePool          uint64            `json:"feePool"`
	FreeLiquidity    uint64            `json:"freeLiquidity"`
	LpGrossEquity    uint64            `json:"lpGrossEquity"`
	MaxAllowedPayout uint64            `json:"maxAllowedPayout"`
	TotalLpShares    uint64            `json:"totalLpShares"`
	Params           state.VaultParams `json:"params"`
}

type betView struct {
	BetID     common.Hash `json:"betId"`
	Live      bool        `json:"live"`
	Bet       *state.Bet  `json:"bet,omitempty"`
	SettledAt int64       `json:"settledAt,omitempty"`
}

type quoteView struct {
	GameID           uint16 `json:"gameId"`
	Stake            uint64 `json:"stake"`
	MaxPayout        uint64 `json:"maxPayout"`
	MaxAllowedPayout uint64 `json:"maxAllowedPayout"`
	WithinCap        bool   `json:"withinCap"`
}

// Query paths:
// - /account/<addr>
// - /bet/<id>
// - /bonus/<addr>
// - /games, /game/<id>
// - /lp/<addr>
// - /quote/<encodedBetHex>
// - /vault
func (a *WagerApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Reads run against live state through a throwaway keeper set.
	k := a.keepers(a.st)
	path := strings.TrimSpace(req.Path)
	switch {
	case path == "/games":
		ids := lo.Keys(a.st.Escrow.Games)
		slices.Sort(ids)
		out := lo.Map(ids, func(id uint16, _ int) gameView { return a.gameView(id) })
		return a.ok(out)

	case strings.HasPrefix(path, "/game/"):
		id, err := strconv.ParseUint(strings.TrimPrefix(path, "/game/"), 10, 16)
		if err != nil {
			return a.fail("invalid game id")
		}
		if a.st.Escrow.Games[uint16(id)] == nil {
			return a.fail("game not found")
		}
		return a.ok(a.gameView(uint16(id)))

	case path == "/vault":
		return a.ok(vaultView{
			Address:          k.vault.Address(),
			Balance:          k.vault.Balance(),
			TotalReserved:    k.vault.TotalReserved(),
			TotalBonus:       k.vault.TotalBonus(),
			FeePool:          k.vault.FeePool(),
			FreeLiquidity:    k.vault.FreeLiquidity(),
			LpGrossEquity:    k.vault.LpGrossEquity(),
			MaxAllowedPayout: k.vault.MaxAllowedPayout(),
			TotalLpShares:    k.vault.TotalLpShares(),
			Params:           k.vault.Params(),
		})

	case strings.HasPrefix(path, "/account/"):
		addr, ok := parseAddr(strings.TrimPrefix(path, "/account/"))
		if !ok {
			return a.fail("invalid address")
		}
		return a.ok(map[string]any{
			"address": addr,
			"balance": k.token.BalanceOf(addr),
			"nonce":   a.st.NonceMax[addr],
		})

	case strings.HasPrefix(path, "/lp/"):
		addr, ok := parseAddr(strings.TrimPrefix(path, "/lp/"))
		if !ok {
			return a.fail("invalid address")
		}
		shares := k.vault.LpShares(addr)
		var equity uint64
		if total := k.vault.TotalLpShares(); total != 0 {
			equity, _ = ledger.MulDiv(shares, k.vault.LpGrossEquity(), total, "equity")
		}
		return a.ok(map[string]any{
			"address":     addr,
			"shares":      shares,
			"equity":      equity,
			"whitelisted": k.vault.IsWhitelisted(addr),
		})

	case strings.HasPrefix(path, "/bonus/"):
		addr, ok := parseAddr(strings.TrimPrefix(path, "/bonus/"))
		if !ok {
			return a.fail("invalid address")
		}
		return a.ok(map[string]any{
			"address": addr,
			"balance": k.vault.BonusBalance(addr),
			"nonce":   k.vault.BonusNonce(addr),
		})

	case strings.HasPrefix(path, "/bet/"):
		id, err := hexutil.Decode(strings.TrimPrefix(path, "/bet/"))
		if err != nil || len(id) != common.HashLength {
			return a.fail("invalid bet id")
		}
		betID := common.BytesToHash(id)
		if bet, ok := k.escrow.Bet(betID); ok {
			return a.ok(betView{BetID: betID, Live: true, Bet: &bet})
		}
		if h, ok := a.st.Escrow.Settled[betID]; ok {
			return a.ok(betView{BetID: betID, SettledAt: h})
		}
		return a.fail("bet not found")

	case strings.HasPrefix(path, "/quote/"):
		raw, err := hexutil.Decode(strings.TrimPrefix(path, "/quote/"))
		if err != nil || len(raw) != common.HashLength {
			return a.fail("invalid encoded bet")
		}
		encoded := common.BytesToHash(raw)
		id, m, err := k.escrow.Game(encoded)
		if err != nil {
			return a.fail(err.Error())
		}
		q, err := m.Quote(encoded)
		if err != nil {
			return a.fail(err.Error())
		}
		limit := k.vault.MaxAllowedPayout()
		return a.ok(quoteView{
			GameID:           id,
			Stake:            q.Stake,
			MaxPayout:        q.MaxPayout,
			MaxAllowedPayout: limit,
			WithinCap:        q.MaxPayout <= limit,
		})

	default:
		return a.fail("unknown query path")
	}
}

func (a *WagerApp) gameView(id uint16) gameView {
	entry := a.st.Escrow.Games[id]
	v := gameView{ID: id, Handle: entry.Handle, Blocked: entry.Blocked}
	if m, err := a.catalog.Lookup(entry.Handle); err == nil {
		v.Name = m.Name()
		v.EdgeBps = m.EdgeBps()
	}
	return v
}

func (a *WagerApp) ok(v any) (*abci.QueryResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return a.fail(err.Error())
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

func (a *WagerApp) fail(msg string) (*abci.QueryResponse, error) {
	return &abci.QueryResponse{Code: 1, Log: msg, Height: a.st.Height}, nil
}

func parseAddr(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
