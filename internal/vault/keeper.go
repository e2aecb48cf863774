// Package vault implements the bankroll: pooled stake-token liquidity,
// reserved exposure for open bets, senior liabilities (bonus and fee pool)
// and liquidity-provider shares.
package vault

import (
	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/token"
)

const (
	MinExposureCapBps     uint32 = 100
	MaxExposureCapBps     uint32 = 500
	DefaultExposureCapBps uint32 = 200
	DefaultFeeSplitBps    uint32 = 7_500

	// Deposits pause while free liquidity is below this share of gross equity.
	minFreeLiquidityBps uint32 = 2_000
)

type Keeper struct {
	st     *state.State
	env    ledger.Env
	token  *token.Keeper
	events *events.Manager
	logger log.Logger

	guard ledger.ReentrancyGuard
}

func NewKeeper(st *state.State, env ledger.Env, tk *token.Keeper, em *events.Manager, logger log.Logger) *Keeper {
	if st == nil {
		panic("vault keeper: state is nil")
	}
	if tk == nil {
		panic("vault keeper: token keeper is nil")
	}
	if em == nil {
		panic("vault keeper: event manager is nil")
	}
	return &Keeper{
		st:     st,
		env:    env,
		token:  tk,
		events: em,
		logger: logger.With("module", "x/vault"),
	}
}

func (k *Keeper) Address() common.Address { return ledger.VaultAddress }

// Coordinator is the only account allowed to reserve and finalize.
func (k *Keeper) Coordinator() common.Address { return ledger.EscrowAddress }

func (k *Keeper) Token() common.Address { return k.token.Address() }

func (k *Keeper) Params() state.VaultParams { return k.st.Vault.Params }

// ---- Views ----

func (k *Keeper) Balance() uint64 {
	return k.token.BalanceOf(k.Address())
}

// Liabilities is the senior claim on the balance: bonus owed plus fees.
func (k *Keeper) Liabilities() uint64 {
	v := k.st.Vault
	if v.TotalBonus > ^uint64(0)-v.FeePool {
		return ^uint64(0)
	}
	return v.TotalBonus + v.FeePool
}

// FreeLiquidity is balance minus liabilities minus reserved exposure,
// floored at zero.
func (k *Keeper) FreeLiquidity() uint64 {
	return ledger.SubFloor(k.LpGrossEquity(), k.st.Vault.TotalReserved)
}

// LpGrossEquity values LP shares without subtracting open reservations.
func (k *Keeper) LpGrossEquity() uint64 {
	return ledger.SubFloor(k.Balance(), k.Liabilities())
}

// MaxAllowedPayout caps the worst-case payout of any single new bet.
func (k *Keeper) MaxAllowedPayout() uint64 {
	return ledger.Bps(k.FreeLiquidity(), k.st.Vault.Params.MaxExposureCapBps)
}

func (k *Keeper) TotalReserved() uint64 { return k.st.Vault.TotalReserved }

func (k *Keeper) TotalBonus() uint64 { return k.st.Vault.TotalBonus }

func (k *Keeper) FeePool() uint64 { return k.st.Vault.FeePool }

func (k *Keeper) BonusBalance(user common.Address) uint64 {
	return k.st.Vault.BonusBalance[user]
}

func (k *Keeper) BonusNonce(user common.Address) uint64 {
	return k.st.Vault.BonusNonces[user]
}

func (k *Keeper) TotalLpShares() uint64 { return k.st.Vault.TotalLpShares }

func (k *Keeper) LpShares(lp common.Address) uint64 {
	return k.st.Vault.LpShares[lp]
}

func (k *Keeper) IsWhitelisted(lp common.Address) bool {
	return k.st.Vault.LpWhitelist[lp]
}
