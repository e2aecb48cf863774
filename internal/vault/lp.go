package vault

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/types"
)

// DepositLP pulls assets from a whitelisted provider and mints shares
// priced against gross equity. The first deposit fixes shares 1:1 and
// requires an untouched vault.
func (k *Keeper) DepositLP(lp common.Address, assets uint64) (uint64, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	v := &k.st.Vault
	if !v.LpWhitelist[lp] {
		return 0, types.ErrNotWhitelisted.Wrapf("lp %s", lp.Hex())
	}
	if assets == 0 || assets < v.Params.MinDeposit {
		return 0, types.ErrBelowMinimum.Wrapf("assets=%d minDeposit=%d", assets, v.Params.MinDeposit)
	}

	var shares uint64
	if v.TotalLpShares == 0 {
		if k.Balance() != 0 || v.TotalBonus != 0 || v.FeePool != 0 || v.TotalReserved != 0 {
			return 0, types.ErrVaultNotClean.Wrapf("balance=%d bonus=%d fees=%d reserved=%d",
				k.Balance(), v.TotalBonus, v.FeePool, v.TotalReserved)
		}
		shares = assets
	} else {
		gross := k.LpGrossEquity()
		if gross == 0 {
			return 0, types.ErrZeroShares.Wrap("gross equity is zero")
		}
		free := k.FreeLiquidity()
		floor, err := ledger.MulDiv(gross, uint64(minFreeLiquidityBps), ledger.BpsDenominator, "free liquidity floor")
		if err != nil {
			return 0, err
		}
		if free < floor {
			return 0, types.ErrDepositsLocked.Wrapf("freeLiquidity=%d below %d", free, floor)
		}
		shares, err = ledger.MulDiv(assets, v.TotalLpShares, gross, "shares")
		if err != nil {
			return 0, err
		}
		if shares == 0 {
			return 0, types.ErrZeroShares.Wrapf("assets=%d", assets)
		}
	}

	total, err := ledger.AddChecked(v.TotalLpShares, shares, "totalLpShares")
	if err != nil {
		return 0, err
	}
	v.TotalLpShares = total
	v.LpShares[lp] += shares

	if err := k.token.Transfer(lp, k.Address(), assets); err != nil {
		return 0, err
	}

	k.events.Emit(types.EventTypeLPDeposited,
		events.Addr("lp", lp),
		events.U64("assets", assets),
		events.U64("shares", shares),
	)
	k.logger.Info("lp deposit", "lp", lp.Hex(), "assets", assets, "shares", shares)
	return shares, nil
}

// WithdrawLP burns shares for their pro-rata slice of gross equity. The
// payout must fit in free liquidity; funds backing open bets stay put.
func (k *Keeper) WithdrawLP(lp common.Address, shares uint64) (uint64, error) {
	release, err := k.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	v := &k.st.Vault
	if !v.LpWhitelist[lp] {
		return 0, types.ErrNotWhitelisted.Wrapf("lp %s", lp.Hex())
	}
	held := v.LpShares[lp]
	if shares == 0 || shares > held {
		return 0, types.ErrInvalidRequest.Wrapf("shares=%d held=%d", shares, held)
	}

	assets, err := ledger.MulDiv(shares, k.LpGrossEquity(), v.TotalLpShares, "assets")
	if err != nil {
		return 0, err
	}
	if assets == 0 {
		return 0, types.ErrZeroShares.Wrapf("shares=%d redeem for nothing", shares)
	}
	if free := k.FreeLiquidity(); assets > free {
		return 0, types.ErrInsufficientLiquidity.Wrapf("assets=%d freeLiquidity=%d", assets, free)
	}

	v.LpShares[lp] = held - shares
	if v.LpShares[lp] == 0 {
		delete(v.LpShares, lp)
	}
	v.TotalLpShares -= shares

	if err := k.token.Transfer(k.Address(), lp, assets); err != nil {
		return 0, err
	}

	k.events.Emit(types.EventTypeLPWithdrawn,
		events.Addr("lp", lp),
		events.U64("shares", shares),
		events.U64("assets", assets),
	)
	k.logger.Info("lp withdraw", "lp", lp.Hex(), "shares", shares, "assets", assets)
	return assets, nil
}
