package app

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/codec"
	"onchainwager/internal/escrow"
	"onchainwager/internal/events"
	"onchainwager/internal/state"
	"onchainwager/internal/token"
	"onchainwager/internal/types"
	"onchainwager/internal/vault"
)

func decode(env codec.TxEnvelope, msg any) error {
	if err := codec.DecodeValue(env, msg); err != nil {
		return types.ErrInvalidRequest.Wrap(err.Error())
	}
	return nil
}

// route dispatches env to the owning keeper. Signed types are authenticated
// first and the signer becomes the acting account.
func (a *WagerApp) route(st *state.State, k keepers, env codec.TxEnvelope) error {
	if !codec.IsKnownType(env.Type) {
		return types.ErrUnknownTxType.Wrap(env.Type)
	}
	var signer common.Address
	if codec.RequiresSignature(env.Type) {
		var err error
		if signer, err = authenticate(st, env); err != nil {
			return err
		}
	}

	switch env.Type {
	case codec.TypeTransferOwnership:
		var msg codec.TransferOwnershipTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return transferOwnership(st, k, signer, msg.NewOwner)

	// ---- token ----

	case codec.TypeTokenMint:
		var msg codec.TokenMintTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.token.Mint(signer, msg.To, msg.Amount)

	case codec.TypeTokenTransfer:
		var msg codec.TokenTransferTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		if msg.Amount == 0 {
			return types.ErrInvalidRequest.Wrap("missing amount")
		}
		return k.token.Transfer(signer, msg.To, msg.Amount)

	case codec.TypeTokenTransferWithAuthorization:
		var msg codec.TokenTransferWithAuthorizationTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.token.TransferWithAuthorization(token.Authorization{
			From:        msg.From,
			To:          msg.To,
			Value:       msg.Value,
			ValidAfter:  msg.ValidAfter,
			ValidBefore: msg.ValidBefore,
			Nonce:       msg.Nonce,
			Signature:   msg.Signature,
		})

	// ---- escrow ----

	case codec.TypeEscrowAddGame:
		var msg codec.EscrowAddGameTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.escrow.AddGame(signer, msg.Handle)
		return err

	case codec.TypeEscrowSetGameBlocked:
		var msg codec.EscrowSetGameBlockedTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.escrow.SetGameBlocked(signer, msg.GameID, msg.Blocked)

	case codec.TypeEscrowSetRelayer:
		var msg codec.EscrowSetRelayerTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.escrow.SetRelayer(signer, msg.Relayer)

	case codec.TypeEscrowSetFeeBps:
		var msg codec.EscrowSetFeeBpsTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.escrow.SetFeeBps(signer, msg.FeeBps)

	case codec.TypeEscrowCommitBet:
		var msg codec.EscrowCommitBetTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.escrow.CommitBet(escrow.CommitRequest{
			BetID:       msg.BetID,
			EncodedBet:  msg.EncodedBet,
			User:        msg.User,
			Stake:       msg.Stake,
			ValidAfter:  msg.ValidAfter,
			ValidBefore: msg.ValidBefore,
			Nonce:       msg.Nonce,
			AuthSig:     msg.AuthSig,
			UserSig:     msg.UserSig,
			RelayerSig:  msg.RelayerSig,
		})

	case codec.TypeEscrowSettleBet:
		var msg codec.EscrowSettleBetTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.escrow.SettleBet(msg.BetID, msg.Secret)
		return err

	// ---- vault ----

	case codec.TypeVaultDistributeFees:
		_, _, err := k.vault.DistributeFees()
		return err

	case codec.TypeVaultClaimBonus:
		var msg codec.VaultClaimBonusTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.vault.ClaimBonus(signer, msg.Amount)
		return err

	case codec.TypeVaultClaimBonusWithSign:
		var msg codec.VaultClaimBonusWithSignTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.vault.ClaimBonusWithSign(vault.BonusClaim{
			User:      msg.User,
			Amount:    msg.Amount,
			Deadline:  msg.Deadline,
			Signature: msg.Signature,
		})
		return err

	case codec.TypeVaultDepositLP:
		var msg codec.VaultDepositLPTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.vault.DepositLP(signer, msg.Assets)
		return err

	case codec.TypeVaultWithdrawLP:
		var msg codec.VaultWithdrawLPTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		_, err := k.vault.WithdrawLP(signer, msg.Shares)
		return err

	case codec.TypeVaultSetFeeRecipient:
		var msg codec.VaultSetFeeRecipientTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetFeeRecipient(signer, msg.Recipient)

	case codec.TypeVaultSetLpWhitelist:
		var msg codec.VaultSetLpWhitelistTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetLpWhitelist(signer, msg.LP, msg.Allowed)

	case codec.TypeVaultSetMaxExposureCapBps:
		var msg codec.VaultSetMaxExposureCapBpsTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetMaxExposureCapBps(signer, msg.Bps)

	case codec.TypeVaultSetMinDeposit:
		var msg codec.VaultSetMinDepositTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetMinDeposit(signer, msg.Amount)

	case codec.TypeVaultSetFeeSplitBps:
		var msg codec.VaultSetFeeSplitBpsTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetFeeSplitBps(signer, msg.Bps)

	case codec.TypeVaultSetMinBonusClaim:
		var msg codec.VaultSetMinBonusClaimTx
		if err := decode(env, &msg); err != nil {
			return err
		}
		return k.vault.SetMinBonusClaim(signer, msg.Amount)

	default:
		return types.ErrUnknownTxType.Wrap(env.Type)
	}
}

func transferOwnership(st *state.State, k keepers, caller, newOwner common.Address) error {
	if caller != st.Owner {
		return types.ErrUnauthorized.Wrapf("caller %s is not the owner", caller.Hex())
	}
	if newOwner == (common.Address{}) {
		return types.ErrInvalidRequest.Wrap("new owner is the zero address")
	}
	prev := st.Owner
	st.Owner = newOwner
	k.events.Emit(types.EventTypeOwnershipTransferred,
		events.Addr("previousOwner", prev),
		events.Addr("newOwner", newOwner),
	)
	return nil
}
