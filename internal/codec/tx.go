package codec

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxEnvelope is the transaction container carried in CometBFT tx bytes.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Signed envelopes (required for owner, holder and LP operations):
	// - Nonce: decimal, strictly increasing per signer.
	// - Signer: hex address of the account acting.
	// - Sig: 65-byte recoverable secp256k1 signature over the auth digest.
	Nonce  string        `json:"nonce,omitempty"`
	Signer string        `json:"signer,omitempty"`
	Sig    hexutil.Bytes `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// DecodeValue unmarshals env.Value into msg.
func DecodeValue(env TxEnvelope, msg any) error {
	if len(env.Value) == 0 {
		return fmt.Errorf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, msg); err != nil {
		return fmt.Errorf("bad %s value: %w", env.Type, err)
	}
	return nil
}

const (
	TypeTransferOwnership = "admin/transfer_ownership"

	TypeTokenMint                      = "token/mint"
	TypeTokenTransfer                  = "token/transfer"
	TypeTokenTransferWithAuthorization = "token/transfer_with_authorization"

	TypeEscrowAddGame        = "escrow/add_game"
	TypeEscrowSetGameBlocked = "escrow/set_game_blocked"
	TypeEscrowSetRelayer     = "escrow/set_relayer"
	TypeEscrowSetFeeBps      = "escrow/set_fee_bps"
	TypeEscrowCommitBet      = "escrow/commit_bet"
	TypeEscrowSettleBet      = "escrow/settle_bet"

	TypeVaultDistributeFees       = "vault/distribute_fees"
	TypeVaultClaimBonus           = "vault/claim_bonus"
	TypeVaultClaimBonusWithSign   = "vault/claim_bonus_with_sign"
	TypeVaultDepositLP            = "vault/deposit_lp"
	TypeVaultWithdrawLP           = "vault/withdraw_lp"
	TypeVaultSetFeeRecipient      = "vault/set_fee_recipient"
	TypeVaultSetLpWhitelist       = "vault/set_lp_whitelist"
	TypeVaultSetMaxExposureCapBps = "vault/set_max_exposure_cap_bps"
	TypeVaultSetMinDeposit        = "vault/set_min_deposit"
	TypeVaultSetFeeSplitBps       = "vault/set_fee_split_bps"
	TypeVaultSetMinBonusClaim     = "vault/set_min_bonus_claim"
)

// unsignedTypes may be submitted by anyone without an envelope signature;
// their authorization travels inside the message.
var unsignedTypes = map[string]bool{
	TypeTokenTransferWithAuthorization: true,
	TypeEscrowCommitBet:                true,
	TypeEscrowSettleBet:                true,
	TypeVaultDistributeFees:            true,
	TypeVaultClaimBonusWithSign:        true,
}

var signedTypes = map[string]bool{
	TypeTransferOwnership:         true,
	TypeTokenMint:                 true,
	TypeTokenTransfer:             true,
	TypeEscrowAddGame:             true,
	TypeEscrowSetGameBlocked:      true,
	TypeEscrowSetRelayer:          true,
	TypeEscrowSetFeeBps:           true,
	TypeVaultClaimBonus:           true,
	TypeVaultDepositLP:            true,
	TypeVaultWithdrawLP:           true,
	TypeVaultSetFeeRecipient:      true,
	TypeVaultSetLpWhitelist:       true,
	TypeVaultSetMaxExposureCapBps: true,
	TypeVaultSetMinDeposit:        true,
	TypeVaultSetFeeSplitBps:       true,
	TypeVaultSetMinBonusClaim:     true,
}

func IsKnownType(typ string) bool { return signedTypes[typ] || unsignedTypes[typ] }

// RequiresSignature reports whether typ must carry a signed envelope.
func RequiresSignature(typ string) bool { return signedTypes[typ] }

// ---- Admin ----

type TransferOwnershipTx struct {
	NewOwner common.Address `json:"newOwner"`
}

// ---- Token ----

type TokenMintTx struct {
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

// TokenTransferTx moves tokens out of the signer's balance.
type TokenTransferTx struct {
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

type TokenTransferWithAuthorizationTx struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Value       uint64         `json:"value"`
	ValidAfter  int64          `json:"validAfter"`
	ValidBefore int64          `json:"validBefore"`
	Nonce       common.Hash    `json:"nonce"`
	Signature   hexutil.Bytes  `json:"signature"`
}

// ---- Escrow ----

type EscrowAddGameTx struct {
	Handle string `json:"handle"`
}

type EscrowSetGameBlockedTx struct {
	GameID  uint16 `json:"gameId"`
	Blocked bool   `json:"blocked"`
}

type EscrowSetRelayerTx struct {
	Relayer common.Address `json:"relayer"`
}

type EscrowSetFeeBpsTx struct {
	FeeBps uint32 `json:"feeBps"`
}

type EscrowCommitBetTx struct {
	BetID      common.Hash    `json:"betId"`
	EncodedBet common.Hash    `json:"encodedBet"`
	User       common.Address `json:"user"`
	Stake      uint64         `json:"stake"`

	ValidAfter  int64         `json:"validAfter"`
	ValidBefore int64         `json:"validBefore"`
	Nonce       common.Hash   `json:"nonce"`
	AuthSig     hexutil.Bytes `json:"authSig"`

	UserSig    hexutil.Bytes `json:"userSig"`
	RelayerSig hexutil.Bytes `json:"relayerSig"`
}

type EscrowSettleBetTx struct {
	BetID  common.Hash `json:"betId"`
	Secret common.Hash `json:"secret,omitempty"`
}

// ---- Vault ----

type VaultDistributeFeesTx struct{}

// VaultClaimBonusTx withdraws the signer's bonus; zero claims everything.
type VaultClaimBonusTx struct {
	Amount uint64 `json:"amount"`
}

type VaultClaimBonusWithSignTx struct {
	User      common.Address `json:"user"`
	Amount    uint64         `json:"amount"`
	Deadline  int64          `json:"deadline"`
	Signature hexutil.Bytes  `json:"signature"`
}

type VaultDepositLPTx struct {
	Assets uint64 `json:"assets"`
}

type VaultWithdrawLPTx struct {
	Shares uint64 `json:"shares"`
}

type VaultSetFeeRecipientTx struct {
	Recipient common.Address `json:"recipient"`
}

type VaultSetLpWhitelistTx struct {
	LP      common.Address `json:"lp"`
	Allowed bool           `json:"allowed"`
}

type VaultSetMaxExposureCapBpsTx struct {
	Bps uint32 `json:"bps"`
}

type VaultSetMinDepositTx struct {
	Amount uint64 `json:"amount"`
}

type VaultSetFeeSplitBpsTx struct {
	Bps uint32 `json:"bps"`
}

type VaultSetMinBonusClaimTx struct {
	Amount uint64 `json:"amount"`
}
