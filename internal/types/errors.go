package types

import errorsmod "cosmossdk.io/errors"

const (
	CodespaceApp    = "app"
	CodespaceToken  = "token"
	CodespaceVault  = "vault"
	CodespaceEscrow = "escrow"
)

// app sentinel errors.
var (
	ErrInvalidRequest = errorsmod.Register(CodespaceApp, 2, "invalid request")
	ErrUnauthorized   = errorsmod.Register(CodespaceApp, 3, "unauthorized")
	ErrInvalidTxAuth  = errorsmod.Register(CodespaceApp, 4, "invalid tx authentication")
	ErrUnknownTxType  = errorsmod.Register(CodespaceApp, 5, "unknown tx type")
	ErrReentrancy     = errorsmod.Register(CodespaceApp, 6, "reentrant call")
	ErrOverflow       = errorsmod.Register(CodespaceApp, 7, "arithmetic overflow")
)

// token sentinel errors.
var (
	ErrInsufficientBalance      = errorsmod.Register(CodespaceToken, 2, "insufficient balance")
	ErrAuthorizationUsed        = errorsmod.Register(CodespaceToken, 3, "authorization already used")
	ErrAuthorizationNotYetValid = errorsmod.Register(CodespaceToken, 4, "authorization not yet valid")
	ErrAuthorizationExpired     = errorsmod.Register(CodespaceToken, 5, "authorization expired")
	ErrInvalidAuthorizationSig  = errorsmod.Register(CodespaceToken, 6, "invalid authorization signature")
)

// vault sentinel errors.
var (
	ErrReservesOutOfSync     = errorsmod.Register(CodespaceVault, 2, "reserves out of sync")
	ErrInsufficientBonus     = errorsmod.Register(CodespaceVault, 3, "insufficient bonus")
	ErrDepositsLocked        = errorsmod.Register(CodespaceVault, 4, "deposits locked")
	ErrInsufficientLiquidity = errorsmod.Register(CodespaceVault, 5, "insufficient free liquidity")
	ErrSignatureExpired      = errorsmod.Register(CodespaceVault, 6, "signature expired")
	ErrInvalidSignature      = errorsmod.Register(CodespaceVault, 7, "invalid signature")
	ErrVaultNotClean         = errorsmod.Register(CodespaceVault, 8, "vault not clean for genesis deposit")
	ErrZeroShares            = errorsmod.Register(CodespaceVault, 9, "zero shares")
	ErrNotWhitelisted        = errorsmod.Register(CodespaceVault, 10, "liquidity provider not whitelisted")
	ErrBelowMinimum          = errorsmod.Register(CodespaceVault, 11, "amount below minimum")
)

// escrow sentinel errors.
var (
	ErrBetAlreadyCommitted          = errorsmod.Register(CodespaceEscrow, 2, "bet already committed")
	ErrBetUnknown                   = errorsmod.Register(CodespaceEscrow, 3, "bet unknown")
	ErrGameUnknown                  = errorsmod.Register(CodespaceEscrow, 4, "game unknown")
	ErrGameBlocked                  = errorsmod.Register(CodespaceEscrow, 5, "game blocked")
	ErrInvalidGameID                = errorsmod.Register(CodespaceEscrow, 6, "invalid game id")
	ErrValueTransferNotEqualEncoded = errorsmod.Register(CodespaceEscrow, 7, "value transfer not equal encoded")
	ErrInvalidUserBetSig            = errorsmod.Register(CodespaceEscrow, 8, "invalid user bet signature")
	ErrInvalidRelayerSig            = errorsmod.Register(CodespaceEscrow, 9, "invalid relayer signature")
	ErrExposureExceeded             = errorsmod.Register(CodespaceEscrow, 10, "exposure exceeded")
	ErrTryToRevealInTheSameBlock    = errorsmod.Register(CodespaceEscrow, 11, "try to reveal in the same block")
	ErrInvalidRevealSecret          = errorsmod.Register(CodespaceEscrow, 12, "invalid reveal secret")
	ErrInvalidEncodedBet            = errorsmod.Register(CodespaceEscrow, 13, "invalid encoded bet")
)
