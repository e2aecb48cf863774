package types

// Event types emitted by the wagering application.
const (
	EventTypeOwnershipTransferred = "OwnershipTransferred"

	EventTypeTransfer          = "Transfer"
	EventTypeAuthorizationUsed = "AuthorizationUsed"

	EventTypeGameRegistered = "GameRegistered"
	EventTypeGameBlocked    = "GameBlocked"
	EventTypeRelayerUpdated = "RelayerUpdated"
	EventTypeFeeBpsUpdated  = "FeeBpsUpdated"
	EventTypeBetCommitted   = "BetCommitted"
	EventTypeBetSettled     = "BetSettled"

	EventTypeReservationCreated   = "ReservationCreated"
	EventTypeBetFinalized         = "BetFinalized"
	EventTypeFeesDistributed      = "FeesDistributed"
	EventTypeBonusClaimed         = "BonusClaimed"
	EventTypeLPDeposited          = "LPDeposited"
	EventTypeLPWithdrawn          = "LPWithdrawn"
	EventTypeFeeRecipientUpdated  = "FeeRecipientUpdated"
	EventTypeLPWhitelistUpdated   = "LPWhitelistUpdated"
	EventTypeExposureCapUpdated   = "ExposureCapUpdated"
	EventTypeMinDepositUpdated    = "MinDepositUpdated"
	EventTypeFeeSplitUpdated      = "FeeSplitUpdated"
	EventTypeMinBonusClaimUpdated = "MinBonusClaimUpdated"
)

// Settlement paths recorded in BetSettled.path.
const (
	SettlePathReveal   uint8 = 1
	SettlePathFallback uint8 = 2
	SettlePathExpiry   uint8 = 3
)
