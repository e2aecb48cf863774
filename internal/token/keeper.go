// Package token implements the stake token: balances, plain transfers and
// the pre-authorized pull transfers (transferWithAuthorization and its
// payee-only form, receiveWithAuthorization).
package token

import (
	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"onchainwager/internal/events"
	"onchainwager/internal/ledger"
	"onchainwager/internal/state"
	"onchainwager/internal/types"
)

const (
	authorizationDomainV1 = "wager/token/transfer-with-authorization/v1"
	receiveDomainV1       = "wager/token/receive-with-authorization/v1"
)

// Authorization is a holder-signed permit for exactly one transfer, usable
// inside its validity window at most once per (From, Nonce). Signed over
// Digest any caller may execute it; signed over ReceiveDigest only To may.
type Authorization struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Value       uint64         `json:"value"`
	ValidAfter  int64          `json:"validAfter"`
	ValidBefore int64          `json:"validBefore"`
	Nonce       common.Hash    `json:"nonce"`
	Signature   []byte         `json:"signature"`
}

// Digest is the message the holder signs for TransferWithAuthorization.
func (a Authorization) Digest() common.Hash { return a.digest(authorizationDomainV1) }

// ReceiveDigest is the message the holder signs for ReceiveWithAuthorization.
func (a Authorization) ReceiveDigest() common.Hash { return a.digest(receiveDomainV1) }

func (a Authorization) digest(domain string) common.Hash {
	return crypto.Keccak256Hash(
		ledger.DomainHash(domain).Bytes(),
		ledger.Word(ledger.TokenAddress),
		ledger.Word(a.From),
		ledger.Word(a.To),
		ledger.U64Word(a.Value),
		ledger.I64Word(a.ValidAfter),
		ledger.I64Word(a.ValidBefore),
		a.Nonce.Bytes(),
	)
}

type Keeper struct {
	st     *state.State
	env    ledger.Env
	events *events.Manager
	logger log.Logger
}

func NewKeeper(st *state.State, env ledger.Env, em *events.Manager, logger log.Logger) *Keeper {
	if st == nil {
		panic("token keeper: state is nil")
	}
	if em == nil {
		panic("token keeper: event manager is nil")
	}
	return &Keeper{
		st:     st,
		env:    env,
		events: em,
		logger: logger.With("module", "x/token"),
	}
}

func (k *Keeper) Address() common.Address {
	return ledger.TokenAddress
}

func (k *Keeper) BalanceOf(addr common.Address) uint64 {
	return k.st.Token.Balances[addr]
}

func (k *Keeper) TotalSupply() uint64 {
	return k.st.Token.Supply
}

// Mint credits new tokens; restricted to the owner.
func (k *Keeper) Mint(caller, to common.Address, amount uint64) error {
	if caller != k.st.Owner {
		return types.ErrUnauthorized.Wrap("mint is owner only")
	}
	if to == (common.Address{}) || amount == 0 {
		return types.ErrInvalidRequest.Wrap("missing to/amount")
	}
	supply, err := ledger.AddChecked(k.st.Token.Supply, amount, "supply")
	if err != nil {
		return err
	}
	bal, err := ledger.AddChecked(k.st.Token.Balances[to], amount, "balance")
	if err != nil {
		return err
	}
	k.st.Token.Supply = supply
	k.st.Token.Balances[to] = bal
	k.emitTransfer(common.Address{}, to, amount)
	return nil
}

// Transfer moves amount from -> to. Callers are responsible for having
// authorized from (tx signer or the owning module).
func (k *Keeper) Transfer(from, to common.Address, amount uint64) error {
	if to == (common.Address{}) {
		return types.ErrInvalidRequest.Wrap("transfer to zero address")
	}
	bal := k.st.Token.Balances[from]
	if bal < amount {
		return types.ErrInsufficientBalance.Wrapf("have=%d need=%d", bal, amount)
	}
	if from == to {
		k.emitTransfer(from, to, amount)
		return nil
	}
	toBal, err := ledger.AddChecked(k.st.Token.Balances[to], amount, "balance")
	if err != nil {
		return err
	}
	k.st.Token.Balances[from] = bal - amount
	k.st.Token.Balances[to] = toBal
	k.emitTransfer(from, to, amount)
	return nil
}

// TransferWithAuthorization executes a signed pull transfer. The validity
// window is exclusive on both ends and judged against block time.
func (k *Keeper) TransferWithAuthorization(auth Authorization) error {
	return k.executeAuthorization(auth, auth.Digest())
}

// ReceiveWithAuthorization is TransferWithAuthorization restricted to the
// payee, so a copy seen in flight cannot be executed by anyone else.
func (k *Keeper) ReceiveWithAuthorization(caller common.Address, auth Authorization) error {
	if caller != auth.To {
		return types.ErrUnauthorized.Wrapf("caller %s is not the payee %s", caller.Hex(), auth.To.Hex())
	}
	return k.executeAuthorization(auth, auth.ReceiveDigest())
}

func (k *Keeper) executeAuthorization(auth Authorization, digest common.Hash) error {
	now := k.env.Time()
	if now <= auth.ValidAfter {
		return types.ErrAuthorizationNotYetValid.Wrapf("now=%d validAfter=%d", now, auth.ValidAfter)
	}
	if now >= auth.ValidBefore {
		return types.ErrAuthorizationExpired.Wrapf("now=%d validBefore=%d", now, auth.ValidBefore)
	}
	if k.AuthorizationUsed(auth.From, auth.Nonce) {
		return types.ErrAuthorizationUsed.Wrapf("from=%s nonce=%s", auth.From.Hex(), auth.Nonce.Hex())
	}
	if !ledger.Verify(digest, auth.Signature, auth.From) {
		return types.ErrInvalidAuthorizationSig
	}

	if err := k.Transfer(auth.From, auth.To, auth.Value); err != nil {
		return err
	}
	// Spent only once the transfer went through.
	used := k.st.Token.Authorizations[auth.From]
	if used == nil {
		used = map[common.Hash]int64{}
		k.st.Token.Authorizations[auth.From] = used
	}
	used[auth.Nonce] = auth.ValidBefore

	k.events.Emit(types.EventTypeAuthorizationUsed,
		events.Addr("authorizer", auth.From),
		events.Hash("nonce", auth.Nonce),
	)
	return nil
}

func (k *Keeper) AuthorizationUsed(from common.Address, nonce common.Hash) bool {
	_, used := k.st.Token.Authorizations[from][nonce]
	return used
}

func (k *Keeper) emitTransfer(from, to common.Address, amount uint64) {
	k.events.Emit(types.EventTypeTransfer,
		events.Addr("from", from),
		events.Addr("to", to),
		events.U64("value", amount),
	)
}
