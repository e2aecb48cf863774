// Package game defines the contract between the bet coordinator and the
// stateless resolution modules it dispatches to.
//
// An encoded bet is a 256-bit big-endian word. Its top GameIDBits bits carry
// the id of the module that interprets the rest of the payload.
package game

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

const (
	GameIDBits  = 10
	GameIDShift = 256 - GameIDBits
	MaxGameID   = 1<<GameIDBits - 1
)

// Quote is the pre-commit view of a bet.
type Quote struct {
	Stake     uint64
	MaxPayout uint64 // worst case over every possible outcome
}

// Outcome is the resolved view of a bet. Payout is gross (includes any
// returned stake).
type Outcome struct {
	Stake  uint64
	Payout uint64
}

// Module is a pure function of its inputs; implementations hold only
// configuration fixed at construction.
type Module interface {
	GameID() uint16
	Name() string
	// EdgeBps is the declared house edge in basis points.
	EdgeBps() uint32

	Quote(encoded common.Hash) (Quote, error)
	Resolve(encoded common.Hash, seed common.Hash) (Outcome, error)
	// Refund is the amount returned when a bet expires unresolved.
	Refund(encoded common.Hash) (uint64, error)
}

// DecodeGameID extracts the module id from the top bits of encoded.
func DecodeGameID(encoded common.Hash) uint16 {
	x := new(uint256.Int).SetBytes32(encoded[:])
	return uint16(x.Rsh(x, GameIDShift).Uint64())
}

// Catalog is the set of module implementations available to the
// coordinator, keyed by handle. Registration into the coordinator's
// registry is a separate admin step.
type Catalog map[string]Module

func NewCatalog(modules ...Module) Catalog {
	c := Catalog{}
	for _, m := range modules {
		c[m.Name()] = m
	}
	return c
}

func (c Catalog) Lookup(handle string) (Module, error) {
	m, ok := c[handle]
	if !ok {
		return nil, fmt.Errorf("no game module with handle %q", handle)
	}
	return m, nil
}

func (c Catalog) Handles() []string {
	handles := lo.Keys(c)
	sort.Strings(handles)
	return handles
}
