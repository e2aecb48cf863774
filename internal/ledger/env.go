// Package ledger models the execution environment the wagering components run
// against: block height and time, the recent block-hash window, recoverable
// signature checks and module account addresses.
package ledger

import (
	"github.com/ethereum/go-ethereum/common"

	"onchainwager/internal/state"
)

type Env interface {
	Height() int64
	Time() int64
	// BlockHash returns the hash recorded for height, or the zero hash when
	// height is the current height, in the future, or older than the window.
	BlockHash(height int64) common.Hash
}

type stateEnv struct {
	st *state.State
}

// FromState exposes the chain clock tracked in st as an Env.
func FromState(st *state.State) Env {
	return stateEnv{st: st}
}

func (e stateEnv) Height() int64 { return e.st.Height }

func (e stateEnv) Time() int64 { return e.st.Time }

func (e stateEnv) BlockHash(height int64) common.Hash {
	if height >= e.st.Height || height < e.st.Height-state.BlockHashWindow {
		return common.Hash{}
	}
	return e.st.BlockHashes[height]
}
