package ledger

import "onchainwager/internal/types"

// ReentrancyGuard is held for the duration of a state-mutating entry point.
type ReentrancyGuard struct {
	entered bool
}

// Enter acquires the guard; the returned func releases it.
func (g *ReentrancyGuard) Enter() (func(), error) {
	if g.entered {
		return nil, types.ErrReentrancy
	}
	g.entered = true
	return func() { g.entered = false }, nil
}
