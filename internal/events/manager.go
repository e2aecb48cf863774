// Package events collects the append-only audit log emitted while a single
// transaction executes. Events are only surfaced to CometBFT when the
// transaction commits; a failed transaction discards its manager.
package events

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

type Manager struct {
	events []abci.Event
}

func NewManager() *Manager {
	return &Manager{}
}

// Emit appends an event. Attribute order is preserved as given.
func (m *Manager) Emit(typ string, attrs ...abci.EventAttribute) {
	m.events = append(m.events, abci.Event{Type: typ, Attributes: attrs})
}

func (m *Manager) Events() []abci.Event {
	out := make([]abci.Event, len(m.events))
	copy(out, m.events)
	return out
}

// ---- Attribute helpers ----

func Str(key, value string) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value, Index: true}
}

func U64(key string, value uint64) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: fmt.Sprintf("%d", value), Index: false}
}

func I64(key string, value int64) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: fmt.Sprintf("%d", value), Index: false}
}

func Bool(key string, value bool) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: fmt.Sprintf("%t", value), Index: false}
}

func Addr(key string, value common.Address) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value.Hex(), Index: true}
}

func Hash(key string, value common.Hash) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value.Hex(), Index: true}
}
