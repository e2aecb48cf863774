// Package store persists the ledger state snapshot between blocks.
package store

import (
	"fmt"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"

	"onchainwager/internal/state"
)

const dbName = "wager"

var stateKey = []byte("state")

type Store struct {
	db dbm.DB
}

// Open opens (or creates) the database under <home>/data.
func Open(home, backend string) (*Store, error) {
	db, err := dbm.NewDB(dbName, dbm.BackendType(backend), filepath.Join(home, "data"))
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", backend, err)
	}
	return New(db), nil
}

func New(db dbm.DB) *Store {
	return &Store{db: db}
}

// Load returns the last saved snapshot, or a fresh state when none exists.
func (s *Store) Load() (*state.State, error) {
	b, err := s.db.Get(stateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if b == nil {
		return state.NewState(), nil
	}
	return state.Decode(b)
}

// Save writes st synchronously.
func (s *Store) Save(st *state.State) error {
	b, err := st.Encode()
	if err != nil {
		return err
	}
	if err := s.db.SetSync(stateKey, b); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
