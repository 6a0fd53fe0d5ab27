package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dogfinder/internal/catalog"
	"dogfinder/internal/components/assert"
	"dogfinder/internal/components/chrono"
	"dogfinder/internal/components/db"
)

// Store persists the favorites list as a whole.
//
// note: fault injection point
type Store interface {
	// Load returns the persisted list, nil when nothing was stored yet.
	Load(ctx context.Context) ([]catalog.Dog, error)
	// Save replaces the persisted list.
	Save(ctx context.Context, dogs []catalog.Dog) error
}

// SlotStore keeps the favorites as a JSON array of dogs in a single db slot.
type SlotStore struct {
	qry    *db.Queries
	makeTx db.MakeTx
	clock  chrono.TimeAPI
	key    string
}

func NewSlotStore(database *sql.DB, clock chrono.TimeAPI) SlotStore {
	assert.NotNil(database)
	assert.NotNil(clock)
	return SlotStore{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		clock:  clock,
		key:    db.SlotFavorites,
	}
}

func (s SlotStore) Load(ctx context.Context) ([]catalog.Dog, error) {
	slot, err := s.qry.GetSlot(ctx, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	var dogs []catalog.Dog
	err = json.Unmarshal([]byte(slot.Value), &dogs)
	if err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}
	return dogs, nil
}

func (s SlotStore) Save(ctx context.Context, dogs []catalog.Dog) error {
	if dogs == nil {
		dogs = []catalog.Dog{}
	}
	serialized, err := json.Marshal(dogs)
	if err != nil {
		return err
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	defer discard()

	err = tx.PutSlot(ctx, db.PutSlotParams{
		Key:       s.key,
		Value:     string(serialized),
		UpdatedAt: s.clock.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return commit()
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	dogs []catalog.Dog
}

func (m *MemoryStore) Load(ctx context.Context) ([]catalog.Dog, error) {
	return append([]catalog.Dog(nil), m.dogs...), nil
}

func (m *MemoryStore) Save(ctx context.Context, dogs []catalog.Dog) error {
	m.dogs = append([]catalog.Dog(nil), dogs...)
	return nil
}
