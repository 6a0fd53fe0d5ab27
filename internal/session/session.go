// Package session keeps the catalog session cookie between invocations of
// the command line.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dogfinder/internal/components/assert"
	"dogfinder/internal/components/chrono"
	"dogfinder/internal/components/db"
)

type cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

type state struct {
	Cookies []cookie  `json:"cookies"`
	SavedAt time.Time `json:"saved_at"`
}

type Store struct {
	qry   *db.Queries
	clock chrono.TimeAPI
}

func NewStore(database *sql.DB, clock chrono.TimeAPI) Store {
	assert.NotNil(database)
	assert.NotNil(clock)
	return Store{
		qry:   db.New(database),
		clock: clock,
	}
}

// Save stores the given cookies, replacing what was saved before.
func (s Store) Save(ctx context.Context, cookies []*http.Cookie) error {
	now := s.clock.Now()
	st := state{SavedAt: now}
	for _, c := range cookies {
		st.Cookies = append(st.Cookies, cookie{
			Name:    c.Name,
			Value:   c.Value,
			Expires: c.Expires,
		})
	}
	serialized, err := json.Marshal(st)
	if err != nil {
		return err
	}
	err = s.qry.PutSlot(ctx, db.PutSlotParams{
		Key:       db.SlotSession,
		Value:     string(serialized),
		UpdatedAt: now.Unix(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the saved cookies that have not expired yet, nil if there
// is no saved session.
func (s Store) Load(ctx context.Context) ([]*http.Cookie, error) {
	slot, err := s.qry.GetSlot(ctx, db.SlotSession)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var st state
	err = json.Unmarshal([]byte(slot.Value), &st)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	now := s.clock.Now()
	var out []*http.Cookie
	for _, c := range st.Cookies {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Expires: c.Expires,
		})
	}
	return out, nil
}

func (s Store) Clear(ctx context.Context) error {
	err := s.qry.DeleteSlot(ctx, db.SlotSession)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
