// Package favorites holds the dogs a user has marked, keyed by dog id and kept
// in the order they were added.
package favorites

import (
	"context"
	"math/rand/v2"
	"sync"

	"dogfinder/internal/catalog"
	"dogfinder/internal/components/assert"
	"dogfinder/internal/components/telemetry"
)

const (
	report_favorites_load   = "favorites.load"
	report_favorites_toggle = "favorites.toggle"
	report_favorites_count  = "favorites.count"
)

type Favorites struct {
	mu    sync.Mutex
	dogs  []catalog.Dog
	store Store
	tel   telemetry.API
}

// Open loads the persisted favorites. A list that is missing or cannot be read
// starts out empty, the failure is only reported.
func Open(ctx context.Context, store Store, tel telemetry.API) *Favorites {
	assert.NotNil(store)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("favorites", tel)

	dogs, err := store.Load(ctx)
	if err != nil {
		tel.ReportWarning(report_favorites_load, err)
		dogs = nil
	}
	tel.ReportCount(report_favorites_count, int64(len(dogs)))

	return &Favorites{
		dogs:  dogs,
		store: store,
		tel:   tel,
	}
}

func indexOf(dogs []catalog.Dog, id string) int {
	for i, dog := range dogs {
		if dog.ID == id {
			return i
		}
	}
	return -1
}

// Toggle removes the dog with the same id if it is a favorite, otherwise it
// appends the given dog. The list in memory only changes once it has been
// saved.
func (f *Favorites) Toggle(ctx context.Context, dog catalog.Dog) (added bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]catalog.Dog, 0, len(f.dogs)+1)
	idx := indexOf(f.dogs, dog.ID)
	if idx >= 0 {
		next = append(next, f.dogs[:idx]...)
		next = append(next, f.dogs[idx+1:]...)
	} else {
		next = append(next, f.dogs...)
		next = append(next, dog)
	}

	err = f.store.Save(ctx, next)
	if err != nil {
		f.tel.ReportBroken(report_favorites_toggle, err, dog.ID)
		return false, err
	}
	f.dogs = next
	f.tel.ReportCount(report_favorites_count, int64(len(next)))
	return idx < 0, nil
}

func (f *Favorites) Contains(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return indexOf(f.dogs, id) >= 0
}

// List returns a copy of the favorites in insertion order.
func (f *Favorites) List() []catalog.Dog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.Dog(nil), f.dogs...)
}

func (f *Favorites) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.dogs))
	for i, dog := range f.dogs {
		ids[i] = dog.ID
	}
	return ids
}

func (f *Favorites) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dogs)
}

// Match picks one favorite uniformly at random, false if there are none.
func (f *Favorites) Match(rnd *rand.Rand) (catalog.Dog, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.dogs) == 0 {
		return catalog.Dog{}, false
	}
	return f.dogs[rnd.IntN(len(f.dogs))], true
}
