// Package search coordinates the filter state of a dog search with the
// catalog service: it derives the request for the current filters, loads the
// resulting page and keeps the view state consistent when loads overlap.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dogfinder/internal/catalog"
	"dogfinder/internal/components/assert"
	"dogfinder/internal/components/telemetry"
	"dogfinder/internal/favorites"
	"dogfinder/internal/pagination"
)

const (
	report_search_load       = "search.load-dogs"
	report_search_location   = "search.apply-location"
	report_search_superseded = "search.superseded"
)

var (
	ErrInvalidPage    = errors.New("search: page must be 1 or greater")
	ErrPageOutOfRange = errors.New("search: page is out of range")
	// ErrSuperseded is returned by a load whose result was discarded because a
	// newer load started after it.
	ErrSuperseded = errors.New("search: load superseded by a newer one")
)

// CatalogAPI is the part of the catalog client the coordinator needs.
//
// note: fault injection point
type CatalogAPI interface {
	SearchDogs(ctx context.Context, params catalog.SearchParams) (catalog.SearchResult, error)
	Dogs(ctx context.Context, ids []string) ([]catalog.Dog, error)
	SearchLocations(ctx context.Context, query catalog.LocationQuery) (catalog.LocationResult, error)
}

// View is a snapshot of everything a front end needs to render a search.
type View struct {
	Filters FilterState
	Page    int
	Dogs    []catalog.Dog
	// Loaded is false until the first load succeeded.
	Loaded     bool
	Loading    bool
	Total      int
	TotalPages int
	Window     []pagination.Token
	// ShowPagination is false when there are no pages to navigate.
	ShowPagination bool
}

type Coordinator struct {
	client    CatalogAPI
	favorites *favorites.Favorites
	tel       telemetry.API

	mu         sync.Mutex
	filters    FilterState
	page       int
	dogs       []catalog.Dog
	result     *catalog.SearchResult
	loading    bool
	generation uint64
}

func NewCoordinator(client CatalogAPI, favs *favorites.Favorites, tel telemetry.API) *Coordinator {
	assert.NotNil(client)
	assert.NotNil(favs)
	assert.NotNil(tel)

	return &Coordinator{
		client:    client,
		favorites: favs,
		tel:       telemetry.NewScopedAPI("search", tel),
		filters:   DefaultFilterState(),
		page:      1,
	}
}

// LoadDogs fetches the given page for the current filters. The dogs, the
// result totals and the current page are replaced together and only if this
// is still the most recent load once both requests finished. On failure the
// previous results stay in place.
func (c *Coordinator) LoadDogs(ctx context.Context, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}

	c.mu.Lock()
	c.generation++
	generation := c.generation
	params := c.filters.Params(page)
	c.loading = true
	c.mu.Unlock()

	result, err := c.client.SearchDogs(ctx, params)
	var dogs []catalog.Dog
	if err == nil {
		dogs, err = c.client.Dogs(ctx, result.ResultIDs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.tel.ReportDebug(report_search_superseded, generation, c.generation)
		return ErrSuperseded
	}
	c.loading = false

	if err != nil {
		c.tel.ReportWarning(report_search_load, err, page)
		return fmt.Errorf("load page %d: %w", page, err)
	}

	c.result = &result
	c.dogs = dogs
	c.page = page
	return nil
}

// Update applies a change to the filters and reloads from the first page if
// the change affects the search. It reports whether a reload happened.
func (c *Coordinator) Update(ctx context.Context, change Change) (bool, error) {
	c.mu.Lock()
	next, refetch := c.filters.Apply(change)
	c.filters = next
	c.mu.Unlock()

	if !refetch {
		return false, nil
	}
	return true, c.LoadDogs(ctx, 1)
}

func splitCities(text string) []string {
	var cities []string
	for _, city := range strings.Split(text, ",") {
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		cities = append(cities, city)
	}
	return cities
}

// ResolveZipCodes searches the locations of every comma separated city in
// cityText and returns the zip codes of those whose city matches exactly,
// ignoring case. The result is never nil.
func (c *Coordinator) ResolveZipCodes(ctx context.Context, cityText string) ([]string, error) {
	zipCodes := []string{}
	seen := map[string]struct{}{}
	for _, city := range splitCities(cityText) {
		res, err := c.client.SearchLocations(ctx, catalog.LocationQuery{
			City: city,
			Size: LocationSearchSize,
			From: 0,
		})
		if err != nil {
			return nil, err
		}
		for _, loc := range res.Results {
			if !strings.EqualFold(loc.City, city) {
				continue
			}
			if _, ok := seen[loc.ZipCode]; ok {
				continue
			}
			seen[loc.ZipCode] = struct{}{}
			zipCodes = append(zipCodes, loc.ZipCode)
		}
	}
	return zipCodes, nil
}

// ApplyLocationFilter resolves the city text of the filters into zip codes
// and searches with them. When nothing matches the filter still applies and
// no dogs are found.
func (c *Coordinator) ApplyLocationFilter(ctx context.Context) (bool, error) {
	c.mu.Lock()
	cityText := c.filters.LocationCity
	c.mu.Unlock()

	zipCodes, err := c.ResolveZipCodes(ctx, cityText)
	if err != nil {
		c.tel.ReportWarning(report_search_location, err, cityText)
		return false, fmt.Errorf("apply location filter: %w", err)
	}
	c.tel.ReportDebug("resolved zip codes", cityText, len(zipCodes))
	return c.Update(ctx, SetZipCodes(zipCodes))
}

// ClearLocationFilter empties the city text and removes the zip code constraint.
func (c *Coordinator) ClearLocationFilter(ctx context.Context) (bool, error) {
	return c.Update(ctx, ClearLocation())
}

// ToggleFavorite adds or removes a dog from the favorites, it never touches
// the search.
func (c *Coordinator) ToggleFavorite(ctx context.Context, dog catalog.Dog) (bool, error) {
	return c.favorites.Toggle(ctx, dog)
}

func (c *Coordinator) Favorites() *favorites.Favorites {
	return c.favorites
}

func (c *Coordinator) totalPages() int {
	if c.result == nil {
		return 0
	}
	return pagination.TotalPages(c.result.Total, PageSize)
}

// GoTo loads a page of the current results, keeping the filters as they are.
func (c *Coordinator) GoTo(ctx context.Context, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	c.mu.Lock()
	total := c.totalPages()
	c.mu.Unlock()
	if page > max(total, 1) {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, total)
	}
	return c.LoadDogs(ctx, page)
}

// navigate moves to the page computed from the current page and page count.
// It does nothing and returns false if the target is not a different valid page.
func (c *Coordinator) navigate(ctx context.Context, target func(current, total int) int) (bool, error) {
	c.mu.Lock()
	current := c.page
	total := c.totalPages()
	c.mu.Unlock()

	if total == 0 {
		return false, nil
	}
	page := target(current, total)
	if page < 1 || page > total || page == current {
		return false, nil
	}
	return true, c.LoadDogs(ctx, page)
}

func (c *Coordinator) Next(ctx context.Context) (bool, error) {
	return c.navigate(ctx, func(current, total int) int { return current + 1 })
}

func (c *Coordinator) Prev(ctx context.Context) (bool, error) {
	return c.navigate(ctx, func(current, total int) int { return current - 1 })
}

func (c *Coordinator) First(ctx context.Context) (bool, error) {
	return c.navigate(ctx, func(current, total int) int { return 1 })
}

func (c *Coordinator) Last(ctx context.Context) (bool, error) {
	return c.navigate(ctx, func(current, total int) int { return total })
}

func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{
		Filters: c.filters.clone(),
		Page:    c.page,
		Dogs:    append([]catalog.Dog(nil), c.dogs...),
		Loaded:  c.result != nil,
		Loading: c.loading,
	}
	if c.result != nil {
		view.Total = c.result.Total
		view.TotalPages = c.totalPages()
		view.Window = pagination.Window(c.page, view.TotalPages)
		view.ShowPagination = view.TotalPages > 0
	}
	return view
}
