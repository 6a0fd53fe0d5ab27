package search

import (
	"slices"

	"dogfinder/internal/catalog"
)

const (
	PageSize = 25
	// LocationSearchSize is how many locations are requested when resolving a city.
	LocationSearchSize = 100

	MinAge = 0
	MaxAge = 14
)

// FilterState is everything the user can narrow a search with.
type FilterState struct {
	Breed  *string
	AgeMin *int
	AgeMax *int
	// LocationCity is the text typed into the city filter, it only affects the
	// search once it has been resolved into ZipCodes.
	LocationCity string
	// ZipCodes is nil when no location filter is applied. An applied filter
	// that matched nothing is an empty slice and yields no dogs.
	ZipCodes        []string
	SortDirection   catalog.SortDirection
	UserToggledSort bool
}

func DefaultFilterState() FilterState {
	return FilterState{SortDirection: catalog.Asc}
}

// EffectiveSort orders by age ascending while an age filter is set, unless
// the user explicitly chose a breed order.
func (f FilterState) EffectiveSort() catalog.Sort {
	if (f.AgeMin != nil || f.AgeMax != nil) && !f.UserToggledSort {
		return catalog.Sort{Field: catalog.SortAge, Direction: catalog.Asc}
	}
	direction := f.SortDirection
	if direction == "" {
		direction = catalog.Asc
	}
	return catalog.Sort{Field: catalog.SortBreed, Direction: direction}
}

// Params derives the search request for the given 1-based page.
func (f FilterState) Params(page int) catalog.SearchParams {
	params := catalog.SearchParams{
		Sort: f.EffectiveSort(),
		Size: PageSize,
		From: (page - 1) * PageSize,
	}
	if f.Breed != nil {
		params.Breeds = []string{*f.Breed}
	}
	if f.AgeMin != nil {
		age := *f.AgeMin
		params.AgeMin = &age
	}
	if f.AgeMax != nil {
		age := *f.AgeMax
		params.AgeMax = &age
	}
	if f.ZipCodes != nil {
		params.ZipCodes = append([]string{}, f.ZipCodes...)
	}
	return params
}

func (f FilterState) clone() FilterState {
	out := f
	if f.Breed != nil {
		breed := *f.Breed
		out.Breed = &breed
	}
	if f.AgeMin != nil {
		age := *f.AgeMin
		out.AgeMin = &age
	}
	if f.AgeMax != nil {
		age := *f.AgeMax
		out.AgeMax = &age
	}
	if f.ZipCodes != nil {
		out.ZipCodes = append([]string{}, f.ZipCodes...)
	}
	return out
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalZipCodes(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return slices.Equal(a, b)
}

// sameQuery is true when both states produce the same search. LocationCity
// is ignored since it is only text until the location filter is applied.
func (f FilterState) sameQuery(other FilterState) bool {
	return equalPtr(f.Breed, other.Breed) &&
		equalPtr(f.AgeMin, other.AgeMin) &&
		equalPtr(f.AgeMax, other.AgeMax) &&
		equalZipCodes(f.ZipCodes, other.ZipCodes) &&
		f.SortDirection == other.SortDirection &&
		f.UserToggledSort == other.UserToggledSort
}

// Change is a single user edit of the filter state.
type Change func(f *FilterState)

// Apply returns the state after the change and whether the change requires
// the results to be fetched again from the first page.
func (f FilterState) Apply(change Change) (FilterState, bool) {
	next := f.clone()
	change(&next)
	return next, !f.sameQuery(next)
}

func clampAge(age int) int {
	return max(MinAge, min(MaxAge, age))
}

func SelectBreed(breed string) Change {
	return func(f *FilterState) {
		f.Breed = &breed
	}
}

// ResetBreed goes back to searching every breed.
func ResetBreed() Change {
	return func(f *FilterState) {
		f.Breed = nil
	}
}

// SetAgeMin sets the lower age bound clamped to [MinAge, MaxAge], nil removes it.
func SetAgeMin(age *int) Change {
	return func(f *FilterState) {
		if age == nil {
			f.AgeMin = nil
			return
		}
		clamped := clampAge(*age)
		f.AgeMin = &clamped
	}
}

// SetAgeMax sets the upper age bound clamped to [MinAge, MaxAge], nil removes it.
func SetAgeMax(age *int) Change {
	return func(f *FilterState) {
		if age == nil {
			f.AgeMax = nil
			return
		}
		clamped := clampAge(*age)
		f.AgeMax = &clamped
	}
}

// SetSortDirection orders by breed in the given direction, this overrides the
// implicit age ordering from then on.
func SetSortDirection(direction catalog.SortDirection) Change {
	return func(f *FilterState) {
		f.SortDirection = direction
		f.UserToggledSort = true
	}
}

func SetLocationCity(city string) Change {
	return func(f *FilterState) {
		f.LocationCity = city
	}
}

// SetZipCodes applies a resolved location filter. An empty slice is kept as
// a constraint that matches nothing.
func SetZipCodes(zipCodes []string) Change {
	return func(f *FilterState) {
		f.ZipCodes = append([]string{}, zipCodes...)
	}
}

func ClearLocation() Change {
	return func(f *FilterState) {
		f.LocationCity = ""
		f.ZipCodes = nil
	}
}

// Batch combines several changes into one so they cause a single reload.
func Batch(changes ...Change) Change {
	return func(f *FilterState) {
		for _, change := range changes {
			change(f)
		}
	}
}
