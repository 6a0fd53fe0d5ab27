package search

import (
	"testing"

	"dogfinder/internal/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

func TestEffectiveSort(t *testing.T) {
	testCases := []struct {
		name     string
		filters  FilterState
		expected string
	}{
		{
			name:     "default",
			filters:  DefaultFilterState(),
			expected: "breed:asc",
		},
		{
			name:     "age min without toggle",
			filters:  FilterState{AgeMin: intPtr(2), SortDirection: catalog.Asc},
			expected: "age:asc",
		},
		{
			name:     "age max without toggle",
			filters:  FilterState{AgeMax: intPtr(9), SortDirection: catalog.Desc},
			expected: "age:asc",
		},
		{
			name:     "toggled with age filter",
			filters:  FilterState{AgeMin: intPtr(2), SortDirection: catalog.Desc, UserToggledSort: true},
			expected: "breed:desc",
		},
		{
			name:     "toggled without age filter",
			filters:  FilterState{SortDirection: catalog.Desc, UserToggledSort: true},
			expected: "breed:desc",
		},
		{
			name:     "zero value",
			filters:  FilterState{},
			expected: "breed:asc",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.filters.EffectiveSort().String())
		})
	}
}

func TestParams(t *testing.T) {
	{
		params := DefaultFilterState().Params(1)
		diff := cmp.Diff(catalog.SearchParams{
			Sort: catalog.Sort{Field: catalog.SortBreed, Direction: catalog.Asc},
			Size: PageSize,
			From: 0,
		}, params)
		require.Empty(t, diff)
	}
	{
		filters := FilterState{
			Breed:         strPtr("Beagle"),
			AgeMin:        intPtr(3),
			AgeMax:        intPtr(1),
			ZipCodes:      []string{"78701"},
			SortDirection: catalog.Asc,
		}
		params := filters.Params(3)
		diff := cmp.Diff(catalog.SearchParams{
			Sort:     catalog.Sort{Field: catalog.SortAge, Direction: catalog.Asc},
			Size:     PageSize,
			From:     50,
			Breeds:   []string{"Beagle"},
			AgeMin:   intPtr(3),
			AgeMax:   intPtr(1),
			ZipCodes: []string{"78701"},
		}, params)
		require.Empty(t, diff)
	}
	{
		// an applied location filter without matches is still a constraint
		filters := DefaultFilterState()
		filters.ZipCodes = []string{}
		params := filters.Params(1)
		require.NotNil(t, params.ZipCodes)
		require.Len(t, params.ZipCodes, 0)
	}
}

func TestApply(t *testing.T) {
	withBreed := DefaultFilterState()
	withBreed.Breed = strPtr("Pug")

	withZips := DefaultFilterState()
	withZips.LocationCity = "Austin"
	withZips.ZipCodes = []string{"78701"}

	withCity := DefaultFilterState()
	withCity.LocationCity = "Austin"

	toggled := DefaultFilterState()
	toggled.UserToggledSort = true

	testCases := []struct {
		name     string
		from     FilterState
		change   Change
		refetch  bool
		expected FilterState
	}{
		{
			name:     "select breed",
			from:     DefaultFilterState(),
			change:   SelectBreed("Pug"),
			refetch:  true,
			expected: withBreed,
		},
		{
			name:     "select same breed",
			from:     withBreed,
			change:   SelectBreed("Pug"),
			refetch:  false,
			expected: withBreed,
		},
		{
			name:     "reset breed",
			from:     withBreed,
			change:   ResetBreed(),
			refetch:  true,
			expected: DefaultFilterState(),
		},
		{
			name:     "reset without breed",
			from:     DefaultFilterState(),
			change:   ResetBreed(),
			refetch:  false,
			expected: DefaultFilterState(),
		},
		{
			name:     "age min clamps high",
			from:     DefaultFilterState(),
			change:   SetAgeMin(intPtr(20)),
			refetch:  true,
			expected: FilterState{AgeMin: intPtr(14), SortDirection: catalog.Asc},
		},
		{
			name:     "age max clamps low",
			from:     DefaultFilterState(),
			change:   SetAgeMax(intPtr(-3)),
			refetch:  true,
			expected: FilterState{AgeMax: intPtr(0), SortDirection: catalog.Asc},
		},
		{
			name:     "clear age min",
			from:     FilterState{AgeMin: intPtr(4), SortDirection: catalog.Asc},
			change:   SetAgeMin(nil),
			refetch:  true,
			expected: DefaultFilterState(),
		},
		{
			name:     "same age after clamping",
			from:     FilterState{AgeMin: intPtr(14), SortDirection: catalog.Asc},
			change:   SetAgeMin(intPtr(99)),
			refetch:  false,
			expected: FilterState{AgeMin: intPtr(14), SortDirection: catalog.Asc},
		},
		{
			name:     "city text alone",
			from:     DefaultFilterState(),
			change:   SetLocationCity("Austin"),
			refetch:  false,
			expected: withCity,
		},
		{
			name:     "empty zip codes",
			from:     withCity,
			change:   SetZipCodes(nil),
			refetch:  true,
			expected: FilterState{LocationCity: "Austin", ZipCodes: []string{}, SortDirection: catalog.Asc},
		},
		{
			name:     "same zip codes",
			from:     withZips,
			change:   SetZipCodes([]string{"78701"}),
			refetch:  false,
			expected: withZips,
		},
		{
			name:     "clear applied location",
			from:     withZips,
			change:   ClearLocation(),
			refetch:  true,
			expected: DefaultFilterState(),
		},
		{
			name:     "clear unapplied location",
			from:     withCity,
			change:   ClearLocation(),
			refetch:  false,
			expected: DefaultFilterState(),
		},
		{
			name:     "first sort toggle",
			from:     DefaultFilterState(),
			change:   SetSortDirection(catalog.Asc),
			refetch:  true,
			expected: toggled,
		},
		{
			name:     "repeated sort toggle",
			from:     toggled,
			change:   SetSortDirection(catalog.Asc),
			refetch:  false,
			expected: toggled,
		},
		{
			name:     "sort direction",
			from:     toggled,
			change:   SetSortDirection(catalog.Desc),
			refetch:  true,
			expected: FilterState{SortDirection: catalog.Desc, UserToggledSort: true},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			next, refetch := test.from.Apply(test.change)
			require.Equal(t, test.refetch, refetch)
			require.Empty(t, cmp.Diff(test.expected, next))
		})
	}
}

func TestApplyDoesNotAlias(t *testing.T) {
	from := DefaultFilterState()
	from.AgeMin = intPtr(3)
	from.ZipCodes = []string{"78701"}

	next, _ := from.Apply(func(f *FilterState) {
		*f.AgeMin = 10
		f.ZipCodes[0] = "00000"
	})
	require.Equal(t, 3, *from.AgeMin)
	require.Equal(t, []string{"78701"}, from.ZipCodes)
	require.Equal(t, 10, *next.AgeMin)
}

func TestBatch(t *testing.T) {
	next, refetch := DefaultFilterState().Apply(Batch(
		SelectBreed("Pug"),
		SetAgeMax(intPtr(5)),
		SetLocationCity("Austin"),
		SetZipCodes([]string{"78701"}),
	))
	require.True(t, refetch)
	require.Equal(t, "Pug", *next.Breed)
	require.Equal(t, 5, *next.AgeMax)
	require.Equal(t, []string{"78701"}, next.ZipCodes)

	_, refetch = next.Apply(Batch())
	require.False(t, refetch)
}
