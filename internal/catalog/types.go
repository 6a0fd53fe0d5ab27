package catalog

import "fmt"

type Dog struct {
	ID      string `json:"id"`
	Img     string `json:"img"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	ZipCode string `json:"zip_code"`
	Breed   string `json:"breed"`
}

type Location struct {
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	County    string  `json:"county"`
}

type SortField string

const (
	SortBreed SortField = "breed"
	SortAge   SortField = "age"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

type Sort struct {
	Field     SortField
	Direction SortDirection
}

// String renders the sort the way the search endpoint expects it, ex. `breed:asc`.
func (s Sort) String() string {
	return fmt.Sprintf("%s:%s", s.Field, s.Direction)
}

// SearchParams are the query parameters of a dog search. Nil fields are left
// out of the request. ZipCodes distinguishes nil (no constraint) from an
// empty slice (a constraint that matches nothing).
type SearchParams struct {
	Sort     Sort
	Size     int
	From     int
	Breeds   []string
	AgeMin   *int
	AgeMax   *int
	ZipCodes []string
}

type SearchResult struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      string   `json:"next,omitempty"`
	Prev      string   `json:"prev,omitempty"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type GeoBoundingBox struct {
	Top         *float64  `json:"top,omitempty"`
	Left        *float64  `json:"left,omitempty"`
	Bottom      *float64  `json:"bottom,omitempty"`
	Right       *float64  `json:"right,omitempty"`
	TopLeft     *GeoPoint `json:"top_left,omitempty"`
	BottomRight *GeoPoint `json:"bottom_right,omitempty"`
	BottomLeft  *GeoPoint `json:"bottom_left,omitempty"`
	TopRight    *GeoPoint `json:"top_right,omitempty"`
}

type LocationQuery struct {
	City           string          `json:"city,omitempty"`
	States         []string        `json:"states,omitempty"`
	GeoBoundingBox *GeoBoundingBox `json:"geoBoundingBox,omitempty"`
	Size           int             `json:"size,omitempty"`
	From           int             `json:"from,omitempty"`
}

type LocationResult struct {
	Results []Location `json:"results"`
	Total   int        `json:"total"`
}

type MatchResult struct {
	Match string `json:"match"`
}
