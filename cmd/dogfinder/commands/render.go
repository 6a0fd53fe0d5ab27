package commands

import (
	"fmt"
	"io"
	"strings"

	"dogfinder/internal/catalog"
	"dogfinder/internal/favorites"
	"dogfinder/internal/pagination"
	"dogfinder/internal/search"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// renderDogs prints dogs as a numbered table, favorites are marked with a star.
func renderDogs(w io.Writer, dogs []catalog.Dog, favs *favorites.Favorites) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "", "Name", "Breed", "Age", "Zip", "ID"})
	for i, dog := range dogs {
		star := ""
		if favs != nil && favs.Contains(dog.ID) {
			star = "*"
		}
		t.AppendRow(table.Row{i + 1, star, dog.Name, dog.Breed, dog.Age, dog.ZipCode, dog.ID})
	}
	t.Render()
}

func renderBreeds(w io.Writer, breeds []string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Breed"})
	for _, breed := range breeds {
		t.AppendRow(table.Row{breed})
	}
	t.Render()
}

func describeFilters(f search.FilterState) string {
	var parts []string
	if f.Breed != nil {
		parts = append(parts, fmt.Sprintf("breed=%s", *f.Breed))
	}
	if f.AgeMin != nil {
		parts = append(parts, fmt.Sprintf("age>=%d", *f.AgeMin))
	}
	if f.AgeMax != nil {
		parts = append(parts, fmt.Sprintf("age<=%d", *f.AgeMax))
	}
	switch {
	case f.ZipCodes != nil:
		parts = append(parts, fmt.Sprintf("city=%q (%d zip codes)", f.LocationCity, len(f.ZipCodes)))
	case f.LocationCity != "":
		parts = append(parts, fmt.Sprintf("city=%q (not applied)", f.LocationCity))
	}
	parts = append(parts, fmt.Sprintf("sort=%s", f.EffectiveSort()))
	return strings.Join(parts, " ")
}

func renderView(w io.Writer, view search.View, favs *favorites.Favorites) {
	fmt.Fprintln(w, describeFilters(view.Filters))
	if !view.Loaded {
		fmt.Fprintln(w, "nothing loaded yet")
		return
	}
	if len(view.Dogs) == 0 {
		fmt.Fprintln(w, "no dogs found")
	} else {
		renderDogs(w, view.Dogs, favs)
	}
	if view.ShowPagination {
		fmt.Fprintf(
			w, "page %d of %d (%d dogs): %s\n",
			view.Page, view.TotalPages, view.Total,
			pagination.Format(view.Window, view.Page),
		)
	}
}
