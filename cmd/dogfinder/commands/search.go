package commands

import (
	"context"
	"fmt"
	"strings"

	"dogfinder/internal/catalog"
	"dogfinder/internal/search"

	"github.com/spf13/cobra"
)

type searchFlags struct {
	breed  string
	ageMin int
	ageMax int
	city   string
	sort   string
	page   int
}

var searchOpts searchFlags

func init() {
	flags := searchCmd.Flags()
	flags.StringVar(&searchOpts.breed, "breed", "", "Only show dogs of this breed, typos are corrected when unambiguous.")
	flags.IntVar(&searchOpts.ageMin, "age-min", 0, "Minimum age in years (0-14).")
	flags.IntVar(&searchOpts.ageMax, "age-max", 0, "Maximum age in years (0-14).")
	flags.StringVar(&searchOpts.city, "city", "", "Only show dogs in these comma separated cities.")
	flags.StringVar(&searchOpts.sort, "sort", "", "Order by breed, asc or desc. Without it an age filter orders by age.")
	flags.IntVar(&searchOpts.page, "page", 1, "The page of results to show.")
	rootCmd.AddCommand(searchCmd)
}

func parseSortDirection(text string) (catalog.SortDirection, error) {
	switch strings.ToLower(text) {
	case "asc", "a-z":
		return catalog.Asc, nil
	case "desc", "z-a":
		return catalog.Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q, expected asc or desc", text)
}

type breedLister interface {
	Breeds(ctx context.Context) ([]string, error)
}

// resolveBreed maps free text to a breed the catalog knows.
func resolveBreed(ctx context.Context, client breedLister, text string) (string, error) {
	breeds, err := client.Breeds(ctx)
	if err != nil {
		return "", err
	}
	breed, suggestions, ok := search.ResolveBreed(text, breeds)
	if ok {
		return breed, nil
	}
	if len(suggestions) == 0 {
		return "", fmt.Errorf("no breed looks like %q", text)
	}
	return "", fmt.Errorf("%q is ambiguous, did you mean one of: %s", text, strings.Join(suggestions, ", "))
}

var searchCmd = &cobra.Command{
	Use:   "search [--breed <breed>] [--age-min <n>] [--age-max <n>] [--city <city>] [--sort asc|desc] [--page <n>]",
	Short: "Searches the catalog and prints a page of dogs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		ctx := cmd.Context()
		flags := cmd.Flags()
		coord := search.NewCoordinator(a.client, a.favorites, a.tel)

		var changes []search.Change
		if flags.Changed("breed") {
			breed, err := resolveBreed(ctx, a.client, searchOpts.breed)
			if err != nil {
				return err
			}
			changes = append(changes, search.SelectBreed(breed))
		}
		if flags.Changed("age-min") {
			changes = append(changes, search.SetAgeMin(&searchOpts.ageMin))
		}
		if flags.Changed("age-max") {
			changes = append(changes, search.SetAgeMax(&searchOpts.ageMax))
		}
		if flags.Changed("sort") {
			direction, err := parseSortDirection(searchOpts.sort)
			if err != nil {
				return err
			}
			changes = append(changes, search.SetSortDirection(direction))
		}
		if flags.Changed("city") {
			zipCodes, err := coord.ResolveZipCodes(ctx, searchOpts.city)
			if err != nil {
				return err
			}
			changes = append(
				changes,
				search.SetLocationCity(searchOpts.city),
				search.SetZipCodes(zipCodes),
			)
		}

		loaded, err := coord.Update(ctx, search.Batch(changes...))
		if err != nil {
			return err
		}
		if !loaded {
			err = coord.LoadDogs(ctx, 1)
			if err != nil {
				return err
			}
		}
		if searchOpts.page != 1 {
			err = coord.GoTo(ctx, searchOpts.page)
			if err != nil {
				return err
			}
		}

		renderView(a.out, coord.View(), a.favorites)
		return nil
	},
}
