package commands

import (
	"fmt"
	"strings"

	"dogfinder/internal/search"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(breedsCmd)
	rootCmd.AddCommand(sampleCmd)
}

var breedsCmd = &cobra.Command{
	Use:   "breeds [query]",
	Short: "Lists every breed, or the breeds suggested for a query.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		breeds, err := a.client.Breeds(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) > 0 {
			query := strings.Join(args, " ")
			breeds = search.SuggestBreeds(query, breeds, search.MaxSuggestions)
			if len(breeds) == 0 {
				fmt.Fprintf(a.out, "no breed looks like %q\n", query)
				return nil
			}
		}
		renderBreeds(a.out, breeds)
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Shows one dog of every breed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		dogs, err := a.client.OnePerBreed(cmd.Context())
		if err != nil {
			return err
		}
		renderDogs(a.out, dogs, a.favorites)
		return nil
	},
}
