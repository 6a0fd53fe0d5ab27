package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"dogfinder/internal/catalog"
	"dogfinder/internal/favorites"

	"github.com/spf13/cobra"
)

var matchOnServer bool

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
	rootCmd.AddCommand(favoritesCmd)

	matchCmd.Flags().BoolVar(&matchOnServer, "server", false, "Let the catalog service pick the match instead of picking locally.")
	rootCmd.AddCommand(matchCmd)
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manages the list of favorite dogs.",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the favorite dogs in the order they were added.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		dogs := a.favorites.List()
		if len(dogs) == 0 {
			fmt.Fprintln(a.out, "no favorites yet")
			return nil
		}
		renderDogs(a.out, dogs, a.favorites)
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <dog-id>...",
	Short: "Adds the given dogs to the favorites, or removes them if they already are.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		dogs, err := a.client.Dogs(cmd.Context(), args)
		if err != nil {
			return err
		}
		byId := make(map[string]catalog.Dog, len(dogs))
		for _, dog := range dogs {
			byId[dog.ID] = dog
		}
		for _, id := range args {
			dog, ok := byId[id]
			if !ok {
				return fmt.Errorf("there is no dog with id %q", id)
			}
			err := toggle(cmd.Context(), a.out, a.favorites, dog)
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func toggle(ctx context.Context, w io.Writer, favs *favorites.Favorites, dog catalog.Dog) error {
	added, err := favs.Toggle(ctx, dog)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(w, "added %s (%s) to favorites\n", dog.Name, dog.Breed)
	} else {
		fmt.Fprintf(w, "removed %s (%s) from favorites\n", dog.Name, dog.Breed)
	}
	return nil
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

func localMatch(w io.Writer, favs *favorites.Favorites, rnd *rand.Rand) {
	dog, ok := favs.Match(rnd)
	if !ok {
		fmt.Fprintln(w, "add some favorites first")
		return
	}
	fmt.Fprintln(w, "your match:")
	renderDogs(w, []catalog.Dog{dog}, favs)
}

// serverMatch asks the catalog service to pick one of the favorites.
func serverMatch(ctx context.Context, w io.Writer, client *catalog.Client, favs *favorites.Favorites) error {
	ids := favs.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(w, "add some favorites first")
		return nil
	}
	id, err := client.Match(ctx, ids)
	if err != nil {
		return err
	}
	for _, dog := range favs.List() {
		if dog.ID == id {
			fmt.Fprintln(w, "your match:")
			renderDogs(w, []catalog.Dog{dog}, favs)
			return nil
		}
	}
	dogs, err := client.Dogs(ctx, []string{id})
	if err != nil {
		return err
	}
	if len(dogs) == 0 {
		fmt.Fprintf(w, "the catalog matched dog %q but no longer knows it\n", id)
		return nil
	}
	fmt.Fprintln(w, "your match:")
	renderDogs(w, dogs, favs)
	return nil
}

var matchCmd = &cobra.Command{
	Use:   "match [--server]",
	Short: "Picks one of the favorite dogs at random.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		if matchOnServer {
			return serverMatch(cmd.Context(), a.out, a.client, a.favorites)
		}
		localMatch(a.out, a.favorites, newRand())
		return nil
	},
}
